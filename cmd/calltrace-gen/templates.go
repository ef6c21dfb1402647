package main

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

var funcMap = template.FuncMap{
	"quote":      func(s string) string { return fmt.Sprintf("%q", s) },
	"adapter":    adapterName,
	"params":     paramList,
	"args":       argList,
	"results":    resultList,
	"extract":    extractList,
	"hasResults": func(m Method) bool { return len(m.Results) > 0 },
}

var templates = template.Must(template.New("").Funcs(funcMap).Parse(fileTmpl + adapterTmpl))

const fileTmpl = `{{define "file"}}// Code generated by calltrace-gen. DO NOT EDIT.

package {{.Package}}

import (
	{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}{{quote .Path}}
	{{- end}}
	{{quote .CalltraceImport}}
)
{{range .Interfaces}}{{template "adapter" .}}{{end}}
{{- end}}`

const adapterTmpl = `{{define "adapter"}}
// {{adapter .Name}} exposes a calltrace proxy as {{.Name}}.
type {{adapter .Name}} struct {
	proxy *calltrace.Proxy
}
{{$adapter := adapter .Name}}
{{- range .Methods}}
func (adapter {{$adapter}}) {{.Name}}({{params .}}){{results .}} {
	{{- if hasResults .}}
	out := adapter.proxy.Invoke({{quote .Name}}{{args .}})
	return {{extract .}}
	{{- else}}
	adapter.proxy.Invoke({{quote .Name}}{{args .}})
	{{- end}}
}
{{end}}
// Expose{{.Name}} registers the {{.Name}} adapter with e.
func Expose{{.Name}}(e *calltrace.Engine) error {
	return calltrace.Expose(e, func(p *calltrace.Proxy) {{.Name}} { return {{adapter .Name}}{proxy: p} })
}
{{end}}`

type fileData struct {
	*Source
	CalltraceImport string
}

// Generate renders the adapters for every interface in src. The source's
// imports are carried over so parameter types resolve; unused ones are
// dropped when the output is formatted.
func Generate(src *Source, calltraceImport string) (string, error) {
	data := fileData{Source: &Source{Package: src.Package, Interfaces: src.Interfaces}, CalltraceImport: calltraceImport}
	for _, imp := range src.Imports {
		if imp.Path == calltraceImport || imp.Name == "_" || imp.Name == "." {
			continue
		}
		data.Imports = append(data.Imports, imp)
	}

	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "file", data); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}
	return b.String(), nil
}

// adapterName turns "Inventory" into "inventoryTraceAdapter".
func adapterName(iface string) string {
	r := []rune(iface)
	r[0] = unicode.ToLower(r[0])
	return string(r) + "TraceAdapter"
}

func paramList(m Method) string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		parts[i] = p.Name + " " + p.Type
	}
	return strings.Join(parts, ", ")
}

// argList passes every parameter to Invoke; the variadic tail goes as its
// slice.
func argList(m Method) string {
	var b strings.Builder
	for _, p := range m.Params {
		b.WriteString(", ")
		b.WriteString(p.Name)
	}
	return b.String()
}

func resultList(m Method) string {
	switch len(m.Results) {
	case 0:
		return ""
	case 1:
		return " " + m.Results[0]
	default:
		return " (" + strings.Join(m.Results, ", ") + ")"
	}
}

func extractList(m Method) string {
	parts := make([]string, len(m.Results))
	for i, typ := range m.Results {
		if typ == "error" {
			parts[i] = fmt.Sprintf("calltrace.Err(out, %d)", i)
		} else {
			parts[i] = fmt.Sprintf("calltrace.Out[%s](out, %d)", typ, i)
		}
	}
	return strings.Join(parts, ", ")
}
