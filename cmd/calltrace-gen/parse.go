package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"
)

// Interface is a capability interface read from Go source.
type Interface struct {
	Name    string
	Methods []Method
}

// Method is one method of an Interface with its parameters and results
// rendered as source text.
type Method struct {
	Name     string
	Params   []Param
	Results  []string
	Variadic bool
}

// Param is a named method parameter. Unnamed and blank parameters are named
// p0, p1, ... by position.
type Param struct {
	Name string
	Type string
}

// Source is a parsed Go file: its package, imports and the interfaces that
// were asked for.
type Source struct {
	Package    string
	Imports    []Import
	Interfaces []Interface
}

type Import struct {
	Name string
	Path string
}

// reserved names are used inside generated method bodies.
var reserved = map[string]bool{"adapter": true, "out": true, "calltrace": true}

// ParseSource reads the interfaces named in names from src. filename is used
// for positions in error messages; when src is nil the file is read from
// disk.
func ParseSource(filename string, src any, names []string) (*Source, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}

	out := &Source{Package: file.Name.Name}
	for _, spec := range file.Imports {
		imp := Import{}
		if imp.Path, err = strconv.Unquote(spec.Path.Value); err != nil {
			return nil, fmt.Errorf("import %s: %w", spec.Path.Value, err)
		}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		out.Imports = append(out.Imports, imp)
	}

	found := make(map[string]*ast.TypeSpec)
	ast.Inspect(file, func(n ast.Node) bool {
		if ts, ok := n.(*ast.TypeSpec); ok {
			found[ts.Name.Name] = ts
		}
		return true
	})

	for _, name := range names {
		ts, ok := found[name]
		if !ok {
			return nil, fmt.Errorf("type %s not found in %s", name, filename)
		}
		iface, err := readInterface(fset, ts)
		if err != nil {
			return nil, err
		}
		out.Interfaces = append(out.Interfaces, iface)
	}
	return out, nil
}

func readInterface(fset *token.FileSet, ts *ast.TypeSpec) (Interface, error) {
	it, ok := ts.Type.(*ast.InterfaceType)
	if !ok {
		return Interface{}, fmt.Errorf("%s is not an interface", ts.Name.Name)
	}
	if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
		return Interface{}, fmt.Errorf("%s: generic interfaces are not supported", ts.Name.Name)
	}

	iface := Interface{Name: ts.Name.Name}
	for _, field := range it.Methods.List {
		ft, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 {
			return Interface{}, fmt.Errorf("%s: embedded interfaces are not supported, list the methods instead", ts.Name.Name)
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				return Interface{}, fmt.Errorf("%s.%s: unexported methods cannot be proxied", ts.Name.Name, name.Name)
			}
			m, err := readMethod(fset, name.Name, ft)
			if err != nil {
				return Interface{}, fmt.Errorf("%s.%s: %w", ts.Name.Name, name.Name, err)
			}
			iface.Methods = append(iface.Methods, m)
		}
	}
	return iface, nil
}

// keepName reports whether a declared parameter name can be reused as is.
func keepName(ident *ast.Ident) bool {
	return ident != nil && ident.Name != "_" && !reserved[ident.Name]
}

func readMethod(fset *token.FileSet, name string, ft *ast.FuncType) (Method, error) {
	m := Method{Name: name}

	used := make(map[string]bool)
	for _, field := range ft.Params.List {
		for _, ident := range field.Names {
			if keepName(ident) {
				used[ident.Name] = true
			}
		}
	}

	pos := 0
	for _, field := range ft.Params.List {
		typ, err := render(fset, field.Type)
		if err != nil {
			return Method{}, err
		}
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			m.Variadic = true
		}

		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, ident := range names {
			var pname string
			if keepName(ident) {
				pname = ident.Name
			} else {
				for n := pos; ; n++ {
					pname = fmt.Sprintf("p%d", n)
					if !used[pname] {
						break
					}
				}
				used[pname] = true
			}
			m.Params = append(m.Params, Param{Name: pname, Type: typ})
			pos++
		}
	}

	if ft.Results != nil {
		for _, field := range ft.Results.List {
			typ, err := render(fset, field.Type)
			if err != nil {
				return Method{}, err
			}
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			for i := 0; i < n; i++ {
				m.Results = append(m.Results, typ)
			}
		}
	}
	return m, nil
}

func render(fset *token.FileSet, expr ast.Expr) (string, error) {
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, fset, expr); err != nil {
		return "", err
	}
	return buf.String(), nil
}
