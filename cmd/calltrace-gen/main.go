// Command calltrace-gen writes capability adapters for calltrace: for each
// named interface it generates a type that implements the interface by
// forwarding every method to calltrace.Proxy.Invoke, plus an ExposeX helper
// that registers it with an Engine.
//
//	//go:generate calltrace-gen -src store.go -iface Inventory,Getter
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/imports"
)

const defaultCalltraceImport = "github.com/Station-Manager/calltrace"

func main() {
	srcPath := flag.String("src", "", "Go source file declaring the interfaces")
	ifaces := flag.String("iface", "", "Comma-separated interface names")
	output := flag.String("output", "", "Output file (default <src>_trace_gen.go)")
	importPath := flag.String("calltrace", defaultCalltraceImport, "Import path of the calltrace package")
	flag.Parse()

	if *srcPath == "" || *ifaces == "" {
		fmt.Fprintln(os.Stderr, "Usage: calltrace-gen -src <file.go> -iface <Name[,Name...]> [-output <file.go>] [-calltrace <import path>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*srcPath, splitNames(*ifaces), *output, *importPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(srcPath string, names []string, output, importPath string) error {
	src, err := ParseSource(srcPath, nil, names)
	if err != nil {
		return err
	}

	code, err := Generate(src, importPath)
	if err != nil {
		return fmt.Errorf("generating adapters: %w", err)
	}

	if output == "" {
		output = outputPath(srcPath)
	}
	if err := writeFormatted(output, code); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(output), err)
	}
	fmt.Printf("  generated %s\n", output)
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Write unformatted so you can debug the generator output
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}

// outputPath turns "store.go" into "store_trace_gen.go".
func outputPath(src string) string {
	return strings.TrimSuffix(src, ".go") + "_trace_gen.go"
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
