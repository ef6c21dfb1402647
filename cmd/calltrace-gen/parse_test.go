package main

import (
	"strings"
	"testing"
)

const storeSrc = `package store

import (
	"context"
	"time"

	ct "github.com/Station-Manager/calltrace"
	_ "embed"
)

type Inventory interface {
	Save(ctx context.Context, name string, qty int) error
	Names(prefix string, extra ...string) []string
	Ping()
	Window(time.Duration, int) (from, to time.Time, err error)
	Lookup(_ string, out int) (map[string]int, bool)
}

type notIface struct{}

type Embeds interface {
	Inventory
	Close() error
}

type Generic[T any] interface {
	Get() T
}

type hidden interface {
	get()
}

var _ ct.Sink
`

func mustParse(t *testing.T, names ...string) *Source {
	t.Helper()
	src, err := ParseSource("store.go", storeSrc, names)
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	return src
}

func TestParseSource_Interface(t *testing.T) {
	src := mustParse(t, "Inventory")

	if src.Package != "store" {
		t.Errorf("package = %q, want store", src.Package)
	}
	if len(src.Interfaces) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(src.Interfaces))
	}
	iface := src.Interfaces[0]
	if iface.Name != "Inventory" {
		t.Errorf("name = %q", iface.Name)
	}
	if len(iface.Methods) != 5 {
		t.Fatalf("got %d methods, want 5", len(iface.Methods))
	}

	save := iface.Methods[0]
	if save.Name != "Save" || len(save.Params) != 3 || save.Params[0].Type != "context.Context" {
		t.Errorf("unexpected Save: %+v", save)
	}
	if len(save.Results) != 1 || save.Results[0] != "error" {
		t.Errorf("unexpected Save results: %v", save.Results)
	}

	names := iface.Methods[1]
	if !names.Variadic || names.Params[1].Type != "...string" {
		t.Errorf("unexpected Names: %+v", names)
	}

	ping := iface.Methods[2]
	if len(ping.Params) != 0 || len(ping.Results) != 0 {
		t.Errorf("unexpected Ping: %+v", ping)
	}
}

func TestParseSource_NamesUnnamedAndReservedParams(t *testing.T) {
	iface := mustParse(t, "Inventory").Interfaces[0]

	window := iface.Methods[3]
	if window.Params[0].Name != "p0" || window.Params[1].Name != "p1" {
		t.Errorf("unnamed params not numbered: %+v", window.Params)
	}
	if strings.Join(window.Results, ",") != "time.Time,time.Time,error" {
		t.Errorf("named results not expanded: %v", window.Results)
	}

	lookup := iface.Methods[4]
	if lookup.Params[0].Name != "p0" || lookup.Params[1].Name != "p1" {
		t.Errorf("blank or reserved params not renamed: %+v", lookup.Params)
	}

	clash, err := ParseSource("clash.go", "package x\n\ntype Clash interface {\n\tDo(_ int, p0 string, out bool)\n}\n", []string{"Clash"})
	if err != nil {
		t.Fatalf("ParseSource failed: %v", err)
	}
	var got []string
	for _, p := range clash.Interfaces[0].Methods[0].Params {
		got = append(got, p.Name)
	}
	if strings.Join(got, ",") != "p1,p0,p2" {
		t.Errorf("generated names clash with declared ones: %v", got)
	}
}

func TestParseSource_Imports(t *testing.T) {
	src := mustParse(t, "Inventory")
	if len(src.Imports) != 4 {
		t.Fatalf("got %d imports, want 4", len(src.Imports))
	}
	if src.Imports[2].Name != "ct" || src.Imports[2].Path != "github.com/Station-Manager/calltrace" {
		t.Errorf("unexpected named import: %+v", src.Imports[2])
	}
}

func TestParseSource_Errors(t *testing.T) {
	tests := []struct {
		iface string
		want  string
	}{
		{"Missing", "not found"},
		{"notIface", "is not an interface"},
		{"Embeds", "embedded interfaces"},
		{"Generic", "generic interfaces"},
		{"hidden", "unexported methods"},
	}
	for _, tt := range tests {
		t.Run(tt.iface, func(t *testing.T) {
			_, err := ParseSource("store.go", storeSrc, []string{tt.iface})
			if err == nil {
				t.Fatalf("expected error for %s", tt.iface)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestParseSource_SyntaxError(t *testing.T) {
	if _, err := ParseSource("bad.go", "package bad\ntype X interface {", []string{"X"}); err == nil {
		t.Fatal("expected parse error")
	}
}
