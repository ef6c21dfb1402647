package calltrace

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

var errorType = reflect.TypeFor[error]()

// signature is the shape of a method: parameter and result types without the
// receiver. The method name is deliberately not part of it.
type signature struct {
	in  []reflect.Type
	out []reflect.Type
}

// funcSignature reads the shape of a func type that has no receiver, such as
// the Type of an interface method.
func funcSignature(ft reflect.Type) signature {
	return funcSignatureFrom(ft, 0)
}

// methodSignature reads the shape of a method obtained from a concrete type,
// whose Type carries the receiver as the first parameter.
func methodSignature(m reflect.Method) signature {
	return funcSignatureFrom(m.Type, 1)
}

func funcSignatureFrom(ft reflect.Type, skip int) signature {
	sig := signature{
		in:  make([]reflect.Type, 0, ft.NumIn()-skip),
		out: make([]reflect.Type, 0, ft.NumOut()),
	}
	for i := skip; i < ft.NumIn(); i++ {
		sig.in = append(sig.in, ft.In(i))
	}
	for i := 0; i < ft.NumOut(); i++ {
		sig.out = append(sig.out, ft.Out(i))
	}
	return sig
}

func (s signature) matches(other signature) bool {
	return sameTypes(s.in, other.in) && sameTypes(s.out, other.out)
}

// returnsError reports whether the last result is the error interface.
func (s signature) returnsError() bool {
	return len(s.out) > 0 && s.out[len(s.out)-1] == errorType
}

func sameTypes(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// policy decides which options apply to an invoked method signature.
type policy interface {
	resolve(invoked signature) (Options, bool)
	scope() Scope
}

// classPolicy applies the class marker options to every method.
type classPolicy struct {
	opts Options
}

func (p classPolicy) resolve(signature) (Options, bool) { return p.opts, true }
func (p classPolicy) scope() Scope                      { return ScopeClass }

// methodPolicy applies a marked method's own options to invoked methods of
// the same shape. When several marked methods share a shape the first in
// method index order wins.
type methodPolicy struct {
	methods []MarkedMethod
	sigs    []signature
}

func newMethodPolicy(methods []MarkedMethod) methodPolicy {
	sigs := make([]signature, len(methods))
	for i, m := range methods {
		sigs[i] = methodSignature(m.Method)
	}
	return methodPolicy{methods: methods, sigs: sigs}
}

func (p methodPolicy) resolve(invoked signature) (Options, bool) {
	for i, sig := range p.sigs {
		if sig.matches(invoked) {
			return p.methods[i].Options, true
		}
	}
	return Options{}, false
}

func (p methodPolicy) scope() Scope { return ScopeMethod }

// Value formats accepted by Config.ValueFormat.
const (
	ValueFormatFmt  = "fmt"
	ValueFormatJSON = "json"
	ValueFormatDump = "dump"
)

// dispatcher emits the entries around a traced call. It is shared by every
// proxy of an engine and holds no per-call state.
type dispatcher struct {
	guard    *sinkGuard
	observer Observer
	format   string
}

func (d *dispatcher) invoke(typeName string, site *callSite, args []any, in []reflect.Value) []any {
	d.guard.emit(zerolog.InfoLevel, msgClassMethod, typeName, site.name)
	if site.opts.LogArguments {
		for _, arg := range args {
			d.value(msgArgument, arg)
		}
	}

	failed := true
	defer func() {
		d.observer.CallTraced(typeName, site.name, failed)
	}()

	results := site.call(in)
	failed = site.failed(results)
	out := interfaces(results)

	if site.opts.LogReturnValue && !failed {
		d.value(msgReturnedValue, site.returned(out))
	}
	return out
}

func (d *dispatcher) value(template string, v any) {
	switch d.format {
	case ValueFormatJSON:
		d.guard.emit(zerolog.DebugLevel, template, jsonValue(v))
	case ValueFormatDump:
		d.guard.emit(zerolog.DebugLevel, template, v)
		if composite(v) {
			d.guard.dump(v)
		}
	default:
		d.guard.emit(zerolog.DebugLevel, template, v)
	}
}

// jsonValue is v's JSON encoding, or v itself when encoding fails or panics.
func jsonValue(v any) (out any) {
	defer func() {
		if recover() != nil {
			out = v
		}
	}()
	encoded, err := json.Marshal(v)
	if err != nil {
		return v
	}
	return string(encoded)
}

func composite(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func interfaces(values []reflect.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}

// typeName is the unqualified name of t with pointers stripped.
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != emptyString {
		return name
	}
	return fmt.Sprint(t)
}
