package calltrace

import (
	"fmt"
	"reflect"
)

// Proxy forwards calls to a wrapped object through the dispatch policy. It is
// not used directly by callers: a capability adapter registered with Expose
// implements the object's interface on top of it by forwarding every method
// to Invoke.
//
// A Proxy is immutable after construction and safe for concurrent use to the
// extent the wrapped object is.
type Proxy struct {
	key      string
	typeName string
	target   reflect.Value
	iface    reflect.Type
	sites    map[string]*callSite
	policy   policy
	d        *dispatcher
}

// callSite is a method of the wrapped object resolved against the policy.
type callSite struct {
	name   string
	fn     reflect.Value
	sig    signature
	opts   Options
	traced bool
}

func newProxy(obj any, key, typeName string, iface reflect.Type, pol policy, d *dispatcher) *Proxy {
	p := &Proxy{
		key:      key,
		typeName: typeName,
		target:   reflect.ValueOf(obj),
		iface:    iface,
		sites:    make(map[string]*callSite, iface.NumMethod()),
		policy:   pol,
		d:        d,
	}
	for i := 0; i < iface.NumMethod(); i++ {
		m := iface.Method(i)
		p.sites[m.Name] = p.site(m.Name, funcSignature(m.Type))
	}
	return p
}

func (p *Proxy) site(name string, invoked signature) *callSite {
	opts, traced := p.policy.resolve(invoked)
	return &callSite{
		name:   name,
		fn:     p.target.MethodByName(name),
		sig:    invoked,
		opts:   opts,
		traced: traced,
	}
}

// Key is the container key the wrapped object was registered under.
func (p *Proxy) Key() string { return p.key }

// Target returns the wrapped object.
func (p *Proxy) Target() any { return p.target.Interface() }

// Capability is the interface the proxy is exposed as.
func (p *Proxy) Capability() reflect.Type { return p.iface }

// Invoke calls method on the wrapped object with args and returns all of its
// results. For a variadic method the last argument is the variadic slice.
// A nil argument is passed as the zero value of the parameter type.
//
// A trailing error result is returned as the very value the method returned
// and a panic in the method propagates with its original value.
func (p *Proxy) Invoke(method string, args ...any) []any {
	site, ok := p.sites[method]
	if !ok {
		site = p.concreteSite(method)
	}

	in := site.arguments(args)
	if !site.traced {
		return interfaces(site.call(in))
	}
	return p.d.invoke(p.typeName, site, args, in)
}

// concreteSite resolves a method outside the capability interface against
// the concrete type. The result is not cached to keep the proxy immutable.
func (p *Proxy) concreteSite(method string) *callSite {
	m, ok := p.target.Type().MethodByName(method)
	if !ok {
		panic(fmt.Sprintf("calltrace: %s has no exported method %s", p.typeName, method))
	}
	return p.site(method, methodSignature(m))
}

func (s *callSite) arguments(args []any) []reflect.Value {
	ft := s.fn.Type()
	if len(args) != ft.NumIn() {
		panic(fmt.Sprintf("calltrace: %s takes %d arguments, got %d", s.name, ft.NumIn(), len(args)))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		param := ft.In(i)
		if arg == nil {
			in[i] = reflect.Zero(param)
			continue
		}
		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(param) && v.Type().ConvertibleTo(param) {
			v = v.Convert(param)
		}
		in[i] = v
	}
	return in
}

func (s *callSite) call(in []reflect.Value) []reflect.Value {
	if s.fn.Type().IsVariadic() {
		return s.fn.CallSlice(in)
	}
	return s.fn.Call(in)
}

// failed reports whether the call returned a non-nil trailing error.
func (s *callSite) failed(results []reflect.Value) bool {
	if !s.sig.returnsError() || len(results) == 0 {
		return false
	}
	return !results[len(results)-1].IsNil()
}

// returned is the value logged for a successful call: nil when the method
// returns nothing but an error, the value itself for one result and the
// slice of results otherwise.
func (s *callSite) returned(out []any) any {
	values := out
	if s.sig.returnsError() {
		values = out[:len(out)-1]
	}
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// Out returns result i of an Invoke call as T. A nil result yields the zero
// value of T.
func Out[T any](out []any, i int) T {
	if out[i] == nil {
		var zero T
		return zero
	}
	return out[i].(T)
}

// Err returns result i of an Invoke call as an error.
func Err(out []any, i int) error {
	if out[i] == nil {
		return nil
	}
	return out[i].(error)
}
