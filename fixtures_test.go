package calltrace_test

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Station-Manager/calltrace"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

var errObjectNull = errors.New("Object is null")

// Getter is the capability both fixtures are exposed through.
type Getter interface {
	GetObject(o any) (any, error)
}

// A carries the class marker in the scenarios below.
type A struct{}

func (a *A) GetObject(o any) (any, error) { return o, nil }

// B carries a method marker on GetObject only.
type B struct{}

func (b *B) GetObject(o any) (any, error) {
	if o == nil {
		return nil, errObjectNull
	}
	return o, nil
}

func (b *B) Lookup(o any) (any, error) { return o, nil }
func (b *B) Describe() string          { return "b" }

// Inventory is exposed by Store.
type Inventory interface {
	Save(name string, qty int) error
	Names(prefix string, extra ...string) []string
	Ping()
	Boom()
	Count() (int, bool, error)
}

type Store struct {
	fail error
	pnc  any
}

func (s *Store) Save(name string, qty int) error { return s.fail }

func (s *Store) Names(prefix string, extra ...string) []string {
	out := make([]string, 0, len(extra))
	for _, e := range extra {
		out = append(out, prefix+e)
	}
	return out
}

func (s *Store) Ping() {}
func (s *Store) Boom() { panic(s.pnc) }

func (s *Store) Count() (int, bool, error) { return 3, true, nil }

// Declared carries its markers on itself.
type Declared struct{}

func (d *Declared) GetObject(o any) (any, error) { return o, nil }
func (d *Declared) TraceOptions() calltrace.Options {
	return calltrace.Options{LogArguments: true}
}

type getterAdapter struct{ p *calltrace.Proxy }

func (a getterAdapter) GetObject(o any) (any, error) {
	out := a.p.Invoke("GetObject", o)
	return calltrace.Out[any](out, 0), calltrace.Err(out, 1)
}

type fullGetter interface {
	Getter
	Lookup(o any) (any, error)
	Describe() string
}

type fullGetterAdapter struct{ p *calltrace.Proxy }

func (a fullGetterAdapter) GetObject(o any) (any, error) {
	out := a.p.Invoke("GetObject", o)
	return calltrace.Out[any](out, 0), calltrace.Err(out, 1)
}

func (a fullGetterAdapter) Lookup(o any) (any, error) {
	out := a.p.Invoke("Lookup", o)
	return calltrace.Out[any](out, 0), calltrace.Err(out, 1)
}

func (a fullGetterAdapter) Describe() string {
	out := a.p.Invoke("Describe")
	return calltrace.Out[string](out, 0)
}

type inventoryAdapter struct{ p *calltrace.Proxy }

func (a inventoryAdapter) Save(name string, qty int) error {
	out := a.p.Invoke("Save", name, qty)
	return calltrace.Err(out, 0)
}

func (a inventoryAdapter) Names(prefix string, extra ...string) []string {
	out := a.p.Invoke("Names", prefix, extra)
	return calltrace.Out[[]string](out, 0)
}

func (a inventoryAdapter) Ping() { a.p.Invoke("Ping") }
func (a inventoryAdapter) Boom() { a.p.Invoke("Boom") }

func (a inventoryAdapter) Count() (int, bool, error) {
	out := a.p.Invoke("Count")
	return calltrace.Out[int](out, 0), calltrace.Out[bool](out, 1), calltrace.Err(out, 2)
}

type entry struct {
	Level zerolog.Level
	Msg   string
}

// recorder is a Sink that keeps every formatted entry.
type recorder struct {
	mu      sync.Mutex
	entries []entry
	dumped  []any
}

func (r *recorder) Emit(level zerolog.Level, template string, values ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{Level: level, Msg: fmt.Sprintf(template, values...)})
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Msg
	}
	return out
}

func (r *recorder) levels() []zerolog.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]zerolog.Level, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Level
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	r.dumped = nil
}

// dumpRecorder is a recorder that also implements Dumper.
type dumpRecorder struct {
	recorder
}

func (r *dumpRecorder) Dump(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dumped = append(r.dumped, v)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Emit(level zerolog.Level, template string, values ...any) {
	m.Called(level, template, values)
}

type observed struct {
	mu         sync.Mutex
	registered []string
	calls      []string
	failures   int
	changes    []string
}

func (o *observed) ObjectRegistered(scope calltrace.Scope, typeName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registered = append(o.registered, string(scope)+":"+typeName)
}

func (o *observed) CallTraced(typeName, method string, failed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, fmt.Sprintf("%s.%s failed=%t", typeName, method, failed))
}

func (o *observed) SinkFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

func (o *observed) SinkBreakerChanged(from, to string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, from+"->"+to)
}

func (o *observed) snapshot() (registered, calls []string, failures int, changes []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.registered...),
		append([]string(nil), o.calls...),
		o.failures,
		append([]string(nil), o.changes...)
}
