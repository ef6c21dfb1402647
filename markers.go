package calltrace

import (
	"reflect"
	"sync"

	"github.com/Station-Manager/errors"
)

// MarkerSource answers whether a type, or the methods of a type, carry
// logging markers. The engine only queries it; how markers are declared is
// up to the implementation.
type MarkerSource interface {
	// ClassMarker returns the class marker options of t, or nil when t is not
	// marked.
	ClassMarker(t reflect.Type) (*Options, error)
	// MethodMarkers returns the marked exported methods of t in method index
	// order.
	MethodMarkers(t reflect.Type) ([]MarkedMethod, error)
}

// ClassMarked is implemented by types that declare their class marker
// themselves.
type ClassMarked interface {
	TraceOptions() Options
}

// MethodMarked is implemented by types that declare their method markers
// themselves, keyed by method name.
type MethodMarked interface {
	TracedMethods() map[string]Options
}

// MarkedMethod is an exported method of a concrete type that carries the
// method marker.
type MarkedMethod struct {
	Method  reflect.Method
	Options Options
}

// Markers is a registration table implementing MarkerSource. The zero value
// is not usable; call NewMarkers.
type Markers struct {
	mu      sync.RWMutex
	classes map[reflect.Type][]Options
	methods map[reflect.Type]map[string][]Options
}

// NewMarkers returns an empty marker table.
func NewMarkers() *Markers {
	return &Markers{
		classes: make(map[reflect.Type][]Options),
		methods: make(map[reflect.Type]map[string][]Options),
	}
}

// MarkClass attaches the class marker to T. T is the dynamic type of the
// managed object, usually a pointer type.
func MarkClass[T any](m *Markers, opts Options) {
	m.markClass(reflect.TypeFor[T](), opts)
}

// MarkMethod attaches the method marker to the method of T called name.
func MarkMethod[T any](m *Markers, name string, opts Options) {
	m.markMethod(reflect.TypeFor[T](), name, opts)
}

func (m *Markers) markClass(t reflect.Type, opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[t] = append(m.classes[t], opts)
}

func (m *Markers) markMethod(t reflect.Type, name string, opts Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byName, ok := m.methods[t]
	if !ok {
		byName = make(map[string][]Options)
		m.methods[t] = byName
	}
	byName[name] = append(byName[name], opts)
}

// ClassMarker implements MarkerSource.
func (m *Markers) ClassMarker(t reflect.Type) (*Options, error) {
	const op errors.Op = "calltrace.Markers.ClassMarker"
	m.mu.RLock()
	defer m.mu.RUnlock()

	declared := m.classes[t]
	switch len(declared) {
	case 0:
		return nil, nil
	case 1:
		opts := declared[0]
		return &opts, nil
	default:
		return nil, errors.New(op).Msg(errMsgDuplicateClass + " type=" + t.String())
	}
}

// MethodMarkers implements MarkerSource.
func (m *Markers) MethodMarkers(t reflect.Type) ([]MarkedMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byName := m.methods[t]
	if len(byName) == 0 {
		return nil, nil
	}
	flat := make(map[string]Options, len(byName))
	for name, declared := range byName {
		if len(declared) > 1 {
			const op errors.Op = "calltrace.Markers.MethodMarkers"
			return nil, errors.New(op).Msg(errMsgDuplicateMethod + " method=" + t.String() + "." + name)
		}
		flat[name] = declared[0]
	}
	return resolveMethods(t, flat)
}

// resolveMethods turns marker options keyed by method name into MarkedMethods
// ordered by method index. Names that are not exported methods of t are an
// error.
func resolveMethods(t reflect.Type, byName map[string]Options) ([]MarkedMethod, error) {
	const op errors.Op = "calltrace.resolveMethods"
	for name := range byName {
		if _, ok := t.MethodByName(name); !ok {
			return nil, errors.New(op).Msg(errMsgUnknownMethod + " method=" + t.String() + "." + name)
		}
	}

	marked := make([]MarkedMethod, 0, len(byName))
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if opts, ok := byName[method.Name]; ok {
			marked = append(marked, MarkedMethod{Method: method, Options: opts})
		}
	}
	return marked, nil
}
