package calltrace

import (
	"reflect"
	"sync"

	"github.com/Station-Manager/errors"
)

// ClassEntry records an object whose type carries the class marker.
type ClassEntry struct {
	Key     string
	Type    reflect.Type
	Options Options
}

// MethodEntry records an object with at least one marked method.
type MethodEntry struct {
	Key     string
	Type    reflect.Type
	Methods []MarkedMethod
}

// ClassRegistrar records objects whose type carries the class marker.
type ClassRegistrar struct {
	markers MarkerSource
	mu      sync.RWMutex
	entries map[string]ClassEntry
}

// NewClassRegistrar returns an empty registrar that queries markers.
func NewClassRegistrar(markers MarkerSource) *ClassRegistrar {
	return &ClassRegistrar{markers: markers, entries: make(map[string]ClassEntry)}
}

// Register inspects obj's dynamic type for the class marker and records it
// under key. Registering a key again overwrites the previous entry. When the
// marker is absent nothing is recorded and nil is returned.
func (r *ClassRegistrar) Register(obj any, key string) error {
	_, err := r.register(obj, key)
	return err
}

// register reports whether key was newly added.
func (r *ClassRegistrar) register(obj any, key string) (bool, error) {
	const op errors.Op = "calltrace.ClassRegistrar.Register"

	if err := checkManaged(obj, key); err != nil {
		return false, err
	}

	t := reflect.TypeOf(obj)
	opts, err := r.classMarker(obj, t)
	if err != nil {
		return false, errors.New(op).Err(err).Msg("class marker query failed for " + key)
	}
	if opts == nil {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.entries[key]
	r.entries[key] = ClassEntry{Key: key, Type: t, Options: *opts}
	return !existed, nil
}

func (r *ClassRegistrar) classMarker(obj any, t reflect.Type) (*Options, error) {
	const op errors.Op = "calltrace.ClassRegistrar.classMarker"
	var fromTable *Options
	if r.markers != nil {
		var err error
		if fromTable, err = r.markers.ClassMarker(t); err != nil {
			return nil, err
		}
	}

	declarer, ok := obj.(ClassMarked)
	if !ok {
		return fromTable, nil
	}
	if fromTable != nil {
		return nil, errors.New(op).Msg(errMsgDuplicateClass + " type=" + t.String())
	}
	opts := declarer.TraceOptions()
	return &opts, nil
}

// Lookup returns the entry recorded under key.
func (r *ClassRegistrar) Lookup(key string) (ClassEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Len returns the number of recorded objects.
func (r *ClassRegistrar) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset drops every entry.
func (r *ClassRegistrar) Reset() {
	r.mu.Lock()
	r.entries = make(map[string]ClassEntry)
	r.mu.Unlock()
}

// MethodRegistrar records objects that have marked methods.
type MethodRegistrar struct {
	markers MarkerSource
	mu      sync.RWMutex
	entries map[string]MethodEntry
}

// NewMethodRegistrar returns an empty registrar that queries markers.
func NewMethodRegistrar(markers MarkerSource) *MethodRegistrar {
	return &MethodRegistrar{markers: markers, entries: make(map[string]MethodEntry)}
}

// Register collects the marked exported methods of obj's dynamic type and
// records them under key when there is at least one.
func (r *MethodRegistrar) Register(obj any, key string) error {
	_, err := r.register(obj, key)
	return err
}

// register reports whether key was newly added.
func (r *MethodRegistrar) register(obj any, key string) (bool, error) {
	const op errors.Op = "calltrace.MethodRegistrar.Register"
	if err := checkManaged(obj, key); err != nil {
		return false, err
	}

	t := reflect.TypeOf(obj)
	methods, err := r.methodMarkers(obj, t)
	if err != nil {
		return false, errors.New(op).Err(err).Msg("method marker query failed for " + key)
	}
	if len(methods) == 0 {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	_, existed := r.entries[key]
	r.entries[key] = MethodEntry{Key: key, Type: t, Methods: methods}
	return !existed, nil
}

func (r *MethodRegistrar) methodMarkers(obj any, t reflect.Type) ([]MarkedMethod, error) {
	const op errors.Op = "calltrace.MethodRegistrar.methodMarkers"
	var fromTable []MarkedMethod
	if r.markers != nil {
		var err error
		if fromTable, err = r.markers.MethodMarkers(t); err != nil {
			return nil, err
		}
	}

	declarer, ok := obj.(MethodMarked)
	if !ok {
		return fromTable, nil
	}
	if len(fromTable) > 0 {
		return nil, errors.New(op).Msg(errMsgDuplicateMethod + " type=" + t.String())
	}
	return resolveMethods(t, declarer.TracedMethods())
}

// Lookup returns the entry recorded under key.
func (r *MethodRegistrar) Lookup(key string) (MethodEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Len returns the number of recorded objects.
func (r *MethodRegistrar) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset drops every entry.
func (r *MethodRegistrar) Reset() {
	r.mu.Lock()
	r.entries = make(map[string]MethodEntry)
	r.mu.Unlock()
}

func checkManaged(obj any, key string) error {
	const op errors.Op = "calltrace.checkManaged"
	if obj == nil {
		return errors.New(op).Msg(errMsgNilObject)
	}
	if key == emptyString {
		return errors.New(op).Msg(errMsgEmptyKey)
	}
	return nil
}
