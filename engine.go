package calltrace

import (
	"reflect"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// Engine discovers markers on managed objects and substitutes proxies for
// the marked ones. A container drives it through BeforeManagedObjectReady and
// AfterManagedObjectReady; Close tears the registries down.
type Engine struct {
	cfg      Config
	classes  *ClassRegistrar
	methods  *MethodRegistrar
	d        *dispatcher
	observer Observer
	diag     zerolog.Logger

	capMu        sync.RWMutex
	capabilities []capability
}

type capability struct {
	iface reflect.Type
	build func(*Proxy) any
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs an Observer. The default discards everything.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithDiagnostics sets the logger used for the engine's own warnings, such as
// malformed markers and sink failures. It is kept apart from the Sink. The
// default is zerolog.Nop().
func WithDiagnostics(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.diag = l
	}
}

// New creates an Engine. markers may be nil when objects only declare their
// markers themselves.
func New(cfg Config, markers MarkerSource, sink Sink, opts ...Option) (*Engine, error) {
	const op errors.Op = "calltrace.New"
	if sink == nil {
		return nil, errors.New(op).Msg(errMsgNilSink)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		classes:  NewClassRegistrar(markers),
		methods:  NewMethodRegistrar(markers),
		observer: nopObserver{},
		diag:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.d = &dispatcher{
		guard:    newSinkGuard(sink, cfg, e.diag, e.observer),
		observer: e.observer,
		format:   cfg.ValueFormat,
	}
	return e, nil
}

// Expose registers the capability adapter for interface I. When a marked
// object implements I, Wrap hands build a Proxy for it and returns build's
// result in place of the object. Adapters are tried in registration order.
func Expose[I any](e *Engine, build func(*Proxy) I) error {
	const op errors.Op = "calltrace.Expose"
	iface := reflect.TypeFor[I]()
	if iface.Kind() != reflect.Interface {
		return errors.New(op).Msg(errMsgCapabilityNotIface + " type=" + iface.String())
	}

	e.capMu.Lock()
	defer e.capMu.Unlock()
	e.capabilities = append(e.capabilities, capability{
		iface: iface,
		build: func(p *Proxy) any { return build(p) },
	})
	return nil
}

// BeforeManagedObjectReady runs both registrars on obj. The observer hears
// about a key only the first time a registrar records it. A registrar that
// fails only skips obj for its own scope; the failure is logged on the
// diagnostic logger and never returned, so a bad marker cannot stop the
// application from starting.
func (e *Engine) BeforeManagedObjectReady(obj any, key string) {
	if added, err := e.classes.register(obj, key); err != nil {
		e.discoveryFailed(ScopeClass, key, err)
	} else if added {
		e.observer.ObjectRegistered(ScopeClass, typeName(reflect.TypeOf(obj)))
	}

	if added, err := e.methods.register(obj, key); err != nil {
		e.discoveryFailed(ScopeMethod, key, err)
	} else if added {
		e.observer.ObjectRegistered(ScopeMethod, typeName(reflect.TypeOf(obj)))
	}
}

// AfterManagedObjectReady returns what the container should hand to the
// object's consumers: a proxy for marked objects, obj itself otherwise.
func (e *Engine) AfterManagedObjectReady(obj any, key string) any {
	return e.Wrap(obj, key)
}

// Wrap returns a proxy for the object registered under key, exposed through
// the first capability adapter obj's type implements. The class marker takes
// precedence over method markers. Objects that are not registered are
// returned unchanged, as are marked objects without a matching adapter.
//
// Callers receive a different value than obj when it is proxied; identity
// comparisons against the original do not hold.
func (e *Engine) Wrap(obj any, key string) any {
	if !e.cfg.Enabled || obj == nil {
		return obj
	}

	var (
		pol policy
		t   reflect.Type
	)
	if entry, ok := e.classes.Lookup(key); ok {
		pol, t = classPolicy{opts: entry.Options}, entry.Type
	} else if entry, ok := e.methods.Lookup(key); ok {
		pol, t = newMethodPolicy(entry.Methods), entry.Type
	} else {
		return obj
	}

	c, ok := e.capability(reflect.TypeOf(obj))
	if !ok {
		e.diag.Warn().
			Str("key", key).
			Str("type", t.String()).
			Str("scope", string(pol.scope())).
			Msg("No capability adapter for marked object; left untraced")
		return obj
	}

	return c.build(newProxy(obj, key, typeName(t), c.iface, pol, e.d))
}

func (e *Engine) capability(t reflect.Type) (capability, bool) {
	e.capMu.RLock()
	defer e.capMu.RUnlock()
	for _, c := range e.capabilities {
		if t.Implements(c.iface) {
			return c, true
		}
	}
	return capability{}, false
}

// Registered returns the number of objects recorded per scope.
func (e *Engine) Registered() (classes, methods int) {
	return e.classes.Len(), e.methods.Len()
}

// Close drops both registries. Proxies already handed out keep working with
// the entries they were built from.
func (e *Engine) Close() error {
	e.classes.Reset()
	e.methods.Reset()
	return nil
}

func (e *Engine) discoveryFailed(scope Scope, key string, err error) {
	e.diag.Warn().
		Err(err).
		Str("key", key).
		Str("scope", string(scope)).
		Msg("Marker discovery failed; object left untraced for this scope")
}
