package calltrace

// Options are the logging options carried by a marker.
type Options struct {
	// LogArguments emits every argument at debug level before the call.
	LogArguments bool
	// LogReturnValue emits the returned value at debug level after a
	// successful call.
	LogReturnValue bool
}

var (
	// DefaultClassOptions logs only the type and method name.
	DefaultClassOptions = Options{}
	// DefaultMethodOptions logs arguments and the returned value.
	DefaultMethodOptions = Options{LogArguments: true, LogReturnValue: true}
)

// Scope is the granularity a marker applies to.
type Scope string

const (
	ScopeClass  Scope = "class"
	ScopeMethod Scope = "method"
)
