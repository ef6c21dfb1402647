package calltrace

// Observer is told about registrations, traced calls and sink trouble.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObjectRegistered(scope Scope, typeName string)
	// CallTraced is called once per traced call after it returns or panics.
	// failed is true when the call returned a non-nil error or panicked.
	CallTraced(typeName, method string, failed bool)
	SinkFailed()
	SinkBreakerChanged(from, to string)
}

type nopObserver struct{}

func (nopObserver) ObjectRegistered(Scope, string)    {}
func (nopObserver) CallTraced(string, string, bool)   {}
func (nopObserver) SinkFailed()                       {}
func (nopObserver) SinkBreakerChanged(string, string) {}
