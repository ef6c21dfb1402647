// Package calltrace is an opt-in method-call tracing facility for objects
// managed by a container.
//
// Objects are marked either as a whole (class marker) or per method (method
// marker). The container feeds every object through the engine's lifecycle
// hooks; marked objects come back as proxies that log each matched call
// before it runs (type, method and optionally every argument) and after it
// returns (optionally the returned value). Results, returned errors and
// panics reach the caller unchanged.
//
// Markers
//   - A registration table: MarkClass[T] and MarkMethod[T] on a Markers.
//   - Self declaration: a type implementing ClassMarked or MethodMarked.
//
// Method markers are matched to invoked methods by shape, that is parameter
// and result types, not by name. Two marked methods with the same shape are
// indistinguishable and the first in method order supplies the options.
//
// # Proxies
//
// Go cannot implement an interface at run time, so each interface a traced
// object is consumed through needs a capability adapter: a small type that
// implements the interface by forwarding to Proxy.Invoke. The calltrace-gen
// command writes them.
//
// Typical usage
//
//	markers := calltrace.NewMarkers()
//	calltrace.MarkClass[*orderStore](markers, calltrace.Options{LogReturnValue: true})
//
//	engine, err := calltrace.New(calltrace.DefaultConfig(), markers, sink)
//	if err != nil { return err }
//	_ = calltrace.Expose[OrderStore](engine, NewOrderStoreTrace)
//
//	engine.BeforeManagedObjectReady(store, "orders")
//	store = engine.AfterManagedObjectReady(store, "orders").(OrderStore)
package calltrace
