package main

import (
	"github.com/Station-Manager/calltrace"
)

// container is a minimal managed-object container: objects are added under a
// key and handed to the engine's hooks before anyone can look them up.
type container struct {
	engine  *calltrace.Engine
	objects map[string]any
}

func newContainer(engine *calltrace.Engine) *container {
	return &container{engine: engine, objects: make(map[string]any)}
}

func (c *container) add(key string, obj any) {
	c.engine.BeforeManagedObjectReady(obj, key)
	c.objects[key] = c.engine.AfterManagedObjectReady(obj, key)
}

func (c *container) get(key string) any {
	return c.objects[key]
}

// markers declares which demo types are traced and how.
func markers() *calltrace.Markers {
	m := calltrace.NewMarkers()
	calltrace.MarkMethod[*book](m, "Place", calltrace.DefaultMethodOptions)
	calltrace.MarkMethod[*book](m, "Cancel", calltrace.Options{LogArguments: true})
	calltrace.MarkClass[*pricer](m, calltrace.Options{LogReturnValue: true})
	return m
}

// assemble builds an engine over sink with the demo adapters and objects
// registered.
func assemble(cfg calltrace.Config, sink calltrace.Sink, opts ...calltrace.Option) (*calltrace.Engine, *container, error) {
	engine, err := calltrace.New(cfg, markers(), sink, opts...)
	if err != nil {
		return nil, nil, err
	}
	if err = ExposeOrderBook(engine); err != nil {
		return nil, nil, err
	}
	if err = ExposePricer(engine); err != nil {
		return nil, nil, err
	}

	c := newContainer(engine)
	c.add("orders", newBook())
	c.add("pricer", &pricer{prices: map[string]float64{"antenna": 49.5, "coax": 1.25}})
	return engine, c, nil
}
