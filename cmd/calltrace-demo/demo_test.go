package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/Station-Manager/calltrace"
	"github.com/Station-Manager/calltrace/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lines struct {
	mu  sync.Mutex
	all []string
}

func (l *lines) Emit(_ zerolog.Level, template string, values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append(l.all, fmt.Sprintf(template, values...))
}

func TestAssemble_TracesMarkedMethodsOnly(t *testing.T) {
	out := &lines{}
	engine, c, err := assemble(calltrace.DefaultConfig(), out)
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()

	classes, methods := engine.Registered()
	assert.Equal(t, 1, classes)
	assert.Equal(t, 1, methods)

	orders, ok := c.get("orders").(OrderBook)
	require.True(t, ok)
	_, isBook := orders.(*book)
	assert.False(t, isBook, "orders should be proxied")

	id, err := orders.Place("coax", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Same(t, errNoOrder, orders.Cancel(42))
	assert.Len(t, orders.Open(), 1)

	assert.Equal(t, []string{
		"Class: book, method: Place",
		"arg: coax",
		"arg: 3",
		"returned value: 1",
		"Class: book, method: Cancel",
		"arg: 42",
	}, out.all)
}

func TestAssemble_ClassScopedPricer(t *testing.T) {
	out := &lines{}
	_, c, err := assemble(calltrace.DefaultConfig(), out)
	require.NoError(t, err)

	prices := c.get("pricer").(Pricer)
	total, err := prices.Quote("antenna", 2)
	require.NoError(t, err)
	assert.Equal(t, 99.0, total)

	_, err = prices.Quote("dish", 1)
	assert.Same(t, errNoPrice, err)

	assert.InDelta(t, 0.1, prices.Discount("A", "B"), 1e-9)

	assert.Equal(t, []string{
		"Class: pricer, method: Quote",
		"returned value: 99",
		"Class: pricer, method: Quote",
		"Class: pricer, method: Discount",
		"returned value: 0.1",
	}, out.all)
}

func TestAssemble_Disabled(t *testing.T) {
	cfg := calltrace.DefaultConfig()
	cfg.Enabled = false
	out := &lines{}
	_, c, err := assemble(cfg, out)
	require.NoError(t, err)

	_, isBook := c.get("orders").(*book)
	assert.True(t, isBook)
}

func TestExercise_WithUninitializedLogger(t *testing.T) {
	out := &lines{}
	_, c, err := assemble(calltrace.DefaultConfig(), out)
	require.NoError(t, err)

	assert.NotPanics(t, func() { exercise(&logging.Service{}, c) })
	assert.NotEmpty(t, out.all)
}
