package main

import (
	"errors"
	"sync"
)

//go:generate go run ../calltrace-gen -src orders.go -iface OrderBook,Pricer

var (
	errEmptyItem   = errors.New("item is empty")
	errBadQuantity = errors.New("quantity must be positive")
	errNoOrder     = errors.New("no such order")
	errNoPrice     = errors.New("item has no price")
)

// OrderBook keeps open orders.
type OrderBook interface {
	Place(item string, qty int) (int, error)
	Cancel(id int) error
	Open() []Order
}

// Pricer quotes orders.
type Pricer interface {
	Quote(item string, qty int) (float64, error)
	Discount(codes ...string) float64
}

type Order struct {
	ID   int
	Item string
	Qty  int
}

// book is traced per method: only Place and Cancel carry markers.
type book struct {
	mu     sync.Mutex
	nextID int
	orders map[int]Order
}

func newBook() *book {
	return &book{orders: make(map[int]Order)}
}

func (b *book) Place(item string, qty int) (int, error) {
	if item == "" {
		return 0, errEmptyItem
	}
	if qty <= 0 {
		return 0, errBadQuantity
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.orders[b.nextID] = Order{ID: b.nextID, Item: item, Qty: qty}
	return b.nextID, nil
}

func (b *book) Cancel(id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.orders[id]; !ok {
		return errNoOrder
	}
	delete(b.orders, id)
	return nil
}

func (b *book) Open() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Order, 0, len(b.orders))
	for id := 1; id <= b.nextID; id++ {
		if o, ok := b.orders[id]; ok {
			out = append(out, o)
		}
	}
	return out
}

// pricer is traced as a whole.
type pricer struct {
	prices map[string]float64
}

func (p *pricer) Quote(item string, qty int) (float64, error) {
	price, ok := p.prices[item]
	if !ok {
		return 0, errNoPrice
	}
	return price * float64(qty), nil
}

func (p *pricer) Discount(codes ...string) float64 {
	return 0.05 * float64(len(codes))
}
