package webhook

import (
	"context"
	"errors"
)

var ErrMethodNotFound = errors.New("method not found")

// MethodFunc handles one protocol method. The result is encoded by the protocol envelope.
type MethodFunc[P any] func(ctx context.Context, params P) (any, error)

// Dispatcher routes a decoded request to the method table of a protocol.
type Dispatcher[K comparable, P any] struct {
	methods map[K]MethodFunc[P]
}

func NewDispatcher[K comparable, P any](methods map[K]MethodFunc[P]) *Dispatcher[K, P] {
	table := make(map[K]MethodFunc[P], len(methods))
	for k, fn := range methods {
		table[k] = fn
	}
	return &Dispatcher[K, P]{methods: table}
}

func (d *Dispatcher[K, P]) Has(method K) bool {
	_, ok := d.methods[method]
	return ok
}

func (d *Dispatcher[K, P]) Dispatch(ctx context.Context, method K, params P) (any, error) {
	fn, ok := d.methods[method]
	if !ok {
		return nil, ErrMethodNotFound
	}
	return fn(ctx, params)
}
