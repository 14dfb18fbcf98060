package patchbind

import (
	"context"
	"log/slog"
	"reflect"

	"golang.org/x/sync/errgroup"
)

// Bound carries the bound model together with its touched set.
type Bound[T any] struct {
	Value   T
	Touched TouchedSet
}

// Binder binds requests to models. The zero value is ready to use; nil
// fields fall back to package defaults.
type Binder struct {
	Driver    JSONDriver   // nil: CurrentJSONDriver().
	Converter Converter    // nil: DefaultConverter.
	Resolver  *Resolver    // nil: the shared process-wide resolver.
	Logger    *slog.Logger // nil: discard.
	// Opt is used when a call passes no BindOpt.
	Opt BindOpt
}

var defaultBinder = &Binder{}

func (b *Binder) driver() JSONDriver {
	if b.Driver != nil {
		return b.Driver
	}
	return CurrentJSONDriver()
}

func (b *Binder) converter() Converter {
	if b.Converter != nil {
		return b.Converter
	}
	return DefaultConverter{}
}

func (b *Binder) resolver() *Resolver {
	if b.Resolver != nil {
		return b.Resolver
	}
	return defaultResolver
}

func (b *Binder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// BindType binds req onto a new instance of the struct type t (or *t) and
// returns a pointer to it along with the touched set. The operation is
// atomic: on error no model is returned.
func (b *Binder) BindType(ctx context.Context, t reflect.Type, req Request, opts ...BindOpt) (reflect.Value, TouchedSet, error) {
	opt := lastOpt(opts, b.Opt)
	props, err := b.resolver().Resolve(t)
	if err != nil {
		return reflect.Value{}, TouchedSet{}, err
	}
	idx := indexProperties(props)
	log := b.logger()
	x := extractor{driver: b.driver(), opt: opt, logger: log}

	// Route and query are in-memory reads; only the body may block.
	var body, route, query RawValueMap
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		body, err = x.body(gctx, req, idx)
		return err
	})
	g.Go(func() error {
		var err error
		if route, err = x.route(req.RouteValues(), idx); err != nil {
			return err
		}
		query, err = x.query(req.QueryValues(), idx)
		return err
	})
	if err := g.Wait(); err != nil {
		return reflect.Value{}, TouchedSet{}, err
	}

	merged, err := Merge(props, body, route, query, b.converter())
	if err != nil {
		return reflect.Value{}, TouchedSet{}, err
	}
	model, err := Materialize(t, merged)
	if err != nil {
		return reflect.Value{}, TouchedSet{}, err
	}
	log.Debug("request bound",
		"type", t.String(),
		"partial", opt.Partial,
		"bodyFields", len(body),
		"touched", merged.Touched.Names(),
	)
	return model, merged.Touched, nil
}

// BindWith binds req into a T using b. T is a struct type or a pointer to
// one.
func BindWith[T any](ctx context.Context, b *Binder, req Request, opts ...BindOpt) (Bound[T], error) {
	if b == nil {
		b = defaultBinder
	}
	var zero Bound[T]
	t := reflect.TypeFor[T]()
	ptr, touched, err := b.BindType(ctx, t, req, opts...)
	if err != nil {
		return zero, err
	}
	if t.Kind() == reflect.Pointer {
		return Bound[T]{Value: ptr.Interface().(T), Touched: touched}, nil
	}
	return Bound[T]{Value: ptr.Elem().Interface().(T), Touched: touched}, nil
}

// Bind binds req into a T with the default Binder.
func Bind[T any](ctx context.Context, req Request, opts ...BindOpt) (T, error) {
	bd, err := BindWith[T](ctx, defaultBinder, req, opts...)
	return bd.Value, err
}

// BindWithMeta binds req into a T with the default Binder and also returns
// the touched set.
func BindWithMeta[T any](ctx context.Context, req Request, opts ...BindOpt) (Bound[T], error) {
	return BindWith[T](ctx, defaultBinder, req, opts...)
}
