package patchbind

import (
	"context"
	"reflect"
)

// Validator checks a bound model and reports every violated rule.
// Implementations key issues by JSON Pointer of the property name.
type Validator interface {
	Validate(ctx context.Context, model any) Issues
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, model any) Issues

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, model any) Issues { return f(ctx, model) }

// BindAndValidate binds req into a T, validates the result with v and, for
// partial updates, drops issues for untouched properties of models that
// implement TouchedReporter. A bind error is returned as err with nil issues;
// the model is still returned when only validation fails. A nil v skips
// validation.
func BindAndValidate[T any](ctx context.Context, req Request, v Validator, opts ...BindOpt) (Bound[T], Issues, error) {
	return BindAndValidateWith[T](ctx, defaultBinder, req, v, opts...)
}

// BindAndValidateWith is BindAndValidate using b.
func BindAndValidateWith[T any](ctx context.Context, b *Binder, req Request, v Validator, opts ...BindOpt) (Bound[T], Issues, error) {
	if b == nil {
		b = defaultBinder
	}
	bd, err := BindWith[T](ctx, b, req, opts...)
	if err != nil || v == nil {
		return bd, nil, err
	}
	model := any(bd.Value)
	if reflect.TypeFor[T]().Kind() != reflect.Pointer {
		model = &bd.Value
	}
	issues := v.Validate(ctx, model)
	if lastOpt(opts, b.Opt).Partial {
		issues = Suppress(issues, model)
	}
	if len(issues) == 0 {
		return bd, nil, nil
	}
	b.logger().Debug("validation failed", "type", reflect.TypeFor[T]().String(), "issues", len(issues))
	return bd, issues, nil
}
