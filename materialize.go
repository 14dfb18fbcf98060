package patchbind

import (
	"fmt"
	"reflect"
)

// Materialize allocates a zero instance of the struct type t and assigns the
// merged values in order. When *t implements Patchable, the touched names
// are assigned last. The returned value is a pointer to the new instance.
func Materialize(t reflect.Type, m Merged) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return reflect.Value{}, &UnsupportedTargetTypeError{Type: t, Reason: "target must be a struct"}
	}
	ptr := reflect.New(t)
	model := ptr.Elem()
	for _, mv := range m.Values {
		fv := model.FieldByIndex(mv.Property.Index)
		if !fv.CanSet() {
			return reflect.Value{}, &UnsupportedTargetTypeError{Type: t, Reason: "property " + mv.Property.Name + " cannot be set"}
		}
		fv.Set(mv.Value)
	}
	if p, ok := ptr.Interface().(Patchable); ok {
		if err := allocCapability(model); err != nil {
			return reflect.Value{}, &UnsupportedTargetTypeError{Type: t, Reason: err.Error()}
		}
		p.SetTouchedProperties(m.Touched.Names())
	}
	return ptr, nil
}

var (
	patchableType       = reflect.TypeOf((*Patchable)(nil)).Elem()
	touchedReporterType = reflect.TypeOf((*TouchedReporter)(nil)).Elem()
)

// allocCapability allocates nil embedded pointers through which v gets its
// Patchable or TouchedReporter methods, so the promoted calls have a receiver.
func allocCapability(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		fv := v.Field(i)
		switch sf.Type.Kind() {
		case reflect.Struct:
			if err := allocCapability(fv); err != nil {
				return err
			}
		case reflect.Pointer:
			if sf.Type.Elem().Kind() != reflect.Struct {
				continue
			}
			if !sf.Type.Implements(patchableType) && !sf.Type.Implements(touchedReporterType) {
				continue
			}
			if fv.IsNil() {
				if !fv.CanSet() {
					return fmt.Errorf("embedded %s is nil and unexported", sf.Type)
				}
				fv.Set(reflect.New(sf.Type.Elem()))
			}
			if err := allocCapability(fv.Elem()); err != nil {
				return err
			}
		}
	}
	return nil
}
