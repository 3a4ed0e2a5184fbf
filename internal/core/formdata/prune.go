// Package formdata limpia payloads de formularios antes de mandarlos al
// endpoint de comandos.
package formdata

import (
	"reflect"

	"baby-care-log/internal/domain/events"
)

// Prune devuelve una copia de m sin las claves cuyo valor es nil, un puntero
// nil o el string vacío. Los punteros no nil se desreferencian. __action e id
// se conservan siempre. No modifica m.
func Prune[M ~map[string]any](m M) M {
	out := make(M, len(m))
	for k, v := range m {
		if k == events.ActionKey || k == events.FieldID {
			out[k] = v
			continue
		}
		v, ok := present(v)
		if !ok {
			continue
		}
		out[k] = v
	}
	return out
}

func present(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
		v = rv.Interface()
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, false
	}
	return v, true
}
