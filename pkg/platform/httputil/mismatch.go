package httputil

import (
	"encoding"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"

	dErrors "maklarsystem/pkg/domain-errors"
)

// TypeMismatch is a JSON value whose type does not fit its field. Path is the
// dotted JSON path from the body root, array elements addressed by index. It
// encodes like a validation field error.
type TypeMismatch struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// MismatchError returns the mismatches as a CodeValidation error.
func MismatchError(ms []TypeMismatch) error {
	return dErrors.NewWithDetails(dErrors.CodeValidation, "validation failed", ms)
}

var (
	jsonUnmarshaler = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshaler = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// mismatches walks a generic decode of the body against the target value,
// recording every value whose JSON type does not fit and clearing the field
// that encoding/json left at its zero value for it.
type mismatches struct {
	found []TypeMismatch
}

func (m *mismatches) add(path string, data any) {
	m.found = append(m.found, TypeMismatch{
		Path:    path,
		Kind:    "format",
		Message: "must not be a JSON " + jsonKind(data),
	})
}

// walk reports whether data fits v. A false return means the caller owns
// the slot holding v and must reset it.
func (m *mismatches) walk(v reflect.Value, data any, path string) bool {
	if data == nil {
		return true
	}
	t := v.Type()
	if custom, ok := customFit(t, data); ok {
		if !custom {
			m.add(path, data)
		}
		return custom
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := v.Elem()
		if v.IsNil() {
			elem = reflect.New(t.Elem()).Elem()
		}
		return m.walk(elem, data, path)
	case reflect.Interface:
		return true
	case reflect.Struct:
		obj, ok := data.(map[string]any)
		if !ok {
			m.add(path, data)
			return false
		}
		m.walkStruct(v, obj, path)
		return true
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			return m.leaf(t, data, path)
		}
		arr, ok := data.([]any)
		if !ok {
			m.add(path, data)
			return false
		}
		fits := true
		for i := 0; i < v.Len() && i < len(arr); i++ {
			if !m.walk(v.Index(i), arr[i], join(path, strconv.Itoa(i))) {
				fits = false
			}
		}
		return fits
	case reflect.Map:
		obj, ok := data.(map[string]any)
		if !ok {
			m.add(path, data)
			return false
		}
		if t.Key().Kind() != reflect.String || v.IsNil() {
			return true
		}
		for key, val := range obj {
			k := reflect.ValueOf(key).Convert(t.Key())
			elem := reflect.New(t.Elem()).Elem()
			if cur := v.MapIndex(k); cur.IsValid() {
				elem.Set(cur)
			}
			if m.walk(elem, val, join(path, key)) {
				v.SetMapIndex(k, elem)
			} else {
				v.SetMapIndex(k, reflect.Value{})
			}
		}
		return true
	default:
		return m.leaf(t, data, path)
	}
}

func (m *mismatches) leaf(t reflect.Type, data any, path string) bool {
	if scalarFits(t, data) {
		return true
	}
	m.add(path, data)
	return false
}

func (m *mismatches) walkStruct(v reflect.Value, obj map[string]any, path string) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		name, skip := jsonName(sf)
		if skip {
			continue
		}
		fv := v.Field(i)
		if sf.Anonymous && name == "" && indirect(sf.Type).Kind() == reflect.Struct {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			m.walkStruct(fv, obj, path)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		key, ok := lookup(obj, name)
		if !ok {
			continue
		}
		if !m.walk(fv, obj[key], join(path, key)) && fv.CanSet() {
			fv.Set(reflect.Zero(fv.Type()))
		}
	}
}

// customFit handles types that decode themselves. ok is false for ordinary
// types.
func customFit(t reflect.Type, data any) (fits, ok bool) {
	pt := reflect.PointerTo(t)
	switch {
	case t.Kind() == reflect.Pointer:
		return false, false
	case t.Implements(jsonUnmarshaler) || pt.Implements(jsonUnmarshaler):
		return true, true
	case t.Implements(textUnmarshaler) || pt.Implements(textUnmarshaler):
		_, isString := data.(string)
		return isString, true
	default:
		return false, false
	}
}

func scalarFits(t reflect.Type, data any) bool {
	switch t.Kind() {
	case reflect.String:
		_, ok := data.(string)
		return ok
	case reflect.Bool:
		_, ok := data.(bool)
		return ok
	case reflect.Float32, reflect.Float64:
		_, ok := data.(float64)
		return ok
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := data.(float64)
		return ok && n == math.Trunc(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := data.(float64)
		return ok && n >= 0 && n == math.Trunc(n)
	case reflect.Slice:
		// []byte is base64 text.
		_, ok := data.(string)
		return ok
	default:
		return true
	}
}

func jsonName(sf reflect.StructField) (name string, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

// lookup finds the body key for a field the way encoding/json does: exact
// match first, then case-insensitive.
func lookup(obj map[string]any, name string) (string, bool) {
	if _, ok := obj[name]; ok {
		return name, true
	}
	for key := range obj {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return "", false
}

func indirect(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

func jsonKind(data any) string {
	switch data.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "value"
	}
}
