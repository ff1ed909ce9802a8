package chromelogger

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unsafe"
)

const (
	redactedValue = "[redacted]"
	privatePrefix = "private "
	messageKey    = "message"

	// ConsoleValue results that keep returning other valuers stop here even
	// when MaxDepth is unlimited.
	maxValuerHops = DefaultMaxDepth

	tagName   = "chromelogger"
	tagSkip   = "-"
	tagRedact = "redact"
)

// Secret is a string that is never written to the console.
type Secret string

// String keeps the value out of fmt output as well.
func (Secret) String() string { return redactedValue }

// ConsoleValuer lets a type choose its own console representation.
type ConsoleValuer interface {
	ConsoleValue() any
}

var (
	secretType = reflect.TypeOf(Secret(""))
	timeType   = reflect.TypeOf(time.Time{})
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	valuerType = reflect.TypeOf((*ConsoleValuer)(nil)).Elem()
)

// Flatten converts v into the representation written to the header using the
// default depth limit.
func Flatten(v any) any {
	return newFlattener(DefaultMaxDepth).flatten(v)
}

// identity of a reference value; len separates a slice from its prefixes
type visitKey struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// flattener holds the ancestors of the value being converted. A new one is
// used for every top-level argument.
type flattener struct {
	maxDepth   int
	visiting   map[visitKey]struct{}
	valuerHops int
}

func newFlattener(maxDepth int) *flattener {
	return &flattener{maxDepth: maxDepth, visiting: make(map[visitKey]struct{})}
}

func (f *flattener) flatten(v any) any {
	if v == nil {
		return nil
	}
	return f.value(reflect.ValueOf(v), 0)
}

func (f *flattener) value(v reflect.Value, depth int) any {
	if !v.IsValid() {
		return nil
	}
	v = readable(v)
	t := v.Type()
	if t == secretType {
		return redactedValue
	}
	if inner, ok := consoleValue(v); ok {
		iv := reflect.ValueOf(inner)
		if iv.IsValid() && iv.Type() == t {
			return f.structural(readable(iv), depth)
		}
		if f.tooDeep(depth+1) || f.valuerHops >= maxValuerHops {
			return depthSentinel(t)
		}
		f.valuerHops++
		defer func() { f.valuerHops-- }()
		return f.value(iv, depth+1)
	}
	if t == timeType && v.CanInterface() {
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	}
	return f.structural(v, depth)
}

func (f *flattener) structural(v reflect.Value, depth int) any {
	t := v.Type()
	switch v.Kind() {
	case reflect.Bool:
		if builtin(v) {
			return v.Interface()
		}
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if builtin(v) {
			return v.Interface()
		}
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if builtin(v) {
			return v.Interface()
		}
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		fl := v.Float()
		if math.IsNaN(fl) || math.IsInf(fl, 0) {
			// not representable in JSON
			return strconv.FormatFloat(fl, 'g', -1, 64)
		}
		if builtin(v) {
			return v.Interface()
		}
		return fl
	case reflect.Complex64, reflect.Complex128:
		return fmt.Sprint(v.Complex())
	case reflect.String:
		if builtin(v) {
			return v.Interface()
		}
		return v.String()
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return f.value(v.Elem(), depth)
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		key := visitKey{typ: t, ptr: v.Pointer()}
		if _, ok := f.visiting[key]; ok {
			return recursionSentinel(t.Elem())
		}
		f.visiting[key] = struct{}{}
		defer delete(f.visiting, key)

		elem := v.Elem()
		if msg, ok := errorMessage(v); ok && elem.Kind() == reflect.Struct {
			return f.object(elem, depth, msg, true)
		}
		return f.value(elem, depth)
	case reflect.Struct:
		msg, ok := errorMessage(v)
		return f.object(v, depth, msg, ok)
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if f.tooDeep(depth) {
			return depthSentinel(t)
		}
		key := visitKey{typ: t, ptr: v.Pointer()}
		if _, ok := f.visiting[key]; ok {
			return recursionSentinel(t)
		}
		f.visiting[key] = struct{}{}
		defer delete(f.visiting, key)
		return f.mapping(v, depth)
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes())
		}
		if f.tooDeep(depth) {
			return depthSentinel(t)
		}
		if v.Len() > 0 {
			key := visitKey{typ: t, ptr: v.Pointer(), len: v.Len()}
			if _, ok := f.visiting[key]; ok {
				return recursionSentinel(t)
			}
			f.visiting[key] = struct{}{}
			defer delete(f.visiting, key)
		}
		return f.list(v, depth)
	case reflect.Array:
		if f.tooDeep(depth) {
			return depthSentinel(t)
		}
		return f.list(v, depth)
	default:
		return fmt.Sprintf("unsupported value [%s]", typeName(t))
	}
}

// object converts a struct: exported fields first, then the unexported ones
// qualified with their visibility.
func (f *flattener) object(v reflect.Value, depth int, errMsg string, isErr bool) any {
	t := v.Type()
	if f.tooDeep(depth) {
		return depthSentinel(t)
	}
	obj := newObject(typeName(t))
	if isErr {
		obj.Set(messageKey, errMsg)
	}
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); sf.IsExported() {
			f.field(obj, sf.Name, sf, v.Field(i), depth)
		}
	}
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); !sf.IsExported() && sf.Name != "_" {
			f.field(obj, privatePrefix+sf.Name, sf, v.Field(i), depth)
		}
	}
	return obj
}

func (f *flattener) field(obj *Object, key string, sf reflect.StructField, fv reflect.Value, depth int) {
	if obj.Has(key) {
		return
	}
	tag, _, _ := strings.Cut(sf.Tag.Get(tagName), ",")
	switch tag {
	case tagSkip:
		return
	case tagRedact:
		obj.Set(key, redactedValue)
		return
	}
	obj.Set(key, f.value(fv, depth+1))
}

// mapping converts a map into an object without a class name, keys sorted.
func (f *flattener) mapping(v reflect.Value, depth int) any {
	type entry struct {
		key   string
		value reflect.Value
	}
	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: keyString(iter.Key()), value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	obj := &Object{values: make(map[string]any, len(entries))}
	for _, e := range entries {
		if obj.Has(e.key) {
			continue
		}
		obj.Set(e.key, f.value(e.value, depth+1))
	}
	return obj
}

func (f *flattener) list(v reflect.Value, depth int) any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = f.value(v.Index(i), depth+1)
	}
	return out
}

func (f *flattener) tooDeep(depth int) bool {
	return f.maxDepth > 0 && depth >= f.maxDepth
}

// builtin reports whether v can be returned as-is: a predeclared type that is
// readable through Interface.
func builtin(v reflect.Value) bool {
	t := v.Type()
	return v.CanInterface() && t.PkgPath() == "" && t.Name() != ""
}

func keyString(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10)
	case reflect.Bool:
		return strconv.FormatBool(k.Bool())
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(k.Float(), 'g', -1, 64)
	}
	if k.CanInterface() {
		return fmt.Sprint(k.Interface())
	}
	return typeName(k.Type())
}

// readable returns v in a form that Interface accepts. Values reached through
// unexported fields are re-read from their address, and unaddressable structs
// and arrays are copied so that their own fields are addressable in turn.
func readable(v reflect.Value) reflect.Value {
	if !v.CanInterface() {
		if !v.CanAddr() {
			return v
		}
		v = reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	}
	if !v.CanAddr() && (v.Kind() == reflect.Struct || v.Kind() == reflect.Array) {
		c := reflect.New(v.Type()).Elem()
		c.Set(v)
		v = c
	}
	return v
}

func consoleValue(v reflect.Value) (out any, ok bool) {
	if !v.CanInterface() || !v.Type().Implements(valuerType) || isNil(v) {
		return nil, false
	}
	defer func() {
		if r := recover(); r != nil {
			out, ok = fmt.Sprintf("ConsoleValue panicked: %v", r), true
		}
	}()
	return v.Interface().(ConsoleValuer).ConsoleValue(), true
}

func errorMessage(v reflect.Value) (msg string, ok bool) {
	if !v.CanInterface() || !v.Type().Implements(errorType) || isNil(v) {
		return "", false
	}
	defer func() {
		if r := recover(); r != nil {
			msg, ok = fmt.Sprintf("Error() panicked: %v", r), true
		}
	}()
	return v.Interface().(error).Error(), true
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func typeName(t reflect.Type) string {
	return t.String()
}

func recursionSentinel(t reflect.Type) string {
	return fmt.Sprintf("recursion - parent object [%s]", typeName(t))
}

func depthSentinel(t reflect.Type) string {
	return fmt.Sprintf("max depth reached [%s]", typeName(t))
}
