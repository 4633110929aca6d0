package schema

import (
	"reflect"
)

type PackingReport struct {
	StructSize  uintptr
	PackedSize  uintptr
	WastedBytes uintptr
	IsPacked    bool
}

// GetPackingReport compares the in-memory size of a record struct with the
// sum of its field sizes, the size it occupies on disk when written tightly packed.
func GetPackingReport(v any) PackingReport {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic("not a struct")
	}

	packed := packedSize(t)
	actual := t.Size()

	return PackingReport{
		StructSize:  actual,
		PackedSize:  packed,
		WastedBytes: actual - packed,
		IsPacked:    actual == packed,
	}
}

func packedSize(t reflect.Type) uintptr {
	switch t.Kind() {
	case reflect.Struct:
		var total uintptr
		for i := 0; i < t.NumField(); i++ {
			total += packedSize(t.Field(i).Type)
		}
		return total
	case reflect.Array:
		return uintptr(t.Len()) * packedSize(t.Elem())
	default:
		return t.Size()
	}
}
