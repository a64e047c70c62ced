package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is a single projected record. Field order is insertion order and
// drives the CSV column order.
type Row = orderedmap.OrderedMap[string, any]

func NewRow() *Row {
	return orderedmap.New[string, any]()
}

// RowOf builds a row from alternating key/value pairs.
func RowOf(kv ...any) *Row {
	r := NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i].(string), kv[i+1])
	}
	return r
}

// Keys returns the field names of r in order.
func Keys(r *Row) []string {
	keys := make([]string, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Values returns the field values of r in order.
func Values(r *Row) []any {
	vals := make([]any, 0, r.Len())
	for pair := r.Oldest(); pair != nil; pair = pair.Next() {
		vals = append(vals, pair.Value)
	}
	return vals
}
