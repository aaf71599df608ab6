package bencode

import (
	"bytes"
	"sort"

	"github.com/elliotchance/orderedmap"
)

type Kind int

const (
	KindBytes Kind = iota + 1
	KindInt
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindInt:
		return "int"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Value is one node of a decoded tree. It is implemented only by Bytes, Int,
// List and *Dict.
type Value interface {
	Kind() Kind
}

type Bytes []byte

type Int int64

type List []Value

func (Bytes) Kind() Kind { return KindBytes }
func (Int) Kind() Kind   { return KindInt }
func (List) Kind() Kind  { return KindList }
func (*Dict) Kind() Kind { return KindDict }

// Dict maps byte string keys to values. Keys are held as Go strings, which may
// carry arbitrary bytes. Insertion order is remembered for display only; Encode
// always emits keys sorted.
type Dict struct {
	m   *orderedmap.OrderedMap
	raw []byte
}

func NewDict() *Dict {
	return &Dict{m: orderedmap.NewOrderedMap()}
}

// Set adds or replaces key. Dicts are meant to be filled once and then treated
// as read-only.
func (d *Dict) Set(key string, v Value) *Dict {
	d.m.Set(key, v)
	d.raw = nil
	return d
}

// Raw returns the exact bytes a Decoder with AllowUnsortedKeys read this dict
// from, or nil. Set clears it; changes made to nested values do not.
func (d *Dict) Raw() []byte {
	if d == nil {
		return nil
	}
	return d.raw
}

func (d *Dict) Get(key string) (Value, bool) {
	if d == nil || d.m == nil {
		return nil, false
	}
	v, ok := d.m.Get(key)
	if !ok {
		return nil, false
	}
	return v.(Value), true
}

func (d *Dict) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

func (d *Dict) Len() int {
	if d == nil || d.m == nil {
		return 0
	}
	return d.m.Len()
}

// Keys returns keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil || d.m == nil {
		return nil
	}
	raw := d.m.Keys()
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, k.(string))
	}
	return keys
}

// SortedKeys returns keys in ascending byte order, the order they are encoded in.
func (d *Dict) SortedKeys() []string {
	keys := d.Keys()
	sort.Strings(keys)
	return keys
}

// Equal reports whether a and b hold the same logical value. Dict comparison
// ignores insertion order.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Bytes:
		return bytes.Equal(x, b.(Bytes))
	case Int:
		return x == b.(Int)
	case List:
		y := b.(List)
		if len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Dict:
		y := b.(*Dict)
		if x.Len() != y.Len() {
			return false
		}
		for _, k := range x.Keys() {
			xv, _ := x.Get(k)
			yv, ok := y.Get(k)
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	}
	return false
}
