package bencode

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Encode returns the canonical encoding of v. Dict keys are written in
// ascending byte order whatever order they were set in. A nil Value anywhere in
// the tree is a programming error and panics.
func Encode(v Value) []byte {
	buf := &bytes.Buffer{}
	EncodeTo(buf, v)
	return buf.Bytes()
}

func EncodeTo(buf *bytes.Buffer, v Value) {
	switch item := v.(type) {
	case Bytes:
		encodeBytes(buf, item)
	case Int:
		encodeInt(buf, int64(item))
	case List:
		encodeList(buf, item)
	case *Dict:
		encodeDict(buf, item)
	default:
		panic(fmt.Sprintf("bencode: cannot encode %T", v))
	}
}

// Marshal converts obj with FromNative and encodes it.
func Marshal(obj any) ([]byte, error) {
	v, err := FromNative(obj)
	if err != nil {
		return nil, err
	}
	return Encode(v), nil
}

func encodeInt(buf *bytes.Buffer, val int64) {
	buf.WriteByte('i')
	buf.WriteString(strconv.FormatInt(val, 10))
	buf.WriteByte('e')
}

func encodeBytes(buf *bytes.Buffer, data []byte) {
	buf.WriteString(strconv.Itoa(len(data)))
	buf.WriteByte(':')
	buf.Write(data)
}

func encodeString(buf *bytes.Buffer, val string) {
	buf.WriteString(strconv.Itoa(len(val)))
	buf.WriteByte(':')
	buf.WriteString(val)
}

func encodeList(buf *bytes.Buffer, list List) {
	buf.WriteByte('l')
	for _, item := range list {
		EncodeTo(buf, item)
	}
	buf.WriteByte('e')
}

func encodeDict(buf *bytes.Buffer, d *Dict) {
	buf.WriteByte('d')
	for _, k := range d.SortedKeys() {
		v, _ := d.Get(k)
		encodeString(buf, k)
		EncodeTo(buf, v)
	}
	buf.WriteByte('e')
}

// FromNative builds a Value from plain Go data: strings and byte slices become
// Bytes, integer types become Int, slices become List and string-keyed maps
// become Dict. Values already of type Value are used as is.
func FromNative(obj any) (Value, error) {
	switch item := obj.(type) {
	case Value:
		if d, ok := item.(*Dict); ok && d == nil {
			return nil, fmt.Errorf("bencode: nil dict")
		}
		return item, nil
	case string:
		return Bytes(item), nil
	case []byte:
		return Bytes(append([]byte(nil), item...)), nil
	case int:
		return Int(item), nil
	case int32:
		return Int(item), nil
	case int64:
		return Int(item), nil
	case uint32:
		return Int(item), nil
	case bool:
		if item {
			return Int(1), nil
		}
		return Int(0), nil
	case []string:
		ret := make(List, 0, len(item))
		for _, s := range item {
			ret = append(ret, Bytes(s))
		}
		return ret, nil
	case []any:
		ret := make(List, 0, len(item))
		for i, sub := range item {
			v, err := FromNative(sub)
			if err != nil {
				return nil, fmt.Errorf("bencode: list item %d: %w", i, err)
			}
			ret = append(ret, v)
		}
		return ret, nil
	case map[string]any:
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ret := NewDict()
		for _, k := range keys {
			v, err := FromNative(item[k])
			if err != nil {
				return nil, fmt.Errorf("bencode: key %q: %w", k, err)
			}
			ret.Set(k, v)
		}
		return ret, nil
	default:
		return nil, fmt.Errorf("bencode: unsupported type %T", obj)
	}
}

// Native converts v to plain Go data: []byte, int64, []any and map[string]any.
func Native(v Value) any {
	switch item := v.(type) {
	case Bytes:
		return []byte(item)
	case Int:
		return int64(item)
	case List:
		ret := make([]any, 0, len(item))
		for _, sub := range item {
			ret = append(ret, Native(sub))
		}
		return ret
	case *Dict:
		ret := make(map[string]any, item.Len())
		for _, k := range item.Keys() {
			sub, _ := item.Get(k)
			ret[k] = Native(sub)
		}
		return ret
	}
	return nil
}
