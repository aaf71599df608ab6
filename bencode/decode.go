package bencode

import (
	"strconv"
)

// DecoderOptions bound what a Decoder accepts. Zero values mean no limit and
// strict key ordering.
type DecoderOptions struct {
	// MaxDepth limits nesting of lists and dicts. The top-level value has depth 1.
	MaxDepth int
	// MaxSize limits the input length in bytes.
	MaxSize int
	// AllowUnsortedKeys accepts dict keys out of ascending order. Duplicate keys
	// are rejected either way.
	AllowUnsortedKeys bool
}

type Decoder struct {
	opts DecoderOptions
}

func NewDecoder(opts DecoderOptions) *Decoder {
	return &Decoder{opts: opts}
}

var defaultDecoder = NewDecoder(DecoderOptions{})

// Decode parses exactly one value from buf with strict defaults.
func Decode(buf []byte) (Value, error) {
	return defaultDecoder.Decode(buf)
}

// Decode parses exactly one value from buf. Trailing bytes are an error.
func (d *Decoder) Decode(buf []byte) (Value, error) {
	if d.opts.MaxSize > 0 && len(buf) > d.opts.MaxSize {
		return nil, formatErrorf(0, "input of %d bytes exceeds limit of %d", len(buf), d.opts.MaxSize)
	}
	ret, offset, err := d.decodeAny(buf, 0, 1)
	if err != nil {
		return nil, err
	}
	if offset != len(buf) {
		return nil, formatErrorf(offset, "%d trailing bytes", len(buf)-offset)
	}
	return ret, nil
}

func (d *Decoder) decodeAny(buf []byte, pos int, depth int) (Value, int, error) {
	if pos >= len(buf) {
		return nil, 0, formatErrorf(pos, "unexpected end of input")
	}
	switch buf[pos] {
	case 'i':
		return decodeInt(buf, pos)
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return decodeBytes(buf, pos)
	case 'l':
		if err := d.checkDepth(pos, depth); err != nil {
			return nil, 0, err
		}
		return d.decodeList(buf, pos, depth)
	case 'd':
		if err := d.checkDepth(pos, depth); err != nil {
			return nil, 0, err
		}
		return d.decodeDict(buf, pos, depth)
	default:
		return nil, 0, formatErrorf(pos, "unexpected byte %q", buf[pos])
	}
}

func (d *Decoder) checkDepth(pos int, depth int) error {
	if d.opts.MaxDepth > 0 && depth > d.opts.MaxDepth {
		return formatErrorf(pos, "nesting exceeds depth limit of %d", d.opts.MaxDepth)
	}
	return nil
}

func (d *Decoder) decodeList(buf []byte, pos int, depth int) (List, int, error) {
	ret := make(List, 0)
	i := pos + 1
	for {
		if i >= len(buf) {
			return nil, 0, formatErrorf(i, "unterminated list")
		}
		if buf[i] == 'e' {
			return ret, i + 1, nil
		}
		item, offset, err := d.decodeAny(buf, i, depth+1)
		if err != nil {
			return nil, 0, err
		}
		ret = append(ret, item)
		i = offset
	}
}

func (d *Decoder) decodeDict(buf []byte, pos int, depth int) (*Dict, int, error) {
	ret := NewDict()
	i := pos + 1
	var prev string
	first := true
	for {
		if i >= len(buf) {
			return nil, 0, formatErrorf(i, "unterminated dict")
		}
		if buf[i] == 'e' {
			if d.opts.AllowUnsortedKeys {
				ret.raw = append([]byte(nil), buf[pos:i+1]...)
			}
			return ret, i + 1, nil
		}
		if buf[i] < '0' || buf[i] > '9' {
			return nil, 0, formatErrorf(i, "dict key must be a byte string")
		}
		rawKey, offset, err := decodeBytes(buf, i)
		if err != nil {
			return nil, 0, err
		}
		key := string(rawKey)
		if !first {
			switch {
			case key == prev || ret.Has(key):
				return nil, 0, formatErrorf(i, "duplicate dict key %q", key)
			case key < prev && !d.opts.AllowUnsortedKeys:
				return nil, 0, formatErrorf(i, "dict key %q not in ascending order after %q", key, prev)
			}
		}
		if offset >= len(buf) || buf[offset] == 'e' {
			return nil, 0, formatErrorf(offset, "missing value for dict key %q", key)
		}
		item, next, err := d.decodeAny(buf, offset, depth+1)
		if err != nil {
			return nil, 0, err
		}
		ret.Set(key, item)
		prev = key
		first = false
		i = next
	}
}

func decodeBytes(buf []byte, pos int) (Bytes, int, error) {
	i := pos
	for ; i < len(buf) && buf[i] != ':'; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			return nil, 0, formatErrorf(i, "invalid byte %q in string length", buf[i])
		}
	}
	if i >= len(buf) {
		return nil, 0, formatErrorf(pos, "string length not terminated by ':'")
	}
	digits := buf[pos:i]
	if len(digits) == 0 {
		return nil, 0, formatErrorf(pos, "empty string length")
	}
	if len(digits) > 1 && digits[0] == '0' {
		return nil, 0, formatErrorf(pos, "string length has leading zero")
	}
	l, err := strconv.Atoi(string(digits))
	if err != nil {
		return nil, 0, formatErrorf(pos, "string length out of range")
	}
	begin := i + 1
	if l > len(buf)-begin {
		return nil, 0, formatErrorf(pos, "string length %d exceeds remaining %d bytes", l, len(buf)-begin)
	}
	ret := make(Bytes, l)
	copy(ret, buf[begin:begin+l])
	return ret, begin + l, nil
}

func decodeInt(buf []byte, pos int) (Int, int, error) {
	begin := pos + 1
	i := begin
	for ; i < len(buf) && buf[i] != 'e'; i++ {
	}
	if i >= len(buf) {
		return 0, 0, formatErrorf(pos, "unterminated integer")
	}
	digits := buf[begin:i]
	neg := len(digits) > 0 && digits[0] == '-'
	body, bodyAt := digits, begin
	if neg {
		body, bodyAt = digits[1:], begin+1
	}
	if len(body) == 0 {
		return 0, 0, formatErrorf(pos, "integer has no digits")
	}
	for j, c := range body {
		if c < '0' || c > '9' {
			return 0, 0, formatErrorf(bodyAt+j, "invalid byte %q in integer", c)
		}
	}
	if body[0] == '0' && (len(body) > 1 || neg) {
		return 0, 0, formatErrorf(pos, "integer %q is not canonical", digits)
	}
	ret, err := strconv.ParseInt(string(digits), 10, 64)
	if err != nil {
		return 0, 0, formatErrorf(pos, "integer %q out of range", digits)
	}
	return Int(ret), i + 1, nil
}
