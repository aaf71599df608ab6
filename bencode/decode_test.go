package bencode

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBDecode_decodeString(t *testing.T) {
	pkt := "4:spam"
	str, offset, err := defaultDecoder.decodeAny([]byte(pkt), 0, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, len(pkt), offset)
		assert.Equal(t, Bytes("spam"), str)
	}
}

func TestBDecode_decodeEmptyString(t *testing.T) {
	v, err := Decode([]byte("0:"))
	if assert.NoError(t, err) {
		assert.Equal(t, Bytes{}, v)
	}
}

func TestBDecode_decodeInt(t *testing.T) {
	pkt := "i123432e"
	i, offset, err := defaultDecoder.decodeAny([]byte(pkt), 0, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, len(pkt), offset)
		assert.Equal(t, Int(123432), i)
	}
}

func TestBDecode_decodeIntBounds(t *testing.T) {
	v, err := Decode([]byte("i-9223372036854775808e"))
	if assert.NoError(t, err) {
		assert.Equal(t, Int(-9223372036854775808), v)
	}
	v, err = Decode([]byte("i0e"))
	if assert.NoError(t, err) {
		assert.Equal(t, Int(0), v)
	}
	_, err = Decode([]byte("i9223372036854775808e"))
	assert.Error(t, err)
}

func TestBDecode_decodeList(t *testing.T) {
	pkt := "li123e2:aae"
	list, offset, err := defaultDecoder.decodeAny([]byte(pkt), 0, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, len(pkt), offset)
		assert.IsType(t, List{}, list)
		assert.Equal(t, Int(123), list.(List)[0])
		assert.Equal(t, Bytes("aa"), list.(List)[1])
	}
}

func TestBDecode_decodeMap(t *testing.T) {
	pkt := "d3:foo3:bar6:foobar3:baze"
	m, offset, err := defaultDecoder.decodeAny([]byte(pkt), 0, 1)
	if assert.NoError(t, err) {
		assert.Equal(t, len(pkt), offset)
		assert.IsType(t, &Dict{}, m)
		v, _ := m.(*Dict).Get("foo")
		assert.Equal(t, Bytes("bar"), v)
		v, _ = m.(*Dict).Get("foobar")
		assert.Equal(t, Bytes("baz"), v)
		assert.Equal(t, []string{"foo", "foobar"}, m.(*Dict).Keys())
	}
}

func TestDecode_CopiesInput(t *testing.T) {
	buf := []byte("4:spam")
	v, err := Decode(buf)
	require.NoError(t, err)
	buf[2] = 'x'
	assert.Equal(t, Bytes("spam"), v)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty input":           "",
		"negative zero":         "i-0e",
		"leading zero int":      "i03e",
		"empty int":             "ie",
		"bare minus":            "i-e",
		"unterminated int":      "i12",
		"junk in int":           "i12a3e",
		"plus sign":             "i+3e",
		"leading zero length":   "03:abc",
		"short string":          "4:abc",
		"missing colon":         "4abcd",
		"descending keys":       "d3:foo4:spam3:bar4:eggse",
		"key without value":     "d3:bar4:spam3:fooe",
		"duplicate keys":        "d1:ai1e1:ai2ee",
		"integer key":           "di1ei2ee",
		"unterminated list":     "li1e",
		"unterminated dict":     "d1:ai1e",
		"trailing bytes":        "i1ei2e",
		"unknown type":          "x",
		"string length too big": "99999999999999999999999:a",
	}
	for name, pkt := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(pkt))
			var formatErr *FormatError
			assert.True(t, errors.As(err, &formatErr), "expected FormatError for %q, got %v", pkt, err)
		})
	}
}

func TestDecode_ErrorOffset(t *testing.T) {
	_, err := Decode([]byte("li1ei01ee"))
	var formatErr *FormatError
	if assert.True(t, errors.As(err, &formatErr)) {
		assert.Equal(t, 4, formatErr.Offset)
		assert.Contains(t, err.Error(), "offset 4")
	}
}

func TestDecoder_AllowUnsortedKeys(t *testing.T) {
	d := NewDecoder(DecoderOptions{AllowUnsortedKeys: true})
	v, err := d.Decode([]byte("d3:foo4:spam3:bar4:eggse"))
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"foo", "bar"}, v.(*Dict).Keys())
		assert.Equal(t, "d3:bar4:eggs3:foo4:spame", string(Encode(v)))
	}
	_, err = d.Decode([]byte("d1:bi1e1:ai1e1:bi2ee"))
	assert.Error(t, err)
}

func TestDecoder_AllowUnsortedKeysKeepsRaw(t *testing.T) {
	pkt := []byte("d1:zd1:yi1e1:xi2ee1:ai3ee")
	v, err := NewDecoder(DecoderOptions{AllowUnsortedKeys: true}).Decode(pkt)
	require.NoError(t, err)
	top := v.(*Dict)
	assert.Equal(t, string(pkt), string(top.Raw()))
	inner, ok := GetDict(v, "z")
	if assert.True(t, ok) {
		assert.Equal(t, "d1:yi1e1:xi2ee", string(inner.Raw()))
	}

	pkt[0] = 'x'
	assert.Equal(t, byte('d'), top.Raw()[0])

	top.Set("b", Int(4))
	assert.Nil(t, top.Raw())

	strict, err := Decode([]byte("d1:ai3ee"))
	require.NoError(t, err)
	assert.Nil(t, strict.(*Dict).Raw())
}

func TestDecoder_MaxDepth(t *testing.T) {
	pkt := []byte("llllleeeee")
	_, err := NewDecoder(DecoderOptions{MaxDepth: 5}).Decode(pkt)
	assert.NoError(t, err)
	_, err = NewDecoder(DecoderOptions{MaxDepth: 4}).Decode(pkt)
	var formatErr *FormatError
	if assert.True(t, errors.As(err, &formatErr)) {
		assert.Equal(t, 4, formatErr.Offset)
	}
}

func TestDecoder_MaxSize(t *testing.T) {
	_, err := NewDecoder(DecoderOptions{MaxSize: 5}).Decode([]byte("4:spam"))
	assert.Error(t, err)
	_, err = NewDecoder(DecoderOptions{MaxSize: 6}).Decode([]byte("4:spam"))
	assert.NoError(t, err)
}

func TestDecode_RoundTrip(t *testing.T) {
	pkts := []string{
		"0:",
		"i-42e",
		"le",
		"de",
		"l4:spami0eli1eee",
		"d1:ad2:id20:abcdefghij0123456789e1:q4:ping1:t2:aa1:y1:qe",
		"d4:infod5:filesld6:lengthi3e4:pathl1:a1:beee4:name3:diree",
	}
	for _, pkt := range pkts {
		v, err := Decode([]byte(pkt))
		if assert.NoError(t, err, pkt) {
			assert.Equal(t, pkt, string(Encode(v)))
			again, err := Decode(Encode(v))
			if assert.NoError(t, err) {
				assert.True(t, Equal(v, again))
			}
		}
	}
}
