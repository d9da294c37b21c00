package formdata

import (
	"bytes"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

const hexDigits = "0123456789abcdef"

// Serialize encodes v as compact JSON text. Mapping keys are written in
// ascending order and Record fields in construction order. Strings are
// escaped to pure ASCII. Finally every "[]" in the text is rewritten to
// "{}", so an empty sequence encodes like an empty mapping.
//
// Both ends of the mosparo protocol sign this exact text, so the output
// must stay byte-for-byte stable.
func Serialize(v Value) string {
	var buf bytes.Buffer
	appendValue(&buf, v)

	return string(bytes.ReplaceAll(buf.Bytes(), []byte("[]"), []byte("{}")))
}

func appendValue(buf *bytes.Buffer, v Value) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case String:
		appendString(buf, string(t))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(t), 10))
	case Float:
		appendFloat(buf, float64(t))
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(t)))
	case Sequence:
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendValue(buf, item)
		}
		buf.WriteByte(']')
	case Mapping:
		buf.WriteByte('{')
		for i, key := range t.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, key)
			buf.WriteByte(':')
			appendValue(buf, t[key])
		}
		buf.WriteByte('}')
	case Record:
		buf.WriteByte('{')
		for i, f := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendString(buf, f.Key)
			buf.WriteByte(':')
			appendValue(buf, f.Value)
		}
		buf.WriteByte('}')
	}
}

func appendFloat(buf *bytes.Buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString("NaN")
	case math.IsInf(f, 1):
		buf.WriteString("Infinity")
	case math.IsInf(f, -1):
		buf.WriteString("-Infinity")
	default:
		buf.WriteString(Float(f).Text())
	}
}

// appendString writes s as a quoted JSON string. Printable ASCII other
// than '"' and '\\' is written as is; everything else is escaped, with
// code points above U+FFFF written as UTF-16 surrogate pairs.
func appendString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r >= 0x20 && r <= 0x7e:
			buf.WriteByte(byte(r))
		case r > 0xffff:
			hi, lo := utf16.EncodeRune(r)
			appendUnicodeEscape(buf, hi)
			appendUnicodeEscape(buf, lo)
		default:
			appendUnicodeEscape(buf, r)
		}
	}

	buf.WriteByte('"')
}

func appendUnicodeEscape(buf *bytes.Buffer, r rune) {
	buf.WriteString(`\u`)
	buf.WriteByte(hexDigits[(r>>12)&0xf])
	buf.WriteByte(hexDigits[(r>>8)&0xf])
	buf.WriteByte(hexDigits[(r>>4)&0xf])
	buf.WriteByte(hexDigits[r&0xf])
}
