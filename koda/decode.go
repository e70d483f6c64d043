package koda

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Decode parses KODA's canonical binary form into a Value using default
// options.
func Decode(data []byte) (*Value, error) {
	return DecodeWithOptions(data, DefaultDecodeOptions())
}

// DecodeWithOptions parses KODA's canonical binary form into a Value.
// Every size-derived bound (dictionary size, string length) is checked
// against opts before the corresponding allocation is made, so a crafted
// length field cannot force an oversized allocation ahead of validation.
func DecodeWithOptions(data []byte, opts DecodeOptions) (*Value, error) {
	opts = opts.normalized()
	d := &decoder{data: data, opts: opts}

	if err := d.readMagicAndVersion(); err != nil {
		return nil, err
	}
	dict, err := d.readDictionary()
	if err != nil {
		return nil, err
	}
	d.dict = dict

	v, err := d.readValue(0)
	if err != nil {
		return nil, err
	}

	if d.pos != len(d.data) {
		return nil, &DecodeError{Message: msgTrailingBytes, Offset: d.pos}
	}
	return v, nil
}

type decoder struct {
	data []byte
	pos  int
	dict []string
	opts DecodeOptions
}

func (d *decoder) need(n int) error {
	if len(d.data)-d.pos < n {
		return &DecodeError{Message: msgTruncatedInput, Offset: d.pos}
	}
	return nil
}

func (d *decoder) readByte() (byte, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.pos : d.pos+4])
	d.pos += 4
	return v, nil
}

func (d *decoder) readUint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.data[d.pos : d.pos+8])
	d.pos += 8
	return v, nil
}

func (d *decoder) readMagicAndVersion() error {
	if err := d.need(4); err != nil {
		return err
	}
	if string(d.data[d.pos:d.pos+4]) != magic {
		return &DecodeError{Message: msgInvalidMagic, Offset: d.pos}
	}
	d.pos += 4

	ver, err := d.readByte()
	if err != nil {
		return err
	}
	if ver != formatVersion {
		return &DecodeError{Message: msgUnsupportedVersion, Offset: d.pos - 1}
	}
	return nil
}

func (d *decoder) readDictionary() ([]string, error) {
	count, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if int64(count) > int64(d.opts.MaxDictionarySize) {
		return nil, &DecodeError{Message: msgDictionaryTooLarge, Offset: d.pos - 4}
	}

	dict := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		s, err := d.readLengthPrefixedString(d.opts.MaxStringLength, msgKeyStringTooLong)
		if err != nil {
			return nil, err
		}
		dict = append(dict, s)
	}
	return dict, nil
}

// readLengthPrefixedString reads a u32-BE length followed by that many
// UTF-8 bytes. The length is checked against maxLen, and the bytes are
// validated as UTF-8, before the string is materialized.
func (d *decoder) readLengthPrefixedString(maxLen int, tooLongMsg string) (string, error) {
	length, err := d.readUint32()
	if err != nil {
		return "", err
	}
	if int64(length) > int64(maxLen) {
		return "", &DecodeError{Message: tooLongMsg, Offset: d.pos - 4}
	}
	if err := d.need(int(length)); err != nil {
		return "", err
	}
	raw := d.data[d.pos : d.pos+int(length)]
	if !utf8.Valid(raw) {
		return "", &DecodeError{Message: msgInvalidUTF8, Offset: d.pos}
	}
	s := string(raw)
	d.pos += int(length)
	return s, nil
}

func (d *decoder) readValue(depth int) (*Value, error) {
	if depth > d.opts.MaxDepth {
		return nil, &DecodeError{Message: msgMaxDepthExceeded, Offset: d.pos}
	}

	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagNull:
		return Null(), nil
	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagInteger:
		u, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return Int(int64(u)), nil
	case tagFloat:
		u, err := d.readUint64()
		if err != nil {
			return nil, err
		}
		return Float(math.Float64frombits(u)), nil
	case tagString:
		s, err := d.readLengthPrefixedString(d.opts.MaxStringLength, msgStringTooLong)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case tagBinary:
		return nil, &DecodeError{Message: msgBinaryNotSupported, Offset: d.pos - 1}
	case tagArray:
		return d.readArray(depth)
	case tagObject:
		return d.readObject(depth)
	default:
		return nil, &DecodeError{Message: msgUnknownTypeTag, Offset: d.pos - 1}
	}
}

func (d *decoder) readArray(depth int) (*Value, error) {
	count, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	// Every element occupies at least its tag byte, so a count larger
	// than the remaining input is truncated; checking here keeps a
	// crafted count from sizing the allocation below.
	if int64(count) > int64(len(d.data)-d.pos) {
		return nil, &DecodeError{Message: msgTruncatedInput, Offset: d.pos}
	}
	elems := make([]*Value, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := d.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return Array(elems...), nil
}

func (d *decoder) readObject(depth int) (*Value, error) {
	count, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	// Each member needs a 4-byte key index plus a tag byte at minimum.
	if int64(count)*5 > int64(len(d.data)-d.pos) {
		return nil, &DecodeError{Message: msgTruncatedInput, Offset: d.pos}
	}
	members := make([]Member, 0, count)
	seen := make(map[string]bool, count)
	for i := uint32(0); i < count; i++ {
		idx, err := d.readUint32()
		if err != nil {
			return nil, err
		}
		if idx >= uint32(len(d.dict)) {
			return nil, &DecodeError{Message: msgInvalidKeyIndex, Offset: d.pos - 4}
		}
		key := d.dict[idx]

		v, err := d.readValue(depth + 1)
		if err != nil {
			return nil, err
		}
		if seen[key] {
			return nil, &DecodeError{Message: msgDuplicateKey, Offset: d.pos}
		}
		seen[key] = true
		members = append(members, Field(key, v))
	}
	return Object(members...), nil
}
