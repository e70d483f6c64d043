package koda

import (
	"encoding/binary"
	"math"
	"sort"
)

const (
	magic         = "KODA"
	formatVersion = 0x01

	tagNull    = 0x01
	tagFalse   = 0x02
	tagTrue    = 0x03
	tagInteger = 0x04
	tagFloat   = 0x05
	tagString  = 0x06
	tagBinary  = 0x07 // reserved; never written, rejected on decode
	tagArray   = 0x10
	tagObject  = 0x11
)

// Encode serializes v to KODA's canonical binary form using default
// options. The result is deterministic: structurally equal values (up to
// object member order) always encode to identical bytes, because every
// object's members are re-sorted into UTF-8 byte order and all object keys
// are pooled into a single document-wide, sorted, deduplicated dictionary.
func Encode(v *Value) ([]byte, error) {
	return EncodeWithOptions(v, DefaultEncodeOptions())
}

// EncodeWithOptions serializes v to KODA's canonical binary form.
func EncodeWithOptions(v *Value, opts EncodeOptions) ([]byte, error) {
	opts = opts.normalized()

	keys := make(map[string]struct{})
	if err := collectKeys(v, keys, 0, opts.MaxDepth); err != nil {
		return nil, err
	}
	dict := make([]string, 0, len(keys))
	for k := range keys {
		dict = append(dict, k)
	}
	sort.Strings(dict)

	index := make(map[string]uint32, len(dict))
	for i, k := range dict {
		index[k] = uint32(i)
	}

	var buf []byte
	buf = append(buf, magic...)
	buf = append(buf, formatVersion)

	var dictLen [4]byte
	binary.BigEndian.PutUint32(dictLen[:], uint32(len(dict)))
	buf = append(buf, dictLen[:]...)

	for _, k := range dict {
		buf = appendLengthPrefixed(buf, k)
	}

	e := &encoder{buf: buf, index: index, maxDepth: opts.MaxDepth}
	if err := e.writeValue(v, 0); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// collectKeys walks v, recording every object key it finds, regardless of
// which object it belongs to (KODA pools all keys in one document-wide
// dictionary, not one dictionary per object).
func collectKeys(v *Value, keys map[string]struct{}, depth, maxDepth int) error {
	if v == nil {
		return nil
	}
	if depth > maxDepth {
		return &EncodeError{Message: msgMaxDepthExceeded, Offset: 0}
	}
	switch v.Type() {
	case KindArray:
		elems, _ := v.AsArray()
		for _, e := range elems {
			if err := collectKeys(e, keys, depth+1, maxDepth); err != nil {
				return err
			}
		}
	case KindObject:
		members, _ := v.AsObject()
		for _, m := range members {
			keys[m.Key] = struct{}{}
			if err := collectKeys(m.Value, keys, depth+1, maxDepth); err != nil {
				return err
			}
		}
	}
	return nil
}

func appendLengthPrefixed(buf []byte, s string) []byte {
	var lenBytes [4]byte
	binary.BigEndian.PutUint32(lenBytes[:], uint32(len(s)))
	buf = append(buf, lenBytes[:]...)
	buf = append(buf, s...)
	return buf
}

type encoder struct {
	buf      []byte
	index    map[string]uint32
	maxDepth int
}

func (e *encoder) writeValue(v *Value, depth int) error {
	if depth > e.maxDepth {
		return &EncodeError{Message: msgMaxDepthExceeded, Offset: len(e.buf)}
	}

	switch v.Type() {
	case KindNull:
		e.buf = append(e.buf, tagNull)
	case KindBool:
		b, _ := v.AsBool()
		if b {
			e.buf = append(e.buf, tagTrue)
		} else {
			e.buf = append(e.buf, tagFalse)
		}
	case KindInt:
		i, _ := v.AsInt()
		e.buf = append(e.buf, tagInteger)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(i))
		e.buf = append(e.buf, b[:]...)
	case KindFloat:
		f, _ := v.AsFloat()
		e.buf = append(e.buf, tagFloat)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
		e.buf = append(e.buf, b[:]...)
	case KindString:
		s, _ := v.AsString()
		e.buf = append(e.buf, tagString)
		e.buf = appendLengthPrefixed(e.buf, s)
	case KindArray:
		elems, _ := v.AsArray()
		e.buf = append(e.buf, tagArray)
		var countBytes [4]byte
		binary.BigEndian.PutUint32(countBytes[:], uint32(len(elems)))
		e.buf = append(e.buf, countBytes[:]...)
		for _, elem := range elems {
			if err := e.writeValue(elem, depth+1); err != nil {
				return err
			}
		}
	case KindObject:
		members, _ := v.AsObject()
		sorted := make([]Member, len(members))
		copy(sorted, members)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

		e.buf = append(e.buf, tagObject)
		var countBytes [4]byte
		binary.BigEndian.PutUint32(countBytes[:], uint32(len(sorted)))
		e.buf = append(e.buf, countBytes[:]...)
		for _, m := range sorted {
			var idxBytes [4]byte
			binary.BigEndian.PutUint32(idxBytes[:], e.index[m.Key])
			e.buf = append(e.buf, idxBytes[:]...)
			if err := e.writeValue(m.Value, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
