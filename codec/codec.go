// Package codec implements the deterministic content-hash and the typed
// binary codec used to serialize Vertex.operation.value trees (§4.2 of the
// replication spec). The wire format is intentionally simple and
// self-describing so independent implementations converge on the same
// bytes for the same logical value.
package codec

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// ErrUnsupportedType is returned when Encode is asked to serialize a Go
// value with no representation in the typed codec.
var ErrUnsupportedType = errors.New("codec: unsupported type")

// ErrTruncated is returned when Decode runs out of input mid-value.
var ErrTruncated = errors.New("codec: truncated input")

// ErrUnknownTag is returned when Decode encounters an unrecognized tag byte.
var ErrUnknownTag = errors.New("codec: unknown tag")

type tag byte

const (
	tagNil tag = iota
	tagBool
	tagInt
	tagFloat
	tagString
	tagBytes
	tagList
	tagStringMap
	tagSet
	tagKeyedMap
	tagFloat32Array
	tagFloat64Array
)

// Set preserves set semantics (unordered, unique membership) through the
// codec, unlike a plain Go slice which the codec treats as an ordered List.
type Set struct {
	items []any
}

// NewSet builds a Set from the given elements, deduplicating by their
// encoded representation.
func NewSet(items ...any) *Set {
	s := &Set{}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts an element if an equal-by-encoding element is not already
// present.
func (s *Set) Add(v any) {
	enc, err := Encode(v)
	if err != nil {
		return
	}
	for _, it := range s.items {
		ie, err := Encode(it)
		if err == nil && string(ie) == string(enc) {
			return
		}
	}
	s.items = append(s.items, v)
}

// Items returns the set's elements in canonical (sorted-by-encoding) order.
func (s *Set) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	sortByEncoding(out)
	return out
}

// Len returns the number of elements in the set.
func (s *Set) Len() int { return len(s.items) }

// Equal reports whether s and o contain the same elements, ignoring order.
func (s *Set) Equal(o *Set) bool {
	if o == nil || s.Len() != o.Len() {
		return false
	}
	a, b := s.Items(), o.Items()
	for i := range a {
		ae, _ := Encode(a[i])
		be, _ := Encode(b[i])
		if string(ae) != string(be) {
			return false
		}
	}
	return true
}

// KV is one entry of a KeyedMap.
type KV struct {
	Key   any
	Value any
}

// KeyedMap preserves maps whose keys are not strings (§4.2 "maps with
// arbitrary keys"); plain map[string]any values round-trip as StringMap
// instead.
type KeyedMap struct {
	Pairs []KV
}

// NewKeyedMap builds a KeyedMap from the given pairs.
func NewKeyedMap(pairs ...KV) *KeyedMap {
	return &KeyedMap{Pairs: pairs}
}

// Get returns the value for a key with matching encoded bytes, if present.
func (m *KeyedMap) Get(key any) (any, bool) {
	ke, err := Encode(key)
	if err != nil {
		return nil, false
	}
	for _, p := range m.Pairs {
		pe, err := Encode(p.Key)
		if err == nil && string(pe) == string(ke) {
			return p.Value, true
		}
	}
	return nil, false
}

// Encode serializes an arbitrary supported value into the typed binary
// wire format. Supported shapes: nil, bool, any integer kind, float32/64,
// string, []byte, []any (list), map[string]any (string map, sorted by key),
// *Set, *KeyedMap, and fixed-width numeric slices ([]float32, []float64).
func Encode(v any) ([]byte, error) {
	var buf []byte
	buf, err := encodeValue(buf, v)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func encodeValue(buf []byte, v any) ([]byte, error) {
	if v == nil {
		return append(buf, byte(tagNil)), nil
	}

	switch x := v.(type) {
	case bool:
		b := byte(0)
		if x {
			b = 1
		}
		return append(buf, byte(tagBool), b), nil
	case string:
		return encodeString(buf, tagString, x), nil
	case []byte:
		return encodeBytes(buf, x), nil
	case *Set:
		return encodeSet(buf, x)
	case *KeyedMap:
		return encodeKeyedMap(buf, x)
	case []float32:
		return encodeFloat32Array(buf, x), nil
	case []float64:
		return encodeFloat64Array(buf, x), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeInt(buf, rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeInt(buf, int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return encodeFloat(buf, rv.Float()), nil
	case reflect.Slice, reflect.Array:
		return encodeList(buf, rv)
	case reflect.Map:
		return encodeStringMap(buf, rv)
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func encodeInt(buf []byte, x int64) []byte {
	buf = append(buf, byte(tagInt))
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(x))
	return append(buf, tmp[:]...)
}

func encodeFloat(buf []byte, x float64) []byte {
	buf = append(buf, byte(tagFloat))
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(x))
	return append(buf, tmp[:]...)
}

func encodeString(buf []byte, t tag, s string) []byte {
	buf = append(buf, byte(t))
	buf = appendLen(buf, len(s))
	return append(buf, s...)
}

func encodeBytes(buf []byte, b []byte) []byte {
	buf = append(buf, byte(tagBytes))
	buf = appendLen(buf, len(b))
	return append(buf, b...)
}

func appendLen(buf []byte, n int) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(n))
	return append(buf, tmp[:]...)
}

func encodeList(buf []byte, rv reflect.Value) ([]byte, error) {
	buf = append(buf, byte(tagList))
	buf = appendLen(buf, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		var err error
		buf, err = encodeValue(buf, rv.Index(i).Interface())
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeStringMap(buf []byte, rv reflect.Value) ([]byte, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: map with non-string key %s (wrap in *codec.KeyedMap)", ErrUnsupportedType, rv.Type().Key())
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	buf = append(buf, byte(tagStringMap))
	buf = appendLen(buf, len(keys))
	for _, k := range keys {
		buf = encodeString(buf, tagString, k)
		var err error
		buf, err = encodeValue(buf, rv.MapIndex(reflect.ValueOf(k)).Interface())
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func encodeSet(buf []byte, s *Set) ([]byte, error) {
	items := s.Items()
	encoded := make([][]byte, 0, len(items))
	for _, it := range items {
		e, err := Encode(it)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, e)
	}
	sort.Slice(encoded, func(i, j int) bool { return string(encoded[i]) < string(encoded[j]) })

	buf = append(buf, byte(tagSet))
	buf = appendLen(buf, len(encoded))
	for _, e := range encoded {
		buf = appendLen(buf, len(e))
		buf = append(buf, e...)
	}
	return buf, nil
}

func encodeKeyedMap(buf []byte, m *KeyedMap) ([]byte, error) {
	type encPair struct{ k, v []byte }
	pairs := make([]encPair, 0, len(m.Pairs))
	for _, p := range m.Pairs {
		ke, err := Encode(p.Key)
		if err != nil {
			return nil, err
		}
		ve, err := Encode(p.Value)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, encPair{ke, ve})
	}
	sort.Slice(pairs, func(i, j int) bool { return string(pairs[i].k) < string(pairs[j].k) })

	buf = append(buf, byte(tagKeyedMap))
	buf = appendLen(buf, len(pairs))
	for _, p := range pairs {
		buf = appendLen(buf, len(p.k))
		buf = append(buf, p.k...)
		buf = appendLen(buf, len(p.v))
		buf = append(buf, p.v...)
	}
	return buf, nil
}

func encodeFloat32Array(buf []byte, a []float32) []byte {
	buf = append(buf, byte(tagFloat32Array))
	buf = appendLen(buf, len(a))
	for _, f := range a {
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], math.Float32bits(f))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func encodeFloat64Array(buf []byte, a []float64) []byte {
	buf = append(buf, byte(tagFloat64Array))
	buf = appendLen(buf, len(a))
	for _, f := range a {
		var tmp [8]byte
		binary.BigEndian.PutUint64(tmp[:], math.Float64bits(f))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

func sortByEncoding(items []any) {
	sort.Slice(items, func(i, j int) bool {
		ei, _ := Encode(items[i])
		ej, _ := Encode(items[j])
		return string(ei) < string(ej)
	})
}

// Decode deserializes bytes produced by Encode back into the corresponding
// Go shape (map[string]any for string maps, *Set for sets, *KeyedMap for
// keyed maps, []any for lists, []float32/[]float64 for typed arrays).
func Decode(b []byte) (any, error) {
	v, rest, err := decodeValue(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTruncated, len(rest))
	}
	return v, nil
}

func decodeValue(b []byte) (any, []byte, error) {
	if len(b) == 0 {
		return nil, nil, ErrTruncated
	}
	t := tag(b[0])
	b = b[1:]
	switch t {
	case tagNil:
		return nil, b, nil
	case tagBool:
		if len(b) < 1 {
			return nil, nil, ErrTruncated
		}
		return b[0] != 0, b[1:], nil
	case tagInt:
		if len(b) < 8 {
			return nil, nil, ErrTruncated
		}
		return int64(binary.BigEndian.Uint64(b[:8])), b[8:], nil
	case tagFloat:
		if len(b) < 8 {
			return nil, nil, ErrTruncated
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[:8])), b[8:], nil
	case tagString:
		return decodeLenPrefixed(b, func(s []byte) any { return string(s) })
	case tagBytes:
		return decodeLenPrefixed(b, func(s []byte) any {
			out := make([]byte, len(s))
			copy(out, s)
			return out
		})
	case tagList:
		return decodeList(b)
	case tagStringMap:
		return decodeStringMap(b)
	case tagSet:
		return decodeSet(b)
	case tagKeyedMap:
		return decodeKeyedMap(b)
	case tagFloat32Array:
		return decodeFloat32Array(b)
	case tagFloat64Array:
		return decodeFloat64Array(b)
	default:
		return nil, nil, ErrUnknownTag
	}
}

func readLen(b []byte) (int, []byte, error) {
	if len(b) < 4 {
		return 0, nil, ErrTruncated
	}
	n := int(binary.BigEndian.Uint32(b[:4]))
	return n, b[4:], nil
}

func decodeLenPrefixed(b []byte, build func([]byte) any) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < n {
		return nil, nil, ErrTruncated
	}
	return build(b[:n]), b[n:], nil
}

func decodeList(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		var v any
		v, b, err = decodeValue(b)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, v)
	}
	return out, b, nil
}

func decodeStringMap(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	out := make(map[string]any, n)
	for i := 0; i < n; i++ {
		var kv any
		kv, b, err = decodeValue(b)
		if err != nil {
			return nil, nil, err
		}
		key, ok := kv.(string)
		if !ok {
			return nil, nil, ErrTruncated
		}
		var v any
		v, b, err = decodeValue(b)
		if err != nil {
			return nil, nil, err
		}
		out[key] = v
	}
	return out, b, nil
}

func decodeSet(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	s := &Set{}
	for i := 0; i < n; i++ {
		elemLen, rest, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) < elemLen {
			return nil, nil, ErrTruncated
		}
		v, err := Decode(rest[:elemLen])
		if err != nil {
			return nil, nil, err
		}
		s.items = append(s.items, v)
		b = rest[elemLen:]
	}
	return s, b, nil
}

func decodeKeyedMap(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	m := &KeyedMap{}
	for i := 0; i < n; i++ {
		kLen, rest, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		if len(rest) < kLen {
			return nil, nil, ErrTruncated
		}
		k, err := Decode(rest[:kLen])
		if err != nil {
			return nil, nil, err
		}
		b = rest[kLen:]

		vLen, rest2, err := readLen(b)
		if err != nil {
			return nil, nil, err
		}
		if len(rest2) < vLen {
			return nil, nil, ErrTruncated
		}
		v, err := Decode(rest2[:vLen])
		if err != nil {
			return nil, nil, err
		}
		b = rest2[vLen:]

		m.Pairs = append(m.Pairs, KV{Key: k, Value: v})
	}
	return m, b, nil
}

func decodeFloat32Array(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < n*4 {
		return nil, nil, ErrTruncated
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.BigEndian.Uint32(b[i*4:]))
	}
	return out, b[n*4:], nil
}

func decodeFloat64Array(b []byte) (any, []byte, error) {
	n, b, err := readLen(b)
	if err != nil {
		return nil, nil, err
	}
	if len(b) < n*8 {
		return nil, nil, ErrTruncated
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(b[i*8:]))
	}
	return out, b[n*8:], nil
}

// Field is one entry of a canonical, order-preserved preimage built for
// hashing (see ComputeVertexHash). Unlike Encode's generic map handling,
// Fields are serialized in the exact order given — the caller owns the
// ordering convention (§4.2: "deps are serialized in their given array
// order").
type Field struct {
	Key   string
	Value any
}

// EncodeCanonical serializes an ordered list of fields without re-sorting
// them, used for hash preimages whose field order is part of the schema.
func EncodeCanonical(fields ...Field) ([]byte, error) {
	buf := appendLen(nil, len(fields))
	for _, f := range fields {
		buf = encodeString(buf, tagString, f.Key)
		var err error
		buf, err = encodeValue(buf, f.Value)
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// ComputeVertexHash computes sha256_hex of the canonicalized
// {operation, deps, peerId, timestamp} tuple (§4.2). hasOp is false for
// the root vertex, whose operation field is then encoded as nil.
func ComputeVertexHash(peerID string, opDRPType, opType string, opValue []any, hasOp bool, deps []string, timestampMs int64) (string, error) {
	var opField any
	if hasOp {
		opField = map[string]any{
			"drpType": opDRPType,
			"opType":  opType,
			"value":   opValue,
		}
	}

	depsAny := make([]any, len(deps))
	for i, d := range deps {
		depsAny[i] = d
	}

	preimage, err := EncodeCanonical(
		Field{"operation", opField},
		Field{"dependencies", depsAny},
		Field{"peerId", peerID},
		Field{"timestamp", timestampMs},
	)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(preimage)
	return hex.EncodeToString(sum[:]), nil
}
