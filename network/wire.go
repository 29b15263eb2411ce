// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"encoding/binary"

	"github.com/luxfi/drp/codec"
)

// writer builds a length-delimited binary frame field by field, in a fixed
// schema order; unlike codec.Encode it has no tag byte per value, since the
// schema (and therefore the decode order) is already known to both sides.
type writer struct{ buf []byte }

func (w *writer) putUint32(n int) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(n))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putInt64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	w.buf = append(w.buf, tmp[:]...)
}

func (w *writer) putByte(b byte) { w.buf = append(w.buf, b) }

func (w *writer) putBytes(b []byte) {
	w.putUint32(len(b))
	w.buf = append(w.buf, b...)
}

func (w *writer) putString(s string) { w.putBytes([]byte(s)) }

func (w *writer) putStrings(ss []string) {
	w.putUint32(len(ss))
	for _, s := range ss {
		w.putString(s)
	}
}

// reader consumes a frame built by writer, in the same field order.
type reader struct{ buf []byte }

func (r *reader) uint32() (int, error) {
	if len(r.buf) < 4 {
		return 0, codec.ErrTruncated
	}
	n := int(binary.BigEndian.Uint32(r.buf[:4]))
	r.buf = r.buf[4:]
	return n, nil
}

func (r *reader) int64() (int64, error) {
	if len(r.buf) < 8 {
		return 0, codec.ErrTruncated
	}
	v := int64(binary.BigEndian.Uint64(r.buf[:8]))
	r.buf = r.buf[8:]
	return v, nil
}

func (r *reader) byteVal() (byte, error) {
	if len(r.buf) < 1 {
		return 0, codec.ErrTruncated
	}
	b := r.buf[0]
	r.buf = r.buf[1:]
	return b, nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	if len(r.buf) < n {
		return nil, codec.ErrTruncated
	}
	out := make([]byte, n)
	copy(out, r.buf[:n])
	r.buf = r.buf[n:]
	return out, nil
}

func (r *reader) string() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *reader) strings() ([]string, error) {
	n, err := r.uint32()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := r.string()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
