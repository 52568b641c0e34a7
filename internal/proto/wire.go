package proto

import (
	"bytes"
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
	gproto "google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// wireMessage is implemented by every message in this package. Field
// numbers follow vault.proto.
type wireMessage interface {
	appendProto(b []byte) []byte
	readProto(b []byte) error
}

// Encoding helpers. Scalars at their zero value are omitted, as proto3 does
// for fields without presence; pointer fields are written whenever non-nil.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendOptString(b []byte, num protowire.Number, v *string) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, *v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendOptInt(b []byte, num protowire.Number, v *int) []byte {
	if v == nil {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(*v)))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeBool(v))
}

func appendStrings(b []byte, num protowire.Number, vs []string) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func appendEmbedded(b []byte, num protowire.Number, m wireMessage) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m.appendProto(nil))
}

// appendTime writes t as a google.protobuf.Timestamp. The zero time is
// omitted.
func appendTime(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	return appendTimestamp(b, num, t)
}

func appendOptTime(b []byte, num protowire.Number, t *time.Time) []byte {
	if t == nil {
		return b
	}
	return appendTimestamp(b, num, *t)
}

func appendTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	ts, err := gproto.MarshalOptions{Deterministic: true}.Marshal(timestamppb.New(t))
	if err != nil {
		// A Timestamp holds two scalars and cannot fail to marshal.
		panic(err)
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, ts)
}

// fieldDecoder walks the fields of one encoded message. Accessors consume
// the current field's value; a field left unread is skipped.
type fieldDecoder struct {
	b    []byte
	num  protowire.Number
	typ  protowire.Type
	used bool
	err  error
}

func decodeFields(b []byte, fn func(d *fieldDecoder)) error {
	d := &fieldDecoder{b: b}
	for len(d.b) > 0 {
		num, typ, n := protowire.ConsumeTag(d.b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		d.b, d.num, d.typ, d.used = d.b[n:], num, typ, false

		fn(d)
		if d.err != nil {
			return fmt.Errorf("field %d: %w", num, d.err)
		}
		if !d.used {
			n = protowire.ConsumeFieldValue(num, typ, d.b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			d.b = d.b[n:]
		}
	}
	return nil
}

func (d *fieldDecoder) expect(typ protowire.Type) bool {
	if d.typ != typ {
		d.err = fmt.Errorf("unexpected wire type %d", d.typ)
		return false
	}
	return true
}

func (d *fieldDecoder) varint() uint64 {
	if !d.expect(protowire.VarintType) {
		return 0
	}
	v, n := protowire.ConsumeVarint(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return 0
	}
	d.b, d.used = d.b[n:], true
	return v
}

func (d *fieldDecoder) raw() []byte {
	if !d.expect(protowire.BytesType) {
		return nil
	}
	v, n := protowire.ConsumeBytes(d.b)
	if n < 0 {
		d.err = protowire.ParseError(n)
		return nil
	}
	d.b, d.used = d.b[n:], true
	return v
}

func (d *fieldDecoder) string() string { return string(d.raw()) }

func (d *fieldDecoder) optString() *string {
	s := d.string()
	return &s
}

// bytes copies the value out of the input buffer.
func (d *fieldDecoder) bytes() []byte {
	v := d.raw()
	if len(v) == 0 {
		return nil
	}
	return bytes.Clone(v)
}

func (d *fieldDecoder) int64() int64 { return int64(d.varint()) }

func (d *fieldDecoder) int() int { return int(int64(d.varint())) }

func (d *fieldDecoder) optInt() *int {
	n := d.int()
	return &n
}

func (d *fieldDecoder) bool() bool { return protowire.DecodeBool(d.varint()) }

func (d *fieldDecoder) embedded(m wireMessage) {
	v := d.raw()
	if d.err != nil {
		return
	}
	d.err = m.readProto(v)
}

func (d *fieldDecoder) time() time.Time {
	v := d.raw()
	if d.err != nil {
		return time.Time{}
	}
	var ts timestamppb.Timestamp
	if err := gproto.Unmarshal(v, &ts); err != nil {
		d.err = err
		return time.Time{}
	}
	if err := ts.CheckValid(); err != nil {
		d.err = err
		return time.Time{}
	}
	return ts.AsTime()
}

func (d *fieldDecoder) optTime() *time.Time {
	t := d.time()
	return &t
}
