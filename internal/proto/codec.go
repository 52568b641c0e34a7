// Package proto defines the VaultShare gRPC contract: message types, the
// service descriptor, a client stub and the protobuf codec the messages
// travel in. vault.proto documents the schema.
package proto

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	gproto "google.golang.org/protobuf/proto"
)

// CodecName is the name the codec is registered under. It replaces gRPC's
// default protobuf codec, so plain "application/grpc" requests use it.
const CodecName = "proto"

// Codec encodes the messages of this package in protobuf wire format.
// Generated protobuf messages are passed through to the protobuf runtime,
// so other services in the same process are unaffected.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.appendProto([]byte{}), nil
	case gproto.Message:
		return gproto.Marshal(m)
	default:
		return nil, fmt.Errorf("proto codec: cannot marshal %T", v)
	}
}

func (Codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		if err := m.readProto(data); err != nil {
			return fmt.Errorf("proto codec: %T: %w", v, err)
		}
		return nil
	case gproto.Message:
		return gproto.Unmarshal(data, m)
	default:
		return fmt.Errorf("proto codec: cannot unmarshal into %T", v)
	}
}

func (Codec) Name() string { return CodecName }

func init() {
	encoding.RegisterCodec(Codec{})
}
