package gateway

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec is the wire format of one gateway connection.
type Codec interface {
	// Name returns the codec identifier ("json" or "msgpack").
	Name() string

	// Marshal serializes a frame to bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a frame.
	Unmarshal(data []byte, v any) error
}

// Codec name constants for format selection.
const (
	CodecNameJSON    = "json"
	CodecNameMsgpack = "msgpack"
)

// CodecFor returns a codec by name. Defaults to JSON.
func CodecFor(name string) Codec {
	switch name {
	case CodecNameMsgpack:
		return &MsgpackCodec{}
	default:
		return &JSONCodec{}
	}
}

// JSONCodec encodes gateway frames as JSON text messages.
type JSONCodec struct{}

func (c *JSONCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (c *JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func (c *JSONCodec) Name() string { return CodecNameJSON }

// MsgpackCodec encodes gateway frames as MessagePack binary messages.
// Field names follow the json struct tags, so both codecs carry the
// same shape.
type MsgpackCodec struct{}

func (c *MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

func (c *MsgpackCodec) Name() string { return CodecNameMsgpack }
