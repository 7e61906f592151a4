package msg

import (
	"bytes"
	"fmt"

	"gopkg.in/vmihailenco/msgpack.v2"
)

// Marshal encodes a frame: the message type followed by the message body.
func Marshal(t MessageType, v interface{}) ([]byte, error) {
	return msgpack.Marshal(t, v)
}

// Frame is a received frame whose type has been read but whose body has not.
type Frame struct {
	Type MessageType
	dec  *msgpack.Decoder
}

// Open reads the message type of a frame.
func Open(b []byte) (*Frame, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(b))
	var t MessageType
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode message type: %w", err)
	}
	return &Frame{Type: t, dec: dec}, nil
}

// Decode decodes the frame body into v.
func (f *Frame) Decode(v interface{}) error {
	if err := f.dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", f.Type, err)
	}
	return nil
}
