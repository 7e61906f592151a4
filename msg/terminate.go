package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// Terminate tells a worker that no more assignments will follow.
// It is the only termination signal of the protocol.
type Terminate struct{}

var (
	_ msgpack.CustomEncoder = &Terminate{}
	_ msgpack.CustomDecoder = &Terminate{}
)

func (t *Terminate) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeNil()
}

func (t *Terminate) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.DecodeNil()
}
