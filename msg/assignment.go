package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// Assignment hands the rows [StartRow, StartRow+Rows) to a worker.
type Assignment struct {
	StartRow int
	Rows     int
}

var (
	_ msgpack.CustomEncoder = &Assignment{}
	_ msgpack.CustomDecoder = &Assignment{}
)

func (a *Assignment) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(a.StartRow, a.Rows)
}

func (a *Assignment) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&a.StartRow, &a.Rows)
}
