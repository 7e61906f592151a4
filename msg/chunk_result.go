package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// ChunkResult carries the computed values of an assigned chunk, row-major,
// tagged with the row offset of the assignment.
type ChunkResult struct {
	StartRow int
	Values   []float32
}

var (
	_ msgpack.CustomEncoder = &ChunkResult{}
	_ msgpack.CustomDecoder = &ChunkResult{}
)

func (r *ChunkResult) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeInt(r.StartRow); err != nil {
		return err
	}
	if err := enc.EncodeArrayLen(len(r.Values)); err != nil {
		return err
	}
	for _, v := range r.Values {
		if err := enc.EncodeFloat32(v); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkResult) DecodeMsgpack(dec *msgpack.Decoder) error {
	var err error
	if r.StartRow, err = dec.DecodeInt(); err != nil {
		return err
	}
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 0 {
		r.Values = nil
		return nil
	}
	if cap(r.Values) >= n {
		r.Values = r.Values[:n]
	} else {
		r.Values = make([]float32, n)
	}
	for i := range r.Values {
		if r.Values[i], err = dec.DecodeFloat32(); err != nil {
			return err
		}
	}
	return nil
}
