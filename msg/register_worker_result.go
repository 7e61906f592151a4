package msg

import "gopkg.in/vmihailenco/msgpack.v2"

// RegisterWorkerResult is the coordinator's answer to a worker registration.
// On success it carries everything a worker needs to take part in the run:
// its rank, the group size and the image geometry.
type RegisterWorkerResult struct {
	Error  string
	Rank   int
	Size   int
	Height int
	Width  int
	Plane  Plane
}

var (
	_ msgpack.CustomEncoder = &RegisterWorkerResult{}
	_ msgpack.CustomDecoder = &RegisterWorkerResult{}
)

func (r *RegisterWorkerResult) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(r.Error, r.Rank, r.Size, r.Height, r.Width, &r.Plane)
}

func (r *RegisterWorkerResult) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&r.Error, &r.Rank, &r.Size, &r.Height, &r.Width, &r.Plane)
}

// Plane is the region of the complex plane covered by the image.
type Plane struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

var (
	_ msgpack.CustomEncoder = &Plane{}
	_ msgpack.CustomDecoder = &Plane{}
)

func (p *Plane) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(p.MinX, p.MaxX, p.MinY, p.MaxY)
}

func (p *Plane) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&p.MinX, &p.MaxX, &p.MinY, &p.MaxY)
}
