package ros2client

import "encoding/json"

// Message is implemented by all message, request/response, and
// feedback payload types. It carries no methods of its own; it exists
// so generic components can constrain their type parameters the way
// the Rust crate constrains on a Message trait, without requiring a
// code generator to produce the implementation.
type Message interface{}

// Codec (de)serializes a message type to and from the bytes a
// transport.DataWriter/DataReader moves on the wire. This is the
// caller-supplied substitute for a .msg/.srv/.action code generator:
// this package never inspects or generates wire formats itself.
type Codec[T Message] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

// JSONCodec returns a Codec backed by encoding/json. It is provided
// for tests and examples; production bindings will typically use a
// generated CDR codec instead.
func JSONCodec[T Message]() Codec[T] {
	return jsonCodec[T]{}
}

type jsonCodec[T Message] struct{}

func (jsonCodec[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec[T]) Decode(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// SampleInfo describes the provenance of one received sample: which
// remote writer produced it and when the transport received it.
type SampleInfo struct {
	WriterGUID  GUID
	SourceTime  int64 // transport-defined monotonic/wall timestamp, nanoseconds
	ReceiveTime int64
}
