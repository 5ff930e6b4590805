// Package wire implements the small amount of framing ros2client
// needs on top of an opaque transport payload: the request/response
// correlation-id prefix used by the service layer, and the graph
// discovery structures exchanged on ros_discovery_info.
package wire

import "encoding/binary"

// CorrelationPrefixLen is the size in bytes of the RmwRequestId prefix
// written ahead of every service request/response payload: a 16-byte
// writer GUID followed by an 8-byte big-endian sequence number.
const CorrelationPrefixLen = 24

// EncodeCorrelation prepends a request id to payload, returning a new
// slice ready to hand to a DataWriter.
func EncodeCorrelation(writerGUID [16]byte, sequence int64, payload []byte) []byte {
	out := make([]byte, CorrelationPrefixLen+len(payload))
	copy(out[:16], writerGUID[:])
	binary.BigEndian.PutUint64(out[16:24], uint64(sequence))
	copy(out[24:], payload)
	return out
}

// DecodeCorrelation splits a wire payload into its request id and the
// remaining message bytes. ok is false if buf is shorter than the
// correlation prefix.
func DecodeCorrelation(buf []byte) (writerGUID [16]byte, sequence int64, payload []byte, ok bool) {
	if len(buf) < CorrelationPrefixLen {
		return writerGUID, 0, nil, false
	}
	copy(writerGUID[:], buf[:16])
	sequence = int64(binary.BigEndian.Uint64(buf[16:24]))
	payload = buf[24:]
	return writerGUID, sequence, payload, true
}
