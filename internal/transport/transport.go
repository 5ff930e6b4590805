// Package transport declares the boundary a DDS/RTPS binding must
// satisfy for ros2client to drive node discovery, publish/subscribe,
// and request/response over it. It does not implement RTPS: this
// package is a reference double (see memory.go) used for tests and
// examples; a production build would supply a binding over a real DDS
// implementation.
package transport

import "context"

// EntityKind distinguishes the two roles a local endpoint can play,
// mirroring DDS DataWriter/DataReader.
type EntityKind uint8

const (
	WriterKind EntityKind = iota
	ReaderKind
)

// QoS is the subset of DDS QoS policies the caller negotiates per
// topic. It is a plain value type so a binding can translate it to
// whatever its underlying DDS stack expects.
type QoS struct {
	Reliable    bool
	Durable     bool
	HistoryKind uint8 // 0 = keep-last, 1 = keep-all
	Depth       int
}

// Sample is one unit of data moved by a DataWriter/DataReader: the
// encoded payload plus the identity of the writer that produced it.
type Sample struct {
	Payload    []byte
	WriterGUID [16]byte
	SourceTime int64
}

// DataWriter publishes encoded samples to one topic.
type DataWriter interface {
	Write(ctx context.Context, payload []byte) error
	GUID() [16]byte
	Dispose() error
}

// DataReader receives encoded samples from one topic. Take is
// non-blocking: it returns ok=false if nothing is queued. Samples is a
// channel fed by the transport as data arrives, used to implement
// blocking/async reads without polling.
type DataReader interface {
	Take() (Sample, bool, error)
	Samples() <-chan struct{} // signalled (best-effort) when Take would return data
	GUID() [16]byte
	Dispose() error
}

// StatusEventKind enumerates the discovery-driven events a Participant
// reports on its status stream.
type StatusEventKind uint8

const (
	ReaderMatched StatusEventKind = iota
	ReaderUnmatched
	WriterMatched
	WriterUnmatched
	ParticipantDiscovered
	ParticipantLost
)

// StatusEvent is one discovery/liveliness event, reported by
// Participant.StatusEvents for the Spinner to consume.
type StatusEvent struct {
	Kind       StatusEventKind
	Topic      string
	LocalGUID  [16]byte
	RemoteGUID [16]byte
}

// Participant is the per-process (or per-domain) DDS entity that
// creates writers and readers and reports discovery events. One
// ros2client Context owns exactly one Participant.
type Participant interface {
	CreateWriter(topic, typeName string, qos QoS) (DataWriter, error)
	CreateReader(topic, typeName string, qos QoS) (DataReader, error)
	StatusEvents() <-chan StatusEvent
	DomainID() int
	Close() error
}
