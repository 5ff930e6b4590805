package ros2client

import (
	"context"

	"github.com/ros2go/ros2client/internal/transport"
)

// Subscription receives samples of type T from one topic.
type Subscription[T Message] struct {
	node   *Node
	topic  Name
	reader transport.DataReader
	codec  Codec[T]

	interceptors []HandlerInterceptor[T]

	stop chan struct{}
}

// CreateSubscription creates a Subscription for topic on node. If
// handler is non-nil, it is invoked in its own goroutine for every
// sample as it arrives; pass a nil handler and use Take or Stream
// instead to pull samples on demand — the two styles are not meant to
// be mixed on one Subscription.
func CreateSubscription[T Message](node *Node, topic Name, typeName TypeName, codec Codec[T], qos QoS, handler SampleHandler[T]) (*Subscription[T], error) {
	reader, err := node.ctx.participant.CreateReader(topic.DDSTopicName(), typeName.String(), toTransportQoS(qos))
	if err != nil {
		return nil, &TransportError{Op: "create_reader", Topic: topic.String(), Parent: err}
	}
	node.addReader(GUID(reader.GUID()), topic.DDSTopicName())
	s := &Subscription[T]{node: node, topic: topic, reader: reader, codec: codec, stop: make(chan struct{})}
	if handler != nil {
		go s.runCallback(handler)
	}
	return s, nil
}

// Topic returns the topic this subscription reads from.
func (s *Subscription[T]) Topic() Name {
	return s.topic
}

// Use installs interceptors, applied in the order given, around the
// callback-style delivery path (not Take/Stream).
func (s *Subscription[T]) Use(interceptors ...HandlerInterceptor[T]) {
	s.interceptors = append(s.interceptors, interceptors...)
}

func (s *Subscription[T]) runCallback(handler SampleHandler[T]) {
	for {
		select {
		case <-s.stop:
			return
		case <-s.reader.Samples():
			dispatch := applyHandlerInterceptors(handler, s.interceptors)
			for {
				v, info, ok, err := s.take()
				if err != nil || !ok {
					break
				}
				dispatch(v, info)
			}
		}
	}
}

// Take returns the next queued sample, if any, without blocking.
func (s *Subscription[T]) Take() (T, SampleInfo, bool, error) {
	return s.take()
}

func (s *Subscription[T]) take() (T, SampleInfo, bool, error) {
	var zero T
	sample, ok, err := s.reader.Take()
	if err != nil {
		return zero, SampleInfo{}, false, &TransportError{Op: "take", Topic: s.topic.String(), Parent: err}
	}
	if !ok {
		return zero, SampleInfo{}, false, nil
	}
	v, err := s.codec.Decode(sample.Payload)
	if err != nil {
		return zero, SampleInfo{}, false, err
	}
	s.node.ctx.metrics.samplesTaken.WithLabelValues(s.topic.String()).Inc()
	return v, SampleInfo{WriterGUID: sample.WriterGUID, SourceTime: sample.SourceTime}, true, nil
}

// WaitForPublisher blocks until at least one publisher is matched to
// this subscription, or ctx is done.
func (s *Subscription[T]) WaitForPublisher(ctx context.Context) error {
	select {
	case <-s.node.waitForWriter(s.topic):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stream returns a new cursor over this subscription's samples. Every
// cursor returned by Stream pulls from the same underlying transport
// reader: concurrent cursors on one Subscription race for samples
// rather than each seeing every sample. Use one cursor per
// Subscription unless that race is acceptable for your use case.
func (s *Subscription[T]) Stream(ctx context.Context) *Stream[T] {
	return &Stream[T]{sub: s, ctx: ctx}
}

// Close stops any running callback goroutine and disposes the reader.
func (s *Subscription[T]) Close() error {
	close(s.stop)
	guid := GUID(s.reader.GUID())
	s.node.removeReader(guid)
	return s.reader.Dispose()
}

// Stream is a lazy, unbounded, finite-only-on-error cursor over a
// Subscription's samples.
type Stream[T Message] struct {
	sub *Subscription[T]
	ctx context.Context
}

// Next blocks until a sample is available, ctx is done, or the
// context passed to Subscription.Stream is done, whichever comes first.
func (st *Stream[T]) Next(ctx context.Context) (T, SampleInfo, error) {
	for {
		v, info, ok, err := st.sub.take()
		if err != nil {
			var zero T
			return zero, SampleInfo{}, err
		}
		if ok {
			return v, info, nil
		}
		select {
		case <-st.sub.reader.Samples():
		case <-ctx.Done():
			var zero T
			return zero, SampleInfo{}, ctx.Err()
		case <-st.ctx.Done():
			var zero T
			return zero, SampleInfo{}, st.ctx.Err()
		}
	}
}
