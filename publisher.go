package ros2client

import (
	"context"

	"github.com/ros2go/ros2client/internal/transport"
)

// Publisher publishes samples of type T to one topic.
type Publisher[T Message] struct {
	node    *Node
	topic   Name
	writer  transport.DataWriter
	codec   Codec[T]

	interceptors []PublishInterceptor[T]
}

// CreatePublisher creates a Publisher for topic on node, using codec
// to serialize T and qos to configure the underlying DDS writer.
func CreatePublisher[T Message](node *Node, topic Name, typeName TypeName, codec Codec[T], qos QoS) (*Publisher[T], error) {
	writer, err := node.ctx.participant.CreateWriter(topic.DDSTopicName(), typeName.String(), toTransportQoS(qos))
	if err != nil {
		return nil, &TransportError{Op: "create_writer", Topic: topic.String(), Parent: err}
	}
	node.addWriter(GUID(writer.GUID()), topic.DDSTopicName())
	return &Publisher[T]{node: node, topic: topic, writer: writer, codec: codec}, nil
}

// Topic returns the topic this publisher writes to.
func (p *Publisher[T]) Topic() Name {
	return p.topic
}

// Use installs interceptors, applied in the order given, around
// Publish.
func (p *Publisher[T]) Use(interceptors ...PublishInterceptor[T]) {
	p.interceptors = append(p.interceptors, interceptors...)
}

// Publish serializes and sends v, returning a Token that completes
// once the underlying transport has accepted (or failed to accept)
// the write.
func (p *Publisher[T]) Publish(v T) Token {
	publish := applyPublishInterceptors(p.rawPublish, p.interceptors)
	return publish(v)
}

func (p *Publisher[T]) rawPublish(v T) Token {
	t := newToken()
	payload, err := p.codec.Encode(v)
	if err != nil {
		t.complete(err)
		return t
	}
	go func() {
		err := p.writer.Write(context.Background(), payload)
		if err != nil {
			t.complete(&TransportError{Op: "publish", Topic: p.topic.String(), Parent: err})
			return
		}
		p.node.ctx.metrics.samplesPublished.WithLabelValues(p.topic.String()).Inc()
		t.complete(nil)
	}()
	return t
}

// WaitForSubscription blocks until at least one subscription is
// matched to this publisher, or ctx is done.
func (p *Publisher[T]) WaitForSubscription(ctx context.Context) error {
	select {
	case <-p.node.waitForReader(p.topic):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disposes the underlying writer.
func (p *Publisher[T]) Close() error {
	guid := GUID(p.writer.GUID())
	p.node.removeWriter(guid)
	return p.writer.Dispose()
}

func toTransportQoS(q QoS) transport.QoS {
	return transport.QoS{
		Reliable:    q.Reliability == Reliable,
		Durable:     q.Durability == TransientLocal,
		HistoryKind: uint8(q.History),
		Depth:       q.Depth,
	}
}
