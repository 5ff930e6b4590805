package ros2client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ros2go/ros2client/internal/transport"
	"github.com/ros2go/ros2client/internal/wire"
)

// NodeEventKind mirrors transport.StatusEventKind at the public API
// boundary, so callers never need to import the internal transport
// package to read a Spinner's status stream.
type NodeEventKind uint8

const (
	EventReaderMatched NodeEventKind = iota
	EventReaderUnmatched
	EventWriterMatched
	EventWriterUnmatched
	EventParticipantDiscovered
	EventParticipantLost
	// EventGraphUpdated reports a fresh ParticipantEntitiesInfo received
	// on the graph-discovery topic; Graph is non-nil only for this kind.
	EventGraphUpdated
)

// NodeEvent is one discovery/liveliness notification delivered on a
// Spinner's status channel.
type NodeEvent struct {
	Kind       NodeEventKind
	Topic      string
	RemoteGUID GUID
	Graph      *wire.ParticipantEntitiesInfo
}

func fromTransportKind(k transport.StatusEventKind) NodeEventKind {
	switch k {
	case transport.ReaderMatched:
		return EventReaderMatched
	case transport.ReaderUnmatched:
		return EventReaderUnmatched
	case transport.WriterMatched:
		return EventWriterMatched
	case transport.WriterUnmatched:
		return EventWriterUnmatched
	case transport.ParticipantDiscovered:
		return EventParticipantDiscovered
	default:
		return EventParticipantLost
	}
}

// Spinner drives one node's discovery and status processing: a single
// cooperative loop multiplexing two lazy sequences — the transport's
// DomainParticipantStatusEvent stream and the graph-discovery topic's
// ParticipantEntitiesInfo stream — applying each to the node's state
// and best-effort broadcasting it to any registered listeners. Created
// once per Node via Node.Spinner.
type Spinner struct {
	node        *Node
	graphReader transport.DataReader

	mu        sync.Mutex
	listeners []chan NodeEvent
}

func newSpinner(n *Node) (*Spinner, error) {
	reader, err := n.ctx.participant.CreateReader(graphName.DDSTopicName(), graphTypeName.String(), transport.QoS{Reliable: true})
	if err != nil {
		return nil, &TransportError{Op: "create_reader", Topic: graphName.DDSTopicName(), Parent: err}
	}
	return &Spinner{node: n, graphReader: reader}, nil
}

// StatusReceiver registers a new listener and returns its
// receive-only channel, bounded at the node's configured status
// buffer (default 8, see WithStatusBuffer). Delivery is best-effort:
// if a listener's channel is full when an event is sent, the event is
// dropped for that listener and ros2client_spinner_broadcast_dropped_total
// is incremented.
func (s *Spinner) StatusReceiver() <-chan NodeEvent {
	ch := make(chan NodeEvent, s.node.opts.StatusBuffer)
	s.mu.Lock()
	s.listeners = append(s.listeners, ch)
	s.mu.Unlock()
	return ch
}

// Spin runs the spinner's event loop until ctx is done or the node's
// Context is closed. It is safe to run in its own goroutine; it must
// not be called concurrently with itself.
func (s *Spinner) Spin(ctx context.Context) error {
	events := s.node.ctx.participant.StatusEvents()
	logger := s.node.ctx.logger
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				logger.Warn("spinner: transport status stream closed", "node", s.node.FullyQualifiedName())
				return nil
			}
			s.node.applyStatusEvent(ev)
			s.broadcast(NodeEvent{
				Kind:       fromTransportKind(ev.Kind),
				Topic:      ev.Topic,
				RemoteGUID: ev.RemoteGUID,
			})
		case <-s.graphReader.Samples():
			for {
				sample, ok, err := s.graphReader.Take()
				if err != nil || !ok {
					break
				}
				var info wire.ParticipantEntitiesInfo
				if err := json.Unmarshal(sample.Payload, &info); err != nil {
					logger.Warn("spinner: malformed graph update, discarding", "node", s.node.FullyQualifiedName(), "error", err)
					continue
				}
				s.node.applyGraphUpdate(info)
				s.broadcast(NodeEvent{Kind: EventGraphUpdated, Graph: &info})
			}
		}
	}
}

// broadcast delivers ev to every live listener, dropping it for (and
// removing) any listener whose channel has been closed by its owner,
// and dropping it without removing the listener when its channel is
// merely full — matching the Rust crate's send_status_event
// try_send-then-swap-remove-on-closed behavior.
func (s *Spinner) broadcast(ev NodeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	metrics := s.node.ctx.metrics
	nodeName := s.node.FullyQualifiedName()

	live := s.listeners[:0]
	for _, ch := range s.listeners {
		sent, closed := trySend(ch, ev)
		if closed {
			continue // drop the dead listener; the rest keep their order
		}
		if !sent {
			metrics.broadcastDropped.WithLabelValues(nodeName).Inc()
		}
		live = append(live, ch)
	}
	s.listeners = live
}

// trySend attempts a non-blocking send on ch. closed reports whether
// the send panicked because ch had been closed by its owner.
func trySend(ch chan NodeEvent, ev NodeEvent) (sent, closed bool) {
	defer func() {
		if recover() != nil {
			closed = true
		}
	}()
	select {
	case ch <- ev:
		return true, false
	default:
		return false, false
	}
}
