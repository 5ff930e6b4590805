package transport

import (
	"context"
	"crypto/rand"
	"sync"
)

// memoryParticipant is an in-process reference transport: writers
// deliver samples directly to every reader currently registered on
// the same topic name, and topic (un)registration is reported on the
// status stream the way a real participant would report discovery
// events. It is a test double, not a DDS binding — grounded in the
// teacher corpus's own habit of driving protocol logic over Go
// channels in unit tests rather than real sockets.
type memoryParticipant struct {
	domainID int

	mu      sync.Mutex
	topics  map[string]*memoryTopic
	closed  bool
	events  chan StatusEvent
}

type memoryTopic struct {
	writers map[[16]byte]bool
	readers map[[16]byte]*memoryReader
}

// NewMemoryParticipant creates a Participant backed by in-process
// channels. The domain id is only recorded and returned by DomainID:
// no two memoryParticipants ever see each other's samples, whether or
// not their domain ids are equal.
func NewMemoryParticipant(domainID int) Participant {
	return &memoryParticipant{
		domainID: domainID,
		topics:   make(map[string]*memoryTopic),
		events:   make(chan StatusEvent, 64),
	}
}

func (p *memoryParticipant) DomainID() int { return p.domainID }

func (p *memoryParticipant) topicFor(name string) *memoryTopic {
	t, ok := p.topics[name]
	if !ok {
		t = &memoryTopic{
			writers: make(map[[16]byte]bool),
			readers: make(map[[16]byte]*memoryReader),
		}
		p.topics[name] = t
	}
	return t
}

func (p *memoryParticipant) CreateWriter(topicName, _ string, _ QoS) (DataWriter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	guid := randomGUID()
	t := p.topicFor(topicName)
	t.writers[guid] = true
	w := &memoryWriter{participant: p, topic: topicName, guid: guid}
	for rg := range t.readers {
		p.emit(StatusEvent{Kind: WriterMatched, Topic: topicName, LocalGUID: rg, RemoteGUID: guid})
		p.emit(StatusEvent{Kind: ReaderMatched, Topic: topicName, LocalGUID: guid, RemoteGUID: rg})
	}
	return w, nil
}

func (p *memoryParticipant) CreateReader(topicName, _ string, _ QoS) (DataReader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	guid := randomGUID()
	t := p.topicFor(topicName)
	r := &memoryReader{
		participant: p,
		topic:       topicName,
		guid:        guid,
		queue:       make(chan Sample, 256),
		signal:      make(chan struct{}, 1),
	}
	t.readers[guid] = r
	for wg := range t.writers {
		p.emit(StatusEvent{Kind: WriterMatched, Topic: topicName, LocalGUID: guid, RemoteGUID: wg})
		p.emit(StatusEvent{Kind: ReaderMatched, Topic: topicName, LocalGUID: wg, RemoteGUID: guid})
	}
	return r, nil
}

func (p *memoryParticipant) StatusEvents() <-chan StatusEvent {
	return p.events
}

// emit is a best-effort, non-blocking send: a full status channel
// drops the event rather than blocking whoever triggered it. Callers
// must already hold p.mu.
func (p *memoryParticipant) emit(ev StatusEvent) {
	if p.closed {
		return
	}
	select {
	case p.events <- ev:
	default:
	}
}

func (p *memoryParticipant) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.events)
	return nil
}

type memoryWriter struct {
	participant *memoryParticipant
	topic       string
	guid        [16]byte
}

func (w *memoryWriter) GUID() [16]byte { return w.guid }

func (w *memoryWriter) Write(ctx context.Context, payload []byte) error {
	p := w.participant
	p.mu.Lock()
	t, ok := p.topics[w.topic]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	readers := make([]*memoryReader, 0, len(t.readers))
	for _, r := range t.readers {
		readers = append(readers, r)
	}
	p.mu.Unlock()

	sample := Sample{Payload: payload, WriterGUID: w.guid}
	for _, r := range readers {
		select {
		case r.queue <- sample:
			select {
			case r.signal <- struct{}{}:
			default:
			}
		case <-ctx.Done():
			return ctx.Err()
		default:
			// reader's queue is full: drop, matching best-effort delivery.
		}
	}
	return nil
}

func (w *memoryWriter) Dispose() error {
	p := w.participant
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[w.topic]; ok {
		delete(t.writers, w.guid)
		for rg := range t.readers {
			p.emit(StatusEvent{Kind: WriterUnmatched, Topic: w.topic, LocalGUID: rg, RemoteGUID: w.guid})
		}
	}
	return nil
}

type memoryReader struct {
	participant *memoryParticipant
	topic       string
	guid        [16]byte
	queue       chan Sample
	signal      chan struct{}
}

func (r *memoryReader) GUID() [16]byte { return r.guid }

func (r *memoryReader) Samples() <-chan struct{} { return r.signal }

func (r *memoryReader) Take() (Sample, bool, error) {
	select {
	case s := <-r.queue:
		return s, true, nil
	default:
		return Sample{}, false, nil
	}
}

func (r *memoryReader) Dispose() error {
	p := r.participant
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.topics[r.topic]; ok {
		delete(t.readers, r.guid)
		for wg := range t.writers {
			p.emit(StatusEvent{Kind: ReaderUnmatched, Topic: r.topic, LocalGUID: wg, RemoteGUID: r.guid})
		}
	}
	return nil
}

func randomGUID() [16]byte {
	var g [16]byte
	_, _ = rand.Read(g[:])
	return g
}
