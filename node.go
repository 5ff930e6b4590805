package ros2client

import (
	"strings"
	"sync"
	"time"

	"github.com/ros2go/ros2client/internal/transport"
	"github.com/ros2go/ros2client/internal/wire"
)

// Node is a named, namespaced graph participant: the unit that owns
// publishers, subscriptions, service clients/servers, action
// clients/servers, and exactly one Spinner.
type Node struct {
	ctx       *Context
	baseName  Name
	namespace string
	opts      nodeOptions
	guid      GUID

	mu               sync.Mutex
	readersToWriters map[GUID]map[GUID]bool // local reader GUID -> matched remote writer GUIDs
	writersToReaders map[GUID]map[GUID]bool // local writer GUID -> matched remote reader GUIDs
	readerTopic      map[GUID]string
	writerTopic      map[GUID]string
	externalNodes    map[GUID][]wire.NodeEntitiesInfo // participant GUID (this node's own included) -> the nodes it currently hosts, per the last graph update received

	spinner *Spinner
	closed  bool
}

// Name returns the node's base name, without namespace.
func (n *Node) Name() string {
	return n.baseName.String()
}

// Namespace returns the node's namespace, e.g. "/" or "/turtle1".
func (n *Node) Namespace() string {
	return n.namespace
}

// FullyQualifiedName returns namespace and base name joined ROS
// 2-style, e.g. "/turtle1/turtlesim".
func (n *Node) FullyQualifiedName() string {
	ns := n.namespace
	if ns == "" {
		ns = "/"
	}
	if !strings.HasSuffix(ns, "/") {
		ns += "/"
	}
	return ns + n.baseName.String()
}

// Context returns the Context this node was created from.
func (n *Node) Context() *Context {
	return n.ctx
}

// GUID returns a synthetic identity for this node, used to label its
// entities in the in-memory graph info.
func (n *Node) GUID() GUID {
	return n.guid
}

// Spinner returns this node's Spinner, creating it on first call.
// Calling Spinner more than once returns ErrSpinnerAlreadyStarted, the
// same "call once" contract as the Rust crate's Node::spinner.
func (n *Node) Spinner() (*Spinner, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.spinner != nil {
		return nil, ErrSpinnerAlreadyStarted
	}
	s, err := newSpinner(n)
	if err != nil {
		return nil, err
	}
	n.spinner = s
	return n.spinner, nil
}

// addReader registers a locally-created reader under the given topic,
// so discovery events and GetSubscriptionCount can be attributed to
// it. Called by Subscription/Client/ActionClient constructors.
func (n *Node) addReader(guid GUID, topic string) {
	n.mu.Lock()
	if n.readerTopic == nil {
		n.readerTopic = make(map[GUID]string)
	}
	n.readerTopic[guid] = topic
	n.readersToWriters[guid] = make(map[GUID]bool)
	n.mu.Unlock()
	n.publishEntities()
}

// addWriter registers a locally-created writer under the given topic.
// Called by Publisher/Server/ActionServer constructors.
func (n *Node) addWriter(guid GUID, topic string) {
	n.mu.Lock()
	if n.writerTopic == nil {
		n.writerTopic = make(map[GUID]string)
	}
	n.writerTopic[guid] = topic
	n.writersToReaders[guid] = make(map[GUID]bool)
	n.mu.Unlock()
	n.publishEntities()
}

func (n *Node) removeReader(guid GUID) {
	n.mu.Lock()
	delete(n.readerTopic, guid)
	delete(n.readersToWriters, guid)
	n.mu.Unlock()
	n.publishEntities()
}

func (n *Node) removeWriter(guid GUID) {
	n.mu.Lock()
	delete(n.writerTopic, guid)
	delete(n.writersToReaders, guid)
	n.mu.Unlock()
	n.publishEntities()
}

// currentEntities builds this node's NodeEntitiesInfo from its current
// reader/writer maps, as published on the graph-discovery topic.
func (n *Node) currentEntities() wire.NodeEntitiesInfo {
	n.mu.Lock()
	defer n.mu.Unlock()
	info := wire.NodeEntitiesInfo{
		NodeNamespace: n.namespace,
		NodeName:      n.baseName.String(),
	}
	for g := range n.readerTopic {
		info.ReaderGUIDs = append(info.ReaderGUIDs, [16]byte(g))
	}
	for g := range n.writerTopic {
		info.WriterGUIDs = append(info.WriterGUIDs, [16]byte(g))
	}
	return info
}

// publishEntities republishes this node's entry in the Context's
// aggregate graph info. Called after every reader/writer registration
// change (spec.md §4.5: "after every change, republishes the updated
// ParticipantEntitiesInfo via Context").
func (n *Node) publishEntities() {
	n.ctx.updateNode(n.FullyQualifiedName(), n.currentEntities())
}

// applyGraphUpdate records the node set a participant currently hosts
// (this node's own participant included), as reported by the Spinner
// on a graph-discovery event.
func (n *Node) applyGraphUpdate(info wire.ParticipantEntitiesInfo) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.externalNodes[GUID(info.ParticipantGUID)] = info.NodeEntities
}

// applyStatusEvent updates the reader/writer match maps in response to
// a discovery event from the transport. Called only from the Spinner's
// single-threaded event loop — never concurrently with itself — but it
// still takes the mutex because addReader/addWriter/GetPublisherCount
// may race with it from other goroutines.
func (n *Node) applyStatusEvent(ev transport.StatusEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	switch ev.Kind {
	case transport.WriterMatched:
		if set, ok := n.readersToWriters[ev.LocalGUID]; ok {
			set[ev.RemoteGUID] = true
		}
	case transport.WriterUnmatched:
		if set, ok := n.readersToWriters[ev.LocalGUID]; ok {
			delete(set, ev.RemoteGUID)
		}
	case transport.ReaderMatched:
		if set, ok := n.writersToReaders[ev.LocalGUID]; ok {
			set[ev.RemoteGUID] = true
		}
	case transport.ReaderUnmatched:
		if set, ok := n.writersToReaders[ev.LocalGUID]; ok {
			delete(set, ev.RemoteGUID)
		}
	}
}

// GetPublisherCount returns the number of distinct remote writers
// matched to this node's readers on topic.
func (n *Node) GetPublisherCount(topic Name) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	seen := make(map[GUID]bool)
	for guid, t := range n.readerTopic {
		if t != topic.DDSTopicName() {
			continue
		}
		for wg := range n.readersToWriters[guid] {
			seen[wg] = true
		}
	}
	return len(seen)
}

// GetSubscriptionCount returns the number of distinct remote readers
// matched to this node's writers on topic.
func (n *Node) GetSubscriptionCount(topic Name) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	seen := make(map[GUID]bool)
	for guid, t := range n.writerTopic {
		if t != topic.DDSTopicName() {
			continue
		}
		for rg := range n.writersToReaders[guid] {
			seen[rg] = true
		}
	}
	return len(seen)
}

// waitForWriter returns a channel that is closed once at least one
// remote writer is matched on topic's local reader(s). Matches are
// recorded only by the node's Spinner, so the channel closes only
// while Spin is running or has already applied a match. Needed to avoid the
// subscribe-before-the-first-sample race: a reader created an instant
// before its matching writer can otherwise miss that writer's first
// sample.
func (n *Node) waitForWriter(topic Name) <-chan struct{} {
	return n.waitForMatch(func() bool { return n.GetPublisherCount(topic) > 0 })
}

// waitForReader is the Publisher-side analogue of waitForWriter.
func (n *Node) waitForReader(topic Name) <-chan struct{} {
	return n.waitForMatch(func() bool { return n.GetSubscriptionCount(topic) > 0 })
}

// waitForMatch polls predicate from a background goroutine and closes
// the returned channel once it is true. It is a simple stand-in for
// the Rust crate's event-driven wait; correctness does not depend on
// polling interval, only on eventually observing the match.
func (n *Node) waitForMatch(predicate func() bool) <-chan struct{} {
	ch := make(chan struct{})
	if predicate() {
		close(ch)
		return ch
	}
	go func() {
		t := time.NewTicker(10 * time.Millisecond)
		defer t.Stop()
		for range t.C {
			if predicate() {
				close(ch)
				return
			}
		}
	}()
	return ch
}

// Close releases the node's reference on its Context. Entities created
// from this node (publishers, subscriptions, clients, servers) should
// be closed first; Close does not cascade to them. Per spec.md §3's
// invariant, the node's graph entry is removed and republished before
// the reference is released.
func (n *Node) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()
	n.ctx.removeNode(n.FullyQualifiedName())
	n.ctx.release()
	return nil
}
