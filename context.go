package ros2client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ros2go/ros2client/internal/transport"
	"github.com/ros2go/ros2client/internal/wire"
)

// graphName/graphTypeName name the well-known ros_discovery_info topic
// every participant publishes its ParticipantEntitiesInfo on (see
// original_source/src/node.rs's Context and spec.md §4.7). The type
// name is a plausible rmw_dds_common analogue; this package does not
// depend on any real message generator for it (see message.go's
// Codec doc comment).
var (
	graphName     = MustName("ros_discovery_info")
	graphTypeName = MustTypeName("rmw_dds_common/msg/ParticipantEntitiesInfo")
)

// Context owns one DDS domain participant, the nodes created from it,
// and the aggregate graph-discovery state published on the
// ros_discovery_info topic. Most processes need only one; NewContext
// is exported for callers that want more than one DDS domain id in
// the same process (see original_source's Context::with_domain_id),
// and the top-level NewNode function lazily creates and reuses a
// single default Context for the common case.
type Context struct {
	domainID        int
	participant     transport.Participant
	logger          *slog.Logger
	metrics         *nodeMetrics
	nodeOpts        nodeOptions
	participantGUID GUID
	graphWriter     transport.DataWriter

	mu        sync.Mutex
	nodeCount int
	closed    bool
	nodes     map[string]wire.NodeEntitiesInfo // fully qualified node name -> its current reader/writer GUIDs
}

// NewContext creates a Context bound to the given DDS domain id. The
// reference transport (internal/transport) is used; wiring in a real
// DDS/RTPS binding is out of scope for this package.
func NewContext(domainID int, opts ...ContextOption) (*Context, error) {
	o := defaultContextOptions()
	o.DomainID = domainID
	for _, opt := range opts {
		opt(&o)
	}
	participant := transport.NewMemoryParticipant(domainID)
	graphWriter, err := participant.CreateWriter(graphName.DDSTopicName(), graphTypeName.String(), transport.QoS{Reliable: true})
	if err != nil {
		return nil, &TransportError{Op: "create_writer", Topic: graphName.DDSTopicName(), Parent: err}
	}
	return &Context{
		domainID:        domainID,
		participant:     participant,
		logger:          o.Logger.With("lib", "ros2client"),
		metrics:         newNodeMetrics(o.Registry),
		participantGUID: NewGUID(),
		graphWriter:     graphWriter,
		nodes:           make(map[string]wire.NodeEntitiesInfo),
	}, nil
}

// ParticipantGUID returns the synthetic identity this Context's
// participant publishes graph updates under.
func (c *Context) ParticipantGUID() GUID {
	return c.participantGUID
}

// updateNode records fqName's current reader/writer GUIDs and
// republishes the aggregate ParticipantEntitiesInfo, matching
// spec.md §4.7's "on update_node or remove_node, rebuild the
// aggregate ParticipantEntitiesInfo and publish it".
func (c *Context) updateNode(fqName string, info wire.NodeEntitiesInfo) {
	c.mu.Lock()
	c.nodes[fqName] = info
	c.mu.Unlock()
	c.publishGraph()
}

// removeNode deletes fqName from the registry and republishes the
// aggregate graph info with it absent, satisfying the §3 invariant
// that a dropped node's graph entry disappears before its
// participant-level resources are released.
func (c *Context) removeNode(fqName string) {
	c.mu.Lock()
	delete(c.nodes, fqName)
	c.mu.Unlock()
	c.publishGraph()
}

func (c *Context) publishGraph() {
	c.mu.Lock()
	info := wire.ParticipantEntitiesInfo{ParticipantGUID: c.participantGUID}
	for _, n := range c.nodes {
		info.NodeEntities = append(info.NodeEntities, n)
	}
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return
	}

	payload, err := json.Marshal(info)
	if err != nil {
		c.logger.Warn("context: failed to encode graph info", "error", err)
		return
	}
	if err := c.graphWriter.Write(context.Background(), payload); err != nil {
		c.logger.Warn("context: failed to publish graph info", "error", err)
	}
}

// DomainID returns the DDS domain id this Context was created with.
func (c *Context) DomainID() int {
	return c.domainID
}

// NodeCount returns the number of nodes currently open on this
// Context.
func (c *Context) NodeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nodeCount
}

// NewNode creates a Node in this Context's domain. base must already
// be a valid Name (no namespace prefix); namespace defaults to "/" and
// may be overridden with WithNamespace.
func (c *Context) NewNode(base Name, opts ...NodeOption) (*Node, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrNodeClosed
	}
	c.mu.Unlock()

	o := defaultNodeOptions()
	for _, opt := range opts {
		opt(&o)
	}

	n := &Node{
		ctx:              c,
		baseName:         base,
		namespace:        o.Namespace,
		opts:             o,
		guid:             NewGUID(),
		readersToWriters: make(map[GUID]map[GUID]bool),
		writersToReaders: make(map[GUID]map[GUID]bool),
		readerTopic:      make(map[GUID]string),
		writerTopic:      make(map[GUID]string),
		externalNodes:    make(map[GUID][]wire.NodeEntitiesInfo),
	}

	c.mu.Lock()
	c.nodeCount++
	c.mu.Unlock()

	c.logger.Info("node created", "name", n.FullyQualifiedName())
	return n, nil
}

// release is called by Node.Close to decrement the live-node count.
func (c *Context) release() {
	c.mu.Lock()
	c.nodeCount--
	c.mu.Unlock()
}

// Close shuts down the underlying transport participant. It is an
// error to call Close while nodes are still open, matching the Rust
// crate's expectation that nodes are dropped before their Context.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	if c.nodeCount > 0 {
		return fmt.Errorf("ros2client: cannot close context with %d open node(s)", c.nodeCount)
	}
	c.closed = true
	_ = c.graphWriter.Dispose()
	return c.participant.Close()
}

var (
	defaultContextOnce sync.Once
	defaultContextVal  *Context
	defaultContextErr  error
)

// defaultContext lazily creates, on first use, the package-level
// Context that the top-level NewNode function builds nodes from.
func defaultContext() (*Context, error) {
	defaultContextOnce.Do(func() {
		defaultContextVal, defaultContextErr = NewContext(0)
	})
	return defaultContextVal, defaultContextErr
}

// NewNode creates a node on the lazily-created default Context (DDS
// domain 0). Use Context.NewNode directly for more than one domain id
// per process.
func NewNode(base Name, opts ...NodeOption) (*Node, error) {
	ctx, err := defaultContext()
	if err != nil {
		return nil, err
	}
	return ctx.NewNode(base, opts...)
}
