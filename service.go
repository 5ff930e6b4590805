package ros2client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ros2go/ros2client/internal/transport"
	"github.com/ros2go/ros2client/internal/wire"
)

var errMissingCorrelationPrefix = errors.New("ros2client: request missing correlation prefix")

// pendingCall holds the single-slot result channel for one in-flight
// service call, keyed by the RmwRequestId the request was sent with.
type pendingCall[Resp Message] struct {
	result chan callResult[Resp]
}

type callResult[Resp Message] struct {
	resp Resp
	err  error
}

// Client calls a ROS 2 service of request type Req and response type
// Resp, matching responses to requests by RmwRequestId the same way
// MQTT v5 request/response matches by ResponseTopic/CorrelationData.
type Client[Req Message, Resp Message] struct {
	node       *Node
	name       Name
	reqWriter  transport.DataWriter
	respReader transport.DataReader
	reqCodec   Codec[Req]
	respCodec  Codec[Resp]

	seq int64 // atomic

	mu      sync.Mutex
	pending map[RmwRequestId]*pendingCall[Resp]

	stop chan struct{}
}

// CreateClient creates a Client for the named service on node.
func CreateClient[Req Message, Resp Message](node *Node, name Name, typeName TypeName, reqCodec Codec[Req], respCodec Codec[Resp], qos *QoS) (*Client[Req, Resp], error) {
	q := ServiceQoS()
	if qos != nil {
		q = *qos
	}
	reqWriter, err := node.ctx.participant.CreateWriter(name.DDSRequestTopicName(), typeName.String()+"_Request_", toTransportQoS(q))
	if err != nil {
		return nil, &TransportError{Op: "create_writer", Topic: name.DDSRequestTopicName(), Parent: err}
	}
	respReader, err := node.ctx.participant.CreateReader(name.DDSReplyTopicName(), typeName.String()+"_Response_", toTransportQoS(q))
	if err != nil {
		reqWriter.Dispose()
		return nil, &TransportError{Op: "create_reader", Topic: name.DDSReplyTopicName(), Parent: err}
	}
	node.addWriter(GUID(reqWriter.GUID()), name.DDSRequestTopicName())
	node.addReader(GUID(respReader.GUID()), name.DDSReplyTopicName())

	c := &Client[Req, Resp]{
		node:       node,
		name:       name,
		reqWriter:  reqWriter,
		respReader: respReader,
		reqCodec:   reqCodec,
		respCodec:  respCodec,
		pending:    make(map[RmwRequestId]*pendingCall[Resp]),
		stop:       make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client[Req, Resp]) readLoop() {
	logger := c.node.ctx.logger
	for {
		select {
		case <-c.stop:
			return
		case <-c.respReader.Samples():
			for {
				sample, ok, err := c.respReader.Take()
				if err != nil || !ok {
					break
				}
				writerGUID, seq, payload, ok := wire.DecodeCorrelation(sample.Payload)
				if !ok {
					logger.Warn("service client: malformed response, missing correlation prefix", "service", c.name.String())
					continue
				}
				id := RmwRequestId{WriterGUID: GUID(writerGUID), Sequence: seq}
				c.mu.Lock()
				call, found := c.pending[id]
				c.mu.Unlock()
				if !found {
					logger.Debug("service client: response for unknown request, discarding", "service", c.name.String(), "request_id", id.String())
					continue
				}
				resp, err := c.respCodec.Decode(payload)
				call.result <- callResult[Resp]{resp: resp, err: err}
			}
		}
	}
}

// SendRequest serializes and sends req, returning the RmwRequestId
// that will correlate the eventual response.
func (c *Client[Req, Resp]) SendRequest(req Req) (RmwRequestId, error) {
	seq := atomic.AddInt64(&c.seq, 1)
	id := RmwRequestId{WriterGUID: GUID(c.reqWriter.GUID()), Sequence: seq}
	payload, err := c.reqCodec.Encode(req)
	if err != nil {
		return RmwRequestId{}, err
	}
	framed := wire.EncodeCorrelation(id.WriterGUID, id.Sequence, payload)

	call := &pendingCall[Resp]{result: make(chan callResult[Resp], 1)}
	c.mu.Lock()
	c.pending[id] = call
	c.mu.Unlock()

	if err := c.reqWriter.Write(context.Background(), framed); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return RmwRequestId{}, &TransportError{Op: "publish", Topic: c.name.DDSRequestTopicName(), Parent: err}
	}
	c.node.ctx.metrics.inflightRequests.WithLabelValues(c.name.String()).Inc()
	return id, nil
}

// ReceiveResponse returns the response for id once it has arrived.
// The pending entry stays in place, reachable by readLoop, until this
// call actually reads the result, so a response that wins the race and
// arrives before ReceiveResponse is invoked is never dropped. If ctx
// is done first, the entry is removed and a later response for id is
// discarded.
func (c *Client[Req, Resp]) ReceiveResponse(ctx context.Context, id RmwRequestId) (Resp, error) {
	c.mu.Lock()
	call, found := c.pending[id]
	c.mu.Unlock()
	var zero Resp
	if !found {
		return zero, ErrRequestNotFound
	}
	select {
	case r := <-call.result:
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		c.node.ctx.metrics.inflightRequests.WithLabelValues(c.name.String()).Dec()
		return r.resp, r.err
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		c.node.ctx.metrics.inflightRequests.WithLabelValues(c.name.String()).Dec()
		return zero, ctx.Err()
	}
}

// Call sends req and blocks for the matching response or until ctx is
// done.
func (c *Client[Req, Resp]) Call(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	id, err := c.SendRequest(req)
	if err != nil {
		return zero, err
	}
	return c.ReceiveResponse(ctx, id)
}

// Close stops the client's read loop and disposes its entities.
func (c *Client[Req, Resp]) Close() error {
	close(c.stop)
	c.node.removeWriter(GUID(c.reqWriter.GUID()))
	c.node.removeReader(GUID(c.respReader.GUID()))
	_ = c.reqWriter.Dispose()
	return c.respReader.Dispose()
}

// Server answers requests of type Req with responses of type Resp.
// Requests are delivered either to a handler callback (see
// CreateServer) or pulled manually with ReceiveRequest, matching the
// Rust crate's lower-level Server API used to build the action
// protocol's goal/cancel/result services.
type Server[Req Message, Resp Message] struct {
	node       *Node
	name       Name
	reqReader  transport.DataReader
	respWriter transport.DataWriter
	reqCodec   Codec[Req]
	respCodec  Codec[Resp]

	stop chan struct{}
}

// CreateServer creates a Server for the named service on node. If
// handler is non-nil, it runs in its own goroutine and answers every
// request automatically; pass a nil handler to drive the
// ReceiveRequest/SendResponse pair manually (used by AsyncActionServer).
func CreateServer[Req Message, Resp Message](node *Node, name Name, typeName TypeName, reqCodec Codec[Req], respCodec Codec[Resp], qos *QoS, handler func(context.Context, Req) Resp) (*Server[Req, Resp], error) {
	q := ServiceQoS()
	if qos != nil {
		q = *qos
	}
	reqReader, err := node.ctx.participant.CreateReader(name.DDSRequestTopicName(), typeName.String()+"_Request_", toTransportQoS(q))
	if err != nil {
		return nil, &TransportError{Op: "create_reader", Topic: name.DDSRequestTopicName(), Parent: err}
	}
	respWriter, err := node.ctx.participant.CreateWriter(name.DDSReplyTopicName(), typeName.String()+"_Response_", toTransportQoS(q))
	if err != nil {
		reqReader.Dispose()
		return nil, &TransportError{Op: "create_writer", Topic: name.DDSReplyTopicName(), Parent: err}
	}
	node.addReader(GUID(reqReader.GUID()), name.DDSRequestTopicName())
	node.addWriter(GUID(respWriter.GUID()), name.DDSReplyTopicName())

	s := &Server[Req, Resp]{
		node: node, name: name,
		reqReader: reqReader, respWriter: respWriter,
		reqCodec: reqCodec, respCodec: respCodec,
		stop: make(chan struct{}),
	}
	if handler != nil {
		go s.serveLoop(handler)
	}
	return s, nil
}

func (s *Server[Req, Resp]) serveLoop(handler func(context.Context, Req) Resp) {
	logger := s.node.ctx.logger
	for {
		select {
		case <-s.stop:
			return
		case <-s.reqReader.Samples():
			for {
				id, req, ok, err := s.receive()
				if err != nil {
					logger.Warn("service server: request decode failed", "service", s.name.String(), "error", err)
					continue
				}
				if !ok {
					break
				}
				resp := handler(context.Background(), req)
				if err := s.SendResponse(id, resp); err != nil {
					logger.Warn("service server: send response failed", "service", s.name.String(), "error", err)
				}
			}
		}
	}
}

func (s *Server[Req, Resp]) receive() (RmwRequestId, Req, bool, error) {
	var zero Req
	sample, ok, err := s.reqReader.Take()
	if err != nil {
		return RmwRequestId{}, zero, false, &TransportError{Op: "take", Topic: s.name.DDSRequestTopicName(), Parent: err}
	}
	if !ok {
		return RmwRequestId{}, zero, false, nil
	}
	writerGUID, seq, payload, ok := wire.DecodeCorrelation(sample.Payload)
	if !ok {
		return RmwRequestId{}, zero, false, &TransportError{Op: "take", Topic: s.name.DDSRequestTopicName(), Parent: errMissingCorrelationPrefix}
	}
	req, err := s.reqCodec.Decode(payload)
	if err != nil {
		return RmwRequestId{}, zero, false, err
	}
	return RmwRequestId{WriterGUID: GUID(writerGUID), Sequence: seq}, req, true, nil
}

// ReceiveRequest returns the next queued request, if any, without
// blocking.
func (s *Server[Req, Resp]) ReceiveRequest() (RmwRequestId, Req, bool, error) {
	return s.receive()
}

// SendResponse serializes resp and sends it correlated to id.
func (s *Server[Req, Resp]) SendResponse(id RmwRequestId, resp Resp) error {
	payload, err := s.respCodec.Encode(resp)
	if err != nil {
		return err
	}
	framed := wire.EncodeCorrelation(id.WriterGUID, id.Sequence, payload)
	if err := s.respWriter.Write(context.Background(), framed); err != nil {
		return &TransportError{Op: "publish", Topic: s.name.DDSReplyTopicName(), Parent: err}
	}
	return nil
}

// Close stops the server's serve loop (if running) and disposes its
// entities.
func (s *Server[Req, Resp]) Close() error {
	close(s.stop)
	s.node.removeReader(GUID(s.reqReader.GUID()))
	s.node.removeWriter(GUID(s.respWriter.GUID()))
	_ = s.reqReader.Dispose()
	return s.respWriter.Dispose()
}
