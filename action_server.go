package ros2client

import (
	"context"
	"sync"
	"time"
)

// NewGoalHandle is a goal that the client has sent but the server has
// not yet accepted or rejected. The only valid next moves are
// AcceptGoal and RejectGoal.
type NewGoalHandle[G Message] struct {
	goalId GoalId
	reqId  RmwRequestId
	goal   G
}

func (h NewGoalHandle[G]) GoalId() GoalId { return h.goalId }
func (h NewGoalHandle[G]) Goal() G        { return h.goal }

// AcceptedGoalHandle is a goal the server has committed to run. The
// only valid next move is StartExecuting (or aborting it outright).
type AcceptedGoalHandle[G Message] struct {
	goalId GoalId
}

func (h AcceptedGoalHandle[G]) GoalId() GoalId { return h.goalId }

// ExecutingGoalHandle is a goal currently running. Valid next moves
// are PublishFeedback (any number of times), SucceedGoal, AbortGoal,
// or transitioning to a CancelingGoalHandle after a cancel request.
type ExecutingGoalHandle[G Message] struct {
	goalId GoalId
}

func (h ExecutingGoalHandle[G]) GoalId() GoalId { return h.goalId }

// CancelingGoalHandle is a goal that accepted a cancel request and is
// winding down. The only valid next move is FinishCanceled.
type CancelingGoalHandle[G Message] struct {
	goalId GoalId
}

func (h CancelingGoalHandle[G]) GoalId() GoalId { return h.goalId }

type goalRecord[G Message, R Message] struct {
	status         GoalStatusEnum
	goal           G
	result         R
	haveResult     bool
	pendingResults []RmwRequestId
	acceptedAt     int64 // nanoseconds since epoch, set by AcceptGoal; 0 until accepted
}

// AsyncActionServer implements the server side of the action
// protocol: it owns the three services, the feedback publisher, and
// the status publisher that CreateActionServer assembles, and tracks
// every goal's status through the type-state handle chain above.
type AsyncActionServer[G Message, R Message, F Message] struct {
	goalServer   *Server[SendGoalRequest[G], SendGoalResponse]
	cancelServer *Server[CancelGoalRequest, CancelGoalResponse]
	resultServer *Server[GetResultRequest, GetResultResponse[R]]
	feedbackPub  *Publisher[FeedbackMessage[F]]
	statusPub    *Publisher[GoalStatusArray]
	name         Name

	mu    sync.Mutex
	goals map[GoalId]*goalRecord[G, R]

	stop chan struct{}
}

// CreateActionServer creates the three services, the feedback
// publisher, and the status publisher that together make up an action
// server, matching the DDS topic layout documented in
// original_source/src/action.rs, and returns an AsyncActionServer
// driving the goal-handle state machine over them.
func CreateActionServer[G Message, R Message, F Message](
	node *Node, name Name,
	goalTypeName, resultTypeName, feedbackTypeName TypeName,
	goalCodec Codec[G], resultCodec Codec[R], fbCodec Codec[F],
) (*AsyncActionServer[G, R, F], error) {
	goalName := MustName(name.String() + "/_action/send_goal")
	cancelName := MustName(name.String() + "/_action/cancel_goal")
	resultName := MustName(name.String() + "/_action/get_result")
	feedbackTopic := MustName(name.String() + "/_action/feedback")
	statusTopic := MustName(name.String() + "/_action/status")

	goalServer, err := CreateServer[SendGoalRequest[G], SendGoalResponse](
		node, goalName, goalTypeName, sendGoalCodec[G]{goal: goalCodec}, JSONCodec[SendGoalResponse](), nil, nil)
	if err != nil {
		return nil, err
	}
	cancelServer, err := CreateServer[CancelGoalRequest, CancelGoalResponse](
		node, cancelName, MustTypeName("action_msgs/srv/CancelGoal"), JSONCodec[CancelGoalRequest](), JSONCodec[CancelGoalResponse](), nil, nil)
	if err != nil {
		return nil, err
	}
	resultServer, err := CreateServer[GetResultRequest, GetResultResponse[R]](
		node, resultName, resultTypeName, JSONCodec[GetResultRequest](), getResultResponseCodec[R]{result: resultCodec}, nil, nil)
	if err != nil {
		return nil, err
	}
	feedbackPub, err := CreatePublisher[FeedbackMessage[F]](
		node, feedbackTopic, feedbackTypeName, feedbackCodec[F]{feedback: fbCodec}, SensorDataQoS())
	if err != nil {
		return nil, err
	}
	statusPub, err := CreatePublisher[GoalStatusArray](
		node, statusTopic, MustTypeName("action_msgs/msg/GoalStatusArray"), JSONCodec[GoalStatusArray](), ServiceQoS())
	if err != nil {
		return nil, err
	}

	s := &AsyncActionServer[G, R, F]{
		goalServer: goalServer, cancelServer: cancelServer, resultServer: resultServer,
		feedbackPub: feedbackPub, statusPub: statusPub, name: name,
		goals: make(map[GoalId]*goalRecord[G, R]),
		stop:  make(chan struct{}),
	}
	go s.drainResultRequests()
	return s, nil
}

// Name returns the action's base name.
func (s *AsyncActionServer[G, R, F]) Name() string { return s.name.String() }

// drainResultRequests answers GetResult requests as soon as they
// arrive if the goal has already reached a terminal state, or queues
// them against the goal record to be answered when it does.
func (s *AsyncActionServer[G, R, F]) drainResultRequests() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.resultServer.reqReader.Samples():
			for {
				reqId, req, ok, err := s.resultServer.ReceiveRequest()
				if err != nil || !ok {
					break
				}
				s.mu.Lock()
				rec, exists := s.goals[req.GoalId]
				if exists && rec.haveResult {
					status, result := rec.status, rec.result
					s.mu.Unlock()
					_ = s.resultServer.SendResponse(reqId, GetResultResponse[R]{Status: status, Result: result})
					continue
				}
				if exists {
					rec.pendingResults = append(rec.pendingResults, reqId)
				}
				s.mu.Unlock()
			}
		}
	}
}

// ReceiveNewGoal blocks until a client sends a goal, returning a
// handle that must be either accepted or rejected before any other
// action-server operation touches this goal.
func (s *AsyncActionServer[G, R, F]) ReceiveNewGoal(ctx context.Context) (NewGoalHandle[G], error) {
	for {
		select {
		case <-ctx.Done():
			return NewGoalHandle[G]{}, ctx.Err()
		case <-s.goalServer.reqReader.Samples():
		}
		for {
			reqId, req, ok, err := s.goalServer.ReceiveRequest()
			if err != nil {
				return NewGoalHandle[G]{}, err
			}
			if !ok {
				break
			}
			s.mu.Lock()
			_, dup := s.goals[req.GoalId]
			if !dup {
				s.goals[req.GoalId] = &goalRecord[G, R]{status: GoalStatusUnknown, goal: req.Goal}
			}
			s.mu.Unlock()
			if dup {
				s.node().ctx.logger.Warn("action server: duplicate goal id, discarding", "action", s.name.String(), "goal_id", req.GoalId.String())
				continue
			}
			return NewGoalHandle[G]{goalId: req.GoalId, reqId: reqId, goal: req.Goal}, nil
		}
	}
}

func (s *AsyncActionServer[G, R, F]) node() *Node {
	return s.goalServer.node
}

// AcceptGoal accepts a newly received goal, notifying the client and
// publishing an updated status array.
func (s *AsyncActionServer[G, R, F]) AcceptGoal(handle NewGoalHandle[G]) (AcceptedGoalHandle[G], error) {
	s.mu.Lock()
	rec, ok := s.goals[handle.goalId]
	if !ok {
		s.mu.Unlock()
		return AcceptedGoalHandle[G]{}, &GoalError{GoalId: handle.goalId, Reason: ErrNoSuchGoal}
	}
	if rec.status != GoalStatusUnknown {
		s.mu.Unlock()
		return AcceptedGoalHandle[G]{}, &GoalError{GoalId: handle.goalId, Reason: ErrWrongGoalState}
	}
	rec.status = GoalStatusAccepted
	rec.acceptedAt = time.Now().UnixNano()
	s.mu.Unlock()

	s.publishStatuses()
	if err := s.goalServer.SendResponse(handle.reqId, SendGoalResponse{Accepted: true}); err != nil {
		return AcceptedGoalHandle[G]{}, &GoalError{GoalId: handle.goalId, Reason: err}
	}
	return AcceptedGoalHandle[G]{goalId: handle.goalId}, nil
}

// RejectGoal rejects a newly received goal. As in the Rust crate's
// implementation, rejection is not reflected in the status array and
// there is no "Rejected" GoalStatus value: the client learns of the
// rejection only through the SendGoalResponse.
func (s *AsyncActionServer[G, R, F]) RejectGoal(handle NewGoalHandle[G]) error {
	s.mu.Lock()
	rec, ok := s.goals[handle.goalId]
	if !ok {
		s.mu.Unlock()
		return &GoalError{GoalId: handle.goalId, Reason: ErrNoSuchGoal}
	}
	if rec.status != GoalStatusUnknown {
		s.mu.Unlock()
		return &GoalError{GoalId: handle.goalId, Reason: ErrWrongGoalState}
	}
	delete(s.goals, handle.goalId)
	s.mu.Unlock()

	if err := s.goalServer.SendResponse(handle.reqId, SendGoalResponse{Accepted: false}); err != nil {
		return &GoalError{GoalId: handle.goalId, Reason: err}
	}
	return nil
}

// StartExecuting transitions an accepted goal into execution.
func (s *AsyncActionServer[G, R, F]) StartExecuting(handle AcceptedGoalHandle[G]) (ExecutingGoalHandle[G], error) {
	s.mu.Lock()
	rec, ok := s.goals[handle.goalId]
	if !ok {
		s.mu.Unlock()
		return ExecutingGoalHandle[G]{}, &GoalError{GoalId: handle.goalId, Reason: ErrNoSuchGoal}
	}
	if rec.status != GoalStatusAccepted {
		s.mu.Unlock()
		return ExecutingGoalHandle[G]{}, &GoalError{GoalId: handle.goalId, Reason: ErrWrongGoalState}
	}
	rec.status = GoalStatusExecuting
	s.mu.Unlock()
	s.publishStatuses()
	return ExecutingGoalHandle[G]{goalId: handle.goalId}, nil
}

// PublishFeedback reports progress on an executing goal.
func (s *AsyncActionServer[G, R, F]) PublishFeedback(handle ExecutingGoalHandle[G], feedback F) error {
	token := s.feedbackPub.Publish(FeedbackMessage[F]{GoalId: handle.goalId, Feedback: feedback})
	return token.Wait(context.Background())
}

// SucceedGoal reports that a goal finished successfully, delivering
// result to anyone already waiting on GetResult and answering future
// requests immediately.
func (s *AsyncActionServer[G, R, F]) SucceedGoal(handle ExecutingGoalHandle[G], result R) error {
	return s.finish(handle.goalId, GoalStatusSucceeded, result)
}

// AbortExecutingGoal reports that the server could not continue
// running a goal it had started executing.
func (s *AsyncActionServer[G, R, F]) AbortExecutingGoal(handle ExecutingGoalHandle[G], result R) error {
	return s.finish(handle.goalId, GoalStatusAborted, result)
}

// AbortAcceptedGoal reports that the server could not start a goal it
// had already accepted.
func (s *AsyncActionServer[G, R, F]) AbortAcceptedGoal(handle AcceptedGoalHandle[G], result R) error {
	return s.finish(handle.goalId, GoalStatusAborted, result)
}

// FinishCanceled reports that a goal's cancellation completed.
func (s *AsyncActionServer[G, R, F]) FinishCanceled(handle CancelingGoalHandle[G], result R) error {
	return s.finish(handle.goalId, GoalStatusCanceled, result)
}

func (s *AsyncActionServer[G, R, F]) finish(goalId GoalId, status GoalStatusEnum, result R) error {
	s.mu.Lock()
	rec, ok := s.goals[goalId]
	if !ok {
		s.mu.Unlock()
		return &GoalError{GoalId: goalId, Reason: ErrNoSuchGoal}
	}
	var allowed bool
	switch status {
	case GoalStatusSucceeded:
		allowed = rec.status == GoalStatusExecuting
	case GoalStatusCanceled:
		allowed = rec.status == GoalStatusCanceling
	case GoalStatusAborted:
		allowed = rec.status == GoalStatusAccepted || rec.status == GoalStatusExecuting
	}
	if !allowed {
		s.mu.Unlock()
		return &GoalError{GoalId: goalId, Reason: ErrWrongGoalState}
	}
	rec.status = status
	rec.result = result
	rec.haveResult = true
	waiters := rec.pendingResults
	rec.pendingResults = nil
	s.mu.Unlock()

	s.publishStatuses()
	for _, reqId := range waiters {
		if err := s.resultServer.SendResponse(reqId, GetResultResponse[R]{Status: status, Result: result}); err != nil {
			return &GoalError{GoalId: goalId, Reason: err}
		}
	}
	return nil
}

// CancelRequest is one raw cancel request together with the goals it
// currently resolves to under the action_msgs/srv/CancelGoal policy.
type CancelRequest struct {
	RequestId RmwRequestId
	Targets   []GoalId
}

// ReceiveCancelRequest blocks until a client asks to cancel one or
// more goals, resolving the request's GoalId/Stamp policy against
// currently-tracked goals. Call RespondToCancelRequests with the
// subset of Targets that the server agrees to cancel.
func (s *AsyncActionServer[G, R, F]) ReceiveCancelRequest(ctx context.Context) (CancelRequest, error) {
	for {
		select {
		case <-ctx.Done():
			return CancelRequest{}, ctx.Err()
		case <-s.cancelServer.reqReader.Samples():
		}
		for {
			reqId, req, ok, err := s.cancelServer.ReceiveRequest()
			if err != nil {
				return CancelRequest{}, err
			}
			if !ok {
				break
			}
			return CancelRequest{RequestId: reqId, Targets: s.resolveCancelTargets(req.GoalInfo)}, nil
		}
	}
}

// resolveCancelTargets implements the action_msgs/srv/CancelGoal
// policy documented on CancelGoalRequest: a zero GoalId with a zero
// Stamp cancels every goal; a zero GoalId with a non-zero Stamp
// cancels every goal accepted at or before Stamp; a non-zero GoalId
// with a zero Stamp cancels exactly that goal; a non-zero GoalId with
// a non-zero Stamp cancels that goal plus every goal accepted at or
// before Stamp. The four cases are expressed as a union below rather
// than mutually exclusive branches, since the last case requires both
// the exact-id and the by-stamp conditions to contribute targets.
func (s *AsyncActionServer[G, R, F]) resolveCancelTargets(info GoalInfo) []GoalId {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancelAll := info.GoalId.IsZero() && info.Stamp == 0
	var targets []GoalId
	for id, rec := range s.goals {
		if rec.status.IsTerminal() {
			continue
		}
		matchesID := !info.GoalId.IsZero() && info.GoalId == id
		matchesStamp := info.Stamp != 0 && rec.acceptedAt != 0 && rec.acceptedAt <= info.Stamp
		if cancelAll || matchesID || matchesStamp {
			targets = append(targets, id)
		}
	}
	return targets
}

// RespondToCancelRequests transitions each goal in accepted to
// Canceling, publishes the updated status array, and answers the
// original cancel request.
func (s *AsyncActionServer[G, R, F]) RespondToCancelRequests(req CancelRequest, accepted []GoalId) error {
	s.mu.Lock()
	var canceling []GoalInfo
	for _, id := range accepted {
		if rec, ok := s.goals[id]; ok && !rec.status.IsTerminal() {
			rec.status = GoalStatusCanceling
			canceling = append(canceling, GoalInfo{GoalId: id})
		}
	}
	s.mu.Unlock()

	s.publishStatuses()
	code := CancelNone
	if len(canceling) == 0 {
		code = CancelRejected
	}
	return s.cancelServer.SendResponse(req.RequestId, CancelGoalResponse{ReturnCode: code, GoalsCanceling: canceling})
}

// CancelingHandle returns a CancelingGoalHandle for a goal that
// RespondToCancelRequests has already transitioned into Canceling,
// letting the caller finish it with FinishCanceled.
func (s *AsyncActionServer[G, R, F]) CancelingHandle(goalId GoalId) (CancelingGoalHandle[G], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.goals[goalId]
	if !ok {
		return CancelingGoalHandle[G]{}, &GoalError{GoalId: goalId, Reason: ErrNoSuchGoal}
	}
	if rec.status != GoalStatusCanceling {
		return CancelingGoalHandle[G]{}, &GoalError{GoalId: goalId, Reason: ErrWrongGoalState}
	}
	return CancelingGoalHandle[G]{goalId: goalId}, nil
}

// Handle runs a thin loop over the primitive ReceiveNewGoal/
// ReceiveCancelRequest poll operations, in the style of
// original_source's async_talker example composition: Handle accepts
// every new goal itself and then passes the AcceptedGoalHandle to
// goalCallback, which is responsible for driving it to a terminal
// state (it runs in its own goroutine so a long-running goal never
// blocks new-goal or cancel processing); cancelCallback is
// invoked for every goal this server agrees to cancel, once it has
// been responded to and transitioned to Canceling. Handle blocks
// until ctx is done.
func (s *AsyncActionServer[G, R, F]) Handle(
	ctx context.Context,
	goalCallback func(AcceptedGoalHandle[G]),
	cancelCallback func(CancelingGoalHandle[G]),
) error {
	errCh := make(chan error, 2)

	go func() {
		for {
			newGoal, err := s.ReceiveNewGoal(ctx)
			if err != nil {
				errCh <- err
				return
			}
			accepted, err := s.AcceptGoal(newGoal)
			if err != nil {
				continue
			}
			go goalCallback(accepted)
		}
	}()

	go func() {
		for {
			req, err := s.ReceiveCancelRequest(ctx)
			if err != nil {
				errCh <- err
				return
			}
			if err := s.RespondToCancelRequests(req, req.Targets); err != nil {
				continue
			}
			for _, id := range req.Targets {
				handle, err := s.CancelingHandle(id)
				if err != nil {
					continue
				}
				go cancelCallback(handle)
			}
		}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// publishStatuses sends the status of every tracked goal and updates
// the active-goals gauge. All status publishing happens automatically
// from goal-status changes; there is no separate method to publish
// statuses manually.
func (s *AsyncActionServer[G, R, F]) publishStatuses() {
	s.mu.Lock()
	list := make([]GoalStatus, 0, len(s.goals))
	counts := make(map[GoalStatusEnum]float64)
	for id, rec := range s.goals {
		list = append(list, GoalStatus{GoalInfo: GoalInfo{GoalId: id, Stamp: rec.acceptedAt}, Status: rec.status})
		counts[rec.status]++
	}
	s.mu.Unlock()

	metrics := s.node().ctx.metrics
	actionName := s.name.String()
	for _, status := range []GoalStatusEnum{
		GoalStatusAccepted, GoalStatusExecuting, GoalStatusCanceling,
		GoalStatusSucceeded, GoalStatusCanceled, GoalStatusAborted,
	} {
		metrics.activeGoals.WithLabelValues(actionName, status.String()).Set(counts[status])
	}

	token := s.statusPub.Publish(GoalStatusArray{StatusList: list})
	_ = token.Wait(context.Background())
}

// Close disposes all of the action server's underlying services and
// publishers.
func (s *AsyncActionServer[G, R, F]) Close() error {
	close(s.stop)
	_ = s.goalServer.Close()
	_ = s.cancelServer.Close()
	_ = s.resultServer.Close()
	_ = s.feedbackPub.Close()
	return s.statusPub.Close()
}
