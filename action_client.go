package ros2client

import "context"

// ActionClient sends goals to, and follows the progress of, a ROS 2
// action server identified by name. G, R, and F are the action's
// goal, result, and feedback message types respectively.
type ActionClient[G Message, R Message, F Message] struct {
	goalClient   *Client[SendGoalRequest[G], SendGoalResponse]
	cancelClient *Client[CancelGoalRequest, CancelGoalResponse]
	resultClient *Client[GetResultRequest, GetResultResponse[R]]
	feedbackSub  *Subscription[FeedbackMessage[F]]
	statusSub    *Subscription[GoalStatusArray]
	name         Name
}

// CreateActionClient creates the three services, the feedback
// subscription, and the status subscription that together make up an
// action client, matching the DDS topic layout documented in
// original_source/src/action.rs.
func CreateActionClient[G Message, R Message, F Message](
	node *Node, name Name,
	goalTypeName, resultTypeName, feedbackTypeName TypeName,
	goalCodec Codec[G], resultCodec Codec[R], fbCodec Codec[F],
) (*ActionClient[G, R, F], error) {
	goalName := MustName(name.String() + "/_action/send_goal")
	cancelName := MustName(name.String() + "/_action/cancel_goal")
	resultName := MustName(name.String() + "/_action/get_result")
	feedbackTopic := MustName(name.String() + "/_action/feedback")
	statusTopic := MustName(name.String() + "/_action/status")

	goalClient, err := CreateClient[SendGoalRequest[G], SendGoalResponse](
		node, goalName, goalTypeName, sendGoalCodec[G]{goal: goalCodec}, JSONCodec[SendGoalResponse](), nil)
	if err != nil {
		return nil, err
	}
	cancelClient, err := CreateClient[CancelGoalRequest, CancelGoalResponse](
		node, cancelName, MustTypeName("action_msgs/srv/CancelGoal"), JSONCodec[CancelGoalRequest](), JSONCodec[CancelGoalResponse](), nil)
	if err != nil {
		return nil, err
	}
	resultClient, err := CreateClient[GetResultRequest, GetResultResponse[R]](
		node, resultName, resultTypeName, JSONCodec[GetResultRequest](), getResultResponseCodec[R]{result: resultCodec}, nil)
	if err != nil {
		return nil, err
	}
	feedbackSub, err := CreateSubscription[FeedbackMessage[F]](
		node, feedbackTopic, feedbackTypeName, feedbackCodec[F]{feedback: fbCodec}, SensorDataQoS(), nil)
	if err != nil {
		return nil, err
	}
	statusSub, err := CreateSubscription[GoalStatusArray](
		node, statusTopic, MustTypeName("action_msgs/msg/GoalStatusArray"), JSONCodec[GoalStatusArray](), ServiceQoS(), nil)
	if err != nil {
		return nil, err
	}

	return &ActionClient[G, R, F]{
		goalClient: goalClient, cancelClient: cancelClient, resultClient: resultClient,
		feedbackSub: feedbackSub, statusSub: statusSub, name: name,
	}, nil
}

// Name returns the action's base name.
func (a *ActionClient[G, R, F]) Name() string { return a.name.String() }

// SendGoal sends goal and blocks for the server's accept/reject
// response.
func (a *ActionClient[G, R, F]) SendGoal(ctx context.Context, goal G) (GoalId, SendGoalResponse, error) {
	goalId := NewGoalId()
	resp, err := a.goalClient.Call(ctx, SendGoalRequest[G]{GoalId: goalId, Goal: goal})
	return goalId, resp, err
}

// CancelGoal requests cancellation of one goal, regardless of when it
// was accepted.
func (a *ActionClient[G, R, F]) CancelGoal(ctx context.Context, goalId GoalId) (CancelGoalResponse, error) {
	return a.cancelGoalRaw(ctx, goalId, 0)
}

// CancelAllGoalsBefore requests cancellation of every goal accepted at
// or before stamp (nanoseconds since epoch).
func (a *ActionClient[G, R, F]) CancelAllGoalsBefore(ctx context.Context, stamp int64) (CancelGoalResponse, error) {
	return a.cancelGoalRaw(ctx, ZeroGoalId, stamp)
}

// CancelAllGoals requests cancellation of every goal this server
// tracks.
func (a *ActionClient[G, R, F]) CancelAllGoals(ctx context.Context) (CancelGoalResponse, error) {
	return a.cancelGoalRaw(ctx, ZeroGoalId, 0)
}

func (a *ActionClient[G, R, F]) cancelGoalRaw(ctx context.Context, goalId GoalId, stamp int64) (CancelGoalResponse, error) {
	return a.cancelClient.Call(ctx, CancelGoalRequest{GoalInfo: GoalInfo{GoalId: goalId, Stamp: stamp}})
}

// RequestResult asks the server for a goal's outcome. It should be
// called as soon as the goal is accepted; it returns only once the
// server reports the goal has reached a terminal status.
func (a *ActionClient[G, R, F]) RequestResult(ctx context.Context, goalId GoalId) (GoalStatusEnum, R, error) {
	resp, err := a.resultClient.Call(ctx, GetResultRequest{GoalId: goalId})
	return resp.Status, resp.Result, err
}

// Feedback returns the next feedback sample for goalId, blocking until
// one arrives or ctx is done. Feedback for other goals is discarded.
func (a *ActionClient[G, R, F]) Feedback(ctx context.Context, goalId GoalId) (F, error) {
	stream := a.feedbackSub.Stream(ctx)
	for {
		msg, _, err := stream.Next(ctx)
		if err != nil {
			var zero F
			return zero, err
		}
		if msg.GoalId == goalId {
			return msg.Feedback, nil
		}
	}
}

// Status returns the next status array received on the status topic,
// blocking until one is available or ctx is done. Arrays are returned
// in the order they were received, so the one returned is not
// necessarily the latest. It does not filter by goal id, matching the
// status topic's broadcast semantics.
func (a *ActionClient[G, R, F]) Status(ctx context.Context) (GoalStatusArray, error) {
	stream := a.statusSub.Stream(ctx)
	msg, _, err := stream.Next(ctx)
	return msg, err
}

// Close disposes all of the action client's underlying services and
// subscriptions.
func (a *ActionClient[G, R, F]) Close() error {
	_ = a.goalClient.Close()
	_ = a.cancelClient.Close()
	_ = a.resultClient.Close()
	_ = a.feedbackSub.Close()
	return a.statusSub.Close()
}
