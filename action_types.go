package ros2client

// The wire types below emulate what a ROS 2 code generator would
// produce for an action's three constituent services, its feedback
// topic, and its status topic (see original_source/src/action.rs,
// which documents the exact DDS topic names these map to under each
// action's "_action" namespace).

// SendGoalRequest is the request half of an action's goal service.
type SendGoalRequest[G Message] struct {
	GoalId GoalId
	Goal   G
}

// SendGoalResponse is the response half of an action's goal service.
type SendGoalResponse struct {
	Accepted bool
	Stamp    int64
}

// CancelGoalRequest requests cancellation of one or more goals. The
// cancel policy, from action_msgs/srv/CancelGoal: a zero GoalId and
// zero Stamp cancels every goal; a zero GoalId with a non-zero Stamp
// cancels every goal accepted at or before Stamp; a non-zero GoalId
// with a zero Stamp cancels exactly that goal; both non-zero cancels
// that goal and every goal accepted at or before Stamp.
type CancelGoalRequest struct {
	GoalInfo GoalInfo
}

// CancelGoalReturnCode mirrors action_msgs/srv/CancelGoal's Response
// return_code field.
type CancelGoalReturnCode uint8

const (
	CancelNone CancelGoalReturnCode = iota
	CancelRejected
	CancelUnknownGoalID
	CancelAlreadyTerminated
)

// CancelGoalResponse is the response half of an action's cancel
// service.
type CancelGoalResponse struct {
	ReturnCode     CancelGoalReturnCode
	GoalsCanceling []GoalInfo
}

// GetResultRequest is the request half of an action's result service.
type GetResultRequest struct {
	GoalId GoalId
}

// GetResultResponse is the response half of an action's result
// service.
type GetResultResponse[R Message] struct {
	Status GoalStatusEnum
	Result R
}

// FeedbackMessage is published on an action's feedback topic while a
// goal executes.
type FeedbackMessage[F Message] struct {
	GoalId   GoalId
	Feedback F
}

// sendGoalCodec composes a caller-supplied Codec[G] into a
// Codec[SendGoalRequest[G]] by framing the GoalId ahead of the goal's
// own encoding, so the goal codec never needs to know about GoalId.
type sendGoalCodec[G Message] struct{ goal Codec[G] }

func (c sendGoalCodec[G]) Encode(v SendGoalRequest[G]) ([]byte, error) {
	goalBytes, err := c.goal.Encode(v.Goal)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 16+len(goalBytes))
	copy(out[:16], v.GoalId[:])
	copy(out[16:], goalBytes)
	return out, nil
}

func (c sendGoalCodec[G]) Decode(b []byte) (SendGoalRequest[G], error) {
	var v SendGoalRequest[G]
	if len(b) < 16 {
		return v, errMissingCorrelationPrefix
	}
	copy(v.GoalId[:], b[:16])
	goal, err := c.goal.Decode(b[16:])
	v.Goal = goal
	return v, err
}

// getResultResponseCodec composes a caller-supplied Codec[R] similarly,
// framing a one-byte status ahead of the result's own encoding.
type getResultResponseCodec[R Message] struct{ result Codec[R] }

func (c getResultResponseCodec[R]) Encode(v GetResultResponse[R]) ([]byte, error) {
	resultBytes, err := c.result.Encode(v.Result)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 1+len(resultBytes))
	out[0] = byte(v.Status)
	copy(out[1:], resultBytes)
	return out, nil
}

func (c getResultResponseCodec[R]) Decode(b []byte) (GetResultResponse[R], error) {
	var v GetResultResponse[R]
	if len(b) < 1 {
		return v, errMissingCorrelationPrefix
	}
	v.Status = GoalStatusEnum(b[0])
	result, err := c.result.Decode(b[1:])
	v.Result = result
	return v, err
}

// feedbackCodec composes a caller-supplied Codec[F], framing the
// GoalId ahead of the feedback's own encoding.
type feedbackCodec[F Message] struct{ feedback Codec[F] }

func (c feedbackCodec[F]) Encode(v FeedbackMessage[F]) ([]byte, error) {
	fbBytes, err := c.feedback.Encode(v.Feedback)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 16+len(fbBytes))
	copy(out[:16], v.GoalId[:])
	copy(out[16:], fbBytes)
	return out, nil
}

func (c feedbackCodec[F]) Decode(b []byte) (FeedbackMessage[F], error) {
	var v FeedbackMessage[F]
	if len(b) < 16 {
		return v, errMissingCorrelationPrefix
	}
	copy(v.GoalId[:], b[:16])
	fb, err := c.feedback.Decode(b[16:])
	v.Feedback = fb
	return v, err
}
