package ros2client

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by this package.
var (
	// ErrNodeClosed is returned when an operation is attempted on a
	// Node or one of its entities after the node has been closed.
	ErrNodeClosed = errors.New("ros2client: node closed")

	// ErrSpinnerAlreadyStarted is returned by Node.Spinner when called
	// more than once on the same node.
	ErrSpinnerAlreadyStarted = errors.New("ros2client: spinner already created for this node")

	// ErrNoSuchGoal is returned when an action-server operation names a
	// GoalId the server has no record of.
	ErrNoSuchGoal = errors.New("ros2client: no such goal")

	// ErrWrongGoalState is returned when a goal-handle operation is
	// attempted from a state that does not allow it, e.g. accepting a
	// goal that has already been accepted.
	ErrWrongGoalState = errors.New("ros2client: goal is not in the required state")

	// ErrRequestNotFound is returned by Client.ReceiveResponse when it
	// is given an RmwRequestId the client has no pending call for
	// (never sent by this client, already received, or abandoned
	// because an earlier wait for it timed out or was cancelled).
	ErrRequestNotFound = errors.New("ros2client: no pending request for this response")
)

// TransportError wraps an error returned by the underlying
// transport.Participant, preserving enough context to log and to
// unwrap to the original cause.
type TransportError struct {
	Op     string // e.g. "publish", "take", "create_writer"
	Topic  string
	Parent error
}

func (e *TransportError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("ros2client: transport %s on %q: %v", e.Op, e.Topic, e.Parent)
	}
	return fmt.Sprintf("ros2client: transport %s: %v", e.Op, e.Parent)
}

func (e *TransportError) Unwrap() error {
	return e.Parent
}

// GoalError is returned by AsyncActionServer operations that fail
// because of the goal-handle state machine rather than the transport.
type GoalError struct {
	GoalId GoalId
	Reason error // one of ErrNoSuchGoal, ErrWrongGoalState, or a TransportError
}

func (e *GoalError) Error() string {
	return fmt.Sprintf("ros2client: goal %s: %v", e.GoalId, e.Reason)
}

func (e *GoalError) Unwrap() error {
	return e.Reason
}

// Is implements errors.Is so callers can write
// errors.Is(err, ros2client.ErrNoSuchGoal) without unwrapping manually.
func (e *GoalError) Is(target error) bool {
	return errors.Is(e.Reason, target)
}
