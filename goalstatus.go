package ros2client

// GoalStatusEnum mirrors action_msgs/msg/GoalStatus's status field.
// There is deliberately no "Rejected" value: a rejected goal is
// reported only in the SendGoalResponse, never added to the status
// array (see AsyncActionServer.RejectGoal).
type GoalStatusEnum uint8

const (
	GoalStatusUnknown GoalStatusEnum = iota
	GoalStatusAccepted
	GoalStatusExecuting
	GoalStatusCanceling
	GoalStatusSucceeded
	GoalStatusCanceled
	GoalStatusAborted
)

func (s GoalStatusEnum) String() string {
	switch s {
	case GoalStatusUnknown:
		return "UNKNOWN"
	case GoalStatusAccepted:
		return "ACCEPTED"
	case GoalStatusExecuting:
		return "EXECUTING"
	case GoalStatusCanceling:
		return "CANCELING"
	case GoalStatusSucceeded:
		return "SUCCEEDED"
	case GoalStatusCanceled:
		return "CANCELED"
	case GoalStatusAborted:
		return "ABORTED"
	default:
		return "INVALID"
	}
}

// IsTerminal reports whether s is a state a goal never leaves.
func (s GoalStatusEnum) IsTerminal() bool {
	switch s {
	case GoalStatusSucceeded, GoalStatusCanceled, GoalStatusAborted:
		return true
	default:
		return false
	}
}

// GoalInfo identifies a goal and when it was accepted, used both in
// CancelGoalRequest and in each GoalStatusArray entry.
type GoalInfo struct {
	GoalId GoalId
	Stamp  int64 // nanoseconds since epoch
}

// GoalStatus pairs a GoalInfo with its current status, one entry of a
// GoalStatusArray.
type GoalStatus struct {
	GoalInfo GoalInfo
	Status   GoalStatusEnum
}

// GoalStatusArray is published on the action's status topic and
// reports every goal the server currently tracks.
type GoalStatusArray struct {
	StatusList []GoalStatus
}
