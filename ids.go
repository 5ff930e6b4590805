package ros2client

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// GUID is a DDS-style global unique identifier for a participant,
// writer, or reader: a 12-byte prefix plus a 4-byte entity id.
type GUID [16]byte

// NewGUID generates a random GUID, used by the in-memory transport to
// stand in for entity identities a real RTPS stack would assign.
func NewGUID() GUID {
	var g GUID
	copy(g[:], uuid.New()[:])
	return g
}

func (g GUID) String() string {
	return fmt.Sprintf("%x", [16]byte(g))
}

// Gid is the ROS 2 graph-level identifier for a publisher or
// subscriber entity, carried in discovery info and feedback/status
// messages that need to name "who published this".
type Gid = GUID

// GoalId is the 16-byte UUID identifying one action goal, matching
// unique_identifier_msgs/UUID on the wire.
type GoalId [16]byte

// NewGoalId generates a random GoalId.
func NewGoalId() GoalId {
	var id GoalId
	copy(id[:], uuid.New()[:])
	return id
}

// ZeroGoalId is the reserved all-zero GoalId used by CancelGoalRequest
// to mean "not a specific goal" (see cancel policy in action_types.go).
var ZeroGoalId GoalId

func (g GoalId) String() string {
	return fmt.Sprintf("%x", [16]byte(g))
}

func (g GoalId) IsZero() bool {
	return g == ZeroGoalId
}

// RmwRequestId correlates a service response to the request that
// caused it: the requesting writer's GUID plus a per-writer sequence
// number, written on the wire as a 24-byte prefix ahead of the
// request/response payload (see internal/wire).
type RmwRequestId struct {
	WriterGUID GUID
	Sequence   int64
}

func (id RmwRequestId) String() string {
	return fmt.Sprintf("%s:%d", id.WriterGUID, id.Sequence)
}

// Equal reports whether two RmwRequestIds refer to the same request.
func (id RmwRequestId) Equal(other RmwRequestId) bool {
	return id.WriterGUID == other.WriterGUID && id.Sequence == other.Sequence
}

func encodeSequence(seq int64) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(seq))
	return b
}

func decodeSequence(b [8]byte) int64 {
	return int64(binary.BigEndian.Uint64(b[:]))
}
