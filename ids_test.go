package ros2client

import "testing"

func TestNewGUIDUnique(t *testing.T) {
	a, b := NewGUID(), NewGUID()
	if a == b {
		t.Error("two calls to NewGUID produced the same value")
	}
}

func TestGoalIdIsZero(t *testing.T) {
	if !ZeroGoalId.IsZero() {
		t.Error("ZeroGoalId.IsZero() should be true")
	}
	if NewGoalId().IsZero() {
		t.Error("a freshly generated GoalId should not be zero")
	}
}

func TestRmwRequestIdEqual(t *testing.T) {
	id1 := RmwRequestId{WriterGUID: NewGUID(), Sequence: 1}
	id2 := id1
	id3 := RmwRequestId{WriterGUID: id1.WriterGUID, Sequence: 2}

	if !id1.Equal(id2) {
		t.Error("identical RmwRequestIds should be Equal")
	}
	if id1.Equal(id3) {
		t.Error("RmwRequestIds with different sequences should not be Equal")
	}
}

func TestSequenceRoundTrip(t *testing.T) {
	for _, seq := range []int64{0, 1, -1, 1 << 40} {
		b := encodeSequence(seq)
		if got := decodeSequence(b); got != seq {
			t.Errorf("decodeSequence(encodeSequence(%d)) = %d", seq, got)
		}
	}
}
