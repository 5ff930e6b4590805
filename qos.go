package ros2client

import "time"

// Reliability mirrors the DDS RELIABILITY QoS policy as ROS 2 exposes
// it: BestEffort trades delivery guarantees for lower latency,
// Reliable retries until every matched reader has the sample.
type Reliability uint8

const (
	BestEffort Reliability = iota
	Reliable
)

// Durability mirrors the DDS DURABILITY QoS policy.
type Durability uint8

const (
	// Volatile durability: readers only see samples published after
	// they matched the writer.
	Volatile Durability = iota
	// TransientLocal durability: a late-joining reader also receives
	// the writer's last History.Depth samples.
	TransientLocal
)

// History mirrors the DDS HISTORY QoS policy.
type History uint8

const (
	KeepLast History = iota
	KeepAll
)

// QoS bundles the DDS QoS policies this library cares about. Unlike
// full DDS QoS, it has no notion of ownership or partition: those are
// transport-layer concerns out of scope here.
type QoS struct {
	Reliability Reliability
	Durability  Durability
	History     History
	Depth       int           // sample count kept when History == KeepLast
	Deadline    time.Duration // 0 means no deadline
}

// DefaultQoS matches rmw's default: reliable, volatile, keep the last
// 10 samples.
func DefaultQoS() QoS {
	return QoS{Reliability: Reliable, Durability: Volatile, History: KeepLast, Depth: 10}
}

// SensorDataQoS is the conventional profile for high-rate sensor
// streams: best effort, volatile, small history, so a slow reader
// never backpressures the writer.
func SensorDataQoS() QoS {
	return QoS{Reliability: BestEffort, Durability: Volatile, History: KeepLast, Depth: 5}
}

// ServiceQoS is the profile used for service and action request/reply
// topics: reliable delivery is required for correlation to work.
func ServiceQoS() QoS {
	return QoS{Reliability: Reliable, Durability: Volatile, History: KeepLast, Depth: 10}
}
