package ros2client

import (
	"context"
	"testing"
	"time"
)

type chatterMsg struct {
	Data string
}

func newTestNode(t *testing.T, name string) *Node {
	t.Helper()
	ctx, err := NewContext(0)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	node, err := ctx.NewNode(MustName(name))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	t.Cleanup(func() {
		_ = node.Close()
	})
	return node
}

// startSpinner runs node's Spinner until the test ends. The match maps
// behind WaitForSubscription/WaitForPublisher and the Get*Count methods
// are updated only by the Spinner; call this after the entities are
// created so their match events are applied to registered entries.
func startSpinner(t *testing.T, node *Node) {
	t.Helper()
	spinner, err := node.Spinner()
	if err != nil {
		t.Fatalf("Spinner: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go spinner.Spin(ctx)
}

func TestPublishSubscribeCallback(t *testing.T) {
	node := newTestNode(t, "talker")
	topic := MustName("chatter")
	typeName := MustTypeName("std_msgs/msg/String")

	received := make(chan chatterMsg, 1)
	sub, err := CreateSubscription[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS(),
		func(msg chatterMsg, _ SampleInfo) { received <- msg })
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	defer sub.Close()

	pub, err := CreatePublisher[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS())
	if err != nil {
		t.Fatalf("CreatePublisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	startSpinner(t, node)
	if err := pub.WaitForSubscription(ctx); err != nil {
		t.Fatalf("WaitForSubscription: %v", err)
	}

	token := pub.Publish(chatterMsg{Data: "hello"})
	if err := token.Wait(ctx); err != nil {
		t.Fatalf("Publish token.Wait: %v", err)
	}

	select {
	case msg := <-received:
		if msg.Data != "hello" {
			t.Errorf("received Data = %q, want %q", msg.Data, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscription callback")
	}
}

func TestSubscriptionStream(t *testing.T) {
	node := newTestNode(t, "talker2")
	topic := MustName("chatter2")
	typeName := MustTypeName("std_msgs/msg/String")

	sub, err := CreateSubscription[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS(), nil)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	defer sub.Close()

	pub, err := CreatePublisher[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS())
	if err != nil {
		t.Fatalf("CreatePublisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	startSpinner(t, node)
	if err := sub.WaitForPublisher(ctx); err != nil {
		t.Fatalf("WaitForPublisher: %v", err)
	}

	if err := pub.Publish(chatterMsg{Data: "world"}).Wait(ctx); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	stream := sub.Stream(ctx)
	msg, _, err := stream.Next(ctx)
	if err != nil {
		t.Fatalf("Stream.Next: %v", err)
	}
	if msg.Data != "world" {
		t.Errorf("Data = %q, want %q", msg.Data, "world")
	}
}

func TestPublisherSubscriptionCounts(t *testing.T) {
	node := newTestNode(t, "counts")
	topic := MustName("counted")
	typeName := MustTypeName("std_msgs/msg/String")

	if got := node.GetSubscriptionCount(topic); got != 0 {
		t.Errorf("GetSubscriptionCount before any reader = %d, want 0", got)
	}

	sub, err := CreateSubscription[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS(), nil)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	defer sub.Close()
	pub, err := CreatePublisher[chatterMsg](node, topic, typeName, JSONCodec[chatterMsg](), DefaultQoS())
	if err != nil {
		t.Fatalf("CreatePublisher: %v", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	startSpinner(t, node)
	if err := pub.WaitForSubscription(ctx); err != nil {
		t.Fatalf("WaitForSubscription: %v", err)
	}
	if got := node.GetSubscriptionCount(topic); got != 1 {
		t.Errorf("GetSubscriptionCount = %d, want 1", got)
	}
	if got := node.GetPublisherCount(topic); got != 1 {
		t.Errorf("GetPublisherCount = %d, want 1", got)
	}
}
