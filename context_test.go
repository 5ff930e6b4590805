package ros2client

import "testing"

func TestContextNodeCount(t *testing.T) {
	ctx, err := NewContext(1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if got := ctx.NodeCount(); got != 0 {
		t.Fatalf("NodeCount() = %d, want 0", got)
	}

	node, err := ctx.NewNode(MustName("n1"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	if got := ctx.NodeCount(); got != 1 {
		t.Errorf("NodeCount() after NewNode = %d, want 1", got)
	}

	if err := node.Close(); err != nil {
		t.Fatalf("node.Close: %v", err)
	}
	if got := ctx.NodeCount(); got != 0 {
		t.Errorf("NodeCount() after Close = %d, want 0", got)
	}

	if err := ctx.Close(); err != nil {
		t.Errorf("ctx.Close: %v", err)
	}
}

func TestContextCloseWithOpenNodesFails(t *testing.T) {
	ctx, err := NewContext(2)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	node, err := ctx.NewNode(MustName("n1"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer node.Close()

	if err := ctx.Close(); err == nil {
		t.Error("Close() with an open node should return an error")
	}
}

func TestContextNewNodeAfterClose(t *testing.T) {
	ctx, err := NewContext(3)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := ctx.NewNode(MustName("n1")); err != ErrNodeClosed {
		t.Errorf("NewNode after Close = %v, want ErrNodeClosed", err)
	}
}

func TestDefaultNode(t *testing.T) {
	node, err := NewNode(MustName("default_node_test"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer node.Close()
	if node.Context().DomainID() != 0 {
		t.Errorf("default node domain = %d, want 0", node.Context().DomainID())
	}
}
