package ros2client

import "testing"

func TestNodeFullyQualifiedName(t *testing.T) {
	ctx, err := NewContext(4)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	node, err := ctx.NewNode(MustName("turtlesim"), WithNamespace("/turtle1"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer node.Close()

	if got, want := node.FullyQualifiedName(), "/turtle1/turtlesim"; got != want {
		t.Errorf("FullyQualifiedName() = %q, want %q", got, want)
	}
	if got, want := node.Namespace(), "/turtle1"; got != want {
		t.Errorf("Namespace() = %q, want %q", got, want)
	}
	if got, want := node.Name(), "turtlesim"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}
}

func TestNodeDefaultNamespace(t *testing.T) {
	ctx, err := NewContext(5)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	node, err := ctx.NewNode(MustName("lone"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer node.Close()

	if got, want := node.FullyQualifiedName(), "/lone"; got != want {
		t.Errorf("FullyQualifiedName() = %q, want %q", got, want)
	}
}

func TestWithStatusBufferGuardsNonPositive(t *testing.T) {
	ctx, err := NewContext(6)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	node, err := ctx.NewNode(MustName("buffered"), WithStatusBuffer(0))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer node.Close()

	if got, want := node.opts.StatusBuffer, 8; got != want {
		t.Errorf("StatusBuffer after WithStatusBuffer(0) = %d, want %d (default preserved)", got, want)
	}
}

func TestNodeGUIDsAreUnique(t *testing.T) {
	ctx, err := NewContext(7)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()

	a, err := ctx.NewNode(MustName("a"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer a.Close()
	b, err := ctx.NewNode(MustName("b"))
	if err != nil {
		t.Fatalf("NewNode: %v", err)
	}
	defer b.Close()

	if a.GUID() == b.GUID() {
		t.Error("two nodes should not share a GUID")
	}
}
