package ros2client

import "testing"

func TestNewName(t *testing.T) {
	t.Run("valid names", func(t *testing.T) {
		for _, s := range []string{"chatter", "/turtle1/cmd_vel", "~/private", "a{sub}b", "/a/b_c"} {
			if _, err := NewName(s); err != nil {
				t.Errorf("NewName(%q) returned unexpected error: %v", s, err)
			}
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		cases := []string{
			"",
			"trailing/",
			"/1leadingdigit",
			"unbalanced{brace",
			"bad char!",
			"a//b",
			"a__b",
			"~foo",
		}
		for _, s := range cases {
			if _, err := NewName(s); err == nil {
				t.Errorf("NewName(%q) expected error, got nil", s)
			}
		}
	})

	t.Run("tilde alone is allowed", func(t *testing.T) {
		if _, err := NewName("~"); err != nil {
			t.Errorf("NewName(\"~\") returned unexpected error: %v", err)
		}
	})
}

func TestMustName(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustName on an invalid name should panic")
		}
	}()
	MustName("")
}

func TestNameIsPrivate(t *testing.T) {
	if !MustName("~/foo").IsPrivate() {
		t.Error("expected ~/foo to be private")
	}
	if !MustName("~").IsPrivate() {
		t.Error("expected ~ to be private")
	}
	if MustName("foo").IsPrivate() {
		t.Error("expected foo to not be private")
	}
}

func TestNameDDSTopicNames(t *testing.T) {
	n := MustName("/turtle1/rotate_absolute")
	if got, want := n.DDSTopicName(), "rt/turtle1/rotate_absolute"; got != want {
		t.Errorf("DDSTopicName() = %q, want %q", got, want)
	}
	if got, want := n.DDSRequestTopicName(), "rq/turtle1/rotate_absoluteRequest"; got != want {
		t.Errorf("DDSRequestTopicName() = %q, want %q", got, want)
	}
	if got, want := n.DDSReplyTopicName(), "rr/turtle1/rotate_absoluteReply"; got != want {
		t.Errorf("DDSReplyTopicName() = %q, want %q", got, want)
	}
}

func TestNewTypeName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		if _, err := NewTypeName("std_msgs/msg/String"); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("wrong segment count", func(t *testing.T) {
		if _, err := NewTypeName("std_msgs/String"); err == nil {
			t.Error("expected error for missing kind segment")
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := NewTypeName("std_msgs/foo/String"); err == nil {
			t.Error("expected error for unknown kind")
		}
	})

	t.Run("empty segment", func(t *testing.T) {
		if _, err := NewTypeName("/msg/String"); err == nil {
			t.Error("expected error for empty package segment")
		}
	})
}
