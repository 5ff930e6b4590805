package ros2client

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Name is a validated ROS 2 topic or service base name, e.g. "chatter"
// or "/turtle1/cmd_vel". It does not carry the rt/, rq/, rr/ DDS-level
// prefix or the Request/Reply suffix; those are added when rendering
// the DDS topic name (see DDSTopicName, DDSRequestTopicName and
// DDSReplyTopicName).
type Name struct {
	value string
}

// TypeName is a validated ROS 2 message/service/action type name, e.g.
// "std_msgs/msg/String" or "example_interfaces/srv/AddTwoInts".
type TypeName struct {
	value string
}

// Rules below follow the ROS 2 naming conventions documented on
// create_topic in the Rust ros2-client crate: names must be non-empty,
// ASCII alphanumeric plus '_' and '/', must not start with a digit
// after the last '/', must not end in '/', must not repeat '/' or '_',
// any '{' must be matched by a later '}' (substitution tokens), and a
// '~' must be separated from the rest of the name by a '/' (i.e.
// "~/foo", not "~foo") unless the whole name is just "~".

// NewName validates and constructs a Name.
func NewName(s string) (Name, error) {
	if err := validateName(s); err != nil {
		return Name{}, err
	}
	return Name{value: s}, nil
}

// MustName is NewName but panics on an invalid name. Intended for
// names known at compile time (string literals), not for names built
// from external input.
func MustName(s string) Name {
	n, err := NewName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the name as given to NewName.
func (n Name) String() string {
	return n.value
}

// IsPrivate reports whether the name starts with "~", ROS 2's
// node-private namespace marker.
func (n Name) IsPrivate() bool {
	return strings.HasPrefix(n.value, "~")
}

func validateName(s string) error {
	if s == "" {
		return fmt.Errorf("ros2client: name cannot be empty")
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("ros2client: name %q is not valid UTF-8", s)
	}
	if strings.Contains(s, "\x00") {
		return fmt.Errorf("ros2client: name %q contains a null byte", s)
	}
	if s != "~" && strings.HasSuffix(s, "/") {
		return fmt.Errorf("ros2client: name %q must not end with '/'", s)
	}
	if strings.Contains(s, "//") {
		return fmt.Errorf("ros2client: name %q contains a repeated '/'", s)
	}
	if strings.Contains(s, "__") {
		return fmt.Errorf("ros2client: name %q contains a repeated '_'", s)
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth < 0 {
			break
		}
	}
	if depth != 0 {
		return fmt.Errorf("ros2client: name %q has unbalanced substitution braces", s)
	}
	if s != "~" {
		for i := 0; i < len(s); i++ {
			if s[i] != '~' {
				continue
			}
			if i == len(s)-1 || s[i+1] != '/' {
				return fmt.Errorf("ros2client: name %q must separate '~' from the rest of the name with '/'", s)
			}
		}
	}
	last := strings.LastIndexByte(s, '/')
	firstSegment := s[last+1:]
	if firstSegment != "" {
		c := firstSegment[0]
		if c >= '0' && c <= '9' {
			return fmt.Errorf("ros2client: name %q's final segment starts with a digit", s)
		}
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '/', r == '~', r == '{', r == '}':
		default:
			return fmt.Errorf("ros2client: name %q contains disallowed character %q", s, r)
		}
	}
	return nil
}

// NewTypeName validates and constructs a TypeName. Type names follow
// "<package>/<msg|srv|action>/<Type>".
func NewTypeName(s string) (TypeName, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return TypeName{}, fmt.Errorf("ros2client: type name %q must have the form package/kind/Type", s)
	}
	switch parts[1] {
	case "msg", "srv", "action":
	default:
		return TypeName{}, fmt.Errorf("ros2client: type name %q has unknown kind %q", s, parts[1])
	}
	if parts[0] == "" || parts[2] == "" {
		return TypeName{}, fmt.Errorf("ros2client: type name %q has an empty package or type segment", s)
	}
	return TypeName{value: s}, nil
}

// MustTypeName is NewTypeName but panics on an invalid name.
func MustTypeName(s string) TypeName {
	t, err := NewTypeName(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TypeName) String() string {
	return t.value
}

// DDSTopicName renders the rt/ topic name used on the wire for a plain
// publish/subscribe topic.
func (n Name) DDSTopicName() string {
	return "rt" + ensureLeadingSlash(n.value)
}

// DDSRequestTopicName renders the rq/ request-topic name for a
// service, e.g. "rq/add_two_intsRequest".
func (n Name) DDSRequestTopicName() string {
	return "rq" + ensureLeadingSlash(n.value) + "Request"
}

// DDSReplyTopicName renders the rr/ reply-topic name for a service.
func (n Name) DDSReplyTopicName() string {
	return "rr" + ensureLeadingSlash(n.value) + "Reply"
}

func ensureLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}
