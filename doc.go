// Package ros2client provides the non-codegen core of a ROS 2 client
// library: node lifecycle and discovery, a generic publish/subscribe
// layer, a request/response service layer, and the ROS 2 action
// protocol, all layered over a DDS/RTPS transport boundary
// (internal/transport).
//
// This package does not implement DDS/RTPS itself, does not generate
// language bindings from .msg/.srv/.action files, and does not provide
// persistent storage or a security layer. Callers supply message types
// and a Codec[T] to (de)serialize them. Every Context runs over the
// in-memory reference transport in internal/transport; there is no
// option to supply another transport.Participant.
//
// # Quick start
//
//	ctx, err := ros2client.NewContext(0) // domain id 0
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	node, err := ctx.NewNode(ros2client.MustName("talker"), ros2client.WithNamespace("/demo"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	spinner, err := node.Spinner()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go spinner.Spin(context.Background())
//
//	pub, err := ros2client.CreatePublisher(node, ros2client.MustName("chatter"),
//	    ros2client.MustTypeName("std_msgs/msg/String"), ros2client.JSONCodec[Chatter](), ros2client.DefaultQoS())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	token := pub.Publish(Chatter{Data: "hello"})
//	if err := token.Wait(context.Background()); err != nil {
//	    log.Printf("publish failed: %v", err)
//	}
//
// # Services
//
// Clients and servers correlate requests and responses with an
// RmwRequestId (writer GUID + sequence number), the same correlation
// pattern MQTT v5 request/response uses with ResponseTopic and
// CorrelationData:
//
//	client, _ := ros2client.CreateClient[AddTwoIntsRequest, AddTwoIntsResponse](
//	    node, ros2client.MustName("add_two_ints"), ros2client.MustTypeName("example_interfaces/srv/AddTwoInts"),
//	    ros2client.JSONCodec[AddTwoIntsRequest](), ros2client.JSONCodec[AddTwoIntsResponse](), nil)
//	resp, err := client.Call(ctx, AddTwoIntsRequest{A: 1, B: 2})
//
// # Actions
//
// An action composes three services (send-goal, cancel, get-result)
// with a feedback topic and a status topic under an "_action"
// namespace. AsyncActionServer exposes the goal-handle state machine
// (new -> accepted -> executing -> terminal) as distinct handle types,
// so passing the wrong kind of handle is a compile-time error; each
// operation also checks the goal's current status at runtime and
// returns ErrWrongGoalState when it does not allow the transition.
package ros2client
