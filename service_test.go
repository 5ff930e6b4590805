package ros2client

import (
	"context"
	"testing"
	"time"
)

type addRequest struct {
	A, B int
}

type addResponse struct {
	Sum int
}

func TestServiceCallWithHandler(t *testing.T) {
	node := newTestNode(t, "adder")
	name := MustName("add_two_ints")
	typeName := MustTypeName("example_interfaces/srv/AddTwoInts")

	server, err := CreateServer[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil,
		func(_ context.Context, req addRequest) addResponse {
			return addResponse{Sum: req.A + req.B}
		})
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	defer server.Close()

	client, err := CreateClient[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Call(ctx, addRequest{A: 2, B: 3})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if resp.Sum != 5 {
		t.Errorf("Sum = %d, want 5", resp.Sum)
	}
}

func TestServiceConcurrentCallsCorrelate(t *testing.T) {
	node := newTestNode(t, "adder2")
	name := MustName("add_two_ints2")
	typeName := MustTypeName("example_interfaces/srv/AddTwoInts")

	server, err := CreateServer[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil,
		func(_ context.Context, req addRequest) addResponse {
			return addResponse{Sum: req.A + req.B}
		})
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	defer server.Close()

	client, err := CreateClient[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	type pair struct{ a, b int }
	inputs := []pair{{1, 1}, {2, 2}, {3, 3}, {10, 20}}
	ids := make([]RmwRequestId, len(inputs))
	for i, p := range inputs {
		id, err := client.SendRequest(addRequest{A: p.a, B: p.b})
		if err != nil {
			t.Fatalf("SendRequest: %v", err)
		}
		ids[i] = id
	}
	for i, p := range inputs {
		resp, err := client.ReceiveResponse(ctx, ids[i])
		if err != nil {
			t.Fatalf("ReceiveResponse: %v", err)
		}
		if want := p.a + p.b; resp.Sum != want {
			t.Errorf("request %d: Sum = %d, want %d", i, resp.Sum, want)
		}
	}
}

func TestServiceManualPollMode(t *testing.T) {
	node := newTestNode(t, "manual_server")
	name := MustName("manual_add")
	typeName := MustTypeName("example_interfaces/srv/AddTwoInts")

	server, err := CreateServer[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil, nil)
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	defer server.Close()

	client, err := CreateClient[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	id, err := client.SendRequest(addRequest{A: 4, B: 5})
	if err != nil {
		t.Fatalf("SendRequest: %v", err)
	}

	var (
		reqId RmwRequestId
		req   addRequest
		ok    bool
	)
	deadline := time.After(time.Second)
	for !ok {
		reqId, req, ok, err = server.ReceiveRequest()
		if err != nil {
			t.Fatalf("ReceiveRequest: %v", err)
		}
		if ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for request")
		case <-time.After(time.Millisecond):
		}
	}
	if err := server.SendResponse(reqId, addResponse{Sum: req.A + req.B}); err != nil {
		t.Fatalf("SendResponse: %v", err)
	}

	resp, err := client.ReceiveResponse(ctx, id)
	if err != nil {
		t.Fatalf("ReceiveResponse: %v", err)
	}
	if resp.Sum != 9 {
		t.Errorf("Sum = %d, want 9", resp.Sum)
	}
}

func TestClientReceiveResponseUnknownRequest(t *testing.T) {
	node := newTestNode(t, "adder3")
	name := MustName("add_two_ints3")
	typeName := MustTypeName("example_interfaces/srv/AddTwoInts")

	client, err := CreateClient[addRequest, addResponse](node, name, typeName,
		JSONCodec[addRequest](), JSONCodec[addResponse](), nil)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	defer client.Close()

	_, err = client.ReceiveResponse(context.Background(), RmwRequestId{WriterGUID: NewGUID(), Sequence: 99})
	if err != ErrRequestNotFound {
		t.Errorf("ReceiveResponse for unknown id = %v, want ErrRequestNotFound", err)
	}
}
