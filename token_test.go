package ros2client

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTokenWaitSuccess(t *testing.T) {
	tok := newToken()
	go tok.complete(nil)

	if err := tok.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
	if tok.Error() != nil {
		t.Errorf("Error() = %v, want nil", tok.Error())
	}
}

func TestTokenWaitFailure(t *testing.T) {
	want := errors.New("boom")
	tok := newToken()
	tok.complete(want)

	if err := tok.Wait(context.Background()); err != want {
		t.Errorf("Wait() = %v, want %v", err, want)
	}
}

func TestTokenCompleteOnce(t *testing.T) {
	tok := newToken()
	tok.complete(errors.New("first"))
	tok.complete(errors.New("second"))

	if tok.Error().Error() != "first" {
		t.Errorf("Error() = %v, want first completion to win", tok.Error())
	}
}

func TestTokenWaitContextCancel(t *testing.T) {
	tok := newToken()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := tok.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() = %v, want context.DeadlineExceeded", err)
	}
}

func TestTokenDoneChannel(t *testing.T) {
	tok := newToken()
	select {
	case <-tok.Done():
		t.Fatal("Done() should not be closed before complete")
	default:
	}
	tok.complete(nil)
	select {
	case <-tok.Done():
	default:
		t.Fatal("Done() should be closed after complete")
	}
}
