package transport

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoopbackSendReceive(t *testing.T) {
	fabric := NewFabric()
	a := fabric.NewLoopback(0, 4)
	b := fabric.NewLoopback(1, 4)

	var mu sync.Mutex
	var received []byte
	b.RegisterReceiver(func(src, dst int, payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		received = append([]byte(nil), payload...)
		if src != 0 || dst != 1 {
			t.Errorf("unexpected src/dst: %d -> %d", src, dst)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	fut, err := a.SendOneWay(ctx, 1, []byte("hello"))
	if err != nil {
		t.Fatalf("SendOneWay: %v", err)
	}
	if err := fut.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if string(received) != "hello" {
		t.Fatalf("received = %q, want %q", received, "hello")
	}
}

func TestLoopbackBoundedInFlight(t *testing.T) {
	fabric := NewFabric()
	a := fabric.NewLoopback(0, 1)
	b := fabric.NewLoopback(1, 1)

	release := make(chan struct{})
	b.RegisterReceiver(func(int, int, []byte) {
		<-release
	})

	ctx := context.Background()
	if _, err := a.SendOneWay(ctx, 1, []byte("x")); err != nil {
		t.Fatalf("first send: %v", err)
	}

	// second send should block on the semaphore until the first resolves.
	done := make(chan struct{})
	go func() {
		ctx2, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if _, err := a.SendOneWay(ctx2, 1, []byte("y")); err == nil {
			t.Error("expected second send to time out while first is in flight")
		}
		close(done)
	}()
	<-done
	close(release)
}
