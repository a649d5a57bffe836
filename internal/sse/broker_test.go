package sse

import (
	"strings"
	"testing"
	"time"
)

func waitForCount(t *testing.T, b *Broker, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.ClientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("client count never reached %d (have %d)", want, b.ClientCount())
}

func receive(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed while waiting for message")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestBroker_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	waitForCount(t, b, 2)

	b.Unsubscribe(ch1)
	waitForCount(t, b, 1)

	// Unsubscribed channel is closed.
	select {
	case _, ok := <-ch1:
		if ok {
			t.Error("expected closed channel, got message")
		}
	case <-time.After(time.Second):
		t.Error("unsubscribed channel not closed")
	}

	b.Unsubscribe(ch2)
	waitForCount(t, b, 0)
}

func TestBroker_Publish(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	b.Publish(Event{Type: "ping", Data: map[string]string{"k": "v"}})

	msg := receive(t, ch)
	if !strings.HasPrefix(msg, "event: ping\n") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, `data: {"k":"v"}`) {
		t.Errorf("msg = %q", msg)
	}
	if !strings.HasSuffix(msg, "\n\n") {
		t.Errorf("msg missing terminator: %q", msg)
	}
}

func TestBroker_NotifyNote(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ch := b.Subscribe()
	waitForCount(t, b, 1)

	b.NotifyNote("created", "notes/new.md")
	msg := receive(t, ch)
	if !strings.HasPrefix(msg, "event: note.created\n") {
		t.Errorf("msg = %q", msg)
	}
	if !strings.Contains(msg, `"path":"notes/new.md"`) {
		t.Errorf("msg = %q", msg)
	}

	// Unknown kinds are dropped, not broadcast.
	b.NotifyNote("renamed", "x.md")
	b.NotifyNote("updated", "y.md")
	msg = receive(t, ch)
	if !strings.HasPrefix(msg, "event: note.updated\n") {
		t.Errorf("expected the updated event next, got %q", msg)
	}
}

func TestBroker_SlowClientDoesNotBlock(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	slow := b.Subscribe()
	fast := b.Subscribe()
	waitForCount(t, b, 2)

	// Drain fast continuously while slow is never read.
	fastDone := make(chan int)
	go func() {
		n := 0
		for {
			select {
			case <-fast:
				n++
			case <-time.After(500 * time.Millisecond):
				fastDone <- n
				return
			}
		}
	}()

	for i := 0; i < 200; i++ {
		b.Publish(Event{Type: "flood", Data: i})
	}

	// The drained client gets past the per-client buffer size; only an
	// undrained client is capped there.
	if n := <-fastDone; n <= 64 {
		t.Errorf("fast client got %d messages, want more than one buffer's worth", n)
	}

	// slow is capped at its buffer size; the excess was dropped, not queued.
	n := 0
	for {
		select {
		case <-slow:
			n++
			continue
		default:
		}
		break
	}
	if n == 0 || n > 64 {
		t.Errorf("slow client buffered %d messages", n)
	}

	if b.ClientCount() != 2 {
		t.Errorf("client count = %d, want 2", b.ClientCount())
	}
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	waitForCount(t, b, 1)

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed on broker shutdown")
	}

	// All operations are safe after Close.
	b.Publish(Event{Type: "late"})
	b.NotifyNote("created", "late.md")
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d", n)
	}
	late := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribe after close must return a closed channel")
	}
	b.Close()
}
