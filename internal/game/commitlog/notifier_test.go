package commitlog

import (
	"testing"
	"time"
)

func receive(t *testing.T, sub *Subscription) Notification {
	t.Helper()
	select {
	case note, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed")
		}
		return note
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
	return Notification{}
}

func TestNotifierDeliversInOrder(t *testing.T) {
	notifier := NewNotifier()
	sub := notifier.Subscribe("alpha")
	defer sub.Stop()

	for i := 1; i <= 5; i++ {
		notifier.Publish("alpha", Notification{ID: "1-" + string(rune('0'+i)), Timestamp: int64(i)})
	}
	for i := 1; i <= 5; i++ {
		note := receive(t, sub)
		if note.Timestamp != int64(i) {
			t.Fatalf("notification %d has timestamp %d", i, note.Timestamp)
		}
	}
}

func TestNotifierChannelsAreIsolated(t *testing.T) {
	notifier := NewNotifier()
	alpha := notifier.Subscribe("alpha")
	defer alpha.Stop()
	beta := notifier.Subscribe("beta")
	defer beta.Stop()

	notifier.Publish("alpha", Notification{ID: "1-1", Timestamp: 1})

	if note := receive(t, alpha); note.ID != "1-1" {
		t.Errorf("alpha received %q", note.ID)
	}
	select {
	case note := <-beta.C:
		t.Errorf("beta received %+v for alpha publish", note)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotifierFanOut(t *testing.T) {
	notifier := NewNotifier()
	first := notifier.Subscribe("alpha")
	defer first.Stop()
	second := notifier.Subscribe("alpha")
	defer second.Stop()

	notifier.Publish("alpha", Notification{ID: "1-1", Timestamp: 1})

	if note := receive(t, first); note.ID != "1-1" {
		t.Errorf("first received %q", note.ID)
	}
	if note := receive(t, second); note.ID != "1-1" {
		t.Errorf("second received %q", note.ID)
	}
}

func TestNotifierStopClosesChannel(t *testing.T) {
	notifier := NewNotifier()
	sub := notifier.Subscribe("alpha")
	sub.Stop()
	sub.Stop() // idempotent

	select {
	case _, ok := <-sub.C:
		if ok {
			t.Error("received notification after stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after stop")
	}

	// Publishing after stop must not deliver or panic.
	notifier.Publish("alpha", Notification{ID: "1-2", Timestamp: 2})
}
