package platform

import "testing"

func TestSubscribeNotify(t *testing.T) {
	n := NewFullscreenNotifier()

	var got []bool
	unsub := n.Subscribe(func(fs bool) { got = append(got, fs) })

	n.Notify(true)
	n.Notify(false)

	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("unexpected events: %v", got)
	}

	unsub()
	n.Notify(true)
	if len(got) != 2 {
		t.Error("unsubscribed handler still received events")
	}
}

func TestUnsubscribeTwice(t *testing.T) {
	n := NewFullscreenNotifier()
	unsub := n.Subscribe(func(bool) {})

	unsub()
	unsub() // must not panic or affect other subscribers

	if n.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", n.SubscriberCount())
	}
}

func TestMultipleSubscribers(t *testing.T) {
	n := NewFullscreenNotifier()

	count := 0
	n.Subscribe(func(bool) { count++ })
	n.Subscribe(func(bool) { count++ })

	if n.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", n.SubscriberCount())
	}

	n.Notify(true)
	if count != 2 {
		t.Errorf("expected both subscribers notified, got %d", count)
	}
}
