package bus

import (
	"sync"
	"testing"
)

func TestPublishDeliversInOrder(t *testing.T) {
	t.Parallel()

	b := New()
	var got []string
	cancel := b.Subscribe("job-1", func(ev Event) {
		got = append(got, ev.Type)
	})
	defer cancel()

	for _, typ := range []string{"job_claimed", "job_started", "progress_update"} {
		b.Publish("job-1", Event{Type: typ})
	}

	want := []string{"job_claimed", "job_started", "progress_update"}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d: expected %q got %q", i, want[i], got[i])
		}
	}
}

func TestPublishIsKeyedByJob(t *testing.T) {
	t.Parallel()

	b := New()
	var a, c int
	defer b.Subscribe("job-a", func(Event) { a++ })()
	defer b.Subscribe("job-c", func(Event) { c++ })()

	b.Publish("job-a", Event{Type: "job_started"})
	b.Publish("job-a", Event{Type: "progress_update"})
	b.Publish("job-c", Event{Type: "job_started"})

	if a != 2 || c != 1 {
		t.Fatalf("expected a=2 c=1, got a=%d c=%d", a, c)
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	b := New()
	// must not panic or error
	b.Publish("ghost", Event{Type: "job_started"})
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	b := New()
	var n int
	cancel := b.Subscribe("job-1", func(Event) { n++ })

	b.Publish("job-1", Event{Type: "job_started"})
	cancel()
	cancel() // idempotent
	b.Publish("job-1", Event{Type: "job_delivered"})

	if n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if b.SubscriberCount("job-1") != 0 {
		t.Fatalf("expected empty subscriber set after cancel")
	}
}

func TestConcurrentSubscribePublish(t *testing.T) {
	t.Parallel()

	b := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel := b.Subscribe("job-1", func(Event) {})
			b.Publish("job-1", Event{Type: "progress_update"})
			cancel()
		}()
	}
	wg.Wait()

	if b.SubscriberCount("job-1") != 0 {
		t.Fatalf("expected all subscribers cancelled")
	}
}
