package events

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/optics-dev/optics-runner/pkg/core"
)

func collectEvents(t *testing.T, b *Bus) (publish func(Event), received func() []Event) {
	t.Helper()
	var mu sync.Mutex
	var got []Event
	b.Subscribe("test", func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
	})
	b.Start()
	return b.Publish, func() []Event {
		mu.Lock()
		defer mu.Unlock()
		out := make([]Event, len(got))
		copy(out, got)
		return out
	}
}

func TestBus_DeliversInPublishOrder(t *testing.T) {
	b := NewBus(16)
	publish, received := collectEvents(t, b)

	publish(Event{EntityType: EntityTestCase, Name: "Test Login", Status: core.StateRunning})
	publish(Event{EntityType: EntityModule, Name: "Login Module", Status: core.StateRunning})
	publish(Event{EntityType: EntityModule, Name: "Login Module", Status: core.StatePassed})
	b.Close()

	got := received()
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Name != "Test Login" || got[2].Status != core.StatePassed {
		t.Errorf("unexpected order: %+v", got)
	}
	for _, ev := range got {
		if ev.ID == "" {
			t.Error("event id not assigned")
		}
		if ev.Timestamp.IsZero() {
			t.Error("timestamp not assigned")
		}
	}
	if got[2].StatusText != "COMPLETED_PASSED" {
		t.Errorf("status text not derived: %s", got[2].StatusText)
	}
}

func TestBus_ExtraAttributesMergedIntoEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attrs.json")
	if err := os.WriteFile(path, []byte(`{"build":"42","branch":"main"}`), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBus(16)
	if err := b.SetExtraAttributesFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	publish, received := collectEvents(t, b)

	publish(Event{EntityType: EntityKeyword, Name: "Press Element", Status: core.StatePassed, Extra: map[string]string{"build": "override"}})
	b.Close()

	got := received()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0].Extra["branch"] != "main" {
		t.Errorf("file attribute missing: %v", got[0].Extra)
	}
	// Event-level attributes win over file attributes.
	if got[0].Extra["build"] != "override" {
		t.Errorf("event attribute must win: %v", got[0].Extra)
	}
}

func TestBus_SetExtraAttributesFileErrors(t *testing.T) {
	b := NewBus(16)
	if err := b.SetExtraAttributesFile("/nonexistent/attrs.json"); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "attrs.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := b.SetExtraAttributesFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestBus_PublishNeverBlocksWhenFull(t *testing.T) {
	// No dispatch goroutine: the buffer fills and later publishes drop.
	b := NewBus(2)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(Event{EntityType: EntityKeyword, Name: "Step", Status: core.StatePassed})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full buffer")
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	b := NewBus(16)
	var mu sync.Mutex
	count := 0
	delivered := make(chan struct{}, 16)
	b.Subscribe("counter", func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
		delivered <- struct{}{}
	})
	b.Start()

	b.Publish(Event{Name: "first", Status: core.StatePassed})
	<-delivered
	b.Unsubscribe("counter")
	b.Publish(Event{Name: "second", Status: core.StatePassed})
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
}
