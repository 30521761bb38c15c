package services

import (
	"testing"
)

// drain returns the events buffered on sub without blocking.
func drain(sub *Subscription) []ChangeEvent {
	var out []ChangeEvent
	for {
		select {
		case e, ok := <-sub.Events():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func eventIDs(events []ChangeEvent) []uint {
	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func TestEventHub_RoutesByProject(t *testing.T) {
	hub := NewEventHub()
	boardA := hub.Subscribe("a", EventFilter{ProjectID: 1})
	boardB := hub.Subscribe("b", EventFilter{ProjectID: 2})
	everything := hub.Subscribe("all", EventFilter{})

	hub.Publish(ChangeEvent{Kind: "task", Action: EventMoved, ID: 10, ProjectID: 1})
	hub.Publish(ChangeEvent{Kind: "task", Action: EventCreated, ID: 20, ProjectID: 2})
	hub.Publish(ChangeEvent{Kind: "user", Action: EventUpdated, ID: 30})

	tests := []struct {
		name string
		sub  *Subscription
		want []uint
	}{
		{"project 1 board", boardA, []uint{10, 30}},
		{"project 2 board", boardB, []uint{20, 30}},
		{"unscoped board", everything, []uint{10, 20, 30}},
	}
	for _, tt := range tests {
		got := eventIDs(drain(tt.sub))
		if len(got) != len(tt.want) {
			t.Errorf("%s: got %v, expected %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: got %v, expected %v", tt.name, got, tt.want)
				break
			}
		}
	}
}

func TestEventHub_KindFilter(t *testing.T) {
	hub := NewEventHub()
	sub := hub.Subscribe("c", EventFilter{ProjectID: 1, Kinds: []string{"comment"}})

	hub.Publish(ChangeEvent{Kind: "task", ID: 1, ProjectID: 1})
	hub.Publish(ChangeEvent{Kind: "comment", ID: 2, ProjectID: 1})
	hub.Publish(ChangeEvent{Kind: "user", ID: 3})

	if got := eventIDs(drain(sub)); len(got) != 1 || got[0] != 2 {
		t.Errorf("got %v, expected only the comment", got)
	}
}

func TestEventHub_UnsubscribeClosesAndForgets(t *testing.T) {
	hub := NewEventHub()
	sub := hub.Subscribe("a", EventFilter{ProjectID: 5})
	hub.Subscribe("b", EventFilter{})
	if hub.ClientCount() != 2 {
		t.Fatalf("ClientCount() = %d", hub.ClientCount())
	}

	hub.Unsubscribe("a")
	hub.Unsubscribe("missing")

	if _, ok := <-sub.Events(); ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, expected 1", hub.ClientCount())
	}
	if _, ok := hub.WatchedProjects()[5]; ok {
		t.Error("empty project group should be removed")
	}
	hub.Publish(ChangeEvent{Kind: "task", ID: 1, ProjectID: 5})
}

func TestEventHub_ResubscribeReplaces(t *testing.T) {
	hub := NewEventHub()
	old := hub.Subscribe("a", EventFilter{ProjectID: 1})
	fresh := hub.Subscribe("a", EventFilter{ProjectID: 2})

	if _, ok := <-old.Events(); ok {
		t.Error("replaced subscription should be closed")
	}
	hub.Publish(ChangeEvent{Kind: "task", ID: 7, ProjectID: 2})
	if got := eventIDs(drain(fresh)); len(got) != 1 {
		t.Errorf("new subscription got %v", got)
	}
	if w := hub.WatchedProjects(); w[1] != 0 || w[2] != 1 {
		t.Errorf("WatchedProjects() = %v", w)
	}
}

func TestEventHub_FullBufferCountsDropped(t *testing.T) {
	hub := NewEventHub()
	sub := hub.Subscribe("slow", EventFilter{ProjectID: 1})

	for i := 0; i < subscriptionBuffer+5; i++ {
		hub.Publish(ChangeEvent{Kind: "task", ID: uint(i), ProjectID: 1})
	}

	if n := sub.Dropped(); n != 5 {
		t.Errorf("Dropped() = %d, expected 5", n)
	}
	if n := sub.Dropped(); n != 0 {
		t.Errorf("Dropped() should reset, got %d", n)
	}
	if got := len(drain(sub)); got != subscriptionBuffer {
		t.Errorf("buffered %d events", got)
	}
}

func TestEventHub_NilPublish(t *testing.T) {
	var hub *EventHub
	hub.Publish(ChangeEvent{Kind: "task"})
}
