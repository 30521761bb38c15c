package services

import (
	"sync"
	"sync/atomic"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventMoved   = "moved"
	EventDeleted = "deleted"
)

// ChangeEvent tells connected boards that a record changed so they can refetch.
// ProjectID is zero for records that belong to no project (users).
type ChangeEvent struct {
	Kind      string `json:"kind"` // user, project, task, comment
	Action    string `json:"action"`
	ID        uint   `json:"id"`
	ProjectID uint   `json:"projectId,omitempty"`
	ActorID   uint   `json:"actorId,omitempty"`
}

// EventFilter narrows a subscription to one project board and, optionally,
// to some record kinds. The zero value receives everything.
type EventFilter struct {
	ProjectID uint
	Kinds     []string
}

const subscriptionBuffer = 64

// Subscription is one connected board.
type Subscription struct {
	ID        string
	ProjectID uint

	ch      chan ChangeEvent
	kinds   map[string]bool
	dropped atomic.Int64
}

// Events is closed by Unsubscribe.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.ch
}

// Dropped returns how many events were lost to a full buffer since the last
// call, and resets the count. A board that lost events must refetch.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Swap(0)
}

func (s *Subscription) wants(e ChangeEvent) bool {
	return len(s.kinds) == 0 || s.kinds[e.Kind]
}

// EventHub routes change events to the boards watching the affected project.
// Subscribers with no project see every event; events without a project
// reach every subscriber.
type EventHub struct {
	mu        sync.RWMutex
	byID      map[string]*Subscription
	byProject map[uint]map[string]*Subscription
}

func NewEventHub() *EventHub {
	return &EventHub{
		byID:      make(map[string]*Subscription),
		byProject: make(map[uint]map[string]*Subscription),
	}
}

// Subscribe registers a board under id. Subscribing an id twice replaces the
// earlier subscription.
func (h *EventHub) Subscribe(id string, f EventFilter) *Subscription {
	sub := &Subscription{
		ID:        id,
		ProjectID: f.ProjectID,
		ch:        make(chan ChangeEvent, subscriptionBuffer),
	}
	if len(f.Kinds) > 0 {
		sub.kinds = make(map[string]bool, len(f.Kinds))
		for _, k := range f.Kinds {
			sub.kinds[k] = true
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(id)
	h.byID[id] = sub
	group, ok := h.byProject[f.ProjectID]
	if !ok {
		group = make(map[string]*Subscription)
		h.byProject[f.ProjectID] = group
	}
	group[id] = sub
	return sub
}

func (h *EventHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(id)
}

// remove expects h.mu held.
func (h *EventHub) remove(id string) {
	sub, ok := h.byID[id]
	if !ok {
		return
	}
	delete(h.byID, id)
	if group := h.byProject[sub.ProjectID]; group != nil {
		delete(group, id)
		if len(group) == 0 {
			delete(h.byProject, sub.ProjectID)
		}
	}
	close(sub.ch)
}

// Publish delivers e without blocking. A subscriber whose buffer is full
// loses the event and has it counted in Dropped.
func (h *EventHub) Publish(e ChangeEvent) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	if e.ProjectID == 0 {
		for _, sub := range h.byID {
			deliver(sub, e)
		}
		return
	}
	for _, sub := range h.byProject[0] {
		deliver(sub, e)
	}
	for _, sub := range h.byProject[e.ProjectID] {
		deliver(sub, e)
	}
}

func deliver(sub *Subscription, e ChangeEvent) {
	if !sub.wants(e) {
		return
	}
	select {
	case sub.ch <- e:
	default:
		sub.dropped.Add(1)
	}
}

// ClientCount is the number of connected boards.
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byID)
}

// WatchedProjects returns how many boards watch each project; key 0 counts
// boards watching everything.
func (h *EventHub) WatchedProjects() map[uint]int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[uint]int, len(h.byProject))
	for id, group := range h.byProject {
		out[id] = len(group)
	}
	return out
}
