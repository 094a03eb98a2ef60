package soundboard

import (
	"sort"
	"sync"

	"github.com/Vasu1712/soundboard-backend/internal/models"
)

// ActivityCapacity is the number of plays kept in the recent activity log.
const ActivityCapacity = 50

// ActivityLog keeps the most recent broadcast plays, newest first.
type ActivityLog struct {
	mu       sync.RWMutex
	capacity int
	events   []models.PlaybackEvent
}

func NewActivityLog(capacity int) *ActivityLog {
	if capacity <= 0 {
		capacity = ActivityCapacity
	}
	return &ActivityLog{
		capacity: capacity,
		events:   make([]models.PlaybackEvent, 0, capacity+1),
	}
}

// Add prepends ev and evicts the oldest entries beyond capacity.
func (l *ActivityLog) Add(ev models.PlaybackEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, models.PlaybackEvent{})
	copy(l.events[1:], l.events)
	l.events[0] = ev

	// Stable so that plays stamped with the same instant keep insertion order.
	sort.SliceStable(l.events, func(i, j int) bool {
		return l.events[i].Timestamp.After(l.events[j].Timestamp)
	})
	if len(l.events) > l.capacity {
		l.events = l.events[:l.capacity]
	}
}

// Recent returns a copy of the log, newest first.
func (l *ActivityLog) Recent() []models.PlaybackEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.PlaybackEvent, len(l.events))
	copy(out, l.events)
	return out
}

func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
