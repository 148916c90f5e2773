package docsync

import (
	"reflect"
	"sync"

	"github.com/agentstation/docsync/pkg/articles"
)

// Hook function types for engine events
type (
	// StatusChangeHook is called on every state machine transition
	StatusChangeHook func(status Status)

	// RecordAddedHook is called when a refresh publishes a new record
	RecordAddedHook func(record articles.Record)

	// RecordUpdatedHook is called when a refresh publishes a changed record
	RecordUpdatedHook func(old, new articles.Record)

	// RecordRemovedHook is called when a record disappears from the snapshot
	RecordRemovedHook func(record articles.Record)
)

// Hooks provides event callback registration. Callbacks run synchronously
// on the goroutine that publishes the change and must not call back into
// Writer or Syncer methods.
type Hooks interface {
	// OnStatusChange registers a callback for state transitions
	OnStatusChange(StatusChangeHook)

	// OnRecordAdded registers a callback for added records
	OnRecordAdded(RecordAddedHook)

	// OnRecordUpdated registers a callback for updated records
	OnRecordUpdated(RecordUpdatedHook)

	// OnRecordRemoved registers a callback for removed records
	OnRecordRemoved(RecordRemovedHook)
}

// hooks manages event callbacks for snapshot changes
type hooks struct {
	mu              sync.RWMutex
	onStatusChange  []StatusChangeHook
	onRecordAdded   []RecordAddedHook
	onRecordUpdated []RecordUpdatedHook
	onRecordRemoved []RecordRemovedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnStatusChange registers a callback for state transitions
func (h *hooks) OnStatusChange(fn StatusChangeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStatusChange = append(h.onStatusChange, fn)
}

// OnRecordAdded registers a callback for when records are added
func (h *hooks) OnRecordAdded(fn RecordAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecordAdded = append(h.onRecordAdded, fn)
}

// OnRecordUpdated registers a callback for when records are updated
func (h *hooks) OnRecordUpdated(fn RecordUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecordUpdated = append(h.onRecordUpdated, fn)
}

// OnRecordRemoved registers a callback for when records are removed
func (h *hooks) OnRecordRemoved(fn RecordRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecordRemoved = append(h.onRecordRemoved, fn)
}

// OnStatusChange registers a callback for state transitions.
func (c *client) OnStatusChange(fn StatusChangeHook) { c.hooks.OnStatusChange(fn) }

// OnRecordAdded registers a callback for added records.
func (c *client) OnRecordAdded(fn RecordAddedHook) { c.hooks.OnRecordAdded(fn) }

// OnRecordUpdated registers a callback for updated records.
func (c *client) OnRecordUpdated(fn RecordUpdatedHook) { c.hooks.OnRecordUpdated(fn) }

// OnRecordRemoved registers a callback for removed records.
func (c *client) OnRecordRemoved(fn RecordRemovedHook) { c.hooks.OnRecordRemoved(fn) }

func (h *hooks) triggerStatus(status Status) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onStatusChange {
		hook(status)
	}
}

// triggerSnapshotUpdate compares old and new snapshots by identity key
// and triggers the record hooks.
func (h *hooks) triggerSnapshotUpdate(oldSnap, newSnap *Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.onRecordAdded)+len(h.onRecordUpdated)+len(h.onRecordRemoved) == 0 {
		return
	}

	oldByKey := make(map[string]articles.Record, len(oldSnap.Records))
	for _, rec := range oldSnap.Records {
		oldByKey[rec.IdentityKey] = rec
	}
	newByKey := make(map[string]bool, len(newSnap.Records))

	for _, rec := range newSnap.Records {
		newByKey[rec.IdentityKey] = true
		old, exists := oldByKey[rec.IdentityKey]
		if !exists {
			for _, hook := range h.onRecordAdded {
				hook(rec)
			}
			continue
		}
		if !sameContent(old, rec) {
			for _, hook := range h.onRecordUpdated {
				hook(old, rec)
			}
		}
	}

	for _, rec := range oldSnap.Records {
		if !newByKey[rec.IdentityKey] {
			for _, hook := range h.onRecordRemoved {
				hook(rec)
			}
		}
	}
}

// sameContent ignores CreatedAt, which is re-stamped on every refresh for
// rows the remote store does not timestamp.
func sameContent(a, b articles.Record) bool {
	return a.RowNumber == b.RowNumber &&
		a.Views == b.Views &&
		a.DisplayDate == b.DisplayDate &&
		reflect.DeepEqual(a.RawRow, b.RawRow)
}
