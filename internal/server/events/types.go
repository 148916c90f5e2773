// Package events fans catalog changes out to real-time transports.
//
// The broker sits between the docsync client's hooks and the WebSocket
// and SSE transports, so each hook publishes once and every connected
// client receives the event.
package events

import "time"

// EventType represents the type of catalog event.
type EventType string

// Event types published by the server.
const (
	// Record events (from client snapshot diffs).
	ArticleAdded   EventType = "article.added"
	ArticleUpdated EventType = "article.updated"
	ArticleRemoved EventType = "article.removed"

	// Sync events (from the client state machine).
	SyncStatus EventType = "sync.status"

	// Library events (from hashtag library edits).
	LibraryChanged EventType = "library.changed"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents a catalog event with type, timestamp, and data.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
