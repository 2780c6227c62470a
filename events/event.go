// Package events carries todo change notifications from handlers to
// subscribed clients, either in process or through an MQTT broker.
package events

import (
	"context"
	"time"
)

type Type string

const (
	TodoCreated       Type = "created"
	TodoUpdated       Type = "updated"
	TodoStatusChanged Type = "status"
	TodoRemoved       Type = "removed"
)

// Event describes one change to a todo. UserName is the user who made the
// change, which is not always the todo's owner, and only that user's
// sessions receive it.
type Event struct {
	Type     Type      `json:"type"`
	UserName string    `json:"userName"`
	TodoID   string    `json:"todoId"`
	Status   string    `json:"status,omitempty"`
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
