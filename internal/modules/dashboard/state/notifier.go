package state

import (
	"time"

	"github.com/google/uuid"

	"iot-dashboard/internal/modules/dashboard/types"
)

const (
	successColor = "#28a745"
	errorColor   = "#dc3545"
)

type Notification struct {
	ID        uuid.UUID
	Message   string
	Kind      types.NotificationKind
	CreatedAt time.Time
}

// Notifier keeps the visible notifications in creation order. Entries never
// expire on their own: the owner schedules a Remove per entry.
type Notifier struct {
	items []Notification
}

func (n *Notifier) Add(message string, kind types.NotificationKind, now time.Time) Notification {
	item := Notification{
		ID:        uuid.New(),
		Message:   message,
		Kind:      kind,
		CreatedAt: now,
	}
	n.items = append(n.items, item)
	return item
}

// Remove reports whether id was still visible.
func (n *Notifier) Remove(id uuid.UUID) bool {
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Notifier) Len() int { return len(n.items) }

func (n *Notifier) List() []Notification {
	return append([]Notification(nil), n.items...)
}

type NotificationView struct {
	ID      string                 `json:"id"`
	Message string                 `json:"message"`
	Kind    types.NotificationKind `json:"kind"`
	Color   string                 `json:"color"`
}

func RenderNotifications(items []Notification) []NotificationView {
	out := make([]NotificationView, 0, len(items))
	for _, item := range items {
		color := errorColor
		if item.Kind == types.NotificationSuccess {
			color = successColor
		}
		out = append(out, NotificationView{
			ID:      item.ID.String(),
			Message: item.Message,
			Kind:    item.Kind,
			Color:   color,
		})
	}
	return out
}
