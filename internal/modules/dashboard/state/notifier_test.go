package state

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"iot-dashboard/internal/modules/dashboard/types"
)

func TestNotifier_StacksIndependently(t *testing.T) {
	var n Notifier
	now := time.Now()

	a := n.Add("Failed to fetch latest sensor data", types.NotificationError, now)
	b := n.Add("Failed to fetch latest sensor data", types.NotificationError, now)
	if a.ID == b.ID {
		t.Fatal("identical messages share an ID")
	}
	if n.Len() != 2 {
		t.Fatalf("Len() = %d; want 2 (no dedup)", n.Len())
	}

	if !n.Remove(a.ID) {
		t.Fatal("Remove(a) = false; want true")
	}
	list := n.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("after removing a: %+v; want only b", list)
	}
	if n.Remove(a.ID) {
		t.Error("second Remove(a) = true; want false")
	}
	if n.Remove(uuid.New()) {
		t.Error("Remove(unknown) = true; want false")
	}
}

func TestRenderNotifications_Colors(t *testing.T) {
	var n Notifier
	n.Add("ok", types.NotificationSuccess, time.Now())
	n.Add("bad", types.NotificationError, time.Now())

	views := RenderNotifications(n.List())
	if len(views) != 2 {
		t.Fatalf("len = %d; want 2", len(views))
	}
	if views[0].Color != "#28a745" || views[0].Kind != types.NotificationSuccess {
		t.Errorf("success view = %+v", views[0])
	}
	if views[1].Color != "#dc3545" || views[1].Kind != types.NotificationError {
		t.Errorf("error view = %+v", views[1])
	}
	if views[0].ID == "" {
		t.Error("view ID is empty")
	}
}
