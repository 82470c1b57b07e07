package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleAppendsLine(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{LogPath: filepath.Join(dir, "out", "reservations.log")}
	ev := CartConfirmedEvent{
		ReservationID: 9, Code: "RES-9", UserID: 4, Total: 120.5, ConfirmedAt: "2025-06-01T10:00:00Z",
		Bookings: []ConfirmedBooking{{ServiceID: 42, Service: "Kayak", Date: "2025-06-01", StartTime: "09:00", EndTime: "11:00", Quantity: 2}},
	}
	body, _ := json.Marshal(ev)
	if err := c.handle(body); err != nil {
		t.Fatal(err)
	}
	if err := c.handle(body); err != nil {
		t.Fatal(err)
	}
	bs, err := os.ReadFile(c.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(bs)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"reservation_id=9", `code="RES-9"`, "total=120.50", "Kayak@2025-06-01 09:00-11:00 x2"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("line %q missing %q", lines[0], want)
		}
	}
}

func TestHandleRejectsGarbage(t *testing.T) {
	c := &Consumer{LogPath: filepath.Join(t.TempDir(), "r.log")}
	if err := c.handle([]byte("{")); err == nil {
		t.Fatal("expected error")
	}
}
