package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nettield/portalwatch/internal/service"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Send(_ context.Context, title, _ string) error {
	r.mu.Lock()
	r.titles = append(r.titles, title)
	r.mu.Unlock()
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func TestAnnouncer_SendsOnStates(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(nil, rec, time.Minute)
	l := a.Listener()

	l("wifi", service.StateOnline, "")
	l("wifi", service.StateRedirectFound, "https://portal.example/login")
	if rec.count() != 2 {
		t.Fatalf("want 2 notifications, got %d", rec.count())
	}
}

func TestAnnouncer_CooldownSuppressesRepeatOutages(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(nil, rec, time.Hour)
	l := a.Listener()

	l("wifi", service.StateNoConnectivity, "")
	l("wifi", service.StateNoConnectivity, "")
	l("wifi", service.StateNoConnectivity, "")
	if rec.count() != 1 {
		t.Fatalf("repeat outages within cooldown must be suppressed, got %d", rec.count())
	}

	// Recovery always goes out.
	l("wifi", service.StateOnline, "")
	if rec.count() != 2 {
		t.Fatalf("recovery must bypass the cooldown, got %d", rec.count())
	}
}

func TestAnnouncer_IgnoresConnected(t *testing.T) {
	rec := &recordingNotifier{}
	a := NewAnnouncer(nil, rec, time.Minute)
	a.Listener()("wifi", service.StateConnected, "")
	if rec.count() != 0 {
		t.Fatal("pre-verdict state must not notify")
	}
}
