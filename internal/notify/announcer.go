package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/service"
)

// Announcer turns service connection-state changes into notifications.
// Repeat no-connectivity states are suppressed within the cooldown so a
// flapping network does not spam the sink; recovery to online always
// goes out.
type Announcer struct {
	logger   *zap.Logger
	notifier Notifier
	cooldown time.Duration

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewAnnouncer(logger *zap.Logger, n Notifier, cooldown time.Duration) *Announcer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Announcer{
		logger:   logger,
		notifier: n,
		cooldown: cooldown,
		lastSent: make(map[string]time.Time),
	}
}

// Listener returns the callback to register with Service.OnStateChange.
func (a *Announcer) Listener() service.Listener {
	return func(name string, state service.ConnState, portalURL string) {
		a.announce(name, state, portalURL)
	}
}

func (a *Announcer) announce(name string, state service.ConnState, portalURL string) {
	var title, text string
	switch state {
	case service.StateOnline:
		title = "🟢 Internet reachable"
		text = fmt.Sprintf("Service: %s", name)
	case service.StateRedirectFound:
		title = "🟡 Captive portal detected"
		text = fmt.Sprintf("Service: %s\nSign-in: %s", name, portalURL)
	case service.StateNoConnectivity:
		title = "🔴 No connectivity"
		text = fmt.Sprintf("Service: %s", name)
		a.mu.Lock()
		last, ok := a.lastSent[name]
		if ok && time.Since(last) < a.cooldown {
			a.mu.Unlock()
			return
		}
		a.lastSent[name] = time.Now()
		a.mu.Unlock()
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.notifier.Send(ctx, title, text); err != nil {
		a.logger.Warn("notify_send_failed", zap.String("service", name), zap.Error(err))
	}
}
