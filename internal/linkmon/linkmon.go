// Package linkmon watches default-gateway reachability and reports
// flips, which the daemon translates into gateway-reachable and
// gateway-unreachable validation triggers.
package linkmon

import (
	"context"
	"net"
	"time"

	"github.com/jackpal/gateway"
	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// Pinger answers whether a host currently responds to pings. Injected
// so tests can fake reachability.
type Pinger interface {
	Reachable(ctx context.Context, ip net.IP) bool
}

// ICMPPinger pings with pro-bing. Privileged mode uses raw sockets and
// is required on most hosts unless ping_group_range is configured.
type ICMPPinger struct {
	Count      int
	Timeout    time.Duration
	Privileged bool
}

func (p *ICMPPinger) Reachable(ctx context.Context, ip net.IP) bool {
	pinger, err := probing.NewPinger(ip.String())
	if err != nil {
		return false
	}
	count := p.Count
	if count <= 0 {
		count = 3
	}
	pinger.Count = count
	pinger.Interval = 200 * time.Millisecond
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	pinger.Timeout = timeout
	pinger.SetPrivileged(p.Privileged)

	if err := pinger.RunWithContext(ctx); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

// Monitor polls the default gateway and invokes onChange on every
// reachability flip.
type Monitor struct {
	logger   *zap.Logger
	pinger   Pinger
	gateway  net.IP // fixed target; discovered per pass when nil
	interval time.Duration
	onChange func(reachable bool)

	known     bool
	reachable bool
}

func New(logger *zap.Logger, pinger Pinger, gw net.IP, interval time.Duration, onChange func(reachable bool)) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		logger:   logger,
		pinger:   pinger,
		gateway:  gw,
		interval: interval,
		onChange: onChange,
	}
}

// Run does an immediate pass, then one per tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.checkOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("linkmon_stopped")
			return
		case <-t.C:
			m.checkOnce(ctx)
		}
	}
}

func (m *Monitor) checkOnce(ctx context.Context) {
	gw := m.gateway
	if gw == nil {
		discovered, err := gateway.DiscoverGateway()
		if err != nil {
			m.logger.Warn("gateway_discovery_failed", zap.Error(err))
			return
		}
		gw = discovered
	}

	reachable := m.pinger.Reachable(ctx, gw)
	if m.known && reachable == m.reachable {
		return
	}
	first := !m.known
	m.known = true
	m.reachable = reachable
	m.logger.Info("gateway_reachability",
		zap.String("gateway", gw.String()),
		zap.Bool("reachable", reachable),
	)
	// The initial observation is a baseline, not a flip.
	if !first && m.onChange != nil {
		m.onChange(reachable)
	}
}
