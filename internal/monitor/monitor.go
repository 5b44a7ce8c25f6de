package monitor

import (
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/probe"
)

// Prober is the slice of the portal prober the monitor drives. The
// concrete type is *probe.Prober; tests substitute a fake.
type Prober interface {
	Start(httpOnly bool, family probe.IPFamily, dnsServers []net.IP, onResult func(probe.Result))
	Stop()
	Reset()
	ResetAttemptDelays()
	IsRunning() bool
}

// Monitor owns at most one prober for one network interface and decides,
// per triggering reason, whether to reuse it, replace it, or skip the
// pending backoff before starting a new attempt.
type Monitor struct {
	logger    *zap.Logger
	ifName    string
	httpOnly  bool
	newProber func() Prober
	onResult  func(probe.Result)

	mu     sync.Mutex
	prober Prober
}

// NewMonitor builds a monitor for one interface. newProber is called
// whenever a fresh prober is needed; onResult receives every completed
// attempt's Result unchanged.
func NewMonitor(logger *zap.Logger, ifName string, httpOnly bool, newProber func() Prober, onResult func(probe.Result)) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		logger:    logger.With(zap.String("interface", ifName)),
		ifName:    ifName,
		httpOnly:  httpOnly,
		newProber: newProber,
		onResult:  onResult,
	}
}

// Start requests validation for the given reason. It returns false only
// when no DNS servers are configured; in every other case a result will
// eventually be delivered (from the attempt started here or from the
// one already in flight).
func (m *Monitor) Start(reason Reason, family probe.IPFamily, dnsServers []net.IP) bool {
	if len(dnsServers) == 0 {
		m.logger.Warn("validation_skipped_no_dns", zap.String("reason", reason.String()))
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// A new network invalidates the attempt counter and sticky URL; any
	// other reason keeps the existing prober's rotation state.
	if m.prober == nil || reason == ReasonNetworkUpdate {
		if m.prober != nil {
			m.prober.Stop()
		}
		m.prober = m.newProber()
	}

	if reason.resetsAttemptDelays() {
		m.prober.ResetAttemptDelays()
	}

	if m.prober.IsRunning() {
		// Coalesce: the in-flight attempt's callback covers this
		// request too.
		m.logger.Debug("validation_coalesced", zap.String("reason", reason.String()))
		return true
	}

	m.logger.Info("validation_started",
		zap.String("reason", reason.String()),
		zap.String("family", family.String()),
		zap.Int("dns_servers", len(dnsServers)),
	)
	m.prober.Start(m.httpOnly, family, dnsServers, m.onResult)
	return true
}

// Stop cancels any in-flight attempt and drops the prober.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prober == nil {
		return
	}
	m.prober.Stop()
	m.prober = nil
	m.logger.Info("monitor_stopped")
}

// IsRunning reports whether a validation attempt is in flight.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prober != nil && m.prober.IsRunning()
}
