package service

import (
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/monitor"
	"github.com/nettield/portalwatch/internal/probe"
	"github.com/nettield/portalwatch/internal/vlog"
)

// ConnState is the validation-relevant slice of a service's connection
// state machine. Pre-connection states (idle, associating, configuring)
// belong to technology-specific logic and never appear here.
type ConnState int

const (
	// StateConnected: the network is up but validation has not
	// concluded yet.
	StateConnected ConnState = iota
	StateNoConnectivity
	StateRedirectFound
	StateOnline
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateNoConnectivity:
		return "no_connectivity"
	case StateRedirectFound:
		return "redirect_found"
	case StateOnline:
		return "online"
	}
	return "connected"
}

// Validator is the monitor surface the service drives; tests substitute
// a fake for *monitor.Monitor.
type Validator interface {
	Start(reason monitor.Reason, family probe.IPFamily, dnsServers []net.IP) bool
	Stop()
}

// Listener observes state changes. Called outside the service lock.
type Listener func(name string, state ConnState, portalURL string)

// Service adapts validation results onto a connection state machine and
// owns the retry loop that keeps revalidating until the verdict is
// online.
type Service struct {
	logger        *zap.Logger
	name          string
	newMonitor    func(ifName string, onResult func(probe.Result)) Validator
	retryInterval time.Duration

	mu         sync.Mutex
	ifIndex    int
	ifName     string
	family     probe.IPFamily
	dnsServers []net.IP
	state      ConnState
	portalURL  string
	mon        Validator
	history    *vlog.Log
	retryTimer *time.Timer
	listeners  []Listener
}

// New builds a service. newMonitor is invoked once per attached network.
func New(logger *zap.Logger, name string, newMonitor func(ifName string, onResult func(probe.Result)) Validator, retryInterval time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retryInterval <= 0 {
		retryInterval = time.Second
	}
	return &Service{
		logger:        logger.With(zap.String("service", name)),
		name:          name,
		newMonitor:    newMonitor,
		retryInterval: retryInterval,
		state:         StateConnected,
		history:       vlog.New(0),
	}
}

// AttachNetwork binds the service to a freshly provisioned network and
// kicks off validation. Any previous network's monitor is stopped and
// its late results are dropped by the interface-index guard.
func (s *Service) AttachNetwork(ifIndex int, ifName string, family probe.IPFamily, dnsServers []net.IP) bool {
	s.mu.Lock()
	s.stopLocked()
	s.ifIndex = ifIndex
	s.ifName = ifName
	s.family = family
	s.dnsServers = dnsServers
	s.state = StateConnected
	s.portalURL = ""
	s.history = vlog.New(0)
	idx := ifIndex
	s.mon = s.newMonitor(ifName, func(r probe.Result) {
		s.onValidationResult(idx, r)
	})
	s.mu.Unlock()

	return s.RequestValidation(monitor.ReasonNetworkUpdate)
}

// Detach stops validation and unbinds the network. The session's
// validation aggregates are flushed to the log before they are dropped
// with the next AttachNetwork.
func (s *Service) Detach() {
	s.mu.Lock()
	s.stopLocked()
	s.ifIndex = 0
	s.ifName = ""
	s.dnsServers = nil
	sum := s.history.Summary()
	s.mu.Unlock()

	s.logger.Info("validation_session_summary",
		zap.Int("attempts", sum.Attempts),
		zap.Int("portal_sightings", sum.PortalSightings),
		zap.Bool("online_reached", sum.OnlineReached),
		zap.Duration("time_to_online", sum.TimeToOnline),
	)
}

// RequestValidation asks the monitor to (re)validate. A request that
// cannot start at all counts as no connectivity.
func (s *Service) RequestValidation(reason monitor.Reason) bool {
	s.mu.Lock()
	mon := s.mon
	family := s.family
	dns := s.dnsServers
	s.mu.Unlock()
	if mon == nil {
		return false
	}

	if !mon.Start(reason, family, dns) {
		s.logger.Warn("validation_start_failed", zap.String("reason", reason.String()))
		s.setState(StateNoConnectivity, "")
		return false
	}
	return true
}

// OnStateChange registers a state-change listener.
func (s *Service) OnStateChange(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Service) Name() string { return s.name }

// State returns the current connection state.
func (s *Service) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// PortalURL returns the sign-in URL discovered during detection, if any.
func (s *Service) PortalURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portalURL
}

// History returns the session's validation log.
func (s *Service) History() *vlog.Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history
}

// Status is the snapshot exposed over the control API.
type Status struct {
	Name      string `json:"name"`
	Interface string `json:"interface,omitempty"`
	State     string `json:"state"`
	PortalURL string `json:"portal_url,omitempty"`
	Attempts  int    `json:"attempts"`
}

func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Name:      s.name,
		Interface: s.ifName,
		State:     s.state.String(),
		PortalURL: s.portalURL,
		Attempts:  s.history.Summary().Attempts,
	}
}

func (s *Service) onValidationResult(ifIndex int, r probe.Result) {
	s.mu.Lock()
	if ifIndex != s.ifIndex {
		s.logger.Debug("stale_validation_result",
			zap.Int("result_ifindex", ifIndex),
			zap.Int("current_ifindex", s.ifIndex),
		)
		s.mu.Unlock()
		return
	}
	s.history.Append(r)
	s.mu.Unlock()

	state := r.ValidationState()
	s.logger.Info("validation_result",
		zap.Int("attempt", r.AttemptCount),
		zap.String("state", state.String()),
		zap.String("http_outcome", r.HTTPOutcome.String()),
		zap.String("https_outcome", r.HTTPSOutcome.String()),
	)

	switch state {
	case probe.StateInternetConnectivity:
		s.setState(StateOnline, "")
	case probe.StatePortalRedirect, probe.StatePortalSuspected:
		s.setState(StateRedirectFound, r.RedirectURL)
		s.scheduleRetry(ifIndex)
	default:
		s.setState(StateNoConnectivity, "")
		s.scheduleRetry(ifIndex)
	}
}

func (s *Service) setState(state ConnState, portalURL string) {
	s.mu.Lock()
	changed := s.state != state || s.portalURL != portalURL
	s.state = state
	s.portalURL = portalURL
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	if !changed {
		return
	}
	s.logger.Info("connection_state", zap.String("state", state.String()), zap.String("portal_url", portalURL))
	for _, l := range listeners {
		l(s.name, state, portalURL)
	}
}

// scheduleRetry arms a short timer toward the next attempt; the prober
// applies its own exponential delay on top, so this only needs to get
// Start called again.
func (s *Service) scheduleRetry(ifIndex int) {
	s.mu.Lock()
	if s.retryTimer != nil {
		s.retryTimer.Stop()
	}
	s.retryTimer = time.AfterFunc(s.retryInterval, func() {
		s.mu.Lock()
		stale := ifIndex != s.ifIndex
		s.mu.Unlock()
		if stale {
			return
		}
		s.RequestValidation(monitor.ReasonRetryValidation)
	})
	s.mu.Unlock()
}

func (s *Service) stopLocked() {
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	if s.mon != nil {
		s.mon.Stop()
		s.mon = nil
	}
}
