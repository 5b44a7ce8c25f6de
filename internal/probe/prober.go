package probe

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMinAttemptDelay = 3 * time.Second
	DefaultMaxAttemptDelay = 5 * time.Minute
)

// Config carries the prober's immutable construction parameters.
type Config struct {
	Client Client
	URLs   URLConfig

	// Bounds for the advisory exponential delay applied between
	// attempts. Zero values fall back to the package defaults.
	MinAttemptDelay time.Duration
	MaxAttemptDelay time.Duration

	Logger *zap.Logger
}

// Prober runs one validation attempt at a time: an HTTP probe plus,
// unless HTTP-only mode is requested, a concurrent HTTPS probe. The
// attempt resolves to exactly one Result delivered via callback; no
// error ever crosses the prober boundary.
type Prober struct {
	client   Client
	urls     URLConfig
	minDelay time.Duration
	maxDelay time.Duration
	logger   *zap.Logger

	mu sync.Mutex
	// generation invalidates in-flight probe deliveries: it is bumped
	// on Stop, Reset and attempt completion, and every probe goroutine
	// carries the generation it was started under.
	generation uint64
	running    bool
	attempt    int
	nextDelay  time.Duration
	stickyURL  string

	timer      *time.Timer
	cancel     context.CancelFunc
	httpOnly   bool
	httpURL    string
	httpsURL   string
	httpProbe  probeState
	httpsProbe probeState
	onResult   func(Result)
}

// New builds a Prober. cfg.Client is required; everything else has
// sensible defaults.
func New(cfg Config) *Prober {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MinAttemptDelay <= 0 {
		cfg.MinAttemptDelay = DefaultMinAttemptDelay
	}
	if cfg.MaxAttemptDelay <= 0 {
		cfg.MaxAttemptDelay = DefaultMaxAttemptDelay
	}
	if cfg.URLs.HTTPURL == "" {
		cfg.URLs = DefaultURLConfig()
	}
	return &Prober{
		client:   cfg.Client,
		urls:     cfg.URLs,
		minDelay: cfg.MinAttemptDelay,
		maxDelay: cfg.MaxAttemptDelay,
		logger:   cfg.Logger,
	}
}

// Start begins a new attempt. It is a logged no-op while an attempt is
// in flight. The result is delivered asynchronously, exactly once, via
// onResult, unless the attempt is cancelled by Stop or Reset first.
func (p *Prober) Start(httpOnly bool, family IPFamily, dnsServers []net.IP, onResult func(Result)) {
	p.mu.Lock()
	if p.running {
		p.logger.Info("probe_already_running", zap.Int("attempt", p.attempt))
		p.mu.Unlock()
		return
	}
	p.attempt++
	p.running = true
	p.generation++
	gen := p.generation
	p.httpOnly = httpOnly
	p.onResult = onResult
	p.httpProbe = probeState{}
	p.httpsProbe = probeState{}

	p.httpURL = p.stickyURL
	if p.httpURL == "" {
		p.httpURL = pickProbeURL(p.attempt, p.urls.HTTPURL, p.urls.FallbackHTTPURLs)
	}
	p.httpsURL = pickProbeURL(p.attempt, p.urls.HTTPSURL, p.urls.FallbackHTTPSURLs)

	delay := p.takeAttemptDelay()
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Info("probe_attempt_scheduled",
		zap.Int("attempt", p.attempt),
		zap.String("http_url", p.httpURL),
		zap.String("https_url", p.httpsURL),
		zap.Bool("http_only", httpOnly),
		zap.Duration("delay", delay),
	)
	p.timer = time.AfterFunc(delay, func() {
		p.launch(ctx, gen, family, dnsServers)
	})
	p.mu.Unlock()
}

// Stop cancels the in-flight attempt, if any, without invoking the
// callback. The attempt counter is preserved so a later Start keeps
// incrementing it.
func (p *Prober) Stop() {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()
}

// Reset is Stop plus forgetting the attempt counter and the sticky
// redirect URL, returning the prober to its initial rotation.
func (p *Prober) Reset() {
	p.mu.Lock()
	p.stopLocked()
	p.attempt = 0
	p.stickyURL = ""
	p.mu.Unlock()
}

// ResetAttemptDelays clears the exponential delay schedule so the next
// Start fires immediately. In-flight attempts and the attempt counter
// are unaffected.
func (p *Prober) ResetAttemptDelays() {
	p.mu.Lock()
	p.nextDelay = 0
	p.mu.Unlock()
}

// IsRunning reports whether an attempt is in flight.
func (p *Prober) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// AttemptCount returns the number of attempts started since the last
// Reset.
func (p *Prober) AttemptCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempt
}

func (p *Prober) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.running = false
	p.onResult = nil
	p.generation++
}

// takeAttemptDelay returns the delay for the attempt being started and
// advances the schedule: 0, min, 2*min, ... capped at max.
func (p *Prober) takeAttemptDelay() time.Duration {
	d := p.nextDelay
	if d == 0 {
		p.nextDelay = p.minDelay
	} else if d < p.maxDelay {
		p.nextDelay = min(2*d, p.maxDelay)
	}
	return d
}

func (p *Prober) launch(ctx context.Context, gen uint64, family IPFamily, dnsServers []net.IP) {
	p.mu.Lock()
	if gen != p.generation {
		p.mu.Unlock()
		return
	}
	httpURL, httpsURL, httpOnly := p.httpURL, p.httpsURL, p.httpOnly
	p.mu.Unlock()

	go p.runProbe(ctx, gen, false, Request{URL: httpURL, IPFamily: family, DNSServers: dnsServers})
	if !httpOnly {
		go p.runProbe(ctx, gen, true, Request{URL: httpsURL, IPFamily: family, DNSServers: dnsServers})
	}
}

func (p *Prober) runProbe(ctx context.Context, gen uint64, https bool, req Request) {
	start := time.Now()
	reply, err := p.client.Do(ctx, req)
	var st probeState
	if https {
		st = classifyHTTPS(reply, err)
	} else {
		st = classifyHTTP(req.URL, reply, err)
	}
	st.done = true
	st.duration = time.Since(start)
	p.finishProbe(gen, https, st)
}

func (p *Prober) finishProbe(gen uint64, https bool, st probeState) {
	p.mu.Lock()
	if gen != p.generation || !p.running {
		// Stale delivery: the attempt was stopped, reset, or already
		// resolved without this probe.
		p.mu.Unlock()
		return
	}
	if https {
		p.httpsProbe = st
	} else {
		p.httpProbe = st
	}
	if !p.attemptCompleteLocked() {
		p.mu.Unlock()
		return
	}

	res := p.resultLocked()
	if res.HTTPOutcome.IsPortal() {
		// Keep probing the URL that actually tripped the portal.
		p.stickyURL = res.ProbeURL
	}
	cb := p.onResult
	p.running = false
	p.onResult = nil
	p.timer = nil
	// A slower sibling probe may still be on the wire; bumping the
	// generation drops its delivery without tearing down its transport.
	p.generation++
	p.logger.Info("probe_attempt_complete",
		zap.Int("attempt", res.AttemptCount),
		zap.String("http_outcome", res.HTTPOutcome.String()),
		zap.String("https_outcome", res.HTTPSOutcome.String()),
		zap.String("state", res.ValidationState().String()),
		zap.String("redirect_url", res.RedirectURL),
	)
	p.mu.Unlock()

	if cb != nil {
		cb(res)
	}
}

// attemptCompleteLocked implements the early-completion rule: a portal
// verdict from the HTTP probe resolves the attempt without waiting for
// the slower HTTPS probe.
func (p *Prober) attemptCompleteLocked() bool {
	if p.httpProbe.done && p.httpProbe.outcome.IsPortal() {
		return true
	}
	if p.httpOnly {
		return p.httpProbe.done
	}
	return p.httpProbe.done && p.httpsProbe.done
}

func (p *Prober) resultLocked() Result {
	return Result{
		HTTPOutcome:    p.httpProbe.outcome,
		HTTPSOutcome:   p.httpsProbe.outcome,
		HTTPStatus:     p.httpProbe.status,
		ContentLength:  p.httpProbe.contentLength,
		RedirectURL:    p.httpProbe.redirectURL,
		ProbeURL:       p.httpURL,
		AttemptCount:   p.attempt,
		HTTPDuration:   p.httpProbe.duration,
		HTTPSDuration:  p.httpsProbe.duration,
		HTTPOnly:       p.httpOnly,
		HTTPCompleted:  p.httpProbe.done,
		HTTPSCompleted: p.httpsProbe.done,
	}
}
