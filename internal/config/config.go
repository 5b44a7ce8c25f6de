package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr   string // control API bind address
	LogDir string // logs directory

	ServiceName string // logical service name, e.g. "eth0"
	Interface   string // network interface the service is attached to
	IfIndex     int    // interface index used for stale-result guarding

	DNSServers []net.IP // resolvers used by probes; validation refuses to run without them
	IPv6       bool     // probe over IPv6 instead of IPv4
	HTTPOnly   bool     // skip the HTTPS probe (legacy networks)

	ProbeHTTPURL      string
	ProbeHTTPSURL     string
	FallbackHTTPURLs  []string
	FallbackHTTPSURLs []string

	ProbeTimeout    time.Duration // per-probe timeout
	MinAttemptDelay time.Duration // backoff lower bound between attempts
	MaxAttemptDelay time.Duration // backoff upper bound
	RetryInterval   time.Duration // delay before rearming validation after a failure

	GatewayPingInterval time.Duration // link monitor poll interval
	GatewayAddr         net.IP        // overrides gateway discovery when set

	SlackWebhook  string
	AlertCooldown time.Duration

	PublicRPM   int // API rate limit, requests per minute
	PublicBurst int
}

func FromEnv() Config {
	cfg := Config{
		Addr:                getStr("ADDR", "127.0.0.1:8089"),
		LogDir:              getStr("LOG_DIR", "logs"),
		ServiceName:         getStr("SERVICE_NAME", "default"),
		Interface:           getStr("INTERFACE", ""),
		IfIndex:             getInt("IF_INDEX", 1),
		IPv6:                getBool("IPV6", false),
		HTTPOnly:            getBool("HTTP_ONLY", false),
		ProbeHTTPURL:        getStr("PROBE_HTTP_URL", ""),
		ProbeHTTPSURL:       getStr("PROBE_HTTPS_URL", ""),
		FallbackHTTPURLs:    splitList(os.Getenv("FALLBACK_HTTP_URLS")),
		FallbackHTTPSURLs:   splitList(os.Getenv("FALLBACK_HTTPS_URLS")),
		ProbeTimeout:        getMS("PROBE_TIMEOUT_MS", 10*time.Second),
		MinAttemptDelay:     getMS("MIN_ATTEMPT_DELAY_MS", 3*time.Second),
		MaxAttemptDelay:     getMS("MAX_ATTEMPT_DELAY_MS", 5*time.Minute),
		RetryInterval:       getMS("RETRY_INTERVAL_MS", time.Second),
		GatewayPingInterval: getMS("GATEWAY_PING_INTERVAL_MS", 30*time.Second),
		SlackWebhook:        getStr("SLACK_WEBHOOK", ""),
		AlertCooldown:       getMS("ALERT_COOLDOWN_MS", 10*time.Minute),
		PublicRPM:           getInt("PUBLIC_RPM", 120),
		PublicBurst:         getInt("PUBLIC_BURST", 60),
	}

	for _, s := range splitList(os.Getenv("DNS_SERVERS")) {
		if ip := net.ParseIP(s); ip != nil {
			cfg.DNSServers = append(cfg.DNSServers, ip)
		}
	}
	if len(cfg.DNSServers) == 0 {
		cfg.DNSServers = []net.IP{net.ParseIP("8.8.8.8"), net.ParseIP("8.8.4.4")}
	}
	if gw := os.Getenv("GATEWAY_ADDR"); gw != "" {
		cfg.GatewayAddr = net.ParseIP(gw)
	}
	return cfg
}

func getStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getMS(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
