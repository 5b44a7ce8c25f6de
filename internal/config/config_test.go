package config

import (
	"os"
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("SERVICE_NAME", "wifi_home")
	t.Setenv("INTERFACE", "wlan0")
	t.Setenv("IF_INDEX", "7")
	t.Setenv("DNS_SERVERS", "1.1.1.1, 9.9.9.9")
	t.Setenv("HTTP_ONLY", "true")
	t.Setenv("PROBE_HTTP_URL", "http://probe.example/gen204")
	t.Setenv("PROBE_HTTPS_URL", "https://probe.example/gen204")
	t.Setenv("FALLBACK_HTTP_URLS", "http://f1.example/gen204,http://f2.example/gen204")
	t.Setenv("PROBE_TIMEOUT_MS", "1234")
	t.Setenv("MIN_ATTEMPT_DELAY_MS", "250")
	t.Setenv("MAX_ATTEMPT_DELAY_MS", "60000")
	t.Setenv("GATEWAY_ADDR", "192.168.1.1")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if cfg.ServiceName != "wifi_home" || cfg.Interface != "wlan0" || cfg.IfIndex != 7 {
		t.Fatalf("service identity wrong: %+v", cfg)
	}
	if len(cfg.DNSServers) != 2 || cfg.DNSServers[0].String() != "1.1.1.1" {
		t.Fatalf("dns servers wrong: %v", cfg.DNSServers)
	}
	if !cfg.HTTPOnly {
		t.Fatalf("http_only wrong: %+v", cfg)
	}
	if cfg.ProbeHTTPURL != "http://probe.example/gen204" || len(cfg.FallbackHTTPURLs) != 2 {
		t.Fatalf("probe urls wrong: %+v", cfg)
	}
	if cfg.ProbeTimeout != 1234*time.Millisecond || cfg.MinAttemptDelay != 250*time.Millisecond {
		t.Fatalf("durations wrong: %+v", cfg)
	}
	if cfg.GatewayAddr == nil || cfg.GatewayAddr.String() != "192.168.1.1" {
		t.Fatalf("gateway wrong: %v", cfg.GatewayAddr)
	}

	// ensure defaults don't crash if missing env
	os.Unsetenv("ADDR")
	_ = FromEnv()
}

func TestFromEnv_DNSDefaults(t *testing.T) {
	t.Setenv("DNS_SERVERS", "")
	cfg := FromEnv()
	if len(cfg.DNSServers) == 0 {
		t.Fatal("expected default DNS servers")
	}
}

func TestFromEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("IF_INDEX", "not-a-number")
	t.Setenv("PROBE_TIMEOUT_MS", "-5")
	t.Setenv("DNS_SERVERS", "not-an-ip")
	cfg := FromEnv()
	if cfg.IfIndex != 1 {
		t.Fatalf("bad IF_INDEX should fall back, got %d", cfg.IfIndex)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Fatalf("bad timeout should fall back, got %v", cfg.ProbeTimeout)
	}
	if len(cfg.DNSServers) == 0 {
		t.Fatal("unparseable DNS entries should fall back to defaults")
	}
}
