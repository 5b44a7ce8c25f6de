// portalcheck runs a single validation attempt and prints the verdict
// as JSON. Exit code 0 means internet connectivity; 1 means a portal or
// no connectivity; 2 means the check could not run.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nettield/portalwatch/internal/config"
	"github.com/nettield/portalwatch/internal/probe"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if len(cfg.DNSServers) == 0 {
		fmt.Fprintln(os.Stderr, "no DNS servers configured")
		os.Exit(2)
	}

	urls := probe.DefaultURLConfig()
	if cfg.ProbeHTTPURL != "" {
		urls.HTTPURL = cfg.ProbeHTTPURL
	}
	if cfg.ProbeHTTPSURL != "" {
		urls.HTTPSURL = cfg.ProbeHTTPSURL
	}

	p := probe.New(probe.Config{
		Client: probe.NewHTTPClient(cfg.ProbeTimeout),
		URLs:   urls,
		Logger: zap.NewNop(),
	})

	family := probe.FamilyIPv4
	if cfg.IPv6 {
		family = probe.FamilyIPv6
	}

	ch := make(chan probe.Result, 1)
	p.Start(cfg.HTTPOnly, family, cfg.DNSServers, func(r probe.Result) { ch <- r })

	select {
	case r := <-ch:
		_ = json.NewEncoder(os.Stdout).Encode(map[string]any{
			"state":  r.ValidationState().String(),
			"result": r,
		})
		if r.ValidationState() != probe.StateInternetConnectivity {
			os.Exit(1)
		}
	case <-time.After(cfg.ProbeTimeout + 5*time.Second):
		fmt.Fprintln(os.Stderr, "probe attempt did not complete")
		os.Exit(2)
	}
}
