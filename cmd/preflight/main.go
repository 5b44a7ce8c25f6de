// cmd/preflight/main.go
package main

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	dns := strings.TrimSpace(os.Getenv("DNS_SERVERS"))
	if dns == "" {
		warn("DNS_SERVERS is empty — defaults will be used; validation refuses to run without resolvers.")
	} else {
		for _, s := range strings.Split(dns, ",") {
			if net.ParseIP(strings.TrimSpace(s)) == nil {
				fail("DNS_SERVERS contains an unparseable address: " + s)
			}
		}
		ok("DNS_SERVERS=" + dns)
	}

	for _, key := range []string{"PROBE_HTTP_URL", "PROBE_HTTPS_URL"} {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			continue
		}
		u, err := url.Parse(v)
		if err != nil || !u.IsAbs() || u.Host == "" {
			fail(key + " is not an absolute URL: " + v)
		}
		ok(key + "=" + v)
	}

	if gw := strings.TrimSpace(os.Getenv("GATEWAY_ADDR")); gw != "" {
		if net.ParseIP(gw) == nil {
			fail("GATEWAY_ADDR is not a valid IP: " + gw)
		}
		ok("GATEWAY_ADDR=" + gw)
	}

	if addr := strings.TrimSpace(os.Getenv("ADDR")); addr == "" {
		warn("ADDR is empty; the default bind address will be used.")
	} else {
		ok("ADDR=" + addr)
	}

	if strings.TrimSpace(os.Getenv("INTERFACE")) == "" {
		warn("INTERFACE empty — service will not be bound to a named interface.")
	}

	ok("preflight passed")
}
