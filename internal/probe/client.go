package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
)

// IPFamily selects the address family probes are issued over.
type IPFamily int

const (
	FamilyIPv4 IPFamily = iota
	FamilyIPv6
)

func (f IPFamily) String() string {
	if f == FamilyIPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// TransportErrorKind is the closed set of transport-level failures a
// probe client may report.
type TransportErrorKind int

const (
	TransportDNSFailure TransportErrorKind = iota
	TransportDNSTimeout
	TransportTLSFailure
	TransportConnectionFailure
	TransportTimeout
)

func (k TransportErrorKind) String() string {
	switch k {
	case TransportDNSFailure:
		return "dns_failure"
	case TransportDNSTimeout:
		return "dns_timeout"
	case TransportTLSFailure:
		return "tls_failure"
	case TransportConnectionFailure:
		return "connection_failure"
	case TransportTimeout:
		return "timeout"
	}
	return "unknown"
}

// TransportError wraps an underlying transport failure with its kind so
// the prober can classify it without inspecting library error types.
type TransportError struct {
	Kind TransportErrorKind
	Err  error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Request describes a single probe GET.
type Request struct {
	URL        string
	IPFamily   IPFamily
	DNSServers []net.IP
}

// Reply is the successful side of a probe request. ContentLength is -1
// when the response carried no usable length.
type Reply struct {
	StatusCode    int
	Header        http.Header
	ContentLength int64
}

// Client issues a single cancellable probe GET. Implementations must
// return either a Reply or a *TransportError; any other error is
// treated as a generic failure by the prober.
type Client interface {
	Do(ctx context.Context, req Request) (*Reply, error)
}
