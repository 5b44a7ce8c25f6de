package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodyRead caps how much of a probe response body is read when the
// server does not announce a Content-Length. Anything past one byte
// already classifies as portal-suspected, so the cap only bounds I/O.
const maxBodyRead = 64 << 10

// HTTPClient is the production Client: one GET per call, redirects are
// reported rather than followed, DNS goes through the servers named in
// the request.
type HTTPClient struct {
	timeout    time.Duration
	dnsTimeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{timeout: timeout, dnsTimeout: 3 * time.Second}
}

func (c *HTTPClient) Do(ctx context.Context, req Request) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	network := "tcp4"
	if req.IPFamily == FamilyIPv6 {
		network = "tcp6"
	}
	dialer := &net.Dialer{
		Timeout:  c.timeout,
		Resolver: c.resolverFor(req.DNSServers),
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		DisableKeepAlives: true,
		Proxy:             nil, // probes must see the raw network, never a proxy
	}
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(hreq)
	if err != nil {
		return nil, typeTransportError(err)
	}
	defer resp.Body.Close()

	length := resp.ContentLength
	if length < 0 {
		// No announced length: count what the server actually sends.
		n, rerr := io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyRead))
		if rerr == nil || n > 0 {
			length = n
		}
	} else {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyRead))
	}
	return &Reply{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		ContentLength: length,
	}, nil
}

// resolverFor builds a resolver that dials the given DNS servers in
// order, falling back to the system resolver when none are supplied.
func (c *HTTPClient) resolverFor(servers []net.IP) *net.Resolver {
	if len(servers) == 0 {
		return net.DefaultResolver
	}
	dnsTimeout := c.dnsTimeout
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: dnsTimeout}
			var lastErr error
			for _, s := range servers {
				conn, err := d.DialContext(ctx, network, net.JoinHostPort(s.String(), "53"))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			return nil, lastErr
		},
	}
}

// typeTransportError folds the zoo of net/http errors into the closed
// TransportError taxonomy.
func typeTransportError(err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return &TransportError{Kind: TransportDNSTimeout, Err: err}
		}
		return &TransportError{Kind: TransportDNSFailure, Err: err}
	}

	var (
		certInvalid x509.CertificateInvalidError
		unknownAuth x509.UnknownAuthorityError
		hostnameErr x509.HostnameError
		recordErr   tls.RecordHeaderError
		verifyErr   *tls.CertificateVerificationError
	)
	if errors.As(err, &certInvalid) || errors.As(err, &unknownAuth) ||
		errors.As(err, &hostnameErr) || errors.As(err, &recordErr) ||
		errors.As(err, &verifyErr) {
		return &TransportError{Kind: TransportTLSFailure, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}

	return &TransportError{Kind: TransportConnectionFailure, Err: err}
}
