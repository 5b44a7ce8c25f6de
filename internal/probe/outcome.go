package probe

// Outcome classifies a single probe once it has finished (or failed to
// start). The set is closed: every transport error maps onto one of the
// failure kinds, so callers never see a raw error from a probe.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeSuccess
	OutcomeDNSFailure
	OutcomeDNSTimeout
	OutcomeTLSFailure
	OutcomeConnectionFailure
	OutcomeHTTPTimeout
	OutcomePortalSuspected
	OutcomePortalRedirect
	OutcomePortalInvalidRedirect
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnknown:
		return "unknown"
	case OutcomeSuccess:
		return "success"
	case OutcomeDNSFailure:
		return "dns_failure"
	case OutcomeDNSTimeout:
		return "dns_timeout"
	case OutcomeTLSFailure:
		return "tls_failure"
	case OutcomeConnectionFailure:
		return "connection_failure"
	case OutcomeHTTPTimeout:
		return "http_timeout"
	case OutcomePortalSuspected:
		return "portal_suspected"
	case OutcomePortalRedirect:
		return "portal_redirect"
	case OutcomePortalInvalidRedirect:
		return "portal_invalid_redirect"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

// IsPortal reports whether the outcome indicates a captive portal,
// either via an explicit redirect or via tampered 200 content.
func (o Outcome) IsPortal() bool {
	return o == OutcomePortalRedirect || o == OutcomePortalSuspected
}

// ValidationState is the user-facing connectivity verdict derived from a
// completed attempt Result.
type ValidationState int

const (
	StateNoConnectivity ValidationState = iota
	StatePortalSuspected
	StatePortalRedirect
	StateInternetConnectivity
)

func (s ValidationState) String() string {
	switch s {
	case StateNoConnectivity:
		return "no_connectivity"
	case StatePortalSuspected:
		return "portal_suspected"
	case StatePortalRedirect:
		return "portal_redirect"
	case StateInternetConnectivity:
		return "internet_connectivity"
	}
	return "no_connectivity"
}
