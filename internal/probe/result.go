package probe

import "time"

// Result is the value produced once per attempt and handed to the
// caller's callback. It is passed by value; the prober keeps no
// reference to it after delivery.
type Result struct {
	HTTPOutcome  Outcome `json:"http_outcome"`
	HTTPSOutcome Outcome `json:"https_outcome"`

	HTTPStatus    int   `json:"http_status,omitempty"`
	ContentLength int64 `json:"content_length"`

	// RedirectURL is the portal sign-in URL: the Location header target
	// for an explicit redirect, or the probe URL itself for a suspected
	// portal.
	RedirectURL string `json:"redirect_url,omitempty"`
	ProbeURL    string `json:"probe_url"`

	AttemptCount int `json:"attempt_count"`

	HTTPDuration  time.Duration `json:"http_duration"`
	HTTPSDuration time.Duration `json:"https_duration"`

	HTTPOnly       bool `json:"http_only"`
	HTTPCompleted  bool `json:"http_completed"`
	HTTPSCompleted bool `json:"https_completed"`
}

// ValidationState derives the connectivity verdict. In HTTP-only mode a
// non-portal outcome is always reported as internet connectivity: with
// the HTTPS signal disabled a transport failure is not trustworthy
// evidence of a dead network.
func (r Result) ValidationState() ValidationState {
	switch r.HTTPOutcome {
	case OutcomePortalRedirect:
		return StatePortalRedirect
	case OutcomePortalSuspected:
		return StatePortalSuspected
	}
	if r.HTTPOnly {
		return StateInternetConnectivity
	}
	if r.HTTPOutcome == OutcomeSuccess && r.HTTPSOutcome == OutcomeSuccess {
		return StateInternetConnectivity
	}
	return StateNoConnectivity
}
