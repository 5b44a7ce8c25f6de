package probe

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// probeState is the immutable outcome of one finished probe. The HTTP
// and HTTPS probes each produce their own value; they are only combined
// into a Result once the attempt is complete.
type probeState struct {
	done          bool
	outcome       Outcome
	status        int
	contentLength int64
	redirectURL   string
	duration      time.Duration
}

func classifyHTTP(probeURL string, reply *Reply, err error) probeState {
	if err != nil {
		return probeState{outcome: outcomeFromError(err)}
	}
	st := probeState{status: reply.StatusCode, contentLength: reply.ContentLength}
	switch reply.StatusCode {
	case http.StatusNoContent:
		st.outcome = OutcomeSuccess
	case http.StatusOK:
		switch {
		case reply.ContentLength == 0 || reply.ContentLength == 1:
			// Some portals and transparent proxies rewrite the 204 into
			// an empty 200; treat it as the same signal.
			st.outcome = OutcomeSuccess
		case reply.ContentLength > 1:
			st.outcome = OutcomePortalSuspected
			st.redirectURL = probeURL
		default:
			st.outcome = OutcomeFailure
		}
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		loc := reply.Header.Get("Location")
		if u, perr := url.Parse(loc); perr == nil && u.IsAbs() && u.Host != "" {
			st.outcome = OutcomePortalRedirect
			st.redirectURL = loc
		} else {
			st.outcome = OutcomePortalInvalidRedirect
		}
	default:
		st.outcome = OutcomeFailure
	}
	return st
}

// classifyHTTPS is binary: a portal cannot tamper with HTTPS content,
// so any completed response at all means the network reached the server.
func classifyHTTPS(reply *Reply, err error) probeState {
	if err != nil {
		return probeState{outcome: outcomeFromError(err)}
	}
	return probeState{
		outcome:       OutcomeSuccess,
		status:        reply.StatusCode,
		contentLength: reply.ContentLength,
	}
}

func outcomeFromError(err error) Outcome {
	var te *TransportError
	if !errors.As(err, &te) {
		return OutcomeFailure
	}
	switch te.Kind {
	case TransportDNSFailure:
		return OutcomeDNSFailure
	case TransportDNSTimeout:
		return OutcomeDNSTimeout
	case TransportTLSFailure:
		return OutcomeTLSFailure
	case TransportConnectionFailure:
		return OutcomeConnectionFailure
	case TransportTimeout:
		return OutcomeHTTPTimeout
	}
	return OutcomeFailure
}
