package probe

import (
	"errors"
	"net/http"
	"testing"
)

func replyWith(status int, contentLength int64, location string) *Reply {
	h := http.Header{}
	if location != "" {
		h.Set("Location", location)
	}
	return &Reply{StatusCode: status, Header: h, ContentLength: contentLength}
}

func TestClassifyHTTP_NoContent(t *testing.T) {
	st := classifyHTTP("http://probe.example/gen204", replyWith(204, 0, ""), nil)
	if st.outcome != OutcomeSuccess {
		t.Fatalf("want success, got %v", st.outcome)
	}
}

func TestClassifyHTTP_EmptyOK(t *testing.T) {
	for _, cl := range []int64{0, 1} {
		st := classifyHTTP("http://probe.example/gen204", replyWith(200, cl, ""), nil)
		if st.outcome != OutcomeSuccess {
			t.Fatalf("content-length %d: want success, got %v", cl, st.outcome)
		}
	}
}

func TestClassifyHTTP_ContentMeansPortalSuspected(t *testing.T) {
	st := classifyHTTP("http://probe.example/gen204", replyWith(200, 512, ""), nil)
	if st.outcome != OutcomePortalSuspected {
		t.Fatalf("want portal_suspected, got %v", st.outcome)
	}
	if st.redirectURL != "http://probe.example/gen204" {
		t.Fatalf("suspected portal should capture the probe URL, got %q", st.redirectURL)
	}
}

func TestClassifyHTTP_UnknownLength(t *testing.T) {
	st := classifyHTTP("http://probe.example/gen204", replyWith(200, -1, ""), nil)
	if st.outcome != OutcomeFailure {
		t.Fatalf("want failure for unknown content length, got %v", st.outcome)
	}
}

func TestClassifyHTTP_Redirects(t *testing.T) {
	for _, status := range []int{301, 302, 303, 307, 308} {
		st := classifyHTTP("http://probe.example/gen204", replyWith(status, 0, "https://portal.example/login"), nil)
		if st.outcome != OutcomePortalRedirect {
			t.Fatalf("status %d: want portal_redirect, got %v", status, st.outcome)
		}
		if st.redirectURL != "https://portal.example/login" {
			t.Fatalf("status %d: redirect url %q", status, st.redirectURL)
		}
	}
}

func TestClassifyHTTP_RedirectWithoutLocation(t *testing.T) {
	cases := []string{"", "not a url", "/relative/path"}
	for _, loc := range cases {
		st := classifyHTTP("http://probe.example/gen204", replyWith(302, 0, loc), nil)
		if st.outcome != OutcomePortalInvalidRedirect {
			t.Fatalf("location %q: want portal_invalid_redirect, got %v", loc, st.outcome)
		}
	}
}

func TestClassifyHTTP_OtherStatus(t *testing.T) {
	for _, status := range []int{403, 404, 500, 503} {
		st := classifyHTTP("http://probe.example/gen204", replyWith(status, 0, ""), nil)
		if st.outcome != OutcomeFailure {
			t.Fatalf("status %d: want failure, got %v", status, st.outcome)
		}
	}
}

func TestClassifyHTTP_TransportErrors(t *testing.T) {
	cases := []struct {
		kind TransportErrorKind
		want Outcome
	}{
		{TransportDNSFailure, OutcomeDNSFailure},
		{TransportDNSTimeout, OutcomeDNSTimeout},
		{TransportTLSFailure, OutcomeTLSFailure},
		{TransportConnectionFailure, OutcomeConnectionFailure},
		{TransportTimeout, OutcomeHTTPTimeout},
	}
	for _, c := range cases {
		st := classifyHTTP("http://probe.example/gen204", nil, &TransportError{Kind: c.kind})
		if st.outcome != c.want {
			t.Fatalf("kind %v: want %v, got %v", c.kind, c.want, st.outcome)
		}
	}
}

func TestClassifyHTTP_UntypedError(t *testing.T) {
	st := classifyHTTP("http://probe.example/gen204", nil, errors.New("transport exploded"))
	if st.outcome != OutcomeFailure {
		t.Fatalf("want generic failure, got %v", st.outcome)
	}
}

func TestClassifyHTTPS_AnyResponseIsSuccess(t *testing.T) {
	for _, status := range []int{200, 204, 302, 403, 500} {
		st := classifyHTTPS(replyWith(status, 99, ""), nil)
		if st.outcome != OutcomeSuccess {
			t.Fatalf("status %d: want success, got %v", status, st.outcome)
		}
	}
}

func TestClassifyHTTPS_TransportError(t *testing.T) {
	st := classifyHTTPS(nil, &TransportError{Kind: TransportConnectionFailure})
	if st.outcome != OutcomeConnectionFailure {
		t.Fatalf("want connection_failure, got %v", st.outcome)
	}
}
