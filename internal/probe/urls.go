package probe

import "math/rand"

// Default probe URLs. The primaries return a 204 on the open Internet;
// the fallbacks are rotated in per pickProbeURL so a portal that
// whitelists one well-known URL still gets caught.
const (
	DefaultHTTPURL  = "http://connectivitycheck.gstatic.com/generate_204"
	DefaultHTTPSURL = "https://www.google.com/generate_204"
)

var (
	DefaultFallbackHTTPURLs = []string{
		"http://www.gstatic.com/generate_204",
		"http://play.googleapis.com/generate_204",
	}
	DefaultFallbackHTTPSURLs = []string{
		"https://www.gstatic.com/generate_204",
		"https://play.googleapis.com/generate_204",
	}
)

// URLConfig is the per-interface probing configuration. It is built
// once and read-only afterwards; fallback lists may be empty.
type URLConfig struct {
	HTTPURL           string
	HTTPSURL          string
	FallbackHTTPURLs  []string
	FallbackHTTPSURLs []string
}

// DefaultURLConfig returns the stock probe URL set.
func DefaultURLConfig() URLConfig {
	return URLConfig{
		HTTPURL:           DefaultHTTPURL,
		HTTPSURL:          DefaultHTTPSURL,
		FallbackHTTPURLs:  DefaultFallbackHTTPURLs,
		FallbackHTTPSURLs: DefaultFallbackHTTPSURLs,
	}
}

// pickProbeURL selects the URL for the given 1-based attempt. Attempt 1
// uses the primary; attempts 2..len(fallbacks)+1 walk the fallback list
// in order; after every fallback has had one turn the choice is uniform
// over primary plus fallbacks.
func pickProbeURL(attempt int, primary string, fallbacks []string) string {
	if attempt <= 1 || len(fallbacks) == 0 {
		if attempt > len(fallbacks)+1 {
			return pickRandomURL(primary, fallbacks)
		}
		return primary
	}
	if idx := attempt - 2; idx < len(fallbacks) {
		return fallbacks[idx]
	}
	return pickRandomURL(primary, fallbacks)
}

func pickRandomURL(primary string, fallbacks []string) string {
	n := rand.Intn(len(fallbacks) + 1)
	if n == 0 {
		return primary
	}
	return fallbacks[n-1]
}
