package engine

import (
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

func isRedirectStatus(code int) bool { return code >= 300 && code < 400 }

// buildRedirectRequest resolves Location against cur's effective URI and
// returns the next request in the chain, applying RFC 7231's method
// conversion rules (GET/HEAD preserved; other methods downgraded to GET on
// 301/302/303; every method preserved on 307/308) per spec.md §4.8 step 6
// and the DESIGN NOTES' open-question resolution.
func buildRedirectRequest(cur *request.Request, statusCode int, location string) (*request.Request, error) {
	next := *cur
	next.Header = *cur.Header.Clone()
	next.Header.Del("Cookie") // recomputed fresh from the jar at the top of the next attempt

	prevHost := cur.Host
	if err := request.SetURIRelative(&next, location); err != nil {
		return nil, err
	}

	switch statusCode {
	case 301, 302, 303:
		if next.Method != "GET" && next.Method != "HEAD" {
			next.Method = "GET"
			next.Body = nil
		}
	case 307, 308:
		// method and body preserved
	default:
		return nil, herrors.InvalidStatusLine("unexpected redirect status")
	}

	next.RedirectCount = cur.RedirectCount - 1
	if next.Host != prevHost {
		next.HostAddress = ""
	}
	return &next, nil
}
