package engine

import (
	"sync"

	"github.com/nullbyte-labs/httpcore/pkg/cookiejar"
	"github.com/nullbyte-labs/httpcore/pkg/metrics"
	"github.com/nullbyte-labs/httpcore/pkg/pool"
	"github.com/nullbyte-labs/httpcore/pkg/request"
	"github.com/nullbyte-labs/httpcore/pkg/response"
)

// bodyStream is the minimal surface engine needs from a body — kept
// narrow so HTTPLBS can swap in its spilledBody reader after pre-reading
// the body without dragging the pool/body machinery along with it.
type bodyStream interface {
	Read(p []byte) (int, error)
}

// Response is the driven result of a Request: spec.md §3's Response
// record. Body is the lazy, single-pass stream C6 produces; closing the
// Response (directly, or implicitly once Body reaches EOF) runs the
// scoped release that returns the connection to the pool or closes it.
type Response struct {
	Status    response.StatusLine
	Headers   *request.Header
	Body      bodyStream
	CookieJar *cookiejar.Jar
	Timings   metrics.Timings

	mgr  *pool.Manager
	mc   *pool.ManagedConnection
	once sync.Once
}

// release runs the scoped connection release exactly once, honoring
// spec.md §4.2's idempotence requirement ("releasing the same connection
// twice MUST NOT double-insert").
func (r *Response) release() {
	r.once.Do(func() {
		r.mgr.Release(r.mc, r.mc.Reusable())
	})
}

// Close is the caller-facing scoped release (spec.md §6's close_action).
// The underlying body.Reader only ever calls MarkReusable on a clean,
// fully-drained EOF, so closing before the body is drained leaves the
// connection's reusable flag at its default false and it is closed here
// rather than pooled. If Body also implements io.Closer (e.g. HTTPLBS's
// spilled-to-disk buffer), it is closed too.
func (r *Response) Close() error {
	r.release()
	if c, ok := r.Body.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
