// Package engine implements C8 of httpcore: the request driver tying the
// pool (C2), wire encoder (C4), response decoder (C5), body framing (C6),
// and cookie jar (C7) together into the redirect loop and timeout-budget
// orchestration described in spec.md §4.8. Grounded on the teacher's
// Client.Do orchestration shape (acquire -> send -> read -> release) in
// pkg/client/client.go.
package engine

import (
	"context"
	"io"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/body"
	"github.com/nullbyte-labs/httpcore/pkg/cookiejar"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/hlog"
	"github.com/nullbyte-labs/httpcore/pkg/metrics"
	"github.com/nullbyte-labs/httpcore/pkg/pool"
	"github.com/nullbyte-labs/httpcore/pkg/request"
	"github.com/nullbyte-labs/httpcore/pkg/response"
	"github.com/nullbyte-labs/httpcore/pkg/wire"
)

// Options configures a Driver.
type Options struct {
	Logger         hlog.Logger
	MaxHeaderBytes int // 0 means response.DefaultMaxHeaderBytes

	// MaxInMemoryBody bounds how much of an HTTPLBS response body is held
	// in memory before spilling to a temp file. 0 means
	// buffer.DefaultMemoryLimit. Unused by WithResponse, which streams.
	MaxInMemoryBody int64
}

// Driver is C8.
type Driver struct {
	mgr  *pool.Manager
	opts Options
}

// New constructs a Driver bound to mgr.
func New(mgr *pool.Manager, opts Options) *Driver {
	if opts.Logger == nil {
		opts.Logger = hlog.Noop
	}
	return &Driver{mgr: mgr, opts: opts}
}

// Do drives req to completion — cookie application, connection
// acquisition, send/receive, status checking, and the redirect loop — all
// under a single timeout budget, per spec.md §4.8.
func (d *Driver) Do(ctx context.Context, req *request.Request) (*Response, error) {
	jar := req.CookieJar
	if jar != nil {
		jar = jar.Clone()
	} else {
		jar = cookiejar.New()
	}

	timeout := req.ResponseTimeout.Resolve(d.mgr.ResponseTimeoutDefault())
	bud := newBudget(timeout, req.GetConnectionWrapper, func(op string) error {
		return herrors.ResponseTimeout(op, timeout)
	})

	timer := metrics.NewTimer()
	current := req

	for {
		resp, err := d.attempt(ctx, current, jar, bud, timer)
		if err != nil {
			return nil, err
		}

		loc := resp.Headers.Get("Location")
		if isRedirectStatus(resp.Status.Code) && loc != "" {
			if current.RedirectCount == 0 {
				io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain to enable reuse
				resp.release()
				d.opts.Logger.Warn("engine: redirect budget exhausted", "host", current.Host, "path", current.Path)
				return nil, herrors.TooManyRedirects(req.RedirectCount)
			}

			io.Copy(io.Discard, resp.Body) //nolint:errcheck // best-effort drain to enable reuse
			resp.release()

			jar.ApplySetCookieHeaders(resp.Headers.Values("Set-Cookie"), current.Host, current.Path, time.Now())

			next, rerr := buildRedirectRequest(current, resp.Status.Code, loc)
			if rerr != nil {
				return nil, rerr
			}
			d.opts.Logger.Debug("engine: following redirect", "status", resp.Status.Code, "location", loc, "remaining", next.RedirectCount)
			current = next
			continue
		}

		jar.ApplySetCookieHeaders(resp.Headers.Values("Set-Cookie"), current.Host, current.Path, time.Now())
		resp.CookieJar = jar
		resp.Timings = timer.Snapshot()
		return resp, nil
	}
}

// attempt performs a single request/response exchange: cookie merge,
// acquire, send+decode (with the stale-connection single retry), status
// check, and body-stream construction.
func (d *Driver) attempt(ctx context.Context, req *request.Request, jar *cookiejar.Jar, bud *budget, timer *metrics.Timer) (*Response, error) {
	effHeader := req.Header.Clone()
	cookies := jar.CookiesFor(req.Host, req.Path, req.Secure, time.Now())
	if len(cookies) > 0 {
		effHeader.Set("Cookie", cookiejar.HeaderValue(cookies))
	}
	eff := *req
	eff.Header = *effHeader

	mc, err := d.acquire(ctx, &eff, bud, timer)
	if err != nil {
		return nil, err
	}

	head, err := d.sendAndDecode(ctx, &eff, mc, bud, timer)
	if err != nil {
		if !mc.Reused || !herrors.IsRetriable(err) {
			d.mgr.Release(mc, false)
			return nil, err
		}
		// Half-open socket workaround (spec.md §4.2): a reused connection
		// whose send or head read fails with a transport error
		// (herrors.IsRetriable) is retried once on a fresh connection. A
		// connection that ends before the first response byte is reported
		// by response.DecodeHead as such an error.
		d.opts.Logger.Debug("engine: retrying on fresh connection after stale reuse failure", "host", req.Host, "error", err)
		d.mgr.Release(mc, false)
		mc, err = d.acquire(ctx, &eff, bud, timer)
		if err != nil {
			return nil, err
		}
		head, err = d.sendAndDecode(ctx, &eff, mc, bud, timer)
		if err != nil {
			d.mgr.Release(mc, false)
			return nil, err
		}
	}

	if head.Status.Code < 200 || head.Status.Code >= 300 {
		d.opts.Logger.Debug("engine: non-2xx response", "status", head.Status.Code, "host", req.Host, "path", req.Path)
	}

	if req.CheckStatus != nil {
		if cerr := req.CheckStatus(head.Status.Code, &head.Headers, jar); cerr != nil {
			d.opts.Logger.Warn("engine: status check rejected response", "status", head.Status.Code, "host", req.Host, "error", cerr)
			d.mgr.Release(mc, false)
			return nil, cerr
		}
	}

	resp := &Response{
		Status:  head.Status,
		Headers: &head.Headers,
		mgr:     d.mgr,
		mc:      mc,
	}

	framing, contentLength, noBody := body.Select(eff.Method, head.Status.Code, &head.Headers)
	reusableCandidate := response.ReusableAfterHead(head)

	if noBody {
		if reusableCandidate {
			mc.MarkReusable()
		}
		resp.Body = noBodyReader{}
		resp.release()
		return resp, nil
	}

	var tracker interface{ MarkReusable() }
	if reusableCandidate {
		tracker = mc
	} else {
		tracker = body.NoopTracker
	}

	rawBody := body.NewReader(framing, mc.Buffered.Reader(), contentLength, tracker, resp.release)
	timer.Start("body")
	bodyReader := &budgetBodyReader{r: rawBody, bud: bud, ctx: ctx, onDone: func() { timer.End("body") }}

	var stream io.Reader = bodyReader
	if request.NeedsGunzip(&eff, &head.Headers) {
		gz, gerr := body.Gunzip(bodyReader)
		if gerr != nil {
			mc.MarkNonReusable()
			resp.release()
			return nil, gerr
		}
		stream = gz
	}
	resp.Body = stream
	return resp, nil
}

func (d *Driver) acquire(ctx context.Context, req *request.Request, bud *budget, timer *metrics.Timer) (*pool.ManagedConnection, error) {
	timer.Start("pool_wait")
	v, err := bud.run(ctx, "acquire", func(cctx context.Context) (any, error) {
		return d.mgr.Acquire(cctx, req)
	})
	timer.End("pool_wait")
	if err != nil {
		return nil, err
	}
	mc, _ := v.(*pool.ManagedConnection)
	return mc, nil
}

func (d *Driver) sendAndDecode(ctx context.Context, req *request.Request, mc *pool.ManagedConnection, bud *budget, timer *metrics.Timer) (*response.Head, error) {
	_, err := bud.run(ctx, "send", func(cctx context.Context) (any, error) {
		return nil, wire.Encode(mc.Conn, req)
	})
	if err != nil {
		return nil, err
	}

	timer.Start("ttfb")
	v, err := bud.run(ctx, "head_read", func(cctx context.Context) (any, error) {
		return response.DecodeHead(mc.Buffered, d.opts.MaxHeaderBytes)
	})
	timer.End("ttfb")
	if err != nil {
		return nil, err
	}
	head, _ := v.(*response.Head)
	return head, nil
}

// noBodyReader is the zero-length stream returned for HEAD/1xx/204/304
// responses, per RFC 9110 §6.4.1.
type noBodyReader struct{}

func (noBodyReader) Read([]byte) (int, error) { return 0, io.EOF }

// budgetBodyReader threads the request's remaining timeout budget through
// each body read, per DESIGN NOTES' get_connection_wrapper contract.
type budgetBodyReader struct {
	r      io.Reader
	bud    *budget
	ctx    context.Context
	onDone func()
	done   bool
}

func (b *budgetBodyReader) Read(p []byte) (int, error) {
	v, err := b.bud.run(b.ctx, "body_read", func(cctx context.Context) (any, error) {
		return b.r.Read(p)
	})
	n, _ := v.(int)
	if (err != nil) && !b.done {
		b.done = true
		if b.onDone != nil {
			b.onDone()
		}
	}
	return n, err
}
