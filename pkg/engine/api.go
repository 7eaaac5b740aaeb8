package engine

import (
	"context"
	"io"

	"github.com/nullbyte-labs/httpcore/pkg/buffer"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/pool"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// HTTPLBS drives req to completion and reads the entire body into memory
// before returning, per spec.md §6's http_lbs entry point. The returned
// Response's connection has already been released. The body is accumulated
// through a buffer.Buffer so a response larger than MaxInMemoryBody spills
// to a temp file instead of growing the heap unbounded.
func HTTPLBS(ctx context.Context, req *request.Request, mgr *pool.Manager, opts Options) (*Response, error) {
	d := New(mgr, opts)
	resp, err := d.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	limit := opts.MaxInMemoryBody
	if limit <= 0 {
		limit = buffer.DefaultMemoryLimit
	}
	buf := buffer.New(limit)
	_, copyErr := io.Copy(buf, resp.Body)
	resp.Close()
	if copyErr != nil {
		buf.Close()
		return nil, herrors.InternalIO("read_body", copyErr)
	}

	rc, readerErr := buf.Reader()
	if readerErr != nil {
		buf.Close()
		return nil, readerErr
	}
	resp.Body = &spilledBody{rc: rc, buf: buf}
	return resp, nil
}

// spilledBody closes both the buffer.Buffer's reader and the buffer
// itself (removing any spilled temp file) once the caller is done. It is
// only ever handed out already fully populated, so Close is the only
// lifecycle method callers need.
type spilledBody struct {
	rc  io.ReadCloser
	buf *buffer.Buffer
}

func (s *spilledBody) Read(p []byte) (int, error) { return s.rc.Read(p) }

func (s *spilledBody) Close() error {
	err := s.rc.Close()
	if cerr := s.buf.Close(); err == nil {
		err = cerr
	}
	return err
}

// WithResponse drives req to completion and hands the streaming Response
// to consumer, releasing the connection on exit regardless of whether
// consumer returns an error, per spec.md §6's with_response entry point.
func WithResponse(ctx context.Context, req *request.Request, mgr *pool.Manager, opts Options, consumer func(*Response) error) error {
	d := New(mgr, opts)
	resp, err := d.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Close()
	return consumer(resp)
}
