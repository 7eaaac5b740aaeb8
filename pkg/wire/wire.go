// Package wire implements the HTTP/1.1 request encoder: C4 of httpcore,
// grounded on the teacher's manual CRLF-joined request builder in
// connectViaHTTPProxy (pkg/transport.connectViaHTTPProxy), generalized
// from a one-off CONNECT request into the full request-line/header/body
// encoder spec.md §4.4 describes.
package wire

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

const crlf = "\r\n"

// Encode writes req onto c in full: request line, headers (with injected
// framing/Host/Accept-Encoding headers), the blank line, and the body.
func Encode(c conn.Conn, req *request.Request) error {
	method := req.Method
	if method == "" {
		method = "GET"
	}

	target := requestTarget(req)

	var head strings.Builder
	head.WriteString(method)
	head.WriteString(" ")
	head.WriteString(target)
	head.WriteString(" HTTP/1.1")
	head.WriteString(crlf)

	hasHost := req.Header.Has("Host")
	hasAcceptEncoding := req.Header.Has("Accept-Encoding")

	var bodyLen int64
	var bodyKnown bool
	if req.Body != nil {
		bodyLen, bodyKnown = req.Body.KnownLength()
	} else {
		bodyLen, bodyKnown = 0, true
	}

	if !hasHost {
		head.WriteString("Host: ")
		head.WriteString(hostHeaderValue(req))
		head.WriteString(crlf)
	}

	if bodyKnown {
		omit := (method == "GET" || method == "HEAD") && bodyLen == 0
		if !omit {
			head.WriteString("Content-Length: ")
			head.WriteString(strconv.FormatInt(bodyLen, 10))
			head.WriteString(crlf)
		}
	} else {
		head.WriteString("Transfer-Encoding: chunked")
		head.WriteString(crlf)
	}

	suppressAcceptEncoding := hasAcceptEncoding && req.Header.Get("Accept-Encoding") == ""

	req.Header.Each(func(name, value string) {
		if suppressAcceptEncoding && strings.EqualFold(name, "Accept-Encoding") {
			// An empty caller-supplied Accept-Encoding suppresses the
			// header entirely rather than being emitted as a blank value.
			return
		}
		head.WriteString(name)
		head.WriteString(": ")
		head.WriteString(value)
		head.WriteString(crlf)
	})

	if !hasAcceptEncoding {
		head.WriteString("Accept-Encoding: gzip")
		head.WriteString(crlf)
	}

	head.WriteString(crlf)

	if _, err := c.Write([]byte(head.String())); err != nil {
		return herrors.InternalIO("write_head", err)
	}

	if req.Body == nil {
		return nil
	}

	if bodyKnown {
		return writeRawBody(c, req.Body.Reader())
	}
	return writeChunkedBody(c, req.Body.Reader())
}

func requestTarget(req *request.Request) string {
	if req.Proxy != nil && !req.Secure {
		var b strings.Builder
		b.WriteString("http://")
		b.WriteString(hostHeaderValue(req))
		b.WriteString(pathAndQuery(req))
		return b.String()
	}
	return pathAndQuery(req)
}

func pathAndQuery(req *request.Request) string {
	path := req.Path
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	if req.QueryString == "" {
		return path
	}
	q := req.QueryString
	if q[0] != '?' {
		q = "?" + q
	}
	return path + q
}

func hostHeaderValue(req *request.Request) string {
	defaultPort := (req.Secure && req.Port == 443) || (!req.Secure && req.Port == 80)
	if defaultPort || req.Port == 0 {
		return req.Host
	}
	return fmt.Sprintf("%s:%d", req.Host, req.Port)
}

func writeRawBody(c conn.Conn, r io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := c.Write(buf[:n]); werr != nil {
				return herrors.InternalIO("write_body", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return herrors.InternalIO("read_body", err)
		}
	}
}

func writeChunkedBody(c conn.Conn, r io.Reader) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := fmt.Sprintf("%x"+crlf, n)
			if _, werr := c.Write([]byte(chunk)); werr != nil {
				return herrors.InternalIO("write_chunk_header", werr)
			}
			if _, werr := c.Write(buf[:n]); werr != nil {
				return herrors.InternalIO("write_chunk_body", werr)
			}
			if _, werr := c.Write([]byte(crlf)); werr != nil {
				return herrors.InternalIO("write_chunk_trailer", werr)
			}
		}
		if err == io.EOF {
			_, werr := c.Write([]byte("0" + crlf + crlf))
			if werr != nil {
				return herrors.InternalIO("write_chunk_terminator", werr)
			}
			return nil
		}
		if err != nil {
			return herrors.InternalIO("read_body", err)
		}
	}
}
