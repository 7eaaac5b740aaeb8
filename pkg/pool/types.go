// Package pool implements the connection manager: C2 of httpcore. It
// generalizes the teacher's pkg/transport.Transport + hostPool (a
// sync.Map of per-destination LIFO idle stacks, guarded by short-held
// per-destination locks, with a background reaper) from a host:port keyed
// pool into the spec's destination-key-keyed pool (proxy, host, port,
// secure), per spec.md §4.2.
package pool

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/constants"
	"github.com/nullbyte-labs/httpcore/pkg/hlog"
	"github.com/nullbyte-labs/httpcore/pkg/request"
	"github.com/nullbyte-labs/httpcore/pkg/tlsconfig"
)

// RawDialer opens a plain (non-TLS) connection to host:port, per spec.md
// §6's raw connection factory collaborator interface.
type RawDialer func(ctx context.Context, host string, port uint16) (conn.Conn, error)

// TLSDialer upgrades an established raw connection to TLS for the given
// host (used for SNI/verification), per spec.md §6's TLS connection
// factory collaborator interface.
type TLSDialer func(ctx context.Context, raw conn.Conn, host string, port uint16) (conn.Conn, error)

// Settings configures a Manager, mirroring the teacher's
// PoolConfig/Transport constructor options, generalized to the spec's
// destination-key pool.
type Settings struct {
	MaxConnsPerHost       int           // max idle connections kept per destination; 0 means the default of 2
	IdleTimeout           time.Duration // default 90s, matches teacher's DefaultPoolConfig
	ReapInterval          time.Duration // default 30s
	ResponseTimeoutDefault time.Duration

	RawDialer   RawDialer
	TLSDialer   TLSDialer
	ProxyDialer ProxyDialer // used when a request names a proxy

	// TLSProfile selects the min/max version and cipher suite set applied
	// to the default TLS dialer's base config. Ignored if TLSDialer is set
	// explicitly. Zero value means tlsconfig.ProfileSecure.
	TLSProfile tlsconfig.VersionProfile

	Logger hlog.Logger
}

func (s *Settings) fillDefaults() {
	if s.MaxConnsPerHost <= 0 {
		s.MaxConnsPerHost = 2
	}
	if s.IdleTimeout <= 0 {
		s.IdleTimeout = constants.DefaultIdleTimeout
	}
	if s.ReapInterval <= 0 {
		s.ReapInterval = constants.CleanupInterval
	}
	if s.RawDialer == nil {
		s.RawDialer = DefaultRawDialer(constants.DefaultConnTimeout)
	}
	if s.TLSDialer == nil {
		profile := s.TLSProfile
		if profile.Min == 0 {
			profile = tlsconfig.ProfileSecure
		}
		base := &tls.Config{}
		tlsconfig.ApplyVersionProfile(base, profile)
		tlsconfig.ApplyCipherSuites(base, profile.Min)
		s.TLSDialer = DefaultTLSDialer(base)
	}
	if s.ProxyDialer == nil {
		s.ProxyDialer = HTTPConnectDialer(s.RawDialer)
	}
	if s.Logger == nil {
		s.Logger = hlog.Noop
	}
}

// ManagedConnection pairs a Conn with the bookkeeping spec.md §3
// describes: the destination key it belongs to, its creation time, and
// whether it is currently eligible for reuse.
type ManagedConnection struct {
	Conn      conn.Conn
	Buffered  *conn.Buffered
	Key       request.DestKey
	CreatedAt time.Time
	reusable  bool

	// Reused reports whether this connection came from the idle pool
	// rather than being freshly dialed — the driver uses this to decide
	// whether a transport failure before any response byte qualifies for
	// the single stale-connection retry (spec.md §4.2).
	Reused bool

	mgr      *Manager
	lastUsed time.Time
}

// MarkReusable flags this connection as eligible to return to the pool —
// the hook pkg/body's Reader invokes once a response body drains cleanly
// under a framing that permits reuse.
func (m *ManagedConnection) MarkReusable() { m.reusable = true }

// MarkNonReusable lets the driver force a connection closed on release,
// e.g. after a mid-send cancellation or a stale-connection failure.
func (m *ManagedConnection) MarkNonReusable() { m.reusable = false }

// Reusable reports whether this connection is currently eligible to
// return to the idle pool on release.
func (m *ManagedConnection) Reusable() bool { return m.reusable }
