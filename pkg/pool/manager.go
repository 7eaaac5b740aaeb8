package pool

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nullbyte-labs/httpcore/pkg/conn"
	"github.com/nullbyte-labs/httpcore/pkg/herrors"
	"github.com/nullbyte-labs/httpcore/pkg/request"
)

// destPool holds idle connections for a single destination key, freshest
// first (LIFO) — the same shape as the teacher's hostPool, guarded by its
// own short-held mutex so blocking I/O never happens while the lock is
// held.
type destPool struct {
	mu   sync.Mutex
	idle []*ManagedConnection
}

// Manager is the bounded idle-connection pool: C2 of httpcore. It
// generalizes the teacher's Transport (pkg/transport.Transport) from a
// host:port keyed sync.Map of hostPools into one keyed by the full
// destination key (proxy, host, port, secure), with the same
// reap-in-background lifecycle.
type Manager struct {
	settings Settings

	mu      sync.Mutex // guards pools map + closed + stat counters; per-destPool locks guard idle lists
	pools   map[request.DestKey]*destPool
	closed  bool

	stopCh chan struct{}
	wg     sync.WaitGroup

	statsCreated uint64
	statsReused  uint64
}

// New constructs a Manager, applying defaults to any zero-valued Settings
// fields, and starts the background idle-connection reaper.
func New(settings Settings) *Manager {
	settings.fillDefaults()
	m := &Manager{
		settings: settings,
		pools:    make(map[request.DestKey]*destPool),
		stopCh:   make(chan struct{}),
	}
	m.wg.Add(1)
	go m.reapLoop()
	return m
}

// ResponseTimeoutDefault returns the manager's configured default request
// timeout, substituted whenever a request's Timeout is TimeoutInherit.
func (m *Manager) ResponseTimeoutDefault() time.Duration {
	return m.settings.ResponseTimeoutDefault
}

func (m *Manager) destPoolFor(key request.DestKey) *destPool {
	m.mu.Lock()
	defer m.mu.Unlock()
	dp, ok := m.pools[key]
	if !ok {
		dp = &destPool{}
		m.pools[key] = dp
	}
	return dp
}

// Acquire returns a live connection for req's destination: an idle pooled
// connection if one is available and fresh, or a newly dialed one
// otherwise, per spec.md §4.2.
func (m *Manager) Acquire(ctx context.Context, req *request.Request) (*ManagedConnection, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, herrors.ManagerClosed()
	}

	key := req.DestKey()
	dp := m.destPoolFor(key)

	if mc := m.popFresh(dp); mc != nil {
		m.settings.Logger.Debug("pool: reused idle connection", "host", req.Host, "port", req.Port)
		return mc, nil
	}

	mc, err := m.dialNew(ctx, req, key)
	if err != nil {
		m.settings.Logger.Warn("pool: dial failed", "host", req.Host, "port", req.Port, "error", err)
		return nil, err
	}
	m.settings.Logger.Debug("pool: dialed new connection", "host", req.Host, "port", req.Port)
	return mc, nil
}

// popFresh pops the freshest idle connection that has not exceeded the
// idle timeout, closing (outside the lock) any it skips past.
func (m *Manager) popFresh(dp *destPool) *ManagedConnection {
	var stale []*ManagedConnection
	var found *ManagedConnection

	dp.mu.Lock()
	for len(dp.idle) > 0 {
		n := len(dp.idle)
		mc := dp.idle[n-1]
		dp.idle = dp.idle[:n-1]

		if time.Since(mc.lastUsed) > m.settings.IdleTimeout {
			stale = append(stale, mc)
			continue
		}
		found = mc
		break
	}
	dp.mu.Unlock()

	for _, mc := range stale {
		m.settings.Logger.Debug("pool: dropping stale idle connection", "idle_for", time.Since(mc.lastUsed))
		mc.Conn.Close()
	}
	if found != nil {
		found.Reused = true
		m.mu.Lock()
		m.statsReused++
		m.mu.Unlock()
	}
	return found
}

func (m *Manager) dialNew(ctx context.Context, req *request.Request, key request.DestKey) (*ManagedConnection, error) {
	var raw conn.Conn
	var err error

	if req.Proxy != nil {
		raw, err = m.settings.ProxyDialer(ctx, req.Proxy.Host, req.Proxy.Port, req.Host, req.Port)
	} else {
		raw, err = m.settings.RawDialer(ctx, req.Host, req.Port)
	}
	if err != nil {
		return nil, err
	}

	c := raw
	if req.Secure {
		tlsConn, terr := m.settings.TLSDialer(ctx, raw, req.Host, req.Port)
		if terr != nil {
			raw.Close()
			return nil, terr
		}
		c = tlsConn
	}

	m.mu.Lock()
	m.statsCreated++
	m.mu.Unlock()
	mc := &ManagedConnection{
		Conn:      c,
		Buffered:  conn.NewBuffered(c, 0),
		Key:       key,
		CreatedAt: time.Now(),
		mgr:       m,
	}
	return mc, nil
}

// Release returns mc to the idle pool when reusable is true and the
// manager is neither closed nor at capacity for mc.Key; otherwise it
// closes mc. Releasing the same connection twice is a caller error the
// pool tolerates by treating the second release as a close (idempotent
// with respect to pool bookkeeping: a connection already in the idle list
// is taken out of it and closed, never inserted twice).
func (m *Manager) Release(mc *ManagedConnection, reusable bool) {
	dp := m.destPoolFor(mc.Key)

	dp.mu.Lock()
	for i, c := range dp.idle {
		if c == mc {
			dp.idle = append(dp.idle[:i], dp.idle[i+1:]...)
			dp.mu.Unlock()
			mc.Conn.Close()
			return
		}
	}
	dp.mu.Unlock()

	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()

	if !reusable || closed {
		mc.Conn.Close()
		return
	}

	var evict *ManagedConnection
	dp.mu.Lock()
	if len(dp.idle) >= m.settings.MaxConnsPerHost {
		evict = dp.idle[0]
		dp.idle = dp.idle[1:]
	}
	mc.lastUsed = time.Now()
	dp.idle = append(dp.idle, mc)
	dp.mu.Unlock()

	if evict != nil {
		m.settings.Logger.Debug("pool: evicting oldest idle connection over capacity", "max_conns_per_host", m.settings.MaxConnsPerHost)
		evict.Conn.Close()
	}
}

// Close marks the manager closed and closes every idle connection,
// aggregating any close errors with hashicorp/go-multierror rather than
// discarding them.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pools := m.pools
	m.mu.Unlock()

	m.settings.Logger.Info("pool: closing manager", "destinations", len(pools))
	close(m.stopCh)
	m.wg.Wait()

	var result *multierror.Error
	for _, dp := range pools {
		dp.mu.Lock()
		idle := dp.idle
		dp.idle = nil
		dp.mu.Unlock()
		for _, mc := range idle {
			if err := mc.Conn.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
	}
	return result.ErrorOrNil()
}

// Stats is a read-only snapshot of pool activity.
type Stats struct {
	IdleConns    int
	TotalReused  uint64
	TotalCreated uint64
}

// Stats returns current pool statistics.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	pools := make([]*destPool, 0, len(m.pools))
	for _, dp := range m.pools {
		pools = append(pools, dp)
	}
	reused, created := m.statsReused, m.statsCreated
	m.mu.Unlock()

	idle := 0
	for _, dp := range pools {
		dp.mu.Lock()
		idle += len(dp.idle)
		dp.mu.Unlock()
	}
	return Stats{IdleConns: idle, TotalReused: reused, TotalCreated: created}
}

// reapLoop periodically evicts idle connections older than IdleTimeout,
// closing them outside any pool lock, grounded on the teacher's
// cleanupIdleConnections (pkg/transport.Transport.cleanupIdleConnections).
func (m *Manager) reapLoop() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.settings.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.reapOnce()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Manager) reapOnce() {
	m.mu.Lock()
	pools := make([]*destPool, 0, len(m.pools))
	for _, dp := range m.pools {
		pools = append(pools, dp)
	}
	m.mu.Unlock()

	now := time.Now()
	for _, dp := range pools {
		var expired []*ManagedConnection
		dp.mu.Lock()
		kept := dp.idle[:0]
		for _, mc := range dp.idle {
			if now.Sub(mc.lastUsed) > m.settings.IdleTimeout {
				expired = append(expired, mc)
			} else {
				kept = append(kept, mc)
			}
		}
		dp.idle = kept
		dp.mu.Unlock()

		for _, mc := range expired {
			mc.Conn.Close()
		}
		if len(expired) > 0 {
			m.settings.Logger.Debug("pool: reaped expired idle connections", "count", len(expired))
		}
	}
}
