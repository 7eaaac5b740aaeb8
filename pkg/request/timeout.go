package request

import "time"

// Timeout is the tagged variant the DESIGN NOTES call for, replacing the
// "magic integer means inherit the manager default" sentinel with an
// explicit type: Inherit, Explicit(d), or None.
type Timeout struct {
	kind timeoutKind
	d    time.Duration
}

type timeoutKind int

const (
	timeoutInherit timeoutKind = iota
	timeoutExplicit
	timeoutNone
)

// TimeoutInherit means "use the manager's configured default".
func TimeoutInherit() Timeout { return Timeout{kind: timeoutInherit} }

// TimeoutExplicit pins the request's deadline to d.
func TimeoutExplicit(d time.Duration) Timeout { return Timeout{kind: timeoutExplicit, d: d} }

// TimeoutNone disables the deadline entirely (unbounded).
func TimeoutNone() Timeout { return Timeout{kind: timeoutNone} }

// Resolve returns the effective duration given the manager's default,
// with the Timeout's own semantics applied. A returned d <= 0 means
// unbounded.
func (t Timeout) Resolve(managerDefault time.Duration) time.Duration {
	switch t.kind {
	case timeoutExplicit:
		return t.d
	case timeoutNone:
		return 0
	default: // timeoutInherit
		return managerDefault
	}
}

// IsInherit reports whether this is the "use manager default" sentinel.
func (t Timeout) IsInherit() bool { return t.kind == timeoutInherit }
