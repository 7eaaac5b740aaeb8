package request

import "strings"

// Header is an ordered list of (name, value) pairs with case-insensitive
// lookup, preserving the caller's casing on output — generalized from the
// map[string][]string the teacher uses for responses, but ordered, since
// §4.4 requires deterministic wire emission order.
type Header struct {
	entries []headerEntry
}

type headerEntry struct {
	name, value string
}

// NewHeader returns an empty Header.
func NewHeader() *Header { return &Header{} }

// Add appends a header, never replacing an existing one with the same
// name (documented behavior: apply_basic_auth applied twice yields two
// Authorization headers).
func (h *Header) Add(name, value string) {
	h.entries = append(h.entries, headerEntry{name, value})
}

// Set replaces every existing header with this name (case-insensitive)
// with a single entry.
func (h *Header) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// Del removes every header with this name (case-insensitive).
func (h *Header) Del(name string) {
	out := h.entries[:0]
	for _, e := range h.entries {
		if !strings.EqualFold(e.name, name) {
			out = append(out, e)
		}
	}
	h.entries = out
}

// Get returns the first value for name, case-insensitive, or "".
func (h *Header) Get(name string) string {
	for _, e := range h.entries {
		if strings.EqualFold(e.name, name) {
			return e.value
		}
	}
	return ""
}

// Has reports whether name is present, case-insensitive.
func (h *Header) Has(name string) bool {
	for _, e := range h.entries {
		if strings.EqualFold(e.name, name) {
			return true
		}
	}
	return false
}

// Values returns every value for name, in insertion order.
func (h *Header) Values(name string) []string {
	var out []string
	for _, e := range h.entries {
		if strings.EqualFold(e.name, name) {
			out = append(out, e.value)
		}
	}
	return out
}

// Each calls fn for every header in insertion order.
func (h *Header) Each(fn func(name, value string)) {
	for _, e := range h.entries {
		fn(e.name, e.value)
	}
}

// Clone returns a deep copy.
func (h *Header) Clone() *Header {
	c := &Header{entries: make([]headerEntry, len(h.entries))}
	copy(c.entries, h.entries)
	return c
}
