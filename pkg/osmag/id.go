package osmag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by [ParseID] when the text is not a non-zero
// integer. Zero is rejected because osmAG exports never emit it and a zero
// value would be indistinguishable from an unset ID.
var ErrInvalidID = errors.New("invalid element ID")

// ID identifies a node, way, or relation.
//
// osmAG floor exports encode "needs reconciliation" as a negative integer and
// "already assigned, never renumbered" as a positive one. ID makes the two
// spaces statically distinguishable: a pending ID holds the magnitude of the
// negative placeholder, a stable ID holds the final value. Pending IDs are
// resolved to stable ones exactly once, by the identifier reconciler.
//
// The zero value is not a valid ID; use [Stable], [Pending], or [ParseID].
type ID struct {
	value   uint64
	pending bool
}

// Stable returns an assigned ID with the given value.
func Stable(v uint64) ID { return ID{value: v} }

// Pending returns a placeholder ID with the given local magnitude.
func Pending(v uint64) ID { return ID{value: v, pending: true} }

// ParseID parses the XML id/ref attribute text. A leading minus sign marks a
// pending ID; the magnitude is kept so the reconciler can map it.
func ParseID(s string) (ID, error) {
	text, pending := strings.CutPrefix(s, "-")
	v, err := strconv.ParseUint(text, 10, 64)
	if err != nil || v == 0 {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID{value: v, pending: pending}, nil
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id.value == 0 }

// IsPending reports whether the ID still awaits reconciliation.
func (id ID) IsPending() bool { return id.pending }

// Value returns the magnitude of the ID. For pending IDs this is the local
// placeholder magnitude, not a final identifier.
func (id ID) Value() uint64 { return id.value }

// String formats the ID back into the wire convention: pending IDs keep
// their negative sign until resolved.
func (id ID) String() string {
	if id.pending {
		return "-" + strconv.FormatUint(id.value, 10)
	}
	return strconv.FormatUint(id.value, 10)
}
