// Package state provides the per-session view state.
package state

import (
	"github.com/cockroachdb/errors"
)

// Phase represents the lifecycle of the current workflow.
type Phase int

const (
	PhaseIdle     Phase = iota // No workflow started yet
	PhaseLoading               // Workflow running, partial results may be present
	PhaseReady                 // Workflow finished
	PhaseNotFound              // Workflow finished without a match
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for c := PhaseIdle; c <= PhaseNotFound; c++ {
		if c.String() == string(text) {
			*p = c
			return nil
		}
	}
	return errors.Newf("unknown phase: %s", text)
}

// Kind is how a workflow was started.
type Kind int

const (
	KindSearch   Kind = iota // Search box submission
	KindNavigate             // Click on a neighboring album
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindSearch:
		return "search"
	case KindNavigate:
		return "navigate"
	default:
		return "unknown"
	}
}

// ErrInvalidPage marks rejected page size or order parameters.
var ErrInvalidPage = errors.New("invalid page request")

// Order is the discography grid sort order.
type Order string

const (
	OrderNewest Order = "newest"
	OrderOldest Order = "oldest"
)

// ParseOrder parses an order, defaulting to newest when empty.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderNewest:
		return OrderNewest, nil
	case OrderOldest:
		return OrderOldest, nil
	default:
		return "", errors.Mark(errors.Newf("invalid sort order %q (want newest or oldest)", s), ErrInvalidPage)
	}
}

// DefaultPageSize is used when no page size is requested.
const DefaultPageSize = 12

// PageSizes are the page sizes a client may request.
var PageSizes = []int{6, 12, 24, 48}

// ValidPageSize reports whether size is one of PageSizes.
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}
