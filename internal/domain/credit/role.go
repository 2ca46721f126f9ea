// Package credit merges artist credits and artist relations into one
// deduplicated, role-annotated contributor list.
package credit

import (
	"strings"

	"github.com/osa030/careersinmusic/internal/domain/release"
)

// RoleKind is the closed set of contributor roles.
type RoleKind int

const (
	RoleNone        RoleKind = iota // Credited, no relation seen yet
	RolePerformer                   // Generic relation
	RoleInstrument                  // Instrument relation, Detail holds the instruments
	RolePerformance                 // "performance" relation
	RoleVocals                      // "vocals" relation
)

// String returns the string representation of the role kind.
func (k RoleKind) String() string {
	switch k {
	case RoleNone:
		return "none"
	case RolePerformer:
		return "performer"
	case RoleInstrument:
		return "instrument"
	case RolePerformance:
		return "performance"
	case RoleVocals:
		return "vocals"
	default:
		return "unknown"
	}
}

// Role is a contributor role. Detail is only meaningful for RoleInstrument.
type Role struct {
	Kind   RoleKind
	Detail string
}

// Instrument returns an instrument role for the given detail.
// An empty detail yields the untyped instrument placeholder.
func Instrument(detail string) Role {
	return Role{Kind: RoleInstrument, Detail: detail}
}

// Specific reports whether the role outranks the generic placeholders.
// None, Performer and an untyped Instrument are generic.
func (r Role) Specific() bool {
	switch r.Kind {
	case RoleNone, RolePerformer:
		return false
	case RoleInstrument:
		return r.Detail != ""
	default:
		return true
	}
}

// String returns the display label of the role. RoleNone renders empty.
func (r Role) String() string {
	switch r.Kind {
	case RoleNone:
		return ""
	case RoleInstrument:
		if r.Detail != "" {
			return r.Detail
		}
		return "instrument"
	default:
		return r.Kind.String()
	}
}

// RoleFromRelation derives a role from a relation type and its attributes.
func RoleFromRelation(rel release.Relation) Role {
	switch strings.ToLower(rel.Type) {
	case "performance":
		return Role{Kind: RolePerformance}
	case "vocals", "vocal":
		return Role{Kind: RoleVocals}
	case "instrument":
		return Instrument(strings.Join(rel.Attributes, ", "))
	default:
		return Role{Kind: RolePerformer}
	}
}
