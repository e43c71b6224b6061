package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one pipeline invocation; every artifact a run produces
	// carries it so results from different runs are never mixed.
	RunID ID
	// FeatureID names a gene, protein, or metabolite.
	FeatureID string
	// SampleID names a biological sample (a matrix column).
	SampleID string
	// Condition is a sample's category ("Infected", "Control", ...).
	Condition string
)

func (id RunID) String() string     { return ID(id).String() }
func (id FeatureID) String() string { return string(id) }
func (id SampleID) String() string  { return string(id) }
func (c Condition) String() string  { return string(c) }

// NewRunID mints a fresh run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseFeatureID parses a string into FeatureID
func ParseFeatureID(s string) (FeatureID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("feature ID cannot be empty")
	}
	return FeatureID(s), nil
}
