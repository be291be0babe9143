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
	// SnapshotID identifies one load of the journey table
	SnapshotID ID
	// SessionID identifies one caller's selection state
	SessionID ID
)

func NewSnapshotID() SnapshotID { return SnapshotID(NewID()) }
func NewSessionID() SessionID   { return SessionID(NewID()) }

func (id SnapshotID) String() string { return ID(id).String() }
func (id SessionID) String() string  { return ID(id).String() }

// ParseSessionID validates a session identifier received from a caller
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", s, err)
	}
	return SessionID(s), nil
}
