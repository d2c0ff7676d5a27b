package domain

import (
	"strconv"
	"strings"
)

// filePrefix marks ids that refer to filesystem bundles. The prefix keeps
// the file id space permanently disjoint from database row ids.
const filePrefix = "file:"

// AgentIDKind distinguishes the two id spaces.
type AgentIDKind int

const (
	// IDFile refers to a filesystem bundle by name.
	IDFile AgentIDKind = iota
	// IDStored refers to a database agent row.
	IDStored
)

// AgentID is a parsed agent identifier. It is produced once at the system
// boundary by ParseAgentID; downstream code switches on Kind instead of
// re-inspecting the raw string.
type AgentID struct {
	Kind AgentIDKind
	Name string // set when Kind == IDFile
	Row  int64  // set when Kind == IDStored
}

// ParseAgentID parses an opaque id string into its tagged form.
// A "file:" prefix selects the bundle namespace; anything else must be a
// decimal row id. Malformed ids are a ValidationError, never "not found".
func ParseAgentID(raw string) (AgentID, error) {
	if name, ok := strings.CutPrefix(raw, filePrefix); ok {
		if name == "" {
			return AgentID{}, &ValidationError{Field: "id", Message: "empty file agent name"}
		}
		return AgentID{Kind: IDFile, Name: name}, nil
	}
	row, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || row <= 0 {
		return AgentID{}, &ValidationError{Field: "id", Message: "invalid agent id: " + raw}
	}
	return AgentID{Kind: IDStored, Row: row}, nil
}

// FileAgentID builds the public id string for a bundle agent.
func FileAgentID(name string) string {
	return filePrefix + name
}

// StoredAgentID builds the public id string for a database agent.
func StoredAgentID(row int64) string {
	return strconv.FormatInt(row, 10)
}

// String returns the public (wire) form of the id.
func (id AgentID) String() string {
	if id.Kind == IDFile {
		return FileAgentID(id.Name)
	}
	return StoredAgentID(id.Row)
}
