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
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
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
	RunID     ID
	ReportID  ID
	MetricKey ID
	GroupID   ID
)

// String conversions for domain IDs
func (id RunID) String() string    { return ID(id).String() }
func (id ReportID) String() string { return ID(id).String() }
func (k MetricKey) String() string { return ID(k).String() }
func (g GroupID) String() string   { return ID(g).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseReportID parses a string into ReportID
func ParseReportID(s string) (ReportID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("report ID cannot be empty")
	}
	return ReportID(s), nil
}

// ParseMetricKey parses a string into MetricKey
func ParseMetricKey(s string) (MetricKey, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("metric key cannot be empty")
	}
	return MetricKey(s), nil
}
