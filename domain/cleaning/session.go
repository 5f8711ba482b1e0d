package cleaning

import (
	"encoding/json"
	"fmt"
	"time"

	"tidytab/domain/table"
)

// State represents where a cleaning session is in the upload/decide interaction
type State string

const (
	StateEmpty    State = "empty"
	StateCleaned  State = "cleaned"  // duplicates pending a decision
	StateResolved State = "resolved" // decision applied
)

// Session is the working table of one caller plus the duplicates awaiting a decision
type Session struct {
	State      State                  `json:"state"`
	Filename   string                 `json:"filename,omitempty"`
	Table      *table.Table           `json:"table"`
	Duplicates []table.DuplicateGroup `json:"duplicates,omitempty"`
	Removed    []string               `json:"removed,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// Decision is the user's answer to the detected duplicates
type Decision struct {
	Ignore        bool     `json:"ignore" form:"ignore_duplicates"`
	RemoveColumns []string `json:"remove_columns" form:"remove_columns"`
}

// IgnoreDuplicates keeps every column
func IgnoreDuplicates() Decision {
	return Decision{Ignore: true}
}

// RemoveColumns drops the named columns
func RemoveColumns(names ...string) Decision {
	return Decision{RemoveColumns: names}
}

// Begin starts a session from a freshly parsed table: normalize, then detect.
func Begin(filename string, raw *table.Raw, now time.Time) *Session {
	cleaned := table.Normalize(raw)
	return &Session{
		State:      StateCleaned,
		Filename:   filename,
		Table:      cleaned,
		Duplicates: table.DetectDuplicates(cleaned),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Active reports whether a decision or export can be made against the session
func (s *Session) Active() bool {
	return s != nil && s.Table != nil && (s.State == StateCleaned || s.State == StateResolved)
}

// Apply returns the resolved session. The working table is replaced, never
// mutated, and pending duplicates are cleared. Names not in the table are ignored.
func (s *Session) Apply(d Decision, now time.Time) (*Session, error) {
	if !s.Active() {
		return nil, fmt.Errorf("session is %q, nothing to resolve", s.stateOrEmpty())
	}

	next := &Session{
		State:     StateResolved,
		Filename:  s.Filename,
		Removed:   append([]string(nil), s.Removed...),
		CreatedAt: s.CreatedAt,
		UpdatedAt: now,
	}

	if d.Ignore || len(d.RemoveColumns) == 0 {
		next.Table = s.Table.Clone()
		return next, nil
	}

	present := make(map[string]bool, len(s.Table.Columns))
	for _, name := range s.Table.ColumnNames() {
		present[name] = true
	}
	for _, name := range d.RemoveColumns {
		if present[name] {
			next.Removed = append(next.Removed, name)
			present[name] = false
		}
	}
	next.Table = s.Table.DropColumns(d.RemoveColumns...)
	return next, nil
}

func (s *Session) stateOrEmpty() State {
	if s == nil || s.State == "" {
		return StateEmpty
	}
	return s.State
}

// Marshal serializes the session into the blob kept by the session store
func (s *Session) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	return data, nil
}

// Unmarshal restores a session blob and checks the table invariants
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Table == nil {
		return nil, fmt.Errorf("session blob has no table")
	}
	if err := s.Table.Validate(); err != nil {
		return nil, fmt.Errorf("session blob is corrupt: %w", err)
	}
	return &s, nil
}
