package chart

import (
	"encoding/json"
	"fmt"
	"time"

	"tidytab/domain/table"
)

// VizSession is the uploaded visualization table and the charts drawn from it
type VizSession struct {
	Filename  string       `json:"filename,omitempty"`
	Table     *table.Table `json:"table"`
	Charts    []Chart      `json:"charts"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewVizSession starts a visualization session with no charts
func NewVizSession(filename string, t *table.Table, now time.Time) *VizSession {
	return &VizSession{
		Filename:  filename,
		Table:     t,
		Charts:    []Chart{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithChart returns a copy with c appended
func (v *VizSession) WithChart(c Chart, now time.Time) *VizSession {
	next := *v
	next.Charts = append(append(make([]Chart, 0, len(v.Charts)+1), v.Charts...), c)
	next.UpdatedAt = now
	return &next
}

// Images returns the PNG of every chart in generation order
func (v *VizSession) Images() [][]byte {
	images := make([][]byte, len(v.Charts))
	for i, c := range v.Charts {
		images[i] = c.PNG
	}
	return images
}

// Marshal serializes the session for the session store
func (v *VizSession) Marshal() ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal visualization session: %w", err)
	}
	return data, nil
}

// UnmarshalViz restores a visualization session blob
func UnmarshalViz(data []byte) (*VizSession, error) {
	var v VizSession
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal visualization session: %w", err)
	}
	if v.Table == nil {
		return nil, fmt.Errorf("visualization blob has no table")
	}
	if err := v.Table.Validate(); err != nil {
		return nil, fmt.Errorf("visualization blob is corrupt: %w", err)
	}
	return &v, nil
}
