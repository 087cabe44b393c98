package model

import "encoding/json"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Report is one persisted analysis run. Params and Payload are the JSON forms of the
// analysis configuration and result; Kind names the analysis (trace, cycle, ...).
type Report struct {
	VersionedRecord
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Summary      string          `json:"summary,omitempty"`
	CreatedAtUTC string          `json:"created_at_utc"`
	Params       json.RawMessage `json:"params"`
	Payload      json.RawMessage `json:"payload"`
}

// SeriesPoint is one per-generation measurement of a run.
type SeriesPoint struct {
	Generation int     `json:"generation"`
	Value      float64 `json:"value"`
	Density    float64 `json:"density"`
}

// Series is the per-generation trajectory attached to a run, e.g. block entropy or
// population density.
type Series struct {
	VersionedRecord
	RunID  string        `json:"run_id"`
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}
