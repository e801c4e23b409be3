package models

import "time"

type Criticality string

const (
	CriticalityCritical Criticality = "critical"
	CriticalityWarning  Criticality = "warning"
)

// Alert is a draft alert record. DedupKey is stable for the same condition so
// repeated scans update the record instead of creating a new one.
type Alert struct {
	DedupKey           string      `json:"dedup_key"`
	Type               string      `json:"type"`
	EntityID           string      `json:"entity_id"`
	Subtype            string      `json:"subtype"`
	Criticality        Criticality `json:"criticality"`
	Message            string      `json:"message"`
	FlightID           string      `json:"flight_id,omitempty"`
	TimeToBlockMinutes *int        `json:"time_to_block_minutes,omitempty"`
	DetectedAt         time.Time   `json:"detected_at"`
}
