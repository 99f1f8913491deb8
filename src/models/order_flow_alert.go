package models

import "time"

type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

const AlertTypeRedBurst = "red_burst"

// OrderFlowAlert is a detected tape anomaly. Severity is critical exactly
// when VolumeRatio reached the red burst threshold.
type OrderFlowAlert struct {
	Symbol       string
	AlertType    string
	Severity     AlertSeverity
	VolumeRatio  float64
	SellFraction float64
	Timestamp    time.Time
}
