package model

import "math"

const (
	// KmhPerMeterPerSecond converts m/s to km/h.
	KmhPerMeterPerSecond = 3.6
	// FeetPerMeter converts metres to feet.
	FeetPerMeter = 3.28084
	// MaxLatencySeconds is the oldest position report a silver row may carry.
	MaxLatencySeconds = 300.0
)

// PositionSource is the OpenSky position_source enum.
type PositionSource int64

const (
	SourceADSB    PositionSource = 0
	SourceASTERIX PositionSource = 1
	SourceMLAT    PositionSource = 2
	SourceFLARM   PositionSource = 3
)

const UnknownPositionSource = "Desconocido"

var positionSourceLabels = map[PositionSource]string{
	SourceADSB:    "ADS-B",
	SourceASTERIX: "ASTERIX",
	SourceMLAT:    "MLAT",
	SourceFLARM:   "FLARM",
}

// PositionSourceLabel maps a raw position_source value to its label.
// Null, non-integral and unlisted values map to UnknownPositionSource.
func PositionSourceLabel(v float64, valid bool) string {
	if !valid || math.IsNaN(v) || v != math.Trunc(v) {
		return UnknownPositionSource
	}
	if label, ok := positionSourceLabels[PositionSource(v)]; ok {
		return label
	}
	return UnknownPositionSource
}

const (
	StateClimbing   = "Subiendo"
	StateDescending = "Bajando"
	StateLevel      = "Nivelado"
)

// FlightStateRule labels a vertical rate when Match holds.
type FlightStateRule struct {
	Match func(verticalRate float64) bool
	Label string
}

// FlightStateRules are evaluated in order; the first match wins.
var FlightStateRules = []FlightStateRule{
	{Match: func(vr float64) bool { return vr > 1 }, Label: StateClimbing},
	{Match: func(vr float64) bool { return vr < -1 }, Label: StateDescending},
}

// FlightState classifies a vertical rate in m/s. A null rate is level.
func FlightState(verticalRate float64, valid bool) string {
	if !valid {
		return StateLevel
	}
	for _, r := range FlightStateRules {
		if r.Match(verticalRate) {
			return r.Label
		}
	}
	return StateLevel
}
