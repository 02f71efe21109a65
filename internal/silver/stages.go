package silver

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"flight-silver/internal/frame"
	"flight-silver/internal/model"
	"flight-silver/pkg/utils"
)

type stage struct {
	name  string
	apply func(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error)
}

// stages run in order; each one consumes the previous one's frame.
var stages = []stage{
	{"normalize_columns", normalizeColumns},
	{"derive_sensors_str", deriveSensorsStr},
	{"filter_airborne", filterAirborne},
	{"drop_missing_position", dropMissingPosition},
	{"drop_missing_callsign", dropMissingCallsign},
	{"convert_units", convertUnits},
	{"classify_flight_state", classifyFlightState},
	{"map_position_source", mapPositionSource},
	{"compute_latency", computeLatency},
	{"filter_latency", filterLatency},
	{"deduplicate", deduplicate},
	{"rename", renameColumns},
	{"project", project},
}

func normalizeColumns(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	return f.RenameAll(NormalizeColumnName)
}

func deriveSensorsStr(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error) {
	if !f.Has(model.ColSensors) {
		return f, nil
	}
	sensors, err := f.Column(model.ColSensors)
	if err != nil {
		return nil, err
	}
	vals, valid := sensors.JoinLists(",")
	return f.WithColumn(model.ColSensorsStr, frame.StringArray(mem, vals, valid))
}

// filterAirborne keeps rows whose on_ground is exactly false. Columns that
// are neither boolean nor numeric never equal false.
func filterAirborne(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	col, err := f.Column(model.ColOnGround)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, f.NumRows())
	onGround, valid, err := col.Bools()
	if err != nil {
		return f.Filter(keep)
	}
	for i := range keep {
		keep[i] = valid[i] && !onGround[i]
	}
	return f.Filter(keep)
}

func dropMissingPosition(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	lon, err := f.Column(model.ColLongitude)
	if err != nil {
		return nil, err
	}
	lat, err := f.Column(model.ColLatitude)
	if err != nil {
		return nil, err
	}
	keep := make([]bool, f.NumRows())
	for i := range keep {
		keep[i] = !lon.IsNull(i) && !lat.IsNull(i)
	}
	return f.Filter(keep)
}

// dropMissingCallsign drops null and empty callsigns. Whitespace-only
// callsigns are kept.
func dropMissingCallsign(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	col, err := f.Column(model.ColCallsign)
	if err != nil {
		return nil, err
	}
	callsigns, valid := col.Strings()
	keep := make([]bool, f.NumRows())
	for i := range keep {
		keep[i] = valid[i] && callsigns[i] != ""
	}
	return f.Filter(keep)
}

func convertUnits(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error) {
	conversions := []struct {
		from, to string
		factor   float64
	}{
		{model.ColVelocity, model.ColVelocidadKmh, model.KmhPerMeterPerSecond},
		{model.ColBaroAltitude, model.ColAltitudPies, model.FeetPerMeter},
	}

	out := f
	for _, c := range conversions {
		col, err := out.Column(c.from)
		if err != nil {
			return nil, err
		}
		vals, valid, err := col.Float64s()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.from, err)
		}
		for i := range vals {
			if valid[i] {
				vals[i] *= c.factor
			}
		}
		if out, err = out.WithColumn(c.to, frame.Float64Array(mem, vals, valid)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func classifyFlightState(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error) {
	col, err := f.Column(model.ColVerticalRate)
	if err != nil {
		return nil, err
	}
	rates, valid, err := col.Float64s()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", model.ColVerticalRate, err)
	}
	labels := make([]string, len(rates))
	for i := range rates {
		labels[i] = model.FlightState(rates[i], valid[i])
	}
	return f.WithColumn(model.ColEstadoVuelo, frame.StringArray(mem, labels, nil))
}

// mapPositionSource never fails on values: anything outside the lookup
// table, including non-numeric columns, is unknown.
func mapPositionSource(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error) {
	col, err := f.Column(model.ColPositionSource)
	if err != nil {
		return nil, err
	}
	labels := make([]string, f.NumRows())
	sources, valid, err := col.Float64s()
	for i := range labels {
		if err != nil {
			labels[i] = model.UnknownPositionSource
			continue
		}
		labels[i] = model.PositionSourceLabel(sources[i], valid[i])
	}
	return f.WithColumn(model.ColFuentePosicion, frame.StringArray(mem, labels, nil))
}

func computeLatency(f *frame.Frame, mem memory.Allocator) (*frame.Frame, error) {
	snapCol, err := f.Column(model.ColSnapshotTime)
	if err != nil {
		return nil, err
	}
	posCol, err := f.Column(model.ColTimePosition)
	if err != nil {
		return nil, err
	}
	snaps, snapValid, err := snapCol.Times()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", model.ColSnapshotTime, err)
	}
	positions, posValid, err := posCol.Times()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", model.ColTimePosition, err)
	}

	latency := make([]float64, f.NumRows())
	valid := make([]bool, f.NumRows())
	for i := range latency {
		if snapValid[i] && posValid[i] {
			latency[i] = utils.SecondsBetween(positions[i], snaps[i])
			valid[i] = true
		}
	}
	return f.WithColumn(model.ColLatenciaSegundos, frame.Float64Array(mem, latency, valid))
}

// filterLatency drops rows older than MaxLatencySeconds. A null latency is
// not greater than the limit, so the row stays.
func filterLatency(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	col, err := f.Column(model.ColLatenciaSegundos)
	if err != nil {
		return nil, err
	}
	latency, valid, err := col.Float64s()
	if err != nil {
		return nil, fmt.Errorf("column %q: %w", model.ColLatenciaSegundos, err)
	}
	keep := make([]bool, f.NumRows())
	for i := range keep {
		keep[i] = !valid[i] || latency[i] <= model.MaxLatencySeconds
	}
	return f.Filter(keep)
}

type dedupKey struct {
	snapshot      string
	snapshotValid bool
	aircraft      string
	aircraftValid bool
}

// deduplicate keeps the first row per (snapshot_time, icao24).
func deduplicate(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	snapCol, err := f.Column(model.ColSnapshotTime)
	if err != nil {
		return nil, err
	}
	icaoCol, err := f.Column(model.ColICAO24)
	if err != nil {
		return nil, err
	}
	snaps, snapValid := snapCol.Strings()
	icaos, icaoValid := icaoCol.Strings()

	seen := make(map[dedupKey]struct{}, f.NumRows())
	keep := make([]bool, f.NumRows())
	for i := range keep {
		k := dedupKey{snaps[i], snapValid[i], icaos[i], icaoValid[i]}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[i] = true
	}
	return f.Filter(keep)
}

func renameColumns(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	return f.Rename(model.SilverRenames)
}

func project(f *frame.Frame, _ memory.Allocator) (*frame.Frame, error) {
	return f.Select(model.SilverColumns...)
}
