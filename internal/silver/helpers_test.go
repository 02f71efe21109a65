package silver

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"flight-silver/internal/bronze"
	"flight-silver/internal/model"
	"flight-silver/internal/storage"
)

var snapshot = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

// airborne is the worked example row: it survives every stage.
func airborne(icao string) model.StateVector {
	return model.StateVector{
		SnapshotTime:   snapshot,
		TimePosition:   ptr(snapshot.Add(-10 * time.Second)),
		ICAO24:         icao,
		Callsign:       ptr("ABC123"),
		OriginCountry:  "DE",
		Longitude:      ptr(10.0),
		Latitude:       ptr(50.0),
		OnGround:       ptr(false),
		Velocity:       ptr(100.0),
		BaroAltitude:   ptr(1000.0),
		VerticalRate:   ptr(5.0),
		PositionSource: ptr(int32(0)),
		Sensors:        []int32{1, 2},
	}
}

func writeBronze(t *testing.T, rows []model.StateVector) string {
	t.Helper()
	rec := bronze.Record(memory.DefaultAllocator, rows)
	defer rec.Release()
	return writeRecord(t, rec)
}

func writeRecord(t *testing.T, rec arrow.Record) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bronze", "states.parquet")
	if err := storage.WriteRecord(path, rec, storage.DefaultOptions()); err != nil {
		t.Fatalf("write bronze fixture: %v", err)
	}
	return path
}

// reshape rebuilds rec column by column; fn may rename, replace or drop
// (keep=false) each column.
func reshape(rec arrow.Record, fn func(arrow.Field, arrow.Array) (arrow.Field, arrow.Array, bool)) arrow.Record {
	var fields []arrow.Field
	var cols []arrow.Array
	for i, f := range rec.Schema().Fields() {
		nf, nc, keep := fn(f, rec.Column(i))
		if !keep {
			continue
		}
		fields = append(fields, nf)
		cols = append(cols, nc)
	}
	return array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
}

func bronzeRecordWith(rows []model.StateVector, fn func(arrow.Field, arrow.Array) (arrow.Field, arrow.Array, bool)) arrow.Record {
	rec := bronze.Record(memory.DefaultAllocator, rows)
	defer rec.Release()
	return reshape(rec, fn)
}

func outputPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "silver", "2024", "05", "01", "states.parquet")
}

func transformRows(t *testing.T, rows []model.StateVector) []model.FlightRecord {
	t.Helper()
	out, err := TransformBronzeToSilver(context.Background(), writeBronze(t, rows), outputPath(t))
	if err != nil {
		t.Fatalf("TransformBronzeToSilver: %v", err)
	}
	return readSilver(t, out)
}

func readSilver(t *testing.T, path string) []model.FlightRecord {
	t.Helper()
	recs, err := ReadFlightRecords(context.Background(), path, memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("read silver: %v", err)
	}
	return recs
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b))
}

func aircraftCodes(recs []model.FlightRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.CodigoAeronave
	}
	return out
}
