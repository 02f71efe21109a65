// Package bronze encodes state vectors into the bronze table layout.
package bronze

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"flight-silver/internal/model"
)

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

// Schema is the bronze layout written by the snapshot collector.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: model.ColSnapshotTime, Type: timestampType, Nullable: true},
		{Name: model.ColTimePosition, Type: timestampType, Nullable: true},
		{Name: model.ColICAO24, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: model.ColCallsign, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: model.ColOriginCountry, Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: model.ColLongitude, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: model.ColLatitude, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: model.ColOnGround, Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: model.ColVelocity, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: model.ColBaroAltitude, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: model.ColVerticalRate, Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: model.ColPositionSource, Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: model.ColSensors, Type: arrow.ListOf(arrow.PrimitiveTypes.Int32), Nullable: true},
	}, nil)
}

// Record encodes rows with Schema. A nil Sensors slice is a null cell.
func Record(mem memory.Allocator, rows []model.StateVector) arrow.Record {
	b := array.NewRecordBuilder(mem, Schema())
	defer b.Release()

	for _, r := range rows {
		b.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(r.SnapshotTime.UnixMicro()))
		appendTime(b.Field(1).(*array.TimestampBuilder), r.TimePosition)
		b.Field(2).(*array.StringBuilder).Append(r.ICAO24)
		appendString(b.Field(3).(*array.StringBuilder), r.Callsign)
		b.Field(4).(*array.StringBuilder).Append(r.OriginCountry)
		appendFloat(b.Field(5).(*array.Float64Builder), r.Longitude)
		appendFloat(b.Field(6).(*array.Float64Builder), r.Latitude)

		onGround := b.Field(7).(*array.BooleanBuilder)
		if r.OnGround == nil {
			onGround.AppendNull()
		} else {
			onGround.Append(*r.OnGround)
		}

		appendFloat(b.Field(8).(*array.Float64Builder), r.Velocity)
		appendFloat(b.Field(9).(*array.Float64Builder), r.BaroAltitude)
		appendFloat(b.Field(10).(*array.Float64Builder), r.VerticalRate)

		source := b.Field(11).(*array.Int32Builder)
		if r.PositionSource == nil {
			source.AppendNull()
		} else {
			source.Append(*r.PositionSource)
		}

		sensors := b.Field(12).(*array.ListBuilder)
		if r.Sensors == nil {
			sensors.AppendNull()
		} else {
			sensors.Append(true)
			sensors.ValueBuilder().(*array.Int32Builder).AppendValues(r.Sensors, nil)
		}
	}

	return b.NewRecord()
}

// Table encodes rows as a single-chunk table.
func Table(mem memory.Allocator, rows []model.StateVector) arrow.Table {
	rec := Record(mem, rows)
	defer rec.Release()
	return array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
}

// Sample returns a handful of state vectors covering every filter and
// category of the silver transform, captured at snapshot.
func Sample(snapshot time.Time) []model.StateVector {
	at := func(ago time.Duration) *time.Time {
		t := snapshot.Add(-ago)
		return &t
	}
	str := func(s string) *string { return &s }
	f := func(v float64) *float64 { return &v }
	b := func(v bool) *bool { return &v }
	src := func(v int32) *int32 { return &v }

	return []model.StateVector{
		{SnapshotTime: snapshot, TimePosition: at(10 * time.Second), ICAO24: "3c6444", Callsign: str("DLH9LF  "), OriginCountry: "Germany",
			Longitude: f(8.57), Latitude: f(50.03), OnGround: b(false), Velocity: f(231.4), BaroAltitude: f(10972.8), VerticalRate: f(0), PositionSource: src(0), Sensors: []int32{}},
		{SnapshotTime: snapshot, TimePosition: at(4 * time.Second), ICAO24: "4ca7b5", Callsign: str("RYR4TK"), OriginCountry: "Ireland",
			Longitude: f(-6.27), Latitude: f(53.42), OnGround: b(false), Velocity: f(120.2), BaroAltitude: f(1828.8), VerticalRate: f(9.75), PositionSource: src(2), Sensors: []int32{1123, 1456}},
		{SnapshotTime: snapshot, TimePosition: at(2 * time.Second), ICAO24: "a0f1bb", Callsign: str("AAL100"), OriginCountry: "United States",
			Longitude: f(-73.78), Latitude: f(40.64), OnGround: b(false), Velocity: f(140.0), BaroAltitude: f(2133.6), VerticalRate: f(-6.5), PositionSource: src(1)},
		{SnapshotTime: snapshot, TimePosition: at(1 * time.Second), ICAO24: "39856a", Callsign: str("AFR1234"), OriginCountry: "France",
			Longitude: f(2.55), Latitude: f(49.01), OnGround: b(true), Velocity: f(8.0), BaroAltitude: nil, VerticalRate: nil, PositionSource: src(0)},
		{SnapshotTime: snapshot, TimePosition: at(15 * time.Minute), ICAO24: "e48df6", Callsign: str("GLO1450"), OriginCountry: "Brazil",
			Longitude: f(-46.47), Latitude: f(-23.43), OnGround: b(false), Velocity: f(200.0), BaroAltitude: f(9000), VerticalRate: f(0), PositionSource: src(0)},
		{SnapshotTime: snapshot, TimePosition: at(3 * time.Second), ICAO24: "406b90", Callsign: str(""), OriginCountry: "United Kingdom",
			Longitude: f(-0.45), Latitude: f(51.47), OnGround: b(false), Velocity: f(90.0), BaroAltitude: f(600), VerticalRate: f(-3), PositionSource: src(3)},
		{SnapshotTime: snapshot, TimePosition: nil, ICAO24: "c07c71", Callsign: str("ACA857"), OriginCountry: "Canada",
			Longitude: nil, Latitude: nil, OnGround: b(false), Velocity: f(250.0), BaroAltitude: f(11582.4), VerticalRate: f(0), PositionSource: nil},
		{SnapshotTime: snapshot, TimePosition: at(9 * time.Second), ICAO24: "3c6444", Callsign: str("DLH9LF  "), OriginCountry: "Germany",
			Longitude: f(8.58), Latitude: f(50.04), OnGround: b(false), Velocity: f(231.9), BaroAltitude: f(10972.8), VerticalRate: f(0), PositionSource: src(0)},
	}
}

func appendTime(b *array.TimestampBuilder, t *time.Time) {
	if t == nil {
		b.AppendNull()
		return
	}
	b.Append(arrow.Timestamp(t.UnixMicro()))
}

func appendString(b *array.StringBuilder, s *string) {
	if s == nil {
		b.AppendNull()
		return
	}
	b.Append(*s)
}

func appendFloat(b *array.Float64Builder, v *float64) {
	if v == nil {
		b.AppendNull()
		return
	}
	b.Append(*v)
}
