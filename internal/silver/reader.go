package silver

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"flight-silver/internal/frame"
	"flight-silver/internal/model"
	"flight-silver/internal/storage"
)

// ReadFlightRecords decodes a silver file written by Transform.
func ReadFlightRecords(ctx context.Context, path string, mem memory.Allocator) ([]model.FlightRecord, error) {
	tbl, err := storage.ReadTable(ctx, path, mem)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	f, err := frame.FromTable(tbl, mem)
	if err != nil {
		return nil, err
	}
	defer f.Release()

	var firstErr error
	column := func(name string) *frame.Column {
		c, err := f.Column(name)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return c
	}
	texts := func(name string) ([]string, []bool) {
		c := column(name)
		if c == nil {
			return nil, nil
		}
		return c.Strings()
	}
	floats := func(name string) ([]float64, []bool) {
		c := column(name)
		if c == nil {
			return nil, nil
		}
		v, ok, err := c.Float64s()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %q: %w", name, err)
		}
		return v, ok
	}

	var snaps []time.Time
	if c := column(model.ColSnapshotTime); c != nil {
		if snaps, _, err = c.Times(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("column %q: %w", model.ColSnapshotTime, err)
		}
	}
	aircraft, _ := texts(model.ColCodigoAeronave)
	flights, _ := texts(model.ColCodigoVuelo)
	countries, _ := texts(model.ColPaisOrigen)
	speed, speedOK := floats(model.ColVelocidadKmh)
	alt, altOK := floats(model.ColAltitudPies)
	lat, _ := floats(model.ColLatitud)
	lon, _ := floats(model.ColLongitud)
	states, _ := texts(model.ColEstadoVuelo)
	sources, _ := texts(model.ColFuentePosicion)
	latency, latencyOK := floats(model.ColLatenciaSegundos)
	sensors, sensorsOK := texts(model.ColSensorsStr)
	if firstErr != nil {
		return nil, firstErr
	}

	nullable := func(v []float64, ok []bool, i int) *float64 {
		if !ok[i] {
			return nil
		}
		x := v[i]
		return &x
	}

	out := make([]model.FlightRecord, f.NumRows())
	for i := range out {
		out[i] = model.FlightRecord{
			SnapshotTime:     snaps[i],
			CodigoAeronave:   aircraft[i],
			CodigoVuelo:      flights[i],
			PaisOrigen:       countries[i],
			VelocidadKmh:     nullable(speed, speedOK, i),
			AltitudPies:      nullable(alt, altOK, i),
			Latitud:          lat[i],
			Longitud:         lon[i],
			EstadoVuelo:      states[i],
			FuentePosicion:   sources[i],
			LatenciaSegundos: nullable(latency, latencyOK, i),
		}
		if sensorsOK[i] {
			s := sensors[i]
			out[i].SensorsStr = &s
		}
	}
	return out, nil
}
