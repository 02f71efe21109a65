// Package silver turns one bronze snapshot of aircraft state vectors into
// the cleaned, enriched silver table the dashboards read.
package silver

import (
	"context"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/google/uuid"

	"flight-silver/internal/frame"
	"flight-silver/internal/metrics"
	"flight-silver/internal/model"
	"flight-silver/internal/storage"
	"flight-silver/pkg/logger"
)

// Transformer runs the bronze to silver stage sequence over one file at a
// time. It holds no per-batch state and may be reused.
type Transformer struct {
	logger  *logger.Logger
	metrics *metrics.Metrics
	mem     memory.Allocator
	write   storage.Options
}

type Option func(*Transformer)

func WithLogger(l *logger.Logger) Option {
	return func(t *Transformer) { t.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Transformer) { t.metrics = m }
}

func WithAllocator(mem memory.Allocator) Option {
	return func(t *Transformer) { t.mem = mem }
}

// WithCompression sets the Parquet codec of the silver file.
func WithCompression(codec string) Option {
	return func(t *Transformer) { t.write.Compression = codec }
}

func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{
		logger: logger.Discard(),
		mem:    memory.DefaultAllocator,
		write:  storage.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TransformBronzeToSilver transforms inputPath into outputPath with default
// settings and returns outputPath.
func TransformBronzeToSilver(ctx context.Context, inputPath, outputPath string) (string, error) {
	return NewTransformer().Transform(ctx, inputPath, outputPath)
}

// Transform reads the bronze table at inputPath, runs every stage and
// writes the silver table to outputPath, creating its directory. Nothing is
// written when any stage fails. An empty input is written through as is.
func (t *Transformer) Transform(ctx context.Context, inputPath, outputPath string) (string, error) {
	log := t.logger.With("run_id", uuid.NewString())
	start := time.Now()

	result, err := t.run(ctx, log, inputPath, outputPath)

	if t.metrics != nil {
		t.metrics.RecordBatch(result, time.Since(start))
	}
	if err != nil {
		log.Error("Transform %s -> %s failed: %v", inputPath, outputPath, err)
		return "", err
	}
	log.Info("Transform %s -> %s finished in %v", inputPath, outputPath, time.Since(start))
	return outputPath, nil
}

func (t *Transformer) run(ctx context.Context, log *logger.Logger, inputPath, outputPath string) (string, error) {
	if err := storage.EnsureParentDir(outputPath); err != nil {
		return resultLabel(err), err
	}

	tbl, err := storage.ReadTable(ctx, inputPath, t.mem)
	if err != nil {
		return resultLabel(err), err
	}
	defer tbl.Release()

	rowsIn := int(tbl.NumRows())
	if t.metrics != nil {
		t.metrics.AddRowsRead(rowsIn)
	}

	if rowsIn == 0 {
		log.Info("Bronze snapshot %s is empty, writing it through", inputPath)
		if err := storage.WriteTable(outputPath, tbl, t.write); err != nil {
			return resultLabel(err), err
		}
		return metrics.ResultEmpty, nil
	}

	f, err := frame.FromTable(tbl, t.mem)
	if err != nil {
		return resultLabel(err), err
	}
	defer f.Release()

	for _, s := range stages {
		before := f.NumRows()
		next, err := s.apply(f, t.mem)
		if err != nil {
			err = fmt.Errorf("stage %s: %w", s.name, err)
			return resultLabel(err), err
		}
		f = next

		dropped := before - f.NumRows()
		log.Debug("Stage %s: %d -> %d rows", s.name, before, f.NumRows())
		if t.metrics != nil && dropped > 0 {
			t.metrics.AddRowsDropped(s.name, dropped)
		}
	}

	fields, err := silverFields(f)
	if err != nil {
		return resultLabel(err), err
	}
	rec, err := f.Record(t.mem, fields)
	if err != nil {
		err = fmt.Errorf("materialize silver table: %w", err)
		return resultLabel(err), err
	}
	defer rec.Release()

	if err := storage.WriteRecord(outputPath, rec, t.write); err != nil {
		return resultLabel(err), err
	}

	if t.metrics != nil {
		t.metrics.AddRowsWritten(int(rec.NumRows()))
	}
	log.Info("Wrote %d of %d rows to %s", rec.NumRows(), rowsIn, outputPath)
	return metrics.ResultSuccess, nil
}

// silverFields is the output schema. snapshot_time keeps its input
// timestamp type.
func silverFields(f *frame.Frame) ([]arrow.Field, error) {
	snap, err := f.Column(model.ColSnapshotTime)
	if err != nil {
		return nil, err
	}
	if snap.DataType().ID() != arrow.TIMESTAMP {
		return nil, fmt.Errorf("%w: %s is %s, not a timestamp", ErrTypeCoercion, model.ColSnapshotTime, snap.DataType())
	}

	fields := make([]arrow.Field, 0, len(model.SilverColumns))
	for _, name := range model.SilverColumns {
		var dt arrow.DataType
		switch name {
		case model.ColSnapshotTime:
			dt = snap.DataType()
		case model.ColVelocidadKmh, model.ColAltitudPies, model.ColLatitud, model.ColLongitud, model.ColLatenciaSegundos:
			dt = arrow.PrimitiveTypes.Float64
		default:
			dt = arrow.BinaryTypes.String
		}
		fields = append(fields, arrow.Field{Name: name, Type: dt, Nullable: true})
	}
	return fields, nil
}
