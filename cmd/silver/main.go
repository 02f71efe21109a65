package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"flight-silver/internal/bronze"
	"flight-silver/internal/config"
	"flight-silver/internal/metrics"
	"flight-silver/internal/silver"
	"flight-silver/internal/storage"
	"flight-silver/pkg/logger"
	"flight-silver/pkg/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to YAML config file")
	in := flag.String("in", "", "bronze parquet file (overrides input.path)")
	out := flag.String("out", "", "silver parquet file (overrides output.path)")
	sample := flag.Bool("sample", false, "write a sample bronze snapshot to -in before transforming")
	preview := flag.Int("preview", 0, "log the first n silver rows after transforming")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	if *in != "" {
		cfg.Input.Path = *in
	}
	if *out != "" {
		cfg.Output.Path = *out
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 2
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format == "json")
	m := metrics.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *sample {
		snapshot := time.Now().UTC().Truncate(time.Second)
		tbl := bronze.Table(memory.DefaultAllocator, bronze.Sample(snapshot))
		err := storage.WriteTable(cfg.Input.Path, tbl, storage.Options{Compression: cfg.Output.Compression})
		tbl.Release()
		if err != nil {
			log.Error("Failed to write sample bronze snapshot: %v", err)
			return 1
		}
		log.Info("Wrote sample bronze snapshot %s to %s", utils.FormatTimestamp(snapshot), cfg.Input.Path)
	}

	transformer := silver.NewTransformer(
		silver.WithLogger(log),
		silver.WithMetrics(m),
		silver.WithCompression(cfg.Output.Compression),
	)

	_, err = transformer.Transform(ctx, cfg.Input.Path, cfg.Output.Path)

	if cfg.Metrics.Textfile != "" {
		if werr := m.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.Error("Failed to write metrics textfile: %v", werr)
		}
	}

	if err != nil {
		return 1
	}

	if *preview > 0 {
		if err := logPreview(ctx, log, cfg.Output.Path, *preview); err != nil {
			log.Error("Failed to read back silver table: %v", err)
			return 1
		}
	}
	return 0
}

func logPreview(ctx context.Context, log *logger.Logger, path string, n int) error {
	recs, err := silver.ReadFlightRecords(ctx, path, memory.DefaultAllocator)
	if err != nil {
		return err
	}
	if n > len(recs) {
		n = len(recs)
	}
	for _, r := range recs[:n] {
		latency := "n/a"
		if r.LatenciaSegundos != nil {
			latency = fmt.Sprintf("%.0fs", *r.LatenciaSegundos)
		}
		log.Info("%s %-8s %s (%.4f, %.4f) %s via %s, latency %s",
			r.CodigoAeronave, r.CodigoVuelo, r.PaisOrigen, r.Latitud, r.Longitud,
			r.EstadoVuelo, r.FuentePosicion, latency)
	}
	return nil
}
