package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"example.com/fzgate"
	"example.com/fzgate/internal/cams"
	"example.com/fzgate/internal/common"
	"example.com/fzgate/internal/gdf"
	"example.com/fzgate/internal/report"
	"example.com/fzgate/internal/zebra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "convert":
		convertCmd(os.Args[2:])
	case "scan":
		scanCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`fzctl %s (built %s) <command> [options]

Commands:
  convert  --in <file.fz[.gz|.bz2]> [--out <records.json>] [--run <n>] [--resync] [--trace]
  scan     --in <file> [--resync] [--metrics] [--progress]
  report   --in <file> --out <summary.json> [--pdf <summary.pdf>] [--resync]

All commands accept --config <config.yaml>.
`, version, buildDate)
}

func loadCommandConfig(path string) config {
	if path == "" {
		return defaultConfig()
	}
	cfg, err := loadConfig(path)
	if err != nil {
		common.Fatalf("load config: %v", err)
	}
	if err := setupLogging(cfg); err != nil {
		common.Fatalf("setup logging: %v", err)
	}
	return cfg
}

func openReader(in string, cfg config, resync bool, run uint64, trace bool, metrics *common.Metrics) *fzgate.Reader {
	opts := fzgate.Options{
		Resynchronise: resync || cfg.Resynchronise,
		ExpectedRun:   uint32(run),
		Metrics:       metrics,
	}
	if trace {
		opts.Trace = os.Stderr
	}
	r, err := fzgate.Open(in, opts)
	if err != nil {
		common.Fatalf("open: %v", err)
	}
	return r
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input data file")
	out := fs.String("out", "", "output JSON file (default stdout)")
	run := fs.Uint64("run", 0, "expected run number (default from file name)")
	resync := fs.Bool("resync", false, "recover from corrupted record boundaries")
	trace := fs.Bool("trace", false, "print per-step decode diagnostics")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	cfg := loadCommandConfig(*configPath)

	r := openReader(*in, cfg, *resync, *run, *trace, nil)
	defer r.Close()

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			common.Fatalf("create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	first := true
	fmt.Fprintln(w, "[")
	err := r.ForEach(func(rec *gdf.Record) error {
		if !first {
			fmt.Fprintln(w, ",")
		}
		first = false
		return enc.Encode(rec)
	})
	fmt.Fprintln(w, "]")
	if err != nil {
		common.Fatalf("decode: %v", err)
	}
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	in := fs.String("in", "", "input data file")
	resync := fs.Bool("resync", false, "recover from corrupted record boundaries")
	metricsFlag := fs.Bool("metrics", false, "print throughput metrics")
	progressFlag := fs.Bool("progress", false, "display progress updates")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	cfg := loadCommandConfig(*configPath)

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		if info, err := os.Stat(*in); err == nil {
			metrics.SetTotalBytes(info.Size())
		}
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, time.Second)
	}

	camTable, err := cams.EnsureLoaded(cfg.CamerasFile)
	if err != nil {
		common.Fatalf("camera table: %v", err)
	}

	r := openReader(*in, cfg, *resync, 0, false, metrics)
	defer r.Close()

	counts := make(map[gdf.RecordType]int64)
	nadc := 0
	err = r.ForEach(func(rec *gdf.Record) error {
		counts[rec.Type]++
		if rec.Type == gdf.RecordEvent && rec.Event != nil && nadc == 0 {
			nadc = rec.Event.NADC
		}
		return nil
	})
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	if err != nil {
		common.Fatalf("decode: %v", err)
	}

	fmt.Printf("%s: %d physical records, %d run mismatches\n",
		*in, r.FramesFound(), r.RunMismatches())
	for _, typ := range []gdf.RecordType{
		gdf.RecordRun, gdf.RecordEvent, gdf.RecordFrame,
		gdf.RecordHV, gdf.RecordTracking, gdf.RecordCCD, gdf.RecordUnknown,
	} {
		if counts[typ] > 0 {
			fmt.Printf("  %-9s %d\n", typ, counts[typ])
		}
	}
	if cam, ok := camTable.ByChannelCount(nadc); ok {
		fmt.Printf("Camera: %s (%d pixels, %d ADC channels)\n", cam.Name, cam.NPixels, cam.NADC)
	}
	if metrics != nil && *metricsFlag {
		s := metrics.Snapshot()
		fmt.Printf("Processed %s in %s (%.2f MiB/s), %d resyncs, %d discarded frames\n",
			common.FormatBytes(s.Bytes), s.Duration.Round(time.Millisecond),
			s.ThroughputBytesPerSecond()/(1024*1024), s.Resyncs, s.Discards)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input data file")
	out := fs.String("out", "summary.json", "summary JSON output")
	pdfOut := fs.String("pdf", "", "summary PDF output")
	resync := fs.Bool("resync", false, "recover from corrupted record boundaries")
	configPath := fs.String("config", "", "configuration file")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	cfg := loadCommandConfig(*configPath)

	metrics := common.NewMetrics()
	metrics.Start()

	summary := report.Summary{
		File:      *in,
		RunNumber: fzgate.RunNumberFromFilename(*in),
		StartedAt: time.Now().UTC(),
	}
	if summary.RunNumber != 0 {
		summary.SeasonYear = cams.YearForRun(summary.RunNumber)
	}
	if hash, size, err := common.Sha256OfFile(*in); err == nil {
		summary.Sha256 = hash
		summary.SizeBytes = size
	}

	r := openReader(*in, cfg, *resync, uint64(summary.RunNumber), false, metrics)
	defer r.Close()

	decodeErr := r.ForEach(func(rec *gdf.Record) error {
		summary.AddRecord(string(rec.Type))
		return nil
	})
	metrics.Stop()
	summary.FinishedAt = time.Now().UTC()

	s := metrics.Snapshot()
	summary.Frames = s.Frames
	summary.Resyncs = s.Resyncs
	summary.Discards = s.Discards
	if decodeErr != nil {
		summary.Error = decodeErr.Error()
		var de *zebra.DecodeError
		var te *zebra.TruncatedError
		if errors.As(decodeErr, &de) || errors.As(decodeErr, &te) {
			common.Logf("decode stopped: %v", decodeErr)
		}
	}

	if err := report.SaveSummaryJSON(summary, *out); err != nil {
		common.Fatalf("write summary: %v", err)
	}
	if *pdfOut != "" {
		if err := report.SaveSummaryPDF(summary, *pdfOut); err != nil {
			common.Fatalf("write pdf: %v", err)
		}
	}
	common.Logf("summary written to %s (%d records)", *out, summary.Records)
	if decodeErr != nil {
		os.Exit(1)
	}
}
