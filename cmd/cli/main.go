// Command cli runs the pipeline once against local files, without a
// database: consolidate parameters, ingest input series, propose, dispatch,
// price, validate, and print or export the result.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"energy-core/internal/backtest"
	"energy-core/internal/ingest"
	"energy-core/internal/model"
	"energy-core/internal/params"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(2)
	}
	cmdRun(os.Args[2:])
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --params params.yaml --series data/ --start 2026-01-01 --days 7 --out results/")
	fmt.Println("")
	fmt.Println("series directory must contain price_import.csv, price_export.csv,")
	fmt.Println("pv1.csv, pv2.csv, wind.csv, load.csv (each: year,month,day,hour,value)")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	paramsPath := fs.String("params", "params.yaml", "path to the consolidated parameter form YAML")
	seriesDir := fs.String("series", "data", "directory of input series CSVs")
	startStr := fs.String("start", "", "first local calendar day, YYYY-MM-DD")
	days := fs.Int("days", 1, "number of calendar days to run")
	tz := fs.String("tz", "Europe/Warsaw", "local timezone for the calendar axis")
	outDir := fs.String("out", "results", "output directory for CSV exports")
	_ = fs.Parse(args)

	if *startStr == "" {
		fmt.Println("--start is required")
		os.Exit(2)
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fatalf("load timezone %q: %v", *tz, err)
	}
	start, err := time.ParseInLocation("2006-01-02", *startStr, loc)
	if err != nil {
		fatalf("parse --start: %v", err)
	}
	end := start.AddDate(0, 0, *days)

	forms, err := params.LoadForms(*paramsPath)
	if err != nil {
		fatalf("load params: %v", err)
	}
	cons, err := params.Consolidate(forms)
	if err != nil {
		fatalf("consolidate params: %v", err)
	}

	calendar := model.NewCalendarAxis(start, end, loc,
		func(string) bool { return true },  // no external workday calendar in the file-only CLI
		func(string) bool { return false }, // no external holiday calendar either
	)

	priceImport, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "price_import.csv"), calendar)
	if err != nil {
		fatalf("load price_import: %v", err)
	}
	priceExport, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "price_export.csv"), calendar)
	if err != nil {
		fatalf("load price_export: %v", err)
	}
	pv1, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "pv1.csv"), calendar)
	if err != nil {
		fatalf("load pv1: %v", err)
	}
	pv2, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "pv2.csv"), calendar)
	if err != nil {
		fatalf("load pv2: %v", err)
	}
	wind, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "wind.csv"), calendar)
	if err != nil {
		fatalf("load wind: %v", err)
	}
	load, err := ingest.LoadAndAlign(filepath.Join(*seriesDir, "load.csv"), calendar)
	if err != nil {
		fatalf("load load: %v", err)
	}

	engine := backtest.New()
	res, err := engine.Run(backtest.Inputs{
		Calendar: calendar,
		Prices:   ingest.PriceSeries{Import: priceImport, Export: priceExport},
		Prod:     ingest.ProductionSeries{PV1: pv1, PV2: pv2, Wind: wind, Load: load},
	}, cons)
	if err != nil {
		fatalf("run pipeline: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatalf("create output dir: %v", err)
	}
	if err := backtest.WriteCommitCSV(filepath.Join(*outDir, "commit.csv"), res); err != nil {
		fatalf("write commit.csv: %v", err)
	}
	if err := backtest.WritePricingCSV(filepath.Join(*outDir, "pricing.csv"), res); err != nil {
		fatalf("write pricing.csv: %v", err)
	}

	fmt.Printf("Ran %d hours. Final SOC oze=%.3f arbi=%.3f MWh\n", len(res.Hours), res.FinalSOCOze, res.FinalSOCArbi)
	for _, t := range backtest.Summarize(res) {
		fmt.Printf("  %-10s %-4s  energy=%10.3f MWh  total=%12.2f PLN\n", t.Scenario, t.Tariff, t.TotalEnergyMWh, t.TotalPLN)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
