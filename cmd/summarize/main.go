// Command summarize computes station climatologies from a CSV of daily
// observations without Kafka. It runs the same domain package as the service,
// so its output matches what the pipeline publishes.
//
// The input needs a header row with the columns station, date, tmax, tmin and
// prcp. Dates are YYYY-MM-DD. Empty, NA and NaN cells are treated as missing.
//
// Usage:
//
//	go run ./cmd/summarize -in data/observations.csv -out climatology.json
//	go run ./cmd/summarize -in - -station USW00094728 < observations.csv
package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/station-climatology/internal/domain"
	"github.com/jonboulle/clockwork"
)

var requiredColumns = []string{"station", "date", "tmax", "tmin", "prcp"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "-", "input CSV path, - for stdin")
	out := flag.String("out", "", "output JSON path (default stdout)")
	station := flag.String("station", "", "only summarize this station")
	computedAt := flag.String("computed-at", "", "fixed RFC3339 timestamp for computed_at, for reproducible output")
	flag.Parse()

	if *computedAt != "" {
		at, err := time.Parse(time.RFC3339, *computedAt)
		if err != nil {
			return fmt.Errorf("invalid -computed-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	src, closeSrc, err := openInput(*in)
	if err != nil {
		return err
	}
	defer closeSrc()

	byStation, err := readObservations(src)
	if err != nil {
		return err
	}

	summaries, err := summarize(byStation, *station)
	if err != nil {
		return err
	}
	log.Printf("summarized %d station(s)", len(summaries))

	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if *out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(*out, data, 0o600)
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// readObservations groups CSV rows by station, preserving row order.
func readObservations(r io.Reader) (map[string][]domain.Observation, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	byStation := make(map[string][]domain.Observation)
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		obs, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if obs.Station == "" {
			continue
		}
		byStation[obs.Station] = append(byStation[obs.Station], obs)
	}
	return byStation, nil
}

func parseRow(row []string, colIdx map[string]int) (domain.Observation, error) {
	obs := domain.Observation{Station: get(row, colIdx, "station")}
	obs.Year, obs.Month, obs.Day = parseDate(get(row, colIdx, "date"))

	var err error
	if obs.MaxTemp, err = parseValue(get(row, colIdx, "tmax")); err != nil {
		return obs, fmt.Errorf("tmax: %w", err)
	}
	if obs.MinTemp, err = parseValue(get(row, colIdx, "tmin")); err != nil {
		return obs, fmt.Errorf("tmin: %w", err)
	}
	if obs.Rainfall, err = parseValue(get(row, colIdx, "prcp")); err != nil {
		return obs, fmt.Errorf("prcp: %w", err)
	}
	return obs, nil
}

// parseDate splits YYYY-MM-DD. Unparsable parts come back as zero, which the
// domain treats as an absent key.
func parseDate(s string) (year, month, day int) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return 0, 0, 0
	}
	year, _ = strconv.Atoi(parts[0])
	month, _ = strconv.Atoi(parts[1])
	day, _ = strconv.Atoi(parts[2])
	return year, month, day
}

func parseValue(s string) (*float64, error) {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return domain.Float(v), nil
}

func summarize(byStation map[string][]domain.Observation, only string) ([]domain.Climatology, error) {
	stations := make([]string, 0, len(byStation))
	for s := range byStation {
		if only == "" || s == only {
			stations = append(stations, s)
		}
	}
	if only != "" && len(stations) == 0 {
		return nil, fmt.Errorf("station %q not found in input", only)
	}
	slices.Sort(stations)

	out := make([]domain.Climatology, 0, len(stations))
	for _, s := range stations {
		summary, err := domain.Summarize(s, byStation[s])
		if err != nil {
			return nil, err
		}
		if summary.Skipped > 0 {
			log.Printf("%s: skipped %d record(s) without a year and month", s, summary.Skipped)
		}
		if summary.MonthOnly > 0 {
			log.Printf("%s: %d record(s) counted for months only (missing or impossible day)", s, summary.MonthOnly)
		}
		out = append(out, summary)
	}
	return out, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
