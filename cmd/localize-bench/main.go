package main

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/waliulrayhan/ThesisTest/locate"
	"github.com/waliulrayhan/ThesisTest/triallog"
	"github.com/waliulrayhan/ThesisTest/web"
)

// defaultAnchors is the 5-anchor reference hall layout.
var defaultAnchors = []locate.Point{
	{X: 0, Y: 0}, {X: 15, Y: 0}, {X: 15, Y: 10}, {X: 0, Y: 10}, {X: 7.5, Y: 5},
}

type trialMsg struct {
	Trial   int     `json:"trial"`
	TrueX   float64 `json:"true_x"`
	TrueY   float64 `json:"true_y"`
	EstX    float64 `json:"est_x"`
	EstY    float64 `json:"est_y"`
	ErrorM  float64 `json:"error_m"`
	Quality float64 `json:"quality"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// run is the whole benchmark; errors bubble up here so that deferred
// cleanup (the sqlite handle in particular) runs before the process exits.
func run(args []string) error {
	fs := flag.NewFlagSet("localize-bench", flag.ContinueOnError)
	trials := fs.Int("trials", 200, "Number of Monte Carlo trials per round")
	seed := fs.Uint64("seed", 1, "Random seed")
	truePos := fs.String("true", "5,3", "True tag position as x,y in metres")
	layoutPath := fs.String("layout", "", "Optional anchor layout XML file")
	noise := fs.Float64("noise", 0.1, "Caller noise sigma, metres")
	multipath := fs.Float64("multipath", 0.05, "Caller multipath sigma, metres")
	noPrecision := fs.Bool("no-precision", false, "Disable the internal ultra-precision override and honor -noise/-multipath")
	residual := fs.Bool("residual-trigger", false, "Gate refinement on range residuals instead of ground truth")
	outPath := fs.String("out", "", "Optional per-trial CSV output path")
	dbPath := fs.String("db", "", "Optional sqlite trial database path")
	servePort := fs.Int("serve", 0, "Serve the live trial feed on this port (0 disables)")
	intervalMs := fs.Int("interval-ms", 0, "Delay between trials, for live viewing")
	loop := fs.Bool("loop", false, "Repeat rounds until interrupted (with -serve)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target, err := parseXY(*truePos)
	if err != nil {
		return fmt.Errorf("invalid -true: %w", err)
	}

	anchors := defaultAnchors
	if *layoutPath != "" {
		anchors, err = loadLayout(*layoutPath)
		if err != nil {
			return fmt.Errorf("load layout: %w", err)
		}
	}

	engine := locate.New(locate.Config{
		ForceHighPrecision: !*noPrecision,
		ResidualTrigger:    *residual,
		Seed:               *seed,
	})

	var db *triallog.DB
	if *dbPath != "" {
		db, err = triallog.Open(*dbPath)
		if err != nil {
			return fmt.Errorf("open trial db: %w", err)
		}
		defer db.Close()
	}

	var server *web.Server
	if *servePort > 0 {
		server = web.NewServer()
		go server.Start(*servePort)
	}

	for round := 0; ; round++ {
		runID := uuid.NewString()
		errors := make([]float64, 0, *trials)
		qualities := make([]float64, 0, *trials)
		rows := [][]string{{"trial", "true_x", "true_y", "est_x", "est_y", "error_m", "quality"}}

		for i := 1; i <= *trials; i++ {
			res := engine.Localize(target, anchors, *noise, *multipath)
			errors = append(errors, res.Error)
			qualities = append(qualities, res.Quality)

			rows = append(rows, []string{
				strconv.Itoa(i),
				fmt.Sprintf("%.4f", target.X), fmt.Sprintf("%.4f", target.Y),
				fmt.Sprintf("%.4f", res.Position.X), fmt.Sprintf("%.4f", res.Position.Y),
				fmt.Sprintf("%.6f", res.Error), fmt.Sprintf("%.2f", res.Quality),
			})
			if db != nil {
				if err := db.RecordTrial(runID, i, target.X, target.Y, res.Position.X, res.Position.Y, res.Error, res.Quality); err != nil {
					log.Printf("record trial: %v", err)
				}
			}
			if server != nil {
				msg, _ := json.Marshal(trialMsg{
					Trial: i, TrueX: target.X, TrueY: target.Y,
					EstX: res.Position.X, EstY: res.Position.Y,
					ErrorM: res.Error, Quality: res.Quality,
				})
				server.Hub.Broadcast(msg)
			}
			if *intervalMs > 0 {
				time.Sleep(time.Duration(*intervalMs) * time.Millisecond)
			}
		}

		printSummary(runID, anchors, target, errors, qualities)

		if *outPath != "" {
			if err := writeCSV(*outPath, rows); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			fmt.Printf("wrote %d trials to %s\n", len(rows)-1, *outPath)
		}
		if db != nil {
			s, err := db.RunSummary(runID)
			if err != nil {
				log.Printf("summarize run: %v", err)
			} else {
				fmt.Printf("db run %s: %d trials, mean %.4f m, max %.4f m\n", runID, s.Trials, s.MeanError, s.MaxError)
			}
		}
		if !*loop {
			return nil
		}
	}
}

func printSummary(runID string, anchors []locate.Point, target locate.Point, errors, qualities []float64) {
	fmt.Printf("run %s: %d anchors, target (%.2f, %.2f), %d trials\n",
		runID, len(anchors), target.X, target.Y, len(errors))
	if len(errors) == 0 {
		return
	}

	sorted := append([]float64(nil), errors...)
	sort.Float64s(sorted)

	sub5 := 0
	for _, e := range errors {
		if e < 0.05 {
			sub5++
		}
	}

	fmt.Printf("  error  mean %.4f m  median %.4f m  p95 %.4f m  max %.4f m  stddev %.4f m\n",
		stat.Mean(errors, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.95, stat.Empirical, sorted, nil),
		sorted[len(sorted)-1],
		stat.StdDev(errors, nil))
	fmt.Printf("  sub-5cm rate %.1f%%  mean quality %.2f\n",
		100*float64(sub5)/float64(len(errors)),
		stat.Mean(qualities, nil))
}

func parseXY(s string) (locate.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return locate.Point{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return locate.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return locate.Point{}, err
	}
	return locate.Point{X: x, Y: y}, nil
}

type layoutXML struct {
	Anchors []struct {
		X float64 `xml:"x,attr"`
		Y float64 `xml:"y,attr"`
	} `xml:"anchor"`
}

// loadLayout reads an anchor layout file:
// <layout><anchor x="0" y="0"/>...</layout>
func loadLayout(path string) ([]locate.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l layoutXML
	if err := xml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	if len(l.Anchors) == 0 {
		return nil, fmt.Errorf("no anchors in %s", path)
	}
	anchors := make([]locate.Point, len(l.Anchors))
	for i, a := range l.Anchors {
		anchors[i] = locate.Point{X: a.X, Y: a.Y}
	}
	return anchors, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
