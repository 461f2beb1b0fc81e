// Command simtest runs a headless simulated detection pass over a
// synthetic or real hole table and prints per-sector progress.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"platescan/internal/app"
	"platescan/internal/archive"
	"platescan/internal/detect"
	"platescan/internal/drawing"
	"platescan/internal/hole"
	"platescan/internal/sector"
)

func main() {
	tablePath := flag.String("table", "", "Hole table JSON (omit to generate a synthetic plate)")
	rows := flag.Int("rows", 60, "Synthetic plate: grid rows")
	cols := flag.Int("cols", 60, "Synthetic plate: grid columns")
	pitch := flag.Float64("pitch", 25.0, "Synthetic plate: hole pitch in drawing units")
	radius := flag.Float64("radius", 9.5, "Synthetic plate: hole radius")
	interval := flag.Duration("interval", time.Millisecond, "Simulated cadence per hole")
	prob := flag.Float64("prob", 0.95, "Qualification probability")
	seed := flag.Int64("seed", 1, "Simulation seed")
	dbPath := flag.String("db", "", "Optional inspection archive path")
	flag.Parse()

	session := app.NewSession()

	if *dbPath != "" {
		store, err := archive.Open(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open archive: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		session.AttachArchive(store)
	}

	var err error
	if *tablePath != "" {
		err = session.LoadTableFile(*tablePath)
	} else {
		table := syntheticPlate(*rows, *cols, *pitch, *radius)
		fmt.Printf("Generated synthetic plate: %d holes (%dx%d grid, circular boundary)\n",
			len(table.Holes), *rows, *cols)
		err = session.LoadTable("synthetic", table)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load plate: %v\n", err)
		os.Exit(1)
	}

	c := session.Centroid()
	fmt.Printf("Centroid: (%.2f, %.2f)\n\n", c.X, c.Y)
	printAggregates(session)

	drv := detect.NewSimDriver(detect.SimParams{
		Interval:    *interval,
		QualifyProb: *prob,
		Seed:        *seed,
	})

	start := time.Now()
	if err := session.RunPass(context.Background(), drv); err != nil {
		fmt.Fprintf(os.Stderr, "Pass failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nPass complete in %s\n\n", time.Since(start).Round(time.Millisecond))
	printAggregates(session)
}

// syntheticPlate lays a regular grid and keeps only holes inside the
// plate's circular boundary, matching how real tube sheets are drilled.
func syntheticPlate(rows, cols int, pitch, radius float64) *drawing.Table {
	cx := float64(cols-1) * pitch / 2
	cy := float64(rows-1) * pitch / 2
	boundary := math.Min(cx, cy) + pitch/2

	table := &drawing.Table{Version: 1, Source: "synthetic", Units: "mm"}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := float64(c) * pitch
			y := float64(r) * pitch
			dx, dy := x-cx, y-cy
			if math.Sqrt(dx*dx+dy*dy) > boundary {
				continue
			}
			table.Holes = append(table.Holes, hole.Record{
				ID:     fmt.Sprintf("R%dC%d", r+1, c+1),
				X:      x,
				Y:      y,
				Radius: radius,
			})
		}
	}
	return table
}

func printAggregates(session *app.Session) {
	fmt.Printf("%-10s %8s %10s %10s %10s %12s %14s %7s\n",
		"sector", "total", "completed", "qualified", "defective", "completion", "qualification", "tier")
	aggs := session.Aggregates()
	for _, sec := range sector.All() {
		agg := aggs[sec]
		fmt.Printf("%-10s %8d %10d %10d %10d %11.1f%% %13.1f%% %7s\n",
			sec, agg.TotalHoles, agg.CompletedHoles, agg.QualifiedHoles, agg.DefectiveHoles,
			agg.CompletionRate()*100, agg.QualificationRate()*100,
			sector.ColorFor(agg))
	}
}
