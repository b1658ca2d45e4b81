// Command radar exports one satisfaction radar chart as a PNG file and prints
// the per-question scores.
//
//	radar -dataset Serviplus -category Lima -month 5 -out ./exports
//
// The data source is configured from the environment, as for the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/godilite/satisfaction-radar/internal/app"
	"github.com/godilite/satisfaction-radar/internal/config"
	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/service"
)

type options struct {
	dataset  string
	category string
	month    int
	out      string
	size     float64
}

func main() {
	_ = godotenv.Load(".env")

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "radar: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("radar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dataset, "dataset", "", "dataset name (Serviplus or Transporte)")
	fs.StringVar(&o.category, "category", service.AllCategories, "capital to filter by")
	fs.IntVar(&o.month, "month", 0, "month 1-12, 0 for all months")
	fs.StringVar(&o.out, "out", ".", "directory to write the PNG into")
	fs.Float64Var(&o.size, "size", 8, "chart width and height in inches")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.dataset == "" {
		return o, errors.New("-dataset is required")
	}
	if o.size <= 0 {
		return o, fmt.Errorf("-size must be positive, got %v", o.size)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	// The CLI writes its own output; keep the log quiet.
	cfg.AppEnv = "production"
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	defer logger.Sync()

	size := vg.Length(o.size) * vg.Inch
	reports, dbPool, err := app.NewReportService(ctx, cfg, logger, render.WithSize(size, size))
	if err != nil {
		return err
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	report, err := reports.Generate(ctx, service.Query{Dataset: o.dataset, Category: o.category, Month: o.month})
	if errors.Is(err, service.ErrNoDataForFilter) {
		color.New(color.FgYellow).Fprintf(stderr, "warning: %v; no chart written\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	printScores(stdout, report)

	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(o.out, report.Filename)
	if err := os.WriteFile(path, report.Chart.PNG, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	color.New(color.FgGreen).Fprintf(stdout, "saved %s\n", path)
	return nil
}

func printScores(w io.Writer, report *service.Report) {
	category := report.Query.Category
	if category == "" {
		category = service.AllCategories
	}
	month := "all"
	if report.Query.Month != 0 {
		month = strconv.Itoa(report.Query.Month)
	}
	color.New(color.FgCyan).Fprintf(w, "\n%s · %s · month %s · %d responses\n",
		report.Scores.Dataset, category, month, report.Scores.Rows)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Question", "Mean", "Percent"})
	for i, label := range report.Scores.Labels {
		v := report.Scores.Values[i]
		table.Append([]string{
			label,
			strconv.FormatFloat(v, 'f', 2, 64),
			render.PercentLabel(v),
		})
	}
	table.Render()
}
