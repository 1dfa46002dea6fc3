// Command listing-filter applies the listing filter to a saved listings page
// and prints which cards stay visible.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"listing-workers/internal/common/logger"
	"listing-workers/internal/listing"
	"listing-workers/internal/listing/markup"
	"listing-workers/internal/listing/report"

	"github.com/pterm/pterm"
)

type options struct {
	page     string
	search   string
	location string
	typ      string
	min      string
	max      string
	clear    bool
	out      string
	xlsx     string
	logLevel string
	quiet    bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.page, "page", "web/listings.html", "Listings page to filter")
	flag.StringVar(&opts.search, "search", "", "Title search text")
	flag.StringVar(&opts.location, "location", "", "Location to keep, or \"any\"")
	flag.StringVar(&opts.typ, "type", "", "Property type to keep, or \"any\"")
	flag.StringVar(&opts.min, "min", "", "Minimum price")
	flag.StringVar(&opts.max, "max", "", "Maximum price")
	flag.BoolVar(&opts.clear, "clear", false, "Reset every filter before evaluating")
	flag.StringVar(&opts.out, "out", "", "Write the rendered page here (\"-\" for stdout)")
	flag.StringVar(&opts.xlsx, "xlsx", "", "Write the evaluated listings to an XLSX file")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.quiet, "quiet", false, "Skip the table")
	flag.Parse()

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	log := logger.NewStructured(opts.logLevel, "console", "stderr")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, set, log); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, set map[string]bool, log logger.Logger) error {
	f, err := os.Open(opts.page)
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	page, err := markup.Load(f, markup.DefaultSelectors())
	if err != nil {
		return err
	}
	for _, w := range page.Warnings() {
		log.Warn("card normalized", map[string]interface{}{"warning": w})
	}

	pipeline := listing.NewPipeline(page.Listings(), page, log)

	var (
		result   listing.VisibilityResult
		criteria listing.FilterCriteria
	)
	if opts.clear {
		criteria = listing.Clear()
		result, err = pipeline.Reset(ctx)
	} else {
		inputs := overrideInputs(page.Inputs(), opts, set)
		if err := page.ResetInputs(ctx, inputs); err != nil {
			return err
		}
		criteria = listing.NewCriteria(inputs)
		result, err = pipeline.OnInputChange(ctx, inputs)
	}
	if err != nil {
		return err
	}

	rows := report.Rows(pipeline.Listings(), result)
	if !opts.quiet && opts.out != "-" {
		pterm.Info.Println("Filters: " + report.DescribeCriteria(criteria))
		if err := report.PrintTable(rows, result); err != nil {
			return err
		}
	}

	if opts.xlsx != "" {
		if err := report.WriteXLSX(opts.xlsx, rows); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		log.Info("xlsx written", map[string]interface{}{"path": opts.xlsx, "rows": len(rows)})
	}

	if opts.out != "" {
		return writePage(page, opts.out)
	}
	return nil
}

// overrideInputs replaces the page's form values with the flags given on the
// command line.
func overrideInputs(in listing.FilterInputs, opts options, set map[string]bool) listing.FilterInputs {
	if set["search"] {
		in.Search = opts.search
	}
	if set["location"] {
		in.Location = opts.location
	}
	if set["type"] {
		in.Type = opts.typ
	}
	if set["min"] {
		in.MinPrice = opts.min
	}
	if set["max"] {
		in.MaxPrice = opts.max
	}
	return in
}

func writePage(page *markup.Page, path string) error {
	html, err := page.HTML()
	if err != nil {
		return fmt.Errorf("serialize page: %w", err)
	}
	if path == "-" {
		_, err = fmt.Fprintln(os.Stdout, html)
		return err
	}
	return os.WriteFile(path, []byte(html), 0o644)
}
