// Package report presents an evaluation: a terminal table and an XLSX sheet.
package report

import (
	"fmt"
	"math"
	"strings"

	"listing-workers/internal/listing"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Listings"

var header = []string{"#", "Title", "Location", "Type", "Price", "Shown"}

type Row struct {
	Index   int
	Listing listing.Listing
	Visible bool
}

// Rows pairs each listing with its visibility, in collection order.
func Rows(listings []listing.Listing, result listing.VisibilityResult) []Row {
	rows := make([]Row, len(listings))
	for i, l := range listings {
		rows[i] = Row{Index: i + 1, Listing: l, Visible: i < len(result.Visible) && result.Visible[i]}
	}
	return rows
}

// FormatPrice renders a price with thousands separators, keeping cents only
// when there are any.
func FormatPrice(p float64) string {
	if math.IsInf(p, 0) || math.IsNaN(p) {
		return fmt.Sprint(p)
	}
	if p == math.Trunc(p) && math.Abs(p) < 1e15 {
		return "$" + humanize.Comma(int64(p))
	}
	return "$" + humanize.FormatFloat("#,###.##", p)
}

// TableData is the header plus one line per row, uncolored.
func TableData(rows []Row) pterm.TableData {
	data := pterm.TableData{header}
	for _, r := range rows {
		data = append(data, []string{
			fmt.Sprint(r.Index),
			r.Listing.Title,
			r.Listing.Location,
			r.Listing.Type,
			FormatPrice(r.Listing.Price),
			shown(r.Visible),
		})
	}
	return data
}

// PrintTable renders the table and a one line summary to the terminal.
func PrintTable(rows []Row, result listing.VisibilityResult) error {
	data := TableData(rows)
	for i := 1; i < len(data); i++ {
		if rows[i-1].Visible {
			data[i][5] = pterm.Green(data[i][5])
		} else {
			data[i][5] = pterm.Red(data[i][5])
		}
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}

	if result.NoResults() {
		pterm.Warning.Println("No listings match the current filters")
		return nil
	}
	pterm.Info.Printfln("%s of %s listings shown", humanize.Comma(int64(result.VisibleCount)), humanize.Comma(int64(len(rows))))
	return nil
}

// DescribeCriteria is a one line summary of the active filters.
func DescribeCriteria(c listing.FilterCriteria) string {
	parts := []string{}
	if c.SearchTerm != "" {
		parts = append(parts, fmt.Sprintf("title contains %q", c.SearchTerm))
	}
	if c.Location != listing.AnyOption {
		parts = append(parts, "location "+c.Location)
	}
	if c.Type != listing.AnyOption {
		parts = append(parts, "type "+c.Type)
	}
	if c.MinPrice > 0 || !math.IsInf(c.MaxPrice, 1) {
		parts = append(parts, fmt.Sprintf("price %s to %s", FormatPrice(c.MinPrice), FormatPrice(c.MaxPrice)))
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, ", ")
}

// WriteXLSX writes every row to a single sheet, visible or not.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}

	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return err
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Index, r.Listing.Title, r.Listing.Location, r.Listing.Type, r.Listing.Price, shown(r.Visible),
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func shown(visible bool) string {
	if visible {
		return "yes"
	}
	return "no"
}
