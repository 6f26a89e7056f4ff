package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/naka-gawa/star-trend/internal/usecase"
)

// recentEntries is how many of the latest history entries the table shows.
// Entries exist only for days that got stars, so they may span months.
const recentEntries = 7

const notAvailable = "N/A"

// Table writes the panel as terminal tables: the repository card, the
// star statistics card and the most recent entries of both series.
func Table(w io.Writer, v *usecase.View) error {
	sections := []string{repositoryTable(v), starTable(v)}
	if recent := recentTable(v); recent != "" {
		sections = append(sections, recent)
	}
	if errs := errorTable(v); errs != "" {
		sections = append(sections, errs)
	}

	for _, s := range sections {
		if _, err := fmt.Fprintln(w, s); err != nil {
			return fmt.Errorf("writing table: %w", err)
		}
	}
	return nil
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(title)
	return tbl
}

func repositoryTable(v *usecase.View) string {
	tbl := newTable("Repository")
	tbl.AppendHeader(table.Row{"Repository", "Date Created", "Days since created"})

	repo, createdAt, days := notAvailable, notAvailable, notAvailable
	if v.Repository != nil {
		repo = v.Repository.FullName()
		if !v.Repository.CreatedAt.IsZero() {
			createdAt = v.Repository.CreatedAt.Format("Mon Jan 02 2006")
		}
	}
	if v.DaysSinceCreated != nil {
		days = humanize.Comma(int64(*v.DaysSinceCreated))
	}
	tbl.AppendRow(table.Row{repo, createdAt, days})
	return tbl.Render()
}

func starTable(v *usecase.View) string {
	tbl := newTable("Star Trend")
	tbl.AppendHeader(table.Row{"Total Stars", "Avg. Star/day", "Max increment a day"})

	total, maxIncrement := notAvailable, notAvailable
	if v.Stars != nil {
		total = humanize.Comma(int64(v.Stars.TotalStar))
		maxIncrement = humanize.Comma(int64(v.Stars.MaxIncrement))
	}
	tbl.AppendRow(table.Row{total, v.AverageStarsPerDay.String(), maxIncrement})
	tbl.AppendFooter(table.Row{
		"daily mean " + strconv.FormatFloat(v.IncrementSummary.Mean, 'f', 2, 64),
		"median " + strconv.FormatFloat(v.IncrementSummary.Median, 'f', 1, 64),
		"p95 " + strconv.FormatFloat(v.IncrementSummary.P95, 'f', 1, 64),
	})
	return tbl.Render()
}

func recentTable(v *usecase.View) string {
	if len(v.Daily) == 0 {
		return ""
	}
	start := max(len(v.Daily)-recentEntries, 0)

	tbl := newTable("Recent activity")
	tbl.AppendHeader(table.Row{"Date", "New stars", "Total stars"})
	for i := start; i < len(v.Daily); i++ {
		tbl.AppendRow(table.Row{
			v.Daily[i].Date.Format(dateLayout),
			humanize.Comma(int64(v.Daily[i].Stars)),
			humanize.Comma(int64(v.Cumulative[i].Stars)),
		})
	}
	return tbl.Render()
}

func errorTable(v *usecase.View) string {
	if len(v.Errors) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v.Errors))
	for k := range v.Errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tbl := newTable("Errors")
	tbl.AppendHeader(table.Row{"Section", "Error"})
	for _, k := range keys {
		tbl.AppendRow(table.Row{k, v.Errors[k]})
	}
	return tbl.Render()
}
