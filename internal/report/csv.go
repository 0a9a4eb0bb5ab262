package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Napageneral/msgstats/internal/stats"
)

// WriteSplit writes the direct/group split table.
func WriteSplit(w io.Writer, vols []stats.ContactVolume) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "handles", "sent_dm", "recv_dm", "total_dm", "sent_gc", "recv_gc", "total_gc"}); err != nil {
		return err
	}
	for _, v := range vols {
		row := []string{
			v.Name,
			strings.Join(v.Identifiers, "; "),
			itoa(v.Direct.Sent), itoa(v.Direct.Received), itoa(v.Direct.Total()),
			itoa(v.Group.Sent), itoa(v.Group.Received), itoa(v.Group.Total()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMonthlyTotals writes one column of direct totals per month.
func WriteMonthlyTotals(w io.Writer, g *stats.MonthlyGrid) error {
	cw := csv.NewWriter(w)
	header := []string{"name", "total_dm"}
	for _, m := range g.Months {
		header = append(header, m.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range g.Rows {
		row := []string{r.Name, itoa(r.Totals().Total())}
		for _, c := range r.Counts {
			row = append(row, itoa(c.Total()))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteQuarterlyTotals writes one column of direct totals per quarter.
func WriteQuarterlyTotals(w io.Writer, g *stats.QuarterlyGrid) error {
	cw := csv.NewWriter(w)
	header := []string{"name", "total_dm"}
	for _, q := range g.Quarters {
		header = append(header, q.String())
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range g.Rows {
		row := []string{r.Name, itoa(r.Totals().Total())}
		for _, c := range r.Counts {
			row = append(row, itoa(c.Total()))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSentRecv writes sent and received columns for every month.
func WriteSentRecv(w io.Writer, g *stats.MonthlyGrid) error {
	cw := csv.NewWriter(w)
	header := []string{"name", "total_sent", "total_recv"}
	for _, m := range g.Months {
		header = append(header, m.String()+"_sent", m.String()+"_recv")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range g.Rows {
		totals := r.Totals()
		row := []string{r.Name, itoa(totals.Sent), itoa(totals.Received)}
		for _, c := range r.Counts {
			row = append(row, itoa(c.Sent), itoa(c.Received))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResponseTimes writes one row per contact-month with samples.
// A direction without samples leaves its median cell empty.
func WriteResponseTimes(w io.Writer, rows []stats.LatencyRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "month", "my_median_mins", "their_median_mins", "my_count", "their_count"}); err != nil {
		return err
	}
	for _, r := range rows {
		if r.MyCount == 0 && r.TheirCount == 0 {
			continue
		}
		mine, theirs := "", ""
		if r.MyCount > 0 {
			mine = FormatMinutes(r.MyMedian)
		}
		if r.TheirCount > 0 {
			theirs = FormatMinutes(r.TheirMedian)
		}
		row := []string{r.Name, r.Month.String(), mine, theirs, itoa(r.MyCount), itoa(r.TheirCount)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(n int) string { return strconv.Itoa(n) }
