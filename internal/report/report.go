// Package report renders the downloadable ESG summary.
//
// Layout, one section per block separated by a blank line:
//
//	ESG SUSTAINABILITY REPORT
//	=========================
//
//	Company:    <name>
//	Industry:   <industry or "Not specified">
//	Generated:  <YYYY-MM-DD>
//	Period:     <period>
//
//	TOTALS
//	------
//	Emissions:    <amount> kg CO2e
//	Water Usage:  <amount> liters
//	Waste:        <amount> kg
//
//	RECENT ENTRIES
//	--------------
//	<Label>
//	  <YYYY-MM-DD>  <category>  <amount> <short unit>[  - <description>]
//
// Amounts always carry two decimals. At most MaxRecentPerKind entries are
// listed per kind, in the order given; a kind without entries shows
// "  (none)". Control characters in user-supplied text are flattened to
// spaces so every field stays on its line. Output depends only on the
// Document.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode"

	"esgreporter/internal/core"
)

const (
	// MaxRecentPerKind caps the entries listed per kind.
	MaxRecentPerKind = 5

	PeriodAllTime = "all-time"
	TypeSummary   = "summary"

	ContentType = "text/plain; charset=utf-8"
)

type Document struct {
	Company     core.Company
	Stats       core.Stats
	Period      string
	GeneratedAt time.Time
}

func Render(doc Document) []byte {
	var b bytes.Buffer

	title := "ESG SUSTAINABILITY REPORT"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")

	industry := "Not specified"
	if doc.Company.Industry != nil && strings.TrimSpace(*doc.Company.Industry) != "" {
		industry = *doc.Company.Industry
	}
	period := doc.Period
	if period == "" {
		period = PeriodAllTime
	}
	fmt.Fprintf(&b, "%-12s%s\n", "Company:", oneLine(doc.Company.Name))
	fmt.Fprintf(&b, "%-12s%s\n", "Industry:", oneLine(industry))
	fmt.Fprintf(&b, "%-12s%s\n", "Generated:", doc.GeneratedAt.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "%-12s%s\n\n", "Period:", oneLine(period))

	section(&b, "TOTALS")
	for _, k := range core.Kinds() {
		fmt.Fprintf(&b, "%-14s%s %s\n", k.Label()+":", core.FormatAmount(doc.Stats.Total(k)), k.Unit())
	}
	b.WriteString("\n")

	section(&b, "RECENT ENTRIES")
	for i, k := range core.Kinds() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(k.Label() + "\n")
		recent := doc.Stats.Recent(k)
		if len(recent) == 0 {
			b.WriteString("  (none)\n")
			continue
		}
		if len(recent) > MaxRecentPerKind {
			recent = recent[:MaxRecentPerKind]
		}
		for _, e := range recent {
			b.WriteString(entryLine(e, k))
		}
	}

	return b.Bytes()
}

func section(b *bytes.Buffer, name string) {
	b.WriteString(name + "\n")
	b.WriteString(strings.Repeat("-", len(name)) + "\n")
}

func entryLine(e core.Entry, k core.MetricKind) string {
	line := fmt.Sprintf("  %s  %s  %s %s",
		e.Date.UTC().Format("2006-01-02"), oneLine(e.Category), core.FormatAmount(e.Amount), k.ShortUnit())
	if e.Description != nil && *e.Description != "" {
		line += "  - " + oneLine(*e.Description)
	}
	return line + "\n"
}

func oneLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, s)
}

// Filename is the download name for a report generated at t.
func Filename(t time.Time) string {
	return "esg-report-" + t.UTC().Format("2006-01-02") + ".txt"
}
