// Package dynamics counts unique documents per month or ISO week.
package dynamics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"planfact/internal/amount"
	"planfact/internal/balance"
	"planfact/internal/logger"
	"planfact/internal/reconciliation"
	"planfact/pkg/models"
)

// Granularity selects the period length.
type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
)

// ParseGranularity accepts "month" or "week".
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Month, Week:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity %q (want month or week)", s)
}

// Window returns the moving average length for g: 3 months or 4 weeks.
func (g Granularity) Window() int {
	if g == Week {
		return 4
	}
	return 3
}

// Options control Count.
type Options struct {
	Granularity     Granularity
	CreditsNegative bool // Net = invoices - credits instead of invoices + credits
	Window          balance.Window
	MovingAverage   bool
}

// PeriodCount is one row of the series.
type PeriodCount struct {
	Period    string // "2024-03" or the week's Monday, "2024-03-04"
	Start     time.Time
	Invoices  int
	Credits   int
	Net       int
	MovingAvg decimal.NullDecimal // Mean Net over the trailing window, truncated to 2 places
}

// Totals sums the series.
type Totals struct {
	Invoices int
	Credits  int
	Net      int
}

// Series is the result of Count.
type Series struct {
	Periods []PeriodCount
	Totals  Totals
}

// Count de-duplicates documents by number, dates each one by its earliest
// occurrence and counts them per period. Only periods that contain documents
// are returned; the moving average runs over those rows with a minimum of
// one observation.
func Count(invoices []models.Invoice, credits []models.CreditNote, opts Options) Series {
	log := logger.WithComponent("dynamics")
	if opts.Granularity == "" {
		opts.Granularity = Month
	}

	invDates := make(map[string]time.Time)
	for _, inv := range opts.Window.FilterInvoices(invoices) {
		firstSeen(invDates, inv.InvoiceNumber, inv.Date)
	}
	crnDates := make(map[string]time.Time)
	for _, cn := range opts.Window.FilterCreditNotes(credits) {
		firstSeen(crnDates, cn.CreditNumber, cn.Date)
	}

	buckets := make(map[time.Time]*PeriodCount)
	bucket := func(d time.Time) *PeriodCount {
		start := periodStart(d, opts.Granularity)
		pc, ok := buckets[start]
		if !ok {
			pc = &PeriodCount{Start: start, Period: periodLabel(start, opts.Granularity)}
			buckets[start] = pc
		}
		return pc
	}
	for _, d := range invDates {
		bucket(d).Invoices++
	}
	for _, d := range crnDates {
		bucket(d).Credits++
	}

	var series Series
	for _, pc := range buckets {
		if opts.CreditsNegative {
			pc.Net = pc.Invoices - pc.Credits
		} else {
			pc.Net = pc.Invoices + pc.Credits
		}
		series.Periods = append(series.Periods, *pc)
	}
	sort.Slice(series.Periods, func(i, j int) bool {
		return series.Periods[i].Start.Before(series.Periods[j].Start)
	})

	if opts.MovingAverage {
		applyMovingAverage(series.Periods, opts.Granularity.Window())
	}

	series.Totals = Totals{Invoices: len(invDates), Credits: len(crnDates)}
	if opts.CreditsNegative {
		series.Totals.Net = series.Totals.Invoices - series.Totals.Credits
	} else {
		series.Totals.Net = series.Totals.Invoices + series.Totals.Credits
	}

	log.Info().
		Str("granularity", string(opts.Granularity)).
		Int("periods", len(series.Periods)).
		Int("unique_invoices", series.Totals.Invoices).
		Int("unique_credit_notes", series.Totals.Credits).
		Msg("Document counts computed")

	return series
}

// firstSeen keeps the earliest date per document. Numbers are compared by
// their exact key so "VS-1" and "vs 1" are one document; rows without a
// number are not documents.
func firstSeen(dates map[string]time.Time, number string, date time.Time) {
	key := reconciliation.ExactKey(number)
	if key == "" {
		return
	}
	if prev, ok := dates[key]; !ok || date.Before(prev) {
		dates[key] = date
	}
}

func periodStart(d time.Time, g Granularity) time.Time {
	y, m, day := d.Date()
	if g == Week {
		offset := (int(d.Weekday()) + 6) % 7 // days since Monday
		return time.Date(y, m, day-offset, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func periodLabel(start time.Time, g Granularity) string {
	if g == Week {
		return start.Format("2006-01-02")
	}
	return start.Format("2006-01")
}

func applyMovingAverage(periods []PeriodCount, window int) {
	for i := range periods {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0
		for _, p := range periods[lo : i+1] {
			sum += p.Net
		}
		avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(i - lo + 1)))
		periods[i].MovingAvg = decimal.NewNullDecimal(amount.Truncate2(avg))
	}
}
