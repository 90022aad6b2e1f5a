package dynamics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planfact/internal/balance"
	"planfact/pkg/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func inv(date time.Time, number string) models.Invoice {
	return models.Invoice{Date: date, InvoiceNumber: number}
}

func crn(date time.Time, number string) models.CreditNote {
	return models.CreditNote{Date: date, CreditNumber: number}
}

func TestCountMonthly(t *testing.T) {
	invoices := []models.Invoice{
		inv(day(2024, 1, 5), "VS-1"),
		inv(day(2024, 2, 5), "VS-1"), // duplicate, dated by its first row
		inv(day(2024, 2, 6), "VS-2"),
		inv(day(2024, 4, 1), "VS-3"),
		inv(day(2024, 4, 2), ""),
	}
	credits := []models.CreditNote{
		crn(day(2024, 2, 20), "KR-1"),
		crn(day(2024, 4, 20), "KR-2"),
	}

	s := Count(invoices, credits, Options{Granularity: Month, MovingAverage: true})
	require.Len(t, s.Periods, 3)

	assert.Equal(t, "2024-01", s.Periods[0].Period)
	assert.Equal(t, 1, s.Periods[0].Net)
	assert.Equal(t, "2024-02", s.Periods[1].Period)
	assert.Equal(t, 1, s.Periods[1].Invoices)
	assert.Equal(t, 1, s.Periods[1].Credits)
	assert.Equal(t, 2, s.Periods[1].Net)
	assert.Equal(t, "2024-04", s.Periods[2].Period)

	assert.Equal(t, "1", s.Periods[0].MovingAvg.Decimal.String())
	assert.Equal(t, "1.5", s.Periods[1].MovingAvg.Decimal.String())
	assert.Equal(t, "1.66", s.Periods[2].MovingAvg.Decimal.String())

	assert.Equal(t, Totals{Invoices: 3, Credits: 2, Net: 5}, s.Totals)
}

func TestCountWeeklyCreditsNegative(t *testing.T) {
	invoices := []models.Invoice{
		inv(day(2024, 3, 4), "VS-1"),  // Monday
		inv(day(2024, 3, 10), "VS-2"), // Sunday, same week
		inv(day(2024, 3, 11), "VS-3"),
	}
	credits := []models.CreditNote{crn(day(2024, 3, 6), "KR-1")}

	s := Count(invoices, credits, Options{Granularity: Week, CreditsNegative: true})
	require.Len(t, s.Periods, 2)
	assert.Equal(t, "2024-03-04", s.Periods[0].Period)
	assert.Equal(t, 1, s.Periods[0].Net)
	assert.Equal(t, "2024-03-11", s.Periods[1].Period)
	assert.False(t, s.Periods[0].MovingAvg.Valid)
	assert.Equal(t, 2, s.Totals.Net)
}

func TestCountWindow(t *testing.T) {
	invoices := []models.Invoice{inv(day(2023, 12, 31), "VS-1"), inv(day(2024, 1, 1), "VS-2")}
	s := Count(invoices, nil, Options{Window: balance.Window{From: day(2024, 1, 1)}})

	require.Len(t, s.Periods, 1)
	assert.Equal(t, "2024-01", s.Periods[0].Period)
}

func TestCountEmpty(t *testing.T) {
	s := Count(nil, nil, Options{MovingAverage: true})
	assert.Empty(t, s.Periods)
	assert.Zero(t, s.Totals)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("week")
	require.NoError(t, err)
	assert.Equal(t, 4, g.Window())
	assert.Equal(t, 3, Month.Window())

	_, err = ParseGranularity("day")
	assert.Error(t, err)
}
