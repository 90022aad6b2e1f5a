package balance

import (
	"github.com/shopspring/decimal"

	"planfact/internal/amount"
	"planfact/pkg/models"
)

var (
	hundred        = decimal.NewFromInt(100)
	maxUtilization = decimal.NewFromInt(999)
)

// Calculate merges groups with plans. Contracts without a plan count as
// planned 0. Every figure is derived from exact sums and truncated last.
func Calculate(groups []Group, plans *PlanTable) []models.ContractBalance {
	rows := make([]models.ContractBalance, 0, len(groups))
	for _, g := range groups {
		row := figures(plans.Planned(g.Key), g.Invoiced, g.Credited)
		row.Client = g.Client
		row.ContractID = g.ContractID
		row.InvoiceCount = g.InvoiceCount
		row.CreditCount = g.CreditCount
		rows = append(rows, row)
	}
	return rows
}

// Totals sums the exact figures of all groups and truncates once.
func Totals(groups []Group, plans *PlanTable) models.ContractBalance {
	planned, invoiced, credited := decimal.Zero, decimal.Zero, decimal.Zero
	invoices, credits := 0, 0
	for _, g := range groups {
		planned = planned.Add(plans.Planned(g.Key))
		invoiced = invoiced.Add(g.Invoiced)
		credited = credited.Add(g.Credited)
		invoices += g.InvoiceCount
		credits += g.CreditCount
	}

	row := figures(planned, invoiced, credited)
	row.InvoiceCount = invoices
	row.CreditCount = credits
	return row
}

func figures(planned, invoiced, credited decimal.Decimal) models.ContractBalance {
	actual := invoiced.Sub(credited)
	return models.ContractBalance{
		Planned:        amount.Truncate2(planned),
		Invoiced:       amount.Truncate2(invoiced),
		Credited:       amount.Truncate2(credited),
		Actual:         amount.Truncate2(actual),
		Remaining:      amount.Truncate2(planned.Sub(actual)),
		UtilizationPct: Utilization(actual, planned),
	}
}

// Utilization returns actual/planned*100 clamped to [0, 999] and truncated
// to two places, or 0 when nothing is planned.
func Utilization(actual, planned decimal.Decimal) decimal.Decimal {
	if planned.IsZero() {
		return decimal.Zero
	}
	pct := actual.Div(planned).Mul(hundred)
	switch {
	case pct.IsNegative():
		pct = decimal.Zero
	case pct.GreaterThan(maxUtilization):
		pct = maxUtilization
	}
	return amount.Truncate2(pct)
}
