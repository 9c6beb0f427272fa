// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/str-forecast/internal/forecast"
	"github.com/iwvelando/str-forecast/pkg/constants"
	"github.com/iwvelando/str-forecast/pkg/format"
)

// CsvHeader is the column layout of the sensitivity export.
var CsvHeader = []string{
	"property",
	"occupancy",
	"active_days",
	"revenue",
	"total_cost",
	"profit",
	"adr_effective",
	"revpar",
	"goppar",
	"profit_margin_pct",
	"payback",
	"breakeven_adr",
	"target_adr",
}

// Write renders results in the named output format.
func Write(w io.Writer, outputFormat string, results []forecast.Forecast) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []forecast.Forecast) error {
	var b strings.Builder
	for i, result := range results {
		r := result.Result
		fmt.Fprintf(&b, "--- Results for property %s ---\n", result.Name)
		fmt.Fprintf(&b, "Rooms               | %d\n", r.TotalRoomCount)
		fmt.Fprintf(&b, "Active days         | %.1f\n", r.ActiveDays)
		fmt.Fprintf(&b, "Total investment    | %s\n", format.Yen(r.TotalInvestment))
		fmt.Fprintf(&b, "Monthly revenue     | %s\n", format.Yen(r.TotalRevenue))
		fmt.Fprintf(&b, "Monthly cost        | %s\n", format.Yen(r.MonthlyOperatingCost))
		fmt.Fprintf(&b, "Monthly profit      | %s\n", format.Yen(r.MonthlyProfit))
		fmt.Fprintf(&b, "Expense ratio       | %s\n", format.Percent(r.ExpenseRatioPct))
		fmt.Fprintf(&b, "Profit margin       | %s\n", format.Percent(r.ProfitMarginPct))
		fmt.Fprintf(&b, "Payback             | %s\n", r.Payback)

		b.WriteString("\nInitial investment\n")
		for _, item := range r.InvestmentItems {
			fmt.Fprintf(&b, "  %-18s %s\n", item.Label, format.Yen(item.Amount))
		}

		b.WriteString("\nMonthly costs\n")
		for _, item := range r.CostItems {
			fmt.Fprintf(&b, "  %-18s %s\n", item.Label, format.Yen(item.Amount))
		}

		b.WriteString("\nOccupancy | Revenue | Cost | Profit | ADR | RevPAR | GOPPAR | Margin | Payback\n")
		b.WriteString("_________ | _______ | ____ | ______ | ___ | ______ | ______ | ______ | _______\n")
		for _, row := range r.Sensitivity {
			fmt.Fprintf(&b, "%s | %s | %s | %s | %s | %s | %s | %s | %s\n",
				row.Label,
				format.Yen(row.Revenue),
				format.Yen(row.TotalCost),
				format.Yen(row.Profit),
				format.Yen(row.ADREffective),
				format.Yen(row.RevPAR),
				format.Yen(row.GOPPAR),
				format.Percent(row.ProfitMarginPct),
				row.Payback,
			)
		}

		if len(result.BreakEven) > 0 {
			fmt.Fprintf(&b, "\nOccupancy | Break-even ADR | ADR for %s profit\n", format.Yen(result.Input.TargetMonthlyProfit))
			b.WriteString("_________ | ______________ | _________________\n")
			for _, row := range result.BreakEven {
				if !row.Applicable {
					fmt.Fprintf(&b, "%s | n/a | n/a\n", row.Label)
					continue
				}
				fmt.Fprintf(&b, "%s | %s | %s\n", row.Label, format.Yen(row.BreakEvenADR), format.Yen(row.TargetADR))
			}
		}

		if opt := result.Optimization; opt != nil {
			fmt.Fprintf(&b, "\nOccupancy needed for %s profit: %s (profit %s, converged %t)\n",
				format.Yen(opt.TargetProfit), opt.ValueDisplay, format.Yen(opt.Profit), opt.Converged)
			for _, note := range opt.Notes {
				fmt.Fprintf(&b, "  note: %s\n", note)
			}
		}

		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "WARNING: %s\n", warning)
		}

		if i < len(results)-1 {
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs the sensitivity and break-even tables in comma-separated
// value format, one row per property and grid occupancy.
func CsvFormat(w io.Writer, results []forecast.Forecast) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CsvHeader); err != nil {
		return err
	}

	for _, result := range results {
		for i, row := range result.Result.Sensitivity {
			breakEven, target := "", ""
			if i < len(result.BreakEven) && result.BreakEven[i].Applicable {
				breakEven = formatAmount(result.BreakEven[i].BreakEvenADR)
				target = formatAmount(result.BreakEven[i].TargetADR)
			}
			record := []string{
				result.Name,
				row.Label,
				strconv.FormatFloat(row.ActiveDays, 'f', 1, 64),
				formatAmount(row.Revenue),
				formatAmount(row.TotalCost),
				formatAmount(row.Profit),
				formatAmount(row.ADREffective),
				formatAmount(row.RevPAR),
				formatAmount(row.GOPPAR),
				strconv.FormatFloat(row.ProfitMarginPct, 'f', 1, 64),
				row.Payback.String(),
				breakEven,
				target,
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// JSONFormat outputs the results as indented JSON.
func JSONFormat(w io.Writer, results []forecast.Forecast) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
