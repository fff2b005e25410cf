package dashboard

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatEUR renders an amount with thousands separators, e.g. €6,000.
func formatEUR(v float64) string {
	return printer.Sprintf("€%.0f", v)
}

// formatEURCents keeps two decimals, used for the headline ACV.
func formatEURCents(v float64) string {
	return printer.Sprintf("€%.2f", v)
}

// formatOptionalEUR renders nil as "no data".
func formatOptionalEUR(v *float64) string {
	if v == nil {
		return noData
	}
	return formatEUR(*v)
}

func formatInt(n int) string {
	return printer.Sprintf("%d", n)
}

func formatPercent(p float64) string {
	return printer.Sprintf("%.1f", p)
}

const noData = "no data"
