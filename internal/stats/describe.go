package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/tabular"
)

// Describe profiles every column of t in column order.
func Describe(t domain.Table) []domain.ColumnProfile {
	profiles := make([]domain.ColumnProfile, 0, len(t.Columns))
	for idx, name := range t.Columns {
		cells := make([]domain.Cell, len(t.Rows))
		for i, row := range t.Rows {
			cells[i] = row[idx]
		}
		profiles = append(profiles, DescribeColumn(name, cells))
	}
	return profiles
}

// DescribeColumn builds the profile of a single column.
func DescribeColumn(name string, cells []domain.Cell) domain.ColumnProfile {
	profile := domain.ColumnProfile{
		Name: name,
		Type: tabular.InferType(cells),
	}

	counts := make(map[string]int)
	var order []string
	var numbers []float64
	for _, cell := range cells {
		if cell.IsNull() {
			profile.Nulls++
			continue
		}
		profile.Count++
		if _, ok := counts[cell.Value]; !ok {
			order = append(order, cell.Value)
		}
		counts[cell.Value]++
		if f, err := strconv.ParseFloat(strings.TrimSpace(cell.Value), 64); err == nil {
			numbers = append(numbers, f)
		}
	}

	profile.Unique = len(counts)
	for _, value := range order {
		if counts[value] > profile.Freq {
			profile.Top = value
			profile.Freq = counts[value]
		}
	}

	if profile.Type.IsNumeric() && len(numbers) > 0 {
		sorted := Sorted(numbers)
		profile.Mean = Mean(sorted)
		profile.Std = SampleStd(sorted)
		profile.Min = sorted[0]
		profile.Q1 = Percentile(sorted, 25)
		profile.Median = Percentile(sorted, 50)
		profile.Q3 = Percentile(sorted, 75)
		profile.Max = sorted[len(sorted)-1]
	}

	return profile
}

// WriteSummary renders profiles as an aligned table with one row per column.
func WriteSummary(w io.Writer, profiles []domain.ColumnProfile) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tcount\tunique\ttop\tfreq\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
	for _, p := range profiles {
		if p.Type.IsNumeric() {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				p.Name, p.Count, p.Unique, "-", p.Freq,
				formatFloat(p.Mean), formatFloat(p.Std), formatFloat(p.Min),
				formatFloat(p.Q1), formatFloat(p.Median), formatFloat(p.Q3), formatFloat(p.Max))
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%d\t-\t-\t-\t-\t-\t-\t-\n",
			p.Name, p.Count, p.Unique, truncate(p.Top, 40), p.Freq)
	}
	return tw.Flush()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func truncate(value string, max int) string {
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	return string(runes[:max-3]) + "..."
}
