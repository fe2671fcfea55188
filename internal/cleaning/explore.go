package cleaning

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/stats"
)

// Exploration is the profile of a (corrupted) table.
type Exploration struct {
	Rows       int
	Duplicates int
	Profiles   []domain.ColumnProfile
}

// Explore profiles the table and writes the exploratory analysis report.
func (s *Service) Explore(table domain.Table) (Exploration, error) {
	exploration := Exploration{
		Rows:       table.Len(),
		Duplicates: table.DuplicateCount(),
		Profiles:   stats.Describe(table),
	}

	report := audit.Report{Title: "Exploratory Analysis of Corrupted Data"}
	report.Add("Total records: %d", exploration.Rows)
	report.Add("Total duplicates: %d", exploration.Duplicates)

	var nulls, types bytes.Buffer
	tw := tabwriter.NewWriter(&nulls, 0, 4, 2, ' ', 0)
	tt := tabwriter.NewWriter(&types, 0, 4, 2, ' ', 0)
	for _, profile := range exploration.Profiles {
		fmt.Fprintf(tw, "%s\t%d\n", profile.Name, profile.Nulls)
		fmt.Fprintf(tt, "%s\t%s\n", profile.Name, profile.Type)
	}
	if err := tw.Flush(); err != nil {
		return Exploration{}, fmt.Errorf("render null counts: %w", err)
	}
	if err := tt.Flush(); err != nil {
		return Exploration{}, fmt.Errorf("render column types: %w", err)
	}

	var summary bytes.Buffer
	if err := stats.WriteSummary(&summary, exploration.Profiles); err != nil {
		return Exploration{}, fmt.Errorf("render summary statistics: %w", err)
	}

	report.Add("Null values per column:")
	addBlock(&report, nulls.String())
	report.Add("")
	report.Add("Column types:")
	addBlock(&report, types.String())
	report.Add("")
	report.Add("Summary statistics:")
	addBlock(&report, summary.String())

	if err := s.audits.Write(s.config.AnalysisPath, report); err != nil {
		return Exploration{}, err
	}
	s.logger.Info("exploratory analysis written", "path", s.config.AnalysisPath)
	return exploration, nil
}

func addBlock(report *audit.Report, block string) {
	for _, line := range strings.Split(strings.TrimRight(block, "\n"), "\n") {
		report.Lines = append(report.Lines, strings.TrimRight(line, " "))
	}
}
