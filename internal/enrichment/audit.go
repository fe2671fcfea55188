package enrichment

import (
	"fmt"
	"strings"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
)

// Summary is the outcome of the enrichment audit.
type Summary struct {
	BaseRows   int
	ExtraRows  int
	JoinedRows int
	// Matched and Unmatched count joined rows with and without a probe value.
	Matched       int
	Unmatched     int
	DuplicateKeys int
}

// Audit counts rows on each side of the join and writes the enrichment report.
func (s *Service) Audit(base, extra, joined domain.Table, st JoinStats) (Summary, error) {
	probe := s.config.ProbeColumn
	if !joined.HasColumn(probe) && joined.HasColumn(probe+extraSuffix) {
		probe += extraSuffix
	}
	nulls, err := joined.NullCount(probe)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to audit enrichment: %w", err)
	}

	summary := Summary{
		BaseRows:      base.Len(),
		ExtraRows:     extra.Len(),
		JoinedRows:    joined.Len(),
		Matched:       joined.Len() - nulls,
		Unmatched:     nulls,
		DuplicateKeys: st.DuplicateKeys,
	}

	report := audit.Report{Title: "Enrichment Audit"}
	report.Add("Total base records: %d", summary.BaseRows)
	report.Add("Total additional records: %d", summary.ExtraRows)
	report.Add("Total enriched records: %d", summary.JoinedRows)
	report.Add("Records with additional information: %d", summary.Matched)
	report.Add("Records without additional information: %d", summary.Unmatched)
	if summary.DuplicateKeys > 0 {
		report.Add("Secondary rows ignored for repeated '%s': %d", s.config.KeyColumn, summary.DuplicateKeys)
	}
	report.Add("")
	report.Add("Transformations applied:")
	report.Add("- Datasets joined on column '%s'", s.config.KeyColumn)
	report.Add("- Integrated columns: %s", strings.Join(s.integratedColumns(extra), ", "))

	if err := s.audits.Write(s.config.AuditPath, report); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *Service) integratedColumns(extra domain.Table) []string {
	columns := make([]string, 0, len(extra.Columns))
	for _, name := range extra.Columns {
		if name != s.config.KeyColumn {
			columns = append(columns, name)
		}
	}
	return columns
}
