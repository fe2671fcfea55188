package cleaning

import (
	"fmt"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/tabular"
)

// Result is the row and null accounting of one cleaning run.
type Result struct {
	Original  int
	Corrupted int
	Cleaned   int

	DuplicatesInjected int
	NullsInjected      int
	// NullsObserved is the null count of the null column in the corrupted table;
	// it exceeds NullsInjected when a blanked row was also duplicated.
	NullsObserved     int
	NullsRemaining    int
	DuplicatesDropped int
	NullsFilled       int
	DatesDefaulted    int

	DateTypeBefore domain.FieldType
	DateTypeAfter  domain.FieldType
}

// Audit reconciles the three tables and writes the cleaning report.
func (s *Service) Audit(original, corrupted, cleaned domain.Table, injection Injection, st Stats) (Result, error) {
	observed, err := corrupted.NullCount(s.config.NullColumn)
	if err != nil {
		return Result{}, fmt.Errorf("failed to audit cleaning: %w", err)
	}
	remaining, err := cleaned.NullCount(s.config.NullColumn)
	if err != nil {
		return Result{}, fmt.Errorf("failed to audit cleaning: %w", err)
	}
	before, err := tabular.InferColumnType(corrupted, s.config.DateColumn)
	if err != nil {
		return Result{}, fmt.Errorf("failed to audit cleaning: %w", err)
	}
	after, err := tabular.InferColumnType(cleaned, s.config.DateColumn)
	if err != nil {
		return Result{}, fmt.Errorf("failed to audit cleaning: %w", err)
	}

	result := Result{
		Original:           original.Len(),
		Corrupted:          corrupted.Len(),
		Cleaned:            cleaned.Len(),
		DuplicatesInjected: injection.Duplicates(),
		NullsInjected:      injection.Nulls(),
		NullsObserved:      observed,
		NullsRemaining:     remaining,
		DuplicatesDropped:  st.DuplicatesDropped,
		NullsFilled:        st.NullsFilled,
		DatesDefaulted:     st.DatesDefaulted,
		DateTypeBefore:     before,
		DateTypeAfter:      after,
	}

	column := s.config.NullColumn
	report := audit.Report{Title: "Cleaning Audit"}
	report.Add("Total original records: %d", result.Original)
	report.Add("Total records after corruption: %d", result.Corrupted)
	report.Add("Total records after cleaning: %d", result.Cleaned)
	report.Add("Duplicates added: %d", result.Corrupted-result.Original)
	report.Add("Duplicates removed: %d", result.Corrupted-result.Cleaned)
	report.Add("Null values introduced in '%s': %d", column, result.NullsInjected)
	report.Add("Null values in '%s' before cleaning: %d", column, result.NullsObserved)
	report.Add("Null values in '%s' after cleaning: %d", column, result.NullsRemaining)
	report.Add("Transformations applied:")
	report.Add("- Names normalized")
	report.Add("- Genres adjusted")
	report.Add("- Null values in '%s' replaced with '%s' (%d)", column, s.config.Sentinel, result.NullsFilled)
	report.Add("- Dates converted to standard format YYYY-MM-DD (%d defaulted to today)", result.DatesDefaulted)
	report.Add("- Data type of '%s' before: %s", s.config.DateColumn, result.DateTypeBefore)
	report.Add("- Data type of '%s' after: %s", s.config.DateColumn, result.DateTypeAfter)

	if err := s.audits.Write(s.config.AuditPath, report); err != nil {
		return Result{}, err
	}
	return result, nil
}
