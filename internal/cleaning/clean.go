package cleaning

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/tabular"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is how cleaned dates are rendered.
const DateLayout = "2006-01-02"

// Stats counts what Clean changed.
type Stats struct {
	DuplicatesDropped int
	NullsFilled       int
	NamesDefaulted    int
	GenresDefaulted   int
	// DatesDefaulted counts dates that were missing, placeholders or unparseable
	// and were replaced with the run date.
	DatesDefaulted int
}

// Clean returns a repaired copy of table:
//
//  1. exact duplicate rows are dropped, keeping the first occurrence;
//  2. nulls in the null column become the sentinel;
//  3. names lose the marker at both ends and are title-cased;
//  4. genres are title-cased;
//  5. dates are normalized to DateLayout, with placeholders and unparseable
//     values replaced by today's date.
//
// Null names and genres become the sentinel. Clean is idempotent.
func (s *Service) Clean(table domain.Table) (domain.Table, Stats, error) {
	idx, err := s.columnIndexes(table)
	if err != nil {
		return domain.Table{}, Stats{}, fmt.Errorf("failed to clean table: %w", err)
	}

	var st Stats
	cleaned := dropDuplicates(table)
	st.DuplicatesDropped = table.Len() - cleaned.Len()

	caser := cases.Title(language.Spanish)
	today := s.audits.Today()

	for _, row := range cleaned.Rows {
		if row[idx.null].IsNull() {
			row[idx.null] = domain.StringCell(s.config.Sentinel)
			st.NullsFilled++
		}

		name, defaulted := s.normalizeName(row[idx.name], caser)
		row[idx.name] = name
		if defaulted {
			st.NamesDefaulted++
		}

		genre, defaulted := s.normalizeText(row[idx.genre], caser)
		row[idx.genre] = genre
		if defaulted {
			st.GenresDefaulted++
		}

		date, defaulted := s.normalizeDate(row[idx.date], today)
		row[idx.date] = date
		if defaulted {
			st.DatesDefaulted++
		}
	}

	s.logger.Info("cleaned table",
		"duplicates_dropped", st.DuplicatesDropped,
		"nulls_filled", st.NullsFilled,
		"dates_defaulted", st.DatesDefaulted,
		"rows", cleaned.Len())
	return cleaned, st, nil
}

type columnIndexes struct {
	null, name, genre, date int
}

func (s *Service) columnIndexes(table domain.Table) (columnIndexes, error) {
	var idx columnIndexes
	var err error
	if idx.null, err = table.ColumnIndex(s.config.NullColumn); err != nil {
		return idx, err
	}
	if idx.name, err = table.ColumnIndex(s.config.NameColumn); err != nil {
		return idx, err
	}
	if idx.genre, err = table.ColumnIndex(s.config.GenreColumn); err != nil {
		return idx, err
	}
	if idx.date, err = table.ColumnIndex(s.config.DateColumn); err != nil {
		return idx, err
	}
	return idx, nil
}

// dropDuplicates copies the rows of t that do not repeat an earlier row.
func dropDuplicates(t domain.Table) domain.Table {
	out := domain.NewTable(t.Columns...)
	seen := make(map[string]struct{}, t.Len())
	for _, row := range t.Rows {
		key := domain.RowKey(row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, append([]domain.Cell(nil), row...))
	}
	return out
}

func (s *Service) normalizeName(cell domain.Cell, caser cases.Caser) (domain.Cell, bool) {
	if cell.IsNull() {
		return domain.StringCell(s.config.Sentinel), true
	}
	return domain.StringCell(caser.String(trimMarker(cell.Value, s.config.Marker))), false
}

// trimMarker strips the marker and surrounding whitespace from both ends until
// neither is left, so " #zelda" and "# #zelda" both become "zelda".
func trimMarker(value, marker string) string {
	for {
		next := strings.TrimSpace(strings.Trim(value, marker))
		if next == value {
			return next
		}
		value = next
	}
}

func (s *Service) normalizeText(cell domain.Cell, caser cases.Caser) (domain.Cell, bool) {
	if cell.IsNull() {
		return domain.StringCell(s.config.Sentinel), true
	}
	return domain.StringCell(caser.String(strings.TrimSpace(cell.Value))), false
}

func (s *Service) normalizeDate(cell domain.Cell, today time.Time) (domain.Cell, bool) {
	if cell.IsNull() || s.isPlaceholder(cell.Value) {
		return domain.StringCell(today.Format(DateLayout)), true
	}
	ts, err := tabular.ParseTimestamp(cell.Value)
	if err != nil {
		return domain.StringCell(today.Format(DateLayout)), true
	}
	return domain.StringCell(ts.Format(DateLayout)), false
}

func (s *Service) isPlaceholder(value string) bool {
	value = strings.TrimSpace(value)
	return value == "" || slices.Contains(s.config.PlaceholderDates, value)
}
