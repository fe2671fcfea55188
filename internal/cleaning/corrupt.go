package cleaning

import (
	"fmt"
	"math"

	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/export"
)

// Injection records what Corrupt did to the table.
type Injection struct {
	// NullRows are the row positions whose null column was blanked.
	NullRows []int
	// DuplicateRows are the row positions copied to the end, in append order.
	DuplicateRows []int
}

// Nulls is the number of rows that received a null.
func (i Injection) Nulls() int { return len(i.NullRows) }

// Duplicates is the number of rows appended.
func (i Injection) Duplicates() int { return len(i.DuplicateRows) }

// Corrupt blanks the null column on ceil(NullFraction*n) random rows, then
// appends verbatim copies of ceil(DuplicateFraction*n) independently chosen rows,
// and writes the result to the corrupted path. The input table is left untouched.
func (s *Service) Corrupt(table domain.Table) (domain.Table, Injection, error) {
	nullIdx, err := table.ColumnIndex(s.config.NullColumn)
	if err != nil {
		return domain.Table{}, Injection{}, fmt.Errorf("failed to corrupt table: %w", err)
	}

	n := table.Len()
	corrupted := table.Clone()
	injection := Injection{
		NullRows:      s.sample(n, sampleSize(s.config.NullFraction, n)),
		DuplicateRows: s.sample(n, sampleSize(s.config.DuplicateFraction, n)),
	}

	for _, row := range injection.NullRows {
		corrupted.Rows[row][nullIdx] = domain.NullCell()
	}
	// Copies are taken after blanking, so a duplicated blanked row adds a second null.
	for _, row := range injection.DuplicateRows {
		corrupted.Rows = append(corrupted.Rows, append([]domain.Cell(nil), corrupted.Rows[row]...))
	}

	s.logger.Info("corrupted table",
		"nulls", injection.Nulls(), "duplicates", injection.Duplicates(), "rows", corrupted.Len())

	if _, err := export.WriteCSV(s.config.CorruptedPath, corrupted); err != nil {
		return domain.Table{}, Injection{}, fmt.Errorf("failed to save corrupted table: %w", err)
	}
	return corrupted, injection, nil
}

// sampleSize is ceil(fraction*n) clamped to [0, n]. The small epsilon keeps
// products such as 0.1*30 from rounding up past the exact count.
func sampleSize(fraction float64, n int) int {
	if fraction <= 0 || n == 0 {
		return 0
	}
	k := int(math.Ceil(fraction*float64(n) - 1e-9))
	return min(max(k, 0), n)
}

// sample picks k distinct positions out of n uniformly at random.
func (s *Service) sample(n, k int) []int {
	if k <= 0 {
		return []int{}
	}
	return s.rng.Perm(n)[:k]
}
