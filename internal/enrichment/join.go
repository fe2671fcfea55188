package enrichment

import (
	"fmt"

	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/tabular"
)

const (
	baseSuffix  = "_x"
	extraSuffix = "_y"
)

// JoinStats counts how base rows resolved against the secondary table.
type JoinStats struct {
	Matched   int
	Unmatched int
	// DuplicateKeys counts secondary rows ignored because an earlier row had the same key.
	DuplicateKeys int
}

// Join left-joins base with extra on the key column. Every base row appears
// exactly once and in order; unmatched rows carry nulls in the secondary
// columns. Keys are compared trimmed with integral numbers canonicalized, and
// the first secondary row wins when a key repeats. Other column names present
// on both sides get the _x (base) and _y (secondary) suffixes.
func (s *Service) Join(base, extra domain.Table) (domain.Table, JoinStats, error) {
	key := s.config.KeyColumn
	baseKey, err := base.ColumnIndex(key)
	if err != nil {
		return domain.Table{}, JoinStats{}, fmt.Errorf("failed to join: base %w", err)
	}
	extraKey, err := extra.ColumnIndex(key)
	if err != nil {
		return domain.Table{}, JoinStats{}, fmt.Errorf("failed to join: secondary %w", err)
	}

	var st JoinStats
	index := make(map[string]int, extra.Len())
	for idx, row := range extra.Rows {
		cell := row[extraKey]
		if cell.IsNull() {
			continue
		}
		k := tabular.CanonicalInteger(cell.Value)
		if _, ok := index[k]; ok {
			st.DuplicateKeys++
			continue
		}
		index[k] = idx
	}
	if st.DuplicateKeys > 0 {
		s.logger.Warn("secondary table repeats join keys, keeping first occurrence",
			"column", key, "ignored_rows", st.DuplicateKeys)
	}

	extraColumns := make([]int, 0, len(extra.Columns))
	for idx := range extra.Columns {
		if idx != extraKey {
			extraColumns = append(extraColumns, idx)
		}
	}

	joined := domain.NewTable(joinedColumns(base, extra, baseKey, extraColumns)...)
	joined.Rows = make([][]domain.Cell, 0, base.Len())
	for _, row := range base.Rows {
		out := make([]domain.Cell, 0, len(joined.Columns))
		out = append(out, row...)

		match, ok := -1, false
		if cell := row[baseKey]; !cell.IsNull() {
			match, ok = index[tabular.CanonicalInteger(cell.Value)]
		}
		if ok {
			st.Matched++
			for _, idx := range extraColumns {
				out = append(out, extra.Rows[match][idx])
			}
		} else {
			st.Unmatched++
			for range extraColumns {
				out = append(out, domain.NullCell())
			}
		}
		joined.Rows = append(joined.Rows, out)
	}

	return joined, st, nil
}

func joinedColumns(base, extra domain.Table, baseKey int, extraColumns []int) []string {
	extraNames := make(map[string]struct{}, len(extraColumns))
	for _, idx := range extraColumns {
		extraNames[extra.Columns[idx]] = struct{}{}
	}
	baseNames := make(map[string]struct{}, len(base.Columns))
	for idx, name := range base.Columns {
		if idx != baseKey {
			baseNames[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(base.Columns)+len(extraColumns))
	for idx, name := range base.Columns {
		if _, clash := extraNames[name]; clash && idx != baseKey {
			name += baseSuffix
		}
		columns = append(columns, name)
	}
	for _, idx := range extraColumns {
		name := extra.Columns[idx]
		if _, clash := baseNames[name]; clash {
			name += extraSuffix
		}
		columns = append(columns, name)
	}
	return columns
}
