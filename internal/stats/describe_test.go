package stats

import (
	"bytes"
	"math"
	"testing"

	"github.com/rpattn/gamesetl/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribeNumericColumn(t *testing.T) {
	cells := []domain.Cell{
		domain.StringCell("1"),
		domain.StringCell("2"),
		domain.StringCell("3"),
		domain.StringCell("4"),
		domain.NullCell(),
	}

	p := DescribeColumn("id", cells)

	assert.Equal(t, domain.FieldTypeInteger, p.Type)
	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 1, p.Nulls)
	assert.InDelta(t, 2.5, p.Mean, 1e-9)
	assert.InDelta(t, 1.2909944, p.Std, 1e-6)
	assert.InDelta(t, 1.75, p.Q1, 1e-9)
	assert.InDelta(t, 2.5, p.Median, 1e-9)
	assert.InDelta(t, 3.25, p.Q3, 1e-9)
	assert.Equal(t, 1.0, p.Min)
	assert.Equal(t, 4.0, p.Max)
}

func TestDescribeCategoricalColumn(t *testing.T) {
	cells := []domain.Cell{
		domain.StringCell("Switch"),
		domain.StringCell("PC"),
		domain.StringCell("PC"),
		domain.StringCell("Switch"),
		domain.StringCell("PC"),
	}

	p := DescribeColumn("plataformas", cells)

	assert.Equal(t, domain.FieldTypeString, p.Type)
	assert.Equal(t, 2, p.Unique)
	assert.Equal(t, "PC", p.Top)
	assert.Equal(t, 3, p.Freq)
}

func TestSampleStdNeedsTwoValues(t *testing.T) {
	assert.True(t, math.IsNaN(SampleStd([]float64{3})))
}

func TestWriteSummary(t *testing.T) {
	table := domain.RecordsToTable([]domain.Record{
		{ID: 1, Name: "Zelda", Genre: "Adventure", Platforms: "Switch", Year: "2017"},
		{ID: 2, Name: "Mario", Genre: "Platformer", Platforms: "Switch", Year: "2017"},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, Describe(table)))

	out := buf.String()
	assert.Contains(t, out, "column")
	assert.Contains(t, out, "plataformas")
	assert.Contains(t, out, "1.50")
}
