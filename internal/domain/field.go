package domain

// FieldType represents the inferred type of a table column
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInteger   FieldType = "integer"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBoolean   FieldType = "boolean"
	FieldTypeTimestamp FieldType = "timestamp"
	// FieldTypeEmpty is reported for columns without a single non-null value.
	FieldTypeEmpty FieldType = "empty"
)

// IsNumeric reports whether summary statistics such as mean and quartiles apply.
func (t FieldType) IsNumeric() bool {
	return t == FieldTypeInteger || t == FieldTypeFloat
}

// ColumnProfile summarizes one column of a table.
type ColumnProfile struct {
	Name  string    `json:"name"`
	Type  FieldType `json:"type"`
	Count int       `json:"count"`
	Nulls int       `json:"nulls"`

	// Categorical summary.
	Unique int    `json:"unique"`
	Top    string `json:"top,omitempty"`
	Freq   int    `json:"freq"`

	// Numeric summary, populated when Type.IsNumeric().
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}
