package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rpattn/gamesetl/internal/domain"
)

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006-01",
	"2006",
}

// InferType returns the narrowest type every non-null cell satisfies.
func InferType(cells []domain.Cell) domain.FieldType {
	isBool := true
	isInt := true
	isFloat := true
	isTimestamp := true
	hasValue := false

	for _, cell := range cells {
		if cell.IsNull() {
			continue
		}
		value := strings.TrimSpace(cell.Value)
		if value == "" {
			continue
		}

		hasValue = true

		if !looksLikeBool(value) {
			isBool = false
		}
		if !looksLikeInt(value) {
			isInt = false
		}
		if !looksLikeFloat(value) {
			isFloat = false
		}
		if !looksLikeTimestamp(value) {
			isTimestamp = false
		}
	}

	switch {
	case !hasValue:
		return domain.FieldTypeEmpty
	case isBool:
		return domain.FieldTypeBoolean
	case isInt:
		return domain.FieldTypeInteger
	case isFloat:
		return domain.FieldTypeFloat
	case isTimestamp:
		return domain.FieldTypeTimestamp
	default:
		return domain.FieldTypeString
	}
}

// InferColumnType profiles a single named column.
func InferColumnType(t domain.Table, column string) (domain.FieldType, error) {
	cells, err := t.Column(column)
	if err != nil {
		return "", err
	}
	return InferType(cells), nil
}

func looksLikeBool(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "true", "false", "yes", "no":
		return true
	}
	// Bare 0/1 columns are treated as numeric, not boolean.
	if value == "1" || value == "0" {
		return false
	}
	_, err := strconv.ParseBool(value)
	return err == nil
}

func looksLikeInt(value string) bool {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return true
	}
	// Allow float representations that can be losslessly converted to int.
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return math.Mod(f, 1) == 0
	}
	return false
}

func looksLikeFloat(value string) bool {
	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

func looksLikeTimestamp(value string) bool {
	_, err := ParseTimestamp(value)
	return err == nil
}

// ParseTimestamp tries every known layout in order.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", raw)
}

// CanonicalInteger renders integral values ("1", "1.0", " 1 ") the same way so
// they can be used as join keys. Other values are returned trimmed.
func CanonicalInteger(raw string) string {
	value := strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && math.Mod(f, 1) == 0 && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return value
}
