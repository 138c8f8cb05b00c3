package validate

import (
	"fmt"
	"strings"
)

// Kind enumerates the rule kinds the engine knows how to run.
type Kind int

const (
	KindInvalid Kind = iota
	KindColumnsComplete
	KindColumnsOrder
	KindNonNullable
	KindAllowedValues
	KindMinValue
	KindMaxValue
	KindMinLen
	KindMaxLen
	KindType
	KindDuplicates
	KindISO2
	KindCondition
)

var kindNames = map[Kind]string{
	KindColumnsComplete: "columns_complete",
	KindColumnsOrder:    "columns_order",
	KindNonNullable:     "non_nullable",
	KindAllowedValues:   "allowed_values",
	KindMinValue:        "min_value",
	KindMaxValue:        "max_value",
	KindMinLen:          "minlen",
	KindMaxLen:          "maxlen",
	KindType:            "type",
	KindDuplicates:      "duplicates",
	KindISO2:            "iso2",
	KindCondition:       "condition",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// ParseKind maps a configuration key such as "non_nullable" to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindInvalid, fmt.Errorf("%w: %q", ErrUnknownRule, s)
}

// Hard reports whether failures of this kind always fail a dataset.
func (k Kind) Hard() bool {
	switch k {
	case KindNonNullable, KindAllowedValues, KindType:
		return true
	}
	return false
}

// Severity tags a summary row as a hard or soft failure.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

func (k Kind) Severity() Severity {
	if k.Hard() {
		return SeverityHard
	}
	return SeveritySoft
}
