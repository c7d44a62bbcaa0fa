package search

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Operator string

const (
	OpContains Operator = "contains"
	OpEq       Operator = "eq"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpBefore   Operator = "before"
	OpAfter    Operator = "after"
)

// FilterCondition excludes items whose field is present and does not
// satisfy Operator against Value. Items lacking the field always pass.
type FilterCondition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// ParseFilter reads "field:operator:value". The value may itself contain colons.
func ParseFilter(s string) (FilterCondition, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return FilterCondition{}, fmt.Errorf("invalid filter %q: want field:operator:value", s)
	}
	op := Operator(strings.ToLower(parts[1]))
	switch op {
	case OpContains, OpEq, OpGt, OpLt, OpBefore, OpAfter:
	default:
		return FilterCondition{}, fmt.Errorf("invalid filter %q: unknown operator %q", s, parts[1])
	}
	return FilterCondition{Field: parts[0], Operator: op, Value: parts[2]}, nil
}

func (c FilterCondition) String() string {
	return c.Field + ":" + string(c.Operator) + ":" + c.Value
}

func (c FilterCondition) Matches(it *Item) bool {
	v, ok := it.Field(c.Field)
	if !ok {
		return true
	}
	switch val := v.(type) {
	case string:
		return c.matchString(val)
	case float64:
		return c.matchNumber(val)
	case time.Time:
		return c.matchTime(val)
	}
	return true
}

func (c FilterCondition) matchString(v string) bool {
	v, want := strings.ToLower(v), strings.ToLower(c.Value)
	switch c.Operator {
	case OpContains:
		return strings.Contains(v, want)
	case OpEq:
		return v == want
	case OpGt:
		return v > want
	case OpLt:
		return v < want
	}
	return false
}

func (c FilterCondition) matchNumber(v float64) bool {
	if c.Operator == OpContains {
		return strings.Contains(strconv.FormatFloat(v, 'f', -1, 64), c.Value)
	}
	want, err := strconv.ParseFloat(strings.TrimSpace(c.Value), 64)
	if err != nil {
		return false
	}
	switch c.Operator {
	case OpEq:
		return v == want
	case OpGt:
		return v > want
	case OpLt:
		return v < want
	}
	return false
}

func (c FilterCondition) matchTime(v time.Time) bool {
	want, err := parseTime(c.Value)
	if err != nil {
		return false
	}
	switch c.Operator {
	case OpBefore, OpLt:
		return v.Before(want)
	case OpAfter, OpGt:
		return v.After(want)
	case OpEq:
		return v.UTC().Format(time.DateOnly) == want.UTC().Format(time.DateOnly)
	case OpContains:
		return strings.Contains(v.UTC().Format(time.RFC3339), c.Value)
	}
	return false
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, s)
}
