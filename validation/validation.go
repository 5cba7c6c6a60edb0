// Package validation checks decoded request bodies against per-entity rule
// tables and reports the first violation in the same wording clients of the
// API already rely on ("\"title\" is required", ...).
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Kind int

const (
	String Kind = iota
	Email
	Bool
	Date
	// HexID is a 24 character hex string checked as hex first, then length.
	HexID
	// ObjectID is a 24 character hex string checked as a single pattern.
	ObjectID
)

// Rule constrains one field. Min/Max bound string length when non-zero,
// OneOf restricts strings to an enumeration, List makes the field an array
// whose items follow the rule.
type Rule struct {
	Field    string
	Kind     Kind
	Required bool
	Min      int
	Max      int
	OneOf    []string
	List     bool
}

// Schema is an ordered rule table; fields are checked in table order.
type Schema []Rule

// Record is a request body decoded as a JSON object.
type Record map[string]any

// Error names the offending field and carries the client-facing message.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	validate        = validator.New()
	objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	hexPattern      = regexp.MustCompile(`^[0-9a-fA-F]+$`) // validator's hexadecimal tag admits a 0x prefix

	ErrNotObject = errors.New(`"value" must be of type object`)
)

// Decode parses a JSON body into a Record. An empty body is an empty record.
func Decode(body []byte) (Record, error) {
	rec := Record{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, ErrNotObject
	}
	if rec == nil {
		return nil, ErrNotObject
	}
	return rec, nil
}

// Validate returns nil or the first *Error found. Unknown keys are rejected
// after every declared field has passed.
func Validate(schema Schema, rec Record) error {
	known := make(map[string]struct{}, len(schema))
	for _, rule := range schema {
		known[rule.Field] = struct{}{}

		value, present := rec[rule.Field]
		if !present {
			if rule.Required {
				return fail(rule.Field, "is required")
			}
			continue
		}
		if err := checkRule(rule, value); err != nil {
			return err
		}
	}

	for _, key := range sortedKeys(rec) {
		if _, ok := known[key]; !ok {
			return fail(key, "is not allowed")
		}
	}
	return nil
}

func checkRule(rule Rule, value any) error {
	if !rule.List {
		return checkValue(rule, rule.Field, value)
	}
	items, ok := value.([]any)
	if !ok {
		return fail(rule.Field, "must be an array")
	}
	for i, item := range items {
		if err := checkValue(rule, fmt.Sprintf("%s[%d]", rule.Field, i), item); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(rule Rule, label string, value any) error {
	switch rule.Kind {
	case Bool:
		if _, ok := value.(bool); !ok {
			return fail(label, "must be a boolean")
		}
		return nil
	case Date:
		if _, ok := ParseDate(value); !ok {
			return fail(label, "must be a valid date")
		}
		return nil
	}

	s, ok := value.(string)
	if !ok {
		return fail(label, "must be a string")
	}
	if s == "" {
		return fail(label, "is not allowed to be empty")
	}

	switch rule.Kind {
	case ObjectID:
		if !objectIDPattern.MatchString(s) {
			return fail(label, fmt.Sprintf("with value %q fails to match the valid mongo id pattern", s))
		}
		return nil
	case HexID:
		if !hexPattern.MatchString(s) {
			return fail(label, "must only contain hexadecimal characters")
		}
		return firstError(label, validate.Var(s, "len=24"), rule)
	case Email:
		if err := firstError(label, validate.Var(s, lengthTag(rule)), rule); err != nil {
			return err
		}
		return firstError(label, validate.Var(s, "email"), rule)
	}

	tag := lengthTag(rule)
	if len(rule.OneOf) > 0 {
		tag = joinTags(tag, "oneof="+strings.Join(rule.OneOf, " "))
	}
	return firstError(label, validate.Var(s, tag), rule)
}

func lengthTag(rule Rule) string {
	var tags []string
	if rule.Min > 0 {
		tags = append(tags, "min="+strconv.Itoa(rule.Min))
	}
	if rule.Max > 0 {
		tags = append(tags, "max="+strconv.Itoa(rule.Max))
	}
	return strings.Join(tags, ",")
}

func joinTags(a, b string) string {
	if a == "" {
		return b
	}
	return a + "," + b
}

// firstError translates a validator failure into the client wording.
func firstError(label string, err error, rule Rule) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fail(label, "is invalid")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "min":
		return fail(label, fmt.Sprintf("length must be at least %s characters long", fe.Param()))
	case "max":
		return fail(label, fmt.Sprintf("length must be less than or equal to %s characters long", fe.Param()))
	case "len":
		return fail(label, fmt.Sprintf("length must be %s characters long", fe.Param()))
	case "email":
		return fail(label, "must be a valid email")
	case "oneof":
		return fail(label, fmt.Sprintf("must be one of [%s]", strings.Join(rule.OneOf, ", ")))
	default:
		return fail(label, "is invalid")
	}
}

func fail(label, msg string) error {
	return &Error{Field: label, Message: fmt.Sprintf("%q %s", label, msg)}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// maxEpochMillis is the widest instant a JSON client date can carry.
const maxEpochMillis = 8.64e15

// ParseDate accepts ISO-8601 strings and millisecond epoch numbers.
func ParseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return t.UTC(), true
			}
		}
	case float64:
		if math.IsNaN(v) || math.Abs(v) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)).UTC(), true
	}
	return time.Time{}, false
}
