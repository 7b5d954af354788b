package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// QuestionOptions is the per-question tuning stored in the questions.options
// JSON column. Only the keys below are recognised; anything else is rejected
// when the question is authored.
//
// DB JSON shape:
//
//	{
//	  "priority": [3, 1, 2],   // BEST_OF_MULTI only
//	  "minimum":  0,           // INT / DOUBLE only
//	  "maximum":  500,         // INT / DOUBLE only
//	  "regex":    "^[0-9]{4}$" // OPEN only
//	}
type QuestionOptions struct {
	Priority []int64 `json:"priority,omitempty" yaml:"priority,omitempty"`
	Minimum  *Value  `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum  *Value  `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Regex    string  `json:"regex,omitempty" yaml:"regex,omitempty"`
}

// ParseQuestionOptions decodes the options column. An empty blob, "null" and
// "{}" all yield the zero QuestionOptions.
func ParseQuestionOptions(raw json.RawMessage) (QuestionOptions, error) {
	var opts QuestionOptions
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return opts, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return QuestionOptions{}, fmt.Errorf("question options: %w", err)
	}
	return opts, nil
}

// IsZero reports whether no option is configured.
func (o QuestionOptions) IsZero() bool {
	return len(o.Priority) == 0 && o.Minimum == nil && o.Maximum == nil && o.Regex == ""
}

// Validate checks that the configured keys make sense for the question type.
// Call it once when a snapshot is built, not on every answer.
func (o QuestionOptions) Validate(t QuestionType) error {
	if len(o.Priority) > 0 && t != QuestionBestOfMulti {
		return fmt.Errorf("question options: priority is only valid for %s, not %s", QuestionBestOfMulti, t)
	}
	if (o.Minimum != nil || o.Maximum != nil) && t != QuestionInt && t != QuestionDouble {
		return fmt.Errorf("question options: minimum/maximum are only valid for numeric questions, not %s", t)
	}
	if o.Minimum != nil && o.Maximum != nil && *o.Minimum > *o.Maximum {
		return fmt.Errorf("question options: minimum %s > maximum %s", o.Minimum, o.Maximum)
	}
	if o.Regex != "" {
		if t != QuestionOpen {
			return fmt.Errorf("question options: regex is only valid for %s, not %s", QuestionOpen, t)
		}
		if _, err := regexp.Compile(o.Regex); err != nil {
			return fmt.Errorf("question options: regex: %w", err)
		}
	}
	return nil
}

// CheckAnswer validates a non-empty raw answer against the bounds and pattern.
// Empty answers always pass; they simply resolve to no option.
func (o QuestionOptions) CheckAnswer(t QuestionType, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	switch t {
	case QuestionInt, QuestionDouble:
		v, err := parseDecimal(raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidAnswer, raw)
		}
		if t == QuestionInt && !v.IsInt() {
			return fmt.Errorf("%w: %q is not a whole number", ErrInvalidAnswer, raw)
		}
		if o.Minimum != nil && v.Cmp(o.Minimum.rat()) < 0 {
			return fmt.Errorf("%w: %s is below the minimum %s", ErrInvalidAnswer, raw, o.Minimum)
		}
		if o.Maximum != nil && v.Cmp(o.Maximum.rat()) > 0 {
			return fmt.Errorf("%w: %s is above the maximum %s", ErrInvalidAnswer, raw, o.Maximum)
		}
	case QuestionOpen:
		if o.Regex != "" {
			re, err := regexp.Compile(o.Regex)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
			}
			if !re.MatchString(raw) {
				return fmt.Errorf("%w: %q does not match the expected format", ErrInvalidAnswer, raw)
			}
		}
	}
	return nil
}
