package scoring

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"
	"strings"
)

// Resolve maps a raw answer to the question's canonical answer option.
//
// A nil option with a nil error means "no option": the answer is empty or no
// option qualifies. Only CHOICE and BEST_OF_MULTI lookups that name a value
// the question does not have return ErrUnknownAnswerOption.
func Resolve(q *Question, raw string) (*AnswerOption, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	switch q.Type {
	case QuestionOpen:
		return q.optionByLabel(LabelNotNone), nil
	case QuestionInt, QuestionDouble:
		return resolveFloor(q, raw), nil
	case QuestionChoice:
		return resolveChoice(q, raw)
	case QuestionYesNo:
		if raw == LabelTrue {
			return q.optionByLabel(LabelTrue), nil
		}
		return q.optionByLabel(LabelFalse), nil
	case QuestionBestOfMulti:
		return resolveBestOfMulti(q, raw)
	}
	return nil, fmt.Errorf("scoring: resolve: question %q has unknown type %q", q.Name, q.Type)
}

func (q *Question) optionByLabel(label string) *AnswerOption {
	for i := range q.Options {
		if q.Options[i].Label == label {
			return &q.Options[i]
		}
	}
	return nil
}

func (q *Question) optionByValue(v int64) *AnswerOption {
	for i := range q.Options {
		if q.Options[i].Value == v {
			return &q.Options[i]
		}
	}
	return nil
}

// resolveFloor picks the option with the greatest numeric label that is not
// above the answer. Equal labels go to the lowest option id.
func resolveFloor(q *Question, raw string) *AnswerOption {
	answer, err := parseDecimal(raw)
	if err != nil {
		return nil
	}

	var (
		best      *AnswerOption
		bestLabel *big.Rat
	)
	for i := range q.Options {
		o := &q.Options[i]
		label, err := parseDecimal(o.Label)
		if err != nil || label.Cmp(answer) > 0 {
			continue
		}
		if best == nil {
			best, bestLabel = o, label
			continue
		}
		switch c := label.Cmp(bestLabel); {
		case c > 0:
			best, bestLabel = o, label
		case c == 0 && o.ID < best.ID:
			best = o
		}
	}
	return best
}

func resolveChoice(q *Question, raw string) (*AnswerOption, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: question %q: %q is not an option value", ErrUnknownAnswerOption, q.Name, raw)
	}
	if o := q.optionByValue(v); o != nil {
		return o, nil
	}
	// "0" is what an untouched select submits.
	if v == 0 {
		return nil, nil
	}
	return nil, fmt.Errorf("%w: question %q has no option with value %d", ErrUnknownAnswerOption, q.Name, v)
}

// resolveBestOfMulti handles a comma separated selection. The first configured
// priority value that was selected wins; otherwise the first token is read as
// a 1-based position among the options ordered by value.
func resolveBestOfMulti(q *Question, raw string) (*AnswerOption, error) {
	var selected []int64
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: question %q: %q is not an option value", ErrUnknownAnswerOption, q.Name, tok)
		}
		selected = append(selected, v)
	}
	if len(selected) == 0 {
		return nil, nil
	}

	for _, p := range q.Config.Priority {
		for _, v := range selected {
			if v != p {
				continue
			}
			if o := q.optionByValue(p); o != nil {
				return o, nil
			}
		}
	}

	ordinal := selected[0]
	if ordinal < 1 || ordinal > int64(len(q.Options)) {
		return nil, nil
	}
	ordered := make([]*AnswerOption, len(q.Options))
	for i := range q.Options {
		ordered[i] = &q.Options[i]
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		if ordered[a].Value != ordered[b].Value {
			return ordered[a].Value < ordered[b].Value
		}
		return ordered[a].ID < ordered[b].ID
	})
	return ordered[ordinal-1], nil
}
