package scoring

import (
	"context"
	"fmt"
	"strings"
)

// NotGiven is the readable form of a CHOICE answer left at its "0" default.
const NotGiven = "not given"

// ReadableAnswer is the human readable form of a stored answer: the option
// label for CHOICE questions, the raw answer otherwise.
func ReadableAnswer(q *Question, a Answer) string {
	if q.Type != QuestionChoice {
		return a.RawAnswer
	}
	raw := strings.TrimSpace(a.RawAnswer)
	if raw == "" || raw == "0" {
		return NotGiven
	}
	if a.ResolvedOptionID != nil {
		for _, o := range q.Options {
			if o.ID == *a.ResolvedOptionID {
				return o.Label
			}
		}
	}
	return a.RawAnswer
}

// ContextCode returns the context code of the answer's resolved option, or ""
// when nothing is resolved.
func (s *Snapshot) ContextCode(a Answer) string {
	if a.ResolvedOptionID == nil {
		return ""
	}
	if o, ok := s.Option(*a.ResolvedOptionID); ok {
		return o.ContextCode
	}
	return ""
}

// ─── SCORING NOTES ───────────────────────────────────────────────────────────

// notes renders every note for technology t that applies to the inquiry. A
// note applies when its scoring's option is the resolved option of a
// processed answer, every include_on option is selected the same way, and no
// exclude_on option is.
func (b scoreBook) notes(ctx context.Context, t *Technology) ([]string, error) {
	answers, err := b.tx.Answers(ctx)
	if err != nil {
		return nil, fmt.Errorf("scoring: load answers: %w", err)
	}
	selected := make(map[int64]bool)
	byQuestion := make(map[int64]Answer, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
		if a.Processed && a.ResolvedOptionID != nil {
			selected[*a.ResolvedOptionID] = true
		}
	}

	var out []string
	for _, q := range b.snap.data.Questions {
		for _, o := range q.Options {
			if !selected[o.ID] {
				continue
			}
			for _, sc := range o.Scorings {
				for _, n := range sc.Notes {
					if n.TechnologyID != t.ID || !noteApplies(n, selected) {
						continue
					}
					text, err := b.renderNote(ctx, n.Text, byQuestion)
					if err != nil {
						return nil, err
					}
					out = append(out, text)
				}
			}
		}
	}
	return out, nil
}

func noteApplies(n ScoringNote, selected map[int64]bool) bool {
	for _, id := range n.IncludeOn {
		if !selected[id] {
			return false
		}
	}
	for _, id := range n.ExcludeOn {
		if selected[id] {
			return false
		}
	}
	return true
}

// renderNote substitutes {q_<question>} with the readable answer and
// {v_<declaration>} with the current score. "{{" and "}}" are literal braces;
// unknown placeholders are kept verbatim.
func (b scoreBook) renderNote(ctx context.Context, text string, answers map[int64]Answer) (string, error) {
	pairs := []string{"{{", "{", "}}", "}"}
	for i := range b.snap.data.Questions {
		q := &b.snap.data.Questions[i]
		key := "{q_" + q.Name + "}"
		if !strings.Contains(text, key) {
			continue
		}
		readable := ""
		if a, ok := answers[q.ID]; ok {
			readable = ReadableAnswer(q, a)
		}
		pairs = append(pairs, key, readable)
	}
	for _, d := range b.snap.data.Declarations {
		key := "{v_" + d.Name + "}"
		if !strings.Contains(text, key) {
			continue
		}
		v, err := b.getOrInit(ctx, d.ID)
		if err != nil {
			return "", err
		}
		pairs = append(pairs, key, v.String())
	}
	return strings.NewReplacer(pairs...).Replace(text), nil
}
