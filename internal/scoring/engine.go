package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Engine is the entry point for every answer-processing and read-out
// operation. All work for one inquiry runs through the Serializer and inside
// a single StateRepository unit of work, so operations on the same inquiry
// never interleave.
type Engine struct {
	snap   atomic.Pointer[Snapshot]
	state  StateRepository
	serial Serializer
	log    *slog.Logger
}

// NewEngine wires an engine. A nil serializer defaults to NewKeyedLocks().
func NewEngine(snap *Snapshot, state StateRepository, serial Serializer, log *slog.Logger) *Engine {
	if serial == nil {
		serial = NewKeyedLocks()
	}
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{state: state, serial: serial, log: log}
	e.snap.Store(snap)
	return e
}

// Snapshot returns the configuration currently in use.
func (e *Engine) Snapshot() *Snapshot { return e.snap.Load() }

// Reload swaps in a new configuration. Operations already running keep the
// snapshot they started with.
func (e *Engine) Reload(snap *Snapshot) {
	e.snap.Store(snap)
	e.log.Info("scoring: snapshot reloaded",
		"questions", len(snap.data.Questions),
		"pages", len(snap.data.Pages),
		"technologies", len(snap.data.Technologies),
	)
}

// run executes fn as one serialized unit of work for the inquiry.
func (e *Engine) run(ctx context.Context, inquiryID int64, fn func(ctx context.Context, b scoreBook) error) error {
	snap := e.snap.Load()
	return e.serial.Do(ctx, inquiryID, func(ctx context.Context) error {
		return e.state.Atomically(ctx, inquiryID, func(ctx context.Context, tx StateTx) error {
			return fn(ctx, scoreBook{snap: snap, tx: tx})
		})
	})
}

// ─── ANSWER PROCESSING ───────────────────────────────────────────────────────

// RecordAnswer validates and resolves raw, then stores it unprocessed.
// A stored answer that is still processed must be retreated first.
func (e *Engine) RecordAnswer(ctx context.Context, inquiryID, questionID int64, raw string) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		q, ok := b.snap.Question(questionID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
		}
		if err := q.Config.CheckAnswer(q.Type, raw); err != nil {
			return fmt.Errorf("question %q: %w", q.Name, err)
		}
		opt, err := Resolve(q, raw)
		if err != nil {
			return err
		}

		prev, found, err := b.tx.Answer(ctx, questionID)
		if err != nil {
			return fmt.Errorf("scoring: load answer: %w", err)
		}
		if found && prev.Processed {
			return fmt.Errorf("%w: inquiry %d question %q", ErrStaleProcessedAnswer, inquiryID, q.Name)
		}

		a := Answer{InquiryID: inquiryID, QuestionID: questionID, RawAnswer: raw}
		if opt != nil {
			id := opt.ID
			a.ResolvedOptionID = &id
		}
		if err := b.tx.SaveAnswer(ctx, a); err != nil {
			return fmt.Errorf("scoring: save answer: %w", err)
		}
		return nil
	})
}

// Advance applies the answer's adjustments once. It is a no-op when the
// answer is already processed or does not exist.
func (e *Engine) Advance(ctx context.Context, inquiryID, questionID int64) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		return b.forward(ctx, questionID)
	})
}

// Retreat reverts exactly what Advance applied. It is a no-op when the answer
// is not processed.
func (e *Engine) Retreat(ctx context.Context, inquiryID, questionID int64) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		return b.backward(ctx, questionID)
	})
}

// ClearAnswer retreats the answer if needed and deletes it.
func (e *Engine) ClearAnswer(ctx context.Context, inquiryID, questionID int64) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		if err := b.backward(ctx, questionID); err != nil {
			return err
		}
		if err := b.tx.DeleteAnswer(ctx, questionID); err != nil {
			return fmt.Errorf("scoring: delete answer: %w", err)
		}
		return nil
	})
}

// AdvancePage advances every question on the page in one unit of work.
func (e *Engine) AdvancePage(ctx context.Context, inquiryID, pageID int64) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		p, ok := b.snap.Page(pageID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPage, pageID)
		}
		for _, qid := range p.Questions {
			if err := b.forward(ctx, qid); err != nil {
				return err
			}
		}
		return nil
	})
}

// RetreatPage retreats every question on the page, last question first.
func (e *Engine) RetreatPage(ctx context.Context, inquiryID, pageID int64) error {
	return e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		p, ok := b.snap.Page(pageID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPage, pageID)
		}
		for i := len(p.Questions) - 1; i >= 0; i-- {
			if err := b.backward(ctx, p.Questions[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ResetInquiry drops every Score of the inquiry and marks all its answers
// unprocessed. Raw answers survive so the inquirer can advance again.
func (e *Engine) ResetInquiry(ctx context.Context, inquiryID int64) error {
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		if err := b.tx.DeleteScores(ctx); err != nil {
			return fmt.Errorf("scoring: delete scores: %w", err)
		}
		if err := b.tx.ResetAnswers(ctx); err != nil {
			return fmt.Errorf("scoring: reset answers: %w", err)
		}
		return nil
	})
	if err == nil {
		e.log.Info("scoring: inquiry reset", "inquiry_id", inquiryID)
	}
	return err
}

func (b scoreBook) forward(ctx context.Context, questionID int64) error {
	if _, ok := b.snap.Question(questionID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	a, found, err := b.tx.Answer(ctx, questionID)
	if err != nil {
		return fmt.Errorf("%w: load answer: %w", ErrScoreAdjustmentFailed, err)
	}
	if !found || a.Processed {
		return nil
	}

	a.Applied = nil
	if a.ResolvedOptionID != nil {
		opt, ok := b.snap.Option(*a.ResolvedOptionID)
		if !ok {
			return fmt.Errorf("%w: resolved option %d is no longer configured", ErrScoreAdjustmentFailed, *a.ResolvedOptionID)
		}
		for _, rule := range opt.Scorings {
			delta, err := ruleDelta(rule, a.RawAnswer)
			if err != nil {
				return err
			}
			if err := b.apply(ctx, rule.DeclarationID, delta); err != nil {
				return err
			}
			a.Applied = append(a.Applied, Adjustment{DeclarationID: rule.DeclarationID, Delta: delta})
		}
	}

	a.Processed = true
	if err := b.tx.SaveAnswer(ctx, a); err != nil {
		return fmt.Errorf("%w: save answer: %w", ErrScoreAdjustmentFailed, err)
	}
	return nil
}

func (b scoreBook) backward(ctx context.Context, questionID int64) error {
	if _, ok := b.snap.Question(questionID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
	}
	a, found, err := b.tx.Answer(ctx, questionID)
	if err != nil {
		return fmt.Errorf("%w: load answer: %w", ErrScoreAdjustmentFailed, err)
	}
	if !found || !a.Processed {
		return nil
	}

	for i := len(a.Applied) - 1; i >= 0; i-- {
		adj := a.Applied[i]
		if err := b.revert(ctx, adj.DeclarationID, adj.Delta); err != nil {
			return err
		}
	}

	a.Applied = nil
	a.Processed = false
	if err := b.tx.SaveAnswer(ctx, a); err != nil {
		return fmt.Errorf("%w: save answer: %w", ErrScoreAdjustmentFailed, err)
	}
	return nil
}

// ─── READ-OUT ────────────────────────────────────────────────────────────────

// IsPageVisible evaluates the page's requirement and include/exclude gates.
func (e *Engine) IsPageVisible(ctx context.Context, inquiryID, pageID int64) (bool, error) {
	var visible bool
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		p, ok := b.snap.Page(pageID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPage, pageID)
		}
		var err error
		visible, err = b.pageVisible(ctx, p)
		return err
	})
	return visible, err
}

// NextPage returns the first visible page positioned after the given
// position, or nil at the end of the questionnaire.
func (e *Engine) NextPage(ctx context.Context, inquiryID int64, after int) (*Page, error) {
	var page *Page
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		var err error
		page, err = b.nextVisible(ctx, after)
		return err
	})
	return page, err
}

// PreviousPage returns the last visible page positioned before the given
// position, or nil at the start.
func (e *Engine) PreviousPage(ctx context.Context, inquiryID int64, before int) (*Page, error) {
	var page *Page
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		var err error
		page, err = b.previousVisible(ctx, before)
		return err
	})
	return page, err
}

// TechnologyScore computes the verdict of one technology from current scores.
func (e *Engine) TechnologyScore(ctx context.Context, inquiryID, technologyID int64) (Verdict, error) {
	var v Verdict
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		t, ok := b.snap.Technology(technologyID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTechnology, technologyID)
		}
		var err error
		v, err = b.verdict(ctx, t)
		return err
	})
	return v, err
}

// TechnologyResult is the verdict of one technology with its rendered notes.
type TechnologyResult struct {
	TechnologyID int64    `json:"technology_id"`
	Name         string   `json:"name"`
	Verdict      Verdict  `json:"verdict"`
	Notes        []string `json:"notes"`
}

// TechnologyResult scores one technology and renders its applicable notes.
func (e *Engine) TechnologyResult(ctx context.Context, inquiryID, technologyID int64) (TechnologyResult, error) {
	var res TechnologyResult
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		t, ok := b.snap.Technology(technologyID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownTechnology, technologyID)
		}
		var err error
		res, err = b.result(ctx, t)
		return err
	})
	return res, err
}

// TechnologyResults scores every technology, ordered by id.
func (e *Engine) TechnologyResults(ctx context.Context, inquiryID int64) ([]TechnologyResult, error) {
	var out []TechnologyResult
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		for _, t := range b.snap.Technologies() {
			res, err := b.result(ctx, t)
			if err != nil {
				return err
			}
			out = append(out, res)
		}
		return nil
	})
	return out, err
}

func (b scoreBook) result(ctx context.Context, t *Technology) (TechnologyResult, error) {
	v, err := b.verdict(ctx, t)
	if err != nil {
		return TechnologyResult{}, err
	}
	notes, err := b.notes(ctx, t)
	if err != nil {
		return TechnologyResult{}, err
	}
	if notes == nil {
		notes = []string{}
	}
	return TechnologyResult{TechnologyID: t.ID, Name: t.Name, Verdict: v, Notes: notes}, nil
}

// ScoreEntry is the current value of one declaration for an inquiry.
type ScoreEntry struct {
	DeclarationID int64  `json:"declaration_id"`
	Name          string `json:"name"`
	Value         Value  `json:"value"`
}

// Score returns the current value of one declaration, initialised lazily.
func (e *Engine) Score(ctx context.Context, inquiryID, declarationID int64) (Value, error) {
	var v Value
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		var err error
		v, err = b.getOrInit(ctx, declarationID)
		return err
	})
	return v, err
}

// Scores returns every declaration's current value, ordered by id.
func (e *Engine) Scores(ctx context.Context, inquiryID int64) ([]ScoreEntry, error) {
	var out []ScoreEntry
	err := e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		for _, d := range b.snap.Declarations() {
			v, err := b.getOrInit(ctx, d.ID)
			if err != nil {
				return err
			}
			out = append(out, ScoreEntry{DeclarationID: d.ID, Name: d.Name, Value: v})
		}
		return nil
	})
	return out, err
}

// ReadableAnswer returns the human readable answer and the context code of
// the resolved option. found is false when the question was never answered.
func (e *Engine) ReadableAnswer(ctx context.Context, inquiryID, questionID int64) (text, contextCode string, found bool, err error) {
	err = e.run(ctx, inquiryID, func(ctx context.Context, b scoreBook) error {
		q, ok := b.snap.Question(questionID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownQuestion, questionID)
		}
		a, ok, err := b.tx.Answer(ctx, questionID)
		if err != nil {
			return fmt.Errorf("scoring: load answer: %w", err)
		}
		if !ok {
			return nil
		}
		found = true
		text = ReadableAnswer(q, a)
		contextCode = b.snap.ContextCode(a)
		return nil
	})
	return text, contextCode, found, err
}
