package scoring

import (
	"context"
	"fmt"
)

// ─── SCORE BOOK ──────────────────────────────────────────────────────────────

// scoreBook reads and adjusts the Scores of one inquiry inside a unit of work.
type scoreBook struct {
	snap *Snapshot
	tx   StateTx
}

// getOrInit returns the stored score, or the declaration's start value when
// none is stored. It never writes; apply persists the initial value.
func (b scoreBook) getOrInit(ctx context.Context, declarationID int64) (Value, error) {
	decl, ok := b.snap.Declaration(declarationID)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownDeclaration, declarationID)
	}
	v, found, err := b.tx.Score(ctx, declarationID)
	if err != nil {
		return 0, fmt.Errorf("scoring: load score %q: %w", decl.Name, err)
	}
	if !found {
		return decl.StartValue, nil
	}
	return v, nil
}

// apply adds delta to the current score and persists the result.
func (b scoreBook) apply(ctx context.Context, declarationID int64, delta Value) error {
	current, err := b.getOrInit(ctx, declarationID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrScoreAdjustmentFailed, err)
	}
	next, ok := current.add(delta)
	if !ok {
		return fmt.Errorf("%w: declaration %d: %s + %s overflows", ErrScoreAdjustmentFailed, declarationID, current, delta)
	}
	if err := b.tx.SaveScore(ctx, declarationID, next); err != nil {
		return fmt.Errorf("%w: save score %d: %w", ErrScoreAdjustmentFailed, declarationID, err)
	}
	return nil
}

func (b scoreBook) revert(ctx context.Context, declarationID int64, delta Value) error {
	return b.apply(ctx, declarationID, -delta)
}

// ruleDelta is the amount one scoring rule contributes for a raw answer.
func ruleDelta(rule AnswerScoring, raw string) (Value, error) {
	if !rule.UseRawAnswer {
		return rule.Delta, nil
	}
	n, err := ParseValue(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: scoring %d uses the raw answer %q as delta: %w", ErrScoreAdjustmentFailed, rule.ID, raw, err)
	}
	delta, ok := rule.Delta.add(n)
	if !ok {
		return 0, fmt.Errorf("%w: scoring %d: raw answer %q overflows the delta", ErrScoreAdjustmentFailed, rule.ID, raw)
	}
	return delta, nil
}
