package scoring

import "context"

// ─── STATE REPOSITORY ────────────────────────────────────────────────────────

// StateRepository persists the per-inquiry Scores and Answers.
//
// Atomically runs fn as one unit of work scoped to a single inquiry: either
// every write fn made through tx is kept, or (when fn returns an error) none
// is. Implementations: MemoryState for tests and tools, store.Store for SQL.
type StateRepository interface {
	Atomically(ctx context.Context, inquiryID int64, fn func(ctx context.Context, tx StateTx) error) error
}

// StateTx is the view of one inquiry's state inside a unit of work.
type StateTx interface {
	// Answer returns the stored answer to questionID; found is false when
	// the inquiry never answered it.
	Answer(ctx context.Context, questionID int64) (a Answer, found bool, err error)
	Answers(ctx context.Context) ([]Answer, error)
	SaveAnswer(ctx context.Context, a Answer) error
	DeleteAnswer(ctx context.Context, questionID int64) error

	// Score returns the persisted value of a declaration; found is false when
	// no Score row exists yet.
	Score(ctx context.Context, declarationID int64) (v Value, found bool, err error)
	SaveScore(ctx context.Context, declarationID int64, v Value) error
	DeleteScores(ctx context.Context) error

	// ResetAnswers marks every answer unprocessed and clears its applied
	// adjustments. Raw answers and resolved options are kept.
	ResetAnswers(ctx context.Context) error
}

// Serializer runs fn so that no two calls for the same inquiry overlap.
// KeyedLocks is the in-process implementation; worker.Runner routes every
// inquiry to a single owning goroutine.
type Serializer interface {
	Do(ctx context.Context, inquiryID int64, fn func(ctx context.Context) error) error
}
