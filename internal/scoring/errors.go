package scoring

import "errors"

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrUnknownAnswerOption is returned when a CHOICE or BEST_OF_MULTI raw
	// answer names a value the question has no option for.
	ErrUnknownAnswerOption = errors.New("scoring: unknown answer option")

	// ErrStaleProcessedAnswer is returned by RecordAnswer when the stored
	// answer is still processed. Retreat first, then record again.
	ErrStaleProcessedAnswer = errors.New("scoring: answer is still processed, retreat before recording")

	// ErrScoreAdjustmentFailed wraps every failure while applying or reverting
	// score adjustments: store errors, unknown declarations and non-numeric
	// raw answers used as deltas.
	ErrScoreAdjustmentFailed = errors.New("scoring: score adjustment failed")

	// ErrInvalidAnswer is returned when a raw answer violates the question's
	// minimum, maximum or regex options.
	ErrInvalidAnswer = errors.New("scoring: invalid answer")

	ErrUnknownQuestion    = errors.New("scoring: unknown question")
	ErrUnknownPage        = errors.New("scoring: unknown page")
	ErrUnknownTechnology  = errors.New("scoring: unknown technology")
	ErrUnknownDeclaration = errors.New("scoring: unknown declaration")

	// ErrInvalidSnapshot is returned by NewSnapshot for inconsistent
	// configuration (dangling references, duplicate ids, group cycles).
	ErrInvalidSnapshot = errors.New("scoring: invalid snapshot")
)
