package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sqlc-dev/pqtype"

	"github.com/shakespeare-advisor/advisor-engine/internal/db"
	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

var _ scoring.StateRepository = (*Store)(nil)

// Atomically runs fn in one database transaction. Every write fn makes
// through tx is committed together, or rolled back when fn fails.
func (s *Store) Atomically(ctx context.Context, inquiryID int64, fn func(ctx context.Context, tx scoring.StateTx) error) error {
	return s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		return fn(ctx, &stateTx{q: q, inquiryID: inquiryID})
	})
}

// stateTx adapts a transactional Querier to scoring.StateTx for one inquiry.
type stateTx struct {
	q         db.Querier
	inquiryID int64
}

// ─── ANSWERS ─────────────────────────────────────────────────────────────────

func (t *stateTx) Answer(ctx context.Context, questionID int64) (scoring.Answer, bool, error) {
	row, err := t.q.GetAnswer(ctx, db.GetAnswerParams{InquiryID: t.inquiryID, QuestionID: questionID})
	if errors.Is(err, sql.ErrNoRows) {
		return scoring.Answer{}, false, nil
	}
	if err != nil {
		return scoring.Answer{}, false, fmt.Errorf("store: get answer: %w", err)
	}
	a, err := answerFromRow(row)
	if err != nil {
		return scoring.Answer{}, false, err
	}
	return a, true, nil
}

func (t *stateTx) Answers(ctx context.Context) ([]scoring.Answer, error) {
	rows, err := t.q.ListAnswersByInquiry(ctx, t.inquiryID)
	if err != nil {
		return nil, fmt.Errorf("store: list answers: %w", err)
	}
	out := make([]scoring.Answer, 0, len(rows))
	for _, row := range rows {
		a, err := answerFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (t *stateTx) SaveAnswer(ctx context.Context, a scoring.Answer) error {
	row, err := answerToRow(t.inquiryID, a)
	if err != nil {
		return err
	}
	if err := t.q.UpsertAnswer(ctx, row); err != nil {
		return fmt.Errorf("store: save answer: %w", err)
	}
	return nil
}

func (t *stateTx) DeleteAnswer(ctx context.Context, questionID int64) error {
	if err := t.q.DeleteAnswer(ctx, db.DeleteAnswerParams{InquiryID: t.inquiryID, QuestionID: questionID}); err != nil {
		return fmt.Errorf("store: delete answer: %w", err)
	}
	return nil
}

func (t *stateTx) ResetAnswers(ctx context.Context) error {
	if err := t.q.ResetAnswersByInquiry(ctx, t.inquiryID); err != nil {
		return fmt.Errorf("store: reset answers: %w", err)
	}
	return nil
}

// ─── SCORES ──────────────────────────────────────────────────────────────────

func (t *stateTx) Score(ctx context.Context, declarationID int64) (scoring.Value, bool, error) {
	row, err := t.q.GetScore(ctx, db.GetScoreParams{InquiryID: t.inquiryID, DeclarationID: declarationID})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: get score: %w", err)
	}
	return scoring.Value(row.Value), true, nil
}

func (t *stateTx) SaveScore(ctx context.Context, declarationID int64, v scoring.Value) error {
	err := t.q.UpsertScore(ctx, db.Score{InquiryID: t.inquiryID, DeclarationID: declarationID, Value: int64(v)})
	if err != nil {
		return fmt.Errorf("store: save score: %w", err)
	}
	return nil
}

func (t *stateTx) DeleteScores(ctx context.Context) error {
	if err := t.q.DeleteScoresByInquiry(ctx, t.inquiryID); err != nil {
		return fmt.Errorf("store: delete scores: %w", err)
	}
	return nil
}

// ─── ROW MAPPING ─────────────────────────────────────────────────────────────

func answerFromRow(row db.InquiryQuestionAnswer) (scoring.Answer, error) {
	a := scoring.Answer{
		InquiryID:  row.InquiryID,
		QuestionID: row.QuestionID,
		RawAnswer:  row.RawAnswer,
		Processed:  row.Processed,
	}
	if row.ResolvedOptionID.Valid {
		id := row.ResolvedOptionID.Int64
		a.ResolvedOptionID = &id
	}
	if row.Applied.Valid && len(row.Applied.RawMessage) > 0 {
		if err := json.Unmarshal(row.Applied.RawMessage, &a.Applied); err != nil {
			return scoring.Answer{}, fmt.Errorf("store: decode applied adjustments of question %d: %w", row.QuestionID, err)
		}
	}
	return a, nil
}

func answerToRow(inquiryID int64, a scoring.Answer) (db.InquiryQuestionAnswer, error) {
	row := db.InquiryQuestionAnswer{
		InquiryID:  inquiryID,
		QuestionID: a.QuestionID,
		RawAnswer:  a.RawAnswer,
		Processed:  a.Processed,
	}
	if a.ResolvedOptionID != nil {
		row.ResolvedOptionID = sql.NullInt64{Int64: *a.ResolvedOptionID, Valid: true}
	}
	if len(a.Applied) > 0 {
		b, err := json.Marshal(a.Applied)
		if err != nil {
			return db.InquiryQuestionAnswer{}, fmt.Errorf("store: encode applied adjustments: %w", err)
		}
		row.Applied = pqtype.NullRawMessage{RawMessage: b, Valid: true}
	}
	return row, nil
}
