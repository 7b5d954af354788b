package db

import (
	"context"
)

// ─── ANSWERS ─────────────────────────────────────────────────────────────────

const getAnswer = `-- name: GetAnswer :one
SELECT inquiry_id, question_id, raw_answer, processed, resolved_option_id, applied
FROM inquiry_question_answers
WHERE inquiry_id = $1 AND question_id = $2
`

type GetAnswerParams struct {
	InquiryID  int64
	QuestionID int64
}

func (q *Queries) GetAnswer(ctx context.Context, arg GetAnswerParams) (InquiryQuestionAnswer, error) {
	row := q.queryRow(ctx, getAnswer, arg.InquiryID, arg.QuestionID)
	var i InquiryQuestionAnswer
	err := row.Scan(
		&i.InquiryID,
		&i.QuestionID,
		&i.RawAnswer,
		&i.Processed,
		&i.ResolvedOptionID,
		&i.Applied,
	)
	return i, err
}

const listAnswersByInquiry = `-- name: ListAnswersByInquiry :many
SELECT inquiry_id, question_id, raw_answer, processed, resolved_option_id, applied
FROM inquiry_question_answers
WHERE inquiry_id = $1
ORDER BY question_id
`

func (q *Queries) ListAnswersByInquiry(ctx context.Context, inquiryID int64) ([]InquiryQuestionAnswer, error) {
	rows, err := q.query(ctx, listAnswersByInquiry, inquiryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InquiryQuestionAnswer
	for rows.Next() {
		var i InquiryQuestionAnswer
		if err := rows.Scan(
			&i.InquiryID,
			&i.QuestionID,
			&i.RawAnswer,
			&i.Processed,
			&i.ResolvedOptionID,
			&i.Applied,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertAnswer = `-- name: UpsertAnswer :exec
INSERT INTO inquiry_question_answers
    (inquiry_id, question_id, raw_answer, processed, resolved_option_id, applied)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (inquiry_id, question_id) DO UPDATE SET
    raw_answer         = excluded.raw_answer,
    processed          = excluded.processed,
    resolved_option_id = excluded.resolved_option_id,
    applied            = excluded.applied
`

func (q *Queries) UpsertAnswer(ctx context.Context, arg InquiryQuestionAnswer) error {
	_, err := q.exec(ctx, upsertAnswer,
		arg.InquiryID,
		arg.QuestionID,
		arg.RawAnswer,
		arg.Processed,
		arg.ResolvedOptionID,
		arg.Applied,
	)
	return err
}

const deleteAnswer = `-- name: DeleteAnswer :exec
DELETE FROM inquiry_question_answers WHERE inquiry_id = $1 AND question_id = $2
`

type DeleteAnswerParams struct {
	InquiryID  int64
	QuestionID int64
}

func (q *Queries) DeleteAnswer(ctx context.Context, arg DeleteAnswerParams) error {
	_, err := q.exec(ctx, deleteAnswer, arg.InquiryID, arg.QuestionID)
	return err
}

const resetAnswersByInquiry = `-- name: ResetAnswersByInquiry :exec
UPDATE inquiry_question_answers
SET processed = FALSE, applied = NULL
WHERE inquiry_id = $1
`

// ResetAnswersByInquiry marks every answer of the inquiry unprocessed. Raw
// answers and resolved options are kept.
func (q *Queries) ResetAnswersByInquiry(ctx context.Context, inquiryID int64) error {
	_, err := q.exec(ctx, resetAnswersByInquiry, inquiryID)
	return err
}

// ─── SCORES ──────────────────────────────────────────────────────────────────

const getScore = `-- name: GetScore :one
SELECT inquiry_id, declaration_id, value FROM scores
WHERE inquiry_id = $1 AND declaration_id = $2
`

type GetScoreParams struct {
	InquiryID     int64
	DeclarationID int64
}

func (q *Queries) GetScore(ctx context.Context, arg GetScoreParams) (Score, error) {
	row := q.queryRow(ctx, getScore, arg.InquiryID, arg.DeclarationID)
	var i Score
	err := row.Scan(&i.InquiryID, &i.DeclarationID, &i.Value)
	return i, err
}

const upsertScore = `-- name: UpsertScore :exec
INSERT INTO scores (inquiry_id, declaration_id, value) VALUES ($1, $2, $3)
ON CONFLICT (inquiry_id, declaration_id) DO UPDATE SET value = excluded.value
`

func (q *Queries) UpsertScore(ctx context.Context, arg Score) error {
	_, err := q.exec(ctx, upsertScore, arg.InquiryID, arg.DeclarationID, arg.Value)
	return err
}

const deleteScoresByInquiry = `-- name: DeleteScoresByInquiry :exec
DELETE FROM scores WHERE inquiry_id = $1
`

func (q *Queries) DeleteScoresByInquiry(ctx context.Context, inquiryID int64) error {
	_, err := q.exec(ctx, deleteScoresByInquiry, inquiryID)
	return err
}
