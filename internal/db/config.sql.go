package db

import (
	"context"
)

// ─── DELETE ──────────────────────────────────────────────────────────────────

// Child tables first so the statement order is valid with or without
// enforced foreign keys.
var deleteConfiguration = []string{
	`DELETE FROM answer_scoring_note_options`,
	`DELETE FROM answer_scoring_notes`,
	`DELETE FROM answer_scorings`,
	`DELETE FROM page_requirements`,
	`DELETE FROM page_conditions`,
	`DELETE FROM page_questions`,
	`DELETE FROM pages`,
	`DELETE FROM answer_options`,
	`DELETE FROM questions`,
	`DELETE FROM tech_group_members`,
	`DELETE FROM tech_score_links`,
	`DELETE FROM technologies`,
	`DELETE FROM scoring_declarations`,
}

func (q *Queries) DeleteConfiguration(ctx context.Context) error {
	for _, stmt := range deleteConfiguration {
		if _, err := q.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ─── INSERT ──────────────────────────────────────────────────────────────────

const insertScoringDeclaration = `-- name: InsertScoringDeclaration :exec
INSERT INTO scoring_declarations (id, name, start_value) VALUES ($1, $2, $3)
`

func (q *Queries) InsertScoringDeclaration(ctx context.Context, arg ScoringDeclaration) error {
	_, err := q.exec(ctx, insertScoringDeclaration, arg.ID, arg.Name, arg.StartValue)
	return err
}

const insertQuestion = `-- name: InsertQuestion :exec
INSERT INTO questions (id, name, question_type, options) VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertQuestion(ctx context.Context, arg Question) error {
	_, err := q.exec(ctx, insertQuestion, arg.ID, arg.Name, arg.QuestionType, arg.Options)
	return err
}

const insertAnswerOption = `-- name: InsertAnswerOption :exec
INSERT INTO answer_options (id, question_id, label, value, context_code) VALUES ($1, $2, $3, $4, $5)
`

func (q *Queries) InsertAnswerOption(ctx context.Context, arg AnswerOption) error {
	_, err := q.exec(ctx, insertAnswerOption, arg.ID, arg.QuestionID, arg.Label, arg.Value, arg.ContextCode)
	return err
}

const insertAnswerScoring = `-- name: InsertAnswerScoring :exec
INSERT INTO answer_scorings (id, answer_option_id, declaration_id, delta, use_raw_answer_as_delta)
VALUES ($1, $2, $3, $4, $5)
`

func (q *Queries) InsertAnswerScoring(ctx context.Context, arg AnswerScoring) error {
	_, err := q.exec(ctx, insertAnswerScoring,
		arg.ID, arg.AnswerOptionID, arg.DeclarationID, arg.Delta, arg.UseRawAnswerAsDelta)
	return err
}

const insertAnswerScoringNote = `-- name: InsertAnswerScoringNote :exec
INSERT INTO answer_scoring_notes (id, scoring_id, technology_id, text) VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertAnswerScoringNote(ctx context.Context, arg AnswerScoringNote) error {
	_, err := q.exec(ctx, insertAnswerScoringNote, arg.ID, arg.ScoringID, arg.TechnologyID, arg.Text)
	return err
}

const insertAnswerScoringNoteOption = `-- name: InsertAnswerScoringNoteOption :exec
INSERT INTO answer_scoring_note_options (note_id, answer_option_id, mode) VALUES ($1, $2, $3)
`

func (q *Queries) InsertAnswerScoringNoteOption(ctx context.Context, arg AnswerScoringNoteOption) error {
	_, err := q.exec(ctx, insertAnswerScoringNoteOption, arg.NoteID, arg.AnswerOptionID, arg.Mode)
	return err
}

const insertPage = `-- name: InsertPage :exec
INSERT INTO pages (id, name, position) VALUES ($1, $2, $3)
`

func (q *Queries) InsertPage(ctx context.Context, arg Page) error {
	_, err := q.exec(ctx, insertPage, arg.ID, arg.Name, arg.Position)
	return err
}

const insertPageQuestion = `-- name: InsertPageQuestion :exec
INSERT INTO page_questions (page_id, question_id, position) VALUES ($1, $2, $3)
`

func (q *Queries) InsertPageQuestion(ctx context.Context, arg PageQuestion) error {
	_, err := q.exec(ctx, insertPageQuestion, arg.PageID, arg.QuestionID, arg.Position)
	return err
}

const insertPageCondition = `-- name: InsertPageCondition :exec
INSERT INTO page_conditions (page_id, question_id, mode) VALUES ($1, $2, $3)
`

func (q *Queries) InsertPageCondition(ctx context.Context, arg PageCondition) error {
	_, err := q.exec(ctx, insertPageCondition, arg.PageID, arg.QuestionID, arg.Mode)
	return err
}

const insertPageRequirement = `-- name: InsertPageRequirement :exec
INSERT INTO page_requirements (page_id, declaration_id, threshold, comparison) VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertPageRequirement(ctx context.Context, arg PageRequirement) error {
	_, err := q.exec(ctx, insertPageRequirement, arg.PageID, arg.DeclarationID, arg.Threshold, arg.Comparison)
	return err
}

const insertTechnology = `-- name: InsertTechnology :exec
INSERT INTO technologies (id, name, kind) VALUES ($1, $2, $3)
`

func (q *Queries) InsertTechnology(ctx context.Context, arg Technology) error {
	_, err := q.exec(ctx, insertTechnology, arg.ID, arg.Name, arg.Kind)
	return err
}

const insertTechScoreLink = `-- name: InsertTechScoreLink :exec
INSERT INTO tech_score_links (technology_id, declaration_id, approve_threshold, deny_threshold)
VALUES ($1, $2, $3, $4)
`

func (q *Queries) InsertTechScoreLink(ctx context.Context, arg TechScoreLink) error {
	_, err := q.exec(ctx, insertTechScoreLink,
		arg.TechnologyID, arg.DeclarationID, arg.ApproveThreshold, arg.DenyThreshold)
	return err
}

const insertTechGroupMember = `-- name: InsertTechGroupMember :exec
INSERT INTO tech_group_members (group_id, member_id, position) VALUES ($1, $2, $3)
`

func (q *Queries) InsertTechGroupMember(ctx context.Context, arg TechGroupMember) error {
	_, err := q.exec(ctx, insertTechGroupMember, arg.GroupID, arg.MemberID, arg.Position)
	return err
}

// ─── LIST ────────────────────────────────────────────────────────────────────

const listScoringDeclarations = `-- name: ListScoringDeclarations :many
SELECT id, name, start_value FROM scoring_declarations ORDER BY id
`

func (q *Queries) ListScoringDeclarations(ctx context.Context) ([]ScoringDeclaration, error) {
	rows, err := q.query(ctx, listScoringDeclarations)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScoringDeclaration
	for rows.Next() {
		var i ScoringDeclaration
		if err := rows.Scan(&i.ID, &i.Name, &i.StartValue); err != nil {
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

const listQuestions = `-- name: ListQuestions :many
SELECT id, name, question_type, options FROM questions ORDER BY id
`

func (q *Queries) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := q.query(ctx, listQuestions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Question
	for rows.Next() {
		var i Question
		if err := rows.Scan(&i.ID, &i.Name, &i.QuestionType, &i.Options); err != nil {
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

const listAnswerOptions = `-- name: ListAnswerOptions :many
SELECT id, question_id, label, value, context_code FROM answer_options ORDER BY question_id, value, id
`

func (q *Queries) ListAnswerOptions(ctx context.Context) ([]AnswerOption, error) {
	rows, err := q.query(ctx, listAnswerOptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AnswerOption
	for rows.Next() {
		var i AnswerOption
		if err := rows.Scan(&i.ID, &i.QuestionID, &i.Label, &i.Value, &i.ContextCode); err != nil {
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

const listAnswerScorings = `-- name: ListAnswerScorings :many
SELECT id, answer_option_id, declaration_id, delta, use_raw_answer_as_delta FROM answer_scorings ORDER BY id
`

func (q *Queries) ListAnswerScorings(ctx context.Context) ([]AnswerScoring, error) {
	rows, err := q.query(ctx, listAnswerScorings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AnswerScoring
	for rows.Next() {
		var i AnswerScoring
		if err := rows.Scan(&i.ID, &i.AnswerOptionID, &i.DeclarationID, &i.Delta, &i.UseRawAnswerAsDelta); err != nil {
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

const listAnswerScoringNotes = `-- name: ListAnswerScoringNotes :many
SELECT id, scoring_id, technology_id, text FROM answer_scoring_notes ORDER BY id
`

func (q *Queries) ListAnswerScoringNotes(ctx context.Context) ([]AnswerScoringNote, error) {
	rows, err := q.query(ctx, listAnswerScoringNotes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AnswerScoringNote
	for rows.Next() {
		var i AnswerScoringNote
		if err := rows.Scan(&i.ID, &i.ScoringID, &i.TechnologyID, &i.Text); err != nil {
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

const listAnswerScoringNoteOptions = `-- name: ListAnswerScoringNoteOptions :many
SELECT note_id, answer_option_id, mode FROM answer_scoring_note_options ORDER BY note_id, answer_option_id
`

func (q *Queries) ListAnswerScoringNoteOptions(ctx context.Context) ([]AnswerScoringNoteOption, error) {
	rows, err := q.query(ctx, listAnswerScoringNoteOptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AnswerScoringNoteOption
	for rows.Next() {
		var i AnswerScoringNoteOption
		if err := rows.Scan(&i.NoteID, &i.AnswerOptionID, &i.Mode); err != nil {
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

const listPages = `-- name: ListPages :many
SELECT id, name, position FROM pages ORDER BY position
`

func (q *Queries) ListPages(ctx context.Context) ([]Page, error) {
	rows, err := q.query(ctx, listPages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Page
	for rows.Next() {
		var i Page
		if err := rows.Scan(&i.ID, &i.Name, &i.Position); err != nil {
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

const listPageQuestions = `-- name: ListPageQuestions :many
SELECT page_id, question_id, position FROM page_questions ORDER BY page_id, position, question_id
`

func (q *Queries) ListPageQuestions(ctx context.Context) ([]PageQuestion, error) {
	rows, err := q.query(ctx, listPageQuestions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PageQuestion
	for rows.Next() {
		var i PageQuestion
		if err := rows.Scan(&i.PageID, &i.QuestionID, &i.Position); err != nil {
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

const listPageConditions = `-- name: ListPageConditions :many
SELECT page_id, question_id, mode FROM page_conditions ORDER BY page_id, question_id
`

func (q *Queries) ListPageConditions(ctx context.Context) ([]PageCondition, error) {
	rows, err := q.query(ctx, listPageConditions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PageCondition
	for rows.Next() {
		var i PageCondition
		if err := rows.Scan(&i.PageID, &i.QuestionID, &i.Mode); err != nil {
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

const listPageRequirements = `-- name: ListPageRequirements :many
SELECT page_id, declaration_id, threshold, comparison FROM page_requirements ORDER BY page_id
`

func (q *Queries) ListPageRequirements(ctx context.Context) ([]PageRequirement, error) {
	rows, err := q.query(ctx, listPageRequirements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PageRequirement
	for rows.Next() {
		var i PageRequirement
		if err := rows.Scan(&i.PageID, &i.DeclarationID, &i.Threshold, &i.Comparison); err != nil {
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

const listTechnologies = `-- name: ListTechnologies :many
SELECT id, name, kind FROM technologies ORDER BY id
`

func (q *Queries) ListTechnologies(ctx context.Context) ([]Technology, error) {
	rows, err := q.query(ctx, listTechnologies)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Technology
	for rows.Next() {
		var i Technology
		if err := rows.Scan(&i.ID, &i.Name, &i.Kind); err != nil {
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

const listTechScoreLinks = `-- name: ListTechScoreLinks :many
SELECT technology_id, declaration_id, approve_threshold, deny_threshold FROM tech_score_links
ORDER BY technology_id, declaration_id
`

func (q *Queries) ListTechScoreLinks(ctx context.Context) ([]TechScoreLink, error) {
	rows, err := q.query(ctx, listTechScoreLinks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TechScoreLink
	for rows.Next() {
		var i TechScoreLink
		if err := rows.Scan(&i.TechnologyID, &i.DeclarationID, &i.ApproveThreshold, &i.DenyThreshold); err != nil {
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

const listTechGroupMembers = `-- name: ListTechGroupMembers :many
SELECT group_id, member_id, position FROM tech_group_members ORDER BY group_id, position, member_id
`

func (q *Queries) ListTechGroupMembers(ctx context.Context) ([]TechGroupMember, error) {
	rows, err := q.query(ctx, listTechGroupMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TechGroupMember
	for rows.Next() {
		var i TechGroupMember
		if err := rows.Scan(&i.GroupID, &i.MemberID, &i.Position); err != nil {
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
