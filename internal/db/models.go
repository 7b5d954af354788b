package db

import (
	"database/sql"

	"github.com/sqlc-dev/pqtype"
)

// Numeric columns holding scores and thresholds are stored in hundredths.

type ScoringDeclaration struct {
	ID         int64
	Name       string
	StartValue int64
}

type Question struct {
	ID           int64
	Name         string
	QuestionType string
	Options      pqtype.NullRawMessage
}

type AnswerOption struct {
	ID          int64
	QuestionID  int64
	Label       string
	Value       int64
	ContextCode sql.NullString
}

type AnswerScoring struct {
	ID                  int64
	AnswerOptionID      int64
	DeclarationID       int64
	Delta               int64
	UseRawAnswerAsDelta bool
}

type AnswerScoringNote struct {
	ID           int64
	ScoringID    int64
	TechnologyID int64
	Text         string
}

// Condition modes of answer_scoring_note_options and page_conditions.
const (
	ModeInclude = "include"
	ModeExclude = "exclude"
)

type AnswerScoringNoteOption struct {
	NoteID         int64
	AnswerOptionID int64
	Mode           string
}

type Page struct {
	ID       int64
	Name     string
	Position int32
}

type PageQuestion struct {
	PageID     int64
	QuestionID int64
	Position   int32
}

type PageCondition struct {
	PageID     int64
	QuestionID int64
	Mode       string
}

type PageRequirement struct {
	PageID        int64
	DeclarationID int64
	Threshold     int64
	Comparison    string
}

type Technology struct {
	ID   int64
	Name string
	Kind string
}

type TechScoreLink struct {
	TechnologyID     int64
	DeclarationID    int64
	ApproveThreshold int64
	DenyThreshold    int64
}

type TechGroupMember struct {
	GroupID  int64
	MemberID int64
	Position int32
}

type Score struct {
	InquiryID     int64
	DeclarationID int64
	Value         int64
}

type InquiryQuestionAnswer struct {
	InquiryID        int64
	QuestionID       int64
	RawAnswer        string
	Processed        bool
	ResolvedOptionID sql.NullInt64
	Applied          pqtype.NullRawMessage
}
