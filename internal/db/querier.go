package db

import (
	"context"
)

type Querier interface {
	// configuration
	DeleteConfiguration(ctx context.Context) error
	InsertAnswerOption(ctx context.Context, arg AnswerOption) error
	InsertAnswerScoring(ctx context.Context, arg AnswerScoring) error
	InsertAnswerScoringNote(ctx context.Context, arg AnswerScoringNote) error
	InsertAnswerScoringNoteOption(ctx context.Context, arg AnswerScoringNoteOption) error
	InsertPage(ctx context.Context, arg Page) error
	InsertPageCondition(ctx context.Context, arg PageCondition) error
	InsertPageQuestion(ctx context.Context, arg PageQuestion) error
	InsertPageRequirement(ctx context.Context, arg PageRequirement) error
	InsertQuestion(ctx context.Context, arg Question) error
	InsertScoringDeclaration(ctx context.Context, arg ScoringDeclaration) error
	InsertTechGroupMember(ctx context.Context, arg TechGroupMember) error
	InsertTechScoreLink(ctx context.Context, arg TechScoreLink) error
	InsertTechnology(ctx context.Context, arg Technology) error
	ListAnswerOptions(ctx context.Context) ([]AnswerOption, error)
	ListAnswerScoringNoteOptions(ctx context.Context) ([]AnswerScoringNoteOption, error)
	ListAnswerScoringNotes(ctx context.Context) ([]AnswerScoringNote, error)
	ListAnswerScorings(ctx context.Context) ([]AnswerScoring, error)
	ListPageConditions(ctx context.Context) ([]PageCondition, error)
	ListPageQuestions(ctx context.Context) ([]PageQuestion, error)
	ListPageRequirements(ctx context.Context) ([]PageRequirement, error)
	ListPages(ctx context.Context) ([]Page, error)
	ListQuestions(ctx context.Context) ([]Question, error)
	ListScoringDeclarations(ctx context.Context) ([]ScoringDeclaration, error)
	ListTechGroupMembers(ctx context.Context) ([]TechGroupMember, error)
	ListTechScoreLinks(ctx context.Context) ([]TechScoreLink, error)
	ListTechnologies(ctx context.Context) ([]Technology, error)

	// inquiry state
	DeleteAnswer(ctx context.Context, arg DeleteAnswerParams) error
	DeleteScoresByInquiry(ctx context.Context, inquiryID int64) error
	GetAnswer(ctx context.Context, arg GetAnswerParams) (InquiryQuestionAnswer, error)
	GetScore(ctx context.Context, arg GetScoreParams) (Score, error)
	ListAnswersByInquiry(ctx context.Context, inquiryID int64) ([]InquiryQuestionAnswer, error)
	ResetAnswersByInquiry(ctx context.Context, inquiryID int64) error
	UpsertAnswer(ctx context.Context, arg InquiryQuestionAnswer) error
	UpsertScore(ctx context.Context, arg Score) error
}

var _ Querier = (*Queries)(nil)
