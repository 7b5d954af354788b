package scoring_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var val = scoring.MustParseValue

// Declaration ids.
const (
	declTech1 int64 = 1 // start 0.5
	declTech2 int64 = 2 // start 4
	declArb   int64 = 3 // start 0.5
)

// Question ids.
const (
	qInt    int64 = 1
	qChoice int64 = 2
	qDouble int64 = 3
	qOpen   int64 = 4
	qYesNo  int64 = 5
	qMulti  int64 = 6
	qRaw    int64 = 7
)

// Technology ids.
const (
	tech1     int64 = 1
	tech2     int64 = 2
	tech3     int64 = 3
	techGroup int64 = 4
)

// Page ids.
const (
	pageIntro     int64 = 1
	pageChoice    int64 = 2
	pageMixed     int64 = 3
	pageEnd       int64 = 4
	pageInclusive int64 = 10
	pageExclusive int64 = 11
	pageGated     int64 = 12
)

// fixtureData is a small questionnaire covering every question type.
//
// Answering qInt with anything >= 400 resolves to option 11, which adds
// +1 to tech_1_score, +2 to tech_2_score and +3 to Arb_score.
func fixtureData() scoring.SnapshotData {
	return scoring.SnapshotData{
		Declarations: []scoring.Declaration{
			{ID: declTech1, Name: "tech_1_score", StartValue: val("0.5")},
			{ID: declTech2, Name: "tech_2_score", StartValue: val("4")},
			{ID: declArb, Name: "Arb_score", StartValue: val("0.5")},
		},
		Questions: []scoring.Question{
			{
				ID: qInt, Name: "int_q", Type: scoring.QuestionInt,
				Options: []scoring.AnswerOption{
					{ID: 11, Label: "400", Value: 11, ContextCode: "INT_400", Scorings: []scoring.AnswerScoring{
						{ID: 101, DeclarationID: declTech1, Delta: val("1"), Notes: []scoring.ScoringNote{
							{ID: 1001, TechnologyID: tech1, Text: "Base note"},
							{ID: 1002, TechnologyID: tech1, Text: "Score is {v_tech_1_score} for {q_int_q}"},
							{ID: 1003, TechnologyID: tech1, Text: "Inclusive", IncludeOn: []int64{21}},
							{ID: 1004, TechnologyID: tech1, Text: "Inclusive plural", IncludeOn: []int64{21, 31}},
							{ID: 1005, TechnologyID: tech1, Text: "Exclusive", ExcludeOn: []int64{22, 26}},
							{ID: 1006, TechnologyID: tech2, Text: "Other technology"},
						}},
						{ID: 102, DeclarationID: declTech2, Delta: val("2")},
						{ID: 103, DeclarationID: declArb, Delta: val("3")},
					}},
					{ID: 12, Label: "5", Value: 12},
					{ID: 13, Label: "50", Value: 13},
					{ID: 14, Label: "10", Value: 14},
					{ID: 15, Label: "2000", Value: 15},
					{ID: 16, Label: "150", Value: 16},
				},
			},
			{
				ID: qChoice, Name: "choice_q", Type: scoring.QuestionChoice,
				Options: []scoring.AnswerOption{
					{ID: 21, Label: "A", Value: 21, ContextCode: "CH_A"},
					{ID: 22, Label: "B", Value: 22},
					{ID: 26, Label: "C", Value: 26},
					{ID: 999, Label: "None of the above", Value: 999},
				},
			},
			{
				ID: qDouble, Name: "double_q", Type: scoring.QuestionDouble,
				Options: []scoring.AnswerOption{
					{ID: 31, Label: "0", Value: 31},
					{ID: 32, Label: "0.25", Value: 32},
					{ID: 33, Label: "0.5", Value: 33},
					{ID: 34, Label: "0.75", Value: 34},
					{ID: 35, Label: "1", Value: 35},
				},
			},
			{
				ID: qOpen, Name: "open_q", Type: scoring.QuestionOpen,
				Options: []scoring.AnswerOption{{ID: 41, Label: scoring.LabelNotNone, Value: 41}},
			},
			{
				ID: qYesNo, Name: "yesno_q", Type: scoring.QuestionYesNo,
				Options: []scoring.AnswerOption{
					{ID: 51, Label: scoring.LabelTrue, Value: 1},
					{ID: 52, Label: scoring.LabelFalse, Value: 0},
				},
			},
			{
				ID: qMulti, Name: "multi_q", Type: scoring.QuestionBestOfMulti,
				Config: scoring.QuestionOptions{Priority: []int64{3, 1}},
				Options: []scoring.AnswerOption{
					{ID: 63, Label: "three", Value: 3},
					{ID: 61, Label: "one", Value: 1},
					{ID: 62, Label: "two", Value: 2},
				},
			},
			{
				ID: qRaw, Name: "raw_q", Type: scoring.QuestionInt,
				Options: []scoring.AnswerOption{
					{ID: 71, Label: "0", Value: 71, Scorings: []scoring.AnswerScoring{
						{ID: 701, DeclarationID: declArb, Delta: val("1"), UseRawAnswer: true},
					}},
				},
			},
		},
		Pages: []scoring.Page{
			{ID: pageIntro, Name: "intro", Position: 1, Questions: []int64{qInt}},
			{ID: pageChoice, Name: "choice", Position: 3, Questions: []int64{qChoice}},
			{ID: pageMixed, Name: "mixed", Position: 5, Questions: []int64{qDouble, qOpen}},
			{ID: pageEnd, Name: "end", Position: 99},
			{ID: pageInclusive, Name: "inclusive", Position: 10, IncludeOn: []int64{qInt}},
			{ID: pageExclusive, Name: "exclusive", Position: 11, ExcludeOn: []int64{qChoice}},
			{ID: pageGated, Name: "gated", Position: 12, Requirement: &scoring.PageRequirement{
				DeclarationID: declArb, Threshold: val("3"), Comparison: scoring.CompareGTE,
			}},
		},
		Technologies: []scoring.Technology{
			{ID: tech1, Name: "Tech_1", Kind: scoring.TechPlain, Links: []scoring.TechScoreLink{
				{DeclarationID: declTech1, Approve: scoring.DefaultApproveThreshold, Deny: scoring.DefaultDenyThreshold},
			}},
			{ID: tech2, Name: "Tech_2", Kind: scoring.TechPlain, Links: []scoring.TechScoreLink{
				{DeclarationID: declTech2, Approve: val("25"), Deny: val("5")},
			}},
			{ID: tech3, Name: "Tech_3", Kind: scoring.TechPlain, Links: []scoring.TechScoreLink{
				{DeclarationID: declTech2, Approve: scoring.DefaultApproveThreshold, Deny: scoring.DefaultDenyThreshold},
			}},
			{ID: techGroup, Name: "Group", Kind: scoring.TechGroup, Subs: []int64{tech1, tech2, tech3}},
		},
	}
}

func newFixtureSnapshot(t *testing.T) *scoring.Snapshot {
	t.Helper()
	snap, err := scoring.NewSnapshot(fixtureData())
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func newFixtureEngine(t *testing.T) *scoring.Engine {
	t.Helper()
	return scoring.NewEngine(newFixtureSnapshot(t), scoring.NewMemoryState(), nil, discardLogger())
}

func question(t *testing.T, snap *scoring.Snapshot, id int64) *scoring.Question {
	t.Helper()
	q, ok := snap.Question(id)
	if !ok {
		t.Fatalf("question %d not in snapshot", id)
	}
	return q
}
