// Package scoring implements the answer-processing engine of the technology
// advisor: resolving raw answers to answer options, applying and reverting
// score adjustments, page visibility, and technology verdicts.
//
// The package never talks to a database directly. Configuration arrives as an
// immutable *Snapshot; per-inquiry state is reached through StateRepository.
package scoring

import "encoding/json"

// ─── QUESTIONS ───────────────────────────────────────────────────────────────

// QuestionType selects the resolution rule for a question's raw answers.
type QuestionType string

const (
	QuestionOpen        QuestionType = "OPEN"
	QuestionInt         QuestionType = "INT"
	QuestionDouble      QuestionType = "DOUBLE"
	QuestionChoice      QuestionType = "CHOICE"
	QuestionYesNo       QuestionType = "YESNO"
	QuestionBestOfMulti QuestionType = "BEST_OF_MULTI"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionOpen, QuestionInt, QuestionDouble, QuestionChoice, QuestionYesNo, QuestionBestOfMulti:
		return true
	}
	return false
}

// Sentinel labels used by OPEN and YESNO questions.
const (
	LabelNotNone = "NotNone"
	LabelTrue    = "True"
	LabelFalse   = "False"
)

// Question is a single question of the questionnaire. Options holds the
// question's own answer options sorted by Value, then ID.
type Question struct {
	ID      int64           `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Type    QuestionType    `json:"type" yaml:"type"`
	Config  QuestionOptions `json:"options" yaml:"options"`
	Options []AnswerOption  `json:"answer_options" yaml:"answer_options"`
}

// AnswerOption is one canonical answer of a question.
type AnswerOption struct {
	ID          int64           `json:"id" yaml:"id"`
	QuestionID  int64           `json:"question_id" yaml:"-"`
	Label       string          `json:"label" yaml:"label"`
	Value       int64           `json:"value" yaml:"value"`
	ContextCode string          `json:"context_code,omitempty" yaml:"context_code,omitempty"`
	Scorings    []AnswerScoring `json:"scorings,omitempty" yaml:"scorings,omitempty"`
}

// ─── SCORING ─────────────────────────────────────────────────────────────────

// DefaultStartValue is the start value of a declaration that omits one.
var DefaultStartValue = NewValue(0, 50)

// Declaration is a named numeric tally tracked per inquiry.
type Declaration struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	StartValue Value  `json:"start_value" yaml:"start_value"`
}

func (d *Declaration) UnmarshalJSON(b []byte) error {
	type plain Declaration
	p := plain{StartValue: DefaultStartValue}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = Declaration(p)
	return nil
}

func (d *Declaration) UnmarshalYAML(unmarshal func(any) error) error {
	type plain Declaration
	p := plain{StartValue: DefaultStartValue}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*d = Declaration(p)
	return nil
}

// AnswerScoring adjusts one declaration when its answer option is processed.
// With UseRawAnswer the numeric raw answer is added on top of Delta.
type AnswerScoring struct {
	ID            int64         `json:"id" yaml:"id"`
	DeclarationID int64         `json:"declaration_id" yaml:"declaration_id"`
	Delta         Value         `json:"delta" yaml:"delta"`
	UseRawAnswer  bool          `json:"use_raw_answer_as_delta" yaml:"use_raw_answer_as_delta"`
	Notes         []ScoringNote `json:"notes,omitempty" yaml:"notes,omitempty"`
	OptionID      int64         `json:"-" yaml:"-"`
}

// ScoringNote is an explanatory text shown with a technology result when its
// scoring's option was selected. Text may reference {q_<question name>} and
// {v_<declaration name>} placeholders.
type ScoringNote struct {
	ID           int64   `json:"id" yaml:"id"`
	TechnologyID int64   `json:"technology_id" yaml:"technology_id"`
	Text         string  `json:"text" yaml:"text"`
	IncludeOn    []int64 `json:"include_on,omitempty" yaml:"include_on,omitempty"`
	ExcludeOn    []int64 `json:"exclude_on,omitempty" yaml:"exclude_on,omitempty"`
}

// Adjustment is one delta that forward processing actually applied. Answers
// keep the list so backward processing reverts exactly the same amounts.
type Adjustment struct {
	DeclarationID int64 `json:"declaration_id"`
	Delta         Value `json:"delta"`
}

// ─── PAGES ───────────────────────────────────────────────────────────────────

// Comparison is the operator of a page requirement.
type Comparison string

const (
	CompareGT  Comparison = "GT"
	CompareGTE Comparison = "GTE"
	CompareEQ  Comparison = "EQ"
	CompareLTE Comparison = "LTE"
	CompareLT  Comparison = "LT"
)

// Holds evaluates "score <op> threshold".
func (c Comparison) Holds(score, threshold Value) bool {
	switch c {
	case CompareGT:
		return score > threshold
	case CompareGTE:
		return score >= threshold
	case CompareEQ:
		return score == threshold
	case CompareLTE:
		return score <= threshold
	case CompareLT:
		return score < threshold
	}
	return false
}

// Valid reports whether c is a known operator.
func (c Comparison) Valid() bool {
	switch c {
	case CompareGT, CompareGTE, CompareEQ, CompareLTE, CompareLT:
		return true
	}
	return false
}

// PageRequirement gates a page on a declaration's current score.
type PageRequirement struct {
	DeclarationID int64      `json:"declaration_id" yaml:"declaration_id"`
	Threshold     Value      `json:"threshold" yaml:"threshold"`
	Comparison    Comparison `json:"comparison" yaml:"comparison"`
}

// Page is one step of the questionnaire.
type Page struct {
	ID          int64            `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Position    int              `json:"position" yaml:"position"`
	Questions   []int64          `json:"questions,omitempty" yaml:"questions,omitempty"`
	IncludeOn   []int64          `json:"include_on,omitempty" yaml:"include_on,omitempty"`
	ExcludeOn   []int64          `json:"exclude_on,omitempty" yaml:"exclude_on,omitempty"`
	Requirement *PageRequirement `json:"requirement,omitempty" yaml:"requirement,omitempty"`
}

// ─── TECHNOLOGIES ────────────────────────────────────────────────────────────

// TechnologyKind tags a technology as plain or as a group of sub-technologies.
type TechnologyKind string

const (
	TechPlain TechnologyKind = "plain"
	TechGroup TechnologyKind = "group"
)

// Thresholds of a link that omits them.
var (
	DefaultApproveThreshold = NewValue(1, 0)
	DefaultDenyThreshold    = NewValue(0, 0)
)

// TechScoreLink ties a technology to a declaration with approve/deny thresholds.
type TechScoreLink struct {
	DeclarationID int64 `json:"declaration_id" yaml:"declaration_id"`
	Approve       Value `json:"approve_threshold" yaml:"approve_threshold"`
	Deny          Value `json:"deny_threshold" yaml:"deny_threshold"`
}

func (l *TechScoreLink) UnmarshalJSON(b []byte) error {
	type plain TechScoreLink
	p := plain{Approve: DefaultApproveThreshold, Deny: DefaultDenyThreshold}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*l = TechScoreLink(p)
	return nil
}

func (l *TechScoreLink) UnmarshalYAML(unmarshal func(any) error) error {
	type plain TechScoreLink
	p := plain{Approve: DefaultApproveThreshold, Deny: DefaultDenyThreshold}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*l = TechScoreLink(p)
	return nil
}

// Technology is a recommendable technology. A group with no sub-technologies
// is scored exactly like a plain technology.
type Technology struct {
	ID    int64           `json:"id" yaml:"id"`
	Name  string          `json:"name" yaml:"name"`
	Kind  TechnologyKind  `json:"kind" yaml:"kind"`
	Links []TechScoreLink `json:"links,omitempty" yaml:"links,omitempty"`
	Subs  []int64         `json:"sub_technologies,omitempty" yaml:"sub_technologies,omitempty"`
}

// Verdict is the outcome of scoring a technology for an inquiry.
type Verdict string

const (
	VerdictSuccess Verdict = "SUCCESS"
	VerdictFail    Verdict = "FAIL"
	VerdictUnknown Verdict = "UNKNOWN"
	VerdictVaries  Verdict = "VARIES" // groups only
)

// ─── INQUIRY STATE ───────────────────────────────────────────────────────────

// Answer is the stored answer of one inquiry to one question.
//
// Processed == true means the adjustments in Applied have been added to the
// inquiry's scores exactly once; Processed == false means they have not, or
// have been fully reverted.
type Answer struct {
	InquiryID        int64        `json:"inquiry_id"`
	QuestionID       int64        `json:"question_id"`
	RawAnswer        string       `json:"raw_answer"`
	Processed        bool         `json:"processed"`
	ResolvedOptionID *int64       `json:"resolved_option_id,omitempty"`
	Applied          []Adjustment `json:"applied,omitempty"`
}
