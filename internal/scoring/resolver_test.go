package scoring_test

import (
	"errors"
	"testing"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

func optionID(o *scoring.AnswerOption) int64 {
	if o == nil {
		return 0
	}
	return o.ID
}

// ─── Resolve: numeric floor match ───────────────────────────────────────────

func TestResolve_Int_FloorMatch(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qInt)

	tests := []struct {
		raw  string
		want int64 // 0 = no option
	}{
		{"4", 0},
		{"5", 12},
		{"9", 12},
		{"10", 14},
		{"49", 14},
		{"50", 13},
		{"180", 16},
		{"400", 11},
		{"1999", 11},
		{"2000", 15},
		{"999999", 15},
		{" 50 ", 13},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := scoring.Resolve(q, tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if optionID(got) != tt.want {
				t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
			}
		})
	}
}

// Labels "10" and "50" with values 11 and 12.
func TestResolve_Int_Scenario(t *testing.T) {
	q := &scoring.Question{ID: 1, Name: "q", Type: scoring.QuestionInt, Options: []scoring.AnswerOption{
		{ID: 1, Label: "10", Value: 11},
		{ID: 2, Label: "50", Value: 12},
	}}

	got, _ := scoring.Resolve(q, "49")
	if got == nil || got.Value != 11 {
		t.Errorf("Resolve(49) = %+v, want the option labelled 10", got)
	}
	got, _ = scoring.Resolve(q, "50")
	if got == nil || got.Value != 12 {
		t.Errorf("Resolve(50) = %+v, want the option labelled 50", got)
	}
	got, _ = scoring.Resolve(q, "5")
	if got != nil {
		t.Errorf("Resolve(5) = %+v, want nil", got)
	}
}

func TestResolve_Double_FloorMatch(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qDouble)

	tests := []struct {
		raw  string
		want int64
	}{
		{"-0.1", 0},
		{"0", 31},
		{"0.2", 31},
		{"0.25", 32},
		{"0.6", 33},
		{"0.99", 34},
		{"1", 35},
		{"12.5", 35},
	}
	for _, tt := range tests {
		got, err := scoring.Resolve(q, tt.raw)
		if err != nil {
			t.Fatalf("raw=%q: unexpected error: %v", tt.raw, err)
		}
		if optionID(got) != tt.want {
			t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
		}
	}
}

// Answers just below a label never reach it, however close they round.
func TestResolve_Double_ExactComparison(t *testing.T) {
	q := &scoring.Question{ID: 1, Name: "q", Type: scoring.QuestionDouble, Options: []scoring.AnswerOption{
		{ID: 1, Label: "10", Value: 1},
		{ID: 2, Label: "9.99", Value: 2},
	}}

	tests := []struct {
		raw  string
		want int64
	}{
		{"9.999", 2},
		{"9.995", 2},
		{"9.9899", 0},
		{"10", 1},
		{"10.001", 1},
	}
	for _, tt := range tests {
		got, err := scoring.Resolve(q, tt.raw)
		if err != nil {
			t.Fatalf("raw=%q: unexpected error: %v", tt.raw, err)
		}
		if optionID(got) != tt.want {
			t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
		}
	}
}

func TestResolve_Floor_TieBreakLowestID(t *testing.T) {
	q := &scoring.Question{ID: 1, Name: "q", Type: scoring.QuestionInt, Options: []scoring.AnswerOption{
		{ID: 9, Label: "10", Value: 1},
		{ID: 4, Label: "10", Value: 2},
		{ID: 7, Label: "10.00", Value: 3},
		{ID: 2, Label: "not a number", Value: 4},
	}}
	for i := 0; i < 3; i++ {
		got, err := scoring.Resolve(q, "15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if optionID(got) != 4 {
			t.Fatalf("run %d: got option %d, want 4", i, optionID(got))
		}
	}
}

// ─── Resolve: CHOICE ────────────────────────────────────────────────────────

func TestResolve_Choice(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qChoice)

	for _, tt := range []struct {
		raw  string
		want int64
	}{
		{"21", 21},
		{"22", 22},
		{"26", 26},
		{"999", 999},
		{"", 0},
		{"0", 0},
	} {
		got, err := scoring.Resolve(q, tt.raw)
		if err != nil {
			t.Fatalf("raw=%q: unexpected error: %v", tt.raw, err)
		}
		if optionID(got) != tt.want {
			t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
		}
	}
}

func TestResolve_Choice_UnknownValueIsAnError(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qChoice)

	for _, raw := range []string{"23", "-1", "A"} {
		_, err := scoring.Resolve(q, raw)
		if !errors.Is(err, scoring.ErrUnknownAnswerOption) {
			t.Errorf("raw=%q: err = %v, want ErrUnknownAnswerOption", raw, err)
		}
	}
}

func TestResolve_Choice_ZeroValuedOptionWins(t *testing.T) {
	q := &scoring.Question{ID: 1, Name: "q", Type: scoring.QuestionChoice, Options: []scoring.AnswerOption{
		{ID: 5, Label: "none", Value: 0},
	}}
	got, err := scoring.Resolve(q, "0")
	if err != nil || optionID(got) != 5 {
		t.Errorf("got option %d err %v, want option 5", optionID(got), err)
	}
}

// ─── Resolve: OPEN / YESNO ──────────────────────────────────────────────────

func TestResolve_Open(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qOpen)

	got, _ := scoring.Resolve(q, "anything at all")
	if optionID(got) != 41 {
		t.Errorf("non-empty answer: got option %d, want 41", optionID(got))
	}
	got, _ = scoring.Resolve(q, "   ")
	if got != nil {
		t.Errorf("blank answer: got option %d, want nil", optionID(got))
	}

	bare := &scoring.Question{ID: 2, Name: "bare", Type: scoring.QuestionOpen}
	if got, _ := scoring.Resolve(bare, "x"); got != nil {
		t.Errorf("question without NotNone option resolved to %d", optionID(got))
	}
}

func TestResolve_YesNo(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qYesNo)

	tests := []struct {
		raw  string
		want int64
	}{
		{"True", 51},
		{"False", 52},
		{"true", 52},
		{"maybe", 52},
		{"", 0},
	}
	for _, tt := range tests {
		got, err := scoring.Resolve(q, tt.raw)
		if err != nil {
			t.Fatalf("raw=%q: unexpected error: %v", tt.raw, err)
		}
		if optionID(got) != tt.want {
			t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
		}
	}
}

// ─── Resolve: BEST_OF_MULTI ─────────────────────────────────────────────────

func TestResolve_BestOfMulti(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qMulti) // priority [3, 1]

	tests := []struct {
		name string
		raw  string
		want int64
	}{
		{"priority first entry", "1,3", 63},
		{"priority second entry", "2,1", 61},
		{"positional fallback", "2", 62},
		{"positional first", "1", 61},
		{"ordinal out of range", "7", 0},
		{"whitespace tolerated", " 2 , 3 ", 63},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoring.Resolve(q, tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if optionID(got) != tt.want {
				t.Errorf("Resolve(%q) = option %d, want %d", tt.raw, optionID(got), tt.want)
			}
		})
	}
}

func TestResolve_BestOfMulti_NoPriorityUsesPosition(t *testing.T) {
	q := &scoring.Question{ID: 1, Name: "q", Type: scoring.QuestionBestOfMulti, Options: []scoring.AnswerOption{
		{ID: 3, Label: "c", Value: 30},
		{ID: 1, Label: "a", Value: 10},
		{ID: 2, Label: "b", Value: 20},
	}}
	got, err := scoring.Resolve(q, "3,1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if optionID(got) != 3 {
		t.Errorf("got option %d, want 3 (third by value)", optionID(got))
	}
}

func TestResolve_BestOfMulti_BadToken(t *testing.T) {
	snap := newFixtureSnapshot(t)
	q := question(t, snap, qMulti)
	_, err := scoring.Resolve(q, "1,x")
	if !errors.Is(err, scoring.ErrUnknownAnswerOption) {
		t.Errorf("err = %v, want ErrUnknownAnswerOption", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	snap := newFixtureSnapshot(t)
	for _, qid := range []int64{qInt, qChoice, qDouble, qOpen, qYesNo, qMulti} {
		q := question(t, snap, qid)
		for _, raw := range []string{"", "0", "1", "21", "400", "0.5", "True", "1,3"} {
			a, errA := scoring.Resolve(q, raw)
			b, errB := scoring.Resolve(q, raw)
			if optionID(a) != optionID(b) || (errA == nil) != (errB == nil) {
				t.Errorf("question %d raw %q: results differ between calls", qid, raw)
			}
		}
	}
}
