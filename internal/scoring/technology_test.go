package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shakespeare-advisor/advisor-engine/internal/scoring"
)

// ─── TechnologyScore: fixture ───────────────────────────────────────────────

func TestTechnologyScore_BeforeAndAfterForward(t *testing.T) {
	ctx := context.Background()
	e := newFixtureEngine(t)

	want := map[int64]scoring.Verdict{
		tech1: scoring.VerdictUnknown, // 0.5 between deny 0 and approve 1
		tech2: scoring.VerdictFail,    // 4 <= deny 5
		tech3: scoring.VerdictSuccess, // 4 >= approve 1
	}
	for id, w := range want {
		if got := mustVerdict(t, e, id); got != w {
			t.Errorf("before forward: tech %d = %s, want %s", id, got, w)
		}
	}

	if err := e.RecordAnswer(ctx, inq, qInt, "400"); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, inq, qInt); err != nil {
		t.Fatal(err)
	}
	afterWant := map[int64]scoring.Verdict{
		tech1: scoring.VerdictSuccess,
		tech2: scoring.VerdictUnknown,
		tech3: scoring.VerdictSuccess,
	}
	for id, w := range afterWant {
		if got := mustVerdict(t, e, id); got != w {
			t.Errorf("after forward: tech %d = %s, want %s", id, got, w)
		}
	}

	if err := e.Retreat(ctx, inq, qInt); err != nil {
		t.Fatal(err)
	}
	for id, w := range want {
		if got := mustVerdict(t, e, id); got != w {
			t.Errorf("after backward: tech %d = %s, want %s", id, got, w)
		}
	}
}

func TestTechnologyScore_UnknownTechnology(t *testing.T) {
	e := newFixtureEngine(t)
	_, err := e.TechnologyScore(context.Background(), inq, 4242)
	if !errors.Is(err, scoring.ErrUnknownTechnology) {
		t.Errorf("err = %v, want ErrUnknownTechnology", err)
	}
}

// ─── TechnologyScore: synthetic verdicts ────────────────────────────────────

// verdictSnapshot builds one declaration per wanted plain verdict (0 with
// approve 1 / deny 0 thresholds → FAIL at -1, UNKNOWN at 0.5, SUCCESS at 2)
// and a group over the plain technologies.
func verdictSnapshot(t *testing.T, verdicts []scoring.Verdict, extra ...scoring.Technology) *scoring.Snapshot {
	t.Helper()
	start := map[scoring.Verdict]scoring.Value{
		scoring.VerdictFail:    val("-1"),
		scoring.VerdictUnknown: val("0.5"),
		scoring.VerdictSuccess: val("2"),
	}
	var data scoring.SnapshotData
	var subs []int64
	for i, v := range verdicts {
		id := int64(i + 1)
		data.Declarations = append(data.Declarations, scoring.Declaration{
			ID: id, Name: string(v) + "_" + string(rune('a'+i)), StartValue: start[v],
		})
		data.Technologies = append(data.Technologies, scoring.Technology{
			ID: id, Name: "sub", Kind: scoring.TechPlain, Links: []scoring.TechScoreLink{
				{DeclarationID: id, Approve: val("1"), Deny: val("0")},
			},
		})
		subs = append(subs, id)
	}
	data.Technologies = append(data.Technologies, scoring.Technology{ID: 100, Name: "group", Kind: scoring.TechGroup, Subs: subs})
	data.Technologies = append(data.Technologies, extra...)
	snap, err := scoring.NewSnapshot(data)
	if err != nil {
		t.Fatalf("NewSnapshot: %v", err)
	}
	return snap
}

func TestTechnologyScore_Group(t *testing.T) {
	S, F, U := scoring.VerdictSuccess, scoring.VerdictFail, scoring.VerdictUnknown
	tests := []struct {
		name string
		subs []scoring.Verdict
		want scoring.Verdict
	}{
		{"1 success 1 fail 2 unknown", []scoring.Verdict{S, F, U, U}, scoring.VerdictUnknown},
		{"all success", []scoring.Verdict{S, S, S}, scoring.VerdictSuccess},
		{"all fail", []scoring.Verdict{F, F}, scoring.VerdictFail},
		{"mixed decided", []scoring.Verdict{S, F, S}, scoring.VerdictVaries},
		{"majority success with one unknown", []scoring.Verdict{S, S, U}, scoring.VerdictVaries},
		{"exactly half decided", []scoring.Verdict{S, S, U, U}, scoring.VerdictUnknown},
		{"single success", []scoring.Verdict{S}, scoring.VerdictSuccess},
		{"single unknown", []scoring.Verdict{U}, scoring.VerdictUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := verdictSnapshot(t, tt.subs)
			e := scoring.NewEngine(snap, scoring.NewMemoryState(), nil, discardLogger())
			got, err := e.TechnologyScore(context.Background(), inq, 100)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTechnologyScore_NestedGroup(t *testing.T) {
	S := scoring.VerdictSuccess
	outer := scoring.Technology{ID: 200, Name: "outer", Kind: scoring.TechGroup, Subs: []int64{100, 1}}
	snap := verdictSnapshot(t, []scoring.Verdict{S, S}, outer)
	e := scoring.NewEngine(snap, scoring.NewMemoryState(), nil, discardLogger())

	got, err := e.TechnologyScore(context.Background(), inq, 200)
	if err != nil {
		t.Fatal(err)
	}
	if got != scoring.VerdictSuccess {
		t.Errorf("got %s, want SUCCESS", got)
	}
}

func TestTechnologyScore_NoLinksPasses(t *testing.T) {
	snap, err := scoring.NewSnapshot(scoring.SnapshotData{Technologies: []scoring.Technology{
		{ID: 1, Name: "plain"},
		{ID: 2, Name: "empty group", Kind: scoring.TechGroup},
	}})
	if err != nil {
		t.Fatal(err)
	}
	e := scoring.NewEngine(snap, scoring.NewMemoryState(), nil, discardLogger())
	for _, id := range []int64{1, 2} {
		got, err := e.TechnologyScore(context.Background(), inq, id)
		if err != nil {
			t.Fatal(err)
		}
		if got != scoring.VerdictSuccess {
			t.Errorf("tech %d = %s, want SUCCESS", id, got)
		}
	}
}

// Two links: one approving and one in between gives UNKNOWN (product 0.5);
// any denying link gives FAIL.
func TestTechnologyScore_MultipleLinks(t *testing.T) {
	data := scoring.SnapshotData{
		Declarations: []scoring.Declaration{
			{ID: 1, Name: "high", StartValue: val("5")},
			{ID: 2, Name: "mid", StartValue: val("0.5")},
			{ID: 3, Name: "low", StartValue: val("-5")},
		},
		Technologies: []scoring.Technology{
			{ID: 1, Name: "high+mid", Links: []scoring.TechScoreLink{
				{DeclarationID: 1, Approve: val("1"), Deny: val("0")},
				{DeclarationID: 2, Approve: val("1"), Deny: val("0")},
			}},
			{ID: 2, Name: "mid+low", Links: []scoring.TechScoreLink{
				{DeclarationID: 2, Approve: val("1"), Deny: val("0")},
				{DeclarationID: 3, Approve: val("1"), Deny: val("0")},
			}},
			{ID: 3, Name: "at thresholds", Links: []scoring.TechScoreLink{
				{DeclarationID: 2, Approve: val("0.5"), Deny: val("0")},
			}},
		},
	}
	snap, err := scoring.NewSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	e := scoring.NewEngine(snap, scoring.NewMemoryState(), nil, discardLogger())

	want := map[int64]scoring.Verdict{1: scoring.VerdictUnknown, 2: scoring.VerdictFail, 3: scoring.VerdictSuccess}
	for id, w := range want {
		got, err := e.TechnologyScore(context.Background(), inq, id)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Errorf("tech %d = %s, want %s", id, got, w)
		}
	}
}

// ─── TechnologyResult: notes ────────────────────────────────────────────────

func noteTexts(t *testing.T, e *scoring.Engine, techID int64) []string {
	t.Helper()
	res, err := e.TechnologyResult(context.Background(), inq, techID)
	if err != nil {
		t.Fatalf("TechnologyResult: %v", err)
	}
	return res.Notes
}

func TestTechnologyNotes(t *testing.T) {
	ctx := context.Background()
	e := newFixtureEngine(t)

	if n := noteTexts(t, e, tech1); len(n) != 0 {
		t.Fatalf("no answers: notes = %v", n)
	}

	// recorded but not processed: nothing yet
	if err := e.RecordAnswer(ctx, inq, qInt, "400"); err != nil {
		t.Fatal(err)
	}
	if n := noteTexts(t, e, tech1); len(n) != 0 {
		t.Fatalf("unprocessed answer: notes = %v", n)
	}

	// 2 base + 1 exclusive
	if err := e.Advance(ctx, inq, qInt); err != nil {
		t.Fatal(err)
	}
	notes := noteTexts(t, e, tech1)
	if len(notes) != 3 {
		t.Fatalf("notes = %v, want 3", notes)
	}
	if notes[1] != "Score is 1.50 for 400" {
		t.Errorf("rendered note = %q", notes[1])
	}

	// choosing A unlocks the single include note
	if err := e.RecordAnswer(ctx, inq, qChoice, "21"); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, inq, qChoice); err != nil {
		t.Fatal(err)
	}
	if n := noteTexts(t, e, tech1); len(n) != 4 {
		t.Errorf("after A: notes = %v, want 4", n)
	}

	// 0 on the double question completes the plural include
	if err := e.RecordAnswer(ctx, inq, qDouble, "0"); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, inq, qDouble); err != nil {
		t.Fatal(err)
	}
	if n := noteTexts(t, e, tech1); len(n) != 5 {
		t.Errorf("after double: notes = %v, want 5", n)
	}

	// tech 2 sees only its own note
	if n := noteTexts(t, e, tech2); len(n) != 1 || n[0] != "Other technology" {
		t.Errorf("tech 2 notes = %v", n)
	}
}

func TestTechnologyNotes_Placeholders(t *testing.T) {
	ctx := context.Background()
	data := scoring.SnapshotData{
		Declarations: []scoring.Declaration{{ID: 1, Name: "fit", StartValue: val("0.5")}},
		Questions: []scoring.Question{
			{ID: 1, Name: "size", Type: scoring.QuestionOpen, Options: []scoring.AnswerOption{
				{ID: 1, Label: scoring.LabelNotNone, Value: 1, Scorings: []scoring.AnswerScoring{
					{ID: 1, DeclarationID: 1, Delta: val("1"), Notes: []scoring.ScoringNote{
						{ID: 1, TechnologyID: 1, Text: "{q_size} at {v_fit}, {{q_size}}, {q_colour} {v_other} {q_roof}{"},
					}},
				}},
			}},
			{ID: 2, Name: "roof", Type: scoring.QuestionOpen, Options: []scoring.AnswerOption{
				{ID: 2, Label: scoring.LabelNotNone, Value: 1},
			}},
		},
		Technologies: []scoring.Technology{{ID: 1, Name: "T", Kind: scoring.TechPlain, Links: []scoring.TechScoreLink{
			{DeclarationID: 1, Approve: scoring.DefaultApproveThreshold, Deny: scoring.DefaultDenyThreshold},
		}}},
	}
	snap, err := scoring.NewSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	e := scoring.NewEngine(snap, scoring.NewMemoryState(), nil, discardLogger())

	if err := e.RecordAnswer(ctx, inq, 1, "big"); err != nil {
		t.Fatal(err)
	}
	if err := e.Advance(ctx, inq, 1); err != nil {
		t.Fatal(err)
	}
	res, err := e.TechnologyResult(ctx, inq, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := "big at 1.50, {q_size}, {q_colour} {v_other} {"
	if len(res.Notes) != 1 || res.Notes[0] != want {
		t.Errorf("notes = %q, want [%q]", res.Notes, want)
	}
}

func TestTechnologyNotes_Exclude(t *testing.T) {
	ctx := context.Background()
	e := newFixtureEngine(t)

	for _, step := range []struct {
		q   int64
		raw string
	}{{qInt, "400"}, {qChoice, "22"}} {
		if err := e.RecordAnswer(ctx, inq, step.q, step.raw); err != nil {
			t.Fatal(err)
		}
		if err := e.Advance(ctx, inq, step.q); err != nil {
			t.Fatal(err)
		}
	}
	// 2 base, exclusive suppressed by B
	if n := noteTexts(t, e, tech1); len(n) != 2 {
		t.Errorf("notes = %v, want 2", n)
	}
}

func TestTechnologyResults_AllTechnologies(t *testing.T) {
	e := newFixtureEngine(t)
	res, err := e.TechnologyResults(context.Background(), inq)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 4 {
		t.Fatalf("got %d results, want 4", len(res))
	}
	for i, r := range res {
		if r.TechnologyID != int64(i+1) {
			t.Errorf("result %d has id %d; want ordering by id", i, r.TechnologyID)
		}
		if r.Notes == nil {
			t.Errorf("result %d: Notes is nil, want empty slice", i)
		}
	}
	if res[3].Verdict != scoring.VerdictVaries {
		t.Errorf("group verdict = %s, want VARIES (1 unknown, 1 fail, 1 success)", res[3].Verdict)
	}
}
