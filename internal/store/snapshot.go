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

// ErrNoConfiguration is returned by LoadSnapshot when the configuration
// tables are empty, i.e. no seed has been applied yet.
var ErrNoConfiguration = errors.New("store: no configuration stored")

// ─── LOAD ────────────────────────────────────────────────────────────────────

// LoadSnapshot reads the whole configuration in one transaction and
// assembles it into scoring.SnapshotData. The result is not validated; pass
// it to scoring.NewSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (scoring.SnapshotData, error) {
	var data scoring.SnapshotData
	err := s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		var err error
		data, err = loadSnapshot(ctx, q)
		return err
	})
	if err != nil {
		return scoring.SnapshotData{}, err
	}
	if len(data.Declarations) == 0 && len(data.Questions) == 0 && len(data.Pages) == 0 && len(data.Technologies) == 0 {
		return scoring.SnapshotData{}, ErrNoConfiguration
	}
	return data, nil
}

func loadSnapshot(ctx context.Context, q db.Querier) (scoring.SnapshotData, error) {
	var data scoring.SnapshotData

	decls, err := q.ListScoringDeclarations(ctx)
	if err != nil {
		return data, fmt.Errorf("LoadSnapshot: list declarations: %w", err)
	}
	for _, d := range decls {
		data.Declarations = append(data.Declarations, scoring.Declaration{
			ID: d.ID, Name: d.Name, StartValue: scoring.Value(d.StartValue),
		})
	}

	if data.Questions, err = loadQuestions(ctx, q); err != nil {
		return data, err
	}
	if data.Pages, err = loadPages(ctx, q); err != nil {
		return data, err
	}
	if data.Technologies, err = loadTechnologies(ctx, q); err != nil {
		return data, err
	}
	return data, nil
}

func loadQuestions(ctx context.Context, q db.Querier) ([]scoring.Question, error) {
	questions, err := q.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list questions: %w", err)
	}
	options, err := q.ListAnswerOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list answer options: %w", err)
	}
	scorings, err := q.ListAnswerScorings(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list answer scorings: %w", err)
	}
	notes, err := q.ListAnswerScoringNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list scoring notes: %w", err)
	}
	noteOptions, err := q.ListAnswerScoringNoteOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list scoring note options: %w", err)
	}

	// Assemble bottom-up: note conditions → notes → scorings → options.
	include := make(map[int64][]int64)
	exclude := make(map[int64][]int64)
	for _, o := range noteOptions {
		switch o.Mode {
		case db.ModeInclude:
			include[o.NoteID] = append(include[o.NoteID], o.AnswerOptionID)
		case db.ModeExclude:
			exclude[o.NoteID] = append(exclude[o.NoteID], o.AnswerOptionID)
		default:
			return nil, fmt.Errorf("LoadSnapshot: note %d has unknown condition mode %q", o.NoteID, o.Mode)
		}
	}
	notesByScoring := make(map[int64][]scoring.ScoringNote)
	for _, n := range notes {
		notesByScoring[n.ScoringID] = append(notesByScoring[n.ScoringID], scoring.ScoringNote{
			ID:           n.ID,
			TechnologyID: n.TechnologyID,
			Text:         n.Text,
			IncludeOn:    include[n.ID],
			ExcludeOn:    exclude[n.ID],
		})
	}
	scoringsByOption := make(map[int64][]scoring.AnswerScoring)
	for _, sc := range scorings {
		scoringsByOption[sc.AnswerOptionID] = append(scoringsByOption[sc.AnswerOptionID], scoring.AnswerScoring{
			ID:            sc.ID,
			OptionID:      sc.AnswerOptionID,
			DeclarationID: sc.DeclarationID,
			Delta:         scoring.Value(sc.Delta),
			UseRawAnswer:  sc.UseRawAnswerAsDelta,
			Notes:         notesByScoring[sc.ID],
		})
	}
	optionsByQuestion := make(map[int64][]scoring.AnswerOption)
	for _, o := range options {
		optionsByQuestion[o.QuestionID] = append(optionsByQuestion[o.QuestionID], scoring.AnswerOption{
			ID:          o.ID,
			QuestionID:  o.QuestionID,
			Label:       o.Label,
			Value:       o.Value,
			ContextCode: o.ContextCode.String,
			Scorings:    scoringsByOption[o.ID],
		})
	}

	out := make([]scoring.Question, 0, len(questions))
	for _, row := range questions {
		cfg, err := scoring.ParseQuestionOptions(row.Options.RawMessage)
		if err != nil {
			return nil, fmt.Errorf("LoadSnapshot: question %d: %w", row.ID, err)
		}
		out = append(out, scoring.Question{
			ID:      row.ID,
			Name:    row.Name,
			Type:    scoring.QuestionType(row.QuestionType),
			Config:  cfg,
			Options: optionsByQuestion[row.ID],
		})
	}
	return out, nil
}

func loadPages(ctx context.Context, q db.Querier) ([]scoring.Page, error) {
	pages, err := q.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list pages: %w", err)
	}
	members, err := q.ListPageQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list page questions: %w", err)
	}
	conditions, err := q.ListPageConditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list page conditions: %w", err)
	}
	requirements, err := q.ListPageRequirements(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list page requirements: %w", err)
	}

	questions := make(map[int64][]int64)
	for _, m := range members {
		questions[m.PageID] = append(questions[m.PageID], m.QuestionID)
	}
	include := make(map[int64][]int64)
	exclude := make(map[int64][]int64)
	for _, c := range conditions {
		switch c.Mode {
		case db.ModeInclude:
			include[c.PageID] = append(include[c.PageID], c.QuestionID)
		case db.ModeExclude:
			exclude[c.PageID] = append(exclude[c.PageID], c.QuestionID)
		default:
			return nil, fmt.Errorf("LoadSnapshot: page %d has unknown condition mode %q", c.PageID, c.Mode)
		}
	}
	reqs := make(map[int64]*scoring.PageRequirement)
	for _, r := range requirements {
		reqs[r.PageID] = &scoring.PageRequirement{
			DeclarationID: r.DeclarationID,
			Threshold:     scoring.Value(r.Threshold),
			Comparison:    scoring.Comparison(r.Comparison),
		}
	}

	out := make([]scoring.Page, 0, len(pages))
	for _, p := range pages {
		out = append(out, scoring.Page{
			ID:          p.ID,
			Name:        p.Name,
			Position:    int(p.Position),
			Questions:   questions[p.ID],
			IncludeOn:   include[p.ID],
			ExcludeOn:   exclude[p.ID],
			Requirement: reqs[p.ID],
		})
	}
	return out, nil
}

func loadTechnologies(ctx context.Context, q db.Querier) ([]scoring.Technology, error) {
	techs, err := q.ListTechnologies(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list technologies: %w", err)
	}
	links, err := q.ListTechScoreLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list tech score links: %w", err)
	}
	members, err := q.ListTechGroupMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: list tech group members: %w", err)
	}

	linksByTech := make(map[int64][]scoring.TechScoreLink)
	for _, l := range links {
		linksByTech[l.TechnologyID] = append(linksByTech[l.TechnologyID], scoring.TechScoreLink{
			DeclarationID: l.DeclarationID,
			Approve:       scoring.Value(l.ApproveThreshold),
			Deny:          scoring.Value(l.DenyThreshold),
		})
	}
	subs := make(map[int64][]int64)
	for _, m := range members {
		subs[m.GroupID] = append(subs[m.GroupID], m.MemberID)
	}

	out := make([]scoring.Technology, 0, len(techs))
	for _, t := range techs {
		out = append(out, scoring.Technology{
			ID:    t.ID,
			Name:  t.Name,
			Kind:  scoring.TechnologyKind(t.Kind),
			Links: linksByTech[t.ID],
			Subs:  subs[t.ID],
		})
	}
	return out, nil
}

// ─── SAVE ────────────────────────────────────────────────────────────────────

// SaveSnapshot replaces the stored configuration with snap in one
// transaction. Per-inquiry answers and scores are left untouched.
func (s *Store) SaveSnapshot(ctx context.Context, snap *scoring.Snapshot) error {
	data := snap.Data()
	return s.withTx(ctx, func(ctx context.Context, q db.Querier) error {
		if err := q.DeleteConfiguration(ctx); err != nil {
			return fmt.Errorf("SaveSnapshot: delete configuration: %w", err)
		}
		// Referenced rows first: declarations and technologies, then
		// questions with every option, then scorings and notes that point at
		// options of other questions, then pages.
		for _, d := range data.Declarations {
			if err := q.InsertScoringDeclaration(ctx, db.ScoringDeclaration{
				ID: d.ID, Name: d.Name, StartValue: int64(d.StartValue),
			}); err != nil {
				return fmt.Errorf("SaveSnapshot: declaration %d: %w", d.ID, err)
			}
		}
		if err := saveTechnologies(ctx, q, data.Technologies); err != nil {
			return err
		}
		if err := saveQuestions(ctx, q, data.Questions); err != nil {
			return err
		}
		return savePages(ctx, q, data.Pages)
	})
}

func saveTechnologies(ctx context.Context, q db.Querier, techs []scoring.Technology) error {
	for _, t := range techs {
		if err := q.InsertTechnology(ctx, db.Technology{ID: t.ID, Name: t.Name, Kind: string(t.Kind)}); err != nil {
			return fmt.Errorf("SaveSnapshot: technology %d: %w", t.ID, err)
		}
	}
	for _, t := range techs {
		for _, l := range t.Links {
			if err := q.InsertTechScoreLink(ctx, db.TechScoreLink{
				TechnologyID:     t.ID,
				DeclarationID:    l.DeclarationID,
				ApproveThreshold: int64(l.Approve),
				DenyThreshold:    int64(l.Deny),
			}); err != nil {
				return fmt.Errorf("SaveSnapshot: technology %d link: %w", t.ID, err)
			}
		}
		for i, sub := range t.Subs {
			if err := q.InsertTechGroupMember(ctx, db.TechGroupMember{
				GroupID: t.ID, MemberID: sub, Position: int32(i),
			}); err != nil {
				return fmt.Errorf("SaveSnapshot: technology %d member %d: %w", t.ID, sub, err)
			}
		}
	}
	return nil
}

func saveQuestions(ctx context.Context, q db.Querier, questions []scoring.Question) error {
	for _, qu := range questions {
		var opts pqtype.NullRawMessage
		if !qu.Config.IsZero() {
			b, err := json.Marshal(qu.Config)
			if err != nil {
				return fmt.Errorf("SaveSnapshot: question %d options: %w", qu.ID, err)
			}
			opts = pqtype.NullRawMessage{RawMessage: b, Valid: true}
		}
		if err := q.InsertQuestion(ctx, db.Question{
			ID: qu.ID, Name: qu.Name, QuestionType: string(qu.Type), Options: opts,
		}); err != nil {
			return fmt.Errorf("SaveSnapshot: question %d: %w", qu.ID, err)
		}
		for _, o := range qu.Options {
			if err := q.InsertAnswerOption(ctx, db.AnswerOption{
				ID:          o.ID,
				QuestionID:  qu.ID,
				Label:       o.Label,
				Value:       o.Value,
				ContextCode: sql.NullString{String: o.ContextCode, Valid: o.ContextCode != ""},
			}); err != nil {
				return fmt.Errorf("SaveSnapshot: answer option %d: %w", o.ID, err)
			}
		}
	}

	for _, qu := range questions {
		for _, o := range qu.Options {
			for _, sc := range o.Scorings {
				if err := q.InsertAnswerScoring(ctx, db.AnswerScoring{
					ID:                  sc.ID,
					AnswerOptionID:      o.ID,
					DeclarationID:       sc.DeclarationID,
					Delta:               int64(sc.Delta),
					UseRawAnswerAsDelta: sc.UseRawAnswer,
				}); err != nil {
					return fmt.Errorf("SaveSnapshot: answer scoring %d: %w", sc.ID, err)
				}
				if err := saveNotes(ctx, q, sc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func saveNotes(ctx context.Context, q db.Querier, sc scoring.AnswerScoring) error {
	for _, n := range sc.Notes {
		if err := q.InsertAnswerScoringNote(ctx, db.AnswerScoringNote{
			ID: n.ID, ScoringID: sc.ID, TechnologyID: n.TechnologyID, Text: n.Text,
		}); err != nil {
			return fmt.Errorf("SaveSnapshot: scoring note %d: %w", n.ID, err)
		}
		for _, cond := range []struct {
			mode    string
			options []int64
		}{{db.ModeInclude, n.IncludeOn}, {db.ModeExclude, n.ExcludeOn}} {
			for _, optID := range cond.options {
				if err := q.InsertAnswerScoringNoteOption(ctx, db.AnswerScoringNoteOption{
					NoteID: n.ID, AnswerOptionID: optID, Mode: cond.mode,
				}); err != nil {
					return fmt.Errorf("SaveSnapshot: scoring note %d %s option %d: %w", n.ID, cond.mode, optID, err)
				}
			}
		}
	}
	return nil
}

func savePages(ctx context.Context, q db.Querier, pages []scoring.Page) error {
	for _, p := range pages {
		if err := q.InsertPage(ctx, db.Page{ID: p.ID, Name: p.Name, Position: int32(p.Position)}); err != nil {
			return fmt.Errorf("SaveSnapshot: page %d: %w", p.ID, err)
		}
		for i, qid := range p.Questions {
			if err := q.InsertPageQuestion(ctx, db.PageQuestion{PageID: p.ID, QuestionID: qid, Position: int32(i)}); err != nil {
				return fmt.Errorf("SaveSnapshot: page %d question %d: %w", p.ID, qid, err)
			}
		}
		for _, cond := range []struct {
			mode      string
			questions []int64
		}{{db.ModeInclude, p.IncludeOn}, {db.ModeExclude, p.ExcludeOn}} {
			for _, qid := range cond.questions {
				if err := q.InsertPageCondition(ctx, db.PageCondition{PageID: p.ID, QuestionID: qid, Mode: cond.mode}); err != nil {
					return fmt.Errorf("SaveSnapshot: page %d %s question %d: %w", p.ID, cond.mode, qid, err)
				}
			}
		}
		if r := p.Requirement; r != nil {
			if err := q.InsertPageRequirement(ctx, db.PageRequirement{
				PageID:        p.ID,
				DeclarationID: r.DeclarationID,
				Threshold:     int64(r.Threshold),
				Comparison:    string(r.Comparison),
			}); err != nil {
				return fmt.Errorf("SaveSnapshot: page %d requirement: %w", p.ID, err)
			}
		}
	}
	return nil
}
