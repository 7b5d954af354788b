package scoring

import (
	"fmt"
	"sort"
)

// SnapshotData is the administrator-authored configuration in its plain,
// serialisable form. It is what seed files, the database loader and the Redis
// cache exchange.
type SnapshotData struct {
	Declarations []Declaration `json:"declarations" yaml:"declarations"`
	Questions    []Question    `json:"questions" yaml:"questions"`
	Pages        []Page        `json:"pages" yaml:"pages"`
	Technologies []Technology  `json:"technologies" yaml:"technologies"`
}

// Snapshot is a validated, indexed, read-only view of SnapshotData. It is safe
// for concurrent use and shared by all inquiries.
type Snapshot struct {
	data SnapshotData

	questions      map[int64]*Question
	questionByName map[string]*Question
	options        map[int64]*AnswerOption
	declarations   map[int64]*Declaration
	declByName     map[string]*Declaration
	pages          map[int64]*Page
	pageOrder      []*Page // sorted by Position
	technologies   map[int64]*Technology
}

// NewSnapshot validates data and builds the lookup indexes. The snapshot takes
// ownership of data; callers must not modify it afterwards.
//
// Validation rejects duplicate ids and names, unknown question types, dangling
// references, invalid question options and cycles between tech groups.
func NewSnapshot(data SnapshotData) (*Snapshot, error) {
	s := &Snapshot{
		data:           data,
		questions:      make(map[int64]*Question, len(data.Questions)),
		questionByName: make(map[string]*Question, len(data.Questions)),
		options:        make(map[int64]*AnswerOption),
		declarations:   make(map[int64]*Declaration, len(data.Declarations)),
		declByName:     make(map[string]*Declaration, len(data.Declarations)),
		pages:          make(map[int64]*Page, len(data.Pages)),
		technologies:   make(map[int64]*Technology, len(data.Technologies)),
	}

	for i := range s.data.Declarations {
		d := &s.data.Declarations[i]
		if _, dup := s.declarations[d.ID]; dup {
			return nil, invalid("duplicate declaration id %d", d.ID)
		}
		if _, dup := s.declByName[d.Name]; dup {
			return nil, invalid("duplicate declaration name %q", d.Name)
		}
		s.declarations[d.ID] = d
		s.declByName[d.Name] = d
	}

	for i := range s.data.Questions {
		q := &s.data.Questions[i]
		if _, dup := s.questions[q.ID]; dup {
			return nil, invalid("duplicate question id %d", q.ID)
		}
		if _, dup := s.questionByName[q.Name]; dup {
			return nil, invalid("duplicate question name %q", q.Name)
		}
		if !q.Type.Valid() {
			return nil, invalid("question %q: unknown type %q", q.Name, q.Type)
		}
		if err := q.Config.Validate(q.Type); err != nil {
			return nil, invalid("question %q: %v", q.Name, err)
		}
		sort.SliceStable(q.Options, func(a, b int) bool {
			if q.Options[a].Value != q.Options[b].Value {
				return q.Options[a].Value < q.Options[b].Value
			}
			return q.Options[a].ID < q.Options[b].ID
		})
		s.questions[q.ID] = q
		s.questionByName[q.Name] = q
	}

	// Options are indexed in a second pass so their pointers are stable after
	// the sort above.
	for _, q := range s.questions {
		for i := range q.Options {
			o := &q.Options[i]
			if _, dup := s.options[o.ID]; dup {
				return nil, invalid("duplicate answer option id %d", o.ID)
			}
			o.QuestionID = q.ID
			for j := range o.Scorings {
				sc := &o.Scorings[j]
				sc.OptionID = o.ID
				if _, ok := s.declarations[sc.DeclarationID]; !ok {
					return nil, invalid("answer option %d: scoring references unknown declaration %d", o.ID, sc.DeclarationID)
				}
			}
			s.options[o.ID] = o
		}
	}

	for i := range s.data.Technologies {
		t := &s.data.Technologies[i]
		if _, dup := s.technologies[t.ID]; dup {
			return nil, invalid("duplicate technology id %d", t.ID)
		}
		if t.Kind == "" {
			t.Kind = TechPlain
		}
		if t.Kind != TechPlain && t.Kind != TechGroup {
			return nil, invalid("technology %q: unknown kind %q", t.Name, t.Kind)
		}
		if t.Kind == TechPlain && len(t.Subs) > 0 {
			return nil, invalid("technology %q: only groups may have sub-technologies", t.Name)
		}
		for _, l := range t.Links {
			if _, ok := s.declarations[l.DeclarationID]; !ok {
				return nil, invalid("technology %q: link references unknown declaration %d", t.Name, l.DeclarationID)
			}
		}
		s.technologies[t.ID] = t
	}

	for _, o := range s.options {
		for _, sc := range o.Scorings {
			for _, n := range sc.Notes {
				if _, ok := s.technologies[n.TechnologyID]; !ok {
					return nil, invalid("scoring note %d references unknown technology %d", n.ID, n.TechnologyID)
				}
				for _, id := range append(append([]int64{}, n.IncludeOn...), n.ExcludeOn...) {
					if _, ok := s.options[id]; !ok {
						return nil, invalid("scoring note %d references unknown answer option %d", n.ID, id)
					}
				}
			}
		}
	}

	for _, t := range s.technologies {
		for _, sub := range t.Subs {
			if _, ok := s.technologies[sub]; !ok {
				return nil, invalid("technology %q: unknown sub-technology %d", t.Name, sub)
			}
		}
	}
	if err := s.checkGroupCycles(); err != nil {
		return nil, err
	}

	positions := make(map[int]int64, len(s.data.Pages))
	for i := range s.data.Pages {
		p := &s.data.Pages[i]
		if _, dup := s.pages[p.ID]; dup {
			return nil, invalid("duplicate page id %d", p.ID)
		}
		if other, dup := positions[p.Position]; dup {
			return nil, invalid("pages %d and %d share position %d", other, p.ID, p.Position)
		}
		positions[p.Position] = p.ID
		for _, ids := range [][]int64{p.Questions, p.IncludeOn, p.ExcludeOn} {
			for _, qid := range ids {
				if _, ok := s.questions[qid]; !ok {
					return nil, invalid("page %q references unknown question %d", p.Name, qid)
				}
			}
		}
		if r := p.Requirement; r != nil {
			if _, ok := s.declarations[r.DeclarationID]; !ok {
				return nil, invalid("page %q: requirement references unknown declaration %d", p.Name, r.DeclarationID)
			}
			if !r.Comparison.Valid() {
				return nil, invalid("page %q: unknown comparison %q", p.Name, r.Comparison)
			}
		}
		s.pages[p.ID] = p
		s.pageOrder = append(s.pageOrder, p)
	}
	sort.Slice(s.pageOrder, func(a, b int) bool {
		return s.pageOrder[a].Position < s.pageOrder[b].Position
	})

	return s, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
}

// checkGroupCycles walks the sub-technology graph depth first.
func (s *Snapshot) checkGroupCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int64]int, len(s.technologies))

	var visit func(id int64) error
	visit = func(id int64) error {
		switch state[id] {
		case visiting:
			return invalid("technology %d is part of a sub-technology cycle", id)
		case done:
			return nil
		}
		state[id] = visiting
		for _, sub := range s.technologies[id].Subs {
			if err := visit(sub); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	for id := range s.technologies {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// ─── LOOKUPS ─────────────────────────────────────────────────────────────────

// Data returns the configuration the snapshot was built from.
func (s *Snapshot) Data() SnapshotData { return s.data }

func (s *Snapshot) Question(id int64) (*Question, bool) {
	q, ok := s.questions[id]
	return q, ok
}

func (s *Snapshot) QuestionByName(name string) (*Question, bool) {
	q, ok := s.questionByName[name]
	return q, ok
}

func (s *Snapshot) Option(id int64) (*AnswerOption, bool) {
	o, ok := s.options[id]
	return o, ok
}

func (s *Snapshot) Declaration(id int64) (*Declaration, bool) {
	d, ok := s.declarations[id]
	return d, ok
}

func (s *Snapshot) DeclarationByName(name string) (*Declaration, bool) {
	d, ok := s.declByName[name]
	return d, ok
}

func (s *Snapshot) Page(id int64) (*Page, bool) {
	p, ok := s.pages[id]
	return p, ok
}

// Pages returns all pages ordered by position.
func (s *Snapshot) Pages() []*Page { return s.pageOrder }

func (s *Snapshot) Technology(id int64) (*Technology, bool) {
	t, ok := s.technologies[id]
	return t, ok
}

// Technologies returns all technologies ordered by id.
func (s *Snapshot) Technologies() []*Technology {
	out := make([]*Technology, 0, len(s.technologies))
	for _, t := range s.technologies {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// Declarations returns all declarations ordered by id.
func (s *Snapshot) Declarations() []*Declaration {
	out := make([]*Declaration, 0, len(s.declarations))
	for _, d := range s.declarations {
		out = append(out, d)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
