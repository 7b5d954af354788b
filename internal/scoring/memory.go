package scoring

import (
	"context"
	"sort"
	"sync"
)

// MemoryState is an in-memory StateRepository. A unit of work runs against a
// private copy of the inquiry's state which replaces the original only when
// fn succeeds.
type MemoryState struct {
	mu        sync.Mutex
	inquiries map[int64]*inquiryState
}

type inquiryState struct {
	answers map[int64]Answer
	scores  map[int64]Value
}

func NewMemoryState() *MemoryState {
	return &MemoryState{inquiries: make(map[int64]*inquiryState)}
}

func (m *MemoryState) Atomically(ctx context.Context, inquiryID int64, fn func(ctx context.Context, tx StateTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.inquiries[inquiryID].clone()
	if err := fn(ctx, &memoryTx{state: work}); err != nil {
		return err
	}
	m.inquiries[inquiryID] = work
	return nil
}

func (s *inquiryState) clone() *inquiryState {
	out := &inquiryState{
		answers: make(map[int64]Answer),
		scores:  make(map[int64]Value),
	}
	if s == nil {
		return out
	}
	for k, a := range s.answers {
		out.answers[k] = copyAnswer(a)
	}
	for k, v := range s.scores {
		out.scores[k] = v
	}
	return out
}

func copyAnswer(a Answer) Answer {
	if a.ResolvedOptionID != nil {
		id := *a.ResolvedOptionID
		a.ResolvedOptionID = &id
	}
	if a.Applied != nil {
		a.Applied = append([]Adjustment(nil), a.Applied...)
	}
	return a
}

type memoryTx struct {
	state *inquiryState
}

func (t *memoryTx) Answer(_ context.Context, questionID int64) (Answer, bool, error) {
	a, ok := t.state.answers[questionID]
	return copyAnswer(a), ok, nil
}

func (t *memoryTx) Answers(_ context.Context) ([]Answer, error) {
	out := make([]Answer, 0, len(t.state.answers))
	for _, a := range t.state.answers {
		out = append(out, copyAnswer(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (t *memoryTx) SaveAnswer(_ context.Context, a Answer) error {
	t.state.answers[a.QuestionID] = copyAnswer(a)
	return nil
}

func (t *memoryTx) DeleteAnswer(_ context.Context, questionID int64) error {
	delete(t.state.answers, questionID)
	return nil
}

func (t *memoryTx) Score(_ context.Context, declarationID int64) (Value, bool, error) {
	v, ok := t.state.scores[declarationID]
	return v, ok, nil
}

func (t *memoryTx) SaveScore(_ context.Context, declarationID int64, v Value) error {
	t.state.scores[declarationID] = v
	return nil
}

func (t *memoryTx) DeleteScores(_ context.Context) error {
	t.state.scores = make(map[int64]Value)
	return nil
}

func (t *memoryTx) ResetAnswers(_ context.Context) error {
	for k, a := range t.state.answers {
		a.Processed = false
		a.Applied = nil
		t.state.answers[k] = a
	}
	return nil
}
