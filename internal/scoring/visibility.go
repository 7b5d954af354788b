package scoring

import (
	"context"
	"fmt"
)

// ─── PAGE VISIBILITY ─────────────────────────────────────────────────────────

// pageVisible checks the page requirement, then include_on (all processed),
// then exclude_on (none processed). It only reads state.
func (b scoreBook) pageVisible(ctx context.Context, p *Page) (bool, error) {
	if r := p.Requirement; r != nil {
		s, err := b.getOrInit(ctx, r.DeclarationID)
		if err != nil {
			return false, fmt.Errorf("page %q: %w", p.Name, err)
		}
		if !r.Comparison.Holds(s, r.Threshold) {
			return false, nil
		}
	}

	for _, qid := range p.IncludeOn {
		processed, err := b.processed(ctx, qid)
		if err != nil {
			return false, err
		}
		if !processed {
			return false, nil
		}
	}
	for _, qid := range p.ExcludeOn {
		processed, err := b.processed(ctx, qid)
		if err != nil {
			return false, err
		}
		if processed {
			return false, nil
		}
	}
	return true, nil
}

func (b scoreBook) processed(ctx context.Context, questionID int64) (bool, error) {
	a, found, err := b.tx.Answer(ctx, questionID)
	if err != nil {
		return false, fmt.Errorf("scoring: load answer %d: %w", questionID, err)
	}
	return found && a.Processed, nil
}

// nextVisible walks pages in position order starting after position and
// returns the first visible one, or nil.
func (b scoreBook) nextVisible(ctx context.Context, after int) (*Page, error) {
	for _, p := range b.snap.Pages() {
		if p.Position <= after {
			continue
		}
		ok, err := b.pageVisible(ctx, p)
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
	}
	return nil, nil
}

// previousVisible is nextVisible in reverse.
func (b scoreBook) previousVisible(ctx context.Context, before int) (*Page, error) {
	pages := b.snap.Pages()
	for i := len(pages) - 1; i >= 0; i-- {
		p := pages[i]
		if p.Position >= before {
			continue
		}
		ok, err := b.pageVisible(ctx, p)
		if err != nil {
			return nil, err
		}
		if ok {
			return p, nil
		}
	}
	return nil, nil
}
