package scoring

import (
	"context"
	"fmt"
)

// ─── TECHNOLOGY VERDICTS ─────────────────────────────────────────────────────

// verdict scores t for the inquiry behind book. Groups with sub-technologies
// vote; everything else multiplies its link outcomes.
func (b scoreBook) verdict(ctx context.Context, t *Technology) (Verdict, error) {
	if t.Kind == TechGroup && len(t.Subs) > 0 {
		return b.groupVerdict(ctx, t)
	}
	return b.plainVerdict(ctx, t)
}

// plainVerdict multiplies the link outcomes (1 approve, 0 deny, 0.5 between).
// The product is 1 only if every link approves and 0 as soon as one denies,
// so two flags are enough to track it.
func (b scoreBook) plainVerdict(ctx context.Context, t *Technology) (Verdict, error) {
	allApprove, anyDeny := true, false
	for _, l := range t.Links {
		s, err := b.getOrInit(ctx, l.DeclarationID)
		if err != nil {
			return "", fmt.Errorf("technology %q: %w", t.Name, err)
		}
		switch {
		case s >= l.Approve:
		case s <= l.Deny:
			anyDeny = true
			allApprove = false
		default:
			allApprove = false
		}
	}
	switch {
	case anyDeny:
		return VerdictFail, nil
	case allApprove:
		return VerdictSuccess, nil
	}
	return VerdictUnknown, nil
}

// groupVerdict needs a strict majority of decided sub-verdicts before it
// commits to anything.
func (b scoreBook) groupVerdict(ctx context.Context, t *Technology) (Verdict, error) {
	allPass, allFail := true, true
	decided := 0
	for _, id := range t.Subs {
		sub, ok := b.snap.Technology(id)
		if !ok {
			return "", fmt.Errorf("%w: %d (sub-technology of %q)", ErrUnknownTechnology, id, t.Name)
		}
		v, err := b.verdict(ctx, sub)
		if err != nil {
			return "", err
		}
		if v != VerdictSuccess {
			allPass = false
		}
		if v != VerdictFail {
			allFail = false
		}
		if v != VerdictUnknown {
			decided++
		}
	}

	if decided*2 <= len(t.Subs) {
		return VerdictUnknown, nil
	}
	switch {
	case allPass:
		return VerdictSuccess, nil
	case allFail:
		return VerdictFail, nil
	}
	return VerdictVaries, nil
}
