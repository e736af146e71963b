// internal/app/workflow/merge.go
package workflow

import (
	"github.com/bubonicfred/5minitz-sub000/internal/domain/models"
)

// MergeProjection merges the carry-forward candidates of a just-finalized
// minutes into the series' topic projection.
//
// Rules (position-preserving, latest wins):
//   - a projection topic with a matching candidate is replaced in place;
//   - a projection topic that appeared in the minutes but produced no
//     candidate is resolved and removed;
//   - a projection topic the minutes never contained is left untouched;
//   - candidates without a projection entry are fresh topics and are placed
//     in front, keeping their relative order from the minutes.
//
// minutesTopicIDs is the id set of every topic in the finalized minutes,
// including resolved ones; it distinguishes "resolved" from "not touched".
func MergeProjection(existing, candidates []models.Topic, minutesTopicIDs map[string]struct{}) []models.Topic {
	// id → position side table, built once per merge.
	pos := make(map[string]int, len(existing))
	for i := range existing {
		pos[existing[i].ID] = i
	}

	replacements := make(map[int]models.Topic, len(candidates))
	var fresh []models.Topic
	for _, c := range candidates {
		if i, ok := pos[c.ID]; ok {
			replacements[i] = c
		} else {
			fresh = append(fresh, c)
		}
	}

	out := make([]models.Topic, 0, len(fresh)+len(existing))
	out = append(out, fresh...)
	for i := range existing {
		if c, ok := replacements[i]; ok {
			out = append(out, c)
			continue
		}
		if _, touched := minutesTopicIDs[existing[i].ID]; touched {
			// Present in the minutes but no longer a candidate: resolved.
			continue
		}
		out = append(out, existing[i])
	}
	return out
}

// carryForwardCandidates tailors every topic of the minutes that survives
// finalization and returns the candidates plus the full topic id set.
func carryForwardCandidates(m *models.Minutes) ([]models.Topic, map[string]struct{}) {
	ids := make(map[string]struct{}, len(m.Topics))
	var candidates []models.Topic
	for i := range m.Topics {
		t := &m.Topics[i]
		ids[t.ID] = struct{}{}
		if t.CanBeCarriedForward() {
			candidates = append(candidates, t.TailorForCarryForward())
		}
	}
	return candidates, ids
}

// ReplayProjection rebuilds the series projection from scratch out of the
// given finalized minutes, which must be ordered oldest-first. Unfinalize
// uses this instead of reversing the last merge so the result stays correct
// even if the projection was touched in between.
func ReplayProjection(finalized []models.Minutes) []models.Topic {
	proj := []models.Topic{}
	for i := range finalized {
		candidates, ids := carryForwardCandidates(&finalized[i])
		proj = MergeProjection(proj, candidates, ids)
	}
	return proj
}
