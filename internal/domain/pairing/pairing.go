// Package pairing turns a pool of candidates into pair and solo outcomes.
package pairing

import (
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/scoring"
)

// Select greedily pairs candidates in input order.
//
// Each unpaired candidate takes the highest scoring unpaired partner, even
// a negative one; ties go to the earliest partner in input order. When a
// candidate is the last unpaired one, or no partner is eligible, it gets a
// Solo outcome. Candidates sharing a SubjectID are never paired with each
// other. Every candidate appears in exactly one outcome.
func Select(cands []model.Candidate, score scoring.Func) []model.Outcome {
	if len(cands) == 0 {
		return []model.Outcome{}
	}
	if score == nil {
		score = scoring.Compatibility
	}

	paired := make(map[string]struct{}, len(cands))
	outcomes := make([]model.Outcome, 0, len(cands)/2+1)
	remaining := len(cands)

	for i := range cands {
		p1 := cands[i]
		if _, ok := paired[p1.RequestID]; ok {
			continue
		}
		if remaining == 1 {
			paired[p1.RequestID] = struct{}{}
			remaining--
			outcomes = append(outcomes, model.NewSolo(p1))
			continue
		}

		best := -1
		bestScore := 0
		for j := range cands {
			if j == i {
				continue
			}
			p2 := cands[j]
			if _, ok := paired[p2.RequestID]; ok {
				continue
			}
			if p2.SubjectID == p1.SubjectID {
				continue
			}
			s := score(p1, p2)
			if best < 0 || s > bestScore {
				best, bestScore = j, s
			}
		}

		paired[p1.RequestID] = struct{}{}
		if best < 0 {
			remaining--
			outcomes = append(outcomes, model.NewSolo(p1))
			continue
		}
		paired[cands[best].RequestID] = struct{}{}
		remaining -= 2
		outcomes = append(outcomes, model.NewPair(p1, cands[best]))
	}

	return outcomes
}
