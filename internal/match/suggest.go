package match

import (
	"slices"
	"strings"

	"schemagraph/internal/index"
	"schemagraph/internal/model"
)

// Ranking thresholds.
const (
	// DefaultMinScore is the lowest score worth showing to a reviewer.
	DefaultMinScore = 0.5
	// DefaultAmbiguityThreshold is the score gap under which the top two
	// candidates are reported as ambiguous.
	DefaultAmbiguityThreshold = 0.1
)

// Candidate is a global property ranked as a mapping target for a local one.
type Candidate struct {
	Local  *model.Property
	Target *model.Property

	NameScore float64 // best of edit similarity and token overlap, 0-1
	TypeScore float64 // data type and unit agreement, 0-1
	Score     float64 // weighted combination used for ranking
}

// CandidateList is a ranked list of candidates.
type CandidateList []Candidate

// RankTargets scores every target against local and returns them best
// first. Ties are broken by target id.
func RankTargets(local *model.Property, targets []*model.Property) CandidateList {
	out := make(CandidateList, 0, len(targets))

	for _, target := range targets {
		if target.ID == local.ID {
			continue
		}

		nameScore := max(Similarity(local.Name, target.Name), TokenOverlap(local.Name, target.Name))
		typeScore := typeAgreement(local, target)

		out = append(out, Candidate{
			Local:     local,
			Target:    target,
			NameScore: nameScore,
			TypeScore: typeScore,
			Score:     combinedScore(nameScore, typeScore),
		})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Target.ID, b.Target.ID)
		}
	})

	return out
}

// Suggest ranks the properties of global schemas as targets for the
// property id, skipping targets it is already mapped to.
func Suggest(idx *index.Index, propertyID string) (CandidateList, error) {
	local := idx.Property(propertyID)
	if local == nil {
		return nil, model.NewError(model.ClassReferential, "property", propertyID, model.ErrNotFound, "")
	}

	mapped := make(map[string]bool)

	for _, mid := range idx.DocumentMappings(local.Schema) {
		if m := idx.Mapping(mid); m.SourceProperty == local.ID {
			mapped[m.TargetProperty] = true
		}
	}

	var targets []*model.Property

	for _, sid := range idx.GlobalSchemaIDs() {
		for _, pid := range idx.Schema(sid).Properties {
			p := idx.Property(pid)
			if p == nil || p.Schema != sid || mapped[p.ID] {
				continue
			}

			targets = append(targets, p)
		}
	}

	return RankTargets(local, targets), nil
}

// combinedScore weighs name similarity at 60% and type agreement at 40%.
func combinedScore(nameScore, typeScore float64) float64 {
	const (
		nameWeight = 0.6
		typeWeight = 0.4
	)

	return nameScore*nameWeight + typeScore*typeWeight
}

func typeAgreement(a, b *model.Property) float64 {
	score := 0.0

	switch {
	case a.Type == "" || b.Type == "":
		score = 0.5
	case a.Type == b.Type:
		score = 1
	case isNumeric(a.Type) && isNumeric(b.Type):
		score = 0.8
	}

	if a.Unit != "" && b.Unit != "" && a.Unit != b.Unit {
		// A differing unit still maps, through a unit conversion.
		score *= 0.75
	}

	return score
}

func isNumeric(dataType string) bool {
	return dataType == "number" || dataType == "measurement"
}

// Top returns the first n candidates.
func (c CandidateList) Top(n int) CandidateList {
	if n >= len(c) {
		return c
	}

	return c[:n]
}

// Best returns the best candidate, or nil if there are none.
func (c CandidateList) Best() *Candidate {
	if len(c) == 0 {
		return nil
	}

	return &c[0]
}

// IsAmbiguous returns true if the top two candidates are within threshold.
func (c CandidateList) IsAmbiguous(threshold float64) bool {
	if len(c) < 2 {
		return false
	}

	return c[0].Score-c[1].Score < threshold
}

// AboveThreshold returns the candidates scoring at least threshold.
func (c CandidateList) AboveThreshold(threshold float64) CandidateList {
	var out CandidateList

	for _, cand := range c {
		if cand.Score >= threshold {
			out = append(out, cand)
		}
	}

	return out
}

// Closest returns up to n names nearest to name by normalized similarity,
// best first, among those scoring at least DefaultMinScore.
func Closest(name string, names []string, n int) []string {
	type scored struct {
		name  string
		score float64
	}

	var hits []scored

	for _, cand := range names {
		if s := Similarity(name, cand); s >= DefaultMinScore {
			hits = append(hits, scored{cand, s})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return strings.Compare(a.name, b.name)
		}
	})

	out := make([]string, 0, min(n, len(hits)))
	for i := 0; i < len(hits) && i < n; i++ {
		out = append(out, hits[i].name)
	}

	return out
}
