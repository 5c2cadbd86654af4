// Package scoring computes 0-100 compatibility scores between staff members
// or between a staff member and a shift slot, under a named weight profile.
// Scoring is a pure function over its inputs and safe for concurrent use.
package scoring

import (
	"fmt"
	"math"

	"github.com/harunaka/careshift/pkg/core/model"
)

// Request carries the inputs for one scoring run. RequiredSkills and
// ShiftTypeCode describe the slot under consideration; both are optional
// for the general similarity profile.
type Request struct {
	Subject        model.StaffMember
	Candidate      model.StaffMember
	RequiredSkills []string
	ShiftTypeCode  string
}

// MeetsPrerequisites reports whether a candidate clears the hard
// prerequisites for a slot. Failing candidates are excluded before
// scoring rather than penalized within it.
func MeetsPrerequisites(candidate model.StaffMember, requiredSkills []string, shiftTypeCode string) bool {
	if candidate.CurrentWorkload >= WorkloadCeiling {
		return false
	}
	if !candidate.CoversAll(requiredSkills) {
		return false
	}
	if shiftTypeCode != "" && !candidate.CanWork(shiftTypeCode) {
		return false
	}
	return true
}

// Score runs the given profile over the request and returns the breakdown.
// Component entries hold each weighted contribution in points; Total is
// their rounded sum, always within 0-100.
func Score(req Request, profile Profile) (model.ScoreBreakdown, error) {
	var components map[string]float64

	switch profile {
	case ProfileGeneralSimilarity:
		components = generalSimilarity(req)
	case ProfileExchangeFitness:
		components = exchangeFitness(req)
	default:
		return model.ScoreBreakdown{}, fmt.Errorf("unknown scoring profile %q: %w",
			profile, model.ErrValidation)
	}

	sum := 0.0
	for _, points := range components {
		sum += points
	}
	total := int(math.Round(sum))

	if total < 0 || total > 100 {
		return model.ScoreBreakdown{}, fmt.Errorf("score %d outside 0-100: %w",
			total, model.ErrInvariant)
	}

	return model.ScoreBreakdown{Total: total, Components: components}, nil
}

func generalSimilarity(req Request) map[string]float64 {
	subject, candidate := req.Subject, req.Candidate

	categoryMatch := 0.5
	if subject.Category == candidate.Category {
		categoryMatch = 1.0
	}

	requiredCoverage := 1.0
	if len(req.RequiredSkills) > 0 {
		requiredCoverage = coverageRatio(candidate, req.RequiredSkills)
	}

	deltaYears := math.Abs(float64(subject.MaxExperienceYears() - candidate.MaxExperienceYears()))
	experienceCloseness := math.Max(0, 1-deltaYears/20)

	return map[string]float64{
		"skill_overlap":        overlapRatio(skillNames(subject), skillNames(candidate)) * WeightSkillOverlap,
		"category_match":       categoryMatch * WeightCategoryMatch,
		"pattern_overlap":      overlapRatio(subject.WorkPatterns, candidate.WorkPatterns) * WeightPatternOverlap,
		"required_coverage":    requiredCoverage * WeightRequiredCoverage,
		"experience_closeness": experienceCloseness * WeightExperienceCloseness,
	}
}

func exchangeFitness(req Request) map[string]float64 {
	subject, candidate := req.Subject, req.Candidate

	fullCoverage := 0.0
	if candidate.CoversAll(req.RequiredSkills) {
		fullCoverage = 1.0
	}

	affinity := 0.0
	if candidate.IsAffine(subject.ID) {
		affinity = 1.0
	}

	preference := 0.0
	if candidate.Prefers(req.ShiftTypeCode) {
		preference = 1.0
	}

	return map[string]float64{
		"full_coverage":     fullCoverage * WeightFullCoverage,
		"required_level":    AverageRequiredLevel(candidate, req.RequiredSkills) / 5 * WeightRequiredLevel,
		"workload_headroom": float64(100-candidate.CurrentWorkload) / 100 * WeightWorkloadHeadroom,
		"performance":       candidate.RecentPerformance / 5 * WeightPerformance,
		"team_affinity":     affinity * WeightTeamAffinity,
		"preference_match":  preference * WeightPreferenceMatch,
	}
}

// AverageRequiredLevel returns the candidate's mean level across the required
// skills, counting missing skills as level 0. With no required skills it
// falls back to the mean across all held skills.
func AverageRequiredLevel(candidate model.StaffMember, requiredSkills []string) float64 {
	if len(requiredSkills) == 0 {
		if len(candidate.Skills) == 0 {
			return 0
		}
		sum := 0
		for _, sk := range candidate.Skills {
			sum += sk.Level
		}
		return float64(sum) / float64(len(candidate.Skills))
	}

	sum := 0
	for _, name := range requiredSkills {
		sum += candidate.SkillLevel(name)
	}
	return float64(sum) / float64(len(requiredSkills))
}

// coverageRatio is the fraction of required skills the candidate holds
func coverageRatio(candidate model.StaffMember, requiredSkills []string) float64 {
	matched := 0
	for _, name := range requiredSkills {
		if candidate.HasSkill(name) {
			matched++
		}
	}
	return float64(matched) / float64(len(requiredSkills))
}

// overlapRatio is the size of the intersection over the size of the union
func overlapRatio(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	inA := make(map[string]bool, len(a))
	for _, s := range a {
		inA[s] = true
	}

	union := make(map[string]bool, len(a)+len(b))
	for _, s := range a {
		union[s] = true
	}
	shared := make(map[string]bool)
	for _, s := range b {
		if inA[s] {
			shared[s] = true
		}
		union[s] = true
	}

	return float64(len(shared)) / float64(len(union))
}

func skillNames(s model.StaffMember) []string {
	names := make([]string, len(s.Skills))
	for i, sk := range s.Skills {
		names[i] = sk.Name
	}
	return names
}
