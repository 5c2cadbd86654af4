package scoring

// Profile names a weighting profile for the scorer. The same engine serves
// staff-to-staff affinity and candidate-to-slot fitness by swapping weights.
type Profile string

const (
	// ProfileGeneralSimilarity scores staff-to-staff affinity independent
	// of a specific slot
	ProfileGeneralSimilarity Profile = "general_similarity"

	// ProfileExchangeFitness scores a candidate against a specific slot
	// for a shift exchange
	ProfileExchangeFitness Profile = "exchange_fitness"
)

func (p Profile) IsValid() bool {
	return p == ProfileGeneralSimilarity || p == ProfileExchangeFitness
}

// General similarity component weights (points, sum to 100)
const (
	// WeightSkillOverlap rewards shared skills between the two staff
	WeightSkillOverlap = 30

	// WeightCategoryMatch rewards staff in the same category.
	// Different categories still score half credit.
	WeightCategoryMatch = 20

	// WeightPatternOverlap rewards shared shift-type eligibility
	WeightPatternOverlap = 20

	// WeightRequiredCoverage rewards coverage of the requested skill set.
	// Scores full credit when no specific requirement is given.
	WeightRequiredCoverage = 20

	// WeightExperienceCloseness rewards similar experience-year totals
	WeightExperienceCloseness = 10
)

// Exchange fitness component weights (points, sum to 100)
const (
	// WeightFullCoverage is all-or-nothing on the slot's required skills
	WeightFullCoverage = 40

	// WeightRequiredLevel rewards higher levels across the required skills
	WeightRequiredLevel = 20

	// WeightWorkloadHeadroom rewards candidates with spare capacity
	WeightWorkloadHeadroom = 15

	// WeightPerformance rewards strong recent performance
	WeightPerformance = 10

	// WeightTeamAffinity rewards candidates already affine with the subject
	WeightTeamAffinity = 10

	// WeightPreferenceMatch rewards candidates who prefer the slot's shift type
	WeightPreferenceMatch = 5
)

// WorkloadCeiling is the hard prerequisite bound: staff at or above this
// workload are excluded from candidacy before scoring, not penalized within it
const WorkloadCeiling = 95
