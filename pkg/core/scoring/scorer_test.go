package scoring

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harunaka/careshift/pkg/core/model"
)

func staffWith(id string, skills []model.Skill) model.StaffMember {
	return model.StaffMember{
		ID:                id,
		Category:          "care",
		Skills:            skills,
		WorkPatterns:      []string{"early", "day"},
		CurrentWorkload:   50,
		RecentPerformance: 4.0,
	}
}

func TestScore_TotalWithinBounds(t *testing.T) {
	subject := staffWith("s1", []model.Skill{{Name: "bodyCare", Level: 4, ExperienceYears: 6}})
	candidates := []model.StaffMember{
		staffWith("c1", nil),
		staffWith("c2", []model.Skill{{Name: "bodyCare", Level: 5, ExperienceYears: 20}}),
		staffWith("c3", []model.Skill{
			{Name: "bodyCare", Level: 1},
			{Name: "mealAssist", Level: 2},
			{Name: "nightWatch", Level: 3},
		}),
	}

	for _, profile := range []Profile{ProfileGeneralSimilarity, ProfileExchangeFitness} {
		for _, candidate := range candidates {
			breakdown, err := Score(Request{
				Subject:        subject,
				Candidate:      candidate,
				RequiredSkills: []string{"bodyCare"},
				ShiftTypeCode:  "day",
			}, profile)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, breakdown.Total, 0)
			assert.LessOrEqual(t, breakdown.Total, 100)
		}
	}
}

func TestScore_GeneralSimilarity_IdenticalStaff(t *testing.T) {
	subject := staffWith("s1", []model.Skill{
		{Name: "bodyCare", Level: 4, ExperienceYears: 6},
		{Name: "mealAssist", Level: 3, ExperienceYears: 6},
	})
	candidate := subject
	candidate.ID = "c1"

	breakdown, err := Score(Request{Subject: subject, Candidate: candidate}, ProfileGeneralSimilarity)
	require.NoError(t, err)

	// Identical skill set, category, patterns, experience; no slot
	// requirement given so coverage scores full credit
	assert.Equal(t, 100, breakdown.Total)
}

func TestScore_GeneralSimilarity_CategoryMismatchHalfCredit(t *testing.T) {
	subject := staffWith("s1", []model.Skill{{Name: "bodyCare", Level: 4}})
	candidate := staffWith("c1", []model.Skill{{Name: "bodyCare", Level: 4}})
	candidate.Category = "nursing"

	breakdown, err := Score(Request{Subject: subject, Candidate: candidate}, ProfileGeneralSimilarity)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*WeightCategoryMatch, breakdown.Components["category_match"], 1e-9)
}

func TestScore_ExchangeFitness_FullCoverageIsAllOrNothing(t *testing.T) {
	subject := staffWith("s1", nil)
	required := []string{"bodyCare", "mealAssist"}

	full := staffWith("c1", []model.Skill{
		{Name: "bodyCare", Level: 4},
		{Name: "mealAssist", Level: 4},
	})
	partial := staffWith("c2", []model.Skill{{Name: "bodyCare", Level: 5}})

	fullBreakdown, err := Score(Request{
		Subject: subject, Candidate: full, RequiredSkills: required, ShiftTypeCode: "day",
	}, ProfileExchangeFitness)
	require.NoError(t, err)

	partialBreakdown, err := Score(Request{
		Subject: subject, Candidate: partial, RequiredSkills: required, ShiftTypeCode: "day",
	}, ProfileExchangeFitness)
	require.NoError(t, err)

	assert.InDelta(t, float64(WeightFullCoverage), fullBreakdown.Components["full_coverage"], 1e-9)
	assert.InDelta(t, 0.0, partialBreakdown.Components["full_coverage"], 1e-9)
}

func TestScore_ExchangeFitness_ScenarioRanking(t *testing.T) {
	// Requester with workload 85 needs cover for a slot requiring
	// bodyCare and mealAssist
	requester := staffWith("req", []model.Skill{
		{Name: "bodyCare", Level: 3},
		{Name: "mealAssist", Level: 3},
	})
	requester.CurrentWorkload = 85

	// Candidate B: workload 70, both skills, team-affine with requester
	candidateB := staffWith("b", []model.Skill{
		{Name: "bodyCare", Level: 4},
		{Name: "mealAssist", Level: 4},
	})
	candidateB.CurrentWorkload = 70
	candidateB.TeamAffinity = []string{"req"}

	// Candidate C: workload 90, one skill, not team-affine
	candidateC := staffWith("c", []model.Skill{{Name: "bodyCare", Level: 3}})
	candidateC.CurrentWorkload = 90

	required := []string{"bodyCare", "mealAssist"}

	scoreB, err := Score(Request{
		Subject: requester, Candidate: candidateB, RequiredSkills: required, ShiftTypeCode: "day",
	}, ProfileExchangeFitness)
	require.NoError(t, err)

	scoreC, err := Score(Request{
		Subject: requester, Candidate: candidateC, RequiredSkills: required, ShiftTypeCode: "day",
	}, ProfileExchangeFitness)
	require.NoError(t, err)

	assert.Greater(t, scoreB.Total, scoreC.Total)
}

func TestScore_UnknownProfile(t *testing.T) {
	_, err := Score(Request{}, Profile("bogus"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestMeetsPrerequisites(t *testing.T) {
	candidate := staffWith("c1", []model.Skill{
		{Name: "bodyCare", Level: 4},
		{Name: "mealAssist", Level: 4},
	})

	assert.True(t, MeetsPrerequisites(candidate, []string{"bodyCare"}, "day"))

	// Missing a required skill
	assert.False(t, MeetsPrerequisites(candidate, []string{"nightWatch"}, "day"))

	// Ineligible work pattern
	assert.False(t, MeetsPrerequisites(candidate, []string{"bodyCare"}, "night"))

	// Workload at the ceiling
	overloaded := candidate
	overloaded.CurrentWorkload = WorkloadCeiling
	assert.False(t, MeetsPrerequisites(overloaded, []string{"bodyCare"}, "day"))
}

func TestAverageRequiredLevel_MissingSkillCountsAsZero(t *testing.T) {
	candidate := staffWith("c1", []model.Skill{{Name: "bodyCare", Level: 4}})

	avg := AverageRequiredLevel(candidate, []string{"bodyCare", "mealAssist"})
	assert.InDelta(t, 2.0, avg, 1e-9)
}
