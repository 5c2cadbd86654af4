// Package exchange generates ranked, risk-assessed replacement proposals
// for a staff member's leave or swap request. Candidates are filtered on
// hard prerequisites, scored with the exchange-fitness profile, and the
// top k receive a proposed alternate slot plus a risk and impact workup.
package exchange

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/scoring"
)

// DefaultMaxProposals is the default bound on returned proposals
const DefaultMaxProposals = 3

// Risk factor contributions. The additive total maps to a level:
// >= 5 high, 3-4 medium, <= 2 low.
const (
	riskHighWorkload      = 2 // candidate workload above 85
	riskHighPrioritySlot  = 2 // original slot priority 4 or 5
	riskLowSkillLevel     = 2 // average required-skill level below 3
	riskModestPerformance = 1 // recent performance below 4.0
)

// Engine produces exchange proposals. Safe for concurrent use; all inputs
// are read snapshots.
type Engine struct {
	maxProposals int
	newID        func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithMaxProposals overrides the proposal bound k (default 3)
func WithMaxProposals(k int) Option {
	return func(e *Engine) {
		e.maxProposals = k
	}
}

// WithIDSource overrides the proposal ID source
func WithIDSource(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// NewEngine creates an Engine with the default bound and UUID proposal IDs
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		maxProposals: DefaultMaxProposals,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProposeInput carries the read snapshot for one proposal run. Candidates
// may include the requester; the engine filters them out.
type ProposeInput struct {
	Requester    model.StaffMember
	OriginalSlot model.ShiftSlot
	Candidates   []model.StaffMember
}

type scoredCandidate struct {
	staff model.StaffMember
	score model.ScoreBreakdown
}

// Propose runs the full pipeline and returns proposals ranked by fitness.
// An empty result means no candidate cleared the prerequisites; that is a
// normal, user-visible outcome, not an engine failure.
func (e *Engine) Propose(in ProposeInput) ([]model.ExchangeProposal, error) {
	slot := in.OriginalSlot

	// Hard prerequisite filter before any scoring
	var eligible []model.StaffMember
	for _, candidate := range in.Candidates {
		if candidate.ID == in.Requester.ID {
			continue
		}
		if !scoring.MeetsPrerequisites(candidate, slot.RequiredSkills, slot.ShiftTypeCode) {
			continue
		}
		eligible = append(eligible, candidate)
	}
	if len(eligible) == 0 {
		return []model.ExchangeProposal{}, nil
	}

	scored := make([]scoredCandidate, 0, len(eligible))
	for _, candidate := range eligible {
		breakdown, err := scoring.Score(scoring.Request{
			Subject:        in.Requester,
			Candidate:      candidate,
			RequiredSkills: slot.RequiredSkills,
			ShiftTypeCode:  slot.ShiftTypeCode,
		}, scoring.ProfileExchangeFitness)
		if err != nil {
			return nil, fmt.Errorf("failed to score candidate %s: %w", candidate.ID, err)
		}
		scored = append(scored, scoredCandidate{staff: candidate, score: breakdown})
	}

	// Rank descending; ties broken by ID to keep output deterministic
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score.Total != scored[j].score.Total {
			return scored[i].score.Total > scored[j].score.Total
		}
		return scored[i].staff.ID < scored[j].staff.ID
	})

	limit := e.maxProposals
	if limit > len(scored) {
		limit = len(scored)
	}

	proposals := make([]model.ExchangeProposal, 0, limit)
	for rank := 0; rank < limit; rank++ {
		proposal, err := e.buildProposal(in, scored[rank], rank)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	return proposals, nil
}

func (e *Engine) buildProposal(in ProposeInput, sc scoredCandidate, rank int) (model.ExchangeProposal, error) {
	slot := in.OriginalSlot
	candidate := sc.staff

	proposedSlot, err := proposedSlotFor(slot, candidate, rank)
	if err != nil {
		return model.ExchangeProposal{}, err
	}

	avgLevel := scoring.AverageRequiredLevel(candidate, slot.RequiredSkills)
	riskScore := RiskScore(candidate, slot, avgLevel)
	riskLevel := LevelFor(riskScore)

	benefits, risks, alternatives := narratives(in.Requester, candidate, slot, avgLevel, riskLevel)

	return model.ExchangeProposal{
		ID:               e.newID(),
		CandidateStaffID: candidate.ID,
		OriginalSlot:     slot,
		ProposedSlot:     proposedSlot,
		Score:            sc.score,
		RiskLevel:        riskLevel,
		Impact:           impact(in.Requester, candidate, slot),
		Benefits:         benefits,
		Risks:            risks,
		Alternatives:     alternatives,
	}, nil
}

// proposedSlotFor derives the alternate slot offered to the candidate at the
// given rank. The date offset cycles with rank: +(rank+1) weeks, -(rank+1)
// weeks, +(rank+2) days. The candidate's preferred shift type is kept where
// one exists.
func proposedSlotFor(original model.ShiftSlot, candidate model.StaffMember, rank int) (model.ShiftSlot, error) {
	date, err := time.Parse(model.DateFormat, original.Date)
	if err != nil {
		return model.ShiftSlot{}, fmt.Errorf("invalid slot date %q: %w", original.Date, model.ErrValidation)
	}

	switch rank % 3 {
	case 0:
		date = date.AddDate(0, 0, 7*(rank+1))
	case 1:
		date = date.AddDate(0, 0, -7*(rank+1))
	case 2:
		date = date.AddDate(0, 0, rank+2)
	}

	shiftType := original.ShiftTypeCode
	for _, preferred := range candidate.PreferredShiftTypes {
		if candidate.CanWork(preferred) {
			shiftType = preferred
			break
		}
	}

	return model.ShiftSlot{
		ID:             uuid.NewString(),
		Date:           date.Format(model.DateFormat),
		ShiftTypeCode:  shiftType,
		RequiredSkills: original.RequiredSkills,
		Priority:       original.Priority,
	}, nil
}

// RiskScore sums the additive risk factors for a candidate covering a slot
func RiskScore(candidate model.StaffMember, slot model.ShiftSlot, avgRequiredLevel float64) int {
	score := 0
	if candidate.CurrentWorkload > 85 {
		score += riskHighWorkload
	}
	if slot.Priority >= 4 {
		score += riskHighPrioritySlot
	}
	if avgRequiredLevel < 3 {
		score += riskLowSkillLevel
	}
	if candidate.RecentPerformance < 4.0 {
		score += riskModestPerformance
	}
	return score
}

// LevelFor maps an additive risk score to a level. Boundaries are exact:
// 2 is low, 3 and 4 are medium, 5 is high.
func LevelFor(riskScore int) model.RiskLevel {
	switch {
	case riskScore >= 5:
		return model.RiskHigh
	case riskScore >= 3:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

func impact(requester, candidate model.StaffMember, slot model.ShiftSlot) model.ImpactAnalysis {
	serviceQuality := 100
	if requester.RecentPerformance > 0 {
		quality := int(math.Round(candidate.RecentPerformance / requester.RecentPerformance * 100))
		if quality < serviceQuality {
			serviceQuality = quality
		}
	}

	workload := 100 - candidate.CurrentWorkload
	if workload < 0 {
		workload = 0
	}

	skillCoverage := 100
	if len(slot.RequiredSkills) > 0 {
		matched := 0
		for _, name := range slot.RequiredSkills {
			if candidate.HasSkill(name) {
				matched++
			}
		}
		skillCoverage = matched * 100 / len(slot.RequiredSkills)
	}

	continuity := 65
	if requester.IsAffine(candidate.ID) || candidate.IsAffine(requester.ID) {
		continuity = 85
	}

	return model.ImpactAnalysis{
		ServiceQuality: serviceQuality,
		StaffWorkload:  workload,
		SkillCoverage:  skillCoverage,
		Continuity:     continuity,
	}
}

func narratives(requester, candidate model.StaffMember, slot model.ShiftSlot, avgLevel float64, level model.RiskLevel) (benefits, risks, alternatives []string) {
	if candidate.RecentPerformance >= 4.5 {
		benefits = append(benefits, "candidate has a strong recent performance record")
	}
	if candidate.CurrentWorkload <= 60 {
		benefits = append(benefits, "candidate has ample workload headroom")
	}
	if candidate.IsAffine(requester.ID) || requester.IsAffine(candidate.ID) {
		benefits = append(benefits, "candidate already works closely with the requester's team")
	}
	if candidate.Prefers(slot.ShiftTypeCode) {
		benefits = append(benefits, "slot matches the candidate's preferred shift type")
	}

	if candidate.CurrentWorkload > 85 {
		risks = append(risks, "candidate workload is already high")
	}
	if avgLevel < 3 {
		risks = append(risks, "required skill levels are below the target level")
	}
	if slot.Priority >= 4 {
		risks = append(risks, "original slot is high priority")
	}
	if candidate.RecentPerformance < 4.0 {
		risks = append(risks, "candidate's recent performance is below average")
	}

	if level == model.RiskMedium || level == model.RiskHigh {
		alternatives = append(alternatives,
			"shorten the shift and hand over early",
			"split coverage across two staff members",
		)
	}

	return benefits, risks, alternatives
}
