package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/harunaka/careshift/pkg/core/model"
	"github.com/harunaka/careshift/pkg/core/scoring"
)

// StaffLookupStore defines the directory access needed for ad hoc scoring
type StaffLookupStore interface {
	GetStaff(ctx context.Context, id string) (*model.StaffMember, error)
}

// ScoreCompatibility scores two staff members under the named profile.
// RequiredSkills and shiftTypeCode describe the slot context and may be
// empty for the general similarity profile.
func ScoreCompatibility(
	ctx context.Context,
	store StaffLookupStore,
	subjectID, candidateID string,
	requiredSkills []string,
	shiftTypeCode string,
	profile scoring.Profile,
	logger *zap.Logger,
) (model.ScoreBreakdown, error) {
	subject, err := store.GetStaff(ctx, subjectID)
	if err != nil {
		return model.ScoreBreakdown{}, err
	}
	candidate, err := store.GetStaff(ctx, candidateID)
	if err != nil {
		return model.ScoreBreakdown{}, err
	}

	breakdown, err := scoring.Score(scoring.Request{
		Subject:        *subject,
		Candidate:      *candidate,
		RequiredSkills: requiredSkills,
		ShiftTypeCode:  shiftTypeCode,
	}, profile)
	if err != nil {
		return model.ScoreBreakdown{}, err
	}

	logger.Info("Scored compatibility",
		zap.String("subject", subjectID),
		zap.String("candidate", candidateID),
		zap.String("profile", string(profile)),
		zap.Int("total", breakdown.Total))
	return breakdown, nil
}
