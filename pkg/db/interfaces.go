package db

import (
	"context"

	"github.com/harunaka/careshift/pkg/core/model"
)

// StaffFilter narrows a staff directory listing. Zero values match everything.
type StaffFilter struct {
	Category      string
	ShiftTypeCode string // only staff eligible for this shift type
	SkillName     string // only staff holding this skill
}

// StaffDirectory defines read-only access to the facility roster
type StaffDirectory interface {
	ListStaff(ctx context.Context, filter StaffFilter) ([]model.StaffMember, error)
	GetStaff(ctx context.Context, id string) (*model.StaffMember, error)
}

// ShiftCatalog defines access to the immutable shift type reference data
type ShiftCatalog interface {
	ListShiftTypes(ctx context.Context) ([]model.ShiftType, error)
}

// WeeklyRule is a recurring staffing rule expressed as an RRULE string
// (e.g. "FREQ=WEEKLY;BYDAY=SA,SU")
type WeeklyRule struct {
	RRule         string
	ShiftTypeCode string
	RequiredCount int
}

// DateOverride pins the required headcount for a single (date, shift type)
type DateOverride struct {
	Date          string // model.DateFormat
	ShiftTypeCode string
	RequiredCount int
}

// RequirementStore defines access to the layered staffing requirement rules
type RequirementStore interface {
	GetTemplate(ctx context.Context) (map[string]int, error)
	GetWeeklyRules(ctx context.Context) ([]WeeklyRule, error)
	GetDateOverrides(ctx context.Context) ([]DateOverride, error)
	GetSpecialEvents(ctx context.Context, startDate, endDate string) ([]model.SpecialEventRule, error)
}

// RequestStore defines access to leave/exchange requests and their audit trail
type RequestStore interface {
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, startDate, endDate string) ([]model.Request, error)
	SaveRequest(ctx context.Context, req *model.Request) error
	AppendHistory(ctx context.Context, record model.ApprovalRecord) error
	GetHistory(ctx context.Context, requestID string) ([]model.ApprovalRecord, error)
}

// SlotStore defines access to shift slots. CommitAssignment is the engine's
// single mutation point and must be serialized per slot: a commit whose
// expectedVersion no longer matches fails with model.ErrConflict and is
// safe to retry against fresh state.
type SlotStore interface {
	GetSlot(ctx context.Context, id string) (*model.ShiftSlot, error)
	ListSlots(ctx context.Context, startDate, endDate string) ([]model.ShiftSlot, error)
	FindStaffSlot(ctx context.Context, staffID, date string) (*model.ShiftSlot, error)
	CommitAssignment(ctx context.Context, slotID, staffID string, expectedVersion int) (*model.ShiftSlot, error)
}
