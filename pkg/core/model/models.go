package model

// DateFormat is the canonical date layout used throughout the engine
const DateFormat = "2006-01-02"

// TimeBucket identifies a time-of-day portion of a working day
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketMidday    TimeBucket = "midday"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
)

func (b TimeBucket) IsValid() bool {
	return b == BucketMorning || b == BucketMidday || b == BucketAfternoon || b == BucketEvening
}

// Skill represents a single qualification held by a staff member
type Skill struct {
	Name            string
	Level           int // 1-5
	Certified       bool
	ExperienceYears int
}

// StaffMember represents a care worker in the facility roster.
// Instances are owned by the staff directory and are read-only here;
// mutation happens through external HR processes only.
type StaffMember struct {
	ID                  string
	Name                string
	Category            string
	EmploymentType      string
	Skills              []Skill
	WorkPatterns        []string // shift type codes this member may work
	Availability        map[TimeBucket]bool
	CurrentWorkload     int     // 0-100
	RecentPerformance   float64 // 1.0-5.0
	PreferredShiftTypes []string
	TeamAffinity        []string // staff IDs, resolved through the directory
	WeeklyHourCap       int
}

// HasSkill returns true if the member holds the named skill at any level
func (s *StaffMember) HasSkill(name string) bool {
	for _, sk := range s.Skills {
		if sk.Name == name {
			return true
		}
	}
	return false
}

// SkillLevel returns the member's level for the named skill, or 0 if absent
func (s *StaffMember) SkillLevel(name string) int {
	for _, sk := range s.Skills {
		if sk.Name == name {
			return sk.Level
		}
	}
	return 0
}

// CoversAll returns true if the member holds every skill in required
func (s *StaffMember) CoversAll(required []string) bool {
	for _, name := range required {
		if !s.HasSkill(name) {
			return false
		}
	}
	return true
}

// CanWork returns true if the member is eligible for the given shift type
func (s *StaffMember) CanWork(shiftTypeCode string) bool {
	for _, code := range s.WorkPatterns {
		if code == shiftTypeCode {
			return true
		}
	}
	return false
}

// Prefers returns true if the shift type is among the member's preferences
func (s *StaffMember) Prefers(shiftTypeCode string) bool {
	for _, code := range s.PreferredShiftTypes {
		if code == shiftTypeCode {
			return true
		}
	}
	return false
}

// IsAffine returns true if the member's affinity list contains the given staff ID
func (s *StaffMember) IsAffine(staffID string) bool {
	for _, id := range s.TeamAffinity {
		if id == staffID {
			return true
		}
	}
	return false
}

// MaxExperienceYears returns the member's longest experience across all skills
func (s *StaffMember) MaxExperienceYears() int {
	maxYears := 0
	for _, sk := range s.Skills {
		if sk.ExperienceYears > maxYears {
			maxYears = sk.ExperienceYears
		}
	}
	return maxYears
}

// ShiftType represents a fixed shift time window. Immutable reference data.
type ShiftType struct {
	Code          string
	Name          string
	StartTime     string // "07:00"
	EndTime       string // "16:00"
	DurationHours float64
}

// ShiftSlot represents one assignable slot on a date.
// A slot holds at most one active assignment; Version supports
// optimistic concurrency on commit.
type ShiftSlot struct {
	ID              string
	Date            string // DateFormat
	ShiftTypeCode   string
	RequiredSkills  []string
	AssignedStaffID string // empty when unassigned
	Priority        int    // 1-5
	Version         int
}

// SpecialEventKind describes how a special event affects requirement resolution
type SpecialEventKind string

const (
	EventIncreaseRegular SpecialEventKind = "increase_regular"
	EventExcludeFloor    SpecialEventKind = "exclude_from_floor"
	EventCustom          SpecialEventKind = "custom"
)

func (k SpecialEventKind) IsValid() bool {
	return k == EventIncreaseRegular || k == EventExcludeFloor || k == EventCustom
}

// SpecialEventRule is a date-ranged modifier on staffing requirements
// or floor-duty eligibility
type SpecialEventRule struct {
	ID             string
	Type           string
	Title          string
	StartDate      string // DateFormat, inclusive
	EndDate        string // DateFormat, inclusive
	TargetStaffIDs []string
	Kind           SpecialEventKind
	Delta          int // headcount delta for increase_regular and custom kinds
}

// Covers returns true if the rule's date range contains the given date
func (r *SpecialEventRule) Covers(date string) bool {
	return r.StartDate <= date && date <= r.EndDate
}

// RequestType distinguishes plain leave from shift-exchange requests
type RequestType string

const (
	RequestRegular  RequestType = "regular"
	RequestExchange RequestType = "exchange"
)

// RequestStatus is the lifecycle state of a leave/exchange request
type RequestStatus string

const (
	StatusPending         RequestStatus = "pending"
	StatusExchangePending RequestStatus = "exchange_pending"
	StatusApproved        RequestStatus = "approved"
	StatusRejected        RequestStatus = "rejected"
)

// IsTerminal returns true once no further transitions are allowed
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request represents a leave or shift-exchange request raised by a staff member
type Request struct {
	ID             string
	StaffID        string
	Dates          []string // DateFormat
	Reason         string
	Type           RequestType
	Status         RequestStatus
	OriginalSlotID string // set for exchange requests
}

// RiskLevel buckets the additive risk score of an exchange proposal
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ImpactAnalysis quantifies the expected effect of accepting a proposal,
// each dimension on a 0-100 scale
type ImpactAnalysis struct {
	ServiceQuality int
	StaffWorkload  int
	SkillCoverage  int
	Continuity     int
}

// ExchangeProposal is one ranked, risk-assessed replacement candidate
// for a requested leave or swap
type ExchangeProposal struct {
	ID               string
	CandidateStaffID string
	OriginalSlot     ShiftSlot
	ProposedSlot     ShiftSlot
	Score            ScoreBreakdown
	RiskLevel        RiskLevel
	Impact           ImpactAnalysis
	Benefits         []string
	Risks            []string
	Alternatives     []string
}

// ScoreBreakdown is the result of a compatibility scoring run.
// Components hold each weighted contribution; Total is their rounded sum.
type ScoreBreakdown struct {
	Total      int
	Components map[string]float64
}

// TaskKind labels what an assigned staff member does within a slot
type TaskKind string

const (
	TaskHandOver   TaskKind = "hand_over"
	TaskFloor      TaskKind = "floor"
	TaskBackOffice TaskKind = "back_office"
	TaskBreak      TaskKind = "break"
)

// TaskAssignment is one staff member's duty within a slot of a generated pattern
type TaskAssignment struct {
	StaffID string
	Task    TaskKind
	Detail  string // concrete task name, e.g. "medication round"
}

// SlotKey identifies a (date, shift type) cell in a schedule
type SlotKey struct {
	Date          string
	ShiftTypeCode string
}

// Finding records a requirement the generated pattern could not satisfy
type Finding struct {
	Date          string
	ShiftTypeCode string
	Required      int
	Assigned      int
}

// PatternMetrics holds the aggregate quality measures behind a pattern's score
type PatternMetrics struct {
	LeaveSatisfaction   float64 // fraction of requested leave honored
	RequirementCoverage float64 // fraction of (date, shift type) cells fully staffed
	LoadVariance        float64 // variance of per-staff assignment counts
	WeeklyHours         map[string]float64
}

// SchedulePattern is one complete candidate schedule for a period.
// Ephemeral until an admin commits it.
type SchedulePattern struct {
	ID          string
	Name        string
	Assignments map[SlotKey][]TaskAssignment
	Score       int
	Metrics     PatternMetrics
	Pros        []string
	Cons        []string
	Findings    []Finding
}

// ApprovalAction is what an admin did to a request
type ApprovalAction string

const (
	ActionApproved ApprovalAction = "approved"
	ActionRejected ApprovalAction = "rejected"
)

// ApprovalRecord is an append-only audit entry for a request status transition.
// Records are never mutated or deleted once written.
type ApprovalRecord struct {
	ID             string
	RequestID      string
	Action         ApprovalAction
	PerformedBy    string
	PerformedAt    string // RFC3339
	Notes          string
	PreviousStatus RequestStatus
	NewStatus      RequestStatus
}
