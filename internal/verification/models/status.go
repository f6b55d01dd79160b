package models

import "strings"

// Status is the lifecycle state of a submission. The nine provider statuses
// are canonical; StatusNeedsMoreInfo is local to the review workflow.
type Status string

const (
	StatusNotStarted            Status = "not_started"
	StatusIncomplete            Status = "incomplete"
	StatusUnderReview           Status = "under_review"
	StatusAwaitingQuestionnaire Status = "awaiting_questionnaire"
	StatusAwaitingUBO           Status = "awaiting_ubo"
	StatusApproved              Status = "approved"
	StatusRejected              Status = "rejected"
	StatusPaused                Status = "paused"
	StatusOffboarded            Status = "offboarded"

	StatusNeedsMoreInfo Status = "needs_more_info"
)

// CanonicalStatuses is the closed set Normalize maps into.
var CanonicalStatuses = []Status{
	StatusNotStarted,
	StatusIncomplete,
	StatusUnderReview,
	StatusAwaitingQuestionnaire,
	StatusAwaitingUBO,
	StatusApproved,
	StatusRejected,
	StatusPaused,
	StatusOffboarded,
}

var canonical = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(CanonicalStatuses))
	for _, s := range CanonicalStatuses {
		set[s] = struct{}{}
	}
	return set
}()

// legacyAliases maps historical provider spellings onto canonical statuses.
var legacyAliases = map[string]Status{
	"active":        StatusApproved,
	"verified":      StatusApproved,
	"pending":       StatusUnderReview,
	"manual_review": StatusUnderReview,
	"in_review":     StatusUnderReview,
	"submitted":     StatusUnderReview,
	"needs_review":  StatusUnderReview,
	"review":        StatusUnderReview,
}

// IsCanonical reports whether s belongs to the canonical provider set.
func (s Status) IsCanonical() bool {
	_, ok := canonical[s]
	return ok
}

// IsValid reports whether s is a status a submission may hold.
func (s Status) IsValid() bool {
	return s.IsCanonical() || s == StatusNeedsMoreInfo
}

func (s Status) String() string {
	return string(s)
}

// Normalize maps a possibly missing provider status onto the canonical set.
// It never fails and never returns a value outside CanonicalStatuses.
func Normalize(raw *string) Status {
	if raw == nil {
		return StatusNotStarted
	}
	return NormalizeString(*raw)
}

// NormalizeString is Normalize for a present value.
func NormalizeString(raw string) Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(key); s.IsCanonical() {
		return s
	}
	if s, ok := legacyAliases[key]; ok {
		return s
	}
	return StatusNotStarted
}
