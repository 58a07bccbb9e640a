package model

import "github.com/google/uuid"

type SuggestionCategory string

const (
	SuggestionCategoryFeature     SuggestionCategory = "FEATURE"
	SuggestionCategoryImprovement SuggestionCategory = "IMPROVEMENT"
	SuggestionCategoryBug         SuggestionCategory = "BUG"
	SuggestionCategoryOther       SuggestionCategory = "OTHER"
)

type SuggestionStatus string

const (
	SuggestionStatusPending     SuggestionStatus = "PENDING"
	SuggestionStatusUnderReview SuggestionStatus = "UNDER_REVIEW"
	SuggestionStatusImplemented SuggestionStatus = "IMPLEMENTED"
	SuggestionStatusRejected    SuggestionStatus = "REJECTED"
)

// NextStatuses lists the statuses a suggestion may move to from s.
// PENDING → UNDER_REVIEW → IMPLEMENTED | REJECTED.
func (s SuggestionStatus) NextStatuses() []SuggestionStatus {
	switch s {
	case SuggestionStatusPending:
		return []SuggestionStatus{SuggestionStatusUnderReview}
	case SuggestionStatusUnderReview:
		return []SuggestionStatus{SuggestionStatusImplemented, SuggestionStatusRejected}
	}
	return nil
}

type Suggestion struct {
	Base
	AuthorID    uuid.UUID          `json:"author_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Category    SuggestionCategory `json:"category"`
	Status      SuggestionStatus   `json:"status"`
	Likes       int                `json:"likes"`
	Attachments []uuid.UUID        `json:"attachments,omitempty"`
}

type CreateSuggestionRequest struct {
	Title       string             `json:"title" binding:"required" validate:"required"`
	Description string             `json:"description"`
	Category    SuggestionCategory `json:"category" binding:"required,oneof=FEATURE IMPROVEMENT BUG OTHER" validate:"required,oneof=FEATURE IMPROVEMENT BUG OTHER"`
}
