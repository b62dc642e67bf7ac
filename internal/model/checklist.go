package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ChecklistKind string

const (
	ChecklistKindHygiene     ChecklistKind = "hygiene"
	ChecklistKindPestControl ChecklistKind = "pest_control"
)

// ComplianceChecklist is one submitted compliance form (hygiene round,
// pest control inspection). Items is an ordered array of
// {label, ok, comment} objects stored as JSON.
type ComplianceChecklist struct {
	Base
	BranchID    uuid.UUID       `db:"branch_id" json:"branch_id"`
	Kind        ChecklistKind   `db:"kind" json:"kind"`
	Items       json.RawMessage `db:"items" json:"items"`
	CompletedBy uuid.UUID       `db:"completed_by" json:"completed_by"`
	AllPassed   bool            `db:"all_passed" json:"all_passed"`
	CompletedAt time.Time       `db:"completed_at" json:"completed_at"`
}

type ChecklistItem struct {
	Label   string `json:"label"`
	OK      bool   `json:"ok"`
	Comment string `json:"comment,omitempty"`
}

type SubmitChecklistRequest struct {
	BranchID string          `json:"branch_id" binding:"required,uuid"`
	Kind     string          `json:"kind" binding:"required,oneof=hygiene pest_control"`
	Items    []ChecklistItem `json:"items" binding:"required,min=1,dive"`
}
