package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResolvedItem is the kind-agnostic display projection of a course item. It is
// request-scoped: underlying content can change between requests, so resolved
// entities are never cached or persisted.
type ResolvedItem struct {
	ItemID      uuid.UUID      `json:"item_id"`
	ReferenceID uuid.UUID      `json:"reference_id"`
	Kind        ItemKind       `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	KindFields  map[string]any `json:"kind_fields,omitempty"`
	// Fallback marks entries synthesized for missing or unresolvable refs.
	Fallback bool `json:"fallback,omitempty"`
}

// FallbackTitle is used when an item's reference no longer exists in the
// owning subsystem. One missing reference must not block the rest of the
// course from rendering.
const FallbackTitle = "Untitled"

// ItemView, ModuleView and CourseView form the read-only projection the
// assembly layer hands to the HTTP layer. Authoring rows are never mutated to
// carry computed state.
type ItemView struct {
	ID          uuid.UUID      `json:"id"`
	Kind        ItemKind       `json:"kind"`
	Position    int            `json:"position"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	KindFields  map[string]any `json:"kind_fields,omitempty"`
	Locked      bool           `json:"locked"`
	Active      bool           `json:"active"`
	Progress    *ItemProgress  `json:"progress,omitempty"`
}

type ModuleView struct {
	ID                 uuid.UUID       `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	Position           int             `json:"position"`
	ApprovalPercentage int             `json:"approval_percentage"`
	Locked             bool            `json:"locked"`
	Progress           *ModuleProgress `json:"progress,omitempty"`
	Items              []*ItemView     `json:"items"`
}

type CourseView struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Enrolled     bool            `json:"enrolled"`
	EnrolledAt   *time.Time      `json:"enrolled_at,omitempty"`
	Progress     *CourseProgress `json:"progress,omitempty"`
	ActiveItemID *uuid.UUID      `json:"active_item_id,omitempty"`
	Modules      []*ModuleView   `json:"modules"`
}
