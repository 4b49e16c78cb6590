package services

import (
	"sort"

	"github.com/google/uuid"

	types "github.com/modulearn/backend/internal/domain"
)

// AccessInput is everything the gate needs, preloaded by the caller. The gate
// itself touches no storage, so it can be evaluated on already-fetched view
// data without extra queries.
type AccessInput struct {
	Modules       []*types.CourseModule
	ItemsByModule map[uuid.UUID][]*types.CourseItem
	ItemProgress  map[uuid.UUID]*types.ItemProgress
	ModuleProg    map[uuid.UUID]*types.ModuleProgress
}

// Access is the gate's verdict over a whole course tree.
type Access struct {
	LockedItemIDs   map[uuid.UUID]bool
	LockedModuleIDs map[uuid.UUID]bool
	// ActiveItemID is the first unlocked, not-yet-completed item in course
	// order, nil when the course is finished or fully locked.
	ActiveItemID *uuid.UUID
}

// ComputeAccess applies sequential gating over a course:
//
//   - Within a module, an item unlocks only once the item before it is
//     completed. Skipped and failed are terminal but do not unlock.
//   - A module unlocks only once the previous module's progress percentage
//     meets that previous module's approval threshold.
//
// A module with no stored threshold falls back to the default.
func ComputeAccess(in AccessInput) Access {
	out := Access{
		LockedItemIDs:   map[uuid.UUID]bool{},
		LockedModuleIDs: map[uuid.UUID]bool{},
	}

	modules := sortModules(in.Modules)
	for j, mod := range modules {
		moduleLocked := false
		if j > 0 {
			prev := modules[j-1]
			threshold := prev.ApprovalPercentage
			if threshold <= 0 {
				threshold = types.DefaultApprovalPercentage
			}
			var prevPct float64
			if p, ok := in.ModuleProg[prev.ID]; ok {
				prevPct = p.ProgressPercentage
			}
			moduleLocked = prevPct < float64(threshold)
		}
		if moduleLocked {
			out.LockedModuleIDs[mod.ID] = true
		}

		items := sortItems(in.ItemsByModule[mod.ID])
		for k, item := range items {
			locked := moduleLocked
			if !locked && k > 0 {
				locked = !itemCompleted(in.ItemProgress, items[k-1].ID)
			}
			if locked {
				out.LockedItemIDs[item.ID] = true
				continue
			}
			if out.ActiveItemID == nil && !itemCompleted(in.ItemProgress, item.ID) {
				id := item.ID
				out.ActiveItemID = &id
			}
		}
	}
	return out
}

func itemCompleted(progress map[uuid.UUID]*types.ItemProgress, itemID uuid.UUID) bool {
	p, ok := progress[itemID]
	return ok && p.Status == types.ProgressCompleted
}

func sortModules(modules []*types.CourseModule) []*types.CourseModule {
	sorted := make([]*types.CourseModule, len(modules))
	copy(sorted, modules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}

func sortItems(items []*types.CourseItem) []*types.CourseItem {
	sorted := make([]*types.CourseItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}
