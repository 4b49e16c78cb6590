package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/modulearn/backend/internal/domain"
)

func buildModule(position, approval int, itemCount int, base time.Time) (*types.CourseModule, []*types.CourseItem) {
	mod := &types.CourseModule{
		ID:                 uuid.New(),
		Position:           position,
		ApprovalPercentage: approval,
		CreatedAt:          base,
	}
	items := make([]*types.CourseItem, 0, itemCount)
	for k := 0; k < itemCount; k++ {
		items = append(items, &types.CourseItem{
			ID:        uuid.New(),
			ModuleID:  mod.ID,
			Position:  k,
			CreatedAt: base.Add(time.Duration(k) * time.Second),
		})
	}
	return mod, items
}

func completedProgress(itemID uuid.UUID) *types.ItemProgress {
	return &types.ItemProgress{ItemID: itemID, Status: types.ProgressCompleted, ProgressPercentage: 100}
}

func TestComputeAccessSequentialItems(t *testing.T) {
	base := time.Now().UTC()
	mod, items := buildModule(0, 80, 3, base)

	in := AccessInput{
		Modules:       []*types.CourseModule{mod},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{mod.ID: items},
		ItemProgress:  map[uuid.UUID]*types.ItemProgress{},
		ModuleProg:    map[uuid.UUID]*types.ModuleProgress{},
	}

	out := ComputeAccess(in)
	if out.LockedItemIDs[items[0].ID] {
		t.Fatalf("first item should be unlocked")
	}
	if !out.LockedItemIDs[items[1].ID] || !out.LockedItemIDs[items[2].ID] {
		t.Fatalf("items after an incomplete item should be locked")
	}
	if out.ActiveItemID == nil || *out.ActiveItemID != items[0].ID {
		t.Fatalf("active item should be the first item, got %v", out.ActiveItemID)
	}

	// Completing item 0 unlocks item 1 but not item 2.
	in.ItemProgress[items[0].ID] = completedProgress(items[0].ID)
	out = ComputeAccess(in)
	if out.LockedItemIDs[items[1].ID] {
		t.Fatalf("item after a completed item should be unlocked")
	}
	if !out.LockedItemIDs[items[2].ID] {
		t.Fatalf("item two steps ahead should stay locked")
	}
	if out.ActiveItemID == nil || *out.ActiveItemID != items[1].ID {
		t.Fatalf("active item should advance to the next incomplete item")
	}
}

func TestComputeAccessSkippedDoesNotUnlock(t *testing.T) {
	base := time.Now().UTC()
	mod, items := buildModule(0, 80, 2, base)

	in := AccessInput{
		Modules:       []*types.CourseModule{mod},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{mod.ID: items},
		ItemProgress: map[uuid.UUID]*types.ItemProgress{
			items[0].ID: {ItemID: items[0].ID, Status: types.ProgressSkipped},
		},
		ModuleProg: map[uuid.UUID]*types.ModuleProgress{},
	}

	out := ComputeAccess(in)
	if !out.LockedItemIDs[items[1].ID] {
		t.Fatalf("skipped is terminal but must not unlock the next item")
	}
}

func TestComputeAccessModuleThreshold(t *testing.T) {
	base := time.Now().UTC()
	modA, itemsA := buildModule(0, 80, 2, base)
	modB, itemsB := buildModule(1, 80, 2, base.Add(time.Hour))

	in := AccessInput{
		Modules: []*types.CourseModule{modA, modB},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{
			modA.ID: itemsA,
			modB.ID: itemsB,
		},
		ItemProgress: map[uuid.UUID]*types.ItemProgress{
			itemsA[0].ID: completedProgress(itemsA[0].ID),
		},
		ModuleProg: map[uuid.UUID]*types.ModuleProgress{
			modA.ID: {ModuleID: modA.ID, ProgressPercentage: 50},
		},
	}

	out := ComputeAccess(in)
	if !out.LockedModuleIDs[modB.ID] {
		t.Fatalf("module below the previous module's threshold should be locked")
	}
	if !out.LockedItemIDs[itemsB[0].ID] {
		t.Fatalf("items of a locked module should be locked")
	}

	// At 80 the next module opens.
	in.ModuleProg[modA.ID].ProgressPercentage = 80
	out = ComputeAccess(in)
	if out.LockedModuleIDs[modB.ID] {
		t.Fatalf("module meeting the threshold should unlock the next module")
	}
	if out.LockedItemIDs[itemsB[0].ID] {
		t.Fatalf("first item of an unlocked module should be unlocked")
	}
}

func TestComputeAccessFractionalProgressAgainstThreshold(t *testing.T) {
	base := time.Now().UTC()
	modA, itemsA := buildModule(0, 80, 1, base)
	modB, itemsB := buildModule(1, 80, 1, base.Add(time.Hour))

	in := AccessInput{
		Modules: []*types.CourseModule{modA, modB},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{
			modA.ID: itemsA,
			modB.ID: itemsB,
		},
		ItemProgress: map[uuid.UUID]*types.ItemProgress{},
		ModuleProg: map[uuid.UUID]*types.ModuleProgress{
			modA.ID: {ModuleID: modA.ID, ProgressPercentage: 79.9},
		},
	}

	// Stored percentages are fractional, thresholds are whole numbers.
	out := ComputeAccess(in)
	if !out.LockedModuleIDs[modB.ID] {
		t.Fatalf("79.9 is below an 80 threshold, module should be locked")
	}

	in.ModuleProg[modA.ID].ProgressPercentage = 80.0
	out = ComputeAccess(in)
	if out.LockedModuleIDs[modB.ID] {
		t.Fatalf("80.0 meets an 80 threshold, module should unlock")
	}
}

func TestComputeAccessZeroThresholdUsesDefault(t *testing.T) {
	base := time.Now().UTC()
	modA, itemsA := buildModule(0, 0, 1, base)
	modB, itemsB := buildModule(1, 80, 1, base.Add(time.Hour))

	in := AccessInput{
		Modules: []*types.CourseModule{modA, modB},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{
			modA.ID: itemsA,
			modB.ID: itemsB,
		},
		ItemProgress: map[uuid.UUID]*types.ItemProgress{},
		ModuleProg: map[uuid.UUID]*types.ModuleProgress{
			modA.ID: {ModuleID: modA.ID, ProgressPercentage: 79},
		},
	}

	out := ComputeAccess(in)
	if !out.LockedModuleIDs[modB.ID] {
		t.Fatalf("zero threshold should fall back to the default of %d", types.DefaultApprovalPercentage)
	}
}

func TestComputeAccessFirstModuleAlwaysOpen(t *testing.T) {
	base := time.Now().UTC()
	mod, items := buildModule(5, 80, 1, base)

	out := ComputeAccess(AccessInput{
		Modules:       []*types.CourseModule{mod},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{mod.ID: items},
		ItemProgress:  map[uuid.UUID]*types.ItemProgress{},
		ModuleProg:    map[uuid.UUID]*types.ModuleProgress{},
	})
	if out.LockedModuleIDs[mod.ID] {
		t.Fatalf("the first module in order should never be locked")
	}
}

func TestComputeAccessFullyCompletedCourseHasNoActiveItem(t *testing.T) {
	base := time.Now().UTC()
	mod, items := buildModule(0, 80, 2, base)

	progress := map[uuid.UUID]*types.ItemProgress{}
	for _, item := range items {
		progress[item.ID] = completedProgress(item.ID)
	}

	out := ComputeAccess(AccessInput{
		Modules:       []*types.CourseModule{mod},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{mod.ID: items},
		ItemProgress:  progress,
		ModuleProg: map[uuid.UUID]*types.ModuleProgress{
			mod.ID: {ModuleID: mod.ID, ProgressPercentage: 100},
		},
	})
	if out.ActiveItemID != nil {
		t.Fatalf("a finished course has no active item, got %v", *out.ActiveItemID)
	}
}

func TestComputeAccessOrdersByPositionThenCreatedAt(t *testing.T) {
	base := time.Now().UTC()
	mod := &types.CourseModule{ID: uuid.New(), Position: 0, ApprovalPercentage: 80, CreatedAt: base}
	// Same position, creation time breaks the tie.
	older := &types.CourseItem{ID: uuid.New(), ModuleID: mod.ID, Position: 1, CreatedAt: base}
	newer := &types.CourseItem{ID: uuid.New(), ModuleID: mod.ID, Position: 1, CreatedAt: base.Add(time.Minute)}

	out := ComputeAccess(AccessInput{
		Modules:       []*types.CourseModule{mod},
		ItemsByModule: map[uuid.UUID][]*types.CourseItem{mod.ID: {newer, older}},
		ItemProgress:  map[uuid.UUID]*types.ItemProgress{},
		ModuleProg:    map[uuid.UUID]*types.ModuleProgress{},
	})
	if out.ActiveItemID == nil || *out.ActiveItemID != older.ID {
		t.Fatalf("ties on position should fall back to creation order")
	}
	if !out.LockedItemIDs[newer.ID] {
		t.Fatalf("the later-created item should be locked behind the older one")
	}
}
