package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/modulearn/backend/internal/content"
	"github.com/modulearn/backend/internal/data/repos"
	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/dbctx"
	"github.com/modulearn/backend/internal/platform/logger"
)

// ViewAssembler builds the full per-user course view: authored tree, resolved
// content, progress rows and access gating combined into one read-only
// projection.
type ViewAssembler interface {
	AssembleCourseView(ctx context.Context, userID, tenantID, courseID uuid.UUID) (*types.CourseView, error)
}

type viewAssembler struct {
	db             *gorm.DB
	log            *logger.Logger
	courseRepo     repos.CourseRepo
	enrollRepo     repos.EnrollmentRepo
	itemProgRepo   repos.ItemProgressRepo
	moduleProgRepo repos.ModuleProgressRepo
	courseProgRepo repos.CourseProgressRepo
	resolver       *content.Resolver
}

func NewViewAssembler(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	enrollRepo repos.EnrollmentRepo,
	itemProgRepo repos.ItemProgressRepo,
	moduleProgRepo repos.ModuleProgressRepo,
	courseProgRepo repos.CourseProgressRepo,
	resolver *content.Resolver,
) ViewAssembler {
	return &viewAssembler{
		db:             db,
		log:            baseLog.With("service", "ViewAssembler"),
		courseRepo:     courseRepo,
		enrollRepo:     enrollRepo,
		itemProgRepo:   itemProgRepo,
		moduleProgRepo: moduleProgRepo,
		courseProgRepo: courseProgRepo,
		resolver:       resolver,
	}
}

func (s *viewAssembler) AssembleCourseView(ctx context.Context, userID, tenantID, courseID uuid.UUID) (*types.CourseView, error) {
	course, err := s.courseRepo.GetWithTree(ctx, nil, courseID, tenantID)
	if err != nil {
		return nil, mapStorageError("assemble course view", err)
	}

	items := make([]*types.CourseItem, 0)
	itemsByModule := make(map[uuid.UUID][]*types.CourseItem, len(course.Modules))
	moduleIDs := make([]uuid.UUID, 0, len(course.Modules))
	for _, mod := range course.Modules {
		moduleIDs = append(moduleIDs, mod.ID)
		itemsByModule[mod.ID] = mod.Items
		items = append(items, mod.Items...)
	}

	resolved, err := s.resolver.Resolve(ctx, tenantID, items)
	if err != nil {
		return nil, mapStorageError("resolve course content", err)
	}

	enrollment, err := s.enrollRepo.GetByUserAndCourseID(ctx, nil, userID, courseID)
	enrolled := err == nil && enrollment.Status == types.EnrollmentActive
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapStorageError("load enrollment", err)
	}

	view := &types.CourseView{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Enrolled:    enrolled,
	}
	if enrolled {
		view.EnrolledAt = &enrollment.EnrolledAt
	}

	itemProgress := map[uuid.UUID]*types.ItemProgress{}
	moduleProg := map[uuid.UUID]*types.ModuleProgress{}
	if enrolled {
		dbc := dbctx.New(ctx)
		// Viewing an enrolled course materializes any missing progress rows,
		// so a reset followed by a view starts everyone back at not_started.
		courseProg, err := s.courseProgRepo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, courseID)
		if err != nil {
			return nil, mapStorageError("init course progress", err)
		}
		view.Progress = courseProg

		for _, item := range items {
			row, err := s.itemProgRepo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, item.ID)
			if err != nil {
				return nil, mapStorageError("init item progress", err)
			}
			itemProgress[item.ID] = row
		}
		for _, modID := range moduleIDs {
			row, err := s.moduleProgRepo.GetOrCreate(dbc.Ctx, dbc.Tx, userID, modID)
			if err != nil {
				return nil, mapStorageError("init module progress", err)
			}
			moduleProg[modID] = row
		}
	}

	access := Access{
		LockedItemIDs:   map[uuid.UUID]bool{},
		LockedModuleIDs: map[uuid.UUID]bool{},
	}
	if enrolled {
		access = ComputeAccess(AccessInput{
			Modules:       course.Modules,
			ItemsByModule: itemsByModule,
			ItemProgress:  itemProgress,
			ModuleProg:    moduleProg,
		})
		view.ActiveItemID = access.ActiveItemID
	} else {
		// Not enrolled: everything is visible but locked, nothing is active.
		for _, mod := range course.Modules {
			access.LockedModuleIDs[mod.ID] = true
			for _, item := range mod.Items {
				access.LockedItemIDs[item.ID] = true
			}
		}
	}

	for _, mod := range course.Modules {
		moduleView := &types.ModuleView{
			ID:                 mod.ID,
			Title:              mod.Title,
			Description:        mod.Description,
			Position:           mod.Position,
			ApprovalPercentage: mod.ApprovalPercentage,
			Locked:             access.LockedModuleIDs[mod.ID],
			Progress:           moduleProg[mod.ID],
			Items:              make([]*types.ItemView, 0, len(mod.Items)),
		}
		for _, item := range mod.Items {
			entity, ok := resolved[item.ID]
			if !ok {
				// Unknown kinds are dropped from resolution but still render.
				entity = content.Fallback(item)
			}
			itemView := &types.ItemView{
				ID:          item.ID,
				Kind:        item.Kind,
				Position:    item.Position,
				Title:       entity.Title,
				Description: entity.Description,
				KindFields:  entity.KindFields,
				Locked:      access.LockedItemIDs[item.ID],
				Progress:    itemProgress[item.ID],
			}
			if access.ActiveItemID != nil && *access.ActiveItemID == item.ID {
				itemView.Active = true
			}
			moduleView.Items = append(moduleView.Items, itemView)
		}
		view.Modules = append(view.Modules, moduleView)
	}
	if view.Modules == nil {
		view.Modules = []*types.ModuleView{}
	}
	return view, nil
}
