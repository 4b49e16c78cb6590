package content

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/modulearn/backend/internal/domain"
	"github.com/modulearn/backend/internal/platform/logger"
)

// Display is the kind-agnostic projection a content subsystem returns for a
// batch lookup: display fields only, never the full entity.
type Display struct {
	ID          uuid.UUID
	Title       string
	Description string
	KindFields  map[string]any
}

// Source is the per-kind batch lookup contract. Exactly one call is issued
// per kind per resolution batch.
type Source interface {
	FindDisplayByIDs(ctx context.Context, tenantID uuid.UUID, referenceIDs []uuid.UUID) ([]Display, error)
}

// Registry maps each item kind to its owning subsystem's source. Adding a new
// content kind means adding one entry here; partitioning and merging stay
// untouched.
type Registry map[types.ItemKind]Source

type Resolver struct {
	log     *logger.Logger
	sources Registry
}

func NewResolver(baseLog *logger.Logger, sources Registry) *Resolver {
	return &Resolver{
		log:     baseLog.With("service", "ContentResolver"),
		sources: sources,
	}
}

// Resolve turns a heterogeneous item list into display entities keyed by item
// id (reference ids are only unique within a kind). Items whose reference is
// missing resolve to a fallback entry; a failed kind lookup degrades that
// partition to fallbacks without blocking the other kinds. Unknown kinds are
// skipped with a warning.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID, items []*types.CourseItem) (map[uuid.UUID]types.ResolvedItem, error) {
	result := make(map[uuid.UUID]types.ResolvedItem, len(items))
	if len(items) == 0 {
		return result, nil
	}

	partitions := make(map[types.ItemKind][]*types.CourseItem)
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, ok := r.sources[item.Kind]; !ok {
			r.log.Warn("Skipping item with unsupported kind", "kind", item.Kind, "item_id", item.ID)
			continue
		}
		partitions[item.Kind] = append(partitions[item.Kind], item)
	}

	// Per-kind lookups have no data dependency on each other; fan out and
	// merge after the group finishes so completion order cannot affect the
	// result.
	var mu sync.Mutex
	displaysByKind := make(map[types.ItemKind]map[uuid.UUID]Display, len(partitions))

	g, gctx := errgroup.WithContext(ctx)
	for kind, part := range partitions {
		g.Go(func() error {
			refIDs := make([]uuid.UUID, 0, len(part))
			for _, item := range part {
				refIDs = append(refIDs, item.ReferenceID)
			}

			displays, err := r.sources[kind].FindDisplayByIDs(gctx, tenantID, refIDs)
			if err != nil {
				// Degraded, not fatal: this partition renders fallbacks.
				r.log.Warn("Content lookup failed for kind, using fallbacks",
					"kind", kind, "count", len(refIDs), "error", err)
				return nil
			}

			byRef := make(map[uuid.UUID]Display, len(displays))
			for _, d := range displays {
				byRef[d.ID] = d
			}
			mu.Lock()
			displaysByKind[kind] = byRef
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for kind, part := range partitions {
		byRef := displaysByKind[kind]
		for _, item := range part {
			if d, ok := byRef[item.ReferenceID]; ok {
				result[item.ID] = types.ResolvedItem{
					ItemID:      item.ID,
					ReferenceID: item.ReferenceID,
					Kind:        kind,
					Title:       d.Title,
					Description: d.Description,
					KindFields:  d.KindFields,
				}
				continue
			}
			result[item.ID] = Fallback(item)
		}
	}
	return result, nil
}

// Fallback synthesizes the placeholder entity for an item whose reference no
// longer exists.
func Fallback(item *types.CourseItem) types.ResolvedItem {
	return types.ResolvedItem{
		ItemID:      item.ID,
		ReferenceID: item.ReferenceID,
		Kind:        item.Kind,
		Title:       types.FallbackTitle,
		Fallback:    true,
	}
}
