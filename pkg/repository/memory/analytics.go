package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
)

type analyticsRepository struct {
	mu        sync.RWMutex
	snapshots map[types.SnapshotID]*model.AnalyticsSnapshot
}

func newAnalyticsRepository() *analyticsRepository {
	return &analyticsRepository{
		snapshots: make(map[types.SnapshotID]*model.AnalyticsSnapshot),
	}
}

func copySnapshot(s *model.AnalyticsSnapshot) *model.AnalyticsSnapshot {
	copied := *s
	copied.Metrics = copyMap(s.Metrics)
	return &copied
}

func (r *analyticsRepository) Create(ctx context.Context, snapshot *model.AnalyticsSnapshot) (*model.AnalyticsSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copySnapshot(snapshot)
	if created.ID == "" {
		created.ID = types.NewSnapshotID()
	}
	now := time.Now().UTC()
	if created.Timestamp.IsZero() {
		created.Timestamp = now
	}
	created.CreatedAt = now

	r.snapshots[created.ID] = created
	return copySnapshot(created), nil
}

func (r *analyticsRepository) List(ctx context.Context, orgID types.OrganizationID, source string) ([]*model.AnalyticsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var snapshots []*model.AnalyticsSnapshot
	for _, s := range r.snapshots {
		if s.OrganizationID != orgID {
			continue
		}
		if source != "" && s.Source != source {
			continue
		}
		snapshots = append(snapshots, copySnapshot(s))
	}

	// Newest first
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})

	return snapshots, nil
}
