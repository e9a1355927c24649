package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/createai-lab/createai/pkg/domain/model"
	"github.com/createai-lab/createai/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type snapshotDocument struct {
	ID             string         `firestore:"id"`
	OrganizationID string         `firestore:"organization_id"`
	Source         string         `firestore:"source"`
	Metrics        map[string]any `firestore:"metrics"`
	Timestamp      time.Time      `firestore:"timestamp"`
	CreatedAt      time.Time      `firestore:"created_at"`
}

type analyticsRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAnalyticsRepository(client *firestore.Client) *analyticsRepository {
	return &analyticsRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *analyticsRepository) snapshotsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_analytics_snapshots"
	}
	return "analytics_snapshots"
}

func snapshotToDocument(s *model.AnalyticsSnapshot) *snapshotDocument {
	return &snapshotDocument{
		ID:             string(s.ID),
		OrganizationID: string(s.OrganizationID),
		Source:         s.Source,
		Metrics:        s.Metrics,
		Timestamp:      s.Timestamp,
		CreatedAt:      s.CreatedAt,
	}
}

func snapshotToModel(doc *snapshotDocument) *model.AnalyticsSnapshot {
	return &model.AnalyticsSnapshot{
		ID:             types.SnapshotID(doc.ID),
		OrganizationID: types.OrganizationID(doc.OrganizationID),
		Source:         doc.Source,
		Metrics:        doc.Metrics,
		Timestamp:      doc.Timestamp,
		CreatedAt:      doc.CreatedAt,
	}
}

func (r *analyticsRepository) Create(ctx context.Context, snapshot *model.AnalyticsSnapshot) (*model.AnalyticsSnapshot, error) {
	if snapshot.ID == "" {
		snapshot.ID = types.NewSnapshotID()
	}
	now := time.Now().UTC()
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = now
	}
	snapshot.CreatedAt = now

	doc := snapshotToDocument(snapshot)

	docRef := r.client.Collection(r.snapshotsCollection()).Doc(string(snapshot.ID))
	if _, err := docRef.Set(ctx, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to create analytics snapshot")
	}

	return snapshotToModel(doc), nil
}

func (r *analyticsRepository) List(ctx context.Context, orgID types.OrganizationID, source string) ([]*model.AnalyticsSnapshot, error) {
	iter := r.client.Collection(r.snapshotsCollection()).
		Where("organization_id", "==", string(orgID)).
		Documents(ctx)
	defer iter.Stop()

	var snapshots []*model.AnalyticsSnapshot
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate analytics snapshots", goerr.V("orgID", orgID))
		}

		var snapDoc snapshotDocument
		if err := doc.DataTo(&snapDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal analytics snapshot", goerr.V("orgID", orgID))
		}

		if source != "" && snapDoc.Source != source {
			continue
		}

		snapshots = append(snapshots, snapshotToModel(&snapDoc))
	}

	// Newest first
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})

	return snapshots, nil
}
