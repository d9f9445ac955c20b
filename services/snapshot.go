package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d3ming/ycx25-voter/storage"
)

// Snapshot ist der Inhalt einer exportierten Ranking-Datei.
type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Stats       Stats         `json:"stats"`
	Companies   []CompanyView `json:"companies"`
}

// SnapshotService exportiert die sortierte Liste als JSON in den Bucket und rotiert alte Exporte.
type SnapshotService struct {
	Companies *CompanyService
	Bucket    *storage.Bucket
	Prefix    string
	Keep      int
	Logger    *zap.Logger

	now func() time.Time
}

// NewSnapshotService erstellt eine neue Instanz des SnapshotService.
func NewSnapshotService(companies *CompanyService, bucket *storage.Bucket, prefix string, keep int, logger *zap.Logger) *SnapshotService {
	return &SnapshotService{
		Companies: companies,
		Bucket:    bucket,
		Prefix:    prefix,
		Keep:      keep,
		Logger:    logger,
		now:       time.Now,
	}
}

// Export schreibt einen Snapshot und gibt dessen Link zurück.
func (s *SnapshotService) Export(ctx context.Context) (string, error) {
	views, err := s.Companies.ListSorted(ctx)
	if err != nil {
		return "", fmt.Errorf("loading companies: %w", err)
	}
	stats, err := s.Companies.Stats(ctx)
	if err != nil {
		return "", fmt.Errorf("computing stats: %w", err)
	}

	now := s.now().UTC()
	data, err := json.Marshal(Snapshot{GeneratedAt: now, Stats: stats, Companies: views})
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%scompanies-%s.json", s.Prefix, now.Format("2006-01-02T15-04-05Z"))
	link, err := s.Bucket.Upload(ctx, key, "application/json", data)
	if err != nil {
		return "", err
	}
	snapshotsExportedCounter.Inc()
	s.Logger.Info("Snapshot exported", zap.String("link", link), zap.Int("companies", len(views)))

	deleted, err := s.Bucket.Rotate(ctx, s.Prefix, s.Keep)
	if err != nil {
		// Der Export selbst ist erfolgreich, nur die Rotation nicht.
		s.Logger.Warn("Snapshot rotation failed", zap.Error(err))
	} else if len(deleted) > 0 {
		s.Logger.Info("Old snapshots removed", zap.Strings("keys", deleted))
	}
	return link, nil
}
