package directory

import (
	"context"
	"fmt"
	"time"

	"meal-admin/metrics"
	"meal-admin/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// UpsertFunc creates or updates the local account of one employee.
type UpsertFunc func(ctx context.Context, e models.Employee) (created bool, err error)

type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type Syncer struct {
	cache  *Cache
	upsert UpsertFunc
	log    *logrus.Entry
}

func NewSyncer(cache *Cache, upsert UpsertFunc) *Syncer {
	return &Syncer{
		cache:  cache,
		upsert: upsert,
		log:    logrus.WithField("component", "directory_sync"),
	}
}

// Sync reloads the directory and upserts every employee. A failing employee
// is logged and counted; it does not stop the rest.
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	var res SyncResult
	list, err := s.cache.Refresh(ctx)
	if err != nil {
		metrics.RecordDirectorySync(false)
		return res, fmt.Errorf("fetch directory: %w", err)
	}
	for _, e := range list {
		created, err := s.upsert(ctx, e)
		switch {
		case err != nil:
			res.Failed++
			s.log.WithError(err).WithField("employee_code", e.Code).Warn("upsert employee")
		case created:
			res.Created++
		default:
			res.Updated++
		}
	}
	metrics.RecordDirectorySync(res.Failed == 0)
	s.log.WithFields(logrus.Fields{
		"created": res.Created,
		"updated": res.Updated,
		"failed":  res.Failed,
	}).Info("directory synced")
	return res, nil
}

// Schedule runs Sync on the cron spec until the returned cron is stopped.
func (s *Syncer) Schedule(spec string, timeout time.Duration) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := s.Sync(ctx); err != nil {
			s.log.WithError(err).Error("scheduled directory sync")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("directory sync schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
