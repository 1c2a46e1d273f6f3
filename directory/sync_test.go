package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"meal-admin/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCountsOutcomes(t *testing.T) {
	f := &countingFetcher{list: []models.Employee{
		{Code: "N1", Name: "New"},
		{Code: "O1", Name: "Old"},
		{Code: "X1", Name: "Broken"},
	}}
	var seen []string
	upsert := func(ctx context.Context, e models.Employee) (bool, error) {
		seen = append(seen, e.Code)
		switch e.Code {
		case "N1":
			return true, nil
		case "X1":
			return false, errors.New("db down")
		}
		return false, nil
	}

	res, err := NewSyncer(NewCache(f, time.Hour), upsert).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 1, Updated: 1, Failed: 1}, res)
	assert.Equal(t, []string{"N1", "O1", "X1"}, seen)
}

func TestSyncFetchFailure(t *testing.T) {
	f := &countingFetcher{err: errors.New("timeout")}
	called := false
	upsert := func(ctx context.Context, e models.Employee) (bool, error) {
		called = true
		return false, nil
	}

	_, err := NewSyncer(NewCache(f, time.Hour), upsert).Sync(context.Background())
	assert.Error(t, err)
	assert.False(t, called)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := NewSyncer(NewCache(&countingFetcher{}, time.Hour), nil)
	_, err := s.Schedule("not a spec", time.Second)
	assert.Error(t, err)

	c, err := s.Schedule("@every 1h", time.Second)
	require.NoError(t, err)
	c.Stop()
}
