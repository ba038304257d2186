package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/algospace/algospace-api/internal/models"
	"github.com/algospace/algospace-api/pkg/logger"
	"github.com/algospace/algospace-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// InterviewerSource fetches interviewer listings for the directory
type InterviewerSource interface {
	ListInterviewers(ctx context.Context) ([]*models.User, error)
}

const (
	interviewerKeyPrefix = "interviewer:id:"
	allInterviewersKey   = "interviewer:all"
	cacheCheckPeriod     = 10 * time.Second
	maxRetries           = 3
	initialRetryWait     = 2 * time.Second
)

// DirectoryCache keeps the interviewer directory in memory so the browse
// endpoint never hits the database on the hot path
type DirectoryCache struct {
	cache       *gocache.Cache
	source      InterviewerSource
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
}

// NewDirectoryCache creates an interviewer directory cache
func NewDirectoryCache(source InterviewerSource, ttlSeconds int) *DirectoryCache {
	return &DirectoryCache{
		cache:  gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		source: source,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}
}

// Initialize performs the initial population (synchronous, blocks until
// ready) and starts the background refresh scheduler. Should be called
// during startup before accepting requests.
func (dc *DirectoryCache) Initialize() error {
	logger.Info("Initializing interviewer directory cache...")
	startTime := time.Now()

	if err := dc.refreshWithRetry(); err != nil {
		logger.Error("Failed to initialize directory cache", zap.Error(err))
		return err
	}

	dc.mu.Lock()
	dc.ready = true
	dc.lastRefresh = time.Now()
	dc.mu.Unlock()

	logger.Info("Interviewer directory cache initialized",
		zap.Duration("duration", time.Since(startTime)))

	go dc.schedulePeriodicRefresh()

	return nil
}

// IsReady returns true once the cache has been populated
func (dc *DirectoryCache) IsReady() bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.ready
}

// GetByID retrieves one interviewer from cache without touching the database
func (dc *DirectoryCache) GetByID(id string) (*models.User, error) {
	if !dc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := dc.cache.Get(interviewerKeyPrefix + id)
	if !found {
		metrics.CacheMisses.WithLabelValues("interviewer_by_id").Inc()
		return nil, fmt.Errorf("interviewer not found")
	}

	metrics.CacheHits.WithLabelValues("interviewer_by_id").Inc()

	user, ok := data.(*models.User)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("id", id))
		dc.cache.Delete(interviewerKeyPrefix + id)
		return nil, fmt.Errorf("invalid cache data")
	}

	return user, nil
}

// Get retrieves the full interviewer directory from cache
func (dc *DirectoryCache) Get() ([]*models.User, error) {
	if !dc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	idsData, found := dc.cache.Get(allInterviewersKey)
	if !found {
		// List expired before a refresh landed, return empty rather
		// than blocking on the database
		metrics.CacheMisses.WithLabelValues("interviewer_all").Inc()
		logger.Warn("Interviewer list not in cache (expired), returning empty")
		return []*models.User{}, nil
	}

	ids, ok := idsData.([]string)
	if !ok {
		logger.Error("Invalid cache data type for interviewer list")
		return []*models.User{}, nil
	}

	metrics.CacheHits.WithLabelValues("interviewer_all").Inc()

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := dc.GetByID(id)
		if err != nil {
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

// ForceRefresh triggers a background refresh and returns the current
// cached directory immediately
func (dc *DirectoryCache) ForceRefresh() ([]*models.User, error) {
	logger.Info("Force refresh requested for interviewer directory")

	go func() {
		if err := dc.refreshInBackground(); err != nil {
			logger.Error("Background directory refresh failed", zap.Error(err))
		}
	}()

	return dc.Get()
}

// Invalidate triggers a background refresh after a profile change
func (dc *DirectoryCache) Invalidate() {
	go func() {
		if err := dc.refreshInBackground(); err != nil {
			logger.Error("Directory refresh after invalidation failed", zap.Error(err))
		}
	}()
}

func (dc *DirectoryCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(dc.ttl)
	defer ticker.Stop()

	for range ticker.C {
		if err := dc.refreshInBackground(); err != nil {
			logger.Error("Scheduled directory refresh failed", zap.Error(err))
			// Keep the scheduler running, next tick retries
		}
	}
}

func (dc *DirectoryCache) refreshInBackground() error {
	dc.mu.Lock()
	if dc.refreshing {
		dc.mu.Unlock()
		logger.Debug("Directory refresh already in progress, skipping")
		return nil
	}
	dc.refreshing = true
	dc.mu.Unlock()

	defer func() {
		dc.mu.Lock()
		dc.refreshing = false
		dc.mu.Unlock()
	}()

	startTime := time.Now()

	users, err := dc.source.ListInterviewers(context.Background())
	if err != nil {
		return err
	}

	dc.populateCache(users)

	dc.mu.Lock()
	dc.lastRefresh = time.Now()
	dc.mu.Unlock()

	logger.Info("Directory refresh completed",
		zap.Int("count", len(users)),
		zap.Duration("duration", time.Since(startTime)))

	return nil
}

func (dc *DirectoryCache) refreshWithRetry() error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			//nolint:gosec // G115: attempt bounded by maxRetries (3), max shift is 2, no overflow possible
			waitTime := initialRetryWait * time.Duration(1<<uint(attempt-1))
			logger.Info("Retrying directory cache refresh",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait_time", waitTime))
			time.Sleep(waitTime)
		}

		users, fetchErr := dc.source.ListInterviewers(context.Background())
		if fetchErr != nil {
			err = fetchErr
			logger.Error("Directory cache refresh attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(err))
			continue
		}

		dc.populateCache(users)
		return nil
	}

	return fmt.Errorf("failed to refresh directory cache after %d attempts: %w", maxRetries, err)
}

// populateCache stores interviewers under individual keys. Expiration is
// controlled at the list level; individual entries never expire.
func (dc *DirectoryCache) populateCache(users []*models.User) {
	ids := make([]string, 0, len(users))

	for _, user := range users {
		dc.cache.Set(interviewerKeyPrefix+user.ID, user, gocache.NoExpiration)
		ids = append(ids, user.ID)
	}

	dc.cache.Set(allInterviewersKey, ids, dc.ttl)

	metrics.CacheSize.WithLabelValues("interviewers").Set(float64(len(users)))
}

// Clear flushes the entire cache
func (dc *DirectoryCache) Clear() {
	dc.cache.Flush()
	logger.Info("Interviewer directory cache cleared")
}
