package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/hubmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/sources/catalog"
)

// SeedResult summarises one seeding pass
type SeedResult struct {
	Offered  int
	Added    int
	Existing int
}

// CatalogSeeder handles periodic seeding of bookmarks from the catalog file
type CatalogSeeder struct {
	loader        *catalog.Loader
	mapper        *catalog.Mapper
	store         *bookmarks.Store
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogSeeder creates a new catalog seeder
func NewCatalogSeeder(
	catalogFile string,
	store *bookmarks.Store,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogSeeder {
	return &CatalogSeeder{
		loader:        catalog.NewLoader(catalogFile),
		mapper:        catalog.NewMapper(),
		store:         store,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start seeds immediately and begins the periodic reload
func (cs *CatalogSeeder) Start(ctx context.Context) error {
	// Load immediately on start
	if _, err := cs.Seed(ctx); err != nil {
		return fmt.Errorf("initial seed failed: %w", err)
	}

	ticker := time.NewTicker(cs.interval)
	go func() {
		defer close(cs.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := cs.Seed(ctx); err != nil {
					cs.logger.Error("failed to seed catalog", logger.Error(err))
				}
			case <-cs.manualTrigger:
				cs.logger.Info("manual catalog reload triggered")
				if _, err := cs.Seed(ctx); err != nil {
					cs.logger.Error("failed to seed catalog", logger.Error(err))
				}
			case <-cs.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the seeder and waits for its loop to exit
func (cs *CatalogSeeder) Stop() {
	close(cs.stopCh)
	<-cs.done
}

// Seed loads the catalog and adds every entry not yet bookmarked.
// Entries already present count as Existing. A persistence failure keeps
// the bookmark in memory and does not stop the pass.
func (cs *CatalogSeeder) Seed(ctx context.Context) (SeedResult, error) {
	cs.logger.Info("seeding bookmarks from catalog",
		logger.String("file", cs.loader.Path()))

	config, err := cs.loader.Load()
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to load catalog: %w", err)
	}

	candidates, err := cs.mapper.Map(config)
	if err != nil {
		return SeedResult{}, fmt.Errorf("failed to map catalog: %w", err)
	}

	res := SeedResult{Offered: len(candidates)}
	for _, c := range candidates {
		if cs.store.IsBookmarked(c.ID) {
			res.Existing++
			continue
		}

		_, err := cs.store.Add(ctx, c)
		switch {
		case err == nil:
			res.Added++
		case errors.Is(err, bookmarks.ErrDuplicateID):
			res.Existing++
		case errors.Is(err, bookmarks.ErrPersistence):
			// Memory is the primary source
			res.Added++
		default:
			cs.logger.Warn("skipping catalog entry",
				logger.String("id", c.ID),
				logger.Error(err))
		}
	}

	cs.logger.Info("catalog seeded",
		logger.Int("offered", res.Offered),
		logger.Int("added", res.Added),
		logger.Int("existing", res.Existing))

	return res, nil
}
