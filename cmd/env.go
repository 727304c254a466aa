package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/wardwatch/rent-cli/internal/model"
	"github.com/wardwatch/rent-cli/internal/scrape"
	"github.com/wardwatch/rent-cli/internal/store"
)

// openStore connects the configured backend and runs migrations.
func openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite", "":
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, eris.Wrap(err, "create store dir")
			}
		}
		s, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// newCollector builds the production collector with the configured pacing.
func newCollector() *scrape.Collector {
	pacer := scrape.NewIntervalPacer(cfg.Scrape.Interval())
	fetcher := scrape.NewPageFetcher(pacer, scrape.FetchOptions{
		SearchURL: cfg.Scrape.SearchURL,
		UserAgent: cfg.Scrape.UserAgent,
		Timeout:   cfg.Scrape.Timeout(),
	})
	return scrape.NewCollector(fetcher)
}

// targetAreas returns the configured collection targets.
func targetAreas() []model.Area {
	areas := make([]model.Area, len(cfg.Scrape.Areas))
	for i, a := range cfg.Scrape.Areas {
		areas[i] = model.Area{Code: a.Code, Name: a.Name}
	}
	return areas
}

func areaNames(areas []model.Area) []string {
	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = a.Name
	}
	return names
}
