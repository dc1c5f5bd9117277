package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sdrissi/giftforge/internal/config"
	"github.com/sdrissi/giftforge/internal/database"
	"github.com/sdrissi/giftforge/internal/database/repository"
	"github.com/sdrissi/giftforge/internal/pack"
	"github.com/sdrissi/giftforge/internal/service"
	"github.com/sdrissi/giftforge/internal/tui"
)

func main() {
	// canceled on exit so pending commit pacing never fires after teardown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}

	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := database.SeedDefaults(ctx, db); err != nil {
		log.Fatalf("seed catalog: %v", err)
	}

	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewCartRepo(db)

	effects := tui.NewEffectBus()
	store := pack.NewStore(cfg.Pack.RibbonPalette, effects)
	ingestor := &pack.Ingestor{Store: store, Effects: effects}
	catalog := &service.CatalogService{Products: productRepo}
	committer := &service.CommitService{
		Store:   store,
		Cart:    cartRepo,
		Effects: effects,
		Pacing:  time.Duration(cfg.Pack.CommitPacingMS) * time.Millisecond,
		Policy:  service.ParseQuantityPolicy(cfg.Pack.QuantityPolicy),
	}

	app := tui.New(ctx, cfg, catalog, store, ingestor, committer, cartRepo, effects)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui: %v", err)
	}
}
