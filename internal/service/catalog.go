package service

import (
	"context"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/sdrissi/giftforge/internal/database/repository"
	"github.com/sdrissi/giftforge/internal/pack"
)

// CategoryAll is the pseudo-category matching every product.
const CategoryAll = "tous"

// Categories returns the fixed browse categories, CategoryAll first.
func Categories() []string {
	return []string{CategoryAll, "costume", "veste", "chemise", "accessoire"}
}

// CatalogFilters narrows the cached snapshot. Zero values mean "no
// filter"; MaxPriceMillimes of 0 means unbounded.
type CatalogFilters struct {
	Search           string
	Category         string
	MinPriceMillimes int64
	MaxPriceMillimes int64
}

// CatalogService serves the product catalog from a fetch-once,
// process-scoped snapshot. Filtering and search run over the snapshot;
// the database is only hit again on an explicit Refresh.
type CatalogService struct {
	Products *repository.ProductRepo

	mu       sync.Mutex
	snapshot []pack.Product
	loaded   bool
}

// All returns a copy of the full snapshot, fetching it on first use.
// Callers get their own slice so nothing they do can corrupt the cache.
func (s *CatalogService) All(ctx context.Context) ([]pack.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.fetchLocked(ctx); err != nil {
			return nil, err
		}
	}
	return append([]pack.Product(nil), s.snapshot...), nil
}

// Refresh invalidates the snapshot and refetches immediately.
func (s *CatalogService) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchLocked(ctx)
}

func (s *CatalogService) fetchLocked(ctx context.Context) error {
	rows, err := s.Products.List(ctx, repository.ProductFilters{})
	if err != nil {
		return err
	}
	snap := make([]pack.Product, 0, len(rows))
	for _, r := range rows {
		p := pack.Product{ID: r.ID, Name: r.Name, PriceMillimes: r.PriceMillimes, Category: r.Category}
		if r.Image != nil {
			p.Image = *r.Image
		}
		snap = append(snap, p)
	}
	s.snapshot = snap
	s.loaded = true
	return nil
}

// Filter applies search, category and price-range filters over the
// snapshot, loading it first if needed. Order is the catalog order.
func (s *CatalogService) Filter(ctx context.Context, f CatalogFilters) ([]pack.Product, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []pack.Product
	for _, p := range all {
		if f.Category != "" && f.Category != CategoryAll && !strings.EqualFold(p.Category, f.Category) {
			continue
		}
		if p.PriceMillimes < f.MinPriceMillimes {
			continue
		}
		if f.MaxPriceMillimes > 0 && p.PriceMillimes > f.MaxPriceMillimes {
			continue
		}
		if !matchesSearch(p.Name, f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// matchesSearch accepts substring matches and, for queries of 3+ runes,
// near-miss word matches so one-typo searches still hit.
func matchesSearch(name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, q) {
		return true
	}
	if len([]rune(q)) < 3 {
		return false
	}
	for _, word := range strings.Fields(lower) {
		if levenshtein.ComputeDistance(word, q) <= fuzzyThreshold(q) {
			return true
		}
	}
	return false
}

func fuzzyThreshold(q string) int {
	if len([]rune(q)) >= 5 {
		return 2
	}
	return 1
}
