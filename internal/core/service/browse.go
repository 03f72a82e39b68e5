package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

const defaultSearchDebounce = 300 * time.Millisecond

// Refine applies the client-side refinement stage to a prefetched candidate
// set: inclusive price bounds, then sort. Unrecognized sort keys fall back
// to newest-first; products without a creation timestamp sort oldest.
func Refine(products []domain.Product, q domain.BrowseQuery) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.Price < q.Price.Min || p.Price > q.Price.Max {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case domain.SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case domain.SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case domain.SortName:
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool { return c.CompareString(out[i].Name, out[j].Name) < 0 })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out
}

// BrowseSnapshot is what a view renders: Loading while a prefetch is
// outstanding, Empty only once a completed prefetch matched nothing.
type BrowseSnapshot struct {
	Query    domain.BrowseQuery
	Loading  bool
	Empty    bool
	Products []domain.Product
}

// BrowseService drives the two-stage browse pipeline for one viewing
// session. Search/category changes re-run the repository prefetch (search
// changes debounced); price-range and sort changes refine the cached
// candidate set without refetching. Each prefetch carries a generation
// token so a superseded fetch cannot overwrite newer results.
type BrowseService struct {
	products port.ProductRepository
	logger   *zap.Logger
	debounce time.Duration
	limit    int

	mu         sync.Mutex
	query      domain.BrowseQuery
	candidates []domain.Product
	loading    bool
	generation uint64
	timer      *time.Timer
}

func NewBrowseService(products port.ProductRepository, logger *zap.Logger, debounce time.Duration, limit int) *BrowseService {
	if debounce <= 0 {
		debounce = defaultSearchDebounce
	}
	return &BrowseService{
		products: products,
		logger:   logger,
		debounce: debounce,
		limit:    limit,
		query:    domain.DefaultBrowseQuery(),
	}
}

// SetSearchText records the new text and schedules a prefetch once input has
// been quiet for the debounce window. Each call cancels the pending timer,
// so a burst of keystrokes produces exactly one fetch with the last value.
func (b *BrowseService) SetSearchText(ctx context.Context, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.query.SearchText = text
	b.loading = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, func() {
		b.refresh(ctx)
	})
}

// SetCategory re-runs the prefetch immediately.
func (b *BrowseService) SetCategory(ctx context.Context, categoryID string) {
	b.mu.Lock()
	b.query.Category = categoryID
	b.mu.Unlock()

	b.refresh(ctx)
}

// SetPriceRange refines the cached candidates; no refetch.
func (b *BrowseService) SetPriceRange(pr domain.PriceRange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query.Price = pr
}

// SetSortKey refines the cached candidates; no refetch.
func (b *BrowseService) SetSortKey(key domain.SortKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query.Sort = key
}

// ClearFilters resets the query to its defaults and re-runs the prefetch.
func (b *BrowseService) ClearFilters(ctx context.Context) {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.query = domain.DefaultBrowseQuery()
	b.mu.Unlock()

	b.refresh(ctx)
}

func (b *BrowseService) refresh(ctx context.Context) {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.loading = true
	filter := port.BrowseFilter{Search: b.query.SearchText, Limit: b.limit}
	if b.query.Category != "" && b.query.Category != domain.CategoryAll {
		filter.CategoryID = b.query.Category
	}
	b.mu.Unlock()

	products, err := b.products.Browse(ctx, filter)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		// A newer query superseded this fetch; drop the stale result.
		return
	}
	b.loading = false
	if err != nil {
		b.logger.Error("product prefetch failed", zap.Error(err))
		b.candidates = nil
		return
	}
	b.candidates = products
}

// Snapshot recomputes the refinement stage synchronously over the cached
// candidates and reports the current view state.
func (b *BrowseService) Snapshot() BrowseSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	refined := Refine(b.candidates, b.query)
	return BrowseSnapshot{
		Query:    b.query,
		Loading:  b.loading,
		Empty:    !b.loading && len(refined) == 0,
		Products: refined,
	}
}
