package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/handcrafted-haven/marketplace/internal/core/domain"
	"github.com/handcrafted-haven/marketplace/internal/port"
)

// Mock ProductRepository that records Browse calls.
type mockProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
	calls    []port.BrowseFilter
}

func (m *mockProductRepo) Browse(ctx context.Context, filter port.BrowseFilter) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, filter)
	return m.products, nil
}

func (m *mockProductRepo) browseCalls() []port.BrowseFilter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.BrowseFilter(nil), m.calls...)
}

func (m *mockProductRepo) Create(ctx context.Context, p domain.Product) error { return nil }
func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return nil, port.ErrNotFound
}
func (m *mockProductRepo) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Update(ctx context.Context, p domain.Product) error { return nil }
func (m *mockProductRepo) Delete(ctx context.Context, id string) error        { return nil }
func (m *mockProductRepo) Count(ctx context.Context) (int, error)             { return 0, nil }

func priced(name string, price float64) domain.Product {
	return domain.Product{ID: name, Name: name, Price: price}
}

func TestRefine_PriceLowToHigh(t *testing.T) {
	products := []domain.Product{priced("a", 30), priced("b", 10), priced("c", 20)}
	q := domain.DefaultBrowseQuery()
	q.Sort = domain.SortPriceLow

	out := Refine(products, q)
	want := []float64{10, 20, 30}
	for i, p := range out {
		if p.Price != want[i] {
			t.Errorf("position %d: expected price %.0f, got %.0f", i, want[i], p.Price)
		}
	}
}

func TestRefine_PriceHighToLow(t *testing.T) {
	products := []domain.Product{priced("a", 30), priced("b", 10), priced("c", 20)}
	q := domain.DefaultBrowseQuery()
	q.Sort = domain.SortPriceHigh

	out := Refine(products, q)
	want := []float64{30, 20, 10}
	for i, p := range out {
		if p.Price != want[i] {
			t.Errorf("position %d: expected price %.0f, got %.0f", i, want[i], p.Price)
		}
	}
}

func TestRefine_NameIgnoresCase(t *testing.T) {
	products := []domain.Product{priced("Chair", 1), priced("apple", 1), priced("Bowl", 1)}
	q := domain.DefaultBrowseQuery()
	q.Sort = domain.SortName

	out := Refine(products, q)
	want := []string{"apple", "Bowl", "Chair"}
	for i, p := range out {
		if p.Name != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], p.Name)
		}
	}
}

func TestRefine_NewestFirstDefault(t *testing.T) {
	now := time.Now()
	oldest := domain.Product{ID: "old", CreatedAt: now.Add(-2 * time.Hour)}
	newest := domain.Product{ID: "new", CreatedAt: now}
	undated := domain.Product{ID: "undated"} // zero timestamp sorts oldest

	out := Refine([]domain.Product{oldest, undated, newest}, domain.DefaultBrowseQuery())
	if out[0].ID != "new" || out[1].ID != "old" || out[2].ID != "undated" {
		t.Errorf("unexpected order: %s, %s, %s", out[0].ID, out[1].ID, out[2].ID)
	}
}

func TestRefine_PriceRangeInclusive(t *testing.T) {
	products := []domain.Product{priced("cheap", 5), priced("mid", 50), priced("dear", 500)}
	q := domain.DefaultBrowseQuery()
	q.Price = domain.PriceRange{Min: 10, Max: 100}

	out := Refine(products, q)
	if len(out) != 1 || out[0].Name != "mid" {
		t.Fatalf("expected only 'mid', got %d products", len(out))
	}

	// Bounds are inclusive.
	q.Price = domain.PriceRange{Min: 5, Max: 500}
	if out := Refine(products, q); len(out) != 3 {
		t.Errorf("expected all 3 at inclusive bounds, got %d", len(out))
	}
}

func TestBrowseService_DebouncesSearch(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{priced("Bowl", 34)}}
	svc := NewBrowseService(repo, zap.NewNop(), 30*time.Millisecond, 100)
	ctx := context.Background()

	for _, text := range []string{"b", "bo", "bow", "bowl", "bowls"} {
		svc.SetSearchText(ctx, text)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	calls := repo.browseCalls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly 1 prefetch, got %d", len(calls))
	}
	if calls[0].Search != "bowls" {
		t.Errorf("expected prefetch with last value %q, got %q", "bowls", calls[0].Search)
	}

	snap := svc.Snapshot()
	if snap.Loading {
		t.Error("expected loading to settle after prefetch")
	}
	if len(snap.Products) != 1 {
		t.Errorf("expected 1 product in snapshot, got %d", len(snap.Products))
	}
}

func TestBrowseService_CategoryRefreshesImmediately(t *testing.T) {
	repo := &mockProductRepo{}
	svc := NewBrowseService(repo, zap.NewNop(), time.Minute, 100)

	svc.SetCategory(context.Background(), "pottery")

	calls := repo.browseCalls()
	if len(calls) != 1 {
		t.Fatalf("expected immediate prefetch, got %d calls", len(calls))
	}
	if calls[0].CategoryID != "pottery" {
		t.Errorf("expected category filter, got %q", calls[0].CategoryID)
	}
}

func TestBrowseService_AllCategorySkipsFilter(t *testing.T) {
	repo := &mockProductRepo{}
	svc := NewBrowseService(repo, zap.NewNop(), time.Minute, 100)

	svc.SetCategory(context.Background(), domain.CategoryAll)

	calls := repo.browseCalls()
	if len(calls) != 1 {
		t.Fatalf("expected prefetch, got %d calls", len(calls))
	}
	if calls[0].CategoryID != "" {
		t.Errorf("'all' must not reach the repository, got %q", calls[0].CategoryID)
	}
}

func TestBrowseService_SortRefinesWithoutRefetch(t *testing.T) {
	repo := &mockProductRepo{products: []domain.Product{priced("a", 30), priced("b", 10)}}
	svc := NewBrowseService(repo, zap.NewNop(), time.Minute, 100)
	ctx := context.Background()

	svc.SetCategory(ctx, domain.CategoryAll) // prime the candidate cache
	before := len(repo.browseCalls())

	svc.SetSortKey(domain.SortPriceLow)
	svc.SetPriceRange(domain.PriceRange{Min: 0, Max: 100})

	if got := len(repo.browseCalls()); got != before {
		t.Errorf("sort/price changes must not refetch: %d calls, expected %d", got, before)
	}

	snap := svc.Snapshot()
	if len(snap.Products) != 2 || snap.Products[0].Price != 10 {
		t.Errorf("expected refined ordering, got %+v", snap.Products)
	}
}

func TestBrowseService_EmptyOnlyAfterFetch(t *testing.T) {
	repo := &mockProductRepo{}
	svc := NewBrowseService(repo, zap.NewNop(), time.Minute, 100)

	svc.SetSearchText(context.Background(), "nothing")
	snap := svc.Snapshot()
	if !snap.Loading {
		t.Error("expected loading while debounce is pending")
	}
	if snap.Empty {
		t.Error("must not report empty while a fetch is outstanding")
	}
}
