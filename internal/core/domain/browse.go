package domain

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortName      SortKey = "name"
)

// CategoryAll is the sentinel meaning "no category filter".
const CategoryAll = "all"

type PriceRange struct {
	Min float64
	Max float64
}

// DefaultPriceRange is the full bound applied when no price filter is set.
var DefaultPriceRange = PriceRange{Min: 0, Max: 1_000_000}

// BrowseQuery is the transient per-view query state. SearchText and Category
// drive the repository prefetch; Price and Sort refine the cached candidate
// set in memory.
type BrowseQuery struct {
	SearchText string
	Category   string
	Price      PriceRange
	Sort       SortKey
}

func DefaultBrowseQuery() BrowseQuery {
	return BrowseQuery{
		Category: CategoryAll,
		Price:    DefaultPriceRange,
		Sort:     SortNewest,
	}
}
