package dedupe

import "CryptoNewsRelay/internal/domain"

// Merge combines a freshly fetched batch with historical items into one
// ordered, identity-unique sequence. New items come first in fetch order,
// then historical items in their prior order; the first occurrence of an
// identity wins. Items without an identity are dropped. Pure function:
// inputs are never mutated.
func Merge(newItems, oldItems []domain.NewsItem) []domain.NewsItem {
	merged := make([]domain.NewsItem, 0, len(newItems)+len(oldItems))
	seen := make(map[string]struct{}, len(newItems)+len(oldItems))

	for _, items := range [][]domain.NewsItem{newItems, oldItems} {
		for _, item := range items {
			id := item.Identity()
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			merged = append(merged, item)
		}
	}

	return merged
}

// Cap trims a merged sequence to at most limit entries, keeping the head
// (newest items). A non-positive limit disables the cap.
func Cap(items []domain.NewsItem, limit int) []domain.NewsItem {
	if limit <= 0 || len(items) <= limit {
		return items
	}
	return items[:limit]
}
