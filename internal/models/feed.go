package models

// FeedScope selects which collections a feed draws from.
type FeedScope int

const (
	// ScopePublicOrOwned is every public collection plus, for a signed-in
	// viewer, the viewer's own private ones.
	ScopePublicOrOwned FeedScope = iota
	// ScopeOwned is the viewer's own collections only.
	ScopeOwned
	// ScopeBookmarked is the collections in the viewer's bookmark.
	ScopeBookmarked
)

// FeedSort is the ordering key of a feed.
type FeedSort string

const (
	SortLikes  FeedSort = "likes"
	SortViews  FeedSort = "views"
	SortLatest FeedSort = "latest"
)

// ParseFeedSort maps a query parameter to a sort key. An empty value yields
// fallback; any unknown value sorts by latest.
func ParseFeedSort(raw string, fallback FeedSort) FeedSort {
	switch FeedSort(raw) {
	case "":
		return fallback
	case SortLikes, SortViews:
		return FeedSort(raw)
	default:
		return SortLatest
	}
}
