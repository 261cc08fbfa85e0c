package app

import "booker/pkg/domain"

// Resolve merges the two possible sources of a book page: the persisted
// favorite record and the transient catalog result. The persisted record is
// authoritative when present. Resolve never fabricates data; when both
// sources are absent there is nothing to display.
func Resolve(persisted *domain.FavoriteRecord, transient *domain.SearchResultBook) (domain.DisplayBook, bool) {
	if persisted != nil {
		return domain.DisplayBook{
			ID:          persisted.ID,
			GoogleID:    persisted.GoogleID,
			Title:       persisted.Title,
			Authors:     persisted.Authors,
			Thumbnail:   persisted.Thumbnail,
			Description: persisted.Description,
			PageCount:   persisted.PageCount,
			Categories:  persisted.Categories,
			PreviewLink: persisted.PreviewLink,
			IsFavorite:  true,
		}, true
	}
	if transient != nil {
		return domain.DisplayBook{
			GoogleID:    transient.GoogleID,
			Title:       transient.Title,
			Authors:     transient.Authors,
			Thumbnail:   transient.Thumbnail,
			Description: transient.Description,
			PageCount:   transient.PageCount,
			Categories:  transient.Categories,
			PreviewLink: transient.PreviewLink,
			IsFavorite:  false,
		}, true
	}
	return domain.DisplayBook{}, false
}
