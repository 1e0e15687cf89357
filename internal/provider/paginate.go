package provider

import "context"

// PageFunc fetches one 1-based page.
type PageFunc[T any] func(ctx context.Context, page int) ([]T, error)

// Paginate calls fetch from page 1 until a page is empty or shorter than
// perPage, concatenating results in provider order. onPage, when set, sees
// each non-empty page as it arrives.
func Paginate[T any](ctx context.Context, perPage int, fetch PageFunc[T], onPage func([]T)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		items, err := fetch(ctx, page)
		if err != nil {
			return all, err
		}
		if len(items) == 0 {
			return all, nil
		}
		if onPage != nil {
			onPage(items)
		}
		all = append(all, items...)
		if len(items) < perPage {
			return all, nil
		}
	}
}
