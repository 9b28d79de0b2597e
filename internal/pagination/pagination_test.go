package pagination

import "testing"

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	t.Run("first_page", func(t *testing.T) {
		page := Paginate(items, PageRequest{Page: 1, PageSize: 2})
		if len(page.Data) != 2 || page.Data[0] != 1 {
			t.Errorf("unexpected data %v", page.Data)
		}
		if page.TotalItems != 5 || page.TotalPages != 3 {
			t.Errorf("expected 5 items over 3 pages, got %d/%d", page.TotalItems, page.TotalPages)
		}
	})

	t.Run("last_partial_page", func(t *testing.T) {
		page := Paginate(items, PageRequest{Page: 3, PageSize: 2})
		if len(page.Data) != 1 || page.Data[0] != 5 {
			t.Errorf("unexpected data %v", page.Data)
		}
	})

	t.Run("past_end", func(t *testing.T) {
		page := Paginate(items, PageRequest{Page: 9, PageSize: 2})
		if page.Data == nil || len(page.Data) != 0 {
			t.Errorf("expected empty non-nil data, got %v", page.Data)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		page := Paginate(items, PageRequest{})
		if page.Page != 1 || page.PageSize != 20 {
			t.Errorf("expected defaults 1/20, got %d/%d", page.Page, page.PageSize)
		}
		if len(page.Data) != 5 {
			t.Errorf("expected all 5 items, got %d", len(page.Data))
		}
	})
}
