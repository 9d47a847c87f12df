package common

import "math"

type PaginationResult struct {
	Message     string      `json:"message"`
	Data        interface{} `json:"data"`
	Count       int64       `json:"count"`
	CurrentPage int         `json:"currentPage"`
	NextPage    int         `json:"nextPage"`
	PrevPage    int         `json:"prevPage"`
	LastPage    int         `json:"lastPage"`
}

// PaginateResponse wraps a page of results together with navigation
// cursors. NextPage and PrevPage are 0 when there is no such page.
func PaginateResponse(data interface{}, total int64, page int, limit int, message string) PaginationResult {
	if message == "" {
		message = "success"
	}

	lastPage := 0
	if limit > 0 {
		lastPage = int(math.Ceil(float64(total) / float64(limit)))
	}

	nextPage := page + 1
	if nextPage > lastPage {
		nextPage = 0
	}

	prevPage := page - 1
	if prevPage < 1 {
		prevPage = 0
	}

	return PaginationResult{
		Message:     message,
		Data:        data,
		Count:       total,
		CurrentPage: page,
		NextPage:    nextPage,
		PrevPage:    prevPage,
		LastPage:    lastPage,
	}
}

// PageParams clamps raw query values into usable page/limit numbers.
func PageParams(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
