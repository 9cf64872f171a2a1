package payload

// Pagination and list envelope shared by the list endpoints.
type (
	// ListReqQuery carries the paging parameters taken from the query
	// string.
	ListReqQuery struct {
		PageIndex *int `form:"page_index"`
		PageSize  *int `form:"page_size"`
	}
	ListResp[T any] struct {
		Rows  []T   `json:"rows"`
		Count int64 `json:"count"`
	}
)
