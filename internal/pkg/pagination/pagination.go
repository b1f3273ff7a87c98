package pagination

import "github.com/gofiber/fiber/v2"

// Page size bounds. Admin list views page through students, payments and
// scan events; the cap keeps a single request from dragging whole tables
// over the wire.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params are the sanitized page/limit values for one request
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// Meta describes where a page sits within the full result set
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// GetParams reads page and limit from the query string, clamping both to
// sane values. Bad or missing input falls back to the first default page.
func GetParams(c *fiber.Ctx) *Params {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", DefaultLimit)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Response wraps one page of rows with its metadata
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// NewResponse builds a paginated response from the rows and the total count
func NewResponse(data interface{}, params *Params, total int64) *Response {
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return &Response{
		Data: data,
		Meta: &Meta{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
			HasPrev:    params.Page > 1,
		},
	}
}
