package pagination

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/carmarket/pkg/common"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
	DefaultPage   = 1
)

// Params holds offset-style pagination parameters
type Params struct {
	Limit  int
	Offset int
}

// Page holds page-style pagination parameters used by listing search
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// ParseParams reads limit/offset from the query string, falling back to defaults
func ParseParams(c *gin.Context) Params {
	p := Params{Limit: DefaultLimit, Offset: DefaultOffset}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		p.Limit = limit
		if p.Limit > MaxLimit {
			p.Limit = MaxLimit
		}
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset >= 0 {
		p.Offset = offset
	}

	return p
}

// BuildMeta builds response meta for offset-style pagination
func BuildMeta(limit, offset int, total int64) *common.Meta {
	return &common.Meta{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}
}

// HasMore reports whether items remain after the current window
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}

// GetCurrentPage converts an offset into a 1-based page number
func GetCurrentPage(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}

// NormalizePage clamps page and size: page < 1 becomes 1, size < 1 becomes
// defaultSize and size above maxSize becomes maxSize. Pages too large for
// their offset to fit in an int are capped.
func NormalizePage(page, size, defaultSize, maxSize int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if defaultSize < 1 {
		defaultSize = DefaultLimit
	}
	if maxSize < 1 {
		maxSize = MaxLimit
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	// keep (page-1)*size representable
	if limit := math.MaxInt / size; page > limit {
		page = limit
	}
	return Page{Number: page, Size: size}
}

// Offset returns the row offset for the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns ceil(total/size), or 0 when size is not positive
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
