package util

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/dto"
	apierrors "github.com/emrealmaoglu/trailium/internal/errors"
)

// MaxPageSize caps the page_size query parameter.
const MaxPageSize = 100

// Default page sizes per listing.
const (
	DefaultPageSize = 10
	FeedPageSize    = 5
)

// PageParams are the parsed page and page_size query parameters.
type PageParams struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ParsePageParams reads ?page and ?page_size. An unparseable page is an error,
// page_size falls back to defaultSize and is capped at MaxPageSize.
func ParsePageParams(c *gin.Context, defaultSize int) (PageParams, error) {
	params := PageParams{Page: 1, PageSize: defaultSize}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, invalidPage()
		}
		params.Page = page
	}
	if size := ParseInt(c.Query("page_size"), 0); size > 0 {
		params.PageSize = min(size, MaxPageSize)
	}
	return params, nil
}

func invalidPage() *apierrors.APIError {
	return &apierrors.APIError{Code: apierrors.ErrNotFound, Message: "Invalid page.", Status: http.StatusNotFound}
}

// Paginate counts base, then calls fetch with base limited to the requested
// page. fetch returns the serialized rows of that page.
func Paginate(c *gin.Context, base *gorm.DB, defaultSize int, fetch func(page *gorm.DB) (interface{}, error)) (*dto.Page, error) {
	params, err := ParsePageParams(c, defaultSize)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	lastPage := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	if lastPage < 1 {
		lastPage = 1
	}
	if params.Page > lastPage {
		return nil, invalidPage()
	}

	results, err := fetch(base.Session(&gorm.Session{}).Offset(params.Offset()).Limit(params.PageSize))
	if err != nil {
		return nil, err
	}

	page := &dto.Page{Count: total, Results: results}
	if params.Page < lastPage {
		next := pageURL(c, params.Page+1)
		page.Next = &next
	}
	if params.Page > 1 {
		prev := pageURL(c, params.Page-1)
		page.Previous = &prev
	}
	return page, nil
}

// pageURL rebuilds the absolute request URL pointing at page. Page 1 drops
// the page parameter.
func pageURL(c *gin.Context, page int) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := c.Request.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}

	u := scheme + "://" + c.Request.Host + c.Request.URL.Path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}
