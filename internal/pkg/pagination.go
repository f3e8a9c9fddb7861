package pkg

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
	"gorm.io/gorm"

	"github.com/simp-lee/userapi/internal/domain"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
	defaultSort     = "id:desc"
)

// reservedParams lists query parameter names used for pagination/sorting, not for filtering.
var reservedParams = map[string]bool{
	"page":      true,
	"page_size": true,
	"sort":      true,
	"ordering":  true,
	"format":    true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParsePageRequest extracts pagination, sorting, and filtering parameters from query params.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	sort := c.Query("sort")
	if sort == "" {
		sort = orderingToSort(c.Query("ordering"))
	}
	if sort == "" {
		sort = defaultSort
	}

	filter := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filter[key] = values[0]
		}
	}

	return domain.PageRequest{
		Page:     page,
		PageSize: pageSize,
		Sort:     sort,
		Filter:   filter,
	}
}

// orderingToSort converts an "ordering" value such as "-created_at" into the
// "field:direction" form used by Sort. Only the first comma-separated field is kept.
func orderingToSort(ordering string) string {
	field, _, _ := strings.Cut(strings.TrimSpace(ordering), ",")
	field = strings.TrimSpace(field)
	if field == "" || field == "-" {
		return ""
	}
	if rest, ok := strings.CutPrefix(field, "-"); ok {
		return rest + ":desc"
	}
	return field + ":asc"
}

// Sort returns a GORM scope that applies ORDER BY based on the page request.
// Field names must match a strict pattern and appear in allowed. A sort value
// that fails either check falls back to defaultSort so pages stay deterministic.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if field, direction, ok := parseSort(req.Sort); ok && isAllowed(field, allowed) {
			return db.Order(field + " " + direction)
		}
		field, direction, _ := parseSort(defaultSort)
		return db.Order(field + " " + direction)
	}
}

func parseSort(sort string) (field, direction string, ok bool) {
	field, direction, found := strings.Cut(sort, ":")
	if !found {
		return "", "", false
	}
	field = strings.TrimSpace(field)
	direction = strings.ToLower(strings.TrimSpace(direction))
	if direction != "asc" && direction != "desc" {
		return "", "", false
	}
	if !validFieldName.MatchString(field) {
		return "", "", false
	}
	return field, direction, true
}

// likeEscaper escapes LIKE wildcards so filter values match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Filter returns a GORM scope that applies WHERE conditions based on the page request filters.
// Only filter keys present in the allowed list are applied; others are silently ignored.
// Keys ending with "__like" match the value as a substring; others use exact match.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for key, value := range req.Filter {
			field, like := strings.CutSuffix(key, "__like")
			if !validFieldName.MatchString(field) || !isAllowed(field, allowed) {
				continue
			}
			if like {
				db = db.Where(field+` LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(value)+"%")
			} else {
				db = db.Where(field+" = ?", value)
			}
		}
		return db
	}
}

// Paginate loads one page of query with simp-lee/pagination. query must already
// carry its filters; the Sort scope is applied to the page query only.
// A page past the end is clamped to the last page.
func Paginate[T any](ctx context.Context, query *gorm.DB, req domain.PageRequest, sortable []string) (*pagination.Pagination[T], error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	p := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](pageSize),
		pagination.WithItemTotalCallback[T](func(ctx context.Context) (int64, error) {
			var total int64
			err := query.WithContext(ctx).Count(&total).Error
			return total, err
		}),
		pagination.WithSliceCallback[T](func(ctx context.Context, offset, limit int) ([]T, error) {
			var items []T
			err := query.WithContext(ctx).
				Scopes(Sort(req, sortable)).
				Offset(offset).
				Limit(limit).
				Find(&items).Error
			return items, err
		}),
	)
	return p.Paginate(ctx, page)
}

// isAllowed checks if a field name is in the allowed list.
func isAllowed(field string, allowed []string) bool {
	return slices.Contains(allowed, field)
}
