package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"blog-api/internal/domain"
)

// pageQuery lee pageNumber, limit y search; valores inválidos caen a los defaults.
func pageQuery(c *gin.Context) domain.PageQuery {
	page, _ := strconv.Atoi(c.Query("pageNumber"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return domain.PageQuery{
		PageNumber: page,
		Limit:      limit,
		Search:     c.Query("search"),
	}.Normalize()
}
