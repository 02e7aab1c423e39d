// Package response builds the JSON envelopes shared by every service so that
// all success and failure paths look identical to clients regardless of
// which middleware or handler produced them.
package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Success writes the standard success envelope
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   data,
	})
}

// List writes the standard paginated list envelope
func List(c *gin.Context, data interface{}, results int, total int64, page, pageSize int) {
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	c.JSON(200, gin.H{
		"status":  "success",
		"data":    data,
		"results": results,
		"total":   total,
		"page":    page,
		"pages":   pages,
	})
}

// Error writes the standard error envelope
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

// AbortError writes the standard error envelope and stops the handler chain
func AbortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

// Pagination extracts page/pageSize query parameters with clamped defaults
// and returns (page, pageSize, offset)
func Pagination(c *gin.Context) (int, int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}
