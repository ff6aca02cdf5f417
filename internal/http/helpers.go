package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam parses a numeric path parameter. On failure it redirects to
// the book list and returns false; malformed IDs behave like missing books.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.Redirect(http.StatusFound, "/home")
		c.Abort()
		return 0, false
	}
	return uint(id), true
}
