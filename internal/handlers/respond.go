// Package handlers contains HTTP request handlers for the task service.
package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
)

// respondError sends a JSON error body with the given status.
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondInternal logs the underlying error server-side and sends a generic
// message to the client. Store and runtime error text never reaches the
// response verbatim.
func respondInternal(c *gin.Context, err error, message string) {
	log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	respondError(c, 500, message)
}
