package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthHandler reports connectivity to both stores. Always 200: the probe
// is advisory and a degraded store is visible in the body, not the status.
func (app *application) healthHandler(c *gin.Context) {
	status := app.stores.healthCheck(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Himakeu Finance API is running",
		"timestamp": time.Now().Format(time.RFC3339),
		"databases": status,
	})
}
