package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"himakeu/pkg/directory"
	"himakeu/pkg/ledger"
)

// All responses share the {"success": ..., "message": ..., "data": ...}
// shape the frontend expects.

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMsg(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failErr maps store-level errors onto HTTP statuses. Unrecognized errors
// become a generic 500; the real cause goes to the log, not the client.
func failErr(c *gin.Context, err error) {
	var vErr *directory.ValidationError
	switch {
	case errors.As(err, &vErr):
		fail(c, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, directory.ErrDuplicate):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, directory.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidAction):
		fail(c, http.StatusBadRequest, `Invalid action. Must be "approve" or "reject"`)
	case errors.Is(err, ledger.ErrInvalidTransition):
		fail(c, http.StatusConflict, "Transaction has already been decided")
	default:
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
