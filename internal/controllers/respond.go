package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/middleware"
	"bus_tracker/internal/models"
	"bus_tracker/internal/services"
)

// respondError writes err as {"message", "code"}. Errors that are not
// domain errors are logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	var e *services.Error
	if errors.As(err, &e) {
		c.JSON(httpStatus(e.Kind), gin.H{"message": e.Message, "code": e.Code})
		return
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error", "code": "INTERNAL"})
}

func httpStatus(k services.Kind) int {
	switch k {
	case services.KindValidation, services.KindInvariant:
		return http.StatusBadRequest
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, services.BindError(err))
		return false
	}
	return true
}

// bindOptionalJSON binds a body that may be absent entirely.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, services.BindError(err))
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, services.Invalid(name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

// principal returns the caller set by RequireAuth.
func principal(c *gin.Context) models.Principal {
	p, _ := middleware.CurrentPrincipal(c)
	return p
}

func approvalQuery(c *gin.Context) services.ApprovalQuery {
	return services.ApprovalQuery{
		Pending:  c.Query("pending") == "true",
		Approved: c.Query("approved") == "true",
		Rejected: c.Query("rejected") == "true",
		Mine:     c.Query("mine") == "true",
	}
}

type rejectInput struct {
	Reason string `json:"reason"`
}
