package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

var errInvalidID = httperr.Validation("INVALID_ID", "Path id must be a positive integer.")

// identity is set by AuthMiddleware; a missing one means the route was
// wired without it, which must not turn into an anonymous request.
func identity(c *gin.Context) (role.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		httperr.Abort(c, auth.ErrMissingToken)
	}
	return id, ok
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.Respond(c, errInvalidID)
		return 0, false
	}
	return uint(v), true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		httperr.BadRequest(c, httperr.CodeInvalidRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryDay parses a YYYY-MM-DD query value. endOfDay moves it to the last
// instant of that day so "to" filters are inclusive.
func queryDay(c *gin.Context, key string, endOfDay bool) *time.Time {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	t, err := time.Parse(validators.DateLayout, v)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}

func queryInt(c *gin.Context, key string, def, max int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	if max > 0 && n > max {
		return def
	}
	return n
}
