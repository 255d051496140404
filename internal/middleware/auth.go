package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware verifies the bearer token and fails closed: nothing after it
// runs unless the token checks out.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		var verified *auth.VerifiedToken
		if err == nil {
			verified, err = tokens.Verify(raw)
		}
		if err != nil {
			be, ok := httperr.AsBusiness(err)
			if !ok {
				be = auth.ErrInvalidToken
			}
			httperr.Abort(c, be)
			return
		}

		c.Set(ContextUserID, verified.UserID)
		c.Set(ContextUserRole, verified.Role)

		c.Next()
	}
}

// RequireRole runs after AuthMiddleware. A verified token is not enough on
// its own: the role must also satisfy the requirement.
func RequireRole(req role.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			httperr.Abort(c, auth.ErrInvalidToken)
			return
		}

		if res := req.Check(id.Role); !res.Allowed {
			httperr.Abort(c, auth.ErrForbidden.WithMessage(res.Reason))
			return
		}

		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (role.Identity, bool) {
	uid, ok1 := c.Get(ContextUserID)
	r, ok2 := c.Get(ContextUserRole)
	if !ok1 || !ok2 {
		return role.Identity{}, false
	}

	userID, ok1 := uid.(uint)
	userRole, ok2 := r.(role.Role)
	if !ok1 || !ok2 {
		return role.Identity{}, false
	}
	return role.Identity{UserID: userID, Role: userRole}, true
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", auth.ErrInvalidToken
	}
	return strings.TrimSpace(parts[1]), nil
}
