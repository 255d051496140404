package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/auth"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/middleware"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/account"
)

type AuthHandler struct {
	tokens        *auth.TokenService
	signup        *account.Signup
	login         *account.Login
	resetPassword *account.ResetPassword
	listUsers     *account.ListUsers
	deleteUser    *account.DeleteUser
}

func NewAuthHandler(
	tokens *auth.TokenService,
	signup *account.Signup,
	login *account.Login,
	resetPassword *account.ResetPassword,
	listUsers *account.ListUsers,
	deleteUser *account.DeleteUser,
) *AuthHandler {
	return &AuthHandler{
		tokens:        tokens,
		signup:        signup,
		login:         login,
		resetPassword: resetPassword,
		listUsers:     listUsers,
		deleteUser:    deleteUser,
	}
}

// --------- Requests ---------

type SignupRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Role        string `json:"role" binding:"required"`
	Name        string `json:"name" binding:"max=100"`
	Phone       string `json:"phone" binding:"max=20"`
	DateOfBirth string `json:"dateOfBirth"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type sessionResponse struct {
	User  dto.UserDTO `json:"user"`
	Token string      `json:"token"`
}

// --------- Handlers ---------

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.signup.Execute(c.Request.Context(), account.SignupInput{
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Name:        req.Name,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, sessionResponse{User: dto.NewUserDTO(*s.User), Token: s.Token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.login.Execute(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, sessionResponse{User: dto.NewUserDTO(*s.User), Token: s.Token})
}

// Verify reports token validity in the body as well as the status so a
// client can branch on either.
func (h *AuthHandler) Verify(c *gin.Context) {
	raw, err := middleware.BearerToken(c.GetHeader("Authorization"))
	var verified *auth.VerifiedToken
	if err == nil {
		verified, err = h.tokens.Verify(raw)
	}
	if err != nil {
		be, ok := httperr.AsBusiness(err)
		if !ok {
			be = auth.ErrInvalidToken
		}
		c.JSON(http.StatusUnauthorized, gin.H{
			"valid":     false,
			"errorCode": be.Code,
			"kind":      be.Kind,
			"message":   be.Message,
		})
		return
	}

	httpresp.OK(c, gin.H{
		"valid":     true,
		"userId":    verified.UserID,
		"role":      verified.Role,
		"expiresAt": verified.ExpiresAt,
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var req PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.resetPassword.Execute(c.Request.Context(), actor, req.Email, req.NewPassword); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, gin.H{"message": "Password updated."})
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.listUsers.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, users)
}

func (h *AuthHandler) DeleteUser(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	report, err := h.deleteUser.Execute(c.Request.Context(), actor, userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, report)
}
