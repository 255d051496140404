package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/account"
)

type MeHandler struct {
	me *account.Me
}

func NewMeHandler(me *account.Me) *MeHandler {
	return &MeHandler{me: me}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	p, err := h.me.Execute(c.Request.Context(), actor)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var profile any
	switch {
	case p.Patient != nil:
		profile = p.Patient
	case p.Doctor != nil:
		profile = p.Doctor
	}

	httpresp.OK(c, gin.H{
		"user":    dto.NewUserDTO(*p.User),
		"profile": profile,
	})
}
