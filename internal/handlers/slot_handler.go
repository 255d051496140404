package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/schedule"
)

type SlotHandler struct {
	create    *schedule.CreateSlot
	available *schedule.ListAvailable
}

func NewSlotHandler(create *schedule.CreateSlot, available *schedule.ListAvailable) *SlotHandler {
	return &SlotHandler{create: create, available: available}
}

type CreateSlotRequest struct {
	DoctorID  uint   `json:"doctorId"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// ListForDoctor is public: patients browse before booking.
func (h *SlotHandler) ListForDoctor(c *gin.Context) {
	doctorID, ok := paramID(c, "doctorId")
	if !ok {
		return
	}

	slots, err := h.available.Execute(c.Request.Context(), doctorID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, slots)
}

func (h *SlotHandler) Create(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var req CreateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	sl, err := h.create.Execute(c.Request.Context(), schedule.CreateSlotInput{
		Actor:     actor,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		StartTime: req.StartTime,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Created(c, sl)
}
