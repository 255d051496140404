package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/domain/role"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book     *usecase.BookAppointment
	list     *usecase.ListAppointments
	cancel   *usecase.CancelAppointment
	complete *usecase.CompleteAppointment
}

func NewAppointmentHandler(
	book *usecase.BookAppointment,
	list *usecase.ListAppointments,
	cancel *usecase.CancelAppointment,
	complete *usecase.CompleteAppointment,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:     book,
		list:     list,
		cancel:   cancel,
		complete: complete,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	PatientID uint   `json:"patientId"`
	DoctorID  uint   `json:"doctorId" binding:"required"`
	SlotID    uint   `json:"slotId" binding:"required"`
	Symptoms  string `json:"symptoms" binding:"max=500"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), usecase.BookAppointmentInput{
		Actor:     actor,
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		SlotID:    req.SlotID,
		Symptoms:  req.Symptoms,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, dto.NewAppointmentDTO(*ap))
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	status, err := domain.ParseStatus(c.Query("status"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	items, err := h.list.Execute(c.Request.Context(), actor, status)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, items)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, h.cancel.Execute)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, h.complete.Execute)
}

type transitionFunc func(ctx context.Context, actor role.Identity, id uint) (*models.Appointment, error)

func (h *AppointmentHandler) transition(c *gin.Context, run transitionFunc) {
	actor, ok := identity(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := run(c.Request.Context(), actor, id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.OK(c, dto.NewAppointmentDTO(*ap))
}
