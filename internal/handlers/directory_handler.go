package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/usecase/directory"
)

type DirectoryHandler struct {
	dir *directory.Directory
}

func NewDirectoryHandler(dir *directory.Directory) *DirectoryHandler {
	return &DirectoryHandler{dir: dir}
}

type UpdateDoctorProfileRequest struct {
	Name            *string  `json:"name" binding:"omitempty,max=100"`
	Specialization  *string  `json:"specialization" binding:"omitempty,max=100"`
	Qualification   *string  `json:"qualification" binding:"omitempty,max=100"`
	ExperienceYears *int     `json:"experienceYears"`
	ConsultationFee *float64 `json:"consultationFee"`
}

func (h *DirectoryHandler) Doctors(c *gin.Context) {
	doctors, err := h.dir.Doctors(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, doctors)
}

func (h *DirectoryHandler) Patients(c *gin.Context) {
	patients, err := h.dir.Patients(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, patients)
}

func (h *DirectoryHandler) UpdateMyProfile(c *gin.Context) {
	actor, ok := identity(c)
	if !ok {
		return
	}

	var req UpdateDoctorProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.dir.UpdateOwnDoctorProfile(c.Request.Context(), actor, directory.DoctorProfileInput{
		Name:            req.Name,
		Specialization:  req.Specialization,
		Qualification:   req.Qualification,
		ExperienceYears: req.ExperienceYears,
		ConsultationFee: req.ConsultationFee,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.OK(c, profile)
}
