package handlers

import (
	"time"

	"clinic-manager-server/internal/metrics"
	"clinic-manager-server/internal/middleware"
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/service"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests. Scheduling,
// rescheduling and cancellation go through the appointment service so
// conflict detection applies; plain reads hit the database directly.
type AppointmentHandler struct {
	DB      *gorm.DB
	Service *service.AppointmentService
	Metrics *metrics.Collector
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, svc *service.AppointmentService, collector *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Service: svc, Metrics: collector}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
type CreateAppointmentRequest struct {
	DoctorID  string    `json:"doctorId" binding:"required,uuid"`
	PatientID string    `json:"patientId" binding:"required,uuid"`
	StartTime time.Time `json:"startTime" binding:"required"`
	EndTime   time.Time `json:"endTime" binding:"required"`
	Reason    string    `json:"reason" binding:"required"`
}

// CreateAppointment handles booking a new appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	actorRole, _ := middleware.GetUserRoleFromContext(c)
	if actorRole.Is(models.RolePatient) && actorID != req.PatientID {
		utils.Forbidden(c, "Patients can only book appointments for themselves.")
		return
	}

	appointment, err := h.Service.Schedule(c.Request.Context(), service.ScheduleCommand{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Metrics.AppointmentsTotal.WithLabelValues(string(appointment.Status)).Inc()
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the
// logged-in user: patients see theirs, doctors see their own calendar,
// staff see everything.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("start_time asc")

	var appointments []models.Appointment
	var err error
	switch {
	case userRole.Is(models.RolePatient):
		err = query.Where("patient_id = ?", userID).Find(&appointments).Error
	case userRole.Is(models.RoleDoctor):
		err = query.Where("doctor_id = ?", userID).Find(&appointments).Error
	default:
		// Admin, nurse and secretary see the full schedule
		err = query.Find(&appointments).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient and doctor, and by staff.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	involved := userID == appointment.PatientID || userID == appointment.DoctorID
	if userRole.Is(models.RolePatient) && !involved {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentRequest represents a partial appointment update.
type UpdateAppointmentRequest struct {
	StartTime *time.Time                `json:"startTime"`
	EndTime   *time.Time                `json:"endTime"`
	Status    *models.AppointmentStatus `json:"status"`
	Reason    *string                   `json:"reason"`
	Notes     *string                   `json:"notes"`
}

// UpdateAppointment handles rescheduling and status changes. A time
// change re-runs conflict detection against the doctor's calendar.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, err := h.Service.Update(c.Request.Context(), appointmentID, service.UpdateCommand{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    req.Status,
		Reason:    req.Reason,
		Notes:     req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if req.Status != nil {
		h.Metrics.AppointmentsTotal.WithLabelValues(string(appointment.Status)).Inc()
	}
	utils.Success(c, "Appointment updated successfully", appointment)
}

// CancelAppointmentRequest represents the request body for cancelling.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// CancelAppointment handles cancelling an appointment. Patients may
// only cancel their own; cancelling twice is a no-op.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Service.Cancel(c.Request.Context(), appointmentID, actorID, actorRole, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Metrics.AppointmentsTotal.WithLabelValues(string(models.StatusCancelled)).Inc()
	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// GetDoctorAvailability handles computing a doctor's free slots for a
// given day within working hours.
func (h *AppointmentHandler) GetDoctorAvailability(c *gin.Context) {
	doctorID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		utils.BadRequest(c, "The 'date' query parameter is required (YYYY-MM-DD)")
		return
	}

	availability, err := h.Service.GetAvailability(c.Request.Context(), doctorID, date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Availability fetched successfully", availability)
}
