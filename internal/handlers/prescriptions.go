package handlers

import (
	"strconv"

	"clinic-manager-server/internal/metrics"
	"clinic-manager-server/internal/middleware"
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/service"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PrescriptionHandler handles prescription lifecycle requests: the
// doctor-side draft/sign flow and the pharmacy-side fulfillment flow.
type PrescriptionHandler struct {
	DB      *gorm.DB
	Service *service.PrescriptionService
	Metrics *metrics.Collector
}

// NewPrescriptionHandler creates a new PrescriptionHandler.
func NewPrescriptionHandler(db *gorm.DB, svc *service.PrescriptionService, collector *metrics.Collector) *PrescriptionHandler {
	return &PrescriptionHandler{DB: db, Service: svc, Metrics: collector}
}

// CreatePrescriptionRequest represents the request body for drafting a
// prescription.
type CreatePrescriptionRequest struct {
	ConsultationID string              `json:"consultationId" binding:"required,uuid"`
	Medications    []models.Medication `json:"medications" binding:"required"`
	Notes          string              `json:"notes"`
}

// CreatePrescription handles drafting a prescription for a
// consultation. Doctor only.
func (h *PrescriptionHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	prescription, err := h.Service.Create(c.Request.Context(), req.ConsultationID, doctorID, req.Medications, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// UpdatePrescriptionRequest represents the request body for amending a
// draft prescription.
type UpdatePrescriptionRequest struct {
	Medications []models.Medication `json:"medications"`
	Notes       *string             `json:"notes"`
}

// UpdatePrescription handles amending a draft. Signed prescriptions
// are immutable.
func (h *PrescriptionHandler) UpdatePrescription(c *gin.Context) {
	prescriptionID := c.Param("id")

	var req UpdatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	prescription, err := h.Service.Update(c.Request.Context(), prescriptionID, doctorID, req.Medications, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Prescription updated successfully", prescription)
}

// SignPrescription handles signing a draft, which freezes it and
// starts its validity year.
func (h *PrescriptionHandler) SignPrescription(c *gin.Context) {
	prescriptionID := c.Param("id")

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	prescription, err := h.Service.Sign(c.Request.Context(), prescriptionID, doctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Metrics.PrescriptionsIssued.Inc()
	utils.Success(c, "Prescription signed successfully", prescription)
}

// AssignPharmacyRequest represents the request body for routing a
// signed prescription to a pharmacy.
type AssignPharmacyRequest struct {
	PharmacyID string `json:"pharmacyId" binding:"required,uuid"`
}

// AssignToPharmacy handles routing a signed prescription to a pharmacy
// for fulfillment.
func (h *PrescriptionHandler) AssignToPharmacy(c *gin.Context) {
	prescriptionID := c.Param("id")

	var req AssignPharmacyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescription, err := h.Service.AssignToPharmacy(c.Request.Context(), prescriptionID, req.PharmacyID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Prescription assigned to pharmacy successfully", prescription)
}

// PharmacyStatusRequest represents the request body for the pharmacist
// status update.
type PharmacyStatusRequest struct {
	Status        models.PrescriptionStatus `json:"status" binding:"required"`
	PharmacyNotes string                    `json:"pharmacyNotes"`
}

// UpdatePharmacyStatus handles the pharmacist moving an assigned
// prescription through preparing, ready, delivered or rejected.
func (h *PrescriptionHandler) UpdatePharmacyStatus(c *gin.Context) {
	prescriptionID := c.Param("id")

	var req PharmacyStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	prescription, err := h.Service.PharmacyUpdateStatus(c.Request.Context(), prescriptionID, req.Status, req.PharmacyNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Prescription status updated successfully", prescription)
}

// queuePage is the paginated envelope of the pharmacy queue.
type queuePage struct {
	Prescriptions []models.Prescription `json:"prescriptions"`
	Total         int64                 `json:"total"`
	Page          int                   `json:"page"`
	Limit         int                   `json:"limit"`
}

// GetPharmacyQueue handles listing a pharmacy's work queue, optionally
// filtered by fulfillment status.
func (h *PrescriptionHandler) GetPharmacyQueue(c *gin.Context) {
	pharmacyID := c.Param("id")
	statusFilter := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	prescriptions, total, err := h.Service.PharmacyQueue(c.Request.Context(), pharmacyID, statusFilter, page, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Pharmacy queue fetched successfully", queuePage{
		Prescriptions: prescriptions,
		Total:         total,
		Page:          page,
		Limit:         limit,
	})
}

// GetPrescriptionByID handles fetching a single prescription.
func (h *PrescriptionHandler) GetPrescriptionByID(c *gin.Context) {
	prescriptionID := c.Param("id")

	var prescription models.Prescription
	if err := h.DB.Preload("Patient").Preload("Doctor").
		First(&prescription, "id = ? AND is_active = ?", prescriptionID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole.Is(models.RolePatient) && prescription.PatientID != userID {
		utils.Forbidden(c, "You are not authorized to view this prescription")
		return
	}

	utils.Success(c, "Prescription fetched successfully", prescription)
}

// GetPrescriptionsForUser handles listing prescriptions: patients see
// their own, doctors the ones they issued, staff everything.
func (h *PrescriptionHandler) GetPrescriptionsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").
		Where("is_active = ?", true).Order("created_at desc")

	var prescriptions []models.Prescription
	var err error
	switch {
	case userRole.Is(models.RolePatient):
		err = query.Where("patient_id = ?", userID).Find(&prescriptions).Error
	case userRole.Is(models.RoleDoctor):
		err = query.Where("doctor_id = ?", userID).Find(&prescriptions).Error
	default:
		err = query.Find(&prescriptions).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}
