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

// LabOrderHandler handles laboratory order requests.
type LabOrderHandler struct {
	DB      *gorm.DB
	Service *service.LabOrderService
	Metrics *metrics.Collector
}

// NewLabOrderHandler creates a new LabOrderHandler.
func NewLabOrderHandler(db *gorm.DB, svc *service.LabOrderService, collector *metrics.Collector) *LabOrderHandler {
	return &LabOrderHandler{DB: db, Service: svc, Metrics: collector}
}

// CreateLabOrderRequest represents the request body for ordering lab
// tests.
type CreateLabOrderRequest struct {
	PatientID       string              `json:"patientId" binding:"required,uuid"`
	ConsultationID  *string             `json:"consultationId"`
	LaboratoryID    *string             `json:"laboratoryId"`
	Tests           []models.LabTest    `json:"tests" binding:"required"`
	Priority        models.LabPriority  `json:"priority"`
	ClinicalInfo    models.ClinicalInfo `json:"clinicalInfo"`
	AppointmentDate *time.Time          `json:"appointmentDate"`
	Notes           string              `json:"notes"`
}

// CreateLabOrder handles ordering a panel of lab tests for a patient.
// Doctor only.
func (h *LabOrderHandler) CreateLabOrder(c *gin.Context) {
	var req CreateLabOrderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	order, err := h.Service.Create(c.Request.Context(), service.CreateLabOrderCommand{
		PatientID:       req.PatientID,
		DoctorID:        doctorID,
		ConsultationID:  req.ConsultationID,
		LaboratoryID:    req.LaboratoryID,
		Tests:           req.Tests,
		Priority:        req.Priority,
		ClinicalInfo:    req.ClinicalInfo,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Metrics.LabOrdersTotal.WithLabelValues(string(order.Priority)).Inc()
	utils.Created(c, "Lab order created successfully", order)
}

// TestResultRequest represents the request body for recording a single
// test's result.
type TestResultRequest struct {
	TestIndex int               `json:"testIndex" binding:"min=0"`
	Result    models.TestResult `json:"result" binding:"required"`
}

// UpdateTestResult handles recording one test's result; the order
// status rolls up from its tests afterwards.
func (h *LabOrderHandler) UpdateTestResult(c *gin.Context) {
	orderID := c.Param("id")

	var req TestResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	reportedBy, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	order, err := h.Service.UpdateTestResult(c.Request.Context(), orderID, req.TestIndex, req.Result, reportedBy)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Test result recorded successfully", order)
}

// AssignLaboratoryRequest represents the request body for routing an
// order to a partner laboratory.
type AssignLaboratoryRequest struct {
	LaboratoryID string `json:"laboratoryId" binding:"required,uuid"`
}

// AssignToLaboratory handles routing an order to a partner laboratory
// after checking it can run every test on the panel.
func (h *LabOrderHandler) AssignToLaboratory(c *gin.Context) {
	orderID := c.Param("id")

	var req AssignLaboratoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	order, err := h.Service.AssignToLaboratory(c.Request.Context(), orderID, req.LaboratoryID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Lab order assigned to laboratory successfully", order)
}

// LabOrderStatusRequest represents the request body for a manual order
// status change.
type LabOrderStatusRequest struct {
	Status   models.LabOrderStatus `json:"status" binding:"required"`
	LabNotes string                `json:"labNotes"`
}

// UpdateLabOrderStatus handles moving an order through its workflow
// statuses (sample collection, processing, reporting).
func (h *LabOrderHandler) UpdateLabOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req LabOrderStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	order, err := h.Service.UpdateStatus(c.Request.Context(), orderID, req.Status, req.LabNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Lab order status updated successfully", order)
}

// CancelLabOrderRequest represents the request body for cancelling an
// order.
type CancelLabOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelLabOrder handles cancelling an order that has not been
// completed or reported yet.
func (h *LabOrderHandler) CancelLabOrder(c *gin.Context) {
	orderID := c.Param("id")

	var req CancelLabOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.Service.Cancel(c.Request.Context(), orderID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Lab order cancelled successfully", order)
}

// GetLabOrderByID handles fetching a single lab order.
func (h *LabOrderHandler) GetLabOrderByID(c *gin.Context) {
	orderID := c.Param("id")

	var order models.LabOrder
	if err := h.DB.Preload("Patient").Preload("Doctor").Preload("Laboratory").
		First(&order, "id = ? AND is_active = ?", orderID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Lab order not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole.Is(models.RolePatient) && order.PatientID != userID {
		utils.Forbidden(c, "You are not authorized to view this lab order")
		return
	}

	utils.Success(c, "Lab order fetched successfully", order)
}

// GetLabOrdersForUser handles listing lab orders: patients see their
// own, doctors the ones they ordered, staff everything.
func (h *LabOrderHandler) GetLabOrdersForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").
		Where("is_active = ?", true).Order("created_at desc")

	var orders []models.LabOrder
	var err error
	switch {
	case userRole.Is(models.RolePatient):
		err = query.Where("patient_id = ?", userID).Find(&orders).Error
	case userRole.Is(models.RoleDoctor):
		err = query.Where("doctor_id = ?", userID).Find(&orders).Error
	default:
		err = query.Find(&orders).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch lab orders: "+err.Error())
		return
	}

	utils.Success(c, "Lab orders fetched successfully", orders)
}
