package handlers

import (
	"time"

	"clinic-manager-server/internal/middleware"
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/service"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ConsultationHandler handles consultation related requests.
type ConsultationHandler struct {
	DB      *gorm.DB
	Service *service.ConsultationService
}

// NewConsultationHandler creates a new ConsultationHandler.
func NewConsultationHandler(db *gorm.DB, svc *service.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{DB: db, Service: svc}
}

// ConsultationRequest represents the clinical fields of a create or
// update request. All fields are optional patches except the
// appointment reference on creation.
type ConsultationRequest struct {
	AppointmentID string             `json:"appointmentId"`
	Diagnosis     *string            `json:"diagnosis"`
	Symptoms      *string            `json:"symptoms"`
	Treatment     *string            `json:"treatment"`
	MedicalNotes  *string            `json:"medicalNotes"`
	VitalSigns    *models.VitalSigns `json:"vitalSigns"`
	LabTests      []string           `json:"labTests"`
	FollowUpDate  *time.Time         `json:"followUpDate"`
}

func (r *ConsultationRequest) toInput() service.ConsultationInput {
	return service.ConsultationInput{
		Diagnosis:    r.Diagnosis,
		Symptoms:     r.Symptoms,
		Treatment:    r.Treatment,
		MedicalNotes: r.MedicalNotes,
		VitalSigns:   r.VitalSigns,
		LabTests:     r.LabTests,
		FollowUpDate: r.FollowUpDate,
	}
}

// CreateConsultation handles writing the consultation of a completed
// appointment. Doctor only; the appointment must belong to the doctor.
func (h *ConsultationHandler) CreateConsultation(c *gin.Context) {
	var req ConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if req.AppointmentID == "" {
		utils.BadRequest(c, "appointmentId is required")
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	consultation, err := h.Service.Create(c.Request.Context(), req.AppointmentID, doctorID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Created(c, "Consultation created successfully", consultation)
}

// UpdateConsultation handles amending a consultation's clinical fields.
// Only the authoring doctor may update it.
func (h *ConsultationHandler) UpdateConsultation(c *gin.Context) {
	consultationID := c.Param("id")

	var req ConsultationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	consultation, err := h.Service.Update(c.Request.Context(), consultationID, doctorID, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.Success(c, "Consultation updated successfully", consultation)
}

// consultationView pairs a consultation with its derived summary.
type consultationView struct {
	models.Consultation
	Summary models.ConsultationSummary `json:"summary"`
}

// GetConsultationByID handles fetching a single consultation with its
// derived summary (BMI, follow-up flag).
func (h *ConsultationHandler) GetConsultationByID(c *gin.Context) {
	consultationID := c.Param("id")

	var consultation models.Consultation
	if err := h.DB.Preload("Patient").Preload("Doctor").Preload("Appointment").
		First(&consultation, "id = ?", consultationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Consultation not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole.Is(models.RolePatient) && consultation.PatientID != userID {
		utils.Forbidden(c, "You are not authorized to view this consultation")
		return
	}

	utils.Success(c, "Consultation fetched successfully", consultationView{
		Consultation: consultation,
		Summary:      consultation.Summary(),
	})
}

// GetConsultationsForUser handles listing consultations: patients see
// their own record, doctors see the ones they authored, staff see all.
func (h *ConsultationHandler) GetConsultationsForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor").Order("date desc")

	var consultations []models.Consultation
	var err error
	switch {
	case userRole.Is(models.RolePatient):
		err = query.Where("patient_id = ?", userID).Find(&consultations).Error
	case userRole.Is(models.RoleDoctor):
		err = query.Where("doctor_id = ?", userID).Find(&consultations).Error
	default:
		err = query.Find(&consultations).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch consultations: "+err.Error())
		return
	}

	utils.Success(c, "Consultations fetched successfully", consultations)
}

// GetPatientConsultations handles listing a given patient's
// consultation history. Staff only.
func (h *ConsultationHandler) GetPatientConsultations(c *gin.Context) {
	patientID := c.Param("id")

	var consultations []models.Consultation
	if err := h.DB.Preload("Doctor").Where("patient_id = ?", patientID).
		Order("date desc").Find(&consultations).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch consultations: "+err.Error())
		return
	}

	utils.Success(c, "Consultations fetched successfully", consultations)
}
