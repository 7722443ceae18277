package handlers

import (
	"strconv"
	"time"

	"clinic-manager-server/internal/middleware"
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PatientHandler handles the patient clinical-record registry:
// demographics, emergency contact, medical background, search and
// demographic statistics. Staff only; the registry also covers walk-in
// patients without a login account.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// CreatePatientRequest represents the request body for registering a
// patient record.
type CreatePatientRequest struct {
	UserID             string                     `json:"userId"`
	FirstName          string                     `json:"firstName" binding:"required,min=2,max=50"`
	LastName           string                     `json:"lastName" binding:"required,min=2,max=50"`
	DateOfBirth        time.Time                  `json:"dateOfBirth" binding:"required"`
	Gender             string                     `json:"gender" binding:"required"`
	PhoneNumber        string                     `json:"phoneNumber" binding:"required"`
	Email              string                     `json:"email" binding:"required,email"`
	Address            models.Address             `json:"address" binding:"required"`
	EmergencyContact   models.EmergencyContact    `json:"emergencyContact" binding:"required"`
	BloodType          string                     `json:"bloodType"`
	Allergies          []models.Allergy           `json:"allergies"`
	MedicalHistory     []models.MedicalCondition  `json:"medicalHistory"`
	CurrentMedications []models.PatientMedication `json:"currentMedications"`
	Insurance          *models.Insurance          `json:"insurance"`
	Notes              string                     `json:"notes" binding:"max=1000"`
}

// patientView decorates a patient record with its derived age.
type patientView struct {
	*models.Patient
	Age int `json:"age"`
}

func patientViewOf(p *models.Patient) patientView {
	return patientView{Patient: p, Age: p.Age()}
}

// patientPage is the paginated shape of patient listings.
type patientPage struct {
	Patients []patientView `json:"patients"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	Limit    int           `json:"limit"`
}

func patientViews(patients []models.Patient) []patientView {
	views := make([]patientView, 0, len(patients))
	for i := range patients {
		views = append(views, patientViewOf(&patients[i]))
	}
	return views
}

// CreatePatient handles registering a patient record. Staff only.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	gender, ok := models.ParseGender(req.Gender)
	if !ok {
		utils.BadRequest(c, "Invalid gender: "+req.Gender)
		return
	}
	bloodType := models.BloodUnknown
	if req.BloodType != "" {
		bloodType, ok = models.ParseBloodType(req.BloodType)
		if !ok {
			utils.BadRequest(c, "Invalid blood type: "+req.BloodType)
			return
		}
	}

	var existing models.Patient
	if err := h.DB.Where("email = ? AND is_active = ?", req.Email, true).First(&existing).Error; err == nil {
		utils.Conflict(c, "A patient with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	patient := models.Patient{
		UserID:             req.UserID,
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		DateOfBirth:        req.DateOfBirth,
		Gender:             gender,
		PhoneNumber:        req.PhoneNumber,
		Email:              req.Email,
		Address:            req.Address,
		EmergencyContact:   req.EmergencyContact,
		BloodType:          bloodType,
		Allergies:          req.Allergies,
		MedicalHistory:     req.MedicalHistory,
		CurrentMedications: req.CurrentMedications,
		Insurance:          req.Insurance,
		Notes:              req.Notes,
		IsActive:           true,
		CreatedByID:        actorID,
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A patient with this email already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patientViewOf(&patient))
}

// ListPatients handles listing active patient records with optional
// gender, blood type, age range and name/email filters.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.DB.Model(&models.Patient{}).Where("is_active = ?", true)

	if genderParam := c.Query("gender"); genderParam != "" {
		gender, ok := models.ParseGender(genderParam)
		if !ok {
			utils.BadRequest(c, "Invalid gender filter: "+genderParam)
			return
		}
		query = query.Where("gender = ?", gender)
	}
	if btParam := c.Query("bloodType"); btParam != "" {
		bloodType, ok := models.ParseBloodType(btParam)
		if !ok {
			utils.BadRequest(c, "Invalid blood type filter: "+btParam)
			return
		}
		query = query.Where("blood_type = ?", bloodType)
	}
	now := time.Now()
	if maxAge := c.Query("maxAge"); maxAge != "" {
		years, err := strconv.Atoi(maxAge)
		if err != nil || years < 0 {
			utils.BadRequest(c, "Invalid maxAge filter: "+maxAge)
			return
		}
		query = query.Where("date_of_birth >= ?", now.AddDate(-years, 0, 0))
	}
	if minAge := c.Query("minAge"); minAge != "" {
		years, err := strconv.Atoi(minAge)
		if err != nil || years < 0 {
			utils.BadRequest(c, "Invalid minAge filter: "+minAge)
			return
		}
		query = query.Where("date_of_birth <= ?", now.AddDate(-years, 0, 0))
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	var patients []models.Patient
	if err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patientPage{
		Patients: patientViews(patients),
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// GetPatientByID handles fetching a single patient record.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	if err := h.DB.Preload("CreatedBy").Preload("LastUpdatedBy").
		First(&patient, "id = ? AND is_active = ?", patientID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient fetched successfully", patientViewOf(&patient))
}

// SearchPatientsRequest represents the request body for a patient
// search: a free-text query over name and email plus structured
// filters into the medical background.
type SearchPatientsRequest struct {
	Query   string `json:"query"`
	Filters struct {
		Gender    string `json:"gender"`
		BloodType string `json:"bloodType"`
		City      string `json:"city"`
		Allergy   string `json:"allergy"`
		Condition string `json:"condition"`
	} `json:"filters"`
}

// SearchPatients handles searching patient records. The medical
// background collections are stored as JSON columns, so allergy and
// condition filters match with a substring scan.
func (h *PatientHandler) SearchPatients(c *gin.Context) {
	var req SearchPatientsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.DB.Model(&models.Patient{}).Where("is_active = ?", true)

	if req.Query != "" {
		like := "%" + req.Query + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}
	if req.Filters.Gender != "" {
		gender, ok := models.ParseGender(req.Filters.Gender)
		if !ok {
			utils.BadRequest(c, "Invalid gender filter: "+req.Filters.Gender)
			return
		}
		query = query.Where("gender = ?", gender)
	}
	if req.Filters.BloodType != "" {
		bloodType, ok := models.ParseBloodType(req.Filters.BloodType)
		if !ok {
			utils.BadRequest(c, "Invalid blood type filter: "+req.Filters.BloodType)
			return
		}
		query = query.Where("blood_type = ?", bloodType)
	}
	if req.Filters.City != "" {
		query = query.Where("address LIKE ?", "%"+req.Filters.City+"%")
	}
	if req.Filters.Allergy != "" {
		query = query.Where("allergies LIKE ?", "%"+req.Filters.Allergy+"%")
	}
	if req.Filters.Condition != "" {
		query = query.Where("medical_history LIKE ?", "%"+req.Filters.Condition+"%")
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	var patients []models.Patient
	if err := query.Order("created_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to search patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patientPage{
		Patients: patientViews(patients),
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// UpdatePatientRequest represents the request body for updating a
// patient record. All fields optional.
type UpdatePatientRequest struct {
	FirstName          *string                     `json:"firstName"`
	LastName           *string                     `json:"lastName"`
	DateOfBirth        *time.Time                  `json:"dateOfBirth"`
	Gender             *string                     `json:"gender"`
	PhoneNumber        *string                     `json:"phoneNumber"`
	Email              *string                     `json:"email"`
	Address            *models.Address             `json:"address"`
	EmergencyContact   *models.EmergencyContact    `json:"emergencyContact"`
	BloodType          *string                     `json:"bloodType"`
	Allergies          *[]models.Allergy           `json:"allergies"`
	MedicalHistory     *[]models.MedicalCondition  `json:"medicalHistory"`
	CurrentMedications *[]models.PatientMedication `json:"currentMedications"`
	Insurance          *models.Insurance           `json:"insurance"`
	Notes              *string                     `json:"notes"`
}

// UpdatePatient handles a partial update of a patient record. Staff
// only.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	patientID := c.Param("id")

	var req UpdatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ? AND is_active = ?", patientID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Email != nil && *req.Email != patient.Email {
		var existing models.Patient
		err := h.DB.Where("email = ? AND id <> ? AND is_active = ?", *req.Email, patientID, true).
			First(&existing).Error
		if err == nil {
			utils.Conflict(c, "This email is already used by another patient")
			return
		} else if err != gorm.ErrRecordNotFound {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		patient.Email = *req.Email
	}
	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		gender, ok := models.ParseGender(*req.Gender)
		if !ok {
			utils.BadRequest(c, "Invalid gender: "+*req.Gender)
			return
		}
		patient.Gender = gender
	}
	if req.PhoneNumber != nil {
		patient.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = *req.EmergencyContact
	}
	if req.BloodType != nil {
		bloodType, ok := models.ParseBloodType(*req.BloodType)
		if !ok {
			utils.BadRequest(c, "Invalid blood type: "+*req.BloodType)
			return
		}
		patient.BloodType = bloodType
	}
	if req.Allergies != nil {
		patient.Allergies = *req.Allergies
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}
	if req.CurrentMedications != nil {
		patient.CurrentMedications = *req.CurrentMedications
	}
	if req.Insurance != nil {
		patient.Insurance = req.Insurance
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	patient.LastUpdatedByID = actorID

	if err := h.DB.Save(&patient).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "This email is already used by another patient")
			return
		}
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patientViewOf(&patient))
}

// DeactivatePatient handles soft-deleting a patient record.
func (h *PatientHandler) DeactivatePatient(c *gin.Context) {
	patientID := c.Param("id")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ? AND is_active = ?", patientID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	patient.IsActive = false
	patient.LastUpdatedByID = actorID
	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deactivated successfully", nil)
}

// patientStats is the demographic break-down of the active registry.
type patientStats struct {
	Total       int64            `json:"total"`
	ByGender    map[string]int64 `json:"byGender"`
	ByBloodType map[string]int64 `json:"byBloodType"`
	ByAgeGroup  map[string]int64 `json:"byAgeGroup"`
}

// GetPatientStats handles the registry statistics: totals grouped by
// gender, blood type, and age bracket.
func (h *PatientHandler) GetPatientStats(c *gin.Context) {
	stats := patientStats{
		ByGender:    map[string]int64{},
		ByBloodType: map[string]int64{},
		ByAgeGroup:  map[string]int64{},
	}

	if err := h.DB.Model(&models.Patient{}).
		Where("is_active = ?", true).Count(&stats.Total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count patients: "+err.Error())
		return
	}

	type groupCount struct {
		Key   string
		Count int64
	}

	var byGender []groupCount
	if err := h.DB.Model(&models.Patient{}).
		Select("gender as `key`, count(*) as count").
		Where("is_active = ?", true).
		Group("gender").Scan(&byGender).Error; err != nil {
		utils.InternalServerError(c, "Failed to group patients: "+err.Error())
		return
	}
	for _, g := range byGender {
		stats.ByGender[g.Key] = g.Count
	}

	var byBloodType []groupCount
	if err := h.DB.Model(&models.Patient{}).
		Select("blood_type as `key`, count(*) as count").
		Where("is_active = ?", true).
		Group("blood_type").Scan(&byBloodType).Error; err != nil {
		utils.InternalServerError(c, "Failed to group patients: "+err.Error())
		return
	}
	for _, g := range byBloodType {
		stats.ByBloodType[g.Key] = g.Count
	}

	// Age brackets are derived in Go so the bucketing matches AgeAt
	// exactly instead of approximating with SQL date arithmetic.
	var births []time.Time
	if err := h.DB.Model(&models.Patient{}).
		Where("is_active = ?", true).
		Pluck("date_of_birth", &births).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patient ages: "+err.Error())
		return
	}
	now := time.Now()
	for _, dob := range births {
		p := models.Patient{DateOfBirth: dob}
		stats.ByAgeGroup[models.AgeBracket(p.AgeAt(now))]++
	}

	utils.Success(c, "Patient statistics fetched successfully", stats)
}
