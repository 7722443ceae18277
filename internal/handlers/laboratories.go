package handlers

import (
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LaboratoryHandler handles the partner laboratory catalog, including
// maintenance of each lab's available-test list.
type LaboratoryHandler struct {
	DB *gorm.DB
}

// NewLaboratoryHandler creates a new LaboratoryHandler.
func NewLaboratoryHandler(db *gorm.DB) *LaboratoryHandler {
	return &LaboratoryHandler{DB: db}
}

// LaboratoryRequest represents the request body for creating or
// updating a partner laboratory.
type LaboratoryRequest struct {
	Name              string                    `json:"name" binding:"required"`
	LicenseNumber     string                    `json:"licenseNumber" binding:"required"`
	Contact           models.ContactInfo        `json:"contact"`
	Address           models.Address            `json:"address"`
	OperatingHours    models.OperatingHours     `json:"operatingHours"`
	AvailableTests    []models.CatalogTest      `json:"availableTests"`
	PartnershipStatus *models.PartnershipStatus `json:"partnershipStatus"`
	Notes             string                    `json:"notes"`
}

// CreateLaboratory handles registering a partner laboratory. Admin only.
func (h *LaboratoryHandler) CreateLaboratory(c *gin.Context) {
	var req LaboratoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	lab := models.Laboratory{
		Name:              req.Name,
		LicenseNumber:     req.LicenseNumber,
		LabCode:           models.NewLabCode(req.Name, req.Address.City),
		Contact:           req.Contact,
		Address:           req.Address,
		OperatingHours:    req.OperatingHours,
		AvailableTests:    req.AvailableTests,
		PartnershipStatus: models.PartnershipActive,
		Notes:             req.Notes,
		IsActive:          true,
	}
	if req.PartnershipStatus != nil {
		lab.PartnershipStatus = *req.PartnershipStatus
	}

	if err := h.DB.Create(&lab).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A laboratory with this license number already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create laboratory: "+err.Error())
		return
	}

	utils.Created(c, "Laboratory created successfully", lab)
}

// ListLaboratories handles listing active partner laboratories.
func (h *LaboratoryHandler) ListLaboratories(c *gin.Context) {
	query := h.DB.Where("is_active = ?", true).Order("name asc")
	if c.Query("partnershipStatus") != "" {
		query = query.Where("partnership_status = ?", c.Query("partnershipStatus"))
	}

	var labs []models.Laboratory
	if err := query.Find(&labs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch laboratories: "+err.Error())
		return
	}

	utils.Success(c, "Laboratories fetched successfully", labs)
}

// GetLaboratoryByID handles fetching a single laboratory.
func (h *LaboratoryHandler) GetLaboratoryByID(c *gin.Context) {
	labID := c.Param("id")

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	utils.Success(c, "Laboratory fetched successfully", lab)
}

// UpdateLaboratory handles updating a partner laboratory. Admin only.
func (h *LaboratoryHandler) UpdateLaboratory(c *gin.Context) {
	labID := c.Param("id")

	var req LaboratoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	lab.Name = req.Name
	lab.LicenseNumber = req.LicenseNumber
	lab.Contact = req.Contact
	lab.Address = req.Address
	lab.OperatingHours = req.OperatingHours
	lab.AvailableTests = req.AvailableTests
	lab.Notes = req.Notes
	if req.PartnershipStatus != nil {
		lab.PartnershipStatus = *req.PartnershipStatus
	}

	if err := h.DB.Save(lab).Error; err != nil {
		utils.InternalServerError(c, "Failed to update laboratory: "+err.Error())
		return
	}

	utils.Success(c, "Laboratory updated successfully", lab)
}

// CatalogTestRequest represents the request body for adding or
// updating one entry of a laboratory's test catalog.
type CatalogTestRequest struct {
	TestCode string  `json:"testCode" binding:"required"`
	TestName string  `json:"testName" binding:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" binding:"min=0"`
	Duration string  `json:"duration"`
	Specimen string  `json:"specimen"`
	IsActive *bool   `json:"isActive"`
}

// UpsertCatalogTest handles adding a test to a laboratory's catalog,
// or updating the entry when the code already exists.
func (h *LaboratoryHandler) UpsertCatalogTest(c *gin.Context) {
	labID := c.Param("id")

	var req CatalogTestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	entry := models.CatalogTest{
		TestCode: req.TestCode,
		TestName: req.TestName,
		Category: req.Category,
		Price:    req.Price,
		Duration: req.Duration,
		Specimen: req.Specimen,
		IsActive: true,
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}

	replaced := false
	for i := range lab.AvailableTests {
		if lab.AvailableTests[i].TestCode == req.TestCode {
			lab.AvailableTests[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		lab.AvailableTests = append(lab.AvailableTests, entry)
	}

	if err := h.DB.Save(lab).Error; err != nil {
		utils.InternalServerError(c, "Failed to update laboratory catalog: "+err.Error())
		return
	}

	utils.Success(c, "Laboratory catalog updated successfully", lab)
}

// RemoveCatalogTest handles retiring a test from a laboratory's
// catalog. The entry is deactivated rather than removed so existing
// orders keep resolving its metadata.
func (h *LaboratoryHandler) RemoveCatalogTest(c *gin.Context) {
	labID := c.Param("id")
	testCode := c.Param("code")

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	found := false
	for i := range lab.AvailableTests {
		if lab.AvailableTests[i].TestCode == testCode {
			lab.AvailableTests[i].IsActive = false
			found = true
			break
		}
	}
	if !found {
		utils.NotFound(c, "Test not found in laboratory catalog")
		return
	}

	if err := h.DB.Save(lab).Error; err != nil {
		utils.InternalServerError(c, "Failed to update laboratory catalog: "+err.Error())
		return
	}

	utils.Success(c, "Test removed from laboratory catalog", lab)
}

// GetLaboratoryStatistics handles fetching a laboratory's order
// counters. Staff only.
func (h *LaboratoryHandler) GetLaboratoryStatistics(c *gin.Context) {
	labID := c.Param("id")

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	utils.Success(c, "Laboratory statistics fetched successfully", lab.Statistics)
}

// DeactivateLaboratory handles soft-deleting a partner laboratory.
// Admin only.
func (h *LaboratoryHandler) DeactivateLaboratory(c *gin.Context) {
	labID := c.Param("id")

	lab, ok := h.loadLaboratory(c, labID)
	if !ok {
		return
	}

	lab.IsActive = false
	if err := h.DB.Save(lab).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate laboratory: "+err.Error())
		return
	}

	utils.Success(c, "Laboratory deactivated successfully", nil)
}

func (h *LaboratoryHandler) loadLaboratory(c *gin.Context, id string) (*models.Laboratory, bool) {
	var lab models.Laboratory
	if err := h.DB.First(&lab, "id = ? AND is_active = ?", id, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Laboratory not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &lab, true
}
