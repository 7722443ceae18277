package handlers

import (
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PharmacyHandler handles the partner pharmacy catalog.
type PharmacyHandler struct {
	DB *gorm.DB
}

// NewPharmacyHandler creates a new PharmacyHandler.
func NewPharmacyHandler(db *gorm.DB) *PharmacyHandler {
	return &PharmacyHandler{DB: db}
}

// PharmacyRequest represents the request body for creating or updating
// a partner pharmacy.
type PharmacyRequest struct {
	Name              string                    `json:"name" binding:"required"`
	LicenseNumber     string                    `json:"licenseNumber" binding:"required"`
	Contact           models.ContactInfo        `json:"contact"`
	Address           models.Address            `json:"address"`
	OperatingHours    models.OperatingHours     `json:"operatingHours"`
	Services          []string                  `json:"services"`
	PartnershipStatus *models.PartnershipStatus `json:"partnershipStatus"`
	Notes             string                    `json:"notes"`
}

// CreatePharmacy handles registering a partner pharmacy. Admin only.
func (h *PharmacyHandler) CreatePharmacy(c *gin.Context) {
	var req PharmacyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	pharmacy := models.Pharmacy{
		Name:              req.Name,
		LicenseNumber:     req.LicenseNumber,
		PharmacyCode:      models.NewPharmacyCode(req.Name, req.Address.City),
		Contact:           req.Contact,
		Address:           req.Address,
		OperatingHours:    req.OperatingHours,
		Services:          req.Services,
		PartnershipStatus: models.PartnershipActive,
		Notes:             req.Notes,
		IsActive:          true,
	}
	if req.PartnershipStatus != nil {
		pharmacy.PartnershipStatus = *req.PartnershipStatus
	}

	if err := h.DB.Create(&pharmacy).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "A pharmacy with this license number already exists")
			return
		}
		utils.InternalServerError(c, "Failed to create pharmacy: "+err.Error())
		return
	}

	utils.Created(c, "Pharmacy created successfully", pharmacy)
}

// ListPharmacies handles listing active partner pharmacies.
func (h *PharmacyHandler) ListPharmacies(c *gin.Context) {
	query := h.DB.Where("is_active = ?", true).Order("name asc")
	if c.Query("partnershipStatus") != "" {
		query = query.Where("partnership_status = ?", c.Query("partnershipStatus"))
	}

	var pharmacies []models.Pharmacy
	if err := query.Find(&pharmacies).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pharmacies: "+err.Error())
		return
	}

	utils.Success(c, "Pharmacies fetched successfully", pharmacies)
}

// GetPharmacyByID handles fetching a single pharmacy.
func (h *PharmacyHandler) GetPharmacyByID(c *gin.Context) {
	pharmacyID := c.Param("id")

	var pharmacy models.Pharmacy
	if err := h.DB.First(&pharmacy, "id = ? AND is_active = ?", pharmacyID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Pharmacy not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Pharmacy fetched successfully", pharmacy)
}

// UpdatePharmacy handles updating a partner pharmacy. Admin only.
func (h *PharmacyHandler) UpdatePharmacy(c *gin.Context) {
	pharmacyID := c.Param("id")

	var req PharmacyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var pharmacy models.Pharmacy
	if err := h.DB.First(&pharmacy, "id = ? AND is_active = ?", pharmacyID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Pharmacy not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	pharmacy.Name = req.Name
	pharmacy.LicenseNumber = req.LicenseNumber
	pharmacy.Contact = req.Contact
	pharmacy.Address = req.Address
	pharmacy.OperatingHours = req.OperatingHours
	pharmacy.Services = req.Services
	pharmacy.Notes = req.Notes
	if req.PartnershipStatus != nil {
		pharmacy.PartnershipStatus = *req.PartnershipStatus
	}

	if err := h.DB.Save(&pharmacy).Error; err != nil {
		utils.InternalServerError(c, "Failed to update pharmacy: "+err.Error())
		return
	}

	utils.Success(c, "Pharmacy updated successfully", pharmacy)
}

// DeactivatePharmacy handles soft-deleting a partner pharmacy. Admin
// only. Prescriptions already in its queue are unaffected.
func (h *PharmacyHandler) DeactivatePharmacy(c *gin.Context) {
	pharmacyID := c.Param("id")

	var pharmacy models.Pharmacy
	if err := h.DB.First(&pharmacy, "id = ? AND is_active = ?", pharmacyID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Pharmacy not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	pharmacy.IsActive = false
	if err := h.DB.Save(&pharmacy).Error; err != nil {
		utils.InternalServerError(c, "Failed to deactivate pharmacy: "+err.Error())
		return
	}

	utils.Success(c, "Pharmacy deactivated successfully", nil)
}
