package routes

import (
	"clinic-manager-server/internal/config"
	"clinic-manager-server/internal/handlers"
	"clinic-manager-server/internal/metrics"
	"clinic-manager-server/internal/middleware"
	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/repository"
	"clinic-manager-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services and handlers and registers
// every route with its role gate.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger, collector *metrics.Collector) {
	// Repositories
	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)
	labOrderRepo := repository.NewLabOrderRepository(db)
	laboratoryRepo := repository.NewLaboratoryRepository(db)
	pharmacyRepo := repository.NewPharmacyRepository(db)

	// Services
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, log)
	consultationService := service.NewConsultationService(consultationRepo, appointmentRepo, log)
	prescriptionService := service.NewPrescriptionService(prescriptionRepo, consultationRepo, pharmacyRepo, log)
	labOrderService := service.NewLabOrderService(labOrderRepo, laboratoryRepo, userRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, appointmentService, collector)
	consultationHandler := handlers.NewConsultationHandler(db, consultationService)
	prescriptionHandler := handlers.NewPrescriptionHandler(db, prescriptionService, collector)
	labOrderHandler := handlers.NewLabOrderHandler(db, labOrderService, collector)
	pharmacyHandler := handlers.NewPharmacyHandler(db)
	laboratoryHandler := handlers.NewLaboratoryHandler(db)
	patientHandler := handlers.NewPatientHandler(db)

	staff := []models.Role{models.RoleAdmin, models.RoleDoctor, models.RoleNurse, models.RoleSecretary}

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// User management
		userRoutes := private.Group("/users")
		{
			// Accessible by all authenticated users so patients can pick a doctor
			userRoutes.GET("/doctors", userHandler.ListDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.ListUsers)
				adminRoutes.DELETE("/:id", userHandler.DeactivateUser)
			}

			staffReadRoutes := userRoutes.Group("")
			staffReadRoutes.Use(middleware.RoleAuthMiddleware(staff...))
			{
				staffReadRoutes.GET("/:id", userHandler.GetUserByID)
			}

			// Ownership enforced in the handler
			userRoutes.PUT("/:id", userHandler.UpdateUser)
		}

		// Appointments
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id",
				middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor, models.RoleSecretary),
				appointmentHandler.UpdateAppointment)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)
		}

		// Doctor availability
		private.GET("/doctors/:id/availability", appointmentHandler.GetDoctorAvailability)

		// Consultations
		consultationRoutes := private.Group("/consultations")
		{
			consultationRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				consultationHandler.CreateConsultation)
			consultationRoutes.GET("", consultationHandler.GetConsultationsForUser)
			consultationRoutes.GET("/:id", consultationHandler.GetConsultationByID)
			consultationRoutes.PUT("/:id",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				consultationHandler.UpdateConsultation)
		}
		private.GET("/patients/:id/consultations",
			middleware.RoleAuthMiddleware(staff...),
			consultationHandler.GetPatientConsultations)

		// Patient registry
		patientRoutes := private.Group("/patients")
		patientRoutes.Use(middleware.RoleAuthMiddleware(staff...))
		{
			patientRoutes.POST("", patientHandler.CreatePatient)
			patientRoutes.GET("", patientHandler.ListPatients)
			patientRoutes.GET("/stats", patientHandler.GetPatientStats)
			patientRoutes.POST("/search", patientHandler.SearchPatients)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID)
			patientRoutes.PUT("/:id", patientHandler.UpdatePatient)
			patientRoutes.DELETE("/:id", patientHandler.DeactivatePatient)
		}

		// Prescriptions
		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				prescriptionHandler.CreatePrescription)
			prescriptionRoutes.GET("", prescriptionHandler.GetPrescriptionsForUser)
			prescriptionRoutes.GET("/:id", prescriptionHandler.GetPrescriptionByID)
			prescriptionRoutes.PUT("/:id",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				prescriptionHandler.UpdatePrescription)
			prescriptionRoutes.POST("/:id/sign",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				prescriptionHandler.SignPrescription)
			prescriptionRoutes.POST("/:id/assign-pharmacy",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleSecretary, models.RoleAdmin),
				prescriptionHandler.AssignToPharmacy)
			prescriptionRoutes.PATCH("/:id/pharmacy-status",
				middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSecretary),
				prescriptionHandler.UpdatePharmacyStatus)
		}

		// Pharmacy catalog and fulfillment queue
		pharmacyRoutes := private.Group("/pharmacies")
		{
			pharmacyRoutes.GET("", pharmacyHandler.ListPharmacies)
			pharmacyRoutes.GET("/:id", pharmacyHandler.GetPharmacyByID)
			pharmacyRoutes.GET("/:id/queue",
				middleware.RoleAuthMiddleware(staff...),
				prescriptionHandler.GetPharmacyQueue)

			pharmacyAdmin := pharmacyRoutes.Group("")
			pharmacyAdmin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				pharmacyAdmin.POST("", pharmacyHandler.CreatePharmacy)
				pharmacyAdmin.PUT("/:id", pharmacyHandler.UpdatePharmacy)
				pharmacyAdmin.DELETE("/:id", pharmacyHandler.DeactivatePharmacy)
			}
		}

		// Lab orders
		labOrderRoutes := private.Group("/lab-orders")
		{
			labOrderRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RoleDoctor),
				labOrderHandler.CreateLabOrder)
			labOrderRoutes.GET("", labOrderHandler.GetLabOrdersForUser)
			labOrderRoutes.GET("/:id", labOrderHandler.GetLabOrderByID)
			labOrderRoutes.POST("/:id/assign-laboratory",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse, models.RoleAdmin),
				labOrderHandler.AssignToLaboratory)
			labOrderRoutes.PATCH("/:id/status",
				middleware.RoleAuthMiddleware(staff...),
				labOrderHandler.UpdateLabOrderStatus)
			labOrderRoutes.PATCH("/:id/results",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleNurse),
				labOrderHandler.UpdateTestResult)
			labOrderRoutes.POST("/:id/cancel",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				labOrderHandler.CancelLabOrder)
		}

		// Laboratory catalog
		laboratoryRoutes := private.Group("/laboratories")
		{
			laboratoryRoutes.GET("", laboratoryHandler.ListLaboratories)
			laboratoryRoutes.GET("/:id", laboratoryHandler.GetLaboratoryByID)
			laboratoryRoutes.GET("/:id/statistics",
				middleware.RoleAuthMiddleware(staff...),
				laboratoryHandler.GetLaboratoryStatistics)

			laboratoryAdmin := laboratoryRoutes.Group("")
			laboratoryAdmin.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				laboratoryAdmin.POST("", laboratoryHandler.CreateLaboratory)
				laboratoryAdmin.PUT("/:id", laboratoryHandler.UpdateLaboratory)
				laboratoryAdmin.POST("/:id/tests", laboratoryHandler.UpsertCatalogTest)
				laboratoryAdmin.DELETE("/:id/tests/:code", laboratoryHandler.RemoveCatalogTest)
				laboratoryAdmin.DELETE("/:id", laboratoryHandler.DeactivateLaboratory)
			}
		}
	}

	// Observability endpoints
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
