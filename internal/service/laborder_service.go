package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"clinic-manager-server/internal/models"
)

// LabOrderService owns the lab-order aggregate: test vocab validation,
// laboratory capability matching, per-test result updates and the
// order-level status roll-up.
type LabOrderService struct {
	orders LabOrderRepository
	labs   LaboratoryRepository
	users  UserRepository
	log    *zap.Logger
}

func NewLabOrderService(orders LabOrderRepository, labs LaboratoryRepository, users UserRepository, log *zap.Logger) *LabOrderService {
	return &LabOrderService{orders: orders, labs: labs, users: users, log: log}
}

// CreateLabOrderCommand carries the input of Create.
type CreateLabOrderCommand struct {
	PatientID       string
	DoctorID        string
	ConsultationID  *string
	LaboratoryID    *string
	Tests           []models.LabTest
	Priority        models.LabPriority
	ClinicalInfo    models.ClinicalInfo
	AppointmentDate *time.Time
	Notes           string
}

// Create validates the test panel against the closed vocabularies,
// optionally matches it against a laboratory's capabilities, and
// persists the order with a generated number, recomputed total and the
// SLA-derived report estimate.
func (s *LabOrderService) Create(ctx context.Context, cmd CreateLabOrderCommand) (*models.LabOrder, error) {
	if len(cmd.Tests) == 0 {
		return nil, Invalid("at least one test is required")
	}
	for i := range cmd.Tests {
		if err := cmd.Tests[i].Validate(); err != nil {
			return nil, Invalid("test %d: %s", i+1, err.Error())
		}
		if cmd.Tests[i].Urgency == "" {
			cmd.Tests[i].Urgency = "normal"
		}
		cmd.Tests[i].Status = models.TestOrdered
	}
	if cmd.Priority == "" {
		cmd.Priority = models.PriorityNormal
	}
	if !models.ValidLabPriority(cmd.Priority) {
		return nil, Invalid("invalid priority %q", cmd.Priority)
	}

	var lab *models.Laboratory
	if cmd.LaboratoryID != nil {
		var err error
		lab, err = s.resolvePartnerLab(ctx, *cmd.LaboratoryID)
		if err != nil {
			return nil, err
		}
		if missing := lab.UnavailableTestCodes(cmd.Tests); len(missing) > 0 {
			return nil, Invalid("some tests are not available at this laboratory").
				WithDetails(map[string]any{"unavailableTests": missing})
		}
	}

	o := &models.LabOrder{
		OrderNumber:     models.NewLabOrderNumber(time.Now()),
		PatientID:       cmd.PatientID,
		DoctorID:        cmd.DoctorID,
		ConsultationID:  cmd.ConsultationID,
		LaboratoryID:    cmd.LaboratoryID,
		Tests:           cmd.Tests,
		Status:          models.LabOrderPending,
		Priority:        cmd.Priority,
		ClinicalInfo:    cmd.ClinicalInfo,
		AppointmentDate: cmd.AppointmentDate,
		Notes:           cmd.Notes,
		IsActive:        true,
	}
	o.RecomputeTotal()
	o.ComputeExpectedReportDate()

	if err := s.orders.Create(ctx, o); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			o.OrderNumber = models.NewLabOrderNumber(time.Now())
			err = s.orders.Create(ctx, o)
		}
		if err != nil {
			s.log.Error("creating lab order", zap.Error(err))
			return nil, Unexpected(err, "failed to create lab order")
		}
	}

	// Statistics are best-effort: the order is already committed, a
	// counter failure must not roll it back.
	if lab != nil {
		s.bumpLabStats(ctx, lab)
	}
	return o, nil
}

// UpdateTestResult records the result of a single test, marks it
// completed and recomputes the order-level roll-up.
func (s *LabOrderService) UpdateTestResult(ctx context.Context, orderID string, testIndex int, result models.TestResult, reportedBy string) (*models.LabOrder, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if testIndex < 0 || testIndex >= len(o.Tests) {
		return nil, Invalid("invalid test index %d", testIndex)
	}

	now := time.Now()
	result.ReportedAt = &now
	result.ReportedBy = reportedBy

	test := &o.Tests[testIndex]
	test.Result = &result
	test.Status = models.TestCompleted
	test.CompletedAt = &now

	o.RollUpStatus()

	if err := s.orders.Save(ctx, o); err != nil {
		s.log.Error("saving test result", zap.String("orderId", orderID), zap.Error(err))
		return nil, Unexpected(err, "failed to save test result")
	}

	// Fold the turnaround into the lab's running average once the
	// whole order completes.
	if o.Status == models.LabOrderCompleted && o.LaboratoryID != nil {
		s.recordLabCompletion(ctx, *o.LaboratoryID, o.CreatedAt, now)
	}
	return o, nil
}

// AssignToLaboratory routes an order to a partner laboratory after a
// wholesale capability match; partial coverage is rejected.
func (s *LabOrderService) AssignToLaboratory(ctx context.Context, orderID, laboratoryID string) (*models.LabOrder, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lab, err := s.resolvePartnerLab(ctx, laboratoryID)
	if err != nil {
		return nil, err
	}
	if missing := lab.UnavailableTestCodes(o.Tests); len(missing) > 0 {
		return nil, Invalid("the laboratory cannot perform all requested tests").
			WithDetails(map[string]any{"unavailableTests": missing})
	}

	o.LaboratoryID = &laboratoryID
	o.Status = models.LabOrderOrdered
	o.ComputeExpectedReportDate()

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, Unexpected(err, "failed to assign lab order")
	}

	s.bumpLabStats(ctx, lab)
	return o, nil
}

// UpdateStatus sets the order-level status directly (lab-side workflow
// moves like sample collection). Cancelled and reported orders are
// frozen.
func (s *LabOrderService) UpdateStatus(ctx context.Context, orderID string, status models.LabOrderStatus, labNotes string) (*models.LabOrder, error) {
	switch status {
	case models.LabOrderPending, models.LabOrderOrdered, models.LabOrderSampleCollected,
		models.LabOrderInProgress, models.LabOrderPartiallyCompleted,
		models.LabOrderCompleted, models.LabOrderReported, models.LabOrderCancelled:
	default:
		return nil, Invalid("invalid status %q", status)
	}

	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == models.LabOrderCancelled || o.Status == models.LabOrderReported {
		return nil, Invalid("a cancelled or reported order can no longer be updated")
	}

	now := time.Now()
	o.Status = status
	switch status {
	case models.LabOrderSampleCollected:
		o.SampleCollectionDate = &now
		o.ComputeExpectedReportDate()
	case models.LabOrderReported:
		o.ActualReportDate = &now
	}
	if labNotes != "" {
		o.LabNotes = labNotes
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, Unexpected(err, "failed to update lab order status")
	}
	return o, nil
}

// Cancel cancels an order that has not finished yet.
func (s *LabOrderService) Cancel(ctx context.Context, orderID, reason string) (*models.LabOrder, error) {
	o, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanBeCancelled() {
		return nil, Invalid("this order can no longer be cancelled").
			WithDetails(map[string]any{"currentStatus": o.Status})
	}

	o.Status = models.LabOrderCancelled
	if reason != "" {
		if o.Notes != "" {
			o.Notes += "\n"
		}
		o.Notes += "Cancelled: " + reason
	}

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, Unexpected(err, "failed to cancel lab order")
	}
	return o, nil
}

func (s *LabOrderService) resolvePartnerLab(ctx context.Context, id string) (*models.Laboratory, error) {
	lab, err := s.labs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("laboratory not found or inactive")
		}
		return nil, Unexpected(err, "failed to load laboratory")
	}
	if !lab.AcceptsOrders() {
		return nil, NotFound("laboratory not found or inactive")
	}
	return lab, nil
}

func (s *LabOrderService) bumpLabStats(ctx context.Context, lab *models.Laboratory) {
	lab.RecordOrder(1)
	if err := s.labs.Save(ctx, lab); err != nil {
		s.log.Warn("updating laboratory statistics", zap.String("laboratoryId", lab.ID), zap.Error(err))
	}
}

func (s *LabOrderService) recordLabCompletion(ctx context.Context, labID string, orderedAt, completedAt time.Time) {
	lab, err := s.labs.GetByID(ctx, labID)
	if err != nil {
		s.log.Warn("loading laboratory for completion stats", zap.String("laboratoryId", labID), zap.Error(err))
		return
	}
	lab.RecordCompletion(completedAt.Sub(orderedAt).Hours())
	if err := s.labs.Save(ctx, lab); err != nil {
		s.log.Warn("updating laboratory completion stats", zap.String("laboratoryId", labID), zap.Error(err))
	}
}

func (s *LabOrderService) get(ctx context.Context, id string) (*models.LabOrder, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NotFound("lab order not found")
		}
		return nil, Unexpected(err, "failed to load lab order")
	}
	return o, nil
}
