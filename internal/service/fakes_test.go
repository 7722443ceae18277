package service

import (
	"context"
	"fmt"
	"time"

	"clinic-manager-server/internal/models"
	"clinic-manager-server/internal/scheduling"
)

// In-memory repository fakes. IDs are assigned sequentially on create
// so tests can reference them without the UUID hook.

type fakeUsers struct {
	users map[string]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

type fakeAppointments struct {
	seq   int
	items map[string]*models.Appointment
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{items: map[string]*models.Appointment{}}
}

func (f *fakeAppointments) add(a *models.Appointment) *models.Appointment {
	f.seq++
	if a.ID == "" {
		a.ID = fmt.Sprintf("appt-%d", f.seq)
	}
	f.items[a.ID] = a
	return a
}

func (f *fakeAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointments) Create(_ context.Context, a *models.Appointment) error {
	f.add(a)
	return nil
}

func (f *fakeAppointments) Save(_ context.Context, a *models.Appointment) error {
	f.items[a.ID] = a
	return nil
}

func (f *fakeAppointments) FindBlocking(_ context.Context, doctorID, excludeID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.items {
		if a.DoctorID == doctorID && a.Blocking() && a.ID != excludeID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAppointments) FindBlockingBetween(_ context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, a := range f.items {
		if a.DoctorID == doctorID && a.Blocking() && scheduling.Overlaps(a.StartTime, a.EndTime, from, to) {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeConsultations struct {
	seq   int
	items map[string]*models.Consultation
}

func newFakeConsultations() *fakeConsultations {
	return &fakeConsultations{items: map[string]*models.Consultation{}}
}

func (f *fakeConsultations) add(c *models.Consultation) *models.Consultation {
	f.seq++
	if c.ID == "" {
		c.ID = fmt.Sprintf("cons-%d", f.seq)
	}
	f.items[c.ID] = c
	return c
}

func (f *fakeConsultations) GetByID(_ context.Context, id string) (*models.Consultation, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConsultations) Create(_ context.Context, c *models.Consultation) error {
	f.add(c)
	return nil
}

func (f *fakeConsultations) Save(_ context.Context, c *models.Consultation) error {
	f.items[c.ID] = c
	return nil
}

func (f *fakeConsultations) FindByAppointment(_ context.Context, appointmentID string) (*models.Consultation, error) {
	for _, c := range f.items {
		if c.AppointmentID == appointmentID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

type fakePrescriptions struct {
	seq             int
	items           map[string]*models.Prescription
	failCreatesLeft int // next N creates fail with ErrDuplicateKey
}

func newFakePrescriptions() *fakePrescriptions {
	return &fakePrescriptions{items: map[string]*models.Prescription{}}
}

func (f *fakePrescriptions) add(p *models.Prescription) *models.Prescription {
	f.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("rx-%d", f.seq)
	}
	f.items[p.ID] = p
	return p
}

func (f *fakePrescriptions) GetByID(_ context.Context, id string) (*models.Prescription, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePrescriptions) Create(_ context.Context, p *models.Prescription) error {
	if f.failCreatesLeft > 0 {
		f.failCreatesLeft--
		return ErrDuplicateKey
	}
	f.add(p)
	return nil
}

func (f *fakePrescriptions) Save(_ context.Context, p *models.Prescription) error {
	f.items[p.ID] = p
	return nil
}

func (f *fakePrescriptions) FindByConsultation(_ context.Context, consultationID string) (*models.Prescription, error) {
	for _, p := range f.items {
		if p.ConsultationID == consultationID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakePrescriptions) FindByPharmacy(_ context.Context, pharmacyID string, statuses []models.PrescriptionStatus, offset, limit int) ([]models.Prescription, int64, error) {
	var matched []models.Prescription
	for _, p := range f.items {
		if p.PharmacyID == nil || *p.PharmacyID != pharmacyID {
			continue
		}
		for _, s := range statuses {
			if p.Status == s {
				matched = append(matched, *p)
				break
			}
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

type fakeLabOrders struct {
	seq             int
	items           map[string]*models.LabOrder
	failCreatesLeft int
}

func newFakeLabOrders() *fakeLabOrders {
	return &fakeLabOrders{items: map[string]*models.LabOrder{}}
}

func (f *fakeLabOrders) add(o *models.LabOrder) *models.LabOrder {
	f.seq++
	if o.ID == "" {
		o.ID = fmt.Sprintf("lab-%d", f.seq)
	}
	f.items[o.ID] = o
	return o
}

func (f *fakeLabOrders) GetByID(_ context.Context, id string) (*models.LabOrder, error) {
	o, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeLabOrders) Create(_ context.Context, o *models.LabOrder) error {
	if f.failCreatesLeft > 0 {
		f.failCreatesLeft--
		return ErrDuplicateKey
	}
	f.add(o)
	return nil
}

func (f *fakeLabOrders) Save(_ context.Context, o *models.LabOrder) error {
	f.items[o.ID] = o
	return nil
}

type fakeLaboratories struct {
	items map[string]*models.Laboratory
}

func newFakeLaboratories(labs ...*models.Laboratory) *fakeLaboratories {
	f := &fakeLaboratories{items: map[string]*models.Laboratory{}}
	for _, l := range labs {
		f.items[l.ID] = l
	}
	return f
}

func (f *fakeLaboratories) GetByID(_ context.Context, id string) (*models.Laboratory, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l, nil
}

func (f *fakeLaboratories) Save(_ context.Context, l *models.Laboratory) error {
	f.items[l.ID] = l
	return nil
}

type fakePharmacies struct {
	items map[string]*models.Pharmacy
}

func newFakePharmacies(pharmacies ...*models.Pharmacy) *fakePharmacies {
	f := &fakePharmacies{items: map[string]*models.Pharmacy{}}
	for _, p := range pharmacies {
		f.items[p.ID] = p
	}
	return f
}

func (f *fakePharmacies) GetByID(_ context.Context, id string) (*models.Pharmacy, error) {
	p, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}
