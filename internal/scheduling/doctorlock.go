package scheduling

import "sync"

// DoctorLocks serializes appointment writes per doctor. The overlap
// check in the scheduler is read-check-then-write; without
// serialization two concurrent bookings for the same doctor could both
// pass the check before either commits.
type DoctorLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDoctorLocks creates an empty lock table.
func NewDoctorLocks() *DoctorLocks {
	return &DoctorLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for the given doctor, creating it on first
// use. Locks are never evicted; the table is bounded by the number of
// doctors.
func (d *DoctorLocks) Lock(doctorID string) {
	d.mu.Lock()
	l, ok := d.locks[doctorID]
	if !ok {
		l = &sync.Mutex{}
		d.locks[doctorID] = l
	}
	d.mu.Unlock()
	l.Lock()
}

// Unlock releases the lock for the given doctor.
func (d *DoctorLocks) Unlock(doctorID string) {
	d.mu.Lock()
	l := d.locks[doctorID]
	d.mu.Unlock()
	if l != nil {
		l.Unlock()
	}
}
