package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueueStatuses(t *testing.T) {
	statuses, err := ParseQueueStatuses("assigned,preparing")
	require.NoError(t, err)
	assert.Equal(t, []PrescriptionStatus{PrescriptionAssigned, PrescriptionPreparing}, statuses)

	// Whitespace around tokens is tolerated
	statuses, err = ParseQueueStatuses(" ready , delivered ")
	require.NoError(t, err)
	assert.Equal(t, []PrescriptionStatus{PrescriptionReady, PrescriptionDelivered}, statuses)
}

func TestParseQueueStatuses_RejectsUnknown(t *testing.T) {
	_, err := ParseQueueStatuses("assigned,draft")
	assert.Error(t, err)

	_, err = ParseQueueStatuses("signed")
	assert.Error(t, err)

	// An all-empty filter resolves to nothing and is rejected
	_, err = ParseQueueStatuses(" , ,")
	assert.Error(t, err)
}

func TestAcceptsPrescriptions(t *testing.T) {
	p := &Pharmacy{IsActive: true, PartnershipStatus: PartnershipActive}
	assert.True(t, p.AcceptsPrescriptions())

	p.PartnershipStatus = PartnershipPending
	assert.False(t, p.AcceptsPrescriptions())

	p = &Pharmacy{IsActive: false, PartnershipStatus: PartnershipActive}
	assert.False(t, p.AcceptsPrescriptions())
}

func TestNewPharmacyCode(t *testing.T) {
	code := NewPharmacyCode("Central Pharmacy", "Rabat")
	assert.Len(t, code, 10)
	assert.Equal(t, "PHCENRA", code[:7])
}
