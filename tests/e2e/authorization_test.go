//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaheenlf/slf-backend/internal/domain"
)

// TestRolePermissions checks role enforcement end to end through the HTTP
// layer: anonymous requests are rejected, lawyers cannot open cases or
// delete records, and partner-only administration stays partner-only.
func TestRolePermissions(t *testing.T) {
	e := setupEnv(t)

	e.seedUser(t, "خالد المطيري", domain.UserRoleLawyer, "lawyer@firm.example", "lawyer-pass-1")
	lawyerToken := e.login(t, "lawyer@firm.example", "lawyer-pass-1")

	// Anonymous requests are unauthorized, not forbidden.
	status := e.do(t, http.MethodGet, "/api/clients", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Any authenticated member of the office can register a client.
	clientID := e.createClient(t, lawyerToken, "سعود الدوسري")

	// Opening a case is reserved to partners and case owners.
	status = e.do(t, http.MethodPost, "/api/cases", lawyerToken,
		caseBody(clientID, e.partnerID.String(), nil), nil)
	assert.Equal(t, http.StatusForbidden, status)

	// Deleting records is partner-only.
	status = e.do(t, http.MethodDelete, "/api/clients/"+clientID, lawyerToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// So is user administration.
	status = e.do(t, http.MethodPost, "/api/users", lawyerToken, map[string]any{
		"name":     "محاولة",
		"role":     "trainee",
		"email":    "x@firm.example",
		"password": "some-pass-123",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// And the decision mapping configuration.
	status = e.do(t, http.MethodPost, "/api/mappings", lawyerToken, map[string]any{
		"decisionType": "قرار جديد",
		"actionType":   "أخرى",
	}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	// The partner can do all of the above.
	var created struct {
		ID string `json:"id"`
	}
	status = e.do(t, http.MethodPost, "/api/users", e.partnerToken, map[string]any{
		"name":     "متدرب جديد",
		"role":     "trainee",
		"email":    "trainee@firm.example",
		"phone":    "0559876543",
		"password": "trainee-pass-1",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, created.ID)
}

// TestCaseListScoping verifies that listing cases narrows to the caller's
// own files unless the role can view everything.
func TestCaseListScoping(t *testing.T) {
	e := setupEnv(t)

	ownerID := e.seedUser(t, "نورة الشمري", domain.UserRoleCaseOwner, "owner@firm.example", "owner-pass-11")
	ownerToken := e.login(t, "owner@firm.example", "owner-pass-11")

	clientID := e.createClient(t, e.partnerToken, "بدر الغامدي")

	// One case owned by the partner, one by the case owner.
	status := e.do(t, http.MethodPost, "/api/cases", e.partnerToken,
		caseBody(clientID, e.partnerID.String(), nil), nil)
	require.Equal(t, http.StatusCreated, status)
	status = e.do(t, http.MethodPost, "/api/cases", ownerToken,
		caseBody(clientID, ownerID.String(), nil), nil)
	require.Equal(t, http.StatusCreated, status)

	var partnerSees []caseOut
	status = e.do(t, http.MethodGet, "/api/cases", e.partnerToken, nil, &partnerSees)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, partnerSees, 2)

	var ownerSees []caseOut
	status = e.do(t, http.MethodGet, "/api/cases", ownerToken, nil, &ownerSees)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, ownerSees, 1)
}
