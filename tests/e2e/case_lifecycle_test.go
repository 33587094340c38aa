//go:build e2e

package e2e_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type caseOut struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type sessionOut struct {
	ID          string `json:"id"`
	SessionType string `json:"sessionType"`
	Status      string `json:"status"`
	Auto        bool   `json:"auto"`
	Notes       string `json:"notes"`
}

type actionOut struct {
	ID         string `json:"id"`
	ActionType string `json:"actionType"`
	Status     string `json:"status"`
	SubTasks   []struct {
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	} `json:"subTasks"`
}

type saveSessionOut struct {
	Session            sessionOut  `json:"session"`
	NextSession        *sessionOut `json:"nextSession"`
	GeneratedAction    *actionOut  `json:"generatedAction"`
	LinkedCaseAdvisory bool        `json:"linkedCaseAdvisory"`
}

// TestCaseLifecycle walks a case from intake to closure: the auto-created
// first session, a postponement decision that generates a preparation action
// with sub-tasks and the next session placeholder, the closure guardrail
// while that action is open, and finally a clean close.
func TestCaseLifecycle(t *testing.T) {
	e := setupEnv(t)
	clientID := e.createClient(t, e.partnerToken, "عبدالرحمن الحربي")

	// Intake creates the case together with its first session.
	var created struct {
		Case         caseOut    `json:"case"`
		FirstSession sessionOut `json:"firstSession"`
	}
	status := e.do(t, http.MethodPost, "/api/cases", e.partnerToken,
		caseBody(clientID, e.partnerID.String(), nil), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "ACTIVE", created.Case.Status)
	assert.True(t, created.FirstSession.Auto)
	assert.Equal(t, "جلسة استماع", created.FirstSession.SessionType)

	// Record a postponement decision on the first session. The mapping
	// spawns a preparation action and the next session placeholder.
	var saved saveSessionOut
	status = e.do(t, http.MethodPut, "/api/sessions/"+created.FirstSession.ID, e.partnerToken,
		map[string]any{
			"caseId":          created.Case.ID,
			"date":            dateStr(7),
			"sessionType":     "جلسة استماع",
			"decisionOutcome": "تأجيل لمذكرة ومستندات",
			"nextSessionDate": dateStr(21),
		}, &saved)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, saved.GeneratedAction)
	assert.Equal(t, "حزمة تحضير", saved.GeneratedAction.ActionType)
	assert.Len(t, saved.GeneratedAction.SubTasks, 5)
	require.NotNil(t, saved.NextSession)
	assert.True(t, saved.NextSession.Auto)
	assert.False(t, saved.LinkedCaseAdvisory)

	// The open generated action blocks closure.
	var check struct {
		OK              bool     `json:"ok"`
		BlockingReasons []string `json:"blockingReasons"`
	}
	status = e.do(t, http.MethodGet, "/api/cases/"+created.Case.ID+"/can-close", e.partnerToken, nil, &check)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, check.OK)
	require.NotEmpty(t, check.BlockingReasons)
	assert.Contains(t, check.BlockingReasons[0], "إجراء مفتوح")

	var blocked struct {
		Error   string   `json:"error"`
		Reasons []string `json:"reasons"`
	}
	status = e.do(t, http.MethodPut, "/api/cases/"+created.Case.ID, e.partnerToken,
		caseBody(clientID, e.partnerID.String(), map[string]any{"status": "CLOSED"}), &blocked)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, blocked.Reasons)

	// The blocked attempt must not have touched the stored status.
	var current caseOut
	status = e.do(t, http.MethodGet, "/api/cases/"+created.Case.ID, e.partnerToken, nil, &current)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ACTIVE", current.Status)

	// Complete the action with its execution proof.
	var completed actionOut
	status = e.do(t, http.MethodPatch, "/api/actions/"+saved.GeneratedAction.ID+"/progress", e.partnerToken,
		map[string]any{
			"status":           "COMPLETED",
			"executionDate":    dateStr(0),
			"executionDetails": "تم تقديم المذكرة والمستندات",
		}, &completed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "COMPLETED", completed.Status)

	// Closure now goes through.
	var closed caseOut
	status = e.do(t, http.MethodPut, "/api/cases/"+created.Case.ID, e.partnerToken,
		caseBody(clientID, e.partnerID.String(), map[string]any{"status": "CLOSED"}), &closed)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CLOSED", closed.Status)

	// Everything above left an audit trail.
	var trail []map[string]any
	status = e.do(t, http.MethodGet, "/api/audit/recent", e.partnerToken, nil, &trail)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, trail)
}

// TestSessionDecisionRequiresNextDate verifies the postponement guardrail:
// a decision whose mapping demands a follow-up date rejects a save without
// one.
func TestSessionDecisionRequiresNextDate(t *testing.T) {
	e := setupEnv(t)
	clientID := e.createClient(t, e.partnerToken, "منصور العتيبي")

	var created struct {
		Case         caseOut    `json:"case"`
		FirstSession sessionOut `json:"firstSession"`
	}
	status := e.do(t, http.MethodPost, "/api/cases", e.partnerToken,
		caseBody(clientID, e.partnerID.String(), nil), &created)
	require.Equal(t, http.StatusCreated, status)

	var failure struct {
		Reasons []string `json:"reasons"`
	}
	status = e.do(t, http.MethodPut, "/api/sessions/"+created.FirstSession.ID, e.partnerToken,
		map[string]any{
			"caseId":          created.Case.ID,
			"date":            dateStr(7),
			"sessionType":     "جلسة استماع",
			"decisionOutcome": "تأجيل عام",
		}, &failure)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotEmpty(t, failure.Reasons)
}

// TestCriminalInvestigationFirstSession checks that a criminal case at the
// prosecution stage opens with an investigation session instead of a
// hearing.
func TestCriminalInvestigationFirstSession(t *testing.T) {
	e := setupEnv(t)
	clientID := e.createClient(t, e.partnerToken, "فهد القحطاني")

	var created struct {
		FirstSession sessionOut `json:"firstSession"`
	}
	status := e.do(t, http.MethodPost, "/api/cases", e.partnerToken,
		caseBody(clientID, e.partnerID.String(), map[string]any{
			"caseType":          "CRIMINAL",
			"criminalStageType": "تحقيقات نيابة",
		}), &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "تحقيق", created.FirstSession.SessionType)
}
