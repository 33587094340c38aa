package session

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/internal/service/decisionmap"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

// mockSessionRepo stores sessions in memory so idempotency checks behave
// like the real table.
type mockSessionRepo struct {
	stored  map[uuid.UUID]*domain.Session
	deleted map[uuid.UUID]bool
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{stored: map[uuid.UUID]*domain.Session{}, deleted: map[uuid.UUID]bool{}}
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	m.stored[s.ID] = &cp
	return &cp, nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	s, ok := m.stored[id]
	if !ok || m.deleted[id] {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockSessionRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Session, error) {
	var out []domain.Session
	for id, s := range m.stored {
		if s.CaseID == caseID && !m.deleted[id] {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockSessionRepo) ExistsForCaseDate(ctx context.Context, caseID uuid.UUID, date time.Time, excludeID *uuid.UUID) (bool, error) {
	for id, s := range m.stored {
		if m.deleted[id] {
			continue
		}
		if excludeID != nil && id == *excludeID {
			continue
		}
		if s.CaseID == caseID && sameDay(s.Date, date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSessionRepo) Update(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if _, ok := m.stored[s.ID]; !ok || m.deleted[s.ID] {
		return nil, domain.ErrNotFound
	}
	cp := *s
	m.stored[s.ID] = &cp
	return &cp, nil
}

func (m *mockSessionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.stored[id]; !ok || m.deleted[id] {
		return domain.ErrNotFound
	}
	m.deleted[id] = true
	return nil
}

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

type mockCaseRepo struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Case, error)
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

// mockActionRepo stores created actions so duplicate checks work.
type mockActionRepo struct {
	created []domain.Action
}

func (m *mockActionRepo) Create(ctx context.Context, a *domain.Action) (*domain.Action, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.created = append(m.created, *a)
	return a, nil
}

func (m *mockActionRepo) ExistsForSessionAndType(ctx context.Context, sessionID uuid.UUID, actionType string) (bool, error) {
	for _, a := range m.created {
		if a.SessionID != nil && *a.SessionID == sessionID && a.ActionType == actionType {
			return true, nil
		}
	}
	return false, nil
}

type mockAuditRepo struct {
	records []domain.AuditRecord
}

func (m *mockAuditRepo) Create(ctx context.Context, rec *domain.AuditRecord) (*domain.AuditRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	m.records = append(m.records, *rec)
	return rec, nil
}

func (m *mockAuditRepo) autoRecords() []domain.AuditRecord {
	var out []domain.AuditRecord
	for _, rec := range m.records {
		if auto, ok := rec.Changes["auto"].(bool); ok && auto {
			out = append(out, rec)
		}
	}
	return out
}

// mockResolver serves mappings from the office defaults.
type mockResolver struct{}

func (m *mockResolver) Resolve(ctx context.Context, decisionType string) (decisionmap.Resolution, error) {
	if decisionType == "" {
		return decisionmap.Resolution{RequiresNextDate: true}, nil
	}
	for _, d := range domain.DefaultDecisionActionMappings() {
		if d.DecisionType == decisionType {
			d := d
			return decisionmap.Resolution{
				Mapping:           &d,
				RequiresNextDate:  d.RequiresNextDate,
				CreatesLinkedCase: d.CreatesLinkedCase,
			}, nil
		}
	}
	return decisionmap.Resolution{RequiresNextDate: true}, nil
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===========================================================================
// Fixtures
// ===========================================================================

type fixture struct {
	svc      *Service
	sessions *mockSessionRepo
	actions  *mockActionRepo
	audit    *mockAuditRepo
	kase     *domain.Case
	owner    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner := uuid.New()
	client := uuid.New()
	kase := &domain.Case{
		ID:              uuid.New(),
		CaseNo:          "123",
		Year:            "2026",
		ClientIDs:       []uuid.UUID{client},
		PrimaryClientID: client,
		OwnerID:         owner,
		Status:          domain.CaseStatusActive,
	}

	sessions := newMockSessionRepo()
	actions := &mockActionRepo{}
	audit := &mockAuditRepo{}
	cases := &mockCaseRepo{GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
		if id == kase.ID {
			return kase, nil
		}
		return nil, domain.ErrNotFound
	}}

	svc := NewService(slog.New(slog.DiscardHandler), sessions, cases, actions, audit, &mockResolver{}, &mockTxManager{})
	return &fixture{svc: svc, sessions: sessions, actions: actions, audit: audit, kase: kase, owner: owner}
}

func (f *fixture) ownerCtx() context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: f.owner, Role: string(domain.UserRoleCaseOwner)})
}

func (f *fixture) partnerCtx() context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: uuid.New(), Role: string(domain.UserRolePartner)})
}

func date(daysFromNow int) time.Time {
	return time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, daysFromNow)
}

func datePtr(daysFromNow int) *time.Time {
	d := date(daysFromNow)
	return &d
}

// ===========================================================================
// Save: adjournment with memo and documents
// ===========================================================================

func TestSave_AdjournmentForMemoGeneratesPackage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	result, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل لمذكرة ومستندات",
		NextSessionDate: datePtr(14),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionStatusOpen, result.Session.Status)

	require.NotNil(t, result.GeneratedAction)
	assert.Equal(t, "حزمة تحضير", result.GeneratedAction.ActionType)
	require.Len(t, result.GeneratedAction.SubTasks, 5)
	for _, st := range result.GeneratedAction.SubTasks {
		assert.False(t, st.Completed, "generated sub tasks start incomplete")
	}
	assert.Equal(t, f.owner, result.GeneratedAction.ResponsibleUserID)
	assert.Equal(t, f.kase.PrimaryClientID, result.GeneratedAction.ClientID)
	require.NotNil(t, result.GeneratedAction.DueDate)
	assert.True(t, sameDay(*result.GeneratedAction.DueDate, date(14)))

	require.NotNil(t, result.NextSession)
	assert.True(t, sameDay(result.NextSession.Date, date(14)))
	assert.Equal(t, domain.SessionStatusOpen, result.NextSession.Status)
	assert.True(t, result.NextSession.Auto)
	assert.Equal(t, autoNextSessionNote, result.NextSession.Notes)

	assert.Len(t, f.audit.autoRecords(), 2, "placeholder and generated action are audited as auto")
}

func TestSave_RequiresNextDateRejectedWithoutOne(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل لمذكرة ومستندات",
	})
	require.Error(t, err)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "next_session_date", vErr.Errors[0].Field)
}

// ===========================================================================
// Save: closing guardrails
// ===========================================================================

func TestSave_CloseWithoutDecisionRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:      f.kase.ID,
		Date:        date(0),
		SessionType: "مرافعة",
		Close:       true,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "decision_outcome", vErr.Errors[0].Field)
}

func TestSave_StruckOffCloseNeedsClosureReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	// "شطب" maps with requiresNextDate=false; closing with no next date and
	// no closure reason must be rejected.
	_, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "شطب",
		Close:           true,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "closure_reason", vErr.Errors[0].Field)

	// With a reason the close succeeds and the renewal action is generated.
	result, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "شطب",
		Close:           true,
		ClosureReason:   domain.ClosureStruckOff,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusClosed, result.Session.Status)
	assert.Equal(t, domain.ClosureStruckOff, result.Session.ClosureReason)
	require.NotNil(t, result.GeneratedAction)
	assert.Equal(t, "تجديد من الشطب", result.GeneratedAction.ActionType)
	assert.Nil(t, result.NextSession)
}

func TestSave_UnmappedDecisionDemandsNextDate(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "قرار غير معروف",
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "next_session_date", vErr.Errors[0].Field)
}

// ===========================================================================
// Save: idempotency
// ===========================================================================

func TestSave_ResaveDoesNotDuplicateFollowups(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := f.ownerCtx()

	input := SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل لمذكرة ومستندات",
		NextSessionDate: datePtr(14),
	}
	first, err := f.svc.Save(ctx, input)
	require.NoError(t, err)
	require.NotNil(t, first.GeneratedAction)
	require.NotNil(t, first.NextSession)

	// Re-save the same session unchanged.
	input.ID = &first.Session.ID
	second, err := f.svc.Save(ctx, input)
	require.NoError(t, err)

	assert.Nil(t, second.GeneratedAction, "re-save must not regenerate the action")
	assert.Nil(t, second.NextSession, "re-save must not duplicate the placeholder")
	assert.Len(t, f.actions.created, 1)
}

func TestSave_PlaceholderNotDuplicatedAcrossSessions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := f.ownerCtx()

	target := datePtr(14)
	_, err := f.svc.Save(ctx, SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل عام",
		NextSessionDate: target,
	})
	require.NoError(t, err)

	second, err := f.svc.Save(ctx, SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(1),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل عام",
		NextSessionDate: target,
	})
	require.NoError(t, err)
	assert.Nil(t, second.NextSession, "the (case, date) slot is already occupied")
}

// ===========================================================================
// Save: linked case advisory
// ===========================================================================

func TestSave_ReferralToCourtAdvisesLinkedCase(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	result, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "تحقيق",
		DecisionOutcome: "إحالة للمحكمة",
		Close:           true,
		ClosureReason:   domain.ClosureOther,
	})
	require.NoError(t, err)
	assert.True(t, result.LinkedCaseAdvisory)

	// Editing the same session must not re-advise.
	edited, err := f.svc.Save(f.ownerCtx(), SaveInput{
		ID:              &result.Session.ID,
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "تحقيق",
		DecisionOutcome: "إحالة للمحكمة",
		Close:           true,
		ClosureReason:   domain.ClosureOther,
	})
	require.NoError(t, err)
	assert.False(t, edited.LinkedCaseAdvisory)
}

// ===========================================================================
// Save: permissions
// ===========================================================================

func TestSave_LawyerCannotTouchForeignCase(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx := ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: uuid.New(), Role: string(domain.UserRoleLawyer)})
	_, err := f.svc.Save(ctx, SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل عام",
		NextSessionDate: datePtr(7),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSave_TraineeCannotRecordSessions(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	ctx := ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: uuid.New(), Role: string(domain.UserRoleTrainee)})
	_, err := f.svc.Save(ctx, SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل عام",
		NextSessionDate: datePtr(7),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSave_Unauthenticated(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Save(context.Background(), SaveInput{CaseID: f.kase.ID})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// ===========================================================================
// Delete
// ===========================================================================

func TestDelete_PartnerOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	result, err := f.svc.Save(f.ownerCtx(), SaveInput{
		CaseID:          f.kase.ID,
		Date:            date(0),
		SessionType:     "مرافعة",
		DecisionOutcome: "تأجيل عام",
		NextSessionDate: datePtr(7),
	})
	require.NoError(t, err)

	err = f.svc.Delete(f.ownerCtx(), result.Session.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.Delete(f.partnerCtx(), result.Session.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(f.partnerCtx(), result.Session.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
