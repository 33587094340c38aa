package action

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaheenlf/slf-backend/internal/domain"
	"github.com/shaheenlf/slf-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockActionRepo struct {
	stored  map[uuid.UUID]*domain.Action
	deleted map[uuid.UUID]bool
}

func newMockActionRepo() *mockActionRepo {
	return &mockActionRepo{stored: map[uuid.UUID]*domain.Action{}, deleted: map[uuid.UUID]bool{}}
}

func (m *mockActionRepo) Create(ctx context.Context, a *domain.Action) (*domain.Action, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	m.stored[a.ID] = &cp
	return &cp, nil
}

func (m *mockActionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Action, error) {
	a, ok := m.stored[id]
	if !ok || m.deleted[id] {
		return nil, domain.ErrNotFound
	}
	cp := *a
	cp.SubTasks = append([]domain.SubTask(nil), a.SubTasks...)
	return &cp, nil
}

func (m *mockActionRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Action, error) {
	var out []domain.Action
	for id, a := range m.stored {
		if a.ClientID == clientID && !m.deleted[id] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockActionRepo) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.Action, error) {
	var out []domain.Action
	for id, a := range m.stored {
		if a.CaseID != nil && *a.CaseID == caseID && !m.deleted[id] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockActionRepo) ListByResponsible(ctx context.Context, userID uuid.UUID) ([]domain.Action, error) {
	var out []domain.Action
	for id, a := range m.stored {
		if a.ResponsibleUserID == userID && !m.deleted[id] {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockActionRepo) Update(ctx context.Context, a *domain.Action) (*domain.Action, error) {
	if _, ok := m.stored[a.ID]; !ok || m.deleted[a.ID] {
		return nil, domain.ErrNotFound
	}
	cp := *a
	m.stored[a.ID] = &cp
	return &cp, nil
}

func (m *mockActionRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.stored[id]; !ok || m.deleted[id] {
		return domain.ErrNotFound
	}
	m.deleted[id] = true
	return nil
}

type mockCaseRepo struct {
	cases map[uuid.UUID]*domain.Case
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	if c, ok := m.cases[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
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

func (m *mockAuditRepo) ListByEntity(ctx context.Context, entityType domain.EntityType, entityID uuid.UUID) ([]domain.AuditRecord, error) {
	var out []domain.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.EntityType == entityType && rec.EntityID != nil && *rec.EntityID == entityID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) fieldChanges() []domain.AuditRecord {
	var out []domain.AuditRecord
	for _, rec := range m.records {
		if rec.Action == domain.AuditActionFieldChange {
			out = append(out, rec)
		}
	}
	return out
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ===========================================================================
// Fixtures
// ===========================================================================

type fixture struct {
	svc     *Service
	actions *mockActionRepo
	audit   *mockAuditRepo
	kase    *domain.Case
	client  uuid.UUID
	owner   uuid.UUID
	lawyer  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	owner := uuid.New()
	lawyer := uuid.New()
	client := uuid.New()
	kase := &domain.Case{
		ID:              uuid.New(),
		ClientIDs:       []uuid.UUID{client},
		PrimaryClientID: client,
		OwnerID:         owner,
		Status:          domain.CaseStatusActive,
	}

	actions := newMockActionRepo()
	audit := &mockAuditRepo{}
	cases := &mockCaseRepo{cases: map[uuid.UUID]*domain.Case{kase.ID: kase}}

	svc := NewService(slog.New(slog.DiscardHandler), actions, cases, audit, &mockTxManager{})
	return &fixture{svc: svc, actions: actions, audit: audit, kase: kase, client: client, owner: owner, lawyer: lawyer}
}

func (f *fixture) partnerCtx() context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: uuid.New(), Role: string(domain.UserRolePartner)})
}

func (f *fixture) roleCtx(id uuid.UUID, role domain.UserRole) context.Context {
	return ctxutil.WithActor(context.Background(), ctxutil.Actor{ID: id, Role: string(role)})
}

func (f *fixture) createAction(t *testing.T) *domain.Action {
	t.Helper()
	created, err := f.svc.Create(f.partnerCtx(), CreateInput{
		ClientID:          f.client,
		CaseID:            &f.kase.ID,
		ActionType:        "إعلان/خدمة",
		ResponsibleUserID: f.lawyer,
		SubTasks:          []domain.SubTask{{Title: "تقديم للمحضر"}},
	})
	require.NoError(t, err)
	return created
}

func datePtr(daysFromNow int) *time.Time {
	d := time.Now().UTC().AddDate(0, 0, daysFromNow)
	return &d
}

// ===========================================================================
// Create
// ===========================================================================

func TestCreate_PartnerOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	input := CreateInput{ClientID: f.client, ActionType: "استشارة", ResponsibleUserID: f.lawyer}
	for _, role := range []domain.UserRole{domain.UserRoleCaseOwner, domain.UserRoleLawyer, domain.UserRoleTrainee} {
		_, err := f.svc.Create(f.roleCtx(uuid.New(), role), input)
		assert.ErrorIs(t, err, domain.ErrForbidden, "role %s", role)
	}

	created, err := f.svc.Create(f.partnerCtx(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStatusOpen, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.False(t, created.IsCaseLevel())
}

func TestCreate_RequiresClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := f.svc.Create(f.partnerCtx(), CreateInput{ActionType: "استشارة", ResponsibleUserID: f.lawyer})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "client_id", vErr.Errors[0].Field)
}

func TestCreate_CaseMustBelongToClient(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	stranger := uuid.New()
	_, err := f.svc.Create(f.partnerCtx(), CreateInput{
		ClientID:          stranger,
		CaseID:            &f.kase.ID,
		ActionType:        "استشارة",
		ResponsibleUserID: f.lawyer,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "case_id", vErr.Errors[0].Field)
}

// ===========================================================================
// FullEdit
// ===========================================================================

func TestFullEdit_SensitiveFieldNeedsReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	input := FullEditInput{
		ActionType:        created.ActionType,
		Priority:          created.Priority,
		ClientID:          created.ClientID,
		CaseID:            created.CaseID,
		ResponsibleUserID: uuid.New(), // sensitive change
	}

	_, err := f.svc.FullEdit(f.partnerCtx(), created.ID, input)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "edit_reason", vErr.Errors[0].Field)

	input.EditReason = "نقل المسؤولية بعد إجازة المحامي"
	updated, err := f.svc.FullEdit(f.partnerCtx(), created.ID, input)
	require.NoError(t, err)
	assert.Equal(t, input.ResponsibleUserID, updated.ResponsibleUserID)

	changes := f.audit.fieldChanges()
	require.Len(t, changes, 1, "exactly one field-change record for the one changed field")
	assert.Equal(t, "responsible_user_id", changes[0].Changes["field"])
	assert.Equal(t, true, changes[0].Changes["sensitive"])
	assert.Equal(t, input.EditReason, changes[0].Changes["edit_reason"])
}

func TestFullEdit_NonSensitiveFieldsNeedNoReason(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	updated, err := f.svc.FullEdit(f.partnerCtx(), created.ID, FullEditInput{
		ActionType:        created.ActionType,
		Title:             "عنوان جديد",
		Priority:          domain.PriorityHigh,
		ClientID:          created.ClientID,
		CaseID:            created.CaseID,
		ResponsibleUserID: created.ResponsibleUserID,
		DueDate:           datePtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "عنوان جديد", updated.Title)

	changes := f.audit.fieldChanges()
	require.Len(t, changes, 3) // title, due_date, priority
	for _, rec := range changes {
		assert.Equal(t, false, rec.Changes["sensitive"])
		assert.Equal(t, "", rec.Changes["edit_reason"])
	}
}

func TestFullEdit_ClientCannotBeCleared(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	_, err := f.svc.FullEdit(f.partnerCtx(), created.ID, FullEditInput{
		ActionType:        created.ActionType,
		Priority:          created.Priority,
		CaseID:            created.CaseID,
		ResponsibleUserID: created.ResponsibleUserID,
		EditReason:        "سبب",
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "client_id", vErr.Errors[0].Field)
}

func TestFullEdit_NonPartnerForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	_, err := f.svc.FullEdit(f.roleCtx(f.lawyer, domain.UserRoleLawyer), created.ID, FullEditInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ===========================================================================
// UpdateProgress
// ===========================================================================

func TestUpdateProgress_CompleteRequiresProof(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)
	ctx := f.roleCtx(f.lawyer, domain.UserRoleLawyer)

	_, err := f.svc.UpdateProgress(ctx, created.ID, ProgressInput{
		Status: domain.ActionStatusCompleted,
	})
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)

	updated, err := f.svc.UpdateProgress(ctx, created.ID, ProgressInput{
		Status:           domain.ActionStatusCompleted,
		ExecutionDate:    datePtr(0),
		ExecutionDetails: "رقم المحضر 55",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStatusCompleted, updated.Status)

	last := f.audit.records[len(f.audit.records)-1]
	assert.Equal(t, domain.AuditActionComplete, last.Action)
}

func TestUpdateProgress_CompletedIsTerminal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)
	ctx := f.roleCtx(f.lawyer, domain.UserRoleLawyer)

	_, err := f.svc.UpdateProgress(ctx, created.ID, ProgressInput{
		Status:           domain.ActionStatusCompleted,
		ExecutionDate:    datePtr(0),
		ExecutionDetails: "تم",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateProgress(ctx, created.ID, ProgressInput{Status: domain.ActionStatusOpen})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateProgress_StatusChangeAudited(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	updated, err := f.svc.UpdateProgress(f.roleCtx(f.lawyer, domain.UserRoleLawyer), created.ID, ProgressInput{
		Status: domain.ActionStatusInProgress,
		Notes:  "بدأ العمل",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionStatusInProgress, updated.Status)

	last := f.audit.records[len(f.audit.records)-1]
	assert.Equal(t, domain.AuditActionStatusChange, last.Action)
	assert.Equal(t, string(domain.ActionStatusOpen), last.Changes["old_status"])
	assert.Equal(t, string(domain.ActionStatusInProgress), last.Changes["new_status"])
}

func TestUpdateProgress_UnassignedLawyerForbidden(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	_, err := f.svc.UpdateProgress(f.roleCtx(uuid.New(), domain.UserRoleLawyer), created.ID, ProgressInput{
		Status: domain.ActionStatusInProgress,
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateProgress_TraineeResponsibleAllowed(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	// Reassign to a trainee via partner edit.
	trainee := uuid.New()
	_, err := f.svc.FullEdit(f.partnerCtx(), created.ID, FullEditInput{
		ActionType:        created.ActionType,
		Priority:          created.Priority,
		ClientID:          created.ClientID,
		CaseID:            created.CaseID,
		ResponsibleUserID: trainee,
		EditReason:        "تكليف المتدرب",
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateProgress(f.roleCtx(trainee, domain.UserRoleTrainee), created.ID, ProgressInput{
		Status:           domain.ActionStatusCompleted,
		ExecutionDate:    datePtr(0),
		ExecutionDetails: "تم التقديم",
	})
	require.NoError(t, err)
}

// ===========================================================================
// SetSubTask
// ===========================================================================

func TestSetSubTask(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)
	ctx := f.roleCtx(f.lawyer, domain.UserRoleLawyer)

	updated, err := f.svc.SetSubTask(ctx, created.ID, 0, true)
	require.NoError(t, err)
	assert.True(t, updated.SubTasks[0].Completed)

	_, err = f.svc.SetSubTask(ctx, created.ID, 5, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ===========================================================================
// History / Delete
// ===========================================================================

func TestHistory_NewestFirst(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)
	ctx := f.roleCtx(f.lawyer, domain.UserRoleLawyer)

	_, err := f.svc.UpdateProgress(ctx, created.ID, ProgressInput{Status: domain.ActionStatusInProgress})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.AuditActionStatusChange, history[0].Action)
	assert.Equal(t, domain.AuditActionCreate, history[1].Action)
}

func TestDelete_PartnerOnly(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	created := f.createAction(t)

	err := f.svc.Delete(f.roleCtx(f.lawyer, domain.UserRoleLawyer), created.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.Delete(f.partnerCtx(), created.ID)
	require.NoError(t, err)

	_, err = f.svc.Get(f.partnerCtx(), created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
