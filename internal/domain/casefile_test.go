package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validCase() Case {
	clientID := uuid.New()
	return Case{
		CaseNo:           "1234",
		Year:             "2026",
		StageType:        "أول درجة",
		ClientIDs:        []uuid.UUID{clientID},
		PrimaryClientID:  clientID,
		ClientRole:       "مدعي",
		OpponentName:     "الخصم",
		OpponentRole:     "مدعى عليه",
		Court:            "محكمة شمال القاهرة",
		Circuit:          "الدائرة 12",
		CaseType:         CaseTypeCivil,
		Subject:          "نزاع إيجار",
		FirstSessionDate: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		OwnerID:          uuid.New(),
		Status:           CaseStatusActive,
	}
}

func TestCase_Validate_OK(t *testing.T) {
	t.Parallel()

	c := validCase()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid case, got %v", err)
	}
}

func TestCase_Validate_PrimaryClientMustBeMember(t *testing.T) {
	t.Parallel()

	c := validCase()
	c.PrimaryClientID = uuid.New()

	err := c.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCase_Validate_NoClients(t *testing.T) {
	t.Parallel()

	c := validCase()
	c.ClientIDs = nil

	err := c.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCase_Validate_CriminalRequiresStage(t *testing.T) {
	t.Parallel()

	c := validCase()
	c.CaseType = CaseTypeCriminal
	c.CriminalStageType = ""

	err := c.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	c.CriminalStageType = "جنحة"
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid criminal case with stage, got %v", err)
	}
}

func TestCase_DisplayKey(t *testing.T) {
	t.Parallel()

	c := validCase()
	if got := c.DisplayKey(); got != "1234/2026" {
		t.Fatalf("unexpected display key %q", got)
	}
}
