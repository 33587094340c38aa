package domain

import (
	"time"

	"github.com/google/uuid"
)

// DecisionActionMapping links a session decision outcome to the follow-up
// action it should generate. One record per decision type.
type DecisionActionMapping struct {
	ID                uuid.UUID
	DecisionType      string
	ActionType        string
	ExecutionProof    string
	SubTasks          []SubTask
	RequiresNextDate  bool
	Urgent            bool
	CreatesLinkedCase bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Validate checks required mapping fields.
func (m *DecisionActionMapping) Validate() error {
	var errs []FieldError
	if m.DecisionType == "" {
		errs = append(errs, FieldError{Field: "decision_type", Message: "decision type is required"})
	}
	if m.ActionType == "" {
		errs = append(errs, FieldError{Field: "action_type", Message: "action type is required"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// DefaultDecisionActionMappings is the office-specific mapping table seeded on
// first use. Decision and action types are the Arabic terms used by the firm.
func DefaultDecisionActionMappings() []DecisionActionMapping {
	return []DecisionActionMapping{
		{
			DecisionType:     "تأجيل لإعادة الإعلان",
			ActionType:       "إعلان/خدمة",
			ExecutionProof:   "تاريخ التقديم للمحضر + رقم المرجع + النتيجة",
			RequiresNextDate: true,
		},
		{
			DecisionType:     "تأجيل لتصريح",
			ActionType:       "تصريح محكمة",
			ExecutionProof:   "رقم التصريح + التاريخ + المرفق",
			RequiresNextDate: true,
		},
		{
			DecisionType:   "تأجيل لمذكرة ومستندات",
			ActionType:     "حزمة تحضير",
			ExecutionProof: "تفاصيل التقديم",
			SubTasks: []SubTask{
				{Title: "صياغة المذكرة"},
				{Title: "مراجعة المذكرة"},
				{Title: "تحضير المستندات"},
				{Title: "تصوير ونسخ"},
				{Title: "تقديم الحزمة"},
			},
			RequiresNextDate: true,
		},
		{
			DecisionType:   "إحالة لخبير",
			ActionType:     "متابعة خبير",
			ExecutionProof: "متابعة الموعد + تقديم الملاحظات + استلام التقرير",
			SubTasks: []SubTask{
				{Title: "متابعة موعد الخبير"},
				{Title: "تقديم ملاحظات"},
				{Title: "استلام التقرير"},
			},
			RequiresNextDate: true,
		},
		{
			DecisionType:   "شطب",
			ActionType:     "تجديد من الشطب",
			ExecutionProof: "تقديم طلب التجديد",
		},
		{
			DecisionType:   "صدور حكم",
			ActionType:     "مراجعة حكم",
			ExecutionProof: "مراجعة الحكم وتحديد الإجراء التالي",
		},
		{
			DecisionType:   "حبس احتياطي",
			ActionType:     "حضور تجديد حبس",
			ExecutionProof: "حضور جلسة التجديد",
			Urgent:         true,
		},
		{
			DecisionType:     "طلب تحقيقات",
			ActionType:       "متابعة تحقيق",
			ExecutionProof:   "استلام التحقيق + الخطوة التالية",
			RequiresNextDate: true,
		},
		{
			DecisionType:   "تأجيل للمرافعة",
			ActionType:     "حزمة تحضير",
			ExecutionProof: "تحضير المرافعة",
			SubTasks: []SubTask{
				{Title: "تحضير نقاط المرافعة"},
				{Title: "مراجعة القضية"},
			},
			RequiresNextDate: true,
		},
		{
			DecisionType:   "تأجيل للاطلاع",
			ActionType:     "حزمة تحضير",
			ExecutionProof: "الاطلاع والتحضير",
			SubTasks: []SubTask{
				{Title: "الاطلاع على المستندات"},
				{Title: "تحضير الرد"},
			},
			RequiresNextDate: true,
		},
		{
			DecisionType:     "تأجيل عام",
			ActionType:       "أخرى",
			RequiresNextDate: true,
		},
		{
			DecisionType:      "إحالة للمحكمة",
			ActionType:        "أخرى",
			ExecutionProof:    "إنشاء قضية جديدة مرتبطة",
			CreatesLinkedCase: true,
		},
		{
			DecisionType:   "نطق بالحكم",
			ActionType:     "مراجعة حكم",
			ExecutionProof: "مراجعة الحكم وتحديد الإجراء التالي",
		},
	}
}
