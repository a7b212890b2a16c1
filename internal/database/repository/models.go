package repository

import "time"

// Frequency is the closed set of supported recurrence cadences.
type Frequency string

const (
	FreqDaily     Frequency = "daily"
	FreqWeekly    Frequency = "weekly"
	FreqBiweekly  Frequency = "biweekly"
	FreqBimonthly Frequency = "bimonthly"
	FreqMonthly   Frequency = "monthly"
	FreqQuarterly Frequency = "quarterly"
	FreqBiannual  Frequency = "biannual"
	FreqYearly    Frequency = "yearly"
	FreqNone      Frequency = ""
)

// Valid reports whether f is a cadence the projection engine can walk.
// FreqBiannual is analysis-only output and deliberately excluded.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqBiweekly, FreqBimonthly, FreqMonthly, FreqQuarterly, FreqYearly:
		return true
	}
	return false
}

// RuleField names a transaction field a rule can test.
type RuleField string

const (
	FieldDescription RuleField = "description"
	FieldAmount      RuleField = "amount"
	FieldCategory    RuleField = "category"
	FieldDate        RuleField = "date"
	FieldAccountID   RuleField = "account_id"
)

// RuleOperator is a comparison applied by the rule evaluator.
type RuleOperator string

const (
	OpEqual        RuleOperator = "="
	OpNotEqual     RuleOperator = "!="
	OpGreater      RuleOperator = ">"
	OpLess         RuleOperator = "<"
	OpGreaterEqual RuleOperator = ">="
	OpLessEqual    RuleOperator = "<="
	OpContains     RuleOperator = "contains"
	OpNotContains  RuleOperator = "not_contains"
	OpStartsWith   RuleOperator = "starts_with"
	OpEndsWith     RuleOperator = "ends_with"
)

// Account represents an account row.
type Account struct {
	ID          string
	BudgetID    string
	Name        string
	Institution string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Transaction represents a transaction row. Amounts are signed integer
// cents, negative for expenses. Date carries no time-of-day.
type Transaction struct {
	ID                  string
	AccountID           string
	Date                time.Time
	AmountCents         int64
	Description         string
	Category            string
	RecurringTemplateID *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RecurringTemplate represents a stored recurring-transaction
// definition. Which of the day fields is meaningful depends on
// Frequency; the rest stay nil.
type RecurringTemplate struct {
	ID                 string
	BudgetID           string
	AccountID          string
	Description        string
	Category           string
	AmountCents        int64
	Frequency          Frequency
	DayOfMonth         *int
	DayOfWeek          *int // 0 = Sunday
	BimonthlyFirstDay  *int
	BimonthlySecondDay *int
	StartDate          time.Time
	EndDate            *time.Time
	DynamicAmount      bool
	AverageAmountCents *int64
	MinAmountCents     *int64
	MaxAmountCents     *int64
	PlaidEntityID      *string
	PlaidEntityName    *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RecurringRule represents one predicate attached to a template.
// Active rules combine with AND in priority order.
type RecurringRule struct {
	ID            string
	TemplateID    string
	Field         RuleField
	Operator      RuleOperator
	Value         string
	CaseSensitive bool
	Priority      int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
