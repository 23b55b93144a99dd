package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeIncome          Type = "income"
	TypeExpense         Type = "expense"
	TypeEmployeeExpense Type = "employee_expense"
	TypeDispute         Type = "dispute"
)

// Category различает обычные расходы, долги и висяк (только для TypeExpense).
type Category string

const (
	CategoryRegular Category = ""
	CategoryDebt    Category = "debt"
	CategoryVisyak  Category = "visyak"
)

// Теги, которыми долги и висяк помечаются при выводе.
const (
	DebtTag   = "💳 Долги"
	VisyakTag = "📌 Висяк"
)

type Employee string

const (
	EmployeeZY  Employee = "ZY"
	EmployeeMIO Employee = "MIO"
	EmployeeAO  Employee = "AO"
)

// Employees в порядке вывода в статистике.
var Employees = []Employee{EmployeeZY, EmployeeAO, EmployeeMIO}

func (e Employee) Valid() bool {
	switch e {
	case EmployeeZY, EmployeeMIO, EmployeeAO:
		return true
	}
	return false
}

// Letter короткий код сотрудника в командах (-Z500, +M100).
func (e Employee) Letter() string {
	switch e {
	case EmployeeZY:
		return "Z"
	case EmployeeMIO:
		return "M"
	case EmployeeAO:
		return "A"
	}
	return ""
}

type Entry struct {
	ID         uuid.UUID
	ChatID     int64
	Type       Type
	Category   Category
	Amount     decimal.Decimal
	Employee   Employee
	Note       string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
}

func NewEntry(chatID int64, typ Type, amount decimal.Decimal, at time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		ChatID:    chatID,
		Type:      typ,
		Amount:    amount,
		CreatedAt: at,
	}
}

// DisplayNote заметка в том виде, в каком её видит пользователь:
// для долгов и висяка с тегом впереди.
func (e Entry) DisplayNote() string {
	var tag string
	switch e.Category {
	case CategoryDebt:
		tag = DebtTag
	case CategoryVisyak:
		tag = VisyakTag
	default:
		return e.Note
	}
	if e.Note == "" {
		return tag
	}
	return tag + ": " + e.Note
}

type Balance struct {
	ChatID    int64
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// Posting запись плюс её влияние на банк чата.
type Posting struct {
	Entry     Entry
	Delta     decimal.Decimal
	MovesBank bool
}

// Query выборка записей чата, всегда от новых к старым.
// Пустой Types значит все типы. Нулевой Since и Limit <= 0 ничего не ограничивают.
type Query struct {
	ChatID int64
	Types  []Type
	Since  time.Time
	Limit  int
}

func (q Query) matches(e Entry) bool {
	if e.ChatID != q.ChatID {
		return false
	}
	if !q.Since.IsZero() && e.CreatedAt.Before(q.Since) {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, t := range q.Types {
		if e.Type == t {
			return true
		}
	}
	return false
}
