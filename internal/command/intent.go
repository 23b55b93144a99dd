// Package command разбирает текстовые команды финансового бота.
package command

import (
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	SetBank                Kind = "set_bank"
	GetBank                Kind = "get_bank"
	AddIncome              Kind = "add_income"
	AddExpense             Kind = "add_expense"
	AddEmployeeExpense     Kind = "add_employee_expense"
	AddEmployeeIncome      Kind = "add_employee_income"
	AddDispute             Kind = "add_dispute"
	AddDebt                Kind = "add_debts"
	AddVisyak              Kind = "add_visyak"
	GetStatistics          Kind = "get_statistics"
	GetStatisticsIncome    Kind = "get_statistics_income"
	GetStatisticsExpense   Kind = "get_statistics_expense"
	GetStatisticsDisputes  Kind = "get_statistics_disputes"
	GetStatisticsEmployees Kind = "get_statistics_employees"
	GetHistory24h          Kind = "get_history_24h"
	Unknown                Kind = "unknown"
)

// Intent результат разбора одной строки.
// Note == "" означает, что заметки нет.
type Intent struct {
	Kind     Kind
	Amount   decimal.Decimal
	Employee ledger.Employee
	Note     string

	// Error текст для пользователя, когда Kind == Unknown.
	Error string
	// Help: это не ошибка, а справка (/start, /help).
	Help bool
}

// NeedsAmount true для действий, которым нужна сумма.
func (k Kind) NeedsAmount() bool {
	switch k {
	case SetBank, AddIncome, AddExpense, AddEmployeeExpense, AddEmployeeIncome,
		AddDispute, AddDebt, AddVisyak:
		return true
	}
	return false
}

// NeedsEmployee true для личных расходов.
func (k Kind) NeedsEmployee() bool {
	return k == AddEmployeeExpense || k == AddEmployeeIncome
}

func unknown(msg string) Intent { return Intent{Kind: Unknown, Error: msg} }
