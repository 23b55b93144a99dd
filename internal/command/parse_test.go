package command

import (
	"strings"
	"testing"

	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		kind     Kind
		amount   string
		employee ledger.Employee
		note     string
	}{
		{"+1000 client payment", AddIncome, "1000", "", "client payment"},
		{"-Z500 advance", AddEmployeeExpense, "500", ledger.EmployeeZY, "advance"},
		{"/bank", GetBank, "", "", ""},
		{"/bank 1000000", SetBank, "1000000", "", ""},
		{"/bank 1 000 000,50", SetBank, "1000000.5", "", ""},
		{"  /stats  ", GetStatistics, "", "", ""},
		{"/statistics", GetStatistics, "", "", ""},
		{"/statistics_income", GetStatisticsIncome, "", "", ""},
		{"/statistics_expense", GetStatisticsExpense, "", "", ""},
		{"/statistics_disputes", GetStatisticsDisputes, "", "", ""},
		{"/statistics_employees", GetStatisticsEmployees, "", "", ""},
		{"/history", GetHistory24h, "", "", ""},
		{"/history_24h", GetHistory24h, "", "", ""},
		{"/dispute 20000 closed   with bank", AddDispute, "20000", "", "closed with bank"},
		{"/debts 10000", AddDebt, "10000", "", ""},
		{"/visyak 5000,5 hanging", AddVisyak, "5000.5", "", "hanging"},
		{"+M250 refund", AddEmployeeIncome, "250", ledger.EmployeeMIO, "refund"},
		{"+а100", AddEmployeeIncome, "100", ledger.EmployeeAO, ""},
		{"-з300 обед", AddEmployeeExpense, "300", ledger.EmployeeZY, "обед"},
		{"-М42", AddEmployeeExpense, "42", ledger.EmployeeMIO, ""},
		{"-10000 аренда", AddExpense, "10000", "", "аренда"},
		{"- 15", AddExpense, "15", "", ""},
		{"+0.5", AddIncome, "0.5", "", ""},
		{"/bank@finance_bot 300", SetBank, "300", "", ""},
		{"/stats@finance_bot", GetStatistics, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if got.Kind != tt.kind {
				t.Fatalf("kind = %q (err %q), want %q", got.Kind, got.Error, tt.kind)
			}
			if tt.amount != "" && !got.Amount.Equal(decimal.RequireFromString(tt.amount)) {
				t.Errorf("amount = %s, want %s", got.Amount, tt.amount)
			}
			if got.Employee != tt.employee {
				t.Errorf("employee = %q, want %q", got.Employee, tt.employee)
			}
			if got.Note != tt.note {
				t.Errorf("note = %q, want %q", got.Note, tt.note)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	tests := []struct {
		in      string
		errPart string
		help    bool
	}{
		{"hello", "Неизвестная команда", false},
		{"/start", "Добро пожаловать", true},
		{"/help", "Добро пожаловать", true},
		{"/bank abc", "Неверный формат суммы", false},
		{"/dispute", "Используйте: /dispute", false},
		{"/debts x", "Неверный формат суммы", false},
		{"+", "Неверный формат. Используйте: +50000", false},
		{"-", "Неверный формат. Используйте: -10000", false},
		{"-z", "Неверный формат. Используйте: -Z5000", false},
		{"+Zabc", "Неверный формат суммы", false},
		{"+X100", "Неизвестный сотрудник. Используйте: +Z, +M, или +A", false},
		{"-q100", "Неизвестный сотрудник. Используйте: -Z, -M, или -A", false},
		{"/statistics_other", "Неизвестная команда", false},
		{"+Infinity", "Неизвестный сотрудник", false},
		{"/bank 1e400", "Неверный формат суммы", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Parse(tt.in)
			if got.Kind != Unknown {
				t.Fatalf("kind = %q, want unknown", got.Kind)
			}
			if !strings.Contains(got.Error, tt.errPart) {
				t.Errorf("error = %q, want it to contain %q", got.Error, tt.errPart)
			}
			if got.Help != tt.help {
				t.Errorf("help = %v, want %v", got.Help, tt.help)
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	for _, in := range []string{"+1000 a", "/bank", "-A5 b c", "nope"} {
		a, b := Parse(in), Parse(in)
		if a.Kind != b.Kind || !a.Amount.Equal(b.Amount) || a.Note != b.Note || a.Error != b.Error {
			t.Errorf("Parse(%q) not deterministic: %+v vs %+v", in, a, b)
		}
	}
}
