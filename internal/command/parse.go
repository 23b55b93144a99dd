package command

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

type rule struct {
	match func(s string) bool
	parse func(s string) Intent
}

// Порядок важен: срабатывает первое совпадение.
var rules = []rule{
	{exact("/start", "/help"), func(string) Intent { return Intent{Kind: Unknown, Error: HelpText, Help: true} }},
	{exact("/statistics", "/stats"), fixed(GetStatistics)},
	{exact("/statistics_income"), fixed(GetStatisticsIncome)},
	{exact("/statistics_expense"), fixed(GetStatisticsExpense)},
	{exact("/statistics_disputes"), fixed(GetStatisticsDisputes)},
	{exact("/statistics_employees"), fixed(GetStatisticsEmployees)},
	{exact("/history", "/history_24h"), fixed(GetHistory24h)},
	{prefix("/bank"), parseBank},
	{prefix("/dispute"), amountNote("/dispute", AddDispute, "/dispute 20000 [заметка]")},
	{prefix("/debts"), amountNote("/debts", AddDebt, "/debts 10000 [заметка]")},
	{prefix("/visyak"), amountNote("/visyak", AddVisyak, "/visyak 5000 [заметка]")},
	{employeePrefix("+"), employeeAmountNote("+", AddEmployeeIncome)},
	{prefix("+"), amountNote("+", AddIncome, "+50000 [заметка]")},
	{employeePrefix("-"), employeeAmountNote("-", AddEmployeeExpense)},
	{prefix("-"), amountNote("-", AddExpense, "-10000 [заметка]")},
}

// Parse разбирает строку в Intent. Не падает: всё непонятное становится Unknown с подсказкой.
func Parse(text string) Intent {
	s := stripMention(strings.TrimSpace(text))
	for _, r := range rules {
		if r.match(s) {
			return r.parse(s)
		}
	}
	return unknown(UnknownText)
}

// stripMention убирает @bot из команды: "/bank@my_bot 100" -> "/bank 100"
func stripMention(s string) string {
	if !strings.HasPrefix(s, "/") {
		return s
	}
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		end = len(s)
	}
	if at := strings.IndexByte(s[:end], '@'); at > 0 {
		return s[:at] + s[end:]
	}
	return s
}

func exact(cmds ...string) func(string) bool {
	return func(s string) bool {
		for _, c := range cmds {
			if s == c {
				return true
			}
		}
		return false
	}
}

func prefix(p string) func(string) bool {
	return func(s string) bool { return strings.HasPrefix(s, p) }
}

// employeePrefix знак и сразу за ним буква: +Z500, -м100
func employeePrefix(sign string) func(string) bool {
	return func(s string) bool {
		if !strings.HasPrefix(s, sign) {
			return false
		}
		r, _ := utf8.DecodeRuneInString(s[len(sign):])
		return r != utf8.RuneError && unicode.IsLetter(r)
	}
}

func fixed(k Kind) func(string) Intent {
	return func(string) Intent { return Intent{Kind: k} }
}

func parseBank(s string) Intent {
	rest := strings.TrimSpace(strings.TrimPrefix(s, "/bank"))
	if rest == "" {
		return Intent{Kind: GetBank}
	}
	amount, ok := ParseAmount(rest)
	if !ok {
		return unknown("❌ Неверный формат суммы. Используйте: /bank 1000000")
	}
	return Intent{Kind: SetBank, Amount: amount}
}

func amountNote(p string, k Kind, usage string) func(string) Intent {
	return func(s string) Intent {
		amount, note, bad := splitAmountNote(strings.TrimPrefix(s, p), usage)
		if bad != nil {
			return *bad
		}
		return Intent{Kind: k, Amount: amount, Note: note}
	}
}

func employeeAmountNote(sign string, k Kind) func(string) Intent {
	return func(s string) Intent {
		r, size := utf8.DecodeRuneInString(s[len(sign):])
		emp, ok := EmployeeByLetter(r)
		if !ok {
			return unknown("❌ Неизвестный сотрудник. Используйте: " + sign + "Z, " + sign + "M, или " + sign + "A")
		}
		amount, note, bad := splitAmountNote(s[len(sign)+size:], sign+"Z5000 [заметка]")
		if bad != nil {
			return *bad
		}
		return Intent{Kind: k, Amount: amount, Employee: emp, Note: note}
	}
}

// splitAmountNote: первый токен это сумма, остальные через пробел дают заметку.
func splitAmountNote(rest, usage string) (decimal.Decimal, string, *Intent) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		bad := unknown("❌ Неверный формат. Используйте: " + usage)
		return decimal.Decimal{}, "", &bad
	}
	amount, ok := ParseAmount(fields[0])
	if !ok {
		bad := unknown("❌ Неверный формат суммы. Используйте: " + usage)
		return decimal.Decimal{}, "", &bad
	}
	return amount, strings.Join(fields[1:], " "), nil
}

// EmployeeByLetter латиница и похожая кириллица, регистр не важен.
func EmployeeByLetter(r rune) (ledger.Employee, bool) {
	switch unicode.ToUpper(r) {
	case 'Z', 'З':
		return ledger.EmployeeZY, true
	case 'M', 'М':
		return ledger.EmployeeMIO, true
	case 'A', 'А':
		return ledger.EmployeeAO, true
	}
	return "", false
}
