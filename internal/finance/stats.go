package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const (
	listingLimit         = 10
	employeeListingLimit = 5
)

// Summary общая статистика чата. Суммы по сотрудникам: чистый итог
// со знаком операции: -Z500 даёт -500, +Z200 даёт +200.
type Summary struct {
	Bank              decimal.Decimal
	Income            decimal.Decimal
	Turnover          decimal.Decimal
	Disputes          decimal.Decimal
	BankMinusDisputes decimal.Decimal
	Regular           decimal.Decimal
	Debts             decimal.Decimal
	Visyak            decimal.Decimal
	Expenses          decimal.Decimal
	BankMinusExpenses decimal.Decimal
	Employees         map[ledger.Employee]decimal.Decimal
}

// Summarize считает сводку по всем записям чата.
func Summarize(bank decimal.Decimal, entries []ledger.Entry) Summary {
	s := Summary{Bank: bank, Employees: make(map[ledger.Employee]decimal.Decimal, len(ledger.Employees))}
	for _, emp := range ledger.Employees {
		s.Employees[emp] = decimal.Zero
	}
	for _, e := range entries {
		switch e.Type {
		case ledger.TypeIncome:
			s.Income = s.Income.Add(e.Amount)
		case ledger.TypeDispute:
			s.Disputes = s.Disputes.Add(e.Amount)
		case ledger.TypeExpense:
			s.Expenses = s.Expenses.Add(e.Amount)
			switch e.Category {
			case ledger.CategoryDebt:
				s.Debts = s.Debts.Add(e.Amount)
			case ledger.CategoryVisyak:
				s.Visyak = s.Visyak.Add(e.Amount)
			default:
				s.Regular = s.Regular.Add(e.Amount)
			}
		case ledger.TypeEmployeeExpense:
			s.Employees[e.Employee] = s.Employees[e.Employee].Sub(e.Amount)
		}
	}
	s.Turnover = s.Income.Add(bank)
	s.BankMinusDisputes = bank.Sub(s.Disputes)
	s.BankMinusExpenses = bank.Sub(s.Expenses)
	return s
}

func (s Summary) Text() string {
	var b strings.Builder
	b.WriteString("📊 ОБЩАЯ СТАТИСТИКА:\n\n")
	fmt.Fprintf(&b, "💰 Банк: %s руб.\n\n", Money(s.Bank))
	fmt.Fprintf(&b, "📈 Прокручено/Прибыль: %s руб.\n", Money(s.Income))
	fmt.Fprintf(&b, "💵 Оборот + банк: %s руб.\n\n", Money(s.Turnover))
	fmt.Fprintf(&b, "🔄 Закрыто споров на сумму: %s руб.\n", Money(s.Disputes))
	fmt.Fprintf(&b, "💸 Банк - споры: %s руб.\n\n", Money(s.BankMinusDisputes))
	fmt.Fprintf(&b, "📉 Расходы общие: %s руб.\n", Money(s.Regular))
	fmt.Fprintf(&b, "  💳 Долги: %s руб.\n", Money(s.Debts))
	fmt.Fprintf(&b, "  📌 Висяк: %s руб.\n", Money(s.Visyak))
	fmt.Fprintf(&b, "💰 Банк - расходы: %s руб.\n\n", Money(s.BankMinusExpenses))
	b.WriteString("👥 ЛИЧНЫЙ РАСХОД:")
	for _, emp := range ledger.Employees {
		fmt.Fprintf(&b, "\n  • %s: %s руб.", emp, Money(s.Employees[emp]))
	}
	return b.String()
}

// signed сумма записи так, как её ввёл пользователь: знак и модуль.
func signed(e ledger.Entry) (string, decimal.Decimal) {
	switch e.Type {
	case ledger.TypeIncome:
		return "+", e.Amount
	case ledger.TypeExpense:
		return "-", e.Amount
	case ledger.TypeEmployeeExpense:
		if e.Amount.IsNegative() {
			return "+", e.Amount.Neg()
		}
		return "-", e.Amount
	}
	return "", e.Amount
}

func listingLine(b *strings.Builder, indent string, i int, e ledger.Entry, loc *time.Location) {
	sign, amount := signed(e)
	fmt.Fprintf(b, "%s%d. %s: %s%s руб.", indent, i+1, formatTime(e.CreatedAt, loc), sign, Money(amount))
	if note := e.DisplayNote(); note != "" {
		b.WriteString(" (" + esc(note) + ")")
	}
	b.WriteByte('\n')
}

func total(entries []ledger.Entry) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// typeListing итог по всем записям и последние listingLimit из них.
func typeListing(header, totalLine string, entries []ledger.Entry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(header + "\n\n")
	fmt.Fprintf(&b, "%s: %s руб.\n", totalLine, Money(total(entries)))
	if len(entries) == 0 {
		b.WriteString("📭 Операций пока нет")
		return b.String()
	}
	b.WriteString("📋 Последние транзакции:\n")
	for i, e := range entries[:min(len(entries), listingLimit)] {
		listingLine(&b, "  ", i, e, loc)
	}
	return strings.TrimRight(b.String(), "\n")
}

func employeesListing(entries []ledger.Entry, loc *time.Location) string {
	byEmp := make(map[ledger.Employee][]ledger.Entry)
	for _, e := range entries {
		byEmp[e.Employee] = append(byEmp[e.Employee], e)
	}

	var b strings.Builder
	b.WriteString("👥 СТАТИСТИКА РАСХОДОВ СОТРУДНИКОВ:\n")
	if len(entries) == 0 {
		b.WriteString("\n📭 Операций пока нет")
		return b.String()
	}
	for _, emp := range ledger.Employees {
		list := byEmp[emp]
		if len(list) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n👤 %s:\n", emp)
		fmt.Fprintf(&b, "  💸 Общая сумма: %s руб.\n", Money(total(list).Neg()))
		b.WriteString("  📋 Последние транзакции:\n")
		for i, e := range list[:min(len(list), employeeListingLimit)] {
			listingLine(&b, "    ", i, e, loc)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var typeNames = map[ledger.Type]struct{ emoji, name string }{
	ledger.TypeIncome:          {"📈", "Прибыль"},
	ledger.TypeExpense:         {"📉", "Расход"},
	ledger.TypeEmployeeExpense: {"👤", "Личный расход"},
	ledger.TypeDispute:         {"🔄", "Спор"},
}

func typeName(t ledger.Type) (string, string) {
	if n, ok := typeNames[t]; ok {
		return n.emoji, n.name
	}
	return "📝", "Операция"
}

func historyText(entries []ledger.Entry, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("📅 ИСТОРИЯ ЗА ПОСЛЕДНИЕ 24 ЧАСА:\n\n")
	if len(entries) == 0 {
		b.WriteString("❌ Нет транзакций за последние 24 часа")
		return b.String()
	}
	fmt.Fprintf(&b, "📊 Всего операций: %d\n\n", len(entries))
	for i, e := range entries {
		emoji, name := typeName(e.Type)
		sign, amount := signed(e)
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, emoji, name)
		fmt.Fprintf(&b, "   💰 %s%s руб.\n", sign, Money(amount))
		if e.Employee != "" {
			fmt.Fprintf(&b, "   👤 Сотрудник: %s\n", e.Employee)
		}
		if note := e.DisplayNote(); note != "" {
			fmt.Fprintf(&b, "   📝 %s\n", esc(note))
		}
		if e.AuthorName != "" {
			fmt.Fprintf(&b, "   👨‍💼 Внес: %s\n", esc(e.AuthorName))
		}
		fmt.Fprintf(&b, "   ⏰ %s\n\n", formatTime(e.CreatedAt, loc))
	}
	return strings.TrimRight(b.String(), "\n")
}
