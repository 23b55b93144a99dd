package finance

import (
	"strings"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const defaultUserName = "Пользователь"

// Notification то, что рассылается участникам чата после операции.
type Notification struct {
	ChatID   int64
	Action   command.Kind
	Amount   decimal.Decimal
	Employee ledger.Employee
	// Note уже с тегом долга/висяка
	Note       string
	UserName   string
	NewBalance decimal.Decimal
	HasBalance bool
}

type notifyStyle struct {
	emoji, label, sign string
}

var notifyStyles = map[command.Kind]notifyStyle{
	command.SetBank:            {"💰", "Установлен баланс", ""},
	command.AddIncome:          {"📈", "Прибыль", "+"},
	command.AddExpense:         {"📉", "Расход", "-"},
	command.AddDebt:            {"📉", "Расход", "-"},
	command.AddVisyak:          {"📉", "Расход", "-"},
	command.AddEmployeeExpense: {"👤", "Личный расход", "-"},
	command.AddDispute:         {"🔄", "Закрыт спор", ""},
}

// Text HTML для Telegram.
func (n Notification) Text() string {
	st, ok := notifyStyles[n.Action]
	if !ok {
		st = notifyStyle{"📝", "Операция", ""}
	}
	label := st.label
	if n.Employee != "" {
		label += " " + string(n.Employee)
	}

	var b strings.Builder
	b.WriteString(st.emoji + " <b>" + label + "</b>: " + st.sign + Money(n.Amount) + " руб.")
	if n.HasBalance {
		b.WriteString("\n💰 Новый баланс: " + Money(n.NewBalance) + " руб.")
	}
	if n.Note != "" {
		b.WriteString("\n📝 " + esc(n.Note))
	}
	name := n.UserName
	if name == "" {
		name = defaultUserName
	}
	b.WriteString("\n👤 " + esc(name))
	return b.String()
}
