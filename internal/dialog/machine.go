package dialog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const (
	NotePrompt      = "📝 Введите заметку (или отправьте \"-\" чтобы пропустить):"
	BadAmountPrompt = "❌ Неверный формат суммы. Попробуйте еще раз:"
	CanceledText    = "❌ Операция отменена"
	noEmployeeText  = "❌ Ошибка: не указан сотрудник"
	skipNote        = "-"
)

var ErrNotDialogAction = errors.New("action does not take an amount")

// Store хранилище состояний: Postgres или bbolt.
type Store interface {
	Get(ctx context.Context, userID int64) (*Item, error)
	Set(ctx context.Context, it Item) error
	Reset(ctx context.Context, userID int64) error
}

// Outcome результат обработки текста машиной.
// Handled == false: диалога нет, текст разбирается как обычная команда.
// Command != "": диалог завершён, команду надо выполнить в ChatID.
type Outcome struct {
	Handled bool
	Reply   string
	// AwaitsInput: показать под ответом кнопку отмены.
	AwaitsInput bool
	Command     string
	ChatID      int64
}

type Machine struct {
	store Store
}

func NewMachine(store Store) *Machine { return &Machine{store: store} }

// Begin начинает ввод суммы для action, затирая прежнее состояние. Возвращает подсказку.
func (m *Machine) Begin(ctx context.Context, userID, chatID int64, action command.Kind, employee ledger.Employee) (string, error) {
	if !action.NeedsAmount() {
		return "", fmt.Errorf("begin %s: %w", action, ErrNotDialogAction)
	}
	p := Payload{}
	if employee != "" {
		p[keyEmployee] = string(employee)
	}
	err := m.store.Set(ctx, Item{UserID: userID, ChatID: chatID, State: StateWaitingAmount, Action: action, Payload: p})
	if err != nil {
		return "", fmt.Errorf("begin %s: %w", action, err)
	}
	return PromptFor(action, employee), nil
}

func (m *Machine) Handle(ctx context.Context, userID int64, text string) (Outcome, error) {
	it, err := m.store.Get(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	switch it.State {
	case StateWaitingAmount:
		return m.onAmount(ctx, it, text)
	case StateWaitingNote:
		return m.onNote(ctx, it, text)
	case StateIdle, "":
		return Outcome{}, nil
	default:
		// неизвестное состояние из старой версии, сбрасываем
		return Outcome{}, m.store.Reset(ctx, userID)
	}
}

func (m *Machine) onAmount(ctx context.Context, it *Item, text string) (Outcome, error) {
	amount, ok := command.ParseAmount(text)
	if !ok {
		return Outcome{Handled: true, Reply: BadAmountPrompt, AwaitsInput: true, ChatID: it.ChatID}, nil
	}
	it.Payload[keyAmount] = amount.String()
	it.State = StateWaitingNote
	if err := m.store.Set(ctx, *it); err != nil {
		return Outcome{}, fmt.Errorf("save amount: %w", err)
	}
	return Outcome{Handled: true, Reply: NotePrompt, AwaitsInput: true, ChatID: it.ChatID}, nil
}

func (m *Machine) onNote(ctx context.Context, it *Item, text string) (Outcome, error) {
	if err := m.store.Reset(ctx, it.UserID); err != nil {
		return Outcome{}, err
	}
	raw, _ := GetString(it.Payload, keyAmount)
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("stored amount %q: %w", raw, err)
	}
	emp, _ := GetString(it.Payload, keyEmployee)

	note := strings.TrimSpace(text)
	if note == skipNote {
		note = ""
	}
	cmd, err := Synthesize(it.Action, amount, ledger.Employee(emp), note)
	if errors.Is(err, errNoEmployee) {
		return Outcome{Handled: true, Reply: noEmployeeText, ChatID: it.ChatID}, nil
	}
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Handled: true, Command: cmd, ChatID: it.ChatID}, nil
}

// Cancel из любого состояния в idle.
func (m *Machine) Cancel(ctx context.Context, userID int64) error {
	return m.store.Reset(ctx, userID)
}

var errNoEmployee = errors.New("employee is required")

// Synthesize собирает однострочную команду, которую поймёт command.Parse.
func Synthesize(action command.Kind, amount decimal.Decimal, employee ledger.Employee, note string) (string, error) {
	a := amount.String()
	var cmd string
	switch action {
	case command.SetBank:
		return "/bank " + a, nil
	case command.AddIncome:
		cmd = "+" + a
	case command.AddExpense:
		cmd = "-" + a
	case command.AddDebt:
		cmd = "/debts " + a
	case command.AddVisyak:
		cmd = "/visyak " + a
	case command.AddDispute:
		cmd = "/dispute " + a
	case command.AddEmployeeExpense, command.AddEmployeeIncome:
		if !employee.Valid() {
			return "", errNoEmployee
		}
		sign := "-"
		if action == command.AddEmployeeIncome {
			sign = "+"
		}
		cmd = sign + employee.Letter() + a
	default:
		return "", fmt.Errorf("synthesize %s: %w", action, ErrNotDialogAction)
	}
	if note != "" {
		cmd += " " + note
	}
	return cmd, nil
}

// PromptFor подсказка для ввода суммы.
func PromptFor(action command.Kind, employee ledger.Employee) string {
	switch action {
	case command.SetBank:
		return "💰 Введите сумму для установки баланса банка:"
	case command.AddIncome:
		return "📈 Введите сумму прибыли:"
	case command.AddExpense:
		return "📉 Введите сумму расхода:"
	case command.AddDebt:
		return "💳 Введите сумму долга:"
	case command.AddVisyak:
		return "📌 Введите сумму висяка:"
	case command.AddDispute:
		return "🔄 Введите сумму закрытого спора:"
	case command.AddEmployeeIncome:
		return "👤 " + string(employee) + ": Введите сумму (добавить):"
	case command.AddEmployeeExpense:
		return "👤 " + string(employee) + ": Введите сумму (вычесть):"
	}
	return "Введите сумму:"
}
