// Package finance выполняет разобранные команды над журналом операций чата.
package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const (
	noAmountText         = "❌ Не указана сумма"
	noAmountEmployeeText = "❌ Не указана сумма или сотрудник"
	unknownActionText    = "❌ Неизвестное действие"
)

// Store журнал и банк чата: ledger.Repo или ledger.BoltRepo.
type Store interface {
	Balance(ctx context.Context, chatID int64) (ledger.Balance, error)
	SetBalance(ctx context.Context, chatID int64, amount decimal.Decimal) (ledger.Balance, error)
	Post(ctx context.Context, p ledger.Posting) (ledger.Balance, error)
	Entries(ctx context.Context, q ledger.Query) ([]ledger.Entry, error)
}

// Actor кто вносит операцию.
type Actor struct {
	ID   int64
	Name string
}

type Result struct {
	Success      bool
	Message      string
	Notification *Notification
}

type request struct {
	chatID int64
	actor  Actor
	in     command.Intent
}

type handler func(ctx context.Context, r request) (Result, error)

type Executor struct {
	store    Store
	now      func() time.Time
	loc      *time.Location
	handlers map[command.Kind]handler
}

type Option func(*Executor)

func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithLocation часовой пояс для дат в ответах.
func WithLocation(loc *time.Location) Option {
	return func(e *Executor) { e.loc = loc }
}

func NewExecutor(store Store, opts ...Option) *Executor {
	e := &Executor{store: store, now: time.Now, loc: time.UTC}
	for _, o := range opts {
		o(e)
	}
	e.handlers = map[command.Kind]handler{
		command.SetBank:                e.setBank,
		command.GetBank:                e.getBank,
		command.AddIncome:              e.post(ledger.TypeIncome, ledger.CategoryRegular),
		command.AddExpense:             e.post(ledger.TypeExpense, ledger.CategoryRegular),
		command.AddDebt:                e.post(ledger.TypeExpense, ledger.CategoryDebt),
		command.AddVisyak:              e.post(ledger.TypeExpense, ledger.CategoryVisyak),
		command.AddDispute:             e.post(ledger.TypeDispute, ledger.CategoryRegular),
		command.AddEmployeeExpense:     e.employee,
		command.AddEmployeeIncome:      e.employee,
		command.GetStatistics:          e.statistics,
		command.GetStatisticsIncome:    e.listing(ledger.TypeIncome, "📈 СТАТИСТИКА ПРИБЫЛИ:", "💰 Общая прибыль"),
		command.GetStatisticsExpense:   e.listing(ledger.TypeExpense, "📉 СТАТИСТИКА РАСХОДОВ:", "💸 Общие расходы"),
		command.GetStatisticsDisputes:  e.listing(ledger.TypeDispute, "🔄 СТАТИСТИКА СПОРОВ:", "💰 Закрыто споров на сумму"),
		command.GetStatisticsEmployees: e.employeeStats,
		command.GetHistory24h:          e.history,
	}
	return e
}

// Execute применяет intent к журналу chatID. Ошибка возвращается только при сбое хранилища;
// неверный ввод возвращается как Result{Success: false}.
func (e *Executor) Execute(ctx context.Context, chatID int64, actor Actor, in command.Intent) (Result, error) {
	if in.Kind == command.Unknown {
		return Result{Success: in.Help, Message: in.Error}, nil
	}
	h, ok := e.handlers[in.Kind]
	if !ok {
		return Result{Message: unknownActionText}, nil
	}
	if in.Kind.NeedsEmployee() && (in.Amount.IsZero() || !in.Employee.Valid()) {
		return Result{Message: noAmountEmployeeText}, nil
	}
	if in.Kind.NeedsAmount() && in.Amount.IsZero() {
		return Result{Message: noAmountText}, nil
	}
	res, err := h(ctx, request{chatID: chatID, actor: actor, in: in})
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", in.Kind, err)
	}
	return res, nil
}

func (e *Executor) setBank(ctx context.Context, r request) (Result, error) {
	bal, err := e.store.SetBalance(ctx, r.chatID, r.in.Amount)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Success: true,
		Message: "💰 Банк установлен: " + Money(bal.Amount) + " руб.",
		Notification: &Notification{
			ChatID: r.chatID, Action: r.in.Kind, Amount: r.in.Amount,
			UserName: r.actor.Name, NewBalance: bal.Amount, HasBalance: true,
		},
	}, nil
}

func (e *Executor) getBank(ctx context.Context, r request) (Result, error) {
	bal, err := e.store.Balance(ctx, r.chatID)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "💰 Текущий баланс: " + Money(bal.Amount) + " руб."}, nil
}

func (e *Executor) newEntry(r request, typ ledger.Type, amount decimal.Decimal) ledger.Entry {
	en := ledger.NewEntry(r.chatID, typ, amount, e.now())
	en.Note = r.in.Note
	en.AuthorID = r.actor.ID
	en.AuthorName = r.actor.Name
	return en
}

// post приход, расход, долги, висяк и споры. Банк двигают все, кроме спора.
func (e *Executor) post(typ ledger.Type, cat ledger.Category) handler {
	return func(ctx context.Context, r request) (Result, error) {
		en := e.newEntry(r, typ, r.in.Amount)
		en.Category = cat

		p := ledger.Posting{Entry: en}
		switch typ {
		case ledger.TypeIncome:
			p.Delta, p.MovesBank = r.in.Amount, true
		case ledger.TypeExpense:
			p.Delta, p.MovesBank = r.in.Amount.Neg(), true
		}
		bal, err := e.store.Post(ctx, p)
		if err != nil {
			return Result{}, err
		}

		var head string
		switch r.in.Kind {
		case command.AddIncome:
			head = "📈 Прибыль +" + Money(r.in.Amount) + " руб."
		case command.AddExpense:
			head = "📉 Расход -" + Money(r.in.Amount) + " руб."
		case command.AddDebt:
			head = "💳 Долги: -" + Money(r.in.Amount) + " руб."
		case command.AddVisyak:
			head = "📌 Висяк: -" + Money(r.in.Amount) + " руб."
		case command.AddDispute:
			head = "🔄 Закрыт спор на сумму: " + Money(r.in.Amount) + " руб."
		}
		if p.MovesBank {
			head += "\n💰 Новый баланс: " + Money(bal.Amount) + " руб."
		}

		return Result{
			Success: true,
			Message: head + tail(r),
			Notification: &Notification{
				ChatID: r.chatID, Action: r.in.Kind, Amount: r.in.Amount,
				Note: en.DisplayNote(), UserName: r.actor.Name,
				NewBalance: bal.Amount, HasBalance: p.MovesBank,
			},
		}, nil
	}
}

// employee личные расходы: банк не трогают. +Z пишется отрицательной суммой.
func (e *Executor) employee(ctx context.Context, r request) (Result, error) {
	amount, sign := r.in.Amount, "-"
	if r.in.Kind == command.AddEmployeeIncome {
		amount, sign = amount.Neg(), "+"
	}
	en := e.newEntry(r, ledger.TypeEmployeeExpense, amount)
	en.Employee = r.in.Employee
	if _, err := e.store.Post(ctx, ledger.Posting{Entry: en}); err != nil {
		return Result{}, err
	}

	res := Result{
		Success: true,
		Message: "👤 Личный расход " + string(r.in.Employee) + ": " + sign + Money(r.in.Amount) + " руб." + tail(r),
	}
	// о возврате сотруднику не оповещаем
	if r.in.Kind == command.AddEmployeeExpense {
		res.Notification = &Notification{
			ChatID: r.chatID, Action: r.in.Kind, Amount: r.in.Amount,
			Employee: r.in.Employee, Note: r.in.Note, UserName: r.actor.Name,
		}
	}
	return res, nil
}

func tail(r request) string {
	var b strings.Builder
	if note := r.in.Note; note != "" {
		b.WriteString("\n📝 Заметка: " + esc(note))
	}
	if r.actor.Name != "" {
		b.WriteString("\n👤 Внес: " + esc(r.actor.Name))
	}
	return b.String()
}

func (e *Executor) statistics(ctx context.Context, r request) (Result, error) {
	s, err := e.Summary(ctx, r.chatID)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: s.Text()}, nil
}

// Summary общая статистика чата.
func (e *Executor) Summary(ctx context.Context, chatID int64) (Summary, error) {
	bal, err := e.store.Balance(ctx, chatID)
	if err != nil {
		return Summary{}, err
	}
	entries, err := e.store.Entries(ctx, ledger.Query{ChatID: chatID})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(bal.Amount, entries), nil
}

func (e *Executor) listing(typ ledger.Type, header, totalLine string) handler {
	return func(ctx context.Context, r request) (Result, error) {
		entries, err := e.store.Entries(ctx, ledger.Query{ChatID: r.chatID, Types: []ledger.Type{typ}})
		if err != nil {
			return Result{}, err
		}
		return Result{Success: true, Message: typeListing(header, totalLine, entries, e.loc)}, nil
	}
}

func (e *Executor) employeeStats(ctx context.Context, r request) (Result, error) {
	entries, err := e.store.Entries(ctx, ledger.Query{ChatID: r.chatID, Types: []ledger.Type{ledger.TypeEmployeeExpense}})
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: employeesListing(entries, e.loc)}, nil
}

func (e *Executor) history(ctx context.Context, r request) (Result, error) {
	entries, err := e.store.Entries(ctx, ledger.Query{ChatID: r.chatID, Since: e.now().Add(-24 * time.Hour)})
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: historyText(entries, e.loc)}, nil
}
