package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/dialog"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/Spok95/finance-bot/internal/finance"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// callback_data кнопок
const (
	cbMenuMain       = "menu_main"
	cbMenuBank       = "menu_bank"
	cbMenuStats      = "menu_stats"
	cbMenuEmployees  = "menu_employees"
	cbMenuExpense    = "menu_expense"
	cbCancel         = "cancel"
	cbBankShow       = "bank_show"
	cbBankSet        = "bank_set"
	cbStatsGeneral   = "stats_general"
	cbStatsIncome    = "stats_income"
	cbStatsExpense   = "stats_expense"
	cbStatsDisputes  = "stats_disputes"
	cbStatsEmployees = "stats_employees"
	cbStatsHistory   = "stats_history_24h"
	cbStatsExport    = "stats_export"
	cbActionIncome   = "action_income"
	cbActionExpense  = "action_expense"
	cbActionDebts    = "action_debts"
	cbActionVisyak   = "action_visyak"
	cbActionDispute  = "action_dispute"

	employeePrefix    = "employee_"
	employeeAddSuffix = "_add"
	employeeSubSuffix = "_sub"
)

const (
	mainMenuText  = "📋 Главное меню:\nВыберите действие:"
	unknownButton = "❌ Неизвестное действие"
)

// event общий вход для сообщений и кнопок
type event struct {
	chatID int64
	actor  finance.Actor
}

type route func(b *Bot, ctx context.Context, ev event) error

func menu(text string, kb func() tgbotapi.InlineKeyboardMarkup) route {
	return func(b *Bot, _ context.Context, ev event) error {
		b.reply(ev.chatID, text, kb())
		return nil
	}
}

func runCommand(text string) route {
	return func(b *Bot, ctx context.Context, ev event) error {
		return b.execute(ctx, ev.chatID, ev.actor, text)
	}
}

func startDialog(action command.Kind) route {
	return func(b *Bot, ctx context.Context, ev event) error {
		return b.begin(ctx, ev, action, "")
	}
}

var callbackRoutes = map[string]route{
	cbMenuMain:       (*Bot).mainMenu,
	cbMenuBank:       menu("💰 Управление банком:", bankMenuKeyboard),
	cbMenuStats:      menu("📊 Статистика:\nВыберите тип статистики:", statsMenuKeyboard),
	cbMenuEmployees:  menu("👥 Личные расходы:\nВыберите сотрудника:", employeesMenuKeyboard),
	cbMenuExpense:    menu("📉 Расходы:\nВыберите тип расхода:", expenseMenuKeyboard),
	cbCancel:         (*Bot).cancel,
	cbBankShow:       runCommand("/bank"),
	cbBankSet:        startDialog(command.SetBank),
	cbStatsGeneral:   runCommand("/statistics"),
	cbStatsIncome:    runCommand("/statistics_income"),
	cbStatsExpense:   runCommand("/statistics_expense"),
	cbStatsDisputes:  runCommand("/statistics_disputes"),
	cbStatsEmployees: runCommand("/statistics_employees"),
	cbStatsHistory:   runCommand("/history"),
	cbStatsExport:    (*Bot).export,
	cbActionIncome:   startDialog(command.AddIncome),
	cbActionExpense:  startDialog(command.AddExpense),
	cbActionDebts:    startDialog(command.AddDebt),
	cbActionVisyak:   startDialog(command.AddVisyak),
	cbActionDispute:  startDialog(command.AddDispute),
}

// Команды бота, которые не относятся к журналу. Работают только вне диалога.
var botCommands = map[string]route{
	"/menu":       (*Bot).mainMenu,
	"/export":     (*Bot).export,
	"/notify_on":  notifications(true),
	"/notify_off": notifications(false),
}

func notifications(on bool) route {
	return func(b *Bot, ctx context.Context, ev event) error {
		return b.setNotifications(ctx, ev.chatID, ev.actor.ID, on)
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Text == "" {
		return nil
	}
	ev := event{chatID: msg.Chat.ID, actor: b.register(ctx, msg.From, msg.Chat.ID)}

	// пока идёт диалог, весь текст забирает он
	out, err := b.dialog.Handle(ctx, msg.From.ID, msg.Text)
	if err != nil {
		return fmt.Errorf("dialog: %w", err)
	}
	if out.Handled {
		if out.Command != "" {
			chatID := out.ChatID
			if chatID == 0 {
				chatID = ev.chatID
			}
			return b.execute(ctx, chatID, ev.actor, out.Command)
		}
		kb := mainMenuKeyboard()
		if out.AwaitsInput {
			kb = cancelKeyboard()
		}
		b.reply(ev.chatID, out.Reply, kb)
		return nil
	}

	if r, ok := botCommands[commandName(msg.Text)]; ok {
		return r(b, ctx, ev)
	}
	return b.execute(ctx, ev.chatID, ev.actor, msg.Text)
}

// commandName "/menu@my_bot" -> "/menu"
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return name
}

func (b *Bot) onCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if err := b.answerCallback(cb); err != nil {
		b.log.Warn("answer callback failed", "err", err)
	}
	ev := event{chatID: cb.Message.Chat.ID, actor: b.register(ctx, cb.From, cb.Message.Chat.ID)}

	if r, ok := callbackRoutes[cb.Data]; ok {
		return r(b, ctx, ev)
	}
	if strings.HasPrefix(cb.Data, employeePrefix) {
		return b.onEmployee(ctx, ev, strings.TrimPrefix(cb.Data, employeePrefix))
	}
	b.reply(ev.chatID, unknownButton, mainMenuKeyboard())
	return nil
}

// onEmployee "ZY" открывает меню сотрудника, "ZY_add"/"ZY_sub" начинают ввод суммы.
func (b *Bot) onEmployee(ctx context.Context, ev event, rest string) error {
	id, op, _ := strings.Cut(rest, "_")
	emp := ledger.Employee(id)
	if !emp.Valid() {
		b.reply(ev.chatID, unknownButton, mainMenuKeyboard())
		return nil
	}
	switch "_" + op {
	case "_":
		b.reply(ev.chatID, "👤 "+string(emp)+":\nВыберите действие:", employeeActionKeyboard(emp))
		return nil
	case employeeAddSuffix:
		return b.begin(ctx, ev, command.AddEmployeeIncome, emp)
	case employeeSubSuffix:
		return b.begin(ctx, ev, command.AddEmployeeExpense, emp)
	}
	b.reply(ev.chatID, unknownButton, mainMenuKeyboard())
	return nil
}

func (b *Bot) mainMenu(ctx context.Context, ev event) error {
	if err := b.dialog.Cancel(ctx, ev.actor.ID); err != nil {
		return err
	}
	b.reply(ev.chatID, mainMenuText, mainMenuKeyboard())
	return nil
}

func (b *Bot) cancel(ctx context.Context, ev event) error {
	if err := b.dialog.Cancel(ctx, ev.actor.ID); err != nil {
		return err
	}
	b.reply(ev.chatID, dialog.CanceledText, mainMenuKeyboard())
	return nil
}

func (b *Bot) begin(ctx context.Context, ev event, action command.Kind, emp ledger.Employee) error {
	prompt, err := b.dialog.Begin(ctx, ev.actor.ID, ev.chatID, action, emp)
	if err != nil {
		return err
	}
	b.reply(ev.chatID, prompt, cancelKeyboard())
	return nil
}

// execute разбор и выполнение одной строки, ответ и рассылка.
func (b *Bot) execute(ctx context.Context, chatID int64, actor finance.Actor, text string) error {
	in := command.Parse(text)
	res, err := b.exec.Execute(ctx, chatID, actor, in)
	if err != nil {
		return err
	}
	b.m.Commands.WithLabelValues(string(in.Kind), strconv.FormatBool(res.Success)).Inc()
	b.log.Info("command executed", "chat_id", chatID, "user_id", actor.ID, "action", in.Kind, "success", res.Success)

	b.reply(chatID, res.Message, mainMenuKeyboard())
	if res.Notification != nil {
		b.notifier.Publish(*res.Notification)
	}
	return nil
}

func (b *Bot) export(ctx context.Context, ev event) error {
	data, name, err := b.exec.Export(ctx, ev.chatID)
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(ev.chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = "📥 Выгрузка операций"
	if err := b.send(doc); err != nil {
		b.replyError(ev.chatID)
	}
	return nil
}
