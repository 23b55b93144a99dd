package bot

import (
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func backRow(to string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Назад", to))
}

func button(text, data string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data))
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Банк", cbMenuBank),
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", cbMenuStats),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Прибыль", cbActionIncome),
			tgbotapi.NewInlineKeyboardButtonData("📉 Расход", cbMenuExpense),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Спор", cbActionDispute),
			tgbotapi.NewInlineKeyboardButtonData("👤 Личные", cbMenuEmployees),
		),
	)
}

func expenseMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("📉 Общий расход", cbActionExpense),
		button("💳 Долги", cbActionDebts),
		button("📌 Висяк", cbActionVisyak),
		backRow(cbMenuMain),
	)
}

func bankMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("📊 Показать баланс", cbBankShow),
		button("💰 Установить баланс", cbBankSet),
		backRow(cbMenuMain),
	)
}

func statsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("📊 Общая", cbStatsGeneral),
		button("📈 Прибыль", cbStatsIncome),
		button("📉 Расходы", cbStatsExpense),
		button("🔄 Споры", cbStatsDisputes),
		button("👥 Сотрудники", cbStatsEmployees),
		button("📅 История 24ч", cbStatsHistory),
		button("📥 Выгрузка Excel", cbStatsExport),
		backRow(cbMenuMain),
	)
}

func employeesMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(ledger.Employees)+1)
	for _, emp := range ledger.Employees {
		rows = append(rows, button("👤 "+string(emp), employeePrefix+string(emp)))
	}
	rows = append(rows, backRow(cbMenuMain))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func employeeActionKeyboard(emp ledger.Employee) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		button("➕ Добавить", employeePrefix+string(emp)+employeeAddSuffix),
		button("➖ Вычесть", employeePrefix+string(emp)+employeeSubSuffix),
		backRow(cbMenuEmployees),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(button("❌ Отменить", cbCancel))
}
