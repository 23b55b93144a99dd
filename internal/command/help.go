package command

const commandList = `📋 ДОСТУПНЫЕ КОМАНДЫ:

💰 Управление банком:
  /bank [сумма] - установить баланс
  /bank - показать баланс

💵 Операции:
  +[сумма] [заметка] - добавить прибыль
  -[сумма] [заметка] - общий расход
  /dispute [сумма] [заметка] - закрыть спор
  /debts [сумма] [заметка] - долги
  /visyak [сумма] [заметка] - висяк

👤 Личные расходы:
  -Z[сумма] [заметка] - вычесть у ZY
  +Z[сумма] [заметка] - добавить к ZY
  -A[сумма] [заметка] - вычесть у AO
  +A[сумма] [заметка] - добавить к AO
  -M[сумма] [заметка] - вычесть у MIO
  +M[сумма] [заметка] - добавить к MIO

📊 Статистика:
  /statistics - общая статистика
  /statistics_income - статистика прибыли
  /statistics_expense - статистика расходов (включая долги и висяк)
  /statistics_disputes - статистика споров
  /statistics_employees - расходы сотрудников
  /history - история операций за 24 часа
  /export - выгрузка в Excel

🔔 Уведомления:
  /notify_on, /notify_off

Примеры:
  /bank 1000000
  +50000 оплата клиента
  -10000 аренда
  -Z5000 аванс
  +A2000 возврат`

// HelpText ответ на /start и /help.
const HelpText = "👋 Добро пожаловать в финансового бота!\n\n" + commandList

// UnknownText ответ на нераспознанную строку.
const UnknownText = "❌ Неизвестная команда.\n\n" + commandList
