package finance

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	bolt "go.etcd.io/bbolt"
)

const chat = int64(-1001)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestExecutor(t *testing.T) (*Executor, *ledger.BoltRepo, *testClock) {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "ledger.db"), 0o600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	store, err := ledger.NewBoltRepo(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	clk := &testClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewExecutor(store, WithClock(clk.now)), store, clk
}

var alice = Actor{ID: 42, Name: "Alice"}

func run(t *testing.T, e *Executor, text string) Result {
	t.Helper()
	res, err := e.Execute(context.Background(), chat, alice, command.Parse(text))
	if err != nil {
		t.Fatalf("Execute(%q): %v", text, err)
	}
	return res
}

func balance(t *testing.T, s *ledger.BoltRepo) decimal.Decimal {
	t.Helper()
	b, err := s.Balance(context.Background(), chat)
	if err != nil {
		t.Fatal(err)
	}
	return b.Amount
}

func TestEndToEndScenario(t *testing.T) {
	e, store, _ := newTestExecutor(t)

	res := run(t, e, "/bank 1000000")
	if !res.Success || res.Message != "💰 Банк установлен: 1\u00a0000\u00a0000,00 руб." {
		t.Fatalf("set bank: %+v", res)
	}
	if !balance(t, store).Equal(decimal.NewFromInt(1000000)) {
		t.Fatalf("balance = %s", balance(t, store))
	}

	res = run(t, e, "+50000 test")
	if !strings.Contains(res.Message, "💰 Новый баланс: 1\u00a0050\u00a0000,00 руб.") {
		t.Fatalf("income: %q", res.Message)
	}
	incomes, _ := store.Entries(context.Background(), ledger.Query{ChatID: chat, Types: []ledger.Type{ledger.TypeIncome}})
	if len(incomes) != 1 || incomes[0].Note != "test" || incomes[0].AuthorName != "Alice" {
		t.Fatalf("income entries = %+v", incomes)
	}

	run(t, e, "-Z5000 draw")
	if !balance(t, store).Equal(decimal.NewFromInt(1050000)) {
		t.Fatalf("employee expense moved bank: %s", balance(t, store))
	}
	s, _ := e.Summary(context.Background(), chat)
	if !s.Employees[ledger.EmployeeZY].Equal(decimal.NewFromInt(-5000)) {
		t.Fatalf("ZY net = %s", s.Employees[ledger.EmployeeZY])
	}

	msg := run(t, e, "/statistics_employees").Message
	for _, want := range []string{
		"👤 ZY:",
		"💸 Общая сумма: -5\u00a0000,00 руб.",
		"1. 01.03.2025, 09:00: -5\u00a0000,00 руб. (draw)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("employees stats missing %q:\n%s", want, msg)
		}
	}
	if strings.Contains(msg, "👤 AO:") || strings.Contains(msg, "2.") {
		t.Errorf("unexpected lines:\n%s", msg)
	}
}

func TestBalanceInvariant(t *testing.T) {
	e, store, _ := newTestExecutor(t)
	steps := []struct {
		cmd  string
		want string
	}{
		{"+100", "100"},
		{"-30,5", "69.5"},
		{"/debts 10", "59.5"},
		{"/visyak 9.5", "50"},
		{"/dispute 1000", "50"},
		{"+Z20", "50"},
		{"/bank 500", "500"},
		{"-600", "-100"},
		{"+0.01", "-99.99"},
	}
	for _, st := range steps {
		run(t, e, st.cmd)
		if got := balance(t, store); !got.Equal(decimal.RequireFromString(st.want)) {
			t.Fatalf("after %q balance = %s, want %s", st.cmd, got, st.want)
		}
	}
}

func TestExpensePartition(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	for _, cmd := range []string{"-100 rent", "/debts 40", "/visyak 7,25 x", "-3", "/debts 1", "+1000", "-M50"} {
		run(t, e, cmd)
	}
	s, err := e.Summary(context.Background(), chat)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Regular.Add(s.Debts).Add(s.Visyak).Equal(s.Expenses) {
		t.Fatalf("partition broken: %s + %s + %s != %s", s.Regular, s.Debts, s.Visyak, s.Expenses)
	}
	if !s.Regular.Equal(decimal.NewFromInt(103)) || !s.Debts.Equal(decimal.NewFromInt(41)) ||
		!s.Visyak.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("summary = %+v", s)
	}
}

func TestReadsAreIdempotent(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	run(t, e, "/bank 10")
	run(t, e, "+5 a")
	run(t, e, "/dispute 2")
	for _, cmd := range []string{"/bank", "/stats", "/statistics_income", "/statistics_expense",
		"/statistics_disputes", "/statistics_employees"} {
		a, b := run(t, e, cmd), run(t, e, cmd)
		if a.Message != b.Message || !a.Success {
			t.Errorf("%s not idempotent:\n%s\n---\n%s", cmd, a.Message, b.Message)
		}
	}
}

func TestEmployeeNotificationAsymmetry(t *testing.T) {
	e, store, _ := newTestExecutor(t)

	res := run(t, e, "-A300 lunch")
	if res.Notification == nil {
		t.Fatal("employee expense must notify")
	}
	if res.Notification.HasBalance {
		t.Error("employee notification must not carry balance")
	}

	res = run(t, e, "+A100 refund")
	if !res.Success || res.Notification != nil {
		t.Fatalf("employee income must not notify: %+v", res)
	}
	if res.Message != "👤 Личный расход AO: +100,00 руб.\n📝 Заметка: refund\n👤 Внес: Alice" {
		t.Errorf("message = %q", res.Message)
	}

	list, _ := store.Entries(context.Background(), ledger.Query{ChatID: chat})
	if len(list) != 2 || !list[0].Amount.Equal(decimal.NewFromInt(-100)) || !list[1].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("entries = %+v", list)
	}
	s, _ := e.Summary(context.Background(), chat)
	if !s.Employees[ledger.EmployeeAO].Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("AO net = %s", s.Employees[ledger.EmployeeAO])
	}
}

func TestNotifications(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	tests := []struct {
		cmd  string
		want string
	}{
		{"/bank 100", "💰 <b>Установлен баланс</b>: 100,00 руб.\n💰 Новый баланс: 100,00 руб.\n👤 Alice"},
		{"+50 <b>x</b>", "📈 <b>Прибыль</b>: +50,00 руб.\n💰 Новый баланс: 150,00 руб.\n📝 &lt;b&gt;x&lt;/b&gt;\n👤 Alice"},
		{"/debts 20 bank", "📉 <b>Расход</b>: -20,00 руб.\n💰 Новый баланс: 130,00 руб.\n📝 💳 Долги: bank\n👤 Alice"},
		{"/visyak 30", "📉 <b>Расход</b>: -30,00 руб.\n💰 Новый баланс: 100,00 руб.\n📝 📌 Висяк\n👤 Alice"},
		{"/dispute 7", "🔄 <b>Закрыт спор</b>: 7,00 руб.\n👤 Alice"},
		{"-M1", "👤 <b>Личный расход MIO</b>: -1,00 руб.\n👤 Alice"},
	}
	for _, tt := range tests {
		res := run(t, e, tt.cmd)
		if res.Notification == nil {
			t.Fatalf("%s: no notification", tt.cmd)
		}
		if res.Notification.ChatID != chat {
			t.Errorf("%s: chat = %d", tt.cmd, res.Notification.ChatID)
		}
		if got := res.Notification.Text(); got != tt.want {
			t.Errorf("%s:\n got %q\nwant %q", tt.cmd, got, tt.want)
		}
	}
	for _, cmd := range []string{"/bank", "/stats", "/history", "hello"} {
		if run(t, e, cmd).Notification != nil {
			t.Errorf("%s must not notify", cmd)
		}
	}
}

func TestMissingFields(t *testing.T) {
	e, store, _ := newTestExecutor(t)
	ctx := context.Background()

	res, _ := e.Execute(ctx, chat, alice, command.Parse("+0"))
	if res.Success || res.Message != noAmountText {
		t.Errorf("zero income: %+v", res)
	}
	res, _ = e.Execute(ctx, chat, alice, command.Parse("/bank 0"))
	if res.Success || res.Message != noAmountText {
		t.Errorf("zero bank: %+v", res)
	}
	res, _ = e.Execute(ctx, chat, alice, command.Intent{Kind: command.AddEmployeeExpense, Amount: decimal.NewFromInt(5)})
	if res.Success || res.Message != noAmountEmployeeText {
		t.Errorf("no employee: %+v", res)
	}
	if list, _ := store.Entries(ctx, ledger.Query{ChatID: chat}); len(list) != 0 {
		t.Errorf("rejected commands wrote %d entries", len(list))
	}

	res, _ = e.Execute(ctx, chat, alice, command.Parse("/help"))
	if !res.Success || res.Message != command.HelpText {
		t.Errorf("help: %+v", res)
	}
	res, _ = e.Execute(ctx, chat, alice, command.Parse("what"))
	if res.Success || !strings.HasPrefix(res.Message, "❌ Неизвестная команда.") {
		t.Errorf("unknown: %+v", res)
	}
}

func TestHistory24h(t *testing.T) {
	e, _, clk := newTestExecutor(t)
	run(t, e, "+10 old")
	clk.t = clk.t.Add(25 * time.Hour)
	run(t, e, "-M5 fresh")
	run(t, e, "/visyak 3")

	msg := run(t, e, "/history").Message
	if !strings.Contains(msg, "📊 Всего операций: 2") {
		t.Fatalf("history:\n%s", msg)
	}
	if strings.Contains(msg, "old") {
		t.Errorf("entry older than 24h listed:\n%s", msg)
	}
	for _, want := range []string{
		"1. 📉 Расход\n   💰 -3,00 руб.\n   📝 📌 Висяк\n   👨‍💼 Внес: Alice\n",
		"2. 👤 Личный расход\n   💰 -5,00 руб.\n   👤 Сотрудник: MIO\n   📝 fresh\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("history missing %q:\n%s", want, msg)
		}
	}

	clk.t = clk.t.Add(48 * time.Hour)
	if msg := run(t, e, "/history_24h").Message; !strings.Contains(msg, "❌ Нет транзакций за последние 24 часа") {
		t.Errorf("empty history:\n%s", msg)
	}
}

func TestListingsCapAndTotal(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	for i := 0; i < 12; i++ {
		run(t, e, "+1")
	}
	msg := run(t, e, "/statistics_income").Message
	if !strings.Contains(msg, "💰 Общая прибыль: 12,00 руб.") {
		t.Errorf("total over all entries expected:\n%s", msg)
	}
	if !strings.Contains(msg, "10. ") || strings.Contains(msg, "11. ") {
		t.Errorf("listing must be capped at 10:\n%s", msg)
	}
}

func TestChatsAreIsolated(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	ctx := context.Background()
	run(t, e, "/bank 100")
	if _, err := e.Execute(ctx, 777, alice, command.Parse("+5")); err != nil {
		t.Fatal(err)
	}
	res, _ := e.Execute(ctx, 777, alice, command.Parse("/bank"))
	if res.Message != "💰 Текущий баланс: 5,00 руб." {
		t.Errorf("other chat: %q", res.Message)
	}
}

func TestExport(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	run(t, e, "/bank 100")
	run(t, e, "+50 sale")
	run(t, e, "/debts 20")

	data, name, err := e.Export(context.Background(), chat)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(name, ".xlsx") {
		t.Errorf("name = %q", name)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "Дата" || rows[1][1] != "Расход" || rows[1][2] != "-20" || rows[1][4] != "💳 Долги" {
		t.Errorf("rows = %v", rows)
	}
	if rows[2][1] != "Прибыль" || rows[2][2] != "50" || rows[3][0] != "Банк" || rows[3][2] != "130" {
		t.Errorf("rows = %v", rows)
	}
}
