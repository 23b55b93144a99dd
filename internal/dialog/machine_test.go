package dialog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Spok95/finance-bot/internal/command"
	"github.com/Spok95/finance-bot/internal/domain/ledger"
	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"
)

func newTestMachine(t *testing.T) (*Machine, *BoltRepo) {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "dialog.db"), 0o600, nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo, err := NewBoltRepo(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return NewMachine(repo), repo
}

func TestIdleIsNotHandled(t *testing.T) {
	m, _ := newTestMachine(t)
	out, err := m.Handle(context.Background(), 1, "+100")
	if err != nil {
		t.Fatal(err)
	}
	if out.Handled {
		t.Fatalf("idle user text must not be consumed: %+v", out)
	}
}

func TestAmountThenNote(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestMachine(t)

	prompt, err := m.Begin(ctx, 7, -100, command.AddIncome, "")
	if err != nil {
		t.Fatal(err)
	}
	if prompt != "📈 Введите сумму прибыли:" {
		t.Errorf("prompt = %q", prompt)
	}

	out, err := m.Handle(ctx, 7, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Handled || out.Reply != BadAmountPrompt || out.Command != "" {
		t.Fatalf("bad amount: %+v", out)
	}
	if it, _ := repo.Get(ctx, 7); it.State != StateWaitingAmount {
		t.Fatalf("state after bad amount = %s", it.State)
	}

	out, _ = m.Handle(ctx, 7, "1 500,5")
	if out.Reply != NotePrompt {
		t.Fatalf("after amount: %+v", out)
	}

	out, err = m.Handle(ctx, 7, "оплата клиента")
	if err != nil {
		t.Fatal(err)
	}
	if out.Command != "+1500.5 оплата клиента" || out.ChatID != -100 {
		t.Fatalf("command = %q chat = %d", out.Command, out.ChatID)
	}
	if it, _ := repo.Get(ctx, 7); it.State != StateIdle {
		t.Fatalf("state after note = %s", it.State)
	}
}

func TestSkipNote(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	_, _ = m.Begin(ctx, 1, 1, command.AddEmployeeExpense, ledger.EmployeeZY)
	_, _ = m.Handle(ctx, 1, "5000")
	out, _ := m.Handle(ctx, 1, " - ")
	if out.Command != "-Z5000" {
		t.Fatalf("command = %q", out.Command)
	}
}

func TestCommandsAreConsumedWhileActive(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	_, _ = m.Begin(ctx, 1, 1, command.AddExpense, "")

	out, _ := m.Handle(ctx, 1, "/stats")
	if !out.Handled || out.Reply != BadAmountPrompt {
		t.Fatalf("/stats while waiting amount: %+v", out)
	}
	_, _ = m.Handle(ctx, 1, "300")
	out, _ = m.Handle(ctx, 1, "/bank")
	if out.Command != "-300 /bank" {
		t.Fatalf("/bank as note: %+v", out)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	for _, steps := range [][]string{nil, {"100"}} {
		_, _ = m.Begin(ctx, 1, 1, command.AddDispute, "")
		for _, s := range steps {
			_, _ = m.Handle(ctx, 1, s)
		}
		if err := m.Cancel(ctx, 1); err != nil {
			t.Fatal(err)
		}
		out, _ := m.Handle(ctx, 1, "100")
		if out.Handled {
			t.Fatalf("after cancel text is still consumed (steps %v)", steps)
		}
	}
}

func TestBeginOverwrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMachine(t)
	_, _ = m.Begin(ctx, 1, 1, command.AddIncome, "")
	_, _ = m.Handle(ctx, 1, "10")
	_, _ = m.Begin(ctx, 1, 1, command.SetBank, "")
	_, _ = m.Handle(ctx, 1, "500")
	out, _ := m.Handle(ctx, 1, "ignored")
	if out.Command != "/bank 500" {
		t.Fatalf("command = %q", out.Command)
	}
}

func TestMissingEmployee(t *testing.T) {
	ctx := context.Background()
	m, repo := newTestMachine(t)
	_, _ = m.Begin(ctx, 1, 1, command.AddEmployeeIncome, "")
	_, _ = m.Handle(ctx, 1, "10")
	out, err := m.Handle(ctx, 1, "-")
	if err != nil {
		t.Fatal(err)
	}
	if out.Command != "" || out.Reply != noEmployeeText {
		t.Fatalf("outcome = %+v", out)
	}
	if it, _ := repo.Get(ctx, 1); it.State != StateIdle {
		t.Fatalf("state = %s", it.State)
	}
}

func TestBeginRejectsReadOnlyAction(t *testing.T) {
	m, _ := newTestMachine(t)
	if _, err := m.Begin(context.Background(), 1, 1, command.GetBank, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestSynthesizeRoundTrip(t *testing.T) {
	amounts := []string{"1", "1500.5", "0.01", "1000000"}
	cases := []struct {
		kind     command.Kind
		employee ledger.Employee
	}{
		{command.SetBank, ""},
		{command.AddIncome, ""},
		{command.AddExpense, ""},
		{command.AddDebt, ""},
		{command.AddVisyak, ""},
		{command.AddDispute, ""},
		{command.AddEmployeeExpense, ledger.EmployeeZY},
		{command.AddEmployeeExpense, ledger.EmployeeMIO},
		{command.AddEmployeeIncome, ledger.EmployeeAO},
	}
	for _, c := range cases {
		for _, a := range amounts {
			for _, note := range []string{"", "аренда офиса"} {
				amount := decimal.RequireFromString(a)
				cmd, err := Synthesize(c.kind, amount, c.employee, note)
				if err != nil {
					t.Fatalf("%s: %v", c.kind, err)
				}
				got := command.Parse(cmd)
				if got.Kind != c.kind || !got.Amount.Equal(amount) || got.Employee != c.employee {
					t.Errorf("Parse(%q) = %+v", cmd, got)
				}
				wantNote := note
				if c.kind == command.SetBank {
					wantNote = ""
				}
				if got.Note != wantNote {
					t.Errorf("Parse(%q).Note = %q, want %q", cmd, got.Note, wantNote)
				}
			}
		}
	}
}
