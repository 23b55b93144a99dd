package users

import (
	"context"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"
)

func newBolt(t *testing.T) *BoltRepo {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "users.db"), 0o600, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	r, err := NewBoltRepo(db)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegisterAndSubscriptions(t *testing.T) {
	ctx := context.Background()
	r := newBolt(t)

	u, err := r.Register(ctx, Telegram{ID: 1, Username: "ann", FirstName: "Ann"}, -10)
	if err != nil {
		t.Fatal(err)
	}
	if u.Subscribed || u.ChatID != -10 {
		t.Fatalf("new user = %+v", u)
	}
	_, _ = r.Register(ctx, Telegram{ID: 2, FirstName: "Bob"}, -10)
	_, _ = r.Register(ctx, Telegram{ID: 3, FirstName: "Cid"}, -20)
	for _, id := range []int64{1, 2, 3} {
		if err := r.SetSubscribed(ctx, id, true); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.SetSubscribed(ctx, 2, false); err != nil {
		t.Fatal(err)
	}
	// повторная регистрация не меняет подписку и не теряет имя
	u, _ = r.Register(ctx, Telegram{ID: 2}, -10)
	if u.Subscribed || u.FirstName != "Bob" {
		t.Fatalf("re-registered = %+v", u)
	}

	list, err := r.ListSubscribed(ctx, -10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].UserID != 1 {
		t.Fatalf("subscribed in -10 = %+v", list)
	}

	// пользователь перешёл в другой чат
	_, _ = r.Register(ctx, Telegram{ID: 1}, -20)
	list, _ = r.ListSubscribed(ctx, -20)
	if len(list) != 2 || list[0].UserID != 1 || list[1].UserID != 3 || list[0].Username != "ann" {
		t.Fatalf("subscribed in -20 = %+v", list)
	}

	if err := r.SetSubscribed(ctx, 999, true); err != nil {
		t.Fatalf("unknown user: %v", err)
	}
}

func TestGetByUserID(t *testing.T) {
	ctx := context.Background()
	r := newBolt(t)

	u, err := r.GetByUserID(ctx, 5)
	if err != nil || u != nil {
		t.Fatalf("missing user = %+v, %v", u, err)
	}

	_, _ = r.Register(ctx, Telegram{ID: 5, Username: "eve", LastName: "Lee"}, -30)
	if err := r.SetSubscribed(ctx, 5, true); err != nil {
		t.Fatal(err)
	}
	u, err = r.GetByUserID(ctx, 5)
	if err != nil || u == nil {
		t.Fatalf("get = %+v, %v", u, err)
	}
	if u.Username != "eve" || u.LastName != "Lee" || u.ChatID != -30 || !u.Subscribed {
		t.Errorf("user = %+v", u)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		tg   Telegram
		want string
	}{
		{Telegram{FirstName: "Ann", LastName: "Lee"}, "Ann Lee"},
		{Telegram{FirstName: "Ann"}, "Ann"},
		{Telegram{Username: "ann"}, "@ann"},
		{Telegram{}, ""},
	}
	for _, tt := range tests {
		if got := tt.tg.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.tg, got, tt.want)
		}
	}
}
