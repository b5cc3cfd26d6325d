package repo

import (
	"context"
	"testing"

	"github.com/angelmondragon/callpay-backend/internal/repo/repotest"
)

type ctxKey struct{}

func TestBaseDB_BindsContext(t *testing.T) {
	db := repotest.Open(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), ctxKey{}, "value")
	withCtx := base.DB(ctx)

	if withCtx == nil {
		t.Fatalf("expected non-nil DB when context provided")
	}
	if withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through, got %v", withCtx.Statement.Context)
	}

	withoutCtx := base.DB(nil)
	if withoutCtx != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseBind(t *testing.T) {
	db := repotest.Open(t)
	base := NewBase(db)

	if got := base.Bind(nil).DB(nil); got != db {
		t.Fatalf("expected nil tx to keep the connection")
	}

	tx := db.Begin()
	defer tx.Rollback()
	if got := base.Bind(tx).DB(nil); got != tx {
		t.Fatalf("expected bound base to use the transaction")
	}
}
