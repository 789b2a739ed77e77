package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"partpulse/internal/infra/persistence/postgres/testutil"
	"partpulse/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)
	store, err := NewStore(context.Background(), "", domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn
}

func TestNewStoreEnsuresStateTable(t *testing.T) {
	_, conn := openStub(t)
	var sawDDL bool
	for _, stmt := range conn.Execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE IF NOT EXISTS STATE") {
			sawDDL = true
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.Execs)
	}
}

func TestRunInTransactionPersistsAndReloads(t *testing.T) {
	store, conn := openStub(t)
	var id string
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		r, e := tx.CreateRequest(domain.Request{
			Status: domain.RequestStatusDraft,
			Items:  []domain.RequestItem{{Name: "filter", Quantity: decimal.NewFromInt(3)}},
		})
		id = r.ID
		return e
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if conn.Commits != 1 {
		t.Fatalf("expected one database commit, got %d", conn.Commits)
	}
	if len(conn.Tables["state"]) == 0 {
		t.Fatalf("expected state rows to be written")
	}

	snapshot, err := loadSnapshot(context.Background(), store.DB())
	if err != nil {
		t.Fatalf("loadSnapshot: %v", err)
	}
	if _, ok := snapshot.Requests[id]; !ok {
		t.Fatalf("expected persisted request %s in snapshot", id)
	}
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	store, conn := openStub(t)
	conn.FailCommit = true
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateRequest(domain.Request{Status: domain.RequestStatusDraft})
		return e
	})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
	if len(store.ExportState().Requests) != 0 {
		t.Fatalf("expected memory state to stay untouched")
	}
}

func TestNewStoreOpenAndPingErrors(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("dial") })
	if _, err := NewStore(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected open error")
	}
	restore()

	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore = OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "x", nil); err == nil {
		t.Fatalf("expected ping error")
	}
}

func TestLoadSnapshotDecodeError(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.Tables["state"] = []map[string]any{{"bucket": "requests", "payload": []byte(`{"broken"`)}}
	if _, err := loadSnapshot(context.Background(), db); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestPostgresStoreAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("PARTPULSE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skipf("PARTPULSE_TEST_POSTGRES_DSN not set")
	}
	store, err := NewStore(context.Background(), dsn, domain.NewRulesEngine())
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateSparePart(domain.SparePart{PartNumber: "LIVE-1", Name: "live check"})
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	reloaded, err := NewStore(context.Background(), dsn, domain.NewRulesEngine())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if len(reloaded.ExportState().SpareParts) == 0 {
		t.Fatalf("expected spare parts after reload")
	}
}
