package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"CryptoPilot/internal/model"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	file, err := NewFileStore(filepath.Join(t.TempDir(), "ledger"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	sqlite, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": sqlite,
	}
}

func sampleTrades() []model.Trade {
	at := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	return []model.Trade{
		{
			ID: "t2", Side: model.SideSell,
			Price: decimal.RequireFromString("40000"), AssetAmount: decimal.RequireFromString("0.0125"),
			Notional: decimal.NewFromInt(500), ExecutedAt: at.Add(time.Minute), Time: "12:31:00",
		},
		{
			ID: "t1", Side: model.SideBuy,
			Price: decimal.RequireFromString("50000"), AssetAmount: decimal.RequireFromString("0.01"),
			Notional: decimal.NewFromInt(500), ExecutedAt: at, Time: "12:30:00",
		},
	}
}

func TestStores_PortfolioRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.ReadPortfolio(ctx, model.ModeDemo); err != nil || ok {
				t.Fatalf("expected absent portfolio, got ok=%v err=%v", ok, err)
			}
			want := model.Portfolio{Cash: decimal.RequireFromString("99500"), Asset: decimal.RequireFromString("1.01")}
			if err := s.WritePortfolio(ctx, model.ModeDemo, want); err != nil {
				t.Fatalf("WritePortfolio: %v", err)
			}
			got, ok, err := s.ReadPortfolio(ctx, model.ModeDemo)
			if err != nil || !ok {
				t.Fatalf("ReadPortfolio: ok=%v err=%v", ok, err)
			}
			if !got.Equal(want) {
				t.Errorf("expected %+v, got %+v", want, got)
			}
			if _, ok, _ := s.ReadPortfolio(ctx, model.ModeLive); ok {
				t.Error("modes must be isolated")
			}
		})
	}
}

func TestStores_HistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := s.ReadHistory(ctx, model.ModeLive)
			if err != nil {
				t.Fatalf("ReadHistory: %v", err)
			}
			if len(empty) != 0 {
				t.Fatalf("expected empty history, got %d", len(empty))
			}

			want := sampleTrades()
			if err := s.WriteHistory(ctx, model.ModeLive, want); err != nil {
				t.Fatalf("WriteHistory: %v", err)
			}
			// Overwrite must replace, not append.
			if err := s.WriteHistory(ctx, model.ModeLive, want); err != nil {
				t.Fatalf("WriteHistory: %v", err)
			}
			got, err := s.ReadHistory(ctx, model.ModeLive)
			if err != nil {
				t.Fatalf("ReadHistory: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("expected %d trades, got %d", len(want), len(got))
			}
			for i := range want {
				w, g := want[i], got[i]
				if w.ID != g.ID || w.Side != g.Side || w.Time != g.Time ||
					!w.Price.Equal(g.Price) || !w.AssetAmount.Equal(g.AssetAmount) ||
					!w.Notional.Equal(g.Notional) || !w.ExecutedAt.Equal(g.ExecutedAt) {
					t.Errorf("trade %d: expected %+v, got %+v", i, w, g)
				}
				if !reflect.DeepEqual(w.ExecutedAt, g.ExecutedAt) {
					t.Errorf("trade %d: executed_at should round-trip as UTC, got %v", i, g.ExecutedAt)
				}
			}
		})
	}
}

func TestLoadPortfolio_Defaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	demo, err := LoadPortfolio(ctx, s, model.ModeDemo)
	if err != nil {
		t.Fatalf("LoadPortfolio: %v", err)
	}
	if !demo.Equal(model.Portfolio{Cash: decimal.NewFromInt(100000), Asset: decimal.NewFromInt(1)}) {
		t.Errorf("unexpected demo default: %+v", demo)
	}
	live, _ := LoadPortfolio(ctx, s, model.ModeLive)
	if !live.Equal(model.Portfolio{Cash: decimal.NewFromInt(10000), Asset: decimal.RequireFromString("0.5")}) {
		t.Errorf("unexpected live default: %+v", live)
	}
	if _, ok, _ := s.ReadPortfolio(ctx, model.ModeDemo); !ok {
		t.Error("default portfolio should be persisted")
	}
}

type failingStore struct{ MemoryStore }

func (failingStore) ReadPortfolio(context.Context, model.Mode) (model.Portfolio, bool, error) {
	return model.Portfolio{}, false, errors.New("disk on fire")
}

func TestLoadPortfolio_ReadError(t *testing.T) {
	if _, err := LoadPortfolio(context.Background(), &failingStore{}, model.ModeDemo); err == nil {
		t.Fatal("expected read error to propagate")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mongo", "")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?,?)`
	if got := rebind("sqlite", q); got != q {
		t.Errorf("sqlite query must be unchanged, got %s", got)
	}
	if got := rebind("postgres", q); got != `INSERT INTO t (a, b) VALUES ($1,$2)` {
		t.Errorf("unexpected postgres query: %s", got)
	}
}
