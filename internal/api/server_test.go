package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"CryptoPilot/internal/model"
	"CryptoPilot/internal/recorder"
)

type fakeBot struct {
	mu       sync.Mutex
	running  bool
	startErr error
	insight  *model.Insight
	price    *model.PricePoint
	trades   []model.Trade
	cycles   []recorder.CycleEvent
	limit    int
}

func (b *fakeBot) Start(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return b.startErr
	}
	b.running = true
	return nil
}

func (b *fakeBot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running = false
}

func (b *fakeBot) Mode() model.Mode { return model.ModeDemo }

func (b *fakeBot) Status() model.BotStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	msg := model.StatusOffline
	if b.running {
		msg = model.StatusEnabled
	}
	return model.BotStatus{IsRunning: b.running, StatusMessage: msg}
}

func (b *fakeBot) Portfolio() model.Portfolio        { return model.DefaultPortfolio(model.ModeDemo) }
func (b *fakeBot) TradeHistory() []model.Trade       { return b.trades }
func (b *fakeBot) LatestInsight() *model.Insight     { return b.insight }
func (b *fakeBot) LatestPrice() *model.PricePoint    { return b.price }
func (b *fakeBot) PriceWindow() []model.PricePoint   { return nil }

func (b *fakeBot) Cycles(limit int) ([]recorder.CycleEvent, error) {
	b.limit = limit
	return b.cycles, nil
}

func (b *fakeBot) Dashboard() model.Dashboard {
	return model.Dashboard{
		Mode:      b.Mode(),
		Status:    b.Status(),
		Portfolio: b.Portfolio(),
		Insight:   b.insight,
		Price:     b.price,
		Trades:    []model.Trade{},
	}
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, token string) (int, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func TestHealth(t *testing.T) {
	h := NewServer(&fakeBot{}, "", nil).Router()
	code, env := do(t, h, http.MethodGet, "/health", "")
	if code != http.StatusOK || !env.Success {
		t.Errorf("health = %d %+v", code, env)
	}
}

func TestReadRoutes(t *testing.T) {
	pp := model.NewPricePoint(time.Now(), 50000)
	bot := &fakeBot{price: &pp}
	h := NewServer(bot, "", nil).Router()

	code, env := do(t, h, http.MethodGet, "/api/portfolio", "")
	if code != http.StatusOK {
		t.Fatalf("portfolio status %d", code)
	}
	var p struct {
		Mode  model.Mode      `json:"mode"`
		Value decimal.Decimal `json:"value"`
	}
	_ = json.Unmarshal(env.Data, &p)
	if p.Mode != model.ModeDemo || !p.Value.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("portfolio = %+v", p)
	}

	_, env = do(t, h, http.MethodGet, "/api/trades", "")
	if string(env.Data) != "[]" {
		t.Errorf("empty trades should encode as [], got %s", env.Data)
	}

	code, env = do(t, h, http.MethodGet, "/api/insight", "")
	if code != http.StatusNotFound || env.Success {
		t.Errorf("insight before analysis = %d %+v", code, env)
	}

	bot.insight = &model.Insight{Signal: model.SignalBuy, Confidence: 70, Reasoning: "dip"}
	code, env = do(t, h, http.MethodGet, "/api/insight", "")
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"BUY"`) {
		t.Errorf("insight = %d %s", code, env.Data)
	}
}

func TestCyclesLimit(t *testing.T) {
	bot := &fakeBot{}
	h := NewServer(bot, "", nil).Router()

	if code, _ := do(t, h, http.MethodGet, "/api/cycles?limit=abc", ""); code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", code)
	}
	code, env := do(t, h, http.MethodGet, "/api/cycles?limit=5", "")
	if code != http.StatusOK || bot.limit != 5 || string(env.Data) != "[]" {
		t.Errorf("cycles = %d limit=%d data=%s", code, bot.limit, env.Data)
	}
}

func TestControlRoutes_RequireToken(t *testing.T) {
	bot := &fakeBot{}
	h := NewServer(bot, "s3cret", nil).Router()

	if code, _ := do(t, h, http.MethodPost, "/api/bot/start", ""); code != http.StatusUnauthorized {
		t.Errorf("start without token = %d", code)
	}
	if code, _ := do(t, h, http.MethodPost, "/api/bot/start", "garbage"); code != http.StatusUnauthorized {
		t.Errorf("start with bad token = %d", code)
	}

	other, _ := NewJWTManager("other").GenerateToken("ops", time.Hour)
	if code, _ := do(t, h, http.MethodPost, "/api/bot/start", other); code != http.StatusUnauthorized {
		t.Errorf("start with foreign token = %d", code)
	}

	token, err := NewJWTManager("s3cret").GenerateToken("ops", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	code, env := do(t, h, http.MethodPost, "/api/bot/start", token)
	if code != http.StatusOK || !bot.Status().IsRunning {
		t.Errorf("start with token = %d %+v", code, env)
	}
	code, _ = do(t, h, http.MethodPost, "/api/bot/stop", token)
	if code != http.StatusOK || bot.Status().IsRunning {
		t.Errorf("stop with token = %d", code)
	}

	// reads stay public
	if code, _ := do(t, h, http.MethodGet, "/api/bot/status", ""); code != http.StatusOK {
		t.Errorf("status = %d", code)
	}
}

func TestStartFailure(t *testing.T) {
	bot := &fakeBot{startErr: errors.New("ledger unavailable")}
	h := NewServer(bot, "", nil).Router()
	code, env := do(t, h, http.MethodPost, "/api/bot/start", "")
	if code != http.StatusServiceUnavailable || env.Success || !strings.Contains(env.Error, "ledger") {
		t.Errorf("start failure = %d %+v", code, env)
	}
}

func TestExpiredToken(t *testing.T) {
	jm := NewJWTManager("k")
	token, _ := jm.GenerateToken("ops", -time.Minute)
	if _, err := jm.ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}
	token, _ = jm.GenerateToken("ops", time.Minute)
	claims, err := jm.ValidateToken(token)
	if err != nil || claims.Operator != "ops" {
		t.Errorf("claims = %+v, err = %v", claims, err)
	}
}

func TestClient(t *testing.T) {
	pp := model.NewPricePoint(time.Now(), 42000.5)
	bot := &fakeBot{price: &pp, insight: &model.Insight{Signal: model.SignalHold, Confidence: 40, Reasoning: "wait"}}
	srv := httptest.NewServer(NewServer(bot, "k", nil).Router())
	defer srv.Close()

	ctx := context.Background()
	d, err := NewClient(srv.URL, "").Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Mode != model.ModeDemo || d.Price == nil || !d.Price.Price.Equal(decimal.RequireFromString("42000.5")) {
		t.Errorf("dashboard = %+v", d)
	}
	if d.Insight == nil || d.Insight.Signal != model.SignalHold {
		t.Errorf("insight = %+v", d.Insight)
	}

	if _, err := NewClient(srv.URL, "").Start(ctx); err == nil {
		t.Error("start without token should fail")
	}
	token, _ := NewJWTManager("k").GenerateToken("cli", time.Minute)
	st, err := NewClient(srv.URL, token).Start(ctx)
	if err != nil || !st.IsRunning {
		t.Errorf("start = %+v, %v", st, err)
	}
}
