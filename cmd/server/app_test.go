package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gosettle/internal/infrastructure/config"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StoreDriver:         config.StoreMemory,
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
		IdempotencyTTL:      time.Hour,
		FraudThreshold:      1,
		FraudScoringTimeout: time.Second,
		FallbackCurrency:    "USD",
		HandlerTimeout:      time.Second,
		OutboxPollInterval:  time.Hour,
		OutboxBatchSize:     10,
	}
}

func newTestApp(t *testing.T) *app {
	t.Helper()

	a, err := newApp(context.Background(), memoryConfig(), zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func createAccount(t *testing.T, h http.Handler, name, balance string) string {
	t.Helper()

	rec, out := do(t, h, http.MethodPost, "/api/v1/accounts/",
		`{"name":"`+name+`","currency":"USD","initial_balance":"`+balance+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return out["id"].(string)
}

func TestApp_PaymentSettlesOnMemoryStore(t *testing.T) {
	a := newTestApp(t)

	alice := createAccount(t, a.handler, "Alice", "1000")
	bob := createAccount(t, a.handler, "Bob", "0")

	rec, out := do(t, a.handler, http.MethodPost, "/api/v1/payments/",
		`{"sender_account_id":"`+alice+`","receiver_account_id":"`+bob+`","amount":"250.50","currency":"usd"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", out["status"])
	assert.Contains(t, out["settlement_xml"], "<IntrBkSttlmAmt Ccy=\"USD\">250.50</IntrBkSttlmAmt>")

	_, sender := do(t, a.handler, http.MethodGet, "/api/v1/accounts/"+alice, "")
	_, receiver := do(t, a.handler, http.MethodGet, "/api/v1/accounts/"+bob, "")
	assert.Equal(t, "749.50", sender["balance"])
	assert.Equal(t, "250.50", receiver["balance"])

	txnID := out["transaction_id"].(string)
	rec, _ = do(t, a.handler, http.MethodGet, "/api/v1/payments/"+txnID+"/entries", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, report := do(t, a.handler, http.MethodGet, "/api/v1/ledger/consistency", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, report["consistent"])
}

func TestApp_InsufficientFundsIsRejected(t *testing.T) {
	a := newTestApp(t)

	alice := createAccount(t, a.handler, "Alice", "10")
	bob := createAccount(t, a.handler, "Bob", "0")

	rec, out := do(t, a.handler, http.MethodPost, "/api/v1/payments/",
		`{"sender_account_id":"`+alice+`","receiver_account_id":"`+bob+`","amount":"50","currency":"USD"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	assert.Equal(t, "failed", out["status"])

	_, sender := do(t, a.handler, http.MethodGet, "/api/v1/accounts/"+alice, "")
	assert.Equal(t, "10.00", sender["balance"])
}

func TestApp_ConvertsLegacyMessage(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/legacy",
		strings.NewReader(":20:TRX1\n:32A:250101USD500,\n:50K:/111\nALICE\n:59:/222\nBOB\n:71A:OUR\n"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "TRX1")
}

func TestApp_ExposesMetrics(t *testing.T) {
	a := newTestApp(t)

	do(t, a.handler, http.MethodGet, "/health", "")
	rec, _ := do(t, a.handler, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestApp_PublisherStopsOnCancel(t *testing.T) {
	a := newTestApp(t)

	alice := createAccount(t, a.handler, "Alice", "100")
	bob := createAccount(t, a.handler, "Bob", "0")
	rec, _ := do(t, a.handler, http.MethodPost, "/api/v1/payments/",
		`{"sender_account_id":"`+alice+`","receiver_account_id":"`+bob+`","amount":"1","currency":"USD"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.publisher.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("publisher did not stop")
	}
}
