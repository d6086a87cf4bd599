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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"settlo-leads/api/pkg/clients/email"
	"settlo-leads/api/pkg/config"
	"settlo-leads/api/services/health"
	"settlo-leads/api/services/leads"
	"settlo-leads/api/services/notify"
	"settlo-leads/api/services/storage"
)

type testServer struct {
	handler http.Handler
	leads   *leads.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := storage.NewMemory()
	reg := prometheus.NewRegistry()

	notifier, err := notify.NewNotifier(
		email.NewStubClient("leads@settlo.test"),
		notify.NewFormatter("Settlo", time.UTC),
		notify.Config{Provider: "stub", Recipient: "sales@settlo.test"},
		notify.NewMetrics(reg),
	)
	require.NoError(t, err)

	leadSvc, err := leads.NewService(store, notifier, leads.Options{Metrics: leads.NewMetrics(reg)})
	require.NoError(t, err)
	healthSvc, err := health.NewService(store, "Settlo", false)
	require.NoError(t, err)

	router := newRouter(healthSvc, leadSvc, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = leadSvc.Wait(ctx)
	})
	return &testServer{handler: newHandler(router, []string{"*"}), leads: leadSvc}
}

func (s *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Settlo Backend is running!"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealth_MemoryStore(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","message":"Settlo Backend is running!","database":"connected"}`, rec.Body.String())
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodGet, "/api/leads/123"},
		{http.MethodDelete, "/api/leads"},
		{http.MethodPut, "/api/health"},
		{http.MethodPost, "/"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := srv.do(tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
		})
	}
}

func TestOptions(t *testing.T) {
	srv := newTestServer(t)

	t.Run("bare options on any path", func(t *testing.T) {
		for _, path := range []string{"/", "/api/leads", "/anything/at/all"} {
			rec := srv.do(http.MethodOptions, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code, path)
			assert.Empty(t, rec.Body.String(), path)
		}
	})

	t.Run("browser preflight", func(t *testing.T) {
		rec := srv.do(http.MethodOptions, "/api/leads", "", map[string]string{
			"Origin":                         "https://settlo.example",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "Content-Type",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("preflight for other methods", func(t *testing.T) {
		for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
			rec := srv.do(http.MethodOptions, "/api/leads", "", map[string]string{
				"Origin":                        "https://settlo.example",
				"Access-Control-Request-Method": method,
			})
			assert.Equal(t, http.StatusOK, rec.Code, method)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"), method)
			assert.Equal(t, method, rec.Header().Get("Access-Control-Allow-Methods"), method)
		}
	})

	t.Run("preflight with unlisted headers", func(t *testing.T) {
		rec := srv.do(http.MethodOptions, "/api/leads", "", map[string]string{
			"Origin":                         "https://settlo.example",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "content-type,x-client-version",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

		rec = srv.do(http.MethodOptions, "/api/leads", "", map[string]string{
			"Origin":                         "https://settlo.example",
			"Access-Control-Request-Method":  "POST",
			"Access-Control-Request-Headers": "X-Client-Version",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Headers"))
	})
}

func TestCORSOnSimpleRequest(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/api/leads", "", map[string]string{"Origin": "https://settlo.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLeadRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(http.MethodPost, "/api/leads",
		`{"name":"Jane Doe","email":"jane@x.com","phone":"555-0100","source":"hero","demo":"Custom POS"}`,
		map[string]string{"Content-Type": "application/json"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Success bool `json:"success"`
		Lead    struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"lead"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Success)

	rec = srv.do(http.MethodPost, "/api/leads", `{"name":"A","source":"contact"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(http.MethodGet, "/api/leads", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int              `json:"count"`
		Leads []map[string]any `json:"leads"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.Lead.ID, list.Leads[0]["id"])
	assert.Equal(t, "Custom POS", list.Leads[0]["demo"])
	assert.Nil(t, list.Leads[0]["company"])

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.leads.Wait(ctx))

	rec = srv.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `leads_submissions_total{source="hero"} 1`)
	assert.Contains(t, body, `leads_rejected_total{reason="missing_fields"} 1`)
	assert.Contains(t, body, `leads_notifications_total{provider="stub",status="sent"} 1`)
}

func TestPanicIsRecovered(t *testing.T) {
	h := newHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), []string{"*"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestNewMailClient(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr bool
	}{
		{name: "stub", cfg: config.Config{MailProvider: config.MailStub}},
		{name: "smtp", cfg: config.Config{MailProvider: config.MailSMTP, SMTPHost: "smtp.gmail.com", SMTPPort: 587, EmailUser: "u", EmailPass: "p"}},
		{name: "sendgrid", cfg: config.Config{MailProvider: config.MailSendGrid, SendGridAPIKey: "SG.key"}},
		{name: "ses with static keys", cfg: config.Config{MailProvider: config.MailSES, AWSRegion: "us-east-1", AWSAccessKeyID: "AKID", AWSSecretAccessKey: "secret"}},
		{name: "unknown", cfg: config.Config{MailProvider: "pigeon"}, wantErr: true},
		{name: "sendgrid without key", cfg: config.Config{MailProvider: config.MailSendGrid}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := newMailClient(ctx, &tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestOpenStore_Memory(t *testing.T) {
	store, closeStore, err := openStore(context.Background(), &config.Config{StoreDriver: config.StoreMemory})
	require.NoError(t, err)
	defer closeStore()
	_, ok := store.(*storage.MemoryStorage)
	assert.True(t, ok)
}

func TestOpenStore_Unknown(t *testing.T) {
	_, _, err := openStore(context.Background(), &config.Config{StoreDriver: "sqlite"})
	assert.Error(t, err)
}
