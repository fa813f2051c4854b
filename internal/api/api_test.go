package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lukman83/autovit-sync/internal/api"
	"github.com/lukman83/autovit-sync/internal/apperr"
	"github.com/lukman83/autovit-sync/internal/auth"
	"github.com/lukman83/autovit-sync/internal/listing"
	"github.com/lukman83/autovit-sync/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const listingID = "3f0c1e1a-9a8b-4c2d-8e7f-1a2b3c4d5e6f"

type fakeGate struct {
	err   error
	calls int
}

func (g *fakeGate) Authorize(_ context.Context, header string) (auth.User, error) {
	g.calls++
	if g.err != nil {
		return auth.User{}, g.err
	}
	if header != "Bearer good" {
		return auth.User{}, apperr.New(apperr.KindAuth, "Autentificare invalidă")
	}
	return auth.User{ID: "admin-1"}, nil
}

type fakeImporter struct {
	reqs []listing.ImportRequest
	err  error
}

func (f *fakeImporter) Import(_ context.Context, req listing.ImportRequest) (listing.ImportResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return listing.ImportResult{}, f.err
	}
	return listing.ImportResult{ID: listingID, AutovitID: "7054112233", Status: models.StatusActive, Created: true}, nil
}

type fakeRemover struct {
	ids []string
	err error
}

func (f *fakeRemover) Delete(_ context.Context, id string) error {
	f.ids = append(f.ids, id)
	return f.err
}

type fakeCatalog struct {
	api.Catalog
	summaries []models.Summary
}

func (f *fakeCatalog) Public(context.Context) ([]models.Summary, error) { return f.summaries, nil }

func (f *fakeCatalog) Get(_ context.Context, id string) (*models.Payload, error) {
	if err := listing.ValidateID(id); err != nil {
		return nil, err
	}
	return nil, apperr.New(apperr.KindNotFound, "Anunțul nu a fost găsit")
}

type env struct {
	gate     *fakeGate
	importer *fakeImporter
	remover  *fakeRemover
	handler  http.Handler
}

func newEnv(t *testing.T, mutate ...func(*api.Options)) *env {
	t.Helper()
	e := &env{gate: &fakeGate{}, importer: &fakeImporter{}, remover: &fakeRemover{}}
	opts := api.Options{
		Importer:       e.importer,
		Remover:        e.remover,
		Catalog:        &fakeCatalog{summaries: []models.Summary{{ID: listingID, Title: "BMW Seria 3"}}},
		Gate:           e.gate,
		AllowedOrigins: []string{"https://admin.example.ro", "https://www.example.ro"},
		Logger:         zerolog.Nop(),
	}
	for _, m := range mutate {
		m(&opts)
	}
	e.handler = api.New(opts).Handler()
	return e
}

func (e *env) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestImport(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/import-autovit", `{"url":"https://www.autovit.ro/autoturisme/anunt/bmw-ID7H1a2b.html"}`, "good")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	require.Equal(t, "Anunț importat cu succes", body["message"])
	require.Equal(t, "7054112233", body["autovit_id"])
	require.Equal(t, "ACTIVE", body["status"])
	require.Len(t, e.importer.reqs, 1)
}

func TestImportFunctionsPrefix(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/functions/v1/import-autovit", `{"url":"https://www.autovit.ro/a.html","status":"DRAFT"}`, "good")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DRAFT", e.importer.reqs[0].Status)
}

func TestImportValidationBeforeAuth(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing url", `{}`, "URL-ul Autovit este obligatoriu"},
		{"foreign host", `{"url":"https://www.olx.ro/a.html"}`, "URL-ul trebuie să fie de pe domeniul autovit.ro"},
		{"bad status", `{"url":"https://www.autovit.ro/a.html","status":"SOLD"}`, "Status invalid. Valori acceptate: ACTIVE, DRAFT, ARCHIVED"},
		{"not json", `{"url":`, "Corpul cererii nu este un JSON valid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := e.do(http.MethodPost, "/import-autovit", tt.body, "")

			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tt.want, decode(t, rec)["error"])
			require.Zero(t, e.gate.calls)
			require.Empty(t, e.importer.reqs)
		})
	}
}

func TestImportFailures(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		importErr  error
		wantStatus int
		wantError  string
	}{
		{"invalid token", "bad", nil, http.StatusUnauthorized, "Autentificare invalidă"},
		{"upstream", "good", apperr.New(apperr.KindUpstreamFetch, "Autovit a răspuns cu status 404"), http.StatusInternalServerError, "Autovit a răspuns cu status 404"},
		{"anonymous error", "good", errors.New("boom"), http.StatusInternalServerError, "Importul a eșuat"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.importer.err = tt.importErr
			rec := e.do(http.MethodPost, "/import-autovit", `{"url":"https://www.autovit.ro/a.html"}`, tt.token)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantError, decode(t, rec)["error"])
		})
	}
}

func TestDelete(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodPost, "/delete-listing", `{"id":"`+listingID+`"}`, "good")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"success": true}, decode(t, rec))
	require.Equal(t, []string{listingID}, e.remover.ids)
}

func TestDeleteRejections(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		token      string
		gateErr    error
		wantStatus int
		wantError  string
		wantAuth   bool
	}{
		{"get", http.MethodGet, "", "good", nil, http.StatusMethodNotAllowed, "Method not allowed", false},
		{"missing id", http.MethodPost, `{}`, "good", nil, http.StatusBadRequest, "ID-ul anunțului este obligatoriu", false},
		{"malformed id", http.MethodPost, `{"id":"42"}`, "good", nil, http.StatusBadRequest, "ID-ul anunțului este invalid", false},
		{"no token", http.MethodPost, `{"id":"` + listingID + `"}`, "", apperr.New(apperr.KindAuth, "Autentificare necesară"), http.StatusUnauthorized, "Autentificare necesară", true},
		{"not admin", http.MethodPost, `{"id":"` + listingID + `"}`, "good", apperr.New(apperr.KindAuthorization, "Acces restricționat"), http.StatusForbidden, "Acces restricționat", true},
		{"role lookup", http.MethodPost, `{"id":"` + listingID + `"}`, "good", apperr.New(apperr.KindStorage, "Nu am putut verifica rolul utilizatorului"), http.StatusInternalServerError, "Nu am putut verifica rolul utilizatorului", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.gate.err = tt.gateErr
			rec := e.do(tt.method, "/delete-listing", tt.body, tt.token)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantError, decode(t, rec)["error"])
			require.Equal(t, tt.wantAuth, e.gate.calls > 0)
			require.Empty(t, e.remover.ids)
		})
	}
}

func TestDeleteStorageFailureHidesCause(t *testing.T) {
	e := newEnv(t)
	e.remover.err = errors.New("pq: connection refused")
	rec := e.do(http.MethodPost, "/functions/v1/delete-listing", `{"id":"`+listingID+`"}`, "good")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Ștergerea anunțului a eșuat", decode(t, rec)["error"])
}

func TestPreflight(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/delete-listing", nil)
	req.Header.Set("Origin", "https://www.example.ro")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
	require.Equal(t, "https://www.example.ro", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	require.Equal(t, "POST, GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Zero(t, e.gate.calls)
}

func TestCORSOrigin(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	require.Equal(t, "https://admin.example.ro", rec.Header().Get("Access-Control-Allow-Origin"))

	open := newEnv(t, func(o *api.Options) { o.AllowedOrigins = nil })
	rec = open.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPublicListings(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/listings", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	require.Zero(t, e.gate.calls)

	rec = e.do(http.MethodGet, "/listings/not-a-uuid", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(http.MethodGet, "/listings/"+listingID, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Anunțul nu a fost găsit", decode(t, rec)["error"])

	rec = e.do(http.MethodPost, "/listings", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAdminRoutesRequireGate(t *testing.T) {
	e := newEnv(t)

	rec := e.do(http.MethodGet, "/admin/listings?status=DRAFT", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodGet, "/admin/listings?limit=-1", "", "good")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, e.gate.calls)

	rec = e.do(http.MethodPost, "/admin/listings/status", `{"id":"`+listingID+`","status":"SOLD"}`, "good")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 1, e.gate.calls)

	// no editor wired
	rec = e.do(http.MethodPost, "/admin/listings/status", `{"id":"`+listingID+`","status":"DRAFT"}`, "good")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Serviciul nu este configurat", decode(t, rec)["error"])
}

func TestMissingServices(t *testing.T) {
	e := newEnv(t, func(o *api.Options) {
		o.Importer = nil
		o.Gate = nil
	})
	rec := e.do(http.MethodPost, "/import-autovit", `{"url":"https://www.autovit.ro/a.html"}`, "good")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Serviciul nu este configurat", decode(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"status": "ok"}, decode(t, rec))

	down := newEnv(t, func(o *api.Options) {
		o.Health = func(context.Context) error { return errors.New("db down") }
	})
	rec = down.do(http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBodyLimit(t *testing.T) {
	e := newEnv(t)
	big := `{"url":"` + strings.Repeat("a", api.MaxBodyBytes) + `"}`
	rec := e.do(http.MethodPost, "/import-autovit", big, "good")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Corpul cererii este prea mare", decode(t, rec)["error"])
}

type fakeEditor struct {
	id    string
	patch listing.Patch
}

func (f *fakeEditor) UpdateStatus(context.Context, string, string) error { return nil }

func (f *fakeEditor) UpdateFields(_ context.Context, id string, p listing.Patch) (*models.Listing, error) {
	f.id, f.patch = id, p
	return &models.Listing{ID: id, Title: *p.Title, PriceValue: *p.PriceValue}, nil
}

func TestAdminUpdate(t *testing.T) {
	ed := &fakeEditor{}
	e := newEnv(t, func(o *api.Options) { o.Editor = ed })

	rec := e.do(http.MethodPost, "/admin/listings/update", `{"id":"`+listingID+`","title":"BMW 320d","price_value":25500}`, "good")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, listingID, ed.id)
	require.Equal(t, "BMW 320d", *ed.patch.Title)
	require.Equal(t, 25500.0, *ed.patch.PriceValue)
	require.Nil(t, ed.patch.Status)
	body := decode(t, rec)
	require.Equal(t, "BMW 320d", body["title"])

	rec = e.do(http.MethodPost, "/admin/listings/status", `{"id":"`+listingID+`","status":"archived"}`, "good")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, map[string]any{"success": true}, decode(t, rec))
}
