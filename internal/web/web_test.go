package web

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/metrics"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/session"
	"github.com/erazemk/lostfound/internal/store"
)

const (
	testSecret     = "test-secret"
	testCookieName = "lostfound_session"
	adminEmail     = "admin@example.com"
	adminPassword  = "hunter2"
)

type testEnv struct {
	server *httptest.Server
	db     *sqlx.DB
	client *http.Client
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)

	router, err := NewRouter(Options{
		DB:       database,
		Sessions: session.NewSQLStore(database),
		Metrics:  metrics.New(),
		Cookie: CookieConfig{
			Name:   testCookieName,
			Secret: testSecret,
			TTL:    time.Hour,
		},
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{server: server, db: database, client: client}
}

func (e *testEnv) createAdmin(t *testing.T) {
	t.Helper()
	hash, err := auth.HashPassword(adminPassword)
	require.NoError(t, err)
	_, err = store.CreateAdmin(context.Background(), e.db, adminEmail, hash)
	require.NoError(t, err)
}

func (e *testEnv) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.Get(e.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := e.client.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	resp, _ := e.post(t, "/admin/login", url.Values{"email": {adminEmail}, "password": {adminPassword}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
}

func (e *testEnv) report(t *testing.T, name, email, title, status string) *http.Response {
	t.Helper()
	resp, _ := e.post(t, "/submit", url.Values{
		"name":        {name},
		"email":       {email},
		"title":       {title},
		"description": {"left near the fountain"},
		"status":      {status},
	})
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func countRows(t *testing.T, database *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func itemStatus(t *testing.T, database *sqlx.DB, id int64) string {
	t.Helper()
	item, err := store.GetItem(context.Background(), database, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Status
}

func TestPublicPages(t *testing.T) {
	env := setupTestServer(t)

	for _, path := range []string{"/", "/report", "/thankyou", "/items", "/admin/login", "/static/style.css"} {
		resp, _ := env.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, body := env.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", body)

	resp, _ = env.get(t, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReadyzDatabaseDown(t *testing.T) {
	env := setupTestServer(t)
	require.NoError(t, env.db.Close())

	resp, _ := env.get(t, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSubmitReportNewUser(t *testing.T) {
	env := setupTestServer(t)

	resp := env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/thankyou", resp.Header.Get("Location"))

	assert.Equal(t, 1, countRows(t, env.db, "users"))
	assert.Equal(t, 1, countRows(t, env.db, "items"))

	user, err := store.GetUserByEmail(context.Background(), env.db, "ana@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana", user.Name)
	assert.Empty(t, user.Password)

	var userID int64
	require.NoError(t, env.db.Get(&userID, "SELECT user_id FROM items"))
	assert.Equal(t, user.ID, userID)
}

func TestSubmitReportReusesEmail(t *testing.T) {
	env := setupTestServer(t)

	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Someone Else", "ana@example.com", "Keys", model.StatusFound).StatusCode)

	assert.Equal(t, 1, countRows(t, env.db, "users"))
	assert.Equal(t, 2, countRows(t, env.db, "items"))

	var owners []int64
	require.NoError(t, env.db.Select(&owners, "SELECT DISTINCT user_id FROM items"))
	assert.Len(t, owners, 1)
}

func TestSubmitReportInvalidStatus(t *testing.T) {
	env := setupTestServer(t)

	resp, body := env.post(t, "/submit", url.Values{
		"name": {"Ana"}, "email": {"ana@example.com"}, "title": {"Wallet"}, "status": {"Stolen"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Invalid status")
	assert.Contains(t, body, `value="Wallet"`)

	assert.Equal(t, 0, countRows(t, env.db, "users"))
	assert.Equal(t, 0, countRows(t, env.db, "items"))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{20, 120, 200, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (e *testEnv) postMultipart(t *testing.T, fields map[string]string, photo []byte) (*http.Response, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "photo.png")
		require.NoError(t, err)
		_, err = fw.Write(photo)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := e.client.Post(e.server.URL+"/submit", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func TestSubmitReportWithPhoto(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)

	fields := map[string]string{
		"name": "Ana", "email": "ana@example.com", "title": "Umbrella", "description": "blue", "status": model.StatusFound,
	}
	resp, _ := env.postMultipart(t, fields, pngBytes(t))
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	var id int64
	require.NoError(t, env.db.Get(&id, "SELECT id FROM items"))

	// Photos are only reachable through the admin gate.
	resp, _ = env.get(t, "/admin/items/1/photo")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	env.login(t)

	_, body := env.get(t, "/admin/dashboard")
	assert.Contains(t, body, "/admin/items/1/photo")

	resp, body = env.get(t, "/admin/items/1/photo")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
	assert.Equal(t, "image/jpeg", http.DetectContentType([]byte(body)))
	assert.Equal(t, int64(1), id)

	resp, _ = env.get(t, "/admin/items/99/photo")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubmitReportMultipartWithoutPhoto(t *testing.T) {
	env := setupTestServer(t)

	fields := map[string]string{
		"name": "Ana", "email": "ana@example.com", "title": "Scarf", "status": model.StatusLost,
	}
	resp, _ := env.postMultipart(t, fields, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, countRows(t, env.db, "items"))
}

func TestSubmitReportRejectsNonImage(t *testing.T) {
	env := setupTestServer(t)

	fields := map[string]string{
		"name": "Ana", "email": "ana@example.com", "title": "Scarf", "status": model.StatusLost,
	}
	resp, body := env.postMultipart(t, fields, []byte("definitely not an image"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Photo must be a JPEG or PNG image")
	assert.Equal(t, 0, countRows(t, env.db, "items"))
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := setupTestServer(t)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)

	tests := []struct {
		method string
		path   string
		form   url.Values
	}{
		{http.MethodGet, "/admin/dashboard", nil},
		{http.MethodPost, "/admin/items/1/update", url.Values{"status": {model.StatusFound}}},
		{http.MethodPost, "/admin/items/1/delete", nil},
		{http.MethodGet, "/admin/items/1/photo", nil},
	}

	for _, tt := range tests {
		var resp *http.Response
		if tt.method == http.MethodGet {
			resp, _ = env.get(t, tt.path)
		} else {
			resp, _ = env.post(t, tt.path, tt.form)
		}
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode, tt.path)
		assert.Equal(t, "/admin/login", resp.Header.Get("Location"), tt.path)
	}

	// Nothing changed.
	assert.Equal(t, 1, countRows(t, env.db, "items"))
	assert.Equal(t, model.StatusLost, itemStatus(t, env.db, 1))
}

func TestForgedCookieRejected(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)

	admin, err := store.GetAdminByEmail(context.Background(), env.db, adminEmail)
	require.NoError(t, err)
	sess, err := session.NewSQLStore(env.db).Create(context.Background(), admin.ID, time.Hour)
	require.NoError(t, err)

	// A real session token signed with the wrong secret.
	forged, err := auth.SignSessionToken("other-secret", sess.Token, sess.ExpiresAt)
	require.NoError(t, err)

	u, err := url.Parse(env.server.URL)
	require.NoError(t, err)
	env.client.Jar.SetCookies(u, []*http.Cookie{{Name: testCookieName, Value: forged}})

	resp, _ := env.get(t, "/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestLoginFailures(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)
	_, err := store.CreateAdmin(context.Background(), env.db, "broken@example.com", "not-a-hash")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
		message  string
	}{
		{"unknown email", "nobody@example.com", adminPassword, http.StatusUnauthorized, "Admin not found"},
		{"wrong password", adminEmail, "wrong", http.StatusUnauthorized, "Incorrect password"},
		{"corrupt hash", "broken@example.com", "anything", http.StatusInternalServerError, "Error checking password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.post(t, "/admin/login", url.Values{"email": {tt.email}, "password": {tt.password}})
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, tt.message)
			assert.Empty(t, resp.Header.Get("Set-Cookie"))
		})
	}

	assert.Equal(t, 0, countRows(t, env.db, "sessions"))
}

func TestDashboardListsNewestFirst(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)

	for _, title := range []string{"Alpha", "Bravo", "Charlie"} {
		require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", title, model.StatusLost).StatusCode)
	}

	env.login(t)
	resp, body := env.get(t, "/admin/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	c, b, a := strings.Index(body, "Charlie"), strings.Index(body, "Bravo"), strings.Index(body, "Alpha")
	require.True(t, c >= 0 && b >= 0 && a >= 0)
	assert.Less(t, c, b)
	assert.Less(t, b, a)
	assert.Contains(t, body, `action="/admin/items/3/update"`)
	assert.Contains(t, body, "ana@example.com")
}

func TestPublicItemsListing(t *testing.T) {
	env := setupTestServer(t)

	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Bo", "bo@example.com", "Keys", model.StatusFound).StatusCode)

	resp, body := env.get(t, "/items")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, strings.Index(body, "Keys"), strings.Index(body, "Wallet"))
	assert.Contains(t, body, "bo@example.com")
	assert.NotContains(t, body, "/admin/items/")
}

func TestUpdateItemStatus(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)
	env.login(t)

	resp, _ := env.post(t, "/admin/items/1/update", url.Values{"status": {model.StatusFound}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, model.StatusFound, itemStatus(t, env.db, 1))

	for _, bad := range []string{"", "found", "Stolen", "Lost "} {
		resp, body := env.post(t, "/admin/items/1/update", url.Values{"status": {bad}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, bad)
		assert.Contains(t, body, "Invalid status")
		assert.Equal(t, model.StatusFound, itemStatus(t, env.db, 1))
	}

	resp, _ = env.post(t, "/admin/items/abc/update", url.Values{"status": {model.StatusLost}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// A missing id is a no-op.
	resp, _ = env.post(t, "/admin/items/42/update", url.Values{"status": {model.StatusLost}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 1, countRows(t, env.db, "items"))
}

func TestDeleteItem(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)
	env.login(t)

	resp, _ := env.post(t, "/admin/items/1/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", resp.Header.Get("Location"))
	assert.Equal(t, 0, countRows(t, env.db, "items"))
	// The reporter stays.
	assert.Equal(t, 1, countRows(t, env.db, "users"))

	resp, _ = env.post(t, "/admin/items/1/delete", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	env := setupTestServer(t)
	env.createAdmin(t)
	env.login(t)
	require.Equal(t, 1, countRows(t, env.db, "sessions"))

	resp, _ := env.get(t, "/admin/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))
	assert.Equal(t, 0, countRows(t, env.db, "sessions"))

	resp, _ = env.get(t, "/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	// Logging out without a session still redirects.
	resp, _ = env.get(t, "/admin/logout")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestServer(t)
	require.Equal(t, http.StatusSeeOther, env.report(t, "Ana", "ana@example.com", "Wallet", model.StatusLost).StatusCode)

	resp, body := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `lostfound_reports_submitted_total{status="Lost"} 1`)
	assert.Contains(t, body, `lostfound_http_requests_total{code="303",method="POST",route="POST /submit"} 1`)
}

func TestAdminAuthSetsAdminID(t *testing.T) {
	database := db.NewTestDB(t)
	admin, err := store.CreateAdmin(context.Background(), database, adminEmail, "hash")
	require.NoError(t, err)

	sessions := session.NewSQLStore(database)
	sess, err := sessions.Create(context.Background(), admin.ID, time.Hour)
	require.NoError(t, err)
	signed, err := auth.SignSessionToken(testSecret, sess.Token, sess.ExpiresAt)
	require.NoError(t, err)

	s := &Server{
		DB:       database,
		Sessions: sessions,
		Cookie:   CookieConfig{Name: testCookieName, Secret: testSecret, TTL: time.Hour},
	}

	var got int64
	h := s.AdminAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = AdminID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: signed})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, admin.ID, got)
	assert.Zero(t, AdminID(context.Background()))
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
