package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"autobridge/internal/config"
	"autobridge/internal/http/handlers"
	"autobridge/internal/repos"
	"autobridge/internal/session"
)

const testSecret = "test-secret"

type fakeBlob struct {
	puts       []string
	deleted    []string
	failDelete bool
}

func (f *fakeBlob) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	f.puts = append(f.puts, key)
	return "https://blob.test/" + key, nil
}

func (f *fakeBlob) Delete(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	if f.failDelete {
		return errors.New("blob backend unavailable")
	}
	return nil
}

func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB, *fakeBlob) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	blobs := &fakeBlob{}
	sessions := session.New(testSecret)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, config.Config{}, sessions, blobs)
	handlers.Register(app, deps)
	return app, db, blobs
}

func jsonReq(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// register creates a user through the API and returns its session cookie.
func register(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()
	resp, err := app.Test(jsonReq("POST", "/auth/register", map[string]any{
		"email": email, "password": password,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, resp.StatusCode)
	}
	cookie := extractCookie(resp, session.CookieName)
	if cookie == "" {
		t.Fatal("register did not set session cookie")
	}
	return cookie
}

// adminCookie seeds a bootstrap admin and logs it in.
func adminCookie(t *testing.T, app *fiber.App, db *sqlx.DB) string {
	t.Helper()
	if err := repos.SeedAdmin(db, "admin@autobridge.test", "Passw0rd!"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	resp, err := app.Test(jsonReq("POST", "/auth/login", map[string]any{
		"email": "admin@autobridge.test", "password": "Passw0rd!",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: expected 200, got %d", resp.StatusCode)
	}
	cookie := extractCookie(resp, session.CookieName)
	if cookie == "" {
		t.Fatal("admin login did not set session cookie")
	}
	return cookie
}

func withSession(req *http.Request, cookie string) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	return req
}

// multipartBody builds a multipart form with optional fields and one
// file part carrying an explicit Content-Type.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName, fileType string, fileContent []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileField != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+fileName+`"`)
		h.Set("Content-Type", fileType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := pw.Write(fileContent); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func bodyString(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(b))
}
