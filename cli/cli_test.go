package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aguxez/dine/api"
	"github.com/aguxez/dine/config"
	"github.com/aguxez/dine/logger"
	"github.com/aguxez/dine/session"
)

type backend struct {
	mu       sync.Mutex
	reviews  []string
	macros   []string
	verified []api.Verification
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.URL.Path == "/api/users/login":
		w.Write([]byte("42"))
	case r.URL.Path == "/api/users/register":
		w.Write([]byte("Verification code sent. Token: tok-1"))
	case r.URL.Path == "/api/users/verify-email":
		var v api.Verification
		json.NewDecoder(r.Body).Decode(&v)
		b.verified = append(b.verified, v)
		w.Write([]byte(api.VerifiedMessage))
	case r.URL.Path == "/api/menu-items":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"name":"Pancakes"},{"id":2,"name":"Omelette","protein":20}]`))
	case r.URL.Path == "/api/recommendations":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"item":{"id":2,"name":"Omelette","protein":20},"totalProtein":20,"totalCalories":300}]`))
	case strings.HasSuffix(r.URL.Path, "/user-rating"):
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`null`))
	case strings.HasPrefix(r.URL.Path, "/api/reviews/"):
		b.reviews = append(b.reviews, r.URL.Query().Get("menuItemId")+":"+r.URL.Query().Get("stars"))
	case r.URL.Path == "/api/user-preferences/get-preferences":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"BreakfastProtein":25,"isVegan":true}`))
	case r.URL.Path == "/api/user-preferences/update-macro":
		b.macros = append(b.macros, r.URL.Query().Get("mealType")+r.URL.Query().Get("macroName")+"="+r.URL.Query().Get("macroValue"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type harness struct {
	t   *testing.T
	be  *backend
	dir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := &backend{}
	srv := httptest.NewServer(be)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("DINE_BASE_URL", srv.URL)
	t.Setenv("DINE_SESSION_DIR", dir)
	t.Setenv("DINE_TIME_ZONE", "America/New_York")
	t.Setenv("DINE_LOG_LEVEL", "error")
	t.Setenv("OPENROUTER_API_KEY", "")

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	prev := now
	now = func() time.Time { return time.Date(2024, 4, 1, 8, 0, 0, 0, loc) }
	t.Cleanup(func() { now = prev })

	return &harness{t: t, be: be, dir: dir}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", filepath.Join(h.dir, "missing.yaml")}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) login() {
	h.t.Helper()
	if _, err := h.run("", "login", "--email", "a@b.c", "--password", "pw"); err != nil {
		h.t.Fatalf("login: %v", err)
	}
}

func TestLoginStoresSession(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("pw\n", "login", "--email", "a@b.c")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Logged in as a@b.c") {
		t.Errorf("output = %q", out)
	}

	s, err := session.NewFileStore(h.dir).Load()
	if err != nil {
		t.Fatal(err)
	}
	if s.ID != "42" || s.Email != "a@b.c" {
		t.Errorf("session = %+v", s)
	}
}

func TestCommandsNeedSession(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "menu")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v", err)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	h := newHarness(t)
	h.login()

	if _, err := h.run("", "logout"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(h.dir, session.FileName)); !os.IsNotExist(err) {
		t.Errorf("session file still present: %v", err)
	}
}

func TestRegisterVerifiesWithPromptedCode(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("123456\n", "register",
		"--first-name", "Ada", "--last-name", "Lovelace", "--email", "ada@b.c", "--password", "pw")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, api.VerifiedMessage) {
		t.Errorf("output = %q", out)
	}
	if len(h.be.verified) != 1 {
		t.Fatalf("verify calls = %d", len(h.be.verified))
	}
	v := h.be.verified[0]
	if v.Token != "tok-1" || v.Code != "123456" || v.Email != "ada@b.c" || v.FirstName != "Ada" {
		t.Errorf("verification = %+v", v)
	}
}

func TestMenuPrintsRecommendedFirst(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("", "menu")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Breakfast on Mon Apr 1") {
		t.Errorf("missing heading in %q", out)
	}
	rec, reg := strings.Index(out, "Omelette"), strings.Index(out, "Pancakes")
	if rec < 0 || reg < 0 || rec > reg {
		t.Errorf("recommended item should come first: %q", out)
	}
	if strings.Count(out, "Omelette") != 1 {
		t.Errorf("recommended item listed twice: %q", out)
	}
}

func TestMenuValidatesQuery(t *testing.T) {
	h := newHarness(t)
	h.login()

	for _, args := range [][]string{
		{"menu", "--date", "2024-05-01"},
		{"menu", "--date", "04/02/2024"},
		{"menu", "--meal", "Brunch"},
		{"menu", "--date", "2024-04-06", "--meal", "Dinner"},
	} {
		if _, err := h.run("", args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}

	out, err := h.run("", "menu", "--date", "2024-04-06")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Brunch on Sat Apr 6") {
		t.Errorf("weekend should fall back to brunch: %q", out)
	}
}

func TestRateSendsReview(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("", "rate", "3", "5")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Rated item 3 5/5") {
		t.Errorf("output = %q", out)
	}
	if len(h.be.reviews) != 1 || h.be.reviews[0] != "3:5" {
		t.Errorf("reviews = %v", h.be.reviews)
	}

	if _, err := h.run("", "rate", "3", "6"); err == nil {
		t.Error("expected out of range rating to fail")
	}
	if len(h.be.reviews) != 1 {
		t.Errorf("invalid rating reached the backend: %v", h.be.reviews)
	}
}

func TestProfileImportSavesOnlyChanges(t *testing.T) {
	h := newHarness(t)
	h.login()

	path := filepath.Join(h.dir, "targets.csv")
	csv := "Meal Type,Protein,Carbohydrates,Fat,Calories\n" +
		"Breakfast,40,0,0,0\n" +
		"Dinner,0,0,0,700\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := h.run("", "profile", "import", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Saved 2 macro targets") {
		t.Errorf("output = %q", out)
	}
	want := []string{"BreakfastProtein=40", "DinnerCalories=700"}
	if strings.Join(h.be.macros, ",") != strings.Join(want, ",") {
		t.Errorf("macros = %v, want %v", h.be.macros, want)
	}
}

func TestProfileShow(t *testing.T) {
	h := newHarness(t)
	h.login()

	out, err := h.run("", "profile", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "[x] IsVegan") || !strings.Contains(out, "[ ] IsGlutenFree") {
		t.Errorf("restrictions missing in %q", out)
	}
	if !strings.Contains(out, "25") {
		t.Errorf("breakfast protein missing in %q", out)
	}
}

func TestScreenLogsGoToFile(t *testing.T) {
	h := newHarness(t)
	t.Setenv("DINE_LOG_FILE", "")
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	cfg, err := config.Load(filepath.Join(h.dir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	a, err := newApp(cfg)
	if err != nil {
		t.Fatal(err)
	}

	path, err := a.logToScreenFile()
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(h.dir, config.LogFileName) {
		t.Errorf("log path = %q", path)
	}

	logger.Error("while the screen is taken")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "while the screen is taken") || !strings.Contains(string(data), a.runID) {
		t.Errorf("log file = %q", data)
	}
}
