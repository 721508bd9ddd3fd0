// Package tests provides an in-memory SmartDeals backend for client tests.
package tests

import (
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/httpx/reply"
	"smartdeals/pkg/httpx/req"
	"smartdeals/pkg/rest"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	DefaultUsername = "admin"
	DefaultPassword = "admin123"
)

// DefaultConfig is a subset of the backend's default_config().
const DefaultConfig = `{
"mode":"MANUAL",
"approval_threshold":80,
"categories_allowed":["gamer","moda","casa"],
"blocked_words":["réplica","usado"],
"daily_post_limit":15,
"seed_keywords":["RTX 5060","Tênis New Balance"],
"mercadolivre":{"client_id":"","client_secret":""},
"amazon":{"partner_tag":"","region":"BR","manual_links":[]},
"telegram":{"bot_token":"","chat_id":""},
"whatsapp":{"provider":"draft","phone_number_id":"","to_numbers":[]}
}`

type failureRule struct {
	status int
	body   string
	// applied runs the real handler before answering with the failure.
	applied bool
}

type holdRule struct {
	release chan struct{}
	once    bool
}

// Backend mimics the HTTP contract, including the top-level merge of PUT /config.
type Backend struct {
	server *httptest.Server

	mu       sync.Mutex
	username string
	password string
	token    string
	config   map[string]jsoniter.RawMessage
	deals    []rest.Deal
	runs     []rest.Run
	calls    []string
	failures map[string]failureRule
	holds    map[string]*holdRule
}

func NewBackend(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		username: DefaultUsername,
		password: DefaultPassword,
		token:    "token-1",
		failures: map[string]failureRule{},
		holds:    map[string]*holdRule{},
	}

	if err := json.Unmarshal([]byte(DefaultConfig), &b.config); err != nil {
		t.Fatalf("json.Unmarshal(DefaultConfig): %v", err)
	}

	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)

	return b
}

func (b *Backend) URL() string {
	return b.server.URL
}

func (b *Backend) Token() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.token
}

// RevokeToken makes the backend answer 401 to the current token.
func (b *Backend) RevokeToken() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.token = "revoked-" + strconv.FormatInt(time.Now().UnixNano(), 10)
}

func (b *Backend) SetToken(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.token = token
}

func (b *Backend) AddDeal(deal rest.Deal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if deal.CreatedAt == "" {
		deal.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	b.deals = append(b.deals, deal)
}

func (b *Backend) Deal(id int64) (rest.Deal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, d := range b.deals {
		if d.ID == id {
			return d, true
		}
	}

	return rest.Deal{}, false
}

func (b *Backend) AddRun(run rest.Run) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if run.StartedAt == "" {
		run.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	if run.Stats == nil {
		run.Stats = jsoniter.RawMessage(`{}`)
	}

	b.runs = append(b.runs, run)
}

func (b *Backend) RunCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.runs)
}

// ConfigMember returns the raw JSON of a top-level config member.
func (b *Backend) ConfigMember(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return string(b.config[name])
}

// Fail makes every following "METHOD /path" call answer status with body.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[method+" "+path] = failureRule{status: status, body: body}
}

// FailAfterApplying lets "METHOD /path" calls take effect but answer status
// with body, like a backend that timed out after committing.
func (b *Backend) FailAfterApplying(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[method+" "+path] = failureRule{status: status, body: body, applied: true}
}

func (b *Backend) Recover(method, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.failures, method+" "+path)
}

// Hold blocks "METHOD /path" calls until the returned function is called.
func (b *Backend) Hold(method, path string) func() {
	return b.hold(method+" "+path, false)
}

// HoldNext answers the next "METHOD /path" call from the state at its arrival
// but delays the response until the returned function is called. Later calls
// pass.
func (b *Backend) HoldNext(method, path string) func() {
	return b.hold(method+" "+path, true)
}

func (b *Backend) hold(call string, once bool) func() {
	rule := &holdRule{release: make(chan struct{}), once: once}

	b.mu.Lock()
	b.holds[call] = rule
	b.mu.Unlock()

	var done sync.Once

	return func() {
		done.Do(func() {
			b.mu.Lock()
			if b.holds[call] == rule {
				delete(b.holds, call)
			}
			b.mu.Unlock()
			close(rule.release)
		})
	}
}

// Calls lists "METHOD /path" of every request received, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.calls)
}

func (b *Backend) CallCount(call string) int {
	count := 0

	for _, c := range b.Calls() {
		if c == call {
			count++
		}
	}

	return count
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()

	r.Use(b.record)
	r.Post("/auth/login", handler(b.login))

	r.Group(func(r chi.Router) {
		r.Use(b.authorize)

		r.Get("/config", b.getConfig)
		r.Put("/config", handler(b.putConfig))
		r.Get("/deals", b.listDeals)
		r.Post("/deals/{id}/approve", handler(b.transition("approved")))
		r.Post("/deals/{id}/reject", handler(b.transition("rejected")))
		r.Post("/scan/run", b.runScan)
		r.Get("/runs", b.listRuns)
	})

	return r
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := r.Method + " " + r.URL.Path

		b.mu.Lock()
		b.calls = append(b.calls, call)
		rule, failing := b.failures[call]
		hold := b.holds[call]
		if hold != nil && hold.once {
			delete(b.holds, call)
		}
		b.mu.Unlock()

		if hold != nil && hold.once && !failing {
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, r)

			<-hold.release

			maps.Copy(w.Header(), rec.Header())
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())

			return
		}

		if hold != nil {
			<-hold.release
		}

		if failing && rule.applied {
			next.ServeHTTP(httptest.NewRecorder(), r)
		}

		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rule.status)
			_, _ = io.WriteString(w, rule.body)

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		if token == "" || token != b.Token() {
			w.Header().Set("WWW-Authenticate", "Bearer")
			reply.Detail(r.Context(), w, http.StatusUnauthorized, "Token inválido")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) error {
	form, err := req.Form(r, "username", "password")
	if err != nil {
		return fmt.Errorf("req.Form: %w", err)
	}

	b.mu.Lock()
	ok := form.Get("username") == b.username && form.Get("password") == b.password
	token := b.token
	b.mu.Unlock()

	if !ok {
		reply.Detail(r.Context(), w, http.StatusUnauthorized, "Credenciais inválidas")
		return nil
	}

	reply.JSON(r.Context(), w, http.StatusOK, rest.LoginResponse{AccessToken: token, TokenType: "bearer"})

	return nil
}

func (b *Backend) getConfig(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	cfg := maps.Clone(b.config)
	b.mu.Unlock()

	reply.JSON(r.Context(), w, http.StatusOK, cfg)
}

func (b *Backend) putConfig(w http.ResponseWriter, r *http.Request) error {
	var request rest.Config

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	raw, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	var payload map[string]jsoniter.RawMessage

	if err = json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	b.mu.Lock()
	maps.Copy(b.config, payload)
	cfg := maps.Clone(b.config)
	b.mu.Unlock()

	reply.JSON(r.Context(), w, http.StatusOK, cfg)

	return nil
}

func (b *Backend) listDeals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	b.mu.Lock()
	deals := make([]rest.Deal, 0, len(b.deals))

	for _, d := range b.deals {
		if status := q.Get("status"); status != "" && d.Status != status {
			continue
		}

		if source := q.Get("source"); source != "" && d.Source != source {
			continue
		}

		if text := q.Get("q"); text != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(text)) {
			continue
		}

		if minScore, err := strconv.Atoi(q.Get("min_score")); err == nil && (d.Score == nil || *d.Score < minScore) {
			continue
		}

		deals = append(deals, d)
	}
	b.mu.Unlock()

	reply.JSON(r.Context(), w, http.StatusOK, deals)
}

func (b *Backend) transition(status string) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			return failure.NewInvalidArgumentError(
				fmt.Errorf("strconv.ParseInt: %w", err).Error(),
				failure.WithCode(errcodes.InvalidDealID),
			)
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		for i := range b.deals {
			if b.deals[i].ID == id {
				b.deals[i].Status = status
				reply.JSON(r.Context(), w, http.StatusOK, map[string]string{"status": status})

				return nil
			}
		}

		reply.Detail(r.Context(), w, http.StatusNotFound, "Deal não encontrado")

		return nil
	}
}

func (b *Backend) runScan(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	message := "ok"
	run := rest.Run{
		ID:         int64(len(b.runs) + 1),
		StartedAt:  now,
		FinishedAt: &now,
		Status:     "finished",
		Message:    &message,
		Stats:      jsoniter.RawMessage(`{"new":0,"scored":0}`),
	}
	b.runs = append(b.runs, run)
	b.mu.Unlock()

	reply.JSON(r.Context(), w, http.StatusOK, map[string]int{"new": 0, "scored": 0})
}

func (b *Backend) listRuns(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	runs := slices.Clone(b.runs)
	b.mu.Unlock()

	slices.Reverse(runs)

	reply.JSON(r.Context(), w, http.StatusOK, runs)
}
