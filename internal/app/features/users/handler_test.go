package users_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	usersfeature "github.com/studycircle/studycircle/internal/app/features/users"
	"github.com/studycircle/studycircle/internal/app/membership"
	"github.com/studycircle/studycircle/internal/app/system/auditlog"
	"github.com/studycircle/studycircle/internal/app/system/auth"
	"github.com/studycircle/studycircle/internal/domain/models"
	"github.com/studycircle/studycircle/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type env struct {
	router http.Handler
	engine *membership.Engine
	groups *testutil.MemGroupStore
	users  *testutil.MemUserStore
}

func setup(t *testing.T) *env {
	t.Helper()
	logger := zap.NewNop()
	groups := testutil.NewMemGroupStore()
	users := testutil.NewMemUserStore()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	h := usersfeature.NewHandler(users, groups, auditlog.New(logger), logger)
	return &env{
		router: usersfeature.Routes(h, sm),
		engine: membership.New(groups, users, logger),
		groups: groups,
		users:  users,
	}
}

func (e *env) do(t *testing.T, u *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if u != nil {
		req = auth.WithTestUser(req, &auth.SessionUser{
			ID:    u.ID.Hex(),
			Email: u.Email,
			Name:  u.Name,
			Role:  u.Role,
		})
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestServeMe(t *testing.T) {
	e := setup(t)
	alice := testutil.NewUser(t, e.users, "Alice")
	g := testutil.NewGroup(t, e.groups, e.users, alice, "Algebra")

	rec := e.do(t, &alice, http.MethodGet, "/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User   models.User    `json:"user"`
		Groups []models.Group `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.ID != alice.ID {
		t.Errorf("user id = %s", body.User.ID.Hex())
	}
	if len(body.Groups) != 1 || body.Groups[0].ID != g.ID {
		t.Errorf("groups not resolved: %+v", body.Groups)
	}
}

func TestServeMe_SkipsDanglingGroupRefs(t *testing.T) {
	e := setup(t)
	alice := testutil.NewUser(t, e.users, "Alice")
	g := testutil.NewGroup(t, e.groups, e.users, alice, "Algebra")
	ctx := context.Background()

	// Leave a stale reference behind.
	if err := e.groups.Delete(ctx, g.ID, g.Version); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	rec := e.do(t, &alice, http.MethodGet, "/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Groups []models.Group `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Groups) != 0 {
		t.Errorf("dangling reference surfaced: %+v", body.Groups)
	}
}

func TestServeMe_RequiresAuth(t *testing.T) {
	e := setup(t)
	rec := e.do(t, nil, http.MethodGet, "/me", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	e := setup(t)
	alice := testutil.NewUser(t, e.users, "Alice")
	ctx := context.Background()

	rec := e.do(t, &alice, http.MethodPut, "/profile", map[string]string{
		"email":    "NEW@Example.com",
		"name":     "Alice B",
		"password": "fresh password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	u, err := e.users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Email != "new@example.com" {
		t.Errorf("email = %q", u.Email)
	}
	if u.Name != "Alice B" {
		t.Errorf("name = %q", u.Name)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("fresh password")) != nil {
		t.Error("new password does not verify")
	}
}

func TestUpdateProfile_Validation(t *testing.T) {
	e := setup(t)
	alice := testutil.NewUser(t, e.users, "Alice")

	if rec := e.do(t, &alice, http.MethodPut, "/profile", map[string]string{}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty update: %d, want 400", rec.Code)
	}
	if rec := e.do(t, &alice, http.MethodPut, "/profile", map[string]string{"email": "nope"}); rec.Code != http.StatusBadRequest {
		t.Errorf("bad email: %d, want 400", rec.Code)
	}
	if rec := e.do(t, &alice, http.MethodPut, "/profile", map[string]string{"password": "short"}); rec.Code != http.StatusBadRequest {
		t.Errorf("short password: %d, want 400", rec.Code)
	}
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	e := setup(t)
	alice := testutil.NewUser(t, e.users, "Alice")
	bob := testutil.NewUser(t, e.users, "Bob")

	rec := e.do(t, &alice, http.MethodPut, "/profile", map[string]string{"email": bob.Email})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestUpdateRole(t *testing.T) {
	e := setup(t)
	admin := testutil.NewUser(t, e.users, "Root")
	admin.Role = models.RoleAdmin
	e.users.Put(admin)
	alice := testutil.NewUser(t, e.users, "Alice")
	ctx := context.Background()

	// Plain users cannot change roles.
	rec := e.do(t, &alice, http.MethodPut, "/"+admin.ID.Hex()+"/role", map[string]string{"role": "user"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: %d, want 403", rec.Code)
	}

	rec = e.do(t, &admin, http.MethodPut, "/"+alice.ID.Hex()+"/role", map[string]string{"role": "moderator"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad role: %d, want 400", rec.Code)
	}

	rec = e.do(t, &admin, http.MethodPut, "/"+alice.ID.Hex()+"/role", map[string]string{"role": "admin"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	u, err := e.users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role = %q", u.Role)
	}
}
