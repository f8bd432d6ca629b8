package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/diftofficial/systemAplikaciaGYM/internal/models"
	"github.com/diftofficial/systemAplikaciaGYM/internal/services"
)

type stubAccountService struct {
	registerResult *models.Account
	registerErr    error
	getResult      *models.Account
	getErr         error
	lastUID        string
	lastInput      services.RegisterInput
}

func (s *stubAccountService) Register(_ context.Context, uid string, input services.RegisterInput) (*models.Account, error) {
	s.lastUID = uid
	s.lastInput = input
	return s.registerResult, s.registerErr
}

func (s *stubAccountService) GetAccount(_ context.Context, uid string) (*models.Account, error) {
	s.lastUID = uid
	return s.getResult, s.getErr
}

type stubPointsService struct {
	balance   int64
	err       error
	lastEmail string
	lastDelta int64
}

func (s *stubPointsService) GrantPoints(_ context.Context, email string, delta int64) (int64, error) {
	s.lastEmail = email
	s.lastDelta = delta
	return s.balance, s.err
}

func withIdentity(app *fiber.App, userID, role string) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("role", role)
		return c.Next()
	})
}

func TestRegisterAccount(t *testing.T) {
	service := &stubAccountService{registerResult: &models.Account{ID: "uid-1", Email: "ana@gym.test", Role: models.RoleUser}}
	handler := &AccountHandler{service: service}

	app := fiber.New()
	withIdentity(app, "uid-1", "user")
	app.Post("/api/v1/accounts", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(`{"name":"Ana","email":"ana@gym.test","phone":"123"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastUID != "uid-1" || service.lastInput.Email != "ana@gym.test" || service.lastInput.Phone != "123" {
		t.Fatalf("unexpected call %q %+v", service.lastUID, service.lastInput)
	}
}

func TestRegisterAccountConflict(t *testing.T) {
	handler := &AccountHandler{service: &stubAccountService{registerErr: services.ErrAccountExists}}

	app := fiber.New()
	withIdentity(app, "uid-1", "user")
	app.Post("/api/v1/accounts", handler.Register)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", strings.NewReader(`{"name":"Ana","email":"ana@gym.test"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestMeReturnsAccount(t *testing.T) {
	service := &stubAccountService{getResult: &models.Account{ID: "uid-1", Points: 40}}
	handler := &AccountHandler{service: service}

	app := fiber.New()
	withIdentity(app, "uid-1", "user")
	app.Get("/api/v1/accounts/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["points"] != float64(40) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestMeMissingAccount(t *testing.T) {
	handler := &AccountHandler{service: &stubAccountService{getErr: services.ErrAccountNotFound}}

	app := fiber.New()
	withIdentity(app, "uid-1", "user")
	app.Get("/api/v1/accounts/me", handler.Me)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGrantPoints(t *testing.T) {
	points := &stubPointsService{balance: 55}
	handler := &AdminHandler{points: points}

	app := fiber.New()
	withIdentity(app, "admin-1", "admin")
	app.Post("/api/v1/admin/points", handler.GrantPoints)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/points", strings.NewReader(`{"email":"ana@gym.test","points":50}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if points.lastEmail != "ana@gym.test" || points.lastDelta != 50 {
		t.Fatalf("unexpected call %q %d", points.lastEmail, points.lastDelta)
	}
	if body := decodeBody(t, resp); body["points"] != float64(55) {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestGrantPointsUnknownAccount(t *testing.T) {
	handler := &AdminHandler{points: &stubPointsService{err: services.ErrAccountNotFound}}

	app := fiber.New()
	withIdentity(app, "admin-1", "admin")
	app.Post("/api/v1/admin/points", handler.GrantPoints)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/points", strings.NewReader(`{"email":"nobody@gym.test","points":5}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["code"] != string(services.KindAccountNotFound) {
		t.Fatalf("unexpected body %v", body)
	}
}
