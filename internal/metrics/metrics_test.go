package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
)

func TestEndpointLabel(t *testing.T) {
	known := map[string]struct{}{
		"/api/leaderboard":  {},
		"/api/search/dumps": {},
		"/health/ready":     {},
		"/api/things/:id":   {},
	}
	tests := []struct {
		path string
		want string
	}{
		{"/api/leaderboard", "/api/leaderboard"},
		{"/api/search/dumps", "/api/search/dumps"},
		{"/health/ready", "/health/ready"},
		{"/api/things/:id", "/api/things/:id"},
		{"/api/things/42", "other"},
		{"/wp-admin/setup.php", "other"},
		{"/", "other"},
		{"", "other"},
	}
	for _, tt := range tests {
		if got := endpointLabel(tt.path, known); got != tt.want {
			t.Errorf("endpointLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMiddleware_LabelsByRouteTemplate(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/api/things/:id", func(c fiber.Ctx) error {
		return c.SendString(c.Params("id"))
	})

	for _, target := range []string{"/api/things/42", "/api/things/43", "/api/unknown/1", "/wp-admin/setup.php"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("request %s: %v", target, err)
		}
		resp.Body.Close()
	}

	if RequestDuration.DeleteLabelValues("/api/things/42", fiber.MethodGet, "200") {
		t.Error("raw path used as endpoint label")
	}
	if !RequestDuration.DeleteLabelValues("/api/things/:id", fiber.MethodGet, "200") {
		t.Error("expected a series for the route template")
	}
	if RequestDuration.DeleteLabelValues("/api/unknown/1", fiber.MethodGet, "404") {
		t.Error("unmatched path used as endpoint label")
	}
	if !RequestDuration.DeleteLabelValues("other", fiber.MethodGet, "404") {
		t.Error("expected unmatched requests under \"other\" with status 404")
	}
}
