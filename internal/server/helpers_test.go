package server

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	app := fiber.New()
	app.Get("/pages", func(c *fiber.Ctx) error {
		return c.SendString(strconv.Itoa(parsePage(c)))
	})

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"missing defaults to one", "", "1"},
		{"explicit page", "?page=3", "3"},
		{"zero clamps to one", "?page=0", "1"},
		{"negative clamps to one", "?page=-2", "1"},
		{"garbage defaults to one", "?page=abc", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/pages"+tt.query, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			buf := make([]byte, 8)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}
