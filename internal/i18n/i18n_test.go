package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNegotiate(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		accept    string
		want      language.Tag
	}{
		{name: "default", want: language.English},
		{name: "accept language spanish", accept: "es-MX,es;q=0.9,en;q=0.5", want: language.Spanish},
		{name: "accept language unsupported falls back", accept: "ja-JP", want: language.English},
		{name: "query param wins", preferred: "es", accept: "en-US", want: language.Spanish},
		{name: "garbage query param ignored", preferred: "??", accept: "es", want: language.Spanish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Negotiate(tt.preferred, tt.accept))
		})
	}
}

func TestSegment(t *testing.T) {
	require.Equal(t, "en", Segment(language.English))
	require.Equal(t, "es", Segment(language.Spanish))
}

func TestMiddlewareAndTranslate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, T(c, MsgPasswordTooShort, 8))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es-ES")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "La contraseña debe tener al menos 8 caracteres", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "Password must be at least 8 characters", w.Body.String())
}
