package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pqsaaay/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newVoterEngine() *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(VoterIdentity())
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, Voter(c))
	})
	return r
}

func TestVoterIdentityIsStableAcrossRequests(t *testing.T) {
	r := newVoterEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	assert.True(t, strings.HasPrefix(first, "anon:"))
	assert.Len(t, first, len("anon:")+64)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.NotEqual(t, first, w.Body.String(), "a new visitor gets a new identity")
}

func TestVoterIDs(t *testing.T) {
	assert.Equal(t, AnonymousVoterID("token"), AnonymousVoterID("token"))
	assert.NotEqual(t, AnonymousVoterID("token"), AnonymousVoterID("other"))
	assert.NotContains(t, AnonymousVoterID("token"), "token")
	assert.Equal(t, "name:Rina", NamedVoterID("Rina"))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logging.ConfigureWriter(&buf, "INFO")
	t.Cleanup(func() { logging.Configure("INFO") })

	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "path=/missing")
	assert.Contains(t, out, "status=404")
}

func TestRequestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(RequestTimeout(time.Minute))
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}
