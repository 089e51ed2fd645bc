package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err  error
		want int
	}{
		{ErrPermissionDenied, http.StatusForbidden},
		{ErrLoginLocked, http.StatusTooManyRequests},
		{ErrInvalidWeight, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", ErrQuestionNotFound), http.StatusNotFound},
		{ErrDuplicateUser, http.StatusConflict},
		{fmt.Errorf("%w: timeout", ErrStorageUnavailable), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		RespondError(c, tc.err)
		assert.Equal(t, tc.want, w.Code, tc.err.Error())
	}
}

func TestDomainErrorClass(t *testing.T) {
	assert.ErrorIs(t, ErrSelfTrust, ErrValidation)
	assert.ErrorIs(t, ErrInvalidCredentials, ErrNotFound)
	assert.NotErrorIs(t, ErrDuplicateTrust, ErrNotFound)
	assert.Equal(t, "unknown sort", Invalid("unknown sort").Error())
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "carol", []string{"student", "reviewer"}, "secret", time.Minute)
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.HasRole("reviewer"))
	assert.False(t, claims.HasRole("admin"))

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)

	expired, err := GenerateJWT(42, "carol", nil, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(expired, "secret")
	assert.Error(t, err)
}

func TestSuccessEscapesMarkup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"title": "Q&A: is x<y valid? <script>"})

	body := w.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, `\u003cscript\u003e`)

	var resp struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Q&A: is x<y valid? <script>", resp.Data["title"])
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	_, ok := ParamID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c.Params = gin.Params{{Key: "id", Value: "12"}}
	id, ok := ParamID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)
}
