package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clinic-manager-server/internal/service"
	"clinic-manager-server/internal/utils"
)

func recordResponse(t *testing.T, respond func(c *gin.Context)) (int, utils.ResponseData) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respond(c)

	var body utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondUserSaveErrorDuplicateEmail(t *testing.T) {
	code, body := recordResponse(t, func(c *gin.Context) {
		respondUserSaveError(c, gorm.ErrDuplicatedKey)
	})

	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, body.Success)
	assert.Equal(t, "User with this email already exists", body.Message)
}

func TestRespondUserSaveErrorOther(t *testing.T) {
	code, body := recordResponse(t, func(c *gin.Context) {
		respondUserSaveError(c, errors.New("connection reset"))
	})

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.False(t, body.Success)
}

func TestRespondServiceErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.Invalid("bad input"), http.StatusBadRequest},
		{service.NotFound("no such row"), http.StatusNotFound},
		{service.Forbidden("not yours"), http.StatusForbidden},
		{service.Conflict("slot taken"), http.StatusConflict},
		{service.Unexpected(errors.New("boom"), "boom"), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		code, body := recordResponse(t, func(c *gin.Context) {
			respondServiceError(c, tc.err)
		})
		assert.Equal(t, tc.want, code)
		assert.False(t, body.Success)
	}
}
