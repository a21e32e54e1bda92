package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func performRequest(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	handler(c)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		Success(c, gin.H{"job_id": "abc"})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeSuccess, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.NotNil(t, resp.Data)
}

func TestParamError_Status400(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		ParamError(c, "")
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeParamError, resp.Code)
	assert.NotEmpty(t, resp.Message)
}

func TestNotFoundError_Status404(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		NotFoundError(c, "查询任务不存在")
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeResourceNotFound, resp.Code)
	assert.Equal(t, "查询任务不存在", resp.Message)
}

func TestServerError_Status500(t *testing.T) {
	w := performRequest(func(c *gin.Context) {
		ServerError(c, "")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	assert.Equal(t, CodeServerError, resp.Code)
}
