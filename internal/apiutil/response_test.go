package apiutil_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boardbuilder/internal/apiutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		apiutil.CodeInvalidParams:   http.StatusBadRequest,
		apiutil.CodeInvalidJSON:     http.StatusBadRequest,
		apiutil.CodeValidationError: http.StatusBadRequest,
		apiutil.CodeUnauthorized:    http.StatusUnauthorized,
		apiutil.CodeForbidden:       http.StatusForbidden,
		apiutil.CodeNotFound:        http.StatusNotFound,
		apiutil.CodeUserNotFound:    http.StatusNotFound,
		apiutil.CodeNoChanges:       http.StatusConflict,
		apiutil.CodeConflict:        http.StatusConflict,
		apiutil.CodeDBError:         http.StatusInternalServerError,
		apiutil.CodeInternalError:   http.StatusInternalServerError,
		"SOMETHING_ELSE":            http.StatusInternalServerError,
	}

	for code, want := range cases {
		assert.Equal(t, want, apiutil.StatusFor(code), "code %s", code)
	}
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	apiutil.Success(c, http.StatusOK, gin.H{"boards": []string{}}, apiutil.Metadata{"fetchedAt": "now"})

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.NotNil(t, body["data"])
	assert.NotNil(t, body["metadata"])
	assert.Nil(t, body["error"])
}

func TestDBErrorHidesDetailsUnlessDebug(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	apiutil.SetDebug(false)
	apiutil.DBError(c, "storage failed", assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	apiutil.SetDebug(true)
	defer apiutil.SetDebug(false)
	apiutil.DBError(c, "storage failed", assert.AnError)

	assert.Contains(t, w.Body.String(), assert.AnError.Error())
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	apiutil.Error(c, apiutil.CodeValidationError, "invalid payload", []string{"title"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Error   apiutil.ErrorInfo `json:"error"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, apiutil.CodeValidationError, body.Error.Code)
	assert.Equal(t, "invalid payload", body.Error.Message)
	assert.NotNil(t, body.Error.Details)
}
