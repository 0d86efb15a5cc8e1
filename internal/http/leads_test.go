package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reject paths never touch the capture service, so a nil service is safe here.
func doLeadCapture(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/leads", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, captureLeadHandler(nil)(c))
	return rec
}

func TestCaptureLead_MissingFields(t *testing.T) {
	rec := doLeadCapture(t, `{"full_name": "Maria Silva"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "full_name and email are required")
}

func TestCaptureLead_InvalidEmail(t *testing.T) {
	rec := doLeadCapture(t, `{"full_name": "Maria Silva", "email": "nope"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email format")
}

func TestCaptureLead_InvalidPhone(t *testing.T) {
	rec := doLeadCapture(t, `{"full_name": "Maria Silva", "email": "maria@example.com", "phone": "12"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid phone number")
}

func TestCaptureLead_BlankFieldsAfterTrim(t *testing.T) {
	rec := doLeadCapture(t, `{"full_name": "   ", "email": "   "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
