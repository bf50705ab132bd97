package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestFail_WritesEnvelopeAndEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Writer.Header().Set("X-Request-ID", "req-123")

	fail(c, http.StatusBadRequest, ErrCodeDuplicateIngredient, "ingredient repeated in payload")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !c.IsAborted() {
		t.Fatalf("context must be aborted")
	}
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.RequestID != "req-123" || e.Code != ErrCodeDuplicateIngredient || e.Message != "ingredient repeated in payload" {
		t.Fatalf("envelope = %+v", e)
	}
}

func TestFail_NoRequestIDOmitted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	Fail(c, http.StatusNotFound, ErrCodeNotFound, "recipe not found")

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, present := raw["request_id"]; present {
		t.Fatalf("empty request_id must be omitted: %v", raw)
	}
}

func TestOkAndNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	ok(c, http.StatusOK, gin.H{"hello": "world"})
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("ok: status = %d, body %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	noContent(c)
	// Status() is recorded immediately; the recorder only sees it once the
	// buffered header is flushed, which an engine run would do for us.
	if c.Writer.Status() != http.StatusNoContent {
		t.Fatalf("noContent: status = %d", c.Writer.Status())
	}
	c.Writer.WriteHeaderNow()
	if w.Code != http.StatusNoContent {
		t.Fatalf("noContent: recorded status = %d", w.Code)
	}
}
