package envelope

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRespond_Success(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	defer func() { now = time.Now }()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := Respond(c, http.StatusCreated, "created", map[string]string{"id": "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true {
		t.Error("expected success=true")
	}
	if body["message"] != "created" {
		t.Errorf("unexpected message %v", body["message"])
	}
	if body["timestamp"] != "2024-03-01T12:00:00Z" {
		t.Errorf("unexpected timestamp %v", body["timestamp"])
	}
	if _, ok := body["meta"]; !ok {
		t.Error("expected meta key to be present")
	}
}

func TestNew_FailureStatus(t *testing.T) {
	env := New(http.StatusNotFound, "Patient not found", nil, nil)
	if env.Success {
		t.Error("expected success=false for 404")
	}
	if env.Data != nil {
		t.Error("expected nil data")
	}
}
