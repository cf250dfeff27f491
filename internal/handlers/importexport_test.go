package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestValidateImportValidDataset(t *testing.T) {
	h := NewImportExport(nil)

	body := `{"data":{
		"categories":[{"name":"Writing"}],
		"prompts":[{"title":"Greeting","body":"Hello {{name}}"}]
	}}`
	w := httptest.NewRecorder()
	h.Validate(w, routeRequest("POST", "/api/validate-import", body, ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	env := decodeEnvelope(t, w)
	data, _ := env["data"].(map[string]any)
	if data == nil || data["valid"] != true {
		t.Fatalf("expected valid result, got %v", env)
	}
	summary, _ := data["summary"].(map[string]any)
	if summary["categories"] != float64(1) || summary["prompts"] != float64(1) || summary["variables"] != float64(1) {
		t.Errorf("summary: got %v", summary)
	}
}

func TestValidateImportInvalidDataset(t *testing.T) {
	h := NewImportExport(nil)

	body := `{"data":{"prompts":[{"title":"","body":""}]}}`
	w := httptest.NewRecorder()
	h.Validate(w, routeRequest("POST", "/api/validate-import", body, ""))

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}

	env := decodeEnvelope(t, w)
	data, _ := env["data"].(map[string]any)
	if data == nil || data["valid"] != false {
		t.Fatalf("expected invalid result, got %v", env)
	}
	errs, _ := data["errors"].([]any)
	if len(errs) != 2 {
		t.Errorf("errors: got %v", errs)
	}
}

func TestValidateImportRequiresData(t *testing.T) {
	h := NewImportExport(nil)

	w := httptest.NewRecorder()
	h.Validate(w, routeRequest("POST", "/api/validate-import", `{}`, ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}

func TestImportRequiresData(t *testing.T) {
	h := NewImportExport(nil)

	w := httptest.NewRecorder()
	h.Import(w, routeRequest("POST", "/api/import", `{"dryRun":true}`, ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", w.Code)
	}
}
