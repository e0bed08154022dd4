package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRespondErrorWithExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "path taken", map[string]interface{}{"resource_id": "f1"})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["resource_id"] != "f1" || body["detail"] != "path taken" || body["title"] != "Conflict" {
		t.Errorf("body = %v", body)
	}
	if !strings.Contains(body["type"].(string), "rfc7231") {
		t.Errorf("type = %v", body["type"])
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"a"}`, ""},
		{"empty", ``, "request body is required"},
		{"malformed", `{"name":`, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dest struct {
				Name string `json:"name"`
			}
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := ParseJSON(httptest.NewRecorder(), req, &dest)
			if tt.wantErr == "" {
				if err != nil || dest.Name != "a" {
					t.Errorf("ParseJSON() = %v, %+v", err, dest)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseJSON() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
