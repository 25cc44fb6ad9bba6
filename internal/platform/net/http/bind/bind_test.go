package bind

import (
	"net/http/httptest"
	"strings"
	"testing"

	perr "outreach/internal/platform/errors"
)

type record struct {
	RecordID string `json:"record_id" validate:"required,notblank"`
	Name     string `json:"name" validate:"max=10"`
}

type batch struct {
	Records []record `json:"records" validate:"required,min=1,max=2,dive"`
}


func TestParseJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  perr.ErrorCode
		field string
		ok    bool
	}{
		{name: "valid", body: `{"record_id":"r1","name":"acme"}`, ok: true},
		{name: "empty", body: ``, code: perr.ErrorCodeJSON},
		{name: "malformed", body: `{"record_id":`, code: perr.ErrorCodeJSON},
		{name: "unknown field", body: `{"record_id":"r1","x":1}`, code: perr.ErrorCodeJSON},
		{name: "trailing", body: `{"record_id":"r1"} {}`, code: perr.ErrorCodeJSON},
		{name: "missing required", body: `{"name":"acme"}`, code: perr.ErrorCodeValidation, field: "record_id"},
		{name: "blank", body: `{"record_id":"   "}`, code: perr.ErrorCodeValidation, field: "record_id"},
		{name: "too long", body: `{"record_id":"r","name":"abcdefghijkl"}`, code: perr.ErrorCodeValidation, field: "name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))
			got, err := ParseJSON[record](r)
			if tc.ok {
				if err != nil || got.RecordID != "r1" {
					t.Fatalf("ParseJSON = %+v, %v", got, err)
				}
				return
			}
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("err = %v, want code %v", err, tc.code)
			}
			if tc.field != "" {
				if e, _ := perr.As(err); e.Field() != tc.field {
					t.Fatalf("field = %q, want %q", e.Field(), tc.field)
				}
			}
		})
	}
}

func TestParseJSON_Dive(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"records":[{"record_id":"a"},{"record_id":""}]}`))
	_, err := ParseJSON[batch](r)
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("err = %v", err)
	}
	if !strings.HasPrefix(e.Field(), "records[1]") {
		t.Fatalf("field = %q", e.Field())
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"records":[{"record_id":"a"},{"record_id":"b"},{"record_id":"c"}]}`))
	_, err = ParseJSON[batch](r)
	if !perr.IsCode(err, perr.ErrorCodeValidation) || !strings.Contains(err.Error(), "at most 2") {
		t.Fatalf("max err = %v", err)
	}
}

func TestParseJSON_TooLarge(t *testing.T) {
	body := `{"record_id":"` + strings.Repeat("x", 200) + `"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))
	_, err := ParseJSON[record](r, JSONOptions{MaxBytes: 64})
	if !perr.IsCode(err, perr.ErrorCodeTooLarge) {
		t.Fatalf("err = %v, want too large", err)
	}
}

func TestParseJSON_AllowEmpty(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(""))
	if _, err := ParseJSON[record](r, JSONOptions{AllowEmptyBody: true}); err != nil {
		t.Fatalf("empty allowed err = %v", err)
	}
}
