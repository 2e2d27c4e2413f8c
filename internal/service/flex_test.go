package service

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Price     flexFloat   `json:"price"`
		MaxPeople flexInt     `json:"max_people"`
		Active    flexBool    `json:"is_active"`
		Dates     flexStrings `json:"available_dates"`
	}
	tests := []struct {
		name      string
		raw       string
		wantErr   bool
		wantInMsg string
	}{
		{name: "quoted values", raw: `{"price":"25.5","max_people":"20","is_active":"true","available_dates":"2026-11-01"}`},
		{name: "plain values", raw: `{"price":25.5,"max_people":20,"is_active":true,"available_dates":["2026-11-01"]}`},
		{name: "empty", raw: "  ", wantErr: true, wantInMsg: "required"},
		{name: "bad number", raw: `{"price":"cheap"}`, wantErr: true, wantInMsg: "expected a number"},
		{name: "malformed", raw: `{"price":`, wantErr: true, wantInMsg: "malformed JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := decodeJSON(json.RawMessage(tt.raw), &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				if p.Price.Value != 25.5 || p.MaxPeople.Value != 20 || !p.Active.Value || len(p.Dates) != 1 {
					t.Errorf("decodeJSON() = %+v", p)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("decodeJSON() error = %T, want *ValidationError", err)
			}
			if !strings.Contains(ve.Error(), tt.wantInMsg) {
				t.Errorf("decodeJSON() error = %q, want it to mention %q", ve.Error(), tt.wantInMsg)
			}
		})
	}
}
