// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

type testPayload struct {
	UserID      string `json:"userId" validate:"required,max=256,identifier"`
	RecipientID string `json:"recipientId" validate:"omitempty,max=256,identifier"`
	CallType    string `json:"callType" validate:"omitempty,oneof=audio video"`
	Internal    string `json:"-" validate:"max=3"`
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input testPayload
	}{
		{name: "user only", input: testPayload{UserID: "u1"}},
		{name: "user and recipient", input: testPayload{UserID: "u1", RecipientID: "u2"}},
		{name: "unicode identifiers", input: testPayload{UserID: "ü", RecipientID: "用户"}},
		{name: "call type", input: testPayload{UserID: "u1", CallType: "video"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     testPayload
		wantField string
		wantTag   string
	}{
		{
			name:      "missing user id",
			input:     testPayload{},
			wantField: "userId",
			wantTag:   "required",
		},
		{
			name:      "separator in user id",
			input:     testPayload{UserID: "a:b"},
			wantField: "userId",
			wantTag:   "identifier",
		},
		{
			name:      "separator in recipient id",
			input:     testPayload{UserID: "a", RecipientID: "b:c"},
			wantField: "recipientId",
			wantTag:   "identifier",
		},
		{
			name:      "overlong user id",
			input:     testPayload{UserID: strings.Repeat("x", 257)},
			wantField: "userId",
			wantTag:   "max",
		},
		{
			name:      "unknown call type",
			input:     testPayload{UserID: "u1", CallType: "fax"},
			wantField: "callType",
			wantTag:   "oneof",
		},
		{
			name:      "field without json name",
			input:     testPayload{UserID: "u1", Internal: "toolong"},
			wantField: "Internal",
			wantTag:   "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() should have returned an error")
			}

			found := false
			for _, e := range err.Errors() {
				if e.Field() == tt.wantField && e.Tag() == tt.wantTag {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Expected error on field %s with tag %s, got: %v", tt.wantField, tt.wantTag, err.Errors())
			}
		})
	}
}

func TestPayloadValidationError_Messages(t *testing.T) {
	err := ValidateStruct(&testPayload{RecipientID: "x:y"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "userId is required") {
		t.Errorf("Error() = %q, want userId message", msg)
	}
	if !strings.Contains(msg, "recipientId must be a non-empty identifier") {
		t.Errorf("Error() = %q, want recipientId message", msg)
	}

	fields := err.Fields()
	if len(fields) != 2 {
		t.Fatalf("Fields() = %v, want 2 entries", fields)
	}
}

func TestPayloadValidationError_Empty(t *testing.T) {
	ve := &PayloadValidationError{}
	if ve.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", ve.Error(), "validation failed")
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if err.Errors()[0].Field() != "unknown" {
		t.Errorf("Field() = %q, want unknown", err.Errors()[0].Field())
	}
}
