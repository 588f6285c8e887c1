// Switchboard - Presence and Call-Signaling Relay
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/switchboard

// Package validation provides struct validation using go-playground/validator v10.
//
// Relay event payloads are decoded into tagged structs and checked here before
// any registry or room operation runs. A failing payload is dropped and logged
// by the caller; nothing is written back to the client.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Field names reported by their json tag, matching the wire
//   - The custom "identifier" tag for user ids that form room ids
//   - Human-readable error messages
//
// # Example
//
//	type directPayload struct {
//	    RecipientID string `json:"recipientId" validate:"required,max=256,identifier"`
//	}
//
//	if verr := validation.ValidateStruct(&p); verr != nil {
//	    // drop and log
//	}
//
// # Custom Tags
//
//   - identifier: non-empty and free of the room separator (":")
package validation
