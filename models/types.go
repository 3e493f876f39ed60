// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Form field names shared by the templates, the validator and the tests.
const (
	FieldWord           = "parola"
	FieldClue           = "frase_indizio"
	FieldName           = "nome"
	FieldHoneypot       = "website"
	FieldAccessPassword = "access_password"
	FieldAdminPassword  = "password"
	FieldCSRFToken      = "csrf_token"
)

// Submission is one stored word/clue pair.
type Submission struct {
	ID        int64     `json:"id"`
	Word      string    `json:"parola"`
	Clue      string    `json:"frase_indizio"`
	Name      string    `json:"nome"`
	CreatedAt time.Time `json:"timestamp"`
}

// SubmissionForm carries the raw (or sanitized) values of the guest form.
type SubmissionForm struct {
	Word     string
	Clue     string
	Name     string
	Honeypot string
}

// FieldErrors maps a form field name to its user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message stored in the session until the next page render.
type Flash struct {
	Kind    string
	Message string
}

// ErrorResponse is the JSON body of a failed health check.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}
