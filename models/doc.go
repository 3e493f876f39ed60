// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the data types shared across packages.

# Submission

A stored crossword entry:

	type Submission struct {
		ID        int64     // auto-assigned, ascending by insertion
		Word      string    // parola
		Clue      string    // frase_indizio
		Name      string    // nome, may be empty
		CreatedAt time.Time // assigned by the store
	}

# Forms

SubmissionForm holds the guest form values, including the hidden honeypot
field. FieldErrors maps field names (FieldWord, FieldClue, FieldName) to
messages rendered next to the inputs.

# Flash Messages

Flash values survive one redirect in the session:

	sess.AddFlash(models.FlashSuccess, "Contributo eliminato")
*/
package models
