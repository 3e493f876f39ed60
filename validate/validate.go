// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/D35P4C1T0/crucibia/models"
)

const (
	MinClueLength = 10
	MaxWordLength = 50
	MaxClueLength = 200
	MaxNameLength = 50
)

var (
	ErrInvalidWord = errors.New("word may contain only letters and spaces")
	ErrShortClue   = errors.New("clue must be at least 10 characters")
)

// Letters (any script, combining accents included) separated by runs of
// space characters. Tabs and line breaks are not separators.
var wordPattern = regexp.MustCompile(`^(?:\p{L}\p{M}*)+(?:[ \p{Zs}]+(?:\p{L}\p{M}*)+)*$`)

// ValidateWord accepts a non-empty run of letters with interior spaces.
// Input is NFC-normalized first, so decomposed accents are accepted.
func ValidateWord(s string) error {
	if !wordPattern.MatchString(norm.NFC.String(strings.TrimSpace(s))) {
		return ErrInvalidWord
	}
	return nil
}

// ValidateClue accepts clues of at least MinClueLength characters after trimming.
func ValidateClue(s string) error {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < MinClueLength {
		return ErrShortClue
	}
	return nil
}

// IsSpam reports whether the hidden honeypot field was filled in.
func IsSpam(form models.SubmissionForm) bool {
	return strings.TrimSpace(form.Honeypot) != ""
}

// Submission sanitizes every field of the guest form and validates the
// result. The returned form holds the cleaned values, which are also safe to
// echo back when errors is non-empty.
func Submission(form models.SubmissionForm) (models.SubmissionForm, models.FieldErrors) {
	clean := models.SubmissionForm{
		Word:     Sanitize(form.Word),
		Clue:     Sanitize(form.Clue),
		Name:     Sanitize(form.Name),
		Honeypot: form.Honeypot,
	}
	errs := models.FieldErrors{}

	switch {
	case clean.Word == "":
		errs.Add(models.FieldWord, "La parola è obbligatoria")
	case utf8.RuneCountInString(clean.Word) > MaxWordLength:
		errs.Add(models.FieldWord, "La parola deve essere tra 1 e 50 caratteri")
	case ValidateWord(clean.Word) != nil:
		errs.Add(models.FieldWord, "La parola può contenere solo lettere e spazi")
	}

	switch {
	case clean.Clue == "":
		errs.Add(models.FieldClue, "La frase indizio è obbligatoria")
	case utf8.RuneCountInString(clean.Clue) > MaxClueLength:
		errs.Add(models.FieldClue, "La frase indizio deve essere tra 10 e 200 caratteri")
	case ValidateClue(clean.Clue) != nil:
		errs.Add(models.FieldClue, "La frase indizio deve essere di almeno 10 caratteri")
	}

	if utf8.RuneCountInString(clean.Name) > MaxNameLength {
		errs.Add(models.FieldName, "Il nome deve essere al massimo di 50 caratteri")
	}

	return clean, errs
}
