// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package validate checks and cleans the guest submission form.

All functions are pure and safe for concurrent use.

# Rules

	ValidateWord(s)  letters (accents included) and interior spaces only
	ValidateClue(s)  at least 10 characters after trimming
	IsSpam(form)     hidden "website" honeypot field is filled in

# Sanitizing

Sanitize strips all markup with the bluemonday strict policy, drops the
contents of script and style elements, removes javascript:/vbscript:
schemes and repeats until the text is stable, so entity-encoded markup
cannot survive a decode. Plain text, accented letters included, is
returned unchanged.

# Forms

Submission sanitizes every field first and then validates the cleaned
values, returning field-specific messages:

	clean, errs := validate.Submission(form)
	if !errs.Empty() {
		// re-render the form with errs
	}
*/
package validate
