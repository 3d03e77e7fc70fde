// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import (
	"net/url"
	"strings"
)

// Submission holds the raw fields of the corpus intake form. It is echoed
// back into the form when registration fails.
type Submission struct {
	Name         string
	TSV          string
	AllowedLemma string
	AllowedMorph string
	AllowedPOS   string
	ContextLeft  string
	ContextRight string
	ControlList  string
}

// SubmissionFromForm extracts a [Submission] from parsed form values. Short
// fields are trimmed; the multi-line fields are kept verbatim for conversion.
func SubmissionFromForm(form url.Values) Submission {
	return Submission{
		Name:         strings.TrimSpace(form.Get("name")),
		TSV:          form.Get("tsv"),
		AllowedLemma: form.Get("allowed_lemma"),
		AllowedMorph: form.Get("allowed_morph"),
		AllowedPOS:   form.Get("allowed_POS"),
		ContextLeft:  strings.TrimSpace(form.Get("context_left")),
		ContextRight: strings.TrimSpace(form.Get("context_right")),
		ControlList:  strings.TrimSpace(form.Get("control_list")),
	}
}
