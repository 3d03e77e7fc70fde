// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package corpus implements registration and inspection of linguistic corpora.

A corpus is a named, ordered collection of word tokens (form, lemma, POS,
morphology) uploaded as tab-separated text, together with the allow-lists
that constrain which lemma, POS and morphology values correctors may use.
Allow-lists live in a control list that can be shared between corpora; a
corpus may also carry its own overrides per category.

# Layers

  - convert.go: pure parsing of the pasted text into tokens and allow-lists.
  - service.go: registration flow, access control, autocomplete resolution.
  - store_postgres.go: pgx persistence, one transaction per registration.
  - http.go: HTML form and page handlers plus the JSON autocomplete endpoint.
*/
package corpus

import (
	"errors"
	"time"

	"github.com/taibuivan/lexica/internal/platform/apperr"
)

// ErrNameTaken is returned by a [Repository] when the corpus name is already
// registered.
var ErrNameTaken = errors.New("corpus: name already in use")

// # Allowed Value Categories

// AllowedType names an annotation category with an allow-list.
type AllowedType string

const (
	AllowedLemma AllowedType = "lemma"
	AllowedMorph AllowedType = "morph"
	AllowedPOS   AllowedType = "POS"
)

// ParseAllowedType validates the category segment of an autocomplete URL.
func ParseAllowedType(raw string) (AllowedType, error) {
	switch allowedType := AllowedType(raw); allowedType {
	case AllowedLemma, AllowedMorph, AllowedPOS:
		return allowedType, nil
	}
	return "", apperr.ValidationError("Unknown allowed value type " + raw)
}

// # Entities

// Corpus is a registered corpus and its settings.
type Corpus struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	ControlListID   int64     `json:"control_list_id"`
	ControlListName string    `json:"control_list_name"`
	ContextLeft     int       `json:"context_left"`
	ContextRight    int       `json:"context_right"`
	CreatedAt       time.Time `json:"created_at"`
}

// Summary is the light projection used for navigation.
type Summary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Details is what the corpus information page shows.
type Details struct {
	Corpus
	TokenCount int      `json:"token_count"`
	Owners     []string `json:"owners"`
}

// ControlList is a shared container of allow-lists.
type ControlList struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

// WordToken is one token of a corpus. OrderID is its 1-based position.
type WordToken struct {
	OrderID      int    `json:"order_id"`
	Form         string `json:"form"`
	Lemma        string `json:"lemma"`
	POS          string `json:"pos"`
	Morph        string `json:"morph"`
	LeftContext  string `json:"left_context"`
	RightContext string `json:"right_context"`
}

// AllowedValue is one allow-list entry. Readable is only meaningful for
// morphology, where Label is a compact code such as "Case=Nom|Numb=Sing".
type AllowedValue struct {
	Label    string `json:"label"`
	Readable string `json:"readable,omitempty"`
}

// AllowedLists groups the allow-lists submitted with a corpus.
type AllowedLists struct {
	Lemma []string
	POS   []string
	Morph []AllowedValue
}

// Empty reports whether no list carries any value.
func (lists AllowedLists) Empty() bool {
	return len(lists.Lemma) == 0 && len(lists.POS) == 0 && len(lists.Morph) == 0
}

// Entries flattens the lists into (category, value) pairs for storage.
func (lists AllowedLists) Entries() []AllowedEntry {
	entries := make([]AllowedEntry, 0, len(lists.Lemma)+len(lists.POS)+len(lists.Morph))
	for _, lemma := range lists.Lemma {
		entries = append(entries, AllowedEntry{Category: AllowedLemma, Value: AllowedValue{Label: lemma}})
	}
	for _, pos := range lists.POS {
		entries = append(entries, AllowedEntry{Category: AllowedPOS, Value: AllowedValue{Label: pos}})
	}
	for _, morph := range lists.Morph {
		entries = append(entries, AllowedEntry{Category: AllowedMorph, Value: morph})
	}
	return entries
}

// AllowedEntry is one stored allow-list row.
type AllowedEntry struct {
	Category AllowedType
	Value    AllowedValue
}

// Suggestion is one autocomplete result.
type Suggestion struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Fixtures is the full export of a corpus used to seed correction tools.
type Fixtures struct {
	Corpus *Corpus        `json:"corpus"`
	Tokens []WordToken    `json:"tokens"`
	Lemma  []AllowedValue `json:"allowed_lemma"`
	POS    []AllowedValue `json:"allowed_pos"`
}

// # Scopes

// ScopeKind says which owner an allow-list query filters on.
type ScopeKind int

const (
	// ScopeCorpus selects corpus-level overrides.
	ScopeCorpus ScopeKind = iota + 1
	// ScopeControlList selects the shared control list entries.
	ScopeControlList
)

// Scope identifies the owner of a set of allowed values.
type Scope struct {
	Kind ScopeKind
	ID   int64
}

// # Registration

// Registration is a validated corpus ready to be written.
type Registration struct {
	Name    string
	OwnerID string

	// ControlListID reuses an existing control list. Zero creates a new one
	// named after the corpus.
	ControlListID int64

	ContextLeft  int
	ContextRight int
	Tokens       []WordToken
	Allowed      AllowedLists
}
