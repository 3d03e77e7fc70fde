// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column names recognised in the header line, keyed by lower-cased alias.
var headerAliases = map[string]string{
	"form":       columnForm,
	"token":      columnForm,
	"tokens":     columnForm,
	"tok":        columnForm,
	"lemma":      columnLemma,
	"lemmas":     columnLemma,
	"lem":        columnLemma,
	"pos":        columnPOS,
	"morph":      columnMorph,
	"morphology": columnMorph,
}

const (
	columnForm  = "form"
	columnLemma = "lemma"
	columnPOS   = "pos"
	columnMorph = "morph"
)

// ConversionError reports input that cannot be turned into tokens. Its
// message is safe to show to the user.
type ConversionError struct {
	// Line is the 1-based line of the offending input, zero when the error
	// concerns the input as a whole.
	Line    int
	Message string
}

func (e *ConversionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

func conversionErrorf(line int, format string, args ...any) *ConversionError {
	return &ConversionError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Conversion is the parsed form of a corpus submission.
type Conversion struct {
	Tokens  []WordToken
	Allowed AllowedLists
}

/*
ConvertInput parses pasted tabular text and the optional allow-lists.

The first non-blank line of tsv is a tab-separated header naming the columns
(form and lemma are required, pos and morph optional). Every other non-blank
line is a token. Fields are split on tabs only; quotes are ordinary
characters because they are legitimate tokens in punctuated text.

Every failure is a [*ConversionError].
*/
func ConvertInput(tsv, allowedLemma, allowedMorph, allowedPOS string) (*Conversion, error) {
	tokens, err := parseTokens(normalize(tsv))
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Tokens: tokens,
		Allowed: AllowedLists{
			Lemma: parseLemmaList(normalize(allowedLemma)),
			POS:   parsePOSList(normalize(allowedPOS)),
			Morph: parseMorphList(normalize(allowedMorph)),
		},
	}, nil
}

// normalize composes text to NFC and folds CRLF and lone CR line endings.
func normalize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// # Tokens

type header struct {
	width   int
	indexes map[string]int
}

// required returns the minimum number of cells a token line must have.
func (h header) required() int {
	return max(h.indexes[columnForm], h.indexes[columnLemma]) + 1
}

func (h header) cell(cells []string, column string) string {
	index, ok := h.indexes[column]
	if !ok || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

func parseHeader(line string, lineNumber int) (header, error) {
	cells := strings.Split(line, "\t")
	parsed := header{width: len(cells), indexes: make(map[string]int, len(cells))}

	for index, cell := range cells {
		column, known := headerAliases[strings.ToLower(strings.TrimSpace(cell))]
		if !known {
			continue
		}
		if _, seen := parsed.indexes[column]; seen {
			return header{}, conversionErrorf(lineNumber, "the column %s is declared twice", column)
		}
		parsed.indexes[column] = index
	}

	for _, column := range []string{columnForm, columnLemma} {
		if _, ok := parsed.indexes[column]; !ok {
			return header{}, conversionErrorf(lineNumber, "the header must declare a %s column", column)
		}
	}

	return parsed, nil
}

func parseTokens(text string) ([]WordToken, error) {
	var (
		columns   header
		hasHeader bool
		tokens    []WordToken
	)

	for index, line := range strings.Split(text, "\n") {
		lineNumber := index + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !hasHeader {
			parsed, err := parseHeader(line, lineNumber)
			if err != nil {
				return nil, err
			}
			columns, hasHeader = parsed, true
			continue
		}

		cells := trimTrailingBlank(strings.Split(line, "\t"), columns.width)
		if len(cells) > columns.width {
			return nil, conversionErrorf(lineNumber, "expected at most %d columns, found %d", columns.width, len(cells))
		}
		if len(cells) < columns.required() {
			return nil, conversionErrorf(lineNumber, "expected at least %d columns, found %d", columns.required(), len(cells))
		}

		token := WordToken{
			OrderID: len(tokens) + 1,
			Form:    columns.cell(cells, columnForm),
			Lemma:   columns.cell(cells, columnLemma),
			POS:     columns.cell(cells, columnPOS),
			Morph:   columns.cell(cells, columnMorph),
		}
		if token.Form == "" {
			return nil, conversionErrorf(lineNumber, "the form is empty")
		}
		tokens = append(tokens, token)
	}

	if len(tokens) == 0 {
		return nil, &ConversionError{Message: "No token was found in the submitted data"}
	}

	return tokens, nil
}

// trimTrailingBlank drops empty cells past width left by trailing tabs.
func trimTrailingBlank(cells []string, width int) []string {
	for len(cells) > width && strings.TrimSpace(cells[len(cells)-1]) == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// # Allow-lists

func parseLemmaList(text string) []string {
	return dedupe(strings.Split(text, "\n"))
}

func parsePOSList(text string) []string {
	return dedupe(strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == '\n' }))
}

// parseMorphList reads "label<TAB>readable" lines. A line without a tab is
// its own readable form.
func parseMorphList(text string) []AllowedValue {
	var (
		values []AllowedValue
		seen   = make(map[string]struct{})
		first  = true
	)

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		label, readable, _ := strings.Cut(line, "\t")
		label, readable = strings.TrimSpace(label), strings.TrimSpace(readable)

		if first {
			first = false
			if strings.EqualFold(label, "label") && strings.EqualFold(readable, "readable") {
				continue
			}
		}

		if label == "" {
			continue
		}
		if readable == "" {
			readable = label
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		values = append(values, AllowedValue{Label: label, Readable: readable})
	}

	return values
}

// dedupe trims values, drops blanks and keeps the first occurrence of each.
func dedupe(values []string) []string {
	var (
		result []string
		seen   = make(map[string]struct{}, len(values))
	)
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

// # Context

// AttachContext fills the left and right context of every token with the
// forms of up to left previous and right next tokens, space separated.
func AttachContext(tokens []WordToken, left, right int) {
	forms := make([]string, len(tokens))
	for index := range tokens {
		forms[index] = tokens[index].Form
	}

	for index := range tokens {
		start := max(0, index-left)
		end := min(len(forms), index+1+right)
		tokens[index].LeftContext = strings.Join(forms[start:index], " ")
		tokens[index].RightContext = strings.Join(forms[index+1:end], " ")
	}
}
