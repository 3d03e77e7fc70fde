package schema

// CorpusTable represents the 'corpus.corpus' table
type CorpusTable struct {
	Table         string
	ID            string
	Name          string
	ControlListID string
	ContextLeft   string
	ContextRight  string
	CreatedAt     string

	// NameKey is the unique constraint guarding corpus names.
	NameKey string
}

// Corpus is the schema definition for corpus.corpus
var Corpus = CorpusTable{
	Table:         "corpus.corpus",
	ID:            "id",
	Name:          "name",
	ControlListID: "controllistid",
	ContextLeft:   "contextleft",
	ContextRight:  "contextright",
	CreatedAt:     "createdat",
	NameKey:       "corpus_name_key",
}

func (t CorpusTable) Columns() []string {
	return []string{t.ID, t.Name, t.ControlListID, t.ContextLeft, t.ContextRight, t.CreatedAt}
}
