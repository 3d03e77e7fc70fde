package schema

// AllowedValueTable represents the 'corpus.allowedvalue' table
type AllowedValueTable struct {
	Table         string
	ID            string
	ControlListID string
	CorpusID      string
	Category      string
	Label         string
	Readable      string
}

// AllowedValue is the schema definition for corpus.allowedvalue
var AllowedValue = AllowedValueTable{
	Table:         "corpus.allowedvalue",
	ID:            "id",
	ControlListID: "controllistid",
	CorpusID:      "corpusid",
	Category:      "category",
	Label:         "label",
	Readable:      "readable",
}

// Identifier splits the qualified table name for pgx.CopyFrom.
func (t AllowedValueTable) Identifier() []string { return []string{"corpus", "allowedvalue"} }

// CopyColumns are the columns written by a bulk allow-list insert.
func (t AllowedValueTable) CopyColumns() []string {
	return []string{t.ControlListID, t.CorpusID, t.Category, t.Label, t.Readable}
}
