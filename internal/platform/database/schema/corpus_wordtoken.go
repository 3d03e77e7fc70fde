package schema

// WordTokenTable represents the 'corpus.wordtoken' table
type WordTokenTable struct {
	Table        string
	ID           string
	CorpusID     string
	OrderID      string
	Form         string
	Lemma        string
	POS          string
	Morph        string
	LeftContext  string
	RightContext string
}

// WordToken is the schema definition for corpus.wordtoken
var WordToken = WordTokenTable{
	Table:        "corpus.wordtoken",
	ID:           "id",
	CorpusID:     "corpusid",
	OrderID:      "orderid",
	Form:         "form",
	Lemma:        "lemma",
	POS:          "pos",
	Morph:        "morph",
	LeftContext:  "leftcontext",
	RightContext: "rightcontext",
}

// Identifier splits the qualified table name for pgx.CopyFrom.
func (t WordTokenTable) Identifier() []string { return []string{"corpus", "wordtoken"} }

// CopyColumns are the columns written by a bulk token insert.
func (t WordTokenTable) CopyColumns() []string {
	return []string{t.CorpusID, t.OrderID, t.Form, t.Lemma, t.POS, t.Morph, t.LeftContext, t.RightContext}
}
