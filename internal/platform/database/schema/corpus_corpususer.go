package schema

// CorpusUserTable represents the 'corpus.corpususer' table
type CorpusUserTable struct {
	Table    string
	CorpusID string
	UserID   string
	IsOwner  string
}

// CorpusUser is the schema definition for corpus.corpususer
var CorpusUser = CorpusUserTable{
	Table:    "corpus.corpususer",
	CorpusID: "corpusid",
	UserID:   "userid",
	IsOwner:  "isowner",
}
