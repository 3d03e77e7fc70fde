package schema

// ControlListTable represents the 'corpus.controllist' table
type ControlListTable struct {
	Table     string
	ID        string
	Name      string
	IsPublic  string
	CreatedAt string
}

// ControlList is the schema definition for corpus.controllist
var ControlList = ControlListTable{
	Table:     "corpus.controllist",
	ID:        "id",
	Name:      "name",
	IsPublic:  "ispublic",
	CreatedAt: "createdat",
}

// ControlListUserTable represents the 'corpus.controllistuser' table
type ControlListUserTable struct {
	Table         string
	ControlListID string
	UserID        string
	IsOwner       string
}

// ControlListUser is the schema definition for corpus.controllistuser
var ControlListUser = ControlListUserTable{
	Table:         "corpus.controllistuser",
	ControlListID: "controllistid",
	UserID:        "userid",
	IsOwner:       "isowner",
}
