package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table       string
	ID          string
	Username    string
	Email       string
	Password    string
	Role        string
	DisplayName string
	LastLoginAt string
	CreatedAt   string
	UpdatedAt   string

	UsernameKey string
	EmailKey    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:       "users.account",
	ID:          "id",
	Username:    "username",
	Email:       "email",
	Password:    "passwordhash",
	Role:        "role",
	DisplayName: "displayname",
	LastLoginAt: "lastloginat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",

	UsernameKey: "account_username_key",
	EmailKey:    "account_email_key",
}

// Columns returns the columns read when hydrating an account.
func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.Username, t.Email, t.Password, t.Role, t.DisplayName, t.CreatedAt, t.UpdatedAt}
}
