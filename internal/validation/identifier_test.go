package validation

import (
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    bool
	}{
		{"simple name", "users", false},
		{"with underscore", "user_name", false},
		{"with numbers", "user123", false},
		{"starts with underscore", "_private", false},
		{"table.column", "users.id", false},
		{"mixed case", "UserName", false},

		{"empty string", "", true},
		{"starts with number", "123users", true},
		{"contains space", "user name", true},
		{"contains dash", "user-name", true},
		{"contains semicolon", "users;", true},
		{"contains quote", "users'", true},
		{"contains double quote", `users"`, true},
		{"contains backtick", "users`", true},
		{"multiple dots", "a.b.c", true},
		{"ends with dot", "users.", true},
		{"too long", strings.Repeat("a", MaxIdentifierLength+1), true},
		{"union injection", "users UNION SELECT", true},
		{"comment injection", "users--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.identifier)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.identifier, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTableWithAlias(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		wantName  string
		wantAlias string
		wantErr   bool
	}{
		{"plain", "users", "users", "", false},
		{"as alias", "users as u", "users", "u", false},
		{"upper AS", "users AS u", "users", "u", false},
		{"space alias", "users u", "users", "u", false},
		{"surrounding space", "  users  ", "users", "", false},
		{"empty", "", "", "", true},
		{"injection", "users; DROP TABLE users", "", "", true},
		{"bad alias", "users as 1u", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, alias, err := ValidateTableWithAlias(tt.table)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTableWithAlias(%q) error = %v, wantErr %v", tt.table, err, tt.wantErr)
			}
			if name != tt.wantName || alias != tt.wantAlias {
				t.Errorf("ValidateTableWithAlias(%q) = (%q, %q), want (%q, %q)", tt.table, name, alias, tt.wantName, tt.wantAlias)
			}
		})
	}
}

func TestIdentifierError_Message(t *testing.T) {
	err := ValidateIdentifier("bad;name")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "'bad;name'") {
		t.Errorf("error message %q does not quote the identifier", err.Error())
	}
}
