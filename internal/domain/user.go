package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role represents the position code assigned to a trader at registration
type Role string

const (
	RolePPM Role = "PPM"
	RoleAPM Role = "APM"
	RoleGM  Role = "GM"
)

// Roles lists every accepted position code
func Roles() []Role {
	return []Role{RolePPM, RoleAPM, RoleGM}
}

// ParseRole converts a raw position string into a Role
func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if string(r) == s {
			return r, nil
		}
	}
	return "", ErrInvalidPosition
}

// User represents a registered trader and their holdings
// Password holds a bcrypt hash, never the raw credential
type User struct {
	ID        string
	Name      string
	Position  Role
	Password  string
	Portfolio map[string]int64 // company -> share count
}

// Validate ensures the user adheres to domain rules
// Position is checked before the other fields
func (u *User) Validate() error {
	if _, err := ParseRole(string(u.Position)); err != nil {
		return err
	}
	if u.Name == "" || u.ID == "" || u.Password == "" {
		return ErrMissingField
	}
	for company, qty := range u.Portfolio {
		if company == "" || qty < 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate registry state
func (u *User) Clone() User {
	c := *u
	c.Portfolio = make(map[string]int64, len(u.Portfolio))
	for k, v := range u.Portfolio {
		c.Portfolio[k] = v
	}
	return c
}

// Receipt records a completed purchase
type Receipt struct {
	ID        uuid.UUID
	UserID    string
	Company   string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
	Holding   int64 // shares of Company held after the purchase
	At        time.Time
}
