package session

import "strings"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the signed-in shopper. DiscountEligible is derived from Email
// at login and never set by callers.
type Identity struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	DiscountEligible bool   `json:"hasDuocDiscount"`
}

// ID scopes per-identity state such as the cart key.
func (i Identity) ID() string { return i.Username }

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// AuthResult is the combined login payload: token plus identity fields and
// the backend role list.
type AuthResult struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

func (r AuthResult) Identity() Identity {
	return Identity{Username: r.Username, Email: r.Email, Role: RoleFromList(r.Roles)}
}

// RoleFromList maps a backend role list to admin/user. Entries such as
// "ADMIN" or "ROLE_ADMIN" count as admin.
func RoleFromList(roles []string) string {
	for _, r := range roles {
		r = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(r)), "role_")
		if r == RoleAdmin {
			return RoleAdmin
		}
	}
	return RoleUser
}

func discountEligible(email, domain string) bool {
	if email == "" || domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), strings.ToLower(domain))
}
