package models

// User abilities. Admin implies every other ability.
const (
	AbilityAdmin  = "admin"
	AbilityMerge  = "merge"
	AbilityDelete = "delete"
	AbilityList   = "list"
	AbilityEdit   = "edit"
)

// User is an account acting against the API. Abilities is the stored set of
// granted abilities.
type User struct {
	ID        int64    `json:"id" db:"id"`
	Username  string   `json:"username" db:"username"`
	Abilities []string `json:"abilities" db:"-"`
}

func (u *User) HasAbility(ability string) bool {
	if u == nil {
		return false
	}
	for _, a := range u.Abilities {
		if a == ability || a == AbilityAdmin {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	for _, a := range u.Abilities {
		if a == AbilityAdmin {
			return true
		}
	}
	return false
}
