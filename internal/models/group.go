package models

// Member is one person on a group roster.
// For registered users ID is the user ID; members added by name only get a
// generated ID.
type Member struct {
	// ID is stable and unique within the group.
	ID string

	// Name is the display name shown in balances and debts.
	Name string
}

// Group is a set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// Members is the group roster, in the order members joined.
	Members []Member

	// CreatedBy is the user ID that created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether id is on the roster.
func (g *Group) HasMember(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// MemberName returns the display name for id, or id itself when unknown.
func (g *Group) MemberName(id string) string {
	for _, m := range g.Members {
		if m.ID == id {
			return m.Name
		}
	}
	return id
}
