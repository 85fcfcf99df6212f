package catalog

// Item is one flaggable catalog entry. All three kinds share this shape;
// Kind is the discriminant and fields that do not apply to a kind stay zero
// (fortresses are never retired and carry no difficulty or category).
type Item struct {
	Kind       Kind
	ID         int
	Name       string
	Retired    bool
	Difficulty Difficulty
	Category   string

	FlaggedBy []*Member
}

// IsFlagged reports whether at least one member owns the item.
func (it *Item) IsFlagged() bool {
	return len(it.FlaggedBy) > 0
}

func (it *Item) flaggedBy(m *Member) bool {
	for _, f := range it.FlaggedBy {
		if f == m {
			return true
		}
	}
	return false
}

func (it *Item) String() string {
	return it.Name
}

// Member is an organization member and the items they have solved.
type Member struct {
	ID    int
	Name  string
	Owned []*Item
}

// Owns reports whether the member has been linked to it.
func (m *Member) Owns(it *Item) bool {
	for _, o := range m.Owned {
		if o == it {
			return true
		}
	}
	return false
}

func (m *Member) String() string {
	return m.Name
}
