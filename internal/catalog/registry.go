package catalog

import (
	"errors"
	"fmt"
)

// ErrDuplicate is returned when an entity with the same kind and id is
// registered twice. The registry keeps the first entity.
var ErrDuplicate = errors.New("duplicate registration")

// Registry owns one append-only container per kind plus the member roster.
// It is built by the fetcher, then handed to cross-referencing and reporting.
// A Registry is not safe for concurrent use; a run has a single flow of control.
type Registry struct {
	items   map[Kind][]*Item
	byID    map[Kind]map[int]*Item
	members []*Member
	byMemID map[int]*Member
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{
		items:   make(map[Kind][]*Item, len(Kinds)),
		byID:    make(map[Kind]map[int]*Item, len(Kinds)),
		byMemID: make(map[int]*Member),
	}
	for _, k := range Kinds {
		r.byID[k] = make(map[int]*Item)
	}
	return r
}

// RegisterChallenge adds a challenge. categoryID is mapped through the
// category table; an out-of-range id yields CategoryUnknown.
func (r *Registry) RegisterChallenge(id int, name string, retired bool, difficulty Difficulty, categoryID int) (*Item, error) {
	category, _ := CategoryName(categoryID)
	return r.register(&Item{
		Kind:       KindChallenge,
		ID:         id,
		Name:       name,
		Retired:    retired,
		Difficulty: difficulty,
		Category:   category,
	})
}

// RegisterMachine adds a machine.
func (r *Registry) RegisterMachine(id int, name string, retired bool, difficulty Difficulty) (*Item, error) {
	return r.register(&Item{
		Kind:       KindMachine,
		ID:         id,
		Name:       name,
		Retired:    retired,
		Difficulty: difficulty,
	})
}

// RegisterFortress adds a fortress.
func (r *Registry) RegisterFortress(id int, name string) (*Item, error) {
	return r.register(&Item{
		Kind: KindFortress,
		ID:   id,
		Name: name,
	})
}

func (r *Registry) register(it *Item) (*Item, error) {
	if existing, ok := r.byID[it.Kind][it.ID]; ok {
		return existing, fmt.Errorf("%w: %s %d (%q)", ErrDuplicate, it.Kind, it.ID, existing.Name)
	}
	r.items[it.Kind] = append(r.items[it.Kind], it)
	r.byID[it.Kind][it.ID] = it
	return it, nil
}

// RegisterMember adds a member to the roster.
func (r *Registry) RegisterMember(id int, name string) (*Member, error) {
	if existing, ok := r.byMemID[id]; ok {
		return existing, fmt.Errorf("%w: member %d (%q)", ErrDuplicate, id, existing.Name)
	}
	m := &Member{ID: id, Name: name}
	r.members = append(r.members, m)
	r.byMemID[id] = m
	return m, nil
}

// Lookup finds an item by id within one kind. A machine never satisfies a
// challenge lookup even when the ids match.
func (r *Registry) Lookup(kind Kind, id int) (*Item, bool) {
	it, ok := r.byID[kind][id]
	return it, ok
}

// Flag records that m solved the item (kind, id). It returns true only when
// a new link was created. Unknown ids and repeated flags are silent no-ops.
func (r *Registry) Flag(m *Member, kind Kind, id int) bool {
	it, ok := r.Lookup(kind, id)
	if !ok || it.flaggedBy(m) {
		return false
	}
	it.FlaggedBy = append(it.FlaggedBy, m)
	m.Owned = append(m.Owned, it)
	return true
}

// Items returns the items of one kind in registration order.
// The slice is shared; callers must not modify it.
func (r *Registry) Items(kind Kind) []*Item {
	return r.items[kind]
}

// Count returns the number of registered items of one kind.
func (r *Registry) Count(kind Kind) int {
	return len(r.items[kind])
}

// Members returns the roster in registration order.
func (r *Registry) Members() []*Member {
	return r.members
}

// Unflagged returns the items of one kind nobody in the organization owns,
// in registration order.
func (r *Registry) Unflagged(kind Kind) []*Item {
	var out []*Item
	for _, it := range r.items[kind] {
		if !it.IsFlagged() {
			out = append(out, it)
		}
	}
	return out
}
