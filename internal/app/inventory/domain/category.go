package domain

import (
	"sort"
	"strings"
)

// Field names for category change tracking.
const (
	FieldCategoryName     = "name"
	FieldCategoryParent   = "parent_id"
	FieldCategoryPosition = "position"
	FieldCategoryActive   = "is_active"
)

// CategoryState is the persisted state of a category.
type CategoryState struct {
	Audit    Audit
	Name     string
	ParentID *string
	Position int64
}

// Category groups products in an acyclic hierarchy. Deactivating a category hides
// every product in it and in its descendants.
type Category struct {
	audit    Audit
	name     string
	parentID *string
	position int64

	changes *ChangeTracker
	events  []DomainEvent
}

// NewCategory creates a category under parentID (nil for a root). The caller
// validates the parent against the current tree first.
func NewCategory(name string, parentID *string, position int64, audit Audit) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyCategoryName
	}
	if parentID != nil && *parentID == audit.ID {
		return nil, ErrCategorySelfParent
	}

	c := &Category{
		audit:    audit,
		name:     name,
		parentID: copyRef(parentID),
		position: position,
		changes:  NewChangeTracker(),
	}
	c.changes.MarkDirty(FieldCategoryName, FieldCategoryParent, FieldCategoryPosition, FieldCategoryActive)
	c.events = append(c.events, &CategoryCreatedEvent{
		CategoryID: audit.ID,
		Name:       name,
		ParentID:   copyRef(parentID),
		CreatedAt:  audit.CreatedAt,
	})
	return c, nil
}

// ReconstructCategory rebuilds a Category from stored state.
func ReconstructCategory(s CategoryState) *Category {
	return &Category{
		audit:    s.Audit,
		name:     s.Name,
		parentID: copyRef(s.ParentID),
		position: s.Position,
		changes:  NewChangeTracker(),
	}
}

func (c *Category) ID() string                  { return c.audit.ID }
func (c *Category) Audit() Audit                { return c.audit }
func (c *Category) Name() string                { return c.name }
func (c *Category) ParentID() *string           { return copyRef(c.parentID) }
func (c *Category) Position() int64             { return c.position }
func (c *Category) IsActive() bool              { return c.audit.IsActive }
func (c *Category) Changes() *ChangeTracker     { return c.changes }
func (c *Category) DomainEvents() []DomainEvent { return c.events }

// State returns a copy of the category's state.
func (c *Category) State() CategoryState {
	a := c.audit
	a.CreatedBy = copyRef(a.CreatedBy)
	a.UpdatedBy = copyRef(a.UpdatedBy)
	return CategoryState{Audit: a, Name: c.name, ParentID: copyRef(c.parentID), Position: c.position}
}

// Node returns the category as a tree node.
func (c *Category) Node() CategoryNode {
	return CategoryNode{ID: c.audit.ID, Name: c.name, ParentID: copyRef(c.parentID), Position: c.position, IsActive: c.audit.IsActive}
}

// Deactivate soft deletes the category.
func (c *Category) Deactivate(st Stamp) error {
	if !c.audit.IsActive {
		return ErrAlreadyArchived
	}
	c.audit.IsActive = false
	st.Apply(&c.audit)
	c.changes.MarkDirty(FieldCategoryActive)
	c.events = append(c.events, &CategoryDeactivatedEvent{
		CategoryID:    c.audit.ID,
		DeactivatedAt: c.audit.UpdatedAt,
	})
	return nil
}

// MarkPersisted clears change tracking and events after a successful save.
func (c *Category) MarkPersisted() {
	c.changes.Reset()
	c.events = nil
}

// CategoryNode is the slice of category state needed for hierarchy checks.
type CategoryNode struct {
	ID       string
	Name     string
	ParentID *string
	Position int64
	IsActive bool
}

// CategoryTree is an in-memory view of the whole hierarchy.
type CategoryTree struct {
	nodes    map[string]CategoryNode
	children map[string][]string
}

// NewCategoryTree indexes nodes by id and groups children in display order.
func NewCategoryTree(nodes []CategoryNode) *CategoryTree {
	t := &CategoryTree{
		nodes:    make(map[string]CategoryNode, len(nodes)),
		children: make(map[string][]string),
	}
	for _, n := range nodes {
		t.nodes[n.ID] = n
	}
	for _, n := range nodes {
		if n.ParentID != nil {
			t.children[*n.ParentID] = append(t.children[*n.ParentID], n.ID)
		}
	}
	for parent, kids := range t.children {
		sort.Slice(kids, func(i, j int) bool {
			a, b := t.nodes[kids[i]], t.nodes[kids[j]]
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return a.Name < b.Name
		})
		t.children[parent] = kids
	}
	return t
}

// Get returns the node for id.
func (t *CategoryTree) Get(id string) (CategoryNode, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Ancestors returns the parent chain of id, nearest first. A corrupt chain that
// loops is cut at the first repeated node.
func (t *CategoryTree) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	n, ok := t.nodes[id]
	for ok && n.ParentID != nil {
		pid := *n.ParentID
		if seen[pid] {
			break
		}
		seen[pid] = true
		out = append(out, pid)
		n, ok = t.nodes[pid]
	}
	return out
}

// Children returns the direct children of id in display order.
func (t *CategoryTree) Children(id string) []string {
	return append([]string(nil), t.children[id]...)
}

// Descendants returns every category below id, depth first.
func (t *CategoryTree) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(cur string) {
		for _, kid := range t.children[cur] {
			if seen[kid] {
				continue
			}
			seen[kid] = true
			out = append(out, kid)
			walk(kid)
		}
	}
	walk(id)
	return out
}

// IsVisible reports whether id and all of its ancestors are active.
// Unknown categories are not visible.
func (t *CategoryTree) IsVisible(id string) bool {
	n, ok := t.nodes[id]
	if !ok || !n.IsActive {
		return false
	}
	for _, a := range t.Ancestors(id) {
		an, ok := t.nodes[a]
		if !ok || !an.IsActive {
			return false
		}
	}
	return true
}

// ValidateParent checks that attaching id under parentID keeps the hierarchy acyclic.
func (t *CategoryTree) ValidateParent(id string, parentID *string) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrCategorySelfParent
	}
	if _, ok := t.nodes[*parentID]; !ok {
		return ErrCategoryNotFound
	}
	for _, a := range t.Ancestors(*parentID) {
		if a == id {
			return ErrCategoryCycle
		}
	}
	return nil
}
