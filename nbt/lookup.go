package nbt

// Lookup finds a descendant by name. The direct children of a compound or list are searched
// first, in declaration order. If none matches, each child compound or list is searched the
// same way, again in declaration order, and the first hit is returned.
//
// Names are not unique across nesting levels, so with {"A": {"X": 1}, "X": 2} the lookup of
// "X" yields 2, while with {"A": {"X": 1}, "B": {"X": 3}} it yields 1. An empty name never
// matches.
func (t *Tag) Lookup(name string) *Tag {
	if name == "" {
		return nil
	}
	children := t.children()
	for _, c := range children {
		if c.Name == name {
			return c
		}
	}
	for _, c := range children {
		if k := c.Kind(); k == TagCompound || k == TagList {
			if found := c.Lookup(name); found != nil {
				return found
			}
		}
	}
	return nil
}

func (t *Tag) children() []*Tag {
	if t == nil {
		return nil
	}
	switch v := t.Value.(type) {
	case *Compound:
		return v.Tags
	case *List:
		return v.Items
	}
	return nil
}
