package taskview

import "sort"

// Selection is the set of task IDs picked for bulk actions
type Selection map[string]bool

// NewSelection returns an empty selection
func NewSelection() Selection {
	return make(Selection)
}

// Toggle adds or removes a single ID
func (s Selection) Toggle(id string) {
	if s[id] {
		delete(s, id)
	} else {
		s[id] = true
	}
}

// ToggleAll selects every visible ID, or clears the selection when
// all visible IDs are already selected
func (s Selection) ToggleAll(visible []string) {
	allSelected := len(visible) > 0 && len(s) == len(visible)
	if allSelected {
		for _, id := range visible {
			if !s[id] {
				allSelected = false
				break
			}
		}
	}

	s.Clear()
	if allSelected {
		return
	}
	for _, id := range visible {
		s[id] = true
	}
}

// Clear empties the selection
func (s Selection) Clear() {
	for id := range s {
		delete(s, id)
	}
}

// Remove drops IDs from the selection
func (s Selection) Remove(ids ...string) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Prune drops IDs that no longer exist
func (s Selection) Prune(existing []string) {
	keep := make(map[string]bool, len(existing))
	for _, id := range existing {
		keep[id] = true
	}
	for id := range s {
		if !keep[id] {
			delete(s, id)
		}
	}
}

// IDs returns the selected IDs in sorted order
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
