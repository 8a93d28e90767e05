package theme

import "testing"

func TestNextCyclesThroughAll(t *testing.T) {
	defer SetTheme(Nord)
	SetTheme(Nord)

	seen := map[string]bool{}
	for range Available() {
		next := Next()
		seen[next.Name] = true
		SetTheme(next)
	}
	if len(seen) != len(Available()) {
		t.Errorf("visited %v", seen)
	}
	if Current.Theme.Name != "nord" {
		t.Errorf("should wrap back to nord, got %s", Current.Theme.Name)
	}
}

func TestSetByName(t *testing.T) {
	defer SetTheme(Nord)

	if !SetByName("gruvbox") || Current.Theme.Name != "gruvbox" {
		t.Errorf("SetByName(gruvbox) failed, current %s", Current.Theme.Name)
	}
	if SetByName("solarized") {
		t.Error("unknown theme should not be applied")
	}
	if Current.Theme.Name != "gruvbox" {
		t.Errorf("failed lookup changed theme to %s", Current.Theme.Name)
	}
}

func TestPriorityColor(t *testing.T) {
	if Dracula.PriorityColor(3) != Dracula.PriorityHigh || Dracula.PriorityColor(0) != Dracula.Subtle {
		t.Error("priority colors mismatched")
	}
}
