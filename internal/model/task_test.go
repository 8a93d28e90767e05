package model

import (
	"encoding/json"
	"testing"
	"time"
)

func datePtr(s string) *Date {
	d := MustParseDate(s)
	return &d
}

func TestFilterMatches(t *testing.T) {
	today := MustParseDate("2024-03-10")

	tests := []struct {
		name   string
		task   Task
		filter Filter
		want   bool
	}{
		{"all keeps undated", Task{}, FilterAll, true},
		{"today on due day", Task{DueDate: datePtr("2024-03-10")}, FilterToday, true},
		{"today rejects tomorrow", Task{DueDate: datePtr("2024-03-11")}, FilterToday, false},
		{"today rejects undated", Task{}, FilterToday, false},
		{"upcoming after today", Task{DueDate: datePtr("2024-03-11")}, FilterUpcoming, true},
		{"upcoming rejects today", Task{DueDate: datePtr("2024-03-10")}, FilterUpcoming, false},
		{"upcoming rejects undated", Task{}, FilterUpcoming, false},
		{"overdue past and open", Task{DueDate: datePtr("2024-03-09")}, FilterOverdue, true},
		{"overdue ignores completed", Task{DueDate: datePtr("2024-03-09"), Completed: true}, FilterOverdue, false},
		{"overdue rejects today", Task{DueDate: datePtr("2024-03-10")}, FilterOverdue, false},
		{"completed", Task{Completed: true}, FilterCompleted, true},
		{"pending", Task{Completed: false}, FilterPending, true},
		{"pending rejects completed", Task{Completed: true}, FilterPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.task, today); got != tt.want {
				t.Errorf("%s.Matches() = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	if f, ok := ParseFilter(""); !ok || f != FilterAll {
		t.Errorf("empty filter = %q, %v; want all", f, ok)
	}
	if f, ok := ParseFilter("Overdue"); !ok || f != FilterOverdue {
		t.Errorf("ParseFilter(Overdue) = %q, %v", f, ok)
	}
	if _, ok := ParseFilter("someday"); ok {
		t.Error("unknown filter should not parse")
	}
	if FilterPending.Next() != FilterAll || FilterAll.Prev() != FilterPending {
		t.Error("filter cycling should wrap around")
	}
}

func TestPriorityWeight(t *testing.T) {
	if !(PriorityHigh.Weight() > PriorityMedium.Weight() && PriorityMedium.Weight() > PriorityLow.Weight()) {
		t.Error("weights must order High > Medium > Low")
	}
	if p, ok := ParsePriority("H"); !ok || p != PriorityHigh {
		t.Errorf("ParsePriority(H) = %q, %v", p, ok)
	}
	if _, ok := ParsePriority("urgent"); ok {
		t.Error("urgent is not a priority")
	}
}

func TestTaskMatches(t *testing.T) {
	task := Task{Title: "Buy groceries", Category: "Shopping", Notes: "Milk and EGGS"}
	for _, q := range []string{"", "buy", "SHOP", "eggs", "  milk "} {
		if !task.Matches(q) {
			t.Errorf("Matches(%q) = false, want true", q)
		}
	}
	if task.Matches("work") {
		t.Error("Matches(work) = true, want false")
	}
}

func TestTaskPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	orig := Task{ID: "1", Title: "Old", Priority: PriorityLow, DueDate: datePtr("2024-02-01"), CreatedAt: created}

	title := "New"
	high := PriorityHigh
	got := TaskPatch{Title: &title, Priority: &high}.Apply(orig)
	if got.Title != "New" || got.Priority != PriorityHigh {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.ID != "1" || !got.CreatedAt.Equal(created) {
		t.Error("id and createdAt must survive a patch")
	}
	if got.DueDate == orig.DueDate {
		t.Error("patched task must not share the due date pointer")
	}

	cleared := TaskPatch{ClearDueDate: true}.Apply(orig)
	if cleared.DueDate != nil {
		t.Error("ClearDueDate should remove the due date")
	}
}

func TestDateJSON(t *testing.T) {
	task := Task{ID: "1", DueDate: datePtr("2024-01-15")}
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatal(err)
	}
	var back Task
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.DueDate == nil || back.DueDate.String() != "2024-01-15" {
		t.Errorf("due date round trip = %v", back.DueDate)
	}

	if err := json.Unmarshal([]byte(`{"dueDate":"15/01/2024"}`), &back); err == nil {
		t.Error("expected error for malformed due date")
	}
}

func TestParseDueDate(t *testing.T) {
	// 2024-03-10 is a Sunday
	today := MustParseDate("2024-03-10")

	tests := []struct {
		in   string
		want string
	}{
		{"today", "2024-03-10"},
		{"tomorrow", "2024-03-11"},
		{"mon", "2024-03-11"},
		{"sunday", "2024-03-17"},
		{"nextweek", "2024-03-17"},
		{"2024-12-25", "2024-12-25"},
		{"12/25/2024", "2024-12-25"},
		{"Apr 1", "2024-04-01"},
	}
	for _, tt := range tests {
		got, ok := ParseDueDate(tt.in, today)
		if !ok {
			t.Errorf("ParseDueDate(%q) failed", tt.in)
			continue
		}
		if got.String() != tt.want {
			t.Errorf("ParseDueDate(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	if _, ok := ParseDueDate("someday", today); ok {
		t.Error("someday should not parse")
	}
}
