package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dori/taskflow/internal/model"
	"github.com/dori/taskflow/internal/taskview"
)

var today = model.MustParseDate("2024-03-10") // a Sunday

func TestParseQuickAdd(t *testing.T) {
	categories := model.DefaultCategories()

	tests := []struct {
		input        string
		wantTitle    string
		wantCategory string
		wantPriority model.Priority
		wantDue      string
	}{
		{"Buy groceries", "Buy groceries", "Work", model.PriorityMedium, ""},
		{"Review PR @work !high due:tomorrow", "Review PR", "Work", model.PriorityHigh, "2024-03-11"},
		{"Eggs @SHOPPING !l", "Eggs", "Shopping", model.PriorityLow, ""},
		{"Run due:fri @health", "Run", "Health", model.PriorityMedium, "2024-03-15"},
		{"Call !asap", "Call !asap", "Work", model.PriorityMedium, ""},
		{"Plan due:someday", "Plan due:someday", "Work", model.PriorityMedium, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			task, err := parseQuickAdd(tt.input, categories, today)
			if err != nil {
				t.Fatalf("parseQuickAdd: %v", err)
			}
			if task.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", task.Title, tt.wantTitle)
			}
			if task.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", task.Category, tt.wantCategory)
			}
			if task.Priority != tt.wantPriority {
				t.Errorf("Priority = %s, want %s", task.Priority, tt.wantPriority)
			}
			got := ""
			if task.DueDate != nil {
				got = task.DueDate.String()
			}
			if got != tt.wantDue {
				t.Errorf("DueDate = %q, want %q", got, tt.wantDue)
			}
		})
	}
}

func TestParseQuickAddErrors(t *testing.T) {
	categories := model.DefaultCategories()
	tests := []struct {
		input string
		want  string
	}{
		{"@work !high", "title is required"},
		{"Thing @garden", `unknown category "garden"`},
		{"Old due:2024-03-01", "cannot be in the past"},
	}
	for _, tt := range tests {
		_, err := parseQuickAdd(tt.input, categories, today)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("parseQuickAdd(%q) error = %v, want %q", tt.input, err, tt.want)
		}
	}

	if _, err := parseQuickAdd("Thing", nil, today); err == nil {
		t.Error("expected an error without categories")
	}
}

func TestPrintTasks(t *testing.T) {
	due := model.MustParseDate("2024-03-08")
	tasks := []model.Task{
		{ID: "1", Title: "Gym", Category: "Health", Priority: model.PriorityMedium, DueDate: &due},
		{ID: "2", Title: "Done thing", Category: "Work", Priority: model.PriorityLow, Completed: true},
	}
	var buf bytes.Buffer
	printTasks(&buf, taskview.Derive(tasks, taskview.State{}, today), today)

	out := buf.String()
	for _, want := range []string{"[ ] Gym", "overdue: 2 days ago", "[x] Done thing", "1 of 2 done (50%)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := run([]string{"version"}, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "taskflow v") {
		t.Errorf("version output = %q", buf.String())
	}
}
