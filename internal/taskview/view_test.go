package taskview

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/dori/taskflow/internal/model"
)

var today = model.MustParseDate("2024-03-10")

func due(s string) *model.Date {
	d := model.MustParseDate(s)
	return &d
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func fixture() []model.Task {
	return []model.Task{
		{ID: "1", Title: "Write report", Category: "Work", Priority: model.PriorityHigh, DueDate: due("2024-03-10")},
		{ID: "2", Title: "Gym", Category: "Health", Priority: model.PriorityMedium, DueDate: due("2024-03-08")},
		{ID: "3", Title: "Groceries", Category: "Shopping", Priority: model.PriorityLow, Notes: "eggs"},
		{ID: "4", Title: "Call mom", Category: "Personal", Priority: model.PriorityHigh, Completed: true, DueDate: due("2024-03-01")},
		{ID: "5", Title: "Plan sprint", Category: "Work", Priority: model.PriorityMedium, DueDate: due("2024-03-15")},
		{ID: "6", Title: "Old invoice", Category: "Work", Priority: model.PriorityLow, DueDate: due("2024-02-01"), Completed: true},
	}
}

func TestPriorityBeatsMissingDate(t *testing.T) {
	tasks := []model.Task{
		{ID: "1", Priority: model.PriorityHigh},
		{ID: "2", Priority: model.PriorityMedium, DueDate: due("2024-01-01")},
	}
	got := ids(Apply(tasks, State{Filter: model.FilterAll}, today))
	if want := []string{"1", "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortOrder(t *testing.T) {
	got := ids(Apply(fixture(), State{Filter: model.FilterAll}, today))
	// open High, open Medium by date, open Low, then completed High, completed Low
	want := []string{"1", "2", "5", "3", "4", "6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortDatedBeforeUndated(t *testing.T) {
	tasks := []model.Task{
		{ID: "a", Priority: model.PriorityMedium},
		{ID: "b", Priority: model.PriorityMedium, DueDate: due("2024-05-01")},
		{ID: "c", Priority: model.PriorityMedium},
		{ID: "d", Priority: model.PriorityMedium, DueDate: due("2024-04-01")},
	}
	Sort(tasks)
	if got, want := ids(tasks), []string{"d", "b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	priorities := model.Priorities()

	for round := 0; round < 200; round++ {
		n := rng.Intn(20)
		tasks := make([]model.Task, n)
		for i := range tasks {
			tasks[i] = model.Task{
				ID:        fmt.Sprintf("%d", i),
				Priority:  priorities[rng.Intn(len(priorities))],
				Completed: rng.Intn(2) == 0,
			}
			if rng.Intn(3) > 0 {
				tasks[i].DueDate = due(fmt.Sprintf("2024-03-%02d", 1+rng.Intn(28)))
			}
		}

		sorted := append([]model.Task(nil), tasks...)
		Sort(sorted)

		position := make(map[string]int, n)
		for i, task := range tasks {
			position[task.ID] = i
		}

		for i := 1; i < len(sorted); i++ {
			prev, cur := sorted[i-1], sorted[i]
			if prev.Completed && !cur.Completed {
				t.Fatalf("round %d: completed task %s precedes incomplete %s", round, prev.ID, cur.ID)
			}
			if prev.Completed == cur.Completed && prev.Priority.Weight() < cur.Priority.Weight() {
				t.Fatalf("round %d: %s (%s) precedes %s (%s)", round, prev.ID, prev.Priority, cur.ID, cur.Priority)
			}
			// stability: equal keys keep input order
			if Compare(prev, cur) == 0 && position[prev.ID] > position[cur.ID] {
				t.Fatalf("round %d: sort not stable for %s and %s", round, prev.ID, cur.ID)
			}
		}
	}
}

func TestApplyFilters(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  []string
	}{
		{"all", State{Filter: model.FilterAll}, []string{"1", "2", "5", "3", "4", "6"}},
		{"today", State{Filter: model.FilterToday}, []string{"1"}},
		{"upcoming", State{Filter: model.FilterUpcoming}, []string{"5"}},
		{"overdue", State{Filter: model.FilterOverdue}, []string{"2"}},
		{"completed", State{Filter: model.FilterCompleted}, []string{"4", "6"}},
		{"pending", State{Filter: model.FilterPending}, []string{"1", "2", "5", "3"}},
		{"category", State{Filter: model.FilterAll, Category: "Work"}, []string{"1", "5", "6"}},
		{"category and status", State{Filter: model.FilterPending, Category: "Work"}, []string{"1", "5"}},
		{"search notes", State{Search: "EGGS"}, []string{"3"}},
		{"search category", State{Search: "work"}, []string{"1", "5", "6"}},
		{"search with category", State{Search: "plan", Category: "Health"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(fixture(), tt.state, today))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	tasks := fixture()
	before := ids(tasks)
	Apply(tasks, State{}, today)
	if after := ids(tasks); !reflect.DeepEqual(before, after) {
		t.Errorf("input reordered: %v", after)
	}
}

func TestCountsIgnoreCategoryAndSearch(t *testing.T) {
	all := Derive(fixture(), State{}, today)
	narrowed := Derive(fixture(), State{Category: "Health", Search: "gym", Filter: model.FilterOverdue}, today)

	want := Counts{
		model.FilterAll:       6,
		model.FilterToday:     1,
		model.FilterUpcoming:  1,
		model.FilterOverdue:   1,
		model.FilterCompleted: 2,
		model.FilterPending:   4,
	}
	if !reflect.DeepEqual(all.Counts, want) {
		t.Errorf("counts = %v, want %v", all.Counts, want)
	}
	if !reflect.DeepEqual(narrowed.Counts, want) {
		t.Errorf("narrowed counts = %v, want %v", narrowed.Counts, want)
	}
	if len(narrowed.Tasks) != 1 || narrowed.Tasks[0].ID != "2" {
		t.Errorf("narrowed tasks = %v", ids(narrowed.Tasks))
	}
}

func TestProgress(t *testing.T) {
	r := Derive(fixture(), State{}, today)
	if r.Completed != 2 || r.Total != 6 {
		t.Errorf("completed/total = %d/%d", r.Completed, r.Total)
	}
	if r.Progress < 33.3 || r.Progress > 33.4 {
		t.Errorf("progress = %v", r.Progress)
	}
	if Progress(nil) != 0 {
		t.Error("progress of no tasks should be 0")
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("a")
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("ids = %v", got)
	}

	visible := []string{"a", "b", "c"}
	s.ToggleAll(visible)
	if got := s.IDs(); !reflect.DeepEqual(got, visible) {
		t.Errorf("after select all = %v", got)
	}
	s.ToggleAll(visible)
	if len(s) != 0 {
		t.Errorf("second toggle all should clear, got %v", s.IDs())
	}

	s.ToggleAll(visible)
	s.Prune([]string{"c", "d"})
	if got := s.IDs(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("after prune = %v", got)
	}
}
