package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dori/taskflow/internal/model"
)

// parseQuickAdd turns "Review PR @work !high due:tomorrow" into a task.
// Unrecognized tokens stay in the title. Without an @category the first
// category is used.
func parseQuickAdd(text string, categories []model.Category, today model.Date) (model.Task, error) {
	task := model.Task{Priority: model.PriorityMedium}

	var titleParts []string
	for _, word := range strings.Fields(text) {
		switch {
		// Category (@work, @health, etc.)
		case strings.HasPrefix(word, "@") && len(word) > 1:
			c, ok := model.FindCategory(categories, strings.TrimPrefix(word, "@"))
			if !ok {
				return model.Task{}, fmt.Errorf("unknown category %q", strings.TrimPrefix(word, "@"))
			}
			task.Category = c.Name

		// Priority (!low, !high, etc.)
		case strings.HasPrefix(word, "!"):
			switch strings.ToLower(strings.TrimPrefix(word, "!")) {
			case "low", "l":
				task.Priority = model.PriorityLow
			case "medium", "med", "m":
				task.Priority = model.PriorityMedium
			case "high", "hi", "h":
				task.Priority = model.PriorityHigh
			default:
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			d, ok := model.ParseDueDate(word[len("due:"):], today)
			if !ok {
				titleParts = append(titleParts, word)
				continue
			}
			if d.Before(today) {
				return model.Task{}, errors.New("due date cannot be in the past")
			}
			task.DueDate = &d

		default:
			titleParts = append(titleParts, word)
		}
	}

	task.Title = strings.Join(titleParts, " ")
	if task.Title == "" {
		return model.Task{}, errors.New("task title is required")
	}
	if task.Category == "" {
		if len(categories) == 0 {
			return model.Task{}, errors.New("category is required")
		}
		task.Category = categories[0].Name
	}
	return task, nil
}
