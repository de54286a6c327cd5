package reminder

import (
	"strings"

	"planhub/internal/models"
)

// ProjectRecipients assembles the deduplicated notify-set for a project
// deadline: manager, then implementers, then followers. The first occurrence
// of a user id wins, so the manager's identity takes precedence on overlap.
func ProjectRecipients(p *models.Project) []models.NotifyTarget {
	seen := make(map[int64]bool)
	var targets []models.NotifyTarget

	add := func(t models.NotifyTarget) {
		if seen[t.ID] {
			return
		}
		seen[t.ID] = true
		targets = append(targets, t)
	}

	add(p.Manager)
	for _, t := range p.Implementers {
		add(t)
	}
	for _, t := range p.Followers {
		add(t)
	}
	return targets
}

// CardRecipients resolves a kanban card's notify-set with assignee priority:
// explicit assignees if any exist, otherwise the whole board membership.
// Resolution is per card, so cards on the same board can target different sets.
func CardRecipients(card *models.KanbanCard, members []models.NotifyTarget) []models.NotifyTarget {
	source := card.Assignees
	if len(source) == 0 {
		source = members
	}

	seen := make(map[int64]bool)
	var targets []models.NotifyTarget
	for _, t := range source {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		targets = append(targets, t)
	}
	return targets
}

// doneListTitles are list names whose cards never appear in the daily digest.
var doneListTitles = []string{"done", "hoàn thành"}

// isDoneList reports whether a list title marks finished work.
func isDoneList(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	for _, done := range doneListTitles {
		if normalized == done {
			return true
		}
	}
	return false
}
