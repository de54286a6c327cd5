package reminder

import (
	"context"
	"fmt"
	"log"
	"sort"

	"planhub/internal/models"
)

// digestEntry accumulates one user's incomplete cards across boards.
type digestEntry struct {
	target models.NotifyTarget
	boards map[string][]models.DigestCard
	total  int
}

// RunDailyDigest collapses every incomplete card into one notification and at
// most one email per user: the daily kanban digest. Cards in done-named lists
// are excluded. No latch is written — a card stays in tomorrow's digest until
// it is completed or moved to a done list.
func (c *Checker) RunDailyDigest(ctx context.Context) error {
	cards, err := c.store.FindIncompleteCards(ctx)
	if err != nil {
		return fmt.Errorf("failed to query incomplete cards: %w", err)
	}

	entries := buildDigest(cards)
	if len(entries) == 0 {
		return nil
	}

	// Stable send order across runs.
	userIDs := make([]int64, 0, len(entries))
	for id := range entries {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	sent := 0
	for _, userID := range userIDs {
		entry := entries[userID]
		if entry.total == 0 {
			// Guards against empty accumulation artifacts.
			continue
		}

		boards := sortedBoards(entry)
		label := boardLabel(boards)
		titles := flatCardTitles(boards)

		if err := c.push.NotifyKanbanDailyReminder(ctx, userID, label, titles, entry.total); err != nil {
			dispatchErrorsTotal.WithLabelValues("kanban_digest", "push").Inc()
			log.Printf("⚠️  [DIGEST] Push failed for user %d: %v", userID, err)
		} else {
			remindersSentTotal.WithLabelValues("kanban_digest", "push").Inc()
		}

		if entry.target.Email != "" {
			if err := c.email.SendKanbanDailyReminderEmail(ctx, entry.target.Email, entry.target.Name, boards); err != nil {
				dispatchErrorsTotal.WithLabelValues("kanban_digest", "email").Inc()
				log.Printf("⚠️  [DIGEST] Email failed for user %d: %v", userID, err)
			} else {
				remindersSentTotal.WithLabelValues("kanban_digest", "email").Inc()
			}
		}

		digestRecipientsTotal.Inc()
		sent++
	}

	log.Printf("📬 [DIGEST] Daily kanban digest sent to %d users (%d cards)", sent, len(cards))
	return nil
}

// buildDigest resolves each card's notify-set and accumulates card summaries
// per user, keyed by board title.
func buildDigest(cards []models.CardContext) map[int64]*digestEntry {
	entries := make(map[int64]*digestEntry)

	for i := range cards {
		cc := &cards[i]
		if cc.Card.Completed || isDoneList(cc.ListTitle) {
			continue
		}

		summary := models.DigestCard{
			BoardTitle: cc.BoardTitle,
			ListTitle:  cc.ListTitle,
			CardTitle:  cc.Card.Title,
			DueDate:    cc.Card.DueDate,
		}

		for _, r := range CardRecipients(&cc.Card, cc.Members) {
			entry, ok := entries[r.ID]
			if !ok {
				entry = &digestEntry{
					target: r,
					boards: make(map[string][]models.DigestCard),
				}
				entries[r.ID] = entry
			}
			entry.boards[cc.BoardTitle] = append(entry.boards[cc.BoardTitle], summary)
			entry.total++
		}
	}

	return entries
}

// sortedBoards flattens an entry's board map into DigestBoards ordered by
// title, so the digest label and email layout are deterministic across runs.
func sortedBoards(entry *digestEntry) []models.DigestBoard {
	titles := make([]string, 0, len(entry.boards))
	for title := range entry.boards {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	boards := make([]models.DigestBoard, 0, len(titles))
	for _, title := range titles {
		boards = append(boards, models.DigestBoard{Title: title, Cards: entry.boards[title]})
	}
	return boards
}

// boardLabel builds the human-readable board label: the single board's title,
// or "<first> và <N-1> bảng khác" when the user's cards span several boards.
func boardLabel(boards []models.DigestBoard) string {
	switch len(boards) {
	case 0:
		return ""
	case 1:
		return boards[0].Title
	default:
		return fmt.Sprintf("%s và %d bảng khác", boards[0].Title, len(boards)-1)
	}
}

func flatCardTitles(boards []models.DigestBoard) []string {
	var titles []string
	for _, b := range boards {
		for _, card := range b.Cards {
			titles = append(titles, card.CardTitle)
		}
	}
	return titles
}
