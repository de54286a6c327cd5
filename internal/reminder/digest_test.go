package reminder

import (
	"context"
	"testing"
	"time"

	"planhub/internal/models"
)

func cardCtx(cardID int64, cardTitle, boardTitle, listTitle string, assignees, members []models.NotifyTarget) models.CardContext {
	return models.CardContext{
		Card: models.KanbanCard{
			ID:        cardID,
			Title:     cardTitle,
			Assignees: assignees,
		},
		BoardTitle: boardTitle,
		ListTitle:  listTitle,
		Members:    members,
	}
}

func TestRunDailyDigest_Consolidation(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)
	user := []models.NotifyTarget{{ID: 1, Name: "An", Email: "an@example.com"}}

	st := newFakeStore()
	st.incomplete = []models.CardContext{
		cardCtx(1, "Fix login", "Alpha", "Doing", user, nil),
		cardCtx(2, "Update docs", "Alpha", "To Do", user, nil),
		cardCtx(3, "Ship v2", "Beta", "Doing", user, nil),
	}
	push := &fakePush{}
	email := &fakeEmail{}
	c := newTestChecker(st, push, email, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	// 3 cards across 2 boards collapse into exactly one push and one email.
	if len(push.digests) != 1 {
		t.Fatalf("expected 1 digest push, got %d", len(push.digests))
	}
	d := push.digests[0]
	if d.total != 3 {
		t.Errorf("expected total 3 cards, got %d", d.total)
	}
	if len(d.titles) != 3 {
		t.Errorf("expected 3 flat card titles, got %v", d.titles)
	}
	if d.label != "Alpha và 1 bảng khác" {
		t.Errorf("unexpected board label %q", d.label)
	}

	if len(email.digestEmails) != 1 {
		t.Fatalf("expected 1 digest email, got %d", len(email.digestEmails))
	}
	sum := 0
	for _, b := range email.digestEmails[0].boards {
		sum += len(b.Cards)
	}
	if sum != 3 {
		t.Errorf("expected email breakdown to sum to 3 cards, got %d", sum)
	}
}

func TestRunDailyDigest_SingleBoardLabel(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)
	user := []models.NotifyTarget{{ID: 1, Name: "An", Email: "an@example.com"}}

	st := newFakeStore()
	st.incomplete = []models.CardContext{
		cardCtx(1, "Fix login", "Alpha", "Doing", user, nil),
		cardCtx(2, "Update docs", "Alpha", "To Do", user, nil),
	}
	push := &fakePush{}
	c := newTestChecker(st, push, &fakeEmail{}, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	if push.digests[0].label != "Alpha" {
		t.Errorf("single-board label should be the board title, got %q", push.digests[0].label)
	}
}

func TestRunDailyDigest_LabelUsesSortedBoardOrder(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)
	user := []models.NotifyTarget{{ID: 1, Name: "An", Email: ""}}

	st := newFakeStore()
	// Insertion order Zulu first; the label must still start with the
	// lexicographically first board.
	st.incomplete = []models.CardContext{
		cardCtx(1, "Z card", "Zulu", "Doing", user, nil),
		cardCtx(2, "A card", "Alpha", "Doing", user, nil),
		cardCtx(3, "M card", "Mike", "Doing", user, nil),
	}
	push := &fakePush{}
	c := newTestChecker(st, push, &fakeEmail{}, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	if push.digests[0].label != "Alpha và 2 bảng khác" {
		t.Errorf("unexpected label %q", push.digests[0].label)
	}
}

func TestRunDailyDigest_DoneListExcluded(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)
	user := []models.NotifyTarget{{ID: 1, Name: "An", Email: "an@example.com"}}

	st := newFakeStore()
	st.incomplete = []models.CardContext{
		cardCtx(1, "Shipped", "Alpha", "Hoàn thành", user, nil), // done list, excluded
		cardCtx(2, "Also shipped", "Alpha", "DONE", user, nil),  // done list, excluded
		cardCtx(3, "Still open", "Alpha", "Doing", user, nil),
	}
	push := &fakePush{}
	c := newTestChecker(st, push, &fakeEmail{}, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	if len(push.digests) != 1 {
		t.Fatalf("expected 1 digest push, got %d", len(push.digests))
	}
	if push.digests[0].total != 1 {
		t.Errorf("expected only non-done cards counted, got %d", push.digests[0].total)
	}
}

func TestRunDailyDigest_AssigneeScopedPerCard(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)
	x := models.NotifyTarget{ID: 1, Name: "X", Email: "x@example.com"}
	y := models.NotifyTarget{ID: 2, Name: "Y", Email: "y@example.com"}
	members := []models.NotifyTarget{x, y}

	st := newFakeStore()
	st.incomplete = []models.CardContext{
		// Assigned card goes only to X; unassigned card fans out to the board.
		cardCtx(1, "Assigned card", "Alpha", "Doing", []models.NotifyTarget{x}, members),
		cardCtx(2, "Unassigned card", "Alpha", "Doing", nil, members),
	}
	push := &fakePush{}
	c := newTestChecker(st, push, &fakeEmail{}, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	if len(push.digests) != 2 {
		t.Fatalf("expected digests for 2 users, got %d", len(push.digests))
	}
	// Sorted by user id: X first with both cards, then Y with one.
	if push.digests[0].userID != 1 || push.digests[0].total != 2 {
		t.Errorf("expected user 1 with 2 cards, got user %d with %d", push.digests[0].userID, push.digests[0].total)
	}
	if push.digests[1].userID != 2 || push.digests[1].total != 1 {
		t.Errorf("expected user 2 with 1 card, got user %d with %d", push.digests[1].userID, push.digests[1].total)
	}
}

func TestRunDailyDigest_NoCardsNoSends(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, testLoc)

	st := newFakeStore()
	push := &fakePush{}
	email := &fakeEmail{}
	c := newTestChecker(st, push, email, now)

	if err := c.RunDailyDigest(context.Background()); err != nil {
		t.Fatalf("digest failed: %v", err)
	}

	if len(push.digests) != 0 || len(email.digestEmails) != 0 {
		t.Errorf("expected no sends for empty board set")
	}
}
