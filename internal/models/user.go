package models

// NotifyTarget is the minimal user identity needed to deliver a reminder.
// Store queries return it fully joined so dispatch never does secondary lookups.
type NotifyTarget struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"` // empty means push-only, skip email dispatch
}

// TargetIDs extracts the user IDs from a recipient set, preserving order.
func TargetIDs(targets []NotifyTarget) []int64 {
	ids := make([]int64, 0, len(targets))
	for _, t := range targets {
		ids = append(ids, t.ID)
	}
	return ids
}
