package ledger

import (
	"context"
	"strings"
)

// Purge deletes every record of userID and returns how many were removed.
// Purging a user with no records is a no-op and does not touch the store.
func (l *Ledger) Purge(ctx context.Context, userID UserID) (int, error) {
	if strings.TrimSpace(string(userID)) == "" {
		return 0, &ValidationError{Field: "user", Value: string(userID), Err: ErrEmptyUser}
	}

	removed, err := l.purge(ctx, userID)
	if err != nil {
		l.logger.Error("purge failed", "user", userID, "error", err)
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}

	l.logger.Info("user records purged", "user", userID, "removed", removed)
	if err := l.notifier.UserPurged(ctx, userID, removed); err != nil {
		l.logger.Warn("purge notification failed", "user", userID, "error", err)
	}
	return removed, nil
}

func (l *Ledger) purge(ctx context.Context, userID UserID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.store.LoadAll(ctx)
	if err != nil {
		return 0, storeErr("load", err)
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if r.UserID != userID {
			kept = append(kept, r)
		}
	}
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := l.store.RewriteAll(ctx, kept); err != nil {
		return 0, storeErr("rewrite", err)
	}
	return removed, nil
}
