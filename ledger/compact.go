package ledger

import "context"

// Compact merges every group of records sharing a (user, day) key into the
// first record of the group and rewrites the store. It returns the number
// of rows dropped. A store without duplicates is not rewritten.
func (l *Ledger) Compact(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.store.LoadAll(ctx)
	if err != nil {
		return 0, storeErr("load", err)
	}

	first := make(map[Key]int, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		i, seen := first[r.Key()]
		if !seen {
			first[r.Key()] = len(out)
			out = append(out, r)
			continue
		}
		if out[i].fill(r) {
			if err := l.derive(&out[i]); err != nil {
				// Leave the merged times in place; the user can correct
				// them with a manual update.
				l.logger.Warn("compact: cannot derive worked duration",
					"user", r.UserID, "day", r.Day, "error", err)
			}
		}
	}

	dropped := len(records) - len(out)
	if dropped == 0 {
		return 0, nil
	}
	if err := l.store.RewriteAll(ctx, out); err != nil {
		return 0, storeErr("rewrite", err)
	}
	l.logger.Info("store compacted", "dropped", dropped, "records", len(out))
	return dropped, nil
}
