package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/parley-chat/parley/shared/domain"
)

type NotificationService interface {
	List(ctx context.Context, user domain.UserId) ([]domain.Notification, error)
}

type NotificationFeed struct {
	tx     *Transactor
	limits Limits
}

var _ NotificationService = (*NotificationFeed)(nil)

func NewNotificationFeed(tx *Transactor, limits Limits) *NotificationFeed {
	return &NotificationFeed{tx: tx, limits: limits}
}

// List returns the user's newest notifications by CreatedAt, skipping ones
// dated in the future (tags from messages sent with SendLater). Edits and
// SendLater store entries out of time order, so the list is sorted here.
func (f *NotificationFeed) List(ctx context.Context, user domain.UserId) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := f.tx.View(ctx, func(tx *Tx) error {
		all := slices.Clone(tx.Snap.Notifications[user])
		// stable: equal timestamps keep insertion order, newest insert first
		slices.SortStableFunc(all, func(a, b domain.Notification) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
		for _, n := range all {
			if len(out) == f.limits.NotificationsLimit {
				break
			}
			if n.CreatedAt <= tx.Now {
				out = append(out, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, observe("notifications", err)
	}
	observe("notifications", nil)
	return out, nil
}
