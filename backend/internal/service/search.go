package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/errors"
)

type SearchService interface {
	Search(ctx context.Context, user domain.UserId, query string) ([]domain.MessageView, error)
}

type Search struct {
	tx     *Transactor
	limits Limits
}

var _ SearchService = (*Search)(nil)

func NewSearch(tx *Transactor, limits Limits) *Search {
	return &Search{tx: tx, limits: limits}
}

// Search is a case-sensitive substring match over live messages in the
// user's channels and DMs, newest first.
func (s *Search) Search(ctx context.Context, user domain.UserId, query string) ([]domain.MessageView, error) {
	n := utf8.RuneCountInString(query)
	if n < 1 || n > s.limits.MaxLength {
		return nil, observe("search", errors.InvalidArgument("query must be 1 to %d characters", s.limits.MaxLength))
	}

	out := []domain.MessageView{}
	err := s.tx.View(ctx, func(tx *Tx) error {
		visible := make(map[domain.ContainerRef]struct{})
		for _, ref := range tx.Dir.ContainersOf(user) {
			visible[ref] = struct{}{}
		}
		var hits []*domain.Message
		for _, msg := range tx.Snap.Messages {
			if _, ok := visible[msg.Container]; !ok || !msg.Live(tx.Now) {
				continue
			}
			if strings.Contains(msg.Text, query) {
				hits = append(hits, msg)
			}
		}
		sortNewestFirst(hits)
		for _, msg := range hits {
			out = append(out, view(msg, user))
		}
		return nil
	})
	if err != nil {
		return nil, observe("search", err)
	}
	observe("search", nil)
	return out, nil
}
