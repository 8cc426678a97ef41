package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/errors"
)

// liveIn returns the live messages of one container, newest first. Messages
// sent in the same second are ordered by descending id.
func liveIn(tx *Tx, ref domain.ContainerRef) []*domain.Message {
	var msgs []*domain.Message
	for _, msg := range tx.Snap.Messages {
		if msg.Container == ref && msg.Live(tx.Now) {
			msgs = append(msgs, msg)
		}
	}
	sortNewestFirst(msgs)
	return msgs
}

func sortNewestFirst(msgs []*domain.Message) {
	slices.SortFunc(msgs, func(a, b *domain.Message) int {
		if c := cmp.Compare(b.SentAt, a.SentAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Id, a.Id)
	})
}

// view renders msg for requester. Only one react kind exists, so Reacts has
// zero or one entry.
func view(msg *domain.Message, requester domain.UserId) domain.MessageView {
	v := domain.MessageView{
		Id:         msg.Id,
		AuthorId:   msg.AuthorId,
		Text:       msg.Text,
		SentAt:     msg.SentAt,
		IsPinned:   msg.Pinned,
		Reacts:     []domain.React{},
		ChannelId:  msg.Container.ChannelId(),
		DmId:       msg.Container.DmId(),
		SharedFrom: msg.SharedFrom,
	}
	if users := msg.Reacts[domain.ReactThumbsUp]; len(users) > 0 {
		v.Reacts = append(v.Reacts, domain.React{
			ReactId:           domain.ReactThumbsUp,
			UserIds:           slices.Clone(users),
			IsThisUserReacted: slices.Contains(users, requester),
		})
	}
	return v
}

// List returns up to one page of messages starting at index start, newest
// first. End is start+PageSize when more messages follow, otherwise -1.
func (m *Message) List(ctx context.Context, ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error) {
	var page *domain.Page
	err := m.tx.View(ctx, func(tx *Tx) error {
		if !tx.Dir.Exists(ref) {
			return errors.NotFound("%s %d not found", ref.Kind, ref.Id)
		}
		if !tx.Dir.IsMember(ref, requester) {
			return errors.Forbidden("user is not a member of %s %d", ref.Kind, ref.Id)
		}
		msgs := liveIn(tx, ref)
		total := len(msgs)
		if start < 0 || start > total {
			return errors.InvalidArgument("start %d is out of range, %d messages", start, total)
		}

		size := m.limits.PageSize
		end := -1
		stop := total
		if total > start+size {
			end = start + size
			stop = end
		}
		page = &domain.Page{Messages: make([]domain.MessageView, 0, stop-start), Start: start, End: end}
		for _, msg := range msgs[start:stop] {
			page.Messages = append(page.Messages, view(msg, requester))
		}
		return nil
	})
	if err != nil {
		return nil, observe("list", err)
	}
	observe("list", nil)
	return page, nil
}
