package service

import (
	"context"

	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/errors"
)

func reactable(tx *Tx, id domain.MsgId, user domain.UserId, react domain.ReactId) (*domain.Message, error) {
	msg, err := liveMessage(tx, id)
	if err != nil {
		return nil, err
	}
	if !canReact(tx.Dir, msg, user) {
		return nil, errors.InvalidArgument("message %d not found", id)
	}
	if react != domain.ReactThumbsUp {
		return nil, errors.InvalidArgument("unknown react id %d", react)
	}
	return msg, nil
}

func (m *Message) React(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
	err := m.tx.Update(ctx, func(tx *Tx) error {
		msg, err := reactable(tx, id, user, react)
		if err != nil {
			return err
		}
		if msg.HasReacted(react, user) {
			return errors.InvalidArgument("already reacted")
		}
		msg.AddReact(react, user)
		notifyReact(tx, msg, user)
		return nil
	})
	return observe("react", err)
}

func (m *Message) Unreact(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error {
	err := m.tx.Update(ctx, func(tx *Tx) error {
		msg, err := reactable(tx, id, user, react)
		if err != nil {
			return err
		}
		if !msg.HasReacted(react, user) {
			return errors.InvalidArgument("not reacted")
		}
		msg.RemoveReact(react, user)
		return nil
	})
	return observe("unreact", err)
}

func (m *Message) setPinned(ctx context.Context, op string, id domain.MsgId, user domain.UserId, pinned bool) error {
	err := m.tx.Update(ctx, func(tx *Tx) error {
		msg, err := liveMessage(tx, id)
		if err != nil {
			return err
		}
		if msg.Pinned == pinned {
			if pinned {
				return errors.InvalidArgument("message %d is already pinned", id)
			}
			return errors.InvalidArgument("message %d is not pinned", id)
		}
		if !tx.Dir.IsMember(msg.Container, user) {
			return errors.InvalidArgument("message %d not found", id)
		}
		if !canModify(tx.Dir, msg, user) {
			return errors.Forbidden("not allowed to pin message %d", id)
		}
		msg.Pinned = pinned
		return nil
	})
	return observe(op, err)
}

func (m *Message) Pin(ctx context.Context, id domain.MsgId, user domain.UserId) error {
	return m.setPinned(ctx, "pin", id, user, true)
}

func (m *Message) Unpin(ctx context.Context, id domain.MsgId, user domain.UserId) error {
	return m.setPinned(ctx, "unpin", id, user, false)
}
