package service

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/errors"
	"github.com/parley-chat/parley/shared/logger"
)

type MessageService interface {
	Send(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error)
	SendLater(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText, sentAt domain.UnixTime) (domain.MsgId, error)
	Edit(ctx context.Context, id domain.MsgId, editor domain.UserId, text domain.MsgText) error
	Remove(ctx context.Context, id domain.MsgId, requester domain.UserId) error
	Share(ctx context.Context, ogId domain.MsgId, requester domain.UserId, text domain.MsgText, target domain.ShareTarget) (domain.MsgId, error)
	List(ctx context.Context, ref domain.ContainerRef, requester domain.UserId, start int) (*domain.Page, error)
	React(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error
	Unreact(ctx context.Context, id domain.MsgId, user domain.UserId, react domain.ReactId) error
	Pin(ctx context.Context, id domain.MsgId, user domain.UserId) error
	Unpin(ctx context.Context, id domain.MsgId, user domain.UserId) error
}

type Message struct {
	tx     *Transactor
	limits Limits
	log    *slog.Logger
}

var _ MessageService = (*Message)(nil)

func NewMessage(tx *Transactor, limits Limits) *Message {
	return &Message{tx: tx, limits: limits, log: logger.Component("message")}
}

// postMessage stores a new visible message and runs the mention scan.
func postMessage(tx *Tx, data domain.MessageCreationData, sharedFrom *domain.MsgId, previewLen int, source string) *domain.Message {
	msg := &domain.Message{
		Id:         tx.Snap.AllocateMessageId(),
		Container:  data.Container,
		AuthorId:   data.Author,
		Text:       data.Text,
		SentAt:     data.SentAt,
		Visible:    true,
		Reacts:     map[domain.ReactId][]domain.UserId{},
		SharedFrom: sharedFrom,
	}
	tx.Snap.Messages[msg.Id] = msg
	notifyMentions(tx, msg, previewLen)
	messagesCreated.WithLabelValues(string(data.Container.Kind), source).Inc()
	return msg
}

// liveMessage fetches a message that exists, is visible and has been
// delivered. Anything else looks like an unknown id to the caller.
func liveMessage(tx *Tx, id domain.MsgId) (*domain.Message, error) {
	msg, ok := tx.Snap.Messages[id]
	if !ok || !msg.Live(tx.Now) {
		return nil, errors.InvalidArgument("message %d not found", id)
	}
	return msg, nil
}

func (m *Message) checkLength(text string, allowEmpty bool) error {
	n := utf8.RuneCountInString(text)
	if n > m.limits.MaxLength {
		return errors.InvalidArgument("message is longer than %d characters", m.limits.MaxLength)
	}
	if n == 0 && !allowEmpty {
		return errors.InvalidArgument("message is empty")
	}
	return nil
}

func (m *Message) Send(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText) (domain.MsgId, error) {
	var id domain.MsgId
	err := m.tx.Update(ctx, func(tx *Tx) error {
		if err := m.checkLength(text, false); err != nil {
			return err
		}
		if !tx.Dir.Exists(ref) {
			return errors.NotFound("%s %d not found", ref.Kind, ref.Id)
		}
		if !tx.Dir.IsMember(ref, author) {
			return errors.Forbidden("user is not a member of %s %d", ref.Kind, ref.Id)
		}
		msg := postMessage(tx, domain.MessageCreationData{Container: ref, Author: author, Text: text, SentAt: tx.Now}, nil, m.limits.TagPreviewLength, "send")
		id = msg.Id
		return nil
	})
	if err != nil {
		return 0, observe("send", err)
	}
	observe("send", nil)
	m.log.Debug("message sent", "message_id", id, "container", ref.Kind, "container_id", ref.Id)
	return id, nil
}

// SendLater stores the message now with a future SentAt. Until then it is
// excluded from every read and cannot be mutated.
func (m *Message) SendLater(ctx context.Context, ref domain.ContainerRef, author domain.UserId, text domain.MsgText, sentAt domain.UnixTime) (domain.MsgId, error) {
	var id domain.MsgId
	err := m.tx.Update(ctx, func(tx *Tx) error {
		if !tx.Dir.Exists(ref) {
			return errors.NotFound("%s %d not found", ref.Kind, ref.Id)
		}
		if err := m.checkLength(text, false); err != nil {
			return err
		}
		if !tx.Dir.IsMember(ref, author) {
			return errors.Forbidden("user is not a member of %s %d", ref.Kind, ref.Id)
		}
		if sentAt < tx.Now {
			return errors.InvalidArgument("time already passed")
		}
		msg := postMessage(tx, domain.MessageCreationData{Container: ref, Author: author, Text: text, SentAt: sentAt}, nil, m.limits.TagPreviewLength, "later")
		id = msg.Id
		return nil
	})
	if err != nil {
		return 0, observe("send_later", err)
	}
	observe("send_later", nil)
	m.log.Debug("message scheduled", "message_id", id, "sent_at", sentAt)
	return id, nil
}

// modifiable runs the checks shared by edit and remove up to and including
// the permission rule.
func modifiable(tx *Tx, id domain.MsgId, user domain.UserId) (*domain.Message, error) {
	msg, err := liveMessage(tx, id)
	if err != nil {
		return nil, err
	}
	if !tx.Dir.IsMember(msg.Container, user) {
		return nil, errors.NotFound("message %d not found", id)
	}
	if !canModify(tx.Dir, msg, user) {
		return nil, errors.Forbidden("not allowed to modify message %d", id)
	}
	return msg, nil
}

// Edit replaces the body. An empty body removes the message.
func (m *Message) Edit(ctx context.Context, id domain.MsgId, editor domain.UserId, text domain.MsgText) error {
	err := m.tx.Update(ctx, func(tx *Tx) error {
		if err := m.checkLength(text, true); err != nil {
			return err
		}
		msg, err := modifiable(tx, id, editor)
		if err != nil {
			return err
		}
		if text == "" {
			msg.Visible = false
			return nil
		}
		msg.Text = text
		notifyMentions(tx, msg, m.limits.TagPreviewLength)
		return nil
	})
	return observe("edit", err)
}

func (m *Message) Remove(ctx context.Context, id domain.MsgId, requester domain.UserId) error {
	err := m.tx.Update(ctx, func(tx *Tx) error {
		msg, err := modifiable(tx, id, requester)
		if err != nil {
			return err
		}
		msg.Visible = false
		return nil
	})
	if err == nil {
		m.log.Debug("message removed", "message_id", id, "by", requester)
	}
	return observe("remove", err)
}

func supplied(id *int64) bool {
	return id != nil && *id != domain.NoContainer
}

// Share copies a message into another container with optional leading text.
func (m *Message) Share(ctx context.Context, ogId domain.MsgId, requester domain.UserId, text domain.MsgText, target domain.ShareTarget) (domain.MsgId, error) {
	var id domain.MsgId
	err := m.tx.Update(ctx, func(tx *Tx) error {
		if err := m.checkLength(text, true); err != nil {
			return err
		}
		var ref domain.ContainerRef
		switch {
		case supplied(target.ChannelId) && !supplied(target.DmId):
			ref = domain.ChannelRef(*target.ChannelId)
		case supplied(target.DmId) && !supplied(target.ChannelId):
			ref = domain.DmRef(*target.DmId)
		default:
			return errors.InvalidArgument("exactly one of channelId and dmId must be given")
		}
		if !tx.Dir.Exists(ref) {
			return errors.NotFound("%s %d not found", ref.Kind, ref.Id)
		}
		og, err := liveMessage(tx, ogId)
		if err != nil {
			return err
		}
		if !tx.Dir.IsMember(og.Container, requester) {
			return errors.Forbidden("user cannot see message %d", ogId)
		}
		if !tx.Dir.IsMember(ref, requester) {
			return errors.Forbidden("user is not a member of %s %d", ref.Kind, ref.Id)
		}
		body := text + "  " + og.Text
		if err := m.checkLength(body, false); err != nil {
			return err
		}
		msg := postMessage(tx, domain.MessageCreationData{Container: ref, Author: requester, Text: body, SentAt: tx.Now}, &ogId, m.limits.TagPreviewLength, "share")
		id = msg.Id
		return nil
	})
	if err != nil {
		return 0, observe("share", err)
	}
	observe("share", nil)
	return id, nil
}
