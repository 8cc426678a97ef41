package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/parley-chat/parley/shared/domain"
	"github.com/parley-chat/parley/shared/errors"
	"github.com/parley-chat/parley/shared/logger"
)

type StandupService interface {
	Start(ctx context.Context, channel domain.ChannelId, user domain.UserId, length int64) (domain.UnixTime, error)
	Active(ctx context.Context, channel domain.ChannelId, user domain.UserId) (*domain.StandupStatus, error)
	Send(ctx context.Context, channel domain.ChannelId, user domain.UserId, text domain.MsgText) error
}

// TaskScheduler runs a keyed one-shot task at a given time.
type TaskScheduler interface {
	Schedule(key string, at time.Time, task func(ctx context.Context))
}

type Standup struct {
	tx        *Transactor
	scheduler TaskScheduler
	limits    Limits
	log       *slog.Logger
}

var _ StandupService = (*Standup)(nil)

func NewStandup(tx *Transactor, scheduler TaskScheduler, limits Limits) *Standup {
	return &Standup{tx: tx, scheduler: scheduler, limits: limits, log: logger.Component("standup")}
}

func standupKey(channel domain.ChannelId) string {
	return fmt.Sprintf("standup/%d", channel)
}

// running returns the channel's standup if its window is still open.
func running(ch *domain.Channel, now domain.UnixTime) *domain.Standup {
	if ch.Standup == nil || ch.Standup.FinishAt <= now {
		return nil
	}
	return ch.Standup
}

func channelOf(tx *Tx, id domain.ChannelId) (*domain.Channel, error) {
	ch, ok := tx.Snap.Channels[id]
	if !ok {
		return nil, errors.NotFound("channel %d not found", id)
	}
	return ch, nil
}

func (s *Standup) Start(ctx context.Context, channel domain.ChannelId, user domain.UserId, length int64) (domain.UnixTime, error) {
	var finishAt domain.UnixTime
	err := s.tx.Update(ctx, func(tx *Tx) error {
		ch, err := channelOf(tx, channel)
		if err != nil {
			return err
		}
		if length < 0 {
			return errors.InvalidArgument("length is negative")
		}
		if length > math.MaxInt64-tx.Now {
			return errors.InvalidArgument("length is too large")
		}
		if running(ch, tx.Now) != nil {
			return errors.InvalidArgument("a standup is already running in channel %d", channel)
		}
		if !ch.IsMember(user) {
			return errors.Forbidden("user is not a member of channel %d", channel)
		}
		// a finished window whose flush has not run yet is posted first
		s.flush(tx, ch)
		finishAt = tx.Now + length
		ch.Standup = &domain.Standup{Starter: user, FinishAt: finishAt, Buffer: []string{}}
		return nil
	})
	if err != nil {
		return 0, observe("standup_start", err)
	}
	observe("standup_start", nil)
	s.schedule(channel, finishAt)
	s.log.Info("standup started", "channel_id", channel, "finish_at", finishAt)
	return finishAt, nil
}

func (s *Standup) Active(ctx context.Context, channel domain.ChannelId, user domain.UserId) (*domain.StandupStatus, error) {
	status := &domain.StandupStatus{}
	err := s.tx.View(ctx, func(tx *Tx) error {
		ch, err := channelOf(tx, channel)
		if err != nil {
			return err
		}
		if !ch.IsMember(user) {
			return errors.Forbidden("user is not a member of channel %d", channel)
		}
		if st := running(ch, tx.Now); st != nil {
			finish := st.FinishAt
			status.IsActive = true
			status.TimeFinish = &finish
		}
		return nil
	})
	if err != nil {
		return nil, observe("standup_active", err)
	}
	observe("standup_active", nil)
	return status, nil
}

func (s *Standup) Send(ctx context.Context, channel domain.ChannelId, user domain.UserId, text domain.MsgText) error {
	err := s.tx.Update(ctx, func(tx *Tx) error {
		ch, err := channelOf(tx, channel)
		if err != nil {
			return err
		}
		if len([]rune(text)) > s.limits.MaxLength {
			return errors.InvalidArgument("message is longer than %d characters", s.limits.MaxLength)
		}
		st := running(ch, tx.Now)
		if st == nil {
			return errors.InvalidArgument("no standup is running in channel %d", channel)
		}
		if !ch.IsMember(user) {
			return errors.Forbidden("user is not a member of channel %d", channel)
		}
		st.Buffer = append(st.Buffer, tx.Dir.Handle(user)+": "+text)
		return nil
	})
	return observe("standup_send", err)
}

func (s *Standup) schedule(channel domain.ChannelId, finishAt domain.UnixTime) {
	s.scheduler.Schedule(standupKey(channel), time.Unix(finishAt, 0), func(ctx context.Context) {
		if err := s.Flush(ctx, channel, finishAt); err != nil {
			s.log.Error("standup flush failed", "channel_id", channel, "error", err)
		}
	})
}

// Flush ends the standup that finishes at finishAt. Running it twice, or
// after a newer standup replaced that one, does nothing.
func (s *Standup) Flush(ctx context.Context, channel domain.ChannelId, finishAt domain.UnixTime) error {
	return s.tx.Update(ctx, func(tx *Tx) error {
		ch, ok := tx.Snap.Channels[channel]
		if !ok || ch.Standup == nil || ch.Standup.FinishAt != finishAt {
			return nil
		}
		s.flush(tx, ch)
		return nil
	})
}

// flush posts the buffered lines as one message from the starter and clears
// the standup. Empty standups post nothing.
func (s *Standup) flush(tx *Tx, ch *domain.Channel) {
	st := ch.Standup
	if st == nil {
		return
	}
	ch.Standup = nil
	if len(st.Buffer) == 0 {
		return
	}
	if !ch.IsMember(st.Starter) {
		s.log.Warn("standup starter left the channel, summary dropped", "channel_id", ch.Id, "lines", len(st.Buffer))
		return
	}
	body := strings.Join(st.Buffer, "\r\n")
	if runes := []rune(body); len(runes) > s.limits.MaxLength {
		s.log.Warn("standup summary truncated", "channel_id", ch.Id, "length", len(runes))
		body = string(runes[:s.limits.MaxLength])
	}
	data := domain.MessageCreationData{Container: domain.ChannelRef(ch.Id), Author: st.Starter, Text: body, SentAt: st.FinishAt}
	postMessage(tx, data, nil, s.limits.TagPreviewLength, "standup")
}

// Recover schedules a flush for every standup in the stored snapshot. Call it
// once on startup, before serving requests.
func (s *Standup) Recover(ctx context.Context) (int, error) {
	type pending struct {
		channel  domain.ChannelId
		finishAt domain.UnixTime
	}
	var found []pending
	err := s.tx.View(ctx, func(tx *Tx) error {
		for id, ch := range tx.Snap.Channels {
			if ch.Standup != nil {
				found = append(found, pending{id, ch.Standup.FinishAt})
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for _, p := range found {
		s.schedule(p.channel, p.finishAt)
	}
	if len(found) > 0 {
		s.log.Info("rescheduled pending standups", "count", len(found))
	}
	return len(found), nil
}
