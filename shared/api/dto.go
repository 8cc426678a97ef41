package api

import "github.com/parley-chat/parley/shared/domain"

// Request and response bodies of the HTTP API.

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SendLaterRequest struct {
	Message  string          `json:"message"`
	TimeSent domain.UnixTime `json:"timeSent" validate:"required"`
}

type EditMessageRequest struct {
	Message string `json:"message"`
}

// ShareMessageRequest: set exactly one of ChannelId and DmId; -1 counts as unset.
type ShareMessageRequest struct {
	Message   string            `json:"message"`
	ChannelId *domain.ChannelId `json:"channelId"`
	DmId      *domain.DmId      `json:"dmId"`
}

type ReactRequest struct {
	ReactId domain.ReactId `json:"reactId" validate:"required"`
}

type StandupStartRequest struct {
	Length *int64 `json:"length" validate:"required"`
}

type StandupSendRequest struct {
	Message string `json:"message"`
}

type MessageIdResponse struct {
	MessageId domain.MsgId `json:"messageId"`
}

type StandupStartResponse struct {
	TimeFinish domain.UnixTime `json:"timeFinish"`
}

// MessageResponse is domain.MessageView plus the rendered body when the
// caller asked for render=html.
type MessageResponse struct {
	domain.MessageView
	Html string `json:"html,omitempty"`
}

type PageResponse struct {
	Messages []MessageResponse `json:"messages"`
	Start    int               `json:"start"`
	End      int               `json:"end"`
}

type NotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type SearchResponse struct {
	Messages []domain.MessageView `json:"messages"`
}
