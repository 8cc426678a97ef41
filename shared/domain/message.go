package domain

import "slices"

type Message struct {
	Id         MsgId                `json:"messageId"`
	Container  ContainerRef         `json:"container"`
	AuthorId   UserId               `json:"uId"`
	Text       MsgText              `json:"message"`
	SentAt     UnixTime             `json:"timeSent"`
	Visible    bool                 `json:"isVisible"`
	Pinned     bool                 `json:"isPinned"`
	Reacts     map[ReactId][]UserId `json:"reacts,omitempty"`
	SharedFrom *MsgId               `json:"sharedMessageId,omitempty"`
}

// Delivered reports whether the message has been sent as of now.
// Deferred messages exist in storage before their time arrives.
func (m *Message) Delivered(now UnixTime) bool {
	return m.SentAt <= now
}

// Live means the message is visible and delivered; only live messages are
// listed, searched or mutated.
func (m *Message) Live(now UnixTime) bool {
	return m.Visible && m.Delivered(now)
}

func (m *Message) HasReacted(kind ReactId, user UserId) bool {
	return slices.Contains(m.Reacts[kind], user)
}

func (m *Message) AddReact(kind ReactId, user UserId) {
	if m.Reacts == nil {
		m.Reacts = make(map[ReactId][]UserId)
	}
	m.Reacts[kind] = append(m.Reacts[kind], user)
}

func (m *Message) RemoveReact(kind ReactId, user UserId) {
	users := m.Reacts[kind]
	idx := slices.Index(users, user)
	if idx < 0 {
		return
	}
	users = slices.Delete(users, idx, idx+1)
	if len(users) == 0 {
		delete(m.Reacts, kind)
		return
	}
	m.Reacts[kind] = users
}

type MessageCreationData struct {
	Container ContainerRef
	Author    UserId
	Text      MsgText
	SentAt    UnixTime
}

// ShareTarget names where a message is copied to. A nil pointer or
// NoContainer both mean "not supplied".
type ShareTarget struct {
	ChannelId *ChannelId
	DmId      *DmId
}

// React summarizes one reaction kind from the perspective of the requester.
type React struct {
	ReactId           ReactId  `json:"reactId"`
	UserIds           []UserId `json:"uIds"`
	IsThisUserReacted bool     `json:"isThisUserReacted"`
}

// MessageView is a message as returned to a particular requester.
type MessageView struct {
	Id         MsgId     `json:"messageId"`
	AuthorId   UserId    `json:"uId"`
	Text       MsgText   `json:"message"`
	SentAt     UnixTime  `json:"timeSent"`
	IsPinned   bool      `json:"isPinned"`
	Reacts     []React   `json:"reacts"`
	ChannelId  ChannelId `json:"channelId"`
	DmId       DmId      `json:"dmId"`
	SharedFrom *MsgId    `json:"sharedMessageId,omitempty"`
}

type Page struct {
	Messages []MessageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}
