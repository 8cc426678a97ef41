package domain

// Snapshot is the whole persisted state. Stores load and save it atomically;
// the service mutates a freshly loaded copy and discards it on failure.
type Snapshot struct {
	NextMessageId MsgId                     `json:"nextMessageId"`
	Users         map[UserId]*User          `json:"users"`
	Channels      map[ChannelId]*Channel    `json:"channels"`
	Dms           map[DmId]*Dm              `json:"dms"`
	Messages      map[MsgId]*Message        `json:"messages"`
	Notifications map[UserId][]Notification `json:"notifications"`
}

func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.Normalize()
	return s
}

// Normalize fills nil maps so callers never have to check. Decoders leave
// empty maps nil.
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = make(map[UserId]*User)
	}
	if s.Channels == nil {
		s.Channels = make(map[ChannelId]*Channel)
	}
	if s.Dms == nil {
		s.Dms = make(map[DmId]*Dm)
	}
	if s.Messages == nil {
		s.Messages = make(map[MsgId]*Message)
	}
	if s.Notifications == nil {
		s.Notifications = make(map[UserId][]Notification)
	}
}

// AllocateMessageId hands out the next id. Ids are never reused, removed
// messages stay in Messages with Visible=false.
func (s *Snapshot) AllocateMessageId() MsgId {
	id := s.NextMessageId
	s.NextMessageId++
	return id
}

// Notify prepends n to the user's notification list.
func (s *Snapshot) Notify(user UserId, n Notification) {
	s.Notifications[user] = append([]Notification{n}, s.Notifications[user]...)
}
