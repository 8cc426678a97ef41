package domain

import "slices"

type Channel struct {
	Id       ChannelId `json:"channelId" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	IsPublic bool      `json:"isPublic" yaml:"public"`
	Owners   []UserId  `json:"ownerMembers" yaml:"owners"`
	Members  []UserId  `json:"allMembers" yaml:"members"`
	Standup  *Standup  `json:"standup,omitempty" yaml:"-"`
}

func (c *Channel) IsMember(user UserId) bool { return slices.Contains(c.Members, user) }
func (c *Channel) IsOwner(user UserId) bool  { return slices.Contains(c.Owners, user) }

type Dm struct {
	Id      DmId     `json:"dmId" yaml:"id"`
	Name    string   `json:"name" yaml:"-"`
	Owner   UserId   `json:"owner" yaml:"owner"`
	Members []UserId `json:"dmMembers" yaml:"members"`
	Active  bool     `json:"active" yaml:"-"`
}

func (d *Dm) IsMember(user UserId) bool { return slices.Contains(d.Members, user) }

// Standup collects short updates in a channel for a fixed window and posts
// them as a single message from Starter once FinishAt passes.
type Standup struct {
	Starter  UserId   `json:"starter"`
	FinishAt UnixTime `json:"finishAt"`
	Buffer   []string `json:"buffer"`
}

type StandupStatus struct {
	IsActive   bool      `json:"isActive"`
	TimeFinish *UnixTime `json:"timeFinish"`
}
