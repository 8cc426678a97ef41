package domain

type User struct {
	Id          UserId `json:"uId" yaml:"id"`
	Handle      Handle `json:"handleStr" yaml:"handle"`
	NameFirst   string `json:"nameFirst" yaml:"name_first"`
	NameLast    string `json:"nameLast" yaml:"name_last"`
	GlobalOwner bool   `json:"isGlobalOwner" yaml:"global_owner"`
}

// Notification belongs to exactly one user. One of ChannelId/DmId is NoContainer.
type Notification struct {
	ChannelId ChannelId `json:"channelId"`
	DmId      DmId      `json:"dmId"`
	Text      string    `json:"notificationMessage"`
	CreatedAt UnixTime  `json:"timeSent"`
}
