package domain

type (
	UserId    = int64
	Handle    = string
	ChannelId = int64
	DmId      = int64

	MsgId   = int64
	MsgText = string
	ReactId = int64

	// Unix seconds. Message ordering and deferred delivery compare these directly.
	UnixTime = int64
)

// NoContainer is the sentinel written in place of the container id that does
// not apply (channelId of a DM message and vice versa).
const NoContainer int64 = -1

// ReactThumbsUp is the only reaction kind the platform supports.
const ReactThumbsUp ReactId = 1

type ContainerKind string

const (
	KindChannel ContainerKind = "channel"
	KindDm      ContainerKind = "dm"
)

// ContainerRef identifies the channel or DM a message lives in.
type ContainerRef struct {
	Kind ContainerKind `json:"kind"`
	Id   int64         `json:"id"`
}

func ChannelRef(id ChannelId) ContainerRef { return ContainerRef{Kind: KindChannel, Id: id} }
func DmRef(id DmId) ContainerRef           { return ContainerRef{Kind: KindDm, Id: id} }

// ChannelId returns the channel id or NoContainer for DM refs.
func (r ContainerRef) ChannelId() ChannelId {
	if r.Kind == KindChannel {
		return r.Id
	}
	return NoContainer
}

// DmId returns the DM id or NoContainer for channel refs.
func (r ContainerRef) DmId() DmId {
	if r.Kind == KindDm {
		return r.Id
	}
	return NoContainer
}

// Role is what a user holds inside one container. Authorship is per message
// and is evaluated separately.
type Role int

const (
	RoleNone Role = iota
	RoleMember
	RoleOwner
)

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleMember:
		return "member"
	default:
		return "none"
	}
}
