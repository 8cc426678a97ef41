// Package directory answers identity and membership questions from a
// snapshot. A Directory is built per operation on the snapshot that operation
// loaded, so membership is never stale within a transaction.
package directory

import (
	"github.com/parley-chat/parley/shared/domain"
)

type Directory struct {
	snap     *domain.Snapshot
	byHandle map[domain.Handle]domain.UserId
}

func New(snap *domain.Snapshot) *Directory {
	byHandle := make(map[domain.Handle]domain.UserId, len(snap.Users))
	for id, u := range snap.Users {
		byHandle[u.Handle] = id
	}
	return &Directory{snap: snap, byHandle: byHandle}
}

func (d *Directory) Exists(ref domain.ContainerRef) bool {
	switch ref.Kind {
	case domain.KindChannel:
		_, ok := d.snap.Channels[ref.Id]
		return ok
	case domain.KindDm:
		dm, ok := d.snap.Dms[ref.Id]
		return ok && dm.Active
	}
	return false
}

func (d *Directory) IsMember(ref domain.ContainerRef, user domain.UserId) bool {
	return d.Role(ref, user) != domain.RoleNone
}

func (d *Directory) Role(ref domain.ContainerRef, user domain.UserId) domain.Role {
	switch ref.Kind {
	case domain.KindChannel:
		ch, ok := d.snap.Channels[ref.Id]
		if !ok || !ch.IsMember(user) {
			return domain.RoleNone
		}
		if ch.IsOwner(user) {
			return domain.RoleOwner
		}
		return domain.RoleMember
	case domain.KindDm:
		dm, ok := d.snap.Dms[ref.Id]
		if !ok || !dm.Active || !dm.IsMember(user) {
			return domain.RoleNone
		}
		if dm.Owner == user {
			return domain.RoleOwner
		}
		return domain.RoleMember
	}
	return domain.RoleNone
}

func (d *Directory) IsGlobalOwner(user domain.UserId) bool {
	u, ok := d.snap.Users[user]
	return ok && u.GlobalOwner
}

func (d *Directory) ResolveHandle(handle domain.Handle) (domain.UserId, bool) {
	id, ok := d.byHandle[handle]
	return id, ok
}

func (d *Directory) Handle(user domain.UserId) domain.Handle {
	if u, ok := d.snap.Users[user]; ok {
		return u.Handle
	}
	return ""
}

func (d *Directory) ContainerName(ref domain.ContainerRef) string {
	switch ref.Kind {
	case domain.KindChannel:
		if ch, ok := d.snap.Channels[ref.Id]; ok {
			return ch.Name
		}
	case domain.KindDm:
		if dm, ok := d.snap.Dms[ref.Id]; ok {
			return dm.Name
		}
	}
	return ""
}

// ContainersOf lists every channel and active DM the user belongs to.
func (d *Directory) ContainersOf(user domain.UserId) []domain.ContainerRef {
	var refs []domain.ContainerRef
	for id, ch := range d.snap.Channels {
		if ch.IsMember(user) {
			refs = append(refs, domain.ChannelRef(id))
		}
	}
	for id, dm := range d.snap.Dms {
		if dm.Active && dm.IsMember(user) {
			refs = append(refs, domain.DmRef(id))
		}
	}
	return refs
}
