package service

import (
	"github.com/parley-chat/parley/shared/domain"
)

// canModify decides edit, remove, pin and unpin. Being a plain member is
// never enough.
//
//	channel: author, channel owner, or a member who is a global owner
//	dm:      author or the dm owner
func canModify(dir Oracle, msg *domain.Message, user domain.UserId) bool {
	if msg.AuthorId == user {
		return true
	}
	role := dir.Role(msg.Container, user)
	switch msg.Container.Kind {
	case domain.KindChannel:
		return role == domain.RoleOwner || (role == domain.RoleMember && dir.IsGlobalOwner(user))
	case domain.KindDm:
		return role == domain.RoleOwner
	}
	return false
}

// canReact: any member may react or unreact.
func canReact(dir Oracle, msg *domain.Message, user domain.UserId) bool {
	return dir.IsMember(msg.Container, user)
}
