package service

import (
	"fmt"
	"regexp"

	"github.com/parley-chat/parley/shared/domain"
)

var mentionPattern = regexp.MustCompile(`@([a-z0-9]+)`)

// mentionedHandles returns each handle once, in order of first appearance.
func mentionedHandles(text string) []domain.Handle {
	var handles []domain.Handle
	seen := make(map[string]struct{})
	for _, m := range mentionPattern.FindAllStringSubmatch(text, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		handles = append(handles, m[1])
	}
	return handles
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// notifyMentions tags every member of the message's container whose handle
// appears in the body. Unknown handles and non-members are skipped silently.
// Returns the number of notifications created.
func notifyMentions(tx *Tx, msg *domain.Message, previewLen int) int {
	handles := mentionedHandles(msg.Text)
	if len(handles) == 0 {
		return 0
	}
	text := fmt.Sprintf("%s tagged you in %s: %s",
		tx.Dir.Handle(msg.AuthorId), tx.Dir.ContainerName(msg.Container), preview(msg.Text, previewLen))

	created := 0
	for _, h := range handles {
		user, ok := tx.Dir.ResolveHandle(h)
		if !ok || !tx.Dir.IsMember(msg.Container, user) {
			continue
		}
		tx.Snap.Notify(user, domain.Notification{
			ChannelId: msg.Container.ChannelId(),
			DmId:      msg.Container.DmId(),
			Text:      text,
			CreatedAt: msg.SentAt,
		})
		created++
	}
	if created > 0 {
		notificationsCreated.WithLabelValues("tag").Add(float64(created))
	}
	return created
}

// notifyReact tells the author someone reacted. Authors who left the
// container still get it.
func notifyReact(tx *Tx, msg *domain.Message, reactor domain.UserId) {
	tx.Snap.Notify(msg.AuthorId, domain.Notification{
		ChannelId: msg.Container.ChannelId(),
		DmId:      msg.Container.DmId(),
		Text:      fmt.Sprintf("%s reacted to your message in %s", tx.Dir.Handle(reactor), tx.Dir.ContainerName(msg.Container)),
		CreatedAt: tx.Now,
	})
	notificationsCreated.WithLabelValues("react").Inc()
}
