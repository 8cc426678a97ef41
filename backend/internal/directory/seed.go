package directory

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/parley-chat/parley/shared/domain"
)

// Seed is the on-disk directory file. Account and membership management live
// outside this service; the seed is how that data reaches the snapshot.
type Seed struct {
	Users    []domain.User    `yaml:"users"`
	Channels []domain.Channel `yaml:"channels"`
	Dms      []domain.Dm      `yaml:"dms"`
}

var validate = validator.New()

func LoadSeed(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read seed file %s: %w", path, err)
	}
	var seed Seed
	if err := yaml.UnmarshalStrict(raw, &seed); err != nil {
		return nil, fmt.Errorf("can't unmarshal seed file %s: %w", path, err)
	}
	return &seed, nil
}

// Apply upserts users, channels and DMs into snap. Entries are matched by id;
// messages, notifications and running standups are left alone. Apply checks
// the whole seed before touching snap.
func (s *Seed) Apply(snap *domain.Snapshot) error {
	users := make(map[domain.UserId]*domain.User, len(snap.Users)+len(s.Users))
	for id, u := range snap.Users {
		users[id] = u
	}
	for i := range s.Users {
		u := s.Users[i]
		// handles must be matchable by @-mentions
		if err := validate.Var(u.Handle, "required,alphanum,lowercase,max=20"); err != nil {
			return fmt.Errorf("user %d: invalid handle %q", u.Id, u.Handle)
		}
		users[u.Id] = &u
	}
	seen := make(map[domain.Handle]domain.UserId, len(users))
	for id, u := range users {
		if other, dup := seen[u.Handle]; dup {
			return fmt.Errorf("handle %q used by users %d and %d", u.Handle, min(id, other), max(id, other))
		}
		seen[u.Handle] = id
	}

	known := func(ids []domain.UserId) error {
		for _, id := range ids {
			if _, ok := users[id]; !ok {
				return fmt.Errorf("unknown user %d", id)
			}
		}
		return nil
	}
	for _, ch := range s.Channels {
		if ch.Name == "" {
			return fmt.Errorf("channel %d: empty name", ch.Id)
		}
		if err := known(ch.Members); err != nil {
			return fmt.Errorf("channel %d: %w", ch.Id, err)
		}
		for _, owner := range ch.Owners {
			if !slices.Contains(ch.Members, owner) {
				return fmt.Errorf("channel %d: owner %d is not a member", ch.Id, owner)
			}
		}
	}
	for _, dm := range s.Dms {
		if err := known(dm.Members); err != nil {
			return fmt.Errorf("dm %d: %w", dm.Id, err)
		}
		if !slices.Contains(dm.Members, dm.Owner) {
			return fmt.Errorf("dm %d: owner %d is not a member", dm.Id, dm.Owner)
		}
	}

	snap.Users = users
	for i := range s.Channels {
		ch := s.Channels[i]
		if existing, ok := snap.Channels[ch.Id]; ok {
			ch.Standup = existing.Standup
		}
		snap.Channels[ch.Id] = &ch
	}
	for i := range s.Dms {
		dm := s.Dms[i]
		dm.Name = DmName(dm.Members, users)
		dm.Active = true
		snap.Dms[dm.Id] = &dm
	}
	return nil
}

// DmName is the member handles sorted and joined by ", ".
func DmName(members []domain.UserId, users map[domain.UserId]*domain.User) string {
	handles := make([]string, 0, len(members))
	for _, id := range members {
		if u, ok := users[id]; ok {
			handles = append(handles, u.Handle)
		}
	}
	slices.Sort(handles)
	return strings.Join(handles, ", ")
}
