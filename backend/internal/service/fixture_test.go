package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parley-chat/parley/backend/internal/directory"
	"github.com/parley-chat/parley/backend/internal/scheduler"
	"github.com/parley-chat/parley/backend/internal/storage/codec"
	"github.com/parley-chat/parley/shared/domain"
)

var testCodec = codec.New(codec.CompressionNone)

// MockSnapshotStore keeps a deep copy of the last saved snapshot. The Func
// fields override the default behaviour.
type MockSnapshotStore struct {
	LoadFunc func(ctx context.Context) (*domain.Snapshot, error)
	SaveFunc func(ctx context.Context, snapshot *domain.Snapshot) error

	data  *domain.Snapshot
	saves int
}

func (m *MockSnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	if m.data == nil {
		return domain.NewSnapshot(), nil
	}
	return testCodec.Clone(m.data)
}

func (m *MockSnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snapshot)
	}
	clone, err := testCodec.Clone(snapshot)
	if err != nil {
		return err
	}
	m.data = clone
	m.saves++
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) Unix() domain.UnixTime   { return c.now.Unix() }

const (
	alice domain.UserId = 1 // global owner, member of general
	bob   domain.UserId = 2 // owner of general
	carol domain.UserId = 3 // member of general, owner of random
	dave  domain.UserId = 4 // global owner, member of nothing
	eve   domain.UserId = 5 // member of random
)

var (
	general = domain.ChannelRef(10)
	random  = domain.ChannelRef(11)
	dmAB    = domain.DmRef(20) // owner alice
	dmCE    = domain.DmRef(21) // owner carol
)

type fixture struct {
	ctx       context.Context
	store     *MockSnapshotStore
	clock     *fakeClock
	tx        *Transactor
	scheduler *scheduler.Scheduler
	messages  *Message
	feed      *NotificationFeed
	search    *Search
	standups  *Standup
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	snap := domain.NewSnapshot()
	seed := &directory.Seed{
		Users: []domain.User{
			{Id: alice, Handle: "alice", GlobalOwner: true},
			{Id: bob, Handle: "bob"},
			{Id: carol, Handle: "carol"},
			{Id: dave, Handle: "dave", GlobalOwner: true},
			{Id: eve, Handle: "eve"},
		},
		Channels: []domain.Channel{
			{Id: general.Id, Name: "general", IsPublic: true, Owners: []domain.UserId{bob}, Members: []domain.UserId{alice, bob, carol}},
			{Id: random.Id, Name: "random", Owners: []domain.UserId{carol}, Members: []domain.UserId{carol, eve}},
		},
		Dms: []domain.Dm{
			{Id: dmAB.Id, Owner: alice, Members: []domain.UserId{alice, bob}},
			{Id: dmCE.Id, Owner: carol, Members: []domain.UserId{carol, eve}},
		},
	}
	require.NoError(t, seed.Apply(snap))

	store := &MockSnapshotStore{}
	require.NoError(t, store.Save(context.Background(), snap))
	store.saves = 0

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	tx := NewTransactor(store, func(s *domain.Snapshot) Oracle { return directory.New(s) }, clock.Now)
	sched := scheduler.New(clock.Now)
	limits := DefaultLimits()

	return &fixture{
		ctx:       context.Background(),
		store:     store,
		clock:     clock,
		tx:        tx,
		scheduler: sched,
		messages:  NewMessage(tx, limits),
		feed:      NewNotificationFeed(tx, limits),
		search:    NewSearch(tx, limits),
		standups:  NewStandup(tx, sched, limits),
	}
}

// stored returns the persisted message, bypassing every read gate.
func (f *fixture) stored(t *testing.T, id domain.MsgId) *domain.Message {
	t.Helper()
	msg, ok := f.store.data.Messages[id]
	require.True(t, ok, "message %d not stored", id)
	return msg
}

func (f *fixture) send(t *testing.T, ref domain.ContainerRef, author domain.UserId, text string) domain.MsgId {
	t.Helper()
	id, err := f.messages.Send(f.ctx, ref, author, text)
	require.NoError(t, err)
	return id
}

func ptr[T any](v T) *T { return &v }
