package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parley-chat/parley/shared/domain"
)

// SnapshotStore is the persistence boundary. Load returns a copy the caller
// may mutate freely; Save replaces the stored state atomically.
type SnapshotStore interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
	Save(ctx context.Context, snapshot *domain.Snapshot) error
}

// Oracle answers identity and membership questions for one snapshot.
type Oracle interface {
	Exists(ref domain.ContainerRef) bool
	IsMember(ref domain.ContainerRef, user domain.UserId) bool
	Role(ref domain.ContainerRef, user domain.UserId) domain.Role
	IsGlobalOwner(user domain.UserId) bool
	ResolveHandle(handle domain.Handle) (domain.UserId, bool)
	Handle(user domain.UserId) domain.Handle
	ContainerName(ref domain.ContainerRef) string
	ContainersOf(user domain.UserId) []domain.ContainerRef
}

type OracleFactory func(snap *domain.Snapshot) Oracle

// Tx is the state one operation works on.
type Tx struct {
	Snap *domain.Snapshot
	Dir  Oracle
	Now  domain.UnixTime
}

// Transactor serializes operations over the store. Update saves only when fn
// returns nil, so a failed operation leaves no trace.
type Transactor struct {
	mu        sync.Mutex
	store     SnapshotStore
	directory OracleFactory
	now       func() time.Time
}

func NewTransactor(store SnapshotStore, directory OracleFactory, now func() time.Time) *Transactor {
	if now == nil {
		now = time.Now
	}
	return &Transactor{store: store, directory: directory, now: now}
}

func (t *Transactor) begin(ctx context.Context) (*Tx, error) {
	snap, err := t.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return &Tx{Snap: snap, Dir: t.directory(snap), Now: t.now().Unix()}, nil
}

func (t *Transactor) Update(ctx context.Context, fn func(tx *Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx, err := t.begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := t.store.Save(ctx, tx.Snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// View runs fn without saving. Anything fn changes is discarded.
func (t *Transactor) View(ctx context.Context, fn func(tx *Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tx, err := t.begin(ctx)
	if err != nil {
		return err
	}
	return fn(tx)
}

// Now is the transactor's clock in unix seconds.
func (t *Transactor) Now() domain.UnixTime {
	return t.now().Unix()
}

// Limits are the tunable sizes from config.
type Limits struct {
	PageSize           int
	NotificationsLimit int
	MaxLength          int
	TagPreviewLength   int
}

func DefaultLimits() Limits {
	return Limits{PageSize: 50, NotificationsLimit: 20, MaxLength: 1000, TagPreviewLength: 20}
}
