package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/IdentityGrid/internal/models"
)

// defaultWriteTimeout bounds a single backend write.
const defaultWriteTimeout = 5 * time.Second

// AccountStore is the part of the account store the mirror needs.
type AccountStore interface {
	Replace(accounts []models.Account)
	OnChange(fn func([]models.Account))
}

// Mirror copies snapshots of the account collection into a KeyValue
// backend in the background. Callers hand snapshots over with Notify and
// never wait for the write; when several snapshots arrive before the
// writer catches up only the latest one is written.
type Mirror struct {
	kv      KeyValue
	codec   Codec
	key     string
	log     *zap.Logger
	timeout time.Duration

	pending chan []models.Account
	done    chan struct{}
	once    sync.Once
}

// NewMirror creates a Mirror writing to kv under AccountsKey.
func NewMirror(kv KeyValue, codec Codec, log *zap.Logger) *Mirror {
	if codec == nil {
		codec = JSONCodec{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Mirror{
		kv:      kv,
		codec:   codec,
		key:     AccountsKey,
		log:     log,
		timeout: defaultWriteTimeout,
		pending: make(chan []models.Account, 1),
		done:    make(chan struct{}),
	}
}

// Load reads the stored collection. It returns (nil, nil) if nothing has
// been stored yet.
func (m *Mirror) Load(ctx context.Context) ([]models.Account, error) {
	data, err := m.kv.Get(ctx, m.key)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	accounts, err := m.codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode accounts (%s): %w", m.codec.Name(), err)
	}
	return accounts, nil
}

// Attach loads the stored collection into store and subscribes the mirror
// to the store's changes. The store is left untouched if loading fails.
func (m *Mirror) Attach(ctx context.Context, store AccountStore) error {
	accounts, err := m.Load(ctx)
	if err != nil {
		return err
	}
	if accounts != nil {
		store.Replace(accounts)
		m.log.Info("restored accounts", zap.Int("count", len(accounts)))
	}
	store.OnChange(m.Notify)
	return nil
}

// Notify queues a snapshot for writing. It never blocks; an older snapshot
// still waiting in the queue is replaced.
func (m *Mirror) Notify(accounts []models.Account) {
	for {
		select {
		case m.pending <- accounts:
			return
		default:
		}
		select {
		case <-m.pending:
		default:
		}
	}
}

// Start runs the writer until ctx is cancelled. A snapshot still queued at
// cancellation is written before Done is closed. Only the first call starts
// a writer.
func (m *Mirror) Start(ctx context.Context) {
	m.once.Do(func() { go m.run(ctx) })
}

func (m *Mirror) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			select {
			case accounts := <-m.pending:
				m.save(accounts)
			default:
			}
			return
		case accounts := <-m.pending:
			m.save(accounts)
		}
	}
}

// Done is closed once the writer started by Start has exited.
func (m *Mirror) Done() <-chan struct{} {
	return m.done
}

func (m *Mirror) save(accounts []models.Account) {
	data, err := m.codec.Marshal(accounts)
	if err != nil {
		m.log.Error("failed to encode accounts", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()
	if err := m.kv.Set(ctx, m.key, data); err != nil {
		m.log.Error("failed to persist accounts", zap.Error(err), zap.Int("count", len(accounts)))
		return
	}
	m.log.Debug("persisted accounts", zap.Int("count", len(accounts)), zap.Int("bytes", len(data)))
}
