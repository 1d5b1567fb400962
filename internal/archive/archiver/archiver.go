// Package archiver turns live ticket messages into encrypted relational
// snapshots. One ArchiveMessage call captures the message and every entity
// it references, encrypts the sensitive fields through a pooled crypto
// worker, and commits the whole set as a single idempotent transaction.
package archiver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ticketvault/ticketvault/internal/archive/event"
	"github.com/ticketvault/ticketvault/internal/archive/models"
	"github.com/ticketvault/ticketvault/internal/cryptox"
	"github.com/ticketvault/ticketvault/internal/logging"
	"github.com/ticketvault/ticketvault/internal/workerpool"
)

// CryptoWorkerKind is the worker class used for field encryption.
const CryptoWorkerKind = "crypto"

// ErrArchivingDisabled reports the deliberate no-op outcome when archiving
// is switched off. It is not a failure; match with errors.Is to tell it
// apart from real errors.
var ErrArchivingDisabled = errors.New("archiving disabled")

// NewCryptoWorkers builds a worker registry with the crypto kind registered.
// Each worker derives its key once at construction; the pool keeps at most
// maxWorkers of them alive for reuse.
func NewCryptoWorkers(passphrase, salt []byte, maxWorkers int32) (*workerpool.Registry[*cryptox.Cipher], error) {
	r := workerpool.NewRegistry[*cryptox.Cipher]()
	err := r.Register(CryptoWorkerKind,
		func(ctx context.Context) (*cryptox.Cipher, error) {
			return cryptox.New(passphrase, salt)
		},
		nil, maxWorkers)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Archiver is the archival entry point. It is safe for concurrent use: the
// worker registry is the only shared mutable state and hands each call its
// own worker instance.
type Archiver struct {
	db       *sql.DB
	workers  *workerpool.Registry[*cryptox.Cipher]
	members  event.MemberResolver
	log      logging.Logger
	disabled bool
}

// New constructs an Archiver. disabled switches the whole component into
// bypass mode; it is injected here rather than read from the environment so
// the core stays testable.
func New(db *sql.DB, workers *workerpool.Registry[*cryptox.Cipher], members event.MemberResolver, log logging.Logger, disabled bool) *Archiver {
	return &Archiver{
		db:       db,
		workers:  workers,
		members:  members,
		log:      log.With("module", "archiver"),
		disabled: disabled,
	}
}

// ArchiveMessage adds or updates one message in the ticket's archive.
//
// The worker acquired from the pool is released on every exit path. Member
// resolution failure falls back to the sentinel default user; encryption
// and commit failures abort the attempt with no rows written and are
// returned to the caller unretried. Re-archiving the same message id is
// idempotent.
func (a *Archiver) ArchiveMessage(ctx context.Context, ticketID string, msg *event.Message, external bool) (*models.ArchivedMessage, error) {
	if a.disabled {
		return nil, ErrArchivingDisabled
	}

	w, err := a.workers.Acquire(ctx, CryptoWorkerKind)
	if err != nil {
		return nil, fmt.Errorf("acquire crypto worker: %w", err)
	}
	defer w.Release()

	res := a.resolveEntities(ctx, msg)

	p, snapshot, err := buildPlan(ticketID, msg, res, w.Value(), external)
	if err != nil {
		return nil, fmt.Errorf("plan upserts: %w", err)
	}

	if err := commit(ctx, a.db, p); err != nil {
		return nil, fmt.Errorf("commit archive: %w", err)
	}

	a.log.Debug(ctx, "archived message",
		"ticket_id", ticketID, "message_id", msg.ID, "ops", len(p.ops))

	return snapshot, nil
}
