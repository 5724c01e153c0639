package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/tenant_ledger/internal/apperrors"
	"github.com/SscSPs/tenant_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/tenant_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/tenant_ledger/internal/models"
	"github.com/SscSPs/tenant_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `entry_id, tenant_id, entry_number, entry_date, status, source_type, source_id,
	source_event_id, memo, currency_code, reverses_entry_id, reversed_by_entry_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	db DBTX
}

// newPgxJournalRepository creates a new repository for journal entries and their lines.
func newPgxJournalRepository(db DBTX) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{db: db}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.EntryNumber,
		&m.EntryDate,
		&m.Status,
		&m.SourceType,
		&m.SourceID,
		&m.SourceEventID,
		&m.Memo,
		&m.CurrencyCode,
		&m.ReversesEntryID,
		&m.ReversedByEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return mapping.ToDomainJournalEntry(m), nil
}

// SaveEntry inserts the entry header and its lines.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry) error {
	for _, l := range entry.Lines {
		if !l.Amount.IsPositive() {
			return apperrors.New(apperrors.ErrInvalidLine, "line %d: amount must be positive", l.LineNumber)
		}
	}

	m := mapping.ToModelJournalEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.db.Exec(ctx, entryQuery,
		m.EntryID,
		m.TenantID,
		m.EntryNumber,
		m.EntryDate,
		m.Status,
		m.SourceType,
		m.SourceID,
		m.SourceEventID,
		m.Memo,
		m.CurrencyCode,
		m.ReversesEntryID,
		m.ReversedByEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "failed to insert journal entry "+m.EntryID)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, tenant_id, line_number, account_id, side, amount, memo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	for _, l := range entry.Lines {
		ml := mapping.ToModelJournalLine(entry.TenantID, l)
		batch.Queue(lineQuery, ml.LineID, ml.EntryID, ml.TenantID, ml.LineNumber, ml.AccountID, ml.Side, ml.Amount, ml.Memo)
	}
	// Close reports the first failing command of the batch.
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "failed to insert lines for journal entry "+m.EntryID)
	}
	return nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, tenantID string, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithResource(apperrors.ErrEntryNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to find journal entry %s: %w", entryID, err)
	}

	lines, err := r.linesOf(ctx, tenantID, []string{entryID})
	if err != nil {
		return nil, err
	}
	entry.Lines = lines[entryID]
	return &entry, nil
}

// FindEntriesBySource lists a document's entries, oldest first.
func (r *PgxJournalRepository) FindEntriesBySource(ctx context.Context, tenantID string, sourceType string, sourceID string) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM journal_entries
		WHERE tenant_id = $1 AND source_type = $2 AND source_id = $3
		ORDER BY created_at, entry_number NULLS LAST;
	`
	rows, err := r.db.Query(ctx, query, tenantID, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for %s %s: %w", sourceType, sourceID, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.JournalEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan journal entries: %w", err)
	}
	if len(entries) == 0 {
		return []domain.JournalEntry{}, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.EntryID
	}
	lines, err := r.linesOf(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Lines = lines[entries[i].EntryID]
	}
	return entries, nil
}

// linesOf loads the lines of the given entries in line order, keyed by entry id.
func (r *PgxJournalRepository) linesOf(ctx context.Context, tenantID string, entryIDs []string) (map[string][]domain.JournalLine, error) {
	query := `
		SELECT line_id, entry_id, tenant_id, line_number, account_id, side, amount, memo
		FROM journal_lines
		WHERE tenant_id = $1 AND entry_id = ANY($2)
		ORDER BY entry_id, line_number;
	`
	rows, err := r.db.Query(ctx, query, tenantID, entryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal lines: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.JournalLine, len(entryIDs))
	for rows.Next() {
		var m models.JournalLine
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.TenantID, &m.LineNumber, &m.AccountID, &m.Side, &m.Amount, &m.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan journal line: %w", err)
		}
		out[m.EntryID] = append(out[m.EntryID], mapping.ToDomainJournalLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal lines: %w", err)
	}
	return out, nil
}

// ListPostedLines returns lines of non-draft entries in ledger order.
func (r *PgxJournalRepository) ListPostedLines(ctx context.Context, tenantID string, filter portsrepo.LineFilter) ([]domain.PostedLine, error) {
	var to *time.Time
	if !filter.To.IsZero() {
		to = &filter.To
	}
	query := `
		SELECT l.line_id, l.entry_id, l.line_number, l.account_id, l.side, l.amount, l.memo,
		       e.entry_number, e.entry_date, e.status, e.memo
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.tenant_id = $1
			AND e.status <> 'DRAFT'
			AND ($2 = '' OR l.account_id = $2)
			AND ($3::date IS NULL OR e.entry_date <= $3::date)
		ORDER BY e.entry_date, e.entry_number, l.line_number;
	`
	rows, err := r.db.Query(ctx, query, tenantID, filter.AccountID, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines: %w", err)
	}
	defer rows.Close()

	out := []domain.PostedLine{}
	for rows.Next() {
		var (
			m      models.JournalLine
			number *int64
			pl     domain.PostedLine
			status string
		)
		if err := rows.Scan(&m.LineID, &m.EntryID, &m.LineNumber, &m.AccountID, &m.Side, &m.Amount, &m.Memo,
			&number, &pl.EntryDate, &status, &pl.EntryMemo); err != nil {
			return nil, fmt.Errorf("failed to scan posted line: %w", err)
		}
		pl.JournalLine = mapping.ToDomainJournalLine(m)
		pl.EntryStatus = domain.EntryStatus(status)
		if number != nil {
			pl.EntryNumber = *number
		}
		out = append(out, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posted lines: %w", err)
	}
	return out, nil
}

// FindProcessedEvent returns apperrors.ErrNotFound when the event has not been processed.
func (r *PgxJournalRepository) FindProcessedEvent(ctx context.Context, tenantID string, sourceEventID string) (*domain.ProcessedEvent, error) {
	query := `
		SELECT tenant_id, source_event_id, entry_id, processed_at
		FROM processed_events
		WHERE tenant_id = $1 AND source_event_id = $2;
	`
	var p domain.ProcessedEvent
	err := r.db.QueryRow(ctx, query, tenantID, sourceEventID).Scan(&p.TenantID, &p.SourceEventID, &p.EntryID, &p.ProcessedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.WithResource(apperrors.ErrNotFound, sourceEventID)
		}
		return nil, fmt.Errorf("failed to find processed event %s: %w", sourceEventID, err)
	}
	return &p, nil
}

// ClaimEvent inserts the processed-event row. A concurrent claimant blocks on
// the primary key until the holder's transaction ends, then sees the conflict.
func (r *PgxJournalRepository) ClaimEvent(ctx context.Context, event domain.ProcessedEvent) (bool, error) {
	query := `
		INSERT INTO processed_events (tenant_id, source_event_id, entry_id, processed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, source_event_id) DO NOTHING;
	`
	tag, err := r.db.Exec(ctx, query, event.TenantID, event.SourceEventID, event.EntryID, event.ProcessedAt)
	if err != nil {
		return false, fmt.Errorf("failed to claim event %s: %w", event.SourceEventID, err)
	}
	return tag.RowsAffected() == 1, nil
}

// NextEntryNumber increments the tenant's counter. The row lock it takes
// serializes numbering per tenant until the transaction ends.
func (r *PgxJournalRepository) NextEntryNumber(ctx context.Context, tenantID string) (int64, error) {
	query := `
		INSERT INTO entry_sequences (tenant_id, last_number) VALUES ($1, 1)
		ON CONFLICT (tenant_id) DO UPDATE SET last_number = entry_sequences.last_number + 1
		RETURNING last_number;
	`
	var next int64
	if err := r.db.QueryRow(ctx, query, tenantID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to allocate entry number: %w", err)
	}
	return next, nil
}

// LockEntrySequence takes the row lock NextEntryNumber takes, creating the
// counter at zero for a tenant that has never posted.
func (r *PgxJournalRepository) LockEntrySequence(ctx context.Context, tenantID string) error {
	query := `
		INSERT INTO entry_sequences (tenant_id, last_number) VALUES ($1, 0)
		ON CONFLICT (tenant_id) DO UPDATE SET last_number = entry_sequences.last_number;
	`
	if _, err := r.db.Exec(ctx, query, tenantID); err != nil {
		return fmt.Errorf("failed to lock entry sequence: %w", err)
	}
	return nil
}

// MarkPosted moves a DRAFT entry to POSTED with its number.
func (r *PgxJournalRepository) MarkPosted(ctx context.Context, tenantID string, entryID string, entryNumber int64, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'POSTED', entry_number = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND entry_id = $2 AND status = 'DRAFT';
	`
	tag, err := r.db.Exec(ctx, query, tenantID, entryID, entryNumber, now, userID)
	if err != nil {
		return mapWriteError(err, "failed to post entry "+entryID)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.transitionError(ctx, tenantID, entryID, domain.Posted)
}

// MarkReversed moves a POSTED entry to REVERSED. The status guard makes
// concurrent reversals of one entry fail for all but the first.
func (r *PgxJournalRepository) MarkReversed(ctx context.Context, tenantID string, entryID string, reversedByEntryID string, userID string, now time.Time) error {
	query := `
		UPDATE journal_entries
		SET status = 'REVERSED', reversed_by_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $1 AND entry_id = $2 AND status = 'POSTED';
	`
	tag, err := r.db.Exec(ctx, query, tenantID, entryID, reversedByEntryID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to reverse entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.transitionError(ctx, tenantID, entryID, domain.Reversed)
}

// transitionError explains why a guarded status update matched no row.
func (r *PgxJournalRepository) transitionError(ctx context.Context, tenantID, entryID string, next domain.EntryStatus) error {
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT status FROM journal_entries WHERE tenant_id = $1 AND entry_id = $2;`,
		tenantID, entryID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.WithResource(apperrors.ErrEntryNotFound, entryID)
	}
	if err != nil {
		return fmt.Errorf("failed to read status of entry %s: %w", entryID, err)
	}
	current := domain.JournalEntry{EntryID: entryID, Status: domain.EntryStatus(status)}
	if err := current.TransitionTo(next); err != nil {
		return err
	}
	// The row changed between the update and this read.
	return apperrors.New(apperrors.ErrInvalidTransition, "%s -> %s", status, next)
}
