package eventsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/venuekit/venuekit/pkg/audit"
	"github.com/venuekit/venuekit/pkg/queue"
	"github.com/venuekit/venuekit/svc/provider"
)

// Pipeline exports events to the connected event providers. A provider
// failure is written into the record's SyncData and never fails the job;
// the aggregate status reports pipeline completion, so a run where every
// provider failed still settles as SUCCESS. Only an error outside the
// provider loop, like a missing record, yields FAILED.
type Pipeline struct {
	store    Store
	accounts provider.AccountStore
	registry *provider.Registry
	tokens   *provider.TokenService
	audit    audit.Logger
	log      *slog.Logger
}

func NewPipeline(
	store Store,
	accounts provider.AccountStore,
	registry *provider.Registry,
	tokens *provider.TokenService,
	auditLog audit.Logger,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		store:    store,
		accounts: accounts,
		registry: registry,
		tokens:   tokens,
		audit:    auditLog,
		log:      log,
	}
}

// Handler returns the queue handler bound to SyncPayload.
func (p *Pipeline) Handler() queue.Handler {
	return queue.NewJobHandler(p.handleSync)
}

func (p *Pipeline) handleSync(ctx context.Context, payload SyncPayload) error {
	record, err := p.store.GetEventSync(ctx, payload.EventSyncID)
	if err != nil {
		// Nothing to write FAILED onto; escalate to the engine.
		return fmt.Errorf("load event sync %s: %w", payload.EventSyncID, err)
	}

	switch payload.Direction {
	case DirectionExport:
		return p.export(ctx, record)
	case DirectionImport:
		// Import is a stub: acknowledged with empty results.
		p.log.InfoContext(ctx, "event import not implemented, returning empty results",
			slog.String("event_sync_id", record.ID.String()))
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDirection, payload.Direction)
	}
}

func (p *Pipeline) export(ctx context.Context, record EventSync) error {
	record.LastSyncStatus = SyncStatusSyncing
	if err := p.store.UpdateEventSync(ctx, record); err != nil {
		return p.fail(ctx, record, fmt.Errorf("mark syncing: %w", err))
	}

	accounts, err := p.accounts.ListAccounts(ctx, record.BusinessID, provider.EventProviders)
	if err != nil {
		return p.fail(ctx, record, fmt.Errorf("list accounts: %w", err))
	}

	if record.SyncData == nil {
		record.SyncData = make(map[provider.Provider]SyncEntry, len(accounts))
	}

	for _, account := range accounts {
		entry := p.exportToProvider(ctx, account, record.Details)
		// Merge per provider so one failure never blanks earlier entries.
		record.SyncData[account.Provider] = entry
		if entry.Error == "" {
			record.ExternalIDs = append(record.ExternalIDs, entry.ExternalID)
		}
	}

	now := time.Now()
	record.LastSyncStatus = SyncStatusSuccess
	record.LastSyncError = ""
	record.LastSyncedAt = &now
	if err := p.store.UpdateEventSync(ctx, record); err != nil {
		return p.fail(ctx, record, fmt.Errorf("settle sync: %w", err))
	}

	p.recordAudit(ctx, record)
	return nil
}

func (p *Pipeline) exportToProvider(ctx context.Context, account provider.Account, details provider.EventDetails) SyncEntry {
	now := time.Now()

	fresh, err := p.tokens.EnsureFresh(ctx, account)
	if err != nil {
		return SyncEntry{Error: err.Error(), SyncedAt: now}
	}

	adapter, err := p.registry.Adapter(account.Provider)
	if err != nil {
		return SyncEntry{Error: err.Error(), SyncedAt: now}
	}

	res, err := adapter.CreateEvent(ctx, fresh, details)
	if err != nil {
		p.log.WarnContext(ctx, "provider event export failed",
			slog.String("provider", string(account.Provider)),
			slog.Any("error", err))
		return SyncEntry{Error: err.Error(), SyncedAt: now}
	}

	return SyncEntry{ExternalID: res.ExternalID, URL: res.URL, SyncedAt: now}
}

// fail records a pipeline-level failure on the record before escalating, so
// the UI sees FAILED with the error even though the engine will retry.
func (p *Pipeline) fail(ctx context.Context, record EventSync, cause error) error {
	record.LastSyncStatus = SyncStatusFailed
	record.LastSyncError = cause.Error()
	if err := p.store.UpdateEventSync(ctx, record); err != nil {
		p.log.ErrorContext(ctx, "failed to record sync failure",
			slog.String("event_sync_id", record.ID.String()),
			slog.Any("error", err))
	}
	return cause
}

func (p *Pipeline) recordAudit(ctx context.Context, record EventSync) {
	if err := p.audit.Log(ctx, "eventsync.export",
		audit.WithResource("event_sync", record.ID.String()),
		audit.WithBusinessID(record.BusinessID),
		audit.WithMetadata(map[string]any{"sync_data": record.SyncData}),
	); err != nil {
		p.log.ErrorContext(ctx, "audit write failed", slog.Any("error", err))
	}
}
