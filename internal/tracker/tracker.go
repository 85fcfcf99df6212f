// Package tracker runs one completion pass over an organization: it builds
// the catalog, fetches the roster and replays every member's activity.
package tracker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"huct/internal/catalog"
	"huct/internal/htb"
	"huct/internal/metrics"
)

// Tracker orchestrates the fetch phases. It is single-use: each Run starts
// from an empty registry.
type Tracker struct {
	client   *htb.Client
	logger   *zap.Logger
	metrics  *metrics.Metrics
	maxPages int
}

// New creates a tracker. logger and m may be nil.
func New(client *htb.Client, logger *zap.Logger, m *metrics.Metrics, maxPages int) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{client: client, logger: logger, metrics: m, maxPages: maxPages}
}

// Run fetches fortresses, machines, challenges and the organization's
// members, then replays each member's activity in roster order. Any error
// aborts the run and no registry is returned.
func (t *Tracker) Run(ctx context.Context, organizationID int) (*catalog.Registry, error) {
	start := time.Now()
	reg := catalog.NewRegistry()
	f := htb.NewFetcher(t.client, reg, t.logger, t.maxPages)

	if err := f.FetchFortresses(ctx); err != nil {
		return nil, fmt.Errorf("fetching fortresses: %w", err)
	}
	t.logger.Info(fmt.Sprintf("%d fortresses fetched.", reg.Count(catalog.KindFortress)))

	if err := f.FetchMachines(ctx); err != nil {
		return nil, fmt.Errorf("fetching machines: %w", err)
	}
	t.logger.Info(fmt.Sprintf("%d machines fetched.", reg.Count(catalog.KindMachine)))

	if err := f.FetchChallenges(ctx); err != nil {
		return nil, fmt.Errorf("fetching challenges: %w", err)
	}
	t.logger.Info(fmt.Sprintf("%d challenges fetched.", reg.Count(catalog.KindChallenge)))

	members, err := f.FetchMembers(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("fetching members of organization %d: %w", organizationID, err)
	}
	t.logger.Info(fmt.Sprintf("%d members fetched.", len(members)), zap.Int("organization_id", organizationID))

	for _, m := range members {
		t.logger.Info("Fetching activity", zap.Int("member_id", m.ID), zap.String("member", m.Name))
		n, err := f.FetchMemberActivity(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("fetching activity of %s: %w", m, err)
		}
		t.logger.Debug("Activity replayed", zap.String("member", m.Name), zap.Int("new_flags", n))
	}

	t.record(reg)
	t.logger.Info("Run complete", zap.Duration("elapsed", time.Since(start)))
	return reg, nil
}

func (t *Tracker) record(reg *catalog.Registry) {
	for _, k := range catalog.Kinds {
		t.metrics.SetCatalogItems(k.String(), reg.Count(k))
		t.metrics.SetUnflaggedItems(k.String(), len(reg.Unflagged(k)))
	}
	t.metrics.SetMembers(len(reg.Members()))
}
