package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Purge describes a dead server removed from the routing state during reconciliation.
type Purge struct {
	ServerID      string   `json:"server_id"`
	AffectedTools []string `json:"affected_tools"`
}

// Reconcile runs a single reconciliation pass: it recomputes every server's liveness,
// then removes each inactive server from the routing state.
// Server records stay in the directory so a later heartbeat can bring them back,
// but their routing mappings have to be re-registered.
//
// The returned error is non-nil only if recording the purge history failed.
// The routing state is always reconciled.
func (h *Host) Reconcile(ctx context.Context) ([]Purge, error) {
	started := time.Now()

	purges := h.purgeInactive()
	h.metrics.RecordReconcile(ctx, len(purges), time.Since(started))

	var errs []error
	for _, p := range purges {
		h.logger.Warn("purged inactive server from routing",
			zap.String("server_id", p.ServerID),
			zap.Strings("affected_tools", p.AffectedTools),
		)
		if err := h.recordPurge(ctx, p.ServerID, p.AffectedTools); err != nil {
			errs = append(errs, fmt.Errorf("failed to record purge of server %s: %w", p.ServerID, err))
		}
	}
	return purges, wrapInternal(errors.Join(errs...))
}

// purgeInactive recomputes liveness and cuts every inactive server out of the routing state.
// Servers that no longer had any mapping are not reported.
func (h *Host) purgeInactive() []Purge {
	h.mu.Lock()
	defer h.mu.Unlock()

	inactive := h.servers.CheckLiveness()
	purges := make([]Purge, 0, len(inactive))
	for _, id := range inactive {
		affected := h.router.RemoveServer(id)
		if len(affected) == 0 {
			continue
		}
		purges = append(purges, Purge{ServerID: id, AffectedTools: affected})
	}
	return purges
}

// Start launches the reconciliation loop in the background.
// ctx only supplies values to the passes; the loop runs until Stop is called.
// Starting a running host is a no-op.
func (h *Host) Start(ctx context.Context) {
	h.loopMu.Lock()
	defer h.loopMu.Unlock()

	if h.cancel != nil {
		h.logger.Warn("reconciliation loop already running")
		return
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h.cancel = cancel

	h.wg.Add(1)
	go h.reconcileLoop(loopCtx)

	h.logger.Info("started reconciliation loop",
		zap.Duration("interval", h.reconcileInterval),
		zap.Duration("heartbeat_timeout", h.servers.Timeout()),
	)
}

// Stop cancels the reconciliation loop and waits for it to exit. Stopping a stopped host is a no-op.
func (h *Host) Stop() {
	h.loopMu.Lock()
	defer h.loopMu.Unlock()

	if h.cancel == nil {
		return
	}
	h.cancel()
	h.wg.Wait()
	h.cancel = nil

	h.logger.Info("stopped reconciliation loop")
}

// Running reports whether the reconciliation loop is active.
func (h *Host) Running() bool {
	h.loopMu.Lock()
	defer h.loopMu.Unlock()
	return h.cancel != nil
}

func (h *Host) reconcileLoop(ctx context.Context) {
	defer h.wg.Done()

	for {
		wait := h.reconcileInterval
		if err := h.safeReconcile(ctx); err != nil {
			h.logger.Error("reconciliation pass failed", zap.Error(err))
			wait = h.errorBackoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// safeReconcile runs one pass and turns a panic into an error so the loop survives it.
func (h *Host) safeReconcile(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: reconciliation panicked: %v", ErrDirectory, r)
		}
	}()
	_, err = h.Reconcile(ctx)
	return err
}
