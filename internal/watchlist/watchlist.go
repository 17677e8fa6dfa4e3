// Package watchlist keeps the stops a rider explicitly asked to be alerted about.
package watchlist

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/UnknownOlympus/trackbus/internal/models"
	"github.com/UnknownOlympus/trackbus/internal/notify"
)

// WatchList is a set of stop IDs. It is independent of route progression.
type WatchList struct {
	alerter notify.Alerter
	log     *slog.Logger

	mu  sync.RWMutex
	ids []int
}

// New creates an empty watch-list acknowledging additions through alerter.
func New(alerter notify.Alerter, log *slog.Logger) *WatchList {
	return &WatchList{alerter: alerter, log: log}
}

// Toggle removes stop when watched, adds it otherwise. It reports whether the
// stop was added.
func (w *WatchList) Toggle(ctx context.Context, stop models.Stop) bool {
	if w.Remove(stop) {
		return false
	}
	return w.Add(ctx, stop)
}

// Add watches stop and acknowledges it to the user. Adding a watched stop is a no-op.
func (w *WatchList) Add(ctx context.Context, stop models.Stop) bool {
	w.mu.Lock()
	if slices.Contains(w.ids, stop.ID) {
		w.mu.Unlock()
		return false
	}
	w.ids = append(w.ids, stop.ID)
	w.mu.Unlock()

	w.log.InfoContext(ctx, "Stop added to watch-list", "stop", stop.ID)

	msg := fmt.Sprintf(notify.MsgWatchAdded, stop.Description)
	if err := w.alerter.ShowAlert(ctx, notify.TitleNotification, msg); err != nil {
		w.log.ErrorContext(ctx, "Failed to acknowledge watched stop", "stop", stop.ID, "error", err)
	}

	return true
}

// Remove stops watching stop. It reports whether the stop was watched.
func (w *WatchList) Remove(stop models.Stop) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx := slices.Index(w.ids, stop.ID)
	if idx == -1 {
		return false
	}
	w.ids = slices.Delete(w.ids, idx, idx+1)

	return true
}

// Contains reports whether a stop with the same ID is watched.
func (w *WatchList) Contains(stop models.Stop) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Contains(w.ids, stop.ID)
}

// IDs returns the watched stop IDs in insertion order.
func (w *WatchList) IDs() []int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return slices.Clone(w.ids)
}

// Len returns the number of watched stops.
func (w *WatchList) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return len(w.ids)
}

// Clear forgets every watched stop.
func (w *WatchList) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ids = nil
}
