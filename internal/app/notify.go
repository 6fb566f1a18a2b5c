package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/ghostrace/internal/domain/model"
	"github.com/okian/ghostrace/internal/domain/popup"
	"github.com/okian/ghostrace/pkg/logger"
	"github.com/okian/ghostrace/pkg/metrics"
)

// Subscribe registers fn for every notification and returns a function that
// removes it. Notifications are delivered after the command that produced
// them released the service lock, in production order. fn must not block.
func (s *Service) Subscribe(fn func(model.Notification)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.busMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.busMu.Unlock()

	return func() {
		s.busMu.Lock()
		delete(s.subscribers, id)
		s.busMu.Unlock()
	}
}

// unlockAndFlush releases the service lock and delivers what the command
// produced.
func (s *Service) unlockAndFlush() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	s.deliver(pending)
}

func (s *Service) deliver(ns []model.Notification) {
	if len(ns) == 0 {
		return
	}
	s.busMu.RLock()
	subs := make([]func(model.Notification), 0, len(s.subscribers))
	for i := 0; i < s.nextSubID; i++ {
		if fn, ok := s.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.busMu.RUnlock()

	for _, n := range ns {
		for _, fn := range subs {
			fn(n)
		}
	}
}

// emitRun queues a run-updated notification carrying a copy of the run, or
// nil when there is none.
func (s *Service) emitRun() {
	s.pending = append(s.pending, model.Notification{Kind: model.KindRunUpdated, Run: s.save.CurrentRun.Clone()})
}

// requestPopup queues a popup. once makes it at-most-once per save until
// the type is unrecorded.
func (s *Service) requestPopup(ctx context.Context, p model.PopupType, payload any, once bool) bool {
	if once && s.popups.SeenAndRecord(ctx, p) {
		return false
	}
	metrics.RecordPopup(popup.Name(p))
	s.pending = append(s.pending, model.Notification{Kind: model.KindPopupRequested, Popup: p, Payload: payload})
	return true
}

// note logs at info and forwards the line to subscribers.
func (s *Service) note(ctx context.Context, msg string, fields ...logger.Field) {
	s.logger.Info(ctx, msg, fields...)
	s.pending = append(s.pending, model.Notification{Kind: model.KindLog, Message: formatLine(msg, fields)})
}

// warn logs at warn and forwards the line to subscribers.
func (s *Service) warn(ctx context.Context, msg string, fields ...logger.Field) {
	s.logger.Warn(ctx, msg, fields...)
	s.pending = append(s.pending, model.Notification{Kind: model.KindLog, Message: formatLine(msg, fields)})
}

// reject records a failed guard and returns the error for the caller.
func (s *Service) reject(ctx context.Context, command, reason string) error {
	metrics.RecordRejection(command, reason)
	s.note(ctx, "command rejected", logger.String("command", command), logger.String("reason", reason))
	return &RejectError{Command: command, Reason: reason}
}

func formatLine(msg string, fields []logger.Field) string {
	if len(fields) == 0 {
		return msg
	}
	var b strings.Builder
	b.WriteString(msg)
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
