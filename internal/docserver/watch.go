package docserver

import (
	"context"
	"strings"

	"github.com/matheus3301/classnotes/internal/bus"
	"github.com/matheus3301/classnotes/internal/docstore"
	"github.com/matheus3301/classnotes/internal/store"
	"go.uber.org/zap"
)

// Watch delivers the result set of q now and again whenever a write to the
// same collection changes it. The subscription ends when ctx is done or
// the caller closes it.
func (e *Engine) Watch(ctx context.Context, q docstore.Query) (*docstore.Subscription, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	// Subscribe before the first read so no write falls between the two.
	events, unsub := e.bus.Subscribe(bus.DocPrefix(q.Collection), 64)
	ctx, cancel := context.WithCancel(ctx)
	sub := docstore.NewSubscription(cancel)

	raw, err := e.db.QueryDocuments(ctx, q)
	if err != nil {
		unsub()
		_ = sub.Close()
		return nil, err
	}
	if err := e.deliver(sub, raw); err != nil {
		unsub()
		_ = sub.Close()
		return nil, err
	}

	go e.watch(ctx, q, sub, events, unsub, fingerprint(raw))
	return sub, nil
}

// watch re-runs q on every change to its collection. Only that collection's
// events reach the buffer, so when one is dropped an earlier change of the
// same collection is still queued and its re-read observes the dropped write.
func (e *Engine) watch(ctx context.Context, q docstore.Query, sub *docstore.Subscription, events <-chan bus.Event, unsub func(), last string) {
	defer unsub()
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-events:
			change, ok := evt.Payload.(bus.DocChange)
			if !ok || change.Collection != q.Collection {
				continue
			}
			raw, err := e.db.QueryDocuments(ctx, q)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				e.logger.Warn("watch query failed", zap.String("collection", q.Collection), zap.Error(err))
				sub.Fail(err)
				return
			}
			fp := fingerprint(raw)
			if fp == last {
				continue
			}
			last = fp
			if err := e.deliver(sub, raw); err != nil {
				sub.Fail(err)
				return
			}
		}
	}
}

func (e *Engine) deliver(sub *docstore.Subscription, raw []store.Doc) error {
	docs, err := toDocuments(raw)
	if err != nil {
		return err
	}
	sub.Deliver(docstore.Snapshot{Docs: docs, ReadTime: e.now().UnixMilli()})
	return nil
}

func fingerprint(raw []store.Doc) string {
	var sb strings.Builder
	for _, d := range raw {
		sb.WriteString(d.ID)
		sb.WriteByte(0)
		sb.WriteString(d.Data)
		sb.WriteByte(0)
	}
	return sb.String()
}
