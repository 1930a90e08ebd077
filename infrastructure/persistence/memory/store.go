// Package memory provides an in-process store for development and tests. It
// keeps the same logical key layout as the durable backend, enforces an
// optional byte quota so storage-full handling can be exercised, and exposes
// the change-subscription observer for cross-tab style reloads.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"flowforge-backend/application/ports"
	"flowforge-backend/domain/comments"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/versioning"
	pkgerrors "flowforge-backend/pkg/errors"
)

const counterKey = "lastNodeId"

// Store is an in-memory FlowRepository, CounterStore and ChangeNotifier
type Store struct {
	mu      sync.RWMutex
	data    map[string][]byte
	quota   int
	subs    map[int]func(flowID string)
	nextSub int
}

var (
	_ ports.FlowRepository = (*Store)(nil)
	_ ports.CounterStore   = (*Store)(nil)
	_ ports.ChangeNotifier = (*Store)(nil)
)

// NewStore creates a store. quotaBytes caps the total stored payload size;
// zero disables the quota.
func NewStore(quotaBytes int) *Store {
	return &Store{
		data:  make(map[string][]byte),
		quota: quotaBytes,
		subs:  make(map[int]func(flowID string)),
	}
}

func nodesKey(flowID string) string    { return "flow_" + flowID + "_nodes" }
func edgesKey(flowID string) string    { return "flow_" + flowID + "_edges" }
func historyKey(flowID string) string  { return "flow_" + flowID + "_history" }
func commentsKey(flowID string) string { return "flow_" + flowID + "_comments" }
func metaKey(flowID string) string     { return "flow_" + flowID + "_meta" }

// put writes a value, enforcing the quota over the total stored bytes
func (s *Store) put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quota > 0 {
		total := len(value)
		for k, v := range s.data {
			if k != key {
				total += len(v)
			}
		}
		if total > s.quota {
			return pkgerrors.NewStorageFullError(key)
		}
	}

	s.data[key] = value
	return nil
}

func (s *Store) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	return raw, ok
}

// LoadGraph implements ports.FlowRepository
func (s *Store) LoadGraph(ctx context.Context, flowID string) (aggregates.Flow, error) {
	rawNodes, okNodes := s.get(nodesKey(flowID))
	rawEdges, okEdges := s.get(edgesKey(flowID))
	if !okNodes && !okEdges {
		return aggregates.Flow{}, pkgerrors.NewNotFoundError("flow " + flowID)
	}

	flow := aggregates.NewFlow()
	if okNodes {
		if err := json.Unmarshal(rawNodes, &flow.Nodes); err != nil {
			return aggregates.Flow{}, pkgerrors.Wrap(err, "decode nodes")
		}
	}
	if okEdges {
		if err := json.Unmarshal(rawEdges, &flow.Edges); err != nil {
			return aggregates.Flow{}, pkgerrors.Wrap(err, "decode edges")
		}
	}
	return flow, nil
}

// SaveGraph implements ports.FlowRepository
func (s *Store) SaveGraph(ctx context.Context, flowID string, flow aggregates.Flow) error {
	rawNodes, err := json.Marshal(flow.Nodes)
	if err != nil {
		return pkgerrors.Wrap(err, "encode nodes")
	}
	rawEdges, err := json.Marshal(flow.Edges)
	if err != nil {
		return pkgerrors.Wrap(err, "encode edges")
	}

	if err := s.put(nodesKey(flowID), rawNodes); err != nil {
		return err
	}
	if err := s.put(edgesKey(flowID), rawEdges); err != nil {
		return err
	}
	return nil
}

// LoadHistory implements ports.FlowRepository
func (s *Store) LoadHistory(ctx context.Context, flowID string) ([]versioning.Version, error) {
	raw, ok := s.get(historyKey(flowID))
	if !ok {
		return nil, pkgerrors.NewNotFoundError("history for flow " + flowID)
	}
	var versions []versioning.Version
	if err := json.Unmarshal(raw, &versions); err != nil {
		return nil, pkgerrors.Wrap(err, "decode history")
	}
	return versions, nil
}

// SaveHistory implements ports.FlowRepository
func (s *Store) SaveHistory(ctx context.Context, flowID string, versions []versioning.Version) error {
	raw, err := json.Marshal(versions)
	if err != nil {
		return pkgerrors.Wrap(err, "encode history")
	}
	return s.put(historyKey(flowID), raw)
}

// LoadComments implements ports.FlowRepository
func (s *Store) LoadComments(ctx context.Context, flowID string) ([]comments.Comment, error) {
	raw, ok := s.get(commentsKey(flowID))
	if !ok {
		return nil, pkgerrors.NewNotFoundError("comments for flow " + flowID)
	}
	var threads []comments.Comment
	if err := json.Unmarshal(raw, &threads); err != nil {
		return nil, pkgerrors.Wrap(err, "decode comments")
	}
	return threads, nil
}

// SaveComments implements ports.FlowRepository
func (s *Store) SaveComments(ctx context.Context, flowID string, threads []comments.Comment) error {
	raw, err := json.Marshal(threads)
	if err != nil {
		return pkgerrors.Wrap(err, "encode comments")
	}
	return s.put(commentsKey(flowID), raw)
}

// GetFlowInfo implements ports.FlowRepository
func (s *Store) GetFlowInfo(ctx context.Context, flowID string) (entities.FlowInfo, error) {
	raw, ok := s.get(metaKey(flowID))
	if !ok {
		return entities.FlowInfo{}, pkgerrors.NewNotFoundError("flow " + flowID)
	}
	var info entities.FlowInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return entities.FlowInfo{}, pkgerrors.Wrap(err, "decode flow info")
	}
	return info, nil
}

// PutFlowInfo implements ports.FlowRepository
func (s *Store) PutFlowInfo(ctx context.Context, info entities.FlowInfo) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return pkgerrors.Wrap(err, "encode flow info")
	}
	return s.put(metaKey(info.ID), raw)
}

// ListFlows implements ports.FlowRepository
func (s *Store) ListFlows(ctx context.Context) ([]entities.FlowInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := []entities.FlowInfo{}
	for key, raw := range s.data {
		if !strings.HasPrefix(key, "flow_") || !strings.HasSuffix(key, "_meta") {
			continue
		}
		var info entities.FlowInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			continue
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// DeleteFlow implements ports.FlowRepository
func (s *Store) DeleteFlow(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, nodesKey(flowID))
	delete(s.data, edgesKey(flowID))
	delete(s.data, historyKey(flowID))
	delete(s.data, commentsKey(flowID))
	delete(s.data, metaKey(flowID))
	return nil
}

// LoadCounter implements ports.CounterStore
func (s *Store) LoadCounter(ctx context.Context) (uint64, error) {
	raw, ok := s.get(counterKey)
	if !ok {
		return 0, nil
	}
	var value uint64
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, pkgerrors.Wrap(err, "decode counter")
	}
	return value, nil
}

// StoreCounter implements ports.CounterStore. The counter bypasses the quota:
// losing id monotonicity to a full store would corrupt every flow.
func (s *Store) StoreCounter(ctx context.Context, value uint64) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrap(err, "encode counter")
	}
	s.mu.Lock()
	s.data[counterKey] = raw
	s.mu.Unlock()
	return nil
}

// Subscribe implements ports.ChangeNotifier
func (s *Store) Subscribe(handler func(flowID string)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = handler
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// NotifyChange fans an external-change signal out to subscribers. Called by
// whatever detects the remote write; delivery makes no ordering or
// exactly-once promise.
func (s *Store) NotifyChange(flowID string) {
	s.mu.RLock()
	handlers := make([]func(string), 0, len(s.subs))
	for _, h := range s.subs {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(flowID)
	}
}

// UsedBytes reports the total stored payload size
func (s *Store) UsedBytes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, v := range s.data {
		total += len(v)
	}
	return total
}
