package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"jobprep_backend/internal/model"

	"github.com/go-redis/redis/v8"
)

// ErrDraftNotFound 草稿不存在或已过期
var ErrDraftNotFound = errors.New("cv draft not found")

const draftKeyPrefix = "cv:draft:"

// CVDraftStore 暂存解析后的简历，供后续 review / improve 通过 cacheKey 取用
type CVDraftStore interface {
	Put(ctx context.Context, key string, doc *model.CVDocument) error
	Get(ctx context.Context, key string) (*model.CVDocument, error)
	// Take 原子地读取并删除
	Take(ctx context.Context, key string) (*model.CVDocument, error)
}

// RedisDraftStore 基于 Redis 的实现，多实例部署时共享
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) Put(ctx context.Context, key string, doc *model.CVDocument) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKeyPrefix+key, b, s.ttl).Err()
}

func (s *RedisDraftStore) Get(ctx context.Context, key string) (*model.CVDocument, error) {
	b, err := s.client.Get(ctx, draftKeyPrefix+key).Bytes()
	return decodeDraft(b, err)
}

func (s *RedisDraftStore) Take(ctx context.Context, key string) (*model.CVDocument, error) {
	b, err := s.client.GetDel(ctx, draftKeyPrefix+key).Bytes()
	return decodeDraft(b, err)
}

func decodeDraft(b []byte, err error) (*model.CVDocument, error) {
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc model.CVDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

type memoryDraft struct {
	doc       *model.CVDocument
	expiresAt time.Time
}

// MemoryDraftStore 单实例内存实现，条目数有上限，满时淘汰最早过期的条目
type MemoryDraftStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	entries    map[string]memoryDraft
	now        func() time.Time
}

func NewMemoryDraftStore(ttl time.Duration, maxEntries int) *MemoryDraftStore {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &MemoryDraftStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]memoryDraft),
		now:        time.Now,
	}
}

func (s *MemoryDraftStore) Put(ctx context.Context, key string, doc *model.CVDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[key] = memoryDraft{doc: doc, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) Get(ctx context.Context, key string) (*model.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(key, false)
}

func (s *MemoryDraftStore) Take(ctx context.Context, key string) (*model.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(key, true)
}

func (s *MemoryDraftStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryDraftStore) lookupLocked(key string, remove bool) (*model.CVDocument, error) {
	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, ErrDraftNotFound
	}
	if remove {
		delete(s.entries, key)
	}
	return entry.doc, nil
}

// evictLocked 先清理过期条目，仍然满时删除最早过期的一条
func (s *MemoryDraftStore) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.expiresAt
		}
	}
	if len(s.entries) >= s.maxEntries && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
