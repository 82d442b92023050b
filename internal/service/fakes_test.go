package service

import (
	"Postflow/internal/model"
	"Postflow/internal/pkg/llm"
	"Postflow/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// 内存版仓储与协作方，测试专用

type fakeBriefRepo struct {
	mu     sync.Mutex
	nextID uint64
	briefs map[uint64]*model.Brief
}

func newFakeBriefRepo() *fakeBriefRepo {
	return &fakeBriefRepo{briefs: map[uint64]*model.Brief{}}
}

func (f *fakeBriefRepo) CreateBrief(ctx context.Context, brief *model.Brief, docs []*model.BriefDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	brief.ID = f.nextID
	for _, doc := range docs {
		doc.BriefID = brief.ID
		brief.Documents = append(brief.Documents, *doc)
	}
	f.briefs[brief.ID] = brief
	return nil
}

func (f *fakeBriefRepo) GetBrief(ctx context.Context, id uint64) (*model.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.briefs[id], nil
}

func (f *fakeBriefRepo) GetBriefBySlug(ctx context.Context, slug string) (*model.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.briefs {
		if b.Slug == slug {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBriefRepo) ListBriefs(ctx context.Context, limit, offset int) ([]*model.Brief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Brief
	for _, b := range f.briefs {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeBriefRepo) DeleteBrief(ctx context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.briefs, id)
	return nil
}

type fakeDraftRepo struct {
	mu     sync.Mutex
	nextID uint64
	drafts map[uint64]*model.MasterDraft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: map[uint64]*model.MasterDraft{}}
}

func (f *fakeDraftRepo) CreateDraft(ctx context.Context, draft *model.MasterDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	draft.ID = f.nextID
	f.drafts[draft.ID] = draft
	return nil
}

func (f *fakeDraftRepo) GetDraft(ctx context.Context, id uint64) (*model.MasterDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drafts[id], nil
}

func (f *fakeDraftRepo) MaxVersion(ctx context.Context, briefID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, d := range f.drafts {
		if d.BriefID == briefID && d.Version > max {
			max = d.Version
		}
	}
	return max, nil
}

func (f *fakeDraftRepo) ListByBrief(ctx context.Context, briefID uint64) ([]*model.MasterDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.MasterDraft
	for _, d := range f.drafts {
		if d.BriefID == briefID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (f *fakeDraftRepo) LatestByBrief(ctx context.Context, briefID uint64) (*model.MasterDraft, error) {
	drafts, _ := f.ListByBrief(ctx, briefID)
	if len(drafts) == 0 {
		return nil, nil
	}
	return drafts[0], nil
}

func (f *fakeDraftRepo) ApproveDraft(ctx context.Context, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok || d.Status != "draft" {
		return false, nil
	}
	d.Status = "approved"
	return true, nil
}

type fakePlatformRepo struct {
	mu        sync.Mutex
	nextID    uint64
	platforms map[uint64]*model.Platform
}

func newFakePlatformRepo() *fakePlatformRepo {
	return &fakePlatformRepo{platforms: map[uint64]*model.Platform{}}
}

func (f *fakePlatformRepo) CreatePlatform(ctx context.Context, platform *model.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	platform.ID = f.nextID
	f.platforms[platform.ID] = platform
	return nil
}

func (f *fakePlatformRepo) GetPlatform(ctx context.Context, id uint64) (*model.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.platforms[id], nil
}

func (f *fakePlatformRepo) ListPlatforms(ctx context.Context) ([]*model.Platform, error) {
	return f.list(func(p *model.Platform) bool { return true }), nil
}

func (f *fakePlatformRepo) ListActive(ctx context.Context) ([]*model.Platform, error) {
	return f.list(func(p *model.Platform) bool { return p.IsActive }), nil
}

func (f *fakePlatformRepo) ListActiveByIds(ctx context.Context, ids []uint64) ([]*model.Platform, error) {
	idSet := map[uint64]bool{}
	for _, id := range ids {
		idSet[id] = true
	}
	return f.list(func(p *model.Platform) bool { return p.IsActive && idSet[p.ID] }), nil
}

func (f *fakePlatformRepo) UpdatePlatform(ctx context.Context, platform *model.Platform) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.platforms[platform.ID] = platform
	return nil
}

func (f *fakePlatformRepo) list(keep func(*model.Platform) bool) []*model.Platform {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Platform
	for _, p := range f.platforms {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakePostRepo struct {
	mu     sync.Mutex
	nextID uint64
	posts  map[uint64]*model.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[uint64]*model.Post{}}
}

func (f *fakePostRepo) CreatePost(ctx context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = f.nextID
	f.posts[post.ID] = post
	return nil
}

func (f *fakePostRepo) GetPost(ctx context.Context, id uint64) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepo) ListByBrief(ctx context.Context, briefID uint64) ([]*model.Post, error) {
	return f.list(func(p *model.Post) bool { return p.BriefID == briefID }), nil
}

func (f *fakePostRepo) ListByBriefAndStatus(ctx context.Context, briefID uint64, status string) ([]*model.Post, error) {
	return f.list(func(p *model.Post) bool { return p.BriefID == briefID && p.Status == status }), nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, id uint64, patch *repository.PostPatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	applyPatch(p, patch)
	return true, nil
}

func (f *fakePostRepo) UpdatePostIfStatus(ctx context.Context, id uint64, expected []string, patch *repository.PostPatch) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	match := false
	for _, st := range expected {
		if p.Status == st {
			match = true
			break
		}
	}
	if !match {
		return false, nil
	}
	applyPatch(p, patch)
	return true, nil
}

func (f *fakePostRepo) list(keep func(*model.Post) bool) []*model.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Post
	for _, p := range f.posts {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func applyPatch(p *model.Post, patch *repository.PostPatch) {
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.EditedContent != nil {
		p.EditedContent = patch.EditedContent
	}
	if patch.ClearEditedContent {
		p.EditedContent = nil
	}
	if patch.IncrEditCount {
		p.EditCount++
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.ScheduledAt != nil {
		p.ScheduledAt = patch.ScheduledAt
	}
	if patch.GenerationTimeMs != nil {
		p.GenerationTimeMs = *patch.GenerationTimeMs
	}
	if patch.ApprovedAt != nil {
		p.ApprovedAt = patch.ApprovedAt
	}
	if patch.ClearApprovedAt {
		p.ApprovedAt = nil
	}
	if patch.PublishedAt != nil {
		p.PublishedAt = patch.PublishedAt
	}
	if patch.PublishError != nil {
		p.PublishError = patch.PublishError
	}
	if patch.ClearPublishError {
		p.PublishError = nil
	}
	if patch.LinkURL != nil {
		p.LinkURL = patch.LinkURL
	}
}

type fakeVersionRepo struct {
	mu       sync.Mutex
	nextID   uint64
	versions map[uint64]*model.PostVersion
}

func newFakeVersionRepo() *fakeVersionRepo {
	return &fakeVersionRepo{versions: map[uint64]*model.PostVersion{}}
}

func (f *fakeVersionRepo) CreateVersion(ctx context.Context, version *model.PostVersion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	version.ID = f.nextID
	f.versions[version.ID] = version
	return nil
}

func (f *fakeVersionRepo) MaxVersion(ctx context.Context, postID uint64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, v := range f.versions {
		if v.PostID == postID && v.Version > max {
			max = v.Version
		}
	}
	return max, nil
}

func (f *fakeVersionRepo) ListByPost(ctx context.Context, postID uint64) ([]*model.PostVersion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PostVersion
	for _, v := range f.versions {
		if v.PostID == postID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (f *fakeVersionRepo) DeleteByPost(ctx context.Context, postID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range f.versions {
		if v.PostID == postID {
			delete(f.versions, id)
		}
	}
	return nil
}

type fakeQueueRepo struct {
	mu      sync.Mutex
	nextID  uint64
	entries map[uint64]*model.PublishQueue
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{entries: map[uint64]*model.PublishQueue{}}
}

func (f *fakeQueueRepo) CreateEntry(ctx context.Context, entry *model.PublishQueue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = f.nextID
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeQueueRepo) GetPendingByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.PublishQueue
	for _, e := range f.entries {
		if e.PostID == postID && e.Status == "pending" {
			if latest == nil || e.ID > latest.ID {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeQueueRepo) GetLatestByPost(ctx context.Context, postID uint64) (*model.PublishQueue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *model.PublishQueue
	for _, e := range f.entries {
		if e.PostID == postID {
			if latest == nil || e.ID > latest.ID {
				latest = e
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeQueueRepo) RecordFailure(ctx context.Context, id uint64, errMsg string, nextRetryAt *time.Time, terminal bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.Status != "pending" {
		return false, nil
	}
	e.Attempts++
	e.LastError = &errMsg
	if terminal {
		e.Status = "failed"
		e.NextRetryAt = nil
	} else {
		e.NextRetryAt = nextRetryAt
	}
	return true, nil
}

func (f *fakeQueueRepo) MarkCompleted(ctx context.Context, postID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.PostID == postID && e.Status == "pending" {
			now := time.Now()
			e.Status = "completed"
			e.CompletedAt = &now
			e.NextRetryAt = nil
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeQueueRepo) ListDueRetries(ctx context.Context, now time.Time) ([]*model.PublishQueue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PublishQueue
	for _, e := range f.entries {
		if e.Status == "pending" && e.Attempts > 0 && e.NextRetryAt != nil && !e.NextRetryAt.After(now) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeQueueRepo) entry(id uint64) *model.PublishQueue {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.entries[id]
	return &cp
}

// fakeSettingSvc 直接用内存表，不经缓存
type fakeSettingSvc struct {
	values map[string]string
}

func newFakeSettingSvc(values map[string]string) *fakeSettingSvc {
	if values == nil {
		values = map[string]string{}
	}
	return &fakeSettingSvc{values: values}
}

func (f *fakeSettingSvc) GetValue(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeSettingSvc) Update(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingSvc) List(ctx context.Context) ([]*model.Setting, error) {
	var out []*model.Setting
	for k, v := range f.values {
		out = append(out, &model.Setting{Key: k, Value: v})
	}
	return out, nil
}

// fakeGenerator 按注入函数产出内容
type fakeGenerator struct {
	fn    func(req *llm.Request) (string, error)
	calls []*llm.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req *llm.Request) (string, error) {
	f.calls = append(f.calls, req)
	if f.fn != nil {
		return f.fn(req)
	}
	return "generated", nil
}

// recordingNotifier 记录所有通知
type recordingNotifier struct {
	mu            sync.Mutex
	notifications []*Notification
}

func (r *recordingNotifier) Notify(ctx context.Context, n *Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notifications)
}

// fakeDeliverer 按注入函数决定投递结果
type fakeDeliverer struct {
	fn       func(url string, payload *DispatchPayload) error
	payloads []*DispatchPayload
}

func (f *fakeDeliverer) Deliver(ctx context.Context, url string, payload *DispatchPayload) error {
	f.payloads = append(f.payloads, payload)
	if f.fn != nil {
		return f.fn(url, payload)
	}
	return nil
}

// fakeLocker 进程内互斥
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]string{}}
}

func (f *fakeLocker) TryLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[key]; ok {
		return false, nil
	}
	f.held[key] = value
	return true, nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == value {
		delete(f.held, key)
	}
}

var errBoom = errors.New("boom")
