package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/Siloq-app/siloq-wordpress-sub001/internal/apperror"
	"github.com/Siloq-app/siloq-wordpress-sub001/internal/entity"
)

var errStoreDown = errors.New("store unavailable")

type fakePages struct {
	mu      sync.Mutex
	pages   map[int64]*entity.Page
	nextID  int64
	updates int
	saveErr error
}

func newFakePages(pages ...*entity.Page) *fakePages {
	f := &fakePages{pages: map[int64]*entity.Page{}, nextID: 1}
	for _, p := range pages {
		f.put(p)
	}
	return f
}

func (f *fakePages) put(p *entity.Page) {
	if p.Sync.Status == "" {
		p.Sync.Status = entity.SyncStatusNever
	}
	f.pages[p.ID] = p
	if p.ID >= f.nextID {
		f.nextID = p.ID + 1
	}
}

func (f *fakePages) get(id int64) *entity.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.pages[id]
	return &cp
}

func (f *fakePages) FindByID(ctx context.Context, id int64) (*entity.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "pages.FindByID", fmt.Sprintf("page %d not found", id))
	}
	cp := *p
	return &cp, nil
}

func (f *fakePages) published(types []string) []*entity.Page {
	var out []*entity.Page
	for _, p := range f.pages {
		if p.Status == entity.PageStatusPublish && slices.Contains(types, p.Type) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakePages) ListPublished(ctx context.Context, types []string, offset, limit int) ([]*entity.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.published(types)
	if offset >= len(all) {
		return nil, nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], nil
}

func (f *fakePages) CountPublished(ctx context.Context, types []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published(types)), nil
}

func (f *fakePages) ListOutdated(ctx context.Context, types []string, before time.Time, limit int) ([]*entity.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Page
	for _, p := range f.published(types) {
		if p.Sync.LastSyncedAt == nil || p.Sync.LastSyncedAt.Before(before) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakePages) UpdateContent(ctx context.Context, id int64, title, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pages[id]
	if !ok {
		return apperror.New(apperror.KindNotFound, "pages.UpdateContent", "page not found")
	}
	p.Title, p.Content = title, content
	f.updates++
	return nil
}

func (f *fakePages) CreateDraft(ctx context.Context, page *entity.Page) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *page
	cp.ID = f.nextID
	f.put(&cp)
	return cp.ID, nil
}

func (f *fakePages) SaveSyncState(ctx context.Context, id int64, state entity.SyncState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	p, ok := f.pages[id]
	if !ok {
		return apperror.New(apperror.KindNotFound, "pages.SaveSyncState", "page not found")
	}
	p.Sync = state
	return nil
}

type fakeBackups struct {
	mu      sync.Mutex
	items   []*entity.Backup
	nextID  int64
	saveErr error
	clock   time.Time
}

func newFakeBackups() *fakeBackups {
	return &fakeBackups{nextID: 1, clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeBackups) Save(ctx context.Context, b *entity.Backup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.clock = f.clock.Add(time.Minute)
	b.ID, b.CreatedAt = f.nextID, f.clock
	f.nextID++
	cp := *b
	f.items = append(f.items, &cp)
	return nil
}

func (f *fakeBackups) byPage(pageID int64) []*entity.Backup {
	var out []*entity.Backup
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].PageID == pageID {
			out = append(out, f.items[i])
		}
	}
	return out
}

func (f *fakeBackups) Latest(ctx context.Context, pageID int64) (*entity.Backup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byPage(pageID)
	if len(list) == 0 {
		return nil, apperror.New(apperror.KindNoBackup, "backups.Latest", "no backup available for this page")
	}
	return list[0], nil
}

func (f *fakeBackups) ListByPage(ctx context.Context, pageID int64) ([]*entity.Backup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPage(pageID), nil
}

func (f *fakeBackups) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = slices.DeleteFunc(f.items, func(b *entity.Backup) bool { return b.ID == id })
	return nil
}

func (f *fakeBackups) Prune(ctx context.Context, pageID int64, keep int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.byPage(pageID)
	if keep <= 0 || len(list) <= keep {
		return 0, nil
	}
	drop := map[int64]bool{}
	for _, b := range list[keep:] {
		drop[b.ID] = true
	}
	f.items = slices.DeleteFunc(f.items, func(b *entity.Backup) bool { return drop[b.ID] })
	return int64(len(drop)), nil
}

type fakeSettings struct {
	mu       sync.Mutex
	settings entity.Settings
	loads    int
	loadErr  error
}

func configured() *fakeSettings {
	return &fakeSettings{settings: entity.Settings{APIURL: "https://api.siloq.test/api/v1", APIKey: "sk-test", SiteID: "site-1"}}
}

func (f *fakeSettings) Load(ctx context.Context) (entity.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.settings, f.loadErr
}

func (f *fakeSettings) SetOption(ctx context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch name {
	case entity.OptionAPIURL:
		f.settings.APIURL = value
	case entity.OptionAPIKey:
		f.settings.APIKey = value
	case entity.OptionSiteID:
		f.settings.SiteID = value
	default:
		return fmt.Errorf("unexpected option %s", name)
	}
	return nil
}

type fakeClient struct {
	mu         sync.Mutex
	syncCalls  []int64
	syncErr    map[int64]error
	jobs       map[string]*entity.ContentJob
	sites      []entity.Site
	siteCalls  int
	conn       *entity.ConnectionInfo
	profile    entity.BusinessProfile
	lastSiteID string
}

func newFakeClient() *fakeClient {
	return &fakeClient{syncErr: map[int64]error{}, jobs: map[string]*entity.ContentJob{}}
}

func (f *fakeClient) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.syncCalls)
}

func (f *fakeClient) TestConnection(ctx context.Context, creds entity.Credentials) (*entity.ConnectionInfo, error) {
	if creds.APIKey == "bad" {
		return nil, apperror.Permanent("siloq.TestConnection", "invalid API credentials", 401)
	}
	if f.conn != nil {
		return f.conn, nil
	}
	return &entity.ConnectionInfo{}, nil
}

func (f *fakeClient) SyncPage(ctx context.Context, creds entity.Credentials, siteID string, payload *entity.SyncPayload) (*entity.SyncReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls = append(f.syncCalls, payload.ExternalID)
	f.lastSiteID = siteID
	if err := f.syncErr[payload.ExternalID]; err != nil {
		return nil, err
	}
	return &entity.SyncReceipt{RemoteID: fmt.Sprintf("remote-%d", payload.ExternalID)}, nil
}

func (f *fakeClient) CreateContentJob(ctx context.Context, creds entity.Credentials, siteID string, pageID int64) (*entity.ContentJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &entity.ContentJob{ID: fmt.Sprintf("job-%d", pageID), PageID: pageID, Status: entity.JobQueued}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeClient) GetJobStatus(ctx context.Context, creds entity.Credentials, jobID string) (*entity.ContentJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, apperror.Permanent("siloq.GetJobStatus", "resource not found", 404)
	}
	return job, nil
}

func (f *fakeClient) GetBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string) (entity.BusinessProfile, error) {
	return f.profile, nil
}

func (f *fakeClient) SaveBusinessProfile(ctx context.Context, creds entity.Credentials, siteID string, profile entity.BusinessProfile) error {
	f.profile = profile
	f.lastSiteID = siteID
	return nil
}

func (f *fakeClient) ListSites(ctx context.Context, creds entity.Credentials) ([]entity.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.siteCalls++
	return f.sites, nil
}

type staticSite string

func (s staticSite) ResolveSiteID(ctx context.Context, settings entity.Settings) (string, error) {
	if settings.SiteID != "" {
		return settings.SiteID, nil
	}
	return string(s), nil
}

type fakeCache struct {
	values map[string]string
	ttl    time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, account string) (string, error) {
	return f.values[account], nil
}

func (f *fakeCache) Set(ctx context.Context, account, siteID string, ttl time.Duration) error {
	f.values[account] = siteID
	f.ttl = ttl
	return nil
}

type fakeLeases struct {
	mu      sync.Mutex
	held    map[string]string
	n       int
	extends int
	// lostAfter makes every renewal after the first lostAfter fail; 0 never fails.
	lostAfter int
}

func newFakeLeases() *fakeLeases {
	return &fakeLeases{held: map[string]string{}}
}

func (f *fakeLeases) Acquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.held[name]; ok {
		return "", false, nil
	}
	f.n++
	token := fmt.Sprintf("token-%d", f.n)
	f.held[name] = token
	return token, true, nil
}

func (f *fakeLeases) Extend(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.extends++
	if f.held[name] != token {
		return false, nil
	}
	if f.lostAfter > 0 && f.extends > f.lostAfter {
		delete(f.held, name)
		return false, nil
	}
	return true, nil
}

func (f *fakeLeases) Release(ctx context.Context, name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[name] == token {
		delete(f.held, name)
	}
	return nil
}

func publishedPage(id int64) *entity.Page {
	return &entity.Page{
		ID:        id,
		Type:      entity.PageTypePage,
		Title:     fmt.Sprintf("Page %d", id),
		Slug:      fmt.Sprintf("page-%d", id),
		URL:       fmt.Sprintf("https://example.com/page-%d/", id),
		Status:    entity.PageStatusPublish,
		Content:   fmt.Sprintf("<h1>Page %d</h1><p>Original body.</p>", id),
		UpdatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
