package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jiwoolee/maru/internal/domain"
	"github.com/jiwoolee/maru/internal/repository"
)

// In-memory fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile // keyed by UserID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (r *fakeProfileRepo) add(p domain.Profile) *domain.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := p
	if cp.ID == uuid.Nil {
		cp.ID = uuid.New()
	}
	r.profiles[cp.UserID] = &cp
	return &cp
}

func (r *fakeProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	r.add(*profile)
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeProfileRepo) GetByUrlname(ctx context.Context, urlname string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if p.Urlname == urlname {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *profile
	r.profiles[profile.UserID] = &cp
	return nil
}

func (r *fakeProfileRepo) SearchByBlogTitle(ctx context.Context, keyword string) ([]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Profile
	for _, p := range r.profiles {
		if containsFold(p.BlogTitle, keyword) {
			out = append(out, *p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func (r *fakeProfileRepo) SearchByNameOrUrlname(ctx context.Context, keyword string) ([]domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Profile
	for _, p := range r.profiles {
		if containsFold(p.Urlname, keyword) || containsFold(p.Username, keyword) {
			out = append(out, *p)
		}
	}
	sortProfiles(out)
	return out, nil
}

func sortProfiles(ps []domain.Profile) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].Urlname < ps[j].Urlname })
}

type edgeKey struct {
	from, to uuid.UUID
}

type fakeNeighborRepo struct {
	mu       sync.Mutex
	edges    map[edgeKey]*domain.NeighborRequest
	profiles *fakeProfileRepo // for joined fields in ListIncoming
}

func newFakeNeighborRepo(profiles *fakeProfileRepo) *fakeNeighborRepo {
	return &fakeNeighborRepo{
		edges:    make(map[edgeKey]*domain.NeighborRequest),
		profiles: profiles,
	}
}

func (r *fakeNeighborRepo) CreateRequest(ctx context.Context, req *domain.NeighborRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edgeKey{req.FromID, req.ToID}
	if existing, ok := r.edges[key]; ok && existing.Status == domain.NeighborStatusPending {
		return repository.ErrDuplicatePending
	}
	cp := *req
	r.edges[key] = &cp
	return nil
}

func (r *fakeNeighborRepo) GetRequest(ctx context.Context, fromID, toID uuid.UUID) (*domain.NeighborRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.edges[edgeKey{fromID, toID}]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeNeighborRepo) PendingExists(ctx context.Context, fromID, toID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.edges[edgeKey{fromID, toID}]
	return ok && req.Status == domain.NeighborStatusPending, nil
}

func (r *fakeNeighborRepo) AreMutual(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.areMutualLocked(userA, userB), nil
}

func (r *fakeNeighborRepo) areMutualLocked(userA, userB uuid.UUID) bool {
	for _, key := range []edgeKey{{userA, userB}, {userB, userA}} {
		if req, ok := r.edges[key]; ok && req.Status == domain.NeighborStatusAccepted {
			return true
		}
	}
	return false
}

func (r *fakeNeighborRepo) AcceptAllPending(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, key := range []edgeKey{{userA, userB}, {userB, userA}} {
		if req, ok := r.edges[key]; ok && req.Status == domain.NeighborStatusPending {
			req.Status = domain.NeighborStatusAccepted
			n++
		}
	}
	return n, nil
}

func (r *fakeNeighborRepo) DeletePending(ctx context.Context, fromID, toID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := edgeKey{fromID, toID}
	if req, ok := r.edges[key]; ok && req.Status == domain.NeighborStatusPending {
		delete(r.edges, key)
		return 1, nil
	}
	return 0, nil
}

func (r *fakeNeighborRepo) DeleteAccepted(ctx context.Context, userA, userB uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, key := range []edgeKey{{userA, userB}, {userB, userA}} {
		if req, ok := r.edges[key]; ok && req.Status == domain.NeighborStatusAccepted {
			delete(r.edges, key)
			n++
		}
	}
	return n, nil
}

func (r *fakeNeighborRepo) ListIncoming(ctx context.Context, toID uuid.UUID) ([]domain.NeighborRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.NeighborRequest
	for _, req := range r.edges {
		if req.ToID != toID || req.Status != domain.NeighborStatusPending {
			continue
		}
		cp := *req
		if from, _ := r.profiles.GetByUserID(ctx, req.FromID); from != nil {
			cp.FromUrlname = from.Urlname
			cp.FromUsername = from.Username
			cp.FromUserPic = from.UserPic
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeNeighborRepo) ListNeighborIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]struct{})
	for key, req := range r.edges {
		if req.Status != domain.NeighborStatusAccepted {
			continue
		}
		switch userID {
		case key.from:
			seen[key.to] = struct{}{}
		case key.to:
			seen[key.from] = struct{}{}
		}
	}
	ids := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeNeighborRepo) ListNeighborProfiles(ctx context.Context, userID uuid.UUID) ([]domain.Profile, error) {
	ids, _ := r.ListNeighborIDs(ctx, userID)
	var out []domain.Profile
	for _, id := range ids {
		if p, _ := r.profiles.GetByUserID(ctx, id); p != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *fakeNeighborRepo) CountNeighbors(ctx context.Context, userID uuid.UUID) (int64, error) {
	ids, _ := r.ListNeighborIDs(ctx, userID)
	return int64(len(ids)), nil
}

type fakePostRepo struct {
	mu    sync.RWMutex
	posts []domain.Post
}

func (r *fakePostRepo) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append(r.posts, *post)
	return nil
}

func (r *fakePostRepo) matches(p *domain.Post, keyword string) bool {
	if containsFold(p.Title, keyword) {
		return true
	}
	for _, t := range p.Texts {
		if containsFold(t.Content, keyword) {
			return true
		}
	}
	for _, img := range p.Images {
		if containsFold(img.Caption, keyword) {
			return true
		}
	}
	return false
}

func (r *fakePostRepo) SearchByAuthor(ctx context.Context, authorID uuid.UUID, keyword string) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Post
	for i := range r.posts {
		p := &r.posts[i]
		if p.AuthorID == authorID && p.Visibility != domain.VisibilityMe && r.matches(p, keyword) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) SearchEveryone(ctx context.Context, keyword string) ([]domain.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Post
	for i := range r.posts {
		p := &r.posts[i]
		if p.Visibility == domain.VisibilityEveryone && r.matches(p, keyword) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeCache struct {
	mu   sync.Mutex
	sets map[uuid.UUID]map[uuid.UUID]struct{}
}

func newFakeCache() *fakeCache {
	return &fakeCache{sets: make(map[uuid.UUID]map[uuid.UUID]struct{})}
}

func (c *fakeCache) set(userID uuid.UUID) map[uuid.UUID]struct{} {
	if _, ok := c.sets[userID]; !ok {
		c.sets[userID] = make(map[uuid.UUID]struct{})
	}
	return c.sets[userID]
}

func (c *fakeCache) Add(ctx context.Context, userA, userB uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(userA)[userB] = struct{}{}
	c.set(userB)[userA] = struct{}{}
	return nil
}

func (c *fakeCache) Remove(ctx context.Context, userA, userB uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.set(userA), userB)
	delete(c.set(userB), userA)
	return nil
}

func (c *fakeCache) Count(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	members, ok := c.sets[userID]
	if !ok {
		return 0, false, nil
	}
	return int64(len(members)), true, nil
}

func (c *fakeCache) Rebuild(ctx context.Context, userID uuid.UUID, neighborIDs []uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	members := make(map[uuid.UUID]struct{}, len(neighborIDs))
	for _, id := range neighborIDs {
		members[id] = struct{}{}
	}
	c.sets[userID] = members
	return nil
}

type notifiedRequest struct {
	to  uuid.UUID
	req domain.NeighborRequest
}

type notifiedAccept struct {
	to uuid.UUID
	by domain.Profile
}

type fakeNotifier struct {
	mu       sync.Mutex
	requests []notifiedRequest
	accepts  []notifiedAccept
}

func (n *fakeNotifier) NotifyNeighborRequest(toUserID uuid.UUID, req *domain.NeighborRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, notifiedRequest{to: toUserID, req: *req})
}

func (n *fakeNotifier) NotifyNeighborAccepted(toUserID uuid.UUID, by *domain.Profile) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepts = append(n.accepts, notifiedAccept{to: toUserID, by: *by})
}

// seedProfile creates a profile with sensible defaults for tests.
func seedProfile(repo *fakeProfileRepo, urlname, username string) *domain.Profile {
	return repo.add(domain.Profile{
		UserID:             uuid.New(),
		Urlname:            urlname,
		Username:           username,
		BlogTitle:          username + "'s blog",
		NeighborVisibility: true,
	})
}
