package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/benesafe/registry/internal/core/domain"
	"github.com/benesafe/registry/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubRoleRepo struct {
	order []string
	byID  map[string]*domain.Role
}

func newStubRoleRepo(roles ...domain.Role) *stubRoleRepo {
	r := &stubRoleRepo{byID: make(map[string]*domain.Role)}
	for _, role := range roles {
		_ = r.Create(context.Background(), &role)
	}
	return r
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	clone := *role
	return &clone, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	for _, id := range r.order {
		if r.byID[id].Name == name {
			clone := *r.byID[id]
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) ListActive(_ context.Context) ([]domain.Role, error) {
	var out []domain.Role
	for _, id := range r.order {
		if r.byID[id].Active {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) error {
	if _, exists := r.byID[role.ID]; exists {
		return domain.ErrDuplicate
	}
	clone := *role
	r.byID[role.ID] = &clone
	r.order = append(r.order, role.ID)
	return nil
}

func (r *stubRoleRepo) Update(_ context.Context, role *domain.Role) error {
	if _, ok := r.byID[role.ID]; !ok {
		return domain.ErrRoleNotFound
	}
	clone := *role
	r.byID[role.ID] = &clone
	return nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRoleNotFound
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type stubBouquetRepo struct {
	order []string
	byID  map[string]*domain.Bouquet
}

func newStubBouquetRepo(bs ...domain.Bouquet) *stubBouquetRepo {
	r := &stubBouquetRepo{byID: make(map[string]*domain.Bouquet)}
	for _, b := range bs {
		_ = r.Create(context.Background(), &b)
	}
	return r
}

func (r *stubBouquetRepo) FindByID(_ context.Context, id string) (*domain.Bouquet, error) {
	b, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrBouquetNotFound
	}
	clone := *b
	return &clone, nil
}

func (r *stubBouquetRepo) FindByName(_ context.Context, name string) (*domain.Bouquet, error) {
	for _, id := range r.order {
		if r.byID[id].Name == name {
			clone := *r.byID[id]
			return &clone, nil
		}
	}
	return nil, domain.ErrBouquetNotFound
}

func (r *stubBouquetRepo) ListActive(_ context.Context) ([]domain.Bouquet, error) {
	var out []domain.Bouquet
	for _, id := range r.order {
		if r.byID[id].Active {
			out = append(out, *r.byID[id])
		}
	}
	return out, nil
}

func (r *stubBouquetRepo) Create(_ context.Context, b *domain.Bouquet) error {
	if _, exists := r.byID[b.ID]; exists {
		return domain.ErrDuplicate
	}
	clone := *b
	r.byID[b.ID] = &clone
	r.order = append(r.order, b.ID)
	return nil
}

func (r *stubBouquetRepo) Update(_ context.Context, b *domain.Bouquet) error {
	if _, ok := r.byID[b.ID]; !ok {
		return domain.ErrBouquetNotFound
	}
	clone := *b
	r.byID[b.ID] = &clone
	return nil
}

func (r *stubBouquetRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrBouquetNotFound
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type stubProfileRepo struct {
	byUser    map[string]*domain.Profile
	createErr error
}

func newStubProfileRepo(ps ...domain.Profile) *stubProfileRepo {
	r := &stubProfileRepo{byUser: make(map[string]*domain.Profile)}
	for _, p := range ps {
		_ = r.Create(context.Background(), &p)
	}
	return r
}

func (r *stubProfileRepo) FindByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	p, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, exists := r.byUser[p.UserID]; exists {
		return domain.ErrDuplicate
	}
	clone := *p
	r.byUser[p.UserID] = &clone
	return nil
}

func (r *stubProfileRepo) Update(_ context.Context, p *domain.Profile) error {
	if _, ok := r.byUser[p.UserID]; !ok {
		return domain.ErrProfileNotFound
	}
	clone := *p
	r.byUser[p.UserID] = &clone
	return nil
}

// List applies the same filters the Mongo repository does.
func (r *stubProfileRepo) List(_ context.Context, f ports.ListProfilesFilter) ([]domain.Profile, int64, error) {
	var allowed map[string]bool
	if f.UserIDs != nil {
		allowed = make(map[string]bool, len(f.UserIDs))
		for _, id := range f.UserIDs {
			allowed[id] = true
		}
	}

	var matched []domain.Profile
	for _, p := range r.byUser {
		if allowed != nil && !allowed[p.UserID] {
			continue
		}
		if f.RoleID != "" && (p.RoleID == nil || *p.RoleID != f.RoleID) {
			continue
		}
		if f.BouquetID != "" && (p.BouquetID == nil || *p.BouquetID != f.BouquetID) {
			continue
		}
		if f.Status != "" && p.VerificationStatus != f.Status {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].UserID < matched[j].UserID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Limit <= 0 {
		return matched, total, nil
	}
	skip := (f.Page - 1) * f.Limit
	if skip < 0 {
		skip = 0
	}
	if skip > len(matched) {
		return []domain.Profile{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubProfileRepo) ListMissingDefaults(_ context.Context) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, p := range r.byUser {
		if p.RoleID == nil || p.BouquetID == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProfileRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, p := range r.byUser {
		if p.RoleID != nil && *p.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

func (r *stubProfileRepo) CountByBouquet(_ context.Context, bouquetID string) (int64, error) {
	var n int64
	for _, p := range r.byUser {
		if p.BouquetID != nil && *p.BouquetID == bouquetID {
			n++
		}
	}
	return n, nil
}

type stubRecordRepo struct {
	records   []domain.Record
	createErr error
}

func (r *stubRecordRepo) Count(_ context.Context, ownerID string, kind domain.RecordKind, category domain.AssetCategory) (int, error) {
	n := 0
	for _, rec := range r.records {
		if rec.OwnerID != ownerID || rec.Kind != kind || rec.Deleted {
			continue
		}
		if category != "" && rec.Category != category {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubRecordRepo) Create(_ context.Context, rec *domain.Record) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, *rec)
	return nil
}

func (r *stubRecordRepo) FindByID(_ context.Context, ownerID, id string) (*domain.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id && rec.OwnerID == ownerID && !rec.Deleted {
			clone := rec
			return &clone, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *stubRecordRepo) ListByOwner(_ context.Context, ownerID string, kind domain.RecordKind) ([]domain.Record, error) {
	var out []domain.Record
	for _, rec := range r.records {
		if rec.OwnerID == ownerID && !rec.Deleted && (kind == "" || rec.Kind == kind) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *stubRecordRepo) SoftDelete(_ context.Context, ownerID, id string) error {
	for i := range r.records {
		if r.records[i].ID == id && r.records[i].OwnerID == ownerID && !r.records[i].Deleted {
			r.records[i].Deleted = true
			return nil
		}
	}
	return domain.ErrRecordNotFound
}

type stubAuthRepo struct {
	users map[string]*domain.User
	// profiles backs ListWithoutProfile; nil means no user has a profile.
	profiles *stubProfileRepo
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) SearchIDs(_ context.Context, query string) ([]string, error) {
	q := strings.ToLower(query)
	var ids []string
	for id, u := range r.users {
		hay := strings.ToLower(u.Username + " " + u.Email + " " + u.FirstName + " " + u.LastName)
		if strings.Contains(hay, q) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubAuthRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubAuthRepo) ListWithoutProfile(_ context.Context) ([]string, error) {
	ids := []string{}
	for id := range r.users {
		if r.profiles != nil {
			if _, ok := r.profiles.byUser[id]; ok {
				continue
			}
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type stubTokenStore struct {
	mu     sync.Mutex
	seq    int
	tokens map[string]string
}

func newStubTokenStore() *stubTokenStore {
	return &stubTokenStore{tokens: make(map[string]string)}
}

func (s *stubTokenStore) Issue(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := userID + "-token-" + strings.Repeat("x", s.seq)
	s.tokens[token] = userID
	return token, nil
}

func (s *stubTokenStore) Consume(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[token]
	if !ok {
		return "", domain.ErrInvalidToken
	}
	delete(s.tokens, token)
	return userID, nil
}

type stubMailQueue struct {
	sent []ports.MailMessage
}

func (q *stubMailQueue) Enqueue(msg ports.MailMessage) {
	q.sent = append(q.sent, msg)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func strPtr(s string) *string { return &s }

func fixtureRoles() []domain.Role {
	return []domain.Role{
		{
			ID: "role-super", Name: "SuperAdmin", Category: domain.CategoryAdmin, SubCategory: domain.SubSuperAdmin,
			Capabilities: domain.NewCapabilitySet(domain.CapManageUsers, domain.CapAssignBouquets, domain.CapApproveDocuments),
			Active:       true,
		},
		{
			ID: "role-legal", Name: "Legal Verifier", Category: domain.CategoryVerifier, SubCategory: domain.SubLegalVerifier,
			Capabilities: domain.NewCapabilitySet(domain.CapViewPendingVerifications, domain.CapReviewApprove),
			Active:       true,
		},
		{
			ID: "role-standard", Name: "Standard User", Category: domain.CategoryStandard,
			Capabilities: domain.NewCapabilitySet(domain.CapManageAssets, domain.CapAddBeneficiaries, domain.CapAddSpouseDependents),
			Active:       true,
		},
	}
}

func fixtureBouquets() []domain.Bouquet {
	return []domain.Bouquet{
		{ID: "b-gold", Name: "gold", Price: 50000, MaxAssetsPerCategory: domain.Unlimited, MaxBeneficiaries: domain.Unlimited, MaxDependents: domain.Unlimited, HasRewardTracker: true, RewardPercentage: 30, Active: true},
		{ID: "b-blue", Name: "blue", Price: 10000, MaxAssetsPerCategory: 3, MaxBeneficiaries: 3, MaxDependents: 1, CanExportReports: true, Active: true},
		{ID: "b-red", Name: "red", Price: 25000, MaxAssetsPerCategory: 6, MaxBeneficiaries: 5, MaxDependents: 3, Active: true},
		{ID: "b-legacy", Name: "legacy", Price: 0, MaxAssetsPerCategory: 1, Active: false},
	}
}
