package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"classifieds-api/internal/core/auth"
	"classifieds-api/internal/core/config"
	"classifieds-api/internal/core/events"
	"classifieds-api/internal/core/media"
	"classifieds-api/internal/domain"
	"classifieds-api/internal/repo"
	"classifieds-api/internal/testutil"
)

type recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recorder) Publish(_ context.Context, subject string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subjects = append(r.subjects, subject)
	return nil
}
func (r *recorder) Close() {}

func (r *recorder) has(subject string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

type memRevoker struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (m *memRevoker) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = ttl
	return nil
}

func (m *memRevoker) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok, nil
}

type env struct {
	db       *gorm.DB
	store    *media.MemoryStore
	events   *recorder
	revoker  *memRevoker
	users    *UserService
	ads      *AdService
	wishlist *WishlistService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store := media.NewMemory()
	rec := &recorder{}
	rev := &memRevoker{ids: map[string]time.Duration{}}
	log := zap.NewNop()
	up := media.NewUploader(store, config.Media{Folder: "olx-ads", MaxFileMB: 5, MaxWidth: 800, MaxHeight: 600, JPEGQuality: 82}, log)
	jw := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "classifieds-test", TTL: time.Hour}

	adRepo := repo.NewAdRepo(db)
	return &env{
		db:       db,
		store:    store,
		events:   rec,
		revoker:  rev,
		users:    NewUserService(repo.NewUserRepo(db), jw, rev, rec, log),
		ads:      NewAdService(adRepo, up, rec, log),
		wishlist: NewWishlistService(repo.NewWishlistRepo(db), adRepo, rec, log),
	}
}

func pngBlob(t *testing.T) media.Blob {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return media.Blob{Filename: "photo.png", ContentType: "image/png", Data: buf.Bytes()}
}

func blobs(t *testing.T, n int) []media.Blob {
	out := make([]media.Blob, n)
	for i := range out {
		out[i] = pngBlob(t)
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func adInput(title string, price float64) AdInput {
	return AdInput{
		Title:       title,
		Description: "A well kept " + title,
		Price:       ptr(price),
		Category:    "Vehicles",
		Condition:   "Like New",
		City:        "Bengaluru",
		State:       "Karnataka",
		Pincode:     "560001",
	}
}

func (e *env) register(t *testing.T, email string) *domain.PublicUser {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Email: email, Password: "secret1", ConfirmPassword: "secret1", FullName: "Asha Rao",
	})
	require.NoError(t, err)
	return u
}

func (e *env) userCount(t *testing.T) int64 {
	var n int64
	require.NoError(t, e.db.Model(&domain.User{}).Count(&n).Error)
	return n
}

// ---------- users ----------

func TestRegisterPasswordMismatch(t *testing.T) {
	e := newEnv(t)
	_, err := e.users.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret2", FullName: "Asha",
	})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	require.NotEmpty(t, de.Fields)
	assert.Equal(t, "confirmpassword", de.Fields[0].Field)
	assert.Zero(t, e.userCount(t))
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	cases := []RegisterInput{
		{Email: "bad", Password: "secret1", ConfirmPassword: "secret1", FullName: "Asha"},
		{Email: "a@example.com", Password: "123", ConfirmPassword: "123", FullName: "Asha"},
		{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1", FullName: "A"},
		{Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1", FullName: "Asha", Role: "root"},
	}
	for _, in := range cases {
		_, err := e.users.Register(context.Background(), in)
		assert.True(t, domain.IsKind(err, domain.KindValidation), "%+v", in)
	}
	assert.Zero(t, e.userCount(t))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	u := e.register(t, "A@Example.com ")
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.True(t, e.events.has(events.UserRegistered))

	_, err := e.users.Register(context.Background(), RegisterInput{
		Email: "a@example.com", Password: "secret1", ConfirmPassword: "secret1", FullName: "Other",
	})
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.EqualValues(t, 1, e.userCount(t))
}

func TestLoginDoesNotLeakWhichFieldWasWrong(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a@example.com")
	ctx := context.Background()

	_, errPw := e.users.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrong-pass"})
	_, errMail := e.users.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	require.Error(t, errPw)
	require.Error(t, errMail)
	assert.True(t, domain.IsKind(errPw, domain.KindAuth))
	assert.Equal(t, domain.KindOf(errPw), domain.KindOf(errMail))
	assert.Equal(t, errPw.Error(), errMail.Error())
	assert.Equal(t, domain.MsgInvalidCredentials, errPw.Error())
}

func TestLoginCurrentUserAndLogout(t *testing.T) {
	e := newEnv(t)
	reg := e.register(t, "a@example.com")
	ctx := context.Background()

	sess, err := e.users.Login(ctx, LoginInput{Email: " A@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)
	assert.Equal(t, reg.ID, sess.User.ID)

	me, err := e.users.CurrentUser(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", me.Email)

	e.users.Logout(ctx, sess.Token)
	_, err = e.users.CurrentUser(ctx, sess.Token)
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))

	// 无 token / 坏 token 登出同样成功
	e.users.Logout(ctx, "")
	e.users.Logout(ctx, "garbage")

	_, err = e.users.CurrentUser(ctx, "")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
	_, err = e.users.CurrentUser(ctx, "not-a-jwt")
	assert.True(t, domain.IsKind(err, domain.KindUnauthenticated))
}

func TestListUsers(t *testing.T) {
	e := newEnv(t)
	e.register(t, "a@example.com")
	e.register(t, "b@example.com")

	users, p, err := e.users.List(context.Background(), "", 1, 1)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.EqualValues(t, 2, p.TotalCount)
	assert.Equal(t, 2, p.TotalPages)
	assert.True(t, p.HasNextPage)
}

// ---------- ads ----------

func TestCreateAdImageCount(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()

	_, err := e.ads.Create(ctx, owner.ID, adInput("Red Bike", 100), nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Create(ctx, owner.ID, adInput("Red Bike", 100), blobs(t, 5))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Empty(t, e.store.Keys())

	for n := 1; n <= 4; n++ {
		ad, err := e.ads.Create(ctx, owner.ID, adInput("Red Bike", 100), blobs(t, n))
		require.NoError(t, err)
		assert.Len(t, ad.Images, n)
	}
}

func TestCreateAdUniqueSlugs(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		ad, err := e.ads.Create(ctx, owner.ID, adInput("Red Bike", 100), blobs(t, 1))
		require.NoError(t, err)
		assert.Regexp(t, `^red-bike-\d{6}$`, ad.Slug)
		assert.False(t, seen[ad.Slug], ad.Slug)
		seen[ad.Slug] = true
		require.NotNil(t, ad.Owner)
		assert.Equal(t, "Asha Rao", ad.Owner.FullName)
	}
	assert.True(t, e.events.has(events.AdCreated))

	ad, err := e.ads.Create(ctx, owner.ID, adInput("!!!", 1), blobs(t, 1))
	require.NoError(t, err)
	assert.Regexp(t, `^ad-\d{6}$`, ad.Slug)
}

func TestCreateAdValidation(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")

	bad := []func(*AdInput){
		func(in *AdInput) { in.Title = "   " },
		func(in *AdInput) { in.Price = ptr(-1.0) },
		func(in *AdInput) { in.Price = nil },
		func(in *AdInput) { in.Category = "Toys" },
		func(in *AdInput) { in.Condition = "Broken" },
		func(in *AdInput) { in.Pincode = "12345" },
		func(in *AdInput) { in.City = "" },
	}
	for i, mut := range bad {
		in := adInput("Lamp", 10)
		mut(&in)
		_, err := e.ads.Create(context.Background(), owner.ID, in, blobs(t, 1))
		assert.True(t, domain.IsKind(err, domain.KindValidation), "case %d", i)
	}
	assert.Empty(t, e.store.Keys())
}

type failingCreate struct{ domain.AdRepository }

func (failingCreate) Create(context.Context, *domain.Ad) error { return errors.New("db down") }

func TestCreateAdRollsBackImagesWhenPersistFails(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	up := media.NewUploader(e.store, config.Media{Folder: "olx-ads", MaxFileMB: 5}, zap.NewNop())
	svc := NewAdService(failingCreate{repo.NewAdRepo(e.db)}, up, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), owner.ID, adInput("Chair", 5), blobs(t, 3))
	require.Error(t, err)
	assert.Empty(t, e.store.Keys())
	assert.Len(t, e.store.Deleted, 3)
}

func TestCreateAdUploadFailure(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	e.store.FailPut = func(int) error { return errors.New("host down") }

	_, err := e.ads.Create(context.Background(), owner.ID, adInput("Chair", 5), blobs(t, 2))
	assert.True(t, domain.IsKind(err, domain.KindUpload))
	var n int64
	require.NoError(t, e.db.Model(&domain.Ad{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSearchPriceRangeAndPagination(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	for _, p := range []float64{50, 100, 120, 150, 199.99, 200, 201, 500} {
		_, err := e.ads.Create(ctx, owner.ID, adInput("Cycle", p), blobs(t, 1))
		require.NoError(t, err)
	}

	page, err := e.ads.Search(ctx, SearchInput{MinPrice: ptr(100.0), MaxPrice: ptr(200.0), Limit: 2, Page: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Pagination.TotalCount)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 3, page.Pagination.CurrentPage)
	assert.False(t, page.Pagination.HasNextPage)
	assert.True(t, page.Pagination.HasPrevPage)
	assert.Len(t, page.Ads, 1)

	all, err := e.ads.Search(ctx, SearchInput{MinPrice: ptr(100.0), MaxPrice: ptr(200.0), Limit: 50})
	require.NoError(t, err)
	for _, a := range all.Ads {
		assert.GreaterOrEqual(t, a.Price, 100.0)
		assert.LessOrEqual(t, a.Price, 200.0)
	}

	asc, err := e.ads.Search(ctx, SearchInput{SortBy: "price", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, asc.Ads[0].Price)
	assert.Equal(t, domain.DefaultAdLimit, asc.Pagination.Limit)

	big, err := e.ads.Search(ctx, SearchInput{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxLimit, big.Pagination.Limit)

	neg, err := e.ads.Search(ctx, SearchInput{Limit: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, neg.Pagination.Limit)
	assert.Len(t, neg.Ads, 1)
}

func TestSearchRejectsBadEnums(t *testing.T) {
	e := newEnv(t)
	for _, in := range []SearchInput{
		{SortBy: "views"},
		{SortOrder: "up"},
		{Condition: "Mint"},
		{MinPrice: ptr(-5.0)},
		{Page: -1},
	} {
		_, err := e.ads.Search(context.Background(), in)
		assert.True(t, domain.IsKind(err, domain.KindValidation), "%+v", in)
	}
}

type countingLoader struct{ loads int }

func (c *countingLoader) GetOrLoad(ctx context.Context, _ string, _ time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	c.loads++
	return load(ctx)
}

func TestSearchUsesCache(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	_, err := e.ads.Create(context.Background(), owner.ID, adInput("Cycle", 10), blobs(t, 1))
	require.NoError(t, err)

	c := &countingLoader{}
	e.ads.WithSearchCache(c, time.Minute)
	page, err := e.ads.Search(context.Background(), SearchInput{Query: "cycle"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.loads)
	require.Len(t, page.Ads, 1)
	assert.Equal(t, "Cycle", page.Ads[0].Title)

	assert.NotEqual(t, searchKey(SearchInput{Query: "a"}.filter()), searchKey(SearchInput{Query: "b"}.filter()))
}

func TestGetBySlugIncrementsViews(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Guitar", 300), blobs(t, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 0, ad.Views)

	first, err := e.ads.GetBySlug(ctx, ad.Slug)
	require.NoError(t, err)
	second, err := e.ads.GetBySlug(ctx, ad.Slug)
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Views)
	assert.EqualValues(t, 2, second.Views)
	require.NotNil(t, second.Owner)

	_, err = e.ads.GetBySlug(ctx, "missing-000000")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetBySlugHidesInactive(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Guitar", 300), blobs(t, 1))
	require.NoError(t, err)

	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Status: ptr("sold")}, nil)
	require.NoError(t, err)
	_, err = e.ads.GetBySlug(ctx, ad.Slug)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestListByOwner(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	other := e.register(t, "x@example.com")
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := e.ads.Create(ctx, owner.ID, adInput("Item", 1), blobs(t, 1))
		require.NoError(t, err)
	}
	_, err := e.ads.Create(ctx, other.ID, adInput("Other", 1), blobs(t, 1))
	require.NoError(t, err)

	page, err := e.ads.ListByOwner(ctx, owner.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Ads, 2)
	assert.EqualValues(t, 3, page.Pagination.TotalCount)
	assert.True(t, page.Pagination.HasNextPage)
}

func TestUpdateAndDeleteRequireOwnership(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	stranger := e.register(t, "s@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Sofa", 900), blobs(t, 2))
	require.NoError(t, err)

	_, err = e.ads.Update(ctx, ad.ID, stranger.ID, AdUpdateInput{Title: ptr("Mine now")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	err = e.ads.Delete(ctx, ad.ID, stranger.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = e.ads.Update(ctx, "no-such-ad", owner.ID, AdUpdateInput{Title: ptr("x")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	require.NoError(t, e.ads.Delete(ctx, ad.ID, owner.ID))
	assert.Empty(t, e.store.Keys())
	assert.True(t, e.events.has(events.AdDeleted))
	err = e.ads.Delete(ctx, ad.ID, owner.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestUpdateMergesLocationAndReplacesImages(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Sofa", 900), blobs(t, 2))
	require.NoError(t, err)
	oldKeys := ad.RemoteIDs()

	got, err := e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{
		Title: ptr("  Leather sofa "),
		City:  ptr("Mysuru"),
		Price: ptr(850.0),
	}, blobs(t, 3))
	require.NoError(t, err)
	assert.Equal(t, "Leather sofa", got.Title)
	assert.Equal(t, 850.0, got.Price)
	assert.Equal(t, "Mysuru", got.Location.City)
	assert.Equal(t, "Karnataka", got.Location.State)
	assert.Equal(t, "560001", got.Location.Pincode)
	assert.Equal(t, ad.Slug, got.Slug)
	require.Len(t, got.Images, 3)

	keys := e.store.Keys()
	assert.Len(t, keys, 3)
	for _, k := range oldKeys {
		assert.NotContains(t, keys, k)
	}
	assert.True(t, e.events.has(events.AdUpdated))
}

func TestUpdateValidation(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Sofa", 900), blobs(t, 1))
	require.NoError(t, err)

	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Pincode: ptr("abc")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Title: ptr(" ")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{}, blobs(t, 5))
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	// 校验失败不应删除旧图
	assert.Len(t, e.store.Keys(), 1)
}

func TestUpdateKeepsOldImagesWhenNewOnesAreCorrupt(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Sofa", 900), blobs(t, 1))
	require.NoError(t, err)
	oldKeys := ad.RemoteIDs()

	bad := media.Blob{Filename: "bad.png", ContentType: "image/png", Data: []byte("not a png")}
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{}, []media.Blob{bad})
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	assert.Equal(t, oldKeys, e.store.Keys())
	assert.Empty(t, e.store.Deleted)
	got, err := e.ads.GetBySlug(ctx, ad.Slug)
	require.NoError(t, err)
	assert.Equal(t, oldKeys, got.RemoteIDs())
}

func TestUpdateUploadFailureLeavesAdImageless(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Sofa", 900), blobs(t, 2))
	require.NoError(t, err)

	e.store.FailPut = func(int) error { return errors.New("host down") }
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Title: ptr("Leather sofa")}, blobs(t, 1))
	assert.True(t, domain.IsKind(err, domain.KindUpload))

	// 旧图已删除，记录里不能再留指向它们的链接
	assert.Empty(t, e.store.Keys())
	got, err := e.ads.GetBySlug(ctx, ad.Slug)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
	assert.Equal(t, "Sofa", got.Title)
	var n int64
	require.NoError(t, e.db.Model(&domain.AdImage{}).Where("ad_id = ?", ad.ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateStatusTransitions(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Bike", 10), blobs(t, 1))
	require.NoError(t, err)

	got, err := e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Status: ptr("sold")}, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)

	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Status: ptr("active")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Status: ptr("inactive")}, nil)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Update(ctx, ad.ID, owner.ID, AdUpdateInput{Status: ptr("sold")}, nil)
	assert.NoError(t, err)
}

func TestAdminListAndDeactivate(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "o@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, owner.ID, adInput("Bike", 10), blobs(t, 1))
	require.NoError(t, err)

	got, err := e.ads.Deactivate(ctx, ad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInactive, got.Status)

	_, err = e.ads.Deactivate(ctx, ad.ID)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	_, err = e.ads.Deactivate(ctx, "missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	page, err := e.ads.ListAll(ctx, "inactive", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Pagination.TotalCount)
	_, err = e.ads.ListAll(ctx, "deleted", 1, 10)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

// ---------- wishlist ----------

func TestWishlistRules(t *testing.T) {
	e := newEnv(t)
	seller := e.register(t, "s@example.com")
	buyer := e.register(t, "b@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, seller.ID, adInput("Camera", 400), blobs(t, 1))
	require.NoError(t, err)

	_, err = e.wishlist.Add(ctx, seller.ID, ad.ID)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	_, err = e.wishlist.Add(ctx, buyer.ID, ad.ID)
	require.NoError(t, err)
	_, err = e.wishlist.Add(ctx, buyer.ID, ad.ID)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	n, err := e.wishlist.Count(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	ok, err := e.wishlist.Contains(ctx, buyer.ID, ad.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.wishlist.Remove(ctx, buyer.ID, ad.ID))
	err = e.wishlist.Remove(ctx, buyer.ID, ad.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
	assert.True(t, e.events.has(events.WishlistAdded))
	assert.True(t, e.events.has(events.WishlistRemoved))

	_, err = e.wishlist.Add(ctx, buyer.ID, "missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestWishlistRejectsInactiveAds(t *testing.T) {
	e := newEnv(t)
	seller := e.register(t, "s@example.com")
	buyer := e.register(t, "b@example.com")
	ctx := context.Background()
	ad, err := e.ads.Create(ctx, seller.ID, adInput("Camera", 400), blobs(t, 1))
	require.NoError(t, err)
	_, err = e.ads.Update(ctx, ad.ID, seller.ID, AdUpdateInput{Status: ptr("sold")}, nil)
	require.NoError(t, err)

	_, err = e.wishlist.Add(ctx, buyer.ID, ad.ID)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestWishlistListSkipsDeletedAds(t *testing.T) {
	e := newEnv(t)
	seller := e.register(t, "s@example.com")
	buyer := e.register(t, "b@example.com")
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ad, err := e.ads.Create(ctx, seller.ID, adInput("Camera", 400), blobs(t, 1))
		require.NoError(t, err)
		_, err = e.wishlist.Add(ctx, buyer.ID, ad.ID)
		require.NoError(t, err)
		ids = append(ids, ad.ID)
	}
	require.NoError(t, e.ads.Delete(ctx, ids[1], seller.ID))

	page, err := e.wishlist.List(ctx, buyer.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.WishlistItems, 2)
	assert.EqualValues(t, 2, page.Pagination.TotalCount)
	assert.Equal(t, domain.DefaultWishlistLimit, page.Pagination.Limit)
	for _, it := range page.WishlistItems {
		require.NotNil(t, it.Ad)
		require.NotNil(t, it.Ad.Owner)
		assert.Equal(t, "s@example.com", it.Ad.Owner.Email)
	}

	n, err := e.wishlist.Count(ctx, buyer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}
