package verification

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AymanSha3ban/MUC-Library/internal/domain"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/directory"
	jwtinfra "github.com/AymanSha3ban/MUC-Library/internal/infrastructure/jwt"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/memory"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/qr"
	"github.com/AymanSha3ban/MUC-Library/internal/infrastructure/smtp"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type nopMailer struct{}

func (nopMailer) SendEmail(context.Context, smtp.Message) error { return nil }

type mockSink struct{ mock.Mock }

func (m *mockSink) Publish(ctx context.Context, w domain.Warning) error {
	return m.Called(ctx, w).Error(0)
}

// faultyDirectory lets a test break one directory call.
type faultyDirectory struct {
	Directory
	findErr error
	linkErr error
}

func (d *faultyDirectory) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if d.findErr != nil {
		return nil, d.findErr
	}
	return d.Directory.FindByEmail(ctx, email)
}

func (d *faultyDirectory) GenerateSignInLink(ctx context.Context, email string) (string, error) {
	if d.linkErr != nil {
		return "", d.linkErr
	}
	return d.Directory.GenerateSignInLink(ctx, email)
}

type harness struct {
	svc        Service
	codes      *memory.VerificationRepo
	profiles   *memory.ProfileRepo
	identities *memory.IdentityRepo
	dir        *faultyDirectory
	sink       *mockSink
	now        time.Time
}

func newHarness(t *testing.T, admins ...string) *harness {
	t.Helper()
	signer, err := jwtinfra.NewEphemeralProvider(time.Hour)
	require.NoError(t, err)
	h := &harness{
		codes:      memory.NewVerificationRepo(),
		profiles:   memory.NewProfileRepo(),
		identities: memory.NewIdentityRepo(),
		sink:       &mockSink{},
		now:        fixedNow,
	}
	h.dir = &faultyDirectory{Directory: directory.New(h.identities, signer, "https://api.muc.edu.eg", time.Hour)}
	h.sink.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	h.svc = NewService(ServiceDeps{
		VerificationRepo: h.codes,
		ProfileRepo:      h.profiles,
		Directory:        h.dir,
		Mailer:           nopMailer{},
		QR:               qr.NewDataURIRenderer(),
		Warnings:         h.sink,
		Policy:           NewRolePolicy(admins),
		EmailDomain:      "@muc.edu.eg",
		TTL:              15 * time.Minute,
		FrontendURL:      "https://library.muc.edu.eg",
		QRContent:        QRContentCode,
		Now:              func() time.Time { return h.now },
	})
	return h
}

func (h *harness) issue(t *testing.T, addr string) *domain.VerificationRecord {
	t.Helper()
	rec, err := h.svc.Issue(context.Background(), addr)
	require.NoError(t, err)
	return rec
}

func (h *harness) put(t *testing.T, addr, token, code string) *domain.VerificationRecord {
	t.Helper()
	rec := &domain.VerificationRecord{
		ID:        newID(),
		Email:     addr,
		Token:     token,
		Code:      code,
		ExpiresAt: h.now.Add(15 * time.Minute),
		CreatedAt: h.now,
	}
	require.NoError(t, h.codes.Put(context.Background(), rec))
	return rec
}

var idSeq atomic.Int64

// newID returns ids that sort by call order.
func newID() string {
	return time.Unix(0, idSeq.Add(1)).UTC().Format("20060102150405.000000000")
}

// --- happy paths ---

func TestRedeem_NewStudentByToken(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "Student@muc.edu.eg")

	res, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, res.Role)
	assert.Empty(t, res.Warnings)
	assert.True(t, strings.HasPrefix(res.RedirectURL, "https://api.muc.edu.eg/v1/auth/callback?token="))

	ident, err := h.identities.GetByEmail(context.Background(), "student@muc.edu.eg")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, ident.Role)

	p, err := h.profiles.GetByEmail(context.Background(), "student@muc.edu.eg")
	require.NoError(t, err)
	want := &domain.Profile{
		ProfileID:  ident.IdentityID,
		Email:      "Student@muc.edu.eg",
		EmailLower: "student@muc.edu.eg",
		Role:       domain.RoleStudent,
	}
	if diff := cmp.Diff(want, p, cmpopts.IgnoreFields(domain.Profile{}, "CreatedAt", "UpdatedAt")); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}

	stored, err := h.codes.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
}

func TestRedeem_AdminByEmail(t *testing.T) {
	h := newHarness(t, "Dean@MUC.edu.eg")
	rec := h.issue(t, "dean@muc.edu.eg")

	res, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Email: " dean@muc.edu.eg "})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)

	p, err := h.profiles.GetByEmail(context.Background(), "dean@muc.edu.eg")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role)
}

func TestRedeem_PromotionUpdatesExistingRecords(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "s@muc.edu.eg")
	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	ident, err := h.identities.GetByEmail(context.Background(), "s@muc.edu.eg")
	require.NoError(t, err)

	// Same user, now on the admin list.
	h.svc.(*service).policy = NewRolePolicy([]string{"s@muc.edu.eg"})
	rec = h.issue(t, "s@muc.edu.eg")
	res, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Role)
	assert.Empty(t, res.Warnings)

	again, err := h.identities.GetByEmail(context.Background(), "s@muc.edu.eg")
	require.NoError(t, err)
	assert.Equal(t, ident.IdentityID, again.IdentityID)
	assert.Equal(t, domain.RoleAdmin, again.Role)
	assert.Equal(t, 1, h.identities.Count())
	assert.Equal(t, 1, h.profiles.Count())

	p, err := h.profiles.Get(context.Background(), ident.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role)
}

func TestRedeem_RepairsProfileDrift(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	name, phone, avatar := "Salma Hassan", "+20 100 000 0000", "avatars/legacy.png"
	legacy := &domain.Profile{
		ProfileID:  "legacy",
		Email:      "s@muc.edu.eg",
		EmailLower: "s@muc.edu.eg",
		Role:       domain.RoleStudent,
		FullName:   &name,
		Phone:      &phone,
		AvatarPath: &avatar,
		CreatedAt:  fixedNow.Add(-30 * 24 * time.Hour),
	}
	require.NoError(t, h.profiles.Insert(ctx, legacy))
	rec := h.issue(t, "s@muc.edu.eg")

	res, err := h.svc.Redeem(ctx, RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	ident, err := h.identities.GetByEmail(ctx, "s@muc.edu.eg")
	require.NoError(t, err)
	p, err := h.profiles.GetByEmail(ctx, "s@muc.edu.eg")
	require.NoError(t, err)
	assert.Equal(t, ident.IdentityID, p.ProfileID)
	_, err = h.profiles.Get(ctx, "legacy")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Only the id moves; display fields and creation time survive the repair.
	want := *legacy
	want.ProfileID = ident.IdentityID
	if diff := cmp.Diff(&want, p, cmpopts.IgnoreFields(domain.Profile{}, "UpdatedAt")); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestRedeem_DriftCollisionFallsBackToRoleUpdate(t *testing.T) {
	h := newHarness(t, "s@muc.edu.eg")
	ctx := context.Background()
	ident, err := h.dir.Create(ctx, "s@muc.edu.eg", domain.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, h.profiles.Insert(ctx, &domain.Profile{ProfileID: "legacy", Email: "s@muc.edu.eg", EmailLower: "s@muc.edu.eg", Role: domain.RoleStudent}))
	require.NoError(t, h.profiles.Insert(ctx, &domain.Profile{ProfileID: ident.IdentityID, Email: "other@muc.edu.eg", EmailLower: "other@muc.edu.eg", Role: domain.RoleStudent}))
	rec := h.issue(t, "s@muc.edu.eg")

	res, err := h.svc.Redeem(ctx, RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StepProfileDrift, res.Warnings[0].Step)
	h.sink.AssertCalled(t, "Publish", mock.Anything, res.Warnings[0])

	p, err := h.profiles.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, p.Role)
}

// --- rejection paths ---

func TestRedeem_MissingIdentifier(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: "123456", Email: "   "})
	assert.ErrorIs(t, err, domain.ErrMissingIdentifier)
}

func TestRedeem_WrongCode(t *testing.T) {
	h := newHarness(t)
	h.put(t, "s@muc.edu.eg", "tok", "111111")

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: "222222", Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	assert.Equal(t, 0, h.identities.Count())
}

func TestRedeem_ExpiredIsNotBurned(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "s@muc.edu.eg")
	h.now = h.now.Add(15*time.Minute + time.Second)

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	assert.ErrorIs(t, err, domain.ErrExpiredCode)

	stored, err := h.codes.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.False(t, stored.Used)
	assert.Equal(t, 0, h.identities.Count())
}

func TestRedeem_ExactlyAtExpiryStillValid(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "s@muc.edu.eg")
	h.now = rec.ExpiresAt

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	assert.NoError(t, err)
}

func TestRedeem_ReplayRejected(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "s@muc.edu.eg")
	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)

	_, err = h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}

func TestRedeem_ConcurrentRequestsOneWinner(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "s@muc.edu.eg")

	var ok, rejected atomic.Int32
	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidOrExpiredCode):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 15, rejected.Load())
	assert.Equal(t, 1, h.identities.Count())
	assert.Equal(t, 1, h.profiles.Count())
}

func TestRedeem_EmailMatchIsExact(t *testing.T) {
	h := newHarness(t)
	rec := h.issue(t, "Student@muc.edu.eg")

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Email: "student@muc.edu.eg"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}

func TestRedeem_NewestRecordWins(t *testing.T) {
	h := newHarness(t)
	older := h.put(t, "s@muc.edu.eg", "t-old", "123456")
	newer := h.put(t, "s@muc.edu.eg", "t-new", "123456")

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: "123456", Email: "s@muc.edu.eg"})
	require.NoError(t, err)

	n, err := h.codes.Get(context.Background(), newer.ID)
	require.NoError(t, err)
	o, err := h.codes.Get(context.Background(), older.ID)
	require.NoError(t, err)
	assert.True(t, n.Used)
	assert.False(t, o.Used)
}

func TestRedeem_TokenWinsOverEmail(t *testing.T) {
	h := newHarness(t)
	rec := h.put(t, "a@muc.edu.eg", "tok-a", "123456")
	h.put(t, "b@muc.edu.eg", "tok-b", "123456")

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: "123456", Token: "tok-a", Email: "b@muc.edu.eg"})
	require.NoError(t, err)
	stored, err := h.codes.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
}

// --- degraded reconciliation ---

func TestRedeem_IdentityLookupFailureDoesNotCreate(t *testing.T) {
	h := newHarness(t)
	h.dir.findErr = errors.New("directory timeout")
	rec := h.issue(t, "s@muc.edu.eg")

	res, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RedirectURL)

	steps := make([]string, 0, len(res.Warnings))
	for _, w := range res.Warnings {
		steps = append(steps, w.Step)
	}
	assert.Equal(t, []string{StepIdentityLookup, StepProfileInsert}, steps)
	assert.Equal(t, 0, h.identities.Count())
	assert.Equal(t, 0, h.profiles.Count())

	// The directory recovers and the user logs in again: state converges.
	h.dir.findErr = nil
	rec = h.issue(t, "s@muc.edu.eg")
	res, err = h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assertConverged(t, h, "s@muc.edu.eg", domain.RoleStudent)
}

func TestRedeem_RetryAfterProfileFailureConverges(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	// A row owned by another address already holds the id the identity will get,
	// so the first insert fails after the identity is created.
	ident, err := h.dir.Create(ctx, "s@muc.edu.eg", domain.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, h.profiles.Insert(ctx, &domain.Profile{ProfileID: ident.IdentityID, EmailLower: "squatter@muc.edu.eg"}))

	rec := h.issue(t, "s@muc.edu.eg")
	res, err := h.svc.Redeem(ctx, RedeemRequest{Code: rec.Code, Token: rec.Token})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, StepProfileInsert, res.Warnings[0].Step)

	// Operator clears the squatting row; the next login repairs the rest.
	h.profiles = memory.NewProfileRepo()
	h.svc.(*service).profiles = h.profiles
	for i := 0; i < 2; i++ {
		rec = h.issue(t, "s@muc.edu.eg")
		res, err = h.svc.Redeem(ctx, RedeemRequest{Code: rec.Code, Token: rec.Token})
		require.NoError(t, err)
		assert.Empty(t, res.Warnings)
		assertConverged(t, h, "s@muc.edu.eg", domain.RoleStudent)
	}
}

// assertConverged checks one identity, one profile, matching ids and role.
func assertConverged(t *testing.T, h *harness, addr, role string) {
	t.Helper()
	ctx := context.Background()
	assert.Equal(t, 1, h.identities.Count())
	assert.Equal(t, 1, h.profiles.Count())
	ident, err := h.identities.GetByEmail(ctx, addr)
	require.NoError(t, err)
	p, err := h.profiles.GetByEmail(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, ident.IdentityID, p.ProfileID)
	assert.Equal(t, role, ident.Role)
	assert.Equal(t, role, p.Role)
}

func TestRedeem_LinkFailureFailsRequestButCodeStaysBurned(t *testing.T) {
	h := newHarness(t)
	h.dir.linkErr = errors.New("signer unavailable")
	rec := h.issue(t, "s@muc.edu.eg")

	_, err := h.svc.Redeem(context.Background(), RedeemRequest{Code: rec.Code, Token: rec.Token})
	assert.ErrorContains(t, err, "generate sign-in link")

	stored, err := h.codes.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.Used)
}

func TestRedeem_StorageFailure(t *testing.T) {
	codes := &mockCodeStore{}
	codes.On("FindLatestUnused", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))
	svc := NewService(ServiceDeps{VerificationRepo: codes})

	_, err := svc.Redeem(context.Background(), RedeemRequest{Code: "123456", Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestRedeem_LostBurnIsRejected(t *testing.T) {
	codes := &mockCodeStore{}
	rec := &domain.VerificationRecord{ID: "r1", Email: "s@muc.edu.eg", Code: "123456", ExpiresAt: time.Now().Add(time.Minute)}
	codes.On("FindLatestUnused", mock.Anything, mock.Anything).Return(rec, nil)
	codes.On("MarkUsed", mock.Anything, "r1").Return(false, nil)
	svc := NewService(ServiceDeps{VerificationRepo: codes})

	_, err := svc.Redeem(context.Background(), RedeemRequest{Code: "123456", Token: "tok"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
}
