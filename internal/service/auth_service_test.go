package service

import (
	"context"
	"errors"
	"indosat_lms_backend/internal/config"
	"indosat_lms_backend/internal/model"
	"indosat_lms_backend/internal/util"
	"testing"
	"time"

	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	byAuthErr    error
	byAuthUser   *model.User
	created      []*model.User
	getOrCreated int
	lastName     string
	lastRole     model.UserRole
}

func (f *fakeUserStore) Create(user *model.User) error {
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserStore) FindByID(id string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByEmail(email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByAuthID(authID string) (*model.User, error) {
	return f.byAuthUser, f.byAuthErr
}

func (f *fakeUserStore) GetOrCreateByAuthID(authID, email, name string, role model.UserRole) (*model.User, error) {
	f.getOrCreated++
	f.lastName = name
	f.lastRole = role
	u := &model.User{Name: name, Email: email, Role: role, AuthID: &authID}
	u.ID = "created-" + authID
	return u, nil
}

func (f *fakeUserStore) UpdateLastLogin(userID string) error { return nil }

func newTestAuthService(store *fakeUserStore) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-at-least-32-bytes-long!!"
	cfg.JWT.ExpireTime = time.Hour
	cfg.Google.ClientID = "client-id"
	return &AuthService{UserRepo: store, Cfg: cfg}
}

func TestResolveProfileFound(t *testing.T) {
	existing := &model.User{Name: "Budi"}
	existing.ID = "user-1"
	store := &fakeUserStore{byAuthUser: existing}
	svc := newTestAuthService(store)

	user, err := svc.ResolveProfile("sub-1", "budi@indosat.com", "Budi S")
	if err != nil {
		t.Fatalf("ResolveProfile: %v", err)
	}
	if user != existing {
		t.Fatalf("existing profile must be returned as-is")
	}
	if store.getOrCreated != 0 {
		t.Fatalf("get-or-create must not run when the lookup succeeds")
	}
}

func TestResolveProfileNotFoundAndAmbiguousConverge(t *testing.T) {
	// 无记录与多行异常走同一条幂等补救路径
	for _, lookupErr := range []error{gorm.ErrRecordNotFound, util.ErrAmbiguousProfile} {
		store := &fakeUserStore{byAuthErr: lookupErr}
		svc := newTestAuthService(store)

		user, err := svc.ResolveProfile("sub-1", "budi@indosat.com", "Budi S")
		if err != nil {
			t.Fatalf("ResolveProfile(%v): %v", lookupErr, err)
		}
		if store.getOrCreated != 1 {
			t.Fatalf("lookup error %v must route to get-or-create", lookupErr)
		}
		if user.Role != model.DSE {
			t.Fatalf("new profile role = %v, want dse", user.Role)
		}
		if store.lastName != "Budi S" {
			t.Fatalf("derived name = %q, want OAuth name", store.lastName)
		}
	}
}

func TestResolveProfileOtherErrorsSurface(t *testing.T) {
	dbErr := errors.New("connection refused")
	store := &fakeUserStore{byAuthErr: dbErr}
	svc := newTestAuthService(store)

	if _, err := svc.ResolveProfile("sub-1", "budi@indosat.com", ""); !errors.Is(err, dbErr) {
		t.Fatalf("unexpected error must surface unchanged, got %v", err)
	}
	if store.getOrCreated != 0 {
		t.Fatalf("get-or-create must not run on unexpected errors")
	}
}

func TestLoginWithGoogle(t *testing.T) {
	store := &fakeUserStore{byAuthErr: gorm.ErrRecordNotFound}
	svc := newTestAuthService(store)
	svc.Verify = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if audience != "client-id" {
			t.Fatalf("audience = %q, want configured client id", audience)
		}
		return &idtoken.Payload{
			Subject: "sub-1",
			Claims:  map[string]interface{}{"email": "budi@indosat.com", "name": "Budi S"},
		}, nil
	}

	token, user, err := svc.LoginWithGoogle(context.Background(), "id-token")
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if token == "" {
		t.Fatalf("an app JWT must be issued")
	}
	if user.Email != "budi@indosat.com" {
		t.Fatalf("user email = %q", user.Email)
	}

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	if err != nil {
		t.Fatalf("issued token must parse: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("token subject = %q, want %q", claims.UserID, user.ID)
	}
}

func TestLoginWithGoogleInvalidToken(t *testing.T) {
	svc := newTestAuthService(&fakeUserStore{})
	svc.Verify = func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		return nil, errors.New("signature mismatch")
	}

	if _, _, err := svc.LoginWithGoogle(context.Background(), "bad"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDefaultsRole(t *testing.T) {
	store := &fakeUserStore{}
	svc := newTestAuthService(store)

	user := &model.User{Name: "Budi", Email: "budi@indosat.com", Password: "secret123"}
	if err := svc.Register(user); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != model.DSE {
		t.Fatalf("default role = %v, want dse", user.Role)
	}
	if user.Password == "secret123" {
		t.Fatalf("password must be hashed before storage")
	}
	if len(store.created) != 1 {
		t.Fatalf("user not persisted")
	}
}

func TestDeriveDisplayName(t *testing.T) {
	cases := []struct {
		explicit, oauthName, email string
		want                       string
	}{
		{"Budi Santoso", "Budi S", "budi@indosat.com", "Budi Santoso"},
		{"", "Budi S", "budi@indosat.com", "Budi S"},
		{"", "", "budi@indosat.com", "budi"},
		{"", "", "@indosat.com", "User"},
		{"", "", "no-at-sign", "User"},
		{"", "", "", "User"},
	}
	for _, tc := range cases {
		if got := deriveDisplayName(tc.explicit, tc.oauthName, tc.email); got != tc.want {
			t.Fatalf("deriveDisplayName(%q, %q, %q) = %q, want %q",
				tc.explicit, tc.oauthName, tc.email, got, tc.want)
		}
	}
}
