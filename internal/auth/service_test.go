package auth

import (
	"context"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"orange-brew/internal/apperr"
)

type fakeUserRepo struct {
	users  map[int64]*User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*User{}}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, u *User) (*User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, apperr.Conflict("Email already exists")
		}
	}
	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.users[u.ID] = &cp
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ListUsers(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateUserRole(_ context.Context, id int64, role Role) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return apperr.NotFound("User not found")
	}
	delete(f.users, id)
	return nil
}

func newAuthService() (*Service, *fakeUserRepo) {
	repo := newFakeUserRepo()
	return &Service{Repo: repo, JWTSecret: "test-secret"}, repo
}

func TestRegisterDefaultsToUserRole(t *testing.T) {
	svc, _ := newAuthService()
	u, err := svc.Register(context.Background(), "Ana", "Ana@Example.COM ", "secret123", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != RoleUser {
		t.Fatalf("role = %s, want USER", u.Role)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "secret123" || u.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret123")) != nil {
		t.Fatal("stored hash does not match password")
	}
}

func TestRegisterRoleAllowList(t *testing.T) {
	svc, _ := newAuthService()
	if _, err := svc.Register(context.Background(), "Eve", "eve@example.com", "pw", "SUPERUSER"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	u, err := svc.Register(context.Background(), "Cas", "cas@example.com", "pw", RoleCashier)
	if err != nil {
		t.Fatalf("Register cashier: %v", err)
	}
	if u.Role != RoleCashier {
		t.Fatalf("role = %s, want CASHIER", u.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "pw", ""); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "Ana Again", "ana@example.com", "pw2", "")
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestRegisterRequiredFields(t *testing.T) {
	svc, _ := newAuthService()
	for _, c := range []struct{ name, email, pw string }{
		{"", "a@b.com", "pw"},
		{"Ana", "", "pw"},
		{"Ana", "a@b.com", ""},
	} {
		if _, err := svc.Register(context.Background(), c.name, c.email, c.pw, ""); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("%+v: err = %v, want validation", c, err)
		}
	}
}

func TestLoginAndVerify(t *testing.T) {
	svc, _ := newAuthService()
	u, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, got, err := svc.Login(context.Background(), "ANA@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("login returned user %d, want %d", got.ID, u.ID)
	}

	id, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != u.ID || id.Role != RoleUser {
		t.Fatalf("identity = %+v", id)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()
	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "secret123", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, _, err := svc.Login(context.Background(), "ana@example.com", "wrong")
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("err = %v, want authentication", err)
	}
}

func TestLoginUnknownEmailLooksLikeBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	_, _, err := svc.Login(context.Background(), "ghost@example.com", "pw")
	if apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("err = %v, want authentication", err)
	}
	if strings.Contains(err.Error(), "not found") {
		t.Fatalf("message leaks account existence: %q", err.Error())
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	svc, _ := newAuthService()
	if _, err := svc.Register(context.Background(), "Ana", "ana@example.com", "pw", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, _, err := svc.Login(context.Background(), "ana@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := svc.Verify(token + "x"); apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("tampered token err = %v, want authentication", err)
	}

	other := &Service{Repo: svc.Repo, JWTSecret: "other-secret"}
	if _, err := other.Verify(token); apperr.KindOf(err) != apperr.KindAuthentication {
		t.Fatalf("wrong secret err = %v, want authentication", err)
	}
}

func TestAdminUserManagementGates(t *testing.T) {
	svc, _ := newAuthService()
	u, err := svc.Register(context.Background(), "Ana", "ana@example.com", "pw", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	userActor := Identity{UserID: u.ID, Role: RoleUser}
	adminActor := Identity{UserID: 99, Role: RoleAdmin}
	cashierActor := Identity{UserID: 98, Role: RoleCashier}

	for _, actor := range []Identity{userActor, cashierActor} {
		if _, err := svc.ListUsers(context.Background(), actor); apperr.KindOf(err) != apperr.KindAuthorization {
			t.Fatalf("%s ListUsers err = %v, want authorization", actor.Role, err)
		}
		if _, err := svc.UpdateUserRole(context.Background(), actor, u.ID, RoleCashier); apperr.KindOf(err) != apperr.KindAuthorization {
			t.Fatalf("%s UpdateUserRole err = %v, want authorization", actor.Role, err)
		}
		if err := svc.DeleteUser(context.Background(), actor, u.ID); apperr.KindOf(err) != apperr.KindAuthorization {
			t.Fatalf("%s DeleteUser err = %v, want authorization", actor.Role, err)
		}
	}

	promoted, err := svc.UpdateUserRole(context.Background(), adminActor, u.ID, RoleCashier)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if promoted.Role != RoleCashier {
		t.Fatalf("role = %s, want CASHIER", promoted.Role)
	}
	if _, err := svc.UpdateUserRole(context.Background(), adminActor, u.ID, "ROOT"); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("bad role err = %v, want validation", err)
	}

	if err := svc.DeleteUser(context.Background(), adminActor, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if _, err := svc.Me(context.Background(), Identity{UserID: u.ID, Role: RoleUser}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("Me after delete err = %v, want not found", err)
	}
}
