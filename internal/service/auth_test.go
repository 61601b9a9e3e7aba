package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ecorecicla/greengo/internal/errs"
	"github.com/ecorecicla/greengo/internal/model"
	"github.com/ecorecicla/greengo/internal/repository"
	"github.com/gofrs/uuid/v5"
)

type fakeAccounts struct {
	byEmail map[string]*model.Account

	createErr error
	getErr    error

	createCalls int
}

var _ repository.AccountRepository = (*fakeAccounts)(nil)

func (f *fakeAccounts) Create(_ context.Context, a *model.Account) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if f.byEmail == nil {
		f.byEmail = map[string]*model.Account{}
	}
	if _, exists := f.byEmail[a.Email]; exists {
		return errs.ErrAlreadyExists
	}
	cpy := *a
	f.byEmail[a.Email] = &cpy
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id uuid.UUID) (*model.Account, error) {
	for _, a := range f.byEmail {
		if a.ID == id {
			c := *a
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *a
	return &c, nil
}

func newTestAuth(accounts repository.AccountRepository, delay time.Duration) *SimAuth {
	return NewSimAuth(accounts, []byte("test-key"), delay, time.Hour, zap.NewNop())
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"maria@example.com": "maria",
		"a.b@x.y":           "a.b",
		"noatsign":          "noatsign",
		"":                  "",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestValidateSignUp(t *testing.T) {
	t.Parallel()

	if err := ValidateSignUp("abcd1234", "abcd1234"); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	if err := ValidateSignUp("abcd1234", "abcd1235"); !errors.Is(err, errs.ErrPasswordMismatch) {
		t.Fatalf("want ErrPasswordMismatch, got %v", err)
	}
	if err := ValidateSignUp("short", "short"); !errors.Is(err, errs.ErrPasswordTooShort) {
		t.Fatalf("want ErrPasswordTooShort, got %v", err)
	}
}

func TestSimAuth_Login_ProvisionsUnknownAccount(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{byEmail: map[string]*model.Account{}}
	s := newTestAuth(accounts, 0)

	sess, err := s.Login(context.Background(), "maria@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.UserName != "maria" {
		t.Fatalf("UserName=%q, want maria", sess.UserName)
	}
	if sess.UserEmail != "maria@example.com" {
		t.Fatalf("UserEmail=%q", sess.UserEmail)
	}
	if sess.Token == "" || !sess.ExpiresAt.After(time.Now()) {
		t.Fatalf("bad session token: %+v", sess)
	}
	if accounts.createCalls != 1 {
		t.Fatalf("account not provisioned")
	}

	// a second login reuses the account
	sess2, err := s.Login(context.Background(), "maria@example.com", "whatever")
	if err != nil {
		t.Fatalf("Login(2): %v", err)
	}
	if sess2.UserID != sess.UserID {
		t.Fatalf("expected same account, got %s vs %s", sess2.UserID, sess.UserID)
	}
	if accounts.createCalls != 1 {
		t.Fatalf("account provisioned twice")
	}
}

func TestSimAuth_Login_EmptyEmailAndRepoError(t *testing.T) {
	t.Parallel()

	s := newTestAuth(&fakeAccounts{}, 0)
	if _, err := s.Login(context.Background(), "", "p"); err == nil {
		t.Fatalf("want validation error on empty email")
	}

	broken := &fakeAccounts{getErr: errors.New("boom")}
	s = newTestAuth(broken, 0)
	if _, err := s.Login(context.Background(), "x@y.z", "p"); err == nil {
		t.Fatalf("want propagated repo error")
	}
}

func TestSimAuth_Login_RespectsContextDuringLatency(t *testing.T) {
	t.Parallel()

	s := newTestAuth(&fakeAccounts{}, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "x@y.z", "p")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("want context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("login did not honour cancellation")
	}
}

func TestSimAuth_SignUp_ValidationBeforeLatency(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{byEmail: map[string]*model.Account{}}
	// long delay: if validation ran after it, this test would hang
	s := newTestAuth(accounts, time.Hour)

	start := time.Now()
	_, err := s.SignUp(context.Background(), "maria@example.com", "abcd1234", "abcd1235")
	if !errors.Is(err, errs.ErrPasswordMismatch) {
		t.Fatalf("want ErrPasswordMismatch, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("validation waited out the latency")
	}
	if accounts.createCalls != 0 {
		t.Fatalf("account created despite invalid form")
	}
}

func TestSimAuth_SignUp_SuccessAndExistingEmail(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{byEmail: map[string]*model.Account{}}
	s := newTestAuth(accounts, 0)

	sess, err := s.SignUp(context.Background(), "maria@example.com", "abcd1234", "abcd1234")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if sess.UserName != "maria" {
		t.Fatalf("UserName=%q", sess.UserName)
	}
	if acc := accounts.byEmail["maria@example.com"]; acc == nil || len(acc.PwdHash) == 0 || len(acc.Salt) == 0 {
		t.Fatalf("account missing password hash: %+v", acc)
	}

	// signing up again with the same email falls through to the account
	sess2, err := s.SignUp(context.Background(), "maria@example.com", "abcd1234", "abcd1234")
	if err != nil {
		t.Fatalf("SignUp(2): %v", err)
	}
	if sess2.UserID != sess.UserID {
		t.Fatalf("expected existing account to be reused")
	}
}
