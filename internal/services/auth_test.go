package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/nutribridge-backend/internal/pkg/ctxutil"
	errs "github.com/yungbote/nutribridge-backend/internal/pkg/errors"
)

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.log, e.set.User, "test-secret", time.Minute)

	_, err := auth.RegisterUser(context.Background(), RegisterInput{Email: "not-an-email", Password: "longenough"})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = auth.RegisterUser(context.Background(), RegisterInput{Email: "new@example.com", Password: "short"})
	wantStatus(t, err, http.StatusBadRequest)

	user, err := auth.RegisterUser(context.Background(), RegisterInput{Email: " New@Example.com ", Password: "longenough", FirstName: "Sam"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "new@example.com" || user.Password == "longenough" {
		t.Fatalf("user=%+v", user)
	}
	_, err = auth.RegisterUser(context.Background(), RegisterInput{Email: "new@example.com", Password: "longenough"})
	wantStatus(t, err, http.StatusConflict)

	_, _, err = auth.LoginUser(context.Background(), "new@example.com", "wrong-password")
	wantStatus(t, err, http.StatusUnauthorized)
	tok, got, err := auth.LoginUser(context.Background(), "NEW@example.com", "longenough")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if got.ID != user.ID || tok == "" {
		t.Fatalf("login user=%v token=%q", got.ID, tok)
	}

	ctx, err := auth.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	if rd := ctxutil.GetRequestData(ctx); rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data=%+v", rd)
	}
}

func TestSetContextFromTokenRejects(t *testing.T) {
	e := newEnv(t)
	auth := NewAuthService(e.log, e.set.User, "test-secret", time.Minute)
	other := NewAuthService(e.log, e.set.User, "other-secret", time.Minute)

	if _, err := auth.SetContextFromToken(context.Background(), ""); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("empty token err=%v", err)
	}
	user, err := other.RegisterUser(context.Background(), RegisterInput{Email: "x@example.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	tok, _, err := other.LoginUser(context.Background(), user.Email, "longenough")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if _, err := auth.SetContextFromToken(context.Background(), tok); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("foreign token err=%v", err)
	}
}
