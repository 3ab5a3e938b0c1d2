package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/models"
	"storefront/store"
	"storefront/utils"
)

func newService() (*Service, *utils.JWT) {
	jwt := utils.NewJWT("test-secret", time.Hour)
	return NewService(store.NewMemory(), jwt, WithCost(bcrypt.MinCost)), jwt
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	svc, jwt := newService()

	reg, err := svc.Register(ctx, models.RegisterRequest{FullName: " Ada Lovelace ", Email: "Ada@Example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User.Email != "ada@example.com" || reg.User.FullName != "Ada Lovelace" || reg.User.ID == "" {
		t.Fatalf("user = %+v", reg.User)
	}

	claims, err := jwt.ParseJWTToken(reg.Token)
	if err != nil {
		t.Fatalf("ParseJWTToken: %v", err)
	}
	if claims.Subject != reg.User.ID {
		t.Fatalf("subject = %q, want %q", claims.Subject, reg.User.ID)
	}

	login, err := svc.Login(ctx, models.LoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User != reg.User {
		t.Fatalf("login user = %+v, want %+v", login.User, reg.User)
	}

	me, ok, err := svc.Me(ctx, reg.User.ID)
	if err != nil || !ok || me != reg.User {
		t.Fatalf("Me = %+v, %v, %v", me, ok, err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	req := models.RegisterRequest{FullName: "A", Email: "a@example.com", Password: "12345678"}

	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, req); !errors.Is(err, store.ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email", Password: "short"})

	var ve *utils.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *utils.ValidationError", err)
	}
	got := map[string]string{}
	for _, f := range ve.Fields {
		got[f.Field] = f.Message
	}
	want := map[string]string{
		"fullName": "This field is required",
		"email":    "Invalid email format",
		"password": "Minimum length is 8",
	}
	for field, msg := range want {
		if got[field] != msg {
			t.Errorf("%s = %q, want %q", field, got[field], msg)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	if _, err := svc.Register(ctx, models.RegisterRequest{FullName: "A", Email: "a@example.com", Password: "12345678"}); err != nil {
		t.Fatal(err)
	}

	tests := []models.LoginRequest{
		{Email: "a@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "12345678"},
	}
	for _, req := range tests {
		if _, err := svc.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s) err = %v, want ErrInvalidCredentials", req.Email, err)
		}
	}
}
