package util

import (
	"indosat_lms_backend/internal/model"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "budi@indosat.com", Role: model.Trainer}
	user.ID = "user-1"

	token, err := GenerateJWT(user, "test-secret-at-least-32-bytes-long!!", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret-at-least-32-bytes-long!!")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "budi@indosat.com" || claims.Role != model.Trainer {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseJWTRejectsWrongSecret(t *testing.T) {
	user := &model.User{Email: "budi@indosat.com", Role: model.DSE}
	user.ID = "user-1"

	token, err := GenerateJWT(user, "correct-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "wrong-secret"); err == nil {
		t.Fatalf("wrong secret must fail verification")
	}
}

func TestParseJWTRejectsExpired(t *testing.T) {
	user := &model.User{}
	user.ID = "user-1"

	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatalf("expired token must fail verification")
	}
}
