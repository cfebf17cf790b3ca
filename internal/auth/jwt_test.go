package auth

import (
	"context"
	"testing"
	"time"

	"droneFoodDelivery/internal/testutil"
)

const testSecret = "test-secret"

func TestParseFromMD_ValidBearer(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "SER-1", "Drone")
	ctx := testutil.CtxWithBearer(context.Background(), tok)
	p, err := ParseFromMD(ctx, testSecret)
	if err != nil {
		t.Fatalf("ParseFromMD: %v", err)
	}
	if p.Name != "SER-1" || p.Kind != KindDrone {
		t.Fatalf("principal mismatch: %+v", p)
	}
}

func TestParseFromMD_MissingHeader(t *testing.T) {
	_, err := ParseFromMD(context.Background(), testSecret)
	if err == nil {
		t.Fatalf("expected error for missing metadata")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "bob", "drone")
	if _, err := parseJWT(tok, "wrong"); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestParseJWT_ClaimsValidation(t *testing.T) {
	// Missing name/kind -> invalid
	tok := testutil.GenerateJWTHS256(t, testSecret, "", "")
	if _, err := parseJWT(tok, testSecret); err == nil {
		t.Fatalf("expected invalid claims error")
	}
}

func TestIssueToken_RoundTrip(t *testing.T) {
	tok, err := IssueToken(testSecret, "ops", "ADMIN", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	p, err := parseJWT(tok, testSecret)
	if err != nil {
		t.Fatalf("parseJWT: %v", err)
	}
	if p.Name != "ops" || p.Kind != KindAdmin {
		t.Fatalf("principal mismatch: %+v", p)
	}
	if _, err := IssueToken("", "ops", "admin", 0); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestIssueToken_NoExpiry(t *testing.T) {
	tok, err := IssueToken(testSecret, "ops", "admin", -1)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	// Non-positive ttl means no expiry.
	if _, err := parseJWT(tok, testSecret); err != nil {
		t.Fatalf("token without exp rejected: %v", err)
	}
}

func TestIssueCustomerToken_CarriesCustomerID(t *testing.T) {
	tok, err := IssueCustomerToken(testSecret, 42, "ada", time.Hour)
	if err != nil {
		t.Fatalf("IssueCustomerToken: %v", err)
	}
	p, err := ParseBearer("Bearer "+tok, testSecret)
	if err != nil {
		t.Fatalf("ParseBearer: %v", err)
	}
	if p.Kind != KindCustomer || p.CustomerID != 42 || p.Name != "ada" {
		t.Fatalf("principal mismatch: %+v", p)
	}
	if _, err := IssueCustomerToken(testSecret, 0, "ada", time.Hour); err == nil {
		t.Fatalf("expected error for missing customer id")
	}
	if _, err := IssueToken(testSecret, "ada", KindCustomer, time.Hour); err == nil {
		t.Fatalf("customer tokens must be bound to an id")
	}
}

func TestParseJWT_CustomerWithoutIDRejected(t *testing.T) {
	tok := testutil.GenerateJWTHS256(t, testSecret, "ada", "customer")
	if _, err := parseJWT(tok, testSecret); err != ErrInvalidClaims {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}

func TestParseBearer_HeaderErrors(t *testing.T) {
	if _, err := ParseBearer("", testSecret); err != ErrMissingToken {
		t.Fatalf("empty header: %v", err)
	}
	if _, err := ParseBearer("Basic abc", testSecret); err != ErrMalformedAuth {
		t.Fatalf("basic scheme: %v", err)
	}
	if _, err := ParseBearer("Bearer ", testSecret); err != ErrMalformedAuth {
		t.Fatalf("empty token: %v", err)
	}
}
