package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/metadata"
)

// Principal kinds.
const (
	KindAdmin    = "admin"
	KindDrone    = "drone"
	KindCustomer = "customer"
)

var (
	ErrNoSecret      = errors.New("jwt secret is empty")
	ErrMissingToken  = errors.New("missing authorization")
	ErrMalformedAuth = errors.New("invalid authorization header")
	ErrInvalidClaims = errors.New("invalid claims")
)

// Principal is the authenticated caller. For drones Name is the serial number,
// for customers the username.
type Principal struct {
	Name       string
	Kind       string
	CustomerID int64 // set for KindCustomer only
}

// Claims is the token payload shared by the issuers and the parsers.
type Claims struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	CustomerID int64  `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

type principalKey struct{}

// WithPrincipal stores the principal in context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext retrieves the principal from context (if any).
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}

// ParseFromMD validates the bearer token carried in incoming gRPC metadata.
func ParseFromMD(ctx context.Context, secret string) (*Principal, error) {
	tok, err := bearerToken(ctx)
	if err != nil {
		return nil, err
	}
	return parseJWT(tok, secret)
}

func bearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrMissingToken
	}
	// metadata keys are lowercased on the wire
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return "", ErrMissingToken
	}
	return tokenFromHeader(vals[0])
}

func tokenFromHeader(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingToken
	}
	scheme, tok, found := strings.Cut(header, " ")
	tok = strings.TrimSpace(tok)
	if !found || !strings.EqualFold(scheme, "Bearer") || tok == "" {
		return "", ErrMalformedAuth
	}
	return tok, nil
}

// ParseBearer validates an HTTP Authorization header value.
func ParseBearer(header, secret string) (*Principal, error) {
	tok, err := tokenFromHeader(header)
	if err != nil {
		return nil, err
	}
	return parseJWT(tok, secret)
}

func parseJWT(tokenStr, secret string) (*Principal, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	c := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, c, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	kind := strings.ToLower(c.Kind)
	if c.Name == "" || kind == "" || (kind == KindCustomer && c.CustomerID <= 0) {
		return nil, ErrInvalidClaims
	}
	p := &Principal{Name: c.Name, Kind: kind}
	if kind == KindCustomer {
		p.CustomerID = c.CustomerID
	}
	return p, nil
}

// IssueToken signs an HS256 token for name and kind. A non-positive ttl
// issues a token without expiry.
func IssueToken(secret, name, kind string, ttl time.Duration) (string, error) {
	if strings.EqualFold(kind, KindCustomer) {
		return "", ErrInvalidClaims
	}
	return sign(secret, Claims{Name: name, Kind: strings.ToLower(kind)}, ttl)
}

// IssueCustomerToken signs a customer token bound to customerID.
func IssueCustomerToken(secret string, customerID int64, username string, ttl time.Duration) (string, error) {
	if customerID <= 0 {
		return "", ErrInvalidClaims
	}
	return sign(secret, Claims{Name: username, Kind: KindCustomer, CustomerID: customerID}, ttl)
}

func sign(secret string, c Claims, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	if c.Name == "" || c.Kind == "" {
		return "", ErrInvalidClaims
	}
	now := time.Now()
	c.Subject = c.Name
	c.IssuedAt = jwt.NewNumericDate(now)
	if ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
