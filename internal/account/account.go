// Package account registers customers and signs them in.
package account

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"droneFoodDelivery/internal/apperr"
	"droneFoodDelivery/internal/auth"
	"droneFoodDelivery/models"
	"droneFoodDelivery/repository"
)

const (
	MinPasswordLen = 6
	// bcrypt ignores input past 72 bytes.
	MaxPasswordLen = 72
)

// Registration is the input of Register.
type Registration struct {
	Name     string
	Phone    string
	Email    string
	Address  string
	Username string
	Password string
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Customer  *models.Customer
}

type Service struct {
	store  *repository.Store
	secret string
	ttl    time.Duration
	cost   int
	log    *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option { return func(s *Service) { s.cost = cost } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func New(store *repository.Store, secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		store:  store,
		secret: secret,
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Register creates a customer with a hashed password. Usernames are unique.
func (s *Service) Register(ctx context.Context, r Registration) (*models.Customer, error) {
	const op = "Register"
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return nil, apperr.New(apperr.KindInvalidInput, op, "username is required")
	}
	if n := len(r.Password); n < MinPasswordLen || n > MaxPasswordLen {
		return nil, apperr.New(apperr.KindInvalidInput, op, "password must be %d to %d characters", MinPasswordLen, MaxPasswordLen)
	}
	if strings.TrimSpace(r.Name) == "" {
		r.Name = r.Username
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidInput, op, "password: %v", err)
	}

	var c *models.Customer
	err = s.store.InTx(ctx, func(repos *repository.Repos) error {
		existing, err := repos.Customers.GetByUsername(ctx, r.Username)
		if err != nil {
			return apperr.Persistence(op, err)
		}
		if existing != nil {
			return taken(op, r.Username)
		}
		c, err = repos.Customers.Create(ctx, &models.Customer{
			Name:         r.Name,
			Phone:        r.Phone,
			Email:        r.Email,
			Address:      r.Address,
			Username:     r.Username,
			PasswordHash: string(hash),
		})
		if repository.IsUniqueViolation(err) {
			return taken(op, r.Username)
		}
		return apperr.Persistence(op, err)
	})
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	s.log.Info("customer registered", "customer_id", c.ID, "username", c.Username)
	return c, nil
}

func taken(op, username string) error {
	return apperr.New(apperr.KindConflict, op, "username %q is already taken", username)
}

// Login checks the credentials and issues a customer token. Unknown users and
// wrong passwords fail the same way.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	const op = "Login"
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, op, "username and password are required")
	}
	c, err := s.store.Repos().Customers.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if c == nil || c.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, apperr.New(apperr.KindUnauthorized, op, "invalid username or password")
	}
	tok, err := auth.IssueCustomerToken(s.secret, c.ID, c.Username, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: s.now().Add(s.ttl).UTC(), Customer: c}, nil
}

// Authenticate resolves an Authorization header to a principal.
func (s *Service) Authenticate(header string) (*auth.Principal, error) {
	p, err := auth.ParseBearer(header, s.secret)
	if err != nil {
		return nil, apperr.New(apperr.KindUnauthorized, "Authenticate", "%v", err)
	}
	return p, nil
}

// Profile returns the customer record.
func (s *Service) Profile(ctx context.Context, customerID int64) (*models.Customer, error) {
	const op = "Profile"
	c, err := s.store.Repos().Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if c == nil {
		return nil, apperr.New(apperr.KindNotFound, op, "customer %d not found", customerID)
	}
	return c, nil
}
