package core

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/argon2"

	"github.com/transpass/transpass/internal/model"
	"github.com/transpass/transpass/internal/platform"
)

const tokenLifetime = 24 * time.Hour

// argon2id parameters for new password hashes.
const (
	argonMemory  = 19 * 1024
	argonTime    = 2
	argonThreads = 1
	argonKeyLen  = 32
	argonSaltLen = 16
)

type AuthService struct {
	db        DB
	jwtSecret []byte
	jwtIssuer string
	now       func() time.Time
}

func NewAuthService(db DB, jwtSecret, jwtIssuer string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		jwtIssuer: jwtIssuer,
		now:       time.Now,
	}
}

// Registration holds the fields of a new account.
type Registration struct {
	Email       string
	Password    string
	DisplayName *string
	Role        string
	// CompanyName creates a company for a company account. Without it the
	// account acts as its own company.
	CompanyName string
}

const insertUserSQL = `INSERT INTO users (id, email, password_hash, display_name, role, company_id, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
	 RETURNING created_at, updated_at`

// insertCompanyUserSQL writes the company and its first user in one statement,
// so a rejected user leaves no company behind.
const insertCompanyUserSQL = `WITH company AS (
		INSERT INTO companies (id, name, created_at, updated_at) VALUES ($6, $7, now(), now())
		RETURNING id
	 )
	 INSERT INTO users (id, email, password_hash, display_name, role, company_id, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, (SELECT id FROM company), now(), now())
	 RETURNING created_at, updated_at`

// Register creates a user account and, for company accounts with a company
// name, the company it manages.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if email == "" || reg.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if reg.Role != model.RoleCompany && reg.Role != model.RoleConsumer {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, reg.Role)
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           platform.NewID(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  reg.DisplayName,
		Role:         reg.Role,
	}

	query := insertUserSQL
	args := []any{user.ID, user.Email, user.PasswordHash, user.DisplayName, user.Role, user.CompanyID}
	if reg.Role == model.RoleCompany && strings.TrimSpace(reg.CompanyName) != "" {
		companyID := platform.NewID()
		user.CompanyID = &companyID
		query = insertCompanyUserSQL
		args = []any{user.ID, user.Email, user.PasswordHash, user.DisplayName, user.Role, companyID, strings.TrimSpace(reg.CompanyName)}
	}

	err = s.db.QueryRow(ctx, query, args...).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("email %s is already registered: %w", email, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user by email and password, returning a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user model.User
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, display_name, role, company_id, created_at, updated_at
		 FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)),
	).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName, &user.Role,
		&user.CompanyID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	if err != nil {
		return "", fmt.Errorf("look up user: %w", err)
	}

	if !verifyArgon2(password, user.PasswordHash) {
		return "", fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}

	return s.IssueToken(&user)
}

type tokenClaims struct {
	CompanyID string `json:"company_id,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed HS256 JWT for the given user.
func (s *AuthService) IssueToken(user *model.User) (string, error) {
	now := s.now()
	claims := tokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}
	if user.CompanyID != nil {
		claims.CompanyID = *user.CompanyID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*model.JWTClaims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", ErrUnauthorized)
	}
	if claims.Issuer != s.jwtIssuer {
		return nil, fmt.Errorf("invalid token issuer: %w", ErrUnauthorized)
	}

	out := &model.JWTClaims{
		Sub:       claims.Subject,
		CompanyID: claims.CompanyID,
		Email:     claims.Email,
		Role:      claims.Role,
		Iss:       claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		out.Iat = claims.IssuedAt.Unix()
	}
	return out, nil
}

// hashPassword produces a PHC-format argon2id hash.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// verifyArgon2 checks a password against a PHC-format argon2id hash.
// Format: $argon2id$v=19$m=19456,t=2,p=1$<salt>$<hash>
func verifyArgon2(password, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	paramParts := strings.Split(parts[3], ",")
	if len(paramParts) != 3 {
		return false
	}

	memory, err := parseParam(paramParts[0], "m=")
	if err != nil {
		return false
	}
	iterations, err := parseParam(paramParts[1], "t=")
	if err != nil {
		return false
	}
	parallelism, err := parseParam(paramParts[2], "p=")
	if err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, uint32(iterations), uint32(memory), uint8(parallelism), uint32(len(expectedHash)))
	return subtle.ConstantTimeCompare(computed, expectedHash) == 1
}

func parseParam(s, prefix string) (int, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("missing prefix %s", prefix)
	}
	return strconv.Atoi(s[len(prefix):])
}
