package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/verdantry/canopy-backend/internal/data/repos"
	"github.com/verdantry/canopy-backend/internal/domain"
	"github.com/verdantry/canopy-backend/internal/platform/ctxutil"
	"github.com/verdantry/canopy-backend/internal/platform/dbctx"
	"github.com/verdantry/canopy-backend/internal/platform/logger"
)

// RegisterInput creates a vendor together with its first user account.
type RegisterInput struct {
	VendorName    string `json:"vendor_name"`
	LicenseNumber string `json:"license_number"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, newRefreshToken string, err error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	vendorRepo    repos.VendorRepo
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	vendorRepo repos.VendorRepo,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           baseLog.With("service", "AuthService"),
		vendorRepo:    vendorRepo,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email")
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	vendorName := strings.TrimSpace(input.VendorName)
	if vendorName == "" {
		return nil, fmt.Errorf("vendor name required")
	}

	existing, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var user *domain.User
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		vendors, err := as.vendorRepo.Create(dbc, []*domain.Vendor{{
			Name:          vendorName,
			LicenseNumber: strings.TrimSpace(input.LicenseNumber),
		}})
		if err != nil {
			return fmt.Errorf("failed to create vendor: %w", err)
		}

		users, err := as.userRepo.Create(dbc, []*domain.User{{
			VendorID:  vendors[0].ID,
			Email:     email,
			Password:  string(hash),
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
		}})
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		user = users[0]
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	as.log.Info("registered vendor account", "vendor", vendorName, "user_id", user.ID)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	users, err := as.userRepo.GetByEmails(dbctx.Context{Ctx: ctx}, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return "", "", fmt.Errorf("invalid credentials")
	}
	user := users[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid credentials")
	}

	var accessToken, refreshToken string
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		// One active session per user: clear out previous tokens.
		stale, err := as.userTokenRepo.GetByUserIDs(dbc, []uuid.UUID{user.ID})
		if err != nil {
			return fmt.Errorf("failed to check user tokens: %w", err)
		}
		if len(stale) > 0 {
			ids := make([]uuid.UUID, 0, len(stale))
			for _, t := range stale {
				ids = append(ids, t.ID)
			}
			if err := as.userTokenRepo.FullDeleteByIDs(dbc, ids); err != nil {
				return fmt.Errorf("failed to delete stale tokens: %w", err)
			}
		}

		accessToken, refreshToken, err = as.issueTokens(dbc, user)
		return err
	})
	if txErr != nil {
		return "", "", txErr
	}
	return accessToken, refreshToken, nil
}

func (as *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", "", fmt.Errorf("refresh token required")
	}

	var accessToken, newRefreshToken string
	txErr := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		tokens, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return fmt.Errorf("failed to look up refresh token: %w", err)
		}
		if len(tokens) == 0 {
			return fmt.Errorf("invalid refresh token")
		}
		token := tokens[0]
		if token.ExpiresAt.Before(time.Now()) {
			_ = as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{token.ID})
			return fmt.Errorf("refresh token expired")
		}

		users, err := as.userRepo.GetByIDs(dbc, []uuid.UUID{token.UserID})
		if err != nil || len(users) == 0 {
			return fmt.Errorf("failed to load user for refresh")
		}

		if err := as.userTokenRepo.FullDeleteByIDs(dbc, []uuid.UUID{token.ID}); err != nil {
			return fmt.Errorf("failed to rotate refresh token: %w", err)
		}
		accessToken, newRefreshToken, err = as.issueTokens(dbc, users[0])
		return err
	})
	if txErr != nil {
		return "", "", txErr
	}
	return accessToken, newRefreshToken, nil
}

func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil {
		return fmt.Errorf("no authenticated session")
	}
	dbc := dbctx.Context{Ctx: ctx}
	tokens, err := as.userTokenRepo.GetByUserIDs(dbc, []uuid.UUID{rd.UserID})
	if err != nil {
		return fmt.Errorf("failed to look up session tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(tokens))
	for _, t := range tokens {
		ids = append(ids, t.ID)
	}
	return as.userTokenRepo.FullDeleteByIDs(dbc, ids)
}

// SetContextFromToken validates a bearer token and attaches the request
// identity to the context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, fmt.Errorf("invalid access token")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, fmt.Errorf("invalid subject claim")
	}
	vendorRaw, _ := claims["vendor_id"].(string)
	vendorID, err := uuid.Parse(vendorRaw)
	if err != nil {
		return ctx, fmt.Errorf("invalid vendor claim")
	}

	rd := &ctxutil.RequestData{
		UserID:      userID,
		VendorID:    vendorID,
		SessionID:   uuid.New(),
		TokenString: tokenString,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) issueTokens(dbc dbctx.Context, user *domain.User) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"vendor_id": user.VendorID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(as.accessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString() + uuid.NewString()
	if _, err := as.userTokenRepo.Create(dbc, []*domain.UserToken{{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    now.Add(as.refreshTTL),
	}}); err != nil {
		return "", "", fmt.Errorf("failed to persist session token: %w", err)
	}
	return accessToken, refreshToken, nil
}
