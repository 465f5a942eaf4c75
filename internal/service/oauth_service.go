package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-qa-be/internal/config"
	"ai-qa-be/internal/dto"
	"ai-qa-be/internal/entity"
	"ai-qa-be/internal/pkg/logger"
	"ai-qa-be/internal/repository/specification"
	"ai-qa-be/internal/repository/unitofwork"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type IOAuthService interface {
	// GetLoginURL returns the consent URL and the state the callback must echo.
	GetLoginURL(provider string) (string, string, error)
	HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error)
}

type oauthService struct {
	uowFactory  unitofwork.RepositoryFactory
	googleConf  *oauth2.Config
	userInfoURL string
	keys        config.APIKeys
	logger      logger.ILogger
}

func NewOAuthService(uowFactory unitofwork.RepositoryFactory, keys config.APIKeys, log logger.ILogger) IOAuthService {
	conf := &oauth2.Config{
		ClientID:     keys.GoogleClientID,
		ClientSecret: keys.GoogleClientSecret,
		RedirectURL:  keys.GoogleRedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return newOAuthService(uowFactory, conf, googleUserInfoURL, keys, log)
}

func newOAuthService(uowFactory unitofwork.RepositoryFactory, conf *oauth2.Config, userInfoURL string, keys config.APIKeys, log logger.ILogger) *oauthService {
	return &oauthService{
		uowFactory:  uowFactory,
		googleConf:  conf,
		userInfoURL: userInfoURL,
		keys:        keys,
		logger:      log,
	}
}

func (s *oauthService) GetLoginURL(provider string) (string, string, error) {
	if provider != "google" {
		return "", "", ErrUnsupportedProvider
	}

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	state := base64.URLEncoding.EncodeToString(b)

	return s.googleConf.AuthCodeURL(state), state, nil
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *oauthService) fetchUser(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	client := s.googleConf.Client(ctx, token)

	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("user info returned %d: %s", resp.StatusCode, body)
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("user info carries no email")
	}
	return &user, nil
}

func (s *oauthService) HandleCallback(ctx context.Context, provider string, code string) (*dto.LoginResponse, error) {
	if provider != "google" {
		return nil, ErrUnsupportedProvider
	}

	token, err := s.googleConf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	gu, err := s.fetchUser(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.upsertAccount(ctx, gu)
	if err != nil {
		return nil, err
	}

	signed, err := s.issueToken(account)
	if err != nil {
		return nil, err
	}

	s.logger.Info("OAUTH", "Account signed in", map[string]interface{}{
		"account_id": account.Id.String(),
		"provider":   provider,
	})

	res := &dto.LoginResponse{
		AccessToken: signed,
		Account: dto.AccountDTO{
			Id:       account.Id,
			Email:    account.Email,
			FullName: account.FullName,
		},
	}
	if account.AvatarURL != nil {
		res.Account.AvatarURL = *account.AvatarURL
	}
	return res, nil
}

// upsertAccount finds the account by Google id, then by email, and creates
// it on first sign-in. Profile fields are refreshed on every sign-in.
func (s *oauthService) upsertAccount(ctx context.Context, gu *googleUser) (*entity.Account, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	account, err := uow.AccountRepository().FindOne(ctx, specification.ByGoogleID{GoogleID: gu.ID})
	if err != nil {
		return nil, err
	}
	if account == nil {
		account, err = uow.AccountRepository().FindOne(ctx, specification.ByEmail{Email: gu.Email})
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	var avatar *string
	if gu.Picture != "" {
		avatar = &gu.Picture
	}

	if account == nil {
		account = &entity.Account{
			Id:          uuid.New(),
			Email:       gu.Email,
			FullName:    gu.Name,
			GoogleId:    gu.ID,
			AvatarURL:   avatar,
			LastLoginAt: &now,
			CreatedAt:   now,
		}
		if err := uow.AccountRepository().Create(ctx, account); err != nil {
			return nil, err
		}
		return account, nil
	}

	account.GoogleId = gu.ID
	account.FullName = gu.Name
	account.AvatarURL = avatar
	account.LastLoginAt = &now
	account.UpdatedAt = &now
	if err := uow.AccountRepository().Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *oauthService) issueToken(account *entity.Account) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": account.Id.String(),
		"email":   account.Email,
		"iss":     s.keys.JWTIssuer,
		"iat":     now.Unix(),
		"exp":     now.Add(s.keys.JWTTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.keys.JWTSecret))
}
