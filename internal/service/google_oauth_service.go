package service

import (
	"context"
	"indosat_lms_backend/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// 内容上传所需的最小 Google 授权范围
var googleUploadScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// GoogleOAuthService 培训师内容上传的三段式授权码流程：
// 生成授权链接 → 回调换 token → 刷新过期 token。
// access token 不落库，由客户端持有并随上传请求携带。
type GoogleOAuthService struct {
	Config *oauth2.Config
}

func NewGoogleOAuthService(cfg *config.GoogleConfig) *GoogleOAuthService {
	return &GoogleOAuthService{
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       googleUploadScopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL 带 state 的授权链接；offline + consent 保证拿到 refresh token
func (s *GoogleOAuthService) AuthURL(state string) string {
	return s.Config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange 授权码换 token
func (s *GoogleOAuthService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.Config.Exchange(ctx, code)
}

// Refresh 用 refresh token 换新的 access token
func (s *GoogleOAuthService) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := s.Config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}
