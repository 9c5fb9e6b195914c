package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/logger"
)

// Sender delivers fire alerts through the Gmail API. The OAuth token lives in
// a local file and is refreshed in place when it expires; the first send on a
// fresh deployment walks through a console authorization flow.
type Sender struct {
	from            string
	tokenPath       string
	credentialsPath string
	logger          *logger.Logger

	mu  sync.Mutex // guards lazy init and token refresh/persist
	svc *gmail.Service
}

func NewSender(cfg *config.Config, logger *logger.Logger) *Sender {
	return &Sender{
		from:            cfg.EmailAddress,
		tokenPath:       cfg.TokenPath,
		credentialsPath: cfg.CredentialsPath,
		logger:          logger,
	}
}

// SendAlert builds and submits the alert mail. It returns true only when the
// provider acknowledges the message with an ID; every failure is logged and
// reported as false so the caller can treat delivery as best-effort.
func (s *Sender) SendAlert(recipient string, score float64, imagePath string) bool {
	ctx := context.Background()

	svc, err := s.service(ctx)
	if err != nil {
		s.logger.Error("Could not initialize Gmail service: %v", err)
		return false
	}

	var imageData []byte
	if imagePath != "" {
		data, err := os.ReadFile(imagePath)
		if err != nil {
			s.logger.Warning("Could not read alert attachment %s: %v", imagePath, err)
		} else {
			imageData = data
			s.logger.Info("Attached image: %s", imagePath)
		}
	}

	raw, err := BuildAlertMessage(s.from, recipient, score, imageData, time.Now())
	if err != nil {
		s.logger.Error("Could not build alert message: %v", err)
		return false
	}

	message := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	sent, err := svc.Users.Messages.Send("me", message).Do()
	if err != nil {
		s.logger.Error("Failed to send alert email to %s: %v", recipient, err)
		return false
	}

	s.logger.Info("Sent alert email to %s, message ID: %s", recipient, sent.Id)
	return true
}

// service returns the Gmail client, initializing it on first use. Init and
// token refresh are serialized so concurrent requests cannot race on the
// token file.
func (s *Sender) service(ctx context.Context) (*gmail.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}

	data, err := os.ReadFile(s.credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read client credentials: %v", err)
	}
	conf, err := google.ConfigFromJSON(data, gmail.GmailSendScope)
	if err != nil {
		return nil, fmt.Errorf("could not parse client credentials: %v", err)
	}

	token, err := s.loadToken()
	if err != nil {
		s.logger.Info("No stored mail token, starting authorization")
		token = nil
	}
	if !token.Valid() {
		token, err = s.renewToken(ctx, conf, token)
		if err != nil {
			return nil, err
		}
	}

	client := conf.Client(ctx, token)
	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("could not create Gmail service: %v", err)
	}

	s.logger.Info("Gmail service initialized")
	s.svc = svc
	return svc, nil
}

func (s *Sender) loadToken() (*oauth2.Token, error) {
	file, err := os.Open(s.tokenPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(file).Decode(token); err != nil {
		return nil, err
	}
	return token, nil
}

// renewToken refreshes an expired token when possible, otherwise falls back
// to the interactive authorization flow. The result is persisted either way.
func (s *Sender) renewToken(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token != nil && token.RefreshToken != "" {
		s.logger.Info("Mail token expired, refreshing")
		fresh, err := conf.TokenSource(ctx, token).Token()
		if err == nil {
			if err := s.saveToken(fresh); err != nil {
				return nil, err
			}
			return fresh, nil
		}
		s.logger.Warning("Token refresh failed: %v", err)
	}

	return s.authorize(ctx, conf)
}

// authorize runs the console OAuth flow. This is expected once per
// deployment, not per request.
func (s *Sender) authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following link in your browser, then paste the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("could not read authorization code: %v", err)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("could not exchange authorization code: %v", err)
	}

	if err := s.saveToken(token); err != nil {
		return nil, err
	}
	return token, nil
}

func (s *Sender) saveToken(token *oauth2.Token) error {
	file, err := os.OpenFile(s.tokenPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not write token file: %v", err)
	}
	defer file.Close()

	if err := json.NewEncoder(file).Encode(token); err != nil {
		return fmt.Errorf("could not encode token: %v", err)
	}
	s.logger.Info("Saved mail token to %s", s.tokenPath)
	return nil
}
