package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/klokku/multical/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = errors.New("google account is not connected, run the auth command first")

const redirectURL = "urn:ietf:wg:oauth:2.0:oob"

func oauthConfig(cfg config.Google) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}
}

// AuthURL is the consent page the user opens to obtain an authorization code.
func AuthURL(cfg config.Google, state string) string {
	return oauthConfig(cfg).AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Authorize exchanges the code for a token and stores it in the token file.
func Authorize(ctx context.Context, cfg config.Google, code string) error {
	token, err := oauthConfig(cfg).Exchange(ctx, code)
	if err != nil {
		err := fmt.Errorf("unable to exchange code for token: %w", err)
		log.Error(err)
		return err
	}
	return writeToken(cfg.TokenFile, token)
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf("no Google token at %s", path)
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read Google token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("unable to decode Google token %s: %w", path, err)
	}
	return &token, nil
}

func writeToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("unable to encode Google token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		err := fmt.Errorf("unable to store Google token: %w", err)
		log.Error(err)
		return err
	}
	log.Debugf("stored Google token in %s", path)
	return nil
}
