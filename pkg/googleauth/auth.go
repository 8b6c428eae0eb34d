// Package googleauth builds authorized HTTP clients from the OAuth client
// secret and cached token files the legacy tooling already uses. Token
// refresh is handled by the oauth2 transport; the interactive consent flow
// is out of scope and must be run separately to produce token.json.
package googleauth

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/rotisserie/eris"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// NewHTTPClient returns an *http.Client carrying credentials loaded from
// credentialsFile (client_secret.json) and tokenFile (token.json). A missing
// or unreadable file is a fatal setup error for the caller.
func NewHTTPClient(ctx context.Context, credentialsFile, tokenFile string, scopes ...string) (*http.Client, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, eris.Wrapf(err, "googleauth: read credentials %s", credentialsFile)
	}

	conf, err := google.ConfigFromJSON(secret, scopes...)
	if err != nil {
		return nil, eris.Wrap(err, "googleauth: parse credentials")
	}

	tok, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	return conf.Client(ctx, tok), nil
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "googleauth: read token %s", path)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, eris.Wrapf(err, "googleauth: parse token %s", path)
	}
	return &tok, nil
}
