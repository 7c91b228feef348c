// Copyright 2024 Cloudbase Solutions SRL
//
//    Licensed under the Apache License, Version 2.0 (the "License"); you may
//    not use this file except in compliance with the License. You may obtain
//    a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
//    WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
//    License for the specific language governing permissions and limitations
//    under the License.

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/juju/loggo"
	"github.com/pkg/errors"

	"github.com/gabriel-samfira/appservices-logs/config"
	"github.com/gabriel-samfira/appservices-logs/httpclient"
	"github.com/gabriel-samfira/appservices-logs/params"
)

const loginPath = "auth/providers/mongodb-cloud/login"

// Credentials is an Atlas programmatic API key pair.
type Credentials struct {
	publicKey  string
	privateKey string
}

// NewCredentials validates an API key pair.
func NewCredentials(publicKey, privateKey string) (Credentials, error) {
	if err := params.ValidateString("public_api_key", publicKey); err != nil {
		return Credentials{}, err
	}
	if err := params.ValidatePrivateKey("private_api_key", privateKey); err != nil {
		return Credentials{}, err
	}
	return Credentials{
		publicKey:  publicKey,
		privateKey: privateKey,
	}, nil
}

func (c Credentials) PublicKey() string {
	return c.publicKey
}

// AuthError is returned when the credentials could not be exchanged
// for a token. StatusCode is zero when no response was received.
type AuthError struct {
	StatusCode int
	Err        error
}

func (a *AuthError) Error() string {
	if a.StatusCode == 0 {
		return fmt.Sprintf("authentication failed: %v", a.Err)
	}
	return fmt.Sprintf("authentication failed (http %d): %v", a.StatusCode, a.Err)
}

func (a *AuthError) Unwrap() error {
	return a.Err
}

type loginRequest struct {
	Username string `json:"username"`
	APIKey   string `json:"apiKey"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// NewSessionProvider returns a SessionProvider that logs in with the
// mongodb-cloud auth provider.
func NewSessionProvider(cfg config.API, creds Credentials, client *http.Client, log loggo.Logger) (SessionProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating api config")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &atlasSession{
		cfg:    cfg,
		creds:  creds,
		client: client,
		log:    log,
	}, nil
}

var _ SessionProvider = (*atlasSession)(nil)

type atlasSession struct {
	cfg    config.API
	creds  Credentials
	client *http.Client
	log    loggo.Logger

	token string
}

// Token logs in on first use. Later calls return the same token.
func (a *atlasSession) Token(ctx context.Context) (string, error) {
	if a.token != "" {
		return a.token, nil
	}
	token, err := a.login(ctx)
	if err != nil {
		return "", err
	}
	a.token = token
	return token, nil
}

func (a *atlasSession) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		Username: a.creds.publicKey,
		APIKey:   a.creds.privateKey,
	})
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "marshaling login request")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL.Join(loginPath), bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "building login request")}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	a.log.Debugf("logging in with public key %s", a.creds.publicKey)
	resp, err := a.client.Do(req)
	if err != nil {
		return "", &AuthError{Err: errors.Wrap(err, "sending login request")}
	}
	defer resp.Body.Close()

	if !httpclient.IsSuccess(resp) {
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Err:        httpclient.StatusError(resp),
		}
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Err:        errors.Wrap(err, "decoding login response"),
		}
	}
	if login.AccessToken == "" {
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("login response has no access token"),
		}
	}
	return login.AccessToken, nil
}
