// Copyright 2024 Cloudbase Solutions SRL

package auth

import (
	"context"
)

// SessionProvider exchanges the run credentials for an access token.
type SessionProvider interface {
	Token(ctx context.Context) (string, error)
}
