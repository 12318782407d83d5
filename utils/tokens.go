package utils

import (
	"os"
	"time"

	"github.com/kataras/iris/v12/middleware/jwt"
)

type AccessToken struct {
	ID   uint   `json:"ID"`
	Role string `json:"role"`
}

// CreateAccessToken signs an access token for an organizer. Tokens are issued
// by the account service; this is used by scripts and tests.
func CreateAccessToken(id uint, role string, ttl time.Duration) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")), ttl)
	token, err := signer.Sign(AccessToken{ID: id, Role: role})
	if err != nil {
		return "", err
	}
	return string(token), nil
}
