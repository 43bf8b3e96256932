// Package identity derives the short public identifier of a user.
package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/yukikurage/team-task-board/internal/constants"
)

// ErrEmptyInput is returned when email or username is blank.
var ErrEmptyInput = errors.New("identity: email and username are required")

// DeriveUID hashes email+username with SHA-256, base64-encodes the digest
// (standard alphabet, padded) and keeps the first 10 characters.
//
// The result is deterministic. Distinct pairs can produce the same uid, either
// because their concatenations are equal ("a@x.co"+"mbob" == "a@x.com"+"bob")
// or by truncation; callers must treat an existing holder as a collision.
func DeriveUID(email, username string) (string, error) {
	if email == "" || username == "" {
		return "", ErrEmptyInput
	}

	sum := sha256.Sum256([]byte(email + username))
	encoded := base64.StdEncoding.EncodeToString(sum[:])
	return encoded[:constants.UIDLength], nil
}

// MustDeriveUID panics on empty input. Used by fixtures and the CLI after validation.
func MustDeriveUID(email, username string) string {
	uid, err := DeriveUID(email, username)
	if err != nil {
		panic(err)
	}
	return uid
}
