package token

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/planner-back/internal/config"
)

type Purpose string

const (
	PurposeActivation    Purpose = "activation"
	PurposePasswordReset Purpose = "password_reset"
)

var ErrInvalid = errors.New("invalid link token")

type claims struct {
	Purpose Purpose `json:"purpose"`
	jwt.RegisteredClaims
}

// Links signs and checks one-time account links. The signing key mixes in a
// per-user state string, so a token stops verifying once that state changes
// (password hash rotated or account activated).
type Links struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewLinks(cfg *config.Config) *Links {
	return &Links{
		secret: []byte(cfg.SecretKey),
		ttl:    cfg.LinkTTL,
		now:    time.Now,
	}
}

// Make returns the encoded user id and a signed token for it.
func (l *Links) Make(purpose Purpose, userID uint64, state string) (string, string, error) {
	now := l.now()
	c := claims{
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(l.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(l.key(purpose, state))
	if err != nil {
		return "", "", errors.Wrap(err, "sign link token")
	}
	return EncodeUID(userID), signed, nil
}

// Verify checks that token was issued by Make for the same purpose, user and
// state, and has not expired.
func (l *Links) Verify(purpose Purpose, userID uint64, state, token string) error {
	c := claims{}
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return l.key(purpose, state), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(l.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}
	if c.Purpose != purpose || c.Subject != strconv.FormatUint(userID, 10) {
		return ErrInvalid
	}
	return nil
}

func (l *Links) key(purpose Purpose, state string) []byte {
	h := sha256.New()
	h.Write(l.secret)
	h.Write([]byte{0})
	h.Write([]byte(purpose))
	h.Write([]byte{0})
	h.Write([]byte(state))
	return h.Sum(nil)
}

func EncodeUID(id uint64) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatUint(id, 10)))
}

func DecodeUID(uid64 string) (uint64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid64)
	if err != nil {
		return 0, errors.Wrap(err, "decode uid")
	}
	id, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse uid")
	}
	return id, nil
}
