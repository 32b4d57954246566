package room

import (
	"context"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/syncmiru/server/internal/domain"
)

type AuthenticateParams struct {
	Jwt  string
	Conn *websocket.Conn
}

type AuthenticateResponse struct {
	Profile domain.Profile
}

// Authenticate verifies the handshake credential, checks it against the
// active-session store and binds the connection to the user. The state is
// only mutated after every fallible step has succeeded.
func (s *service) Authenticate(ctx context.Context, params *AuthenticateParams) (AuthenticateResponse, error) {
	token, err := jwt.Parse(params.Jwt, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.cfg.PublicKey, nil
	})
	if err != nil {
		return AuthenticateResponse{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return AuthenticateResponse{}, fmt.Errorf("%w: missing sub claim", ErrAuthFailed)
	}
	rawUid, err := strconv.ParseInt(sub, 10, 32)
	if err != nil || rawUid < 1 {
		return AuthenticateResponse{}, fmt.Errorf("%w: malformed sub claim", ErrAuthFailed)
	}
	uid := domain.UserId(rawUid)

	valid, err := s.userStore.SessionValid(ctx, uid, params.Jwt)
	if err != nil {
		return AuthenticateResponse{}, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return AuthenticateResponse{}, fmt.Errorf("%w: no active session", ErrAuthFailed)
	}

	profile, err := s.userStore.GetMyProfile(ctx, uid)
	if err != nil {
		return AuthenticateResponse{}, fmt.Errorf("failed to get profile: %w", err)
	}

	if _, err := s.connRepo.Add(params.Conn, uid); err != nil {
		return AuthenticateResponse{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}

	return AuthenticateResponse{Profile: profile}, nil
}
