package user

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrUsernameTaken  = errors.New("username already taken")
	ErrEmailTaken     = errors.New("email already taken")
	ErrSessionInvalid = errors.New("session invalid")
)

type NewUserParams struct {
	Username    string
	Displayname string
	Email       string
	AvatarUrl   string
	Verified    bool
}
