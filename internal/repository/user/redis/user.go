package redis

import (
	"context"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"github.com/syncmiru/server/internal/domain"
	"github.com/syncmiru/server/internal/repository/user"
)

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

const nextUserIdKey = "next_user_id"

func (r repo) SessionValid(ctx context.Context, uid domain.UserId, token string) (bool, error) {
	r.logger.DebugContext(ctx, "called", "uid", uid)

	ok, err := r.rc.SIsMember(ctx, r.sessionsKey(int32(uid)), token).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r repo) GetMyProfile(ctx context.Context, uid domain.UserId) (domain.Profile, error) {
	r.logger.DebugContext(ctx, "called", "uid", uid)

	fields, err := r.rc.HGetAll(ctx, r.userKey(int32(uid))).Result()
	if err != nil {
		return domain.Profile{}, err
	}
	if len(fields) == 0 {
		return domain.Profile{}, user.ErrNotFound
	}

	profile := domain.Profile{
		Id:          uid,
		Username:    fields["username"],
		Displayname: fields["displayname"],
		Verified:    fields["verified"] == "1",
	}
	if avatar := fields["avatar_url"]; avatar != "" {
		profile.AvatarUrl = &avatar
	}

	return profile, nil
}

func (r repo) UsernameUnique(ctx context.Context, username string) (bool, error) {
	exists, err := r.rc.Exists(ctx, r.usernameKey(username)).Result()
	if err != nil {
		return false, err
	}

	return exists == 0, nil
}

func (r repo) EmailUnique(ctx context.Context, email string) (bool, error) {
	exists, err := r.rc.Exists(ctx, r.emailKey(email)).Result()
	if err != nil {
		return false, err
	}

	return exists == 0, nil
}

func (r repo) NewUser(ctx context.Context, params *user.NewUserParams) (domain.UserId, error) {
	r.logger.DebugContext(ctx, "called", "username", params.Username)

	unique, err := r.UsernameUnique(ctx, params.Username)
	if err != nil {
		return 0, err
	}
	if !unique {
		return 0, user.ErrUsernameTaken
	}
	unique, err = r.EmailUnique(ctx, params.Email)
	if err != nil {
		return 0, err
	}
	if !unique {
		return 0, user.ErrEmailTaken
	}

	id, err := r.rc.Incr(ctx, nextUserIdKey).Result()
	if err != nil {
		return 0, err
	}
	uid := int32(id)

	verified := "0"
	if params.Verified {
		verified = "1"
	}

	pipe := r.rc.TxPipeline()
	pipe.HSet(ctx, r.userKey(uid), map[string]any{
		"username":    params.Username,
		"displayname": params.Displayname,
		"email":       params.Email,
		"avatar_url":  params.AvatarUrl,
		"verified":    verified,
	})
	pipe.Set(ctx, r.usernameKey(params.Username), itoa(uid), 0)
	pipe.Set(ctx, r.emailKey(params.Email), itoa(uid), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return domain.UserId(uid), nil
}

// AddSession registers a bearer token for uid. Called by the admin/login
// path, consumed by SessionValid during the websocket handshake.
func (r repo) AddSession(ctx context.Context, uid domain.UserId, token string) error {
	return r.rc.SAdd(ctx, r.sessionsKey(int32(uid)), token).Err()
}

func (r repo) RemoveSession(ctx context.Context, uid domain.UserId, token string) error {
	res, err := r.rc.SRem(ctx, r.sessionsKey(int32(uid)), token).Result()
	if err != nil && err != goredis.Nil {
		return err
	}
	if res == 0 {
		return user.ErrSessionInvalid
	}

	return nil
}
