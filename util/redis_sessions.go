package util

import (
	"context"
	"fmt"

	"github.com/Rullyopus4/IMO-MANTAP/config"
)

// removeSessionScript atomically removes a token from the per-user set and
// deletes the set once it becomes empty.
const removeSessionScript = `
		local removed = redis.call('SREM', KEYS[1], ARGV[1])
		if removed > 0 then
			local count = redis.call('SCARD', KEYS[1])
			if count == 0 then
				redis.call('DEL', KEYS[1])
			end
		end
		return removed
	`

// AddSessionToUserSet adds the session token to the per-user Redis set.
// The set has no TTL and persists until explicitly cleaned up via
// RemoveSessionTokenFromUserSet or InvalidateUserSessions.
func AddSessionToUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)
	if err := rdb.SAdd(ctx, userSetKey, token).Err(); err != nil {
		return err
	}
	// Use PERSIST to ensure the set has no TTL and relies on explicit cleanup
	return rdb.Persist(ctx, userSetKey).Err()
}

// RemoveSessionTokenFromUserSet removes a single session token from the per-user set.
// If the set becomes empty after removal, it is deleted.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)
	return rdb.Eval(ctx, removeSessionScript, []string{userSetKey}, token).Err()
}

// InvalidateUserSessions removes every session key and the per-user set for
// a user, e.g. after a password change.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	tokens, err := rdb.SMembers(ctx, userSetKey).Result()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		_ = rdb.Del(ctx, fmt.Sprintf("session:%s", token)).Err()
	}
	return rdb.Del(ctx, userSetKey).Err()
}
