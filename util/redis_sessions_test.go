package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Rullyopus4/IMO-MANTAP/config"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
)

// withMockRedis injects a mock Redis client for the duration of a test.
func withMockRedis(t *testing.T) redismock.ClientMock {
	t.Helper()
	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTesting(db)
	t.Cleanup(func() {
		config.SetRedisClientForTesting(nil)
		db.Close()
	})
	return mock
}

func TestAddSessionToUserSet_Success(t *testing.T) {
	mock := withMockRedis(t)

	userID := uint(123)
	token := "test-token-123"
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	mock.ExpectSAdd(userSetKey, token).SetVal(1)
	mock.ExpectPersist(userSetKey).SetVal(true)

	if err := AddSessionToUserSet(userID, token); err != nil {
		t.Fatalf("AddSessionToUserSet failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestAddSessionToUserSet_SAddError(t *testing.T) {
	mock := withMockRedis(t)

	userID := uint(123)
	token := "test-token-123"
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	expectedErr := errors.New("redis connection error")
	mock.ExpectSAdd(userSetKey, token).SetErr(expectedErr)

	err := AddSessionToUserSet(userID, token)
	if err == nil {
		t.Fatal("expected error from AddSessionToUserSet, got nil")
	}
	if err.Error() != expectedErr.Error() {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
}

func TestAddSessionToUserSet_NoRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	if err := AddSessionToUserSet(1, "token"); err != nil {
		t.Fatalf("expected no error without redis, got %v", err)
	}
}

func TestRemoveSessionTokenFromUserSet(t *testing.T) {
	mock := withMockRedis(t)

	userID := uint(77)
	token := "token-to-remove"
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	mock.ExpectEval(removeSessionScript, []string{userSetKey}, token).SetVal(int64(1))

	if err := RemoveSessionTokenFromUserSet(userID, token); err != nil {
		t.Fatalf("RemoveSessionTokenFromUserSet failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestRemoveSessionTokenFromUserSet_NoRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	if err := RemoveSessionTokenFromUserSet(1, "token"); err != nil {
		t.Fatalf("expected no error without redis, got %v", err)
	}
}

func TestInvalidateUserSessions(t *testing.T) {
	mock := withMockRedis(t)

	userID := uint(42)
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	mock.ExpectSMembers(userSetKey).SetVal([]string{"token-a", "token-b"})
	mock.ExpectDel("session:token-a").SetVal(1)
	mock.ExpectDel("session:token-b").SetVal(1)
	mock.ExpectDel(userSetKey).SetVal(1)

	if err := InvalidateUserSessions(userID); err != nil {
		t.Fatalf("InvalidateUserSessions failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestInvalidateUserSessions_SMembersError(t *testing.T) {
	mock := withMockRedis(t)

	userID := uint(42)
	userSetKey := fmt.Sprintf("user_sessions:%d", userID)

	mock.ExpectSMembers(userSetKey).SetErr(redis.ErrClosed)

	if err := InvalidateUserSessions(userID); err == nil {
		t.Fatal("expected error when SMembers fails, got nil")
	}
}

func TestInvalidateUserSessions_NoRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)
	if err := InvalidateUserSessions(1); err != nil {
		t.Fatalf("expected no error without redis, got %v", err)
	}
}
