package endpoint_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Rullyopus4/IMO-MANTAP/model"
)

func TestLoginSuccessReturnsSessionAndRole(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	SeedUser(t, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	loginBody := map[string]string{"username": "pasien1", "password": "password123"}
	b, _ := json.Marshal(loginBody)
	rr, err := doRequest(r, "POST", "/login", b, nil)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("login returned non-200: %d %s", rr.Code, rr.Body.String())
	}

	resp := ParseAPIResp(t, rr)
	var data struct {
		Token        string `json:"token"`
		SessionToken string `json:"session_token"`
		Role         string `json:"role"`
		UserID       uint   `json:"user_id"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("parse login data failed: %v", err)
	}
	if data.Token == "" || data.SessionToken == "" {
		t.Fatalf("expected both JWT and session token, got %+v", data)
	}
	if data.Role != "Patient" {
		t.Fatalf("expected role Patient, got %s", data.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	SeedUser(t, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	loginBody := map[string]string{"username": "pasien1", "password": "wrong"}
	b, _ := json.Marshal(loginBody)
	rr, err := doRequest(r, "POST", "/login", b, nil)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong password, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	r, _, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	loginBody := map[string]string{"username": "siapa", "password": "password123"}
	b, _ := json.Marshal(loginBody)
	rr, err := doRequest(r, "POST", "/login", b, nil)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown user, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestLoginLocksAccountAfterRepeatedFailures(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	user := SeedUser(t, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	loginBody := map[string]string{"username": "pasien1", "password": "wrong"}
	b, _ := json.Marshal(loginBody)
	for i := 0; i < 5; i++ {
		rr, err := doRequest(r, "POST", "/login", b, nil)
		if err != nil {
			t.Fatalf("login attempt %d failed: %v", i, err)
		}
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("attempt %d: expected 400, got %d", i, rr.Code)
		}
	}

	var locked model.User
	if err := db.First(&locked, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if locked.FailedAttempts != 5 {
		t.Fatalf("expected 5 failed attempts, got %d", locked.FailedAttempts)
	}
	if locked.LockedUntil == nil {
		t.Fatalf("expected account to be locked")
	}

	// Correct password is also rejected while the lock holds
	correctBody := map[string]string{"username": "pasien1", "password": "password123"}
	b, _ = json.Marshal(correctBody)
	rr, err := doRequest(r, "POST", "/login", b, nil)
	if err != nil {
		t.Fatalf("login after lock failed: %v", err)
	}
	if rr.Code == http.StatusOK {
		t.Fatalf("expected locked account to reject correct password, got 200: %s", rr.Body.String())
	}
}

func TestLoginResetsFailedAttemptsOnSuccess(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	user := SeedUser(t, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	wrongBody := map[string]string{"username": "pasien1", "password": "wrong"}
	b, _ := json.Marshal(wrongBody)
	for i := 0; i < 3; i++ {
		if _, err := doRequest(r, "POST", "/login", b, nil); err != nil {
			t.Fatalf("login attempt failed: %v", err)
		}
	}

	LoginUser(t, r, "pasien1", "password123")

	var reloaded model.User
	if err := db.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if reloaded.FailedAttempts != 0 {
		t.Fatalf("expected failed attempts to reset, got %d", reloaded.FailedAttempts)
	}
}

func TestValidateTokenRoundTrip(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	_, token := SeedAndLogin(t, r, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	rr, err := doRequest(r, "GET", "/token/validate", nil, map[string]string{"session-token": token})
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("validate token returned non-200: %d %s", rr.Code, rr.Body.String())
	}

	rr, err = doRequest(r, "GET", "/token/validate", nil, map[string]string{"session-token": "not-a-session"})
	if err != nil {
		t.Fatalf("validate bogus token failed: %v", err)
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bogus token, got %d", rr.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	_, token := SeedAndLogin(t, r, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	rr, err := doRequest(r, "DELETE", "/logout", nil, map[string]string{"session-token": token})
	if err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("logout returned non-200: %d %s", rr.Code, rr.Body.String())
	}

	// The session row is gone, so a protected route rejects the token.
	rr, err = doRequest(r, "GET", "/message", nil, map[string]string{"session-token": token})
	if err != nil {
		t.Fatalf("post-logout request failed: %v", err)
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestVerifyPasswordEndpoint(t *testing.T) {
	r, db, cleanup := SetupTestServer(t)
	t.Cleanup(cleanup)

	_, token := SeedAndLogin(t, r, db, SeedCreds{Username: "pasien1", Name: "Budi Santoso", Password: "password123", RoleID: model.RolePatient})

	b, _ := json.Marshal(map[string]string{"password": "password123"})
	rr, err := doRequest(r, "POST", "/verify-password", b, map[string]string{"session-token": token})
	if err != nil {
		t.Fatalf("verify password failed: %v", err)
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("verify password returned non-200: %d %s", rr.Code, rr.Body.String())
	}

	b, _ = json.Marshal(map[string]string{"password": "wrong"})
	rr, err = doRequest(r, "POST", "/verify-password", b, map[string]string{"session-token": token})
	if err != nil {
		t.Fatalf("verify wrong password failed: %v", err)
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rr.Code)
	}
}
