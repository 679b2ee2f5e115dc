package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// fakeTokenEndpoint serves the exchange half of the flow.
func fakeTokenEndpoint(t *testing.T) *oauth2.Config {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"exchanged-token","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	}))
	t.Cleanup(ts.Close)

	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: ts.URL + "/token"},
	}
}

func callbackRequest(state, code string) *http.Request {
	return httptest.NewRequest(http.MethodGet, "/callback?state="+state+"&code="+code, nil)
}

func TestOAuthHandler(t *testing.T) {
	t.Run("Successful Callback Stores Token First", func(t *testing.T) {
		var stored *oauth2.Token
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", func(token *oauth2.Token) error {
			stored = token
			return nil
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state-123", "auth-code"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("expected success, got %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "exchanged-token" {
			t.Errorf("unexpected token: %+v", result.Token)
		}
		if stored == nil || stored.AccessToken != "exchanged-token" {
			t.Error("sink should receive the exchanged token")
		}
		if !strings.Contains(rec.Body.String(), "Connected to Spotify") {
			t.Error("expected success page body")
		}
	})

	t.Run("Sink Failure Fails The Flow", func(t *testing.T) {
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", func(*oauth2.Token) error {
			return fmt.Errorf("disk full")
		})

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state-123", "auth-code"))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "failed to store token") {
			t.Errorf("expected store failure, got %v", result.Error())
		}
		if result.Token != nil {
			t.Error("a failed flow must not carry a token")
		}
	})

	t.Run("Nil Sink Is Allowed", func(t *testing.T) {
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("state-123", "auth-code"))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if result := <-handler.Result(); result.Error() != nil {
			t.Errorf("expected success, got %v", result.Error())
		}
	})

	t.Run("State Mismatch Rejected", func(t *testing.T) {
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", nil)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, callbackRequest("forged", "auth-code"))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if result := <-handler.Result(); result.Error() == nil {
			t.Error("expected state validation error")
		}
	})

	t.Run("Denied Authorization Surfaces Error", func(t *testing.T) {
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/callback?state=state-123&error=access_denied&error_description=user+denied", nil)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected denial detail, got %v", result.Error())
		}
	})

	t.Run("Repeated Callback Rejected", func(t *testing.T) {
		sinkCalls := 0
		handler := NewOAuthHandler(fakeTokenEndpoint(t), "state-123", func(*oauth2.Token) error {
			sinkCalls++
			return nil
		})

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, callbackRequest("state-123", "auth-code"))
		second := httptest.NewRecorder()
		handler.ServeHTTP(second, callbackRequest("state-123", "auth-code"))

		if second.Code != http.StatusBadRequest {
			t.Fatalf("expected replay to get 400, got %d", second.Code)
		}
		if sinkCalls != 1 {
			t.Errorf("sink should run once, ran %d times", sinkCalls)
		}
	})
}
