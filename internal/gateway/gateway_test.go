package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/url-shortener-client/internal/entity"
)

func setupClient(t testing.TB, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return New(Config{BaseURL: server.URL})
}

func TestClient_Login(t *testing.T) {
	t.Run("invalid credentials", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"non_field_errors": ["Unable to log in with provided credentials."]}`))
		})

		token, err := client.Login(context.TODO(), "user", "wrong")

		assert.Error(t, err)
		var verr *entity.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Empty(t, token)
	})

	t.Run("server unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := New(Config{BaseURL: server.URL})

		token, err := client.Login(context.TODO(), "user", "pass")

		assert.Error(t, err)
		var terr *entity.TransportError
		assert.ErrorAs(t, err, &terr)
		assert.Empty(t, token)
	})

	t.Run("token under key field", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"key": "tok456"})
		})

		token, err := client.Login(context.TODO(), "user", "pass")

		assert.NoError(t, err)
		assert.Equal(t, "tok456", token)
	})

	t.Run("success", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/auth/login/", r.URL.Path)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "user", body["username"])

			json.NewEncoder(w).Encode(map[string]string{"token": "tok123"})
		})

		token, err := client.Login(context.TODO(), "user", "pass")

		assert.NoError(t, err)
		assert.Equal(t, "tok123", token)
	})
}

func TestClient_VerifyToken(t *testing.T) {
	t.Run("invalid token", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Invalid token."}`))
		})

		user, err := client.VerifyToken(context.TODO(), "stale")

		assert.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrSessionInvalid)
		assert.Nil(t, user)
	})

	t.Run("success", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/verify-token/", r.URL.Path)
			assert.Equal(t, "Token tok123", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(map[string]any{
				"user": map[string]any{"id": 1, "username": "a"},
			})
		})

		user, err := client.VerifyToken(context.TODO(), "tok123")

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, "a", user.Username)
	})
}

func TestClient_ListLinks(t *testing.T) {
	t.Run("session invalidated", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		links, err := client.ListLinks(context.TODO(), "stale")

		assert.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrSessionInvalid)
		assert.Nil(t, links)
	})

	t.Run("success", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/links/", r.URL.Path)
			assert.Equal(t, "Token tok123", r.Header.Get("Authorization"))

			w.Write([]byte(`[
				{"id": 1, "original_url": "https://example.com", "short_code": "abc123", "short_url": "http://sh.rt/api/abc123", "clicks": 3},
				{"id": 2, "original_url": "https://example.org", "custom_alias": "org", "short_code": "org", "short_url": "http://sh.rt/api/org", "clicks": 0}
			]`))
		})

		links, err := client.ListLinks(context.TODO(), "tok123")

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, int64(1), links[0].ID)
		assert.Equal(t, "http://sh.rt/abc123", links[0].ShortURL)
		assert.Equal(t, "org", links[1].CustomAlias)
	})
}

func TestClient_CreateLink(t *testing.T) {
	t.Run("alias collision", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"custom_alias": ["already exists"]}`))
		})

		link, err := client.CreateLink(context.TODO(), "tok123", "https://example.com", "taken")

		assert.Error(t, err)
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "custom_alias", verr.Field)
		assert.Nil(t, link)
	})

	t.Run("malformed url", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"original_url": ["Enter a valid URL."]}`))
		})

		link, err := client.CreateLink(context.TODO(), "", "not a url", "")

		assert.Error(t, err)
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "original_url", verr.Field)
		assert.Nil(t, link)
	})

	t.Run("anonymous create omits auth header", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 9, "original_url": "https://example.com", "short_code": "abc123", "short_url": "http://sh.rt/api/abc123", "clicks": 0}`))
		})

		link, err := client.CreateLink(context.TODO(), "", "https://example.com", "")

		require.NoError(t, err)
		require.NotNil(t, link)
		assert.Equal(t, int64(9), link.ID)
	})

	t.Run("success", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Token tok123", r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://example.com", body["original_url"])
			assert.Equal(t, "", body["custom_alias"])

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 9, "original_url": "https://example.com", "short_code": "abc123", "short_url": "http://sh.rt/api/abc123", "clicks": 0}`))
		})

		link, err := client.CreateLink(context.TODO(), "tok123", "https://example.com", "")

		require.NoError(t, err)
		require.NotNil(t, link)
		assert.Equal(t, int64(9), link.ID)
		assert.Equal(t, "abc123", link.ShortCode)
		assert.Equal(t, "http://sh.rt/abc123", link.ShortURL)
		assert.Zero(t, link.Clicks)
	})
}

func TestClient_DeleteLink(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.DeleteLink(context.TODO(), "tok123", 42)

		assert.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrLinkNotFound)
	})

	t.Run("session invalidated", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		err := client.DeleteLink(context.TODO(), "stale", 42)

		assert.Error(t, err)
		assert.ErrorIs(t, err, entity.ErrSessionInvalid)
	})

	t.Run("success", func(t *testing.T) {
		client := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/api/links/42/", r.URL.Path)

			w.WriteHeader(http.StatusNoContent)
		})

		err := client.DeleteLink(context.TODO(), "tok123", 42)

		assert.NoError(t, err)
	})
}
