package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginReturnsTokensAndUser(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_, _ = fmt.Fprint(w, `{
			"accessToken": "A1",
			"refreshToken": "R1",
			"user": {"id":"u1","email":"t@ajudae.dev","name":"Ana","role":"professor"}
		}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})

	resp, err := c.Login(context.Background(), "t@ajudae.dev", "pw")
	require.NoError(t, err)
	require.Equal(t, "A1", resp.AccessToken)
	require.Equal(t, "R1", resp.RefreshToken)
	require.Equal(t, "u1", resp.User.ID)
	require.Equal(t, map[string]string{"email": "t@ajudae.dev", "password": "pw"}, gotBody)
}

func TestLoginRejectsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"accessToken":"A1"}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})
	_, err := c.Login(context.Background(), "e", "p")
	require.Error(t, err)
}

func TestLoginSurfacesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})
	_, err := c.Login(context.Background(), "e", "bad")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "invalid credentials", apiErr.Message)
}

func TestDoDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `[{"id":"p1","title":"hello"}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})

	var out []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/posts", nil, nil, &out))
	require.Len(t, out, 1)
	require.Equal(t, "p1", out[0].ID)
}

func TestDoIgnoresBodyOnNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, &fakeCreds{})
	var out map[string]any
	require.NoError(t, c.Do(context.Background(), http.MethodDelete, "/posts/p1", nil, nil, &out))
	require.Nil(t, out)
}

func TestDoMapsConnectionFailureToUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := newTestClient(t, srv, &fakeCreds{})
	err := c.Do(context.Background(), http.MethodGet, "/posts", nil, nil, nil)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestDoKeepsContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer func() { close(block); srv.Close() }()

	c := newTestClient(t, srv, &fakeCreds{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Do(ctx, http.MethodGet, "/posts", nil, nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestErrorStringForms(t *testing.T) {
	require.Equal(t, "server returned 404: gone", (&Error{Status: 404, Message: "gone"}).Error())
	require.Equal(t, "server returned 500", (&Error{Status: 500}).Error())
}
