package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func TestDecodeListShapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  []string
		total int
		pages int
	}{
		{"bare array", `[{"id":"a"},{"id":"b"}]`, []string{"a", "b"}, 2, 1},
		{"envelope", `{"items":[{"id":"a"}],"total":41,"pages":3}`, []string{"a"}, 41, 3},
		{"envelope with null items", `{"items":null,"total":0}`, []string{}, 0, 1},
		{"null body", `null`, []string{}, 0, 1},
		{"junk", `"surprise"`, []string{}, 0, 1},
		{"not json", `<html>`, []string{}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeList[item]([]byte(tt.raw))
			require.NotNil(t, got.Items, "Items must never be nil")
			ids := make([]string, len(got.Items))
			for i, it := range got.Items {
				ids[i] = it.ID
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, tt.total, got.Total)
			assert.Equal(t, tt.pages, got.Pages)
		})
	}
}

func TestDecodeObjectJunkIsZeroValue(t *testing.T) {
	assert.Equal(t, SitemapResult{}, DecodeObject[SitemapResult]([]byte(`[1,2]`)))
	assert.Equal(t, 7, DecodeObject[SitemapResult]([]byte(`{"generated":7}`)).Generated)
}

func TestAuthStatusMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/401":
			w.WriteHeader(http.StatusUnauthorized)
		case "/403":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.Error(w, "bad input", http.StatusUnprocessableEntity)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second, nil)

	_, err := c.Get(context.Background(), "/401")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Get(context.Background(), "/403")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = c.Get(context.Background(), "/422")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.Code)
	assert.Equal(t, "bad input", se.Body)
}

func TestRequestHeaders(t *testing.T) {
	type seen struct {
		auth, reqID, contentType string
	}
	var got seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = seen{
			auth:        r.Header.Get("Authorization"),
			reqID:       r.Header.Get("X-Request-ID"),
			contentType: r.Header.Get("Content-Type"),
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, func() string { return "tok123" })

	_, err := c.Get(context.Background(), "/api/admin/stats")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", got.auth)
	assert.Empty(t, got.reqID, "reads carry no request id")

	_, err = c.Do(context.Background(), "POST", "/api/moderation/x/approve", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, got.reqID, "mutations carry a request id for the audit log")
	assert.Equal(t, "application/json", got.contentType, "a nil body still posts JSON")
}

func TestMeAndLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathMe:
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"id":"u1","username":"mod","role":"moderator"}`))
		case PathLogin:
			w.Write([]byte(`{"token":"fresh"}`))
		}
	}))
	defer srv.Close()

	anon := New(srv.URL, time.Second, nil)
	_, err := anon.Me(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	tok, err := anon.Login(context.Background(), "mod", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok)

	authed := New(srv.URL, time.Second, func() string { return tok })
	p, err := authed.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "moderator", p.Role)
	assert.True(t, p.CanAccessConsole())
}

func TestPrincipalRoleGate(t *testing.T) {
	for role, ok := range map[string]bool{
		"admin": true, "moderator": true, "superadmin": true,
		"user": false, "vendor": false, "": false,
	} {
		assert.Equal(t, ok, Principal{Role: role}.CanAccessConsole(), "role %q", role)
	}
}
