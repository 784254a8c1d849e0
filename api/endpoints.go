package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Read endpoints. List endpoints accept pagination and filter parameters as
// query strings; the query cache builds those (see internal/query).
const (
	PathMe              = "/api/me"
	PathLogin           = "/api/auth/login"
	PathStats           = "/api/admin/stats"
	PathModerationQueue = "/api/moderation/queue"
	PathQueueCounts     = "/api/moderation/counts"
	PathUsers           = "/api/admin/users"
	PathAnalytics       = "/api/admin/analytics"
	PathTransactions    = "/api/admin/finance/transactions"
	PathLogs            = "/api/admin/logs"
	PathGamification    = "/api/admin/gamification/rules"
	PathIntegrations    = "/api/admin/integrations"
	PathABTests         = "/api/admin/abtests"
	PathSitemap         = "/api/admin/seo/sitemap"
)

func ApprovePath(id string) string  { return "/api/moderation/" + id + "/approve" }
func RejectPath(id string) string   { return "/api/moderation/" + id + "/reject" }
func BulkPath(action string) string { return "/api/moderation/bulk/" + action }

func SuspendUserPath(id string) string { return "/api/admin/users/" + id + "/suspend" }
func BanUserPath(id string) string     { return "/api/admin/users/" + id + "/ban" }

// Me resolves the current principal. A 401 surfaces as ErrUnauthorized so
// the shell can show the login screen instead of admin content.
func (c *Client) Me(ctx context.Context) (Principal, error) {
	raw, err := c.Get(ctx, PathMe)
	if err != nil {
		return Principal{}, err
	}
	var p Principal
	if err := json.Unmarshal(raw, &p); err != nil {
		return Principal{}, fmt.Errorf("decode principal: %w", err)
	}
	return p, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	raw, err := c.Do(ctx, "POST", PathLogin, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	var tr TokenResponse
	if err := json.Unmarshal(raw, &tr); err != nil || tr.Token == "" {
		return "", errors.New("invalid login response")
	}
	return tr.Token, nil
}
