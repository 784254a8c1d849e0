package api

import "time"

// Principal is the session identity returned by GET /api/me.
type Principal struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Admin console roles. Anything else gets the access-denied screen.
const (
	RoleAdmin      = "admin"
	RoleModerator  = "moderator"
	RoleSuperadmin = "superadmin"
)

func (p Principal) CanAccessConsole() bool {
	switch p.Role {
	case RoleAdmin, RoleModerator, RoleSuperadmin:
		return true
	}
	return false
}

type TokenResponse struct {
	Token string `json:"token"`
}

// PendingContent is one item in the moderation queue.
type PendingContent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // thread, post, review, ad
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Author    string    `json:"author"`
	AuthorID  string    `json:"authorId"`
	SpamScore float64   `json:"spamScore"`
	Reports   int       `json:"reports"`
	CreatedAt time.Time `json:"createdAt"`
}

type QueueCounts struct {
	Pending int `json:"pending"`
	Flagged int `json:"flagged"`
	Reports int `json:"reports"`
}

// PlatformStats backs the overview cards.
type PlatformStats struct {
	TotalUsers        int     `json:"totalUsers"`
	ActiveToday       int     `json:"activeToday"`
	NewThreads        int     `json:"newThreads"`
	PendingModeration int     `json:"pendingModeration"`
	Revenue           float64 `json:"revenue"`
	CoinsInFlight     int64   `json:"coinsInFlight"`
}

type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Status   string    `json:"status"` // active, suspended, banned
	Coins    int64     `json:"coins"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Transaction struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Kind      string    `json:"kind"` // deposit, withdrawal, coin_purchase, payout
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type AnalyticsPoint struct {
	Date    string `json:"date"`
	Visits  int    `json:"visits"`
	Signups int    `json:"signups"`
	Posts   int    `json:"posts"`
}

type LogEntry struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// SitemapResult is one of the few mutation responses read directly: the
// generated-URL count goes into the success toast.
type SitemapResult struct {
	Generated int `json:"generated"`
}
