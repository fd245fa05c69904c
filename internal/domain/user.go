package domain

import "time"

// Credentials carries a single login attempt. It is built per call and
// never persisted as a whole.
type Credentials struct {
	Username    string
	Password    string
	DeviceToken string
}

// UserIdentity is the lightweight session user derived from a login
// response, with tokens already stripped.
type UserIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
}

// AuthSession bundles the tokens and user summary returned by a
// successful login. The session object is transient; after the tokens
// are handed to the secure store only the UserIdentity survives.
type AuthSession struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	User         UserIdentity
}

// UserProfile is the full profile for the authenticated user.
// JoinDate is nil when the server omits it. Points is never negative.
type UserProfile struct {
	ID        string     `json:"id"`
	Fullname  string     `json:"fullname"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	JoinDate  *time.Time `json:"join_date,omitempty"`
	Points    int        `json:"points"`
}
