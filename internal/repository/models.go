package repository

import (
	"fmt"
	"strconv"
	"time"

	"github.com/smallbiznis/valora-session/internal/domain"
)

const joinDateLayout = "2006-01-02"

type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DeviceToken string `json:"fcm_token"`
}

// authPayload is the login response data block. The nested "data"
// object is the user summary.
type authPayload struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	User         userPayload `json:"data"`
}

type userPayload struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// Validate rejects structurally decodable payloads that are missing
// required fields.
func (p authPayload) Validate() error {
	if p.AccessToken == "" {
		return fmt.Errorf("auth payload missing access_token")
	}
	if p.User.ID == 0 {
		return fmt.Errorf("auth payload missing user id")
	}
	if p.User.Username == "" || p.User.Email == "" {
		return fmt.Errorf("auth payload missing user fields")
	}
	return nil
}

func (p authPayload) session() domain.AuthSession {
	return domain.AuthSession{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		User:         p.identity(),
	}
}

// identity strips the tokens and keeps only the session user.
func (p authPayload) identity() domain.UserIdentity {
	return domain.UserIdentity{
		ID:       strconv.Itoa(p.User.ID),
		Username: p.User.Username,
		Email:    p.User.Email,
		Fullname: p.User.Fullname,
	}
}

// profilePayload is the profile response data block as sent on the
// wire, snake_case fields included.
type profilePayload struct {
	ID        int     `json:"id"`
	Fullname  string  `json:"fullname"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Phone     string  `json:"no_telp"`
	AvatarURL *string `json:"photo_profile_url"`
	JoinDate  *string `json:"join_date"`
	Points    *int    `json:"kmpoin"`
}

// Validate rejects profile payloads that are missing required fields.
func (p profilePayload) Validate() error {
	if p.ID == 0 {
		return fmt.Errorf("profile payload missing id")
	}
	if p.Username == "" || p.Fullname == "" || p.Email == "" {
		return fmt.Errorf("profile payload missing user fields")
	}
	return nil
}

// toDomain maps the wire payload onto the domain profile. An absent or
// unparseable join_date stays nil; absent or negative points become 0.
func (p profilePayload) toDomain() domain.UserProfile {
	profile := domain.UserProfile{
		ID:       strconv.Itoa(p.ID),
		Fullname: p.Fullname,
		Username: p.Username,
		Email:    p.Email,
		Phone:    p.Phone,
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	if p.JoinDate != nil {
		if joined, err := time.Parse(joinDateLayout, *p.JoinDate); err == nil {
			profile.JoinDate = &joined
		}
	}
	if p.Points != nil && *p.Points > 0 {
		profile.Points = *p.Points
	}
	return profile
}
