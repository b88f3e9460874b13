package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

// VerifiedMessage is the exact text the backend returns when verification succeeds.
const VerifiedMessage = "Email verified successfully and user created"

var tokenPattern = regexp.MustCompile(`Token: (.*)`)

type Registration struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Verification struct {
	Token string `json:"token"`
	Code  string `json:"code"`
	Registration
}

// Login returns the token the backend issues for the credentials.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	res := c.Request(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err := res.Error(); err != nil {
		return "", err
	}
	return strings.TrimSpace(res.String()), nil
}

// Register starts sign-up and returns the verification token embedded in the
// backend's text message.
func (c *Client) Register(ctx context.Context, r Registration) (string, error) {
	res := c.Request(ctx, http.MethodPost, "/api/users/register", r)
	if err := res.Error(); err != nil {
		return "", err
	}

	m := tokenPattern.FindStringSubmatch(res.String())
	if m == nil {
		return "", &Error{Message: "register response did not include a token"}
	}
	return strings.TrimSpace(m[1]), nil
}

// VerifyEmail completes sign-up. Anything other than VerifiedMessage is a
// rejection and its text is returned as the error.
func (c *Client) VerifyEmail(ctx context.Context, v Verification) error {
	res := c.Request(ctx, http.MethodPost, "/api/users/verify-email", v)
	if err := res.Error(); err != nil {
		return err
	}

	msg := res.String()
	if msg == VerifiedMessage {
		return nil
	}
	if msg == "" {
		msg = "email verification failed"
	}
	return &Error{Message: msg}
}
