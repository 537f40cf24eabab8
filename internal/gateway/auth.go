package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"studyhub-client/internal/domain"
	transport "studyhub-client/internal/transport/http"
)

// AuthGateway covers login, register and logout. None of these calls may
// trigger a session renewal: a 401 from login means bad credentials.
type AuthGateway struct {
	sender Sender
}

func NewAuthGateway(sender Sender) *AuthGateway {
	return &AuthGateway{sender: sender}
}

// Login posts the credentials form-encoded and returns the issued token.
func (g *AuthGateway) Login(ctx context.Context, creds domain.Credentials) (domain.TokenGrant, error) {
	if err := Validate(creds); err != nil {
		return domain.TokenGrant{}, err
	}
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	req := transport.Request{
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Body:    []byte(form.Encode()),
		Header:  http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}},
		NoRenew: true,
	}
	var grant domain.TokenGrant
	if err := do(ctx, g.sender, req, &grant); err != nil {
		return domain.TokenGrant{}, err
	}
	if strings.TrimSpace(grant.AccessToken) == "" {
		return domain.TokenGrant{}, &domain.RemoteError{Status: http.StatusOK, Message: "login response carried no access token"}
	}
	return grant, nil
}

// Register creates an account; it does not sign the user in.
func (g *AuthGateway) Register(ctx context.Context, reg domain.Registration) error {
	if err := Validate(reg); err != nil {
		return err
	}
	req, err := jsonRequest(http.MethodPost, "/auth/register", registerRequest{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
	})
	if err != nil {
		return err
	}
	req.NoRenew = true
	return do(ctx, g.sender, req, nil)
}

// Logout asks the server to drop the refresh cookie.
func (g *AuthGateway) Logout(ctx context.Context) error {
	req, err := jsonRequest(http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	req.NoRenew = true
	return do(ctx, g.sender, req, nil)
}
