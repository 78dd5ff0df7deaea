package rest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
)

// SignIn authenticates the given credentials and returns a session scoped to
// the named site; an empty siteContentURL selects the server's default site.
// The principal needs server-administrator rights for the per-site update
// calls, but that is enforced server-side, not here.
func (c *Client) SignIn(ctx context.Context, username, password, siteContentURL string) (Session, error) {
	reqBody := signInRequest{}
	reqBody.Credentials.Name = username
	reqBody.Credentials.Password = password
	reqBody.Credentials.Site.ContentURL = siteContentURL

	session, err := c.authCall(ctx, c.endpoint("auth", "signin"), "", reqBody)
	if err != nil {
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	return session, nil
}

// SwitchSite re-points the session at another site without re-submitting
// credentials. The returned session supersedes the old one; the server
// invalidates the previous token.
func (c *Client) SwitchSite(ctx context.Context, s Session, siteContentURL string) (Session, error) {
	reqBody := switchSiteRequest{}
	reqBody.Site.ContentURL = siteContentURL

	session, err := c.authCall(ctx, c.endpoint("auth", "switchSite"), s.Token, reqBody)
	if err != nil {
		return Session{}, fmt.Errorf("switch site %q: %w", siteContentURL, err)
	}
	return session, nil
}

// SignOut invalidates the session's token.
func (c *Client) SignOut(ctx context.Context, s Session) error {
	status, body, err := c.do(ctx, http.MethodPost, c.endpoint("auth", "signout"), s.Token, nil)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if err := c.checkStatus(status, body, http.StatusNoContent, false); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// authCall posts a tsRequest to an auth endpoint and decodes the returned
// credentials into a Session. Sign-in and switch-site share this shape.
func (c *Client) authCall(ctx context.Context, url, token string, reqBody any) (Session, error) {
	payload, err := xml.Marshal(reqBody)
	if err != nil {
		return Session{}, fmt.Errorf("encode request: %w", err)
	}

	status, body, err := c.do(ctx, http.MethodPost, url, token, payload)
	if err != nil {
		return Session{}, err
	}
	if err := c.checkStatus(status, body, http.StatusOK, false); err != nil {
		return Session{}, err
	}

	var parsed authResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return Session{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Credentials == nil || parsed.Credentials.Token == "" {
		return Session{}, fmt.Errorf("response carries no credentials")
	}
	return Session{
		Token:  parsed.Credentials.Token,
		SiteID: parsed.Credentials.Site.ID,
	}, nil
}
