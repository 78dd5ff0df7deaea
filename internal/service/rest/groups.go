package rest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/JakobMund/ear-server-tools/internal/model/site"
)

// GroupID resolves a group name to its id within a site.
func (c *Client) GroupID(ctx context.Context, s Session, siteID, groupName string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.endpoint("sites", siteID, "groups"), s.Token, nil)
	if err != nil {
		return "", fmt.Errorf("list groups: %w", err)
	}
	if err := c.checkStatus(status, body, http.StatusOK, true); err != nil {
		return "", fmt.Errorf("list groups: %w", err)
	}

	var parsed groupsResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("list groups: decode response: %w", err)
	}
	for _, g := range parsed.Groups {
		if g.Name == groupName {
			return g.ID, nil
		}
	}
	return "", fmt.Errorf("group named %q: %w", groupName, ErrGroupNotFound)
}

// UsersInGroup lists the members of a group. A pageSize of zero requests
// the whole list in one call; otherwise pageSize and pageNumber are passed
// through as server-side paging parameters.
func (c *Client) UsersInGroup(ctx context.Context, s Session, siteID, groupID string, pageSize, pageNumber int) ([]site.User, error) {
	endpoint := c.endpoint("sites", siteID, "groups", groupID, "users")
	if pageSize > 0 {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(pageSize))
		query.Set("pageNumber", strconv.Itoa(pageNumber))
		endpoint += "?" + query.Encode()
	}

	status, body, err := c.do(ctx, http.MethodGet, endpoint, s.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("list group users: %w", err)
	}
	if err := c.checkStatus(status, body, http.StatusOK, true); err != nil {
		return nil, fmt.Errorf("list group users: %w", err)
	}

	var parsed usersResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("list group users: decode response: %w", err)
	}

	users := make([]site.User, 0, len(parsed.Users))
	for _, u := range parsed.Users {
		users = append(users, site.User{ID: u.ID, Name: u.Name, SiteRole: u.SiteRole})
	}
	return users, nil
}
