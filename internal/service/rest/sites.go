package rest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/JakobMund/ear-server-tools/internal/model/site"
)

// QuerySites returns every site visible to the signed-in principal, in
// whatever order the server chose. No paging is applied, so a server that
// truncates large result sets truncates this list too.
func (c *Client) QuerySites(ctx context.Context, s Session) ([]site.Site, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.endpoint("sites"), s.Token, nil)
	if err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}
	if err := c.checkStatus(status, body, http.StatusOK, true); err != nil {
		return nil, fmt.Errorf("query sites: %w", err)
	}

	var parsed sitesResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("query sites: decode response: %w", err)
	}

	sites := make([]site.Site, 0, len(parsed.Sites))
	for _, listed := range parsed.Sites {
		sites = append(sites, site.Site{
			ID:             listed.ID,
			ContentURL:     listed.ContentURL,
			Name:           listed.Name,
			EncryptionMode: listed.EncryptionMode,
		})
	}
	return sites, nil
}

// EncryptionMode reads the current encryption mode of one site.
func (c *Client) EncryptionMode(ctx context.Context, s Session, siteID string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.endpoint("sites", siteID), s.Token, nil)
	if err != nil {
		return "", fmt.Errorf("get site %s: %w", siteID, err)
	}
	if err := c.checkStatus(status, body, http.StatusOK, false); err != nil {
		return "", fmt.Errorf("get site %s: %w", siteID, err)
	}
	return decodeSiteMode(body)
}

// SetEncryptionMode writes the requested mode and returns the mode the
// server confirms, which equals the request on success.
func (c *Client) SetEncryptionMode(ctx context.Context, s Session, siteID, mode string) (string, error) {
	reqBody := updateSiteRequest{}
	reqBody.Site.EncryptionMode = mode

	payload, err := xml.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("update site %s: encode request: %w", siteID, err)
	}

	status, body, err := c.do(ctx, http.MethodPut, c.endpoint("sites", siteID), s.Token, payload)
	if err != nil {
		return "", fmt.Errorf("update site %s: %w", siteID, err)
	}
	if err := c.checkStatus(status, body, http.StatusOK, false); err != nil {
		return "", fmt.Errorf("update site %s: %w", siteID, err)
	}
	return decodeSiteMode(body)
}

func decodeSiteMode(body []byte) (string, error) {
	var parsed siteResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode site response: %w", err)
	}
	if parsed.Site == nil {
		return "", fmt.Errorf("site response carries no site element")
	}
	return parsed.Site.EncryptionMode, nil
}
