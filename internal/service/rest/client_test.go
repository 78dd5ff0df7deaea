package rest

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testVersion = "3.9"

func newTestClient(srvURL string) *Client {
	return NewClient(srvURL, testVersion, 0)
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/api/3.9/auth/signin" {
			t.Errorf("path = %s, want /api/3.9/auth/signin", r.URL.Path)
		}
		if r.Header.Get("X-Tableau-Auth") != "" {
			t.Error("sign in must not carry an auth token")
		}

		body, _ := io.ReadAll(r.Body)
		var req struct {
			XMLName     xml.Name `xml:"tsRequest"`
			Credentials struct {
				Name     string `xml:"name,attr"`
				Password string `xml:"password,attr"`
				Site     struct {
					ContentURL string `xml:"contentUrl,attr"`
				} `xml:"site"`
			} `xml:"credentials"`
		}
		if err := xml.Unmarshal(body, &req); err != nil {
			t.Errorf("request body did not parse: %v", err)
		}
		if req.Credentials.Name != "admin" || req.Credentials.Password != "secret" {
			t.Errorf("credentials = %s/%s", req.Credentials.Name, req.Credentials.Password)
		}
		if req.Credentials.Site.ContentURL != "" {
			t.Errorf("contentUrl = %q, want empty for the default site", req.Credentials.Site.ContentURL)
		}

		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><credentials token="tok-1"><site id="site-1" contentUrl=""/></credentials></tsResponse>`)
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).SignIn(context.Background(), "admin", "secret", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if session.Token != "tok-1" {
		t.Errorf("Token = %q, want tok-1", session.Token)
	}
	if session.SiteID != "site-1" {
		t.Errorf("SiteID = %q, want site-1", session.SiteID)
	}
}

func TestSignInRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><error code="401001"><summary>Signin Error</summary><detail>Error signing in to the server</detail></error></tsResponse>`)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).SignIn(context.Background(), "admin", "wrong", "")
	if err == nil {
		t.Fatal("expected an error for a rejected sign in")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Code != "401001" {
		t.Errorf("Code = %q, want 401001", apiErr.Code)
	}
	if apiErr.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("HTTPStatus = %d, want 401", apiErr.HTTPStatus)
	}
}

func TestSwitchSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3.9/auth/switchSite" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Tableau-Auth"); got != "tok-old" {
			t.Errorf("auth header = %q, want tok-old", got)
		}
		io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><credentials token="tok-new"><site id="site-2" contentUrl="finance"/></credentials></tsResponse>`)
	}))
	defer srv.Close()

	session, err := newTestClient(srv.URL).SwitchSite(context.Background(), Session{Token: "tok-old", SiteID: "site-1"}, "finance")
	if err != nil {
		t.Fatalf("SwitchSite: %v", err)
	}
	if session.Token != "tok-new" || session.SiteID != "site-2" {
		t.Errorf("session = %+v, want token tok-new scoped to site-2", session)
	}
}

func TestSignOut(t *testing.T) {
	t.Run("success is 204", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/3.9/auth/signout" {
				t.Errorf("path = %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		if err := newTestClient(srv.URL).SignOut(context.Background(), Session{Token: "tok-1"}); err != nil {
			t.Fatalf("SignOut: %v", err)
		}
	})

	t.Run("stale token is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `<tsResponse><error code="401002"><summary>Unauthorized Access</summary><detail>stale token</detail></error></tsResponse>`)
		}))
		defer srv.Close()

		err := newTestClient(srv.URL).SignOut(context.Background(), Session{Token: "tok-stale"})
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Code != "401002" {
			t.Fatalf("err = %v, want APIError 401002", err)
		}
	})
}

func TestQuerySites(t *testing.T) {
	const listing = `<tsResponse xmlns="http://tableau.com/api"><sites>` +
		`<site id="a" contentUrl="" name="Default" extractEncryptionMode="disabled"/>` +
		`<site id="b" contentUrl="finance" name="Finance" extractEncryptionMode="enforced"/>` +
		`</sites></tsResponse>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3.9/sites" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, listing)
	}))
	defer srv.Close()

	sites, err := newTestClient(srv.URL).QuerySites(context.Background(), Session{Token: "tok-1"})
	if err != nil {
		t.Fatalf("QuerySites: %v", err)
	}
	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	if sites[0].ID != "a" || sites[0].Name != "Default" || sites[0].EncryptionMode != "disabled" {
		t.Errorf("sites[0] = %+v", sites[0])
	}
	if sites[1].ContentURL != "finance" || sites[1].EncryptionMode != "enforced" {
		t.Errorf("sites[1] = %+v", sites[1])
	}
}

func TestQuerySitesLenientStatus(t *testing.T) {
	// The site listing historically ignores the status code; a parseable
	// body on a non-200 still yields results unless strict mode is on.
	const listing = `<tsResponse><sites><site id="a" contentUrl="" name="Default"/></sites></tsResponse>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, listing)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	sites, err := c.QuerySites(context.Background(), Session{Token: "tok-1"})
	if err != nil {
		t.Fatalf("lenient QuerySites: %v", err)
	}
	if len(sites) != 1 {
		t.Fatalf("got %d sites, want 1", len(sites))
	}

	c.SetStrict(true)
	if _, err := c.QuerySites(context.Background(), Session{Token: "tok-1"}); err == nil {
		t.Fatal("strict QuerySites should surface the status mismatch")
	}
}

func TestEncryptionModeReadAndWrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3.9/sites/site-1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><site id="site-1" extractEncryptionMode="enabled"/></tsResponse>`)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			var req struct {
				XMLName xml.Name `xml:"tsRequest"`
				Site    struct {
					EncryptionMode string `xml:"extractEncryptionMode,attr"`
				} `xml:"site"`
			}
			if err := xml.Unmarshal(body, &req); err != nil {
				t.Errorf("update body did not parse: %v", err)
			}
			if req.Site.EncryptionMode != "enforced" {
				t.Errorf("requested mode = %q, want enforced", req.Site.EncryptionMode)
			}
			io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><site id="site-1" extractEncryptionMode="enforced"/></tsResponse>`)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	session := Session{Token: "tok-1", SiteID: "site-1"}

	mode, err := c.EncryptionMode(context.Background(), session, "site-1")
	if err != nil {
		t.Fatalf("EncryptionMode: %v", err)
	}
	if mode != "enabled" {
		t.Errorf("mode = %q, want enabled", mode)
	}

	confirmed, err := c.SetEncryptionMode(context.Background(), session, "site-1", "enforced")
	if err != nil {
		t.Fatalf("SetEncryptionMode: %v", err)
	}
	if confirmed != "enforced" {
		t.Errorf("confirmed mode = %q, want enforced", confirmed)
	}
}

func TestGroupID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3.9/sites/site-1/groups" {
			t.Errorf("path = %s", r.URL.Path)
		}
		io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><groups>`+
			`<group id="g1" name="All Users"/><group id="g2" name="Admins"/>`+
			`</groups></tsResponse>`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	session := Session{Token: "tok-1"}

	id, err := c.GroupID(context.Background(), session, "site-1", "Admins")
	if err != nil {
		t.Fatalf("GroupID: %v", err)
	}
	if id != "g2" {
		t.Errorf("id = %q, want g2", id)
	}

	_, err = c.GroupID(context.Background(), session, "site-1", "Nobody")
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("err = %v, want ErrGroupNotFound", err)
	}
}

func TestUsersInGroupPaging(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		io.WriteString(w, `<tsResponse xmlns="http://tableau.com/api"><users>`+
			`<user id="u1" name="admin" siteRole="ServerAdministrator"/>`+
			`</users></tsResponse>`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	session := Session{Token: "tok-1"}

	users, err := c.UsersInGroup(context.Background(), session, "site-1", "g1", 0, 0)
	if err != nil {
		t.Fatalf("UsersInGroup: %v", err)
	}
	if gotQuery != "" {
		t.Errorf("pageSize 0 must not send paging params, got %q", gotQuery)
	}
	if len(users) != 1 || users[0].SiteRole != "ServerAdministrator" {
		t.Errorf("users = %+v", users)
	}

	if _, err := c.UsersInGroup(context.Background(), session, "site-1", "g1", 50, 2); err != nil {
		t.Fatalf("paged UsersInGroup: %v", err)
	}
	if gotQuery != "pageNumber=2&pageSize=50" {
		t.Errorf("query = %q, want pageNumber=2&pageSize=50", gotQuery)
	}
}
