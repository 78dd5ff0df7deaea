// Package mockapi is an in-memory stand-in for the tenant server's REST
// API. It serves the same endpoints, XML bodies and status codes the real
// server does, for local end-to-end runs and integration tests.
package mockapi

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/JakobMund/ear-server-tools/internal/model/site"
)

// Errors the store reports; handlers translate them to API error bodies.
var (
	ErrBadCredentials = errors.New("bad credentials")
	ErrUnknownSite    = errors.New("unknown site")
	ErrBadToken       = errors.New("invalid auth token")
)

// Store holds the fake server state. Unlike the CLI, the server side is
// concurrent, so every accessor takes the lock.
type Store struct {
	mu       sync.Mutex
	username string
	password string
	sites    []site.Site
	groups   map[string][]site.Group // site id -> groups
	members  map[string][]site.User  // group id -> members
	tokens   map[string]string       // live token -> active site id
}

// NewStore seeds a store accepting the given admin credentials. The first
// site in the slice doubles as the server's default site.
func NewStore(username, password string, sites []site.Site) *Store {
	return &Store{
		username: username,
		password: password,
		sites:    append([]site.Site(nil), sites...),
		groups:   make(map[string][]site.Group),
		members:  make(map[string][]site.User),
		tokens:   make(map[string]string),
	}
}

// AddGroup attaches a group and its members to a site.
func (s *Store) AddGroup(siteID string, group site.Group, members []site.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[siteID] = append(s.groups[siteID], group)
	s.members[group.ID] = append([]site.User(nil), members...)
}

// SignIn validates credentials, resolves the requested site (empty content
// URL means the default site) and issues a fresh token scoped to it.
func (s *Store) SignIn(username, password, contentURL string) (string, site.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if username != s.username || password != s.password {
		return "", site.Site{}, ErrBadCredentials
	}
	target, err := s.findSite(contentURL)
	if err != nil {
		return "", site.Site{}, err
	}

	token := uuid.NewString()
	s.tokens[token] = target.ID
	return token, target, nil
}

// SwitchSite revokes the presented token and issues a new one scoped to the
// named site, keeping the signed-in identity.
func (s *Store) SwitchSite(token, contentURL string) (string, site.Site, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token]; !ok {
		return "", site.Site{}, ErrBadToken
	}
	target, err := s.findSite(contentURL)
	if err != nil {
		return "", site.Site{}, err
	}

	delete(s.tokens, token)
	next := uuid.NewString()
	s.tokens[next] = target.ID
	return next, target, nil
}

// SignOut invalidates a token. Revoking an unknown token is an error, which
// is how the real server behaves when a token is already invalid.
func (s *Store) SignOut(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[token]; !ok {
		return ErrBadToken
	}
	delete(s.tokens, token)
	return nil
}

// ValidToken reports whether the token belongs to a live session.
func (s *Store) ValidToken(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[token]
	return ok
}

// Sites returns a snapshot of every site.
func (s *Store) Sites() []site.Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]site.Site(nil), s.sites...)
}

// Site looks up one site by id.
func (s *Store) Site(id string) (site.Site, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.sites {
		if st.ID == id {
			return st, true
		}
	}
	return site.Site{}, false
}

// SetEncryptionMode updates one site's mode and returns the stored record.
func (s *Store) SetEncryptionMode(id, mode string) (site.Site, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sites {
		if s.sites[i].ID == id {
			s.sites[i].EncryptionMode = mode
			return s.sites[i], true
		}
	}
	return site.Site{}, false
}

// Groups lists the groups of a site.
func (s *Store) Groups(siteID string) []site.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]site.Group(nil), s.groups[siteID]...)
}

// Members lists the users of a group, optionally paged.
func (s *Store) Members(groupID string, pageSize, pageNumber int) []site.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := s.members[groupID]
	if pageSize <= 0 {
		return append([]site.User(nil), members...)
	}
	if pageNumber < 1 {
		pageNumber = 1
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(members) {
		return nil
	}
	end := start + pageSize
	if end > len(members) {
		end = len(members)
	}
	return append([]site.User(nil), members[start:end]...)
}

// findSite resolves a content URL to a site; callers hold the lock.
func (s *Store) findSite(contentURL string) (site.Site, error) {
	if contentURL == "" {
		if len(s.sites) == 0 {
			return site.Site{}, ErrUnknownSite
		}
		return s.sites[0], nil
	}
	for _, st := range s.sites {
		if st.ContentURL == contentURL {
			return st, nil
		}
	}
	return site.Site{}, ErrUnknownSite
}
