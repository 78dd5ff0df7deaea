package mockapi

import (
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler serves the fake tenant-server API over a Store.
type Handler struct {
	store *Store
}

// NewRouter wires the REST surface the enforcement CLI consumes.
func NewRouter(store *Store) http.Handler {
	h := &Handler{store: store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api/{version}", func(api chi.Router) {
		api.Post("/auth/signin", h.handleSignIn)
		api.Post("/auth/switchSite", h.handleSwitchSite)
		api.Post("/auth/signout", h.handleSignOut)
		api.Get("/sites", h.handleListSites)
		api.Get("/sites/{siteID}", h.handleGetSite)
		api.Put("/sites/{siteID}", h.handleUpdateSite)
		api.Get("/sites/{siteID}/groups", h.handleListGroups)
		api.Get("/sites/{siteID}/groups/{groupID}/users", h.handleListUsers)
	})

	return r
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Credentials == nil {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request", "request body carries no credentials element")
		return
	}

	token, st, err := h.store.SignIn(req.Credentials.Name, req.Credentials.Password, req.Credentials.Site.ContentURL)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	writeXML(w, http.StatusOK, tsResponse{
		Credentials: &credentialsXML{
			Token: token,
			Site:  siteXML{ID: st.ID, ContentURL: st.ContentURL},
		},
	})
}

func (h *Handler) handleSwitchSite(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Site == nil {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request", "request body carries no site element")
		return
	}

	token, st, err := h.store.SwitchSite(authToken(r), req.Site.ContentURL)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	writeXML(w, http.StatusOK, tsResponse{
		Credentials: &credentialsXML{
			Token: token,
			Site:  siteXML{ID: st.ID, ContentURL: st.ContentURL},
		},
	})
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SignOut(authToken(r)); err != nil {
		h.writeAuthError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListSites(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	sites := h.store.Sites()
	listed := make([]siteXML, 0, len(sites))
	for _, st := range sites {
		listed = append(listed, siteToXML(st))
	}
	writeXML(w, http.StatusOK, tsResponse{Sites: &sitesXML{Sites: listed}})
}

func (h *Handler) handleGetSite(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	st, ok := h.store.Site(chi.URLParam(r, "siteID"))
	if !ok {
		writeError(w, http.StatusNotFound, "404000", "Resource Not Found", "site could not be located")
		return
	}
	listed := siteToXML(st)
	writeXML(w, http.StatusOK, tsResponse{Site: &listed})
}

func (h *Handler) handleUpdateSite(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	if req.Site == nil || req.Site.EncryptionMode == "" {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request", "request body carries no extractEncryptionMode attribute")
		return
	}

	st, found := h.store.SetEncryptionMode(chi.URLParam(r, "siteID"), req.Site.EncryptionMode)
	if !found {
		writeError(w, http.StatusNotFound, "404000", "Resource Not Found", "site could not be located")
		return
	}
	listed := siteToXML(st)
	writeXML(w, http.StatusOK, tsResponse{Site: &listed})
}

func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	groups := h.store.Groups(chi.URLParam(r, "siteID"))
	listed := make([]groupXML, 0, len(groups))
	for _, g := range groups {
		listed = append(listed, groupXML{ID: g.ID, Name: g.Name})
	}
	writeXML(w, http.StatusOK, tsResponse{Groups: &groupsXML{Groups: listed}})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))

	users := h.store.Members(chi.URLParam(r, "groupID"), pageSize, pageNumber)
	listed := make([]userXML, 0, len(users))
	for _, u := range users {
		listed = append(listed, userXML{ID: u.ID, Name: u.Name, SiteRole: u.SiteRole})
	}
	writeXML(w, http.StatusOK, tsResponse{Users: &usersXML{Users: listed}})
}

// authorized rejects requests whose token is missing or revoked.
func (h *Handler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if !h.store.ValidToken(authToken(r)) {
		h.writeAuthError(w, ErrBadToken)
		return false
	}
	return true
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "401001", "Signin Error", "Error signing in to the server")
	case errors.Is(err, ErrBadToken):
		writeError(w, http.StatusUnauthorized, "401002", "Unauthorized Access", "Invalid authentication credentials were provided")
	case errors.Is(err, ErrUnknownSite):
		writeError(w, http.StatusNotFound, "404000", "Resource Not Found", "site could not be located")
	default:
		writeError(w, http.StatusInternalServerError, "500000", "Internal Server Error", err.Error())
	}
}

func authToken(r *http.Request) string {
	return r.Header.Get("X-Tableau-Auth")
}

func decodeRequest(w http.ResponseWriter, r *http.Request) (tsRequest, bool) {
	var req tsRequest
	if err := xml.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "400000", "Bad Request", "request body is not a valid tsRequest document")
		return tsRequest{}, false
	}
	return req, true
}
