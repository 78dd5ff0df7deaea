package mockapi

import (
	"encoding/xml"
	"log"
	"net/http"

	"github.com/JakobMund/ear-server-tools/internal/model/site"
)

// Namespace the real server stamps on every response document.
const apiNamespace = "http://tableau.com/api"

// tsResponse is the response envelope. Nil sections are omitted from the
// marshalled document.
type tsResponse struct {
	XMLName     xml.Name        `xml:"tsResponse"`
	XMLNS       string          `xml:"xmlns,attr"`
	Credentials *credentialsXML `xml:"credentials"`
	Site        *siteXML        `xml:"site"`
	Sites       *sitesXML       `xml:"sites"`
	Groups      *groupsXML      `xml:"groups"`
	Users       *usersXML       `xml:"users"`
	Error       *errorXML       `xml:"error"`
}

type credentialsXML struct {
	Token string  `xml:"token,attr"`
	Site  siteXML `xml:"site"`
}

type sitesXML struct {
	Sites []siteXML `xml:"site"`
}

type siteXML struct {
	ID             string `xml:"id,attr"`
	ContentURL     string `xml:"contentUrl,attr"`
	Name           string `xml:"name,attr,omitempty"`
	EncryptionMode string `xml:"extractEncryptionMode,attr,omitempty"`
}

type groupsXML struct {
	Groups []groupXML `xml:"group"`
}

type groupXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type usersXML struct {
	Users []userXML `xml:"user"`
}

type userXML struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	SiteRole string `xml:"siteRole,attr,omitempty"`
}

type errorXML struct {
	Code    string `xml:"code,attr"`
	Summary string `xml:"summary"`
	Detail  string `xml:"detail"`
}

// tsRequest covers every request body the server accepts.
type tsRequest struct {
	XMLName     xml.Name        `xml:"tsRequest"`
	Credentials *credentialsReq `xml:"credentials"`
	Site        *siteReq        `xml:"site"`
}

type credentialsReq struct {
	Name     string  `xml:"name,attr"`
	Password string  `xml:"password,attr"`
	Site     siteReq `xml:"site"`
}

type siteReq struct {
	ContentURL     string `xml:"contentUrl,attr"`
	EncryptionMode string `xml:"extractEncryptionMode,attr"`
}

func siteToXML(st site.Site) siteXML {
	return siteXML{
		ID:             st.ID,
		ContentURL:     st.ContentURL,
		Name:           st.Name,
		EncryptionMode: st.EncryptionMode,
	}
}

func writeXML(w http.ResponseWriter, status int, resp tsResponse) {
	resp.XMLNS = apiNamespace
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[mockapi] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, summary, detail string) {
	writeXML(w, status, tsResponse{
		Error: &errorXML{Code: code, Summary: summary, Detail: detail},
	})
}
