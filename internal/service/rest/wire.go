package rest

import "encoding/xml"

// Request bodies. The server accepts unqualified tsRequest documents, so no
// namespace is attached on the way out.

type signInRequest struct {
	XMLName     xml.Name          `xml:"tsRequest"`
	Credentials signInCredentials `xml:"credentials"`
}

type signInCredentials struct {
	Name     string     `xml:"name,attr"`
	Password string     `xml:"password,attr"`
	Site     siteByName `xml:"site"`
}

type switchSiteRequest struct {
	XMLName xml.Name   `xml:"tsRequest"`
	Site    siteByName `xml:"site"`
}

// siteByName selects a site by its content URL; the empty string selects
// the server's default site.
type siteByName struct {
	ContentURL string `xml:"contentUrl,attr"`
}

type updateSiteRequest struct {
	XMLName xml.Name       `xml:"tsRequest"`
	Site    siteUpdateBody `xml:"site"`
}

type siteUpdateBody struct {
	EncryptionMode string `xml:"extractEncryptionMode,attr"`
}

// Response bodies. Field tags carry no namespace so they match the server's
// namespaced elements and plain test fixtures alike.

type authResponse struct {
	XMLName     xml.Name        `xml:"tsResponse"`
	Credentials *credentialsXML `xml:"credentials"`
}

type credentialsXML struct {
	Token string  `xml:"token,attr"`
	Site  siteXML `xml:"site"`
}

type sitesResponse struct {
	XMLName xml.Name  `xml:"tsResponse"`
	Sites   []siteXML `xml:"sites>site"`
}

type siteResponse struct {
	XMLName xml.Name `xml:"tsResponse"`
	Site    *siteXML `xml:"site"`
}

type siteXML struct {
	ID             string `xml:"id,attr"`
	ContentURL     string `xml:"contentUrl,attr"`
	Name           string `xml:"name,attr"`
	EncryptionMode string `xml:"extractEncryptionMode,attr"`
}

type groupsResponse struct {
	XMLName xml.Name   `xml:"tsResponse"`
	Groups  []groupXML `xml:"groups>group"`
}

type groupXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type usersResponse struct {
	XMLName xml.Name  `xml:"tsResponse"`
	Users   []userXML `xml:"users>user"`
}

type userXML struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	SiteRole string `xml:"siteRole,attr"`
}
