package rest

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// ErrGroupNotFound reports that a named group is absent from a site.
var ErrGroupNotFound = errors.New("group not found")

// APIError carries the structured error body the server returns on a
// failed call. Fields the body does not supply keep their placeholder
// defaults, so a malformed or empty body still yields a printable error.
type APIError struct {
	HTTPStatus int
	Code       string
	Summary    string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s - %s", e.Code, e.Summary, e.Detail)
}

// errorEnvelope tolerates any root element name; real servers wrap the
// error in tsResponse but the validator must not depend on that.
type errorEnvelope struct {
	XMLName xml.Name
	Error   *errorXML `xml:"error"`
}

type errorXML struct {
	Code    string  `xml:"code,attr"`
	Summary *string `xml:"summary"`
	Detail  *string `xml:"detail"`
}

// checkStatus compares the response status against the code expected for
// the call. lenient marks the read calls whose status was historically
// never checked; they pass unless the client is in strict mode.
func (c *Client) checkStatus(status int, body []byte, expected int, lenient bool) error {
	if status == expected {
		return nil
	}
	if lenient && !c.strict {
		return nil
	}
	return parseAPIError(status, body)
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		HTTPStatus: status,
		Code:       "unknown",
		Summary:    "unknown summary",
		Detail:     "unknown detail",
	}

	var envelope errorEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return apiErr
	}
	if envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
	}
	if envelope.Error.Summary != nil {
		apiErr.Summary = *envelope.Error.Summary
	}
	if envelope.Error.Detail != nil {
		apiErr.Detail = *envelope.Error.Detail
	}
	return apiErr
}
