package client

import (
	"net/http"

	"github.com/kbukum/apihelper/errors"
	"github.com/kbukum/apihelper/httpclient"
)

// ContentKind is the family of a response Content-Type.
type ContentKind string

const (
	KindJSON ContentKind = "json"
	KindXML  ContentKind = "xml"
	KindHTML ContentKind = "html"
	KindText ContentKind = "text"
)

var contentKinds = map[string]ContentKind{
	"application/json":      KindJSON,
	"text/javascript":       KindJSON,
	"application/xml":       KindXML,
	"text/xml":              KindXML,
	"application/atom+xml":  KindXML,
	"application/xhtml+xml": KindXML,
	"text/html":             KindHTML,
	"text/plain":            KindText,
}

// Result is a classified response.
type Result struct {
	StatusCode  int
	Kind        ContentKind
	ContentType string
	Header      http.Header
	Body        []byte
	// Data is the decoded payload, set once the body has been decoded.
	Data any
}

// Classify checks the status for a server failure and maps the Content-Type
// to a ContentKind. A 5xx status is reported before the Content-Type is
// looked at.
func Classify(resp *httpclient.Response) (*Result, error) {
	if resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return nil, errors.ServiceUnavailable(resp.StatusCode, resp.Body)
	}

	contentType := resp.ContentType()
	kind, ok := contentKinds[contentType]
	if !ok {
		return nil, errors.UnknownContentType(contentType, resp.StatusCode, resp.Body)
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		Kind:        kind,
		ContentType: contentType,
		Header:      resp.Header,
		Body:        resp.Body,
	}, nil
}
