package models

import (
	"net/url"
	"path"
	"regexp"

	"github.com/moamenhredeen/oasdoc/internal/parser"
)

// DefaultDownloadFileName is offered for documents not loaded from a URL.
const DefaultDownloadFileName = "openapi.json"

var firstHeading = regexp.MustCompile(`(?m)^##?\s+`)

// Contact is the API contact information.
type Contact struct {
	Name  string
	URL   string
	Email string
}

// License is the API license.
type License struct {
	Name       string
	URL        string
	Identifier string
}

// APIInfo is the header block of the documentation.
type APIInfo struct {
	Title          string
	Version        string
	Summary        string
	Description    string
	TermsOfService string
	Contact        *Contact
	License        *License

	DownloadLink     string
	DownloadFileName string
}

// NewAPIInfo builds the header block. The description stops at the first
// level 1 or 2 heading since those become sections of their own.
// downloadLink is used when the document was not loaded from a URL.
func NewAPIInfo(p *parser.Parser, downloadLink string) *APIInfo {
	info := &APIInfo{DownloadLink: downloadLink}

	if p.SpecURL != "" {
		info.DownloadLink = p.SpecURL
		if u, err := url.Parse(p.SpecURL); err == nil {
			if base := path.Base(u.Path); base != "/" && base != "." {
				info.DownloadFileName = base
			}
		}
	}
	if info.DownloadFileName == "" {
		info.DownloadFileName = DefaultDownloadFileName
	}

	src := p.Model().Info
	if src == nil {
		return info
	}

	info.Title = src.Title
	info.Version = src.Version
	info.Summary = src.Summary
	info.TermsOfService = src.TermsOfService
	info.Description = src.Description
	if loc := firstHeading.FindStringIndex(info.Description); loc != nil {
		info.Description = info.Description[:loc[0]]
	}

	if c := src.Contact; c != nil {
		info.Contact = &Contact{Name: c.Name, URL: c.URL, Email: c.Email}
	}
	if l := src.License; l != nil {
		info.License = &License{Name: l.Name, URL: l.URL, Identifier: l.Identifier}
	}
	return info
}
