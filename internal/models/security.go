package models

import (
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
)

// SecuritySchemesSectionPrefix prefixes the section ids of security schemes.
const SecuritySchemesSectionPrefix = "section/Authentication/"

// OAuthFlowModel is a single OAuth2 flow.
type OAuthFlowModel struct {
	Type             string
	AuthorizationURL string
	TokenURL         string
	RefreshURL       string
	Scopes           []Scope
}

// Scope is an OAuth2 scope with its description.
type Scope struct {
	Name        string
	Description string
}

// SecuritySchemeModel is a resolved security scheme.
type SecuritySchemeModel struct {
	ID          string
	SectionID   string
	Type        string
	Description string
	DisplayName string

	// apiKey
	Name string
	In   string
	// http
	Scheme       string
	BearerFormat string
	// openIdConnect
	OpenIDConnectURL string
	// oauth2
	Flows []OAuthFlowModel
}

// NewSecuritySchemeModel builds the view of a security scheme.
func NewSecuritySchemeModel(id string, scheme *v3.SecurityScheme) *SecuritySchemeModel {
	m := &SecuritySchemeModel{
		ID:               id,
		SectionID:        SecuritySchemesSectionPrefix + id,
		Type:             scheme.Type,
		Description:      scheme.Description,
		DisplayName:      id,
		Name:             scheme.Name,
		In:               scheme.In,
		Scheme:           scheme.Scheme,
		BearerFormat:     scheme.BearerFormat,
		OpenIDConnectURL: scheme.OpenIdConnectUrl,
	}
	if name := ExtensionString(scheme.Extensions, "x-displayName"); name != "" {
		m.DisplayName = name
	}

	if flows := scheme.Flows; flows != nil {
		add := func(typ string, flow *v3.OAuthFlow) {
			if flow == nil {
				return
			}
			m.Flows = append(m.Flows, OAuthFlowModel{
				Type:             typ,
				AuthorizationURL: flow.AuthorizationUrl,
				TokenURL:         flow.TokenUrl,
				RefreshURL:       flow.RefreshUrl,
				Scopes:           scopes(flow.Scopes),
			})
		}
		add("implicit", flows.Implicit)
		add("password", flows.Password)
		add("clientCredentials", flows.ClientCredentials)
		add("authorizationCode", flows.AuthorizationCode)
	}
	return m
}

func scopes(m *orderedmap.Map[string, string]) []Scope {
	if m == nil {
		return nil
	}
	var out []Scope
	for pair := m.First(); pair != nil; pair = pair.Next() {
		out = append(out, Scope{Name: pair.Key(), Description: pair.Value()})
	}
	return out
}

// SecuritySchemes returns every scheme of components.securitySchemes in
// document order.
func SecuritySchemes(doc *v3.Document) []*SecuritySchemeModel {
	if doc == nil || doc.Components == nil || doc.Components.SecuritySchemes == nil {
		return nil
	}
	var out []*SecuritySchemeModel
	for pair := doc.Components.SecuritySchemes.First(); pair != nil; pair = pair.Next() {
		if pair.Value() == nil {
			continue
		}
		out = append(out, NewSecuritySchemeModel(pair.Key(), pair.Value()))
	}
	return out
}

// RequirementScheme is a scheme referenced by a requirement with the scopes
// it asks for.
type RequirementScheme struct {
	*SecuritySchemeModel
	Scopes []string
}

// SecurityRequirementModel is one alternative of a security requirement
// list. All its schemes apply together.
type SecurityRequirementModel struct {
	Schemes []RequirementScheme
}

// NewSecurityRequirementModel resolves scheme names against the document's
// security schemes. Unknown names are dropped.
func NewSecurityRequirementModel(req *base.SecurityRequirement, doc *v3.Document) *SecurityRequirementModel {
	m := &SecurityRequirementModel{}
	if req == nil || req.Requirements == nil {
		return m
	}

	var schemes *orderedmap.Map[string, *v3.SecurityScheme]
	if doc != nil && doc.Components != nil {
		schemes = doc.Components.SecuritySchemes
	}

	for pair := req.Requirements.First(); pair != nil; pair = pair.Next() {
		if schemes == nil {
			continue
		}
		scheme, ok := schemes.Get(pair.Key())
		if !ok || scheme == nil {
			continue
		}
		m.Schemes = append(m.Schemes, RequirementScheme{
			SecuritySchemeModel: NewSecuritySchemeModel(pair.Key(), scheme),
			Scopes:              pair.Value(),
		})
	}
	return m
}
