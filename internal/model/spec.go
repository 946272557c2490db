package model

type Spec struct {
	Info       Info
	Operations []Operation
	Security   []SecurityScheme
}

// SchemeByName returns the security scheme declared under name, or nil.
func (s *Spec) SchemeByName(name string) *SecurityScheme {
	for i := range s.Security {
		if s.Security[i].Name == name {
			return &s.Security[i]
		}
	}
	return nil
}

type Info struct {
	Title       string
	Description string
	Version     string
}

type SecuritySchemeType string

const (
	SecurityHTTP          SecuritySchemeType = "http"
	SecurityAPIKey        SecuritySchemeType = "apiKey"
	SecurityOAuth2        SecuritySchemeType = "oauth2"
	SecurityOpenIDConnect SecuritySchemeType = "openIdConnect"
	SecurityMutualTLS     SecuritySchemeType = "mutualTLS"
)

type SecurityScheme struct {
	Name   string
	Type   SecuritySchemeType
	Scheme string // bearer, basic (type http)
	In     string // header, query, cookie (type apiKey)
	// ParamName is the header, query or cookie name of an apiKey scheme.
	ParamName   string
	Description string
}
