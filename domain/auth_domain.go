package domain

const (
	AuthTypeNative = "native"
	AuthTypeSocial = "social"

	RoleAdmin = "Admin"
	RoleUser  = "Users"
)

var (
	MessageSuccessLogout = "logged out"
	MessageSuccessMe     = "success get profile"

	MessageFailedUnauthorized = "unauthorized"
	MessageFailedForbidden    = "forbidden"
)

type (
	// TokenSet holds the tokens minted by the identity provider for the
	// current session. Only the ID token is ever verified here.
	TokenSet struct {
		IDToken      string `json:"-"`
		AccessToken  string `json:"-"`
		RefreshToken string `json:"-"`
	}

	// Principal is the verified identity of the caller for the current
	// request. It lives on the request scope and is never persisted.
	Principal struct {
		SubjectID   string   `json:"sub"`
		DisplayName string   `json:"name"`
		Username    string   `json:"username"`
		Email       string   `json:"email"`
		Tokens      TokenSet `json:"-"`
		Groups      []string `json:"groups,omitempty"`
		AuthType    string   `json:"authType"`
	}
)
