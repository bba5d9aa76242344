package flows

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Login   LoginDeps
	Refresh RefreshDeps
	Verify  VerifyDeps
}

// PrincipalRecord is a flow-local principal model. The engine maps its own
// store type into this shape so flows stay import-free.
type PrincipalRecord struct {
	Username     string
	Authorities  []string
	PasswordHash string
}

// Token kind markers carried in the "typ" claim. The verify flow accepts
// only access tokens and the refresh flow only refresh tokens.
const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// ParsedToken is a flow-local view of a verified token's claims.
type ParsedToken struct {
	Subject string
	Kind    string
	Roles   []string
}

// TokenPairResult is the flow-local shape of a successful login or refresh.
type TokenPairResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}
