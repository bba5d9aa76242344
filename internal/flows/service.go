package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Verify.ParseToken != nil
}

func (s Service) Login(ctx context.Context, username, password string) (*TokenPairResult, error) {
	return RunLogin(ctx, username, password, s.deps.Login)
}

func (s Service) Refresh(ctx context.Context, refreshToken string) (*TokenPairResult, error) {
	return RunRefresh(ctx, refreshToken, s.deps.Refresh)
}

func (s Service) VerifyAccess(ctx context.Context, tokenStr string) (*ParsedToken, error) {
	return RunVerifyAccess(ctx, tokenStr, s.deps.Verify)
}
