package testutil

// FixedTokenGenerator returns the same binding ID every time.
//
// Traces rendered from a binding carry its ID, so a fixed ID keeps golden
// output byte-identical across runs.
//
// Safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a generator for token.
//
// The token usually comes from the scenario file:
//
//	binding_id: "counter-1"
//
// If token is empty, Generate returns "test-binding-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-binding-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed token. Implements host.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
