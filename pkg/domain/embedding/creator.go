package embedding

import "context"

//go:generate mockery --name=Creator --dir=. --output=./mocks --filename=embedding_creator_mock.go --case=underscore --with-expecter

// Creator turns text into a vector using the named embedding model. The
// concept bank relies on it to embed both seed phrases and user content.
type Creator interface {
	Generate(ctx context.Context, text, model string, credentials *Config) (*Embedding, error)
}
