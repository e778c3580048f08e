// Package generator produces quiz questions from document chunks, either
// synthetically (FakeFactory) or through a chat-completion model with
// schema-validated output (AIGenerator).
package generator

// ChunkInput is the slice of source material a single question is built from.
type ChunkInput struct {
	ChunkID string
	FileID  string
	Text    string
}
