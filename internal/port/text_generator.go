package port

import "context"

// Generation is the text returned by a generator call.
type Generation struct {
	Text     string
	Model    string
	Provider string
}

// TextGenerator abstracts a generative text model.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
}
