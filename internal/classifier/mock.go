package classifier

import "context"

// MockClassifier is a configurable stand-in for Client in tests.
type MockClassifier struct {
	// ClassifyFunc is called when Classify is invoked. If nil, Text is parsed.
	ClassifyFunc func(ctx context.Context, img Image, pc PromptContext) (*Classification, error)

	// Text is the canned model reply used when ClassifyFunc is nil.
	Text string

	Calls      int
	LastImage  Image
	LastPrompt PromptContext
}

// NewMockClassifier returns a mock that replies with text.
func NewMockClassifier(text string) *MockClassifier {
	return &MockClassifier{Text: text}
}

// Classify implements the classifier used by the estimation service.
func (m *MockClassifier) Classify(ctx context.Context, img Image, pc PromptContext) (*Classification, error) {
	m.Calls++
	m.LastImage = img
	m.LastPrompt = pc
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, img, pc)
	}
	result, err := ParseResult(m.Text)
	if err != nil {
		return nil, err
	}
	return &Classification{Result: result, RawText: m.Text}, nil
}
