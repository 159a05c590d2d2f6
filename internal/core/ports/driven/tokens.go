package driven

// TokenCounter estimates how many model tokens a text consumes.
type TokenCounter interface {
	// Count returns the token count of text.
	Count(text string) int
}
