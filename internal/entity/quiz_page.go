package entity

// QuizPage is a fully rendered quiz page as returned by a RenderSession.
type QuizPage struct {
	SourceURL string
	HTML      string
}

// ExtractedContent holds everything the Content Extractor pulls out of a QuizPage.
type ExtractedContent struct {
	SubmitURL string   // empty when no submission endpoint could be found
	Question  string
	Tables    []Table  // in document order, the first one is the default target
	Links     []string // absolute anchor targets in document order
}

// HasSubmitURL reports whether a submission endpoint was found.
func (c *ExtractedContent) HasSubmitURL() bool {
	return c.SubmitURL != ""
}
