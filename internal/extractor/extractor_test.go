package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizPage = `<!doctype html>
<html><head><title>Quiz</title><script>var secret = "https://tracker.example.com/x";</script></head>
<body>
  <div id="result">
    <p>Q834. Download <a href="/files/data.csv">file</a>. What is the sum of the "value" column?</p>
    <p>Post your answer to https://grader.example.com/submit with this JSON payload:</p>
    <pre>
{
  "email": "your email",
  "secret": "your secret",
  "url": "https://quiz.example.com/quiz-834",
  "answer": 12345, // the correct answer
}
    </pre>
  </div>
</body></html>`

func TestExtractSubmitURLFromPayloadPreview(t *testing.T) {
	content, err := Extract("https://quiz.example.com/quiz-834", quizPage)
	require.NoError(t, err)

	assert.Equal(t, "https://grader.example.com/submit", content.SubmitURL)
	assert.True(t, content.HasSubmitURL())
}

func TestExtractQuestionByIdentifier(t *testing.T) {
	content, err := Extract("https://quiz.example.com/quiz-834", quizPage)
	require.NoError(t, err)

	assert.Equal(t, "Q834. Download", content.Question)
}

func TestExtractResolvesRelativeLinks(t *testing.T) {
	content, err := Extract("https://quiz.example.com/quiz-834", quizPage)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://quiz.example.com/files/data.csv"}, content.Links)
}

func TestExtractFallsBackToLastURLInText(t *testing.T) {
	html := `<html><body>
<p>Read https://docs.example.com/help first.</p>
<p>Then answer at https://grader.example.com/submit.</p>
<pre>{ "not": "a payload" }</pre>
</body></html>`

	content, err := Extract("", html)
	require.NoError(t, err)
	assert.Equal(t, "https://grader.example.com/submit", content.SubmitURL)
}

func TestExtractIgnoresURLsInScripts(t *testing.T) {
	html := `<html><body><p>No links here.</p><script>fetch("https://api.example.com/x")</script></body></html>`

	content, err := Extract("", html)
	require.NoError(t, err)
	assert.False(t, content.HasSubmitURL())
	assert.Equal(t, "No links here.", content.Question)
}

func TestExtractPayloadPreviewIsNeverEvaluated(t *testing.T) {
	// not structured data: falls through to the text scan
	html := `<html><body>
<p>Submit to https://grader.example.com/preview-owner</p>
<pre>{"email": __import__("os").system("id"), "secret": 1, "url": 2}</pre>
<p>Fallback https://grader.example.com/last</p>
</body></html>`

	content, err := Extract("", html)
	require.NoError(t, err)
	assert.Equal(t, "https://grader.example.com/last", content.SubmitURL)
}

func TestExtractQuestionFallbackNormalizesWhitespace(t *testing.T) {
	html := `<html><body><h1>  What is
	the   answer? </h1><p>It is 42</p></body></html>`

	content, err := Extract("", html)
	require.NoError(t, err)
	assert.Equal(t, "What is the answer? It is 42", content.Question)
}

func TestExtractTables(t *testing.T) {
	html := `<html><body>
<p>What is the sum of the column?</p>
<table>
  <tr><th>name</th><th>value</th></tr>
  <tr><td>a</td><td> 10 </td></tr>
  <tr><td>b</td><td>20</td></tr>
  <tr><td>c</td><td>30</td></tr>
</table>
<table><tr><td>second</td></tr></table>
</body></html>`

	content, err := Extract("", html)
	require.NoError(t, err)
	require.Len(t, content.Tables, 2)
	assert.Equal(t, [][]string{
		{"name", "value"},
		{"a", "10"},
		{"b", "20"},
		{"c", "30"},
	}, content.Tables[0].Rows)
	assert.Equal(t, [][]string{{"second"}}, content.Tables[1].Rows)
}

func TestExtractIsDeterministic(t *testing.T) {
	first, err := Extract("https://quiz.example.com/quiz-834", quizPage)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Extract("https://quiz.example.com/quiz-834", quizPage)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestIsPayloadPreview(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "strict json", raw: `{"email":"e","secret":"s","url":"u"}`, want: true},
		{name: "json5 with comments", raw: "{\n email: 'e', // who\n secret: 's',\n url: 'u',\n}", want: true},
		{name: "missing key", raw: `{"email":"e","url":"u"}`, want: false},
		{name: "array", raw: `["email","secret","url"]`, want: false},
		{name: "garbage", raw: `{email: os.system('x')}`, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isPayloadPreview(tt.raw))
		})
	}
}
