package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/quiz-solver/internal/adapter/chromedp_renderer"
	"github.com/user/quiz-solver/internal/classifier"
	"github.com/user/quiz-solver/internal/extractor"
)

var (
	extractURL  string
	extractFile string
	extractBase string
)

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "Quiz page to render in the headless browser.")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "Already rendered HTML file to read instead of a URL.")
	extractCmd.Flags().StringVar(&extractBase, "base", "", "Page URL used to resolve relative links when reading --file.")
	rootCmd.AddCommand(extractCmd)
}

type extractOutput struct {
	SubmitURL string       `json:"submit_url"`
	Question  string       `json:"question"`
	Links     []string     `json:"links"`
	Tables    [][][]string `json:"tables"`
	Pattern   string       `json:"pattern"`
	Answer    any          `json:"answer,omitempty"`
	Error     string       `json:"error,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract (--url <quiz url> | --file <page.html> [--base <url>])",
	Short: "Shows what the solver reads from a quiz page and the answer it would submit.",
	Long: "Shows what the solver reads from a quiz page and the answer it would submit. " +
		"Questions that need a downloaded file are not resolved.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (extractURL == "") == (extractFile == "") {
			return errors.New("exactly one of --url or --file is required")
		}

		log, logCloser, err := newLogger()
		if err != nil {
			return err
		}
		defer logCloser.Close()
		defer log.Sync()

		pageURL, html := extractBase, ""
		if extractFile != "" {
			data, err := os.ReadFile(extractFile)
			if err != nil {
				return err
			}
			html = string(data)
		} else {
			renderer, err := chromedp_renderer.NewChromedpRenderer(chromedp_renderer.Options{MaxConcurrency: 1}, log)
			if err != nil {
				return err
			}
			defer renderer.Close()

			session, err := renderer.NewSession(cmd.Context())
			if err != nil {
				return err
			}
			defer session.Close()

			page, err := session.Render(cmd.Context(), extractURL)
			if err != nil {
				return fmt.Errorf("render %s: %w", extractURL, err)
			}
			pageURL, html = page.SourceURL, page.HTML
		}

		content, err := extractor.Extract(pageURL, html)
		if err != nil {
			return err
		}

		out := extractOutput{
			SubmitURL: content.SubmitURL,
			Question:  content.Question,
			Links:     content.Links,
		}
		for _, t := range content.Tables {
			out.Tables = append(out.Tables, t.Rows)
		}

		answer, pattern, err := classifier.New(log).Classify(cmd.Context(), content, nil)
		out.Pattern = string(pattern)
		if err != nil {
			out.Error = err.Error()
		} else {
			out.Answer = answer.Value()
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}
