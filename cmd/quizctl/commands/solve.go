package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/user/quiz-solver/internal/app"
	"github.com/user/quiz-solver/internal/delivery/http/response"
	"github.com/user/quiz-solver/internal/entity"
	"github.com/user/quiz-solver/pkg/config"
	"github.com/user/quiz-solver/pkg/utils"
)

var (
	solveEmail string
	solveURL   string
)

func init() {
	solveCmd.Flags().StringVar(&solveEmail, "email", "", "Email submitted with every answer.")
	solveCmd.Flags().StringVar(&solveURL, "url", "", "First quiz page of the chain.")
	_ = solveCmd.MarkFlagRequired("email")
	_ = solveCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(solveCmd)
}

var solveCmd = &cobra.Command{
	Use:   "solve --email <email> --url <quiz url>",
	Short: "Runs a whole quiz chain with the configured secret and prints the steps.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !utils.IsHTTPURL(solveURL) {
			return entity.ErrInvalidPayload
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, logCloser, err := newLogger()
		if err != nil {
			return err
		}
		defer logCloser.Close()
		defer log.Sync()

		application, err := app.New(cmd.Context(), cfg, log, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		defer application.Close()

		result, err := application.Solver.Solve(cmd.Context(), entity.ChainRequest{
			Email:    solveEmail,
			Secret:   cfg.QuizSecret,
			StartURL: solveURL,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), response.NewSolveResponse(result))
	},
}
