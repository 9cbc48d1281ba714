package main

import (
	"context"

	"github.com/user/quiz-solver/cmd/quizctl/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
