package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	appchat "github.com/jbctechsolutions/parley/internal/application/chat"
	domainchat "github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// askFlags holds the flags for the ask command.
type askFlags struct {
	Provider  string
	Model     string
	MaxTokens int
	System    string
}

var askOpts askFlags

// NewAskCmd creates the ask command for one-shot questions.
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "One-shot question without entering the REPL",
		Long: `Send a single question and print the answer.

The ask command sends one question to the configured provider and exits.
No session state is kept and nothing is written to the history file.

Examples:
  # Ask with default settings
  parley ask "What is a goroutine?"

  # Ask Bedrock-hosted Claude
  parley ask "Summarize this" --provider bedrock

  # Ask with a system prompt
  parley ask "Explain monads" --system "Answer in one paragraph"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVarP(&askOpts.Provider, "provider", "p", "",
		"provider to use (azure, bedrock)")
	cmd.Flags().StringVarP(&askOpts.Model, "model", "m", "",
		"model selection (e.g., gpt-4, anthropic.claude-3-sonnet-20240229-v1:0)")
	cmd.Flags().IntVar(&askOpts.MaxTokens, "max-tokens", 0,
		"response token limit (default from config)")
	cmd.Flags().StringVar(&askOpts.System, "system", "",
		"custom system prompt")

	return cmd
}

// runAsk sends the one-shot question.
func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	formatter := GetFormatter()
	ctx := context.Background()

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	chatService := container.ChatService()
	cfg := container.Config()

	settings := appchat.Settings{
		Provider:  cfg.Defaults.Provider,
		Model:     cfg.Defaults.Model,
		MaxTokens: cfg.Defaults.MaxTokens,
	}
	if askOpts.Provider != "" {
		settings.Provider = askOpts.Provider
	}
	if askOpts.Model != "" {
		settings.Model = askOpts.Model
	}
	if askOpts.MaxTokens != 0 {
		if err := validateMaxTokens(askOpts.MaxTokens); err != nil {
			return err
		}
		settings.MaxTokens = askOpts.MaxTokens
	}

	messages := make([]domainchat.Message, 0, 2)
	if askOpts.System != "" {
		messages = append(messages, domainchat.NewSystemMessage(askOpts.System))
	}
	messages = append(messages, domainchat.NewUserMessage(question))

	result := chatService.Generate(ctx, 0, settings, messages)

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(map[string]any{
			"question":      question,
			"answer":        result.Text,
			"provider":      settings.Provider,
			"model":         settings.Model,
			"input_tokens":  result.InputTokens,
			"output_tokens": result.OutputTokens,
			"from_cache":    result.FromCache,
			"failed":        result.Failed,
		})
	}

	formatter.Println("%s", result.Text)
	if !result.Failed {
		formatter.Println("")
		formatter.Item("Tokens", fmt.Sprintf("in=%d out=%d", result.InputTokens, result.OutputTokens))
	}
	if result.Failed {
		return result.Err
	}
	return nil
}
