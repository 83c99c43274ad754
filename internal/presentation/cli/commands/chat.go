package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	appchat "github.com/jbctechsolutions/parley/internal/application/chat"
	domainchat "github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/domain/session"
	"github.com/jbctechsolutions/parley/internal/infrastructure/config"
	"github.com/jbctechsolutions/parley/internal/infrastructure/history"
	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// chatFlags holds the flags for the chat command.
type chatFlags struct {
	Provider  string
	Model     string
	MaxTokens int
	System    string
}

var chatOpts chatFlags

// NewChatCmd creates the chat command for interactive REPL mode.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat REPL",
		Long: `Start an interactive chat session.

The chat command provides a REPL (Read-Eval-Print Loop) interface for
continuous conversation. Multiple sessions can be open at once; each
keeps its own message history.

Special commands:
  /exit, /quit      - Exit the chat
  /new              - Open a new session
  /delete <id>      - Delete a session
  /switch <id>      - Switch to another session
  /sessions         - List open sessions
  /clear            - Clear the active session's history
  /save [path]      - Save the active transcript to a JSON file
  /load [path]      - Load a transcript into the active session
  /model <name>     - Switch to a different model
  /provider <name>  - Switch to a different provider
  /max <n>          - Set the response token limit
  /tokens           - Show token usage for the active session
  /help             - Show help message

Examples:
  # Start a chat with default settings
  parley chat

  # Start against Bedrock-hosted Claude
  parley chat --provider bedrock --model anthropic.claude-3-sonnet-20240229-v1:0

  # Start with a custom system prompt
  parley chat --system "You are a helpful coding assistant"`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVarP(&chatOpts.Provider, "provider", "p", "",
		"provider to use (azure, bedrock)")
	cmd.Flags().StringVarP(&chatOpts.Model, "model", "m", "",
		"model selection (e.g., gpt-4, anthropic.claude-3-sonnet-20240229-v1:0)")
	cmd.Flags().IntVar(&chatOpts.MaxTokens, "max-tokens", 0,
		"response token limit (default from config)")
	cmd.Flags().StringVar(&chatOpts.System, "system", "",
		"custom system prompt")

	return cmd
}

// replState carries the mutable REPL state across commands.
type replState struct {
	settings    appchat.Settings
	historyPath string
}

// containerAPI is the slice of the application container the REPL
// command handler needs.
type containerAPI interface {
	Sessions() *session.Store
	ChatService() *appchat.Service
	HistoryStore() *history.Store
}

// runChat executes the interactive chat REPL.
func runChat(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	ctx := context.Background()

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application container not initialized")
	}

	chatService := container.ChatService()
	sessions := container.Sessions()
	cfg := container.Config()

	if len(chatService.Providers()) == 0 {
		return fmt.Errorf("no providers configured - please configure providers in ~/.parley/config.yaml")
	}

	state := &replState{
		settings: appchat.Settings{
			Provider:  cfg.Defaults.Provider,
			Model:     cfg.Defaults.Model,
			MaxTokens: cfg.Defaults.MaxTokens,
		},
		historyPath: cfg.History.Path,
	}
	if chatOpts.Provider != "" {
		state.settings.Provider = chatOpts.Provider
	}
	if chatOpts.Model != "" {
		state.settings.Model = chatOpts.Model
	}
	if chatOpts.MaxTokens != 0 {
		if err := validateMaxTokens(chatOpts.MaxTokens); err != nil {
			return err
		}
		state.settings.MaxTokens = chatOpts.MaxTokens
	}

	if chatOpts.System != "" {
		active := sessions.Active()
		if err := active.Append(domainchat.NewSystemMessage(chatOpts.System)); err != nil {
			return fmt.Errorf("could not add system prompt: %w", err)
		}
	}

	// Watch the history file so external edits are surfaced in the REPL.
	var watcher *history.Watcher
	if cfg.History.Watch {
		w, err := history.NewWatcher(state.historyPath, history.DefaultWatcherConfig())
		if err == nil {
			if err := w.Watch(); err != nil {
				w.Close()
			} else {
				watcher = w
				defer watcher.Close()
				go func() {
					for range watcher.Events() {
						formatter.Warning("History file changed on disk: %s", state.historyPath)
					}
				}()
			}
		}
	}

	formatter.Header(fmt.Sprintf("Parley - %s", sessions.Active().Name))
	formatter.Item("Provider", state.settings.Provider)
	formatter.Item("Model", state.settings.Model)
	formatter.Println("")
	formatter.Info("Type your message and press Enter. Type /help for commands.")
	formatter.Println("")

	rl, err := readline.New(prompt(sessions.Active().ID))
	if err != nil {
		return fmt.Errorf("could not create readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			shouldExit, err := handleChatCommand(ctx, line, container, state, formatter)
			if err != nil {
				formatter.Error("Command error: %s", err.Error())
			}
			if shouldExit {
				break
			}
			rl.SetPrompt(prompt(sessions.Active().ID))
			continue
		}

		active := sessions.Active()
		if err := active.Append(domainchat.NewUserMessage(line)); err != nil {
			formatter.Error("Error: %s", err.Error())
			continue
		}

		result := chatService.Generate(ctx, active.ID, state.settings, active.Messages)

		// The result text is always shown and kept in the transcript, even
		// when generation failed, so the conversation stays coherent.
		if err := active.Append(domainchat.NewAssistantMessage(result.Text)); err != nil {
			formatter.Error("Error: %s", err.Error())
			continue
		}

		if result.Failed {
			formatter.Error("\nAssistant:")
		} else {
			formatter.Success("\nAssistant:")
		}
		formatter.Println("%s", result.Text)
		if !result.Failed {
			label := fmt.Sprintf("%d in / %d out", result.InputTokens, result.OutputTokens)
			if result.FromCache {
				label += " (cached)"
			}
			formatter.Println("%s", formatter.Dim(fmt.Sprintf("[tokens: %s]", label)))
		}
		formatter.Println("")
	}

	formatter.Info("Chat ended. Goodbye!")
	return nil
}

// prompt formats the readline prompt for a session id.
func prompt(sessionID int) string {
	return fmt.Sprintf("[%d]> ", sessionID)
}

// handleChatCommand handles special chat commands.
// Returns (shouldExit, error).
func handleChatCommand(ctx context.Context, cmd string, container containerAPI, state *replState, f *output.Formatter) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	sessions := container.Sessions()
	chatService := container.ChatService()

	switch strings.ToLower(parts[0]) {
	case "/exit", "/quit":
		return true, nil

	case "/new":
		created := sessions.Create()
		f.Success("Opened %s", created.Name)
		return false, nil

	case "/delete":
		id, err := parseSessionID(parts)
		if err != nil {
			return false, err
		}
		if err := sessions.Delete(id); err != nil {
			return false, err
		}
		f.Success("Deleted session %d, now on %s", id, sessions.Active().Name)
		return false, nil

	case "/switch":
		id, err := parseSessionID(parts)
		if err != nil {
			return false, err
		}
		selected, err := sessions.Select(id)
		if err != nil {
			return false, err
		}
		f.Success("Switched to %s", selected.Name)
		return false, nil

	case "/sessions":
		active := sessions.Active()
		rows := make([][]string, 0, sessions.Count())
		for _, s := range sessions.List() {
			marker := ""
			if s.ID == active.ID {
				marker = "*"
			}
			rows = append(rows, []string{
				marker,
				strconv.Itoa(s.ID),
				s.Name,
				strconv.Itoa(s.MessageCount()),
			})
		}
		f.Table(output.TableData{
			Columns: []output.TableColumn{
				{Header: "", Width: 1},
				{Header: "ID", Width: 4},
				{Header: "Name", Width: 12},
				{Header: "Messages", Width: 8},
			},
			Rows: rows,
		})
		return false, nil

	case "/clear":
		sessions.Active().Replace(nil)
		f.Success("Conversation history cleared")
		return false, nil

	case "/save":
		path := state.historyPath
		if len(parts) > 1 {
			path = parts[1]
		}
		if err := container.HistoryStore().Save(sessions.Active().Messages, path); err != nil {
			return false, err
		}
		f.Success("Saved %d messages to %s", sessions.Active().MessageCount(), path)
		return false, nil

	case "/load":
		path := state.historyPath
		if len(parts) > 1 {
			path = parts[1]
		}
		messages, err := container.HistoryStore().Load(path)
		if err != nil {
			return false, err
		}
		sessions.Active().Replace(messages)
		f.Success("Loaded %d messages from %s", len(messages), path)
		return false, nil

	case "/model":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /model <model-name>")
		}
		state.settings.Model = parts[1]
		f.Success("Switched to model: %s", state.settings.Model)
		return false, nil

	case "/provider":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /provider <provider-name>")
		}
		name := parts[1]
		available := chatService.Providers()
		found := false
		for _, p := range available {
			if p == name {
				found = true
				break
			}
		}
		if !found {
			return false, fmt.Errorf("unknown provider: %s (available: %s)", name, strings.Join(available, ", "))
		}
		state.settings.Provider = name
		f.Success("Switched to provider: %s", name)
		return false, nil

	case "/max":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /max <token-limit>")
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return false, fmt.Errorf("invalid token limit: %s", parts[1])
		}
		if err := validateMaxTokens(n); err != nil {
			return false, err
		}
		state.settings.MaxTokens = n
		f.Success("Response token limit set to %d", n)
		return false, nil

	case "/tokens":
		active := sessions.Active()
		total := chatService.TranscriptTokens(ctx, active.Messages, state.settings.Model)
		f.Header("Token Usage")
		f.Item("Session", active.Name)
		f.Item("Model", state.settings.Model)
		f.Item("Messages", strconv.Itoa(active.MessageCount()))
		f.Item("Estimated tokens", strconv.Itoa(total))
		f.Println("")
		return false, nil

	case "/help":
		f.Header("Chat Commands")
		f.Item("/exit, /quit", "Exit the chat")
		f.Item("/new", "Open a new session")
		f.Item("/delete <id>", "Delete a session")
		f.Item("/switch <id>", "Switch to another session")
		f.Item("/sessions", "List open sessions")
		f.Item("/clear", "Clear the active session's history")
		f.Item("/save [path]", "Save the active transcript to a JSON file")
		f.Item("/load [path]", "Load a transcript into the active session")
		f.Item("/model <name>", "Switch to a different model")
		f.Item("/provider <name>", "Switch to a different provider")
		f.Item("/max <n>", "Set the response token limit")
		f.Item("/tokens", "Show token usage for the active session")
		f.Item("/help", "Show this help message")
		f.Println("")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s (type /help for help)", parts[0])
	}
}

// parseSessionID extracts the session id argument from a command.
func parseSessionID(parts []string) (int, error) {
	if len(parts) < 2 {
		return 0, fmt.Errorf("usage: %s <session-id>", parts[0])
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid session id: %s", parts[1])
	}
	return id, nil
}

// validateMaxTokens checks the response token limit against the allowed range.
func validateMaxTokens(n int) error {
	if n < config.MinGenerationTokens || n > config.MaxGenerationTokens {
		return fmt.Errorf("token limit must be between %d and %d", config.MinGenerationTokens, config.MaxGenerationTokens)
	}
	return nil
}
