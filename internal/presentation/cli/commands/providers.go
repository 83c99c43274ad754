package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/parley/internal/presentation/cli/output"
)

// NewProvidersCmd creates the providers command.
func NewProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List configured providers and their models",
		Long: `List the providers registered from configuration along with the
models each one can serve.

A provider only appears here when its credentials were present at
startup; a missing endpoint or region silently disables that provider.`,
		Args: cobra.NoArgs,
		RunE: runProviders,
	}

	return cmd
}

// providerListing is the JSON shape of one registered provider.
type providerListing struct {
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// runProviders lists registered providers and their models.
func runProviders(cmd *cobra.Command, args []string) error {
	formatter := GetFormatter()
	ctx := context.Background()

	container := GetContainer()
	if container == nil {
		return fmt.Errorf("application not initialized")
	}

	chatService := container.ChatService()
	names := chatService.Providers()

	listings := make([]providerListing, 0, len(names))
	for _, name := range names {
		models, err := chatService.ProviderModels(ctx, name)
		if err != nil {
			models = nil
		}
		listings = append(listings, providerListing{Name: name, Models: models})
	}

	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(listings)
	}

	if len(listings) == 0 {
		formatter.Warning("No providers configured")
		formatter.Info("Set AZURE_OPENAI_ENDPOINT/AZURE_OPENAI_KEY or AWS_REGION, or edit ~/.parley/config.yaml")
		return nil
	}

	formatter.Header("Providers")
	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			l.Name,
			strconv.Itoa(len(l.Models)),
			strings.Join(l.Models, ", "),
		})
	}
	formatter.Table(output.TableData{
		Columns: []output.TableColumn{
			{Header: "Name", Width: 10},
			{Header: "Models", Width: 6},
			{Header: "Available", Width: 50},
		},
		Rows: rows,
	})

	return nil
}
