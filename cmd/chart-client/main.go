package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chart-analyzer/internal/client"
	"chart-analyzer/internal/entity"
	"chart-analyzer/pkg/common"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	chartPaths = map[entity.SlotID]*string{}
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Uploads chart images and prints the analysis",
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	endpoint := strings.TrimRight(serverURL, "/") + common.RouteAPIGroup + common.RouteAnalyze
	form := client.NewChartForm(endpoint, &http.Client{})

	for _, id := range entity.SlotOrder() {
		path := *chartPaths[id]
		if path == "" {
			continue
		}
		if err := form.SetFromFile(id, path); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
	}

	text, err := form.Submit(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), text)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// slotUsage renders the upload hint shown next to each slot in the form.
func slotUsage(def entity.ChartSlotDefinition) string {
	usage := fmt.Sprintf("%s image file. %s. %s", def.Title, def.Description, def.Details)
	if def.Required {
		usage += " (required)"
	}
	return usage
}

func main() {
	rootCmd := &cobra.Command{Use: "chart-client", SilenceUsage: true}

	analyzeCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the analysis service")
	for _, def := range entity.ChartSlotDefinitions() {
		chartPaths[def.ID] = analyzeCmd.Flags().String(string(def.ID), "", slotUsage(def))
	}

	rootCmd.AddCommand(analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
