package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"basegraph.app/assist/common/llm"
	"basegraph.app/assist/core/config"
	"basegraph.app/assist/internal/assistant"
	"basegraph.app/assist/internal/http/dto"
)

var (
	runContextFile string
	runRawJSON     bool
)

var runCmd = &cobra.Command{
	Use:   "run <feature> <input...>",
	Short: "Run one assistant feature and print the result",
	Example: `  assist run analyze "Build the login page"
  assist run assign "Design the onboarding flow" --context team.json`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := assistant.ParseFeature(args[0])
		if err != nil {
			return err
		}

		req := assistant.Request{
			Feature: feature,
			Input:   strings.Join(args[1:], " "),
		}
		if runContextFile != "" {
			reqCtx, err := readContextFile(runContextFile)
			if err != nil {
				return err
			}
			req.Context = reqCtx.ToRequestContext()
		}

		cfg, err := config.Load(config.ServiceTypeCLI)
		if err != nil {
			return err
		}

		client, err := llm.NewTextClient(llm.Config{
			Provider:    cfg.AssistantLLM.Provider,
			APIKey:      cfg.AssistantLLM.APIKey,
			BaseURL:     cfg.AssistantLLM.BaseURL,
			Model:       cfg.AssistantLLM.Model,
			MaxTokens:   cfg.AssistantLLM.MaxTokens,
			Temperature: cfg.AssistantLLM.Temperature,
		})
		if err != nil {
			return fmt.Errorf("creating llm client: %w", err)
		}

		dispatcher := assistant.NewDispatcher(client, assistant.Options{
			Timeout:      cfg.Assistant.Timeout,
			MaxRetries:   cfg.Assistant.MaxRetries,
			RetryBackoff: cfg.Assistant.RetryBackoff,
		})

		result, err := dispatcher.Dispatch(cmd.Context(), req)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result.Payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}

		if runRawJSON {
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		source := color.New(color.FgGreen).Sprint(result.Source)
		if result.Source == assistant.SourceFallback {
			source = color.New(color.FgYellow).Sprintf("%s (%s)", result.Source, result.Reason)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s via %s in %s\n%s\n", source, result.Model, result.Latency.Round(time.Millisecond), out)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runContextFile, "context", "", "JSON file with priority, assignee, subtask_count, tasks or team")
	runCmd.Flags().BoolVar(&runRawJSON, "json", false, "Print only the JSON result")
}

func readContextFile(path string) (*dto.AssistantContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading context file: %w", err)
	}

	var reqCtx dto.AssistantContext
	if err := json.Unmarshal(data, &reqCtx); err != nil {
		return nil, fmt.Errorf("parsing context file: %w", err)
	}
	return &reqCtx, nil
}
