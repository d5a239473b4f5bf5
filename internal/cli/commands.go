package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finsage/finsage/internal/agents"
	"github.com/finsage/finsage/internal/config"
	"github.com/finsage/finsage/internal/db"
	"github.com/finsage/finsage/internal/debug"
	"github.com/finsage/finsage/internal/loader"
	"github.com/finsage/finsage/internal/server"
	"github.com/finsage/finsage/internal/storage/sqlite"
	"github.com/finsage/finsage/internal/tools"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "finsage",
		Short: "finsage - conversational financial data analysis",
		Long: `finsage answers natural-language questions about company financial data.
It drives an LLM agent over a MySQL store of fiscal-year fundamentals and can
render charts alongside text answers.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("create directories: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cfg)
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newLoadCmd(cfg))
	rootCmd.AddCommand(newChatCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP question-answering service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}
}

func newLoadCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load company financial data from a CSV file or URL",
		Long: `Load reads a CSV export of company fundamentals, renames source column
codes to canonical names, validates each row, upserts the batch and refreshes
the derived metric columns.
Example: finsage load --file data/company_data.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			url, _ := cmd.Flags().GetString("url")
			return runLoad(cfg, file, url)
		},
	}

	cmd.Flags().String("file", "", "Path to a CSV file")
	cmd.Flags().String("url", "", "URL of a CSV file")
	return cmd
}

func newChatCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the financial analysis agent in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cfg)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("finsage v1.0.0")
			fmt.Println("Conversational financial data analysis")
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			DisplayInfo("Configuration is valid.")
			return nil
		},
	})

	return configCmd
}

func runServe(cfg *config.Config) error {
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := debug.NewEinoDebugger(cfg).Initialize(ctx); err != nil {
		return err
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	chat, err := agents.NewChat(ctx, cfg, tools.NewToolSet(cfg, pool), store)
	if err != nil {
		return err
	}

	return server.New(cfg, chat).ListenAndServe()
}

func runLoad(cfg *config.Config, file, url string) error {
	ctx := context.Background()

	var source string
	switch {
	case file != "" && url != "":
		return fmt.Errorf("use --file or --url, not both")
	case file != "":
		source = file
	case url != "":
		source = url
	default:
		return fmt.Errorf("one of --file or --url is required")
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	rows, err := loader.ReadSource(ctx, source)
	if err != nil {
		return err
	}

	result, err := loader.Load(ctx, pool, rows)
	if err != nil {
		return err
	}

	DisplayInfo(fmt.Sprintf("Loaded %d rows, %d failed.", result.Inserted, result.Failed))
	for i, msg := range result.Errors {
		if i == 10 {
			DisplayInfo(fmt.Sprintf("... and %d more", len(result.Errors)-i))
			break
		}
		DisplayInfo("  " + msg)
	}
	return nil
}

func runChat(cfg *config.Config) error {
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		return err
	}

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	store, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	chat, err := agents.NewChat(ctx, cfg, tools.NewToolSet(cfg, pool), store)
	if err != nil {
		return err
	}

	sessionID := uuid.NewString()

	DisplayWelcomeBanner()
	DisplayInfo("Charts are saved under " + cfg.GraphDir)
	fmt.Println()

	for {
		var question string
		prompt := &survey.Input{Message: "You:"}
		if err := survey.AskOne(prompt, &question); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				DisplayInfo("Bye.")
				return nil
			}
			return err
		}

		question = strings.TrimSpace(question)
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") || strings.EqualFold(question, "quit") {
			DisplayInfo("Bye.")
			return nil
		}

		reqCtx, cancel := context.WithTimeout(ctx, cfg.AgentTimeout)
		answer, err := chat.Respond(reqCtx, sessionID, question)
		cancel()
		if err != nil {
			DisplayError(err)
			continue
		}

		fmt.Println(answerStyle.Render(answer))
		fmt.Println()
	}
}

func showConfig(cfg *config.Config) {
	fmt.Println("Current finsage configuration:")
	fmt.Println("══════════════════════════════")
	fmt.Printf("Project Directory:  %s\n", cfg.ProjectDir)
	fmt.Printf("Data Directory:     %s\n", cfg.DataDir)
	fmt.Printf("Graph Directory:    %s\n", cfg.GraphDir)
	fmt.Printf("Static Directory:   %s\n", cfg.StaticDir)
	fmt.Println()
	fmt.Printf("Model Provider:     %s\n", cfg.ModelProvider)
	if cfg.ModelProvider == "deepseek" {
		fmt.Printf("Model:              %s\n", cfg.DeepSeekModel)
	} else {
		fmt.Printf("Model:              %s\n", cfg.OpenAIModel)
		fmt.Printf("Base URL:           %s\n", cfg.OpenAIBaseURL)
	}
	fmt.Printf("Max Tokens:         %d\n", cfg.MaxTokens)
	fmt.Printf("Temperature:        %.2f\n", cfg.Temperature)
	fmt.Println()
	fmt.Printf("MySQL:              %s@%s:%d/%s\n", cfg.MySQLUser, cfg.MySQLHost, cfg.MySQLPort, cfg.MySQLDatabase)
	fmt.Printf("Session DB:         %s\n", cfg.SessionDBPath)
	fmt.Println()
	fmt.Printf("HTTP Address:       %s\n", cfg.HTTPAddr)
	fmt.Printf("Agent Max Steps:    %d\n", cfg.AgentMaxSteps)
	fmt.Printf("Agent Timeout:      %s\n", cfg.AgentTimeout)
	fmt.Printf("Debug Mode:         %t\n", cfg.Debug)
	fmt.Printf("Eino Debug:         %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Eino Debug Port:    %d\n", cfg.EinoDebugPort)
	}
}
