package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zlisto/financial-analyst-bot/pkg/adapter"
	"github.com/zlisto/financial-analyst-bot/pkg/analysis"
	"github.com/zlisto/financial-analyst-bot/pkg/config"
	"github.com/zlisto/financial-analyst-bot/pkg/dispatch"
	"github.com/zlisto/financial-analyst-bot/pkg/notify"
	"github.com/zlisto/financial-analyst-bot/pkg/pipeline"
	"github.com/zlisto/financial-analyst-bot/pkg/report"
	"github.com/zlisto/financial-analyst-bot/pkg/schedule"
	"github.com/zlisto/financial-analyst-bot/pkg/search"
)

var (
	pipelineFile string
	adapterFlag  string
	modelFlag    string
	queryFlag    string
	outFlag      string
	runsFlag     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyst",
		Short: "Daily Bitcoin trading analysis with an LLM agent pipeline",
		Long: `Analyst searches Google News for recent Bitcoin articles, runs them
through a five-stage LLM pipeline (search, read, synthesize, recommend,
render), writes an HTML report, and optionally emails it on a daily
schedule.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&pipelineFile, "file", "f", "", "pipeline manifest path (defaults to the built-in pipeline)")
	rootCmd.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "override adapter (openai, anthropic, google, deepseek, mock)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override model")
	rootCmd.PersistentFlags().StringVar(&queryFlag, "query", "", "override search query")
	rootCmd.PersistentFlags().StringVar(&outFlag, "out", "", "report output path")
	rootCmd.PersistentFlags().StringVar(&runsFlag, "runs", "", "directory for per-run evidence records")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(dispatchCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Run the analysis pipeline and write the HTML report",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(false)
			if err != nil {
				return err
			}

			result, err := d.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Analysis complete. Report: %s (run %s)\n", d.Writer.Path(), result.RunID)
			return nil
		},
	}
}

func dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch",
		Short: "Run the pipeline and email the report once",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(true)
			if err != nil {
				return err
			}

			if err := d.Dispatch(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "Analysis complete and email sent to %s\n", d.Recipient)
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	var atFlag string
	var pollFlag time.Duration

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Dispatch immediately, then daily at a fixed time until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDispatcher(true)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			at := atFlag
			if at == "" {
				at = cfg.ScheduleAt
			}

			logger := log.New(os.Stderr, "[sched] ", log.LstdFlags)
			s, err := schedule.New(schedule.Config{
				At:           at,
				PollInterval: pollFlag,
				Logger:       logger,
			}, d.Dispatch)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&atFlag, "at", "", "daily trigger time as HH:MM (default from config)")
	cmd.Flags().DurationVar(&pollFlag, "poll", time.Minute, "trigger check interval")

	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [pipeline.yaml]",
		Short: "Validate a pipeline manifest without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			fmt.Println("Pipeline manifest is valid.")
			return nil
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available adapters, models, and key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			adapters, err := createAdapters(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, name := range []string{"openai", "anthropic", "google", "deepseek", "mock"} {
				status := "no key"
				models := ""
				if a, ok := adapters[name]; ok {
					status = "ready"
					models = formatList(a.Models())
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, models, status)
			}
			return w.Flush()
		},
	}
}

// newDispatcher loads config, checks credentials, and assembles the full
// dispatch stack. Mail settings are only required when needMail is set.
func newDispatcher(needMail bool) (*dispatch.Dispatcher, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.RequireSearch(); err != nil {
		return nil, err
	}
	if adapterFlag != "mock" {
		if err := cfg.RequireLLM(); err != nil {
			return nil, err
		}
	}
	if needMail {
		if err := cfg.RequireMail(); err != nil {
			return nil, err
		}
	}

	p, err := buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	query := queryFlag
	if query == "" {
		query = cfg.Query
	}
	reportPath := outFlag
	if reportPath == "" {
		reportPath = cfg.ReportPath
	}
	runsDir := runsFlag
	if runsDir == "" {
		runsDir = cfg.RunsDir
	}

	var sender notify.Sender
	if needMail {
		sender = notify.NewMailer(notify.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPUsername,
		}, log.New(os.Stderr, "[mail] ", log.LstdFlags))
	}

	return &dispatch.Dispatcher{
		Pipeline:  p,
		Search:    search.NewClient(cfg.SerpAPIKey),
		Writer:    report.NewWriter(reportPath, log.New(os.Stderr, "[report] ", log.LstdFlags)),
		Sender:    sender,
		Recipient: cfg.Recipient,
		Query:     query,
		RunsDir:   runsDir,
		Logger:    log.New(os.Stderr, "[dispatch] ", log.LstdFlags),
	}, nil
}

// buildPipeline returns the manifest pipeline when --file is given and the
// built-in Bitcoin pipeline otherwise, with adapters attached.
func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, error) {
	var p *pipeline.Pipeline
	if pipelineFile != "" {
		loaded, err := pipeline.LoadManifest(pipelineFile)
		if err != nil {
			return nil, err
		}
		p = loaded
	} else {
		p = analysis.BitcoinPipeline()
	}

	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, err
	}
	p.Adapters = adapters

	if adapterFlag != "" {
		if _, ok := adapters[adapterFlag]; !ok {
			return nil, fmt.Errorf("adapter %q not available", adapterFlag)
		}
		p.DefaultAdapter = adapterFlag
	}
	if p.DefaultAdapter == "" {
		p.DefaultAdapter = cfg.DefaultAdapter
	}
	if p.DefaultAdapter == "" {
		p.DefaultAdapter = pickDefaultAdapter(adapters)
	}

	if modelFlag != "" {
		p.DefaultModel = modelFlag
	} else if p.DefaultModel == "" {
		p.DefaultModel = cfg.DefaultModel
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

// pickDefaultAdapter prefers openai, matching the original analysis setup.
func pickDefaultAdapter(adapters map[string]adapter.Adapter) string {
	for _, name := range []string{"openai", "anthropic", "google", "deepseek"} {
		if _, ok := adapters[name]; ok {
			return name
		}
	}
	return "mock"
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for i := 1; i < len(items); i++ {
		result += ", " + items[i]
	}
	return result
}
