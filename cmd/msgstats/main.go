package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Napageneral/msgstats/internal/config"
	"github.com/Napageneral/msgstats/internal/pipeline"
	"github.com/Napageneral/msgstats/internal/report"
	"github.com/Napageneral/msgstats/internal/serve"
)

var (
	version    = "dev"
	commit     = "none"
	buildDate  = "unknown"
	jsonOutput bool
)

// runFlags override config values for a single invocation.
type runFlags struct {
	chatDB    string
	outputDir string
	topN      int
	since     string
	timezone  string
}

func main() {
	flags := &runFlags{topN: -1}

	rootCmd := &cobra.Command{
		Use:   "msgstats",
		Short: "Per-contact iMessage statistics",
		Long: `Msgstats reads the local iMessage database and AddressBook,
attributes every message to a named contact, and writes per-contact
volume, trend, response-time, and activity reports for charting.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			runReport(cmd.Context(), flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Compute statistics and write report files",
		Run: func(cmd *cobra.Command, args []string) {
			runReport(cmd.Context(), flags)
		},
	}
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&flags.chatDB, "chat-db", "", "Path to chat.db")
		c.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Directory for report files")
		c.Flags().IntVar(&flags.topN, "top", -1, "Number of contacts to report (0 for all)")
		c.Flags().StringVar(&flags.since, "since", "", "Ignore messages before this date (YYYY-MM-DD)")
		c.Flags().StringVar(&flags.timezone, "tz", "", "IANA timezone for bucketing (default: local)")
	}
	rootCmd.AddCommand(runCmd)

	// version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			if jsonOutput {
				printJSON(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    buildDate,
				})
			} else {
				fmt.Printf("msgstats %s (%s, %s)\n", version, commit, buildDate)
			}
		},
	})

	// init command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Run: func(cmd *cobra.Command, args []string) {
			type Result struct {
				OK         bool   `json:"ok"`
				Message    string `json:"message,omitempty"`
				ConfigPath string `json:"config_path,omitempty"`
			}

			path, err := config.GetPath()
			if err != nil {
				fail(fmt.Sprintf("Failed to get config path: %v", err))
			}
			if _, err := os.Stat(path); err == nil {
				result := Result{OK: true, Message: "Config already exists", ConfigPath: path}
				if jsonOutput {
					printJSON(result)
				} else {
					fmt.Printf("Config already exists at %s\n", path)
				}
				return
			}
			if err := config.Default().Save(); err != nil {
				fail(fmt.Sprintf("Failed to write config: %v", err))
			}

			result := Result{OK: true, Message: "Config written", ConfigPath: path}
			if jsonOutput {
				printJSON(result)
			} else {
				fmt.Printf("Wrote default config to %s\n", path)
			}
		},
	})

	// serve command
	var port int
	var chartDir string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve report files for the chart pages",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				fail(fmt.Sprintf("Failed to load config: %v", err))
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if chartDir != "" {
				cfg.Serve.ChartDir = chartDir
			}
			if err := cfg.ValidateServe(); err != nil {
				fail(fmt.Sprintf("Invalid config: %v", err))
			}
			setupLogging(cfg.LogLevel)

			srv := serve.NewServer(serve.Options{
				Dir:      cfg.ServeDir(),
				ChartDir: cfg.Serve.ChartDir,
				Port:     cfg.Serve.Port,
				Logger:   slog.Default(),
			})
			if !jsonOutput {
				fmt.Printf("Serving %s at %s\n", cfg.ServeDir(), srv.URL())
				if cfg.Serve.ChartDir != "" {
					fmt.Printf("Charts at %schart/\n", srv.URL())
				}
			}
			if err := srv.Start(cmd.Context()); err != nil {
				fail(fmt.Sprintf("Server failed: %v", err))
			}
		},
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&chartDir, "chart-dir", "", "Directory of chart pages to mount at /chart/")
	rootCmd.AddCommand(serveCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runReport(ctx context.Context, flags *runFlags) {
	cfg, err := config.Load()
	if err != nil {
		fail(fmt.Sprintf("Failed to load config: %v", err))
	}
	cfg.Apply(flags.overrides())
	if err := cfg.ValidateRun(); err != nil {
		fail(fmt.Sprintf("Invalid config: %v", err))
	}
	setupLogging(cfg.LogLevel)

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		fail(fmt.Sprintf("Invalid config: %v", err))
	}
	opts.Logger = slog.Default()
	if !jsonOutput {
		opts.Logf = func(format string, args ...any) {
			fmt.Printf(format+"\n", args...)
		}
	}

	res, err := pipeline.Run(ctx, opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrMessageStore) {
			fail(fmt.Sprintf("Cannot read message database: %v", err))
		}
		fail(err.Error())
	}

	in := report.Input{
		Volumes:   res.Volumes,
		Monthly:   res.Monthly,
		Quarterly: res.Quarterly,
		Latency:   res.Latency,
		Heatmaps:  res.Heatmaps,
	}
	paths, err := report.WriteAll(cfg.Report.OutputDir, in, cfg.Report.TopN)
	if err != nil {
		fail(fmt.Sprintf("Failed to write reports: %v", err))
	}

	if jsonOutput {
		printJSON(struct {
			OK bool `json:"ok"`
			*pipeline.Result
			Files []string `json:"files"`
		}{OK: true, Result: res, Files: paths})
		return
	}

	fmt.Println()
	report.PrintSplitTable(os.Stdout, report.Select(in, cfg.Report.TopN).Volumes)
	fmt.Println()
	for _, p := range paths {
		fmt.Printf("Wrote %s\n", p)
	}
}

func (f *runFlags) overrides() config.Overrides {
	o := config.Overrides{
		ChatDB:    f.chatDB,
		OutputDir: f.outputDir,
		Since:     f.since,
		Timezone:  f.timezone,
	}
	if f.topN >= 0 {
		o.TopN = &f.topN
	}
	return o
}

func fail(msg string) {
	if jsonOutput {
		printJSON(map[string]any{"ok": false, "message": msg})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	// Progress goes to stdout; structured logs stay on stderr.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
