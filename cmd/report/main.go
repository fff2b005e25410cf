package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dashboard"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/pkg/utilities"
)

var (
	source   string
	dataDir  string
	sections []string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the BI dashboard sections to the terminal",
	Long: "Loads the events, deals, companies and contacts tables once and prints the\n" +
		"customers, acv, retention and funnel sections.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&source, "source", "", "table source: csv, s3, warehouse or bigquery (default $DATA_SOURCE)")
	rootCmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding the CSV tables (default $DATA_DIR)")
	rootCmd.Flags().StringSliceVar(&sections, "section", nil, "sections to print: "+strings.Join(dashboard.Sections, ", ")+" (default all)")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

func run(cmd *cobra.Command, args []string) error {
	logCfg := utilities.ConfigFromEnv()
	logCfg.Stderr = true
	if os.Getenv("LOG_LEVEL") == "" {
		logCfg.Level = "warn"
	}
	lg, err := utilities.Init(logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	cfg := dataset.ConfigFromEnv()
	if source != "" {
		cfg.Source = source
	}
	if dataDir != "" {
		cfg.Dir = dataDir
	}

	ctx := cmd.Context()
	src, closeSource, err := dataset.NewSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	snap, err := dataset.NewLoader(src, sugar).Load(ctx)
	if err != nil {
		return err
	}

	content, err := dashboard.LoadContent(dashboard.ContentFileFromEnv())
	if err != nil {
		return err
	}
	return dashboard.NewReport(cmd.OutOrStdout(), content, shouldUseColor()).Write(snap, sections...)
}

func shouldUseColor() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
