package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kkahadze/mkhedruli-megruli/internal/config"
	"github.com/kkahadze/mkhedruli-megruli/internal/convert"
	"github.com/kkahadze/mkhedruli-megruli/internal/translit"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "megruli",
		Short: "Mingrelian transliteration and translation tool",
		Long: `Converts Mingrelian and Georgian text between the Mkhedruli script and
its Latin romanization, and translates Mingrelian through the translation
backend.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(latinCmd())
	rootCmd.AddCommand(scriptCmd())
	rootCmd.AddCommand(autoCmd())
	rootCmd.AddCommand(detectCmd())
	rootCmd.AddCommand(tableCmd())
	rootCmd.AddCommand(convertCmd())
	rootCmd.AddCommand(translateCmd())
	rootCmd.AddCommand(prefsCmd())

	return rootCmd
}

func latinCmd() *cobra.Command {
	return textCmd("latin [text...]", "Romanize Mkhedruli text", translit.ToLatinDir)
}

func scriptCmd() *cobra.Command {
	return textCmd("script [text...]", "Convert romanized text to Mkhedruli", translit.ToScriptDir)
}

func autoCmd() *cobra.Command {
	return textCmd("auto [text...]", "Convert text in whichever direction its first letter suggests", translit.Auto)
}

// textCmd converts its arguments, or stdin when there are none.
func textCmd(use, short string, d translit.Direction) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			protect, _ := cmd.Flags().GetBool("protect")
			return runText(cmd, args, d, protect)
		},
	}
	cmd.Flags().Bool("protect", false, "Leave placeholders, format verbs and URLs unconverted")
	return cmd
}

func runText(cmd *cobra.Command, args []string, d translit.Direction, protect bool) error {
	text, fromArgs, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	tr := translit.New()
	var out string
	if protect {
		out = convert.Text(tr, text, d)
	} else {
		out = tr.Convert(text, d)
	}

	if fromArgs {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	} else {
		_, err = io.WriteString(cmd.OutOrStdout(), out)
	}
	return err
}

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect [text...]",
		Short: "Print georgian if text starts with a Mkhedruli letter, latin otherwise",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			kind := "latin"
			if translit.IsScriptText(text) {
				kind = "georgian"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), kind)
			return err
		},
	}
}

func tableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the alphabet",
		RunE: func(cmd *cobra.Command, args []string) error {
			reverse, _ := cmd.Flags().GetBool("reverse")
			return runTable(cmd.OutOrStdout(), reverse)
		},
	}
	cmd.Flags().Bool("reverse", false, "Print the decoding order used by the script command")
	return cmd
}

func runTable(w io.Writer, reverse bool) error {
	table := translit.DefaultTable()
	entries := table.ForwardEntries()
	if reverse {
		entries = table.ReverseEntries()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		if reverse {
			fmt.Fprintf(tw, "%s\t%c\tU+%04X\n", e.Latin, e.Symbol, e.Symbol)
		} else {
			fmt.Fprintf(tw, "%c\tU+%04X\t%s\n", e.Symbol, e.Symbol, e.Latin)
		}
	}
	return tw.Flush()
}

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <input-dir> <output-dir>",
		Short: "Transliterate every supported file in a directory tree",
		Long: `Walks <input-dir> for .txt, .md, .tsv and .ini files, converts their text
and writes the results under <output-dir> with the same relative paths.
Placeholders, format verbs, URLs, INI keys and TSV identifier columns are
left as they are.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, _ := cmd.Flags().GetString("to")
			workers, _ := cmd.Flags().GetInt("workers")
			return runConvert(cmd, args[0], args[1], to, workers)
		},
	}
	cmd.Flags().String("to", "auto", "Target: latin, script or auto")
	cmd.Flags().Int("workers", 0, "Concurrent workers (default WORKER_COUNT or 8)")
	return cmd
}

// runConvert handles the `convert` command.
func runConvert(cmd *cobra.Command, inputDir, outputDir, to string, workers int) error {
	d, err := translit.ParseDirection(to)
	if err != nil {
		return err
	}

	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	if workers <= 0 {
		workers = config.Load().WorkerCount
	}

	sum, err := convert.Dir(ctx, translit.New(), inputDir, outputDir, convert.Options{
		Direction: d,
		Workers:   workers,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d files, %d written, %d failed\n", sum.Files, sum.Written, sum.Failed)
	if err == nil && sum.Failed > 0 {
		err = fmt.Errorf("%d files failed to convert", sum.Failed)
	}
	return err
}

// readInput joins args, or reads all of stdin when there are no args.
func readInput(cmd *cobra.Command, args []string) (string, bool, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), true, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", false, fmt.Errorf("read stdin: %w", err)
	}
	return string(data), false, nil
}

// setupContext derives a context that is cancelled on SIGINT or SIGTERM.
func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
