package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kkahadze/mkhedruli-megruli/internal/cache"
	"github.com/kkahadze/mkhedruli-megruli/internal/config"
	"github.com/kkahadze/mkhedruli-megruli/internal/prefs"
	"github.com/kkahadze/mkhedruli-megruli/internal/textutil"
	"github.com/kkahadze/mkhedruli-megruli/internal/translation"
)

func translateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate Mingrelian text through the translation backend",
		Long: `Sends Mingrelian text (arguments, or stdin when none are given) to the
translation backend and prints the romanized, Mkhedruli, Georgian and target
language forms. Results are cached in memory and, when DATABASE_URL is set,
in PostgreSQL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args)
		},
	}
	cmd.Flags().String("model", "", "Model ID (default from MEGRULI_MODEL or saved preferences)")
	cmd.Flags().String("target", "", "Target language: english or georgian")
	cmd.Flags().String("api-url", "", "Translation backend base URL")
	cmd.Flags().Bool("no-cache", false, "Skip the translation cache")
	return cmd
}

// runTranslate handles the `translate` command.
func runTranslate(cmd *cobra.Command, args []string) error {
	text, _, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Model = v
	}
	if v, _ := cmd.Flags().GetString("target"); v != "" {
		cfg.TargetLanguage = v
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")

	if !translation.ValidTargetLanguage(cfg.TargetLanguage) {
		return fmt.Errorf("unknown target language %q (want one of %s)",
			cfg.TargetLanguage, strings.Join(translation.TargetLanguages, ", "))
	}

	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	var store cache.Store
	if cfg.DatabaseURL != "" && !noCache {
		pool, err := cache.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info().Msg("Connected to PostgreSQL")

		pg := cache.NewPGStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	}
	translationCache := cache.NewTranslationCache(store)

	req := translation.Request{
		Prompt:         strings.TrimSpace(text),
		TargetLanguage: cfg.TargetLanguage,
		Model:          cfg.Model,
	}

	if !noCache {
		if res, ok := translationCache.Get(ctx, req); ok {
			log.Debug().Str("text", textutil.Truncate(req.Prompt, 30)).Msg("Cache hit")
			return printResult(cmd.OutOrStdout(), &res)
		}
	}

	client := translation.NewClient(translation.Options{
		BaseURL:         cfg.APIURL,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		Timeout:         cfg.Timeout,
	})

	log.Info().
		Str("model", req.Model).
		Str("target", req.TargetLanguage).
		Str("text", textutil.Truncate(req.Prompt, 30)).
		Msg("Translating")

	res, err := client.Translate(ctx, req, func(p translation.Progress) {
		log.Info().Float64("progress", p.Percent).Msg(p.Message)
	})
	if err != nil {
		return err
	}

	if !noCache {
		if err := translationCache.Set(ctx, req, *res); err != nil {
			log.Warn().Err(err).Msg("Failed to cache translation")
		}
	}

	return printResult(cmd.OutOrStdout(), res)
}

func printResult(w io.Writer, res *translation.Result) error {
	rows := []struct{ label, value string }{
		{"Mingrelian (Latin)", res.MingrelianLatinized},
		{"Mingrelian (Mkhedruli)", res.MingrelianMkhedruli},
		{"Georgian", res.Georgian},
		{"Georgian (Latin)", res.GeorgianLatinized()},
		{"English", res.English},
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", r.label, r.value)
	}
	return tw.Flush()
}

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change saved preferences",
	}
	cmd.AddCommand(prefsShowCmd())
	cmd.AddCommand(prefsSetCmd())
	cmd.AddCommand(prefsClearCmd())
	return cmd
}

func prefsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print saved preferences with API keys masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Load().PrefsFile
			p, err := prefs.Load(path)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "file:\t%s\n", path)
			fmt.Fprintf(tw, "model:\t%s\n", p.Model)
			fmt.Fprintf(tw, "target:\t%s\n", p.TargetLanguage)
			fmt.Fprintf(tw, "openai key:\t%s\n", prefs.Mask(p.OpenAIKey))
			fmt.Fprintf(tw, "remember openai key:\t%t\n", p.RememberOpenAI)
			fmt.Fprintf(tw, "anthropic key:\t%s\n", prefs.Mask(p.AnthropicKey))
			fmt.Fprintf(tw, "remember anthropic key:\t%t\n", p.RememberAnthropic)
			return tw.Flush()
		},
	}
}

func prefsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update saved preferences",
		Long: `Updates only the preferences whose flags are given. Passing an API key
also turns on remembering it unless the matching --remember flag says
otherwise; turning remembering off deletes the saved key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefsSet(cmd)
		},
	}
	cmd.Flags().String("model", "", "Default model ID")
	cmd.Flags().String("target", "", "Default target language")
	cmd.Flags().String("openai-key", "", "OpenAI API key")
	cmd.Flags().String("anthropic-key", "", "Anthropic API key")
	cmd.Flags().Bool("remember-openai", false, "Keep the OpenAI key between runs")
	cmd.Flags().Bool("remember-anthropic", false, "Keep the Anthropic key between runs")
	return cmd
}

// runPrefsSet handles the `prefs set` command.
func runPrefsSet(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path := config.Load().PrefsFile

	p, err := prefs.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("model") {
		model, _ := flags.GetString("model")
		known := slices.ContainsFunc(translation.Models, func(m translation.Model) bool {
			return m.ID == model
		})
		if !known {
			return fmt.Errorf("unknown model %q", model)
		}
		p.Model = model
	}
	if flags.Changed("target") {
		target, _ := flags.GetString("target")
		if !translation.ValidTargetLanguage(target) {
			return fmt.Errorf("unknown target language %q", target)
		}
		p.TargetLanguage = target
	}
	if flags.Changed("openai-key") {
		p.OpenAIKey, _ = flags.GetString("openai-key")
		p.RememberOpenAI = true
	}
	if flags.Changed("anthropic-key") {
		p.AnthropicKey, _ = flags.GetString("anthropic-key")
		p.RememberAnthropic = true
	}
	if flags.Changed("remember-openai") {
		p.RememberOpenAI, _ = flags.GetBool("remember-openai")
	}
	if flags.Changed("remember-anthropic") {
		p.RememberAnthropic, _ = flags.GetBool("remember-anthropic")
	}

	if err := prefs.Save(path, p); err != nil {
		return err
	}
	log.Info().Str("file", path).Msg("Preferences saved")
	return nil
}

func prefsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Load().PrefsFile
			if err := prefs.Clear(path); err != nil {
				return err
			}
			log.Info().Str("file", path).Msg("Preferences cleared")
			return nil
		},
	}
}
