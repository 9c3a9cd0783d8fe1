package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/redpenlabs/redpen/internal/cache"
	"github.com/redpenlabs/redpen/internal/config"
	"github.com/redpenlabs/redpen/internal/output"
	"github.com/redpenlabs/redpen/internal/proof"
	"github.com/redpenlabs/redpen/internal/providers"
	"github.com/redpenlabs/redpen/internal/rawlog"
)

// Shared check flags
var (
	flagProvider       string
	flagModel          string
	flagFormat         string
	flagOut            string
	flagLanguage       string
	flagFormattedFile  string
	flagMaxChunkBytes  int
	flagConcurrency    int
	flagNoCache        bool
	flagRawLogDir      string
	flagFailOnFindings bool
)

func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (gemini, openai, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagLanguage, "language", "", "Expected text language (ko, en, auto)")
	cmd.Flags().StringVar(&flagFormattedFile, "formatted", "", "File holding the formatted representation of the same content")
	cmd.Flags().IntVar(&flagMaxChunkBytes, "max-chunk-bytes", 0, "Maximum chunk size in bytes")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Maximum parallel chunk requests")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the response cache")
	cmd.Flags().StringVar(&flagRawLogDir, "raw-log-dir", "", "Directory for raw model response logs")
	cmd.Flags().BoolVar(&flagFailOnFindings, "fail-on-findings", false, "Exit nonzero when findings survive the filters")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagLanguage != "" {
		m["language"] = flagLanguage
	}
	if flagMaxChunkBytes > 0 {
		m["maxChunkBytes"] = fmt.Sprintf("%d", flagMaxChunkBytes)
	}
	if flagConcurrency > 0 {
		m["concurrency"] = fmt.Sprintf("%d", flagConcurrency)
	}
	if flagRawLogDir != "" {
		m["rawLogDir"] = flagRawLogDir
	}
	return m
}

// buildInvoker wires the provider, cache, and raw log sink for one run.
// The caller must Close the returned sink (nil sink is valid).
func buildInvoker(cfg config.Config) (*proof.Invoker, *rawlog.Sink, error) {
	p, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	cacheEnabled := cfg.Cache.Enabled && !flagNoCache
	c, err := cache.New(cacheEnabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		return nil, nil, fmt.Errorf("opening cache: %w", err)
	}

	var sink *rawlog.Sink
	if cfg.RawLogDir != "" {
		sink, err = rawlog.Open(cfg.RawLogDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening raw log: %w", err)
		}
	}

	return proof.NewInvoker(p, cfg.Model, c, sink), sink, nil
}

func buildOptions(cfg config.Config) proof.Options {
	return proof.Options{
		MaxChunkBytes: cfg.MaxChunkBytes,
		Concurrency:   cfg.Concurrency,
		Policy: proof.Policy{
			AllowMixedScript: cfg.MixedScript,
			MaxFixRatio:      cfg.MaxFixRatio,
			FixSlackRunes:    cfg.FixSlackRunes,
			Language:         cfg.Language,
		},
	}
}

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Proofread a file or stdin",
	Long:  "Proofread a text file (or stdin when no file is given) and report surviving objective errors. Use --formatted to review a second, formatted representation of the same content in the same run.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var plain []byte
		if len(args) == 1 {
			plain, err = os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", args[0], err)
				exitCode = ExitRuntimeError
				return nil
			}
		} else {
			plain, err = io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
		}

		doc := proof.Document{Plain: string(plain)}
		if flagFormattedFile != "" {
			formatted, err := os.ReadFile(flagFormattedFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", flagFormattedFile, err)
				exitCode = ExitRuntimeError
				return nil
			}
			doc.Formatted = string(formatted)
		}

		runCheck(doc, cfg)
		return nil
	},
}

func runCheck(doc proof.Document, cfg config.Config) {
	inv, sink, err := buildInvoker(cfg)
	if err != nil {
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	defer sink.Close()

	result, err := proof.Run(context.Background(), doc, inv, buildOptions(cfg))
	if err != nil {
		if proof.IsChunkingError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitUsageError
			return
		}
		if providers.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitAuthError
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if err := output.WriteResult(result, cfg.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	if result.Failed {
		exitCode = ExitRuntimeError
		return
	}
	if flagFailOnFindings && result.Summary.Counts.Total() > 0 {
		exitCode = ExitFindings
	}
}

func init() {
	addCheckFlags(checkCmd)
}
