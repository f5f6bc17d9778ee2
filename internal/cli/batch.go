package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"acdex/internal/config"
	"acdex/internal/l5x"
	"acdex/internal/pipeline"
	"acdex/internal/store"
)

type batchFlags struct {
	convertFlags
	Ext         string
	HistoryPath string
	NoHistory   bool
}

// BatchFileResult is the outcome for one file in a batch run.
type BatchFileResult struct {
	Source  string  `json:"source"`
	Target  string  `json:"target,omitempty"`
	Overall float64 `json:"overall,omitempty"`
	Level   string  `json:"level,omitempty"`
	Error   string  `json:"error,omitempty"`

	historyEntry *store.Entry
}

// BatchSummary is the payload for batch.
type BatchSummary struct {
	Converted int               `json:"converted"`
	Failed    int               `json:"failed"`
	History   string            `json:"history,omitempty"`
	Files     []BatchFileResult `json:"files"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &batchFlags{}
	cmd := &cobra.Command{
		Use:   "batch <in-dir> <out-dir>",
		Short: "Convert every container file in a directory",
		Long: `Convert every container file in a directory.

Each file is converted independently; a fatal error in one file is
recorded and the batch moves on. Outcomes are appended to a SQLite
history database in the output directory.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rootOpts, flags, args[0], args[1], cmd)
		},
	}
	flags.convertFlags.register(cmd)
	cmd.Flags().StringVar(&flags.Ext, "ext", ".acd", "container file extension to convert")
	cmd.Flags().StringVar(&flags.HistoryPath, "history", "", "history database path (default <out-dir>/conversions.db)")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "do not record outcomes in the history database")
	return cmd
}

func runBatch(opts *RootOptions, flags *batchFlags, inDir, outDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}

	entries, err := os.ReadDir(inDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "read input directory", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WrapExitError(ExitCommandError, "create output directory", err)
	}

	var hist *store.Store
	historyPath := ""
	if !flags.NoHistory {
		historyPath = flags.HistoryPath
		if historyPath == "" {
			historyPath = filepath.Join(outDir, "conversions.db")
		}
		hist, err = store.Open(historyPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "open history database", err)
		}
		defer hist.Close()
	}

	summary := BatchSummary{History: historyPath}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), flags.Ext) {
			continue
		}
		inPath := filepath.Join(inDir, entry.Name())
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		outPath := filepath.Join(outDir, base+".L5X")

		result := convertOne(cmd, flags, cfg, inPath, outPath)
		summary.Files = append(summary.Files, result)
		if result.Error != "" {
			summary.Failed++
			formatter.Failf("%s: %s", inPath, result.Error)
		} else {
			summary.Converted++
			formatter.VerboseLog("converted %s (%.1f%%)", inPath, result.Overall)
		}

		if hist != nil {
			if err := recordOutcome(cmd, hist, result); err != nil {
				formatter.Warnf("history: %v", err)
			}
		}
	}

	if err := outputBatchSummary(formatter, summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return NewExitError(ExitFatal, fmt.Sprintf("%d of %d file(s) failed", summary.Failed, summary.Converted+summary.Failed))
	}
	return nil
}

// convertOne runs the full conversion for a single file. Errors are
// captured in the result so the batch keeps going.
func convertOne(cmd *cobra.Command, flags *batchFlags, cfg *config.File, inPath, outPath string) BatchFileResult {
	result := BatchFileResult{Source: inPath}

	data, err := os.ReadFile(inPath)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	ctx, cancel := conversionContext(cmd.Context(), &flags.convertFlags, cfg)
	defer cancel()

	conv, err := pipeline.Run(ctx, inPath, data, pipelineOptions(&flags.convertFlags, cfg))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	xmlData, err := l5x.Serialize(conv.Project, serializeOptions(&flags.convertFlags, cfg))
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if err := os.WriteFile(outPath, xmlData, 0o644); err != nil {
		result.Error = err.Error()
		return result
	}
	if err := conv.Report.WriteFile(outPath + ".report.json"); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Target = outPath
	result.Overall = conv.Report.Score.Overall
	result.Level = string(conv.Report.Score.Level)
	result.historyEntry = &store.Entry{
		Source:       inPath,
		Target:       outPath,
		OverallScore: conv.Report.Score.Overall,
		Level:        string(conv.Report.Score.Level),
		Programs:     conv.Report.Counts.Programs,
		Routines:     conv.Report.Counts.Routines,
		Rungs:        conv.Report.Counts.Rungs,
		Tags:         conv.Report.Counts.Tags,
		Modules:      conv.Report.Counts.Modules,
		Malformed:    len(conv.Report.MalformedRecords),
		PartialRungs: len(conv.Report.PartialRungs),
		Degraded:     conv.Report.Degraded,
	}
	return result
}

func recordOutcome(cmd *cobra.Command, hist *store.Store, result BatchFileResult) error {
	entry := result.historyEntry
	if entry == nil {
		entry = &store.Entry{Source: result.Source}
	}
	return hist.RecordConversion(cmd.Context(), *entry)
}

func outputBatchSummary(formatter *OutputFormatter, summary BatchSummary) error {
	if formatter.Format == "json" {
		return formatter.JSON(summary)
	}

	if summary.Failed == 0 {
		formatter.Successf("converted %d file(s)", summary.Converted)
	} else {
		formatter.Failf("converted %d file(s), %d failed", summary.Converted, summary.Failed)
	}
	if summary.History != "" {
		fmt.Fprintf(formatter.Writer, "  history: %s\n", summary.History)
	}
	return nil
}
