package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"acdex/internal/config"
	"acdex/internal/integrity"
	"acdex/internal/l5x"
	"acdex/internal/pipeline"
	"acdex/internal/report"
)

// convertFlags holds per-command flag state for convert and batch.
type convertFlags struct {
	ReportPath       string
	SkipComments     bool
	SkipSbRegion     bool
	Deadline         time.Duration
	SoftwareRevision string
	ExportDate       string
}

func (f *convertFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.SkipComments, "skip-comments", false, "skip decoding the Comments database")
	cmd.Flags().BoolVar(&f.SkipSbRegion, "skip-sbregion", false, "skip decoding the SbRegion database")
	cmd.Flags().DurationVar(&f.Deadline, "deadline", 0, "per-file conversion deadline (0 = none)")
	cmd.Flags().StringVar(&f.SoftwareRevision, "software-revision", "", "SoftwareRevision root attribute")
	cmd.Flags().StringVar(&f.ExportDate, "export-date", "", "fixed ExportDate root attribute (default: now)")
}

// ConvertSummary is the success payload for convert.
type ConvertSummary struct {
	Source     string          `json:"source"`
	Target     string          `json:"target"`
	ReportPath string          `json:"report_path"`
	Score      integrity.Score `json:"score"`
	Counts     report.Counts   `json:"counts"`
	Warnings   int             `json:"warnings"`
	Degraded   bool            `json:"degraded,omitempty"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a container file to interchange XML",
		Long: `Convert a proprietary container project file to interchange XML.

A machine-readable report with component counts, the preservation score
and every quarantined record is written alongside the output.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, flags, args[0], args[1], cmd)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&flags.ReportPath, "report", "", "report output path (default <out>.report.json)")
	return cmd
}

func runConvert(opts *RootOptions, flags *convertFlags, inPath, outPath string, cmd *cobra.Command) error {
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

	data, err := os.ReadFile(inPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "read input", err)
	}
	formatter.VerboseLog("read %d bytes from %s", len(data), inPath)

	ctx, cancel := conversionContext(cmd.Context(), flags, cfg)
	defer cancel()

	conv, err := pipeline.Run(ctx, inPath, data, pipelineOptions(flags, cfg))
	if err != nil {
		return WrapExitError(ExitFatal, fmt.Sprintf("convert %s", inPath), err)
	}

	xmlData, err := l5x.Serialize(conv.Project, serializeOptions(flags, cfg))
	if err != nil {
		return WrapExitError(ExitFatal, "serialize interchange XML", err)
	}
	if err := os.WriteFile(outPath, xmlData, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write output", err)
	}

	reportPath := flags.ReportPath
	if reportPath == "" {
		reportPath = outPath + ".report.json"
	}
	if err := conv.Report.WriteFile(reportPath); err != nil {
		return WrapExitError(ExitCommandError, "write report", err)
	}

	summary := ConvertSummary{
		Source:     inPath,
		Target:     outPath,
		ReportPath: reportPath,
		Score:      conv.Report.Score,
		Counts:     conv.Report.Counts,
		Warnings:   len(conv.Warnings),
		Degraded:   conv.Report.Degraded,
	}
	return outputConvertSummary(formatter, summary)
}

func outputConvertSummary(formatter *OutputFormatter, summary ConvertSummary) error {
	if formatter.Format == "json" {
		return formatter.JSON(summary)
	}

	formatter.Successf("converted %s -> %s", summary.Source, summary.Target)
	fmt.Fprintf(formatter.Writer, "  preservation: %.1f%% (%s)\n", summary.Score.Overall, summary.Score.Level)
	fmt.Fprintf(formatter.Writer, "  programs=%d routines=%d rungs=%d tags=%d modules=%d\n",
		summary.Counts.Programs, summary.Counts.Routines, summary.Counts.Rungs,
		summary.Counts.Tags, summary.Counts.Modules)
	if summary.Warnings > 0 {
		formatter.Warnf("%d warning(s), see %s", summary.Warnings, summary.ReportPath)
	}
	if summary.Degraded {
		formatter.Warnf("conversion degraded by deadline; results are partial")
	}
	return nil
}

// conversionContext applies the deadline from flag or config, flag first.
func conversionContext(parent context.Context, flags *convertFlags, cfg *config.File) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	deadline := flags.Deadline
	if deadline == 0 && cfg.DeadlineSeconds > 0 {
		deadline = time.Duration(cfg.DeadlineSeconds) * time.Second
	}
	if deadline > 0 {
		return context.WithTimeout(parent, deadline)
	}
	return context.WithCancel(parent)
}

func pipelineOptions(flags *convertFlags, cfg *config.File) pipeline.Options {
	popts := cfg.PipelineOptions()
	if flags.SkipComments {
		popts.SkipComments = true
	}
	if flags.SkipSbRegion {
		popts.SkipSbRegion = true
	}
	return popts
}

func serializeOptions(flags *convertFlags, cfg *config.File) l5x.Options {
	xmlOpts := l5x.Options{
		SoftwareRevision: flags.SoftwareRevision,
		ExportDate:       flags.ExportDate,
	}
	if xmlOpts.SoftwareRevision == "" {
		xmlOpts.SoftwareRevision = cfg.SoftwareRevision
	}
	if xmlOpts.ExportDate == "" {
		xmlOpts.ExportDate = time.Now().Format("Mon Jan 02 15:04:05 2006")
	}
	return xmlOpts
}
