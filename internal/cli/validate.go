package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"acdex/internal/config"
	"acdex/internal/integrity"
	"acdex/internal/l5x"
	"acdex/internal/pipeline"
)

// ValidationSummary is the payload for validate.
type ValidationSummary struct {
	Source            string          `json:"source"`
	Mode              string          `json:"mode"` // "reserialize" or "roundtrip"
	StructurallyEqual bool            `json:"structurally_equal"`
	ByteIdentical     *bool           `json:"byte_identical,omitempty"`
	Diff              *integrity.Diff `json:"diff"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &convertFlags{}
	cmd := &cobra.Command{
		Use:   "validate <in>",
		Short: "Round-trip a file and report structural mismatches",
		Long: `Validate a file by round-tripping it through the pipeline.

For a container input: convert it, serialize the result to interchange
XML, re-parse that XML and structurally compare the two models. For an
interchange XML input: parse it, re-serialize with the document's own
root attributes and check the output byte for byte, then compare the
parsed models.

A structural mismatch exits with code 2.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, flags, args[0], cmd)
		},
	}
	flags.register(cmd)
	return cmd
}

func runValidate(opts *RootOptions, flags *convertFlags, inPath string, cmd *cobra.Command) error {
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

	var summary ValidationSummary
	if strings.EqualFold(filepath.Ext(inPath), ".l5x") {
		summary, err = validateInterchange(inPath, data)
	} else {
		summary, err = validateContainer(cmd, opts, flags, cfg, inPath, data)
	}
	if err != nil {
		return err
	}

	if err := outputValidationSummary(formatter, summary); err != nil {
		return err
	}
	if !summary.StructurallyEqual {
		return NewExitError(ExitValidation, fmt.Sprintf("round-trip validation of %s found mismatches", inPath))
	}
	return nil
}

// validateInterchange parses existing interchange XML, re-serializes it
// with the attributes recovered from the document itself, and compares
// both bytes and models.
func validateInterchange(inPath string, data []byte) (ValidationSummary, error) {
	doc, err := l5x.ParseDocument(data)
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, fmt.Sprintf("parse %s", inPath), err)
	}
	original := l5x.ProjectFromDocument(doc)

	out, err := l5x.Serialize(original, l5x.OptionsFromDocument(doc))
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, "re-serialize interchange XML", err)
	}
	identical := bytes.Equal(data, out)

	reparsed, err := l5x.Parse(out)
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, "re-parse interchange XML", err)
	}

	diff := integrity.Compare(original, reparsed)
	return ValidationSummary{
		Source:            inPath,
		Mode:              "reserialize",
		StructurallyEqual: diff.StructurallyEqual,
		ByteIdentical:     &identical,
		Diff:              diff,
	}, nil
}

// validateContainer converts a container in memory, then re-parses its
// serialized output and compares against the converted model.
func validateContainer(cmd *cobra.Command, opts *RootOptions, flags *convertFlags, cfg *config.File, inPath string, data []byte) (ValidationSummary, error) {
	ctx, cancel := conversionContext(cmd.Context(), flags, cfg)
	defer cancel()

	conv, err := pipeline.Run(ctx, inPath, data, pipelineOptions(flags, cfg))
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, fmt.Sprintf("convert %s", inPath), err)
	}

	out, err := l5x.Serialize(conv.Project, serializeOptions(flags, cfg))
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, "serialize interchange XML", err)
	}
	reparsed, err := l5x.Parse(out)
	if err != nil {
		return ValidationSummary{}, WrapExitError(ExitFatal, "re-parse interchange XML", err)
	}

	diff := integrity.Compare(conv.Project, reparsed)
	return ValidationSummary{
		Source:            inPath,
		Mode:              "roundtrip",
		StructurallyEqual: diff.StructurallyEqual,
		Diff:              diff,
	}, nil
}

func outputValidationSummary(formatter *OutputFormatter, summary ValidationSummary) error {
	if formatter.Format == "json" {
		return formatter.JSON(summary)
	}

	if summary.StructurallyEqual {
		formatter.Successf("%s round-trips cleanly (%s)", summary.Source, summary.Mode)
	} else {
		formatter.Failf("%s does not round-trip (%s)", summary.Source, summary.Mode)
		for _, delta := range summary.Diff.Deltas {
			if delta.Original != delta.Reparsed {
				fmt.Fprintf(formatter.Writer, "  %s: %d != %d\n", delta.Component, delta.Original, delta.Reparsed)
			}
		}
		for _, name := range summary.Diff.OnlyInOriginal {
			fmt.Fprintf(formatter.Writer, "  only in original: %s\n", name)
		}
		for _, name := range summary.Diff.OnlyInReparsed {
			fmt.Fprintf(formatter.Writer, "  only in reparsed: %s\n", name)
		}
	}
	if summary.ByteIdentical != nil && !*summary.ByteIdentical {
		formatter.Warnf("re-serialized bytes differ from the input file")
	}
	return nil
}
