// Package pipeline drives one conversion: container segmentation, record
// decoding, symbol resolution, rung decoding, model assembly, scoring and
// reporting.
//
// Stage ordering is strict. Record decoding runs concurrently across
// virtual files because each file's records are self-contained, but there
// is a hard barrier before symbol resolution: rung decoding must never see
// an incomplete symbol table.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"acdex/internal/container"
	"acdex/internal/integrity"
	"acdex/internal/model"
	"acdex/internal/recdb"
	"acdex/internal/report"
	"acdex/internal/symbol"
)

// Options configure one conversion run. Stage skips are first-class
// configuration, not runtime patching of another component's internals.
type Options struct {
	// SkipComments disables decoding of the Comments database.
	SkipComments bool
	// SkipSbRegion disables decoding of the SbRegion database.
	SkipSbRegion bool
	// MalformedWarnFraction overrides the malformed-record warning
	// threshold. Zero uses the decoder default.
	MalformedWarnFraction float64
	// SegmentBudget caps per-segment decompressed size. Zero uses the
	// container default.
	SegmentBudget int64
	// ManifestOverrides remaps segment indexes to logical names.
	ManifestOverrides map[int]string
	// Expected supplies externally known totals for scoring.
	Expected *integrity.Expected
	// Workers bounds the decode pool. Zero means min(#files, GOMAXPROCS).
	Workers int
}

// Conversion is the output of one pipeline run. Report is always
// populated, even when the run degraded on deadline.
type Conversion struct {
	Project  *model.Project
	Report   *report.Report
	Warnings []model.Warning
}

// Run converts one container. Fatal errors (unreadable container, symbol
// conflict) abort with full context; recoverable losses are accumulated
// into the report.
func Run(ctx context.Context, source string, data []byte, opts Options) (*Conversion, error) {
	rep := &report.Report{Source: source}

	// Stage 1: container segmentation.
	reader := container.Reader{
		SegmentBudget:     opts.SegmentBudget,
		ManifestOverrides: opts.ManifestOverrides,
	}
	cres, err := reader.Read(data)
	if err != nil {
		return nil, err
	}
	rep.SkippedSegments = cres.Skipped
	rep.Counts.VirtualFiles = len(cres.Files)

	// Stage 2: decode record databases, parallel across virtual files.
	decoded := make([]*recdb.Result, len(cres.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(decodeWorkers(opts.Workers, len(cres.Files)))
	for i := range cres.Files {
		vf := cres.Files[i]
		if !decodeWanted(vf.Name, opts) {
			continue
		}
		idx := i
		g.Go(func() error {
			if gctx.Err() != nil {
				// Deadline hit: skip, keep what other workers produced.
				return nil
			}
			res, err := recdb.Decode(vf, opts.MalformedWarnFraction)
			if err != nil {
				return fmt.Errorf("decode %s: %w", vf.Name, err)
			}
			decoded[idx] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		rep.Degraded = true
		rep.DegradedReason = fmt.Sprintf("decode interrupted: %v", ctx.Err())
	}

	comps := resultByName(cres.Files, decoded, "Comps")
	sbRegion := resultByName(cres.Files, decoded, "SbRegion")
	comments := resultByName(cres.Files, decoded, "Comments")
	for _, res := range decoded {
		if res == nil {
			continue
		}
		rep.Counts.Records += len(res.Records)
		rep.MalformedRecords = append(rep.MalformedRecords, res.Malformed...)
		if res.ExcessMalformed {
			rep.ExcessMalformed = append(rep.ExcessMalformed, res.File)
		}
	}

	// Stage 3: symbol resolution. Barrier above guarantees every decode
	// worker finished first.
	var compsRecords []recdb.Record
	if comps != nil {
		compsRecords = comps.Records
	}
	syms, err := symbol.Resolve(compsRecords)
	if err != nil {
		return nil, fmt.Errorf("resolve symbols from Comps: %w", err)
	}

	// Stages 4-5: rung decoding and model assembly.
	asm := assemble(comps, sbRegion, comments, syms)
	warnings := append(asm.Warnings, model.Validate(asm.Project)...)

	// Stage 7: scoring. The serializer (stage 6) is driven by callers so
	// they control output placement; both read the now-immutable model.
	score := integrity.Compute(asm.Project, opts.Expected)

	fillCounts(rep, asm)
	rep.Score = score
	rep.PartialRungs = asm.PartialRungs
	rep.Warnings = warnings
	if len(asm.InstructionCounts) > 0 {
		rep.InstructionCounts = asm.InstructionCounts
	}

	return &Conversion{Project: asm.Project, Report: rep, Warnings: warnings}, nil
}

func decodeWorkers(configured, files int) int {
	if configured > 0 {
		return configured
	}
	n := runtime.GOMAXPROCS(0)
	if files < n {
		n = files
	}
	if n < 1 {
		n = 1
	}
	return n
}

func decodeWanted(name string, opts Options) bool {
	if !recdb.Decodable(name) {
		return false
	}
	if opts.SkipComments && name == "Comments" {
		return false
	}
	if opts.SkipSbRegion && name == "SbRegion" {
		return false
	}
	return true
}

func resultByName(files []container.VirtualFile, decoded []*recdb.Result, name string) *recdb.Result {
	for i := range files {
		if files[i].Name == name {
			return decoded[i]
		}
	}
	return nil
}

func fillCounts(rep *report.Report, asm *assembly) {
	rep.QuarantinedCount = asm.QuarantinedCount
	rep.Counts.Comments = asm.CommentCount
	ctrl := asm.Project.Controller
	rep.Counts.Programs = ctrl.Programs.Len()
	for _, prog := range ctrl.Programs.All() {
		rep.Counts.Routines += prog.Routines.Len()
		for _, routine := range prog.Routines.All() {
			rep.Counts.Rungs += len(routine.Rungs)
		}
	}
	rep.Counts.Tags = ctrl.Tags.Len()
	rep.Counts.DataTypes = ctrl.DataTypes.Len()
	rep.Counts.Modules = ctrl.Modules.Len()
	rep.Counts.AddOnInstructions = ctrl.AddOnInstructions.Len()
	rep.Counts.Tasks = ctrl.Tasks.Len()
}
