// Package indexer runs the full encoding pipeline: scan the corpus,
// resolve each instruction definition, build the relational fact tables,
// validate them against the CUE contract, evaluate the OPA policies, and
// generate the static site.
//
// Per-file failures (unreadable YAML, schema violations) never abort the
// batch; they are collected and reported at the end. The CUE fact-table
// validation IS fatal: if the tables we build do not match the contract
// the policy rules consume, that is a bug in the resolver, not in the
// corpus.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rvtools/rvenc/internal/config"
	"github.com/rvtools/rvenc/internal/facts"
	"github.com/rvtools/rvenc/internal/isa"
	"github.com/rvtools/rvenc/internal/policy"
	"github.com/rvtools/rvenc/internal/site"
	"github.com/rvtools/rvenc/internal/validator"
)

// Indexer drives one run of the pipeline over an instruction corpus.
type Indexer struct {
	// Configuration loaded from rvenc.json
	Config *config.Config

	// Verbose output
	Verbose bool

	// Progress output (lightweight, streaming)
	Progress bool

	// JSON output mode
	JSONOutput bool

	// SkipSite disables site generation (used by rvenc-facts)
	SkipSite bool

	// Timing output (JSONL)
	Timing     bool
	TimingPath string

	// Resolved instructions, sorted by name
	Resolved []isa.Resolved

	// Relational fact tables built from Resolved
	Tables facts.Tables

	// Extension identifier -> human-readable name
	Extensions map[string]string

	// Result of the last Run
	Result *IndexResult
}

// IndexResult is the structured result of a pipeline run. It can be
// serialized to JSON for programmatic consumption.
type IndexResult struct {
	Violations []policy.Violation `json:"violations"`
	Summary    ResultSummary      `json:"summary"`
	Stats      CorpusStats        `json:"stats"`
	LoadErrors []LoadError        `json:"load_errors,omitempty"`
}

// ResultSummary provides aggregate violation counts.
type ResultSummary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
}

// CorpusStats provides counts of processed elements.
type CorpusStats struct {
	Files        int `json:"files"`
	Instructions int `json:"instructions"`
	Fields       int `json:"fields"`
	Segments     int `json:"segments"`
	Diagnostics  int `json:"diagnostics"`
}

// LoadError represents a definition file that failed to load.
type LoadError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// New creates a new Indexer with default configuration.
func New() *Indexer {
	return &Indexer{
		Config: config.DefaultConfig(),
	}
}

// NewWithConfig creates a new Indexer with the given configuration.
func NewWithConfig(cfg *config.Config) *Indexer {
	idx := New()
	idx.Config = cfg
	return idx
}

// Run executes the pipeline over the corpus rooted at rootPath.
func (idx *Indexer) Run(rootPath string) error {
	runStart := time.Now()
	pipelineErrs := make([]error, 0)
	recordPipelineErr := func(err error) {
		pipelineErrs = append(pipelineErrs, err)
	}
	timing := newTimingRecorder(runStart, idx.resolveTimingPath(rootPath))
	if err := timing.Err(); err != nil {
		recordPipelineErr(fmt.Errorf("timing output disabled: %w", err))
	}
	defer timing.Close()

	// 0. Load configuration if not already loaded
	if idx.Config == nil {
		cfg, err := config.Load(rootPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		idx.Config = cfg
	}

	// Reset per-run state
	idx.Resolved = nil
	idx.Tables = facts.Tables{}
	idx.Result = nil

	// 1. Find definition files. A missing root is not fatal: the run
	// degrades to an empty corpus with a warning.
	stepStart := time.Now()
	var files []string
	if _, err := os.Stat(rootPath); err != nil {
		fmt.Fprintf(os.Stderr, "warning: corpus root %s: %v\n", rootPath, err)
	} else {
		files, err = idx.Config.ResolveCorpus(rootPath)
		if err != nil {
			return fmt.Errorf("resolving corpus: %w", err)
		}
	}
	sort.Strings(files)
	if !idx.JSONOutput {
		fmt.Printf("Found %d instruction files\n", len(files))
	}
	scanDuration := time.Since(stepStart)
	timing.RecordStage("scan", stepStart, scanDuration, "")

	// 2. Extension-name table
	extPath := idx.Config.ExtensionsFile
	if extPath != "" && !filepath.IsAbs(extPath) {
		extPath = filepath.Join(rootPath, extPath)
	}
	names, err := isa.ExtensionNames(extPath)
	if err != nil {
		recordPipelineErr(fmt.Errorf("extension names: %w", err))
		names, _ = isa.ExtensionNames("")
	}
	idx.Extensions = names

	// 3. Parallel load + resolve (with optional cache)
	stepStart = time.Now()
	v, err := validator.New()
	if err != nil {
		return fmt.Errorf("initialize CUE validator: %w", err)
	}

	var cache *resultsCache
	if cacheEnabled(idx.Config) {
		cache = newResultsCache(resolveCacheDir(rootPath, idx.Config))
		if err := cache.Load(); err != nil {
			recordPipelineErr(fmt.Errorf("cache disabled: %w", err))
			cache = nil
		}
	}

	var sem chan struct{}
	if limit := idx.Config.Analysis.MaxParallelFiles; limit > 0 {
		sem = make(chan struct{}, limit)
	}

	var wg sync.WaitGroup
	resolvedChan := make(chan isa.Resolved, len(files))
	errChan := make(chan error, len(files))
	pipelineErrChan := make(chan error, 2*len(files))
	progressEnabled := (idx.Verbose || idx.Progress) && !idx.JSONOutput
	var progressMu sync.Mutex
	progress := 0

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			fileStart := time.Now()
			var contentHash string
			if cache != nil {
				h, err := hashFile(f)
				if err != nil {
					errChan <- fmt.Errorf("%s: %w", f, err)
					return
				}
				contentHash = h
				if r, ok, err := cache.Get(f, contentHash); err == nil && ok {
					resolvedChan <- r
					timing.RecordFile("resolve", f, "cache_hit", fileStart, time.Since(fileStart))
					if progressEnabled {
						emitProgress(&progressMu, &progress, len(files), r, "cache hit")
					}
					return
				} else if err != nil {
					pipelineErrChan <- fmt.Errorf("cache read failed for %s: %w", f, err)
				}
			}

			inst, err := isa.LoadFile(f)
			if err != nil {
				errChan <- fmt.Errorf("%s: %w", f, err)
				return
			}
			if err := v.ValidateInstruction(inst); err != nil {
				errChan <- fmt.Errorf("%s: %w", f, err)
				return
			}
			r := isa.ResolveInstruction(inst)
			if cache != nil && contentHash != "" {
				if err := cache.Put(f, contentHash, r); err != nil {
					pipelineErrChan <- fmt.Errorf("cache write failed for %s: %w", f, err)
				}
			}
			timing.RecordFile("resolve", f, "resolved", fileStart, time.Since(fileStart))
			if progressEnabled {
				emitProgress(&progressMu, &progress, len(files), r, "resolved")
			}
			resolvedChan <- r
		}(file)
	}

	wg.Wait()
	close(resolvedChan)
	close(errChan)
	close(pipelineErrChan)

	var loadErrs []error
	for err := range errChan {
		loadErrs = append(loadErrs, err)
	}
	for err := range pipelineErrChan {
		recordPipelineErr(err)
	}
	for r := range resolvedChan {
		idx.Resolved = append(idx.Resolved, r)
	}
	sort.SliceStable(idx.Resolved, func(i, j int) bool {
		return idx.Resolved[i].Instruction.Name < idx.Resolved[j].Instruction.Name
	})
	if cache != nil {
		if err := cache.Save(); err != nil {
			recordPipelineErr(fmt.Errorf("cache save failed: %w", err))
		}
	}
	resolveDuration := time.Since(stepStart)
	timing.RecordStage("resolve", stepStart, resolveDuration, "")

	// 4. Fact tables + CUE contract enforcement
	stepStart = time.Now()
	idx.Tables = facts.BuildTables(idx.Resolved)
	factsValidator, err := validator.NewFactsValidator()
	if err != nil {
		return fmt.Errorf("initialize facts validator: %w", err)
	}
	if err := factsValidator.Validate(idx.Tables); err != nil {
		return fmt.Errorf("fact table contract violation: %w", err)
	}
	factsDuration := time.Since(stepStart)
	timing.RecordStage("facts", stepStart, factsDuration, "")

	// 5. Policy evaluation
	stepStart = time.Now()
	engine, err := policy.New()
	if err != nil {
		return fmt.Errorf("initialize policy engine: %w", err)
	}
	policyResult, err := engine.Evaluate(context.Background(), idx.Tables)
	if err != nil {
		return fmt.Errorf("policy evaluation failed: %w", err)
	}
	policyResult = idx.applyRuleConfig(policyResult)
	policyDuration := time.Since(stepStart)
	timing.RecordStage("policy", stepStart, policyDuration, "")

	// 6. Site generation
	stepStart = time.Now()
	var siteDuration time.Duration
	if !idx.SkipSite && idx.Config.Site.OutputDir != "" {
		outDir := idx.Config.Site.OutputDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(rootPath, outDir)
		}
		model := site.Model{
			Title:        idx.Config.Site.Title,
			Extensions:   idx.Extensions,
			Instructions: idx.Resolved,
		}
		warnings, err := site.Generate(outDir, model)
		for _, w := range warnings {
			recordPipelineErr(w)
		}
		if err != nil {
			return fmt.Errorf("generating site: %w", err)
		}
		siteDuration = time.Since(stepStart)
		timing.RecordStage("site", stepStart, siteDuration, "")
	}

	// 7. Build and emit the result
	result := IndexResult{
		Violations: []policy.Violation{},
		LoadErrors: []LoadError{},
		Stats: CorpusStats{
			Files:        len(files),
			Instructions: len(idx.Tables.Instructions),
			Fields:       len(idx.Tables.Fields),
			Segments:     len(idx.Tables.Segments),
			Diagnostics:  len(idx.Tables.Diagnostics),
		},
	}
	result.Violations = append(result.Violations, policyResult.Violations...)
	result.Summary = ResultSummary{
		TotalViolations: policyResult.Summary.TotalViolations,
		Errors:          policyResult.Summary.Errors,
		Warnings:        policyResult.Summary.Warnings,
	}
	for _, e := range loadErrs {
		result.LoadErrors = append(result.LoadErrors, LoadError{Message: e.Error()})
	}
	idx.Result = &result

	if idx.JSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
	} else {
		if len(result.Violations) > 0 {
			fmt.Printf("\n=== Policy Violations ===\n")
			for _, viol := range result.Violations {
				icon := "⚠"
				if viol.Severity == "error" {
					icon = "✗"
				}
				fmt.Printf("%s [%s] %s (%s) - %s\n", icon, viol.Rule, viol.Instruction, viol.File, viol.Message)
			}
		}

		fmt.Printf("\n=== Policy Summary ===\n")
		fmt.Printf("  Errors:   %d\n", result.Summary.Errors)
		fmt.Printf("  Warnings: %d\n", result.Summary.Warnings)

		fmt.Printf("\n=== Corpus Summary ===\n")
		fmt.Printf("  Files:        %d\n", result.Stats.Files)
		fmt.Printf("  Instructions: %d\n", result.Stats.Instructions)
		fmt.Printf("  Fields:       %d\n", result.Stats.Fields)
		fmt.Printf("  Segments:     %d\n", result.Stats.Segments)
		fmt.Printf("  Diagnostics:  %d\n", result.Stats.Diagnostics)

		if len(result.LoadErrors) > 0 {
			fmt.Printf("\n=== Load Errors ===\n")
			for _, e := range result.LoadErrors {
				fmt.Printf("  %s\n", e.Message)
			}
		}
	}

	if (idx.Verbose || idx.Progress) && !idx.JSONOutput {
		fmt.Printf("\n=== Timing Summary ===\n")
		fmt.Printf("  scan:    %s\n", formatDuration(scanDuration))
		fmt.Printf("  resolve: %s\n", formatDuration(resolveDuration))
		fmt.Printf("  facts:   %s\n", formatDuration(factsDuration))
		fmt.Printf("  policy:  %s\n", formatDuration(policyDuration))
		if siteDuration > 0 {
			fmt.Printf("  site:    %s\n", formatDuration(siteDuration))
		}
		fmt.Printf("  total:   %s\n", formatDuration(time.Since(runStart)))
	}
	timing.RecordStage("total", runStart, time.Since(runStart), "")

	if len(pipelineErrs) > 0 {
		return fmt.Errorf("pipeline errors:\n%s", formatPipelineErrors(pipelineErrs))
	}
	return nil
}

// applyRuleConfig drops disabled rules and remaps severities per the lint
// configuration, then recomputes the summary.
func (idx *Indexer) applyRuleConfig(result *policy.Result) *policy.Result {
	out := &policy.Result{Violations: make([]policy.Violation, 0, len(result.Violations))}
	for _, viol := range result.Violations {
		if !idx.Config.IsRuleEnabled(viol.Rule) {
			continue
		}
		viol.Severity = idx.Config.RuleSeverity(viol.Rule, viol.Severity)
		out.Violations = append(out.Violations, viol)
		out.Summary.TotalViolations++
		switch viol.Severity {
		case "error":
			out.Summary.Errors++
		case "warning":
			out.Summary.Warnings++
		}
	}
	return out
}

func emitProgress(mu *sync.Mutex, progress *int, total int, r isa.Resolved, status string) {
	mu.Lock()
	*progress++
	fmt.Printf("  [%d/%d] %s (%s)\n", *progress, total, r.Instruction.Name, status)
	mu.Unlock()
}

func formatPipelineErrors(errs []error) string {
	var b strings.Builder
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}

func cacheEnabled(cfg *config.Config) bool {
	if cfg == nil || cfg.Analysis.Cache.Enabled == nil {
		return false
	}
	return *cfg.Analysis.Cache.Enabled
}

func resolveCacheDir(rootPath string, cfg *config.Config) string {
	dir := cfg.Analysis.Cache.Dir
	if dir == "" {
		dir = ".rvenc_cache"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(rootPath, dir)
}

func envBool(key string) bool {
	val := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "on"
}
