package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/stackhealth/pkg/errors"
	"github.com/matzehuels/stackhealth/pkg/health"
	"github.com/matzehuels/stackhealth/pkg/pipeline"
)

// analyzeOptions holds the flags of the analyze command.
type analyzeOptions struct {
	json    bool
	refresh bool
	noCache bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <purl>...",
		Short: "Report health signals for package URLs",
		Long: `Analyze one or more components identified by package URL.

Each component is looked up on deps.dev (dependents, source repository,
scorecard) and, when its repository is hosted on GitHub, on GitHub
(contributors, activity, governance files). Results are cached.`,
		Example: `  stackhealth analyze pkg:npm/lodash@4.17.21
  stackhealth analyze pkg:pypi/requests pkg:golang/github.com/spf13/cobra --json
  stackhealth analyze pkg:cargo/serde --refresh`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached records and provider responses")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching entirely")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, w, status io.Writer, args []string, opts analyzeOptions) error {
	ids, err := parseIdentities(args)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Debug("close runner", "err", err)
		}
	}()

	prog := newProgress(c.Logger)
	runOpts := pipeline.Options{Refresh: opts.refresh}
	var spinner *Spinner
	if !opts.json {
		spinner = newSpinner(ctx, status, ids)
		runOpts.Progress = spinner.Advance
		spinner.Start()
	}
	results, failures := runner.AnalyzeMany(ctx, ids, runOpts)
	if spinner != nil {
		spinner.Stop()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if opts.json {
		if err := writeResults(w, ids, results, failures); err != nil {
			return err
		}
	} else {
		for i, id := range ids {
			if failures[i] != nil {
				printError("%s: %s", id, errs.UserMessage(failures[i]))
				continue
			}
			printRecord(w, results[i])
		}
		prog.done(fmt.Sprintf("Analyzed %d components", len(ids)))
	}
	return summarizeFailures(failures)
}

func parseIdentities(args []string) ([]health.Identity, error) {
	ids := make([]health.Identity, 0, len(args))
	for _, raw := range args {
		id, err := health.ParseIdentity(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// resultJSON is one element of the --json output.
type resultJSON struct {
	Purl       string         `json:"purl"`
	Record     *health.Record `json:"record,omitempty"`
	AnalyzedAt *time.Time     `json:"analyzed_at,omitempty"`
	CacheHit   bool           `json:"cache_hit"`
	Error      string         `json:"error,omitempty"`
	Code       errs.Code      `json:"code,omitempty"`
}

func writeResults(w io.Writer, ids []health.Identity, results []*pipeline.Result, failures []error) error {
	out := make([]resultJSON, len(ids))
	for i, id := range ids {
		out[i].Purl = id.String()
		if failures[i] != nil {
			out[i].Error = errs.UserMessage(failures[i])
			out[i].Code = errs.GetCode(failures[i])
			continue
		}
		res := results[i]
		out[i].Record = &res.Record
		out[i].AnalyzedAt = &res.AnalyzedAt
		out[i].CacheHit = res.CacheHit
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func summarizeFailures(failures []error) error {
	n := 0
	var first error
	for _, err := range failures {
		if err != nil {
			if first == nil {
				first = err
			}
			n++
		}
	}
	switch n {
	case 0:
		return nil
	case 1:
		return first
	default:
		return fmt.Errorf("%d of %d components could not be analyzed: %w", n, len(failures), first)
	}
}
