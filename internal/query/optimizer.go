package query

import (
	"context"
	"log/slog"

	"newsflow/internal/ai"
	"newsflow/internal/metrics"
	"newsflow/internal/prompt"
	"newsflow/internal/retry"
)

// Optimizer refines each keyword batch into a search-engine query through a
// text-generation call.
type Optimizer struct {
	client  ai.Client
	prompts *prompt.Store
	audit   *prompt.AuditLog
	retry   retry.Config
}

func NewOptimizer(client ai.Client, prompts *prompt.Store, audit *prompt.AuditLog, retryCfg retry.Config) *Optimizer {
	return &Optimizer{
		client:  client,
		prompts: prompts,
		audit:   audit,
		retry:   retryCfg,
	}
}

// OptimizeBatches sends every batch through the optimization prompt and
// collects the returned query strings. A batch whose call still fails after
// retries is skipped with a warning; the topic only comes up empty when no
// batch at all produced a query.
func (o *Optimizer) OptimizeBatches(ctx context.Context, batches []string) []string {
	tpl, err := o.prompts.Lookup(prompt.ModuleOptimizeQueries)
	if err != nil {
		slog.Error("cannot optimize queries", "error", err)
		return nil
	}

	var optimized []string
	for i, batch := range batches {
		rendered, unresolved := prompt.Render(tpl, map[string]any{"query": batch})
		if len(unresolved) > 0 {
			slog.Warn("prompt has unresolved placeholders", "module", prompt.ModuleOptimizeQueries, "placeholders", unresolved)
		}
		o.audit.Record(prompt.ModuleOptimizeQueries, rendered)

		var result *ai.Result
		err := retry.Do(ctx, o.retry, func() error {
			var genErr error
			result, genErr = o.client.Generate(ctx, rendered)
			return genErr
		})
		if err != nil {
			metrics.Global.IncrementGenerationFailures()
			slog.Warn("skipping keyword batch, optimization failed", "batch", i, "error", err)
			continue
		}

		optimized = append(optimized, result.Text)
	}

	return optimized
}
