package updates

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/rively/internal/pipeline"
	"github.com/JaimeStill/rively/pkg/pagination"
	"github.com/JaimeStill/rively/pkg/query"
	"github.com/JaimeStill/rively/pkg/repository"
)

type repo struct {
	db             *sql.DB
	rt             *pipeline.Runtime
	maxConcurrency int
	logger         *slog.Logger
	pagination     pagination.Config
}

// New creates a company update repository implementing the System interface.
// maxConcurrency bounds the number of pipelines IngestBatch runs at once.
func New(
	db *sql.DB,
	rt *pipeline.Runtime,
	maxConcurrency int,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &repo{
		db:             db,
		rt:             rt,
		maxConcurrency: maxConcurrency,
		logger:         logger.With("system", "updates"),
		pagination:     pagination,
	}
}

func (r *repo) Handler(maxBodySize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxBodySize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[CompanyUpdate], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "Description", "UpdateCategory")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count company updates: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanUpdate)
	if err != nil {
		return nil, fmt.Errorf("query company updates: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*CompanyUpdate, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	u, err := repository.QueryOne(ctx, r.db, q, args, scanUpdate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &u, nil
}

func (r *repo) Ingest(ctx context.Context, cmd IngestCommand) (*CompanyUpdate, error) {
	if strings.TrimSpace(cmd.Text) == "" {
		return nil, fmt.Errorf("%w: text is required", pipeline.ErrInvalidInput)
	}
	if cmd.TrackedCompanyID == "" {
		return nil, fmt.Errorf("%w: tracked_company_id is required", pipeline.ErrInvalidInput)
	}

	hash := ContentHash(cmd.Text)

	existsQ := "SELECT id FROM company_updates WHERE tracked_company_id = $1 AND content_hash = $2"
	_, err := repository.QueryOne(ctx, r.db, existsQ, []any{cmd.TrackedCompanyID, hash}, scanID)
	switch {
	case err == nil:
		r.logger.InfoContext(ctx, "duplicate update skipped",
			"tracked_company_id", cmd.TrackedCompanyID,
			"content_hash", hash,
		)
		return nil, ErrDuplicate
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	// The run and its insert are detached from caller cancellation.
	runCtx := context.WithoutCancel(ctx)

	result, err := pipeline.Execute(runCtx, r.rt, cmd.Input)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}

	if result.Draft.Title == NotUsefulTitle {
		r.logger.InfoContext(ctx, "update not useful",
			"tracked_company_id", cmd.TrackedCompanyID,
			"company", cmd.CompanyName,
		)
		return nil, ErrNotUseful
	}

	insertQ := `
		INSERT INTO company_updates(
			tracked_company_id, customer_id, title, description,
			update_type, update_category, source_type, source_url,
			actionable, usefulness_score, action_point, escalated,
			agent_name, content_hash, posted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + returning

	args := []any{
		cmd.TrackedCompanyID,
		cmd.CustomerID,
		result.Draft.Title,
		result.Draft.Description,
		result.Draft.UpdateType,
		result.Draft.UpdateCategory,
		cmd.SourceType,
		nullable(cmd.SourceURL),
		result.Draft.Actionable,
		result.Draft.UsefulnessScore,
		result.Draft.ActionPoint,
		result.Escalated,
		agentName(result),
		hash,
		cmd.PostedAt,
	}

	u, err := repository.QueryOne(runCtx, r.db, insertQ, args, scanUpdate)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.InfoContext(ctx, "company update ingested",
		"id", u.ID,
		"tracked_company_id", u.TrackedCompanyID,
		"escalated", u.Escalated,
		"usefulness_score", u.UsefulnessScore,
	)
	return &u, nil
}

func (r *repo) IngestBatch(ctx context.Context, cmds []IngestCommand) ([]BatchResult, error) {
	if len(cmds) == 0 {
		return nil, ErrEmptyBatch
	}

	results := make([]BatchResult, len(cmds))
	runCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(r.maxConcurrency)

	for i, cmd := range cmds {
		g.Go(func() error {
			u, err := r.Ingest(runCtx, cmd)
			if err != nil {
				results[i] = BatchResult{Index: i, Error: err.Error(), Status: MapHTTPStatus(err)}
				return nil
			}
			results[i] = BatchResult{Index: i, Update: u, Status: http.StatusCreated}
			return nil
		})
	}

	g.Wait()

	r.logger.InfoContext(ctx, "batch ingested", "count", len(cmds))
	return results, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM company_updates WHERE id = $1",
		id,
	); err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("company update deleted", "id", id)
	return nil
}

// ContentHash returns the hex sha256 digest used to de-duplicate update text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func agentName(result *pipeline.Result) *string {
	if result.Agent == nil || result.Decision == nil {
		return nil
	}
	name := result.Decision.AgentName
	return &name
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
