package centralign

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/codeBunny2022/CentrAlignWebapp/application/handler/indexing"
	"github.com/codeBunny2022/CentrAlignWebapp/domain/task"
)

// registerHandlers registers all task handlers with the worker registry.
func (c *Client) registerHandlers() error {
	embedForm, err := indexing.NewEmbedForm(c.formStore, c.indexer, c.logger)
	if err != nil {
		return fmt.Errorf("embed form handler: %w", err)
	}
	c.registry.Register(task.OperationEmbedForm, embedForm)

	backfill, err := indexing.NewBackfillEmbeddings(c.formStore, c.indexer, c.logger)
	if err != nil {
		return fmt.Errorf("backfill handler: %w", err)
	}
	c.registry.Register(task.OperationBackfillEmbeddings, backfill)

	c.logger.Info("registered task handlers", slog.Int("count", len(c.registry.Operations())))
	return nil
}

// validateHandlers checks that every queue operation has a registered handler.
// Returns an error listing missing operations.
func (c *Client) validateHandlers() error {
	var missing []string
	for _, op := range task.AllOperations() {
		if !c.registry.HasHandler(op) {
			missing = append(missing, op.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing handlers for operations: [%s]", strings.Join(missing, ", "))
}

// buildDatabaseURL constructs the database URL from configuration.
func buildDatabaseURL(cfg *clientConfig) (string, error) {
	switch cfg.database {
	case databaseSQLite:
		return "sqlite:///" + cfg.dbPath, nil
	case databasePostgres:
		return cfg.dbDSN, nil
	default:
		return "", ErrNoDatabase
	}
}
