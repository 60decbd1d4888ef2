// cmd/chatbot/reindex.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"support-chatbot/internal/dataaccess"
	"support-chatbot/internal/models"
)

type productPager interface {
	ProductsAfter(ctx context.Context, afterID int64, limit int) ([]models.ProductView, error)
}

type productIndexer interface {
	IndexProducts(ctx context.Context, products []models.ProductView) (int, error)
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Copy the whole product catalogue into the Elasticsearch search index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rt, err := newRuntime(ctx, "chatbot-reindex", 5)
		if err != nil {
			return err
		}
		defer rt.close()

		if rt.index == nil {
			return fmt.Errorf("search.backend is %q, reindex needs elasticsearch", rt.cfg.Search.Backend)
		}

		indexed, err := reindexProducts(ctx, rt.catalog, rt.index, dataaccess.ProductPageSize, rt.zapLog)
		if err != nil {
			return err
		}

		rt.zapLog.Info("products indexed", zap.Int("indexed", indexed), zap.String("index", rt.cfg.Search.Index))
		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d products into %s\n", indexed, rt.cfg.Search.Index)
		return nil
	},
}

// reindexProducts walks the products table in id order, pageSize rows at a
// time, until a page comes back empty.
func reindexProducts(ctx context.Context, pager productPager, indexer productIndexer, pageSize int, log *zap.Logger) (int, error) {
	var afterID int64
	total := 0
	for {
		page, err := pager.ProductsAfter(ctx, afterID, pageSize)
		if err != nil {
			return total, err
		}
		if len(page) == 0 {
			return total, nil
		}

		n, err := indexer.IndexProducts(ctx, page)
		total += n
		if err != nil {
			return total, err
		}
		afterID = page[len(page)-1].ProductID
		log.Debug("indexed product page", zap.Int("count", n), zap.Int64("lastId", afterID))
	}
}
