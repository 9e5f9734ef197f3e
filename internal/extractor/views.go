package extractor

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
)

func (e *Extractor) extractViews(ctx context.Context) ([]schema.View, error) {
	var views []schema.View

	err := e.queryHelper.FetchAll(ctx, e.queries.viewsQuery(), func(rows pgx.Rows) error {
		scanner := NewNullScanner()

		var view schema.View

		if err := rows.Scan(
			&view.Schema,
			&view.Name,
			scanner.String("definition"),
			scanner.String("comment"),
			scanner.String("owner"),
			scanner.String("checkOption"),
			&view.IsUpdatable,
		); err != nil {
			return util.WrapError("scan view", err)
		}

		view.Definition = strings.TrimSpace(scanner.GetString("definition"))
		view.Comment = scanner.GetString("comment")
		view.Owner = scanner.GetString("owner")

		// information_schema reports NONE when no check option is set
		if opt := scanner.GetString("checkOption"); opt != "" && opt != "NONE" {
			view.CheckOption = opt
		}

		views = append(views, view)

		return nil
	})
	if err != nil {
		return nil, util.WrapError("fetch views", err)
	}

	return views, nil
}
