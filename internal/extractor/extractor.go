// Package extractor introspects a live database into the same object model
// the SQL parser produces, so extract output flows through the same
// canonicalizer as rendered files.
package extractor

import (
	"context"
	"errors"
	"time"

	"github.com/pgschema/pgcanon/internal/schema"
	"github.com/pgschema/pgcanon/internal/util"
	"github.com/pgschema/pgcanon/pkg/database"
)

var systemSchemas = []string{ //nolint:gochecknoglobals
	"information_schema",
	"pg_catalog",
	"pg_toast",
}

type Options struct {
	ExcludeSchemas    []string
	ExcludeExtensions []string
}

type Extractor struct {
	pool        *database.Pool
	queryHelper *database.QueryHelper
	opts        Options
	queries     *queryBuilder
}

func New(pool *database.Pool, opts Options) (*Extractor, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}

	if opts.ExcludeSchemas == nil {
		opts.ExcludeSchemas = systemSchemas
	} else {
		opts.ExcludeSchemas = append(opts.ExcludeSchemas, systemSchemas...)
	}

	if opts.ExcludeExtensions == nil {
		opts.ExcludeExtensions = []string{"plpgsql"}
	}

	return &Extractor{
		pool:        pool,
		queryHelper: database.NewQueryHelper(pool),
		opts:        opts,
		queries: &queryBuilder{
			excludeSchemas:    opts.ExcludeSchemas,
			excludeExtensions: opts.ExcludeExtensions,
		},
	}, nil
}

func (e *Extractor) Extract(ctx context.Context) (*schema.Database, error) {
	dbName, err := e.pool.CurrentDatabase(ctx)
	if err != nil {
		return nil, util.WrapError("get database name", err)
	}

	db := &schema.Database{
		Version:      schema.SchemaVersion,
		DatabaseName: dbName,
		ExtractedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	extractors := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"schemas", func(ctx context.Context) error {
			schemas, err := e.extractSchemas(ctx)
			if err != nil {
				return err
			}

			db.Schemas = schemas

			return nil
		}},
		{"extensions", func(ctx context.Context) error {
			extensions, err := e.extractExtensions(ctx)
			if err != nil {
				return err
			}

			db.Extensions = extensions

			return nil
		}},
		{"types", func(ctx context.Context) error {
			types, err := e.extractTypes(ctx)
			if err != nil {
				return err
			}

			db.Types = types

			return nil
		}},
		{"domains", func(ctx context.Context) error {
			domains, err := e.extractDomains(ctx)
			if err != nil {
				return err
			}

			db.Domains = domains

			return nil
		}},
		{"sequences", func(ctx context.Context) error {
			sequences, err := e.extractSequences(ctx)
			if err != nil {
				return err
			}

			db.Sequences = sequences

			return nil
		}},
		{"tables", func(ctx context.Context) error {
			tables, err := e.extractTables(ctx)
			if err != nil {
				return err
			}

			db.Tables = tables

			return nil
		}},
		{"views", func(ctx context.Context) error {
			views, err := e.extractViews(ctx)
			if err != nil {
				return err
			}

			db.Views = views

			return nil
		}},
		{"functions", func(ctx context.Context) error {
			functions, err := e.extractFunctions(ctx)
			if err != nil {
				return err
			}

			db.Functions = functions

			return nil
		}},
		{"triggers", func(ctx context.Context) error {
			triggers, err := e.extractTriggers(ctx)
			if err != nil {
				return err
			}

			db.Triggers = triggers

			return nil
		}},
	}

	for _, extractor := range extractors {
		if err := ctx.Err(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		if err := extractor.fn(ctx); err != nil {
			return nil, util.WrapError("extract "+extractor.name, err)
		}
	}

	db.Sort()

	return db, nil
}
