// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/lexica/internal/platform/database/schema"
	"github.com/taibuivan/lexica/internal/platform/dberr"
	"github.com/taibuivan/lexica/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new corpus repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Registration

/*
Register writes a corpus in a single transaction.

Without a control list id a new list named after the corpus is created, the
allow-lists are stored on it and the owner is linked to it. With one, the
owner is linked to the existing list (keeping any previous link) and the
allow-lists become corpus-level overrides.
*/
func (repository *PostgresRepository) Register(ctx context.Context, registration *Registration) (int64, error) {
	var corpusID int64

	err := postgres.WithTx(ctx, repository.db, func(tx pgx.Tx) error {
		controlListID := registration.ControlListID
		ownsList := controlListID == 0

		if ownsList {
			query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1) RETURNING %s`,
				schema.ControlList.Table, schema.ControlList.Name, schema.ControlList.ID)
			if err := tx.QueryRow(ctx, query, registration.Name).Scan(&controlListID); err != nil {
				return dberr.Wrap(err, "insert_controllist")
			}
		}

		linkQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			schema.ControlListUser.Table,
			schema.ControlListUser.ControlListID, schema.ControlListUser.UserID, schema.ControlListUser.IsOwner)
		if _, err := tx.Exec(ctx, linkQuery, controlListID, registration.OwnerID, ownsList); err != nil {
			return dberr.Wrap(err, "link_controllist")
		}

		corpusQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4) RETURNING %s`,
			schema.Corpus.Table,
			schema.Corpus.Name, schema.Corpus.ControlListID, schema.Corpus.ContextLeft, schema.Corpus.ContextRight,
			schema.Corpus.ID)
		err := tx.QueryRow(ctx, corpusQuery,
			registration.Name, controlListID, registration.ContextLeft, registration.ContextRight,
		).Scan(&corpusID)
		if err != nil {
			err = dberr.Wrap(err, "insert_corpus")
			if dberr.IsUniqueViolation(err, schema.Corpus.NameKey) {
				return fmt.Errorf("%w: %w", ErrNameTaken, err)
			}
			return err
		}

		if err := copyTokens(ctx, tx, corpusID, registration.Tokens); err != nil {
			return err
		}

		if ownsList {
			err = copyAllowedValues(ctx, tx, Scope{Kind: ScopeControlList, ID: controlListID}, registration.Allowed)
		} else {
			err = copyAllowedValues(ctx, tx, Scope{Kind: ScopeCorpus, ID: corpusID}, registration.Allowed)
		}
		if err != nil {
			return err
		}

		ownerQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, TRUE)`,
			schema.CorpusUser.Table, schema.CorpusUser.CorpusID, schema.CorpusUser.UserID, schema.CorpusUser.IsOwner)
		if _, err := tx.Exec(ctx, ownerQuery, corpusID, registration.OwnerID); err != nil {
			return dberr.Wrap(err, "insert_corpususer")
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return corpusID, nil
}

func copyTokens(ctx context.Context, tx pgx.Tx, corpusID int64, tokens []WordToken) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier(schema.WordToken.Identifier()),
		schema.WordToken.CopyColumns(),
		pgx.CopyFromSlice(len(tokens), func(index int) ([]any, error) {
			token := tokens[index]
			return []any{
				corpusID, token.OrderID, token.Form,
				nullable(token.Lemma), nullable(token.POS), nullable(token.Morph),
				token.LeftContext, token.RightContext,
			}, nil
		}),
	)
	return dberr.Wrap(err, "copy_wordtokens")
}

func copyAllowedValues(ctx context.Context, tx pgx.Tx, scope Scope, lists AllowedLists) error {
	entries := lists.Entries()
	if len(entries) == 0 {
		return nil
	}

	var controlListID, corpusID *int64
	if scope.Kind == ScopeCorpus {
		corpusID = &scope.ID
	} else {
		controlListID = &scope.ID
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier(schema.AllowedValue.Identifier()),
		schema.AllowedValue.CopyColumns(),
		pgx.CopyFromSlice(len(entries), func(index int) ([]any, error) {
			entry := entries[index]
			return []any{controlListID, corpusID, string(entry.Category), entry.Value.Label, nullable(entry.Value.Readable)}, nil
		}),
	)
	return dberr.Wrap(err, "copy_allowedvalues")
}

// # Corpus Lookups

func (repository *PostgresRepository) FindByID(ctx context.Context, id int64) (*Corpus, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, l.%s, c.%s, c.%s, c.%s
		FROM %s c
		JOIN %s l ON l.%s = c.%s
		WHERE c.%s = $1`,
		schema.Corpus.ID, schema.Corpus.Name, schema.Corpus.ControlListID, schema.ControlList.Name,
		schema.Corpus.ContextLeft, schema.Corpus.ContextRight, schema.Corpus.CreatedAt,
		schema.Corpus.Table, schema.ControlList.Table,
		schema.ControlList.ID, schema.Corpus.ControlListID,
		schema.Corpus.ID,
	)

	corpus := &Corpus{}
	err := repository.db.QueryRow(ctx, query, id).Scan(
		&corpus.ID, &corpus.Name, &corpus.ControlListID, &corpus.ControlListName,
		&corpus.ContextLeft, &corpus.ContextRight, &corpus.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "find_corpus")
	}

	return corpus, nil
}

func (repository *PostgresRepository) HasAccess(ctx context.Context, corpusID int64, userID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.CorpusUser.Table, schema.CorpusUser.CorpusID, schema.CorpusUser.UserID)

	var exists bool
	if err := repository.db.QueryRow(ctx, query, corpusID, userID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "corpus_has_access")
	}
	return exists, nil
}

func (repository *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s
		FROM %s c
		JOIN %s cu ON cu.%s = c.%s
		WHERE cu.%s = $1
		ORDER BY c.%s`,
		schema.Corpus.ID, schema.Corpus.Name,
		schema.Corpus.Table, schema.CorpusUser.Table,
		schema.CorpusUser.CorpusID, schema.Corpus.ID,
		schema.CorpusUser.UserID, schema.Corpus.Name,
	)

	rows, err := repository.db.Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_user_corpora")
	}

	summaries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Summary, error) {
		var summary Summary
		err := row.Scan(&summary.ID, &summary.Name)
		return summary, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_user_corpora")
	}
	return summaries, nil
}

func (repository *PostgresRepository) CountTokens(ctx context.Context, corpusID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, schema.WordToken.Table, schema.WordToken.CorpusID)

	var count int
	if err := repository.db.QueryRow(ctx, query, corpusID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_wordtokens")
	}
	return count, nil
}

func (repository *PostgresRepository) ListTokens(ctx context.Context, corpusID int64) ([]WordToken, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), COALESCE(%s, ''), %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s`,
		schema.WordToken.OrderID, schema.WordToken.Form,
		schema.WordToken.Lemma, schema.WordToken.POS, schema.WordToken.Morph,
		schema.WordToken.LeftContext, schema.WordToken.RightContext,
		schema.WordToken.Table,
		schema.WordToken.CorpusID,
		schema.WordToken.OrderID,
	)

	rows, err := repository.db.Query(ctx, query, corpusID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_wordtokens")
	}

	tokens, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (WordToken, error) {
		var token WordToken
		err := row.Scan(&token.OrderID, &token.Form, &token.Lemma, &token.POS, &token.Morph,
			&token.LeftContext, &token.RightContext)
		return token, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_wordtokens")
	}
	return tokens, nil
}

func (repository *PostgresRepository) Owners(ctx context.Context, corpusID int64) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT a.%s
		FROM %s cu
		JOIN %s a ON a.%s = cu.%s
		WHERE cu.%s = $1 AND cu.%s
		ORDER BY a.%s`,
		schema.UserAccount.Username,
		schema.CorpusUser.Table, schema.UserAccount.Table,
		schema.UserAccount.ID, schema.CorpusUser.UserID,
		schema.CorpusUser.CorpusID, schema.CorpusUser.IsOwner,
		schema.UserAccount.Username,
	)

	rows, err := repository.db.Query(ctx, query, corpusID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_corpus_owners")
	}

	owners, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "scan_corpus_owners")
	}
	return owners, nil
}

// # Control Lists

func (repository *PostgresRepository) ControlListAccessible(ctx context.Context, controlListID int64, userID string, admin bool) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s l
			WHERE l.%s = $1
			  AND (l.%s OR $3 OR EXISTS (SELECT 1 FROM %s lu WHERE lu.%s = l.%s AND lu.%s = $2))
		)`,
		schema.ControlList.Table,
		schema.ControlList.ID,
		schema.ControlList.IsPublic, schema.ControlListUser.Table,
		schema.ControlListUser.ControlListID, schema.ControlList.ID, schema.ControlListUser.UserID,
	)

	var accessible bool
	if err := repository.db.QueryRow(ctx, query, controlListID, userID, admin).Scan(&accessible); err != nil {
		return false, dberr.Wrap(err, "controllist_accessible")
	}
	return accessible, nil
}

func (repository *PostgresRepository) ListControlLists(ctx context.Context, userID string, admin bool) ([]ControlList, error) {
	query := fmt.Sprintf(`
		SELECT l.%s, l.%s, l.%s
		FROM %s l
		WHERE l.%s OR $2 OR EXISTS (SELECT 1 FROM %s lu WHERE lu.%s = l.%s AND lu.%s = $1)
		ORDER BY l.%s, l.%s`,
		schema.ControlList.ID, schema.ControlList.Name, schema.ControlList.IsPublic,
		schema.ControlList.Table,
		schema.ControlList.IsPublic, schema.ControlListUser.Table,
		schema.ControlListUser.ControlListID, schema.ControlList.ID, schema.ControlListUser.UserID,
		schema.ControlList.Name, schema.ControlList.ID,
	)

	rows, err := repository.db.Query(ctx, query, userID, admin)
	if err != nil {
		return nil, dberr.Wrap(err, "list_controllists")
	}

	lists, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ControlList, error) {
		var list ControlList
		err := row.Scan(&list.ID, &list.Name, &list.IsPublic)
		return list, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "scan_controllists")
	}
	return lists, nil
}

// # Allowed Values

func scopeColumn(scope Scope) string {
	if scope.Kind == ScopeCorpus {
		return schema.AllowedValue.CorpusID
	}
	return schema.AllowedValue.ControlListID
}

func (repository *PostgresRepository) CountAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND %s = $2`,
		schema.AllowedValue.Table, scopeColumn(scope), schema.AllowedValue.Category)

	var count int
	if err := repository.db.QueryRow(ctx, query, scope.ID, string(allowedType)).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "count_allowedvalues")
	}
	return count, nil
}

func (repository *PostgresRepository) ListAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType) ([]AllowedValue, error) {
	query := fmt.Sprintf(`
		SELECT %s, COALESCE(%s, '')
		FROM %s
		WHERE %s = $1 AND %s = $2
		ORDER BY %s, %s`,
		schema.AllowedValue.Label, schema.AllowedValue.Readable,
		schema.AllowedValue.Table,
		scopeColumn(scope), schema.AllowedValue.Category,
		schema.AllowedValue.Label, schema.AllowedValue.ID,
	)

	return repository.queryAllowedValues(ctx, "list_allowedvalues", query, scope.ID, string(allowedType))
}

func (repository *PostgresRepository) SearchAllowedValues(ctx context.Context, scope Scope, allowedType AllowedType, prefix string, limit int) ([]AllowedValue, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT %s, COALESCE(%s, '')
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s <> '' AND %s LIKE $3 ESCAPE '\'
		ORDER BY %s
		LIMIT $4`,
		schema.AllowedValue.Label, schema.AllowedValue.Readable,
		schema.AllowedValue.Table,
		scopeColumn(scope), schema.AllowedValue.Category, schema.AllowedValue.Label, schema.AllowedValue.Label,
		schema.AllowedValue.Label,
	)

	return repository.queryAllowedValues(ctx, "search_allowedvalues", query, scope.ID, string(allowedType), likePrefix(prefix), limit)
}

func (repository *PostgresRepository) queryAllowedValues(ctx context.Context, action, query string, args ...any) ([]AllowedValue, error) {
	rows, err := repository.db.Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	values, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (AllowedValue, error) {
		var value AllowedValue
		err := row.Scan(&value.Label, &value.Readable)
		return value, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return values, nil
}

func (repository *PostgresRepository) SearchTokenValues(ctx context.Context, corpusID int64, allowedType AllowedType, prefix string, limit int) ([]string, error) {
	column := tokenColumn(allowedType)
	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM %s
		WHERE %s = $1 AND %s IS NOT NULL AND %s <> '' AND %s LIKE $2 ESCAPE '\'
		ORDER BY %s
		LIMIT $3`,
		column,
		schema.WordToken.Table,
		schema.WordToken.CorpusID, column, column, column,
		column,
	)

	rows, err := repository.db.Query(ctx, query, corpusID, likePrefix(prefix), limit)
	if err != nil {
		return nil, dberr.Wrap(err, "search_token_values")
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "scan_token_values")
	}
	return values, nil
}

func tokenColumn(allowedType AllowedType) string {
	switch allowedType {
	case AllowedMorph:
		return schema.WordToken.Morph
	case AllowedPOS:
		return schema.WordToken.POS
	default:
		return schema.WordToken.Lemma
	}
}

// # Helpers

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns user input into a LIKE pattern matching it as a literal prefix.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// nullable stores empty annotations as NULL.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
