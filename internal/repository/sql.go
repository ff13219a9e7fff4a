package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"tcg-collection-api/internal/model"
)

var (
	expansionColumns = []string{
		"id", "name", "series", "printed_total", "total",
		"legal_unlimited", "legal_standard", "legal_expanded", "ptcgo_code",
		"release_date", "updated_at", "symbol_url", "logo_url",
	}
	cardColumns = []string{
		"id", "name", "expansion_id", "number", "rarity", "supertype",
		"subtype", "hp", "types", "evolves_from", "image_url",
	}
	collectionColumns = []string{
		"id", "card_id", "name", "expansion_id", "number", "rarity", "type",
		"hp", "color", "evolves_from", "image_url", "quantity", "collection_number",
	}
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// SQLRepository implements Repository over database/sql.
// Every method acquires and releases its connection within the call.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
}

func newSQLRepository(db *sql.DB, name string) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect{name: name}}
}

// Dialect returns the store type backing the repository.
func (r *SQLRepository) Dialect() string {
	return r.dialect.name
}

func (r *SQLRepository) q(query string) string {
	return r.dialect.rebind(query)
}

// InsertExpansions inserts expansions that are not stored yet.
func (r *SQLRepository) InsertExpansions(ctx context.Context, expansions []model.Expansion) (int, error) {
	if len(expansions) == 0 {
		return 0, nil
	}

	return r.insertBatch(ctx, "expansions", expansionColumns, len(expansions), func(i int) []interface{} {
		e := expansions[i]
		return []interface{}{
			e.ID, e.Name, e.Series, e.PrintedTotal, e.Total,
			e.LegalUnlimited, e.LegalStandard, e.LegalExpanded, e.PtcgoCode,
			e.ReleaseDate, e.UpdatedAt, e.SymbolURL, e.LogoURL,
		}
	})
}

// InsertCards inserts cards that are not stored yet.
func (r *SQLRepository) InsertCards(ctx context.Context, cards []model.Card) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}

	return r.insertBatch(ctx, "cards", cardColumns, len(cards), func(i int) []interface{} {
		c := cards[i]
		return []interface{}{
			c.ID, c.Name, c.ExpansionID, c.Number, c.Rarity, c.Supertype,
			c.Subtype, c.HP, c.Types, c.EvolvesFrom, c.ImageURL,
		}
	})
}

// insertBatch runs an insert-if-absent for n rows in one transaction and
// returns the number of rows actually inserted.
func (r *SQLRepository) insertBatch(ctx context.Context, table string, columns []string, n int, args func(i int) []interface{}) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.dialect.insertIgnore(table, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for i := 0; i < n; i++ {
		values := args(i)
		result, err := stmt.ExecContext(ctx, values...)
		if err != nil {
			return 0, fmt.Errorf("failed to insert into %s (id %v): %w", table, values[0], err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to read affected rows: %w", err)
		}
		inserted += int(affected)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return inserted, nil
}

func scanExpansion(s rowScanner) (model.Expansion, error) {
	var e model.Expansion
	err := s.Scan(
		&e.ID, &e.Name, &e.Series, &e.PrintedTotal, &e.Total,
		&e.LegalUnlimited, &e.LegalStandard, &e.LegalExpanded, &e.PtcgoCode,
		&e.ReleaseDate, &e.UpdatedAt, &e.SymbolURL, &e.LogoURL,
	)
	return e, err
}

func scanCard(s rowScanner) (model.Card, error) {
	var c model.Card
	err := s.Scan(
		&c.ID, &c.Name, &c.ExpansionID, &c.Number, &c.Rarity, &c.Supertype,
		&c.Subtype, &c.HP, &c.Types, &c.EvolvesFrom, &c.ImageURL,
	)
	return c, err
}

func scanEntry(s rowScanner) (model.CollectionEntry, error) {
	var e model.CollectionEntry
	err := s.Scan(
		&e.ID, &e.CardID, &e.Name, &e.ExpansionID, &e.Number, &e.Rarity, &e.Type,
		&e.HP, &e.Color, &e.EvolvesFrom, &e.ImageURL, &e.Quantity, &e.CollectionNumber,
	)
	return e, err
}

// ListExpansions returns every stored expansion, newest first.
func (r *SQLRepository) ListExpansions(ctx context.Context) ([]model.Expansion, error) {
	query := "SELECT " + strings.Join(expansionColumns, ", ") + " FROM expansions ORDER BY release_date DESC, id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expansions: %w", err)
	}
	defer rows.Close()

	expansions := []model.Expansion{}
	for rows.Next() {
		e, err := scanExpansion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expansion: %w", err)
		}
		expansions = append(expansions, e)
	}
	return expansions, rows.Err()
}

// ExpansionExists reports whether an expansion id is stored.
func (r *SQLRepository) ExpansionExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, r.q("SELECT COUNT(*) FROM expansions WHERE id = ?"), id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check expansion: %w", err)
	}
	return count > 0, nil
}

// ExpansionIDsWithoutCards returns expansions that have no card rows yet,
// oldest first.
func (r *SQLRepository) ExpansionIDsWithoutCards(ctx context.Context) ([]string, error) {
	query := `
		SELECT e.id FROM expansions e
		WHERE NOT EXISTS (SELECT 1 FROM cards c WHERE c.expansion_id = e.id)
		ORDER BY e.release_date, e.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list expansions without cards: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan expansion id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLRepository) queryCards(ctx context.Context, query string, args ...interface{}) ([]model.Card, error) {
	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ListCardsByExpansion returns the cards of one expansion.
func (r *SQLRepository) ListCardsByExpansion(ctx context.Context, expansionID string) ([]model.Card, error) {
	query := "SELECT " + strings.Join(cardColumns, ", ") + " FROM cards WHERE expansion_id = ?"

	cards, err := r.queryCards(ctx, query, expansionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for expansion %s: %w", expansionID, err)
	}
	return cards, nil
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// SearchCards matches name by case-insensitive substring. Rarity and type
// filters compare the whole stored value case-insensitively, so a card
// typed "Fire,Water" only matches the filter "fire,water".
func (r *SQLRepository) SearchCards(ctx context.Context, filter model.SearchFilter) ([]model.Card, error) {
	var b strings.Builder
	b.WriteString("SELECT " + strings.Join(cardColumns, ", ") + " FROM cards WHERE LOWER(name) LIKE ? ESCAPE '!'")
	args := []interface{}{"%" + escapeLike(strings.ToLower(filter.Query)) + "%"}

	if filter.Rarity != "" {
		b.WriteString(" AND LOWER(rarity) = ?")
		args = append(args, strings.ToLower(filter.Rarity))
	}
	if filter.Type != "" {
		b.WriteString(" AND LOWER(types) = ?")
		args = append(args, strings.ToLower(filter.Type))
	}
	b.WriteString(" ORDER BY name, id")

	cards, err := r.queryCards(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search cards: %w", err)
	}
	return cards, nil
}

// GetCard returns a card by id, or nil when it does not exist.
func (r *SQLRepository) GetCard(ctx context.Context, id string) (*model.Card, error) {
	return getCard(ctx, r.db, r.dialect, id)
}

// queryer is the subset shared by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func getCard(ctx context.Context, db queryer, d dialect, id string) (*model.Card, error) {
	query := "SELECT " + strings.Join(cardColumns, ", ") + " FROM cards WHERE id = ?"

	c, err := scanCard(db.QueryRowContext(ctx, d.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &c, nil
}

func getEntry(ctx context.Context, db queryer, d dialect, cardID string) (*model.CollectionEntry, error) {
	query := "SELECT " + strings.Join(collectionColumns, ", ") + " FROM collection WHERE card_id = ?"

	e, err := scanEntry(db.QueryRowContext(ctx, d.rebind(query), cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collection entry: %w", err)
	}
	return &e, nil
}

// ListCollection returns every collection entry ordered by name.
func (r *SQLRepository) ListCollection(ctx context.Context) ([]model.CollectionEntry, error) {
	query := "SELECT " + strings.Join(collectionColumns, ", ") + " FROM collection ORDER BY name, card_id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	defer rows.Close()

	entries := []model.CollectionEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CollectionForExpansion left-joins the expansion's cards with the collection.
func (r *SQLRepository) CollectionForExpansion(ctx context.Context, expansionID string) ([]model.CollectionCardRow, error) {
	query := `
		SELECT c.id, c.name, c.number, c.supertype, c.types, c.rarity, c.image_url,
		       COALESCE(col.quantity, 0), col.collection_number
		FROM cards c
		LEFT JOIN collection col ON col.card_id = c.id
		WHERE c.expansion_id = ?`

	rows, err := r.db.QueryContext(ctx, r.q(query), expansionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection for expansion %s: %w", expansionID, err)
	}
	defer rows.Close()

	result := []model.CollectionCardRow{}
	for rows.Next() {
		var row model.CollectionCardRow
		if err := rows.Scan(
			&row.CardID, &row.Name, &row.Number, &row.Type, &row.Color, &row.Rarity, &row.ImageURL,
			&row.Quantity, &row.CollectionNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// AdjustQuantity applies delta to a card's owned quantity. The entry is
// created on the first positive change, updated in place while the quantity
// stays positive, and deleted when it reaches zero. A change that would
// exceed model.MaxQuantity fails with model.ErrQuantityOutOfRange and leaves
// the entry untouched.
func (r *SQLRepository) AdjustQuantity(ctx context.Context, cardID string, delta int) (*model.CollectionEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getEntry(ctx, tx, r.dialect, cardID)
	if err != nil {
		return nil, err
	}

	var result *model.CollectionEntry
	if existing == nil {
		card, err := getCard(ctx, tx, r.dialect, cardID)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
		}
		if delta <= 0 {
			return nil, nil
		}
		if err := model.CheckDelta(0, delta); err != nil {
			return nil, fmt.Errorf("card %s: %w", cardID, err)
		}

		entry := model.NewCollectionEntry(*card, model.ApplyDelta(0, delta))
		insert := "INSERT INTO collection (" + strings.Join(collectionColumns[1:], ", ") + ") VALUES (" +
			strings.TrimSuffix(strings.Repeat("?, ", len(collectionColumns)-1), ", ") + ")"
		if _, err := tx.ExecContext(ctx, r.q(insert),
			entry.CardID, entry.Name, entry.ExpansionID, entry.Number, entry.Rarity, entry.Type,
			entry.HP, entry.Color, entry.EvolvesFrom, entry.ImageURL, entry.Quantity, entry.CollectionNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to create collection entry: %w", err)
		}

		if result, err = getEntry(ctx, tx, r.dialect, cardID); err != nil {
			return nil, err
		}
	} else {
		if err := model.CheckDelta(existing.Quantity, delta); err != nil {
			return nil, fmt.Errorf("card %s: %w", cardID, err)
		}
		next := model.ApplyDelta(existing.Quantity, delta)
		if next == 0 {
			if _, err := tx.ExecContext(ctx, r.q("DELETE FROM collection WHERE card_id = ?"), cardID); err != nil {
				return nil, fmt.Errorf("failed to delete collection entry: %w", err)
			}
		} else {
			if _, err := tx.ExecContext(ctx, r.q("UPDATE collection SET quantity = ? WHERE card_id = ?"), next, cardID); err != nil {
				return nil, fmt.Errorf("failed to update collection entry: %w", err)
			}
			existing.Quantity = next
			result = existing
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TotalCollectedCards returns the sum of owned quantities.
func (r *SQLRepository) TotalCollectedCards(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, "SELECT COALESCE(SUM(quantity), 0) FROM collection")
	if err != nil {
		return 0, fmt.Errorf("failed to count collected cards: %w", err)
	}
	return n, nil
}

// TotalCollectedExpansions returns the number of distinct expansions owned.
func (r *SQLRepository) TotalCollectedExpansions(ctx context.Context) (int64, error) {
	n, err := r.count(ctx, "SELECT COUNT(DISTINCT expansion_id) FROM collection")
	if err != nil {
		return 0, fmt.Errorf("failed to count collected expansions: %w", err)
	}
	return n, nil
}

// CollectedCardsByExpansion returns owned quantities per expansion, largest first.
func (r *SQLRepository) CollectedCardsByExpansion(ctx context.Context) ([]model.ExpansionCount, error) {
	query := `
		SELECT e.name, SUM(col.quantity) AS card_count
		FROM collection col
		JOIN expansions e ON e.id = col.expansion_id
		GROUP BY e.id, e.name
		ORDER BY card_count DESC, e.name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards by expansion: %w", err)
	}
	defer rows.Close()

	counts := []model.ExpansionCount{}
	for rows.Next() {
		var c model.ExpansionCount
		if err := rows.Scan(&c.ExpansionName, &c.CardCount); err != nil {
			return nil, fmt.Errorf("failed to scan expansion count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetStats returns statistics about the catalog database.
func (r *SQLRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{
		"db_type": r.dialect.name,
	}

	for _, table := range []string{"expansions", "cards", "collection"} {
		n, err := r.count(ctx, "SELECT COUNT(*) FROM "+table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats["total_"+table] = n
	}

	if r.dialect.name == DialectSQLite {
		// Database file size (approximate from page count)
		var pageCount, pageSize int64
		if err := r.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
			log.Printf("[SQLRepository] page_count unavailable: %v", err)
		}
		if err := r.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
			log.Printf("[SQLRepository] page_size unavailable: %v", err)
		}
		stats["db_size_bytes"] = pageCount * pageSize
	}

	dbStats := r.db.Stats()
	stats["open_connections"] = dbStats.OpenConnections
	stats["in_use"] = dbStats.InUse

	return stats, nil
}

// Ping checks the database connection.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLRepository implements Repository
var _ Repository = (*SQLRepository)(nil)
