package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"gitlab.com/ravilima/diane/internal/database"
	"gitlab.com/ravilima/diane/internal/models"
)

// ShoppingRepository handles shopping list and list item database operations.
//
// Operations that must hold the single-active-list invariant (CreateActive,
// SetActive) deactivate and activate in successive statements; callers run
// them on a transaction so the intermediate state is never visible. A partial
// unique index on shopping_lists(active) backs the invariant up at the schema
// level.
type ShoppingRepository struct {
	db database.PGXDB
}

// NewShoppingRepository creates a new ShoppingRepository.
func NewShoppingRepository(db database.PGXDB) *ShoppingRepository {
	return &ShoppingRepository{db: db}
}

// GetAll retrieves all shopping lists with their items, most recently updated
// first.
func (r *ShoppingRepository) GetAll(ctx context.Context) ([]models.ShoppingList, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM shopping_lists
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []models.ShoppingList
	for rows.Next() {
		var list models.ShoppingList
		if err := rows.Scan(&list.ID, &list.Name, &list.Active, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shopping lists: %w", err)
	}

	for i := range lists {
		items, err := r.getItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

// GetByID retrieves one shopping list with its items.
func (r *ShoppingRepository) GetByID(ctx context.Context, id int) (*models.ShoppingList, error) {
	var list models.ShoppingList
	err := r.db.QueryRow(ctx, `
		SELECT id, name, active, created_at, updated_at
		FROM shopping_lists WHERE id = $1
	`, id).Scan(&list.ID, &list.Name, &list.Active, &list.CreatedAt, &list.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("shopping list %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	items, err := r.getItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Items = items
	return &list, nil
}

// GetActive retrieves the active shopping list with its items, or ErrNotFound
// when no list is active.
func (r *ShoppingRepository) GetActive(ctx context.Context) (*models.ShoppingList, error) {
	var id int
	err := r.db.QueryRow(ctx, `
		SELECT id FROM shopping_lists WHERE active LIMIT 1
	`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("active shopping list: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active shopping list: %w", err)
	}
	return r.GetByID(ctx, id)
}

// CreateActive creates a new list and makes it the active one, deactivating
// any previously active list.
func (r *ShoppingRepository) CreateActive(ctx context.Context, name string) (*models.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultListName
	}

	if _, err := r.db.Exec(ctx, `UPDATE shopping_lists SET active = FALSE WHERE active`); err != nil {
		return nil, fmt.Errorf("failed to deactivate lists: %w", err)
	}

	var id int
	err := r.db.QueryRow(ctx, `
		INSERT INTO shopping_lists (name, active) VALUES ($1, TRUE)
		RETURNING id
	`, name).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}
	return r.GetByID(ctx, id)
}

// SetActive activates the given list and deactivates all others.
func (r *ShoppingRepository) SetActive(ctx context.Context, listID int) error {
	if _, err := r.db.Exec(ctx, `UPDATE shopping_lists SET active = FALSE WHERE active`); err != nil {
		return fmt.Errorf("failed to deactivate lists: %w", err)
	}

	tag, err := r.db.Exec(ctx, `UPDATE shopping_lists SET active = TRUE WHERE id = $1`, listID)
	if err != nil {
		return fmt.Errorf("failed to activate list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shopping list %d: %w", listID, ErrNotFound)
	}
	return nil
}

// AddItems appends items to a list. Empty names are skipped. Returns the
// number of items inserted.
func (r *ShoppingRepository) AddItems(ctx context.Context, listID int, names []string) (int, error) {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := r.db.Exec(ctx, `
			INSERT INTO shopping_list_items (list_id, name) VALUES ($1, $2)
		`, listID, name)
		if err != nil {
			return added, fmt.Errorf("failed to add item %q: %w", name, err)
		}
		added++
	}
	if added > 0 {
		if err := r.touch(ctx, listID); err != nil {
			return added, err
		}
	}
	return added, nil
}

// CheckItemsByNames marks unchecked items whose names match the given names
// case-insensitively. Returns the matched item names (as stored) and the
// names that matched nothing.
func (r *ShoppingRepository) CheckItemsByNames(ctx context.Context, listID int, names []string) (checked, unmatched []string, err error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name FROM shopping_list_items
		WHERE list_id = $1 AND NOT checked
		ORDER BY id
	`, listID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query unchecked items: %w", err)
	}
	defer rows.Close()

	type item struct {
		id   int
		name string
	}
	byLower := make(map[string]item)
	for rows.Next() {
		var it item
		if err := rows.Scan(&it.id, &it.name); err != nil {
			return nil, nil, fmt.Errorf("failed to scan item: %w", err)
		}
		lower := strings.ToLower(it.name)
		if _, ok := byLower[lower]; !ok {
			byLower[lower] = it
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating items: %w", err)
	}

	done := make(map[int]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		it, ok := byLower[strings.ToLower(name)]
		if !ok || done[it.id] {
			if !ok {
				unmatched = append(unmatched, name)
			}
			continue
		}
		if _, err := r.db.Exec(ctx, `
			UPDATE shopping_list_items SET checked = TRUE WHERE id = $1
		`, it.id); err != nil {
			return checked, unmatched, fmt.Errorf("failed to check item %q: %w", it.name, err)
		}
		done[it.id] = true
		checked = append(checked, it.name)
	}

	if len(checked) > 0 {
		if err := r.touch(ctx, listID); err != nil {
			return checked, unmatched, err
		}
	}
	return checked, unmatched, nil
}

// ToggleItem flips one item's checked state and returns the new value.
func (r *ShoppingRepository) ToggleItem(ctx context.Context, listID, itemID int) (bool, error) {
	var checked bool
	err := r.db.QueryRow(ctx, `
		UPDATE shopping_list_items SET checked = NOT checked
		WHERE id = $1 AND list_id = $2
		RETURNING checked
	`, itemID, listID).Scan(&checked)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("item %d on list %d: %w", itemID, listID, ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle item: %w", err)
	}
	if err := r.touch(ctx, listID); err != nil {
		return checked, err
	}
	return checked, nil
}

// UpdateList renames a list.
func (r *ShoppingRepository) UpdateList(ctx context.Context, listID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultListName
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE shopping_lists SET name = $2, updated_at = NOW() WHERE id = $1
	`, listID, name)
	if err != nil {
		return fmt.Errorf("failed to update shopping list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shopping list %d: %w", listID, ErrNotFound)
	}
	return nil
}

// DeleteList removes a list; its items cascade.
func (r *ShoppingRepository) DeleteList(ctx context.Context, listID int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM shopping_lists WHERE id = $1`, listID)
	if err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("shopping list %d: %w", listID, ErrNotFound)
	}
	return nil
}

// UpdateItem renames one item.
func (r *ShoppingRepository) UpdateItem(ctx context.Context, listID, itemID int, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("item name must not be empty: %w", ErrConflict)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE shopping_list_items SET name = $3 WHERE id = $2 AND list_id = $1
	`, listID, itemID, name)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d on list %d: %w", itemID, listID, ErrNotFound)
	}
	return r.touch(ctx, listID)
}

// DeleteItem removes one item from a list.
func (r *ShoppingRepository) DeleteItem(ctx context.Context, listID, itemID int) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM shopping_list_items WHERE id = $2 AND list_id = $1
	`, listID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item %d on list %d: %w", itemID, listID, ErrNotFound)
	}
	return r.touch(ctx, listID)
}

func (r *ShoppingRepository) getItems(ctx context.Context, listID int) ([]models.ShoppingListItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, list_id, name, checked, created_at
		FROM shopping_list_items
		WHERE list_id = $1
		ORDER BY id
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.ShoppingListItem
	for rows.Next() {
		var it models.ShoppingListItem
		if err := rows.Scan(&it.ID, &it.ListID, &it.Name, &it.Checked, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

func (r *ShoppingRepository) touch(ctx context.Context, listID int) error {
	if _, err := r.db.Exec(ctx, `
		UPDATE shopping_lists SET updated_at = NOW() WHERE id = $1
	`, listID); err != nil {
		return fmt.Errorf("failed to touch shopping list: %w", err)
	}
	return nil
}
