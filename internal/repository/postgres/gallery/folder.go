package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"galeria/internal/domain"
	models "galeria/internal/domain/models/gallery"
	galleryRepo "galeria/internal/domain/repositories/gallery"

	"galeria/internal/repository/postgres"
)

// folderColumns is the canonical column list; scanFolder must stay in
// sync with it.
const folderColumns = "id, event_id, parent_id, name, path, depth, sort_order, child_folder_count, photo_count, is_published, share_token, published_at, created_at, updated_at"

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *postgres.RepositoryConfig) galleryRepo.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	err := row.Scan(
		&f.ID,
		&f.EventID,
		&f.ParentID,
		&f.Name,
		&f.Path,
		&f.Depth,
		&f.SortOrder,
		&f.ChildFolderCount,
		&f.PhotoCount,
		&f.IsPublished,
		&f.ShareToken,
		&f.PublishedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func qualifyColumns(alias, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// LockEventTree takes a transaction-scoped advisory lock keyed on the
// event. Every hierarchy mutation acquires it first, so cycle checks
// and subtree rewrites see a frozen tree until commit. Outside a
// transaction the lock is released immediately and provides no
// protection.
func (r *PostgresFolderRepository) LockEventTree(ctx context.Context, eventID string) error {
	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", eventID); err != nil {
		return fmt.Errorf("lock event tree: %w", err)
	}
	return nil
}

// Create inserts a new folder with its precomputed path and depth
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (event_id, parent_id, name, path, depth, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, child_folder_count, photo_count, is_published, created_at, updated_at
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.EventID,
		folder.ParentID,
		folder.Name,
		folder.Path,
		folder.Depth,
		folder.SortOrder,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(
		&folder.ID,
		&folder.ChildFolderCount,
		&folder.PhotoCount,
		&folder.IsPublished,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			existingID, queryErr := r.getExistingSiblingID(ctx, folder.EventID, folder.ParentID, folder.Name)
			if queryErr != nil {
				// Inside an aborted transaction the lookup cannot run;
				// the response just loses the occupant's ID.
				r.logger.Warn("sibling lookup after duplicate failed", "error", queryErr)
				return fmt.Errorf("folder '%s' already exists here: %w", folder.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists here", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		case postgres.IsPgForeignKeyError(err):
			if strings.Contains(postgres.ConstraintName(err), "event") {
				return fmt.Errorf("event %s: %w", folder.EventID, domain.ErrEventNotFound)
			}
			return fmt.Errorf("create folder: %w", domain.ErrParentNotFound)
		case postgres.IsPgCheckError(err):
			return fmt.Errorf("create folder: %w", domain.ErrDepthExceeded)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update persists name, parent, path, depth and sort order changes
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_id = $2, path = $3, depth = $4, sort_order = $5, updated_at = $6
		WHERE id = $7
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query,
		folder.Name,
		folder.ParentID,
		folder.Path,
		folder.Depth,
		folder.SortOrder,
		folder.UpdatedAt,
		folder.ID,
	)

	if err != nil {
		switch {
		case postgres.IsPgDuplicateError(err):
			existingID, queryErr := r.getExistingSiblingID(ctx, folder.EventID, folder.ParentID, folder.Name)
			if queryErr != nil {
				r.logger.Warn("sibling lookup after duplicate failed", "error", queryErr)
				return fmt.Errorf("folder '%s' already exists here: %w", folder.Name, domain.ErrConflict)
			}
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists here", folder.Name),
				ResourceType: "folder",
				ResourceID:   existingID,
			}
		case postgres.IsPgForeignKeyError(err):
			return fmt.Errorf("update folder: %w", domain.ErrParentNotFound)
		case postgres.IsPgCheckError(err):
			return fmt.Errorf("update folder: %w", domain.ErrDepthExceeded)
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrFolderNotFound)
	}

	return nil
}

// Delete removes a single folder row. The self-referencing and asset
// foreign keys reject deletion while contents remain; services check
// counts first, this is the backstop.
func (r *PostgresFolderRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		if postgres.IsPgForeignKeyError(err) {
			return fmt.Errorf("folder %s still has contents: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrFolderNotFound)
	}

	return nil
}

// DeleteSubtree removes a folder with all descendant folders and their
// assets in one statement, so the cascade is atomic even outside an
// explicit transaction.
func (r *PostgresFolderRepository) DeleteSubtree(ctx context.Context, rootID string) (int, int, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1
			UNION ALL
			SELECT f.id FROM %[1]s f JOIN subtree s ON f.parent_id = s.id
		),
		removed_assets AS (
			DELETE FROM %[2]s WHERE folder_id IN (SELECT id FROM subtree) RETURNING id
		),
		removed_folders AS (
			DELETE FROM %[1]s WHERE id IN (SELECT id FROM subtree) RETURNING id
		)
		SELECT
			(SELECT COUNT(*) FROM removed_folders),
			(SELECT COUNT(*) FROM removed_assets)
	`, r.tables.Folders, r.tables.Assets)

	var folders, assets int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, rootID).Scan(&folders, &assets); err != nil {
		return 0, 0, fmt.Errorf("delete subtree: %w", err)
	}

	if folders == 0 {
		return 0, 0, fmt.Errorf("folder %s: %w", rootID, domain.ErrFolderNotFound)
	}

	return folders, assets, nil
}

// ListChildren lists direct children ordered by sort_order, then name
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, eventID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []any
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE event_id = $1 AND parent_id IS NULL
			ORDER BY sort_order, name
		`, folderColumns, r.tables.Folders)
		args = []any{eventID}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE event_id = $1 AND parent_id = $2
			ORDER BY sort_order, name
		`, folderColumns, r.tables.Folders)
		args = []any{eventID, *parentID}
	}

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	return collectFolders(rows)
}

// ListSubtree returns the folder and every descendant, shallowest first
func (r *PostgresFolderRepository) ListSubtree(ctx context.Context, rootID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT %[2]s, 0 AS lvl
			FROM %[1]s
			WHERE id = $1
			UNION ALL
			SELECT %[3]s, s.lvl + 1
			FROM %[1]s f
			JOIN subtree s ON f.parent_id = s.id
		)
		SELECT %[2]s FROM subtree ORDER BY lvl, sort_order, name
	`, r.tables.Folders, folderColumns, qualifyColumns("f", folderColumns))

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, rootID)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	defer rows.Close()

	folders, err := collectFolders(rows)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("folder %s: %w", rootID, domain.ErrFolderNotFound)
	}

	return folders, nil
}

// Search finds folders by case-insensitive name substring
func (r *PostgresFolderRepository) Search(ctx context.Context, eventID, query string) ([]models.Folder, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE event_id = $1 AND name ILIKE $2
		ORDER BY path
	`, folderColumns, r.tables.Folders)

	pattern := "%" + escapeLike(query) + "%"
	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, sql, eventID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search folders: %w", err)
	}
	defer rows.Close()

	return collectFolders(rows)
}

// Stats aggregates the event's denormalized folder counters
func (r *PostgresFolderRepository) Stats(ctx context.Context, eventID string) (*models.FolderStats, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(MAX(depth), 0), COALESCE(SUM(photo_count), 0)
		FROM %s
		WHERE event_id = $1
	`, r.tables.Folders)

	var stats models.FolderStats
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, eventID).Scan(
		&stats.TotalFolders,
		&stats.MaxDepth,
		&stats.TotalPhotos,
	)
	if err != nil {
		return nil, fmt.Errorf("folder stats: %w", err)
	}

	if stats.TotalFolders > 0 {
		stats.AvgPhotosPerFolder = float64(stats.TotalPhotos) / float64(stats.TotalFolders)
	}

	return &stats, nil
}

// CountByEvent counts all folders in an event
func (r *PostgresFolderRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE event_id = $1
	`, r.tables.Folders)

	var count int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count folders: %w", err)
	}

	return count, nil
}

// GetByShareToken retrieves a folder by its share token. The database
// compares against the unique token index; missing tokens come back as
// the uniform invalid-token error.
func (r *PostgresFolderRepository) GetByShareToken(ctx context.Context, token string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE share_token = $1
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	folder, err := scanFolder(executor.QueryRow(ctx, query, token))
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("resolve share token: %w", domain.ErrInvalidShareToken)
		}
		return nil, fmt.Errorf("get folder by share token: %w", err)
	}

	return folder, nil
}

// AdjustCounts applies deltas to a folder's denormalized counters
func (r *PostgresFolderRepository) AdjustCounts(ctx context.Context, folderID string, childDelta, photoDelta int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET child_folder_count = child_folder_count + $1,
		    photo_count = photo_count + $2,
		    updated_at = NOW()
		WHERE id = $3
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, childDelta, photoDelta, folderID)
	if err != nil {
		return fmt.Errorf("adjust folder counts: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrFolderNotFound)
	}

	return nil
}

// ShiftSubtree rewrites depth and path for every descendant of rootID
// after a move. The root row itself is written by Update; this touches
// only the rows below it.
func (r *PostgresFolderRepository) ShiftSubtree(ctx context.Context, rootID string, depthDelta int, oldPrefix, newPrefix string) error {
	query := fmt.Sprintf(`
		WITH RECURSIVE subtree AS (
			SELECT id FROM %[1]s WHERE id = $1
			UNION ALL
			SELECT f.id FROM %[1]s f JOIN subtree s ON f.parent_id = s.id
		)
		UPDATE %[1]s
		SET depth = depth + $2,
		    path = $3 || substring(path FROM char_length($4::text) + 1),
		    updated_at = NOW()
		WHERE id IN (SELECT id FROM subtree) AND id <> $1
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, rootID, depthDelta, newPrefix, oldPrefix); err != nil {
		if postgres.IsPgCheckError(err) {
			return fmt.Errorf("shift subtree: %w", domain.ErrDepthExceeded)
		}
		return fmt.Errorf("shift subtree: %w", err)
	}

	return nil
}

// SetPublication updates the publish state. A nil token clears it.
func (r *PostgresFolderRepository) SetPublication(ctx context.Context, folderID string, token *string, isPublished bool, publishedAt *time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET share_token = $1, is_published = $2, published_at = $3, updated_at = NOW()
		WHERE id = $4
	`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, token, isPublished, publishedAt, folderID)
	if err != nil {
		if postgres.IsPgDuplicateError(err) {
			// Token collision against the unique index. The caller
			// regenerates and retries.
			return fmt.Errorf("share token collision: %w", domain.ErrConflict)
		}
		return fmt.Errorf("set publication: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", folderID, domain.ErrFolderNotFound)
	}

	return nil
}

// getExistingSiblingID queries for the folder occupying a name slot
func (r *PostgresFolderRepository) getExistingSiblingID(ctx context.Context, eventID string, parentID *string, name string) (string, error) {
	var query string
	var args []any
	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id FROM %s
			WHERE event_id = $1 AND parent_id IS NULL AND name = $2
		`, r.tables.Folders)
		args = []any{eventID, name}
	} else {
		query = fmt.Sprintf(`
			SELECT id FROM %s
			WHERE event_id = $1 AND parent_id = $2 AND name = $3
		`, r.tables.Folders)
		args = []any{eventID, *parentID, name}
	}

	var id string
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("get existing sibling ID: %w", err)
	}

	return id, nil
}

func collectFolders(rows pgx.Rows) ([]models.Folder, error) {
	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	// Return empty slice instead of nil if no folders
	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
