// file: internal/database/gallery.go
// version: 1.2.0
// guid: b39f5e7c-2d84-4a60-91fb-c8e61d04a725

package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/RafaelNCST/grimorium-sub002/internal/models"
)

const galleryImageSelectColumns = `id, book_id, image_path, thumbnail_path, caption, created_at`

func scanGalleryImage(scanner rowScanner, g *models.GalleryImage) error {
	var thumbnailPath, caption sql.NullString
	err := scanner.Scan(&g.ID, &g.BookID, &g.ImagePath, &thumbnailPath, &caption, &g.CreatedAt)
	if err != nil {
		return err
	}
	if thumbnailPath.Valid {
		g.ThumbnailPath = &thumbnailPath.String
	}
	if caption.Valid {
		g.Caption = &caption.String
	}
	return nil
}

// GetGalleryImagesByBookID returns a book's gallery, newest first.
func (s *Store) GetGalleryImagesByBookID(bookID string) ([]models.GalleryImage, error) {
	images := []models.GalleryImage{}
	err := s.safe("get_gallery_images", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM gallery_images
			WHERE book_id = ? ORDER BY created_at DESC`, galleryImageSelectColumns), bookID)
		if err != nil {
			return fmt.Errorf("failed to query gallery images: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g models.GalleryImage
			if err := scanGalleryImage(rows, &g); err != nil {
				return fmt.Errorf("failed to scan gallery image: %w", err)
			}
			images = append(images, g)
		}
		return rows.Err()
	})
	return images, err
}

// GetGalleryImagesByEntity returns the images linked to an entity.
func (s *Store) GetGalleryImagesByEntity(entityType, entityID string) ([]models.GalleryImage, error) {
	images := []models.GalleryImage{}
	err := s.safe("get_gallery_images_by_entity", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM gallery_images g
			JOIN gallery_links l ON l.image_id = g.id
			WHERE l.entity_type = ? AND l.entity_id = ?
			ORDER BY g.created_at DESC`,
			"g.id, g.book_id, g.image_path, g.thumbnail_path, g.caption, g.created_at"),
			entityType, entityID)
		if err != nil {
			return fmt.Errorf("failed to query linked images: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var g models.GalleryImage
			if err := scanGalleryImage(rows, &g); err != nil {
				return fmt.Errorf("failed to scan gallery image: %w", err)
			}
			images = append(images, g)
		}
		return rows.Err()
	})
	return images, err
}

// CreateGalleryImage records an uploaded image and its thumbnail.
func (s *Store) CreateGalleryImage(bookID, imagePath string, thumbnailPath, caption *string) (*models.GalleryImage, error) {
	var g models.GalleryImage
	err := s.safe("create_gallery_image", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		id, err := newULID()
		if err != nil {
			return fmt.Errorf("failed to generate image id: %w", err)
		}
		now := time.Now()
		_, err = db.Exec(`INSERT INTO gallery_images (id, book_id, image_path, thumbnail_path, caption, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, id, bookID, imagePath, thumbnailPath, caption, now)
		if err != nil {
			return fmt.Errorf("failed to create gallery image: %w", err)
		}
		g = models.GalleryImage{ID: id, BookID: bookID, ImagePath: imagePath,
			ThumbnailPath: thumbnailPath, Caption: caption, CreatedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGalleryCaption rewrites an image's caption.
func (s *Store) UpdateGalleryCaption(id string, caption *string) error {
	return s.safe("update_gallery_caption", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec("UPDATE gallery_images SET caption = ? WHERE id = ?", caption, id)
		if err != nil {
			return fmt.Errorf("failed to update caption: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteGalleryImage removes an image row, its link rows (cascade) and
// both files on disk.
func (s *Store) DeleteGalleryImage(id string) error {
	return s.safe("delete_gallery_image", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		return withTx(db, func(tx *sql.Tx) error {
			var imagePath string
			var thumbnailPath sql.NullString
			err := tx.QueryRow("SELECT image_path, thumbnail_path FROM gallery_images WHERE id = ?", id).
				Scan(&imagePath, &thumbnailPath)
			if err == sql.ErrNoRows {
				return ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to read gallery image: %w", err)
			}

			if _, err := tx.Exec("DELETE FROM gallery_images WHERE id = ?", id); err != nil {
				return fmt.Errorf("failed to delete gallery image: %w", err)
			}

			paths := []string{imagePath}
			if thumbnailPath.Valid && !strings.HasPrefix(thumbnailPath.String, "data:") {
				paths = append(paths, thumbnailPath.String)
			}
			removeAssetFiles(s.assets, paths)
			return nil
		})
	})
}

// LinkGalleryImage attaches an image to an entity. Linking twice is a
// no-op.
func (s *Store) LinkGalleryImage(imageID, entityID, entityType string) error {
	return s.safe("link_gallery_image", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO gallery_links (image_id, entity_id, entity_type)
			VALUES (?, ?, ?)`, imageID, entityID, entityType)
		if err != nil {
			return fmt.Errorf("failed to link gallery image: %w", err)
		}
		return nil
	})
}

// UnlinkGalleryImage detaches an image from an entity.
func (s *Store) UnlinkGalleryImage(imageID, entityID, entityType string) error {
	return s.safe("unlink_gallery_image", func() error {
		db, err := s.mgr.Get()
		if err != nil {
			return err
		}
		result, err := db.Exec(`DELETE FROM gallery_links
			WHERE image_id = ? AND entity_id = ? AND entity_type = ?`,
			imageID, entityID, entityType)
		if err != nil {
			return fmt.Errorf("failed to unlink gallery image: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
