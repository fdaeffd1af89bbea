// Copyright 2026 The Campus Haiti Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/campushaiti/campushaiti/internal/admission"
)

// DocumentRepository implements admission.DocumentRepository
type DocumentRepository struct {
	db *DB
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, application_id, kind, file_name, content_type, size_bytes, storage_key, uploaded_at`

func scanDocument(row pgx.Row) (*admission.Document, error) {
	var d admission.Document
	err := row.Scan(
		&d.ID, &d.ApplicationID, &d.Kind, &d.FileName,
		&d.ContentType, &d.SizeBytes, &d.StorageKey, &d.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, admission.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &d, nil
}

// Create stores document metadata
func (r *DocumentRepository) Create(ctx context.Context, doc *admission.Document) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO documents (id, application_id, kind, file_name, content_type, size_bytes, storage_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		doc.ID, doc.ApplicationID, doc.Kind, doc.FileName,
		doc.ContentType, doc.SizeBytes, doc.StorageKey, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID retrieves document metadata by ID
func (r *DocumentRepository) GetByID(ctx context.Context, documentID string) (*admission.Document, error) {
	row := r.db.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE id = $1
	`, documentID)
	return scanDocument(row)
}

// Delete removes document metadata
func (r *DocumentRepository) Delete(ctx context.Context, documentID string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM documents WHERE id = $1
	`, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return admission.ErrDocumentNotFound
	}
	return nil
}

// ListByApplication returns an application's documents
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID string) ([]*admission.Document, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents WHERE application_id = $1 ORDER BY uploaded_at
	`, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*admission.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
