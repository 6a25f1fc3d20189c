package models

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/leden_backend/utils"
)

// Document is a polymorphic attachment row (expense receipts, company logos).
// The file itself lives in object storage under ObjectName.
type Document struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ReferenceType string    `gorm:"size:50;index:idx_document_reference" json:"reference_type"`
	ReferenceId   int       `gorm:"index:idx_document_reference" json:"reference_id"`
	ObjectName    string    `gorm:"size:255;not null" json:"object_name"`
	FileName      string    `gorm:"size:255" json:"file_name"`
	ContentType   string    `gorm:"size:100" json:"content_type"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewDocument struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type"`
	// FileData is the base64-encoded file content.
	FileData string `json:"file_data" binding:"required"`
}

// mapDocuments uploads each attachment to object storage and returns the
// rows to persist alongside the owning record.
func mapDocuments(ctx context.Context, input []*NewDocument) ([]*Document, error) {
	documents := make([]*Document, 0, len(input))
	for _, d := range input {
		contentType := d.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		objectName := fmt.Sprintf("documents/%s_%s", utils.GenerateUniqueFilename(), d.FileName)
		if err := utils.SaveFileToGCS(ctx, objectName, d.FileData, contentType); err != nil {
			return nil, err
		}
		documents = append(documents, &Document{
			ObjectName:  objectName,
			FileName:    d.FileName,
			ContentType: contentType,
		})
	}
	return documents, nil
}

// GetDocumentURL returns a short-lived signed download URL.
func GetDocumentURL(ctx context.Context, id int) (string, error) {
	document, err := utils.FetchModel[Document](ctx, id)
	if err != nil {
		return "", err
	}
	return utils.GetSignedURL(ctx, document.ObjectName, 15*time.Minute)
}
