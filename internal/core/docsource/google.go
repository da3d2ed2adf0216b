package docsource

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrDocumentNotFound marks a Google document that is missing or not shared
// with the service account. The pipeline degrades to an apology response
// instead of failing the request.
var ErrDocumentNotFound = errors.New("google document not found")

// GoogleDoc is a flattened Google document with its Drive modification time.
type GoogleDoc struct {
	ID       string
	Title    string
	Text     string
	Modified time.Time
}

// GoogleFetcher loads one Google document. Satisfied by GoogleSource; tests
// substitute a fake.
type GoogleFetcher interface {
	Fetch(ctx context.Context, documentID string) (*GoogleDoc, error)
}

// GoogleSource reads documents through the Docs and Drive APIs with a
// service-account credentials file.
type GoogleSource struct {
	docs  *docs.Service
	drive *drive.Service
}

func NewGoogleSource(ctx context.Context, credsFile string) (*GoogleSource, error) {
	docsSvc, err := docs.NewService(ctx,
		option.WithCredentialsFile(credsFile),
		option.WithScopes(docs.DocumentsReadonlyScope, drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create docs service: %w", err)
	}

	driveSvc, err := drive.NewService(ctx,
		option.WithCredentialsFile(credsFile),
		option.WithScopes(drive.DriveScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &GoogleSource{docs: docsSvc, drive: driveSvc}, nil
}

// Fetch flattens the document body to plain text and reads the Drive
// modifiedTime used by the freshness check.
func (g *GoogleSource) Fetch(ctx context.Context, documentID string) (*GoogleDoc, error) {
	doc, err := g.docs.Documents.Get(documentID).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to fetch document %s: %w", documentID, err)
	}

	var text string
	if doc.Body != nil {
		text = flattenStructuralElements(doc.Body.Content)
	}

	file, err := g.drive.Files.Get(documentID).Fields("modifiedTime").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
		}
		return nil, fmt.Errorf("failed to fetch drive metadata for %s: %w", documentID, err)
	}

	modified, err := time.Parse(time.RFC3339Nano, file.ModifiedTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse modifiedTime %q: %w", file.ModifiedTime, err)
	}

	return &GoogleDoc{
		ID:       documentID,
		Title:    doc.Title,
		Text:     text,
		Modified: modified.UTC(),
	}, nil
}

// flattenStructuralElements walks the document tree: paragraphs contribute
// their text runs, tables recurse through every cell, and the table of
// contents recurses through its own content.
func flattenStructuralElements(elements []*docs.StructuralElement) string {
	var sb strings.Builder
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					sb.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					sb.WriteString(flattenStructuralElements(cell.Content))
				}
			}
		case el.TableOfContents != nil:
			sb.WriteString(flattenStructuralElements(el.TableOfContents.Content))
		}
	}
	return sb.String()
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == 404
}
