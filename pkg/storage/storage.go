package storage

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/fitcharts/pkg/dataset"
	"github.com/matzehuels/fitcharts/pkg/errors"
	"github.com/matzehuels/fitcharts/pkg/pipeline"
)

// DefaultOwner is used when a document is saved without an owner.
const DefaultOwner = "anonymous"

// ErrNotFound is returned when a chart does not exist.
var ErrNotFound = errors.New(errors.ErrCodeChartNotFound, "chart not found")

// Document is a saved chart.
type Document struct {
	ID        string           `json:"id" bson:"_id"`
	Owner     string           `json:"owner" bson:"owner"`
	Name      string           `json:"name" bson:"name"`
	Options   pipeline.Options `json:"options" bson:"options"`
	Records   []dataset.Record `json:"records" bson:"records"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// Store persists chart documents.
type Store interface {
	// Get returns the document with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Put inserts or replaces doc. An empty ID is assigned a new UUID and
	// CreatedAt is preserved across replacements. Put updates doc in place.
	Put(ctx context.Context, doc *Document) error

	// Delete removes the document with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns an owner's documents, most recently updated first.
	List(ctx context.Context, owner string) ([]*Document, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

// prepare validates doc and fills ID, Owner and timestamps before a write.
func prepare(doc *Document, now time.Time) error {
	if doc == nil {
		return errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	} else if err := errors.ValidateChartID(doc.ID); err != nil {
		return err
	}
	if doc.Owner == "" {
		doc.Owner = DefaultOwner
	}
	if err := errors.ValidateName(doc.Name); err != nil {
		return err
	}
	if doc.Records == nil {
		doc.Records = []dataset.Record{}
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return nil
}

// clone copies doc deeply enough that callers cannot mutate stored records.
func clone(doc *Document) *Document {
	c := *doc
	c.Options.Formats = append([]string(nil), doc.Options.Formats...)
	c.Records = make([]dataset.Record, len(doc.Records))
	for i, r := range doc.Records {
		c.Records[i] = maps.Clone(r)
	}
	return &c
}
