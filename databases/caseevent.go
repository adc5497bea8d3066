package databases

// go generate: mockery --name CaseEventDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/models"
)

const caseEventName = "case_events"

// CaseEventDatabase contains the methods to use with the legacy case events database
type CaseEventDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseEvent, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type caseEventDatabase struct {
	db DatabaseHelper
}

// NewCaseEventDatabase initializes a new instance of case event database with the provided db connection
func NewCaseEventDatabase(db DatabaseHelper) CaseEventDatabase {
	return &caseEventDatabase{
		db: db,
	}
}

func (c *caseEventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseEvent, error) {
	var events []models.CaseEvent
	curr, err := c.db.Collection(caseEventName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *caseEventDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(caseEventName).InsertOne(ctx, document, opts...)
}
