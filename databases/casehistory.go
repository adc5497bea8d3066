package databases

// go generate: mockery --name CaseHistoryDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/models"
)

const caseHistoryName = "case_history"

// CaseHistoryDatabase contains the methods to use with the case history database
type CaseHistoryDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseHistory, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type caseHistoryDatabase struct {
	db DatabaseHelper
}

// NewCaseHistoryDatabase initializes a new instance of case history database with the provided db connection
func NewCaseHistoryDatabase(db DatabaseHelper) CaseHistoryDatabase {
	return &caseHistoryDatabase{
		db: db,
	}
}

func (c *caseHistoryDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseHistory, error) {
	var rows []models.CaseHistory
	curr, err := c.db.Collection(caseHistoryName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *caseHistoryDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(caseHistoryName).InsertOne(ctx, document, opts...)
}
