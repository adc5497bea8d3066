package databases

// go generate: mockery --name TeamDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/models"
)

const teamName = "teams"

// TeamDatabase contains the methods to use with the team database
type TeamDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Team, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type teamDatabase struct {
	db DatabaseHelper
}

// NewTeamDatabase initializes a new instance of team database with the provided db connection
func NewTeamDatabase(db DatabaseHelper) TeamDatabase {
	return &teamDatabase{
		db: db,
	}
}

func (t *teamDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Team, error) {
	var teams []models.Team
	curr, err := t.db.Collection(teamName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &teams)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (t *teamDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return t.db.Collection(teamName).InsertOne(ctx, document, opts...)
}
