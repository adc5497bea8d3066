package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/config"
	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/validation"
)

// Team exported for testing purposes
type Team struct {
	DB        databases.TeamDatabase
	Validator *validation.Validator
}

// TeamsHandler returns every team ordered by name
func (t Team) TeamsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	teams, err := t.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		config.ErrorStatus("failed to get teams", http.StatusInternalServerError, w, err)
		return
	}
	// Because the frontend requires that the data elements inside models.Team exist, if
	// len == 0 then we will just return an empty data object
	if len(teams) == 0 {
		teams = []models.Team{}
	}
	respondJSON(w, http.StatusOK, teams)
}

// CreateTeamHandler stores a new team
func (t Team) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	var team models.Team
	if err := json.NewDecoder(r.Body).Decode(&team); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	team.Name = strings.TrimSpace(team.Name)
	if err := t.Validator.Struct(team); err != nil {
		config.ErrorStatus("invalid team", http.StatusBadRequest, w, err)
		return
	}
	team.ID = uuid.New().String()
	team.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := t.DB.InsertOne(ctx, team); err != nil {
		config.ErrorStatus("failed to create team", http.StatusInternalServerError, w, err)
		return
	}
	respondJSON(w, http.StatusCreated, team)
}
