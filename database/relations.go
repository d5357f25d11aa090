package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/kgraph/helper"
	"github.com/siherrmann/kgraph/model"
)

// RelationsDBHandlerFunctions defines the interface for relation database operations.
type RelationsDBHandlerFunctions interface {
	InsertRelation(relation *model.Relation) error
	SelectRelationsByNode(nodeID string) ([]*model.Relation, error)
	SelectAllRelations() ([]*model.Relation, error)
	DeleteRelationsByNode(nodeID string) error
	DeleteAllRelations() error
}

// RelationsDBHandler persists typed, weighted relations between nodes
type RelationsDBHandler struct {
	db *helper.Database
}

// NewRelationsDBHandler creates a new relations database handler and ensures
// the relations table exists
func NewRelationsDBHandler(db *helper.Database) (*RelationsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	h := &RelationsDBHandler{db: db}

	if err := h.CreateTable(); err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationsDBHandler")

	return h, nil
}

// CreateTable creates the 'relations' table and its indexes if they do not exist
func (h *RelationsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS relations (
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			type TEXT NOT NULL,
			weight DOUBLE PRECISION NOT NULL DEFAULT 0,
			metadata JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (source_id, target_id, type)
		);`)
	if err != nil {
		return helper.NewError("create relations table", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_relations_source ON relations (source_id);`)
	if err != nil {
		return helper.NewError("create source index", err)
	}

	_, err = h.db.Instance.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_relations_target ON relations (target_id);`)
	if err != nil {
		return helper.NewError("create target index", err)
	}

	h.db.Logger.Info("Checked/created table relations")

	return nil
}

// InsertRelation inserts a relation (or updates its weight and metadata if
// the (source, target, type) triple exists)
func (h *RelationsDBHandler) InsertRelation(relation *model.Relation) error {
	metadata := relation.Metadata
	if metadata == nil {
		metadata = model.Metadata{}
	}

	_, err := h.db.Instance.Exec(
		`INSERT INTO relations (source_id, target_id, type, weight, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_id, target_id, type) DO UPDATE SET
			weight = EXCLUDED.weight,
			metadata = EXCLUDED.metadata;`,
		relation.SourceID,
		relation.TargetID,
		string(relation.Type),
		relation.Weight,
		metadata,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectRelationsByNode retrieves all relations touching a node, as source
// or target
func (h *RelationsDBHandler) SelectRelationsByNode(nodeID string) ([]*model.Relation, error) {
	rows, err := h.db.Instance.Query(
		`SELECT source_id, target_id, type, weight, metadata
		FROM relations WHERE source_id = $1 OR target_id = $1
		ORDER BY source_id, target_id, type;`,
		nodeID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// SelectAllRelations retrieves all relations
func (h *RelationsDBHandler) SelectAllRelations() ([]*model.Relation, error) {
	rows, err := h.db.Instance.Query(
		`SELECT source_id, target_id, type, weight, metadata
		FROM relations ORDER BY source_id, target_id, type;`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanRelations(rows)
}

// DeleteRelationsByNode deletes all relations touching a node
func (h *RelationsDBHandler) DeleteRelationsByNode(nodeID string) error {
	_, err := h.db.Instance.Exec(`DELETE FROM relations WHERE source_id = $1 OR target_id = $1;`, nodeID)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteAllRelations clears the relations table
func (h *RelationsDBHandler) DeleteAllRelations() error {
	_, err := h.db.Instance.Exec(`DELETE FROM relations;`)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

func scanRelations(rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}) ([]*model.Relation, error) {
	var relations []*model.Relation
	for rows.Next() {
		relation := &model.Relation{}
		var relationType string
		metadata := model.Metadata{}

		err := rows.Scan(
			&relation.SourceID,
			&relation.TargetID,
			&relationType,
			&relation.Weight,
			&metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		relation.Type = model.RelationType(relationType)
		if len(metadata) > 0 {
			relation.Metadata = metadata
		}
		relations = append(relations, relation)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return relations, nil
}
