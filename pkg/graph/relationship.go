package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// RelationshipService projects relationship rows into graph edges
type RelationshipService struct {
	client *Client
	logger ectologger.Logger
}

// NewRelationshipService creates a new relationship service
func NewRelationshipService(client *Client, logger ectologger.Logger) *RelationshipService {
	return &RelationshipService{
		client: client,
		logger: logger,
	}
}

// EdgeType returns the Cypher edge type for a relationship category
func EdgeType(categoryID int) string {
	name, ok := models.CategoryNames[categoryID]
	if !ok {
		return "GENERIC"
	}

	// "Service/Transaction" -> "SERVICETRANSACTION" etc.
	result := ""
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z':
			result += string(c - 32)
		case (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_':
			result += string(c)
		}
	}
	if result == "" {
		return "GENERIC"
	}
	return result
}

// CreateOrUpdate creates or updates the edge for a relationship. When the
// row's endpoints changed (a merge repointed the relationship), the stale
// edge between the old endpoints is dropped before the new one is merged.
func (s *RelationshipService) CreateOrUpdate(ctx context.Context, rel *models.Relationship) error {
	ctx, span := tracing.StartSpan(ctx, "graph.RelationshipService.CreateOrUpdate")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"relationship_id": rel.ID,
		"entity1_id":      rel.Entity1ID,
		"entity2_id":      rel.Entity2ID,
		"category_id":     rel.CategoryID,
	})

	props := map[string]any{
		"id":          rel.ID,
		"category_id": rel.CategoryID,
	}
	if rel.Description1 != nil {
		props["description1"] = *rel.Description1
	}
	if rel.Amount != nil {
		props["amount"] = *rel.Amount
	}
	if rel.StartDate != nil {
		props["start_date"] = *rel.StartDate
	}
	if rel.EndDate != nil {
		props["end_date"] = *rel.EndDate
	}
	if rel.IsCurrent != nil {
		props["is_current"] = *rel.IsCurrent
	}

	edgeType := EdgeType(rel.CategoryID)

	dropStale := fmt.Sprintf(`
		MATCH (a)-[old:%s {id: $rel_id}]->(b)
		WHERE a.id <> $from_id OR b.id <> $to_id
		DELETE old
	`, edgeType)

	merge := fmt.Sprintf(`
		MATCH (from:Entity {id: $from_id})
		MATCH (to:Entity {id: $to_id})
		MERGE (from)-[r:%s {id: $rel_id}]->(to)
		SET r += $props
		RETURN r
	`, edgeType)

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, dropStale, map[string]any{
			"rel_id":  rel.ID,
			"from_id": rel.Entity1ID,
			"to_id":   rel.Entity2ID,
		}); err != nil {
			return nil, err
		}

		result, err := tx.Run(ctx, merge, map[string]any{
			"rel_id":  rel.ID,
			"from_id": rel.Entity1ID,
			"to_id":   rel.Entity2ID,
			"props":   props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to create/update relationship in graph")
		return fmt.Errorf("failed to create/update relationship in graph: %w", err)
	}

	log.Debug("Created/updated relationship in graph")
	return nil
}

// Delete removes the edge for a relationship
func (s *RelationshipService) Delete(ctx context.Context, relID int64, categoryID int) error {
	ctx, span := tracing.StartSpan(ctx, "graph.RelationshipService.Delete")
	defer span.End()

	cypher := fmt.Sprintf(`
		MATCH ()-[r:%s {id: $id}]->()
		DELETE r
	`, EdgeType(categoryID))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": relID})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete relationship in graph")
		return fmt.Errorf("failed to delete relationship in graph: %w", err)
	}

	return nil
}

// GetRelationships gets all edges for an entity
func (s *RelationshipService) GetRelationships(ctx context.Context, entityID int64, direction string) ([]map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.RelationshipService.GetRelationships")
	defer span.End()

	var cypher string
	switch direction {
	case "outgoing":
		cypher = `
			MATCH (e:Entity {id: $id})-[r]->(target)
			WHERE target.deleted_at IS NULL
			RETURN r, type(r) as rel_type, target
		`
	case "incoming":
		cypher = `
			MATCH (source)-[r]->(e:Entity {id: $id})
			WHERE source.deleted_at IS NULL
			RETURN r, type(r) as rel_type, source as target
		`
	default: // both
		cypher = `
			MATCH (e:Entity {id: $id})-[r]-(target)
			WHERE target.deleted_at IS NULL
			RETURN r, type(r) as rel_type, target
		`
	}

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}

		var rels []map[string]any
		for result.Next(ctx) {
			record := result.Record()
			relNode, _ := record.Get("r")
			relType, _ := record.Get("rel_type")
			targetNode, _ := record.Get("target")

			r := relNode.(neo4j.Relationship)
			t := targetNode.(neo4j.Node)

			rel := map[string]any{
				"id":          r.Props["id"],
				"type":        relType,
				"target_id":   t.Props["id"],
				"target_name": t.Props["name"],
				"properties":  r.Props,
			}
			rels = append(rels, rel)
		}
		return rels, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get relationships from graph: %w", err)
	}

	return result.([]map[string]any), nil
}
