package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// EntityService projects entity rows into graph nodes
type EntityService struct {
	client *Client
	logger ectologger.Logger
}

// NewEntityService creates a new entity service
func NewEntityService(client *Client, logger ectologger.Logger) *EntityService {
	return &EntityService{
		client: client,
		logger: logger,
	}
}

// CreateOrUpdate creates or updates an entity node. Every node carries the
// Entity label plus a label for its primary extension (Person or Org), so
// relationship projection can match endpoints without knowing their type.
func (s *EntityService) CreateOrUpdate(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "graph.EntityService.CreateOrUpdate")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id":   entity.ID,
		"primary_ext": entity.PrimaryExt,
	})

	props := map[string]any{
		"id":          entity.ID,
		"name":        entity.Name,
		"primary_ext": entity.PrimaryExt,
		"link_count":  entity.LinkCount,
		"created_at":  entity.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		"updated_at":  entity.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if entity.Blurb != nil {
		props["blurb"] = *entity.Blurb
	}
	if entity.StartDate != nil {
		props["start_date"] = *entity.StartDate
	}
	if entity.EndDate != nil {
		props["end_date"] = *entity.EndDate
	}

	cypher := fmt.Sprintf(`
		MERGE (e:Entity {id: $id})
		SET e = $props, e:%s
		RETURN e
	`, sanitizeLabel(entity.PrimaryExt))

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":    entity.ID,
			"props": props,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to create/update entity in graph")
		return fmt.Errorf("failed to create/update entity in graph: %w", err)
	}

	log.Debug("Created/updated entity in graph")
	return nil
}

// Delete soft-deletes an entity node by adding a deleted_at property
func (s *EntityService) Delete(ctx context.Context, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "graph.EntityService.Delete")
	defer span.End()

	cypher := `
		MATCH (e:Entity {id: $id})
		SET e.deleted_at = datetime()
		RETURN e
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to delete entity in graph")
		return fmt.Errorf("failed to delete entity in graph: %w", err)
	}

	return nil
}

// Restore clears the deleted_at property on a soft-deleted node
func (s *EntityService) Restore(ctx context.Context, entityID int64) error {
	ctx, span := tracing.StartSpan(ctx, "graph.EntityService.Restore")
	defer span.End()

	cypher := `
		MATCH (e:Entity {id: $id})
		REMOVE e.deleted_at
		RETURN e
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to restore entity in graph")
		return fmt.Errorf("failed to restore entity in graph: %w", err)
	}

	return nil
}

// MarkMerged records a merge on the source node and drops its edges. The
// repointed relationships arrive on the relationships change stream and are
// re-projected against the destination node there.
func (s *EntityService) MarkMerged(ctx context.Context, sourceID, destID int64) error {
	ctx, span := tracing.StartSpan(ctx, "graph.EntityService.MarkMerged")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"source_id": sourceID,
		"dest_id":   destID,
	})

	cypher := `
		MATCH (s:Entity {id: $source_id})
		OPTIONAL MATCH (s)-[r]-()
		DELETE r
		SET s.merged_id = $dest_id, s.deleted_at = datetime()
		RETURN s
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"source_id": sourceID,
			"dest_id":   destID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to mark entity merged in graph")
		return fmt.Errorf("failed to mark entity merged in graph: %w", err)
	}

	log.Debug("Marked entity merged in graph")
	return nil
}

// Get retrieves an entity node by ID
func (s *EntityService) Get(ctx context.Context, entityID int64) (map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.EntityService.Get")
	defer span.End()

	cypher := `
		MATCH (e:Entity {id: $id})
		WHERE e.deleted_at IS NULL
		RETURN e
	`

	result, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": entityID})
		if err != nil {
			return nil, err
		}

		if result.Next(ctx) {
			record := result.Record()
			node, ok := record.Get("e")
			if !ok {
				return nil, nil
			}
			n := node.(neo4j.Node)
			return n.Props, nil
		}
		return nil, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get entity from graph: %w", err)
	}

	if result == nil {
		return nil, nil
	}

	return result.(map[string]any), nil
}

// sanitizeLabel ensures the label is safe for Cypher
func sanitizeLabel(label string) string {
	// Only allow alphanumeric and underscore
	result := ""
	for _, c := range label {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			result += string(c)
		}
	}
	if result == "" {
		return "Entity"
	}
	return result
}
