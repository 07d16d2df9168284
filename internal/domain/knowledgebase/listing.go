// Knowledge base inventory listing: active bases with their vector
// store layout and attached data sources.
package knowledgebase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/infra/bedrock"
)

// Inventory is the upstream knowledge base listing dependency.
type Inventory interface {
	ListKnowledgeBases(ctx context.Context) ([]bedrock.KnowledgeBaseSummary, error)
	GetKnowledgeBase(ctx context.Context, knowledgeBaseID string) (bedrock.KnowledgeBaseDetail, error)
	ListDataSources(ctx context.Context, knowledgeBaseID string) ([]bedrock.DataSourceSummary, error)
}

// activeStatus is the only status served to clients; bases being
// created or deleted are filtered out.
const activeStatus = "ACTIVE"

// DataSourceInfo is one data source as served to clients.
type DataSourceInfo struct {
	DataSourceID    string     `json:"data_source_id"`
	KnowledgeBaseID string     `json:"knowledge_base_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Status          string     `json:"status"`
	LastUpdated     *time.Time `json:"last_updated"`
}

// KnowledgeBaseInfo is one inventory entry as served to clients.
type KnowledgeBaseInfo struct {
	KnowledgeBaseID  string                        `json:"knowledge_base_id"`
	Name             string                        `json:"name"`
	Description      string                        `json:"description"`
	Status           string                        `json:"status"`
	CreationTime     *time.Time                    `json:"creation_time"`
	LastUpdatedTime  *time.Time                    `json:"last_updated_time"`
	StorageCapacity  *bedrock.StorageConfiguration `json:"storage_capacity"`
	DataSourceCount  int                           `json:"data_source_count"`
	VectorField      string                        `json:"vector_field"`
	DescriptionField string                        `json:"description_field"`
	DataSources      []DataSourceInfo              `json:"data_sources"`
}

// KnowledgeBaseList is the inventory response envelope.
type KnowledgeBaseList struct {
	KnowledgeBases []KnowledgeBaseInfo `json:"knowledgebases"`
	TotalCount     int                 `json:"total_count"`
}

// ListKnowledgeBases builds the active knowledge base inventory. Each
// base is enriched with its detail record and attached data sources;
// those lookups are best-effort, a failing base still lists with what
// the summary carries.
func (s *Service) ListKnowledgeBases(ctx context.Context) (KnowledgeBaseList, error) {
	summaries, err := s.inventory.ListKnowledgeBases(ctx)
	if err != nil {
		return KnowledgeBaseList{}, fmt.Errorf("list knowledge bases: %w", err)
	}

	bases := make([]KnowledgeBaseInfo, 0, len(summaries))
	for _, summary := range summaries {
		if summary.Status != activeStatus {
			continue
		}
		bases = append(bases, s.describeBase(ctx, summary))
	}
	return KnowledgeBaseList{KnowledgeBases: bases, TotalCount: len(bases)}, nil
}

// describeBase assembles one inventory entry from the summary plus the
// per-base detail and data source lookups.
func (s *Service) describeBase(ctx context.Context, summary bedrock.KnowledgeBaseSummary) KnowledgeBaseInfo {
	info := KnowledgeBaseInfo{
		KnowledgeBaseID: summary.KnowledgeBaseID,
		Name:            summary.Name,
		Status:          summary.Status,
		LastUpdatedTime: summary.UpdatedAt,
		DataSources:     []DataSourceInfo{},
	}

	detail, err := s.inventory.GetKnowledgeBase(ctx, summary.KnowledgeBaseID)
	if err != nil {
		log.Printf("knowledgebase: detail for %s: %v", summary.KnowledgeBaseID, err)
	} else {
		info.Description = detail.Description
		info.CreationTime = detail.CreatedAt
		info.StorageCapacity = detail.StorageConfiguration
		info.VectorField, info.DescriptionField = fieldMapping(detail.StorageConfiguration)
	}

	sources, err := s.inventory.ListDataSources(ctx, summary.KnowledgeBaseID)
	if err != nil {
		log.Printf("knowledgebase: data sources for %s: %v", summary.KnowledgeBaseID, err)
		return info
	}
	for _, ds := range sources {
		info.DataSources = append(info.DataSources, DataSourceInfo{
			DataSourceID:    ds.DataSourceID,
			KnowledgeBaseID: ds.KnowledgeBaseID,
			Name:            ds.Name,
			Description:     ds.Description,
			Status:          ds.Status,
			LastUpdated:     ds.UpdatedAt,
		})
	}
	info.DataSourceCount = len(info.DataSources)
	return info
}

// fieldMapping digs the vector and metadata field names out of an
// OpenSearch Serverless storage configuration.
func fieldMapping(storage *bedrock.StorageConfiguration) (vectorField, descriptionField string) {
	if storage == nil || storage.OpenSearchServerless == nil {
		return "", ""
	}
	fm := storage.OpenSearchServerless.FieldMapping
	return fm.VectorField, fm.MetadataField
}
