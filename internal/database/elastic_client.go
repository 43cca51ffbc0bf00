package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olivere/elastic/v7"

	"github.com/locvowork/asset_management/internal/domain"
)

// OwnershipDoc is the search-side projection of an asset's ownership.
type OwnershipDoc struct {
	AssetID          string    `json:"asset_id"`
	Kind             string    `json:"kind"`
	Name             string    `json:"name"`
	AssignedTo       string    `json:"assigned_to,omitempty"`
	Status           string    `json:"status"`
	AssignmentStatus string    `json:"assignment_status,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewOwnershipDoc projects an asset into its index document.
func NewOwnershipDoc(a domain.Asset) OwnershipDoc {
	return OwnershipDoc{
		AssetID:          a.ID,
		Kind:             string(a.Kind),
		Name:             a.Name,
		AssignedTo:       a.AssignedTo,
		Status:           a.Status,
		AssignmentStatus: a.AssignmentStatus,
		UpdatedAt:        a.UpdatedAt,
	}
}

func (d OwnershipDoc) asset() domain.Asset {
	return domain.Asset{
		ID:               d.AssetID,
		Kind:             domain.AssetKind(d.Kind),
		Name:             d.Name,
		AssignedTo:       d.AssignedTo,
		Status:           d.Status,
		AssignmentStatus: d.AssignmentStatus,
		UpdatedAt:        d.UpdatedAt,
	}
}

// docID keeps ids unique across the three asset collections.
func (d OwnershipDoc) docID() string {
	return d.Kind + ":" + d.AssetID
}

// ElasticSearchClient wraps olivere/elastic client.
type ElasticSearchClient struct {
	client *elastic.Client
	index  string
}

// NewElasticSearchClient creates a new client for Elasticsearch 7.x.
func NewElasticSearchClient(url, index string) (*ElasticSearchClient, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false), // Essential when using Docker or cloud
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return &ElasticSearchClient{client: client, index: index}, nil
}

// IndexAsset upserts the ownership document of a.
func (es *ElasticSearchClient) IndexAsset(ctx context.Context, a domain.Asset) error {
	doc := NewOwnershipDoc(a)
	_, err := es.client.Index().
		Index(es.index).
		Id(doc.docID()).
		BodyJson(doc).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", doc.docID(), err)
	}
	return nil
}

// BulkIndexAssets loads many assets in one request. The seeder uses it
// instead of one IndexAsset call per fixture.
func (es *ElasticSearchClient) BulkIndexAssets(ctx context.Context, assets []domain.Asset) error {
	bulkRequest := es.client.Bulk()

	for _, a := range assets {
		doc := NewOwnershipDoc(a)
		req := elastic.NewBulkIndexRequest().
			Index(es.index).
			Id(doc.docID()).
			Doc(doc)
		bulkRequest = bulkRequest.Add(req)
	}

	if bulkRequest.NumberOfActions() == 0 {
		return nil
	}

	bulkResponse, err := bulkRequest.Refresh("true").Do(ctx)
	if err != nil {
		return fmt.Errorf("bulk index failed: %w", err)
	}

	if bulkResponse.Errors {
		for _, item := range bulkResponse.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("bulk item failed: %s", op.Error.Reason)
				}
			}
		}
	}

	return nil
}

// AssetsOwnedBy lists the indexed assets currently pointing at employeeID.
func (es *ElasticSearchClient) AssetsOwnedBy(ctx context.Context, employeeID string) ([]domain.Asset, error) {
	var owned []domain.Asset

	scroll := es.client.Scroll(es.index).
		Query(elastic.NewTermQuery("assigned_to", employeeID)).
		Size(500).
		KeepAlive("1m").
		Sort("_doc", true)
	defer scroll.Clear(context.Background())

	for {
		results, err := scroll.Do(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scroll error: %w", err)
		}

		for _, hit := range results.Hits.Hits {
			var doc OwnershipDoc
			if err := json.Unmarshal(hit.Source, &doc); err != nil {
				continue
			}
			owned = append(owned, doc.asset())
		}
	}

	return owned, nil
}

// DeleteIndex drops the whole ownership index. Missing indices are ignored.
func (es *ElasticSearchClient) DeleteIndex(ctx context.Context) error {
	exists, err := es.client.IndexExists(es.index).Do(ctx)
	if err != nil || !exists {
		return err
	}
	_, err = es.client.DeleteIndex(es.index).Do(ctx)
	return err
}
