// Package search indexes user profiles in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-social-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserDoc is the indexed projection of a user. It never carries credentials.
type UserDoc struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	Followers      int    `json:"followers"`
	Following      int    `json:"following"`
	UpdatedAt      string `json:"updated_at"`
}

func NewUserDoc(u *entity.User) UserDoc {
	return UserDoc{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		Followers:      u.Followers.Len(),
		Following:      u.Following.Len(),
		UpdatedAt:      u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (d UserDoc) Summary() entity.UserSummary {
	return entity.UserSummary{
		ID:             d.ID,
		Name:           d.Name,
		Username:       d.Username,
		Bio:            d.Bio,
		ProfilePicture: d.ProfilePicture,
		Followers:      d.Followers,
		Following:      d.Following,
	}
}

type ElasticUserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewElasticUserIndex(es *elasticsearch.Client, index string) *ElasticUserIndex {
	return &ElasticUserIndex{ES: es, Index: index}
}

func (x *ElasticUserIndex) IndexUser(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(NewUserDoc(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// SearchUsers runs a multi_match over username, name and bio.
func (x *ElasticUserIndex) SearchUsers(ctx context.Context, q string, size int) ([]entity.UserSummary, error) {
	b, err := json.Marshal(BuildQuery(q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("es decode: %w", err)
	}

	out := make([]entity.UserSummary, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.Summary())
	}
	return out, nil
}

// BuildQuery returns the search body for q limited to size hits.
func BuildQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"username^3", "name^2", "bio"},
				"fuzziness": "AUTO",
			},
		},
		"size": size,
	}
}
