package linktable

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/depotkit/depot/internal/models"
)

// relTypes maps edge kinds to Cypher relationship types. Relationship
// types cannot be parameterized, so the kind is resolved here and never
// interpolated from user input.
var relTypes = map[models.EdgeKind]string{
	models.EdgeReference:      "REFERENCES",
	models.EdgeClassification: "CLASSIFIES",
}

// NewNeo4jDriver connects to a Neo4j server and verifies the connection.
func NewNeo4jDriver(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connecting to neo4j at %s: %w", uri, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying neo4j connection at %s: %w", uri, err)
	}
	return driver, nil
}

// NewNeo4jFactory returns a backend factory storing each edge kind as its
// own relationship type on a shared driver.
func NewNeo4jFactory(driver neo4j.DriverWithContext, database string, logger *slog.Logger) BackendFactory {
	return func(kind models.EdgeKind) (Backend, error) {
		rel, ok := relTypes[kind]
		if !ok {
			return nil, fmt.Errorf("no relationship type for edge kind %q", kind)
		}
		return &neo4jBackend{driver: driver, database: database, rel: rel, logger: logger}, nil
	}
}

// neo4jBackend stores edges of one kind as relationships between Doc and
// Target nodes.
type neo4jBackend struct {
	driver   neo4j.DriverWithContext
	database string
	rel      string
	logger   *slog.Logger
}

func (b *neo4jBackend) run(ctx context.Context, cypher string, params map[string]any) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, b.driver, cypher, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(b.database))
}

func (b *neo4jBackend) Create(ctx context.Context, from, fromType, to string) error {
	cypher := fmt.Sprintf(`MERGE (s:Doc {id: $from})
		SET s.type = $fromType
		MERGE (t:Target {key: $to})
		MERGE (s)-[:%s]->(t)`, b.rel)
	_, err := b.run(ctx, cypher, map[string]any{
		"from": from, "fromType": fromType, "to": to,
	})
	return err
}

func (b *neo4jBackend) Delete(ctx context.Context, from string) error {
	cypher := fmt.Sprintf(`MATCH (s:Doc {id: $from})-[r:%s]->() DELETE r`, b.rel)
	_, err := b.run(ctx, cypher, map[string]any{"from": from})
	return err
}

func (b *neo4jBackend) CountTo(ctx context.Context, to string, q *CountQuery) (int, error) {
	var conditions []string
	params := map[string]any{"to": to}
	if q != nil && q.Prefix {
		conditions = append(conditions, "t.key STARTS WITH $to")
	} else {
		conditions = append(conditions, "t.key = $to")
	}
	if q != nil && q.FromType != "" {
		conditions = append(conditions, "s.type = $fromType")
		params["fromType"] = q.FromType
	}
	cypher := fmt.Sprintf(`MATCH (s:Doc)-[r:%s]->(t:Target)
		WHERE %s RETURN count(r) AS count`, b.rel, strings.Join(conditions, " AND "))
	result, err := b.run(ctx, cypher, params)
	if err != nil {
		return 0, err
	}
	if len(result.Records) == 0 {
		return 0, nil
	}
	count, _, err := neo4j.GetRecordValue[int64](result.Records[0], "count")
	if err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return int(count), nil
}

func (b *neo4jBackend) SourcesTo(ctx context.Context, to string) ([]string, error) {
	cypher := fmt.Sprintf(`MATCH (s:Doc)-[:%s]->(t:Target {key: $to})
		RETURN s.id AS id ORDER BY id`, b.rel)
	result, err := b.run(ctx, cypher, map[string]any{"to": to})
	if err != nil {
		return nil, err
	}
	sources := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		id, _, err := neo4j.GetRecordValue[string](record, "id")
		if err != nil {
			return nil, fmt.Errorf("reading source id: %w", err)
		}
		sources = append(sources, id)
	}
	return sources, nil
}

// Close is a no-op; the shared driver is closed by its owner.
func (b *neo4jBackend) Close() error {
	return nil
}
