package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/BartekS5/xtravels-migrate/internal/etl"
	"github.com/BartekS5/xtravels-migrate/pkg/database"
	"github.com/BartekS5/xtravels-migrate/pkg/logger"
	"github.com/BartekS5/xtravels-migrate/pkg/models"
	"github.com/BartekS5/xtravels-migrate/pkg/utils"
)

// MongoStore reads the legacy schema from one collection per entity.
type MongoStore struct {
	URI      string
	Database string
	Client   *mongo.Client
}

var _ etl.Store = (*MongoStore)(nil)

func NewMongoStore(uri, db string) *MongoStore {
	return &MongoStore{URI: uri, Database: db}
}

// Deploy connects and seeds collections from *.json files under dir. Each
// file holds a JSON array of extended-JSON documents and is inserted into
// the collection named after the file.
func (m *MongoStore) Deploy(ctx context.Context, dir string) error {
	if m.Client == nil {
		client, err := database.ConnectMongo(ctx, m.URI)
		if err != nil {
			return err
		}
		m.Client = client
	}

	files, err := findFiles(dir, ".json")
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	for _, path := range files {
		docs, err := readDocuments(path)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		coll := m.Client.Database(m.Database).Collection(name)
		if _, err := coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("seed %s: %w", name, err)
		}
		logger.Debugw("seeded collection", "collection", name, "documents", len(docs))
	}
	logger.Infow("source deployed", "dir", dir, "driver", database.DriverMongo, "files", len(files))
	return nil
}

func readDocuments(path string) ([]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	docs := make([]interface{}, 0, len(raw))
	for i, r := range raw {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(r, false, &doc); err != nil {
			return nil, fmt.Errorf("parse %s document %d: %w", path, i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// BuildPipeline renders p as an aggregation: one $lookup/$unwind per used
// association, then a $project producing the output fields.
func BuildPipeline(p etl.Projection) (mongo.Pipeline, error) {
	var pipeline mongo.Pipeline
	for _, name := range p.UsedAssociations() {
		a, ok := p.Associations[name]
		if !ok {
			return nil, fmt.Errorf("undeclared association %q", name)
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$lookup", Value: bson.D{
				{Key: "from", Value: a.Target},
				{Key: "localField", Value: a.ForeignKey},
				{Key: "foreignField", Value: a.TargetKey},
				{Key: "as", Value: name},
			}}},
			bson.D{{Key: "$unwind", Value: bson.D{
				{Key: "path", Value: "$" + name},
				{Key: "preserveNullAndEmptyArrays", Value: true},
			}}},
		)
	}

	project := bson.D{{Key: "_id", Value: 0}}
	for _, c := range p.Columns {
		if len(c.Paths) == 1 {
			project = append(project, bson.E{Key: c.Name, Value: "$" + c.Paths[0].String()})
			continue
		}
		parts := make(bson.A, len(c.Paths))
		for i, path := range c.Paths {
			parts[i] = bson.D{{Key: "$toString", Value: "$" + path.String()}}
		}
		project = append(project, bson.E{Key: c.Name, Value: bson.D{{Key: "$concat", Value: parts}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$project", Value: project}})
	return pipeline, nil
}

func (m *MongoStore) Query(ctx context.Context, p etl.Projection) ([]*models.Row, error) {
	if m.Client == nil {
		return nil, fmt.Errorf("store not deployed")
	}
	pipeline, err := BuildPipeline(p)
	if err != nil {
		return nil, err
	}

	coll := m.Client.Database(m.Database).Collection(p.Entity)
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", p.Entity, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s: %w", p.Entity, err)
	}
	return rowsFromDocuments(p, docs), nil
}

// rowsFromDocuments orders document fields by the projection; fields
// missing from a document become nil.
func rowsFromDocuments(p etl.Projection, docs []bson.M) []*models.Row {
	rows := make([]*models.Row, 0, len(docs))
	for _, doc := range docs {
		r := models.NewRow()
		for _, c := range p.Columns {
			r.Set(c.Name, utils.NormalizeValue(doc[c.Name]))
		}
		rows = append(rows, r)
	}
	return rows
}

func (m *MongoStore) Close() error {
	if m.Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}
