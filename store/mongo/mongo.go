// Package mongo provides a MongoDB-backed roster.Store, one document per
// template.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/tip-engine/allocation"
	"github.com/warp/tip-engine/roster"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultCollection is used when Open is given an empty collection name.
const DefaultCollection = "templates"

// TemplateDocument is the stored shape of a template.
type TemplateDocument struct {
	ID        string           `bson:"_id"`
	OwnerID   string           `bson:"ownerId"`
	Name      string           `bson:"templateName"`
	Location  string           `bson:"location,omitempty"`
	TimeSpan  string           `bson:"timeSpan"`
	Employees []MemberDocument `bson:"employees"`
	Scenario  string           `bson:"scenario"`
	Details   DetailsDocument  `bson:"scenarioDetails"`
	CreatedAt time.Time        `bson:"createdAt"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

type MemberDocument struct {
	Name     string `bson:"name"`
	Position string `bson:"position"`
}

type DetailsDocument struct {
	Points      map[string]float64   `bson:"points,omitempty"`
	Percentages map[string]float64   `bson:"percentages,omitempty"`
	HybridSplit *HybridSplitDocument `bson:"hybridSplit,omitempty"`
}

type HybridSplitDocument struct {
	Hours  *float64 `bson:"hours,omitempty"`
	Points *float64 `bson:"points,omitempty"`
}

// Store implements roster.Store on a single collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Open connects, pings the primary and ensures the owner index.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	if collection == "" {
		collection = DefaultCollection
	}
	store := &Store{client: client, collection: client.Database(database).Collection(collection)}
	if err := store.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create template index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Create(ctx context.Context, t roster.Template) error {
	_, err := s.collection.InsertOne(ctx, toDocument(t))
	if mongo.IsDuplicateKeyError(err) {
		return roster.ErrDuplicateTemplate
	}
	return err
}

func (s *Store) Get(ctx context.Context, id string) (*roster.Template, error) {
	var doc TemplateDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, roster.ErrTemplateNotFound
	}
	if err != nil {
		return nil, err
	}
	t := fromDocument(doc)
	return &t, nil
}

func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]roster.Template, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := make([]roster.Template, 0)
	for cursor.Next(ctx) {
		var doc TemplateDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		templates = append(templates, fromDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func (s *Store) Update(ctx context.Context, t roster.Template) error {
	res, err := s.collection.ReplaceOne(ctx, bson.M{"_id": t.ID}, toDocument(t))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return roster.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return roster.ErrTemplateNotFound
	}
	return nil
}

// Drop removes the collection. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.collection.Drop(ctx); err != nil {
		return err
	}
	return s.ensureIndexes(ctx)
}

func toDocument(t roster.Template) TemplateDocument {
	members := make([]MemberDocument, len(t.Employees))
	for i, m := range t.Employees {
		members[i] = MemberDocument{Name: m.Name, Position: m.Position}
	}
	doc := TemplateDocument{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		Name:      t.Name,
		Location:  t.Location,
		TimeSpan:  string(t.TimeSpan),
		Employees: members,
		Scenario:  string(t.Scenario),
		Details: DetailsDocument{
			Points:      t.Details.Points,
			Percentages: t.Details.Percentages,
		},
		CreatedAt: t.CreatedAt.UTC(),
		UpdatedAt: t.UpdatedAt.UTC(),
	}
	if split := t.Details.HybridSplit; split != nil {
		doc.Details.HybridSplit = &HybridSplitDocument{Hours: split.Hours, Points: split.Points}
	}
	return doc
}

func fromDocument(doc TemplateDocument) roster.Template {
	members := make([]roster.Member, len(doc.Employees))
	for i, m := range doc.Employees {
		members[i] = roster.Member{Name: m.Name, Position: m.Position}
	}
	t := roster.Template{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Name:      doc.Name,
		Location:  doc.Location,
		TimeSpan:  allocation.TimeSpan(doc.TimeSpan),
		Employees: members,
		Scenario:  allocation.Scenario(doc.Scenario),
		Details: allocation.ScenarioDetails{
			Points:      doc.Details.Points,
			Percentages: doc.Details.Percentages,
		},
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if split := doc.Details.HybridSplit; split != nil {
		t.Details.HybridSplit = &allocation.HybridSplit{Hours: split.Hours, Points: split.Points}
	}
	return t
}
