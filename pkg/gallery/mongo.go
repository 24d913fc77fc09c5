package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoDefaultDB   = "dreamscape"
	mongoCollection  = "art_pieces"
	mongoConnTimeout = 10 * time.Second
)

// MongoStore keeps pieces in the art_pieces collection. The JSON columns of
// the SQL backends are stored as embedded documents.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoPiece struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	SourceType  string    `bson:"source_type"`
	Style       string    `bson:"style"`
	SourceData  bson.M    `bson:"source_data"`
	Parameters  bson.M    `bson:"parameters"`
	SVGURL      string    `bson:"svg_url"`
	PNGURL      string    `bson:"png_url"`
	Metadata    bson.M    `bson:"metadata"`
	CreatedAt   time.Time `bson:"created_at"`
}

// OpenMongo connects to uri. The database is taken from the URI path and
// defaults to "dreamscape".
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	coll := client.Database(mongoDatabase(uri)).Collection(mongoCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "source_type", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: create indexes: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func mongoDatabase(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return mongoDefaultDB
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return mongoDefaultDB
}

func (s *MongoStore) Save(ctx context.Context, p *Piece) error {
	prepare(p)
	enc, err := encode(p)
	if err != nil {
		return err
	}
	doc := mongoPiece{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		SourceType:  p.SourceType.String(),
		Style:       p.Parameters.Style.String(),
		SVGURL:      p.SVGURL,
		PNGURL:      p.PNGURL,
		CreatedAt:   p.CreatedAt,
	}
	if doc.SourceData, err = toBSON(enc.source); err != nil {
		return err
	}
	if doc.Parameters, err = toBSON(enc.params); err != nil {
		return err
	}
	if doc.Metadata, err = toBSON(enc.meta); err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return dbError("save piece", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Piece, error) {
	var doc mongoPiece
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, dbError("get piece", err)
	}

	p := &Piece{
		ID:          doc.ID,
		Title:       doc.Title,
		Description: doc.Description,
		SVGURL:      doc.SVGURL,
		PNGURL:      doc.PNGURL,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
	if p.SourceType, err = ParseSourceType(doc.SourceType); err != nil {
		return nil, dbError("get piece", err)
	}
	var enc encoded
	if enc.source, err = fromBSON(doc.SourceData); err != nil {
		return nil, dbError("get piece", err)
	}
	if enc.params, err = fromBSON(doc.Parameters); err != nil {
		return nil, dbError("get piece", err)
	}
	if enc.meta, err = fromBSON(doc.Metadata); err != nil {
		return nil, dbError("get piece", err)
	}
	if err := enc.decode(p); err != nil {
		return nil, dbError("get piece", err)
	}
	return p, nil
}

func (s *MongoStore) List(ctx context.Context, f Filter) ([]Listing, int, error) {
	f = f.normalized()

	filter := bson.D{}
	if f.SourceType != nil {
		filter = bson.D{{Key: "source_type", Value: f.SourceType.String()}}
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, dbError("count pieces", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit)).
		SetProjection(bson.D{
			{Key: "source_data", Value: 0},
			{Key: "parameters", Value: 0},
			{Key: "metadata", Value: 0},
		})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, dbError("list pieces", err)
	}
	var docs []mongoPiece
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, dbError("list pieces", err)
	}

	listings := make([]Listing, 0, len(docs))
	for _, d := range docs {
		l := Listing{ID: d.ID, Title: d.Title, SVGURL: d.SVGURL, PNGURL: d.PNGURL, CreatedAt: d.CreatedAt.UTC()}
		if err := scanListing(&l, d.SourceType, d.Style); err != nil {
			return nil, 0, dbError("list pieces", err)
		}
		listings = append(listings, l)
	}
	return listings, int(total), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return dbError("delete piece", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)

// toBSON converts a JSON object into a document.
func toBSON(data []byte) (bson.M, error) {
	var m bson.M
	if err := bson.UnmarshalExtJSON(data, false, &m); err != nil {
		return nil, fmt.Errorf("convert to bson: %w", err)
	}
	return m, nil
}

// fromBSON converts a document back into plain JSON.
func fromBSON(m bson.M) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert from bson: %w", err)
	}
	// relaxed extended JSON is plain JSON for the values stored here
	if !json.Valid(data) {
		return nil, fmt.Errorf("convert from bson: invalid json")
	}
	return data, nil
}
