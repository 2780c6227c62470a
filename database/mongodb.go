package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/biosecret/go-todo/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	profilesCollection = "profiles"
	todosCollection    = "lists"
)

type todoDocument struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	models.Todo `bson:",inline"`
}

func (d todoDocument) todo() models.Todo {
	t := d.Todo
	t.ID = d.ID.Hex()
	return t
}

// MongoStore keeps profiles and todos in two MongoDB collections.
type MongoStore struct {
	client   *mongo.Client
	profiles *mongo.Collection
	todos    *mongo.Collection
}

// OpenMongo connects to uri and ensures the unique index on profiles.userName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("you must set your 'MONGODB_URI' environmental variable")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to open mongodb connection: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		profiles: db.Collection(profilesCollection),
		todos:    db.Collection(todosCollection),
	}

	_, err = s.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userName", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create profile index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateProfile(ctx context.Context, p *models.Profile) error {
	if _, err := s.profiles.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: userName %q already exists", ErrDuplicateKey, p.UserName)
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (s *MongoStore) FindProfiles(ctx context.Context, userName string) ([]models.Profile, error) {
	cursor, err := s.profiles.Find(ctx, bson.M{"userName": userName})
	if err != nil {
		return nil, fmt.Errorf("failed to find profiles: %w", err)
	}

	profiles := []models.Profile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

func (s *MongoStore) FindProfile(ctx context.Context, userName string) (*models.Profile, error) {
	var p models.Profile
	err := s.profiles.FindOne(ctx, bson.M{"userName": userName}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, userName string, patch models.ProfilePatch) (*models.Profile, error) {
	set := profileSet(patch)
	if len(set) == 0 {
		return s.FindProfile(ctx, userName)
	}

	var p models.Profile
	err := s.profiles.FindOneAndUpdate(ctx,
		bson.M{"userName": userName},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) CreateTodo(ctx context.Context, t *models.Todo) error {
	res, err := s.todos.InsertOne(ctx, todoDocument{Todo: *t})
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	t.ID = oid.Hex()
	return nil
}

func (s *MongoStore) FindTodos(ctx context.Context, f models.TodoFilter) ([]models.Todo, error) {
	cursor, err := s.todos.Find(ctx, todoFilter(f))
	if err != nil {
		return nil, fmt.Errorf("failed to find todos: %w", err)
	}

	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode todos: %w", err)
	}

	todos := make([]models.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.todo())
	}
	return todos, nil
}

func (s *MongoStore) UpdateTodo(ctx context.Context, id string, set models.TodoUpdate, upsert bool) (models.UpdateResult, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// not an ObjectID, so nothing can match
		return models.UpdateResult{}, nil
	}

	res, err := s.todos.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": todoSet(set)},
		options.UpdateOne().SetUpsert(upsert),
	)
	if err != nil {
		return models.UpdateResult{}, fmt.Errorf("failed to update todo: %w", err)
	}

	return models.UpdateResult{
		Matched:  res.MatchedCount,
		Modified: res.ModifiedCount,
		Upserted: res.UpsertedCount,
	}, nil
}

func (s *MongoStore) DeleteTodo(ctx context.Context, id string) (int64, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}

	res, err := s.todos.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete todo: %w", err)
	}
	return res.DeletedCount, nil
}

func profileSet(patch models.ProfilePatch) bson.M {
	set := bson.M{}
	put := func(key string, value *string) {
		if value != nil {
			set[key] = *value
		}
	}
	put("firstName", patch.FirstName)
	put("lastName", patch.LastName)
	put("emailAddress", patch.EmailAddress)
	put("mobileNumber", patch.MobileNumber)
	put("city", patch.City)
	put("password", patch.Password)
	return set
}

func todoSet(set models.TodoUpdate) bson.M {
	m := bson.M{}
	if set.Subject != nil {
		m["ToDoSubject"] = *set.Subject
	}
	if set.Description != nil {
		m["ToDoDescription"] = *set.Description
	}
	if set.Status != nil {
		m["ToDoStatus"] = *set.Status
	}
	if set.UpdatedAt != nil {
		m["ToDoUpdateDate"] = *set.UpdatedAt
	}
	return m
}

func todoFilter(f models.TodoFilter) bson.M {
	filter := bson.M{}
	if f.UserName != "" {
		filter["UserName"] = f.UserName
	}
	if f.Status != "" {
		filter["ToDoStatus"] = f.Status
	}

	created := bson.M{}
	if !f.CreatedFrom.IsZero() {
		created["$gte"] = f.CreatedFrom
	}
	if !f.CreatedTo.IsZero() {
		created["$lte"] = f.CreatedTo
	}
	if len(created) > 0 {
		filter["ToDoCreateDate"] = created
	}
	return filter
}

var _ Store = (*MongoStore)(nil)
