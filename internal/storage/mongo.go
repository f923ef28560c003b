package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/xaenox/chat-profiler/internal/models"
)

type MongoConfig struct {
	URI                    string
	Database               string
	ConversationCollection string
	ClientCollection       string
}

// MongoStorage reads tracker documents from one collection and upserts
// profiles into another, keyed by client_id.
type MongoStorage struct {
	client        *mongo.Client
	conversations *mongo.Collection
	clients       *mongo.Collection
	logger        *zap.Logger
}

func NewMongoStorage(ctx context.Context, config MongoConfig, logger *zap.Logger) (*MongoStorage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("could not reach MongoDB: %w", err)
	}

	db := client.Database(config.Database)
	s := &MongoStorage{
		client:        client,
		conversations: db.Collection(config.ConversationCollection),
		clients:       db.Collection(config.ClientCollection),
		logger:        logger,
	}

	_, err = s.clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("could not create client_id index: %w", err)
	}

	logger.Info("Connected to MongoDB", zap.String("database", config.Database))
	return s, nil
}

func (s *MongoStorage) ListConversations(ctx context.Context) ([]*models.Conversation, error) {
	cursor, err := s.conversations.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var convs []*models.Conversation
	for cursor.Next(ctx) {
		conv, err := decodeConversation(cursor.Current)
		if err != nil {
			s.logger.Error("Skipping undecodable conversation",
				zap.Error(err),
				zap.String("sender_id", rawSenderID(cursor.Current)))
			continue
		}
		convs = append(convs, conv)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return convs, nil
}

func (s *MongoStorage) GetConversation(ctx context.Context, senderID string) (*models.Conversation, error) {
	raw, err := s.conversations.FindOne(ctx, bson.M{"sender_id": senderID}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return decodeConversation(raw)
}

func (s *MongoStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	_, err := s.conversations.ReplaceOne(ctx,
		bson.M{"sender_id": conv.SenderID},
		conv,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *MongoStorage) UpsertProfile(ctx context.Context, profile *models.ClientProfile) error {
	_, err := s.clients.UpdateOne(ctx,
		bson.M{"client_id": profile.ClientID},
		profileUpdate(profile),
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetProfile(ctx context.Context, clientID string) (*models.ClientProfile, error) {
	var profile models.ClientProfile
	err := s.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	profile.LatestMessageDate = profile.LatestMessageDate.UTC()
	return &profile, nil
}

func (s *MongoStorage) Close() error {
	return s.client.Disconnect(context.Background())
}

// profileUpdate builds the $set document that replaces every profile field.
func profileUpdate(profile *models.ClientProfile) bson.M {
	p := *profile
	p.Items = nonNil(p.Items)
	p.Brands = nonNil(p.Brands)
	return bson.M{"$set": p}
}

func decodeConversation(raw bson.Raw) (*models.Conversation, error) {
	var conv models.Conversation
	if err := bson.Unmarshal(raw, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

func rawSenderID(raw bson.Raw) string {
	if v, ok := raw.Lookup("sender_id").StringValueOK(); ok {
		return v
	}
	return ""
}
