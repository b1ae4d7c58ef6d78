// internal/database/thought_repository.go
package database

import (
	"context"
	"fmt"
	"time"

	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ThoughtDocument represents the MongoDB schema for a thought. Reactions are
// embedded and have no collection of their own.
type ThoughtDocument struct {
	ID          string             `bson:"_id"`
	ThoughtText string             `bson:"thoughtText"`
	Username    string             `bson:"username"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Reactions   []ReactionDocument `bson:"reactions"`
}

// ReactionDocument is the embedded form of a reaction.
type ReactionDocument struct {
	ReactionID   string    `bson:"reactionId"`
	ReactionBody string    `bson:"reactionBody"`
	Username     string    `bson:"username"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func thoughtToDocument(thought *models.Thought) *ThoughtDocument {
	doc := &ThoughtDocument{
		ID:          thought.ID.String(),
		ThoughtText: thought.ThoughtText,
		Username:    thought.Username,
		CreatedAt:   thought.CreatedAt,
		Reactions:   make([]ReactionDocument, len(thought.Reactions)),
	}
	for i, r := range thought.Reactions {
		doc.Reactions[i] = reactionToDocument(r)
	}
	return doc
}

func reactionToDocument(r models.Reaction) ReactionDocument {
	return ReactionDocument{
		ReactionID:   r.ReactionID.String(),
		ReactionBody: r.ReactionBody,
		Username:     r.Username,
		CreatedAt:    r.CreatedAt,
	}
}

func documentToThought(doc *ThoughtDocument) (*models.Thought, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid thought ID: %v", err)
	}

	reactions := make([]models.Reaction, len(doc.Reactions))
	for i, r := range doc.Reactions {
		reactionID, err := uuid.Parse(r.ReactionID)
		if err != nil {
			return nil, fmt.Errorf("invalid reaction ID on thought %s: %v", doc.ID, err)
		}
		reactions[i] = models.Reaction{
			ReactionID:   reactionID,
			ReactionBody: r.ReactionBody,
			Username:     r.Username,
			CreatedAt:    r.CreatedAt,
		}
	}

	return &models.Thought{
		ID:          id,
		ThoughtText: doc.ThoughtText,
		Username:    doc.Username,
		CreatedAt:   doc.CreatedAt,
		Reactions:   reactions,
	}, nil
}

func (m *MongoDB) CreateThought(ctx context.Context, thought *models.Thought) error {
	_, err := m.Thoughts.InsertOne(ctx, thoughtToDocument(thought))
	return errors.Wrap(err, "insert thought")
}

// GetThought retrieves a thought by its ID.
func (m *MongoDB) GetThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	var doc ThoughtDocument

	err := m.Thoughts.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "find thought")
	}
	return documentToThought(&doc)
}

// GetThoughtsByIDs returns the thoughts that exist among ids, in no particular order.
func (m *MongoDB) GetThoughtsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Thought, error) {
	if len(ids) == 0 {
		return []*models.Thought{}, nil
	}
	cursor, err := m.Thoughts.Find(ctx, bson.M{"_id": bson.M{"$in": idsToStrings(ids)}})
	if err != nil {
		return nil, errors.Wrap(err, "find thoughts by id")
	}
	return decodeThoughts(ctx, cursor)
}

// ListThoughts returns every thought, oldest first.
func (m *MongoDB) ListThoughts(ctx context.Context) ([]*models.Thought, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.Thoughts.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list thoughts")
	}
	return decodeThoughts(ctx, cursor)
}

func (m *MongoDB) UpdateThought(ctx context.Context, id uuid.UUID, patch models.ThoughtPatch) (*models.Thought, error) {
	set := bson.M{}
	if patch.ThoughtText != nil {
		set["thoughtText"] = *patch.ThoughtText
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if len(set) == 0 {
		return m.GetThought(ctx, id)
	}

	return m.findOneAndUpdateThought(ctx, id, bson.M{"$set": set}, "update thought")
}

// DeleteThought removes a thought and returns it as it was.
func (m *MongoDB) DeleteThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	var doc ThoughtDocument

	err := m.Thoughts.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete thought")
	}
	return documentToThought(&doc)
}

func (m *MongoDB) DeleteThoughtsByUsername(ctx context.Context, username string) (int64, error) {
	result, err := m.Thoughts.DeleteMany(ctx, bson.M{"username": username})
	if err != nil {
		return 0, errors.Wrap(err, "delete thoughts by username")
	}
	return result.DeletedCount, nil
}

func (m *MongoDB) RenameThoughtAuthor(ctx context.Context, oldUsername, newUsername string) (int64, error) {
	result, err := m.Thoughts.UpdateMany(ctx,
		bson.M{"username": oldUsername},
		bson.M{"$set": bson.M{"username": newUsername}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "rename thought author")
	}
	return result.ModifiedCount, nil
}

func (m *MongoDB) PushReaction(ctx context.Context, thoughtID uuid.UUID, reaction models.Reaction) (*models.Thought, error) {
	update := bson.M{"$push": bson.M{"reactions": reactionToDocument(reaction)}}
	return m.findOneAndUpdateThought(ctx, thoughtID, update, "push reaction")
}

func (m *MongoDB) PullReaction(ctx context.Context, thoughtID, reactionID uuid.UUID) (*models.Thought, error) {
	update := bson.M{"$pull": bson.M{"reactions": bson.M{"reactionId": reactionID.String()}}}
	return m.findOneAndUpdateThought(ctx, thoughtID, update, "pull reaction")
}

func (m *MongoDB) findOneAndUpdateThought(ctx context.Context, id uuid.UUID, update bson.M, op string) (*models.Thought, error) {
	var doc ThoughtDocument

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Thoughts.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return documentToThought(&doc)
}

func decodeThoughts(ctx context.Context, cursor *mongo.Cursor) ([]*models.Thought, error) {
	defer cursor.Close(ctx)

	thoughts := make([]*models.Thought, 0)
	for cursor.Next(ctx) {
		var doc ThoughtDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode thought")
		}
		thought, err := documentToThought(&doc)
		if err != nil {
			return nil, err
		}
		thoughts = append(thoughts, thought)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate thoughts")
	}
	return thoughts, nil
}
