// internal/database/user_repository.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserDocument represents the MongoDB schema for a user
type UserDocument struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Thoughts  []string  `bson:"thoughts"` // Thought IDs, in authoring order
	Friends   []string  `bson:"friends"`  // User IDs
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func userToDocument(user *models.User) *UserDocument {
	return &UserDocument{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Thoughts:  idsToStrings(user.Thoughts),
		Friends:   idsToStrings(user.Friends),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func documentToUser(doc *UserDocument) (*models.User, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in database: %v", err)
	}
	thoughts, err := stringsToIDs(doc.Thoughts)
	if err != nil {
		return nil, fmt.Errorf("invalid thought ID on user %s: %v", doc.ID, err)
	}
	friends, err := stringsToIDs(doc.Friends)
	if err != nil {
		return nil, fmt.Errorf("invalid friend ID on user %s: %v", doc.ID, err)
	}
	return &models.User{
		ID:        id,
		Username:  doc.Username,
		Email:     doc.Email,
		Thoughts:  thoughts,
		Friends:   friends,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// CreateUser inserts a new user. Unique index violations become ErrUniqueViolation.
func (m *MongoDB) CreateUser(ctx context.Context, user *models.User) error {
	if _, err := m.Users.InsertOne(ctx, userToDocument(user)); err != nil {
		return uniqueOrWrap(err, "insert user")
	}
	return nil
}

// GetUser retrieves a user from MongoDB by their ID
func (m *MongoDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return documentToUser(&doc)
}

// GetUsersByIDs returns the users that exist among ids, in no particular order.
func (m *MongoDB) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	cursor, err := m.Users.Find(ctx, bson.M{"_id": bson.M{"$in": idsToStrings(ids)}})
	if err != nil {
		return nil, errors.Wrap(err, "find users by id")
	}
	return decodeUsers(ctx, cursor)
}

// ListUsers returns every user, oldest first.
func (m *MongoDB) ListUsers(ctx context.Context) ([]*models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := m.Users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	return decodeUsers(ctx, cursor)
}

func (m *MongoDB) CountUsers(ctx context.Context) (int64, error) {
	n, err := m.Users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, errors.Wrap(err, "count users")
	}
	return n, nil
}

// UpdateUser applies the non-nil fields of patch and returns the updated user.
func (m *MongoDB) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}

	var doc UserDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Users.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, bson.M{"$set": set}, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, uniqueOrWrap(err, "update user")
	}
	return documentToUser(&doc)
}

// DeleteUser removes a user and returns the document as it was.
func (m *MongoDB) DeleteUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var doc UserDocument

	err := m.Users.FindOneAndDelete(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete user")
	}
	return documentToUser(&doc)
}

func (m *MongoDB) PushUserThought(ctx context.Context, username string, thoughtID uuid.UUID) (int64, error) {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$push": bson.M{"thoughts": thoughtID.String()}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "push user thought")
	}
	return result.MatchedCount, nil
}

func (m *MongoDB) PullUserThought(ctx context.Context, username string, thoughtID uuid.UUID) error {
	_, err := m.Users.UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$pull": bson.M{"thoughts": thoughtID.String()}},
	)
	return errors.Wrap(err, "pull user thought")
}

// AddFriend pushes friendID only when it is not already in the list, so two
// concurrent calls cannot both append it.
func (m *MongoDB) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	filter := bson.M{
		"_id":     userID.String(),
		"friends": bson.M{"$ne": friendID.String()},
	}
	update := bson.M{
		"$push": bson.M{"friends": friendID.String()},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := m.Users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "add friend")
	}
	return result.MatchedCount > 0, nil
}

func (m *MongoDB) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) (*models.User, error) {
	var doc UserDocument

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := m.Users.FindOneAndUpdate(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$pull": bson.M{"friends": friendID.String()}},
		opts,
	).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, utils.NewUserNotFoundError(userID.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, "remove friend")
	}
	return documentToUser(&doc)
}

// PullFriendEverywhere removes friendID from every user's friends list.
func (m *MongoDB) PullFriendEverywhere(ctx context.Context, friendID uuid.UUID) (int64, error) {
	result, err := m.Users.UpdateMany(ctx,
		bson.M{"friends": friendID.String()},
		bson.M{"$pull": bson.M{"friends": friendID.String()}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "pull friend from all users")
	}
	return result.ModifiedCount, nil
}

func (m *MongoDB) SetUserThoughts(ctx context.Context, id uuid.UUID, thoughtIDs []uuid.UUID) error {
	return m.setUserList(ctx, id, "thoughts", thoughtIDs)
}

func (m *MongoDB) SetUserFriends(ctx context.Context, id uuid.UUID, friendIDs []uuid.UUID) error {
	return m.setUserList(ctx, id, "friends", friendIDs)
}

func (m *MongoDB) setUserList(ctx context.Context, id uuid.UUID, field string, ids []uuid.UUID) error {
	result, err := m.Users.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{field: idsToStrings(ids)}},
	)
	if err != nil {
		return errors.Wrapf(err, "set user %s", field)
	}
	if result.MatchedCount == 0 {
		return utils.NewUserNotFoundError(id.String())
	}
	return nil
}

func decodeUsers(ctx context.Context, cursor *mongo.Cursor) ([]*models.User, error) {
	defer cursor.Close(ctx)

	users := make([]*models.User, 0)
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decode user")
		}
		user, err := documentToUser(&doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate users")
	}
	return users, nil
}

// uniqueOrWrap turns duplicate key errors into ErrUniqueViolation AppErrors.
func uniqueOrWrap(err error, op string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(err, op)
	}
	field := "username or email"
	switch msg := err.Error(); {
	case strings.Contains(msg, "username"):
		field = "username"
	case strings.Contains(msg, "email"):
		field = "email"
	}
	return utils.NewAppError(utils.ErrUniqueViolation, fmt.Sprintf("A user with this %s already exists", field), err)
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func stringsToIDs(values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}
