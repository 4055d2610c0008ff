package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/office-duty-card/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

func testUserCollection(t *testing.T) *MongoUserCollection {
	t.Helper()
	client, err := ConnectMongo(os.Getenv("MONGO_URI"))
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("test_duty_cards").Collection("users")
	collection.Drop(context.Background())
	return &MongoUserCollection{Collection: collection}
}

func TestMongoUserCollection_InsertUser(t *testing.T) {
	userCollection := testUserCollection(t)

	user := models.User{
		Email:        " Test@Example.com ",
		Name:         "Test User",
		PasswordHash: "hashedpassword",
		Role:         models.RoleAdmin,
	}

	err := userCollection.InsertUser(context.Background(), user)
	assert.NoError(t, err)

	// Verify user was inserted
	var foundUser models.User
	err = userCollection.Collection.FindOne(context.Background(), bson.M{"email": "test@example.com"}).Decode(&foundUser)
	assert.NoError(t, err)
	assert.Equal(t, user.Name, foundUser.Name)
	assert.Equal(t, user.Role, foundUser.Role)
	assert.True(t, foundUser.IsActive)
	assert.NotZero(t, foundUser.CreatedAt)
	assert.NotZero(t, foundUser.UpdatedAt)
}

func TestMongoUserCollection_FindUser(t *testing.T) {
	userCollection := testUserCollection(t)
	ctx := context.Background()
	require.NoError(t, userCollection.EnsureIndexes(ctx))

	err := userCollection.InsertUser(ctx, models.User{Email: "test@example.com", Role: models.RoleViewer})
	require.NoError(t, err)

	byEmail, err := userCollection.FindUserByEmail(ctx, "TEST@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, byEmail.Role)

	byID, err := userCollection.FindUserByID(ctx, byEmail.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, byEmail.Email, byID.Email)

	_, err = userCollection.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = userCollection.FindUserByID(ctx, "invalid-id")
	assert.ErrorIs(t, err, ErrInvalidID)

	// Duplicate email is rejected by the unique index.
	err = userCollection.InsertUser(ctx, models.User{Email: "Test@Example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMongoUserCollection_Updates(t *testing.T) {
	userCollection := testUserCollection(t)
	ctx := context.Background()

	require.NoError(t, userCollection.InsertUser(ctx, models.User{Email: "a@example.com", PasswordHash: "old"}))
	user, err := userCollection.FindUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.LastLogin)

	require.NoError(t, userCollection.UpdateLastLogin(ctx, user.ID.Hex()))
	require.NoError(t, userCollection.UpdatePassword(ctx, user.ID.Hex(), "new"))

	user, err = userCollection.FindUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.NotNil(t, user.LastLogin)
	assert.Equal(t, "new", user.PasswordHash)
}

func TestMongoUserCollection_NilCollection(t *testing.T) {
	coll := &MongoUserCollection{}
	ctx := context.Background()
	assert.Error(t, coll.InsertUser(ctx, models.User{}))
	_, err := coll.FindUserByEmail(ctx, "a@example.com")
	assert.Error(t, err)
	assert.Error(t, coll.UpdateLastLogin(ctx, "abc"))
}
