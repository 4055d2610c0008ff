package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/office-duty-card/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestConnectMongo_BadURI(t *testing.T) {
	client, err := ConnectMongo("mongodb://bad:uri")
	if err == nil {
		t.Error("expected error for bad URI, got nil")
	}
	if client != nil {
		t.Error("expected nil client on error")
	}
}

func TestMongoCardCollection_NilCollection(t *testing.T) {
	coll := &MongoCardCollection{Collection: nil}
	ctx := context.Background()

	if _, err := coll.InsertCard(ctx, models.Card{}); err == nil {
		t.Error("expected error when collection is nil")
	}
	if _, err := coll.ListCards(ctx); err == nil {
		t.Error("expected error when collection is nil")
	}
	if err := coll.DeleteCard(ctx, "abc"); err == nil {
		t.Error("expected error when collection is nil")
	}
}

func testCardCollection(t *testing.T) *MongoCardCollection {
	t.Helper()
	client, err := ConnectMongo(os.Getenv("MONGO_URI"))
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("test_duty_cards").Collection("cards")
	collection.Drop(context.Background())
	return &MongoCardCollection{Collection: collection}
}

func sampleCard(serial string) models.Card {
	return models.Card{
		Employee: models.EmployeeRecord{
			SerialNo:     serial,
			EmployeeCode: "E-" + serial,
			EmployeeName: "Bilal Ahmed",
			CNIC:         "42101-1234567-1",
			PhotoURL:     "https://res.example.com/" + serial + ".jpg",
		},
		Vehicle: models.VehicleRecord{VehicleNo: "KHI-" + serial, Region: "South"},
	}
}

func TestMongoCardCollection_CRUD(t *testing.T) {
	coll := testCardCollection(t)
	ctx := context.Background()
	require.NoError(t, coll.EnsureIndexes(ctx))

	id, err := coll.InsertCard(ctx, sampleCard("1"))
	require.NoError(t, err)

	found, err := coll.FindCardByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "1", found.Employee.SerialNo)
	assert.NotZero(t, found.CreatedAt)
	assert.Nil(t, found.UpdatedAt)

	// Update without a photo URL keeps the stored one.
	emp := found.Employee
	emp.PhotoURL = ""
	emp.EmployeeName = "Bilal A."
	require.NoError(t, coll.UpdateCard(ctx, id, emp, found.Vehicle))

	updated, err := coll.FindCardByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bilal A.", updated.Employee.EmployeeName)
	assert.Equal(t, "https://res.example.com/1.jpg", updated.Employee.PhotoURL)
	assert.NotNil(t, updated.UpdatedAt)

	matches, err := coll.FindCardsByEmployeeField(ctx, "serial_no", "1")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, coll.DeleteCard(ctx, id))
	_, err = coll.FindCardByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, coll.DeleteCard(ctx, id), ErrNotFound)
}

func TestMongoCardCollection_ListNewestFirst(t *testing.T) {
	coll := testCardCollection(t)
	ctx := context.Background()

	first, err := coll.InsertCard(ctx, sampleCard("1"))
	require.NoError(t, err)
	second, err := coll.InsertCard(ctx, sampleCard("2"))
	require.NoError(t, err)

	cards, err := coll.ListCards(ctx)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, second, cards[0].ID.Hex())
	assert.Equal(t, first, cards[1].ID.Hex())
}

func TestMongoCardCollection_InvalidID(t *testing.T) {
	coll := &MongoCardCollection{Collection: &mongo.Collection{}}
	ctx := context.Background()

	_, err := coll.FindCardByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.ErrorIs(t, coll.DeleteCard(ctx, "not-an-id"), ErrInvalidID)
	assert.ErrorIs(t, coll.UpdateCard(ctx, "not-an-id", models.EmployeeRecord{}, models.VehicleRecord{}), ErrInvalidID)
}
