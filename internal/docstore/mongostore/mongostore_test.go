package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/diftofficial/systemAplikaciaGYM/internal/docstore"
)

func TestBuildFindTranslatesFiltersAndSort(t *testing.T) {
	since := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	q := docstore.Where("dateTime", docstore.OpGreaterOrEqual, since).
		And("trainerId", docstore.OpEqual, "t1").
		Ordered("dateTime")
	q.Limit = 3

	filter, findOpts, err := buildFind(q)
	if err != nil {
		t.Fatalf("buildFind: %v", err)
	}
	if len(filter) != 2 {
		t.Fatalf("expected two filter clauses, got %d", len(filter))
	}
	if filter[0].Key != "dateTime" {
		t.Fatalf("unexpected first clause %+v", filter[0])
	}
	gte, ok := filter[0].Value.(bson.M)
	if !ok || !gte["$gte"].(time.Time).Equal(since) {
		t.Fatalf("expected $gte clause, got %+v", filter[0].Value)
	}
	if filter[1].Key != "trainerId" || filter[1].Value != "t1" {
		t.Fatalf("unexpected equality clause %+v", filter[1])
	}
	if findOpts.Limit == nil || *findOpts.Limit != 3 {
		t.Fatalf("expected limit 3, got %v", findOpts.Limit)
	}
	sort, ok := findOpts.Sort.(bson.D)
	if !ok || sort[0].Key != "dateTime" {
		t.Fatalf("expected dateTime sort, got %+v", findOpts.Sort)
	}
}

func TestToDocumentNormalisesBSONValues(t *testing.T) {
	ts := time.Date(2030, 3, 15, 9, 0, 0, 0, time.UTC)
	doc := toDocument("sessions", bson.M{
		"_id":               "s1",
		"participantsCount": int32(2),
		"dateTime":          primitive.NewDateTimeFromTime(ts),
	})

	if doc.ID != "s1" {
		t.Fatalf("unexpected id %q", doc.ID)
	}
	if doc.Has("_id") {
		t.Fatalf("expected _id to be stripped from fields")
	}
	if doc.Fields["participantsCount"] != int64(2) {
		t.Fatalf("expected int64 count, got %T", doc.Fields["participantsCount"])
	}
	if !doc.Time("dateTime").Equal(ts) {
		t.Fatalf("unexpected time %v", doc.Time("dateTime"))
	}
}

func TestStoreCommitAgainstReplicaSet(t *testing.T) {
	uri := os.Getenv("MONGO_URL")
	if uri == "" {
		t.Skip("skipping integration test: MONGO_URL is not set")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	dbName := fmt.Sprintf("docstore_test_%d", time.Now().UnixNano())
	store := New(client, dbName)
	t.Cleanup(func() { _ = client.Database(dbName).Drop(ctx) })

	if err := store.Commit(ctx, []docstore.Write{
		docstore.Create("users", "u1", map[string]any{"points": 10}),
	}, nil); err != nil {
		t.Fatalf("Commit create: %v", err)
	}

	err = store.Commit(ctx,
		[]docstore.Write{docstore.Update("users", "u1", map[string]any{"points": 5})},
		[]docstore.Precondition{docstore.FieldEquals("users", "u1", "points", 7)},
	)
	if !errors.Is(err, docstore.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	doc, err := store.Get(ctx, "users", "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Int("points") != 10 {
		t.Fatalf("expected unchanged balance, got %d", doc.Int("points"))
	}

	if _, err := store.Get(ctx, "users", "missing"); !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
