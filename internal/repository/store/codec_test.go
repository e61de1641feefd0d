package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mamadbah2/hatchlog/internal/domain/models"
)

func TestNewDocumentAssignsID(t *testing.T) {
	inc := models.NewIncubation("u1", "Spring", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10, "")

	doc, id, err := NewDocument(inc)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, doc[IDField])
	assert.Equal(t, "2024-01-22T00:00:00.000Z", doc["hatchDate"])

	back, err := Decode[models.Incubation](doc)
	require.NoError(t, err)
	assert.Equal(t, id, back.ID)
	assert.True(t, inc.StartDate.Equal(back.StartDate.Time))
}

func TestEnsureIDKeepsExisting(t *testing.T) {
	doc := bson.M{IDField: "fixed"}
	assert.Equal(t, "fixed", EnsureID(doc))
}

func TestDecodeTreatsMalformedDatesAsAbsent(t *testing.T) {
	med, err := Decode[models.Medication](bson.M{
		IDField:        "m1",
		"name":         "Vitamin B",
		"dateGiven":    "yesterday",
		"nextSchedule": "soon",
	})
	require.NoError(t, err)
	assert.True(t, med.DateGiven.IsZero())
	_, ok := med.NextDue()
	assert.False(t, ok)
}

func TestFilterDocument(t *testing.T) {
	f, err := ByOwner("u1").Document()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"userId": "u1"}, f)

	empty, err := Filter(nil).Document()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPatchDocumentDropsID(t *testing.T) {
	doc, err := Patch{IDField: "other", "status": models.StatusCompleted}.Document()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"status": "completed"}, doc)
}
