// api/service/locker_search_internal_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afekalocker/ambient/api/model"
)

func TestHaversineKm(t *testing.T) {
	assert.Equal(t, 0.0, haversineKm(32.1, 34.8, 32.1, 34.8))

	// one degree of latitude is about 111.19 km
	assert.InDelta(t, 111.19, haversineKm(0, 0, 1, 0), 0.1)

	// symmetric
	assert.InDelta(t,
		haversineKm(32.0, 34.0, 33.0, 35.0),
		haversineKm(33.0, 35.0, 32.0, 34.0),
		1e-9)

	// Tel Aviv to Jerusalem, roughly 54 km
	assert.InDelta(t, 54, haversineKm(32.0853, 34.7818, 31.7683, 35.2137), 2)
}

func TestPaginate(t *testing.T) {
	objects := []*model.Object{
		{ID: model.ObjectID{ID: "a"}},
		{ID: model.ObjectID{ID: "b"}},
		{ID: model.ObjectID{ID: "c"}},
	}

	assert.Len(t, paginate(objects, model.Page{Size: 2, Page: 0}), 2)
	assert.Len(t, paginate(objects, model.Page{Size: 2, Page: 1}), 1)
	assert.Empty(t, paginate(objects, model.Page{Size: 2, Page: 2}))
	assert.Empty(t, paginate(objects, model.Page{Size: 0, Page: 0}))
	assert.Equal(t, "c", paginate(objects, model.Page{Size: 2, Page: 1})[0].ID.ID)
}
