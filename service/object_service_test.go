// api/service/object_service_test.go
package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
)

func TestCreateObject_RoleGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	active := true

	draft := func(creator model.UserID) *model.Object {
		return &model.Object{
			Type: "locker", Alias: "corner unit", Status: "available",
			Active: &active, CreatedBy: &creator,
		}
	}

	created, err := env.objectService.CreateObject(ctx, draft(operatorID), false)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID.ID)
	assert.Equal(t, testSystemID, created.ID.SystemID)
	assert.False(t, created.CreationTimestamp.IsZero())

	_, err = env.objectService.CreateObject(ctx, draft(endUserID), false)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	_, err = env.objectService.CreateObject(ctx, draft(adminID), false)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	// unknown creator
	ghost := model.UserID{SystemID: testSystemID, Email: "ghost@test.com"}
	_, err = env.objectService.CreateObject(ctx, draft(ghost), false)
	assert.True(t, errors.Is(err, ambient_errors.ErrNotFound))

	// missing mandatory fields
	_, err = env.objectService.CreateObject(ctx, &model.Object{Type: "locker", CreatedBy: &operatorID}, false)
	assert.True(t, errors.Is(err, ambient_errors.ErrInvalidInput))
}

func TestGetObjectByID_Visibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{id: "active-1", typ: "locker", status: "available", active: true})
	env.seedObject(t, objectSpec{id: "inactive-1", typ: "locker", status: "available", active: false})

	// operator sees everything
	obj, err := env.objectService.GetObjectByID(ctx, "inactive-1", operatorID)
	require.NoError(t, err)
	assert.Equal(t, "inactive-1", obj.ID.ID)

	// end user sees only active objects
	_, err = env.objectService.GetObjectByID(ctx, "active-1", endUserID)
	require.NoError(t, err)
	_, err = env.objectService.GetObjectByID(ctx, "inactive-1", endUserID)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	// admin is an auditing role with no inventory access at all
	_, err = env.objectService.GetObjectByID(ctx, "active-1", adminID)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	_, err = env.objectService.GetObjectByID(ctx, "missing", operatorID)
	assert.True(t, errors.Is(err, ambient_errors.ErrNotFound))
}

func TestGetAllObjects_PaginationIsStableAndOrdered(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 7; i++ {
		env.seedObject(t, objectSpec{
			id: fmt.Sprintf("obj-%d", i), typ: "locker", status: "available", active: true,
			createdAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	first, err := env.objectService.GetAllObjects(ctx, operatorID, model.Page{Size: 3, Page: 0})
	require.NoError(t, err)
	second, err := env.objectService.GetAllObjects(ctx, operatorID, model.Page{Size: 3, Page: 1})
	require.NoError(t, err)
	third, err := env.objectService.GetAllObjects(ctx, operatorID, model.Page{Size: 3, Page: 2})
	require.NoError(t, err)

	var ids []string
	for _, page := range [][]*model.Object{first, second, third} {
		for _, obj := range page {
			ids = append(ids, obj.ID.ID)
		}
	}
	require.Len(t, ids, 7)
	for i, id := range ids {
		assert.Equal(t, fmt.Sprintf("obj-%d", i), id)
	}

	beyond, err := env.objectService.GetAllObjects(ctx, operatorID, model.Page{Size: 3, Page: 10})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestGetAllObjects_TimestampTieBreaksOnID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ts := time.Now()
	env.seedObject(t, objectSpec{id: "b", typ: "locker", status: "available", active: true, createdAt: ts})
	env.seedObject(t, objectSpec{id: "a", typ: "locker", status: "available", active: true, createdAt: ts})
	env.seedObject(t, objectSpec{id: "c", typ: "locker", status: "available", active: true, createdAt: ts})

	objects, err := env.objectService.GetAllObjects(ctx, operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "a", objects[0].ID.ID)
	assert.Equal(t, "b", objects[1].ID.ID)
	assert.Equal(t, "c", objects[2].ID.ID)
}

func TestUpdateObject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{
		id: "locker-1", typ: "locker", status: "available", active: true,
		details: map[string]interface{}{"number": 4},
	})

	patch := &model.ObjectPatch{Type: "locker", Alias: "updated", Status: "maintenance"}
	require.NoError(t, env.objectService.UpdateObject(ctx, "locker-1", operatorID, patch, false))

	updated, err := env.objects.FindByID(ctx, "locker-1")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Alias)
	assert.Equal(t, "maintenance", updated.Status)
	// untouched optional fields survive
	assert.Equal(t, 4, updated.Details["number"])
	assert.True(t, updated.IsActive())

	err = env.objectService.UpdateObject(ctx, "locker-1", endUserID, patch, false)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	err = env.objectService.UpdateObject(ctx, "missing", operatorID, patch, false)
	assert.True(t, errors.Is(err, ambient_errors.ErrNotFound))

	err = env.objectService.UpdateObject(ctx, "locker-1", operatorID, &model.ObjectPatch{Type: "locker"}, false)
	assert.True(t, errors.Is(err, ambient_errors.ErrInvalidInput))
}

func TestDeleteAllObjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{id: "locker-1", typ: "locker", status: "available", active: true})

	err := env.objectService.DeleteAllObjects(ctx, operatorID)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))
	assert.Equal(t, 1, env.objects.Count())

	require.NoError(t, env.objectService.DeleteAllObjects(ctx, adminID))
	assert.Equal(t, 0, env.objects.Count())
}

func TestBindObjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{id: "block-1", typ: "lockerBlock", status: "available", active: true})
	env.seedObject(t, objectSpec{id: "locker-1", typ: "locker", status: "available", active: true})

	require.NoError(t, env.objectService.BindObjects(ctx, "block-1", "locker-1", operatorID))

	children, err := env.objectService.GetChildren(ctx, "block-1", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "locker-1", children[0].ID.ID)

	parents, err := env.objectService.GetParent(ctx, "locker-1", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "block-1", parents[0].ID.ID)

	// rebinding replaces the previous parent
	env.seedObject(t, objectSpec{id: "block-2", typ: "lockerBlock", status: "available", active: true})
	require.NoError(t, env.objectService.BindObjects(ctx, "block-2", "locker-1", operatorID))
	parents, err = env.objectService.GetParent(ctx, "locker-1", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, parents, 1)
	assert.Equal(t, "block-2", parents[0].ID.ID)

	err = env.objectService.BindObjects(ctx, "block-1", "locker-1", endUserID)
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))

	err = env.objectService.BindObjects(ctx, "missing", "locker-1", operatorID)
	assert.True(t, errors.Is(err, ambient_errors.ErrNotFound))

	err = env.objectService.BindObjects(ctx, "", "locker-1", operatorID)
	assert.True(t, errors.Is(err, ambient_errors.ErrInvalidInput))
}

func TestGetParent_NoParentIsEmptyNotError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{id: "orphan", typ: "locker", status: "available", active: true})

	parents, err := env.objectService.GetParent(ctx, "orphan", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	assert.Empty(t, parents)

	// page beyond the single parent is empty too
	env.seedObject(t, objectSpec{id: "block-1", typ: "lockerBlock", status: "available", active: true})
	require.NoError(t, env.objectService.BindObjects(ctx, "block-1", "orphan", operatorID))
	parents, err = env.objectService.GetParent(ctx, "orphan", operatorID, model.Page{Size: 10, Page: 1})
	require.NoError(t, err)
	assert.Empty(t, parents)
}

func TestGetChildren_EndUserFiltering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedObject(t, objectSpec{id: "block-1", typ: "lockerBlock", status: "available", active: true})
	base := time.Now()
	env.seedObject(t, objectSpec{id: "child-1", typ: "locker", status: "available", active: true, parentID: "block-1", createdAt: base})
	env.seedObject(t, objectSpec{id: "child-2", typ: "locker", status: "available", active: false, parentID: "block-1", createdAt: base.Add(time.Second)})

	children, err := env.objectService.GetChildren(ctx, "block-1", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	assert.Len(t, children, 2)

	children, err = env.objectService.GetChildren(ctx, "block-1", endUserID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "child-1", children[0].ID.ID)

	// inactive parent is hidden from end users entirely
	env.seedObject(t, objectSpec{id: "block-hidden", typ: "lockerBlock", status: "available", active: false})
	_, err = env.objectService.GetChildren(ctx, "block-hidden", endUserID, model.Page{Size: 10, Page: 0})
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))
}

func TestSearchObjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Now()
	env.seedObject(t, objectSpec{id: "north-block", typ: "lockerBlock", status: "available", active: true, createdAt: base})
	env.seedObject(t, objectSpec{id: "north-annex", typ: "lockerBlock", status: "maintenance", active: true, createdAt: base.Add(time.Second)})
	env.seedObject(t, objectSpec{id: "south-block", typ: "locker", status: "available", active: false, createdAt: base.Add(2 * time.Second)})

	byAlias, err := env.objectService.SearchByExactAlias(ctx, "north-block", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, byAlias, 1)

	byPattern, err := env.objectService.SearchByAliasPattern(ctx, "north", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	assert.Len(t, byPattern, 2)

	byType, err := env.objectService.SearchByType(ctx, "lockerBlock", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	byStatus, err := env.objectService.SearchByStatus(ctx, "available", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byBoth, err := env.objectService.SearchByTypeAndStatus(ctx, "lockerBlock", "available", operatorID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, "north-block", byBoth[0].ID.ID)

	// end users do not see the inactive match
	byStatus, err = env.objectService.SearchByStatus(ctx, "available", endUserID, model.Page{Size: 10, Page: 0})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "north-block", byStatus[0].ID.ID)

	_, err = env.objectService.SearchByType(ctx, "", operatorID, model.Page{Size: 10, Page: 0})
	assert.True(t, errors.Is(err, ambient_errors.ErrInvalidInput))

	_, err = env.objectService.SearchByType(ctx, "lockerBlock", adminID, model.Page{Size: 10, Page: 0})
	assert.True(t, errors.Is(err, ambient_errors.ErrForbidden))
}
