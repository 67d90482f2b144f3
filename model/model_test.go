// api/model/model_test.go
package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/afekalocker/ambient/api/model"
)

func TestParseRole(t *testing.T) {
	for _, raw := range []string{"ADMIN", "OPERATOR", "END_USER"} {
		role, err := model.ParseRole(raw)
		assert.NoError(t, err)
		assert.Equal(t, model.Role(raw), role)
	}

	for _, raw := range []string{"", "admin", "Operator", "SUPERVISOR", "end_user"} {
		_, err := model.ParseRole(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestUserIDKey(t *testing.T) {
	id := model.UserID{SystemID: "ambient-lockers", Email: "user@test.com"}
	assert.Equal(t, "user@test.com/ambient-lockers", id.Key())
}

func TestTargetObjectIsWildcard(t *testing.T) {
	cases := []struct {
		id       string
		wildcard bool
	}{
		{"*", true},
		{"ALL", true},
		{"all", true},
		{"All", true},
		{"ALLOCATE", false},
		{"locker-1", false},
		{"", false},
	}
	for _, tc := range cases {
		target := model.TargetObject{ID: &model.ObjectRef{ObjectID: tc.id}}
		assert.Equal(t, tc.wildcard, target.IsWildcard(), "id=%q", tc.id)
	}

	assert.False(t, model.TargetObject{}.IsWildcard())
}

func TestObjectIsActive(t *testing.T) {
	active := true
	inactive := false

	assert.True(t, (&model.Object{Active: &active}).IsActive())
	assert.False(t, (&model.Object{Active: &inactive}).IsActive())
	assert.False(t, (&model.Object{}).IsActive())
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 0, model.Page{Size: 10, Page: 0}.Offset())
	assert.Equal(t, 20, model.Page{Size: 10, Page: 2}.Offset())
	assert.Equal(t, 15, model.Page{Size: 5, Page: 3}.Offset())
}
