// api/policy/policy_test.go
package policy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	ambient_errors "github.com/afekalocker/ambient/api/errors"
	"github.com/afekalocker/ambient/api/model"
	"github.com/afekalocker/ambient/api/policy"
)

func TestDecide_FullTable(t *testing.T) {
	cases := []struct {
		role     model.Role
		op       policy.Operation
		expected policy.Decision
	}{
		{model.RoleAdmin, policy.OpReadObjects, policy.Deny},
		{model.RoleAdmin, policy.OpWriteObjects, policy.Deny},
		{model.RoleAdmin, policy.OpBindObjects, policy.Deny},
		{model.RoleAdmin, policy.OpExecuteCommands, policy.Deny},
		{model.RoleAdmin, policy.OpAdminPurge, policy.Allow},
		{model.RoleAdmin, policy.OpReadCommandHistory, policy.Allow},
		{model.RoleAdmin, policy.OpReadUsers, policy.Allow},

		{model.RoleOperator, policy.OpReadObjects, policy.Allow},
		{model.RoleOperator, policy.OpWriteObjects, policy.Allow},
		{model.RoleOperator, policy.OpBindObjects, policy.Allow},
		{model.RoleOperator, policy.OpExecuteCommands, policy.Deny},
		{model.RoleOperator, policy.OpAdminPurge, policy.Deny},
		{model.RoleOperator, policy.OpReadCommandHistory, policy.Deny},
		{model.RoleOperator, policy.OpReadUsers, policy.Deny},

		{model.RoleEndUser, policy.OpReadObjects, policy.AllowIfActive},
		{model.RoleEndUser, policy.OpWriteObjects, policy.Deny},
		{model.RoleEndUser, policy.OpBindObjects, policy.Deny},
		{model.RoleEndUser, policy.OpExecuteCommands, policy.Allow},
		{model.RoleEndUser, policy.OpAdminPurge, policy.Deny},
		{model.RoleEndUser, policy.OpReadCommandHistory, policy.Deny},
		{model.RoleEndUser, policy.OpReadUsers, policy.Deny},
	}

	for _, tc := range cases {
		decision, err := policy.Decide(tc.role, tc.op)
		assert.NoError(t, err, "%s/%s", tc.role, tc.op)
		assert.Equal(t, tc.expected, decision, "%s/%s", tc.role, tc.op)
	}
}

func TestDecide_UnknownRole(t *testing.T) {
	_, err := policy.Decide(model.Role("SUPERVISOR"), policy.OpReadObjects)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ambient_errors.ErrUnknownRole))
}

func TestCanSee(t *testing.T) {
	active := true
	inactive := false

	activeObj := &model.Object{Active: &active}
	inactiveObj := &model.Object{Active: &inactive}
	unsetObj := &model.Object{}

	assert.True(t, policy.CanSee(policy.Allow, inactiveObj))
	assert.True(t, policy.CanSee(policy.AllowIfActive, activeObj))
	assert.False(t, policy.CanSee(policy.AllowIfActive, inactiveObj))
	assert.False(t, policy.CanSee(policy.AllowIfActive, unsetObj))
	assert.False(t, policy.CanSee(policy.AllowIfActive, nil))
	assert.False(t, policy.CanSee(policy.Deny, activeObj))
}
