package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register("Alice", "alice@example.com")
	bob := env.register("Bob", "bob@example.com")

	group := createGroup(t, alice, "Roommates",
		api.Member{ID: bob.ID, Name: "ignored"},
		api.Member{Name: "Charlie"},
	)

	if group.ID == "" {
		t.Error("expected group ID to be generated")
	}
	if group.CreatedBy != alice.ID {
		t.Errorf("CreatedBy = %s, want %s", group.CreatedBy, alice.ID)
	}
	if len(group.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(group.Members))
	}
	if group.Members[0].ID != alice.ID || group.Members[0].Name != "Alice" {
		t.Errorf("creator should be the first member, got %+v", group.Members[0])
	}
	if group.Members[1].ID != bob.ID || group.Members[1].Name != "Bob" {
		t.Errorf("registered member should use account name, got %+v", group.Members[1])
	}
	if group.Members[2].Name != "Charlie" || group.Members[2].ID == "" {
		t.Errorf("name-only member should get an ID, got %+v", group.Members[2])
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register("Alice", "alice@example.com")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{name: "empty name", req: &api.CreateGroupRequest{Name: "  "}},
		{name: "unknown user id", req: &api.CreateGroupRequest{Name: "Trip", Members: []api.Member{{ID: "ghost"}}}},
		{name: "member without name", req: &api.CreateGroupRequest{Name: "Trip", Members: []api.Member{{}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.Groups.CreateGroup(ctx, connect.NewRequest(tt.req))
			wantCode(t, err, connect.CodeInvalidArgument)
		})
	}

	t.Run("unauthenticated", func(t *testing.T) {
		_, groups, _ := env.clientsFor("")
		_, err := groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
		wantCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestGroupMembership(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register("Alice", "alice@example.com")
	bob := env.register("Bob", "bob@example.com")
	mallory := env.register("Mallory", "mallory@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Roommates", api.Member{ID: bob.ID})

	t.Run("member can read", func(t *testing.T) {
		resp, err := bob.Groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if resp.Msg.Group.Name != "Roommates" {
			t.Errorf("Name = %q, want Roommates", resp.Msg.Group.Name)
		}
	})

	t.Run("outsider is denied", func(t *testing.T) {
		_, err := mallory.Groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := alice.Groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: "nope"}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("ListGroups only shows own groups", func(t *testing.T) {
		createGroup(t, mallory, "Secret")

		resp, err := bob.Groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != 1 || resp.Msg.Groups[0].ID != group.ID {
			t.Errorf("unexpected groups %+v", resp.Msg.Groups)
		}
	})
}

func TestUpdateAndAddMembers(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register("Alice", "alice@example.com")
	bob := env.register("Bob", "bob@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Trip")

	updated, err := alice.Groups.UpdateGroup(ctx, connect.NewRequest(&api.UpdateGroupRequest{
		GroupID: group.ID,
		Name:    "Beach Trip",
	}))
	if err != nil {
		t.Fatalf("UpdateGroup failed: %v", err)
	}
	if updated.Msg.Group.Name != "Beach Trip" {
		t.Errorf("Name = %q, want Beach Trip", updated.Msg.Group.Name)
	}

	added, err := alice.Groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{
		GroupID: group.ID,
		Members: []api.Member{{ID: bob.ID}, {ID: alice.ID}, {Name: "Dana"}},
	}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	names := make([]string, len(added.Msg.Group.Members))
	for i, m := range added.Msg.Group.Members {
		names[i] = m.Name
	}
	if len(names) != 3 || names[0] != "Alice" || names[1] != "Bob" || names[2] != "Dana" {
		t.Errorf("roster = %v, want [Alice Bob Dana]", names)
	}

	// Bob can now see the group.
	if _, err := bob.Groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID})); err != nil {
		t.Errorf("new member GetGroup failed: %v", err)
	}

	_, err = alice.Groups.AddMembers(ctx, connect.NewRequest(&api.AddMembersRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	alice := env.register("Alice", "alice@example.com")
	bob := env.register("Bob", "bob@example.com")
	ctx := context.Background()

	group := createGroup(t, alice, "Trip", api.Member{ID: bob.ID})

	_, err := bob.Groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodePermissionDenied)

	if _, err := alice.Groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = alice.Groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
	wantCode(t, err, connect.CodeNotFound)
}
