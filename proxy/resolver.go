// Package proxy serves a small user schema over GraphQL and forwards every
// field to Hasura.
package proxy

import (
	"context"
	"errors"

	"github.com/pranshuj73/gifzoo/hasura"
	"github.com/pranshuj73/gifzoo/logger"
)

// Upstream is the slice of the Hasura client the resolvers need
type Upstream interface {
	Users(ctx context.Context) ([]hasura.User, error)
	UserByID(ctx context.Context, id int) (*hasura.User, error)
	InsertUser(ctx context.Context, name, email string, mobile int) (*hasura.User, error)
}

// Resolver is the root resolver for both Query and Mutation
type Resolver struct {
	upstream Upstream
}

// NewResolver creates a root resolver backed by upstream
func NewResolver(upstream Upstream) *Resolver {
	return &Resolver{upstream: upstream}
}

// GetUsers resolves Query.getUsers
func (r *Resolver) GetUsers(ctx context.Context) (*[]*UserResolver, error) {
	users, err := r.upstream.Users(ctx)
	if err != nil {
		return nil, forward("getUsers", err)
	}

	out := make([]*UserResolver, 0, len(users))
	for _, u := range users {
		out = append(out, &UserResolver{user: u})
	}
	return &out, nil
}

// GetUserByID resolves Query.getUserById. An unknown id is null.
func (r *Resolver) GetUserByID(ctx context.Context, args struct{ ID int32 }) (*UserResolver, error) {
	user, err := r.upstream.UserByID(ctx, int(args.ID))
	if err != nil {
		return nil, forward("getUserById", err)
	}
	if user == nil {
		return nil, nil
	}
	return &UserResolver{user: *user}, nil
}

// AddUser resolves Mutation.addUser
func (r *Resolver) AddUser(ctx context.Context, args struct {
	Name   string
	Email  string
	Mobile int32
}) (*UserResolver, error) {
	user, err := r.upstream.InsertUser(ctx, args.Name, args.Email, int(args.Mobile))
	if err != nil {
		return nil, forward("addUser", err)
	}
	if user == nil {
		return nil, nil
	}
	return &UserResolver{user: *user}, nil
}

// forward logs the full upstream error and returns only its first message
func forward(field string, err error) error {
	logger.Error("Upstream call failed", err, map[string]interface{}{
		"field": field,
	})
	return errors.New(hasura.FirstMessage(err))
}

// UserResolver resolves the User type
type UserResolver struct {
	user hasura.User
}

func (u *UserResolver) ID() *int32 {
	id := int32(u.user.ID)
	return &id
}

func (u *UserResolver) Name() *string {
	return &u.user.Name
}

func (u *UserResolver) Email() *string {
	return &u.user.Email
}

func (u *UserResolver) Mobile() *int32 {
	mobile := int32(u.user.Mobile)
	return &mobile
}
