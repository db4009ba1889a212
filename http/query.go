package http

import (
	"github.com/graphql-go/graphql"

	"postpulse/errs"
)

// queryFields wires the read-only operations. None of them require a caller
// identity except helloWorld, which is a liveness probe gated on caller
// presence. Lookups of absent users/posts resolve to null rather than an
// error; list operations return every match, unpaginated.
func (s *Server) queryFields(t gqlTypes) graphql.Fields {
	return graphql.Fields{
		"helloWorld": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				_, err := requireCaller(p.Context, "You are not authorized to access this resource. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return "hello World", nil
			},
		},

		"getAllUsers": &graphql.Field{
			Type: graphql.NewList(t.user),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.us.All()
			},
		},

		"getUser": &graphql.Field{
			Type: t.user,
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := s.us.ByID(stringArg(p, "userId"))
				if errs.ErrorCode(err) == errs.ENOTFOUND {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return user, nil
			},
		},

		"getAllPosts": &graphql.Field{
			Type: graphql.NewList(t.post),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.ps.All()
			},
		},

		"getAllTrendingPosts": &graphql.Field{
			Type: graphql.NewList(t.post),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.ps.Trending()
			},
		},

		"getPost": &graphql.Field{
			Type: t.post,
			Args: graphql.FieldConfigArgument{
				"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				post, err := s.ps.ByID(stringArg(p, "postId"))
				if errs.ErrorCode(err) == errs.ENOTFOUND {
					return nil, nil
				}
				if err != nil {
					return nil, err
				}
				return post, nil
			},
		},

		"getPostBySearch": &graphql.Field{
			Type: graphql.NewList(t.post),
			Args: graphql.FieldConfigArgument{
				"searchQuery": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.ps.Search(stringArg(p, "searchQuery"))
			},
		},

		"getComments": &graphql.Field{
			Type: graphql.NewList(t.comment),
			Args: graphql.FieldConfigArgument{
				"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.cs.ByPost(stringArg(p, "postId"))
			},
		},

		"getRandomUsers": &graphql.Field{
			Type: graphql.NewList(t.user),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.us.Random(5)
			},
		},

		"getPostsByUser": &graphql.Field{
			Type: graphql.NewList(t.post),
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return s.ps.ByAuthor(stringArg(p, "userId"))
			},
		},
	}
}
