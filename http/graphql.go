package http

import (
	"context"

	"github.com/graphql-go/graphql"

	"postpulse/auth"
	"postpulse/domain"
	"postpulse/errs"
)

// gqlTypes holds the schema's object types so the query and mutation field
// builders can share them.
type gqlTypes struct {
	user     *graphql.Object
	post     *graphql.Object
	comment  *graphql.Object
	checkout *graphql.Object
}

// buildSchema assembles the full GraphQL schema. Plain fields resolve off
// the domain structs' json tags; derived fields (postsCount, author,
// commentsCount) are computed per read by a secondary lookup.
func (s *Server) buildSchema() (graphql.Schema, error) {
	t := gqlTypes{}

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"_id":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"username": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"email":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"bio": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user := userSource(p)
					if user == nil || user.Bio == "" {
						return nil, nil
					}
					return user.Bio, nil
				},
			},
			"token":     &graphql.Field{Type: graphql.ID},
			"followers": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"followingUsers": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.String)),
			},
			"postsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user := userSource(p)
					if user == nil {
						return 0, nil
					}
					return s.ps.CountByAuthor(user.ID)
				},
			},
		},
	})

	t.post = graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"_id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"authorId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"likes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.String)),
			},
			"dislikes": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(graphql.String)),
			},
			"likesCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"author": &graphql.Field{
				Type: graphql.NewNonNull(t.user),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					post := postSource(p)
					if post == nil {
						return nil, nil
					}
					return s.us.ByID(post.AuthorID)
				},
			},
			"commentsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					post := postSource(p)
					if post == nil {
						return 0, nil
					}
					return s.cs.CountByPost(post.ID)
				},
			},
		},
	})

	t.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.Fields{
			"_id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"authorId":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"postId":      &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
			"description": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"author": &graphql.Field{
				Type: t.user,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					comment := commentSource(p)
					if comment == nil {
						return nil, nil
					}
					user, err := s.us.ByID(comment.AuthorID)
					if errs.ErrorCode(err) == errs.ENOTFOUND {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return user, nil
				},
			},
		},
	})

	t.checkout = graphql.NewObject(graphql.ObjectConfig{
		Name: "CheckoutSession",
		Fields: graphql.Fields{
			"sessionID": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: s.queryFields(t),
	})
	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Mutation",
		Fields: s.mutationFields(t),
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// requireCaller returns the caller attached to the request context, or an
// authentication error carrying the operation's message.
func requireCaller(ctx context.Context, message string) (*auth.Caller, error) {
	caller := auth.GetCaller(ctx)
	if caller == nil {
		return nil, errs.Errorf(errs.EUNAUTHENTICATED, message)
	}
	return caller, nil
}

// userSource normalizes the resolver source: single lookups hand the
// executor a pointer, list elements come through by value.
func userSource(p graphql.ResolveParams) *domain.User {
	switch u := p.Source.(type) {
	case *domain.User:
		return u
	case domain.User:
		return &u
	}
	return nil
}

func postSource(p graphql.ResolveParams) *domain.Post {
	switch v := p.Source.(type) {
	case *domain.Post:
		return v
	case domain.Post:
		return &v
	}
	return nil
}

func commentSource(p graphql.ResolveParams) *domain.Comment {
	switch v := p.Source.(type) {
	case *domain.Comment:
		return v
	case domain.Comment:
		return &v
	}
	return nil
}

// stringArg reads a required string/ID argument.
func stringArg(p graphql.ResolveParams, name string) string {
	value, _ := p.Args[name].(string)
	return value
}
