package http

import (
	"github.com/graphql-go/graphql"

	"postpulse/auth"
	"postpulse/domain"
)

// mutationFields wires the state-changing operations. Every mutation that
// touches owned state goes through requireCaller first; ownership itself is
// enforced inside the crud services.
func (s *Server) mutationFields(t gqlTypes) graphql.Fields {
	return graphql.Fields{
		"registerUser": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user := &domain.User{
					Username: stringArg(p, "username"),
					Email:    stringArg(p, "email"),
					Password: stringArg(p, "password"),
				}
				if err := s.us.Register(user); err != nil {
					return nil, err
				}
				token, err := s.issuer.Sign(&auth.Caller{
					ID:       user.ID,
					Username: user.Username,
					Email:    user.Email,
				})
				if err != nil {
					return nil, err
				}
				user.Token = token
				s.sendWelcomeEmail(user)
				return user, nil
			},
		},

		"login": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: graphql.FieldConfigArgument{
				"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := s.us.Authenticate(stringArg(p, "email"), stringArg(p, "password"))
				if err != nil {
					return nil, err
				}
				token, err := s.issuer.Sign(&auth.Caller{
					ID:       user.ID,
					Username: user.Username,
					Email:    user.Email,
				})
				if err != nil {
					return nil, err
				}
				user.Token = token
				return user, nil
			},
		},

		"googleLogin": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: graphql.FieldConfigArgument{
				"username": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"idToken":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				username := stringArg(p, "username")
				email := stringArg(p, "email")

				// With a verifier configured the identity embedded in the
				// ID token wins over the client-supplied arguments.
				if s.verifier != nil {
					identity, err := s.verifier.Verify(p.Context, stringArg(p, "idToken"))
					if err != nil {
						return nil, err
					}
					email = identity.Email
					if identity.Username != "" {
						username = identity.Username
					}
				}

				user, err := s.us.ExternalLogin(username, email)
				if err != nil {
					return nil, err
				}
				token, err := s.issuer.Sign(&auth.Caller{
					ID:       user.ID,
					Username: user.Username,
					Email:    user.Email,
				})
				if err != nil {
					return nil, err
				}
				user.Token = token
				return user, nil
			},
		},

		"addPost": &graphql.Field{
			Type: graphql.NewNonNull(t.post),
			Args: graphql.FieldConfigArgument{
				"title":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to create this resource. Please authenticate.")
				if err != nil {
					return nil, err
				}
				post := &domain.Post{
					AuthorID:    caller.ID,
					Title:       stringArg(p, "title"),
					Description: stringArg(p, "description"),
				}
				if err := s.ps.Create(post); err != nil {
					return nil, err
				}
				return post, nil
			},
		},

		"deletePost": &graphql.Field{
			Type: graphql.NewNonNull(t.post),
			Args: graphql.FieldConfigArgument{
				"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to delete this post. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.ps.Delete(stringArg(p, "postId"), caller.ID)
			},
		},

		"likePost": &graphql.Field{
			Type: graphql.NewNonNull(t.post),
			Args: graphql.FieldConfigArgument{
				"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to like this post. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.ps.Like(stringArg(p, "postId"), caller.ID)
			},
		},

		"dislikePost": &graphql.Field{
			Type: graphql.NewNonNull(t.post),
			Args: graphql.FieldConfigArgument{
				"postId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to dislike this post. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.ps.Dislike(stringArg(p, "postId"), caller.ID)
			},
		},

		"addComment": &graphql.Field{
			Type: t.comment,
			Args: graphql.FieldConfigArgument{
				"postId":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"description": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to create this resource. Please authenticate.")
				if err != nil {
					return nil, err
				}
				comment := &domain.Comment{
					AuthorID:    caller.ID,
					PostID:      stringArg(p, "postId"),
					Description: stringArg(p, "description"),
				}
				if err := s.cs.Create(comment); err != nil {
					return nil, err
				}
				return comment, nil
			},
		},

		"deleteComment": &graphql.Field{
			Type: graphql.NewNonNull(t.comment),
			Args: graphql.FieldConfigArgument{
				"commentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to delete this comment. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.cs.Delete(stringArg(p, "commentId"), caller.ID)
			},
		},

		"followUser": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: graphql.FieldConfigArgument{
				"followUserId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to perform this action. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.us.Follow(caller.ID, stringArg(p, "followUserId"))
			},
		},

		"unfollowUser": &graphql.Field{
			Type: graphql.NewNonNull(t.user),
			Args: graphql.FieldConfigArgument{
				"unfollowUserId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to perform this action. Please authenticate.")
				if err != nil {
					return nil, err
				}
				return s.us.Unfollow(caller.ID, stringArg(p, "unfollowUserId"))
			},
		},

		"createCheckoutSession": &graphql.Field{
			Type: graphql.NewNonNull(t.checkout),
			Args: graphql.FieldConfigArgument{
				"email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				caller, err := requireCaller(p.Context, "You are not authorized to perform this action. Please authenticate.")
				if err != nil {
					return nil, err
				}
				sessionID, err := s.pays.CreateCheckoutSession(caller.ID, stringArg(p, "email"))
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"sessionID": sessionID}, nil
			},
		},
	}
}
