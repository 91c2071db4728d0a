package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
)

type (
	// IdentityProvider is the slice of the upstream identity provider the
	// authenticator needs: account liveness and fresh group membership.
	IdentityProvider interface {
		UserEnabled(ctx context.Context, username string) (bool, error)
		UserGroups(ctx context.Context, username string) ([]string, error)
	}

	cognitoProvider struct {
		client     *cognitoidentityprovider.Client
		userPoolID string
	}
)

func NewCognitoProvider(awsCfg aws.Config, userPoolID string) IdentityProvider {
	return &cognitoProvider{
		client:     cognitoidentityprovider.NewFromConfig(awsCfg),
		userPoolID: userPoolID,
	}
}

func (p *cognitoProvider) UserEnabled(ctx context.Context, username string) (bool, error) {
	out, err := p.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return false, fmt.Errorf("admin get user: %w", err)
	}
	return out.Enabled, nil
}

func (p *cognitoProvider) UserGroups(ctx context.Context, username string) ([]string, error) {
	out, err := p.client.AdminListGroupsForUser(ctx, &cognitoidentityprovider.AdminListGroupsForUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, fmt.Errorf("admin list groups for user: %w", err)
	}
	groups := make([]string, 0, len(out.Groups))
	for _, g := range out.Groups {
		if g.GroupName != nil {
			groups = append(groups, *g.GroupName)
		}
	}
	return groups, nil
}
