package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/rs/zerolog"
)

// CognitoAPI is the subset of the Cognito user pool client in use.
type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	GetUser(ctx context.Context, params *cip.GetUserInput, optFns ...func(*cip.Options)) (*cip.GetUserOutput, error)
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	GlobalSignOut(ctx context.Context, params *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
	ForgotPassword(ctx context.Context, params *cip.ForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error)
	ConfirmForgotPassword(ctx context.Context, params *cip.ConfirmForgotPasswordInput, optFns ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error)
}

// CognitoProvider implements IdentityProvider on a Cognito user pool app client.
type CognitoProvider struct {
	client   CognitoAPI
	clientID string
	logger   zerolog.Logger
}

// NewCognitoProvider creates a provider using the default AWS credential chain.
func NewCognitoProvider(ctx context.Context, region, clientID string, logger zerolog.Logger) (*CognitoProvider, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	p := NewCognitoProviderWithClient(cip.NewFromConfig(cfg), clientID, logger)
	p.logger.Info().Str("region", region).Msg("cognito provider initialised")
	return p, nil
}

// NewCognitoProviderWithClient wraps an existing client.
func NewCognitoProviderWithClient(client CognitoAPI, clientID string, logger zerolog.Logger) *CognitoProvider {
	return &CognitoProvider{
		client:   client,
		clientID: clientID,
		logger:   logger.With().Str("component", "cognito").Logger(),
	}
}

func (p *CognitoProvider) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("sign-in requires unsupported challenge %s", out.ChallengeName)
	}
	return tokensFrom(out.AuthenticationResult, ""), nil
}

func (p *CognitoProvider) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow: types.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, err
	}
	if out.AuthenticationResult == nil {
		return nil, fmt.Errorf("token refresh returned no credentials")
	}
	return tokensFrom(out.AuthenticationResult, refreshToken), nil
}

// tokensFrom converts an auth result. Cognito omits the refresh token on
// refresh, so the previous one is carried over.
func tokensFrom(r *types.AuthenticationResultType, previousRefresh string) *Tokens {
	t := &Tokens{
		AccessToken:  aws.ToString(r.AccessToken),
		IDToken:      aws.ToString(r.IdToken),
		RefreshToken: aws.ToString(r.RefreshToken),
	}
	if t.RefreshToken == "" {
		t.RefreshToken = previousRefresh
	}
	if r.ExpiresIn > 0 {
		t.ExpiresAt = time.Now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return t
}

func (p *CognitoProvider) SignUp(ctx context.Context, name, email, password string) (*SignUpResult, error) {
	out, err := p.client.SignUp(ctx, &cip.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(name)},
		},
	})
	if err != nil {
		return nil, err
	}
	return &SignUpResult{
		UserSub:   aws.ToString(out.UserSub),
		Confirmed: out.UserConfirmed,
	}, nil
}

func (p *CognitoProvider) SignOut(ctx context.Context, accessToken string) error {
	_, err := p.client.GlobalSignOut(ctx, &cip.GlobalSignOutInput{
		AccessToken: aws.String(accessToken),
	})
	return err
}

func (p *CognitoProvider) CurrentUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	out, err := p.client.GetUser(ctx, &cip.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, err
	}

	u := &ProviderUser{
		Username: aws.ToString(out.Username),
		Provider: "cognito",
	}
	for _, attr := range out.UserAttributes {
		value := aws.ToString(attr.Value)
		switch aws.ToString(attr.Name) {
		case "sub":
			u.Subject = value
		case "email":
			u.Email = value
		case "name":
			u.Name = value
		case "phone_number":
			u.Phone = value
		case "identities":
			// Federated users carry their upstream provider here.
			if value != "" {
				u.Provider = "cognito-federated"
			}
		}
	}
	if u.Subject == "" {
		u.Subject = u.Username
	}
	return u, nil
}

func (p *CognitoProvider) ForgotPassword(ctx context.Context, email string) error {
	_, err := p.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
	})
	return err
}

func (p *CognitoProvider) ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := p.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	return err
}
