package session

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCognito records inputs and returns canned outputs.
type fakeCognito struct {
	authInputs []*cip.InitiateAuthInput
	authOut    *cip.InitiateAuthOutput
	userOut    *cip.GetUserOutput
	signUpIn   *cip.SignUpInput
	signUpOut  *cip.SignUpOutput
	signedOut  string
	confirmIn  *cip.ConfirmForgotPasswordInput
	err        error
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	f.authInputs = append(f.authInputs, in)
	return f.authOut, f.err
}

func (f *fakeCognito) GetUser(ctx context.Context, in *cip.GetUserInput, _ ...func(*cip.Options)) (*cip.GetUserOutput, error) {
	return f.userOut, f.err
}

func (f *fakeCognito) SignUp(ctx context.Context, in *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	f.signUpIn = in
	return f.signUpOut, f.err
}

func (f *fakeCognito) GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, _ ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error) {
	f.signedOut = aws.ToString(in.AccessToken)
	return &cip.GlobalSignOutOutput{}, f.err
}

func (f *fakeCognito) ForgotPassword(ctx context.Context, in *cip.ForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ForgotPasswordOutput, error) {
	return &cip.ForgotPasswordOutput{}, f.err
}

func (f *fakeCognito) ConfirmForgotPassword(ctx context.Context, in *cip.ConfirmForgotPasswordInput, _ ...func(*cip.Options)) (*cip.ConfirmForgotPasswordOutput, error) {
	f.confirmIn = in
	return &cip.ConfirmForgotPasswordOutput{}, f.err
}

func TestCognitoProvider_SignIn(t *testing.T) {
	fake := &fakeCognito{authOut: &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			AccessToken:  aws.String("access"),
			IdToken:      aws.String("id"),
			RefreshToken: aws.String("refresh"),
			ExpiresIn:    3600,
		},
	}}
	p := NewCognitoProviderWithClient(fake, "client-1", zerolog.Nop())

	tokens, err := p.SignIn(context.Background(), "dj@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)
	assert.Equal(t, "refresh", tokens.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tokens.ExpiresAt, time.Minute)

	require.Len(t, fake.authInputs, 1)
	in := fake.authInputs[0]
	assert.Equal(t, types.AuthFlowTypeUserPasswordAuth, in.AuthFlow)
	assert.Equal(t, "client-1", aws.ToString(in.ClientId))
	assert.Equal(t, "dj@example.com", in.AuthParameters["USERNAME"])
}

func TestCognitoProvider_SignIn_Challenge(t *testing.T) {
	fake := &fakeCognito{authOut: &cip.InitiateAuthOutput{ChallengeName: types.ChallengeNameTypeNewPasswordRequired}}
	p := NewCognitoProviderWithClient(fake, "client-1", zerolog.Nop())

	_, err := p.SignIn(context.Background(), "dj@example.com", "secret")

	assert.ErrorContains(t, err, "NEW_PASSWORD_REQUIRED")
}

func TestCognitoProvider_RefreshKeepsRefreshToken(t *testing.T) {
	fake := &fakeCognito{authOut: &cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{AccessToken: aws.String("access-2")},
	}}
	p := NewCognitoProviderWithClient(fake, "client-1", zerolog.Nop())

	tokens, err := p.Refresh(context.Background(), "refresh-1")

	require.NoError(t, err)
	assert.Equal(t, "access-2", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.True(t, tokens.ExpiresAt.IsZero())
	assert.Equal(t, types.AuthFlowTypeRefreshTokenAuth, fake.authInputs[0].AuthFlow)
}

func TestCognitoProvider_CurrentUser(t *testing.T) {
	tests := []struct {
		name     string
		out      *cip.GetUserOutput
		expected ProviderUser
	}{
		{
			name: "Native user",
			out: &cip.GetUserOutput{
				Username: aws.String("dj@example.com"),
				UserAttributes: []types.AttributeType{
					{Name: aws.String("sub"), Value: aws.String("sub-1")},
					{Name: aws.String("email"), Value: aws.String("dj@example.com")},
					{Name: aws.String("name"), Value: aws.String("DJ Nova")},
					{Name: aws.String("phone_number"), Value: aws.String("+15550100")},
				},
			},
			expected: ProviderUser{Subject: "sub-1", Username: "dj@example.com", Email: "dj@example.com", Name: "DJ Nova", Phone: "+15550100", Provider: "cognito"},
		},
		{
			name: "Federated user without sub",
			out: &cip.GetUserOutput{
				Username: aws.String("google_123"),
				UserAttributes: []types.AttributeType{
					{Name: aws.String("identities"), Value: aws.String(`[{"providerName":"Google"}]`)},
				},
			},
			expected: ProviderUser{Subject: "google_123", Username: "google_123", Provider: "cognito-federated"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewCognitoProviderWithClient(&fakeCognito{userOut: tt.out}, "client-1", zerolog.Nop())

			u, err := p.CurrentUser(context.Background(), "access")

			require.NoError(t, err)
			assert.Equal(t, tt.expected, *u)
		})
	}
}

func TestCognitoProvider_SignUp(t *testing.T) {
	fake := &fakeCognito{signUpOut: &cip.SignUpOutput{UserSub: aws.String("sub-9"), UserConfirmed: true}}
	p := NewCognitoProviderWithClient(fake, "client-1", zerolog.Nop())

	res, err := p.SignUp(context.Background(), "DJ Nova", "dj@example.com", "password1")

	require.NoError(t, err)
	assert.Equal(t, &SignUpResult{UserSub: "sub-9", Confirmed: true}, res)
	assert.Equal(t, "dj@example.com", aws.ToString(fake.signUpIn.Username))
	assert.Len(t, fake.signUpIn.UserAttributes, 2)
}

func TestCognitoProvider_PasswordReset(t *testing.T) {
	fake := &fakeCognito{}
	p := NewCognitoProviderWithClient(fake, "client-1", zerolog.Nop())

	require.NoError(t, p.ForgotPassword(context.Background(), "dj@example.com"))
	require.NoError(t, p.ConfirmForgotPassword(context.Background(), "dj@example.com", "123456", "newpassword"))

	assert.Equal(t, "123456", aws.ToString(fake.confirmIn.ConfirmationCode))
	assert.Equal(t, "newpassword", aws.ToString(fake.confirmIn.Password))

	require.NoError(t, p.SignOut(context.Background(), "access"))
	assert.Equal(t, "access", fake.signedOut)
}
