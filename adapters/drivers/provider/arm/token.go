package arm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/cloud"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/kompox/tmpcluster/domain/model"
	"github.com/kompox/tmpcluster/internal/logging"
)

// TokenProvider implements model.TokenPort with the OAuth2 client credentials
// flow. Tokens are not cached; each call performs one exchange.
type TokenProvider struct {
	Scope     string
	Transport policy.Transporter
}

// ParseAuthority splits an authority URL such as
// https://login.microsoftonline.com/<tenant> into its host URL and tenant.
func ParseAuthority(authority string) (host, tenant string, err error) {
	u, err := url.Parse(strings.TrimSpace(authority))
	if err != nil {
		return "", "", fmt.Errorf("parse authority: %w", err)
	}
	if u.Scheme != "https" || u.Host == "" {
		return "", "", fmt.Errorf("authority must be an https URL")
	}
	tenant = strings.Trim(u.Path, "/")
	if i := strings.Index(tenant, "/"); i >= 0 {
		tenant = tenant[:i]
	}
	if tenant == "" {
		return "", "", fmt.Errorf("authority has no tenant")
	}
	return u.Scheme + "://" + u.Host + "/", tenant, nil
}

// AcquireToken exchanges the client credentials in settings for a management token.
func (p *TokenProvider) AcquireToken(ctx context.Context, settings *model.OperatorSettings) (tok *model.AccessToken, err error) {
	ctx, cleanup := withMethodLogger(ctx, "AcquireToken")
	defer func() { cleanup(err) }()

	host, tenant, err := ParseAuthority(settings.Authority.Reveal())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAuthFailure, err)
	}
	cred, err := azidentity.NewClientSecretCredential(tenant, settings.ClientID.Reveal(), settings.ClientSecret.Reveal(), &azidentity.ClientSecretCredentialOptions{
		ClientOptions: azcore.ClientOptions{
			Cloud:     cloud.Configuration{ActiveDirectoryAuthorityHost: host},
			Transport: p.Transport,
			Retry:     policy.RetryOptions{MaxRetries: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrAuthFailure, err)
	}
	at, err := cred.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{p.Scope}})
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %w", model.ErrAuthFailure, err)
	}
	if at.Token == "" {
		return nil, fmt.Errorf("%w: identity provider returned an empty token", model.ErrAuthFailure)
	}
	logging.FromContext(ctx).Debug(ctx, "token acquired", "tenant", tenant, "expiresOn", at.ExpiresOn)
	return &model.AccessToken{Token: at.Token, ExpiresOn: at.ExpiresOn}, nil
}

// staticCredential hands one pre-acquired token to every ARM request of a session.
type staticCredential struct {
	token *model.AccessToken
}

func (c staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: c.token.Token, ExpiresOn: c.token.ExpiresOn}, nil
}
