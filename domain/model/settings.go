package model

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const redacted = "[REDACTED]"

// Secret holds a credential value that never prints in cleartext.
type Secret string

func (s Secret) String() string   { return redacted }
func (s Secret) GoString() string { return redacted }

// Reveal returns the cleartext value.
func (s Secret) Reveal() string { return string(s) }

func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }

func (s Secret) MarshalText() ([]byte, error) { return []byte(redacted), nil }

func (s Secret) MarshalYAML() (any, error) { return redacted, nil }

// Raw setting names supplied by the host configuration snapshot.
const (
	SettingRegion         = "Region"
	SettingClientID       = "ClientID"
	SettingClientSecret   = "ClientSecret"
	SettingAuthority      = "Authority"
	SettingSubscriptionID = "SubscriptionID"
	SettingUsername       = "Username"
	SettingPassword       = "Password"
)

// SettingNames lists every required raw setting in a stable order.
var SettingNames = []string{
	SettingRegion,
	SettingClientID,
	SettingClientSecret,
	SettingAuthority,
	SettingSubscriptionID,
	SettingUsername,
	SettingPassword,
}

// OperatorSettings is an immutable snapshot of the decrypted operator credentials.
type OperatorSettings struct {
	Region         string `json:"region" yaml:"region"`
	ClientID       Secret `json:"clientId" yaml:"clientId"`
	ClientSecret   Secret `json:"clientSecret" yaml:"clientSecret"`
	Authority      Secret `json:"authority" yaml:"authority"`
	SubscriptionID Secret `json:"subscriptionId" yaml:"subscriptionId"`
	AdminUsername  Secret `json:"adminUsername" yaml:"adminUsername"`
	AdminPassword  Secret `json:"adminPassword" yaml:"adminPassword"`
}

// NewOperatorSettings builds settings from raw named values. All values are required.
func NewOperatorSettings(raw map[string]string) (*OperatorSettings, error) {
	get := func(k string) string {
		if raw == nil {
			return ""
		}
		return strings.TrimSpace(raw[k])
	}
	var missing []string
	for _, k := range SettingNames {
		if get(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrSettingsInvalid, strings.Join(missing, ", "))
	}
	return &OperatorSettings{
		Region:         get(SettingRegion),
		ClientID:       Secret(get(SettingClientID)),
		ClientSecret:   Secret(get(SettingClientSecret)),
		Authority:      Secret(get(SettingAuthority)),
		SubscriptionID: Secret(get(SettingSubscriptionID)),
		AdminUsername:  Secret(get(SettingUsername)),
		AdminPassword:  Secret(get(SettingPassword)),
	}, nil
}

// LogValue keeps everything but the region out of logs.
func (s *OperatorSettings) LogValue() slog.Value {
	if s == nil {
		return slog.StringValue("<nil>")
	}
	return slog.GroupValue(
		slog.String("region", s.Region),
		slog.String("credentials", redacted),
	)
}

// TemplateBundle is an immutable pair of ARM template and parameter documents.
type TemplateBundle struct {
	Template   string
	Parameters string
	Source     string
	LoadedAt   time.Time
}

// Snapshot pairs settings and templates observed together by one operation.
type Snapshot struct {
	Settings   *OperatorSettings
	Templates  *TemplateBundle
	Generation uint64
}

// Ready reports whether both halves are present.
func (s *Snapshot) Ready() bool {
	return s != nil && s.Settings != nil && s.Templates != nil
}
