package providers

import (
	"net/url"
	"slices"

	"github.com/kbukum/apihelper/client"
	"github.com/kbukum/apihelper/errors"
)

// Battle.net regions.
const (
	RegionUS     = "us"
	RegionEurope = "eu"
	RegionKorea  = "kr"
	RegionTaiwan = "tw"
	RegionChina  = "cn"
	RegionSEA    = "sea"
)

var regionLocales = map[string][]string{
	RegionUS:     {"en_US", "es_MX", "pt_BR"},
	RegionEurope: {"en_GB", "es_ES", "fr_FR", "ru_RU", "de_DE", "pt_PT", "it_IT"},
	RegionKorea:  {"ko_KR"},
	RegionTaiwan: {"zh_TW"},
	RegionChina:  {"zh_CN"},
	RegionSEA:    {"en_US"},
}

var battlenetErrors = client.ErrorEnvelope{
	Policy:      client.StatusRange,
	CodePath:    []string{"code"},
	MessagePath: []string{"detail"},
}

// BattleNet is the Blizzard Battle.net adapter. The "region" option selects
// the regional hosts and defaults to eu.
type BattleNet struct {
	client.DefaultOAuth2
}

func (BattleNet) Name() string { return "battlenet" }

// Region returns the configured region.
func Region(s client.Session) string {
	if r := s.Option("region"); r != "" {
		return r
	}
	return RegionEurope
}

// RegionLocales returns the locales a region serves.
func RegionLocales(region string) []string {
	return slices.Clone(regionLocales[region])
}

// ValidateConfig rejects unknown regions and locales the region does not serve.
func (BattleNet) ValidateConfig(cfg client.Config) error {
	region := cfg.Options["region"]
	if region == "" {
		region = RegionEurope
	}
	locales, ok := regionLocales[region]
	if !ok {
		return errors.InvalidArgument("unknown battle.net region %q", region).WithDetail("option", "options.region")
	}
	if cfg.Locale != "" && !slices.Contains(locales, cfg.Locale) {
		return errors.InvalidArgument("locale %q is not served in region %q", cfg.Locale, region).
			WithDetail("option", "locale")
	}
	return nil
}

func (BattleNet) APIURL(s client.Session, method string) string {
	return "https://" + apiHost(Region(s)) + "/" + method
}

// PrepareRequest adds locale unless set, the apikey and the token.
func (BattleNet) PrepareRequest(s client.Session, _ string, params url.Values) {
	client.SetDefault(params, "locale", s.Locale())
	params.Set("apikey", s.ClientID())
	client.InjectAccessToken(s, params)
}

func (b BattleNet) CheckResponse(_ client.Session, res *client.Result) error {
	return battlenetErrors.Check(b.Name(), res)
}

func (BattleNet) AuthorizeURL(s client.Session, query url.Values) string {
	return "https://" + oauthHost(Region(s)) + "/oauth/authorize?" + query.Encode()
}

func (BattleNet) TokenURL(s client.Session) string {
	return "https://" + oauthHost(Region(s)) + "/oauth/token"
}

func apiHost(region string) string {
	if region == RegionChina {
		return "api.battlenet.com.cn"
	}
	return region + ".api.battle.net"
}

func oauthHost(region string) string {
	if region == RegionChina {
		return "www.battlenet.com.cn"
	}
	return region + ".battle.net"
}
