package xconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xdiag/pkg/diagnostics/xpolicy"
)

func TestParse_Empty(t *testing.T) {
	s, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParse_YAML(t *testing.T) {
	data := []byte(`
default_policy: ModifyResponseBody
endpoint:
  base_uri: /diag
  cache_size: 0
rules:
  status_codes: [200]
  uri_deny: []
  ajax: false
  control_cookie: diagPolicy
  client_cidrs: ["10.0.0.0/8"]
  sampling_rate: 0.25
script:
  breaker:
    enabled: true
    open_timeout: 5s
log:
  level: debug
  format: json
id:
  generator: sonyflake
`)
	s, err := Parse(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, xpolicy.ModifyResponseBody, s.DefaultPolicy)
	assert.Equal(t, "/diag", s.Endpoint.BaseURI)
	assert.Equal(t, "resource.axd", s.Endpoint.ResourceName)
	assert.Zero(t, s.Endpoint.CacheSize)

	assert.Equal(t, []int{200}, s.Rules.StatusCodes, "slices replace defaults")
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, s.Rules.ContentTypes)
	assert.Empty(t, s.Rules.URIDeny)
	assert.False(t, s.Rules.Ajax)
	assert.Equal(t, "diagPolicy", s.Rules.ControlCookie)
	assert.Equal(t, []string{"10.0.0.0/8"}, s.Rules.ClientCIDRs)
	assert.InDelta(t, 0.25, s.Rules.SamplingRate, 1e-9)
	assert.Equal(t, xpolicy.DefaultRegoQuery, s.Rules.Rego.Query)

	assert.True(t, s.Script.Breaker.Enabled)
	assert.Equal(t, uint32(DefaultBreakerMaxFailures), s.Script.Breaker.MaxFailures)
	assert.Equal(t, 5*time.Second, s.Script.Breaker.OpenTimeout)

	assert.Equal(t, LogSettings{Level: "debug", Format: "json"}, s.Log)
	assert.Equal(t, IDGeneratorSonyflake, s.ID.Generator)
	assert.Empty(t, s.BaseDir)
}

func TestParse_JSON(t *testing.T) {
	s, err := Parse([]byte(`{"default_policy":"PersistResults","rules":{"status_codes":[200,404]}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, xpolicy.PersistResults, s.DefaultPolicy)
	assert.Equal(t, []int{200, 404}, s.Rules.StatusCodes)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("a: 1"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Parse([]byte("rules: [unclosed"), FormatYAML)
	assert.ErrorIs(t, err, ErrParseFailed)

	_, err = Parse([]byte("default_policy: Loud"), FormatYAML)
	assert.ErrorIs(t, err, ErrUnmarshalFailed)
}

func TestSettings_Validate(t *testing.T) {
	require.NoError(t, Default().Validate())

	s := Default()
	s.DefaultPolicy = xpolicy.Policy(3)
	s.Endpoint.BaseURI = " "
	s.Endpoint.CacheSize = -1
	s.Rules.StatusCodes = []int{200, 42}
	s.Rules.SamplingRate = 2
	s.Rules.Rego = RegoSettings{ModuleFile: "policy.rego"}
	s.Script.Breaker = BreakerSettings{Enabled: true}
	s.Log = LogSettings{Level: "chatty", Format: "xml"}
	s.ID.Generator = "snowflake"

	err := s.Validate()
	require.ErrorIs(t, err, ErrInvalidSettings)
	for _, field := range []string{
		"default_policy",
		"endpoint.base_uri",
		"endpoint.cache_size",
		"rules.status_codes",
		"rules.sampling_rate",
		"rules.rego.query",
		"script.breaker.max_failures",
		"script.breaker.open_timeout",
		"log.level",
		"log.format",
		"id.generator",
	} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestParse_InvalidSettings(t *testing.T) {
	_, err := Parse([]byte("rules:\n  sampling_rate: 1.5\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestSettings_Clone(t *testing.T) {
	s := Default()
	c := s.Clone()
	c.Rules.StatusCodes[0] = 500
	c.Rules.URIDeny = append(c.Rules.URIDeny, "x")
	assert.Equal(t, 200, s.Rules.StatusCodes[0])
	assert.Equal(t, []string{"__browserLink"}, s.Rules.URIDeny)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "xdiag.yml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  rego:\n    module_file: policy.rego\n"), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, s.BaseDir)
	assert.Equal(t, filepath.Join(dir, "policy.rego"), s.ResolvePath(s.Rules.Rego.ModuleFile))
	assert.Equal(t, "/abs.rego", s.ResolvePath("/abs.rego"))
	assert.Empty(t, s.ResolvePath(""))

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, src.Path())
	assert.Equal(t, FormatYAML, src.Format())
	assert.Equal(t, "policy.rego", src.Client().String("rules.rego.module_file"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = Load("xdiag.toml")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestSource_ReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xdiag.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint":{"base_uri":"/a"}}`), 0o600))
	src, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint":{"base_uri":""}}`), 0o600))
	assert.ErrorIs(t, src.Reload(), ErrInvalidSettings)
	assert.Equal(t, "/a", src.Settings().Endpoint.BaseURI)

	require.NoError(t, os.WriteFile(path, []byte(`{"endpoint":{"base_uri":"/b"}}`), 0o600))
	require.NoError(t, src.Reload())
	assert.Equal(t, "/b", src.Settings().Endpoint.BaseURI)

	mem, err := FromBytes(nil, FormatJSON)
	require.NoError(t, err)
	assert.Error(t, mem.Reload())
	assert.Empty(t, mem.Path())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" YML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("ini")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
