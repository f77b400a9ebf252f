package xpolicy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyOrdering(t *testing.T) {
	ps := Policies()
	for i := 1; i < len(ps); i++ {
		assert.Less(t, ps[i-1], ps[i], "%s should be stricter than %s", ps[i-1], ps[i])
	}
	assert.Equal(t, On, DisplayClient)
}

func TestPolicyHas(t *testing.T) {
	tests := []struct {
		p    Policy
		flag Policy
		want bool
	}{
		{On, DisplayClient, true},
		{On, ModifyResponseBody, true},
		{On, PersistResults, true},
		{On, Off, false},
		{ModifyResponseBody, DisplayClient, false},
		{ModifyResponseBody, ModifyResponseHeaders, true},
		{ModifyResponseHeaders, PersistResults, true},
		{PersistResults, ModifyResponseHeaders, false},
		{Off, Off, true},
		{Off, PersistResults, false},
	}
	for _, tt := range tests {
		t.Run(tt.p.String()+"/"+tt.flag.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Has(tt.flag))
		})
	}
}

func TestPolicyIsValid(t *testing.T) {
	for _, p := range Policies() {
		assert.True(t, p.IsValid(), p.String())
	}
	for _, p := range []Policy{0, 3, 4, 7, 31, 255} {
		assert.False(t, p.IsValid(), "Policy(%d)", uint8(p))
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "Off", Off.String())
	assert.Equal(t, "PersistResults", PersistResults.String())
	assert.Equal(t, "ModifyResponseHeaders", ModifyResponseHeaders.String())
	assert.Equal(t, "ModifyResponseBody", ModifyResponseBody.String())
	assert.Equal(t, "On", DisplayClient.String())
	assert.Equal(t, "Policy(7)", Policy(7).String())
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want Policy
	}{
		{"On", On},
		{" off ", Off},
		{"PERSISTRESULTS", PersistResults},
		{"persist_results", PersistResults},
		{"modify-response-headers", ModifyResponseHeaders},
		{"ModifyResponseBody", ModifyResponseBody},
		{"DisplayClient", On},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParsePolicy("")
	assert.ErrorIs(t, err, ErrEmptyPolicy)

	_, err = ParsePolicy("sometimes")
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestPolicyTextRoundTrip(t *testing.T) {
	type doc struct {
		Policy Policy `json:"policy"`
	}
	data, err := json.Marshal(doc{Policy: ModifyResponseBody})
	require.NoError(t, err)
	assert.JSONEq(t, `{"policy":"ModifyResponseBody"}`, string(data))

	var got doc
	require.NoError(t, json.Unmarshal([]byte(`{"policy":"off"}`), &got))
	assert.Equal(t, Off, got.Policy)

	err = json.Unmarshal([]byte(`{"policy":"loud"}`), &got)
	assert.True(t, errors.Is(err, ErrInvalidPolicy), "err = %v", err)

	_, err = Policy(9).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidPolicy)
}

func TestMin(t *testing.T) {
	assert.Equal(t, Off, Min(Off, On))
	assert.Equal(t, Off, Min(On, Off))
	assert.Equal(t, ModifyResponseHeaders, Min(ModifyResponseBody, ModifyResponseHeaders))
	assert.Equal(t, On, Min(On, On))
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "BeginRequest", EventBeginRequest.String())
	assert.Equal(t, "BeginRequest|EndRequest", (EventBeginRequest | EventEndRequest).String())
	assert.Equal(t, "None", Event(0).String())

	e, ok := ParseEvent("executeresource")
	assert.True(t, ok)
	assert.Equal(t, EventExecuteResource, e)

	_, ok = ParseEvent("nope")
	assert.False(t, ok)

	assert.True(t, AllEvents.Has(EventEndSessionAccess))
	assert.False(t, EventBeginRequest.Has(EventEndRequest))
}

func TestRequestInfo(t *testing.T) {
	req := &RequestInfo{
		URI:         "/home?x=1",
		Method:      "GET",
		Client:      "dev",
		StatusCode:  200,
		ContentType: "text/html",
		IP:          "127.0.0.1",
		Headers:     map[string][]string{"X-Requested-With": {"XMLHttpRequest"}},
		Cookies:     map[string]string{"xdiagPolicy": "On"},
	}
	assert.Equal(t, "/home?x=1", req.RequestURI())
	assert.Equal(t, "GET", req.RequestMethod())
	assert.Equal(t, "dev", req.ClientName())
	assert.Equal(t, 200, req.ResponseStatusCode())
	assert.Equal(t, "text/html", req.ResponseContentType())
	assert.Equal(t, "127.0.0.1", req.ClientIP())
	assert.Equal(t, "XMLHttpRequest", req.Header("x-requested-with"))
	assert.Equal(t, "On", req.Cookie("xdiagPolicy"))

	empty := &RequestInfo{}
	assert.Empty(t, empty.Header("X-Requested-With"))
	assert.Empty(t, empty.Cookie("xdiagPolicy"))
}
