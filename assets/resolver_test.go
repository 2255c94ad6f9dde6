package assets_test

import (
	"testing"

	"github.com/jrsteele09/sportify-auth-client/assets"
	"github.com/stretchr/testify/require"
)

const assetHost = "https://sportify.example.com"

func newResolver(t *testing.T) *assets.Resolver {
	t.Helper()
	r, err := assets.NewResolver(assetHost + "/")
	require.NoError(t, err)
	return r
}

func TestResolve_EquivalentInputsGiveOneURL(t *testing.T) {
	r := newResolver(t)
	want := assetHost + "/uploads/a.png"

	inputs := []string{
		"/uploads/a.png",
		"uploads/a.png",
		"http://https//sportify.example.com/uploads/a.png",
		"https//sportify.example.com/uploads/a.png",
		"https://https://sportify.example.com/uploads/a.png",
		"//uploads/a.png",
		"https://sportify.example.com/https//sportify.example.com/uploads/a.png",
		"https://sportify.example.com/https://sportify.example.com/uploads/a.png",
		"uploads/https//sportify.example.com/uploads/a.png",
		"https://cdn.example.org/http://sportify.example.com/uploads/a.png",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, want, r.Resolve(in))
		})
	}
}

func TestResolve_BareFilename(t *testing.T) {
	r := newResolver(t)
	require.Equal(t, assetHost+"/avatar.jpg", r.Resolve("avatar.jpg"))
}

func TestResolve_AbsoluteURLPassesThrough(t *testing.T) {
	r := newResolver(t)
	require.Equal(t, "https://cdn.example.org/u/1.png", r.Resolve("https://cdn.example.org/u/1.png"))
	require.Equal(t, assetHost+"/uploads/b.png", r.Resolve(assetHost+"/uploads/b.png"))
}

func TestResolve_Empty(t *testing.T) {
	r := newResolver(t)
	require.Equal(t, "", r.Resolve(""))
	require.Equal(t, "", r.Resolve("   "))
	require.Equal(t, "", r.Resolve("https//sportify.example.com"))
}

func TestNewResolver_RejectsMalformedBase(t *testing.T) {
	for _, base := range []string{"", "sportify.example.com", "http://https//sportify.example.com", "ftp://files.example.com"} {
		_, err := assets.NewResolver(base)
		require.Error(t, err, base)
	}
}

func TestResolver_Base(t *testing.T) {
	r, err := assets.NewResolver("https://sportify.example.com/static/")
	require.NoError(t, err)
	require.Equal(t, "https://sportify.example.com/static", r.Base())
	require.Equal(t, "https://sportify.example.com/static/uploads/a.png", r.Resolve("/uploads/a.png"))
}
