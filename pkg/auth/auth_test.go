package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigestRFC2617(t *testing.T) {
	cred := Credential{Username: "Mufasa", Password: "Circle Of Life"}
	ch := &DigestChallenge{
		Realm: "testrealm@host.com",
		Nonce: "dcd98b7102dd2f0e8b11d0f600bfb0c093",
		QOP:   "auth,auth-int",
	}

	header := buildDigest("GET", "/dir/index.html", cred, ch, "0a4f113b")
	params := ParseParams(header)
	require.Equal(t, "6629fae49393a05397450978507c4ef1", params["response"])
	require.Equal(t, "auth", params["qop"])
	require.Equal(t, "00000001", params["nc"])
	require.Equal(t, "0a4f113b", params["cnonce"])

	// same input without qop: RFC 2069 compatible response = MD5(HA1:nonce:HA2)
	ch.QOP = ""
	header = buildDigest("GET", "/dir/index.html", cred, ch, "0a4f113b")
	params = ParseParams(header)

	ha1 := "939e7578ed9e3c518a452acee763bce9"
	ha2 := "39aff3a2bab6126f332b942af96d3366"
	require.Equal(t, ha1, HexMD5("Mufasa", "testrealm@host.com", "Circle Of Life"))
	require.Equal(t, ha2, HexMD5("GET", "/dir/index.html"))
	require.Equal(t, HexMD5(ha1, ch.Nonce, ha2), params["response"])

	// deterministic
	require.Equal(t, header, buildDigest("GET", "/dir/index.html", cred, ch, "0a4f113b"))
}

func TestDigestRFC7616(t *testing.T) {
	cred := Credential{Username: "Mufasa", Password: "Circle of Life"}
	ch := &DigestChallenge{
		Realm:  "http-auth@example.org",
		Nonce:  "7ypf/xlj9XXwfDPEoM4URrv/xwf94BcCAzFZH4GiTo0v",
		Opaque: "FQhe/qaU925kfnzjCev0ciny7QMkPqMAFRtzCUYo5tdS",
		QOP:    "auth, auth-int",
	}
	const cnonce = "f2/wE4q74E6zIJEtWaHKaf5wv/H5QzzpXusqGemxURZJ"

	tests := []struct {
		algorithm string
		response  string
	}{
		{"MD5", "8ca523f5e9506fed4657c9700eebdbec"},
		{"SHA-256", "753927fa0e85d155564e2e272a28d1802ca10daf4496794697cf8db5856cb6c1"},
		{"sha-256", "753927fa0e85d155564e2e272a28d1802ca10daf4496794697cf8db5856cb6c1"},
	}
	for _, test := range tests {
		t.Run(test.algorithm, func(t *testing.T) {
			ch.Algorithm = test.algorithm
			header := buildDigest("GET", "/dir/index.html", cred, ch, cnonce)
			params := ParseParams(header)
			require.Equal(t, test.response, params["response"])
			require.Equal(t, ch.Opaque, params["opaque"])
			require.Equal(t, test.algorithm, params["algorithm"])
		})
	}
}

func TestDigestQOPFields(t *testing.T) {
	cred := Credential{Username: "admin", Password: "admin"}

	for _, algorithm := range []string{"", "MD5", "MD5-sess", "SHA-256", "SHA-256-sess"} {
		ch := &DigestChallenge{Realm: "cam", Nonce: "abc", Algorithm: algorithm}

		header := BuildDigest("GET", "/cgi-bin/param.cgi?get_image_conf", cred, ch)
		require.True(t, strings.HasPrefix(header, "Digest "))
		require.NotContains(t, header, "qop=")
		require.NotContains(t, header, "nc=")
		require.NotContains(t, header, "cnonce=")
		require.NotContains(t, header, "opaque=")

		ch.QOP = "auth"
		header = BuildDigest("GET", "/cgi-bin/param.cgi?get_image_conf", cred, ch)
		params := ParseParams(header)
		require.Equal(t, "auth", params["qop"])
		require.Equal(t, "00000001", params["nc"])
		require.Len(t, params["cnonce"], 16)
	}
}

func TestDigestAuthInt(t *testing.T) {
	cred := Credential{Username: "admin", Password: "admin"}
	uri := "/cgi-bin/param.cgi?get_image_conf"

	ch := &DigestChallenge{Realm: "cam", Nonce: "abc", QOP: "auth-int"}
	header := BuildDigest("GET", uri, cred, ch)
	require.NotContains(t, header, "qop=")
	require.NotContains(t, header, "nc=")
	require.NotContains(t, header, "cnonce=")

	ha1 := HexMD5("admin", "cam", "admin")
	ha2 := HexMD5("GET", uri)
	require.Equal(t, HexMD5(ha1, "abc", ha2), ParseParams(header)["response"])

	ch.QOP = "auth-int, auth"
	require.Equal(t, "auth", ParseParams(BuildDigest("GET", uri, cred, ch))["qop"])
}

func TestDigestSess(t *testing.T) {
	cred := Credential{Username: "u", Password: "p"}
	ch := &DigestChallenge{Realm: "r", Nonce: "n", Algorithm: "MD5-sess"}

	params := ParseParams(buildDigest("GET", "/", cred, ch, "c"))

	ha1 := HexMD5(HexMD5("u", "r", "p"), "n", "c")
	require.Equal(t, HexMD5(ha1, "n", HexMD5("GET", "/")), params["response"])
}

func TestAuthnAlwaysHashesGET(t *testing.T) {
	cred := Credential{Username: "admin", Password: "secret"}
	ch := &AuthnChallenge{Nonce: "n0nce", Cookie: "auth_tkt=abc"}

	header := Header("POST", "/cgi-bin/param.cgi?post_reboot", cred, ch)
	require.Empty(t, header.Get("Authorization"))
	require.Equal(t, "www", header.Get("User-From"))
	require.Equal(t, "auth_tkt=abc", header.Get("Cookie"))

	params := ParseParams(header.Get(HeaderAuthn))
	cnonce := params["cnonce"]
	require.Len(t, cnonce, 16)

	ha1 := HexSHA256("admin", "", "secret")
	ha2 := HexSHA256("GET", "/cgi-bin/param.cgi?post_reboot")
	require.Equal(t, HexSHA256(ha1, "n0nce", cnonce, ha2), params["response"])

	// no cookie captured - no Cookie header
	header = Header("GET", "/", cred, &AuthnChallenge{Nonce: "x"})
	require.Empty(t, header.Get("Cookie"))
}

func TestBasic(t *testing.T) {
	header := Header("GET", "/", Credential{Username: "Aladdin", Password: "open sesame"}, &BasicChallenge{})
	require.Equal(t, "Basic QWxhZGRpbjpvcGVuIHNlc2FtZQ==", header.Get("Authorization"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		header http.Header
		scheme Scheme
	}{
		{
			name:   "digest",
			header: http.Header{"Www-Authenticate": {`Digest realm="x", nonce="y"`}},
			scheme: SchemeDigest,
		},
		{
			name:   "digest lower case",
			header: http.Header{"Www-Authenticate": {`digest realm="x",nonce="y",qop="auth",algorithm=SHA-256`}},
			scheme: SchemeDigest,
		},
		{
			name:   "basic",
			header: http.Header{"Www-Authenticate": {`Basic realm="cam"`}},
			scheme: SchemeBasic,
		},
		{
			name:   "authn",
			header: http.Header{"Www-Authenticate": {`Authn realm="", nonce="abc"`}},
			scheme: SchemeAuthn,
		},
		{
			name:   "auth_tkt",
			header: http.Header{"Www-Authenticate": {`auth_tkt nonce="abc"`}},
			scheme: SchemeAuthn,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ch, err := Parse(test.header)
			require.NoError(t, err)
			require.Equal(t, test.scheme, ch.Scheme())
		})
	}

	ch, err := Parse(http.Header{"Www-Authenticate": {`digest realm="x",nonce="y",qop="auth",algorithm=SHA-256`}})
	require.NoError(t, err)
	require.Equal(t, &DigestChallenge{Realm: "x", Nonce: "y", QOP: "auth", Algorithm: "SHA-256"}, ch)
}

func TestParseAuthnCookie(t *testing.T) {
	value := base64.StdEncoding.EncodeToString([]byte("n0nce!bob!tok"))

	header := http.Header{}
	header.Add("Set-Cookie", "lang=en; Path=/")
	header.Add("Set-Cookie", "auth_tkt="+value+"; Path=/; HttpOnly")

	ch, err := Parse(header)
	require.NoError(t, err)

	authn, ok := ch.(*AuthnChallenge)
	require.True(t, ok)
	require.Equal(t, "n0nce", authn.Nonce)
	require.Equal(t, "auth_tkt="+value, authn.Cookie)

	// header scheme wins but the cookie is still captured
	header.Set("WWW-Authenticate", `Authn nonce="fromheader"`)
	ch, err = Parse(header)
	require.NoError(t, err)
	require.Equal(t, &AuthnChallenge{Nonce: "fromheader", Cookie: "auth_tkt=" + value}, ch)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse(http.Header{"Www-Authenticate": {`Negotiate abc`}})
	require.ErrorIs(t, err, ErrUnknownScheme)

	_, err = Parse(http.Header{})
	require.ErrorIs(t, err, ErrUnknownScheme)

	_, err = Parse(http.Header{"Set-Cookie": {"auth_tkt=%%%notbase64"}})
	require.ErrorIs(t, err, ErrUnknownScheme)
	require.ErrorIs(t, err, ErrBadCookie)
}

func TestCache(t *testing.T) {
	cache := NewCache()
	require.Nil(t, cache.Get("10.0.0.1"))

	cache.Put("10.0.0.1", &BasicChallenge{})
	cache.Put("10.0.0.1", &DigestChallenge{Nonce: "2"})
	require.Equal(t, &DigestChallenge{Nonce: "2"}, cache.Get("10.0.0.1"))
	require.Equal(t, 1, cache.Len())

	cache.Invalidate("10.0.0.1")
	require.Nil(t, cache.Get("10.0.0.1"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				cache.Put("10.0.0.2", &DigestChallenge{Nonce: "n", Realm: "r"})
			} else if ch := cache.Get("10.0.0.2"); ch != nil {
				d := ch.(*DigestChallenge)
				require.Equal(t, "n", d.Nonce)
				require.Equal(t, "r", d.Realm)
			}
		}(i)
	}
	wg.Wait()
}
