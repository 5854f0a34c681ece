package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/config"
	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/wallet"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.ContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	return cfg
}

func TestBuild_BrowseOnly(t *testing.T) {
	var advice []string
	a, err := Build(context.Background(), testConfig(), func(msg string) { advice = append(advice, msg) })
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Service)
	assert.NotNil(t, a.Gateway, "in-memory metadata is served by the process")
	assert.Equal(t, domain.StateDisconnected, a.Service.State())
	assert.Equal(t, []string{wallet.AdviceInstallWallet}, advice)

	// No websocket endpoint configured
	assert.NoError(t, a.FollowHeads(context.Background()))
}

func TestBuild_MemoryMetadataServedOnHTTPAddr(t *testing.T) {
	cfg := testConfig()
	cfg.HTTPAddr = ":9191"

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	doc := domain.MetadataDocument{Name: "Sunset", Description: "Orange sky", Image: "https://example.com/sunset.png"}
	locator, err := a.Metadata.Upload(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, "http://127.0.0.1:9191/ipfs/"), locator)

	u, err := url.Parse(locator)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	a.Gateway.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, u.Path, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.MetadataDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, doc, got)
}

func TestBuild_RequireIPFS(t *testing.T) {
	_, err := Build(context.Background(), testConfig(), nil, RequireIPFS())
	assert.ErrorIs(t, err, ErrNoMetadataStore)

	cfg := testConfig()
	cfg.IPFS.APIURL = "http://127.0.0.1:5001"
	a, err := Build(context.Background(), cfg, nil, RequireIPFS())
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Gateway)
}

func TestLocalGatewayURL(t *testing.T) {
	cases := map[string]string{
		":8088":           "http://127.0.0.1:8088",
		"0.0.0.0:8088":    "http://127.0.0.1:8088",
		"[::]:8088":       "http://127.0.0.1:8088",
		"localhost:9000":  "http://localhost:9000",
		"10.1.2.3:80":     "http://10.1.2.3:80",
		"market.internal": "http://market.internal",
	}
	for addr, want := range cases {
		assert.Equal(t, want, LocalGatewayURL(addr), addr)
	}
}

func TestBuild_KeyWallet(t *testing.T) {
	cfg := testConfig()
	cfg.Wallet.Mode = config.WalletKey
	cfg.Wallet.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	cfg.Wallet.AutoAuthorize = true

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, domain.StateConnected, a.Session.State())
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", a.Session.Account().String())
}

func TestBuild_BadKey(t *testing.T) {
	cfg := testConfig()
	cfg.Wallet.Mode = config.WalletKey
	cfg.Wallet.PrivateKey = "not-hex"

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestCreateStores_Memory(t *testing.T) {
	stores, cleanup, err := CreateStores(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, stores.Journal)
	assert.NotNil(t, stores.Observations)
}

func TestCreateStores_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.UseMemory = false

	stores, cleanup, err := CreateStores(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, stores.Journal)
	assert.Nil(t, stores.Observations)
}
