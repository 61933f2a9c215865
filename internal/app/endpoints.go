package app

import (
	"net/http"
	"time"

	"github.com/eugener/llamadash/internal/llama"
)

// Host identifies one of the DefiLlama origin hosts.
type Host int

const (
	HostAPI Host = iota
	HostStablecoins
	HostYields
	HostBridges
	HostCoins
)

// Cache lifetimes by data volatility.
const (
	ttlLive       = 5 * time.Minute  // current prices
	ttlListing    = 30 * time.Minute // current-state listings and overviews
	ttlHistorical = time.Hour        // time series and reference data
)

// Param is a path parameter as declared to the dashboard host.
type Param struct {
	Name        string
	Description string
	Default     string
}

// Widget is the dashboard manifest entry for an endpoint.
type Widget struct {
	ID          string
	Name        string
	Description string
	Chart       bool
}

// Endpoint is one row of the endpoint table: where to fetch, how long to
// cache, how to reshape, and what to answer on failure.
type Endpoint struct {
	Path      string // route under the namespace prefix, chi syntax
	Host      Host
	Upstream  string // origin path; {name} is replaced by the path parameter
	TTL       time.Duration
	Transform llama.Transform
	Search    []string // record fields matched by ?search=; nil = not searchable
	NotFound  bool     // keyed detail endpoint; failures answer 404
	Message   string   // error body on failure
	Params    []Param
	Widget    Widget
}

// ErrorStatus is the HTTP status sent when the endpoint fails.
func (e *Endpoint) ErrorStatus() int {
	if e.NotFound {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

var (
	slugParam     = Param{Name: "slug", Description: "Protocol slug (e.g., 'aave', 'uniswap')", Default: "aave"}
	chainParam    = Param{Name: "chain", Description: "Chain name (e.g., 'Ethereum', 'BSC', 'Polygon')", Default: "Ethereum"}
	protocolParam = Param{Name: "protocol", Description: "Protocol slug (e.g., 'uniswap')", Default: "uniswap"}
	coinsParam    = Param{Name: "coins", Description: "Comma-separated chain:address list (e.g., 'coingecko:ethereum')", Default: "coingecko:ethereum,coingecko:bitcoin"}
)

// Endpoints is the full endpoint table.
var Endpoints = []Endpoint{
	// Protocols and chains
	{
		Path: "/protocols", Host: HostAPI, Upstream: "/protocols", TTL: ttlListing,
		Transform: llama.Protocols, Search: []string{"name", "symbol", "category"},
		Message: "Failed to fetch protocols",
		Widget:  Widget{ID: "protocols_list", Name: "Protocols List", Description: "List all DeFi protocols with their TVL and statistics"},
	},
	{
		Path: "/protocol/{slug}", Host: HostAPI, Upstream: "/protocol/{slug}", TTL: ttlListing,
		Transform: llama.ProtocolInfo, NotFound: true, Message: "Protocol not found",
		Params: []Param{slugParam},
		Widget: Widget{ID: "protocol_detail", Name: "Protocol Details", Description: "Details and chain TVL for a specific protocol"},
	},
	{
		Path: "/protocol/{slug}/tvl", Host: HostAPI, Upstream: "/protocol/{slug}", TTL: ttlHistorical,
		Transform: llama.ProtocolTVL, NotFound: true, Message: "Protocol not found",
		Params: []Param{slugParam},
		Widget: Widget{ID: "protocol_tvl_table", Name: "Protocol TVL Table", Description: "Daily TVL history for a specific protocol"},
	},
	{
		Path: "/chains", Host: HostAPI, Upstream: "/v2/chains", TTL: ttlListing,
		Transform: llama.Chains, Search: []string{"name", "tokenSymbol"},
		Message: "Failed to fetch chains",
		Widget:  Widget{ID: "chains_list", Name: "Chains List", Description: "List all chains with their total TVL"},
	},
	{
		Path: "/chain/{chain}", Host: HostAPI, Upstream: "/v2/historicalChainTvl/{chain}", TTL: ttlHistorical,
		Transform: llama.ChainHistory, NotFound: true, Message: "Chain not found",
		Params: []Param{chainParam},
		Widget: Widget{ID: "chain_history", Name: "Chain TVL History", Description: "Historical TVL data for a specific chain"},
	},
	{
		Path: "/charts/chains", Host: HostAPI, Upstream: "/v2/chains", TTL: ttlListing,
		Transform: llama.ChainsChart, Message: "Failed to fetch chains",
		Widget: Widget{ID: "chains_chart", Name: "Chains TVL Chart", Description: "Bar chart showing TVL by chain", Chart: true},
	},
	{
		Path: "/charts/protocol/{slug}", Host: HostAPI, Upstream: "/protocol/{slug}", TTL: ttlHistorical,
		Transform: llama.ProtocolChart, NotFound: true, Message: "Protocol not found",
		Params: []Param{slugParam},
		Widget: Widget{ID: "protocol_tvl", Name: "Protocol TVL History", Description: "Historical TVL chart for a specific protocol", Chart: true},
	},
	{
		Path: "/charts/global-tvl", Host: HostAPI, Upstream: "/v2/historicalChainTvl", TTL: ttlHistorical,
		Transform: llama.GlobalTVLChart, Message: "Failed to fetch global TVL",
		Widget: Widget{ID: "global_tvl_chart", Name: "Global DeFi TVL", Description: "Historical TVL across all chains", Chart: true},
	},
	{
		Path: "/categories", Host: HostAPI, Upstream: "/api/categories", TTL: ttlHistorical,
		Transform: llama.Categories, Message: "Failed to fetch categories",
		Widget: Widget{ID: "categories_list", Name: "Protocol Categories", Description: "TVL and protocol counts by category"},
	},

	// Stablecoins
	{
		Path: "/stablecoins", Host: HostStablecoins, Upstream: "/stablecoins?includePrices=true", TTL: ttlListing,
		Transform: llama.Stablecoins, Search: []string{"name", "symbol"},
		Message: "Failed to fetch stablecoins",
		Widget:  Widget{ID: "stablecoins_list", Name: "Stablecoins List", Description: "Stablecoins with circulating supply and supply changes"},
	},
	{
		Path: "/stablecoin/{asset}", Host: HostStablecoins, Upstream: "/stablecoin/{asset}", TTL: ttlHistorical,
		Transform: llama.StablecoinHistory, NotFound: true, Message: "Stablecoin not found",
		Params: []Param{{Name: "asset", Description: "Stablecoin id (e.g., '1' for USDT)", Default: "1"}},
		Widget: Widget{ID: "stablecoin_history", Name: "Stablecoin Supply History", Description: "Historical circulating supply for one stablecoin"},
	},
	{
		Path: "/stablecoins/chains", Host: HostStablecoins, Upstream: "/stablecoinchains", TTL: ttlListing,
		Transform: llama.StablecoinChains, Message: "Failed to fetch stablecoin chains",
		Widget: Widget{ID: "stablecoin_chains", Name: "Stablecoins by Chain", Description: "Stablecoin market cap on each chain"},
	},
	{
		Path: "/stablecoins/charts/all", Host: HostStablecoins, Upstream: "/stablecoincharts/all", TTL: ttlHistorical,
		Transform: llama.StablecoinCharts, Message: "Failed to fetch stablecoin charts",
		Widget: Widget{ID: "stablecoin_supply_table", Name: "Stablecoin Supply Table", Description: "Total stablecoin supply over time"},
	},
	{
		Path: "/charts/stablecoins", Host: HostStablecoins, Upstream: "/stablecoincharts/all", TTL: ttlHistorical,
		Transform: llama.StablecoinMcapChart, Message: "Failed to fetch stablecoin data",
		Widget: Widget{ID: "stablecoins_chart", Name: "Stablecoin Market Cap", Description: "Total stablecoin market cap over time", Chart: true},
	},

	// Yields
	{
		Path: "/yields/pools", Host: HostYields, Upstream: "/pools", TTL: ttlListing,
		Transform: llama.YieldPools, Search: []string{"project", "symbol", "chain"},
		Message: "Failed to fetch yield pools",
		Widget:  Widget{ID: "yield_pools", Name: "Yield Pools", Description: "Yield pools with APY and TVL"},
	},
	{
		Path: "/yields/chart/{pool}", Host: HostYields, Upstream: "/chart/{pool}", TTL: ttlHistorical,
		Transform: llama.YieldChart, NotFound: true, Message: "Pool not found",
		Params: []Param{{Name: "pool", Description: "Pool id from the yield pools list", Default: "747c1d2a-c668-4682-b9f9-296708a3dd90"}},
		Widget: Widget{ID: "yield_history", Name: "Pool APY History", Description: "Historical APY and TVL for one pool", Chart: true},
	},

	// DEX volumes
	{
		Path: "/dexs", Host: HostAPI, Upstream: "/overview/dexs", TTL: ttlListing,
		Transform: llama.VolumeOverview, Search: []string{"name", "displayName"},
		Message: "Failed to fetch DEXs",
		Widget:  Widget{ID: "dexs_list", Name: "DEX Volumes", Description: "DEX trading volume summaries"},
	},
	{
		Path: "/dexs/{chain}", Host: HostAPI, Upstream: "/overview/dexs/{chain}", TTL: ttlListing,
		Transform: llama.ChainVolumeOverview, Message: "Failed to fetch DEX data for chain",
		Params: []Param{chainParam},
		Widget: Widget{ID: "dexs_by_chain", Name: "DEX Volumes by Chain", Description: "DEX volumes on one chain"},
	},
	{
		Path: "/dexs/summary/{protocol}", Host: HostAPI, Upstream: "/summary/dexs/{protocol}", TTL: ttlHistorical,
		Transform: llama.SummaryTransform("volume", true), NotFound: true, Message: "DEX not found",
		Params: []Param{protocolParam},
		Widget: Widget{ID: "dex_summary", Name: "DEX Summary", Description: "Volume totals and history for one DEX"},
	},
	{
		Path: "/charts/dex/{protocol}", Host: HostAPI, Upstream: "/summary/dexs/{protocol}", TTL: ttlHistorical,
		Transform: llama.SummaryChart, NotFound: true, Message: "DEX not found",
		Params: []Param{protocolParam},
		Widget: Widget{ID: "dex_volume_chart", Name: "DEX Volume Chart", Description: "Daily volume for one DEX", Chart: true},
	},

	// Fees and revenue
	{
		Path: "/fees", Host: HostAPI, Upstream: "/overview/fees", TTL: ttlListing,
		Transform: llama.FeesOverview, Message: "Failed to fetch fees data",
		Widget: Widget{ID: "fees_list", Name: "Fees and Revenue", Description: "Protocol fees and revenue summaries"},
	},
	{
		Path: "/fees/{chain}", Host: HostAPI, Upstream: "/overview/fees/{chain}", TTL: ttlListing,
		Transform: llama.ChainFeesOverview, Message: "Failed to fetch fees for chain",
		Params: []Param{chainParam},
		Widget: Widget{ID: "fees_by_chain", Name: "Fees by Chain", Description: "Protocol fees on one chain"},
	},
	{
		Path: "/fees/summary/{protocol}", Host: HostAPI, Upstream: "/summary/fees/{protocol}", TTL: ttlHistorical,
		Transform: llama.SummaryTransform("fees", true), NotFound: true, Message: "Protocol not found",
		Params: []Param{protocolParam},
		Widget: Widget{ID: "fees_summary", Name: "Fees Summary", Description: "Fee totals and history for one protocol"},
	},
	{
		Path: "/charts/fees/{protocol}", Host: HostAPI, Upstream: "/summary/fees/{protocol}", TTL: ttlHistorical,
		Transform: llama.SummaryChart, NotFound: true, Message: "Protocol not found",
		Params: []Param{protocolParam},
		Widget: Widget{ID: "fees_chart", Name: "Fees Chart", Description: "Daily fees for one protocol", Chart: true},
	},

	// Bridges
	{
		Path: "/bridges", Host: HostBridges, Upstream: "/bridges?includeChains=true", TTL: ttlListing,
		Transform: llama.Bridges, Message: "Failed to fetch bridges",
		Widget: Widget{ID: "bridges_list", Name: "Bridges", Description: "Bridge volumes and supported chains"},
	},
	{
		Path: "/bridge/{id}", Host: HostBridges, Upstream: "/bridge/{id}", TTL: ttlListing,
		Transform: llama.Passthrough, NotFound: true, Message: "Bridge not found",
		Params: []Param{{Name: "id", Description: "Bridge id (e.g., '1')", Default: "1"}},
		Widget: Widget{ID: "bridge_detail", Name: "Bridge Details", Description: "Full detail for one bridge"},
	},

	// Options
	{
		Path: "/options", Host: HostAPI, Upstream: "/overview/options", TTL: ttlListing,
		Transform: llama.VolumeOverview, Message: "Failed to fetch options data",
		Widget: Widget{ID: "options_list", Name: "Options Volumes", Description: "Options DEX volume summaries"},
	},
	{
		Path: "/options/{chain}", Host: HostAPI, Upstream: "/overview/options/{chain}", TTL: ttlListing,
		Transform: llama.ChainVolumeOverview, Message: "Failed to fetch options for chain",
		Params: []Param{chainParam},
		Widget: Widget{ID: "options_by_chain", Name: "Options by Chain", Description: "Options volumes on one chain"},
	},
	{
		Path: "/options/summary/{protocol}", Host: HostAPI, Upstream: "/summary/options/{protocol}", TTL: ttlHistorical,
		Transform: llama.SummaryTransform("volume", false), NotFound: true, Message: "Protocol not found",
		Params: []Param{{Name: "protocol", Description: "Options protocol slug (e.g., 'lyra')", Default: "lyra"}},
		Widget: Widget{ID: "options_summary", Name: "Options Summary", Description: "Volume totals and history for one options protocol"},
	},

	// Open interest
	{
		Path: "/open-interest", Host: HostAPI, Upstream: "/overview/open-interest", TTL: ttlListing,
		Transform: llama.Passthrough, Message: "Failed to fetch open interest data",
		Widget: Widget{ID: "open_interest_overview", Name: "Open Interest Overview", Description: "Raw open interest overview"},
	},
	{
		Path: "/open-interest/protocols", Host: HostAPI, Upstream: "/overview/open-interest", TTL: ttlListing,
		Transform: llama.OpenInterestProtocols, Search: []string{"name", "displayName"},
		Message: "Failed to fetch open interest protocols",
		Widget:  Widget{ID: "open_interest_protocols", Name: "Open Interest by Protocol", Description: "Open interest for each derivatives protocol"},
	},
	{
		Path: "/open-interest/chart/total", Host: HostAPI, Upstream: "/overview/open-interest", TTL: ttlHistorical,
		Transform: llama.SummaryChart, Message: "Failed to fetch open interest chart data",
		Widget: Widget{ID: "open_interest_chart", Name: "Total Open Interest", Description: "Total open interest over time", Chart: true},
	},
	{
		Path: "/open-interest/chart/breakdown", Host: HostAPI, Upstream: "/overview/open-interest", TTL: ttlHistorical,
		Transform: llama.OpenInterestBreakdown, Message: "Failed to fetch open interest breakdown",
		Widget: Widget{ID: "open_interest_breakdown", Name: "Open Interest Breakdown", Description: "Open interest over time by protocol", Chart: true},
	},
	{
		Path: "/open-interest/stats", Host: HostAPI, Upstream: "/overview/open-interest", TTL: ttlListing,
		Transform: llama.OpenInterestSummary, Message: "Failed to fetch open interest stats",
		Widget: Widget{ID: "open_interest_stats", Name: "Open Interest Stats", Description: "Headline open interest metrics"},
	},

	// Prices
	{
		Path: "/prices/current/{coins}", Host: HostCoins, Upstream: "/prices/current/{coins}", TTL: ttlLive,
		Transform: llama.Passthrough, Message: "Failed to fetch prices",
		Params: []Param{coinsParam},
		Widget: Widget{ID: "prices_current", Name: "Current Prices", Description: "Current token prices"},
	},
	{
		Path: "/prices/historical/{timestamp}/{coins}", Host: HostCoins, Upstream: "/prices/historical/{timestamp}/{coins}", TTL: ttlHistorical,
		Transform: llama.Passthrough, Message: "Failed to fetch historical prices",
		Params: []Param{{Name: "timestamp", Description: "Unix timestamp in seconds", Default: "1704067200"}, coinsParam},
		Widget: Widget{ID: "prices_historical", Name: "Historical Prices", Description: "Token prices at a point in time"},
	},
}
