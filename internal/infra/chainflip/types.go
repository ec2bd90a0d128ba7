package chainflip

import "encoding/json"

// AssetRef identifies an asset on the pool venue. The RPC expects the
// chain/asset pair, not a bare symbol.
type AssetRef struct {
	Chain string `json:"chain"`
	Asset string `json:"asset"`
}

// AssetRefFor maps the internal asset symbol to its on-chain reference.
func AssetRefFor(symbol string) AssetRef {
	switch symbol {
	case "ETH":
		return AssetRef{Chain: "Ethereum", Asset: "ETH"}
	case "ARBITRUM_ETH":
		return AssetRef{Chain: "Arbitrum", Asset: "ETH"}
	case "BTC":
		return AssetRef{Chain: "Bitcoin", Asset: "BTC"}
	case "DOT":
		return AssetRef{Chain: "Polkadot", Asset: "DOT"}
	case "USDC":
		return AssetRef{Chain: "Ethereum", Asset: "USDC"}
	default:
		return AssetRef{Chain: "Ethereum", Asset: symbol}
	}
}

type rpcRequest struct {
	ID      int         `json:"id"`
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID      int             `json:"id"`
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type setLimitOrderParams struct {
	BaseAsset  AssetRef `json:"base_asset"`
	QuoteAsset AssetRef `json:"quote_asset"`
	Side       string   `json:"side"`
	ID         int      `json:"id"`
	Tick       int      `json:"tick"`
	SellAmount string   `json:"sell_amount"`
}

// subscription notification frames arriving on the fills stream.

type fillNotification struct {
	Method string `json:"method"`
	Params struct {
		Subscription json.RawMessage `json:"subscription"`
		Result       fillResult      `json:"result"`
	} `json:"params"`
}

type fillResult struct {
	BlockNumber uint64      `json:"block_number"`
	Fills       []fillEntry `json:"fills"`
}

type fillEntry struct {
	LimitOrder *limitOrderFill `json:"limit_order,omitempty"`
	RangeOrder *rangeOrderFill `json:"range_order,omitempty"`
}

type limitOrderFill struct {
	LP         string   `json:"lp"`
	BaseAsset  AssetRef `json:"base_asset"`
	QuoteAsset AssetRef `json:"quote_asset"`
	Side       string   `json:"side"`
	// Hex-encoded swapped amounts in the smallest unit of the sold and
	// bought assets respectively.
	Sold   string `json:"sold"`
	Bought string `json:"bought"`
}

type rangeOrderFill struct {
	LP         string   `json:"lp"`
	BaseAsset  AssetRef `json:"base_asset"`
	QuoteAsset AssetRef `json:"quote_asset"`
	Range      struct {
		Start int `json:"start"`
		End   int `json:"end"`
	} `json:"range"`
	Fees struct {
		Base  string `json:"base"`
		Quote string `json:"quote"`
	} `json:"fees"`
	Liquidity string `json:"liquidity"`
}
