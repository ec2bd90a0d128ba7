package hyperliquid

import "encoding/json"

// info endpoint payloads

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

type metaResponse struct {
	Universe []assetMeta `json:"universe"`
}

type assetMeta struct {
	Name       string `json:"name"`
	SzDecimals int    `json:"szDecimals"`
}

type userStateResponse struct {
	MarginSummary struct {
		AccountValue string `json:"accountValue"`
	} `json:"marginSummary"`
	CrossMarginSummary struct {
		AccountValue string `json:"accountValue"`
	} `json:"crossMarginSummary"`
	Withdrawable   string `json:"withdrawable"`
	AssetPositions []struct {
		Position struct {
			Coin    string `json:"coin"`
			Szi     string `json:"szi"`
			EntryPx string `json:"entryPx"`
		} `json:"position"`
	} `json:"assetPositions"`
}

// OpenOrder is one resting order reported by the venue.
type OpenOrder struct {
	Coin    string `json:"coin"`
	Side    string `json:"side"`
	Sz      string `json:"sz"`
	LimitPx string `json:"limitPx"`
	Oid     int64  `json:"oid"`
}

// exchange endpoint payloads

type exchangeRequest struct {
	Action    interface{} `json:"action"`
	Nonce     uint64      `json:"nonce"`
	Signature rsvSig      `json:"signature"`
}

type orderAction struct {
	Type     string      `json:"type"`
	Orders   []orderWire `json:"orders"`
	Grouping string      `json:"grouping"`
}

type orderWire struct {
	Asset      int           `json:"a"`
	IsBuy      bool          `json:"b"`
	Price      string        `json:"p"`
	Size       string        `json:"s"`
	ReduceOnly bool          `json:"r"`
	Type       orderTypeWire `json:"t"`
	Cloid      string        `json:"c,omitempty"`
}

type orderTypeWire struct {
	Limit *limitWire `json:"limit,omitempty"`
}

type limitWire struct {
	Tif string `json:"tif"`
}

type leverageAction struct {
	Type     string `json:"type"`
	Asset    int    `json:"asset"`
	IsCross  bool   `json:"isCross"`
	Leverage int    `json:"leverage"`
}

type exchangeResponse struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Response struct {
		Type string `json:"type"`
		Data struct {
			Statuses []orderStatus `json:"statuses"`
		} `json:"data"`
	} `json:"response"`
}

type orderStatus struct {
	Resting *struct {
		Oid int64 `json:"oid"`
	} `json:"resting,omitempty"`
	Filled *struct {
		Oid     int64  `json:"oid"`
		TotalSz string `json:"totalSz"`
		AvgPx   string `json:"avgPx"`
	} `json:"filled,omitempty"`
	Error string `json:"error,omitempty"`
}

// websocket frames

type wsSubscribe struct {
	Method       string         `json:"method"`
	Subscription wsSubscription `json:"subscription"`
}

type wsSubscription struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

type wsFrame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

type allMidsData struct {
	Mids map[string]string `json:"mids"`
}

type orderUpdate struct {
	Order struct {
		Coin    string `json:"coin"`
		Side    string `json:"side"`
		Sz      string `json:"sz"`
		LimitPx string `json:"limitPx"`
		Oid     int64  `json:"oid"`
	} `json:"order"`
	Status string `json:"status"`
}

type userFill struct {
	Coin string `json:"coin"`
	Px   string `json:"px"`
	Sz   string `json:"sz"`
	Side string `json:"side"`
}

type userFillsData struct {
	Fills []userFill `json:"fills"`
}

type userEvent struct {
	Fills   []userFill `json:"fills,omitempty"`
	Funding *struct {
		Coin        string `json:"coin"`
		Usdc        string `json:"usdc"`
		FundingRate string `json:"fundingRate"`
	} `json:"funding,omitempty"`
}
