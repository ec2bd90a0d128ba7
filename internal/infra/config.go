package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AssetConfig describes one quoted market on the AMM. BuyOrderID and
// SellOrderID are the fixed slot ids; resubmitting under the same id replaces
// the prior resting order on the venue.
type AssetConfig struct {
	Name        string  `yaml:"name"`
	HedgeSymbol string  `yaml:"hedge_symbol"` // derivatives symbol, defaults to Name
	BuyFactor   float64 `yaml:"buy_factor"`
	SellFactor  float64 `yaml:"sell_factor"`
	BuyAmount   float64 `yaml:"buy_amount"`
	SellAmount  float64 `yaml:"sell_amount"`
	BuyOrderID  int     `yaml:"buy_order_id"`
	SellOrderID int     `yaml:"sell_order_id"`
}

// TradingConfig drives the quoting side: which assets to quote, how far off
// mid, and when a mid move forces a requote.
type TradingConfig struct {
	PriceChangeThreshold float64       `yaml:"price_change_threshold"`
	QuoteIntervalSec     int           `yaml:"quote_interval_sec"`
	Assets               []AssetConfig `yaml:"assets"`
}

// SideSkew holds the per-side hedge price adjustments in basis points.
type SideSkew struct {
	Buy  *float64 `yaml:"buy"`
	Sell *float64 `yaml:"sell"`
}

// Config holds everything both processes need. Secrets can be overridden
// through environment variables after the file is parsed.
type Config struct {
	Chainflip struct {
		WSURL     string `yaml:"ws_url"`
		APIURL    string `yaml:"api_url"`
		LPAddress string `yaml:"lp_address"`
	} `yaml:"chainflip"`

	Hyperliquid struct {
		WSURL            string `yaml:"ws_url"`
		APIURL           string `yaml:"api_url"`
		UserAddress      string `yaml:"user_address"`
		APIWalletAddress string `yaml:"api_wallet_address"`
		PrivateKey       string `yaml:"private_key"`
	} `yaml:"hyperliquid"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`

	Relay struct {
		FillFile       string `yaml:"fill_file"`
		CheckpointFile string `yaml:"checkpoint_file"`
	} `yaml:"relay"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Trading TradingConfig `yaml:"trading"`

	Hedge struct {
		Skew           map[string]SideSkew `yaml:"skew_bps"`
		SzDecimals     map[string]int      `yaml:"sz_decimals"`
		CheckIntervals struct {
			BalanceSec    int `yaml:"balance_sec"`
			OpenOrdersSec int `yaml:"open_orders_sec"`
			OrderFillSec  int `yaml:"order_fill_sec"`
			SummaryLogSec int `yaml:"summary_log_sec"`
		} `yaml:"check_intervals"`
	} `yaml:"hedge"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment overrides
// and validates every required field. A missing required field aborts startup
// here rather than failing later at first use.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Trading.QuoteIntervalSec <= 0 {
		cfg.Trading.QuoteIntervalSec = 1
	}
	if cfg.Hedge.CheckIntervals.BalanceSec <= 0 {
		cfg.Hedge.CheckIntervals.BalanceSec = 60
	}
	if cfg.Hedge.CheckIntervals.OpenOrdersSec <= 0 {
		cfg.Hedge.CheckIntervals.OpenOrdersSec = 120
	}
	if cfg.Hedge.CheckIntervals.OrderFillSec <= 0 {
		cfg.Hedge.CheckIntervals.OrderFillSec = 1
	}
	if cfg.Hedge.CheckIntervals.SummaryLogSec <= 0 {
		cfg.Hedge.CheckIntervals.SummaryLogSec = 300
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "trades.db"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	for i := range cfg.Trading.Assets {
		if cfg.Trading.Assets[i].HedgeSymbol == "" {
			cfg.Trading.Assets[i].HedgeSymbol = cfg.Trading.Assets[i].Name
		}
	}
}

// overrideWithEnv lets secrets come from the environment instead of the file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("HEDGE_PRIVATE_KEY"); v != "" {
		cfg.Hyperliquid.PrivateKey = v
	}
	if v := os.Getenv("HEDGE_TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("HEDGE_TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !isWSURL(c.Chainflip.WSURL) {
		return fmt.Errorf("invalid chainflip WS URL: %q", c.Chainflip.WSURL)
	}
	if c.Chainflip.APIURL == "" {
		return fmt.Errorf("chainflip api_url is required")
	}
	if c.Chainflip.LPAddress == "" {
		return fmt.Errorf("chainflip lp_address is required")
	}
	if !isWSURL(c.Hyperliquid.WSURL) {
		return fmt.Errorf("invalid hyperliquid WS URL: %q", c.Hyperliquid.WSURL)
	}
	if c.Hyperliquid.APIURL == "" {
		return fmt.Errorf("hyperliquid api_url is required")
	}
	if c.Hyperliquid.UserAddress == "" {
		return fmt.Errorf("hyperliquid user_address is required")
	}
	if c.Hyperliquid.PrivateKey == "" {
		return fmt.Errorf("hyperliquid private_key is required (file or HEDGE_PRIVATE_KEY)")
	}
	if c.Relay.FillFile == "" {
		return fmt.Errorf("relay fill_file is required")
	}
	if c.Relay.CheckpointFile == "" {
		return fmt.Errorf("relay checkpoint_file is required")
	}
	if c.Trading.PriceChangeThreshold <= 0 {
		return fmt.Errorf("price_change_threshold must be positive")
	}
	if len(c.Trading.Assets) == 0 {
		return fmt.Errorf("at least one trading asset is required")
	}

	slots := make(map[int]string)
	for _, a := range c.Trading.Assets {
		if a.Name == "" {
			return fmt.Errorf("asset name is required")
		}
		if a.BuyFactor <= 0 || a.SellFactor <= 0 {
			return fmt.Errorf("asset %s: buy/sell factors must be positive", a.Name)
		}
		if a.BuyAmount < 0 || a.SellAmount < 0 {
			return fmt.Errorf("asset %s: amounts must not be negative", a.Name)
		}
		for _, side := range []struct {
			slot  int
			owner string
		}{{a.BuyOrderID, a.Name + "/buy"}, {a.SellOrderID, a.Name + "/sell"}} {
			if side.slot <= 0 {
				return fmt.Errorf("asset %s: order ids must be positive", a.Name)
			}
			if prev, dup := slots[side.slot]; dup {
				return fmt.Errorf("order id %d assigned to both %s and %s", side.slot, prev, side.owner)
			}
			slots[side.slot] = side.owner
		}
	}

	return nil
}

// SkewTable converts the configured skews into the lookup form HedgeEngine uses.
func (c *Config) SkewTable() map[string]map[string]float64 {
	table := make(map[string]map[string]float64, len(c.Hedge.Skew))
	for asset, sides := range c.Hedge.Skew {
		entry := make(map[string]float64, 2)
		if sides.Buy != nil {
			entry["buy"] = *sides.Buy
		}
		if sides.Sell != nil {
			entry["sell"] = *sides.Sell
		}
		table[asset] = entry
	}
	return table
}

func isWSURL(s string) bool {
	return strings.HasPrefix(s, "ws://") || strings.HasPrefix(s, "wss://")
}
