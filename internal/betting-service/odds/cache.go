package odds

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/match-betting-core/pkg/contracts/events"
)

// Cache guarda as odds correntes de um mercado no Redis
// Quotes servidas daqui são "recentes", não linearizáveis com o último stake
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewCache(r *redis.Client, ttl time.Duration) *Cache {
	return &Cache{R: r, TTL: ttl}
}

func keyMarket(marketID string) string { return "odds:market:" + marketID }

func (c *Cache) GetQuotes(ctx context.Context, marketID string) (*events.OddsUpdate, bool, error) {
	b, err := c.R.Get(ctx, keyMarket(marketID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var upd events.OddsUpdate
	if err := json.Unmarshal(b, &upd); err != nil {
		return nil, false, err
	}
	return &upd, true, nil
}

func (c *Cache) SetQuotes(ctx context.Context, upd events.OddsUpdate) error {
	b, err := json.Marshal(upd)
	if err != nil {
		return err
	}
	return c.R.Set(ctx, keyMarket(upd.MarketID), b, c.TTL).Err()
}
