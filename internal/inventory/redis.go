package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// ErrShortStock is returned by Reserve when the counter dropped below the
// requested quantity between the caller's stock check and the reserve.
var ErrShortStock = errors.New("inventory: stock below requested quantity")

const keyPrefix = "stock:"

// reserve is a check-and-decrement so concurrent reserves cannot drive a
// counter negative.
var reserveScript = redis.NewScript(`
local stock = tonumber(redis.call("GET", KEYS[1]) or "0")
local want = tonumber(ARGV[1])
if stock < want then
	return 0
end
redis.call("DECRBY", KEYS[1], want)
return 1
`)

// RedisStore keeps one integer counter per product id.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) IsInStock(ctx context.Context, productID string, quantity int) (bool, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+productID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	stock, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return stock >= quantity, nil
}

func (s *RedisStore) Reserve(ctx context.Context, productID string, quantity int) error {
	ok, err := reserveScript.Run(ctx, s.rdb, []string{keyPrefix + productID}, quantity).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ErrShortStock
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, productID string, quantity int) error {
	return s.rdb.IncrBy(ctx, keyPrefix+productID, int64(quantity)).Err()
}

// SetStock seeds the counter for a product. Used for provisioning and tests.
func (s *RedisStore) SetStock(ctx context.Context, productID string, quantity int) error {
	return s.rdb.Set(ctx, keyPrefix+productID, quantity, 0).Err()
}
