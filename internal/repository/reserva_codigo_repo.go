package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const reservaKeyPrefix = "venta:codigo:"

// ReservaCodigoRepository arbitrates sale-code reservations between
// terminals. A reservation is a redis key holding the owner that expires
// after the configured TTL.
type ReservaCodigoRepository interface {
	// Reservar reports false whenever codigo is already held, including by
	// the same owner.
	Reservar(ctx context.Context, codigo, owner string, ttl time.Duration) (bool, error)
	// Liberar deletes the reservation only when owner holds it.
	Liberar(ctx context.Context, codigo, owner string) error
	// Owner returns the current holder, "" when the code is free.
	Owner(ctx context.Context, codigo string) (string, error)
	// Consumir drops the reservation once the sale is persisted.
	Consumir(ctx context.Context, codigo string) error
}

type reservaCodigoRepo struct{ rdb *redis.Client }

func NewReservaCodigoRepository(rdb *redis.Client) ReservaCodigoRepository {
	return &reservaCodigoRepo{rdb: rdb}
}

// Compare-and-delete so a late release cannot drop someone else's hold.
var liberarScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (r *reservaCodigoRepo) Reservar(ctx context.Context, codigo, owner string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, reservaKeyPrefix+codigo, owner, ttl).Result()
}

func (r *reservaCodigoRepo) Liberar(ctx context.Context, codigo, owner string) error {
	return liberarScript.Run(ctx, r.rdb, []string{reservaKeyPrefix + codigo}, owner).Err()
}

func (r *reservaCodigoRepo) Owner(ctx context.Context, codigo string) (string, error) {
	owner, err := r.rdb.Get(ctx, reservaKeyPrefix+codigo).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return owner, err
}

func (r *reservaCodigoRepo) Consumir(ctx context.Context, codigo string) error {
	return r.rdb.Del(ctx, reservaKeyPrefix+codigo).Err()
}
